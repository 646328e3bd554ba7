// Movie Recommender - TMDb-backed Movie Recommendation Core
// Copyright 2026 S. Boyapati (SBoyapati13)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SBoyapati13/movie-recommender

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SBoyapati13/movie-recommender/internal/models"
)

// ErrUserExists is returned when registering a username that is already
// taken (comparison is case-insensitive).
var ErrUserExists = errors.New("username already exists")

// ErrUserNotFound is returned when looking up a user that does not exist.
var ErrUserNotFound = errors.New("user not found")

// CreateUser inserts a new user and returns the stored record. The
// username is kept as entered for display; uniqueness is enforced on its
// lowercase form.
func (s *Store) CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error) {
	lower := strings.ToLower(username)
	createdAt := time.Now().UTC()

	// Check-then-insert rather than relying on constraint error text,
	// which differs across DuckDB versions.
	var exists int
	err := s.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE username_lower = ?`, lower).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if exists > 0 {
		return nil, ErrUserExists
	}

	row := s.conn.QueryRowContext(ctx, `
		INSERT INTO users (username, username_lower, password_hash, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id`,
		username, lower, passwordHash, createdAt)

	var id int64
	if err := row.Scan(&id); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &models.User{
		ID:           id,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    createdAt,
	}, nil
}

// UserByUsername looks up a user case-insensitively.
func (s *Store) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	row := s.conn.QueryRowContext(ctx, `
		SELECT id, username, password_hash, created_at
		FROM users WHERE username_lower = ?`, strings.ToLower(username))

	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, ErrUserNotFound
	case err != nil:
		return nil, fmt.Errorf("failed to read user: %w", err)
	}
	return &u, nil
}

// UserByID looks up a user by primary key.
func (s *Store) UserByID(ctx context.Context, id int64) (*models.User, error) {
	row := s.conn.QueryRowContext(ctx, `
		SELECT id, username, password_hash, created_at
		FROM users WHERE id = ?`, id)

	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, ErrUserNotFound
	case err != nil:
		return nil, fmt.Errorf("failed to read user: %w", err)
	}
	return &u, nil
}
