// Movie Recommender - TMDb-backed Movie Recommendation Core
// Copyright 2026 S. Boyapati (SBoyapati13)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SBoyapati13/movie-recommender

// Package auth provides password-based registration and JWT session
// tokens for the HTTP facade.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/SBoyapati13/movie-recommender/internal/config"
	"github.com/SBoyapati13/movie-recommender/internal/models"
	"github.com/SBoyapati13/movie-recommender/internal/store"
)

// ErrInvalidCredentials is returned for a bad username/password pair.
// Unknown user and wrong password are deliberately indistinguishable.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrInvalidToken is returned for a missing, malformed, or expired token.
var ErrInvalidToken = errors.New("invalid token")

// UserStore is the slice of the local store the service consumes.
type UserStore interface {
	CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error)
	UserByUsername(ctx context.Context, username string) (*models.User, error)
}

// Service issues and verifies session tokens.
type Service struct {
	users      UserStore
	secret     []byte
	sessionTTL time.Duration
	logger     zerolog.Logger
}

// NewService creates an auth service from the security configuration.
func NewService(cfg *config.SecurityConfig, users UserStore, logger zerolog.Logger) (*Service, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("auth enabled but jwt secret is empty")
	}
	return &Service{
		users:      users,
		secret:     []byte(cfg.JWTSecret),
		sessionTTL: cfg.SessionTTL,
		logger:     logger.With().Str("component", "auth").Logger(),
	}, nil
}

// Register creates a user with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, username, password string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, username, string(hash))
	if err != nil {
		if errors.Is(err, store.ErrUserExists) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("username", username).Msg("Failed to create user")
		return nil, err
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("User registered")
	return user, nil
}

// Login verifies credentials and returns a signed session token.
func (s *Service) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	user, err := s.users.UserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		s.logger.Error().Err(err).Str("username", username).Msg("Failed to look up user")
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(user.ID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.sessionTTL)),
		ID:        uuid.NewString(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("User logged in")
	return token, user, nil
}

// VerifyToken validates a session token and returns the user id it was
// issued for.
func (s *Service) VerifyToken(tokenString string) (int64, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{},
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return 0, ErrInvalidToken
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return userID, nil
}
