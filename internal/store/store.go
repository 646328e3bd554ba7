// Movie Recommender - TMDb-backed Movie Recommendation Core
// Copyright 2026 S. Boyapati (SBoyapati13)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SBoyapati13/movie-recommender

// Package store persists cached catalog records, user ratings, and user
// preferences in an embedded DuckDB database.
//
// Failure semantics follow an availability-over-correctness tradeoff: read
// operations catch storage errors at the operation boundary, log them, and
// degrade to an empty or default result. Write operations are single
// upsert statements — they either fully commit or report an error; a
// partial write is never left behind.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"github.com/SBoyapati13/movie-recommender/internal/config"
	"github.com/SBoyapati13/movie-recommender/internal/models"
)

// Store wraps the DuckDB connection and provides data access methods.
// It is safe for concurrent use; database/sql serializes access to the
// underlying connection pool.
type Store struct {
	conn     *sql.DB
	cacheTTL time.Duration
	logger   zerolog.Logger

	// prefCache is a read-through cache for preferences, invalidated on
	// write. Preferences are read on almost every catalog call, so this
	// keeps the hot path off the database.
	prefCache *lru.Cache[int64, models.Preferences]
}

// New opens (creating if needed) the database and initializes the schema.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(cfg *config.DatabaseConfig, logger zerolog.Logger) (*Store, error) {
	if cfg.Path != ":memory:" {
		dbDir := filepath.Dir(cfg.Path)
		if dbDir != "" && dbDir != "." {
			if err := os.MkdirAll(dbDir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dbDir, err)
			}
		}
	}

	conn, err := sql.Open("duckdb", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	cacheSize := cfg.PreferenceCacheSize
	if cacheSize <= 0 {
		cacheSize = 256
	}
	prefCache, err := lru.New[int64, models.Preferences](cacheSize)
	if err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to create preference cache: %w", err)
	}

	s := &Store{
		conn:      conn,
		cacheTTL:  cfg.CacheTTL,
		logger:    logger.With().Str("component", "store").Logger(),
		prefCache: prefCache,
	}

	if err := s.initSchema(); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Conn exposes the underlying connection for tests.
func (s *Store) Conn() *sql.DB {
	return s.conn
}

// initSchema creates tables if they do not exist. DuckDB supports
// IF NOT EXISTS on all of these, so initialization is idempotent.
func (s *Store) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS movies (
			id BIGINT PRIMARY KEY,
			title VARCHAR NOT NULL,
			original_title VARCHAR,
			original_language VARCHAR,
			year INTEGER,
			overview VARCHAR,
			poster_path VARCHAR,
			popularity DOUBLE NOT NULL DEFAULT 0,
			vote_average DOUBLE NOT NULL DEFAULT 0,
			genre_ids VARCHAR,
			region VARCHAR,
			fetched_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS ratings (
			user_id BIGINT NOT NULL,
			movie_id BIGINT NOT NULL,
			score DOUBLE NOT NULL,
			rated_at TIMESTAMP NOT NULL,
			PRIMARY KEY (user_id, movie_id)
		)`,
		`CREATE TABLE IF NOT EXISTS preferences (
			user_id BIGINT PRIMARY KEY,
			language VARCHAR NOT NULL,
			region VARCHAR NOT NULL
		)`,
		`CREATE SEQUENCE IF NOT EXISTS users_id_seq`,
		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT PRIMARY KEY DEFAULT nextval('users_id_seq'),
			username VARCHAR NOT NULL,
			username_lower VARCHAR NOT NULL UNIQUE,
			password_hash VARCHAR NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.conn.Exec(stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}

// closeQuietly closes a connection ignoring the error; used on init
// failure paths where the original error is the one worth reporting.
func closeQuietly(conn *sql.DB) {
	_ = conn.Close()
}
