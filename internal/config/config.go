// Movie Recommender - TMDb-backed Movie Recommendation Core
// Copyright 2026 S. Boyapati (SBoyapati13)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SBoyapati13/movie-recommender

// Package config defines the application configuration and its layered
// loading via Koanf v2 (defaults -> optional YAML file -> environment).
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/SBoyapati13/movie-recommender/internal/logging"
)

// Config is the root application configuration.
type Config struct {
	TMDB      TMDBConfig     `koanf:"tmdb"`
	Database  DatabaseConfig `koanf:"database"`
	Assets    AssetsConfig   `koanf:"assets"`
	Recommend RecConfig      `koanf:"recommend"`
	Server    ServerConfig   `koanf:"server"`
	Security  SecurityConfig `koanf:"security"`
	Logging   logging.Config `koanf:"logging"`
}

// TMDBConfig configures the remote catalog client.
type TMDBConfig struct {
	// APIKey is the TMDb API key. Required.
	APIKey string `koanf:"api_key"`

	// BaseURL is the API base, overridable for tests.
	BaseURL string `koanf:"base_url"`

	// ImageBaseURL is the image CDN base, overridable for tests.
	ImageBaseURL string `koanf:"image_base_url"`

	// Timeout bounds every HTTP request.
	Timeout time.Duration `koanf:"timeout"`

	// MaxRetries bounds retries for rate-limited and transient failures.
	MaxRetries int `koanf:"max_retries"`

	// RetryBaseDelay is the base delay for exponential backoff.
	RetryBaseDelay time.Duration `koanf:"retry_base_delay"`

	// RequestsPerSecond is the client-side rate limit toward the catalog.
	RequestsPerSecond float64 `koanf:"requests_per_second"`

	// RequestBurst is the limiter burst size.
	RequestBurst int `koanf:"request_burst"`
}

// DatabaseConfig configures the embedded DuckDB store.
type DatabaseConfig struct {
	// Path is the database file path; ":memory:" keeps everything in RAM.
	Path string `koanf:"path"`

	// CacheTTL is how long a cached movie record stays fresh.
	CacheTTL time.Duration `koanf:"cache_ttl"`

	// PreferenceCacheSize bounds the in-process preferences LRU.
	PreferenceCacheSize int `koanf:"preference_cache_size"`
}

// AssetsConfig configures the poster cache.
type AssetsConfig struct {
	// Path is the Badger directory for poster blobs.
	Path string `koanf:"path"`

	// InMemory runs Badger without disk persistence (tests).
	InMemory bool `koanf:"in_memory"`
}

// RecConfig configures the ranking engine.
type RecConfig struct {
	// LikedThreshold is the minimum score for a rating to count as "liked".
	LikedThreshold float64 `koanf:"liked_threshold"`

	// FavoriteGenres is how many top genres define a user's taste.
	FavoriteGenres int `koanf:"favorite_genres"`

	// DefaultLimit is the number of recommendations returned by default.
	DefaultLimit int `koanf:"default_limit"`

	// PopularityDivisor normalizes TMDb popularity into [0,1].
	PopularityDivisor float64 `koanf:"popularity_divisor"`

	// Weights for the hybrid score. They are normalized at engine
	// construction so only their ratio matters.
	PopularityWeight float64 `koanf:"popularity_weight"`
	RatingWeight     float64 `koanf:"rating_weight"`
	ContentWeight    float64 `koanf:"content_weight"`
}

// ServerConfig configures the HTTP facade.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`
}

// SecurityConfig configures the authenticated variant.
type SecurityConfig struct {
	// AuthEnabled switches the authenticated variant on.
	AuthEnabled bool `koanf:"auth_enabled"`

	// JWTSecret signs session tokens. Required when AuthEnabled.
	JWTSecret string `koanf:"jwt_secret"`

	// SessionTTL bounds token lifetime.
	SessionTTL time.Duration `koanf:"session_ttl"`

	// RateLimitReqs and RateLimitWindow bound requests per client IP.
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`

	// CORSOrigins lists allowed origins for the HTTP facade.
	CORSOrigins []string `koanf:"cors_origins"`
}

// Validate checks the configuration for values the application cannot
// start with. It is called after all layers are loaded.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.TMDB.APIKey) == "" {
		return fmt.Errorf("tmdb.api_key is required (set TMDB_API_KEY)")
	}
	if c.TMDB.Timeout <= 0 {
		return fmt.Errorf("tmdb.timeout must be positive, got %s", c.TMDB.Timeout)
	}
	if c.TMDB.MaxRetries < 0 {
		return fmt.Errorf("tmdb.max_retries must be >= 0, got %d", c.TMDB.MaxRetries)
	}
	if c.Database.CacheTTL <= 0 {
		return fmt.Errorf("database.cache_ttl must be positive, got %s", c.Database.CacheTTL)
	}
	if c.Recommend.LikedThreshold < 0 || c.Recommend.LikedThreshold > 10 {
		return fmt.Errorf("recommend.liked_threshold must be in [0,10], got %f", c.Recommend.LikedThreshold)
	}
	if c.Recommend.DefaultLimit <= 0 {
		return fmt.Errorf("recommend.default_limit must be positive, got %d", c.Recommend.DefaultLimit)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in (0,65535], got %d", c.Server.Port)
	}
	if c.Security.AuthEnabled && strings.TrimSpace(c.Security.JWTSecret) == "" {
		return fmt.Errorf("security.jwt_secret is required when auth is enabled")
	}
	return nil
}
