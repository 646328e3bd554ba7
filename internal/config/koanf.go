// Movie Recommender - TMDb-backed Movie Recommendation Core
// Copyright 2026 S. Boyapati (SBoyapati13)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SBoyapati13/movie-recommender

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/SBoyapati13/movie-recommender/internal/logging"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found is used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/movie-recommender/config.yaml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with all defaults applied. These are
// loaded first, then overridden by config file and environment variables.
func defaultConfig() *Config {
	return &Config{
		TMDB: TMDBConfig{
			APIKey:            "",
			BaseURL:           "https://api.themoviedb.org/3",
			ImageBaseURL:      "https://image.tmdb.org/t/p",
			Timeout:           10 * time.Second,
			MaxRetries:        3,
			RetryBaseDelay:    1 * time.Second,
			RequestsPerSecond: 4,
			RequestBurst:      8,
		},
		Database: DatabaseConfig{
			Path:                "data/recommender.duckdb",
			CacheTTL:            24 * time.Hour,
			PreferenceCacheSize: 256,
		},
		Assets: AssetsConfig{
			Path:     "data/posters",
			InMemory: false,
		},
		Recommend: RecConfig{
			LikedThreshold:    7.0,
			FavoriteGenres:    3,
			DefaultLimit:      10,
			PopularityDivisor: 100.0,
			PopularityWeight:  0.4,
			RatingWeight:      0.3,
			ContentWeight:     0.3,
		},
		Server: ServerConfig{
			Host:    "127.0.0.1",
			Port:    8380,
			Timeout: 30 * time.Second,
		},
		Security: SecurityConfig{
			AuthEnabled:     false,
			JWTSecret:       "",
			SessionTTL:      24 * time.Hour,
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load builds the configuration from layered sources:
//  1. Defaults (struct above)
//  2. Optional YAML config file
//  3. Environment variables (highest priority)
//
// The result is validated before being returned.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file path, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths lists config paths parsed as comma-separated slices
// when they arrive via environment variables.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated env values to slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envTransformFunc maps environment variable names to config paths.
//
// Examples:
//   - TMDB_API_KEY      -> tmdb.api_key
//   - DATABASE_PATH     -> database.path
//   - SERVER_PORT       -> server.port
//   - LOG_LEVEL         -> logging.level
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		"tmdb_api_key":             "tmdb.api_key",
		"tmdb_base_url":            "tmdb.base_url",
		"tmdb_image_base_url":      "tmdb.image_base_url",
		"tmdb_timeout":             "tmdb.timeout",
		"tmdb_max_retries":         "tmdb.max_retries",
		"tmdb_requests_per_second": "tmdb.requests_per_second",

		"database_path":      "database.path",
		"database_cache_ttl": "database.cache_ttl",

		"assets_path": "assets.path",

		"recommend_liked_threshold": "recommend.liked_threshold",
		"recommend_default_limit":   "recommend.default_limit",

		"server_host": "server.host",
		"server_port": "server.port",

		"auth_enabled":      "security.auth_enabled",
		"jwt_secret":        "security.jwt_secret",
		"session_ttl":       "security.session_ttl",
		"rate_limit_reqs":   "security.rate_limit_reqs",
		"rate_limit_window": "security.rate_limit_window",
		"cors_origins":      "security.cors_origins",

		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// Unknown variables are dropped rather than guessing a path; this keeps
	// unrelated environment noise out of the configuration tree.
	return ""
}
