// Movie Recommender - TMDb-backed Movie Recommendation Core
// Copyright 2026 S. Boyapati (SBoyapati13)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SBoyapati13/movie-recommender

// Command movie-recommender runs the recommendation service: a TMDb
// catalog client with local caching, per-user ratings and preferences,
// poster caching, and a hybrid ranking engine, exposed over HTTP.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/SBoyapati13/movie-recommender/internal/api"
	"github.com/SBoyapati13/movie-recommender/internal/assets"
	"github.com/SBoyapati13/movie-recommender/internal/auth"
	"github.com/SBoyapati13/movie-recommender/internal/catalog"
	"github.com/SBoyapati13/movie-recommender/internal/config"
	"github.com/SBoyapati13/movie-recommender/internal/logging"
	"github.com/SBoyapati13/movie-recommender/internal/models"
	"github.com/SBoyapati13/movie-recommender/internal/recommend"
	"github.com/SBoyapati13/movie-recommender/internal/store"
)

const shutdownTimeout = 15 * time.Second

// assetPruneInterval is how often unrated posters are swept from the
// asset cache.
const assetPruneInterval = 24 * time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(cfg.Logging)
	logger := logging.Logger()
	logger.Info().Msg("Starting movie recommender")

	st, err := store.New(&cfg.Database, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open local store")
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close local store")
		}
	}()

	assetCache, err := assets.NewCache(&cfg.Assets, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open asset cache")
	}
	defer func() {
		if err := assetCache.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close asset cache")
		}
	}()

	client := catalog.NewClient(&cfg.TMDB, logger)

	loadCtx, cancelLoad := context.WithTimeout(context.Background(), cfg.TMDB.Timeout)
	client.LoadGenres(loadCtx, models.DefaultLanguage)
	cancelLoad()

	moods := recommend.NewMoodIndex(client)
	engine := recommend.NewEngine(&cfg.Recommend, client, st, moods, logger)
	posters := assets.NewPosterService(assetCache, client, logger)

	var authService *auth.Service
	if cfg.Security.AuthEnabled {
		authService, err = auth.NewService(&cfg.Security, st, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to initialize auth")
		}
	}

	handler := api.NewHandler(client, st, engine, posters, moods, logger)
	server := api.NewServer(cfg, handler, authService, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go pruneAssets(ctx, st, assetCache, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case <-ctx.Done():
		logger.Info().Msg("Shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error().Err(err).Msg("Server exited")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
	}
	logger.Info().Msg("Shutdown complete")
}

// pruneAssets periodically removes cached posters for movies no user has
// rated, keeping the asset cache bounded by actual interest.
func pruneAssets(ctx context.Context, st *store.Store, cache *assets.Cache, logger zerolog.Logger) {
	ticker := time.NewTicker(assetPruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			keep := st.RatedPosterPaths(ctx)
			removed, err := cache.Prune(keep)
			if err != nil {
				logger.Error().Err(err).Msg("Asset prune failed")
				continue
			}
			if removed > 0 {
				logger.Info().Int("removed", removed).Msg("Pruned unrated posters")
			}
		}
	}
}
