// Movie Recommender - TMDb-backed Movie Recommendation Core
// Copyright 2026 S. Boyapati (SBoyapati13)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SBoyapati13/movie-recommender

package assets

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/SBoyapati13/movie-recommender/internal/metrics"
)

// ErrNoPoster is returned when a movie has no poster path or the image
// cannot be obtained in a usable form.
var ErrNoPoster = errors.New("poster unavailable")

// Fetcher retrieves poster bytes from the remote image CDN.
type Fetcher interface {
	Poster(ctx context.Context, path, size string) ([]byte, error)
}

// PosterService serves poster images cache-first. A cached asset that no
// longer decodes is evicted and re-fetched exactly once; the caller
// never sees corrupted bytes.
type PosterService struct {
	cache   *Cache
	fetcher Fetcher
	logger  zerolog.Logger
}

// NewPosterService wires the blob cache to a remote fetcher.
func NewPosterService(cache *Cache, fetcher Fetcher, logger zerolog.Logger) *PosterService {
	return &PosterService{
		cache:   cache,
		fetcher: fetcher,
		logger:  logger.With().Str("component", "posters").Logger(),
	}
}

// Poster returns the image bytes for (path, size).
func (s *PosterService) Poster(ctx context.Context, path, size string) ([]byte, error) {
	if path == "" {
		return nil, ErrNoPoster
	}

	cached, err := s.cache.Get(path, size)
	if err == nil {
		if validImage(cached) {
			return cached, nil
		}
		metrics.AssetCorruptionsTotal.Inc()
		s.logger.Warn().Str("path", path).Str("size", size).Msg("Evicting corrupted cached poster")
		if evictErr := s.cache.Evict(path, size); evictErr != nil {
			s.logger.Error().Err(evictErr).Str("path", path).Msg("Failed to evict corrupted poster")
		}
	} else if !errors.Is(err, ErrNotCached) {
		s.logger.Error().Err(err).Str("path", path).Msg("Asset cache read failed")
	}

	return s.fetchAndStore(ctx, path, size)
}

// fetchAndStore performs the single remote fetch for a miss or a
// post-eviction refresh. A caching failure is logged but does not fail
// the request; the fetched bytes are still returned.
func (s *PosterService) fetchAndStore(ctx context.Context, path, size string) ([]byte, error) {
	data, err := s.fetcher.Poster(ctx, path, size)
	if err != nil {
		return nil, ErrNoPoster
	}
	if !validImage(data) {
		s.logger.Warn().Str("path", path).Str("size", size).Msg("Fetched poster failed to decode")
		return nil, ErrNoPoster
	}

	if err := s.cache.Put(path, size, data); err != nil {
		s.logger.Error().Err(err).Str("path", path).Msg("Failed to cache poster")
	}
	return data, nil
}
