// Movie Recommender - TMDb-backed Movie Recommendation Core
// Copyright 2026 S. Boyapati (SBoyapati13)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SBoyapati13/movie-recommender

package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	json "github.com/goccy/go-json"

	"github.com/SBoyapati13/movie-recommender/internal/metrics"
	"github.com/SBoyapati13/movie-recommender/internal/models"
)

// CachedMovie returns the cached catalog record for id, or nil when the
// record is absent, expired, or unreadable. Freshness is the wall-clock
// difference between now and the stored fetch time, recomputed on every
// read; an expired record is reported as a miss without being deleted,
// so the next successful fetch simply overwrites it.
func (s *Store) CachedMovie(ctx context.Context, id int64) *models.Movie {
	row := s.conn.QueryRowContext(ctx, `
		SELECT id, title, original_title, original_language, year, overview,
		       poster_path, popularity, vote_average, genre_ids, region, fetched_at
		FROM movies WHERE id = ?`, id)

	var (
		m         models.Movie
		genresRaw sql.NullString
		fetchedAt time.Time
	)
	err := row.Scan(&m.ID, &m.Title, &m.OriginalTitle, &m.OriginalLanguage,
		&m.Year, &m.Overview, &m.PosterPath, &m.Popularity, &m.VoteAverage,
		&genresRaw, &m.Region, &fetchedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		metrics.StoreCacheMisses.WithLabelValues("absent").Inc()
		return nil
	case err != nil:
		metrics.StoreErrors.WithLabelValues("cached_movie").Inc()
		s.logger.Error().Err(err).Int64("movie_id", id).Msg("Failed to read cached movie")
		return nil
	}

	if s.cacheTTL > 0 && time.Since(fetchedAt) > s.cacheTTL {
		metrics.StoreCacheMisses.WithLabelValues("expired").Inc()
		return nil
	}

	if genresRaw.Valid && genresRaw.String != "" {
		if err := json.Unmarshal([]byte(genresRaw.String), &m.GenreIDs); err != nil {
			metrics.StoreErrors.WithLabelValues("cached_movie").Inc()
			s.logger.Error().Err(err).Int64("movie_id", id).Msg("Failed to decode cached genre list")
			return nil
		}
	}

	metrics.StoreCacheHits.Inc()
	return &m
}

// PutMovie upserts a catalog record and stamps it with the current time.
func (s *Store) PutMovie(ctx context.Context, m *models.Movie) error {
	genresRaw, err := json.Marshal(m.GenreIDs)
	if err != nil {
		return err
	}

	_, err = s.conn.ExecContext(ctx, `
		INSERT INTO movies (id, title, original_title, original_language, year,
			overview, poster_path, popularity, vote_average, genre_ids, region, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			original_title = excluded.original_title,
			original_language = excluded.original_language,
			year = excluded.year,
			overview = excluded.overview,
			poster_path = excluded.poster_path,
			popularity = excluded.popularity,
			vote_average = excluded.vote_average,
			genre_ids = excluded.genre_ids,
			region = excluded.region,
			fetched_at = excluded.fetched_at`,
		m.ID, m.Title, m.OriginalTitle, m.OriginalLanguage, m.Year,
		m.Overview, m.PosterPath, m.Popularity, m.VoteAverage,
		string(genresRaw), m.Region, time.Now().UTC())
	if err != nil {
		metrics.StoreErrors.WithLabelValues("put_movie").Inc()
		s.logger.Error().Err(err).Int64("movie_id", m.ID).Msg("Failed to cache movie")
		return err
	}
	return nil
}

// PutMovies caches a batch of records, e.g. the results of a list call.
// It stops at the first failure.
func (s *Store) PutMovies(ctx context.Context, movies []models.Movie) error {
	for i := range movies {
		if err := s.PutMovie(ctx, &movies[i]); err != nil {
			return err
		}
	}
	return nil
}

// MoviesByIDs returns the cached records for the given ids regardless of
// freshness, keyed by id. Stale records are acceptable here because the
// callers (affinity, ranking) only need genre metadata for movies the
// user already rated.
func (s *Store) MoviesByIDs(ctx context.Context, ids []int64) map[int64]models.Movie {
	out := make(map[int64]models.Movie, len(ids))
	for _, id := range ids {
		row := s.conn.QueryRowContext(ctx, `
			SELECT id, title, original_title, original_language, year, overview,
			       poster_path, popularity, vote_average, genre_ids, region
			FROM movies WHERE id = ?`, id)

		var (
			m         models.Movie
			genresRaw sql.NullString
		)
		err := row.Scan(&m.ID, &m.Title, &m.OriginalTitle, &m.OriginalLanguage,
			&m.Year, &m.Overview, &m.PosterPath, &m.Popularity, &m.VoteAverage,
			&genresRaw, &m.Region)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			metrics.StoreErrors.WithLabelValues("movies_by_ids").Inc()
			s.logger.Error().Err(err).Int64("movie_id", id).Msg("Failed to read movie")
			continue
		}
		if genresRaw.Valid && genresRaw.String != "" {
			if err := json.Unmarshal([]byte(genresRaw.String), &m.GenreIDs); err != nil {
				s.logger.Error().Err(err).Int64("movie_id", id).Msg("Failed to decode genre list")
				continue
			}
		}
		out[m.ID] = m
	}
	return out
}
