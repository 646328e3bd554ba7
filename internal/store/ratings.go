// Movie Recommender - TMDb-backed Movie Recommendation Core
// Copyright 2026 S. Boyapati (SBoyapati13)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SBoyapati13/movie-recommender

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	json "github.com/goccy/go-json"

	"github.com/SBoyapati13/movie-recommender/internal/metrics"
	"github.com/SBoyapati13/movie-recommender/internal/models"
	"github.com/SBoyapati13/movie-recommender/internal/recommend"
)

// SaveRating upserts a rating for (user, movie). Re-rating a movie
// replaces the previous score; the rating count for that pair stays one.
func (s *Store) SaveRating(ctx context.Context, userID, movieID int64, score float64) error {
	if score < models.RatingScaleMin || score > models.RatingScaleMax {
		return fmt.Errorf("rating %.1f outside scale [%.1f, %.1f]",
			score, models.RatingScaleMin, models.RatingScaleMax)
	}

	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO ratings (user_id, movie_id, score, rated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, movie_id) DO UPDATE SET
			score = excluded.score,
			rated_at = excluded.rated_at`,
		userID, movieID, score, time.Now().UTC())
	if err != nil {
		metrics.StoreErrors.WithLabelValues("save_rating").Inc()
		s.logger.Error().Err(err).
			Int64("user_id", userID).
			Int64("movie_id", movieID).
			Msg("Failed to save rating")
		return err
	}
	return nil
}

// RatingsFor returns all of a user's ratings keyed by movie id. On
// storage failure it logs and returns an empty map, which downstream
// treats the same as a user with no history.
func (s *Store) RatingsFor(ctx context.Context, userID int64) map[int64]float64 {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT movie_id, score FROM ratings WHERE user_id = ?`, userID)
	if err != nil {
		metrics.StoreErrors.WithLabelValues("ratings_for").Inc()
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to read ratings")
		return map[int64]float64{}
	}
	defer rows.Close()

	out := make(map[int64]float64)
	for rows.Next() {
		var (
			movieID int64
			score   float64
		)
		if err := rows.Scan(&movieID, &score); err != nil {
			metrics.StoreErrors.WithLabelValues("ratings_for").Inc()
			s.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to scan rating")
			return map[int64]float64{}
		}
		out[movieID] = score
	}
	if err := rows.Err(); err != nil {
		metrics.StoreErrors.WithLabelValues("ratings_for").Inc()
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to iterate ratings")
		return map[int64]float64{}
	}
	return out
}

// FavoriteGenres derives the user's top genres from their liked ratings
// (score >= threshold), joined against cached movie metadata. Ratings for
// movies whose metadata was never cached contribute nothing.
func (s *Store) FavoriteGenres(ctx context.Context, userID int64, threshold float64, topN int) []int {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT r.score, m.genre_ids
		FROM ratings r
		JOIN movies m ON m.id = r.movie_id
		WHERE r.user_id = ? AND r.score >= ?`, userID, threshold)
	if err != nil {
		metrics.StoreErrors.WithLabelValues("favorite_genres").Inc()
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to read liked ratings")
		return nil
	}
	defer rows.Close()

	var liked []recommend.RatedMovie
	for rows.Next() {
		var (
			score     float64
			genresRaw sql.NullString
		)
		if err := rows.Scan(&score, &genresRaw); err != nil {
			metrics.StoreErrors.WithLabelValues("favorite_genres").Inc()
			s.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to scan liked rating")
			return nil
		}
		rm := recommend.RatedMovie{Score: score}
		if genresRaw.Valid && genresRaw.String != "" {
			if err := json.Unmarshal([]byte(genresRaw.String), &rm.GenreIDs); err != nil {
				s.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to decode genre list")
				continue
			}
		}
		liked = append(liked, rm)
	}
	if err := rows.Err(); err != nil {
		metrics.StoreErrors.WithLabelValues("favorite_genres").Inc()
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to iterate liked ratings")
		return nil
	}

	return recommend.TopGenres(liked, threshold, topN)
}

// RatedPosterPaths returns the poster paths of every movie any user has
// rated. The asset cache uses this as its keep set when pruning.
func (s *Store) RatedPosterPaths(ctx context.Context) map[string]struct{} {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT DISTINCT m.poster_path
		FROM movies m
		JOIN ratings r ON r.movie_id = m.id
		WHERE m.poster_path IS NOT NULL AND m.poster_path <> ''`)
	if err != nil {
		metrics.StoreErrors.WithLabelValues("rated_poster_paths").Inc()
		s.logger.Error().Err(err).Msg("Failed to read rated poster paths")
		return map[string]struct{}{}
	}
	defer rows.Close()

	out := make(map[string]struct{})
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			metrics.StoreErrors.WithLabelValues("rated_poster_paths").Inc()
			s.logger.Error().Err(err).Msg("Failed to scan poster path")
			return map[string]struct{}{}
		}
		out[path] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		metrics.StoreErrors.WithLabelValues("rated_poster_paths").Inc()
		s.logger.Error().Err(err).Msg("Failed to iterate poster paths")
		return map[string]struct{}{}
	}
	return out
}
