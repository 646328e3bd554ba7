// Movie Recommender - TMDb-backed Movie Recommendation Core
// Copyright 2026 S. Boyapati (SBoyapati13)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SBoyapati13/movie-recommender

package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/SBoyapati13/movie-recommender/internal/metrics"
	"github.com/SBoyapati13/movie-recommender/internal/models"
)

// Preferences returns the user's stored preferences, falling back to
// defaults when none are stored or the read fails. Fresh reads populate
// the in-process LRU cache.
func (s *Store) Preferences(ctx context.Context, userID int64) models.Preferences {
	if prefs, ok := s.prefCache.Get(userID); ok {
		return prefs
	}

	row := s.conn.QueryRowContext(ctx,
		`SELECT user_id, language, region FROM preferences WHERE user_id = ?`, userID)

	var prefs models.Preferences
	err := row.Scan(&prefs.UserID, &prefs.Language, &prefs.Region)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return models.DefaultPreferences(userID)
	case err != nil:
		metrics.StoreErrors.WithLabelValues("preferences").Inc()
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to read preferences")
		return models.DefaultPreferences(userID)
	}

	s.prefCache.Add(userID, prefs)
	return prefs
}

// SetPreferences upserts the user's preferences and refreshes the cache
// entry. The cache is dropped before the write so a failed write cannot
// leave a stale entry behind.
func (s *Store) SetPreferences(ctx context.Context, prefs models.Preferences) error {
	if prefs.Language == "" {
		prefs.Language = models.DefaultLanguage
	}
	if prefs.Region == "" {
		prefs.Region = models.DefaultRegion
	}

	s.prefCache.Remove(prefs.UserID)

	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO preferences (user_id, language, region)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			language = excluded.language,
			region = excluded.region`,
		prefs.UserID, prefs.Language, prefs.Region)
	if err != nil {
		metrics.StoreErrors.WithLabelValues("set_preferences").Inc()
		s.logger.Error().Err(err).Int64("user_id", prefs.UserID).Msg("Failed to save preferences")
		return err
	}

	s.prefCache.Add(prefs.UserID, prefs)
	return nil
}
