// Movie Recommender - TMDb-backed Movie Recommendation Core
// Copyright 2026 S. Boyapati (SBoyapati13)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SBoyapati13/movie-recommender

package recommend

import (
	"context"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/SBoyapati13/movie-recommender/internal/catalog"
	"github.com/SBoyapati13/movie-recommender/internal/config"
	"github.com/SBoyapati13/movie-recommender/internal/metrics"
	"github.com/SBoyapati13/movie-recommender/internal/models"
)

// Engine ranks catalog candidates for a user. Construction wires in the
// catalog, rating history, and the immutable mood table; per-call state
// is confined to the Recommend call itself.
type Engine struct {
	catalog Catalog
	history History
	moods   *MoodIndex
	cfg     config.RecConfig
	logger  zerolog.Logger
}

// NewEngine creates a ranking engine. The score weights are normalized to
// sum to one, so only their ratio matters in configuration.
func NewEngine(cfg *config.RecConfig, cat Catalog, history History, moods *MoodIndex, logger zerolog.Logger) *Engine {
	e := &Engine{
		catalog: cat,
		history: history,
		moods:   moods,
		cfg:     *cfg,
		logger:  logger.With().Str("component", "recommend").Logger(),
	}
	if sum := e.cfg.PopularityWeight + e.cfg.RatingWeight + e.cfg.ContentWeight; sum > 0 {
		e.cfg.PopularityWeight /= sum
		e.cfg.RatingWeight /= sum
		e.cfg.ContentWeight /= sum
	}
	return e
}

// Recommend returns up to req.Limit candidates ranked by descending score.
//
// Candidate source resolution: a mood filter, when given and known, maps
// to its fixed genre subset; otherwise the user's favorite genres drive
// discovery; when the chosen source yields nothing (including a user with
// no liked history) the engine falls back to trending. Movies the user
// has already rated are always excluded.
func (e *Engine) Recommend(ctx context.Context, req Request) Result {
	timer := prometheus.NewTimer(metrics.RecommendDuration)
	defer timer.ObserveDuration()

	limit := req.Limit
	if limit <= 0 {
		limit = e.cfg.DefaultLimit
	}

	prefs := e.history.Preferences(ctx, req.UserID)
	favorites := e.history.FavoriteGenres(ctx, req.UserID, e.cfg.LikedThreshold, e.cfg.FavoriteGenres)

	candidates, source := e.gatherCandidates(ctx, req.Mood, favorites, prefs)
	metrics.RecommendRequestsTotal.WithLabelValues(source).Inc()

	rated := e.history.RatingsFor(ctx, req.UserID)
	favoriteSet := make(map[int]struct{}, len(favorites))
	for _, genreID := range favorites {
		favoriteSet[genreID] = struct{}{}
	}

	ranked := make([]Recommendation, 0, len(candidates))
	for i := range candidates {
		if _, seen := rated[candidates[i].ID]; seen {
			continue
		}
		ranked = append(ranked, Recommendation{
			Movie: candidates[i],
			Score: e.score(&candidates[i], favoriteSet),
		})
	}

	// Descending score; equal scores ordered by movie id ascending so
	// the same inputs always produce the same list.
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Movie.ID < ranked[j].Movie.ID
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	e.logger.Debug().
		Int64("user_id", req.UserID).
		Str("source", source).
		Int("candidates", len(candidates)).
		Int("returned", len(ranked)).
		Msg("Recommendation request served")

	return Result{
		Recommendations: ranked,
		Source:          source,
		FavoriteGenres:  favorites,
	}
}

// gatherCandidates resolves the candidate source and fetches from it,
// falling through to trending when the preferred source comes up empty.
func (e *Engine) gatherCandidates(ctx context.Context, mood string, favorites []int, prefs models.Preferences) ([]models.Movie, string) {
	if moodGenres := e.moods.GenresFor(mood); mood != "" && len(moodGenres) > 0 {
		if candidates := e.catalog.Discover(ctx, moodGenres, prefs.Language, prefs.Region, 1); len(candidates) > 0 {
			return candidates, SourceMood
		}
	} else if len(favorites) > 0 {
		if candidates := e.catalog.Discover(ctx, favorites, prefs.Language, prefs.Region, 1); len(candidates) > 0 {
			return candidates, SourceAffinity
		}
	}
	return e.catalog.Trending(ctx, catalog.TrendingWeek, prefs.Language), SourceTrending
}

// score computes the hybrid score for one candidate:
//
//	popularityWeight * min(popularity/divisor, 1)
//	+ ratingWeight * (voteAverage / ratingScaleMax)
//	+ contentWeight * (0.6 * favoriteOverlap + 0.4 * genreCount/5)
func (e *Engine) score(m *models.Movie, favoriteSet map[int]struct{}) float64 {
	normPopularity := m.Popularity / e.cfg.PopularityDivisor
	if normPopularity > 1 {
		normPopularity = 1
	}
	normRating := m.VoteAverage / models.RatingScaleMax

	overlap := 0
	for _, genreID := range m.GenreIDs {
		if _, ok := favoriteSet[genreID]; ok {
			overlap++
		}
	}
	content := 0.6*float64(overlap) + 0.4*(float64(len(m.GenreIDs))/5.0)

	return e.cfg.PopularityWeight*normPopularity +
		e.cfg.RatingWeight*normRating +
		e.cfg.ContentWeight*content
}
