// Movie Recommender - TMDb-backed Movie Recommendation Core
// Copyright 2026 S. Boyapati (SBoyapati13)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SBoyapati13/movie-recommender

// Package recommend derives genre affinity from rating history and ranks
// catalog candidates with a deterministic, explainable scoring heuristic.
package recommend

import (
	"context"

	"github.com/SBoyapati13/movie-recommender/internal/catalog"
	"github.com/SBoyapati13/movie-recommender/internal/models"
)

// RatedMovie is the slice of a rating the affinity model needs: the score
// the user gave and the genres of the rated movie.
type RatedMovie struct {
	Score    float64
	GenreIDs []int
}

// Request describes a single recommendation call.
type Request struct {
	UserID int64
	// Mood is an optional mood filter name. When set it overrides
	// personalized affinity for this request.
	Mood  string `validate:"omitempty,oneof=happy sad excited scared curious relaxed"`
	Limit int    `validate:"omitempty,gte=1,lte=50"`
}

// Recommendation is a ranked candidate with its score and the reason the
// candidate set was chosen.
type Recommendation struct {
	Movie models.Movie `json:"movie"`
	Score float64      `json:"score"`
}

// Result is the outcome of a recommendation call.
type Result struct {
	Recommendations []Recommendation `json:"recommendations"`
	// Source names the candidate source that was used: "mood",
	// "affinity", or "trending".
	Source string `json:"source"`
	// FavoriteGenres echoes the affinity used for scoring, empty for a
	// user with no liked history.
	FavoriteGenres []int `json:"favorite_genres,omitempty"`
}

// Candidate sources reported in Result.Source and in metrics.
const (
	SourceMood     = "mood"
	SourceAffinity = "affinity"
	SourceTrending = "trending"
)

// Catalog is the slice of the catalog client the engine consumes. List
// methods degrade to empty slices on remote failure.
type Catalog interface {
	Discover(ctx context.Context, genreIDs []int, language, region string, page int) []models.Movie
	Trending(ctx context.Context, window catalog.TrendingWindow, language string) []models.Movie
}

// History is the slice of the local store the engine consumes.
type History interface {
	RatingsFor(ctx context.Context, userID int64) map[int64]float64
	FavoriteGenres(ctx context.Context, userID int64, threshold float64, topN int) []int
	Preferences(ctx context.Context, userID int64) models.Preferences
}
