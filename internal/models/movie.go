// Movie Recommender - TMDb-backed Movie Recommendation Core
// Copyright 2026 S. Boyapati (SBoyapati13)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SBoyapati13/movie-recommender

// Package models defines the domain types shared across the application.
package models

import "time"

// Movie is a cataloged work with the metadata the ranking engine needs.
// A Movie is immutable once cached; a stale cache entry is refreshed by
// refetching the whole record, never by partial update.
type Movie struct {
	// ID is the TMDb movie identifier.
	ID int64 `json:"id"`

	// Title is the localized title.
	Title string `json:"title"`

	// OriginalTitle is the title in the original language.
	OriginalTitle string `json:"original_title,omitempty"`

	// OriginalLanguage is the ISO 639-1 language code of the original release.
	OriginalLanguage string `json:"original_language,omitempty"`

	// Year is the release year, 0 when unknown.
	Year int `json:"year,omitempty"`

	// Overview is the synopsis.
	Overview string `json:"overview,omitempty"`

	// PosterPath is the TMDb image path ("/abc.jpg"), empty when no poster.
	PosterPath string `json:"poster_path,omitempty"`

	// Popularity is TMDb's popularity score (>= 0, unbounded above).
	Popularity float64 `json:"popularity"`

	// VoteAverage is the average vote on a 0-10 scale.
	VoteAverage float64 `json:"vote_average"`

	// GenreIDs is the set of genre identifiers attached to the movie.
	GenreIDs []int `json:"genre_ids,omitempty"`

	// Region is the release region the record was fetched for.
	Region string `json:"region,omitempty"`
}

// HasGenre reports whether the movie carries the given genre id.
func (m *Movie) HasGenre(genreID int) bool {
	for _, id := range m.GenreIDs {
		if id == genreID {
			return true
		}
	}
	return false
}

// Rating is a single user's score for a movie. Scores use a continuous
// 0.5-10.0 scale; at most one rating exists per (user, movie) and the
// latest write wins.
type Rating struct {
	UserID  int64     `json:"user_id"`
	MovieID int64     `json:"movie_id"`
	Score   float64   `json:"score"`
	RatedAt time.Time `json:"rated_at"`
}

// RatingScaleMin and RatingScaleMax bound the canonical rating scale.
const (
	RatingScaleMin = 0.5
	RatingScaleMax = 10.0
)

// Preferences holds a user's locale preferences for catalog queries.
type Preferences struct {
	UserID   int64  `json:"user_id"`
	Language string `json:"language"`
	Region   string `json:"region"`
}

// Default locale applied when a user has no stored preferences.
const (
	DefaultLanguage = "en-US"
	DefaultRegion   = "US"
)

// DefaultPreferences returns the preferences applied when none are stored.
func DefaultPreferences(userID int64) Preferences {
	return Preferences{
		UserID:   userID,
		Language: DefaultLanguage,
		Region:   DefaultRegion,
	}
}

// Genre is a genre id with its display name.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
