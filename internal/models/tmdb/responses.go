// Movie Recommender - TMDb-backed Movie Recommendation Core
// Copyright 2026 S. Boyapati (SBoyapati13)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SBoyapati13/movie-recommender

// Package tmdb defines response DTOs for the TMDb v3 API.
//
// Only the fields the application consumes are declared; unknown fields are
// ignored during decoding. Conversion to domain types happens in the catalog
// package so the rest of the application never touches wire shapes.
package tmdb

// MovieResult is a single movie entry as returned by list endpoints
// (search, discover, trending, recommendations).
type MovieResult struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title"`
	OriginalTitle    string  `json:"original_title"`
	OriginalLanguage string  `json:"original_language"`
	ReleaseDate      string  `json:"release_date"`
	Overview         string  `json:"overview"`
	PosterPath       string  `json:"poster_path"`
	Popularity       float64 `json:"popularity"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count"`
	GenreIDs         []int   `json:"genre_ids"`
}

// MovieList is the paging wrapper around list endpoints.
type MovieList struct {
	Page         int           `json:"page"`
	Results      []MovieResult `json:"results"`
	TotalPages   int           `json:"total_pages"`
	TotalResults int           `json:"total_results"`
}

// Genre is a genre entry from /genre/movie/list.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// GenreList is the response of /genre/movie/list.
type GenreList struct {
	Genres []Genre `json:"genres"`
}

// MovieDetails is the response of /movie/{id}. The details endpoint expands
// genres into objects instead of the flat genre_ids of list endpoints.
type MovieDetails struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title"`
	OriginalTitle    string  `json:"original_title"`
	OriginalLanguage string  `json:"original_language"`
	ReleaseDate      string  `json:"release_date"`
	Overview         string  `json:"overview"`
	PosterPath       string  `json:"poster_path"`
	Popularity       float64 `json:"popularity"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count"`
	Runtime          int     `json:"runtime"`
	Genres           []Genre `json:"genres"`
}

// Status is TMDb's error envelope for non-2xx responses.
type Status struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
}
