// Movie Recommender - TMDb-backed Movie Recommendation Core
// Copyright 2026 S. Boyapati (SBoyapati13)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SBoyapati13/movie-recommender

package catalog

import (
	"io"
	"net/http"
	"strconv"

	"github.com/SBoyapati13/movie-recommender/internal/models"
	"github.com/SBoyapati13/movie-recommender/internal/models/tmdb"
)

// moviesFromList converts a list response into domain movies.
func moviesFromList(list *tmdb.MovieList, region string) []models.Movie {
	movies := make([]models.Movie, 0, len(list.Results))
	for i := range list.Results {
		movies = append(movies, movieFromResult(&list.Results[i], region))
	}
	return movies
}

// movieFromResult converts a list-endpoint entry into a domain movie.
func movieFromResult(r *tmdb.MovieResult, region string) models.Movie {
	return models.Movie{
		ID:               r.ID,
		Title:            r.Title,
		OriginalTitle:    r.OriginalTitle,
		OriginalLanguage: r.OriginalLanguage,
		Year:             yearFromReleaseDate(r.ReleaseDate),
		Overview:         r.Overview,
		PosterPath:       r.PosterPath,
		Popularity:       r.Popularity,
		VoteAverage:      r.VoteAverage,
		GenreIDs:         r.GenreIDs,
		Region:           region,
	}
}

// movieFromDetails converts a details response. The details endpoint
// expands genres into objects, so the flat id set is rebuilt here.
func movieFromDetails(d *tmdb.MovieDetails) models.Movie {
	genreIDs := make([]int, 0, len(d.Genres))
	for _, g := range d.Genres {
		genreIDs = append(genreIDs, g.ID)
	}

	return models.Movie{
		ID:               d.ID,
		Title:            d.Title,
		OriginalTitle:    d.OriginalTitle,
		OriginalLanguage: d.OriginalLanguage,
		Year:             yearFromReleaseDate(d.ReleaseDate),
		Overview:         d.Overview,
		PosterPath:       d.PosterPath,
		Popularity:       d.Popularity,
		VoteAverage:      d.VoteAverage,
		GenreIDs:         genreIDs,
	}
}

// yearFromReleaseDate extracts the year from a "YYYY-MM-DD" release date.
// Returns 0 for empty or malformed dates.
func yearFromReleaseDate(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}

// readAllBody reads the full response body. Poster payloads are small
// enough (a few hundred KB) that buffering them whole is fine.
func readAllBody(resp *http.Response) ([]byte, error) {
	return io.ReadAll(resp.Body)
}
