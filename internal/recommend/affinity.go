// Movie Recommender - TMDb-backed Movie Recommendation Core
// Copyright 2026 S. Boyapati (SBoyapati13)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SBoyapati13/movie-recommender

package recommend

import "sort"

// TopGenres derives a user's favorite genres from their rated movies.
//
// For each rating at or above threshold, the rating's score is added to
// every genre of the rated movie. Genres are then ordered by accumulated
// score descending, ties broken by genre id ascending so the result is
// deterministic, and the top N returned. A movie with no recognized
// genres contributes nothing.
//
// Returns nil when no rating meets the threshold; callers fall back to a
// non-personalized candidate source.
func TopGenres(rated []RatedMovie, threshold float64, topN int) []int {
	if topN <= 0 {
		return nil
	}

	weights := make(map[int]float64)
	for _, rm := range rated {
		if rm.Score < threshold {
			continue
		}
		for _, genreID := range rm.GenreIDs {
			weights[genreID] += rm.Score
		}
	}
	if len(weights) == 0 {
		return nil
	}

	genres := make([]int, 0, len(weights))
	for genreID := range weights {
		genres = append(genres, genreID)
	}
	sort.Slice(genres, func(i, j int) bool {
		if weights[genres[i]] != weights[genres[j]] {
			return weights[genres[i]] > weights[genres[j]]
		}
		return genres[i] < genres[j]
	})

	if len(genres) > topN {
		genres = genres[:topN]
	}
	return genres
}
