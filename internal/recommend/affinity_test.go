// Movie Recommender - TMDb-backed Movie Recommendation Core
// Copyright 2026 S. Boyapati (SBoyapati13)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SBoyapati13/movie-recommender

package recommend

import (
	"reflect"
	"testing"
)

func TestTopGenres(t *testing.T) {
	tests := []struct {
		name      string
		rated     []RatedMovie
		threshold float64
		topN      int
		want      []int
	}{
		{
			name: "accumulates score per genre",
			rated: []RatedMovie{
				{Score: 9, GenreIDs: []int{28, 12}},
				{Score: 8, GenreIDs: []int{28}},
				{Score: 7, GenreIDs: []int{18}},
			},
			threshold: 7,
			topN:      3,
			want:      []int{28, 12, 18}, // 28=17, 12=9, 18=7
		},
		{
			name: "ratings below threshold contribute nothing",
			rated: []RatedMovie{
				{Score: 9, GenreIDs: []int{35}},
				{Score: 6.5, GenreIDs: []int{27, 53}},
			},
			threshold: 7,
			topN:      3,
			want:      []int{35},
		},
		{
			name: "ties broken by genre id ascending",
			rated: []RatedMovie{
				{Score: 8, GenreIDs: []int{53, 12, 35}},
			},
			threshold: 7,
			topN:      2,
			want:      []int{12, 35},
		},
		{
			name: "truncates to top N",
			rated: []RatedMovie{
				{Score: 10, GenreIDs: []int{28}},
				{Score: 9, GenreIDs: []int{12}},
				{Score: 8, GenreIDs: []int{35}},
				{Score: 7.5, GenreIDs: []int{18}},
			},
			threshold: 7,
			topN:      3,
			want:      []int{28, 12, 35},
		},
		{
			name: "no liked ratings returns nil",
			rated: []RatedMovie{
				{Score: 5, GenreIDs: []int{28}},
			},
			threshold: 7,
			topN:      3,
			want:      nil,
		},
		{
			name: "movie without genres contributes nothing",
			rated: []RatedMovie{
				{Score: 9, GenreIDs: nil},
			},
			threshold: 7,
			topN:      3,
			want:      nil,
		},
		{
			name:      "empty history returns nil",
			rated:     nil,
			threshold: 7,
			topN:      3,
			want:      nil,
		},
		{
			name: "non-positive topN returns nil",
			rated: []RatedMovie{
				{Score: 9, GenreIDs: []int{28}},
			},
			threshold: 7,
			topN:      0,
			want:      nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TopGenres(tt.rated, tt.threshold, tt.topN)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("TopGenres() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTopGenresDeterministic(t *testing.T) {
	rated := []RatedMovie{
		{Score: 8, GenreIDs: []int{878, 14, 12, 28, 16}},
		{Score: 8, GenreIDs: []int{99, 36}},
	}
	first := TopGenres(rated, 7, 3)
	for i := 0; i < 50; i++ {
		if got := TopGenres(rated, 7, 3); !reflect.DeepEqual(got, first) {
			t.Fatalf("iteration %d: got %v, want %v", i, got, first)
		}
	}
}
