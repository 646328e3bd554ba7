// Movie Recommender - TMDb-backed Movie Recommendation Core
// Copyright 2026 S. Boyapati (SBoyapati13)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SBoyapati13/movie-recommender

package recommend

import (
	"sort"
	"strings"
)

// moodGenreNames is the fixed mood to genre-name table. Names match the
// catalog's genre list; the table is resolved to genre ids once at
// startup by NewMoodIndex.
var moodGenreNames = map[string][]string{
	"happy":   {"Comedy", "Family", "Music"},
	"sad":     {"Drama", "Romance"},
	"excited": {"Action", "Adventure", "Thriller"},
	"scared":  {"Horror", "Mystery"},
	"curious": {"Documentary", "History"},
	"relaxed": {"Animation", "Fantasy"},
}

// GenreResolver maps a genre name to its catalog id.
type GenreResolver interface {
	GenreIDByName(name string) (int, bool)
}

// MoodIndex is an immutable mood to genre-id lookup table, built once at
// startup and injected into the engine.
type MoodIndex struct {
	genres map[string][]int
}

// NewMoodIndex resolves the mood table against the catalog's genre list.
// Genre names the resolver does not recognize are skipped, so a mood
// never maps to a zero id.
func NewMoodIndex(resolver GenreResolver) *MoodIndex {
	idx := &MoodIndex{genres: make(map[string][]int, len(moodGenreNames))}
	for mood, names := range moodGenreNames {
		ids := make([]int, 0, len(names))
		for _, name := range names {
			if id, ok := resolver.GenreIDByName(name); ok {
				ids = append(ids, id)
			}
		}
		sort.Ints(ids)
		idx.genres[mood] = ids
	}
	return idx
}

// GenresFor returns the genre ids for a mood, or nil for an unknown mood.
func (m *MoodIndex) GenresFor(mood string) []int {
	return m.genres[strings.ToLower(strings.TrimSpace(mood))]
}

// Moods lists the supported mood names in sorted order.
func (m *MoodIndex) Moods() []string {
	moods := make([]string, 0, len(m.genres))
	for mood := range m.genres {
		moods = append(moods, mood)
	}
	sort.Strings(moods)
	return moods
}
