// Movie Recommender - TMDb-backed Movie Recommendation Core
// Copyright 2026 S. Boyapati (SBoyapati13)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SBoyapati13/movie-recommender

package catalog

import (
	"context"
	"net/url"
	"sort"
	"strings"

	"github.com/SBoyapati13/movie-recommender/internal/models"
	"github.com/SBoyapati13/movie-recommender/internal/models/tmdb"
)

// LoadGenres fetches the genre id->name table once at startup. On failure
// the embedded fallback table stays in place so genre filtering and display
// degrade gracefully instead of failing.
//
// LoadGenres is not safe to call concurrently with other client methods;
// call it during startup before the client is shared.
func (c *Client) LoadGenres(ctx context.Context, language string) {
	params := url.Values{}
	params.Set("language", language)

	var list tmdb.GenreList
	if err := c.get(ctx, "/genre/movie/list", params, &list); err != nil {
		c.logger.Warn().Err(err).Msg("genre table load failed, using embedded fallback")
		return
	}
	if len(list.Genres) == 0 {
		c.logger.Warn().Msg("genre table response empty, using embedded fallback")
		return
	}

	genres := make(map[int]string, len(list.Genres))
	for _, g := range list.Genres {
		genres[g.ID] = g.Name
	}
	c.genres = genres
	c.logger.Info().Int("genres", len(genres)).Msg("genre table loaded")
}

// GenreName returns the display name for a genre id, or "" when unknown.
func (c *Client) GenreName(id int) string {
	return c.genres[id]
}

// GenreIDByName resolves a genre display name (case-insensitive) to its id.
// The second return is false when the name is unknown.
func (c *Client) GenreIDByName(name string) (int, bool) {
	for id, n := range c.genres {
		if strings.EqualFold(n, name) {
			return id, true
		}
	}
	return 0, false
}

// Genres returns the genre table sorted by id.
func (c *Client) Genres() []models.Genre {
	genres := make([]models.Genre, 0, len(c.genres))
	for id, name := range c.genres {
		genres = append(genres, models.Genre{ID: id, Name: name})
	}
	sort.Slice(genres, func(i, j int) bool { return genres[i].ID < genres[j].ID })
	return genres
}

// fallbackGenres is the embedded minimal genre table used when the startup
// load fails. IDs follow TMDb's published movie genre list.
func fallbackGenres() map[int]string {
	return map[int]string{
		28:    "Action",
		12:    "Adventure",
		16:    "Animation",
		35:    "Comedy",
		80:    "Crime",
		99:    "Documentary",
		18:    "Drama",
		10751: "Family",
		14:    "Fantasy",
		36:    "History",
		27:    "Horror",
		10402: "Music",
		9648:  "Mystery",
		10749: "Romance",
		878:   "Science Fiction",
		53:    "Thriller",
		10752: "War",
		37:    "Western",
	}
}
