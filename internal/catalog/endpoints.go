// Movie Recommender - TMDb-backed Movie Recommendation Core
// Copyright 2026 S. Boyapati (SBoyapati13)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SBoyapati13/movie-recommender

package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/SBoyapati13/movie-recommender/internal/metrics"
	"github.com/SBoyapati13/movie-recommender/internal/models"
	"github.com/SBoyapati13/movie-recommender/internal/models/tmdb"
)

// TrendingWindow selects the trending aggregation window.
type TrendingWindow string

// Valid trending windows.
const (
	TrendingDay  TrendingWindow = "day"
	TrendingWeek TrendingWindow = "week"
)

// Search finds movies by free-text query. An empty query is coerced to the
// permissive popular-discover default instead of failing.
//
// Remote failures degrade to an empty slice with a logged diagnostic;
// callers cannot distinguish "no results" from "results absent due to
// error" via control flow.
func (c *Client) Search(ctx context.Context, query, language, region string, page int) []models.Movie {
	if strings.TrimSpace(query) == "" {
		return c.Discover(ctx, nil, language, region, page)
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("language", language)
	params.Set("region", region)
	params.Set("page", strconv.Itoa(normalizePage(page)))
	params.Set("include_adult", "false")

	return c.fetchList(ctx, "/search/movie", params)
}

// Details fetches a single movie with expanded fields. Returns nil when the
// movie is absent or the catalog cannot be reached.
func (c *Client) Details(ctx context.Context, id int64, language string) *models.Movie {
	params := url.Values{}
	params.Set("language", language)

	endpoint := fmt.Sprintf("/movie/%d", id)
	var details tmdb.MovieDetails
	if err := c.get(ctx, endpoint, params, &details); err != nil {
		c.logDegraded(endpoint, err)
		return nil
	}
	metrics.CatalogRequestsTotal.WithLabelValues(endpoint, "ok").Inc()

	movie := movieFromDetails(&details)
	return &movie
}

// Recommendations returns the catalog's own recommendations for a movie.
func (c *Client) Recommendations(ctx context.Context, id int64, language string) []models.Movie {
	params := url.Values{}
	params.Set("language", language)

	return c.fetchList(ctx, fmt.Sprintf("/movie/%d/recommendations", id), params)
}

// Discover lists movies filtered by genre, sorted by descending popularity.
// An empty genre set yields the unfiltered popular listing.
func (c *Client) Discover(ctx context.Context, genreIDs []int, language, region string, page int) []models.Movie {
	params := url.Values{}
	params.Set("language", language)
	params.Set("region", region)
	params.Set("sort_by", "popularity.desc")
	params.Set("page", strconv.Itoa(normalizePage(page)))
	if len(genreIDs) > 0 {
		params.Set("with_genres", joinGenreIDs(genreIDs))
	}

	return c.fetchList(ctx, "/discover/movie", params)
}

// Trending returns trending movies for the given window.
func (c *Client) Trending(ctx context.Context, window TrendingWindow, language string) []models.Movie {
	if window != TrendingDay {
		window = TrendingWeek
	}
	params := url.Values{}
	params.Set("language", language)

	return c.fetchList(ctx, fmt.Sprintf("/trending/movie/%s", window), params)
}

// Poster fetches poster bytes from the image CDN for the given path and
// size rendition (e.g. "w185", "w342"). Unlike the list endpoints this
// returns the error so the asset layer can count a failed re-fetch.
func (c *Client) Poster(ctx context.Context, path, size string) ([]byte, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty poster path", ErrNotFound)
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	reqURL := fmt.Sprintf("%s/%s%s", c.imageBaseURL, size, path)
	resp, err := c.doRequest(ctx, reqURL)
	if err != nil {
		return nil, err
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: poster %s returned HTTP %d", ErrNotFound, path, resp.StatusCode)
	}

	data, err := readAllBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read poster body: %w", err)
	}
	return data, nil
}

// fetchList performs a list request and converts the results, degrading to
// an empty slice on any remote failure.
func (c *Client) fetchList(ctx context.Context, endpoint string, params url.Values) []models.Movie {
	var list tmdb.MovieList
	if err := c.get(ctx, endpoint, params, &list); err != nil {
		c.logDegraded(endpoint, err)
		return []models.Movie{}
	}

	outcome := "ok"
	if len(list.Results) == 0 {
		outcome = "empty"
	}
	metrics.CatalogRequestsTotal.WithLabelValues(endpoint, outcome).Inc()

	return moviesFromList(&list, params.Get("region"))
}

// logDegraded records the diagnostic for a request that degraded to an
// absent/empty result.
func (c *Client) logDegraded(endpoint string, err error) {
	outcome := "error"
	switch {
	case errors.Is(err, ErrRateLimited):
		outcome = "rate_limited"
	case errors.Is(err, ErrNotFound):
		outcome = "not_found"
	}
	metrics.CatalogRequestsTotal.WithLabelValues(endpoint, outcome).Inc()
	c.logger.Warn().
		Str("endpoint", endpoint).
		Str("outcome", outcome).
		Err(err).
		Msg("catalog request degraded to empty result")
}

// joinGenreIDs renders genre ids as TMDb's comma-separated filter value.
func joinGenreIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}

// normalizePage clamps the page number to TMDb's valid range.
func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}
