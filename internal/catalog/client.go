// Movie Recommender - TMDb-backed Movie Recommendation Core
// Copyright 2026 S. Boyapati (SBoyapati13)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SBoyapati13/movie-recommender

/*
client.go - Core TMDb API Client

This file provides the Client struct and HTTP communication layer for the
TMDb v3 API.

Client Features:
  - HTTP client with configurable timeout (default 10s)
  - API key and locale parameters injected on every call
  - Circuit breaker protection for the catalog origin
  - Client-side request rate limiting
  - Automatic HTTP 429 handling honoring Retry-After
  - Exponential backoff on 5xx and transport failures

Resilience Mechanisms:
  - Rate limit (429): wait at least the Retry-After hint, retry within the
    attempt bound, then degrade to an empty result
  - Server errors (5xx) and transport failures: exponential backoff
    (1s, 2s, 4s) within the same bound, then degrade to an empty result
  - Other 4xx: non-retryable, reported as absent/empty
  - All degradation is logged; callers see empty results, never faults

Related Files:
  - endpoints.go: typed endpoint methods (search, discover, trending, ...)
  - genres.go: one-time genre table load with embedded fallback
  - convert.go: wire DTO to domain model conversion
*/

//nolint:staticcheck // File documentation, not package doc
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/SBoyapati13/movie-recommender/internal/config"
	"github.com/SBoyapati13/movie-recommender/internal/metrics"
)

// maxErrorBodySize limits how much of an error response body is read for
// diagnostics, preventing unbounded allocation on large error pages.
const maxErrorBodySize = 64 * 1024

// Sentinel errors for the remote failure taxonomy. They stay inside this
// package: public list methods translate them into empty results plus a
// logged diagnostic.
var (
	// ErrRateLimited is returned when the attempt bound is exhausted on 429s.
	ErrRateLimited = errors.New("catalog: rate limit exceeded")

	// ErrUnavailable is returned when the attempt bound is exhausted on
	// server or transport failures, or when the circuit breaker is open.
	ErrUnavailable = errors.New("catalog: service unavailable")

	// ErrNotFound is returned for non-retryable 4xx responses.
	ErrNotFound = errors.New("catalog: not found")
)

// Client talks to the TMDb v3 API. It is safe for concurrent use; each
// request creates its own *http.Request and all shared state is immutable
// after construction.
type Client struct {
	baseURL      string
	imageBaseURL string
	apiKey       string

	httpClient     *http.Client
	maxRetries     int
	retryBaseDelay time.Duration

	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[*http.Response]
	logger  zerolog.Logger

	// genres is the id->name table loaded once at startup. Read-only after
	// LoadGenres; see genres.go.
	genres map[int]string
}

// NewClient creates a catalog client from configuration. The genre table is
// not loaded here; call LoadGenres once at startup.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewClient(cfg *config.TMDBConfig, logger zerolog.Logger) *Client {
	c := &Client{
		baseURL:        cfg.BaseURL,
		imageBaseURL:   cfg.ImageBaseURL,
		apiKey:         cfg.APIKey,
		httpClient:     &http.Client{Timeout: cfg.Timeout},
		maxRetries:     cfg.MaxRetries,
		retryBaseDelay: cfg.RetryBaseDelay,
		limiter:        rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.RequestBurst),
		logger:         logger.With().Str("component", "catalog").Logger(),
		genres:         fallbackGenres(),
	}

	c.breaker = gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:    "tmdb",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if to == gobreaker.StateOpen {
				metrics.CatalogBreakerState.Set(1)
			} else {
				metrics.CatalogBreakerState.Set(0)
			}
			c.logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
		},
	})

	return c
}

// doRequest performs a GET with rate limiting, circuit breaking, 429
// handling, and bounded retry with exponential backoff.
//
// The attempt bound counts total requests: with maxRetries=3, at most three
// requests hit the wire before the call degrades. Retry-After hints extend
// the wait but never shrink it below the hint value.
func (c *Client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	var lastErr error

	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		resp, err := c.breaker.Execute(func() (*http.Response, error) {
			req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
			if reqErr != nil {
				return nil, reqErr
			}
			httpResp, doErr := c.httpClient.Do(req)
			if doErr != nil {
				return nil, doErr
			}
			// 5xx counts as a breaker failure; 4xx (including 429) does not
			// open the breaker since the origin is still responding.
			if httpResp.StatusCode >= http.StatusInternalServerError {
				drainAndClose(httpResp.Body)
				return nil, fmt.Errorf("server error: HTTP %d", httpResp.StatusCode)
			}
			return httpResp, nil
		})

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: circuit breaker open", ErrUnavailable)
		}

		if err != nil {
			// Transport failure or 5xx: exponential backoff within the bound.
			lastErr = err
			metrics.CatalogRetriesTotal.WithLabelValues("server_error").Inc()
			if attempt == c.maxRetries {
				break
			}
			if waitErr := sleepCtx(ctx, c.backoffDelay(attempt)); waitErr != nil {
				return nil, waitErr
			}
			continue
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		// Rate limited: honor Retry-After, retry within the bound.
		hint := retryAfterHint(resp)
		drainAndClose(resp.Body)
		metrics.CatalogRetriesTotal.WithLabelValues("rate_limit").Inc()

		if attempt == c.maxRetries {
			lastErr = fmt.Errorf("%w: %d attempts", ErrRateLimited, c.maxRetries)
			break
		}

		delay := c.backoffDelay(attempt)
		if hint > delay {
			delay = hint
		}
		c.logger.Debug().
			Dur("delay", delay).
			Int("attempt", attempt).
			Msg("rate limited, backing off")
		if waitErr := sleepCtx(ctx, delay); waitErr != nil {
			return nil, waitErr
		}
	}

	if lastErr == nil {
		lastErr = ErrUnavailable
	}
	if !errors.Is(lastErr, ErrRateLimited) && !errors.Is(lastErr, ErrUnavailable) {
		lastErr = fmt.Errorf("%w: %v", ErrUnavailable, lastErr)
	}
	return nil, lastErr
}

// backoffDelay returns the exponential backoff delay for the given attempt
// (1-based): base, 2*base, 4*base, ...
func (c *Client) backoffDelay(attempt int) time.Duration {
	return c.retryBaseDelay * time.Duration(1<<uint(attempt-1))
}

// get performs a request against an API endpoint and decodes the JSON body
// into result. params must not contain api_key; it is injected here.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, result interface{}) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)

	start := time.Now()
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, endpoint, params.Encode())

	resp, err := c.doRequest(ctx, reqURL)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", endpoint, err)
	}
	defer drainAndClose(resp.Body)
	metrics.CatalogRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

	if resp.StatusCode != http.StatusOK {
		body := readBodyForError(resp.Body)
		return fmt.Errorf("%w: %s returned HTTP %d: %s", ErrNotFound, endpoint, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}
	return nil
}

// retryAfterHint parses the Retry-After header as integer seconds.
// Returns 0 when absent or malformed.
func retryAfterHint(resp *http.Response) time.Duration {
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return 0
	}
	seconds, err := strconv.Atoi(v)
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

// sleepCtx waits for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// drainAndClose discards any remaining body bytes so the underlying
// connection can be reused, then closes the body.
func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, maxErrorBodySize))
	_ = body.Close()
}

// readBodyForError reads up to maxErrorBodySize of the response body for
// diagnostics. Returns a placeholder when reading fails.
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	return body
}
