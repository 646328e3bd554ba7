// Movie Recommender - TMDb-backed Movie Recommendation Core
// Copyright 2026 S. Boyapati (SBoyapati13)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SBoyapati13/movie-recommender

package api

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/SBoyapati13/movie-recommender/internal/assets"
	"github.com/SBoyapati13/movie-recommender/internal/auth"
	"github.com/SBoyapati13/movie-recommender/internal/catalog"
	"github.com/SBoyapati13/movie-recommender/internal/config"
	"github.com/SBoyapati13/movie-recommender/internal/models"
	"github.com/SBoyapati13/movie-recommender/internal/recommend"
	"github.com/SBoyapati13/movie-recommender/internal/store"
)

// tmdbStub serves canned responses for the endpoints the tests touch.
func tmdbStub(t *testing.T) *httptest.Server {
	t.Helper()

	listBody := `{
		"page": 1,
		"results": [
			{"id": 603, "title": "The Matrix", "release_date": "1999-03-31",
			 "poster_path": "/matrix.jpg", "popularity": 85.5, "vote_average": 8.2,
			 "genre_ids": [28, 878]},
			{"id": 604, "title": "The Matrix Reloaded", "release_date": "2003-05-15",
			 "poster_path": "/reloaded.jpg", "popularity": 60.1, "vote_average": 7.0,
			 "genre_ids": [28, 53]}
		],
		"total_pages": 1, "total_results": 2
	}`

	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.RGBA{G: 255, A: 255})
	var poster bytes.Buffer
	if err := png.Encode(&poster, img); err != nil {
		t.Fatalf("failed to encode poster: %v", err)
	}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/img/"):
			_, _ = w.Write(poster.Bytes())
		case r.URL.Path == "/genre/movie/list":
			_, _ = w.Write([]byte(`{"genres": [{"id": 28, "name": "Action"}, {"id": 35, "name": "Comedy"},
				{"id": 53, "name": "Thriller"}, {"id": 878, "name": "Science Fiction"},
				{"id": 10751, "name": "Family"}, {"id": 10402, "name": "Music"}]}`))
		case r.URL.Path == "/movie/603":
			_, _ = w.Write([]byte(`{"id": 603, "title": "The Matrix", "release_date": "1999-03-31",
				"poster_path": "/matrix.jpg", "popularity": 85.5, "vote_average": 8.2,
				"genres": [{"id": 28, "name": "Action"}, {"id": 878, "name": "Science Fiction"}]}`))
		case strings.HasPrefix(r.URL.Path, "/movie/999"):
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"status_code": 34, "status_message": "not found"}`))
		default:
			// search, discover, trending, recommendations
			_, _ = w.Write([]byte(listBody))
		}
	}))
}

func testConfig(tmdbURL string, authEnabled bool) *config.Config {
	return &config.Config{
		TMDB: config.TMDBConfig{
			APIKey:            "test-key",
			BaseURL:           tmdbURL,
			ImageBaseURL:      tmdbURL + "/img",
			Timeout:           5 * time.Second,
			MaxRetries:        3,
			RetryBaseDelay:    time.Millisecond,
			RequestsPerSecond: 10000,
			RequestBurst:      10000,
		},
		Database: config.DatabaseConfig{
			Path:                ":memory:",
			CacheTTL:            24 * time.Hour,
			PreferenceCacheSize: 16,
		},
		Assets: config.AssetsConfig{InMemory: true},
		Recommend: config.RecConfig{
			LikedThreshold:    7.0,
			FavoriteGenres:    3,
			DefaultLimit:      10,
			PopularityDivisor: 100,
			PopularityWeight:  0.4,
			RatingWeight:      0.3,
			ContentWeight:     0.3,
		},
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 0, Timeout: 10 * time.Second},
		Security: config.SecurityConfig{
			AuthEnabled:     authEnabled,
			JWTSecret:       "test-secret-for-signing-tokens",
			SessionTTL:      time.Hour,
			RateLimitReqs:   10000,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
	}
}

// newTestAPI assembles the full stack against a TMDb stub and returns the
// HTTP handler.
func newTestAPI(t *testing.T, authEnabled bool) http.Handler {
	t.Helper()
	logger := zerolog.Nop()

	stub := tmdbStub(t)
	t.Cleanup(stub.Close)

	cfg := testConfig(stub.URL, authEnabled)

	st, err := store.New(&cfg.Database, logger)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	assetCache, err := assets.NewCache(&cfg.Assets, logger)
	if err != nil {
		t.Fatalf("failed to open asset cache: %v", err)
	}
	t.Cleanup(func() { _ = assetCache.Close() })

	client := catalog.NewClient(&cfg.TMDB, logger)
	client.LoadGenres(t.Context(), models.DefaultLanguage)

	moods := recommend.NewMoodIndex(client)
	engine := recommend.NewEngine(&cfg.Recommend, client, st, moods, logger)
	posters := assets.NewPosterService(assetCache, client, logger)

	var authService *auth.Service
	if authEnabled {
		authService, err = auth.NewService(&cfg.Security, st, logger)
		if err != nil {
			t.Fatalf("failed to create auth service: %v", err)
		}
	}

	handler := NewHandler(client, st, engine, posters, moods, logger)
	return NewServer(cfg, handler, authService, logger).Routes()
}

func doJSON(t *testing.T, h http.Handler, method, target, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	h := newTestAPI(t, false)
	rec := doJSON(t, h, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestSearchEndpoint(t *testing.T) {
	h := newTestAPI(t, false)
	rec := doJSON(t, h, http.MethodGet, "/api/v1/search?query=matrix", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var payload struct {
		Results []models.Movie `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if len(payload.Results) != 2 || payload.Results[0].ID != 603 {
		t.Errorf("unexpected results: %+v", payload.Results)
	}
}

func TestMovieEndpoint(t *testing.T) {
	h := newTestAPI(t, false)

	rec := doJSON(t, h, http.MethodGet, "/api/v1/movies/603", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var movie models.Movie
	if err := json.Unmarshal(rec.Body.Bytes(), &movie); err != nil {
		t.Fatal(err)
	}
	if movie.ID != 603 || movie.Year != 1999 {
		t.Errorf("unexpected movie: %+v", movie)
	}

	if rec := doJSON(t, h, http.MethodGet, "/api/v1/movies/999999", "", nil); rec.Code != http.StatusNotFound {
		t.Errorf("missing movie status = %d, want 404", rec.Code)
	}
	if rec := doJSON(t, h, http.MethodGet, "/api/v1/movies/abc", "", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("bad id status = %d, want 400", rec.Code)
	}
}

func TestRecommendEndpoint(t *testing.T) {
	h := newTestAPI(t, false)

	rec := doJSON(t, h, http.MethodGet, "/api/v1/recommendations", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var result recommend.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatal(err)
	}
	// No rating history: trending fallback.
	if result.Source != recommend.SourceTrending {
		t.Errorf("source = %q, want trending for new user", result.Source)
	}
	if len(result.Recommendations) != 2 {
		t.Errorf("got %d recommendations, want 2", len(result.Recommendations))
	}
}

func TestRecommendMoodValidation(t *testing.T) {
	h := newTestAPI(t, false)

	if rec := doJSON(t, h, http.MethodGet, "/api/v1/recommendations?mood=grumpy", "", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown mood status = %d, want 400", rec.Code)
	}
	if rec := doJSON(t, h, http.MethodGet, "/api/v1/recommendations?mood=happy", "", nil); rec.Code != http.StatusOK {
		t.Errorf("known mood status = %d, want 200", rec.Code)
	}
	if rec := doJSON(t, h, http.MethodGet, "/api/v1/recommendations?limit=999", "", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("oversized limit status = %d, want 400", rec.Code)
	}
}

func TestRatingFlow(t *testing.T) {
	h := newTestAPI(t, false)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/ratings", "", map[string]interface{}{
		"movie_id": 603, "score": 8.5,
	})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodGet, "/api/v1/ratings", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var payload struct {
		Ratings map[string]float64 `json:"ratings"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatal(err)
	}
	if payload.Ratings["603"] != 8.5 {
		t.Errorf("ratings = %v, want 603 -> 8.5", payload.Ratings)
	}

	// Rated movies disappear from recommendations.
	rec = doJSON(t, h, http.MethodGet, "/api/v1/recommendations", "", nil)
	var result recommend.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatal(err)
	}
	for _, r := range result.Recommendations {
		if r.Movie.ID == 603 {
			t.Error("rated movie 603 still recommended")
		}
	}
}

func TestRatingValidation(t *testing.T) {
	h := newTestAPI(t, false)

	tests := []struct {
		name string
		body interface{}
		want int
	}{
		{"score above scale", map[string]interface{}{"movie_id": 603, "score": 11.0}, http.StatusBadRequest},
		{"score below scale", map[string]interface{}{"movie_id": 603, "score": 0.2}, http.StatusBadRequest},
		{"missing movie id", map[string]interface{}{"score": 8.0}, http.StatusBadRequest},
		{"unknown field", map[string]interface{}{"movie_id": 603, "score": 8.0, "extra": true}, http.StatusBadRequest},
		{"unknown movie", map[string]interface{}{"movie_id": 999999, "score": 8.0}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := doJSON(t, h, http.MethodPost, "/api/v1/ratings", "", tt.body); rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestPreferencesFlow(t *testing.T) {
	h := newTestAPI(t, false)

	rec := doJSON(t, h, http.MethodGet, "/api/v1/preferences", "", nil)
	var prefs models.Preferences
	if err := json.Unmarshal(rec.Body.Bytes(), &prefs); err != nil {
		t.Fatal(err)
	}
	if prefs.Language != models.DefaultLanguage {
		t.Errorf("default language = %q, want %q", prefs.Language, models.DefaultLanguage)
	}

	rec = doJSON(t, h, http.MethodPut, "/api/v1/preferences", "", map[string]interface{}{
		"language": "de-DE", "region": "DE",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodGet, "/api/v1/preferences", "", nil)
	if err := json.Unmarshal(rec.Body.Bytes(), &prefs); err != nil {
		t.Fatal(err)
	}
	if prefs.Language != "de-DE" || prefs.Region != "DE" {
		t.Errorf("got %+v after update", prefs)
	}

	if rec := doJSON(t, h, http.MethodPut, "/api/v1/preferences", "", map[string]interface{}{
		"region": "DEU",
	}); rec.Code != http.StatusBadRequest {
		t.Errorf("three-letter region status = %d, want 400", rec.Code)
	}
}

func TestPosterEndpoint(t *testing.T) {
	h := newTestAPI(t, false)

	rec := doJSON(t, h, http.MethodGet, "/api/v1/posters/w185/matrix.jpg", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "image/png" {
		t.Errorf("content type = %q, want image/png", got)
	}
}

func TestGenresAndMoodsEndpoints(t *testing.T) {
	h := newTestAPI(t, false)

	rec := doJSON(t, h, http.MethodGet, "/api/v1/genres", "", nil)
	var genres struct {
		Genres []models.Genre `json:"genres"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &genres); err != nil {
		t.Fatal(err)
	}
	if len(genres.Genres) == 0 {
		t.Error("no genres returned")
	}

	rec = doJSON(t, h, http.MethodGet, "/api/v1/moods", "", nil)
	var moods struct {
		Moods []string `json:"moods"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &moods); err != nil {
		t.Fatal(err)
	}
	if len(moods.Moods) != 6 {
		t.Errorf("got %d moods, want 6", len(moods.Moods))
	}
}

func TestAuthRequiredWhenEnabled(t *testing.T) {
	h := newTestAPI(t, true)

	if rec := doJSON(t, h, http.MethodGet, "/api/v1/search?query=matrix", "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated status = %d, want 401", rec.Code)
	}
	if rec := doJSON(t, h, http.MethodGet, "/api/v1/search?query=matrix", "garbage-token", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token status = %d, want 401", rec.Code)
	}

	rec := doJSON(t, h, http.MethodPost, "/api/v1/auth/register", "", map[string]interface{}{
		"username": "alice", "password": "correct horse battery",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"username": "alice", "password": "correct horse battery",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var login struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &login); err != nil {
		t.Fatal(err)
	}

	if rec := doJSON(t, h, http.MethodGet, "/api/v1/search?query=matrix", login.Token, nil); rec.Code != http.StatusOK {
		t.Errorf("authenticated status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
}

func TestAuthEndpointValidation(t *testing.T) {
	h := newTestAPI(t, true)

	tests := []struct {
		name string
		body interface{}
	}{
		{"short username", map[string]interface{}{"username": "ab", "password": "long enough pass"}},
		{"short password", map[string]interface{}{"username": "alice", "password": "short"}},
		{"non-alphanumeric username", map[string]interface{}{"username": "al ice!", "password": "long enough pass"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, h, http.MethodPost, "/api/v1/auth/register", "", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestAuthRoutesAbsentWhenDisabled(t *testing.T) {
	h := newTestAPI(t, false)
	rec := doJSON(t, h, http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"username": "alice", "password": "whatever-it-is",
	})
	if rec.Code != http.StatusNotFound && rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 404 with auth disabled", rec.Code)
	}
}

func TestDuplicateRegistrationConflict(t *testing.T) {
	h := newTestAPI(t, true)

	body := map[string]interface{}{"username": "alice", "password": "correct horse battery"}
	if rec := doJSON(t, h, http.MethodPost, "/api/v1/auth/register", "", body); rec.Code != http.StatusCreated {
		t.Fatalf("first register status = %d", rec.Code)
	}
	if rec := doJSON(t, h, http.MethodPost, "/api/v1/auth/register", "", body); rec.Code != http.StatusConflict {
		t.Errorf("duplicate register status = %d, want 409", rec.Code)
	}
}
