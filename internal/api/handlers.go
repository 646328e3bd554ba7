// Movie Recommender - TMDb-backed Movie Recommendation Core
// Copyright 2026 S. Boyapati (SBoyapati13)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SBoyapati13/movie-recommender

package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/SBoyapati13/movie-recommender/internal/assets"
	"github.com/SBoyapati13/movie-recommender/internal/catalog"
	"github.com/SBoyapati13/movie-recommender/internal/models"
	"github.com/SBoyapati13/movie-recommender/internal/recommend"
	"github.com/SBoyapati13/movie-recommender/internal/store"
	"github.com/SBoyapati13/movie-recommender/internal/validation"
)

// Handler holds the services the HTTP endpoints delegate to.
type Handler struct {
	catalog *catalog.Client
	store   *store.Store
	engine  *recommend.Engine
	posters *assets.PosterService
	moods   *recommend.MoodIndex
	logger  zerolog.Logger
}

// NewHandler creates the endpoint handler set.
func NewHandler(cat *catalog.Client, st *store.Store, engine *recommend.Engine,
	posters *assets.PosterService, moods *recommend.MoodIndex, logger zerolog.Logger) *Handler {
	return &Handler{
		catalog: cat,
		store:   st,
		engine:  engine,
		posters: posters,
		moods:   moods,
		logger:  logger.With().Str("component", "api").Logger(),
	}
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Search handles GET /api/v1/search?query=...&page=N. Results are cached
// locally so later affinity lookups have genre metadata for rated movies.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	page := queryInt(r, "page", 1)

	prefs := h.store.Preferences(r.Context(), userIDFrom(r.Context()))
	results := h.catalog.Search(r.Context(), query, prefs.Language, prefs.Region, page)
	if err := h.store.PutMovies(r.Context(), results); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to cache search results")
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

// Movie handles GET /api/v1/movies/{id}, serving from the local cache
// when fresh and falling back to the remote catalog.
func (h *Handler) Movie(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid movie id")
		return
	}

	movie := h.movieByID(r, id)
	if movie == nil {
		respondError(w, http.StatusNotFound, "movie not found")
		return
	}
	respondJSON(w, http.StatusOK, movie)
}

// Similar handles GET /api/v1/movies/{id}/similar.
func (h *Handler) Similar(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid movie id")
		return
	}

	prefs := h.store.Preferences(r.Context(), userIDFrom(r.Context()))
	results := h.catalog.Recommendations(r.Context(), id, prefs.Language)
	respondJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

// Recommend handles GET /api/v1/recommendations?mood=...&limit=N.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	req := recommend.Request{
		UserID: userIDFrom(r.Context()),
		Mood:   r.URL.Query().Get("mood"),
		Limit:  queryInt(r, "limit", 0),
	}
	if reqErr := validation.ValidateStruct(req); reqErr != nil {
		respondValidationError(w, reqErr)
		return
	}

	result := h.engine.Recommend(r.Context(), req)

	// Cache the recommended movies so a follow-up rating has metadata.
	movies := make([]models.Movie, 0, len(result.Recommendations))
	for i := range result.Recommendations {
		movies = append(movies, result.Recommendations[i].Movie)
	}
	if err := h.store.PutMovies(r.Context(), movies); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to cache recommendations")
	}

	respondJSON(w, http.StatusOK, result)
}

type rateRequest struct {
	MovieID int64   `json:"movie_id" validate:"required,gt=0"`
	Score   float64 `json:"score" validate:"required,gte=0.5,lte=10"`
}

// Rate handles POST /api/v1/ratings. The rated movie's metadata is
// fetched into the local cache first so the rating can contribute to
// genre affinity.
func (h *Handler) Rate(w http.ResponseWriter, r *http.Request) {
	var req rateRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if reqErr := validation.ValidateStruct(req); reqErr != nil {
		respondValidationError(w, reqErr)
		return
	}

	if movie := h.movieByID(r, req.MovieID); movie == nil {
		respondError(w, http.StatusNotFound, "movie not found")
		return
	}

	userID := userIDFrom(r.Context())
	if err := h.store.SaveRating(r.Context(), userID, req.MovieID, req.Score); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to save rating")
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// Ratings handles GET /api/v1/ratings, returning the caller's history.
func (h *Handler) Ratings(w http.ResponseWriter, r *http.Request) {
	ratings := h.store.RatingsFor(r.Context(), userIDFrom(r.Context()))
	respondJSON(w, http.StatusOK, map[string]interface{}{"ratings": ratings})
}

type preferencesRequest struct {
	Language string `json:"language" validate:"omitempty,min=2,max=10"`
	Region   string `json:"region" validate:"omitempty,len=2"`
}

// Preferences handles GET /api/v1/preferences.
func (h *Handler) Preferences(w http.ResponseWriter, r *http.Request) {
	prefs := h.store.Preferences(r.Context(), userIDFrom(r.Context()))
	respondJSON(w, http.StatusOK, prefs)
}

// SetPreferences handles PUT /api/v1/preferences.
func (h *Handler) SetPreferences(w http.ResponseWriter, r *http.Request) {
	var req preferencesRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if reqErr := validation.ValidateStruct(req); reqErr != nil {
		respondValidationError(w, reqErr)
		return
	}

	prefs := models.Preferences{
		UserID:   userIDFrom(r.Context()),
		Language: req.Language,
		Region:   req.Region,
	}
	if err := h.store.SetPreferences(r.Context(), prefs); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to save preferences")
		return
	}
	respondJSON(w, http.StatusOK, h.store.Preferences(r.Context(), prefs.UserID))
}

// Poster handles GET /api/v1/posters/{size}/* where the wildcard is the
// catalog poster path.
func (h *Handler) Poster(w http.ResponseWriter, r *http.Request) {
	size := chi.URLParam(r, "size")
	path := "/" + chi.URLParam(r, "*")
	if size == "" || path == "/" {
		respondError(w, http.StatusBadRequest, "missing poster path")
		return
	}

	data, err := h.posters.Poster(r.Context(), path, size)
	if err != nil {
		if errors.Is(err, assets.ErrNoPoster) {
			respondError(w, http.StatusNotFound, "poster unavailable")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to load poster")
		return
	}

	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Debug().Err(err).Msg("Client went away during poster write")
	}
}

// Genres handles GET /api/v1/genres.
func (h *Handler) Genres(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{"genres": h.catalog.Genres()})
}

// Moods handles GET /api/v1/moods.
func (h *Handler) Moods(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{"moods": h.moods.Moods()})
}

// movieByID serves a movie from the local cache when fresh, otherwise
// from the remote catalog (caching the result). Nil means not found.
func (h *Handler) movieByID(r *http.Request, id int64) *models.Movie {
	if movie := h.store.CachedMovie(r.Context(), id); movie != nil {
		return movie
	}

	prefs := h.store.Preferences(r.Context(), userIDFrom(r.Context()))
	movie := h.catalog.Details(r.Context(), id, prefs.Language)
	if movie == nil {
		return nil
	}
	if err := h.store.PutMovie(r.Context(), movie); err != nil {
		h.logger.Warn().Err(err).Int64("movie_id", id).Msg("Failed to cache movie details")
	}
	return movie
}

// queryInt parses an integer query parameter with a default.
func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
