// Movie Recommender - TMDb-backed Movie Recommendation Core
// Copyright 2026 S. Boyapati (SBoyapati13)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SBoyapati13/movie-recommender

package api

import (
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/SBoyapati13/movie-recommender/internal/logging"
	"github.com/SBoyapati13/movie-recommender/internal/validation"
)

// errorBody is the uniform error envelope for all API errors.
type errorBody struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

// respondJSON writes payload as JSON with the given status. Encoding
// failures are logged; headers are already sent at that point so the
// client sees a truncated body.
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Error().Err(err).Msg("Failed to encode response")
	}
}

// respondError writes the error envelope.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorBody{Error: message})
}

// respondValidationError writes a 400 carrying the per-field details.
func respondValidationError(w http.ResponseWriter, reqErr *validation.RequestError) {
	respondJSON(w, http.StatusBadRequest, errorBody{
		Error:   "validation failed",
		Details: reqErr.Fields(),
	})
}

// decodeBody decodes a JSON request body into dst, rejecting unknown
// fields so client typos surface as errors instead of silent defaults.
func decodeBody(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
