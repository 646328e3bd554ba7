// Movie Recommender - TMDb-backed Movie Recommendation Core
// Copyright 2026 S. Boyapati (SBoyapati13)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SBoyapati13/movie-recommender

package api

import (
	"errors"
	"net/http"

	"github.com/SBoyapati13/movie-recommender/internal/auth"
	"github.com/SBoyapati13/movie-recommender/internal/store"
	"github.com/SBoyapati13/movie-recommender/internal/validation"
)

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32,alphanum"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// register handles POST /api/v1/auth/register.
func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if reqErr := validation.ValidateStruct(req); reqErr != nil {
		respondValidationError(w, reqErr)
		return
	}

	user, err := s.auth.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, store.ErrUserExists) {
			respondError(w, http.StatusConflict, "username already taken")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to register")
		return
	}
	respondJSON(w, http.StatusCreated, user)
}

// login handles POST /api/v1/auth/login.
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if reqErr := validation.ValidateStruct(req); reqErr != nil {
		respondValidationError(w, reqErr)
		return
	}

	token, user, err := s.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			respondError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to log in")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}
