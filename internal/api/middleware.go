// Movie Recommender - TMDb-backed Movie Recommendation Core
// Copyright 2026 S. Boyapati (SBoyapati13)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SBoyapati13/movie-recommender

package api

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const userIDKey contextKey = "user_id"

// anonymousUserID is the implicit user when authentication is disabled
// (single-user deployments).
const anonymousUserID int64 = 1

// requireUser resolves the calling user. With auth enabled it demands a
// valid Bearer token; with auth disabled every request runs as the
// anonymous user.
func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.auth == nil {
			next.ServeHTTP(w, r.WithContext(withUserID(r.Context(), anonymousUserID)))
			return
		}

		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			respondError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		userID, err := s.auth.VerifyToken(token)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		next.ServeHTTP(w, r.WithContext(withUserID(r.Context(), userID)))
	})
}

func withUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// userIDFrom returns the authenticated user id stored by requireUser.
func userIDFrom(ctx context.Context) int64 {
	if id, ok := ctx.Value(userIDKey).(int64); ok {
		return id
	}
	return anonymousUserID
}
