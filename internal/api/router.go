// Movie Recommender - TMDb-backed Movie Recommendation Core
// Copyright 2026 S. Boyapati (SBoyapati13)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SBoyapati13/movie-recommender

// Package api exposes the recommendation core over HTTP using the Chi
// router.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/SBoyapati13/movie-recommender/internal/auth"
	"github.com/SBoyapati13/movie-recommender/internal/config"
)

// Server owns the HTTP listener and route table.
type Server struct {
	cfg     *config.Config
	handler *Handler
	auth    *auth.Service // nil when authentication is disabled
	logger  zerolog.Logger

	httpServer *http.Server
}

// NewServer assembles the router. authService may be nil, in which case
// every request runs as the anonymous user.
func NewServer(cfg *config.Config, handler *Handler, authService *auth.Service, logger zerolog.Logger) *Server {
	s := &Server{
		cfg:     cfg,
		handler: handler,
		auth:    authService,
		logger:  logger.With().Str("component", "server").Logger(),
	}
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       2 * time.Minute,
	}
	return s
}

// Routes builds the route table.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.Security.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", s.handler.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.LimitByIP(s.cfg.Security.RateLimitReqs, s.cfg.Security.RateLimitWindow))

		if s.auth != nil {
			r.Route("/auth", func(r chi.Router) {
				// Tighter limit on credential endpoints.
				r.Use(httprate.LimitByIP(10, time.Minute))
				r.Post("/register", s.register)
				r.Post("/login", s.login)
			})
		}

		r.Group(func(r chi.Router) {
			r.Use(s.requireUser)

			r.Get("/search", s.handler.Search)
			r.Get("/movies/{id}", s.handler.Movie)
			r.Get("/movies/{id}/similar", s.handler.Similar)
			r.Get("/recommendations", s.handler.Recommend)
			r.Get("/ratings", s.handler.Ratings)
			r.Post("/ratings", s.handler.Rate)
			r.Get("/preferences", s.handler.Preferences)
			r.Put("/preferences", s.handler.SetPreferences)
			r.Get("/posters/{size}/*", s.handler.Poster)
			r.Get("/genres", s.handler.Genres)
			r.Get("/moods", s.handler.Moods)
		})
	})

	return r
}

// Start begins serving. It blocks until the listener fails or Shutdown
// is called.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.httpServer.Addr).Msg("HTTP server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
