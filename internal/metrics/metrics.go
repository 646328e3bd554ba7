// Movie Recommender - TMDb-backed Movie Recommendation Core
// Copyright 2026 S. Boyapati (SBoyapati13)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/SBoyapati13/movie-recommender

// Package metrics provides Prometheus instrumentation for the catalog
// client, the local store, the asset cache, and the ranking engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Catalog client metrics
	CatalogRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_requests_total",
			Help: "Total number of catalog API requests by endpoint and outcome",
		},
		[]string{"endpoint", "outcome"}, // outcome: "ok", "rate_limited", "error", "empty"
	)

	CatalogRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_retries_total",
			Help: "Total number of catalog API retries by cause",
		},
		[]string{"cause"}, // "rate_limit", "server_error", "transport"
	)

	CatalogRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_request_duration_seconds",
			Help:    "Catalog API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	CatalogBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_breaker_open",
			Help: "Whether the catalog circuit breaker is currently open (1) or closed (0)",
		},
	)

	// Local store metrics
	StoreCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "store_movie_cache_hits_total",
			Help: "Total number of movie cache hits within the TTL window",
		},
	)

	StoreCacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_movie_cache_misses_total",
			Help: "Total number of movie cache misses by cause",
		},
		[]string{"cause"}, // "absent", "expired"
	)

	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_errors_total",
			Help: "Total number of storage errors swallowed at the operation boundary",
		},
		[]string{"operation"},
	)

	// Asset cache metrics
	AssetCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "asset_cache_hits_total",
			Help: "Total number of poster cache hits",
		},
	)

	AssetCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "asset_cache_misses_total",
			Help: "Total number of poster cache misses",
		},
	)

	AssetCorruptionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "asset_corruptions_total",
			Help: "Total number of corrupted cached posters detected and evicted",
		},
	)

	AssetEvictionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "asset_evictions_total",
			Help: "Total number of poster entries removed by usage-based pruning",
		},
	)

	// Recommendation metrics
	RecommendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_requests_total",
			Help: "Total number of recommendation requests by candidate source",
		},
		[]string{"source"}, // "mood", "affinity", "trending"
	)

	RecommendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_duration_seconds",
			Help:    "End-to-end recommendation latency in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)
)
