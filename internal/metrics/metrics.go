// Myflix Recommender - Collaborative Filtering Video Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/myflix-recommender

// Package metrics defines the Prometheus metrics exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "myflix_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "myflix_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "myflix_api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Snapshot Metrics
	SnapshotBuilds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "myflix_snapshot_builds_total",
			Help: "Total number of snapshot builds by result",
		},
		[]string{"result"}, // success, failure
	)

	SnapshotBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "myflix_snapshot_build_duration_seconds",
			Help:    "Time to load the catalog and compute a snapshot",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 8), // 10ms .. ~164s
		},
	)

	SnapshotUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "myflix_snapshot_users",
			Help: "Number of users (matrix rows) in the active snapshot",
		},
	)

	SnapshotVideos = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "myflix_snapshot_videos",
			Help: "Number of videos (matrix columns) in the active snapshot",
		},
	)

	SnapshotTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "myflix_snapshot_timestamp_seconds",
			Help: "Unix time the active snapshot was built",
		},
	)

	RatingEventsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "myflix_rating_events_skipped_total",
			Help: "Rating events dropped while loading or building a snapshot",
		},
		[]string{"reason"}, // missing_video, invalid_score, missing_user
	)

	// Recommendation Metrics
	RecommendationsServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "myflix_recommendations_total",
			Help: "Recommendation requests by outcome",
		},
		[]string{"result"}, // served, empty, unknown_user, invalid
	)

	RecommendationCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "myflix_recommendation_cache_total",
			Help: "Recommendation response cache lookups",
		},
		[]string{"result"}, // hit, miss
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // success, failure, rejected, canceled
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordSnapshotBuild records the outcome of one snapshot build. The size
// gauges only move on success so they always describe the active snapshot.
func RecordSnapshotBuild(duration time.Duration, users, videos int, builtAt time.Time, err error) {
	SnapshotBuildDuration.Observe(duration.Seconds())
	if err != nil {
		SnapshotBuilds.WithLabelValues("failure").Inc()
		return
	}
	SnapshotBuilds.WithLabelValues("success").Inc()
	SnapshotUsers.Set(float64(users))
	SnapshotVideos.Set(float64(videos))
	SnapshotTimestamp.Set(float64(builtAt.Unix()))
}

// RecordSkippedRatingEvent counts a rating event dropped for reason.
func RecordSkippedRatingEvent(reason string) {
	RatingEventsSkipped.WithLabelValues(reason).Inc()
}

// RecordRecommendation counts a recommendation request by result.
func RecordRecommendation(result string) {
	RecommendationsServed.WithLabelValues(result).Inc()
}

// RecordCacheLookup counts a response cache hit or miss.
func RecordCacheLookup(hit bool) {
	if hit {
		RecommendationCache.WithLabelValues("hit").Inc()
		return
	}
	RecommendationCache.WithLabelValues("miss").Inc()
}
