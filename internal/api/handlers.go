// Myflix Recommender - Collaborative Filtering Video Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/myflix-recommender

// Package api serves the recommender over HTTP using the chi router.
//
// Handler methods are split across files:
//   - handlers.go: Handler struct and constructor
//   - handlers_helpers.go: request decoding and validation helpers
//   - handlers_recommend.go: recommendation, status and refresh endpoints
//   - handlers_health.go: liveness and readiness probes
package api

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/myflix-recommender/internal/recommend"
)

// Recommender is the engine surface the handlers depend on.
// It is implemented by *recommend.Engine.
type Recommender interface {
	Recommend(ctx context.Context, req recommend.Request) (*recommend.Response, error)
	Refresh(ctx context.Context) (*recommend.Snapshot, error)
	Status() recommend.Status
	Ready() bool
}

// StoreProbe reports catalog store reachability on the status endpoint.
// It is implemented by *catalog.BreakerSource and *catalog.MongoSource.
type StoreProbe interface {
	Ping(ctx context.Context) error
}

// breakerStater is implemented by stores wrapped in a circuit breaker.
type breakerStater interface {
	State() string
}

// HandlerConfig tunes handler behavior.
type HandlerConfig struct {
	// RequestTimeout bounds a single recommendation lookup.
	RequestTimeout time.Duration

	// ProbeTimeout bounds the store ping on the status endpoint.
	ProbeTimeout time.Duration

	// RefreshEvery and RefreshBurst shape the global token bucket guarding
	// manual snapshot rebuilds.
	RefreshEvery time.Duration
	RefreshBurst int
}

// DefaultHandlerConfig returns the handler defaults.
func DefaultHandlerConfig() HandlerConfig {
	return HandlerConfig{
		RequestTimeout: 10 * time.Second,
		ProbeTimeout:   2 * time.Second,
		RefreshEvery:   30 * time.Second,
		RefreshBurst:   1,
	}
}

// Handler contains the dependencies of all API handlers.
type Handler struct {
	engine         Recommender
	store          StoreProbe
	config         HandlerConfig
	refreshLimiter *rate.Limiter
	startTime      time.Time
	logger         zerolog.Logger
}

// NewHandler creates the API handler. store may be nil.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHandler(engine Recommender, store StoreProbe, cfg HandlerConfig, logger zerolog.Logger) *Handler {
	defaults := DefaultHandlerConfig()
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaults.RequestTimeout
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = defaults.ProbeTimeout
	}
	if cfg.RefreshEvery <= 0 {
		cfg.RefreshEvery = defaults.RefreshEvery
	}
	if cfg.RefreshBurst <= 0 {
		cfg.RefreshBurst = defaults.RefreshBurst
	}

	return &Handler{
		engine:         engine,
		store:          store,
		config:         cfg,
		refreshLimiter: rate.NewLimiter(rate.Every(cfg.RefreshEvery), cfg.RefreshBurst),
		startTime:      time.Now(),
		logger:         logger.With().Str("component", "api").Logger(),
	}
}
