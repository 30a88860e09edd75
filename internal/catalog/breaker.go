// Myflix Recommender - Collaborative Filtering Video Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/myflix-recommender

package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/myflix-recommender/internal/metrics"
)

// BreakerConfig controls when the catalog circuit opens.
type BreakerConfig struct {
	Name string

	// MaxRequests is the number of probes allowed while half-open.
	MaxRequests uint32

	// Interval resets the closed-state counts. Zero never resets.
	Interval time.Duration

	// Timeout is how long the circuit stays open before probing.
	Timeout time.Duration

	// ConsecutiveFailures opens the circuit regardless of request volume.
	ConsecutiveFailures uint32

	// MinRequests and FailureRatio open the circuit on sustained error rates.
	MinRequests  uint32
	FailureRatio float64
}

// DefaultBreakerConfig returns the production breaker settings.
// A snapshot build is a single large query, so three consecutive failures
// are enough to stop hammering a struggling store.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:                "catalog-store",
		MaxRequests:         3,
		Interval:            time.Minute,
		Timeout:             2 * time.Minute,
		ConsecutiveFailures: 3,
		MinRequests:         10,
		FailureRatio:        0.6,
	}
}

// BreakerSource wraps a Source with circuit breaker protection.
type BreakerSource struct {
	source Source
	cb     *gobreaker.CircuitBreaker[[]Video]
	name   string
	logger zerolog.Logger
}

// NewBreakerSource wraps source using cfg.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewBreakerSource(source Source, cfg BreakerConfig, logger zerolog.Logger) *BreakerSource {
	if cfg.Name == "" {
		cfg.Name = DefaultBreakerConfig().Name
	}
	b := &BreakerSource{
		source: source,
		name:   cfg.Name,
		logger: logger.With().Str("component", "circuit-breaker").Str("breaker", cfg.Name).Logger(),
	}

	metrics.CircuitBreakerState.WithLabelValues(cfg.Name).Set(0)
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(cfg.Name).Set(0)

	b.cb = gobreaker.NewCircuitBreaker[[]Video](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		IsSuccessful: isBreakerSuccess,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if cfg.ConsecutiveFailures > 0 && counts.ConsecutiveFailures >= cfg.ConsecutiveFailures {
				b.logger.Warn().Uint32("consecutive_failures", counts.ConsecutiveFailures).Msg("opening circuit")
				return true
			}
			if cfg.MinRequests == 0 || counts.Requests < cfg.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			if ratio >= cfg.FailureRatio {
				b.logger.Warn().Uint32("failures", counts.TotalFailures).Float64("failure_rate", ratio*100).Msg("opening circuit")
				return true
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr, toStr := stateToString(from), stateToString(to)
			b.logger.Info().Str("from", fromStr).Str("to", toStr).Msg("state transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})

	return b
}

// Videos fetches the catalog through the breaker. While the circuit is open
// the call fails fast with gobreaker.ErrOpenState.
func (b *BreakerSource) Videos(ctx context.Context) ([]Video, error) {
	videos, err := b.cb.Execute(func() ([]Video, error) {
		return b.source.Videos(ctx)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
			b.logger.Warn().Err(err).Msg("request rejected")
			return nil, err
		}
		if errors.Is(err, context.Canceled) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "canceled").Inc()
			return nil, err
		}
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(b.name).Set(float64(b.cb.Counts().ConsecutiveFailures))
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(b.name).Set(0)
	return videos, nil
}

// Ping delegates to the wrapped source when it supports pings. It bypasses
// the breaker so readiness reflects the store rather than the circuit.
func (b *BreakerSource) Ping(ctx context.Context) error {
	if p, ok := b.source.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// State reports the current circuit state as a string.
func (b *BreakerSource) State() string {
	return stateToString(b.cb.State())
}

// isBreakerSuccess keeps caller cancellations from counting against the
// store. Deadlines still count: a store too slow for the refresh budget is
// unhealthy.
func isBreakerSuccess(err error) bool {
	return err == nil || errors.Is(err, context.Canceled)
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
