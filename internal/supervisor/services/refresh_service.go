// Myflix Recommender - Collaborative Filtering Video Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/myflix-recommender

package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/myflix-recommender/internal/recommend"
)

// SnapshotRefresher rebuilds the active snapshot.
// It is implemented by *recommend.Engine.
type SnapshotRefresher interface {
	Refresh(ctx context.Context) (*recommend.Snapshot, error)
}

// SnapshotRefreshService rebuilds the recommendation snapshot on a fixed
// interval. A failed rebuild is logged and retried on the next tick; the
// previous snapshot keeps serving in the meantime.
type SnapshotRefreshService struct {
	engine   SnapshotRefresher
	interval time.Duration
	logger   zerolog.Logger
}

// NewSnapshotRefreshService creates the service. An interval of zero or
// less disables periodic refresh and Serve just waits for cancellation.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewSnapshotRefreshService(engine SnapshotRefresher, interval time.Duration, logger zerolog.Logger) *SnapshotRefreshService {
	return &SnapshotRefreshService{
		engine:   engine,
		interval: interval,
		logger:   logger.With().Str("service", "snapshot-refresh").Logger(),
	}
}

// Serve implements suture.Service.
func (s *SnapshotRefreshService) Serve(ctx context.Context) error {
	if s.interval <= 0 {
		s.logger.Info().Msg("periodic snapshot refresh disabled")
		<-ctx.Done()
		return ctx.Err()
	}

	s.logger.Info().Dur("interval", s.interval).Msg("snapshot refresh service running")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("snapshot refresh service shutting down")
			return ctx.Err()

		case <-ticker.C:
			s.refresh(ctx)
		}
	}
}

func (s *SnapshotRefreshService) refresh(ctx context.Context) {
	snap, err := s.engine.Refresh(ctx)
	switch {
	case err == nil:
		s.logger.Debug().Str("snapshot_id", snap.ID).Msg("scheduled refresh complete")
	case errors.Is(err, recommend.ErrRefreshInProgress):
		s.logger.Debug().Msg("scheduled refresh skipped, another refresh is running")
	case ctx.Err() != nil:
		// Shutdown interrupted the rebuild.
	default:
		s.logger.Warn().Err(err).Msg("scheduled refresh failed, keeping previous snapshot")
	}
}

// String implements fmt.Stringer for supervisor events.
func (s *SnapshotRefreshService) String() string {
	return "snapshot-refresh"
}
