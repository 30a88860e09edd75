// Myflix Recommender - Collaborative Filtering Video Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/myflix-recommender

package recommend

import (
	"context"
	"time"

	"github.com/tomtom215/myflix-recommender/internal/catalog"
)

// CatalogLoader performs one read pass over the video catalog.
// It is implemented by *catalog.Loader.
type CatalogLoader interface {
	Load(ctx context.Context) (*catalog.Catalog, error)
}

// Request represents a recommendation request.
type Request struct {
	// UserID is the user to recommend for. Empty is invalid.
	UserID string `json:"user_id"`

	// Count is the maximum number of videos to return. Nil selects the
	// configured default; zero or negative returns an empty list.
	Count *int `json:"count,omitempty"`

	// RequestID is propagated into logs.
	RequestID string `json:"request_id,omitempty"`
}

// Response is the result of a recommendation request.
type Response struct {
	UserID          string    `json:"user_id"`
	Recommendations []string  `json:"recommendations"`
	Count           int       `json:"count"`
	SnapshotID      string    `json:"snapshot_id"`
	SnapshotBuiltAt time.Time `json:"snapshot_built_at"`
	CacheHit        bool      `json:"cache_hit"`
	LatencyMS       int64     `json:"latency_ms"`
}

// SnapshotInfo describes the active snapshot.
type SnapshotInfo struct {
	ID              string    `json:"id"`
	BuiltAt         time.Time `json:"built_at"`
	Users           int       `json:"users"`
	Videos          int       `json:"videos"`
	Events          int       `json:"events"`
	Skipped         int       `json:"skipped"`
	BuildDurationMS int64     `json:"build_duration_ms"`
}

// Status reports engine state and counters.
type Status struct {
	Ready          bool          `json:"ready"`
	Snapshot       *SnapshotInfo `json:"snapshot,omitempty"`
	Refreshing     bool          `json:"refreshing"`
	LastRefreshAt  time.Time     `json:"last_refresh_at,omitempty"`
	LastRefreshErr string        `json:"last_refresh_error,omitempty"`
	Refreshes      int64         `json:"refreshes"`
	FailedRefresh  int64         `json:"failed_refreshes"`
	Requests       int64         `json:"requests"`
	EmptyResults   int64         `json:"empty_results"`
	UnknownUsers   int64         `json:"unknown_users"`
	InvalidInputs  int64         `json:"invalid_requests"`
	CacheHits      int64         `json:"cache_hits"`
	CacheMisses    int64         `json:"cache_misses"`
}

func snapshotInfo(s *Snapshot) *SnapshotInfo {
	if s == nil {
		return nil
	}
	return &SnapshotInfo{
		ID:              s.ID,
		BuiltAt:         s.BuiltAt,
		Users:           s.Users.Len(),
		Videos:          s.Videos.Len(),
		Events:          s.Events,
		Skipped:         s.Skipped,
		BuildDurationMS: s.BuildDuration.Milliseconds(),
	}
}

// Info returns the snapshot metadata reported on the status endpoint.
func (s *Snapshot) Info() *SnapshotInfo {
	return snapshotInfo(s)
}
