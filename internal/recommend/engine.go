// Myflix Recommender - Collaborative Filtering Video Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/myflix-recommender

package recommend

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/myflix-recommender/internal/cache"
	"github.com/tomtom215/myflix-recommender/internal/metrics"
)

// Engine owns the active snapshot and answers recommendation requests
// against it. It is safe for concurrent use.
type Engine struct {
	config *Config
	loader CatalogLoader
	logger zerolog.Logger

	snapshot atomic.Pointer[Snapshot]

	// refreshMu serializes rebuilds; readers never take it.
	refreshMu   sync.Mutex
	refreshing  atomic.Bool
	lastRefresh atomic.Pointer[refreshResult]

	cache *cache.Cache[[]string]

	requestCount  atomic.Int64
	emptyCount    atomic.Int64
	unknownCount  atomic.Int64
	invalidCount  atomic.Int64
	cacheHits     atomic.Int64
	cacheMisses   atomic.Int64
	refreshCount  atomic.Int64
	refreshFailed atomic.Int64
}

type refreshResult struct {
	at  time.Time
	err error
}

// NewEngine creates an engine without a snapshot. Call Start before serving.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(loader CatalogLoader, cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	e := &Engine{
		config: cfg,
		loader: loader,
		logger: logger.With().Str("component", "recommend").Logger(),
	}
	if cfg.Cache.Enabled {
		e.cache = cache.New[[]string](cfg.Cache.TTL, cfg.Cache.MaxEntries)
	}
	return e, nil
}

// Start builds the initial snapshot. Any failure is returned as a
// *StartupLoadError and leaves the engine not ready.
func (e *Engine) Start(ctx context.Context) error {
	if _, err := e.Refresh(ctx); err != nil {
		return &StartupLoadError{Err: err}
	}
	return nil
}

// Refresh loads the catalog and swaps in a new snapshot. On failure the
// previous snapshot stays active. A concurrent call returns
// ErrRefreshInProgress without waiting.
func (e *Engine) Refresh(ctx context.Context) (*Snapshot, error) {
	if !e.refreshMu.TryLock() {
		return nil, ErrRefreshInProgress
	}
	defer e.refreshMu.Unlock()

	e.refreshing.Store(true)
	defer e.refreshing.Store(false)

	if e.config.RefreshTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.RefreshTimeout)
		defer cancel()
	}

	start := time.Now()
	snap, err := e.build(ctx)
	duration := time.Since(start)
	e.lastRefresh.Store(&refreshResult{at: time.Now(), err: err})

	if err != nil {
		e.refreshFailed.Add(1)
		metrics.RecordSnapshotBuild(duration, 0, 0, time.Time{}, err)
		logEvent := e.logger.Error().Err(err).Dur("duration", duration)
		if current := e.snapshot.Load(); current != nil {
			logEvent = logEvent.Str("active_snapshot", current.ID)
		}
		logEvent.Msg("snapshot build failed")
		return nil, err
	}

	previous := e.snapshot.Swap(snap)
	e.refreshCount.Add(1)
	if e.cache != nil {
		e.cache.Clear()
	}
	metrics.RecordSnapshotBuild(duration, snap.Users.Len(), snap.Videos.Len(), snap.BuiltAt, nil)

	logEvent := e.logger.Info().
		Str("snapshot_id", snap.ID).
		Int("users", snap.Users.Len()).
		Int("videos", snap.Videos.Len()).
		Int("events", snap.Events).
		Int("skipped", snap.Skipped).
		Dur("duration", duration)
	if previous != nil {
		logEvent = logEvent.Str("previous_snapshot", previous.ID)
	}
	logEvent.Msg("snapshot published")

	return snap, nil
}

func (e *Engine) build(ctx context.Context) (*Snapshot, error) {
	cat, err := e.loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	snap, err := BuildSnapshot(cat, e.config.MissingVideoPolicy, e.logger)
	if err != nil {
		return nil, fmt.Errorf("build snapshot: %w", err)
	}
	return snap, nil
}

// Snapshot returns the active snapshot, or nil before the first build.
func (e *Engine) Snapshot() *Snapshot {
	return e.snapshot.Load()
}

// Ready reports whether a snapshot is loaded.
func (e *Engine) Ready() bool {
	return e.snapshot.Load() != nil
}

// Recommend answers a request against the active snapshot.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Recommend(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	e.requestCount.Add(1)

	if req.UserID == "" {
		e.invalidCount.Add(1)
		metrics.RecordRecommendation("invalid")
		return nil, ErrInvalidRequest
	}

	snap := e.snapshot.Load()
	if snap == nil {
		return nil, ErrNoSnapshot
	}

	count := e.resolveCount(req.Count)
	logger := e.logger.With().
		Str("request_id", req.RequestID).
		Str("user_id", req.UserID).
		Int("count", count).
		Logger()

	resp := &Response{
		UserID:          req.UserID,
		SnapshotID:      snap.ID,
		SnapshotBuiltAt: snap.BuiltAt,
	}

	if _, known := snap.Users.Lookup(req.UserID); !known {
		e.unknownCount.Add(1)
		metrics.RecordRecommendation("unknown_user")
		logger.Debug().Msg("user not in snapshot")
		resp.Recommendations = []string{}
		resp.LatencyMS = time.Since(start).Milliseconds()
		return resp, nil
	}

	key := cache.GenerateKey("recommend", cacheKey{
		Snapshot: snap.ID,
		UserID:   req.UserID,
		Count:    count,
		Neighbor: e.config.RequireNeighborRating,
	})
	if recs, ok := e.cacheGet(key); ok {
		resp.Recommendations = recs
		resp.CacheHit = true
	} else {
		resp.Recommendations = Recommend(snap, req.UserID, count, Options{
			RequireNeighborRating: e.config.RequireNeighborRating,
		})
		e.cacheSet(key, resp.Recommendations)
	}

	resp.Count = len(resp.Recommendations)
	resp.LatencyMS = time.Since(start).Milliseconds()

	if resp.Count == 0 {
		e.emptyCount.Add(1)
		metrics.RecordRecommendation("empty")
	} else {
		metrics.RecordRecommendation("served")
	}

	logger.Debug().
		Int("returned", resp.Count).
		Bool("cache_hit", resp.CacheHit).
		Int64("latency_ms", resp.LatencyMS).
		Msg("recommendation complete")

	return resp, nil
}

type cacheKey struct {
	Snapshot string `json:"s"`
	UserID   string `json:"u"`
	Count    int    `json:"c"`
	Neighbor bool   `json:"n"`
}

// resolveCount applies the default when unset and caps at MaxCount.
func (e *Engine) resolveCount(requested *int) int {
	count := e.config.DefaultCount
	if requested != nil {
		count = *requested
	}
	if count > e.config.MaxCount {
		count = e.config.MaxCount
	}
	return count
}

func (e *Engine) cacheGet(key string) ([]string, bool) {
	if e.cache == nil {
		return nil, false
	}
	recs, ok := e.cache.Get(key)
	metrics.RecordCacheLookup(ok)
	if ok {
		e.cacheHits.Add(1)
		// Callers may append to the result; hand out a copy.
		out := make([]string, len(recs))
		copy(out, recs)
		return out, true
	}
	e.cacheMisses.Add(1)
	return nil, false
}

func (e *Engine) cacheSet(key string, recs []string) {
	if e.cache == nil {
		return
	}
	stored := make([]string, len(recs))
	copy(stored, recs)
	e.cache.Set(key, stored)
}

// Status returns snapshot metadata and request counters.
func (e *Engine) Status() Status {
	snap := e.snapshot.Load()
	st := Status{
		Ready:         snap != nil,
		Snapshot:      snapshotInfo(snap),
		Refreshing:    e.refreshing.Load(),
		Refreshes:     e.refreshCount.Load(),
		FailedRefresh: e.refreshFailed.Load(),
		Requests:      e.requestCount.Load(),
		EmptyResults:  e.emptyCount.Load(),
		UnknownUsers:  e.unknownCount.Load(),
		InvalidInputs: e.invalidCount.Load(),
		CacheHits:     e.cacheHits.Load(),
		CacheMisses:   e.cacheMisses.Load(),
	}
	if last := e.lastRefresh.Load(); last != nil {
		st.LastRefreshAt = last.at
		if last.err != nil {
			st.LastRefreshErr = last.err.Error()
		}
	}
	return st
}

// Close releases the response cache.
func (e *Engine) Close() {
	if e.cache != nil {
		e.cache.Close()
	}
}
