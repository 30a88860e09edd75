// Myflix Recommender - Collaborative Filtering Video Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/myflix-recommender

package catalog

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/myflix-recommender/internal/metrics"
)

func testBreakerConfig(name string) BreakerConfig {
	cfg := DefaultBreakerConfig()
	cfg.Name = name
	cfg.Timeout = 100 * time.Millisecond
	return cfg
}

func TestBreakerSource_PassesThrough(t *testing.T) {
	src := &fakeSource{videos: []Video{{ID: "v1"}}}
	b := NewBreakerSource(src, testBreakerConfig("test-pass"), zerolog.Nop())

	videos, err := b.Videos(context.Background())
	if err != nil {
		t.Fatalf("Videos() error = %v", err)
	}
	if len(videos) != 1 || videos[0].ID != "v1" {
		t.Errorf("Videos() = %+v", videos)
	}
	if got := testutil.ToFloat64(metrics.CircuitBreakerRequests.WithLabelValues("test-pass", "success")); got != 1 {
		t.Errorf("success requests = %v, want 1", got)
	}
	if b.State() != "closed" {
		t.Errorf("State() = %q, want closed", b.State())
	}
}

func TestBreakerSource_OpensAfterConsecutiveFailures(t *testing.T) {
	src := &fakeSource{err: errors.New("store down")}
	b := NewBreakerSource(src, testBreakerConfig("test-open"), zerolog.Nop())

	for i := 0; i < 3; i++ {
		if _, err := b.Videos(context.Background()); err == nil {
			t.Fatalf("call %d: expected error", i)
		}
	}

	if b.State() != "open" {
		t.Fatalf("State() = %q, want open", b.State())
	}

	_, err := b.Videos(context.Background())
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("Videos() error = %v, want ErrOpenState", err)
	}
	if src.callCount() != 3 {
		t.Errorf("source calls = %d, want 3 (open circuit must not reach the store)", src.callCount())
	}
	if got := testutil.ToFloat64(metrics.CircuitBreakerState.WithLabelValues("test-open")); got != 2 {
		t.Errorf("state gauge = %v, want 2", got)
	}
	if got := testutil.ToFloat64(metrics.CircuitBreakerRequests.WithLabelValues("test-open", "rejected")); got != 1 {
		t.Errorf("rejected requests = %v, want 1", got)
	}
}

func TestBreakerSource_RecoversAfterTimeout(t *testing.T) {
	src := &fakeSource{err: errors.New("store down")}
	b := NewBreakerSource(src, testBreakerConfig("test-recover"), zerolog.Nop())

	for i := 0; i < 3; i++ {
		_, _ = b.Videos(context.Background())
	}
	if b.State() != "open" {
		t.Fatalf("State() = %q, want open", b.State())
	}

	time.Sleep(150 * time.Millisecond)

	src.mu.Lock()
	src.err = nil
	src.videos = []Video{{ID: "v1"}}
	src.mu.Unlock()

	if _, err := b.Videos(context.Background()); err != nil {
		t.Fatalf("probe error = %v", err)
	}
	if b.State() == "open" {
		t.Error("circuit still open after successful probe")
	}
}

func TestBreakerSource_StaysClosedBelowThreshold(t *testing.T) {
	src := &fakeSource{videos: []Video{{ID: "v1"}}}
	b := NewBreakerSource(src, testBreakerConfig("test-closed"), zerolog.Nop())

	for i := 0; i < 10; i++ {
		src.mu.Lock()
		if i%2 == 0 {
			src.err = errors.New("flaky")
		} else {
			src.err = nil
		}
		src.mu.Unlock()
		_, _ = b.Videos(context.Background())
	}

	if b.State() != "closed" {
		t.Errorf("State() = %q, want closed with alternating failures", b.State())
	}
}

func TestBreakerSource_PingDelegates(t *testing.T) {
	pingErr := errors.New("no route")
	b := NewBreakerSource(&fakeSource{pingErr: pingErr}, testBreakerConfig("test-ping"), zerolog.Nop())

	if err := b.Ping(context.Background()); !errors.Is(err, pingErr) {
		t.Errorf("Ping() error = %v, want %v", err, pingErr)
	}
}

func TestBreakerSource_CancellationDoesNotTrip(t *testing.T) {
	src := &fakeSource{err: fmt.Errorf("mongo: find: %w", context.Canceled)}
	b := NewBreakerSource(src, testBreakerConfig("test-canceled"), zerolog.Nop())

	for i := 0; i < 5; i++ {
		if _, err := b.Videos(context.Background()); !errors.Is(err, context.Canceled) {
			t.Fatalf("call %d: error = %v, want context.Canceled", i, err)
		}
	}

	if b.State() != "closed" {
		t.Errorf("State() = %q, want closed after caller cancellations", b.State())
	}
	if got := testutil.ToFloat64(metrics.CircuitBreakerRequests.WithLabelValues("test-canceled", "canceled")); got != 5 {
		t.Errorf("canceled requests = %v, want 5", got)
	}
	if got := testutil.ToFloat64(metrics.CircuitBreakerRequests.WithLabelValues("test-canceled", "failure")); got != 0 {
		t.Errorf("failure requests = %v, want 0", got)
	}
}

func TestBreakerSource_DeadlineStillCounts(t *testing.T) {
	src := &fakeSource{err: fmt.Errorf("mongo: find: %w", context.DeadlineExceeded)}
	b := NewBreakerSource(src, testBreakerConfig("test-deadline"), zerolog.Nop())

	for i := 0; i < 3; i++ {
		_, _ = b.Videos(context.Background())
	}
	if b.State() != "open" {
		t.Errorf("State() = %q, want open after repeated store timeouts", b.State())
	}
}
