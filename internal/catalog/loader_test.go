// Myflix Recommender - Collaborative Filtering Video Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/myflix-recommender

package catalog

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/tomtom215/myflix-recommender/internal/metrics"
)

// fakeSource serves a fixed list of videos or a fixed error.
type fakeSource struct {
	mu      sync.Mutex
	videos  []Video
	err     error
	calls   int
	pingErr error
}

func (f *fakeSource) Videos(_ context.Context) ([]Video, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.videos, nil
}

func (f *fakeSource) Ping(_ context.Context) error {
	return f.pingErr
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestLoader_FirstSeenUserOrder(t *testing.T) {
	src := &fakeSource{videos: []Video{
		{ID: "v1", Ratings: []Rating{{User: "u2", Score: 4}, {User: "u1", Score: 3}}},
		{ID: "v2", Ratings: []Rating{{User: "u3", Score: 5}, {User: "u2", Score: 1}}},
		{ID: "v3"},
	}}

	cat, err := NewLoader(src, zerolog.Nop()).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(cat.Videos) != 3 {
		t.Errorf("videos = %d, want 3", len(cat.Videos))
	}
	wantUsers := []string{"u2", "u1", "u3"}
	if len(cat.Users) != len(wantUsers) {
		t.Fatalf("users = %d, want %d", len(cat.Users), len(wantUsers))
	}
	for i, want := range wantUsers {
		if cat.Users[i].UserID != want {
			t.Errorf("Users[%d] = %q, want %q", i, cat.Users[i].UserID, want)
		}
	}
	if cat.Events != 4 {
		t.Errorf("events = %d, want 4", cat.Events)
	}

	u2 := cat.Users[0].Events
	if len(u2) != 2 || u2[0].VideoID != "v1" || u2[1].VideoID != "v2" || u2[1].Score != 1 {
		t.Errorf("u2 events = %+v", u2)
	}
	if cat.LoadedAt.IsZero() {
		t.Error("LoadedAt not set")
	}
}

func TestLoader_SkipsInvalidRatings(t *testing.T) {
	before := testutil.ToFloat64(metrics.RatingEventsSkipped.WithLabelValues("invalid_score"))
	src := &fakeSource{videos: []Video{
		{ID: "v1", Ratings: []Rating{
			{User: "", Score: 4},
			{User: "u1", Score: math.NaN()},
			{User: "u2", Score: math.Inf(1)},
			{User: "u3", Score: 2},
		}},
	}}

	cat, err := NewLoader(src, zerolog.Nop()).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cat.Skipped != 3 {
		t.Errorf("skipped = %d, want 3", cat.Skipped)
	}
	if len(cat.Users) != 1 || cat.Users[0].UserID != "u3" {
		t.Errorf("users = %+v, want only u3", cat.Users)
	}
	if d := testutil.ToFloat64(metrics.RatingEventsSkipped.WithLabelValues("invalid_score")) - before; d != 2 {
		t.Errorf("invalid_score delta = %v, want 2", d)
	}
}

func TestLoader_Errors(t *testing.T) {
	storeErr := errors.New("connection refused")

	tests := []struct {
		name    string
		src     *fakeSource
		wantErr error
	}{
		{name: "store failure", src: &fakeSource{err: storeErr}, wantErr: storeErr},
		{name: "empty catalog", src: &fakeSource{}, wantErr: ErrEmptyCatalog},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat, err := NewLoader(tt.src, zerolog.Nop()).Load(context.Background())
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Load() error = %v, want %v", err, tt.wantErr)
			}
			if cat != nil {
				t.Errorf("Load() catalog = %+v, want nil", cat)
			}
		})
	}
}

func TestNormalizeID(t *testing.T) {
	tests := []struct {
		name   string
		in     any
		want   string
		wantOK bool
	}{
		{"string", "abc", "abc", true},
		{"empty string", "", "", false},
		{"nil", nil, "", false},
		{"int32", int32(42), "42", true},
		{"int64", int64(-7), "-7", true},
		{"float", 5.0, "5", true},
		{"fractional float", 2.5, "2.5", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := normalizeID(tt.in)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("normalizeID(%v) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestNormalizeScore(t *testing.T) {
	tests := []struct {
		name   string
		in     any
		want   float64
		wantOK bool
	}{
		{"int32", int32(4), 4, true},
		{"int64", int64(5), 5, true},
		{"double", 3.5, 3.5, true},
		{"numeric string", " 2.5 ", 2.5, true},
		{"text", "great", 0, false},
		{"nil", nil, 0, false},
		{"bool", true, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := normalizeScore(tt.in)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("normalizeScore(%v) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
