// Myflix Recommender - Collaborative Filtering Video Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/myflix-recommender

package main

import (
	"testing"
	"time"

	"github.com/tomtom215/myflix-recommender/internal/config"
	"github.com/tomtom215/myflix-recommender/internal/recommend"
)

func baseConfig() *config.Config {
	return &config.Config{
		Recommend: config.RecommendConfig{
			DefaultCount:       10,
			MaxCount:           100,
			MissingVideoPolicy: "skip",
			RefreshTimeout:     5 * time.Minute,
			CacheEnabled:       true,
			CacheTTL:           time.Minute,
		},
	}
}

func TestBuildEngineConfig(t *testing.T) {
	cfg := baseConfig()
	cfg.Recommend.MissingVideoPolicy = "fail"
	cfg.Recommend.RequireNeighborRating = true

	got, err := buildEngineConfig(cfg)
	if err != nil {
		t.Fatalf("buildEngineConfig() error = %v", err)
	}
	if got.MissingVideoPolicy != recommend.PolicyFail || !got.RequireNeighborRating {
		t.Errorf("policy/neighbor = %v/%v", got.MissingVideoPolicy, got.RequireNeighborRating)
	}
	if got.DefaultCount != 10 || got.MaxCount != 100 {
		t.Errorf("counts = %d/%d", got.DefaultCount, got.MaxCount)
	}
	if !got.Cache.Enabled || got.Cache.TTL != time.Minute || got.Cache.MaxEntries != cacheMaxEntries {
		t.Errorf("cache = %+v", got.Cache)
	}
}

func TestBuildEngineConfig_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{name: "unknown policy", mutate: func(c *config.Config) { c.Recommend.MissingVideoPolicy = "ignore" }},
		{name: "max below default", mutate: func(c *config.Config) { c.Recommend.MaxCount = 5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := baseConfig()
			tt.mutate(cfg)
			if _, err := buildEngineConfig(cfg); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
