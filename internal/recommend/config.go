// Myflix Recommender - Collaborative Filtering Video Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/myflix-recommender

package recommend

import (
	"fmt"
	"strings"
	"time"
)

// MissingVideoPolicy decides what happens to a rating whose video is not in
// the catalog.
type MissingVideoPolicy int

const (
	// PolicySkip drops the rating with a warning.
	PolicySkip MissingVideoPolicy = iota
	// PolicyFail aborts the snapshot build with a DataIntegrityError.
	PolicyFail
)

// String returns the configuration name of the policy.
func (p MissingVideoPolicy) String() string {
	switch p {
	case PolicySkip:
		return "skip"
	case PolicyFail:
		return "fail"
	default:
		return "unknown"
	}
}

// ParseMissingVideoPolicy parses "skip" or "fail".
func ParseMissingVideoPolicy(s string) (MissingVideoPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "skip":
		return PolicySkip, nil
	case "fail":
		return PolicyFail, nil
	default:
		return PolicySkip, fmt.Errorf("unknown missing video policy %q (want skip or fail)", s)
	}
}

// Config contains the engine settings.
type Config struct {
	// DefaultCount is used when a request does not set a count.
	DefaultCount int `json:"default_count"`

	// MaxCount caps the requested count.
	MaxCount int `json:"max_count"`

	// MissingVideoPolicy applies while building the rating matrix.
	MissingVideoPolicy MissingVideoPolicy `json:"missing_video_policy"`

	// RequireNeighborRating only emits videos the neighbor has rated (> 0).
	RequireNeighborRating bool `json:"require_neighbor_rating"`

	// RefreshTimeout bounds one snapshot rebuild. Zero means no bound.
	RefreshTimeout time.Duration `json:"refresh_timeout"`

	// Cache contains response caching parameters.
	Cache CacheConfig `json:"cache"`
}

// CacheConfig contains response cache settings.
type CacheConfig struct {
	Enabled    bool          `json:"enabled"`
	TTL        time.Duration `json:"ttl"`
	MaxEntries int           `json:"max_entries"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() *Config {
	return &Config{
		DefaultCount:       10,
		MaxCount:           100,
		MissingVideoPolicy: PolicySkip,
		RefreshTimeout:     5 * time.Minute,
		Cache: CacheConfig{
			Enabled:    true,
			TTL:        5 * time.Minute,
			MaxEntries: 10000,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.DefaultCount < 0 {
		return fmt.Errorf("default_count must be non-negative, got %d", c.DefaultCount)
	}
	if c.MaxCount < 1 {
		return fmt.Errorf("max_count must be positive, got %d", c.MaxCount)
	}
	if c.DefaultCount > c.MaxCount {
		return fmt.Errorf("default_count (%d) must not exceed max_count (%d)", c.DefaultCount, c.MaxCount)
	}
	if c.MissingVideoPolicy != PolicySkip && c.MissingVideoPolicy != PolicyFail {
		return fmt.Errorf("invalid missing_video_policy %d", c.MissingVideoPolicy)
	}
	if c.RefreshTimeout < 0 {
		return fmt.Errorf("refresh_timeout must be non-negative, got %v", c.RefreshTimeout)
	}
	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive when caching is enabled, got %v", c.Cache.TTL)
	}
	if c.Cache.MaxEntries < 0 {
		return fmt.Errorf("cache.max_entries must be non-negative, got %d", c.Cache.MaxEntries)
	}
	return nil
}
