// Myflix Recommender - Collaborative Filtering Video Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/myflix-recommender

package config

import (
	"fmt"
	"strings"
	"time"
)

// Validate checks that the configuration is complete and within bounds.
func (c *Config) Validate() error {
	if err := c.validateMongo(); err != nil {
		return err
	}

	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateSecurity(); err != nil {
		return err
	}

	if err := c.validateRecommend(); err != nil {
		return err
	}

	return c.validateLogging()
}

func (c *Config) validateMongo() error {
	if c.Mongo.URI != "" {
		if !strings.HasPrefix(c.Mongo.URI, "mongodb://") && !strings.HasPrefix(c.Mongo.URI, "mongodb+srv://") {
			return fmt.Errorf("MONGO_URI must start with mongodb:// or mongodb+srv://")
		}
	} else {
		if strings.TrimSpace(c.Mongo.Host) == "" {
			return fmt.Errorf("MONGO_HOST is required")
		}
		if c.Mongo.Port < 1 || c.Mongo.Port > 65535 {
			return fmt.Errorf("MONGO_PORT must be between 1 and 65535")
		}
	}
	if strings.TrimSpace(c.Mongo.Database) == "" {
		return fmt.Errorf("MONGO_DB is required")
	}
	if strings.TrimSpace(c.Mongo.Collection) == "" {
		return fmt.Errorf("MONGO_COLLECTION is required")
	}
	if c.Mongo.ConnectTimeout <= 0 || c.Mongo.QueryTimeout <= 0 {
		return fmt.Errorf("MONGO_CONNECT_TIMEOUT and MONGO_QUERY_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	return nil
}

const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour
)

func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

var validMissingVideoPolicies = map[string]bool{
	"skip": true,
	"fail": true,
}

func (c *Config) validateRecommend() error {
	r := &c.Recommend
	if r.DefaultCount < 1 {
		return fmt.Errorf("RECOMMEND_DEFAULT_COUNT must be positive, got %d", r.DefaultCount)
	}
	if r.MaxCount < r.DefaultCount {
		return fmt.Errorf("RECOMMEND_MAX_COUNT (%d) must be >= RECOMMEND_DEFAULT_COUNT (%d)", r.MaxCount, r.DefaultCount)
	}
	if !validMissingVideoPolicies[r.MissingVideoPolicy] {
		return fmt.Errorf("RECOMMEND_MISSING_VIDEO_POLICY must be one of: skip, fail")
	}
	if r.RefreshInterval < 0 {
		return fmt.Errorf("RECOMMEND_REFRESH_INTERVAL must not be negative")
	}
	if r.RefreshTimeout <= 0 {
		return fmt.Errorf("RECOMMEND_REFRESH_TIMEOUT must be positive")
	}
	if r.CacheEnabled && r.CacheTTL <= 0 {
		return fmt.Errorf("RECOMMEND_CACHE_TTL must be positive when the cache is enabled")
	}
	return nil
}

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}
