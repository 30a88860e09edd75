// Myflix Recommender - Collaborative Filtering Video Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/myflix-recommender

// Package config loads the recommender configuration with Koanf v2.
//
// Sources are layered, highest priority last:
//  1. Built-in defaults (defaultConfig)
//  2. Optional YAML file (CONFIG_PATH, ./config.yaml, /etc/myflix-recommender/config.yaml)
//  3. Environment variables (see envMappings in koanf.go)
//
// The catalog connection keeps the environment names used by the rest of the
// Myflix stack: MONGO_HOST, MONGO_PORT and MONGO_DB.
package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Config is the root configuration.
type Config struct {
	Mongo     MongoConfig     `koanf:"mongo"`
	Server    ServerConfig    `koanf:"server"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
	Recommend RecommendConfig `koanf:"recommend"`
}

// MongoConfig holds the video catalog connection settings.
//
// Environment Variables:
//   - MONGO_HOST: catalog host (default: myflix-mongo)
//   - MONGO_PORT: catalog port (default: 27017)
//   - MONGO_DB: database name (default: videocatalog)
//   - MONGO_COLLECTION: collection holding video documents (default: videos)
//   - MONGO_URI: full connection string, overrides host and port when set
type MongoConfig struct {
	Host           string        `koanf:"host"`
	Port           int           `koanf:"port"`
	Database       string        `koanf:"database"`
	Collection     string        `koanf:"collection"`
	URI            string        `koanf:"uri"`
	ConnectTimeout time.Duration `koanf:"connect_timeout"`
	QueryTimeout   time.Duration `koanf:"query_timeout"`
}

// ConnectionURI returns URI if set, otherwise mongodb://host:port.
func (m *MongoConfig) ConnectionURI() string {
	if m.URI != "" {
		return m.URI
	}
	u := url.URL{
		Scheme: "mongodb",
		Host:   net.JoinHostPort(m.Host, strconv.Itoa(m.Port)),
	}
	return u.String()
}

// RedactedURI returns ConnectionURI safe for logs and errors: the password
// is masked and the query string, which may carry TLS key passwords, is
// dropped. Multi-host seed lists are kept as written.
func (m *MongoConfig) RedactedURI() string {
	scheme, rest, ok := strings.Cut(m.ConnectionURI(), "://")
	if !ok {
		return "xxxxx"
	}

	authority, path := rest, ""
	if i := strings.IndexAny(rest, "/?"); i >= 0 {
		authority, path = rest[:i], rest[i:]
	}
	if i := strings.LastIndex(authority, "@"); i >= 0 {
		user, _, hasPassword := strings.Cut(authority[:i], ":")
		if hasPassword {
			user += ":xxxxx"
		}
		authority = user + "@" + authority[i+1:]
	}
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	return scheme + "://" + authority + path
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`
}

// Addr returns host:port for http.Server.
func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SecurityConfig holds CORS and rate limiting settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds zerolog settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is json or console.
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}

// RecommendConfig holds recommendation engine settings.
//
// Environment Variables:
//   - RECOMMEND_DEFAULT_COUNT: results when a request omits count (default: 10)
//   - RECOMMEND_MAX_COUNT: upper bound on requested count (default: 100)
//   - RECOMMEND_MISSING_VIDEO_POLICY: skip or fail (default: skip)
//   - RECOMMEND_REQUIRE_NEIGHBOR_RATING: only emit videos the neighbor rated (default: false)
//   - RECOMMEND_REFRESH_INTERVAL: periodic snapshot rebuild, 0 disables (default: 0)
//   - RECOMMEND_REFRESH_TIMEOUT: upper bound on one rebuild (default: 5m)
//   - RECOMMEND_CACHE_ENABLED / RECOMMEND_CACHE_TTL: response cache (default: true / 5m)
type RecommendConfig struct {
	DefaultCount          int           `koanf:"default_count"`
	MaxCount              int           `koanf:"max_count"`
	MissingVideoPolicy    string        `koanf:"missing_video_policy"`
	RequireNeighborRating bool          `koanf:"require_neighbor_rating"`
	RefreshInterval       time.Duration `koanf:"refresh_interval"`
	RefreshTimeout        time.Duration `koanf:"refresh_timeout"`
	CacheEnabled          bool          `koanf:"cache_enabled"`
	CacheTTL              time.Duration `koanf:"cache_ttl"`
}

// Load reads configuration from defaults, config file and environment.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
