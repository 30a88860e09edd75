// Myflix Recommender - Collaborative Filtering Video Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/myflix-recommender

package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/myflix-recommender/internal/catalog"
	"github.com/tomtom215/myflix-recommender/internal/config"
	"github.com/tomtom215/myflix-recommender/internal/recommend"
)

// cacheMaxEntries bounds the response cache; not exposed as a setting.
const cacheMaxEntries = 10000

// RecommendComponents holds the catalog and engine wiring.
type RecommendComponents struct {
	Mongo   *catalog.MongoSource
	Store   *catalog.BreakerSource
	Loader  *catalog.Loader
	Engine  *recommend.Engine
	closeFn func(ctx context.Context) error
}

// Close releases the engine cache and disconnects from MongoDB.
func (c *RecommendComponents) Close(ctx context.Context) error {
	c.Engine.Close()
	if c.closeFn != nil {
		return c.closeFn(ctx)
	}
	return nil
}

// buildEngineConfig maps the recommend section onto the engine config.
func buildEngineConfig(cfg *config.Config) (*recommend.Config, error) {
	policy, err := recommend.ParseMissingVideoPolicy(cfg.Recommend.MissingVideoPolicy)
	if err != nil {
		return nil, err
	}

	engineCfg := recommend.DefaultConfig()
	engineCfg.DefaultCount = cfg.Recommend.DefaultCount
	engineCfg.MaxCount = cfg.Recommend.MaxCount
	engineCfg.MissingVideoPolicy = policy
	engineCfg.RequireNeighborRating = cfg.Recommend.RequireNeighborRating
	engineCfg.RefreshTimeout = cfg.Recommend.RefreshTimeout
	engineCfg.Cache.Enabled = cfg.Recommend.CacheEnabled
	engineCfg.Cache.TTL = cfg.Recommend.CacheTTL
	engineCfg.Cache.MaxEntries = cacheMaxEntries

	if err := engineCfg.Validate(); err != nil {
		return nil, err
	}
	return engineCfg, nil
}

// initRecommend connects to the catalog store and builds the first
// snapshot. Any error here is fatal to the process.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initRecommend(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*RecommendComponents, error) {
	engineCfg, err := buildEngineConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("recommend config: %w", err)
	}

	logger.Info().
		Str("mongo_host", cfg.Mongo.Host).
		Int("mongo_port", cfg.Mongo.Port).
		Str("database", cfg.Mongo.Database).
		Str("collection", cfg.Mongo.Collection).
		Msg("connecting to catalog store")

	mongoSource, err := catalog.NewMongoSource(ctx, &cfg.Mongo, logger)
	if err != nil {
		return nil, err
	}
	components := &RecommendComponents{
		Mongo:   mongoSource,
		closeFn: mongoSource.Close,
	}

	components.Store = catalog.NewBreakerSource(mongoSource, catalog.DefaultBreakerConfig(), logger)
	components.Loader = catalog.NewLoader(components.Store, logger)

	engine, err := recommend.NewEngine(components.Loader, engineCfg, logger)
	if err != nil {
		_ = components.closeFn(context.Background())
		return nil, err
	}
	components.Engine = engine

	if err := engine.Start(ctx); err != nil {
		_ = components.Close(context.Background())
		return nil, err
	}

	snap := engine.Snapshot()
	logger.Info().
		Str("snapshot_id", snap.ID).
		Int("users", snap.Users.Len()).
		Int("videos", snap.Videos.Len()).
		Str("missing_video_policy", engineCfg.MissingVideoPolicy.String()).
		Msg("recommendation engine ready")

	return components, nil
}
