// Myflix Recommender - Collaborative Filtering Video Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/myflix-recommender

package catalog

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/myflix-recommender/internal/metrics"
)

// ErrEmptyCatalog is returned when the store holds no video documents.
var ErrEmptyCatalog = errors.New("catalog: no video documents found")

// Loader flattens the documents of a Source into per-user rating events.
type Loader struct {
	source Source
	logger zerolog.Logger
}

// NewLoader creates a loader reading from source.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewLoader(source Source, logger zerolog.Logger) *Loader {
	return &Loader{
		source: source,
		logger: logger.With().Str("component", "catalog-loader").Logger(),
	}
}

// Load performs one read pass over the store.
//
// Ratings without a user or with a non-finite score are dropped with a
// warning. A store error or an empty catalog fails the whole load.
func (l *Loader) Load(ctx context.Context) (*Catalog, error) {
	start := time.Now()

	videos, err := l.source.Videos(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog: fetch videos: %w", err)
	}
	if len(videos) == 0 {
		return nil, ErrEmptyCatalog
	}

	cat := &Catalog{
		Videos:   videos,
		LoadedAt: time.Now(),
	}

	userIndex := make(map[string]int)
	for _, video := range videos {
		for _, rating := range video.Ratings {
			if rating.User == "" {
				l.skip(cat, "missing_user", video.ID, rating)
				continue
			}
			if math.IsNaN(rating.Score) || math.IsInf(rating.Score, 0) {
				l.skip(cat, "invalid_score", video.ID, rating)
				continue
			}

			idx, ok := userIndex[rating.User]
			if !ok {
				idx = len(cat.Users)
				userIndex[rating.User] = idx
				cat.Users = append(cat.Users, UserRatings{UserID: rating.User})
			}
			cat.Users[idx].Events = append(cat.Users[idx].Events, RatingEvent{
				UserID:  rating.User,
				VideoID: video.ID,
				Score:   rating.Score,
			})
			cat.Events++
		}
	}

	l.logger.Info().
		Int("videos", len(cat.Videos)).
		Int("users", len(cat.Users)).
		Int("events", cat.Events).
		Int("skipped", cat.Skipped).
		Dur("duration", time.Since(start)).
		Msg("catalog loaded")

	return cat, nil
}

func (l *Loader) skip(cat *Catalog, reason, videoID string, rating Rating) {
	cat.Skipped++
	metrics.RecordSkippedRatingEvent(reason)
	l.logger.Warn().
		Str("reason", reason).
		Str("video_id", videoID).
		Str("user_id", rating.User).
		Float64("score", rating.Score).
		Msg("rating event skipped")
}
