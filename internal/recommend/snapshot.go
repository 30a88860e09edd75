// Myflix Recommender - Collaborative Filtering Video Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/myflix-recommender

package recommend

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/myflix-recommender/internal/catalog"
)

// Snapshot is the immutable unit of replacement: index maps, rating matrix
// and similarity matrix built from one catalog load.
type Snapshot struct {
	ID      string
	BuiltAt time.Time

	Users      *IndexMap
	Videos     *IndexMap
	Ratings    *RatingMatrix
	Similarity *SimilarityMatrix

	// Events is the number of rating events loaded from the catalog.
	Events int

	// Skipped counts events dropped during load and matrix build.
	Skipped int

	// BuildDuration covers matrix and similarity computation, not the load.
	BuildDuration time.Duration
}

// BuildSnapshot computes a snapshot from a loaded catalog.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func BuildSnapshot(cat *catalog.Catalog, policy MissingVideoPolicy, logger zerolog.Logger) (*Snapshot, error) {
	start := time.Now()

	ratings, err := BuildMatrix(cat, policy, logger)
	if err != nil {
		return nil, err
	}
	similarity := CosineSimilarity(ratings)

	return &Snapshot{
		ID:            uuid.New().String(),
		BuiltAt:       time.Now(),
		Users:         ratings.Users,
		Videos:        ratings.Videos,
		Ratings:       ratings,
		Similarity:    similarity,
		Events:        cat.Events,
		Skipped:       cat.Skipped + ratings.Skipped,
		BuildDuration: time.Since(start),
	}, nil
}
