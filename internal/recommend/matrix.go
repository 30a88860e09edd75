// Myflix Recommender - Collaborative Filtering Video Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/myflix-recommender

package recommend

import (
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"github.com/tomtom215/myflix-recommender/internal/catalog"
	"github.com/tomtom215/myflix-recommender/internal/metrics"
)

// RatingMatrix is a dense users x videos matrix of scores. A cell of exactly
// 0 means the user has not rated the video.
type RatingMatrix struct {
	Users  *IndexMap
	Videos *IndexMap

	// data is nil when either dimension is zero; gonum rejects empty matrices.
	data *mat.Dense

	// Skipped counts events dropped because their video was unknown.
	Skipped int
}

// Rows returns the number of users.
func (m *RatingMatrix) Rows() int { return m.Users.Len() }

// Cols returns the number of videos.
func (m *RatingMatrix) Cols() int { return m.Videos.Len() }

// At returns the score of user row i for video column j.
func (m *RatingMatrix) At(i, j int) float64 {
	return m.data.At(i, j)
}

// Row returns user row i without copying. Callers must not modify it.
func (m *RatingMatrix) Row(i int) []float64 {
	if m.data == nil {
		return nil
	}
	return m.data.RawRowView(i)
}

// Dense returns the underlying gonum matrix, or nil for an empty matrix.
func (m *RatingMatrix) Dense() *mat.Dense {
	return m.data
}

// BuildMatrix converts a loaded catalog into a rating matrix.
//
// Video columns follow catalog order and user rows follow first-seen order
// over cat.Users. A rating for an unknown video is handled by policy. Later
// events for the same (user, video) pair overwrite earlier ones.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func BuildMatrix(cat *catalog.Catalog, policy MissingVideoPolicy, logger zerolog.Logger) (*RatingMatrix, error) {
	videos := NewIndexMap(len(cat.Videos))
	for i := range cat.Videos {
		videos.Add(cat.Videos[i].ID)
	}

	users := NewIndexMap(len(cat.Users))
	for i := range cat.Users {
		users.Add(cat.Users[i].UserID)
	}

	m := &RatingMatrix{Users: users, Videos: videos}
	if users.Len() > 0 && videos.Len() > 0 {
		m.data = mat.NewDense(users.Len(), videos.Len(), nil)
	}

	for i := range cat.Users {
		row, _ := users.Lookup(cat.Users[i].UserID)
		for _, ev := range cat.Users[i].Events {
			col, ok := videos.Lookup(ev.VideoID)
			if !ok {
				integrityErr := &DataIntegrityError{UserID: ev.UserID, VideoID: ev.VideoID}
				if policy == PolicyFail {
					logger.Error().Err(integrityErr).Msg("rating references unknown video")
					return nil, integrityErr
				}
				m.Skipped++
				metrics.RecordSkippedRatingEvent("missing_video")
				logger.Warn().
					Str("user_id", ev.UserID).
					Str("video_id", ev.VideoID).
					Msg("skipping rating for unknown video")
				continue
			}
			m.data.Set(row, col, ev.Score)
		}
	}

	return m, nil
}
