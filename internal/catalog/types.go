// Myflix Recommender - Collaborative Filtering Video Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/myflix-recommender

// Package catalog reads video documents and their embedded user ratings from
// the video catalog store and flattens them into rating events.
//
// The catalog is read-only from this service's point of view. One Load call
// performs one full read pass; the result is a point-in-time copy that the
// recommend package turns into a snapshot.
package catalog

import (
	"context"
	"time"
)

// Rating is one entry of a video's embedded rating list. Sources report
// undecodable entries with an empty User or a NaN Score and leave dropping
// them to the Loader.
type Rating struct {
	User  string
	Score float64
}

// Video is a catalog entry with its identifier normalized to a string.
type Video struct {
	ID      string
	Ratings []Rating
}

// RatingEvent is one user's score for one video.
type RatingEvent struct {
	UserID  string
	VideoID string
	Score   float64
}

// UserRatings holds a user's rating events in catalog order.
type UserRatings struct {
	UserID string
	Events []RatingEvent
}

// Catalog is the flattened result of one load.
//
// Videos keeps catalog iteration order and Users keeps first-seen order over
// that iteration. Both orders decide matrix index assignment downstream.
type Catalog struct {
	Videos   []Video
	Users    []UserRatings
	Events   int
	Skipped  int
	LoadedAt time.Time
}

// Source fetches every video document from the catalog store.
type Source interface {
	Videos(ctx context.Context) ([]Video, error)
}

// Pinger is implemented by sources that can report store reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}
