// Myflix Recommender - Collaborative Filtering Video Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/myflix-recommender

// Package recommend implements user-based collaborative filtering over the
// video catalog.
//
// # Pipeline
//
// A snapshot is built in three steps, each pure and deterministic:
//
//   - BuildMatrix assigns first-seen indices to videos and users and fills a
//     dense users x videos rating matrix (0 means unrated).
//   - CosineSimilarity computes the symmetric users x users cosine matrix.
//   - The resulting Snapshot bundles both matrices with their index maps.
//
// Recommend answers one request against a snapshot: other users are ranked
// by descending similarity to the target, and the videos the target has not
// rated are emitted in column order, each at most once, until the requested
// count is reached.
//
// # Usage
//
//	engine := recommend.NewEngine(catalog.NewLoader(source, logger), cfg, logger)
//	if err := engine.Start(ctx); err != nil {
//	    // *StartupLoadError: the service must not serve traffic
//	}
//
//	resp, err := engine.Recommend(ctx, recommend.Request{UserID: "u1"})
//
// # Thread Safety
//
// Snapshots are immutable once built. The Engine publishes the active
// snapshot through an atomic pointer, so a request sees either the old or the
// new snapshot in full. Refreshes are serialized; a failed refresh leaves the
// previous snapshot in effect.
package recommend
