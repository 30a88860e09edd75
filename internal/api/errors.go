// Myflix Recommender - Collaborative Filtering Video Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/myflix-recommender

package api

import "errors"

var (
	// ErrInvalidCount indicates a count parameter that is not an integer.
	ErrInvalidCount = errors.New("count must be an integer")

	// ErrBodyTooLarge indicates a request body over maxBodyBytes.
	ErrBodyTooLarge = errors.New("request body too large")
)

// legacyMissingUserMessage is the error body the web frontend matches on.
const legacyMissingUserMessage = "User ID not provided"

// Public status messages; the driver errors behind them stay in the log.
const (
	storeUnreachableMessage  = "catalog store unreachable"
	lastRefreshFailedMessage = "last refresh failed"
)
