// Myflix Recommender - Collaborative Filtering Video Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/myflix-recommender

package recommend

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest is returned when a request carries no user id.
	ErrInvalidRequest = errors.New("recommend: user id not provided")

	// ErrNoSnapshot is returned when no snapshot has been built yet.
	ErrNoSnapshot = errors.New("recommend: no snapshot loaded")

	// ErrRefreshInProgress is returned when another refresh holds the lock.
	ErrRefreshInProgress = errors.New("recommend: snapshot refresh already in progress")
)

// StartupLoadError means the initial snapshot could not be built. The
// service must not serve traffic after this error.
type StartupLoadError struct {
	Err error
}

func (e *StartupLoadError) Error() string {
	return fmt.Sprintf("startup load failed: %v", e.Err)
}

func (e *StartupLoadError) Unwrap() error {
	return e.Err
}

// DataIntegrityError means a rating references a video that is not in the
// loaded catalog.
type DataIntegrityError struct {
	UserID  string
	VideoID string
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("data integrity: user %q rated unknown video %q", e.UserID, e.VideoID)
}
