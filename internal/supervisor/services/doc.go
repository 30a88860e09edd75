// Myflix Recommender - Collaborative Filtering Video Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/myflix-recommender

// Package services adapts recommender components to suture.Service.
//
// Each service blocks in Serve until its context is canceled, returns an
// error to request a restart, and implements fmt.Stringer so supervisor
// events name it.
package services
