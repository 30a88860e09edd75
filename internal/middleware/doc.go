// Myflix Recommender - Collaborative Filtering Video Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/myflix-recommender

/*
Package middleware provides the HTTP middleware shared by all routes.

All middleware uses the chi signature func(http.Handler) http.Handler and is
installed on the router in this order:

	r.Use(middleware.RequestID)         // X-Request-ID + logging context
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.AccessLog)         // one zerolog line per request
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics) // labelled by chi route pattern

PrometheusMetrics reads the matched route pattern after the handler has run,
so /api/v1/recommendations/user/{userID} is one label value regardless of
how many users are queried.
*/
package middleware
