// Myflix Recommender - Collaborative Filtering Video Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/myflix-recommender

/*
Package supervisor runs the long-lived parts of the recommender under a
suture v4 supervisor tree.

	myflix-recommender (root)
	├── data-layer
	│   └── snapshot-refresh   (periodic catalog reload)
	└── api-layer
	    └── http-server

A service that returns an error is restarted with backoff. Lifecycle events
are logged through sutureslog, bridged to zerolog by logging.NewSlogLogger.
*/
package supervisor
