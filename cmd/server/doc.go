// Myflix Recommender - Collaborative Filtering Video Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/myflix-recommender

/*
Package main is the entry point of the Myflix recommendation service.

The server reads the video catalog from MongoDB, builds a user by video
rating matrix with cosine user similarity, and answers "what should this
user watch next" over HTTP.

# Startup

 1. Configuration: defaults, optional config.yaml, environment (Koanf v2)
 2. Logging: zerolog initialized from the logging section
 3. Catalog store: MongoDB client, verified with a ping, wrapped in a
    circuit breaker
 4. Engine: the first snapshot is built synchronously; if that fails the
    process exits, because serving without data is never correct
 5. Supervisor tree: snapshot refresh in the data layer, HTTP server in the
    api layer

# Configuration

The catalog connection uses the variables shared with the rest of the Myflix
stack:

	MONGO_HOST=myflix-mongo
	MONGO_PORT=27017
	MONGO_DB=videocatalog

HTTP_PORT defaults to 5002, the port the web frontend calls.

# Endpoints

	POST /recommendations                          {"user_id": "..."}
	GET  /api/v1/recommendations/user/{userID}     ?count=n
	GET  /api/v1/recommendations/status
	POST /api/v1/recommendations/refresh
	GET  /api/v1/health/live
	GET  /api/v1/health/ready
	GET  /metrics

# Signal Handling

SIGINT and SIGTERM cancel the supervisor tree. The HTTP server drains
in-flight requests, then the MongoDB client disconnects.
*/
package main
