// Myflix Recommender - Collaborative Filtering Video Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/myflix-recommender

package api

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// RecommendationRequest is the validated input of
// GET /api/v1/recommendations/user/{userID}.
type RecommendationRequest struct {
	UserID string `json:"user_id" validate:"required,max=256,opaqueid"`

	// Count nil selects the engine default. Values at or below zero are
	// valid and yield an empty list.
	Count *int `json:"count" validate:"omitempty,lte=10000"`
}

// legacyRecommendationRequest is the body of POST /recommendations. UserID
// is kept raw because older clients send numeric ids, which must not pass
// through float64.
type legacyRecommendationRequest struct {
	UserID json.RawMessage `json:"user_id"`
	Count  *int            `json:"count"`
}

// userID returns the id as text. Integer literals are kept digit for digit;
// other numbers use the shortest decimal form. Missing, null, empty and
// non-scalar values all report false.
func (r *legacyRecommendationRequest) userID() (string, bool) {
	raw := bytes.TrimSpace(r.UserID)
	if len(raw) == 0 {
		return "", false
	}

	switch c := raw[0]; {
	case c == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false
		}
		return s, s != ""
	case c == '-' || (c >= '0' && c <= '9'):
		text := string(raw)
		if !strings.ContainsAny(text, ".eE") {
			return text, true
		}
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return "", false
		}
		return strconv.FormatFloat(f, 'f', -1, 64), true
	default:
		return "", false
	}
}
