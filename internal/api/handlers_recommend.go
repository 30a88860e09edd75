// Myflix Recommender - Collaborative Filtering Video Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/myflix-recommender

package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/myflix-recommender/internal/logging"
	"github.com/tomtom215/myflix-recommender/internal/recommend"
)

// legacySuccess and legacyError are the bodies of POST /recommendations.
type legacySuccess struct {
	Recommendations []string `json:"recommendations"`
}

type legacyError struct {
	Error string `json:"error"`
}

// LegacyRecommendations handles POST /recommendations.
//
// Request body {"user_id": "...", "count": n}. Success returns
// {"recommendations": [...]} and a missing user id returns
// 400 {"error": "User ID not provided"}.
func (h *Handler) LegacyRecommendations(w http.ResponseWriter, r *http.Request) {
	var body legacyRecommendationRequest
	if err := decodeJSONBody(w, r, &body); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, ErrBodyTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		writeJSON(w, status, legacyError{Error: "Invalid JSON body"})
		return
	}

	userID, ok := body.userID()
	if !ok {
		writeJSON(w, http.StatusBadRequest, legacyError{Error: legacyMissingUserMessage})
		return
	}

	resp, err := h.recommend(r, userID, body.Count)
	if err != nil {
		switch {
		case errors.Is(err, recommend.ErrInvalidRequest):
			writeJSON(w, http.StatusBadRequest, legacyError{Error: legacyMissingUserMessage})
		case errors.Is(err, recommend.ErrNoSnapshot):
			writeJSON(w, http.StatusServiceUnavailable, legacyError{Error: "Recommendations not ready"})
		default:
			writeJSON(w, http.StatusInternalServerError, legacyError{Error: "Internal error"})
		}
		return
	}

	writeJSON(w, http.StatusOK, legacySuccess{Recommendations: resp.Recommendations})
}

// GetRecommendations handles GET /api/v1/recommendations/user/{userID}?count=n.
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	userID, err := url.PathUnescape(chi.URLParam(r, "userID"))
	if err != nil {
		rw.BadRequest("Invalid user ID encoding")
		return
	}

	count, err := parseCountParam(r)
	if err != nil {
		rw.ValidationError(err.Error(), map[string]interface{}{"field": "count"})
		return
	}

	req := RecommendationRequest{UserID: userID, Count: count}
	if apiErr := validateRequest(&req); apiErr != nil {
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}

	resp, err := h.recommend(r, req.UserID, req.Count)
	if err != nil {
		h.writeEngineError(rw, r, err)
		return
	}
	rw.Success(resp)
}

func (h *Handler) recommend(r *http.Request, userID string, count *int) (*recommend.Response, error) {
	ctx, cancel := context.WithTimeout(r.Context(), h.config.RequestTimeout)
	defer cancel()

	return h.engine.Recommend(ctx, recommend.Request{
		UserID:    userID,
		Count:     count,
		RequestID: logging.RequestIDFromContext(r.Context()),
	})
}

func (h *Handler) writeEngineError(rw *ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, recommend.ErrInvalidRequest):
		rw.BadRequest("User ID not provided")
	case errors.Is(err, recommend.ErrNoSnapshot):
		rw.ServiceUnavailable("Recommendations not ready")
	default:
		logging.Ctx(r.Context()).Error().
			Str("error", sanitizeLogValue(err.Error())).
			Msg("recommendation failed")
		rw.InternalError("Failed to compute recommendations")
	}
}

// storeStatus describes the catalog store on the status endpoint.
type storeStatus struct {
	Reachable    bool   `json:"reachable"`
	Error        string `json:"error,omitempty"`
	BreakerState string `json:"breaker_state,omitempty"`
}

// statusResponse is the data of GET /api/v1/recommendations/status.
type statusResponse struct {
	Engine        recommend.Status `json:"engine"`
	Store         *storeStatus     `json:"store,omitempty"`
	UptimeSeconds float64          `json:"uptime_seconds"`
}

// Status handles GET /api/v1/recommendations/status.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		Engine:        h.engine.Status(),
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	}
	// Driver errors name internal store addresses; details go to the log.
	if detail := resp.Engine.LastRefreshErr; detail != "" {
		logging.Ctx(r.Context()).Debug().
			Str("error", sanitizeLogValue(detail)).
			Msg("last refresh failed")
		resp.Engine.LastRefreshErr = lastRefreshFailedMessage
	}

	if h.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), h.config.ProbeTimeout)
		defer cancel()

		st := &storeStatus{Reachable: true}
		if err := h.store.Ping(ctx); err != nil {
			st.Reachable = false
			st.Error = storeUnreachableMessage
			logging.Ctx(r.Context()).Warn().
				Str("error", sanitizeLogValue(err.Error())).
				Msg("catalog store ping failed")
		}
		if b, ok := h.store.(breakerStater); ok {
			st.BreakerState = b.State()
		}
		resp.Store = st
	}

	NewResponseWriter(w, r).Success(resp)
}

// Refresh handles POST /api/v1/recommendations/refresh. It rebuilds the
// snapshot synchronously and returns the new snapshot metadata.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	if !h.refreshLimiter.Allow() {
		rw.TooManyRequests("Refresh requested too recently")
		return
	}

	// The rebuild outlives a disconnected client; the engine bounds it with
	// its own refresh timeout.
	snap, err := h.engine.Refresh(context.WithoutCancel(r.Context()))
	if err != nil {
		if errors.Is(err, recommend.ErrRefreshInProgress) {
			rw.Conflict("A refresh is already running")
			return
		}
		logging.Ctx(r.Context()).Warn().Err(err).Msg("manual refresh failed")
		rw.ServiceUnavailable("Refresh failed, previous snapshot still active")
		return
	}

	h.logger.Info().Str("snapshot_id", snap.ID).Msg("manual refresh complete")
	rw.Success(snap.Info())
}
