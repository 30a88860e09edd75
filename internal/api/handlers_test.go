// Myflix Recommender - Collaborative Filtering Video Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/myflix-recommender

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/myflix-recommender/internal/catalog"
	"github.com/tomtom215/myflix-recommender/internal/recommend"
)

// videoSource serves a fixed video list to catalog.Loader.
type videoSource struct {
	mu     sync.Mutex
	videos []catalog.Video
	err    error
}

func (s *videoSource) Videos(context.Context) ([]catalog.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.videos, s.err
}

func (s *videoSource) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// scenarioVideos is A {v1:5, v2:3}, B {v1:4, v2:2, v3:5}, C {v3:1}.
func scenarioVideos() []catalog.Video {
	return []catalog.Video{
		{ID: "v1", Ratings: []catalog.Rating{{User: "A", Score: 5}, {User: "B", Score: 4}}},
		{ID: "v2", Ratings: []catalog.Rating{{User: "A", Score: 3}, {User: "B", Score: 2}}},
		{ID: "v3", Ratings: []catalog.Rating{{User: "B", Score: 5}, {User: "C", Score: 1}}},
	}
}

func newTestEngine(t *testing.T) (*recommend.Engine, *videoSource) {
	t.Helper()

	source := &videoSource{videos: scenarioVideos()}
	engine, err := recommend.NewEngine(catalog.NewLoader(source, zerolog.Nop()), nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	if err := engine.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(engine.Close)
	return engine, source
}

// stubRecommender returns canned errors for paths a real engine cannot
// easily reach.
type stubRecommender struct {
	recommendErr   error
	refreshErr     error
	ready          bool
	lastRefreshErr string
}

func (s *stubRecommender) Recommend(context.Context, recommend.Request) (*recommend.Response, error) {
	if s.recommendErr != nil {
		return nil, s.recommendErr
	}
	return &recommend.Response{Recommendations: []string{}}, nil
}

func (s *stubRecommender) Refresh(context.Context) (*recommend.Snapshot, error) {
	return nil, s.refreshErr
}

func (s *stubRecommender) Status() recommend.Status {
	return recommend.Status{Ready: s.ready, LastRefreshErr: s.lastRefreshErr}
}

func (s *stubRecommender) Ready() bool { return s.ready }

type stubStore struct {
	err   error
	state string
}

func (s *stubStore) Ping(context.Context) error { return s.err }

func (s *stubStore) State() string { return s.state }

func newTestServer(t *testing.T, engine Recommender, store StoreProbe) http.Handler {
	t.Helper()
	h := NewHandler(engine, store, HandlerConfig{}, zerolog.Nop())
	mw := NewChiMiddleware(&ChiMiddlewareConfig{
		CORSAllowedOrigins: []string{"*"},
		RateLimitDisabled:  true,
	})
	return NewRouter(h, mw).SetupChi()
}

func doRequest(t *testing.T, handler http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, http.NoBody)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// envelope decodes APIResponse with Data kept raw.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
	Meta    *APIMeta        `json:"meta"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("response %q is not an envelope: %v", rec.Body.String(), err)
	}
	return env
}

func TestLegacyRecommendations_LargeNumericUserID(t *testing.T) {
	// 2^53 + 1 is not representable as float64.
	const bigID = "9007199254740993"
	source := &videoSource{videos: []catalog.Video{
		{ID: "v1", Ratings: []catalog.Rating{{User: bigID, Score: 5}, {User: "9007199254740992", Score: 5}}},
		{ID: "v2", Ratings: []catalog.Rating{{User: "9007199254740992", Score: 4}}},
	}}
	engine, err := recommend.NewEngine(catalog.NewLoader(source, zerolog.Nop()), nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	if err := engine.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(engine.Close)
	server := newTestServer(t, engine, nil)

	rec := doRequest(t, server, http.MethodPost, "/recommendations", `{"user_id":`+bigID+`}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"recommendations":["v2"]}` {
		t.Errorf("body = %s, want the recommendations of %s", got, bigID)
	}
}

func TestLegacyRecommendations(t *testing.T) {
	engine, _ := newTestEngine(t)
	server := newTestServer(t, engine, nil)

	tests := []struct {
		name     string
		body     string
		wantCode int
		wantBody string
	}{
		{name: "most similar neighbor", body: `{"user_id":"A"}`, wantCode: 200, wantBody: `{"recommendations":["v3"]}`},
		{name: "column order", body: `{"user_id":"C"}`, wantCode: 200, wantBody: `{"recommendations":["v1","v2"]}`},
		{name: "explicit count", body: `{"user_id":"C","count":1}`, wantCode: 200, wantBody: `{"recommendations":["v1"]}`},
		{name: "zero count", body: `{"user_id":"C","count":0}`, wantCode: 200, wantBody: `{"recommendations":[]}`},
		{name: "unknown user", body: `{"user_id":"nobody"}`, wantCode: 200, wantBody: `{"recommendations":[]}`},
		{name: "numeric user", body: `{"user_id":42}`, wantCode: 200, wantBody: `{"recommendations":[]}`},
		{name: "missing user", body: `{}`, wantCode: 400, wantBody: `{"error":"User ID not provided"}`},
		{name: "empty user", body: `{"user_id":""}`, wantCode: 400, wantBody: `{"error":"User ID not provided"}`},
		{name: "null user", body: `{"user_id":null}`, wantCode: 400, wantBody: `{"error":"User ID not provided"}`},
		{name: "object user", body: `{"user_id":{"x":1}}`, wantCode: 400, wantBody: `{"error":"User ID not provided"}`},
		{name: "no body", body: "", wantCode: 400, wantBody: `{"error":"User ID not provided"}`},
		{name: "malformed JSON", body: `{"user_id":`, wantCode: 400, wantBody: `{"error":"Invalid JSON body"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, server, http.MethodPost, "/recommendations", tt.body)

			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.wantCode, rec.Body.String())
			}
			if got := strings.TrimSpace(rec.Body.String()); got != tt.wantBody {
				t.Errorf("body = %s, want %s", got, tt.wantBody)
			}
			if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
				t.Errorf("Content-Type = %q", ct)
			}
		})
	}
}

func TestLegacyRecommendations_NotReady(t *testing.T) {
	server := newTestServer(t, &stubRecommender{recommendErr: recommend.ErrNoSnapshot}, nil)

	rec := doRequest(t, server, http.MethodPost, "/recommendations", `{"user_id":"A"}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestLegacyRecommendations_BodyTooLarge(t *testing.T) {
	engine, _ := newTestEngine(t)
	server := newTestServer(t, engine, nil)

	body := `{"user_id":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	rec := doRequest(t, server, http.MethodPost, "/recommendations", body)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
}

func TestGetRecommendations(t *testing.T) {
	engine, _ := newTestEngine(t)
	server := newTestServer(t, engine, nil)

	tests := []struct {
		name     string
		target   string
		wantCode int
		wantRecs []string
		wantErr  string
	}{
		{name: "default count", target: "/api/v1/recommendations/user/C", wantCode: 200, wantRecs: []string{"v1", "v2"}},
		{name: "count param", target: "/api/v1/recommendations/user/C?count=1", wantCode: 200, wantRecs: []string{"v1"}},
		{name: "negative count", target: "/api/v1/recommendations/user/C?count=-1", wantCode: 200, wantRecs: []string{}},
		{name: "unknown user", target: "/api/v1/recommendations/user/ghost", wantCode: 200, wantRecs: []string{}},
		{name: "escaped id", target: "/api/v1/recommendations/user/%41", wantCode: 200, wantRecs: []string{"v3"}},
		{name: "bad count", target: "/api/v1/recommendations/user/C?count=ten", wantCode: 400, wantErr: ErrCodeValidationFailed},
		{name: "count too large", target: "/api/v1/recommendations/user/C?count=100000", wantCode: 400, wantErr: ErrCodeValidationFailed},
		{name: "control characters", target: "/api/v1/recommendations/user/a%01b", wantCode: 400, wantErr: ErrCodeValidationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, server, http.MethodGet, tt.target, "")
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantCode, rec.Body.String())
			}

			env := decodeEnvelope(t, rec)
			if tt.wantErr != "" {
				if env.Success || env.Error == nil || env.Error.Code != tt.wantErr {
					t.Errorf("error = %+v, want code %s", env.Error, tt.wantErr)
				}
				return
			}

			var data recommend.Response
			if err := json.Unmarshal(env.Data, &data); err != nil {
				t.Fatalf("decode data: %v", err)
			}
			if len(data.Recommendations) != len(tt.wantRecs) {
				t.Fatalf("recommendations = %v, want %v", data.Recommendations, tt.wantRecs)
			}
			for i := range tt.wantRecs {
				if data.Recommendations[i] != tt.wantRecs[i] {
					t.Errorf("recommendations = %v, want %v", data.Recommendations, tt.wantRecs)
				}
			}
			if data.SnapshotID == "" || data.Count != len(tt.wantRecs) {
				t.Errorf("metadata = %+v", data)
			}
			if env.Meta == nil || env.Meta.RequestID != rec.Header().Get("X-Request-ID") {
				t.Errorf("meta = %+v, want request id %s", env.Meta, rec.Header().Get("X-Request-ID"))
			}
		})
	}
}

func TestGetRecommendations_EngineErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{name: "not ready", err: recommend.ErrNoSnapshot, wantCode: http.StatusServiceUnavailable},
		{name: "invalid", err: recommend.ErrInvalidRequest, wantCode: http.StatusBadRequest},
		{name: "unexpected", err: errors.New("boom\nforged"), wantCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newTestServer(t, &stubRecommender{recommendErr: tt.err}, nil)
			rec := doRequest(t, server, http.MethodGet, "/api/v1/recommendations/user/A", "")
			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
		})
	}
}

func TestStatus(t *testing.T) {
	engine, _ := newTestEngine(t)
	server := newTestServer(t, engine, &stubStore{err: errors.New("no route to host"), state: "open"})

	rec := doRequest(t, server, http.MethodGet, "/api/v1/recommendations/status", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var data statusResponse
	if err := json.Unmarshal(decodeEnvelope(t, rec).Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if !data.Engine.Ready || data.Engine.Snapshot == nil || data.Engine.Snapshot.Users != 3 {
		t.Errorf("engine = %+v", data.Engine)
	}
	if data.Store == nil || data.Store.Reachable || data.Store.BreakerState != "open" {
		t.Errorf("store = %+v, want unreachable with open breaker", data.Store)
	}
}

func TestStatus_HidesStoreErrorDetail(t *testing.T) {
	const detail = "server selection error: current topology: { Servers: [{ Addr: 10.0.3.7:27017 }] }"
	engine := &stubRecommender{ready: true, lastRefreshErr: "load catalog: " + detail}
	server := newTestServer(t, engine, &stubStore{err: errors.New(detail), state: "closed"})

	rec := doRequest(t, server, http.MethodGet, "/api/v1/recommendations/status", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if body := rec.Body.String(); strings.Contains(body, "10.0.3.7") || strings.Contains(body, "topology") {
		t.Errorf("status body exposes store detail: %s", body)
	}

	var data statusResponse
	if err := json.Unmarshal(decodeEnvelope(t, rec).Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.Store == nil || data.Store.Error != storeUnreachableMessage {
		t.Errorf("store = %+v, want generic unreachable message", data.Store)
	}
	if data.Engine.LastRefreshErr != lastRefreshFailedMessage {
		t.Errorf("last_refresh_error = %q, want %q", data.Engine.LastRefreshErr, lastRefreshFailedMessage)
	}
}

func TestRefresh(t *testing.T) {
	engine, source := newTestEngine(t)
	server := newTestServer(t, engine, nil)
	before := engine.Snapshot().ID

	source.mu.Lock()
	source.videos = append(scenarioVideos(), catalog.Video{ID: "v4", Ratings: []catalog.Rating{{User: "D", Score: 2}}})
	source.mu.Unlock()

	rec := doRequest(t, server, http.MethodPost, "/api/v1/recommendations/refresh", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	var info recommend.SnapshotInfo
	if err := json.Unmarshal(decodeEnvelope(t, rec).Data, &info); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if info.ID == before || info.Videos != 4 || info.Users != 4 {
		t.Errorf("snapshot = %+v, want a new 4x4 snapshot", info)
	}

	// The default bucket holds one token.
	rec = doRequest(t, server, http.MethodPost, "/api/v1/recommendations/refresh", "")
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("second refresh status = %d, want 429", rec.Code)
	}
}

func TestRefresh_Errors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{name: "already running", err: recommend.ErrRefreshInProgress, wantCode: http.StatusConflict},
		{name: "store failure", err: errors.New("load catalog: connection refused"), wantCode: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newTestServer(t, &stubRecommender{refreshErr: tt.err, ready: true}, nil)
			rec := doRequest(t, server, http.MethodPost, "/api/v1/recommendations/refresh", "")
			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
		})
	}
}

func TestRefresh_FailureKeepsServing(t *testing.T) {
	engine, source := newTestEngine(t)
	server := newTestServer(t, engine, nil)

	source.setErr(errors.New("connection refused"))
	rec := doRequest(t, server, http.MethodPost, "/api/v1/recommendations/refresh", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}

	rec = doRequest(t, server, http.MethodPost, "/recommendations", `{"user_id":"A"}`)
	if got := strings.TrimSpace(rec.Body.String()); got != `{"recommendations":["v3"]}` {
		t.Errorf("body after failed refresh = %s", got)
	}
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name      string
		ready     bool
		target    string
		wantCode  int
		wantState string
	}{
		{name: "live when not ready", ready: false, target: "/api/v1/health/live", wantCode: 200, wantState: "alive"},
		{name: "ready", ready: true, target: "/api/v1/health/ready", wantCode: 200, wantState: "ready"},
		{name: "not ready", ready: false, target: "/api/v1/health/ready", wantCode: 503},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newTestServer(t, &stubRecommender{ready: tt.ready}, nil)
			rec := doRequest(t, server, http.MethodGet, tt.target, "")
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantState == "" {
				return
			}
			var data healthResponse
			if err := json.Unmarshal(decodeEnvelope(t, rec).Data, &data); err != nil {
				t.Fatalf("decode data: %v", err)
			}
			if data.Status != tt.wantState {
				t.Errorf("status field = %q, want %q", data.Status, tt.wantState)
			}
		})
	}
}
