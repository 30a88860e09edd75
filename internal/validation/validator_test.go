// Myflix Recommender - Collaborative Filtering Video Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/myflix-recommender

package validation

import (
	"strings"
	"testing"
)

type testRequest struct {
	UserID string `json:"user_id" validate:"required,max=8,opaqueid"`
	Count  *int   `json:"count" validate:"omitempty,gte=0,lte=50"`
}

func intPtr(n int) *int { return &n }

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name      string
		req       testRequest
		wantField string
		wantMsg   string
	}{
		{name: "valid", req: testRequest{UserID: "u1", Count: intPtr(5)}},
		{name: "valid without count", req: testRequest{UserID: "u1"}},
		{name: "zero count allowed", req: testRequest{UserID: "u1", Count: intPtr(0)}},
		{name: "missing user", req: testRequest{}, wantField: "user_id", wantMsg: "user_id is required"},
		{name: "user too long", req: testRequest{UserID: "123456789"}, wantField: "user_id", wantMsg: "user_id must be at most 8 characters"},
		{name: "control character", req: testRequest{UserID: "u\x001"}, wantField: "user_id", wantMsg: "user_id must not contain control characters"},
		{name: "count above max", req: testRequest{UserID: "u1", Count: intPtr(51)}, wantField: "count", wantMsg: "count must be less than or equal to 50"},
		{name: "negative count", req: testRequest{UserID: "u1", Count: intPtr(-1)}, wantField: "count", wantMsg: "count must be greater than or equal to 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verr := ValidateStruct(&tt.req)
			if tt.wantField == "" {
				if verr != nil {
					t.Fatalf("ValidateStruct() = %v, want nil", verr)
				}
				return
			}
			if verr == nil {
				t.Fatal("ValidateStruct() = nil, want error")
			}
			if !verr.HasField(tt.wantField) {
				t.Errorf("errors %v do not mention %s", verr.Errors(), tt.wantField)
			}
			if verr.Error() != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", verr.Error(), tt.wantMsg)
			}
		})
	}
}

func TestToAPIError(t *testing.T) {
	single := ValidateStruct(&testRequest{})
	apiErr := single.ToAPIError()
	if apiErr.Code != ErrorCode {
		t.Errorf("Code = %q, want %q", apiErr.Code, ErrorCode)
	}
	if apiErr.Details["field"] != "user_id" {
		t.Errorf("Details = %v", apiErr.Details)
	}

	multi := ValidateStruct(&testRequest{UserID: "123456789", Count: intPtr(99)})
	apiErr = multi.ToAPIError()
	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok || len(fields) != 2 {
		t.Fatalf("Details[fields] = %v, want 2 entries", apiErr.Details["fields"])
	}
	if !strings.Contains(apiErr.Message, "; ") {
		t.Errorf("Message = %q, want joined messages", apiErr.Message)
	}

	empty := (&RequestValidationError{}).ToAPIError()
	if empty.Message != "Validation failed" {
		t.Errorf("empty Message = %q", empty.Message)
	}
}

func TestGetValidatorIsSingleton(t *testing.T) {
	if GetValidator() != GetValidator() {
		t.Error("GetValidator() returned different instances")
	}
}
