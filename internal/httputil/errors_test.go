package httputil

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
)

func TestWriteBadRequestError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteBadRequestError(rec, "req_123", "question is required")

	if rec.Code != 400 {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected JSON content type, got %s", ct)
	}

	var apiErr APIError
	if err := json.Unmarshal(rec.Body.Bytes(), &apiErr); err != nil {
		t.Fatalf("body is not valid JSON: %v", err)
	}
	if apiErr.Error.Message != "question is required" {
		t.Errorf("unexpected message %q", apiErr.Error.Message)
	}
	if apiErr.Error.Code != "invalid_request" {
		t.Errorf("unexpected code %q", apiErr.Error.Code)
	}
	if apiErr.Error.RequestID != "req_123" {
		t.Errorf("unexpected request id %q", apiErr.Error.RequestID)
	}
}

func TestWriteUpstreamError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteUpstreamError(rec, "req_456", "provider request failed")

	if rec.Code != 502 {
		t.Errorf("expected status 502, got %d", rec.Code)
	}
	var apiErr APIError
	if err := json.Unmarshal(rec.Body.Bytes(), &apiErr); err != nil {
		t.Fatalf("body is not valid JSON: %v", err)
	}
	if apiErr.Error.Type != "upstream_error" {
		t.Errorf("unexpected type %q", apiErr.Error.Type)
	}
}
