package model

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// ============================================================================
// ProblemDetails Tests
// ============================================================================

func TestProblemDetails_Error_IncludesStatusTitleDetail(t *testing.T) {
	t.Parallel()

	pd := NewNotFoundError("guest")
	msg := pd.Error()

	for _, want := range []string{"404", "Not Found", "guest not found"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error message %q should contain %q", msg, want)
		}
	}
}

func TestProblemDetails_WriteJSON_UsesProblemContentType(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	NewConflictError("seat already taken").WriteJSON(rr)

	if rr.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("expected application/problem+json, got %s", ct)
	}

	var body ProblemDetails
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Code != ErrCodeConflict {
		t.Errorf("expected code %d, got %d", ErrCodeConflict, body.Code)
	}
	if !strings.HasPrefix(body.Type, "https://api.aisle.wedding/errors/") {
		t.Errorf("unexpected type URI %s", body.Type)
	}
}

// ============================================================================
// Constructor Tests
// ============================================================================

func TestNewValidationError_SummarizesFirstField(t *testing.T) {
	t.Parallel()

	pd := NewValidationError([]FieldError{
		{Field: "width_ft", Message: "must be greater than zero"},
		{Field: "length_ft", Message: "must be greater than zero"},
	})

	if pd.Status != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", pd.Status)
	}
	if !strings.Contains(pd.Detail, "width_ft") || !strings.Contains(pd.Detail, "1 more") {
		t.Errorf("unexpected detail %q", pd.Detail)
	}
	if len(pd.Errors) != 2 {
		t.Errorf("expected 2 field errors, got %d", len(pd.Errors))
	}
}

func TestNewValidationError_SingleField(t *testing.T) {
	t.Parallel()

	pd := NewValidationError([]FieldError{{Field: "prompt", Message: "prompt is required"}})
	if pd.Detail != "prompt: prompt is required" {
		t.Errorf("unexpected detail %q", pd.Detail)
	}
}

func TestNewValidationError_Empty(t *testing.T) {
	t.Parallel()

	pd := NewValidationError(nil)
	if pd.Detail != "One or more fields failed validation" {
		t.Errorf("unexpected detail %q", pd.Detail)
	}
}

func TestNewLimitExceededError_CarriesLimit(t *testing.T) {
	t.Parallel()

	pd := NewLimitExceededError("moodboard images", MaxMoodboardImages)
	if pd.Limit == nil || *pd.Limit != MaxMoodboardImages {
		t.Errorf("expected limit %d, got %v", MaxMoodboardImages, pd.Limit)
	}
	if pd.Code != ErrCodeLimitExceeded || pd.Status != http.StatusUnprocessableEntity {
		t.Errorf("unexpected code %d status %d", pd.Code, pd.Status)
	}
	if !strings.Contains(pd.Detail, "moodboard images") {
		t.Errorf("unexpected detail %q", pd.Detail)
	}
}

func TestNewInternalError_DefaultDetail(t *testing.T) {
	t.Parallel()

	if pd := NewInternalError(""); pd.Detail == "" {
		t.Error("expected default detail")
	}
}

func TestConstructors_StatusCodes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		pd     *ProblemDetails
		status int
	}{
		{"unauthorized", NewUnauthorizedError("x"), http.StatusUnauthorized},
		{"forbidden", NewForbiddenError("x"), http.StatusForbidden},
		{"bad request", NewBadRequestError("x"), http.StatusBadRequest},
		{"rate limited", NewRateLimitError(3), http.StatusTooManyRequests},
		{"bad gateway", NewBadGatewayError("x"), http.StatusBadGateway},
		{"too large", NewPayloadTooLargeError(1024), http.StatusRequestEntityTooLarge},
		{"unavailable", NewServiceUnavailableError("x"), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.pd.Status != tt.status {
				t.Errorf("expected %d, got %d", tt.status, tt.pd.Status)
			}
			if tt.pd.Title != http.StatusText(tt.status) {
				t.Errorf("expected title %q, got %q", http.StatusText(tt.status), tt.pd.Title)
			}
			if tt.pd.Code == 0 {
				t.Error("every problem should carry a code")
			}
		})
	}
}
