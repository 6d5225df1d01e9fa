package model

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ErrorCode is the machine-readable code carried in every problem body.
// The leading digit groups codes by concern.
type ErrorCode int

const (
	// 1xxx: who is calling
	ErrCodeUnauthorized ErrorCode = 1001

	// 2xxx: what they may touch
	ErrCodeForbidden ErrorCode = 2001

	// 3xxx: planning records
	ErrCodeNotFound ErrorCode = 3001
	ErrCodeConflict ErrorCode = 3003

	// 4xxx: request content
	ErrCodeValidation    ErrorCode = 4001
	ErrCodeInvalidInput  ErrorCode = 4002
	ErrCodeLimitExceeded ErrorCode = 4003
	ErrCodeRateLimited   ErrorCode = 4029

	// 5xxx: our side or a provider's
	ErrCodeInternal    ErrorCode = 5001
	ErrCodeUnavailable ErrorCode = 5002
	ErrCodeProvider    ErrorCode = 5003
)

// problemTypeBase prefixes the type URI of every problem
const problemTypeBase = "https://api.aisle.wedding/errors/"

// ProblemDetails is an RFC 9457 response body. Errors lists per-field
// failures on 422s; Limit is set when a guest list, room or moodboard is full.
type ProblemDetails struct {
	Type     string       `json:"type"`
	Title    string       `json:"title"`
	Status   int          `json:"status"`
	Detail   string       `json:"detail,omitempty"`
	Instance string       `json:"instance,omitempty"`
	Code     ErrorCode    `json:"code,omitempty"`
	Errors   []FieldError `json:"errors,omitempty"`
	Limit    *int         `json:"limit,omitempty"`
}

// FieldError names one rejected request field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (p *ProblemDetails) Error() string {
	return fmt.Sprintf("%d %s: %s", p.Status, p.Title, p.Detail)
}

// WriteJSON sends p with the application/problem+json content type
func (p *ProblemDetails) WriteJSON(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// problem builds a body whose title is the standard status text
func problem(status int, slug string, code ErrorCode, detail string) *ProblemDetails {
	return &ProblemDetails{
		Type:   problemTypeBase + slug,
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
		Code:   code,
	}
}

func NewUnauthorizedError(detail string) *ProblemDetails {
	return problem(http.StatusUnauthorized, "unauthorized", ErrCodeUnauthorized, detail)
}

func NewForbiddenError(detail string) *ProblemDetails {
	return problem(http.StatusForbidden, "forbidden", ErrCodeForbidden, detail)
}

// NewNotFoundError reports a missing record, e.g. "guest not found"
func NewNotFoundError(resource string) *ProblemDetails {
	return problem(http.StatusNotFound, "not-found", ErrCodeNotFound, resource+" not found")
}

func NewConflictError(detail string) *ProblemDetails {
	return problem(http.StatusConflict, "conflict", ErrCodeConflict, detail)
}

// NewValidationError summarizes the first field in Detail and lists all of them
func NewValidationError(fields []FieldError) *ProblemDetails {
	detail := "One or more fields failed validation"
	switch {
	case len(fields) == 1:
		detail = fields[0].Field + ": " + fields[0].Message
	case len(fields) > 1:
		detail = fmt.Sprintf("%s: %s (and %d more errors)", fields[0].Field, fields[0].Message, len(fields)-1)
	}

	p := problem(http.StatusUnprocessableEntity, "validation", ErrCodeValidation, detail)
	p.Errors = fields
	return p
}

// NewLimitExceededError reports a full collection, such as a guest list at
// its maximum size
func NewLimitExceededError(resource string, limit int) *ProblemDetails {
	p := problem(http.StatusUnprocessableEntity, "limit-exceeded", ErrCodeLimitExceeded,
		fmt.Sprintf("Maximum of %d %s reached", limit, resource))
	p.Limit = &limit
	return p
}

func NewBadRequestError(detail string) *ProblemDetails {
	return problem(http.StatusBadRequest, "bad-request", ErrCodeInvalidInput, detail)
}

func NewPayloadTooLargeError(maxBytes int64) *ProblemDetails {
	return problem(http.StatusRequestEntityTooLarge, "payload-too-large", ErrCodeInvalidInput,
		fmt.Sprintf("Upload exceeds %d bytes", maxBytes))
}

func NewRateLimitError(retryAfter int) *ProblemDetails {
	return problem(http.StatusTooManyRequests, "rate-limited", ErrCodeRateLimited,
		fmt.Sprintf("Rate limit exceeded. Retry after %d seconds", retryAfter))
}

// NewInternalError hides the cause; an empty detail gets a generic message
func NewInternalError(detail string) *ProblemDetails {
	if detail == "" {
		detail = "An unexpected error occurred"
	}
	return problem(http.StatusInternalServerError, "internal", ErrCodeInternal, detail)
}

// NewBadGatewayError reports a failed image generation or floor plan provider
func NewBadGatewayError(detail string) *ProblemDetails {
	return problem(http.StatusBadGateway, "upstream", ErrCodeProvider, detail)
}

func NewServiceUnavailableError(detail string) *ProblemDetails {
	return problem(http.StatusServiceUnavailable, "unavailable", ErrCodeUnavailable, detail)
}
