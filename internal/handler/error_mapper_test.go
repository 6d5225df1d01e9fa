package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/forgo/aisle/api/internal/model"
	"github.com/forgo/aisle/api/internal/service"
)

func TestMapServiceError_Statuses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"bad credentials", service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"revoked refresh", service.ErrRefreshTokenRevoked, http.StatusUnauthorized},
		{"not owner", service.ErrNotOwner, http.StatusForbidden},
		{"built-in template", service.ErrTemplateBuiltIn, http.StatusForbidden},
		{"guest missing", service.ErrGuestNotFound, http.StatusNotFound},
		{"room missing", service.ErrRoomNotFound, http.StatusNotFound},
		{"seat taken", service.ErrSeatTaken, http.StatusConflict},
		{"template in use", service.ErrTemplateInUse, http.StatusConflict},
		{"over allocated", service.ErrBudgetOverAllocated, http.StatusUnprocessableEntity},
		{"table limit", service.ErrMaxTablesReached, http.StatusUnprocessableEntity},
		{"bad csv", service.ErrInvalidCSV, http.StatusUnprocessableEntity},
		{"import too large", service.ErrImportTooLarge, http.StatusRequestEntityTooLarge},
		{"provider failed", service.ErrImageGeneration, http.StatusBadGateway},
		{"floor plan failed", service.ErrFloorPlanAnalysis, http.StatusBadGateway},
		{"wrapped", fmt.Errorf("assign: %w", service.ErrSeatTaken), http.StatusConflict},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := MapServiceError(tt.err)
			if got.Status != tt.want {
				t.Errorf("MapServiceError(%v).Status = %d, want %d", tt.err, got.Status, tt.want)
			}
		})
	}
}

func TestMapServiceError_CapacityCarriesLimit(t *testing.T) {
	t.Parallel()

	got := MapServiceError(fmt.Errorf("add guest: %w", service.ErrMaxGuestsReached))
	if got.Code != model.ErrCodeLimitExceeded {
		t.Errorf("expected limit code, got %d", got.Code)
	}
	if got.Limit == nil || *got.Limit != model.MaxGuestsPerOwner {
		t.Errorf("expected limit %d, got %v", model.MaxGuestsPerOwner, got.Limit)
	}
}

func TestMapServiceError_Nil(t *testing.T) {
	t.Parallel()

	if MapServiceError(nil) != nil {
		t.Error("expected nil for nil error")
	}
}

func TestMapServiceError_ValidationFields(t *testing.T) {
	t.Parallel()

	err := &service.ValidationError{Fields: []model.FieldError{
		{Field: "seats", Message: "seats must be between 1 and 30"},
		{Field: "shape", Message: "shape is not recognised"},
	}}
	got := MapServiceError(fmt.Errorf("create template: %w", err))

	if got.Status != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", got.Status)
	}
	if len(got.Errors) != 2 || got.Errors[1].Field != "shape" {
		t.Errorf("expected both field errors, got %+v", got.Errors)
	}
}

func TestMapServiceError_InternalHidesDetail(t *testing.T) {
	t.Parallel()

	got := MapServiceErrorWithContext(errors.New("surreal: connection reset"), "logout")
	if got.Detail != "logout: an unexpected error occurred" {
		t.Errorf("unexpected detail %q", got.Detail)
	}
}
