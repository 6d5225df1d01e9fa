package service

import (
	"errors"

	"github.com/forgo/aisle/api/internal/model"
)

// Centralized service layer errors.
// All errors returned by service methods are defined here for consistency
// and to make error handling in handlers predictable.

// ===== Authentication Errors =====
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrPasswordRequired   = errors.New("password is required")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrPasswordTooLong    = errors.New("password must be at most 128 characters and 72 bytes")
	ErrInvalidEmail       = errors.New("invalid email format")
	ErrInvalidAccountType = errors.New("account_type must be couple or vendor")
)

// ===== Token Errors =====
var (
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	ErrRefreshTokenRevoked = errors.New("refresh token revoked")
)

// ===== Access Errors =====
var (
	ErrNotOwner   = errors.New("not the owner of this resource")
	ErrCoupleOnly = errors.New("only couple accounts can do this")
	ErrVendorOnly = errors.New("only vendor accounts can do this")
	ErrAdminOnly  = errors.New("admin role required")
)

// ===== Profile Errors =====
var (
	ErrProfileNotFound = errors.New("profile not found")
)

// ===== Vendor Errors =====
var (
	ErrVendorNotFound     = errors.New("vendor not found")
	ErrVendorExists       = errors.New("vendor listing already exists for this account")
	ErrStepOutOfOrder     = errors.New("complete the earlier wizard steps first")
	ErrVendorIncomplete   = errors.New("listing is missing required fields")
	ErrVendorNotSubmitted = errors.New("listing has not been submitted")
	ErrPortfolioFull      = errors.New("portfolio is full")
)

// ===== Custom Vendor Errors =====
var (
	ErrCustomVendorNotFound = errors.New("custom vendor not found")
)

// ===== Venue Errors =====
var (
	ErrVenueNotFound     = errors.New("venue not found")
	ErrRoomNotFound      = errors.New("room not found")
	ErrMaxRoomsReached   = errors.New("venue has reached the maximum number of rooms")
	ErrFloorPlanAnalysis = errors.New("floor plan analysis failed")
)

// ===== Seating Errors =====
var (
	ErrTemplateNotFound = errors.New("table template not found")
	ErrTemplateInUse    = errors.New("table template is in use")
	ErrTemplateBuiltIn  = errors.New("built-in templates cannot be changed")
	ErrTableNotFound    = errors.New("table not found")
	ErrMaxTablesReached = errors.New("room has reached the maximum number of tables")
	ErrSeatOutOfRange   = errors.New("seat number is outside the table")
	ErrSeatTaken        = errors.New("seat is already taken")
)

// ===== Guest Errors =====
var (
	ErrGuestNotFound     = errors.New("guest not found")
	ErrMaxGuestsReached  = errors.New("guest list has reached its maximum size")
	ErrImportTooLarge    = errors.New("import file is too large")
	ErrInvalidCSV        = errors.New("import file is not valid CSV")
	ErrMissingCSVColumns = errors.New("import header must include first_name")
)

// ===== Budget Errors =====
var (
	ErrBudgetOverAllocated = errors.New("allocations exceed 100 percent")
	ErrExpenseNotFound     = errors.New("expense not found")
)

// ===== Timeline Errors =====
var (
	ErrTaskNotFound    = errors.New("task not found")
	ErrMaxTasksReached = errors.New("timeline has reached its maximum size")
)

// ===== Moodboard Errors =====
var (
	ErrMoodboardNotFound    = errors.New("moodboard not found")
	ErrMaxImagesReached     = errors.New("moodboard has reached the maximum number of images")
	ErrImageIndexOutOfRange = errors.New("image index out of range")
	ErrImageGeneration      = errors.New("image generation failed")
	ErrImageGenDisabled     = errors.New("image generation is not configured")
)

// ===== Upload Errors =====
var (
	ErrUnsupportedMedia = errors.New("unsupported image type")
	ErrEmptyUpload      = errors.New("upload is empty")
)

// ErrValidation is the sentinel wrapped by ValidationError
var ErrValidation = errors.New("validation failed")

// ValidationError carries field-level problems from a request's Validate
type ValidationError struct {
	Fields []model.FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	return e.Fields[0].Field + ": " + e.Fields[0].Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// invalid wraps field errors, returning nil when there are none
func invalid(fields []model.FieldError) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

// fieldError builds a single-field ValidationError
func fieldError(field, message string) error {
	return &ValidationError{Fields: []model.FieldError{{Field: field, Message: message}}}
}
