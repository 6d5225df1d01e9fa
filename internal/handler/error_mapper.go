package handler

import (
	"errors"
	"log/slog"

	"github.com/forgo/aisle/api/internal/model"
	"github.com/forgo/aisle/api/internal/service"
)

// MapServiceError converts a service error to a ProblemDetails response.
// This centralizes error handling logic for all handlers, ensuring consistent
// HTTP status codes and error messages across the API.
func MapServiceError(err error) *model.ProblemDetails {
	if err == nil {
		return nil
	}

	// Field-level validation carries its own field list
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		return model.NewValidationError(verr.Fields)
	}

	switch {
	// ===== Authentication Errors → 401 =====
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidRefreshToken),
		errors.Is(err, service.ErrRefreshTokenExpired),
		errors.Is(err, service.ErrRefreshTokenRevoked):
		return model.NewUnauthorizedError(err.Error())

	// ===== Authorization Errors → 403 =====
	case errors.Is(err, service.ErrNotOwner),
		errors.Is(err, service.ErrCoupleOnly),
		errors.Is(err, service.ErrVendorOnly),
		errors.Is(err, service.ErrAdminOnly),
		errors.Is(err, service.ErrTemplateBuiltIn):
		return model.NewForbiddenError(err.Error())

	// ===== Not Found Errors → 404 =====
	case errors.Is(err, service.ErrUserNotFound):
		return model.NewNotFoundError("user")
	case errors.Is(err, service.ErrProfileNotFound):
		return model.NewNotFoundError("profile")
	case errors.Is(err, service.ErrVendorNotFound):
		return model.NewNotFoundError("vendor")
	case errors.Is(err, service.ErrCustomVendorNotFound):
		return model.NewNotFoundError("custom vendor")
	case errors.Is(err, service.ErrVenueNotFound):
		return model.NewNotFoundError("venue")
	case errors.Is(err, service.ErrRoomNotFound):
		return model.NewNotFoundError("room")
	case errors.Is(err, service.ErrTemplateNotFound):
		return model.NewNotFoundError("table template")
	case errors.Is(err, service.ErrTableNotFound):
		return model.NewNotFoundError("table")
	case errors.Is(err, service.ErrGuestNotFound):
		return model.NewNotFoundError("guest")
	case errors.Is(err, service.ErrExpenseNotFound):
		return model.NewNotFoundError("expense")
	case errors.Is(err, service.ErrTaskNotFound):
		return model.NewNotFoundError("task")
	case errors.Is(err, service.ErrMoodboardNotFound):
		return model.NewNotFoundError("moodboard")

	// ===== Conflict Errors → 409 =====
	case errors.Is(err, service.ErrEmailAlreadyExists),
		errors.Is(err, service.ErrVendorExists),
		errors.Is(err, service.ErrTemplateInUse),
		errors.Is(err, service.ErrSeatTaken),
		errors.Is(err, service.ErrVendorNotSubmitted):
		return model.NewConflictError(err.Error())

	// ===== Validation Errors → 422 =====
	case errors.Is(err, service.ErrInvalidEmail):
		return fieldProblem("email", err)
	case errors.Is(err, service.ErrPasswordRequired),
		errors.Is(err, service.ErrPasswordTooShort),
		errors.Is(err, service.ErrPasswordTooLong):
		return fieldProblem("password", err)
	case errors.Is(err, service.ErrInvalidAccountType):
		return fieldProblem("account_type", err)
	case errors.Is(err, service.ErrStepOutOfOrder):
		return fieldProblem("step", err)
	case errors.Is(err, service.ErrVendorIncomplete):
		return fieldProblem("listing", err)
	case errors.Is(err, service.ErrSeatOutOfRange):
		return fieldProblem("seat", err)
	case errors.Is(err, service.ErrBudgetOverAllocated):
		return fieldProblem("allocations", err)
	case errors.Is(err, service.ErrImageIndexOutOfRange):
		return fieldProblem("index", err)
	case errors.Is(err, service.ErrInvalidCSV),
		errors.Is(err, service.ErrMissingCSVColumns):
		return fieldProblem("file", err)
	case errors.Is(err, service.ErrUnsupportedMedia),
		errors.Is(err, service.ErrEmptyUpload):
		return fieldProblem("file", err)
	case errors.Is(err, service.ErrImageGenDisabled):
		return fieldProblem("prompt", err)

	// Limit/capacity errors → 422
	case errors.Is(err, service.ErrMaxRoomsReached):
		return model.NewLimitExceededError("rooms", model.MaxRoomsPerVenue)
	case errors.Is(err, service.ErrMaxTablesReached):
		return model.NewLimitExceededError("tables", model.MaxTablesPerRoom)
	case errors.Is(err, service.ErrMaxGuestsReached):
		return model.NewLimitExceededError("guests", model.MaxGuestsPerOwner)
	case errors.Is(err, service.ErrMaxTasksReached):
		return model.NewLimitExceededError("tasks", model.MaxTasksPerOwner)
	case errors.Is(err, service.ErrMaxImagesReached):
		return model.NewLimitExceededError("moodboard images", model.MaxMoodboardImages)
	case errors.Is(err, service.ErrPortfolioFull):
		return model.NewLimitExceededError("portfolio items", model.MaxPortfolioItems)

	// ===== Payload Errors → 413 =====
	case errors.Is(err, service.ErrImportTooLarge):
		p := model.NewPayloadTooLargeError(model.MaxGuestImportBytes)
		p.Detail = err.Error()
		return p

	// ===== Provider/External Errors → 502 =====
	case errors.Is(err, service.ErrImageGeneration),
		errors.Is(err, service.ErrFloorPlanAnalysis):
		return model.NewBadGatewayError(err.Error())

	// ===== Default → 500 =====
	default:
		slog.Error("unhandled service error", slog.String("error", err.Error()))
		return model.NewInternalError("")
	}
}

// MapServiceErrorWithContext converts a service error to a ProblemDetails response
// with additional context about the operation that failed.
func MapServiceErrorWithContext(err error, operation string) *model.ProblemDetails {
	pd := MapServiceError(err)
	if pd != nil && pd.Status == 500 {
		pd.Detail = operation + ": an unexpected error occurred"
	}
	return pd
}

func fieldProblem(field string, err error) *model.ProblemDetails {
	return model.NewValidationError([]model.FieldError{{Field: field, Message: err.Error()}})
}
