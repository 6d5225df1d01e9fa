// Package service implements the business logic layer for the Aisle API.
//
// The service package contains the planning rules, validation and
// orchestration of repository operations. Services sit between the HTTP
// handlers and data access.
//
// # Service Pattern
//
// All services follow a consistent pattern:
//
//   - Constructor function (NewXxxService) accepts a config struct with repository dependencies
//   - Methods take the caller's user id and enforce ownership themselves
//   - Errors are returned as sentinel errors or wrapped errors for context
//   - Context is passed through for cancellation and request-scoped values
//
// # Repository Interfaces
//
// Services define their own small repository interfaces, so tests use
// in-memory fakes and the SurrealDB repositories satisfy them implicitly.
//
// # Error Handling
//
// Sentinels live in errors.go. Request validation failures are returned as
// *ValidationError, which carries field messages and matches ErrValidation:
//
//	if errors.Is(err, service.ErrValidation) {
//	    var verr *service.ValidationError
//	    errors.As(err, &verr)
//	}
//
// # Example Usage
//
//	guests := NewGuestService(GuestServiceConfig{
//	    GuestRepo: guestRepository,
//	})
//	guest, err := guests.Create(ctx, userID, model.CreateGuestRequest{
//	    FirstName: "Ann",
//	})
package service
