// Package model defines the entities and request types of the Aisle API.
//
// Entities mirror the stored tables: User, Profile, Vendor, CustomVendor,
// Venue and VenueRoom, TableTemplate and TableInstance, Guest, Budget and
// Expense, TimelineTask and Moodboard. Money is always int64 cents and
// calendar dates travel as YYYY-MM-DD strings (see ParseDate).
//
// Request types carry a Validate method that returns every field problem
// at once; handlers turn a non-empty slice into a 422 response:
//
//	if errs := req.Validate(); len(errs) > 0 {
//	    WriteError(w, model.NewValidationError(errs))
//	    return
//	}
//
// Errors leave the API as RFC 9457 problem details (errors.go).
package model
