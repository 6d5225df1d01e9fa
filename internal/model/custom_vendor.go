package model

import "time"

// CustomVendorStatus tracks where a couple is with a shortlisted vendor
type CustomVendorStatus string

const (
	CustomVendorResearching CustomVendorStatus = "researching"
	CustomVendorContacted   CustomVendorStatus = "contacted"
	CustomVendorBooked      CustomVendorStatus = "booked"
	CustomVendorDeclined    CustomVendorStatus = "declined"
)

// IsValid reports whether s is a known status
func (s CustomVendorStatus) IsValid() bool {
	switch s {
	case CustomVendorResearching, CustomVendorContacted, CustomVendorBooked, CustomVendorDeclined:
		return true
	}
	return false
}

// MaxCustomVendorNotesLength bounds the free-text notes
const MaxCustomVendorNotesLength = 2000

// CustomVendor is a vendor the couple tracks outside the marketplace
type CustomVendor struct {
	ID            string             `json:"id"`
	OwnerID       string             `json:"owner_id"`
	Name          string             `json:"name"`
	Category      string             `json:"category"`
	ContactName   *string            `json:"contact_name,omitempty"`
	Email         *string            `json:"email,omitempty"`
	Phone         *string            `json:"phone,omitempty"`
	Website       *string            `json:"website,omitempty"`
	EstimatedCost *int64             `json:"estimated_cost,omitempty"`
	ActualCost    *int64             `json:"actual_cost,omitempty"`
	Status        CustomVendorStatus `json:"status"`
	Notes         *string            `json:"notes,omitempty"`
	CreatedOn     time.Time          `json:"created_on"`
	UpdatedOn     time.Time          `json:"updated_on"`
}

// CreateCustomVendorRequest adds a vendor to the shortlist
type CreateCustomVendorRequest struct {
	Name          string             `json:"name"`
	Category      string             `json:"category"`
	ContactName   *string            `json:"contact_name,omitempty"`
	Email         *string            `json:"email,omitempty"`
	Phone         *string            `json:"phone,omitempty"`
	Website       *string            `json:"website,omitempty"`
	EstimatedCost *int64             `json:"estimated_cost,omitempty"`
	ActualCost    *int64             `json:"actual_cost,omitempty"`
	Status        CustomVendorStatus `json:"status,omitempty"`
	Notes         *string            `json:"notes,omitempty"`
}

// Validate checks the create request
func (r *CreateCustomVendorRequest) Validate() []FieldError {
	var errors []FieldError

	if blank(r.Name) {
		errors = append(errors, FieldError{Field: "name", Message: "name is required"})
	} else if tooLong(r.Name, MaxBusinessNameLength) {
		errors = append(errors, FieldError{Field: "name", Message: "name must be 120 characters or less"})
	}
	if !IsValidVendorCategory(r.Category) {
		errors = append(errors, FieldError{Field: "category", Message: "category is not recognised"})
	}
	if r.Status != "" && !r.Status.IsValid() {
		errors = append(errors, FieldError{Field: "status", Message: "status must be researching, contacted, booked or declined"})
	}
	errors = append(errors, validateCustomVendorCommon(r.Email, r.EstimatedCost, r.ActualCost, r.Notes)...)

	return errors
}

// UpdateCustomVendorRequest applies a partial update
type UpdateCustomVendorRequest struct {
	Name          *string             `json:"name,omitempty"`
	Category      *string             `json:"category,omitempty"`
	ContactName   *string             `json:"contact_name,omitempty"`
	Email         *string             `json:"email,omitempty"`
	Phone         *string             `json:"phone,omitempty"`
	Website       *string             `json:"website,omitempty"`
	EstimatedCost *int64              `json:"estimated_cost,omitempty"`
	ActualCost    *int64              `json:"actual_cost,omitempty"`
	Status        *CustomVendorStatus `json:"status,omitempty"`
	Notes         *string             `json:"notes,omitempty"`
}

// Validate checks the update request
func (r *UpdateCustomVendorRequest) Validate() []FieldError {
	var errors []FieldError

	if r.Name != nil && blank(*r.Name) {
		errors = append(errors, FieldError{Field: "name", Message: "name cannot be empty"})
	}
	if r.Category != nil && !IsValidVendorCategory(*r.Category) {
		errors = append(errors, FieldError{Field: "category", Message: "category is not recognised"})
	}
	if r.Status != nil && !r.Status.IsValid() {
		errors = append(errors, FieldError{Field: "status", Message: "status must be researching, contacted, booked or declined"})
	}
	errors = append(errors, validateCustomVendorCommon(r.Email, r.EstimatedCost, r.ActualCost, r.Notes)...)

	return errors
}

func validateCustomVendorCommon(email *string, estimated, actual *int64, notes *string) []FieldError {
	var errors []FieldError
	if email != nil && *email != "" && !IsValidEmail(*email) {
		errors = append(errors, FieldError{Field: "email", Message: "email is not valid"})
	}
	if estimated != nil && *estimated < 0 {
		errors = append(errors, FieldError{Field: "estimated_cost", Message: "estimated_cost cannot be negative"})
	}
	if actual != nil && *actual < 0 {
		errors = append(errors, FieldError{Field: "actual_cost", Message: "actual_cost cannot be negative"})
	}
	if notes != nil && tooLong(*notes, MaxCustomVendorNotesLength) {
		errors = append(errors, FieldError{Field: "notes", Message: "notes must be 2000 characters or less"})
	}
	return errors
}

// CustomVendorFilters narrows the shortlist
type CustomVendorFilters struct {
	Category string
	Status   string
}
