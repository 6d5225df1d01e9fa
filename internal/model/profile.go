package model

import "time"

// Profile is the couple's wedding profile
type Profile struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	PartnerOne      *string    `json:"partner_one,omitempty"`
	PartnerTwo      *string    `json:"partner_two,omitempty"`
	WeddingDate     *time.Time `json:"wedding_date,omitempty"`
	Location        *string    `json:"location,omitempty"`
	EstimatedGuests int        `json:"estimated_guests"`
	TotalBudget     int64      `json:"total_budget"` // cents
	Currency        string     `json:"currency"`
	CreatedOn       time.Time  `json:"created_on"`
	UpdatedOn       time.Time  `json:"updated_on"`
}

// DefaultCurrency is used when a profile does not set one
const DefaultCurrency = "USD"

// Profile limits
const (
	MaxPartnerNameLength = 100
	MaxLocationLength    = 200
	MaxEstimatedGuests   = 5000
)

// UpdateProfileRequest applies a partial update
type UpdateProfileRequest struct {
	PartnerOne      *string `json:"partner_one,omitempty"`
	PartnerTwo      *string `json:"partner_two,omitempty"`
	WeddingDate     *string `json:"wedding_date,omitempty"` // YYYY-MM-DD
	Location        *string `json:"location,omitempty"`
	EstimatedGuests *int    `json:"estimated_guests,omitempty"`
	TotalBudget     *int64  `json:"total_budget,omitempty"`
	Currency        *string `json:"currency,omitempty"`
}

// Validate checks the update request
func (r *UpdateProfileRequest) Validate() []FieldError {
	var errors []FieldError

	if r.PartnerOne != nil && tooLong(*r.PartnerOne, MaxPartnerNameLength) {
		errors = append(errors, FieldError{Field: "partner_one", Message: "partner_one must be 100 characters or less"})
	}
	if r.PartnerTwo != nil && tooLong(*r.PartnerTwo, MaxPartnerNameLength) {
		errors = append(errors, FieldError{Field: "partner_two", Message: "partner_two must be 100 characters or less"})
	}
	if r.WeddingDate != nil && *r.WeddingDate != "" {
		if _, err := ParseDate(*r.WeddingDate); err != nil {
			errors = append(errors, FieldError{Field: "wedding_date", Message: "wedding_date must be YYYY-MM-DD"})
		}
	}
	if r.Location != nil && tooLong(*r.Location, MaxLocationLength) {
		errors = append(errors, FieldError{Field: "location", Message: "location must be 200 characters or less"})
	}
	if r.EstimatedGuests != nil && (*r.EstimatedGuests < 0 || *r.EstimatedGuests > MaxEstimatedGuests) {
		errors = append(errors, FieldError{Field: "estimated_guests", Message: "estimated_guests must be between 0 and 5000"})
	}
	if r.TotalBudget != nil && *r.TotalBudget < 0 {
		errors = append(errors, FieldError{Field: "total_budget", Message: "total_budget cannot be negative"})
	}
	if r.Currency != nil && !IsValidCurrency(*r.Currency) {
		errors = append(errors, FieldError{Field: "currency", Message: "currency must be a 3-letter ISO code"})
	}

	return errors
}

// DateLayout is the wire format for calendar dates
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD date in UTC
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
