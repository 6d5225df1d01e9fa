package model

import "time"

// RSVPStatus is a guest's response
type RSVPStatus string

const (
	RSVPPending   RSVPStatus = "pending"
	RSVPAttending RSVPStatus = "attending"
	RSVPDeclined  RSVPStatus = "declined"
	RSVPMaybe     RSVPStatus = "maybe"
)

// IsValid reports whether s is a known status
func (s RSVPStatus) IsValid() bool {
	switch s {
	case RSVPPending, RSVPAttending, RSVPDeclined, RSVPMaybe:
		return true
	}
	return false
}

// GuestSide records whose guest this is
type GuestSide string

const (
	GuestSidePartnerOne GuestSide = "partner_one"
	GuestSidePartnerTwo GuestSide = "partner_two"
	GuestSideBoth       GuestSide = "both"
)

// IsValid reports whether s is a known side
func (s GuestSide) IsValid() bool {
	return s == GuestSidePartnerOne || s == GuestSidePartnerTwo || s == GuestSideBoth
}

// Guest limits
const (
	MaxGuestNameLength  = 80
	MaxGuestsPerOwner   = 2000
	MaxGuestImportBytes = 1 << 20
	DefaultGuestLimit   = 100
	MaxGuestLimit       = 500
)

// Guest is a person on the couple's list
type Guest struct {
	ID           string     `json:"id"`
	OwnerID      string     `json:"owner_id"`
	FirstName    string     `json:"first_name"`
	LastName     *string    `json:"last_name,omitempty"`
	Email        *string    `json:"email,omitempty"`
	Phone        *string    `json:"phone,omitempty"`
	Side         GuestSide  `json:"side"`
	GroupName    *string    `json:"group_name,omitempty"`
	RSVPStatus   RSVPStatus `json:"rsvp_status"`
	MealChoice   *string    `json:"meal_choice,omitempty"`
	DietaryNotes *string    `json:"dietary_notes,omitempty"`
	PlusOne      bool       `json:"plus_one"`
	PlusOneName  *string    `json:"plus_one_name,omitempty"`
	TableID      *string    `json:"table_id,omitempty"`
	SeatNumber   *int       `json:"seat_number,omitempty"`
	RespondedOn  *time.Time `json:"responded_on,omitempty"`
	CreatedOn    time.Time  `json:"created_on"`
	UpdatedOn    time.Time  `json:"updated_on"`
}

// FullName joins first and last name
func (g *Guest) FullName() string {
	if g.LastName == nil || *g.LastName == "" {
		return g.FirstName
	}
	return g.FirstName + " " + *g.LastName
}

// Headcount is 1 plus the plus one if any
func (g *Guest) Headcount() int {
	if g.PlusOne {
		return 2
	}
	return 1
}

// IsSeated reports whether the guest has a seat
func (g *Guest) IsSeated() bool {
	return g.TableID != nil && g.SeatNumber != nil
}

// CreateGuestRequest adds a guest
type CreateGuestRequest struct {
	FirstName    string     `json:"first_name"`
	LastName     *string    `json:"last_name,omitempty"`
	Email        *string    `json:"email,omitempty"`
	Phone        *string    `json:"phone,omitempty"`
	Side         GuestSide  `json:"side,omitempty"`
	GroupName    *string    `json:"group_name,omitempty"`
	RSVPStatus   RSVPStatus `json:"rsvp_status,omitempty"`
	MealChoice   *string    `json:"meal_choice,omitempty"`
	DietaryNotes *string    `json:"dietary_notes,omitempty"`
	PlusOne      bool       `json:"plus_one"`
	PlusOneName  *string    `json:"plus_one_name,omitempty"`
}

// Validate checks the create request
func (r *CreateGuestRequest) Validate() []FieldError {
	var errors []FieldError

	if blank(r.FirstName) {
		errors = append(errors, FieldError{Field: "first_name", Message: "first_name is required"})
	} else if tooLong(r.FirstName, MaxGuestNameLength) {
		errors = append(errors, FieldError{Field: "first_name", Message: "first_name must be 80 characters or less"})
	}
	if r.LastName != nil && tooLong(*r.LastName, MaxGuestNameLength) {
		errors = append(errors, FieldError{Field: "last_name", Message: "last_name must be 80 characters or less"})
	}
	if r.Email != nil && *r.Email != "" && !IsValidEmail(*r.Email) {
		errors = append(errors, FieldError{Field: "email", Message: "email is not valid"})
	}
	if r.Side != "" && !r.Side.IsValid() {
		errors = append(errors, FieldError{Field: "side", Message: "side must be partner_one, partner_two or both"})
	}
	if r.RSVPStatus != "" && !r.RSVPStatus.IsValid() {
		errors = append(errors, FieldError{Field: "rsvp_status", Message: "rsvp_status must be pending, attending, declined or maybe"})
	}

	return errors
}

// UpdateGuestRequest applies a partial update
type UpdateGuestRequest struct {
	FirstName    *string    `json:"first_name,omitempty"`
	LastName     *string    `json:"last_name,omitempty"`
	Email        *string    `json:"email,omitempty"`
	Phone        *string    `json:"phone,omitempty"`
	Side         *GuestSide `json:"side,omitempty"`
	GroupName    *string    `json:"group_name,omitempty"`
	MealChoice   *string    `json:"meal_choice,omitempty"`
	DietaryNotes *string    `json:"dietary_notes,omitempty"`
	PlusOne      *bool      `json:"plus_one,omitempty"`
	PlusOneName  *string    `json:"plus_one_name,omitempty"`
}

// Validate checks the update request
func (r *UpdateGuestRequest) Validate() []FieldError {
	var errors []FieldError

	if r.FirstName != nil {
		if blank(*r.FirstName) {
			errors = append(errors, FieldError{Field: "first_name", Message: "first_name cannot be empty"})
		} else if tooLong(*r.FirstName, MaxGuestNameLength) {
			errors = append(errors, FieldError{Field: "first_name", Message: "first_name must be 80 characters or less"})
		}
	}
	if r.Email != nil && *r.Email != "" && !IsValidEmail(*r.Email) {
		errors = append(errors, FieldError{Field: "email", Message: "email is not valid"})
	}
	if r.Side != nil && !r.Side.IsValid() {
		errors = append(errors, FieldError{Field: "side", Message: "side must be partner_one, partner_two or both"})
	}

	return errors
}

// UpdateRSVPRequest records a response
type UpdateRSVPRequest struct {
	Status       RSVPStatus `json:"status"`
	MealChoice   *string    `json:"meal_choice,omitempty"`
	DietaryNotes *string    `json:"dietary_notes,omitempty"`
	PlusOneName  *string    `json:"plus_one_name,omitempty"`
}

// Validate checks the RSVP request
func (r *UpdateRSVPRequest) Validate() []FieldError {
	if !r.Status.IsValid() {
		return []FieldError{{Field: "status", Message: "status must be pending, attending, declined or maybe"}}
	}
	return nil
}

// GuestFilters narrows the guest list
type GuestFilters struct {
	RSVPStatus string
	Side       string
	GroupName  string
	Search     string
	Seated     *bool
	Limit      int
	Offset     int
}

// GuestImportResult reports a CSV import
type GuestImportResult struct {
	Created int              `json:"created"`
	Errors  []GuestImportRow `json:"errors,omitempty"`
}

// GuestImportRow is a rejected CSV row, 1-based excluding the header
type GuestImportRow struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// GuestSummary aggregates the guest list
type GuestSummary struct {
	Total     int            `json:"total"`
	Headcount int            `json:"headcount"`
	ByStatus  map[string]int `json:"by_status"`
	BySide    map[string]int `json:"by_side"`
	Meals     map[string]int `json:"meals"`
	Attending int            `json:"attending_headcount"`
	Seated    int            `json:"seated"`
	Unseated  int            `json:"unseated"`
	PlusOnes  int            `json:"plus_ones"`
}
