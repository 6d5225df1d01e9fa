package model

import "time"

// Venue limits
const (
	MaxVenueNameLength = 120
	MaxRoomsPerVenue   = 50
	MaxRoomDimensionFt = 2000
)

// Venue is a location listed by a vendor account
type Venue struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Name        string    `json:"name"`
	Address     *string   `json:"address,omitempty"`
	City        *string   `json:"city,omitempty"`
	Capacity    int       `json:"capacity"`
	Description *string   `json:"description,omitempty"`
	ImageURL    *string   `json:"image_url,omitempty"`
	CreatedOn   time.Time `json:"created_on"`
	UpdatedOn   time.Time `json:"updated_on"`
}

// VenueRoom is a bookable space with real-world dimensions
type VenueRoom struct {
	ID            string    `json:"id"`
	VenueID       string    `json:"venue_id"`
	Name          string    `json:"name"`
	WidthFt       float64   `json:"width_ft"`
	LengthFt      float64   `json:"length_ft"`
	Capacity      int       `json:"capacity"`
	FloorPlanURL  *string   `json:"floor_plan_url,omitempty"`
	PixelsPerFoot *float64  `json:"pixels_per_foot,omitempty"`
	CreatedOn     time.Time `json:"created_on"`
	UpdatedOn     time.Time `json:"updated_on"`
}

// CreateVenueRequest creates a venue
type CreateVenueRequest struct {
	Name        string  `json:"name"`
	Address     *string `json:"address,omitempty"`
	City        *string `json:"city,omitempty"`
	Capacity    int     `json:"capacity"`
	Description *string `json:"description,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
}

// Validate checks the create request
func (r *CreateVenueRequest) Validate() []FieldError {
	var errors []FieldError

	if blank(r.Name) {
		errors = append(errors, FieldError{Field: "name", Message: "name is required"})
	} else if tooLong(r.Name, MaxVenueNameLength) {
		errors = append(errors, FieldError{Field: "name", Message: "name must be 120 characters or less"})
	}
	if r.Capacity < 0 {
		errors = append(errors, FieldError{Field: "capacity", Message: "capacity cannot be negative"})
	}
	if r.ImageURL != nil && *r.ImageURL != "" && !IsValidURL(*r.ImageURL) {
		errors = append(errors, FieldError{Field: "image_url", Message: "image_url must be an http(s) URL"})
	}

	return errors
}

// UpdateVenueRequest applies a partial update
type UpdateVenueRequest struct {
	Name        *string `json:"name,omitempty"`
	Address     *string `json:"address,omitempty"`
	City        *string `json:"city,omitempty"`
	Capacity    *int    `json:"capacity,omitempty"`
	Description *string `json:"description,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
}

// Validate checks the update request
func (r *UpdateVenueRequest) Validate() []FieldError {
	var errors []FieldError

	if r.Name != nil && blank(*r.Name) {
		errors = append(errors, FieldError{Field: "name", Message: "name cannot be empty"})
	}
	if r.Capacity != nil && *r.Capacity < 0 {
		errors = append(errors, FieldError{Field: "capacity", Message: "capacity cannot be negative"})
	}

	return errors
}

// CreateRoomRequest adds a room to a venue
type CreateRoomRequest struct {
	Name     string  `json:"name"`
	WidthFt  float64 `json:"width_ft"`
	LengthFt float64 `json:"length_ft"`
	Capacity int     `json:"capacity"`
}

// Validate checks the create request
func (r *CreateRoomRequest) Validate() []FieldError {
	var errors []FieldError

	if blank(r.Name) {
		errors = append(errors, FieldError{Field: "name", Message: "name is required"})
	}
	errors = append(errors, validateDimension("width_ft", r.WidthFt)...)
	errors = append(errors, validateDimension("length_ft", r.LengthFt)...)
	if r.Capacity < 0 {
		errors = append(errors, FieldError{Field: "capacity", Message: "capacity cannot be negative"})
	}

	return errors
}

// UpdateRoomRequest applies a partial update
type UpdateRoomRequest struct {
	Name          *string  `json:"name,omitempty"`
	WidthFt       *float64 `json:"width_ft,omitempty"`
	LengthFt      *float64 `json:"length_ft,omitempty"`
	Capacity      *int     `json:"capacity,omitempty"`
	PixelsPerFoot *float64 `json:"pixels_per_foot,omitempty"`
}

// Validate checks the update request
func (r *UpdateRoomRequest) Validate() []FieldError {
	var errors []FieldError

	if r.Name != nil && blank(*r.Name) {
		errors = append(errors, FieldError{Field: "name", Message: "name cannot be empty"})
	}
	if r.WidthFt != nil {
		errors = append(errors, validateDimension("width_ft", *r.WidthFt)...)
	}
	if r.LengthFt != nil {
		errors = append(errors, validateDimension("length_ft", *r.LengthFt)...)
	}
	if r.Capacity != nil && *r.Capacity < 0 {
		errors = append(errors, FieldError{Field: "capacity", Message: "capacity cannot be negative"})
	}
	if r.PixelsPerFoot != nil && *r.PixelsPerFoot <= 0 {
		errors = append(errors, FieldError{Field: "pixels_per_foot", Message: "pixels_per_foot must be greater than zero"})
	}

	return errors
}

// FloorPlanResult is the outcome of a floor plan upload
type FloorPlanResult struct {
	Room     *VenueRoom `json:"room"`
	Analyzed bool       `json:"analyzed"`
	WidthPx  int        `json:"width_px,omitempty"`
	HeightPx int        `json:"height_px,omitempty"`
}

func validateDimension(field string, v float64) []FieldError {
	if v <= 0 {
		return []FieldError{{Field: field, Message: field + " must be greater than zero"}}
	}
	if v > MaxRoomDimensionFt {
		return []FieldError{{Field: field, Message: field + " must be 2000 or less"}}
	}
	return nil
}
