package model

import "time"

// TableShape is the footprint of a table
type TableShape string

const (
	TableShapeRound     TableShape = "round"
	TableShapeRectangle TableShape = "rectangle"
	TableShapeSquare    TableShape = "square"
)

// IsValid reports whether s is a known shape
func (s TableShape) IsValid() bool {
	return s == TableShapeRound || s == TableShapeRectangle || s == TableShapeSquare
}

// Seating limits
const (
	MinSeatsPerTable      = 1
	MaxSeatsPerTable      = 24
	MaxTableDimensionFt   = 40
	MaxTablesPerRoom      = 200
	MaxTableLabelLength   = 40
	MaxTemplateNameLength = 60
)

// TableTemplate describes a reusable table; built-ins have no owner.
// For round tables WidthFt is the diameter and LengthFt equals it.
type TableTemplate struct {
	ID        string     `json:"id"`
	OwnerID   *string    `json:"owner_id,omitempty"`
	Name      string     `json:"name"`
	Shape     TableShape `json:"shape"`
	WidthFt   float64    `json:"width_ft"`
	LengthFt  float64    `json:"length_ft"`
	Seats     int        `json:"seats"`
	BuiltIn   bool       `json:"built_in"`
	CreatedOn time.Time  `json:"created_on"`
}

// TableInstance is a template placed in a room at a pixel position
type TableInstance struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	RoomID      string    `json:"room_id"`
	TemplateID  string    `json:"template_id"`
	Label       string    `json:"label"`
	XPx         float64   `json:"x_px"`
	YPx         float64   `json:"y_px"`
	RotationDeg float64   `json:"rotation_deg"`
	Seats       int       `json:"seats"`
	CreatedOn   time.Time `json:"created_on"`
	UpdatedOn   time.Time `json:"updated_on"`
}

// CreateTemplateRequest defines a custom table template
type CreateTemplateRequest struct {
	Name     string     `json:"name"`
	Shape    TableShape `json:"shape"`
	WidthFt  float64    `json:"width_ft"`
	LengthFt float64    `json:"length_ft"`
	Seats    int        `json:"seats"`
}

// Validate checks the template request
func (r *CreateTemplateRequest) Validate() []FieldError {
	var errors []FieldError

	if blank(r.Name) {
		errors = append(errors, FieldError{Field: "name", Message: "name is required"})
	} else if tooLong(r.Name, MaxTemplateNameLength) {
		errors = append(errors, FieldError{Field: "name", Message: "name must be 60 characters or less"})
	}
	if !r.Shape.IsValid() {
		errors = append(errors, FieldError{Field: "shape", Message: "shape must be round, rectangle or square"})
	}
	if r.WidthFt <= 0 || r.WidthFt > MaxTableDimensionFt {
		errors = append(errors, FieldError{Field: "width_ft", Message: "width_ft must be greater than zero and at most 40"})
	}
	if r.Shape == TableShapeRectangle && (r.LengthFt <= 0 || r.LengthFt > MaxTableDimensionFt) {
		errors = append(errors, FieldError{Field: "length_ft", Message: "length_ft must be greater than zero and at most 40"})
	}
	if r.Seats < MinSeatsPerTable || r.Seats > MaxSeatsPerTable {
		errors = append(errors, FieldError{Field: "seats", Message: "seats must be between 1 and 24"})
	}

	return errors
}

// PlaceTableRequest puts a table on a room's floor
type PlaceTableRequest struct {
	TemplateID  string  `json:"template_id"`
	Label       string  `json:"label"`
	XPx         float64 `json:"x_px"`
	YPx         float64 `json:"y_px"`
	RotationDeg float64 `json:"rotation_deg"`
	Seats       *int    `json:"seats,omitempty"` // override template seat count
}

// Validate checks the placement request
func (r *PlaceTableRequest) Validate() []FieldError {
	var errors []FieldError

	if blank(r.TemplateID) {
		errors = append(errors, FieldError{Field: "template_id", Message: "template_id is required"})
	}
	if tooLong(r.Label, MaxTableLabelLength) {
		errors = append(errors, FieldError{Field: "label", Message: "label must be 40 characters or less"})
	}
	if r.Seats != nil && (*r.Seats < MinSeatsPerTable || *r.Seats > MaxSeatsPerTable) {
		errors = append(errors, FieldError{Field: "seats", Message: "seats must be between 1 and 24"})
	}

	return errors
}

// MoveTableRequest drags or rotates a placed table
type MoveTableRequest struct {
	XPx         *float64 `json:"x_px,omitempty"`
	YPx         *float64 `json:"y_px,omitempty"`
	RotationDeg *float64 `json:"rotation_deg,omitempty"`
	Label       *string  `json:"label,omitempty"`
	Seats       *int     `json:"seats,omitempty"`
}

// Validate checks the move request
func (r *MoveTableRequest) Validate() []FieldError {
	var errors []FieldError

	if r.Label != nil && tooLong(*r.Label, MaxTableLabelLength) {
		errors = append(errors, FieldError{Field: "label", Message: "label must be 40 characters or less"})
	}
	if r.Seats != nil && (*r.Seats < MinSeatsPerTable || *r.Seats > MaxSeatsPerTable) {
		errors = append(errors, FieldError{Field: "seats", Message: "seats must be between 1 and 24"})
	}

	return errors
}

// AssignSeatRequest puts a guest in a seat
type AssignSeatRequest struct {
	GuestID string `json:"guest_id"`
	TableID string `json:"table_id"`
	Seat    int    `json:"seat"`
}

// Validate checks the assignment request
func (r *AssignSeatRequest) Validate() []FieldError {
	var errors []FieldError

	if blank(r.GuestID) {
		errors = append(errors, FieldError{Field: "guest_id", Message: "guest_id is required"})
	}
	if blank(r.TableID) {
		errors = append(errors, FieldError{Field: "table_id", Message: "table_id is required"})
	}
	if r.Seat < 1 {
		errors = append(errors, FieldError{Field: "seat", Message: "seat must be 1 or greater"})
	}

	return errors
}

// SeatView is one chair in a rendered layout, in room pixels
type SeatView struct {
	Number    int     `json:"number"`
	XPx       float64 `json:"x_px"`
	YPx       float64 `json:"y_px"`
	Occupied  bool    `json:"occupied"`
	GuestID   *string `json:"guest_id,omitempty"` // viewer's own guests only
	GuestName *string `json:"guest_name,omitempty"`
}

// LayoutTable is a placed table with its template footprint and seats
type LayoutTable struct {
	Table    *TableInstance `json:"table"`
	Shape    TableShape     `json:"shape"`
	WidthPx  float64        `json:"width_px"`
	LengthPx float64        `json:"length_px"`
	Seats    []SeatView     `json:"seats"`
}

// RoomLayout is everything needed to draw a seating chart
type RoomLayout struct {
	Room          *VenueRoom    `json:"room"`
	PixelsPerFoot float64       `json:"pixels_per_foot"`
	WidthPx       float64       `json:"width_px"`
	LengthPx      float64       `json:"length_px"`
	Tables        []LayoutTable `json:"tables"`
	SeatedCount   int           `json:"seated_count"`
	TotalSeats    int           `json:"total_seats"`
}

// BuiltInTemplates are seeded for every account; ids are stable so seeding is idempotent
var BuiltInTemplates = []TableTemplate{
	{ID: "table_template:round_60", Name: `60" round`, Shape: TableShapeRound, WidthFt: 5, LengthFt: 5, Seats: 8, BuiltIn: true},
	{ID: "table_template:round_72", Name: `72" round`, Shape: TableShapeRound, WidthFt: 6, LengthFt: 6, Seats: 10, BuiltIn: true},
	{ID: "table_template:banquet_6", Name: "6ft banquet", Shape: TableShapeRectangle, WidthFt: 2.5, LengthFt: 6, Seats: 8, BuiltIn: true},
	{ID: "table_template:banquet_8", Name: "8ft banquet", Shape: TableShapeRectangle, WidthFt: 2.5, LengthFt: 8, Seats: 10, BuiltIn: true},
	{ID: "table_template:square_4", Name: "4ft square", Shape: TableShapeSquare, WidthFt: 4, LengthFt: 4, Seats: 4, BuiltIn: true},
}
