package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/forgo/aisle/api/internal/model"
)

// GuestRepository defines the interface for guest storage
type GuestRepository interface {
	Create(ctx context.Context, guest *model.Guest) error
	CreateMany(ctx context.Context, guests []*model.Guest) error
	GetByID(ctx context.Context, id string) (*model.Guest, error)
	List(ctx context.Context, ownerID string, filters model.GuestFilters) ([]*model.Guest, error)
	Count(ctx context.Context, ownerID string) (int, error)
	Update(ctx context.Context, guest *model.Guest) error
	Delete(ctx context.Context, id string) error
}

// GuestService manages a couple's guest list
type GuestService struct {
	repo GuestRepository
	now  func() time.Time
}

// GuestServiceConfig holds configuration for the guest service
type GuestServiceConfig struct {
	GuestRepo GuestRepository
	Clock     func() time.Time // defaults to time.Now
}

// NewGuestService creates a new guest service
func NewGuestService(cfg GuestServiceConfig) *GuestService {
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &GuestService{repo: cfg.GuestRepo, now: clock}
}

// Create adds a guest
func (s *GuestService) Create(ctx context.Context, ownerID string, req model.CreateGuestRequest) (*model.Guest, error) {
	if err := invalid(req.Validate()); err != nil {
		return nil, err
	}

	count, err := s.repo.Count(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if count >= model.MaxGuestsPerOwner {
		return nil, ErrMaxGuestsReached
	}

	guest := newGuest(ownerID, req)
	if guest.RSVPStatus != model.RSVPPending {
		now := s.now().UTC()
		guest.RespondedOn = &now
	}
	if err := s.repo.Create(ctx, guest); err != nil {
		return nil, err
	}
	return guest, nil
}

func newGuest(ownerID string, req model.CreateGuestRequest) *model.Guest {
	side := req.Side
	if side == "" {
		side = model.GuestSideBoth
	}
	status := req.RSVPStatus
	if status == "" {
		status = model.RSVPPending
	}
	email := trimmedPtr(req.Email)
	if email != nil {
		lower := strings.ToLower(*email)
		email = &lower
	}

	return &model.Guest{
		OwnerID:      ownerID,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     trimmedPtr(req.LastName),
		Email:        email,
		Phone:        trimmedPtr(req.Phone),
		Side:         side,
		GroupName:    trimmedPtr(req.GroupName),
		RSVPStatus:   status,
		MealChoice:   trimmedPtr(req.MealChoice),
		DietaryNotes: trimmedPtr(req.DietaryNotes),
		PlusOne:      req.PlusOne,
		PlusOneName:  trimmedPtr(req.PlusOneName),
	}
}

// Get returns an owned guest
func (s *GuestService) Get(ctx context.Context, ownerID, guestID string) (*model.Guest, error) {
	return s.getOwned(ctx, ownerID, guestID)
}

// List returns the owner's guests sorted by name
func (s *GuestService) List(ctx context.Context, ownerID string, filters model.GuestFilters) ([]*model.Guest, error) {
	if filters.RSVPStatus != "" && !model.RSVPStatus(filters.RSVPStatus).IsValid() {
		return nil, fieldError("rsvp_status", "rsvp_status must be pending, attending, declined or maybe")
	}
	if filters.Side != "" && !model.GuestSide(filters.Side).IsValid() {
		return nil, fieldError("side", "side must be partner_one, partner_two or both")
	}
	if filters.Limit <= 0 {
		filters.Limit = model.DefaultGuestLimit
	}
	if filters.Limit > model.MaxGuestLimit {
		filters.Limit = model.MaxGuestLimit
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}
	filters.Search = strings.ToLower(strings.TrimSpace(filters.Search))
	return s.repo.List(ctx, ownerID, filters)
}

// Update applies a partial update; empty strings clear optional fields
func (s *GuestService) Update(ctx context.Context, ownerID, guestID string, req model.UpdateGuestRequest) (*model.Guest, error) {
	if err := invalid(req.Validate()); err != nil {
		return nil, err
	}

	guest, err := s.getOwned(ctx, ownerID, guestID)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		guest.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		guest.LastName = trimmedPtr(req.LastName)
	}
	if req.Email != nil {
		guest.Email = trimmedPtr(req.Email)
		if guest.Email != nil {
			lower := strings.ToLower(*guest.Email)
			guest.Email = &lower
		}
	}
	if req.Phone != nil {
		guest.Phone = trimmedPtr(req.Phone)
	}
	if req.Side != nil {
		guest.Side = *req.Side
	}
	if req.GroupName != nil {
		guest.GroupName = trimmedPtr(req.GroupName)
	}
	if req.MealChoice != nil {
		guest.MealChoice = trimmedPtr(req.MealChoice)
	}
	if req.DietaryNotes != nil {
		guest.DietaryNotes = trimmedPtr(req.DietaryNotes)
	}
	if req.PlusOne != nil {
		guest.PlusOne = *req.PlusOne
		if !guest.PlusOne {
			guest.PlusOneName = nil
		}
	}
	if req.PlusOneName != nil && guest.PlusOne {
		guest.PlusOneName = trimmedPtr(req.PlusOneName)
	}

	if err := s.repo.Update(ctx, guest); err != nil {
		return nil, err
	}
	return guest, nil
}

// UpdateRSVP records a guest's response
func (s *GuestService) UpdateRSVP(ctx context.Context, ownerID, guestID string, req model.UpdateRSVPRequest) (*model.Guest, error) {
	if err := invalid(req.Validate()); err != nil {
		return nil, err
	}

	guest, err := s.getOwned(ctx, ownerID, guestID)
	if err != nil {
		return nil, err
	}

	guest.RSVPStatus = req.Status
	if req.Status == model.RSVPPending {
		guest.RespondedOn = nil
	} else {
		now := s.now().UTC()
		guest.RespondedOn = &now
	}
	if req.MealChoice != nil {
		guest.MealChoice = trimmedPtr(req.MealChoice)
	}
	if req.DietaryNotes != nil {
		guest.DietaryNotes = trimmedPtr(req.DietaryNotes)
	}
	if req.PlusOneName != nil && guest.PlusOne {
		guest.PlusOneName = trimmedPtr(req.PlusOneName)
	}

	if err := s.repo.Update(ctx, guest); err != nil {
		return nil, err
	}
	return guest, nil
}

// Delete removes a guest, freeing their seat
func (s *GuestService) Delete(ctx context.Context, ownerID, guestID string) error {
	if _, err := s.getOwned(ctx, ownerID, guestID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, guestID)
}

func (s *GuestService) getOwned(ctx context.Context, ownerID, guestID string) (*model.Guest, error) {
	guest, err := s.repo.GetByID(ctx, guestID)
	if err != nil {
		return nil, err
	}
	if guest == nil {
		return nil, ErrGuestNotFound
	}
	if guest.OwnerID != ownerID {
		return nil, ErrNotOwner
	}
	return guest, nil
}

// ===== Import =====

// csvColumns maps accepted header names to request fields
var csvColumns = map[string]string{
	"first_name": "first_name",
	"firstname":  "first_name",
	"last_name":  "last_name",
	"lastname":   "last_name",
	"email":      "email",
	"phone":      "phone",
	"side":       "side",
	"group":      "group",
	"group_name": "group",
}

// ImportCSV adds guests from a CSV file with a header row. Valid rows are
// created together; invalid rows are reported and skipped.
func (s *GuestService) ImportCSV(ctx context.Context, ownerID string, data []byte) (*model.GuestImportResult, error) {
	if len(data) == 0 {
		return nil, ErrEmptyUpload
	}
	if len(data) > model.MaxGuestImportBytes {
		return nil, ErrImportTooLarge
	}

	reqs, rowErrors, err := parseGuestCSV(data)
	if err != nil {
		return nil, err
	}

	count, err := s.repo.Count(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if count+len(reqs) > model.MaxGuestsPerOwner {
		return nil, ErrMaxGuestsReached
	}

	guests := make([]*model.Guest, 0, len(reqs))
	for _, req := range reqs {
		guests = append(guests, newGuest(ownerID, req))
	}
	if len(guests) > 0 {
		if err := s.repo.CreateMany(ctx, guests); err != nil {
			return nil, err
		}
	}

	return &model.GuestImportResult{Created: len(guests), Errors: rowErrors}, nil
}

// parseGuestCSV reads the header and rows. Blank rows are skipped.
func parseGuestCSV(data []byte) ([]model.CreateGuestRequest, []model.GuestImportRow, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, ErrMissingCSVColumns
		}
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidCSV, err)
	}

	index := make(map[string]int)
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if field, ok := csvColumns[key]; ok {
			if _, dup := index[field]; !dup {
				index[field] = i
			}
		}
	}
	if _, ok := index["first_name"]; !ok {
		return nil, nil, ErrMissingCSVColumns
	}

	var reqs []model.CreateGuestRequest
	var rowErrors []model.GuestImportRow
	row := 0
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		row++
		if err != nil {
			return nil, nil, fmt.Errorf("%w: row %d: %v", ErrInvalidCSV, row, err)
		}
		if blankRecord(record) {
			continue
		}

		get := func(field string) string {
			i, ok := index[field]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		req := model.CreateGuestRequest{
			FirstName: get("first_name"),
			LastName:  optionalString(get("last_name")),
			Email:     optionalString(get("email")),
			Phone:     optionalString(get("phone")),
			Side:      model.GuestSide(strings.ToLower(get("side"))),
			GroupName: optionalString(get("group")),
		}
		if fields := req.Validate(); len(fields) > 0 {
			rowErrors = append(rowErrors, model.GuestImportRow{Row: row, Message: fields[0].Message})
			continue
		}
		reqs = append(reqs, req)
	}

	return reqs, rowErrors, nil
}

func blankRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ===== Summary =====

// Summary aggregates RSVP, meal and seating counts over all guests
func (s *GuestService) Summary(ctx context.Context, ownerID string) (*model.GuestSummary, error) {
	guests, err := s.repo.List(ctx, ownerID, model.GuestFilters{})
	if err != nil {
		return nil, err
	}
	return summarizeGuests(guests), nil
}

func summarizeGuests(guests []*model.Guest) *model.GuestSummary {
	summary := &model.GuestSummary{
		ByStatus: map[string]int{
			string(model.RSVPPending):   0,
			string(model.RSVPAttending): 0,
			string(model.RSVPDeclined):  0,
			string(model.RSVPMaybe):     0,
		},
		BySide: make(map[string]int),
		Meals:  make(map[string]int),
	}

	for _, g := range guests {
		summary.Total++
		summary.Headcount += g.Headcount()
		summary.ByStatus[string(g.RSVPStatus)]++
		summary.BySide[string(g.Side)]++
		if g.PlusOne {
			summary.PlusOnes++
		}
		if g.RSVPStatus == model.RSVPAttending {
			summary.Attending += g.Headcount()
			if g.MealChoice != nil && *g.MealChoice != "" {
				summary.Meals[strings.ToLower(*g.MealChoice)]++
			}
		}
		if g.IsSeated() {
			summary.Seated++
		} else {
			summary.Unseated++
		}
	}

	return summary
}
