package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/forgo/aisle/api/internal/database"
	"github.com/forgo/aisle/api/internal/layout"
	"github.com/forgo/aisle/api/internal/model"
)

// SeatingRepository defines the interface for template and table storage
type SeatingRepository interface {
	SeedBuiltIns(ctx context.Context) error
	CreateTemplate(ctx context.Context, t *model.TableTemplate) error
	GetTemplate(ctx context.Context, id string) (*model.TableTemplate, error)
	ListTemplates(ctx context.Context, ownerID string) ([]*model.TableTemplate, error)
	GetTemplates(ctx context.Context, ids []string) (map[string]*model.TableTemplate, error)
	CountTemplateUses(ctx context.Context, templateID string) (int, error)
	DeleteTemplate(ctx context.Context, id string) error

	CreateTable(ctx context.Context, t *model.TableInstance) error
	GetTable(ctx context.Context, id string) (*model.TableInstance, error)
	ListTables(ctx context.Context, roomID string) ([]*model.TableInstance, error)
	CountTables(ctx context.Context, roomID string) (int, error)
	UpdateTable(ctx context.Context, t *model.TableInstance) error
	DeleteTable(ctx context.Context, id string) error
}

// SeatRepository is the guest storage used for seat assignment
type SeatRepository interface {
	GetByID(ctx context.Context, id string) (*model.Guest, error)
	GetBySeat(ctx context.Context, tableID string, seat int) (*model.Guest, error)
	ListSeatedAt(ctx context.Context, tableIDs []string) ([]*model.Guest, error)
	AssignSeat(ctx context.Context, guestID, tableID string, seat int) error
	UnassignSeat(ctx context.Context, guestID string) error
	UnassignSeatsAbove(ctx context.Context, tableID string, seats int) error
}

// RoomReader reads rooms and their venues
type RoomReader interface {
	GetByID(ctx context.Context, id string) (*model.Venue, error)
	GetRoom(ctx context.Context, id string) (*model.VenueRoom, error)
}

// Editor identifies who is changing a layout
type Editor struct {
	UserID string
	Role   model.UserRole
}

// SeatingService edits seating charts and seat assignments
type SeatingService struct {
	repo   SeatingRepository
	guests SeatRepository
	rooms  RoomReader
}

// SeatingServiceConfig holds configuration for the seating service
type SeatingServiceConfig struct {
	SeatingRepo SeatingRepository
	GuestRepo   SeatRepository
	RoomRepo    RoomReader
}

// NewSeatingService creates a new seating service
func NewSeatingService(cfg SeatingServiceConfig) *SeatingService {
	return &SeatingService{
		repo:   cfg.SeatingRepo,
		guests: cfg.GuestRepo,
		rooms:  cfg.RoomRepo,
	}
}

// SeedBuiltIns writes the built-in templates
func (s *SeatingService) SeedBuiltIns(ctx context.Context) error {
	return s.repo.SeedBuiltIns(ctx)
}

// ===== Templates =====

// ListTemplates returns the built-in templates and the caller's own
func (s *SeatingService) ListTemplates(ctx context.Context, ownerID string) ([]*model.TableTemplate, error) {
	return s.repo.ListTemplates(ctx, ownerID)
}

// CreateTemplate stores a custom template. Round and square tables use
// width for both dimensions.
func (s *SeatingService) CreateTemplate(ctx context.Context, ownerID string, req model.CreateTemplateRequest) (*model.TableTemplate, error) {
	if err := invalid(req.Validate()); err != nil {
		return nil, err
	}

	length := req.LengthFt
	if req.Shape != model.TableShapeRectangle {
		length = req.WidthFt
	}

	owner := ownerID
	t := &model.TableTemplate{
		OwnerID:  &owner,
		Name:     strings.TrimSpace(req.Name),
		Shape:    req.Shape,
		WidthFt:  req.WidthFt,
		LengthFt: length,
		Seats:    req.Seats,
	}
	if err := s.repo.CreateTemplate(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// DeleteTemplate removes an unused custom template
func (s *SeatingService) DeleteTemplate(ctx context.Context, ownerID, templateID string) error {
	t, err := s.repo.GetTemplate(ctx, templateID)
	if err != nil {
		return err
	}
	if t == nil {
		return ErrTemplateNotFound
	}
	if t.BuiltIn {
		return ErrTemplateBuiltIn
	}
	if t.OwnerID == nil || *t.OwnerID != ownerID {
		return ErrNotOwner
	}

	uses, err := s.repo.CountTemplateUses(ctx, templateID)
	if err != nil {
		return err
	}
	if uses > 0 {
		return ErrTemplateInUse
	}
	return s.repo.DeleteTemplate(ctx, templateID)
}

// usableTemplate returns a template the caller may place
func (s *SeatingService) usableTemplate(ctx context.Context, userID, templateID string) (*model.TableTemplate, error) {
	t, err := s.repo.GetTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrTemplateNotFound
	}
	if !t.BuiltIn && (t.OwnerID == nil || *t.OwnerID != userID) {
		return nil, ErrTemplateNotFound
	}
	return t, nil
}

// ===== Tables =====

// PlaceTable puts a table in a room, clamped inside the room
func (s *SeatingService) PlaceTable(ctx context.Context, editor Editor, roomID string, req model.PlaceTableRequest) (*model.TableInstance, error) {
	if err := invalid(req.Validate()); err != nil {
		return nil, err
	}

	room, err := s.editableRoom(ctx, editor, roomID)
	if err != nil {
		return nil, err
	}

	count, err := s.repo.CountTables(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if count >= model.MaxTablesPerRoom {
		return nil, ErrMaxTablesReached
	}

	tmpl, err := s.usableTemplate(ctx, editor.UserID, req.TemplateID)
	if err != nil {
		return nil, err
	}

	seats := tmpl.Seats
	if req.Seats != nil {
		seats = *req.Seats
	}
	label := strings.TrimSpace(req.Label)
	if label == "" {
		label = fmt.Sprintf("Table %d", count+1)
	}

	table := &model.TableInstance{
		OwnerID:     editor.UserID,
		RoomID:      roomID,
		TemplateID:  tmpl.ID,
		Label:       label,
		XPx:         req.XPx,
		YPx:         req.YPx,
		RotationDeg: layout.NormalizeDegrees(req.RotationDeg),
		Seats:       seats,
	}
	clampTable(table, tmpl, room)

	if err := s.repo.CreateTable(ctx, table); err != nil {
		return nil, err
	}
	return table, nil
}

// MoveTable drags, rotates, relabels or resizes a placed table. Guests in
// seats that no longer exist after a resize lose their seat.
func (s *SeatingService) MoveTable(ctx context.Context, editor Editor, tableID string, req model.MoveTableRequest) (*model.TableInstance, error) {
	if err := invalid(req.Validate()); err != nil {
		return nil, err
	}

	table, err := s.editableTable(ctx, editor, tableID)
	if err != nil {
		return nil, err
	}
	room, err := s.getRoom(ctx, table.RoomID)
	if err != nil {
		return nil, err
	}
	tmpl, err := s.repo.GetTemplate(ctx, table.TemplateID)
	if err != nil {
		return nil, err
	}
	if tmpl == nil {
		return nil, ErrTemplateNotFound
	}

	if req.XPx != nil {
		table.XPx = *req.XPx
	}
	if req.YPx != nil {
		table.YPx = *req.YPx
	}
	if req.RotationDeg != nil {
		table.RotationDeg = layout.NormalizeDegrees(*req.RotationDeg)
	}
	if req.Label != nil && strings.TrimSpace(*req.Label) != "" {
		table.Label = strings.TrimSpace(*req.Label)
	}
	shrunk := false
	if req.Seats != nil {
		shrunk = *req.Seats < table.Seats
		table.Seats = *req.Seats
	}
	clampTable(table, tmpl, room)

	if err := s.repo.UpdateTable(ctx, table); err != nil {
		return nil, err
	}
	if shrunk {
		if err := s.guests.UnassignSeatsAbove(ctx, table.ID, table.Seats); err != nil {
			return nil, err
		}
	}
	return table, nil
}

// DeleteTable removes a table and unseats its guests
func (s *SeatingService) DeleteTable(ctx context.Context, editor Editor, tableID string) error {
	table, err := s.editableTable(ctx, editor, tableID)
	if err != nil {
		return err
	}
	return s.repo.DeleteTable(ctx, table.ID)
}

// ListTables returns the tables placed in a room
func (s *SeatingService) ListTables(ctx context.Context, roomID string) ([]*model.TableInstance, error) {
	if _, err := s.getRoom(ctx, roomID); err != nil {
		return nil, err
	}
	return s.repo.ListTables(ctx, roomID)
}

// GetLayout renders a room: its pixel size, every table footprint and the
// absolute position of each seat. Other couples' guests show only as
// occupied seats.
func (s *SeatingService) GetLayout(ctx context.Context, viewerID, roomID string) (*model.RoomLayout, error) {
	room, err := s.getRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	tables, err := s.repo.ListTables(ctx, roomID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(tables))
	templateIDs := make([]string, 0, len(tables))
	for _, t := range tables {
		ids = append(ids, t.ID)
		templateIDs = append(templateIDs, t.TemplateID)
	}

	var templates map[string]*model.TableTemplate
	var seated []*model.Guest
	if len(tables) > 0 {
		if templates, err = s.repo.GetTemplates(ctx, templateIDs); err != nil {
			return nil, err
		}
		if seated, err = s.guests.ListSeatedAt(ctx, ids); err != nil {
			return nil, err
		}
	}

	return buildLayout(room, tables, templates, seated, viewerID), nil
}

func buildLayout(room *model.VenueRoom, tables []*model.TableInstance, templates map[string]*model.TableTemplate, seated []*model.Guest, viewerID string) *model.RoomLayout {
	scale := layout.NewScale(room.PixelsPerFoot)

	type seatKey struct {
		table string
		seat  int
	}
	occupants := make(map[seatKey]*model.Guest, len(seated))
	for _, g := range seated {
		if g.IsSeated() {
			occupants[seatKey{*g.TableID, *g.SeatNumber}] = g
		}
	}

	out := &model.RoomLayout{
		Room:          room,
		PixelsPerFoot: float64(scale),
		WidthPx:       scale.FeetToPixels(room.WidthFt),
		LengthPx:      scale.FeetToPixels(room.LengthFt),
		Tables:        make([]model.LayoutTable, 0, len(tables)),
	}

	for _, t := range tables {
		tmpl := templates[t.TemplateID]
		if tmpl == nil {
			continue
		}

		positions := layout.SeatPositions(toLayoutTable(t, tmpl), scale)
		lt := model.LayoutTable{
			Table:    t,
			Shape:    tmpl.Shape,
			WidthPx:  scale.FeetToPixels(tmpl.WidthFt),
			LengthPx: scale.FeetToPixels(tmpl.LengthFt),
			Seats:    make([]model.SeatView, 0, len(positions)),
		}
		for i, p := range positions {
			seat := model.SeatView{Number: i + 1, XPx: p.X, YPx: p.Y}
			if g := occupants[seatKey{t.ID, i + 1}]; g != nil {
				seat.Occupied = true
				if g.OwnerID == viewerID {
					id, name := g.ID, g.FullName()
					seat.GuestID = &id
					seat.GuestName = &name
				}
				out.SeatedCount++
			}
			lt.Seats = append(lt.Seats, seat)
		}
		out.TotalSeats += len(positions)
		out.Tables = append(out.Tables, lt)
	}

	return out
}

// ===== Seat assignment =====

// AssignSeat seats one of the owner's guests. Reassigning a seated guest
// moves them.
func (s *SeatingService) AssignSeat(ctx context.Context, ownerID string, req model.AssignSeatRequest) (*model.Guest, error) {
	if err := invalid(req.Validate()); err != nil {
		return nil, err
	}

	guest, err := s.ownedGuest(ctx, ownerID, req.GuestID)
	if err != nil {
		return nil, err
	}
	table, err := s.getTable(ctx, req.TableID)
	if err != nil {
		return nil, err
	}
	if table.OwnerID != ownerID {
		return nil, ErrNotOwner
	}
	if req.Seat < 1 || req.Seat > table.Seats {
		return nil, ErrSeatOutOfRange
	}

	occupant, err := s.guests.GetBySeat(ctx, table.ID, req.Seat)
	if err != nil {
		return nil, err
	}
	if occupant != nil {
		if occupant.ID == guest.ID {
			return guest, nil
		}
		return nil, ErrSeatTaken
	}

	if err := s.guests.AssignSeat(ctx, guest.ID, table.ID, req.Seat); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrSeatTaken
		}
		return nil, err
	}

	tableID, seat := table.ID, req.Seat
	guest.TableID = &tableID
	guest.SeatNumber = &seat
	return guest, nil
}

// UnassignSeat clears a guest's seat
func (s *SeatingService) UnassignSeat(ctx context.Context, ownerID, guestID string) (*model.Guest, error) {
	guest, err := s.ownedGuest(ctx, ownerID, guestID)
	if err != nil {
		return nil, err
	}
	if !guest.IsSeated() {
		return guest, nil
	}
	if err := s.guests.UnassignSeat(ctx, guest.ID); err != nil {
		return nil, err
	}
	guest.TableID = nil
	guest.SeatNumber = nil
	return guest, nil
}

// ===== Helpers =====

func (s *SeatingService) getRoom(ctx context.Context, roomID string) (*model.VenueRoom, error) {
	room, err := s.rooms.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

// editableRoom returns the room when the editor may change its tables:
// the venue owner, an admin or any couple planning there
func (s *SeatingService) editableRoom(ctx context.Context, editor Editor, roomID string) (*model.VenueRoom, error) {
	room, err := s.getRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if editor.Role == model.UserRoleAdmin || editor.Role == model.UserRoleCouple {
		return room, nil
	}

	venue, err := s.rooms.GetByID(ctx, room.VenueID)
	if err != nil {
		return nil, err
	}
	if venue == nil {
		return nil, ErrVenueNotFound
	}
	if venue.OwnerID != editor.UserID {
		return nil, ErrNotOwner
	}
	return room, nil
}

// editableTable returns a table its placer or an admin may change
func (s *SeatingService) editableTable(ctx context.Context, editor Editor, tableID string) (*model.TableInstance, error) {
	table, err := s.getTable(ctx, tableID)
	if err != nil {
		return nil, err
	}
	if editor.Role != model.UserRoleAdmin && table.OwnerID != editor.UserID {
		return nil, ErrNotOwner
	}
	return table, nil
}

func (s *SeatingService) getTable(ctx context.Context, tableID string) (*model.TableInstance, error) {
	table, err := s.repo.GetTable(ctx, tableID)
	if err != nil {
		return nil, err
	}
	if table == nil {
		return nil, ErrTableNotFound
	}
	return table, nil
}

func (s *SeatingService) ownedGuest(ctx context.Context, ownerID, guestID string) (*model.Guest, error) {
	guest, err := s.guests.GetByID(ctx, guestID)
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

func toLayoutTable(t *model.TableInstance, tmpl *model.TableTemplate) layout.Table {
	return layout.Table{
		Shape:       layout.Shape(tmpl.Shape),
		WidthFt:     tmpl.WidthFt,
		LengthFt:    tmpl.LengthFt,
		Seats:       t.Seats,
		X:           t.XPx,
		Y:           t.YPx,
		RotationDeg: t.RotationDeg,
	}
}

// clampTable keeps the table top inside the room
func clampTable(t *model.TableInstance, tmpl *model.TableTemplate, room *model.VenueRoom) {
	scale := layout.NewScale(room.PixelsPerFoot)
	p := layout.ClampToRoom(toLayoutTable(t, tmpl), scale,
		scale.FeetToPixels(room.WidthFt), scale.FeetToPixels(room.LengthFt))
	t.XPx = p.X
	t.YPx = p.Y
}
