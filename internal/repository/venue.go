package repository

import (
	"context"
	"errors"

	"github.com/forgo/aisle/api/internal/database"
	"github.com/forgo/aisle/api/internal/model"
)

// VenueRepository handles venues and their rooms
type VenueRepository struct {
	db database.Database
}

// NewVenueRepository creates a new venue repository
func NewVenueRepository(db database.Database) *VenueRepository {
	return &VenueRepository{db: db}
}

var roomRenames = map[string]string{"venue": "venue_id"}

// Create creates a venue
func (r *VenueRepository) Create(ctx context.Context, venue *model.Venue) error {
	query := `
		CREATE venue CONTENT {
			owner: type::record($owner),
			name: $name,
			address: $address,
			city: $city,
			capacity: $capacity,
			description: $description,
			image_url: $image_url,
			created_on: time::now(),
			updated_on: time::now()
		}
	`
	result, err := r.db.Query(ctx, query, venueVars(venue))
	if err != nil {
		return err
	}

	created, err := extractCreatedRecord(result)
	if err != nil {
		return err
	}

	venue.ID = created.ID
	venue.CreatedOn = created.CreatedOn
	venue.UpdatedOn = created.UpdatedOn
	return nil
}

// GetByID retrieves a venue by ID
func (r *VenueRepository) GetByID(ctx context.Context, id string) (*model.Venue, error) {
	if !inTable(id, "venue") {
		return nil, nil
	}

	result, err := r.db.QueryOne(ctx, `SELECT * FROM type::record($id)`, map[string]interface{}{"id": id})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	venue, _, err := decodeRecord[model.Venue](result, ownerRenames)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return venue, nil
}

// List returns venues, optionally only those of one owner
func (r *VenueRepository) List(ctx context.Context, ownerID string) ([]*model.Venue, error) {
	query := `SELECT * FROM venue ORDER BY name ASC`
	vars := map[string]interface{}{}
	if ownerID != "" {
		query = `SELECT * FROM venue WHERE owner = type::record($owner) ORDER BY name ASC`
		vars["owner"] = ownerID
	}

	results, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}
	return decodeRecords[model.Venue](results, ownerRenames), nil
}

// Update writes every editable venue field
func (r *VenueRepository) Update(ctx context.Context, venue *model.Venue) error {
	query := `
		UPDATE type::record($id) SET
			name = $name,
			address = IF $address IS NOT NULL THEN $address ELSE NONE END,
			city = IF $city IS NOT NULL THEN $city ELSE NONE END,
			capacity = $capacity,
			description = IF $description IS NOT NULL THEN $description ELSE NONE END,
			image_url = IF $image_url IS NOT NULL THEN $image_url ELSE NONE END,
			updated_on = time::now()
	`
	vars := venueVars(venue)
	vars["id"] = venue.ID
	return r.db.Execute(ctx, query, vars)
}

// Delete removes a venue with its rooms and placed tables, unseating any
// guests who sat at those tables
func (r *VenueRepository) Delete(ctx context.Context, id string) error {
	vars := map[string]interface{}{"venue": id}
	batch := database.NewAtomicBatch().
		Add(`UPDATE guest SET table = NONE, seat_number = NONE
			WHERE table.room.venue = type::record($venue)`, vars).
		Add(`DELETE table_instance WHERE room.venue = type::record($venue)`, vars).
		Add(`DELETE venue_room WHERE venue = type::record($venue)`, vars).
		Add(`DELETE type::record($venue)`, vars)
	return batch.Execute(ctx, r.db)
}

func venueVars(v *model.Venue) map[string]interface{} {
	return map[string]interface{}{
		"owner":       v.OwnerID,
		"name":        v.Name,
		"address":     optional(v.Address),
		"city":        optional(v.City),
		"capacity":    v.Capacity,
		"description": optional(v.Description),
		"image_url":   optional(v.ImageURL),
	}
}

// ===== Rooms =====

// CreateRoom adds a room to a venue
func (r *VenueRepository) CreateRoom(ctx context.Context, room *model.VenueRoom) error {
	query := `
		CREATE venue_room CONTENT {
			venue: type::record($venue),
			name: $name,
			width_ft: $width_ft,
			length_ft: $length_ft,
			capacity: $capacity,
			floor_plan_url: $floor_plan_url,
			pixels_per_foot: $pixels_per_foot,
			created_on: time::now(),
			updated_on: time::now()
		}
	`
	result, err := r.db.Query(ctx, query, roomVars(room))
	if err != nil {
		return err
	}

	created, err := extractCreatedRecord(result)
	if err != nil {
		return err
	}

	room.ID = created.ID
	room.CreatedOn = created.CreatedOn
	room.UpdatedOn = created.UpdatedOn
	return nil
}

// GetRoom retrieves a room by ID
func (r *VenueRepository) GetRoom(ctx context.Context, id string) (*model.VenueRoom, error) {
	if !inTable(id, "venue_room") {
		return nil, nil
	}

	result, err := r.db.QueryOne(ctx, `SELECT * FROM type::record($id)`, map[string]interface{}{"id": id})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	room, _, err := decodeRecord[model.VenueRoom](result, roomRenames)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return room, nil
}

// ListRooms returns the rooms of a venue
func (r *VenueRepository) ListRooms(ctx context.Context, venueID string) ([]*model.VenueRoom, error) {
	query := `SELECT * FROM venue_room WHERE venue = type::record($venue) ORDER BY name ASC`
	results, err := r.db.Query(ctx, query, map[string]interface{}{"venue": venueID})
	if err != nil {
		return nil, err
	}
	return decodeRecords[model.VenueRoom](results, roomRenames), nil
}

// CountRooms counts the rooms of a venue
func (r *VenueRepository) CountRooms(ctx context.Context, venueID string) (int, error) {
	query := `SELECT count() AS count FROM venue_room WHERE venue = type::record($venue) GROUP ALL`
	results, err := r.db.Query(ctx, query, map[string]interface{}{"venue": venueID})
	if err != nil {
		return 0, err
	}
	return extractCount(results), nil
}

// UpdateRoom writes every editable room field
func (r *VenueRepository) UpdateRoom(ctx context.Context, room *model.VenueRoom) error {
	query := `
		UPDATE type::record($id) SET
			name = $name,
			width_ft = $width_ft,
			length_ft = $length_ft,
			capacity = $capacity,
			floor_plan_url = IF $floor_plan_url IS NOT NULL THEN $floor_plan_url ELSE NONE END,
			pixels_per_foot = IF $pixels_per_foot IS NOT NULL THEN $pixels_per_foot ELSE NONE END,
			updated_on = time::now()
	`
	vars := roomVars(room)
	vars["id"] = room.ID
	return r.db.Execute(ctx, query, vars)
}

// DeleteRoom removes a room and its placed tables, unseating their guests
func (r *VenueRepository) DeleteRoom(ctx context.Context, id string) error {
	vars := map[string]interface{}{"room": id}
	batch := database.NewAtomicBatch().
		Add(`UPDATE guest SET table = NONE, seat_number = NONE
			WHERE table.room = type::record($room)`, vars).
		Add(`DELETE table_instance WHERE room = type::record($room)`, vars).
		Add(`DELETE type::record($room)`, vars)
	return batch.Execute(ctx, r.db)
}

func roomVars(room *model.VenueRoom) map[string]interface{} {
	return map[string]interface{}{
		"venue":           room.VenueID,
		"name":            room.Name,
		"width_ft":        room.WidthFt,
		"length_ft":       room.LengthFt,
		"capacity":        room.Capacity,
		"floor_plan_url":  optional(room.FloorPlanURL),
		"pixels_per_foot": optional(room.PixelsPerFoot),
	}
}
