package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/forgo/aisle/api/internal/database"
	"github.com/forgo/aisle/api/internal/model"
)

// GuestRepository handles the guest list and seat assignments
type GuestRepository struct {
	db database.Database
}

// NewGuestRepository creates a new guest repository
func NewGuestRepository(db database.Database) *GuestRepository {
	return &GuestRepository{db: db}
}

var guestRenames = map[string]string{
	"owner": "owner_id",
	"table": "table_id",
}

const createGuestQuery = `
	CREATE guest CONTENT {
		owner: type::record($owner),
		first_name: $first_name,
		last_name: $last_name,
		email: $email,
		phone: $phone,
		side: $side,
		group_name: $group_name,
		rsvp_status: $rsvp_status,
		meal_choice: $meal_choice,
		dietary_notes: $dietary_notes,
		plus_one: $plus_one,
		plus_one_name: $plus_one_name,
		created_on: time::now(),
		updated_on: time::now()
	}
`

// Create adds a guest
func (r *GuestRepository) Create(ctx context.Context, guest *model.Guest) error {
	result, err := r.db.Query(ctx, createGuestQuery, guestVars(guest))
	if err != nil {
		return err
	}

	created, err := extractCreatedRecord(result)
	if err != nil {
		return err
	}

	guest.ID = created.ID
	guest.CreatedOn = created.CreatedOn
	guest.UpdatedOn = created.UpdatedOn
	return nil
}

// CreateMany adds guests in a single transaction
func (r *GuestRepository) CreateMany(ctx context.Context, guests []*model.Guest) error {
	batch := database.NewAtomicBatch()
	for _, g := range guests {
		batch.Add(createGuestQuery, guestVars(g))
	}
	return batch.Execute(ctx, r.db)
}

// GetByID retrieves a guest by ID
func (r *GuestRepository) GetByID(ctx context.Context, id string) (*model.Guest, error) {
	if !inTable(id, "guest") {
		return nil, nil
	}
	return r.getOne(ctx, `SELECT * FROM type::record($id)`, map[string]interface{}{"id": id})
}

// GetBySeat returns the guest holding a seat, if any
func (r *GuestRepository) GetBySeat(ctx context.Context, tableID string, seat int) (*model.Guest, error) {
	query := `SELECT * FROM guest WHERE table = type::record($table) AND seat_number = $seat LIMIT 1`
	vars := map[string]interface{}{
		"table": tableID,
		"seat":  seat,
	}
	return r.getOne(ctx, query, vars)
}

func (r *GuestRepository) getOne(ctx context.Context, query string, vars map[string]interface{}) (*model.Guest, error) {
	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	guest, _, err := decodeRecord[model.Guest](result, guestRenames)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return guest, nil
}

// List returns the owner's guests matching filters, sorted by name.
// A zero Limit returns every match.
func (r *GuestRepository) List(ctx context.Context, ownerID string, filters model.GuestFilters) ([]*model.Guest, error) {
	conditions := []string{"owner = type::record($owner)"}
	vars := map[string]interface{}{"owner": ownerID}

	if filters.RSVPStatus != "" {
		conditions = append(conditions, "rsvp_status = $rsvp_status")
		vars["rsvp_status"] = filters.RSVPStatus
	}
	if filters.Side != "" {
		conditions = append(conditions, "side = $side")
		vars["side"] = filters.Side
	}
	if filters.GroupName != "" {
		conditions = append(conditions, "group_name = $group_name")
		vars["group_name"] = filters.GroupName
	}
	if filters.Search != "" {
		conditions = append(conditions,
			"string::lowercase(string::concat(first_name, ' ', last_name ?? '')) CONTAINS $search")
		vars["search"] = strings.ToLower(strings.TrimSpace(filters.Search))
	}
	if filters.Seated != nil {
		if *filters.Seated {
			conditions = append(conditions, "table IS NOT NONE")
		} else {
			conditions = append(conditions, "table IS NONE")
		}
	}

	query := fmt.Sprintf("SELECT * FROM guest WHERE %s ORDER BY first_name ASC, last_name ASC",
		strings.Join(conditions, " AND "))
	if filters.Limit > 0 {
		query += " LIMIT $limit START $offset"
		vars["limit"] = filters.Limit
		vars["offset"] = filters.Offset
	}

	results, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}
	return decodeRecords[model.Guest](results, guestRenames), nil
}

// ListSeatedAt returns the guests seated at any of the given tables
func (r *GuestRepository) ListSeatedAt(ctx context.Context, tableIDs []string) ([]*model.Guest, error) {
	if len(tableIDs) == 0 {
		return []*model.Guest{}, nil
	}

	query := `SELECT * FROM guest WHERE table IS NOT NONE AND <string>table IN $tables`
	results, err := r.db.Query(ctx, query, map[string]interface{}{"tables": tableIDs})
	if err != nil {
		return nil, err
	}
	return decodeRecords[model.Guest](results, guestRenames), nil
}

// Count counts the owner's guests
func (r *GuestRepository) Count(ctx context.Context, ownerID string) (int, error) {
	query := `SELECT count() AS count FROM guest WHERE owner = type::record($owner) GROUP ALL`
	results, err := r.db.Query(ctx, query, map[string]interface{}{"owner": ownerID})
	if err != nil {
		return 0, err
	}
	return extractCount(results), nil
}

// Update writes every editable guest field including the RSVP
func (r *GuestRepository) Update(ctx context.Context, guest *model.Guest) error {
	query := `
		UPDATE type::record($id) SET
			first_name = $first_name,
			last_name = IF $last_name IS NOT NULL THEN $last_name ELSE NONE END,
			email = IF $email IS NOT NULL THEN $email ELSE NONE END,
			phone = IF $phone IS NOT NULL THEN $phone ELSE NONE END,
			side = $side,
			group_name = IF $group_name IS NOT NULL THEN $group_name ELSE NONE END,
			rsvp_status = $rsvp_status,
			meal_choice = IF $meal_choice IS NOT NULL THEN $meal_choice ELSE NONE END,
			dietary_notes = IF $dietary_notes IS NOT NULL THEN $dietary_notes ELSE NONE END,
			plus_one = $plus_one,
			plus_one_name = IF $plus_one_name IS NOT NULL THEN $plus_one_name ELSE NONE END,
			responded_on = IF $responded_on IS NOT NULL THEN <datetime>$responded_on ELSE NONE END,
			updated_on = time::now()
	`
	vars := guestVars(guest)
	vars["id"] = guest.ID
	vars["responded_on"] = optTime(guest.RespondedOn)
	return r.db.Execute(ctx, query, vars)
}

// Delete removes a guest
func (r *GuestRepository) Delete(ctx context.Context, id string) error {
	return r.db.Execute(ctx, `DELETE type::record($id)`, map[string]interface{}{"id": id})
}

// AssignSeat seats a guest. The seat check and the write run in one
// transaction; an occupied seat fails with database.ErrDuplicate.
func (r *GuestRepository) AssignSeat(ctx context.Context, guestID, tableID string, seat int) error {
	query := `
		BEGIN TRANSACTION;
		LET $taken = (SELECT id FROM guest
			WHERE table = type::record($table) AND seat_number = $seat AND id != type::record($guest));
		IF array::len($taken) > 0 { THROW "seat already contains a guest" };
		UPDATE type::record($guest) SET
			table = type::record($table),
			seat_number = $seat,
			updated_on = time::now();
		COMMIT TRANSACTION;
	`
	vars := map[string]interface{}{
		"guest": guestID,
		"table": tableID,
		"seat":  seat,
	}

	err := r.db.Execute(ctx, query, vars)
	if err != nil && isUniqueConstraintError(err) {
		return database.ErrDuplicate
	}
	return err
}

// UnassignSeat clears a guest's seat
func (r *GuestRepository) UnassignSeat(ctx context.Context, guestID string) error {
	query := `UPDATE type::record($id) SET table = NONE, seat_number = NONE, updated_on = time::now()`
	return r.db.Execute(ctx, query, map[string]interface{}{"id": guestID})
}

// UnassignSeatsAbove unseats guests whose seat number no longer exists
// after a table shrinks
func (r *GuestRepository) UnassignSeatsAbove(ctx context.Context, tableID string, seats int) error {
	query := `
		UPDATE guest SET table = NONE, seat_number = NONE, updated_on = time::now()
		WHERE table = type::record($table) AND seat_number > $seats
	`
	vars := map[string]interface{}{
		"table": tableID,
		"seats": seats,
	}
	return r.db.Execute(ctx, query, vars)
}

func guestVars(g *model.Guest) map[string]interface{} {
	return map[string]interface{}{
		"owner":         g.OwnerID,
		"first_name":    g.FirstName,
		"last_name":     optional(g.LastName),
		"email":         optional(g.Email),
		"phone":         optional(g.Phone),
		"side":          g.Side,
		"group_name":    optional(g.GroupName),
		"rsvp_status":   g.RSVPStatus,
		"meal_choice":   optional(g.MealChoice),
		"dietary_notes": optional(g.DietaryNotes),
		"plus_one":      g.PlusOne,
		"plus_one_name": optional(g.PlusOneName),
	}
}
