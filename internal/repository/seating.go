package repository

import (
	"context"
	"errors"

	"github.com/forgo/aisle/api/internal/database"
	"github.com/forgo/aisle/api/internal/model"
)

// SeatingRepository handles table templates and placed tables
type SeatingRepository struct {
	db database.Database
}

// NewSeatingRepository creates a new seating repository
func NewSeatingRepository(db database.Database) *SeatingRepository {
	return &SeatingRepository{db: db}
}

var instanceRenames = map[string]string{
	"owner":    "owner_id",
	"room":     "room_id",
	"template": "template_id",
}

// ===== Templates =====

// SeedBuiltIns upserts the built-in templates under their fixed ids
func (r *SeatingRepository) SeedBuiltIns(ctx context.Context) error {
	batch := database.NewAtomicBatch()
	for _, t := range model.BuiltInTemplates {
		batch.Add(`
			UPSERT type::record($id) CONTENT {
				name: $name,
				shape: $shape,
				width_ft: $width_ft,
				length_ft: $length_ft,
				seats: $seats,
				built_in: true,
				created_on: time::now()
			}
		`, map[string]interface{}{
			"id":        t.ID,
			"name":      t.Name,
			"shape":     t.Shape,
			"width_ft":  t.WidthFt,
			"length_ft": t.LengthFt,
			"seats":     t.Seats,
		})
	}
	return batch.Execute(ctx, r.db)
}

// CreateTemplate stores a user template
func (r *SeatingRepository) CreateTemplate(ctx context.Context, t *model.TableTemplate) error {
	query := `
		CREATE table_template CONTENT {
			owner: type::record($owner),
			name: $name,
			shape: $shape,
			width_ft: $width_ft,
			length_ft: $length_ft,
			seats: $seats,
			built_in: false,
			created_on: time::now()
		}
	`
	owner := ""
	if t.OwnerID != nil {
		owner = *t.OwnerID
	}
	vars := map[string]interface{}{
		"owner":     owner,
		"name":      t.Name,
		"shape":     t.Shape,
		"width_ft":  t.WidthFt,
		"length_ft": t.LengthFt,
		"seats":     t.Seats,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return err
	}

	created, err := extractCreatedRecord(result)
	if err != nil {
		return err
	}

	t.ID = created.ID
	t.CreatedOn = created.CreatedOn
	return nil
}

// GetTemplate retrieves a template by ID
func (r *SeatingRepository) GetTemplate(ctx context.Context, id string) (*model.TableTemplate, error) {
	if !inTable(id, "table_template") {
		return nil, nil
	}

	result, err := r.db.QueryOne(ctx, `SELECT * FROM type::record($id)`, map[string]interface{}{"id": id})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	t, _, err := decodeRecord[model.TableTemplate](result, ownerRenames)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return t, nil
}

// ListTemplates returns the built-ins followed by the owner's templates
func (r *SeatingRepository) ListTemplates(ctx context.Context, ownerID string) ([]*model.TableTemplate, error) {
	query := `
		SELECT * FROM table_template
		WHERE built_in = true OR owner = type::record($owner)
		ORDER BY built_in DESC, name ASC
	`
	results, err := r.db.Query(ctx, query, map[string]interface{}{"owner": ownerID})
	if err != nil {
		return nil, err
	}
	return decodeRecords[model.TableTemplate](results, ownerRenames), nil
}

// GetTemplates retrieves several templates keyed by ID
func (r *SeatingRepository) GetTemplates(ctx context.Context, ids []string) (map[string]*model.TableTemplate, error) {
	out := make(map[string]*model.TableTemplate, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	query := `SELECT * FROM table_template WHERE <string>id IN $ids`
	results, err := r.db.Query(ctx, query, map[string]interface{}{"ids": ids})
	if err != nil {
		return nil, err
	}
	for _, t := range decodeRecords[model.TableTemplate](results, ownerRenames) {
		out[t.ID] = t
	}
	return out, nil
}

// CountTemplateUses counts placed tables built from a template
func (r *SeatingRepository) CountTemplateUses(ctx context.Context, templateID string) (int, error) {
	query := `SELECT count() AS count FROM table_instance WHERE template = type::record($template) GROUP ALL`
	results, err := r.db.Query(ctx, query, map[string]interface{}{"template": templateID})
	if err != nil {
		return 0, err
	}
	return extractCount(results), nil
}

// DeleteTemplate removes a user template
func (r *SeatingRepository) DeleteTemplate(ctx context.Context, id string) error {
	return r.db.Execute(ctx, `DELETE type::record($id) WHERE built_in = false`, map[string]interface{}{"id": id})
}

// ===== Placed tables =====

// CreateTable places a table in a room
func (r *SeatingRepository) CreateTable(ctx context.Context, t *model.TableInstance) error {
	query := `
		CREATE table_instance CONTENT {
			owner: type::record($owner),
			room: type::record($room),
			template: type::record($template),
			label: $label,
			x_px: $x_px,
			y_px: $y_px,
			rotation_deg: $rotation_deg,
			seats: $seats,
			created_on: time::now(),
			updated_on: time::now()
		}
	`
	vars := map[string]interface{}{
		"owner":        t.OwnerID,
		"room":         t.RoomID,
		"template":     t.TemplateID,
		"label":        t.Label,
		"x_px":         t.XPx,
		"y_px":         t.YPx,
		"rotation_deg": t.RotationDeg,
		"seats":        t.Seats,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return err
	}

	created, err := extractCreatedRecord(result)
	if err != nil {
		return err
	}

	t.ID = created.ID
	t.CreatedOn = created.CreatedOn
	t.UpdatedOn = created.UpdatedOn
	return nil
}

// GetTable retrieves a placed table by ID
func (r *SeatingRepository) GetTable(ctx context.Context, id string) (*model.TableInstance, error) {
	if !inTable(id, "table_instance") {
		return nil, nil
	}

	result, err := r.db.QueryOne(ctx, `SELECT * FROM type::record($id)`, map[string]interface{}{"id": id})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	t, _, err := decodeRecord[model.TableInstance](result, instanceRenames)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return t, nil
}

// ListTables returns the tables placed in a room in placement order
func (r *SeatingRepository) ListTables(ctx context.Context, roomID string) ([]*model.TableInstance, error) {
	query := `SELECT * FROM table_instance WHERE room = type::record($room) ORDER BY created_on ASC`
	results, err := r.db.Query(ctx, query, map[string]interface{}{"room": roomID})
	if err != nil {
		return nil, err
	}
	return decodeRecords[model.TableInstance](results, instanceRenames), nil
}

// CountTables counts the tables placed in a room
func (r *SeatingRepository) CountTables(ctx context.Context, roomID string) (int, error) {
	query := `SELECT count() AS count FROM table_instance WHERE room = type::record($room) GROUP ALL`
	results, err := r.db.Query(ctx, query, map[string]interface{}{"room": roomID})
	if err != nil {
		return 0, err
	}
	return extractCount(results), nil
}

// UpdateTable writes the position, rotation, label and seat count
func (r *SeatingRepository) UpdateTable(ctx context.Context, t *model.TableInstance) error {
	query := `
		UPDATE type::record($id) SET
			label = $label,
			x_px = $x_px,
			y_px = $y_px,
			rotation_deg = $rotation_deg,
			seats = $seats,
			updated_on = time::now()
	`
	vars := map[string]interface{}{
		"id":           t.ID,
		"label":        t.Label,
		"x_px":         t.XPx,
		"y_px":         t.YPx,
		"rotation_deg": t.RotationDeg,
		"seats":        t.Seats,
	}
	return r.db.Execute(ctx, query, vars)
}

// DeleteTable removes a placed table and unseats its guests
func (r *SeatingRepository) DeleteTable(ctx context.Context, id string) error {
	vars := map[string]interface{}{"table": id}
	batch := database.NewAtomicBatch().
		Add(`UPDATE guest SET table = NONE, seat_number = NONE WHERE table = type::record($table)`, vars).
		Add(`DELETE type::record($table)`, vars)
	return batch.Execute(ctx, r.db)
}
