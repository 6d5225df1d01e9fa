package repository

import (
	"context"
	"errors"

	"github.com/forgo/aisle/api/internal/database"
	"github.com/forgo/aisle/api/internal/model"
)

// CustomVendorRepository handles the couple's vendor shortlist
type CustomVendorRepository struct {
	db database.Database
}

// NewCustomVendorRepository creates a new custom vendor repository
func NewCustomVendorRepository(db database.Database) *CustomVendorRepository {
	return &CustomVendorRepository{db: db}
}

// Create adds a vendor to the shortlist
func (r *CustomVendorRepository) Create(ctx context.Context, cv *model.CustomVendor) error {
	query := `
		CREATE custom_vendor CONTENT {
			owner: type::record($owner),
			name: $name,
			category: $category,
			contact_name: $contact_name,
			email: $email,
			phone: $phone,
			website: $website,
			estimated_cost: $estimated_cost,
			actual_cost: $actual_cost,
			status: $status,
			notes: $notes,
			created_on: time::now(),
			updated_on: time::now()
		}
	`
	result, err := r.db.Query(ctx, query, customVendorVars(cv))
	if err != nil {
		return err
	}

	created, err := extractCreatedRecord(result)
	if err != nil {
		return err
	}

	cv.ID = created.ID
	cv.CreatedOn = created.CreatedOn
	cv.UpdatedOn = created.UpdatedOn
	return nil
}

// GetByID retrieves a shortlisted vendor
func (r *CustomVendorRepository) GetByID(ctx context.Context, id string) (*model.CustomVendor, error) {
	if !inTable(id, "custom_vendor") {
		return nil, nil
	}

	result, err := r.db.QueryOne(ctx, `SELECT * FROM type::record($id)`, map[string]interface{}{"id": id})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	cv, _, err := decodeRecord[model.CustomVendor](result, ownerRenames)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return cv, nil
}

// List returns the owner's shortlist, optionally filtered
func (r *CustomVendorRepository) List(ctx context.Context, ownerID string, filters model.CustomVendorFilters) ([]*model.CustomVendor, error) {
	query := `SELECT * FROM custom_vendor WHERE owner = type::record($owner)`
	vars := map[string]interface{}{"owner": ownerID}

	if filters.Category != "" {
		query += ` AND category = $category`
		vars["category"] = filters.Category
	}
	if filters.Status != "" {
		query += ` AND status = $status`
		vars["status"] = filters.Status
	}
	query += ` ORDER BY created_on ASC`

	results, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}
	return decodeRecords[model.CustomVendor](results, ownerRenames), nil
}

// Update writes every editable field
func (r *CustomVendorRepository) Update(ctx context.Context, cv *model.CustomVendor) error {
	query := `
		UPDATE type::record($id) SET
			name = $name,
			category = $category,
			contact_name = IF $contact_name IS NOT NULL THEN $contact_name ELSE NONE END,
			email = IF $email IS NOT NULL THEN $email ELSE NONE END,
			phone = IF $phone IS NOT NULL THEN $phone ELSE NONE END,
			website = IF $website IS NOT NULL THEN $website ELSE NONE END,
			estimated_cost = IF $estimated_cost IS NOT NULL THEN $estimated_cost ELSE NONE END,
			actual_cost = IF $actual_cost IS NOT NULL THEN $actual_cost ELSE NONE END,
			status = $status,
			notes = IF $notes IS NOT NULL THEN $notes ELSE NONE END,
			updated_on = time::now()
	`
	vars := customVendorVars(cv)
	vars["id"] = cv.ID
	return r.db.Execute(ctx, query, vars)
}

// Delete removes a shortlisted vendor
func (r *CustomVendorRepository) Delete(ctx context.Context, id string) error {
	return r.db.Execute(ctx, `DELETE type::record($id)`, map[string]interface{}{"id": id})
}

func customVendorVars(cv *model.CustomVendor) map[string]interface{} {
	return map[string]interface{}{
		"owner":          cv.OwnerID,
		"name":           cv.Name,
		"category":       cv.Category,
		"contact_name":   optional(cv.ContactName),
		"email":          optional(cv.Email),
		"phone":          optional(cv.Phone),
		"website":        optional(cv.Website),
		"estimated_cost": optional(cv.EstimatedCost),
		"actual_cost":    optional(cv.ActualCost),
		"status":         cv.Status,
		"notes":          optional(cv.Notes),
	}
}
