package repository

import (
	"context"
	"errors"

	"github.com/forgo/aisle/api/internal/database"
	"github.com/forgo/aisle/api/internal/model"
)

// VendorRepository handles vendor listing data access
type VendorRepository struct {
	db database.Database
}

// NewVendorRepository creates a new vendor repository
func NewVendorRepository(db database.Database) *VendorRepository {
	return &VendorRepository{db: db}
}

var ownerRenames = map[string]string{"owner": "owner_id"}

// Create starts a draft listing at the first wizard step
func (r *VendorRepository) Create(ctx context.Context, vendor *model.Vendor) error {
	if vendor.Status == "" {
		vendor.Status = model.VendorStatusDraft
	}
	if vendor.Step == "" {
		vendor.Step = model.VendorStepBusiness
	}
	if vendor.PortfolioURLs == nil {
		vendor.PortfolioURLs = []string{}
	}

	query := `
		CREATE vendor CONTENT {
			owner: type::record($owner),
			business_name: $business_name,
			category: $category,
			portfolio_urls: $portfolio_urls,
			status: $status,
			step: $step,
			created_on: time::now(),
			updated_on: time::now()
		}
	`
	vars := map[string]interface{}{
		"owner":          vendor.OwnerID,
		"business_name":  vendor.BusinessName,
		"category":       vendor.Category,
		"portfolio_urls": vendor.PortfolioURLs,
		"status":         vendor.Status,
		"step":           vendor.Step,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		if isUniqueConstraintError(err) {
			return database.ErrDuplicate
		}
		return err
	}

	created, err := extractCreatedRecord(result)
	if err != nil {
		return err
	}

	vendor.ID = created.ID
	vendor.CreatedOn = created.CreatedOn
	vendor.UpdatedOn = created.UpdatedOn
	return nil
}

// GetByID retrieves a vendor by ID
func (r *VendorRepository) GetByID(ctx context.Context, id string) (*model.Vendor, error) {
	if !inTable(id, "vendor") {
		return nil, nil
	}
	return r.getOne(ctx, `SELECT * FROM type::record($id)`, map[string]interface{}{"id": id})
}

// GetByOwner retrieves the listing owned by a vendor account
func (r *VendorRepository) GetByOwner(ctx context.Context, ownerID string) (*model.Vendor, error) {
	query := `SELECT * FROM vendor WHERE owner = type::record($owner) LIMIT 1`
	return r.getOne(ctx, query, map[string]interface{}{"owner": ownerID})
}

func (r *VendorRepository) getOne(ctx context.Context, query string, vars map[string]interface{}) (*model.Vendor, error) {
	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	vendor, _, err := decodeRecord[model.Vendor](result, ownerRenames)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if vendor.PortfolioURLs == nil {
		vendor.PortfolioURLs = []string{}
	}
	return vendor, nil
}

// Update writes the wizard fields, status and step
func (r *VendorRepository) Update(ctx context.Context, vendor *model.Vendor) error {
	query := `
		UPDATE type::record($id) SET
			business_name = $business_name,
			category = $category,
			description = IF $description IS NOT NULL THEN $description ELSE NONE END,
			city = IF $city IS NOT NULL THEN $city ELSE NONE END,
			service_area = IF $service_area IS NOT NULL THEN $service_area ELSE NONE END,
			price_min = IF $price_min IS NOT NULL THEN $price_min ELSE NONE END,
			price_max = IF $price_max IS NOT NULL THEN $price_max ELSE NONE END,
			phone = IF $phone IS NOT NULL THEN $phone ELSE NONE END,
			email = IF $email IS NOT NULL THEN $email ELSE NONE END,
			website = IF $website IS NOT NULL THEN $website ELSE NONE END,
			logo_url = IF $logo_url IS NOT NULL THEN $logo_url ELSE NONE END,
			portfolio_urls = $portfolio_urls,
			status = $status,
			step = $step,
			submitted_on = IF $submitted_on IS NOT NULL THEN <datetime>$submitted_on ELSE NONE END,
			approved_on = IF $approved_on IS NOT NULL THEN <datetime>$approved_on ELSE NONE END,
			updated_on = time::now()
	`
	portfolio := vendor.PortfolioURLs
	if portfolio == nil {
		portfolio = []string{}
	}
	vars := map[string]interface{}{
		"id":             vendor.ID,
		"business_name":  vendor.BusinessName,
		"category":       vendor.Category,
		"description":    optional(vendor.Description),
		"city":           optional(vendor.City),
		"service_area":   optional(vendor.ServiceArea),
		"price_min":      optional(vendor.PriceMin),
		"price_max":      optional(vendor.PriceMax),
		"phone":          optional(vendor.Phone),
		"email":          optional(vendor.Email),
		"website":        optional(vendor.Website),
		"logo_url":       optional(vendor.LogoURL),
		"portfolio_urls": portfolio,
		"status":         vendor.Status,
		"step":           vendor.Step,
		"submitted_on":   optTime(vendor.SubmittedOn),
		"approved_on":    optTime(vendor.ApprovedOn),
	}

	return r.db.Execute(ctx, query, vars)
}

// List returns listings with the given status, newest first
func (r *VendorRepository) List(ctx context.Context, status model.VendorStatus, filters model.VendorFilters) ([]*model.Vendor, error) {
	query := `SELECT * FROM vendor WHERE status = $status`
	vars := map[string]interface{}{
		"status": status,
		"limit":  filters.Limit,
		"offset": filters.Offset,
	}

	if filters.Category != "" {
		query += ` AND category = $category`
		vars["category"] = filters.Category
	}
	if filters.City != "" {
		query += ` AND string::lowercase(city ?? '') = string::lowercase($city)`
		vars["city"] = filters.City
	}
	query += ` ORDER BY created_on DESC LIMIT $limit START $offset`

	results, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	vendors := decodeRecords[model.Vendor](results, ownerRenames)
	for _, v := range vendors {
		if v.PortfolioURLs == nil {
			v.PortfolioURLs = []string{}
		}
	}
	return vendors, nil
}

// Delete removes a listing
func (r *VendorRepository) Delete(ctx context.Context, id string) error {
	return r.db.Execute(ctx, `DELETE type::record($id)`, map[string]interface{}{"id": id})
}
