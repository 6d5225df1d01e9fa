package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/forgo/aisle/api/internal/database"
	"github.com/forgo/aisle/api/internal/model"
)

// ProfileRepository handles wedding profile data access
type ProfileRepository struct {
	db database.Database
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db database.Database) *ProfileRepository {
	return &ProfileRepository{db: db}
}

var profileRenames = map[string]string{"user": "user_id"}

// Create creates the profile for a user; one profile per user
func (r *ProfileRepository) Create(ctx context.Context, profile *model.Profile) error {
	if profile.Currency == "" {
		profile.Currency = model.DefaultCurrency
	}

	query := `
		CREATE profile CONTENT {
			user: type::record($user),
			partner_one: $partner_one,
			partner_two: $partner_two,
			wedding_date: IF $wedding_date IS NOT NULL THEN <datetime>$wedding_date ELSE NONE END,
			location: $location,
			estimated_guests: $estimated_guests,
			total_budget: $total_budget,
			currency: $currency,
			created_on: time::now(),
			updated_on: time::now()
		}
	`
	vars := map[string]interface{}{
		"user":             profile.UserID,
		"partner_one":      optional(profile.PartnerOne),
		"partner_two":      optional(profile.PartnerTwo),
		"wedding_date":     optTime(profile.WeddingDate),
		"location":         optional(profile.Location),
		"estimated_guests": profile.EstimatedGuests,
		"total_budget":     profile.TotalBudget,
		"currency":         profile.Currency,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: profile already exists", database.ErrDuplicate)
		}
		return err
	}

	created, err := extractCreatedRecord(result)
	if err != nil {
		return err
	}

	profile.ID = created.ID
	profile.CreatedOn = created.CreatedOn
	profile.UpdatedOn = created.UpdatedOn
	return nil
}

// GetByUser retrieves the profile belonging to a user
func (r *ProfileRepository) GetByUser(ctx context.Context, userID string) (*model.Profile, error) {
	query := `SELECT * FROM profile WHERE user = type::record($user) LIMIT 1`
	result, err := r.db.QueryOne(ctx, query, map[string]interface{}{"user": userID})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	profile, _, err := decodeRecord[model.Profile](result, profileRenames)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return profile, nil
}

// Update writes every editable profile field
func (r *ProfileRepository) Update(ctx context.Context, profile *model.Profile) error {
	query := `
		UPDATE type::record($id) SET
			partner_one = IF $partner_one IS NOT NULL THEN $partner_one ELSE NONE END,
			partner_two = IF $partner_two IS NOT NULL THEN $partner_two ELSE NONE END,
			wedding_date = IF $wedding_date IS NOT NULL THEN <datetime>$wedding_date ELSE NONE END,
			location = IF $location IS NOT NULL THEN $location ELSE NONE END,
			estimated_guests = $estimated_guests,
			total_budget = $total_budget,
			currency = $currency,
			updated_on = time::now()
		RETURN AFTER
	`
	vars := map[string]interface{}{
		"id":               profile.ID,
		"partner_one":      optional(profile.PartnerOne),
		"partner_two":      optional(profile.PartnerTwo),
		"wedding_date":     optTime(profile.WeddingDate),
		"location":         optional(profile.Location),
		"estimated_guests": profile.EstimatedGuests,
		"total_budget":     profile.TotalBudget,
		"currency":         profile.Currency,
	}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return database.ErrNotFound
		}
		return err
	}
	if t := getTime(mustMap(result), "updated_on"); t != nil {
		profile.UpdatedOn = *t
	}
	return nil
}
