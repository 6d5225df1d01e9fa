package service

import (
	"context"
	"strings"

	"github.com/forgo/aisle/api/internal/model"
)

// CustomVendorRepository defines the interface for shortlist storage
type CustomVendorRepository interface {
	Create(ctx context.Context, cv *model.CustomVendor) error
	GetByID(ctx context.Context, id string) (*model.CustomVendor, error)
	List(ctx context.Context, ownerID string, filters model.CustomVendorFilters) ([]*model.CustomVendor, error)
	Update(ctx context.Context, cv *model.CustomVendor) error
	Delete(ctx context.Context, id string) error
}

// CustomVendorService manages a couple's personal vendor shortlist
type CustomVendorService struct {
	repo CustomVendorRepository
}

// NewCustomVendorService creates a new custom vendor service
func NewCustomVendorService(repo CustomVendorRepository) *CustomVendorService {
	return &CustomVendorService{repo: repo}
}

// Create adds a vendor to the shortlist
func (s *CustomVendorService) Create(ctx context.Context, ownerID string, req model.CreateCustomVendorRequest) (*model.CustomVendor, error) {
	if err := invalid(req.Validate()); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = model.CustomVendorResearching
	}

	cv := &model.CustomVendor{
		OwnerID:       ownerID,
		Name:          strings.TrimSpace(req.Name),
		Category:      req.Category,
		ContactName:   trimmedPtr(req.ContactName),
		Email:         trimmedPtr(req.Email),
		Phone:         trimmedPtr(req.Phone),
		Website:       trimmedPtr(req.Website),
		EstimatedCost: req.EstimatedCost,
		ActualCost:    req.ActualCost,
		Status:        status,
		Notes:         trimmedPtr(req.Notes),
	}
	if err := s.repo.Create(ctx, cv); err != nil {
		return nil, err
	}
	return cv, nil
}

// Get returns an owned entry
func (s *CustomVendorService) Get(ctx context.Context, ownerID, id string) (*model.CustomVendor, error) {
	return s.getOwned(ctx, ownerID, id)
}

// List returns the owner's shortlist
func (s *CustomVendorService) List(ctx context.Context, ownerID string, filters model.CustomVendorFilters) ([]*model.CustomVendor, error) {
	if filters.Category != "" && !model.IsValidVendorCategory(filters.Category) {
		return nil, fieldError("category", "category is not recognised")
	}
	if filters.Status != "" && !model.CustomVendorStatus(filters.Status).IsValid() {
		return nil, fieldError("status", "status must be researching, contacted, booked or declined")
	}
	return s.repo.List(ctx, ownerID, filters)
}

// Update applies a partial update; empty strings clear optional fields
func (s *CustomVendorService) Update(ctx context.Context, ownerID, id string, req model.UpdateCustomVendorRequest) (*model.CustomVendor, error) {
	if err := invalid(req.Validate()); err != nil {
		return nil, err
	}

	cv, err := s.getOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		cv.Name = strings.TrimSpace(*req.Name)
	}
	if req.Category != nil {
		cv.Category = *req.Category
	}
	if req.ContactName != nil {
		cv.ContactName = trimmedPtr(req.ContactName)
	}
	if req.Email != nil {
		cv.Email = trimmedPtr(req.Email)
	}
	if req.Phone != nil {
		cv.Phone = trimmedPtr(req.Phone)
	}
	if req.Website != nil {
		cv.Website = trimmedPtr(req.Website)
	}
	if req.EstimatedCost != nil {
		cv.EstimatedCost = req.EstimatedCost
	}
	if req.ActualCost != nil {
		cv.ActualCost = req.ActualCost
	}
	if req.Status != nil {
		cv.Status = *req.Status
	}
	if req.Notes != nil {
		cv.Notes = trimmedPtr(req.Notes)
	}

	if err := s.repo.Update(ctx, cv); err != nil {
		return nil, err
	}
	return cv, nil
}

// Delete removes an owned entry
func (s *CustomVendorService) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := s.getOwned(ctx, ownerID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *CustomVendorService) getOwned(ctx context.Context, ownerID, id string) (*model.CustomVendor, error) {
	cv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cv == nil {
		return nil, ErrCustomVendorNotFound
	}
	if cv.OwnerID != ownerID {
		return nil, ErrNotOwner
	}
	return cv, nil
}
