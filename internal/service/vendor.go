package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/forgo/aisle/api/internal/database"
	"github.com/forgo/aisle/api/internal/model"
	"github.com/forgo/aisle/api/internal/storage"
)

// Vendor media kinds accepted by UploadMedia
const (
	VendorMediaLogo      = "logo"
	VendorMediaPortfolio = "portfolio"
)

// VendorRepository defines the interface for vendor storage
type VendorRepository interface {
	Create(ctx context.Context, vendor *model.Vendor) error
	GetByID(ctx context.Context, id string) (*model.Vendor, error)
	GetByOwner(ctx context.Context, ownerID string) (*model.Vendor, error)
	Update(ctx context.Context, vendor *model.Vendor) error
	List(ctx context.Context, status model.VendorStatus, filters model.VendorFilters) ([]*model.Vendor, error)
}

// VendorService runs the vendor registration wizard and public directory
type VendorService struct {
	repo    VendorRepository
	buckets storage.Buckets
	now     func() time.Time
}

// VendorServiceConfig holds configuration for the vendor service
type VendorServiceConfig struct {
	VendorRepo VendorRepository
	Buckets    storage.Buckets
	Clock      func() time.Time // defaults to time.Now
}

// NewVendorService creates a new vendor service
func NewVendorService(cfg VendorServiceConfig) *VendorService {
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &VendorService{
		repo:    cfg.VendorRepo,
		buckets: cfg.Buckets,
		now:     clock,
	}
}

// Start creates the account's listing from the first wizard page
func (s *VendorService) Start(ctx context.Context, ownerID string, req model.VendorBusinessStep) (*model.Vendor, error) {
	step := model.UpdateVendorStepRequest{Step: model.VendorStepBusiness, Business: &req}
	if err := invalid(step.Validate()); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrVendorExists
	}

	vendor := &model.Vendor{
		OwnerID:      ownerID,
		BusinessName: strings.TrimSpace(req.BusinessName),
		Category:     req.Category,
		Status:       model.VendorStatusDraft,
		Step:         model.VendorStepBusiness,
	}
	if err := s.repo.Create(ctx, vendor); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrVendorExists
		}
		return nil, err
	}

	// The remaining page fields are written with the first Update
	vendor.Description = trimmedPtr(req.Description)
	vendor.Step = model.VendorStepServices
	if err := s.repo.Update(ctx, vendor); err != nil {
		return nil, err
	}
	return vendor, nil
}

// GetMine returns the caller's own listing
func (s *VendorService) GetMine(ctx context.Context, ownerID string) (*model.Vendor, error) {
	vendor, err := s.repo.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if vendor == nil {
		return nil, ErrVendorNotFound
	}
	return vendor, nil
}

// Get returns a listing. Listings that are not approved are only visible to
// their owner and admins.
func (s *VendorService) Get(ctx context.Context, viewerID string, viewerRole model.UserRole, vendorID string) (*model.Vendor, error) {
	vendor, err := s.repo.GetByID(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	if vendor == nil {
		return nil, ErrVendorNotFound
	}
	if vendor.Status != model.VendorStatusApproved && vendor.OwnerID != viewerID && viewerRole != model.UserRoleAdmin {
		return nil, ErrVendorNotFound
	}
	return vendor, nil
}

// UpdateStep saves one wizard page. Only the current step or an earlier one
// may be saved; saving the current step advances the wizard. Editing a
// submitted or approved listing returns it to draft.
func (s *VendorService) UpdateStep(ctx context.Context, ownerID string, req model.UpdateVendorStepRequest) (*model.Vendor, error) {
	if err := invalid(req.Validate()); err != nil {
		return nil, err
	}

	vendor, err := s.GetMine(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if req.Step.Index() > vendor.Step.Index() {
		return nil, ErrStepOutOfOrder
	}

	switch req.Step {
	case model.VendorStepBusiness:
		vendor.BusinessName = strings.TrimSpace(req.Business.BusinessName)
		vendor.Category = req.Business.Category
		vendor.Description = trimmedPtr(req.Business.Description)
	case model.VendorStepServices:
		vendor.City = trimmedPtr(req.Services.City)
		vendor.ServiceArea = trimmedPtr(req.Services.ServiceArea)
		vendor.PriceMin = req.Services.PriceMin
		vendor.PriceMax = req.Services.PriceMax
	case model.VendorStepContact:
		vendor.Phone = trimmedPtr(req.Contact.Phone)
		vendor.Email = trimmedPtr(req.Contact.Email)
		vendor.Website = trimmedPtr(req.Contact.Website)
	case model.VendorStepPortfolio:
		vendor.LogoURL = trimmedPtr(req.Portfolio.LogoURL)
		vendor.PortfolioURLs = append([]string{}, req.Portfolio.PortfolioURLs...)
	}

	if req.Step == vendor.Step {
		vendor.Step = vendor.Step.Next()
	}
	s.reopen(vendor)

	if err := s.repo.Update(ctx, vendor); err != nil {
		return nil, err
	}
	return vendor, nil
}

// Submit sends a completed draft for review
func (s *VendorService) Submit(ctx context.Context, ownerID string) (*model.Vendor, error) {
	vendor, err := s.GetMine(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if vendor.Status != model.VendorStatusDraft {
		return vendor, nil
	}
	if vendor.Step != model.VendorStepSubmit {
		return nil, ErrStepOutOfOrder
	}
	if missing := vendor.MissingForSubmit(); len(missing) > 0 {
		return nil, &ValidationError{Fields: missing}
	}

	now := s.now().UTC()
	vendor.Status = model.VendorStatusSubmitted
	vendor.SubmittedOn = &now
	if err := s.repo.Update(ctx, vendor); err != nil {
		return nil, err
	}
	return vendor, nil
}

// Approve publishes a submitted listing
func (s *VendorService) Approve(ctx context.Context, vendorID string) (*model.Vendor, error) {
	vendor, err := s.repo.GetByID(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	if vendor == nil {
		return nil, ErrVendorNotFound
	}
	if vendor.Status == model.VendorStatusApproved {
		return vendor, nil
	}
	if vendor.Status != model.VendorStatusSubmitted {
		return nil, ErrVendorNotSubmitted
	}

	now := s.now().UTC()
	vendor.Status = model.VendorStatusApproved
	vendor.ApprovedOn = &now
	if err := s.repo.Update(ctx, vendor); err != nil {
		return nil, err
	}
	return vendor, nil
}

// List returns approved listings
func (s *VendorService) List(ctx context.Context, filters model.VendorFilters) ([]*model.Vendor, error) {
	if filters.Category != "" && !model.IsValidVendorCategory(filters.Category) {
		return nil, fieldError("category", "category is not recognised")
	}
	return s.repo.List(ctx, model.VendorStatusApproved, normalizeVendorFilters(filters))
}

// ListPending returns listings waiting for review
func (s *VendorService) ListPending(ctx context.Context, filters model.VendorFilters) ([]*model.Vendor, error) {
	return s.repo.List(ctx, model.VendorStatusSubmitted, normalizeVendorFilters(filters))
}

func normalizeVendorFilters(f model.VendorFilters) model.VendorFilters {
	if f.Limit <= 0 {
		f.Limit = model.DefaultVendorListLimit
	}
	if f.Limit > model.MaxVendorListLimit {
		f.Limit = model.MaxVendorListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	f.City = strings.TrimSpace(f.City)
	return f
}

// UploadMedia stores a logo or portfolio image and attaches it to the listing
func (s *VendorService) UploadMedia(ctx context.Context, ownerID, kind string, data []byte) (*model.Vendor, error) {
	if kind != VendorMediaLogo && kind != VendorMediaPortfolio {
		return nil, fieldError("kind", "kind must be logo or portfolio")
	}

	vendor, err := s.GetMine(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if kind == VendorMediaPortfolio && len(vendor.PortfolioURLs) >= model.MaxPortfolioItems {
		return nil, ErrPortfolioFull
	}

	url, _, err := storeImage(ctx, s.buckets, storage.BucketVendorMedia, ownerID, data)
	if err != nil {
		return nil, err
	}

	var replaced string
	if kind == VendorMediaLogo {
		if vendor.LogoURL != nil {
			replaced = *vendor.LogoURL
		}
		vendor.LogoURL = &url
	} else {
		vendor.PortfolioURLs = append(vendor.PortfolioURLs, url)
	}
	s.reopen(vendor)

	if err := s.repo.Update(ctx, vendor); err != nil {
		removeObject(ctx, s.buckets, storage.BucketVendorMedia, url)
		return nil, err
	}
	if replaced != "" {
		removeObject(ctx, s.buckets, storage.BucketVendorMedia, replaced)
	}
	return vendor, nil
}

// RemovePortfolioItem drops the portfolio image at index
func (s *VendorService) RemovePortfolioItem(ctx context.Context, ownerID string, index int) (*model.Vendor, error) {
	vendor, err := s.GetMine(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(vendor.PortfolioURLs) {
		return nil, ErrImageIndexOutOfRange
	}

	removed := vendor.PortfolioURLs[index]
	vendor.PortfolioURLs = append(vendor.PortfolioURLs[:index:index], vendor.PortfolioURLs[index+1:]...)
	s.reopen(vendor)

	if err := s.repo.Update(ctx, vendor); err != nil {
		return nil, err
	}
	removeObject(ctx, s.buckets, storage.BucketVendorMedia, removed)
	return vendor, nil
}

// reopen returns an edited listing to draft so it is reviewed again
func (s *VendorService) reopen(vendor *model.Vendor) {
	if vendor.Status == model.VendorStatusDraft {
		return
	}
	vendor.Status = model.VendorStatusDraft
	vendor.SubmittedOn = nil
	vendor.ApprovedOn = nil
}
