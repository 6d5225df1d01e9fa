package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/forgo/aisle/api/internal/database"
	"github.com/forgo/aisle/api/internal/model"
)

// ProfileRepository defines the interface for profile storage
type ProfileRepository interface {
	Create(ctx context.Context, profile *model.Profile) error
	GetByUser(ctx context.Context, userID string) (*model.Profile, error)
	Update(ctx context.Context, profile *model.Profile) error
}

// TimelineRescheduler moves template tasks when the wedding date changes
type TimelineRescheduler interface {
	Reschedule(ctx context.Context, ownerID string, wedding *time.Time) error
}

// BudgetTotalSyncer keeps the budget total in step with the profile
type BudgetTotalSyncer interface {
	SyncTotal(ctx context.Context, ownerID string, total int64, currency string) error
}

// ProfileService handles the couple's wedding profile
type ProfileService struct {
	repo     ProfileRepository
	timeline TimelineRescheduler
	budget   BudgetTotalSyncer
}

// ProfileServiceConfig holds configuration for the profile service
type ProfileServiceConfig struct {
	ProfileRepo ProfileRepository
	Timeline    TimelineRescheduler // optional
	Budget      BudgetTotalSyncer   // optional
}

// NewProfileService creates a new profile service
func NewProfileService(cfg ProfileServiceConfig) *ProfileService {
	return &ProfileService{
		repo:     cfg.ProfileRepo,
		timeline: cfg.Timeline,
		budget:   cfg.Budget,
	}
}

// GetProfile returns the user's profile, creating an empty one on first use
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	profile, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile != nil {
		return profile, nil
	}

	profile = &model.Profile{
		UserID:   userID,
		Currency: model.DefaultCurrency,
	}
	if err := s.repo.Create(ctx, profile); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return s.repo.GetByUser(ctx, userID)
		}
		return nil, err
	}
	return profile, nil
}

// UpdateProfile applies a partial update. A new wedding date reschedules
// the timeline; a new total or currency flows into the budget.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, req model.UpdateProfileRequest) (*model.Profile, error) {
	if err := invalid(req.Validate()); err != nil {
		return nil, err
	}

	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}

	dateChanged := false
	budgetChanged := false

	if req.PartnerOne != nil {
		profile.PartnerOne = emptyToNil(*req.PartnerOne)
	}
	if req.PartnerTwo != nil {
		profile.PartnerTwo = emptyToNil(*req.PartnerTwo)
	}
	if req.Location != nil {
		profile.Location = emptyToNil(*req.Location)
	}
	if req.EstimatedGuests != nil {
		profile.EstimatedGuests = *req.EstimatedGuests
	}
	if req.WeddingDate != nil {
		var next *time.Time
		if *req.WeddingDate != "" {
			d, _ := model.ParseDate(*req.WeddingDate)
			next = &d
		}
		dateChanged = !sameDate(profile.WeddingDate, next)
		profile.WeddingDate = next
	}
	if req.TotalBudget != nil && *req.TotalBudget != profile.TotalBudget {
		profile.TotalBudget = *req.TotalBudget
		budgetChanged = true
	}
	if req.Currency != nil {
		currency := strings.ToUpper(*req.Currency)
		if currency != profile.Currency {
			profile.Currency = currency
			budgetChanged = true
		}
	}

	if err := s.repo.Update(ctx, profile); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	if dateChanged && s.timeline != nil {
		if err := s.timeline.Reschedule(ctx, userID, profile.WeddingDate); err != nil {
			return nil, err
		}
	}
	if budgetChanged && s.budget != nil {
		if err := s.budget.SyncTotal(ctx, userID, profile.TotalBudget, profile.Currency); err != nil {
			return nil, err
		}
	}

	return profile, nil
}

func sameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func emptyToNil(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
