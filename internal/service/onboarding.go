package service

import (
	"context"
	"fmt"
)

// OnboardingService prepares the planning data of a new couple account
type OnboardingService struct {
	profiles *ProfileService
	budgets  *BudgetService
	timeline *TimelineService
}

// NewOnboardingService creates a new onboarding service
func NewOnboardingService(profiles *ProfileService, budgets *BudgetService, timeline *TimelineService) *OnboardingService {
	return &OnboardingService{
		profiles: profiles,
		budgets:  budgets,
		timeline: timeline,
	}
}

// SetupCouple creates the empty profile, default budget and default
// checklist. Each step is idempotent so it can be retried.
func (s *OnboardingService) SetupCouple(ctx context.Context, userID string) error {
	if _, err := s.profiles.GetProfile(ctx, userID); err != nil {
		return fmt.Errorf("profile: %w", err)
	}
	if _, err := s.budgets.GetBudget(ctx, userID); err != nil {
		return fmt.Errorf("budget: %w", err)
	}
	if _, err := s.timeline.GenerateDefault(ctx, userID); err != nil {
		return fmt.Errorf("timeline: %w", err)
	}
	return nil
}
