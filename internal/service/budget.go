package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/forgo/aisle/api/internal/database"
	"github.com/forgo/aisle/api/internal/model"
)

// percentEpsilon absorbs float error when summing allocation percents
const percentEpsilon = 1e-9

// BudgetRepository defines the interface for budget storage
type BudgetRepository interface {
	Create(ctx context.Context, budget *model.Budget) error
	GetByOwner(ctx context.Context, ownerID string) (*model.Budget, error)
	Update(ctx context.Context, budget *model.Budget) error

	CreateExpense(ctx context.Context, e *model.Expense) error
	GetExpense(ctx context.Context, id string) (*model.Expense, error)
	ListExpenses(ctx context.Context, ownerID, category string) ([]*model.Expense, error)
	UpdateExpense(ctx context.Context, e *model.Expense) error
	DeleteExpense(ctx context.Context, id string) error
}

// ProfileReader reads a couple's profile
type ProfileReader interface {
	GetByUser(ctx context.Context, userID string) (*model.Profile, error)
}

// BudgetService handles allocation and expense tracking
type BudgetService struct {
	repo     BudgetRepository
	profiles ProfileReader
}

// BudgetServiceConfig holds configuration for the budget service
type BudgetServiceConfig struct {
	BudgetRepo  BudgetRepository
	ProfileRepo ProfileReader // optional, seeds the first total
}

// NewBudgetService creates a new budget service
func NewBudgetService(cfg BudgetServiceConfig) *BudgetService {
	return &BudgetService{
		repo:     cfg.BudgetRepo,
		profiles: cfg.ProfileRepo,
	}
}

// GetBudget returns the owner's budget, creating it from the profile total
// and the default category table on first use
func (s *BudgetService) GetBudget(ctx context.Context, ownerID string) (*model.Budget, error) {
	budget, err := s.repo.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if budget != nil {
		normalizeAllocations(budget)
		return budget, nil
	}

	budget = &model.Budget{
		OwnerID:  ownerID,
		Currency: model.DefaultCurrency,
	}
	if s.profiles != nil {
		profile, err := s.profiles.GetByUser(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		if profile != nil {
			budget.TotalBudget = profile.TotalBudget
			if profile.Currency != "" {
				budget.Currency = profile.Currency
			}
		}
	}
	budget.Allocations = model.DefaultAllocations(budget.TotalBudget)

	if err := s.repo.Create(ctx, budget); err != nil {
		if !errors.Is(err, database.ErrDuplicate) {
			return nil, err
		}
		// another request created it first
		budget, err = s.repo.GetByOwner(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		if budget != nil {
			normalizeAllocations(budget)
		}
	}
	return budget, nil
}

// SetTotal changes the overall budget and recomputes every amount
func (s *BudgetService) SetTotal(ctx context.Context, ownerID string, req model.SetBudgetTotalRequest) (*model.Budget, error) {
	if err := invalid(req.Validate()); err != nil {
		return nil, err
	}

	currency := ""
	if req.Currency != nil {
		currency = *req.Currency
	}
	return s.setTotal(ctx, ownerID, req.TotalBudget, currency)
}

// SyncTotal applies a total set on the profile
func (s *BudgetService) SyncTotal(ctx context.Context, ownerID string, total int64, currency string) error {
	_, err := s.setTotal(ctx, ownerID, total, currency)
	return err
}

func (s *BudgetService) setTotal(ctx context.Context, ownerID string, total int64, currency string) (*model.Budget, error) {
	budget, err := s.GetBudget(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	budget.TotalBudget = total
	if currency != "" {
		budget.Currency = strings.ToUpper(currency)
	}
	budget.Recompute()

	if err := s.repo.Update(ctx, budget); err != nil {
		return nil, err
	}
	return budget, nil
}

// UpdateAllocations sets the percent of the listed categories. Categories
// not listed keep their percent; the merged total may not exceed 100.
func (s *BudgetService) UpdateAllocations(ctx context.Context, ownerID string, req model.UpdateAllocationsRequest) (*model.Budget, error) {
	if err := invalid(req.Validate()); err != nil {
		return nil, err
	}

	budget, err := s.GetBudget(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	percents := make(map[string]float64, len(req.Allocations))
	for _, a := range req.Allocations {
		percents[a.Category] = a.Percent
	}
	for i := range budget.Allocations {
		if p, ok := percents[budget.Allocations[i].Category]; ok {
			budget.Allocations[i].Percent = p
		}
	}

	if budget.AllocatedPercent() > 100+percentEpsilon {
		return nil, ErrBudgetOverAllocated
	}

	budget.Recompute()
	if err := s.repo.Update(ctx, budget); err != nil {
		return nil, err
	}
	return budget, nil
}

// ResetAllocations restores the default category percents
func (s *BudgetService) ResetAllocations(ctx context.Context, ownerID string) (*model.Budget, error) {
	budget, err := s.GetBudget(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	budget.Allocations = model.DefaultAllocations(budget.TotalBudget)
	if err := s.repo.Update(ctx, budget); err != nil {
		return nil, err
	}
	return budget, nil
}

// normalizeAllocations orders allocations by the category table, adds
// missing categories at zero percent and drops unknown ones
func normalizeAllocations(b *model.Budget) {
	byCategory := make(map[string]model.BudgetAllocation, len(b.Allocations))
	for _, a := range b.Allocations {
		byCategory[a.Category] = a
	}

	out := make([]model.BudgetAllocation, 0, len(model.BudgetCategories))
	for _, c := range model.BudgetCategories {
		a, ok := byCategory[c.Key]
		if !ok {
			a = model.BudgetAllocation{Category: c.Key}
		}
		out = append(out, a)
	}
	b.Allocations = out
	b.Recompute()
}

// ===== Expenses =====

// CreateExpense records an expense against a category
func (s *BudgetService) CreateExpense(ctx context.Context, ownerID string, req model.CreateExpenseRequest) (*model.Expense, error) {
	if err := invalid(req.Validate()); err != nil {
		return nil, err
	}

	e := &model.Expense{
		OwnerID:     ownerID,
		Category:    req.Category,
		Description: strings.TrimSpace(req.Description),
		Amount:      req.Amount,
		Paid:        req.Paid,
		VendorRef:   req.VendorRef,
		DueDate:     parseOptionalDate(req.DueDate),
	}
	if err := s.repo.CreateExpense(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// ListExpenses returns the owner's expenses, optionally for one category
func (s *BudgetService) ListExpenses(ctx context.Context, ownerID, category string) ([]*model.Expense, error) {
	if category != "" && !model.IsValidBudgetCategory(category) {
		return nil, fieldError("category", "category is not recognised")
	}
	return s.repo.ListExpenses(ctx, ownerID, category)
}

// UpdateExpense applies a partial update to an owned expense
func (s *BudgetService) UpdateExpense(ctx context.Context, ownerID, expenseID string, req model.UpdateExpenseRequest) (*model.Expense, error) {
	if err := invalid(req.Validate()); err != nil {
		return nil, err
	}

	e, err := s.getOwnedExpense(ctx, ownerID, expenseID)
	if err != nil {
		return nil, err
	}

	if req.Category != nil {
		e.Category = *req.Category
	}
	if req.Description != nil {
		e.Description = strings.TrimSpace(*req.Description)
	}
	if req.Amount != nil {
		e.Amount = *req.Amount
	}
	if req.Paid != nil {
		e.Paid = *req.Paid
	}
	if req.VendorRef != nil {
		e.VendorRef = emptyToNil(*req.VendorRef)
	}
	if req.DueDate != nil {
		e.DueDate = parseOptionalDate(req.DueDate)
	}

	if err := s.repo.UpdateExpense(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// DeleteExpense removes an owned expense
func (s *BudgetService) DeleteExpense(ctx context.Context, ownerID, expenseID string) error {
	if _, err := s.getOwnedExpense(ctx, ownerID, expenseID); err != nil {
		return err
	}
	return s.repo.DeleteExpense(ctx, expenseID)
}

func (s *BudgetService) getOwnedExpense(ctx context.Context, ownerID, expenseID string) (*model.Expense, error) {
	e, err := s.repo.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrExpenseNotFound
	}
	if e.OwnerID != ownerID {
		return nil, ErrNotOwner
	}
	return e, nil
}

// Summary compares each category's allocation with what has been spent
func (s *BudgetService) Summary(ctx context.Context, ownerID string) (*model.BudgetSummary, error) {
	budget, err := s.GetBudget(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	expenses, err := s.repo.ListExpenses(ctx, ownerID, "")
	if err != nil {
		return nil, err
	}
	return summarizeBudget(budget, expenses), nil
}

func summarizeBudget(budget *model.Budget, expenses []*model.Expense) *model.BudgetSummary {
	spent := make(map[string]int64)
	paid := make(map[string]int64)
	for _, e := range expenses {
		spent[e.Category] += e.Amount
		if e.Paid {
			paid[e.Category] += e.Amount
		}
	}

	summary := &model.BudgetSummary{
		TotalBudget:      budget.TotalBudget,
		Currency:         budget.Currency,
		AllocatedPercent: budget.AllocatedPercent(),
		Categories:       make([]model.CategorySummary, 0, len(budget.Allocations)),
	}

	for _, a := range budget.Allocations {
		cs := model.CategorySummary{
			Category:  a.Category,
			Percent:   a.Percent,
			Allocated: a.Amount,
			Spent:     spent[a.Category],
			Paid:      paid[a.Category],
		}
		cs.Remaining = cs.Allocated - cs.Spent
		cs.Over = cs.Spent > cs.Allocated
		summary.Categories = append(summary.Categories, cs)

		summary.TotalAllocated += cs.Allocated
		summary.TotalSpent += cs.Spent
		summary.TotalPaid += cs.Paid
	}
	summary.Remaining = summary.TotalBudget - summary.TotalSpent

	return summary
}

// parseOptionalDate parses a validated YYYY-MM-DD pointer; empty clears
func parseOptionalDate(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	d, err := model.ParseDate(*s)
	if err != nil {
		return nil
	}
	return &d
}
