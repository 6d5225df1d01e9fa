package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/forgo/aisle/api/internal/database"
	"github.com/forgo/aisle/api/internal/model"
)

// ============================================================================
// Mocks
// ============================================================================

type memBudgetRepo struct {
	budgets  map[string]*model.Budget
	expenses map[string]*model.Expense
	seq      int
}

func newMemBudgetRepo() *memBudgetRepo {
	return &memBudgetRepo{
		budgets:  make(map[string]*model.Budget),
		expenses: make(map[string]*model.Expense),
	}
}

func (m *memBudgetRepo) Create(ctx context.Context, b *model.Budget) error {
	b.ID = "budget_data:" + b.OwnerID
	cp := *b
	m.budgets[b.OwnerID] = &cp
	return nil
}

func (m *memBudgetRepo) GetByOwner(ctx context.Context, ownerID string) (*model.Budget, error) {
	b, ok := m.budgets[ownerID]
	if !ok {
		return nil, nil
	}
	cp := *b
	cp.Allocations = append([]model.BudgetAllocation{}, b.Allocations...)
	return &cp, nil
}

func (m *memBudgetRepo) Update(ctx context.Context, b *model.Budget) error {
	cp := *b
	cp.Allocations = append([]model.BudgetAllocation{}, b.Allocations...)
	m.budgets[b.OwnerID] = &cp
	return nil
}

func (m *memBudgetRepo) CreateExpense(ctx context.Context, e *model.Expense) error {
	m.seq++
	e.ID = fmt.Sprintf("budget_expense:%d", m.seq)
	m.expenses[e.ID] = e
	return nil
}

func (m *memBudgetRepo) GetExpense(ctx context.Context, id string) (*model.Expense, error) {
	return m.expenses[id], nil
}

func (m *memBudgetRepo) ListExpenses(ctx context.Context, ownerID, category string) ([]*model.Expense, error) {
	var out []*model.Expense
	for _, e := range m.expenses {
		if e.OwnerID == ownerID && (category == "" || e.Category == category) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memBudgetRepo) UpdateExpense(ctx context.Context, e *model.Expense) error {
	m.expenses[e.ID] = e
	return nil
}

func (m *memBudgetRepo) DeleteExpense(ctx context.Context, id string) error {
	delete(m.expenses, id)
	return nil
}

type stubProfileReader struct {
	profiles map[string]*model.Profile
}

func (s *stubProfileReader) GetByUser(ctx context.Context, userID string) (*model.Profile, error) {
	return s.profiles[userID], nil
}

func allocation(b *model.Budget, category string) model.BudgetAllocation {
	for _, a := range b.Allocations {
		if a.Category == category {
			return a
		}
	}
	return model.BudgetAllocation{}
}

// ============================================================================
// GetBudget / SetTotal
// ============================================================================

func TestBudgetService_GetBudget_SeedsFromProfile(t *testing.T) {
	t.Parallel()

	repo := newMemBudgetRepo()
	svc := NewBudgetService(BudgetServiceConfig{
		BudgetRepo: repo,
		ProfileRepo: &stubProfileReader{profiles: map[string]*model.Profile{
			"user:1": {UserID: "user:1", TotalBudget: 3_000_000, Currency: "EUR"},
		}},
	})

	b, err := svc.GetBudget(context.Background(), "user:1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if b.TotalBudget != 3_000_000 || b.Currency != "EUR" {
		t.Errorf("expected profile total and currency, got %d %s", b.TotalBudget, b.Currency)
	}
	if len(b.Allocations) != len(model.BudgetCategories) {
		t.Fatalf("expected %d categories, got %d", len(model.BudgetCategories), len(b.Allocations))
	}
	if got := allocation(b, "venue").Amount; got != 900_000 {
		t.Errorf("venue should get 30%% = 900000, got %d", got)
	}
	if b.AllocatedPercent() != 100 {
		t.Errorf("defaults should sum to 100, got %v", b.AllocatedPercent())
	}
}

func TestBudgetService_GetBudget_PadsMissingCategories(t *testing.T) {
	t.Parallel()

	repo := newMemBudgetRepo()
	repo.budgets["user:1"] = &model.Budget{
		OwnerID:     "user:1",
		TotalBudget: 10_000,
		Allocations: []model.BudgetAllocation{{Category: "venue", Percent: 50}, {Category: "retired", Percent: 10}},
	}
	svc := NewBudgetService(BudgetServiceConfig{BudgetRepo: repo})

	b, err := svc.GetBudget(context.Background(), "user:1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(b.Allocations) != len(model.BudgetCategories) {
		t.Errorf("expected every category, got %d", len(b.Allocations))
	}
	if allocation(b, "venue").Amount != 5_000 {
		t.Errorf("expected venue amount recomputed, got %d", allocation(b, "venue").Amount)
	}
	if allocation(b, "retired").Category != "" {
		t.Error("unknown categories should be dropped")
	}
}

// lateBudgetRepo misses the budget on the first read, as when a concurrent
// request creates it between GetBudget's read and its insert
type lateBudgetRepo struct {
	*memBudgetRepo
	existing *model.Budget
	reads    int
}

func (l *lateBudgetRepo) GetByOwner(ctx context.Context, ownerID string) (*model.Budget, error) {
	l.reads++
	if l.reads == 1 {
		return nil, nil
	}
	return l.memBudgetRepo.GetByOwner(ctx, ownerID)
}

func (l *lateBudgetRepo) Create(ctx context.Context, b *model.Budget) error {
	l.memBudgetRepo.budgets[b.OwnerID] = l.existing
	return fmt.Errorf("%w: budget_owner", database.ErrDuplicate)
}

func TestBudgetService_GetBudget_ConcurrentCreateIsNormalized(t *testing.T) {
	t.Parallel()

	repo := &lateBudgetRepo{
		memBudgetRepo: newMemBudgetRepo(),
		existing: &model.Budget{
			OwnerID:     "user:1",
			TotalBudget: 10_000,
			Allocations: []model.BudgetAllocation{{Category: "venue", Percent: 50}},
		},
	}
	svc := NewBudgetService(BudgetServiceConfig{BudgetRepo: repo})

	b, err := svc.GetBudget(context.Background(), "user:1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(b.Allocations) != len(model.BudgetCategories) {
		t.Errorf("expected every category, got %d", len(b.Allocations))
	}
	if allocation(b, "venue").Amount != 5_000 {
		t.Errorf("expected venue amount recomputed, got %d", allocation(b, "venue").Amount)
	}
}

func TestBudgetService_SetTotal_RecomputesAmounts(t *testing.T) {
	t.Parallel()

	svc := NewBudgetService(BudgetServiceConfig{BudgetRepo: newMemBudgetRepo()})
	cur := "gbp"

	b, err := svc.SetTotal(context.Background(), "user:1", model.SetBudgetTotalRequest{TotalBudget: 1_234_567, Currency: &cur})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Currency != "GBP" {
		t.Errorf("expected upper-cased currency, got %s", b.Currency)
	}
	// 1234567 * 3% = 37037.01 -> 37037
	if got := allocation(b, "stationery").Amount; got != 37_037 {
		t.Errorf("expected 37037, got %d", got)
	}
}

func TestBudgetService_SetTotal_RejectsNegative(t *testing.T) {
	t.Parallel()

	svc := NewBudgetService(BudgetServiceConfig{BudgetRepo: newMemBudgetRepo()})
	_, err := svc.SetTotal(context.Background(), "user:1", model.SetBudgetTotalRequest{TotalBudget: -1})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

// ============================================================================
// Allocations
// ============================================================================

func TestBudgetService_UpdateAllocations_MergesAndLimits(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := NewBudgetService(BudgetServiceConfig{BudgetRepo: newMemBudgetRepo()})
	if _, err := svc.SetTotal(ctx, "user:1", model.SetBudgetTotalRequest{TotalBudget: 100_000}); err != nil {
		t.Fatalf("SetTotal failed: %v", err)
	}

	// venue 30 -> 20 keeps the sum at 90
	b, err := svc.UpdateAllocations(ctx, "user:1", model.UpdateAllocationsRequest{
		Allocations: []model.AllocationInput{{Category: "venue", Percent: 20}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if allocation(b, "venue").Amount != 20_000 {
		t.Errorf("expected 20000, got %d", allocation(b, "venue").Amount)
	}
	if allocation(b, "catering").Percent != 25 {
		t.Error("unlisted categories should keep their percent")
	}

	// catering 25 -> 40 pushes the sum to 105
	_, err = svc.UpdateAllocations(ctx, "user:1", model.UpdateAllocationsRequest{
		Allocations: []model.AllocationInput{{Category: "catering", Percent: 40}},
	})
	if !errors.Is(err, ErrBudgetOverAllocated) {
		t.Errorf("expected ErrBudgetOverAllocated, got %v", err)
	}
}

func TestBudgetService_UpdateAllocations_UnknownCategory(t *testing.T) {
	t.Parallel()

	svc := NewBudgetService(BudgetServiceConfig{BudgetRepo: newMemBudgetRepo()})
	_, err := svc.UpdateAllocations(context.Background(), "user:1", model.UpdateAllocationsRequest{
		Allocations: []model.AllocationInput{{Category: "yacht", Percent: 5}},
	})

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Fields[0].Field != "allocations" {
		t.Errorf("unexpected field %s", verr.Fields[0].Field)
	}
}

func TestBudgetService_ResetAllocations(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := NewBudgetService(BudgetServiceConfig{BudgetRepo: newMemBudgetRepo()})
	_, _ = svc.SetTotal(ctx, "user:1", model.SetBudgetTotalRequest{TotalBudget: 50_000})
	_, _ = svc.UpdateAllocations(ctx, "user:1", model.UpdateAllocationsRequest{
		Allocations: []model.AllocationInput{{Category: "venue", Percent: 0}},
	})

	b, err := svc.ResetAllocations(ctx, "user:1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if allocation(b, "venue").Percent != 30 || allocation(b, "venue").Amount != 15_000 {
		t.Errorf("expected defaults restored, got %+v", allocation(b, "venue"))
	}
}

// ============================================================================
// Expenses / Summary
// ============================================================================

func TestBudgetService_Expenses_OwnerOnly(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := NewBudgetService(BudgetServiceConfig{BudgetRepo: newMemBudgetRepo()})
	e, err := svc.CreateExpense(ctx, "user:1", model.CreateExpenseRequest{
		Category: "flowers", Description: " Bouquets ", Amount: 45_000, DueDate: strPtr("2026-05-01"),
	})
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	if e.Description != "Bouquets" || e.DueDate == nil {
		t.Errorf("unexpected expense %+v", e)
	}

	if _, err := svc.UpdateExpense(ctx, "user:2", e.ID, model.UpdateExpenseRequest{}); !errors.Is(err, ErrNotOwner) {
		t.Errorf("expected ErrNotOwner, got %v", err)
	}
	if err := svc.DeleteExpense(ctx, "user:1", "budget_expense:missing"); !errors.Is(err, ErrExpenseNotFound) {
		t.Errorf("expected ErrExpenseNotFound, got %v", err)
	}

	paid := true
	updated, err := svc.UpdateExpense(ctx, "user:1", e.ID, model.UpdateExpenseRequest{Paid: &paid, DueDate: strPtr("")})
	if err != nil {
		t.Fatalf("UpdateExpense failed: %v", err)
	}
	if !updated.Paid || updated.DueDate != nil {
		t.Errorf("expected paid with cleared due date, got %+v", updated)
	}
}

func TestBudgetService_Summary(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := NewBudgetService(BudgetServiceConfig{BudgetRepo: newMemBudgetRepo()})
	_, _ = svc.SetTotal(ctx, "user:1", model.SetBudgetTotalRequest{TotalBudget: 100_000})
	_, _ = svc.CreateExpense(ctx, "user:1", model.CreateExpenseRequest{Category: "music", Description: "DJ", Amount: 9_000, Paid: true})
	_, _ = svc.CreateExpense(ctx, "user:1", model.CreateExpenseRequest{Category: "venue", Description: "Deposit", Amount: 10_000})

	s, err := svc.Summary(ctx, "user:1")
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}

	var music model.CategorySummary
	for _, c := range s.Categories {
		if c.Category == "music" {
			music = c
		}
	}
	if music.Allocated != 7_000 || music.Spent != 9_000 || music.Remaining != -2_000 || !music.Over {
		t.Errorf("unexpected music summary %+v", music)
	}
	if s.TotalSpent != 19_000 || s.TotalPaid != 9_000 || s.Remaining != 81_000 {
		t.Errorf("unexpected totals %+v", s)
	}
}
