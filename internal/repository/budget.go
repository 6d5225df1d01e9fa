package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/forgo/aisle/api/internal/database"
	"github.com/forgo/aisle/api/internal/model"
)

// BudgetRepository handles budget_data and budget_expense
type BudgetRepository struct {
	db database.Database
}

// NewBudgetRepository creates a new budget repository
func NewBudgetRepository(db database.Database) *BudgetRepository {
	return &BudgetRepository{db: db}
}

// Create stores a budget; one per owner
func (r *BudgetRepository) Create(ctx context.Context, budget *model.Budget) error {
	query := `
		CREATE budget_data CONTENT {
			owner: type::record($owner),
			total_budget: $total_budget,
			currency: $currency,
			allocations: $allocations,
			created_on: time::now(),
			updated_on: time::now()
		}
	`
	vars := map[string]interface{}{
		"owner":        budget.OwnerID,
		"total_budget": budget.TotalBudget,
		"currency":     budget.Currency,
		"allocations":  allocationRows(budget.Allocations),
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: budget already exists", database.ErrDuplicate)
		}
		return err
	}

	created, err := extractCreatedRecord(result)
	if err != nil {
		return err
	}

	budget.ID = created.ID
	budget.CreatedOn = created.CreatedOn
	budget.UpdatedOn = created.UpdatedOn
	return nil
}

// GetByOwner retrieves the owner's budget
func (r *BudgetRepository) GetByOwner(ctx context.Context, ownerID string) (*model.Budget, error) {
	query := `SELECT * FROM budget_data WHERE owner = type::record($owner) LIMIT 1`
	result, err := r.db.QueryOne(ctx, query, map[string]interface{}{"owner": ownerID})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	budget, _, err := decodeRecord[model.Budget](result, ownerRenames)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return budget, nil
}

// Update writes the total, currency and allocations
func (r *BudgetRepository) Update(ctx context.Context, budget *model.Budget) error {
	query := `
		UPDATE type::record($id) SET
			total_budget = $total_budget,
			currency = $currency,
			allocations = $allocations,
			updated_on = time::now()
	`
	vars := map[string]interface{}{
		"id":           budget.ID,
		"total_budget": budget.TotalBudget,
		"currency":     budget.Currency,
		"allocations":  allocationRows(budget.Allocations),
	}
	return r.db.Execute(ctx, query, vars)
}

func allocationRows(allocs []model.BudgetAllocation) []map[string]interface{} {
	rows := make([]map[string]interface{}, 0, len(allocs))
	for _, a := range allocs {
		rows = append(rows, map[string]interface{}{
			"category": a.Category,
			"percent":  a.Percent,
			"amount":   a.Amount,
		})
	}
	return rows
}

// ===== Expenses =====

// CreateExpense records an expense
func (r *BudgetRepository) CreateExpense(ctx context.Context, e *model.Expense) error {
	query := `
		CREATE budget_expense CONTENT {
			owner: type::record($owner),
			category: $category,
			description: $description,
			amount: $amount,
			paid: $paid,
			vendor_ref: $vendor_ref,
			due_date: IF $due_date IS NOT NULL THEN <datetime>$due_date ELSE NONE END,
			created_on: time::now(),
			updated_on: time::now()
		}
	`
	result, err := r.db.Query(ctx, query, expenseVars(e))
	if err != nil {
		return err
	}

	created, err := extractCreatedRecord(result)
	if err != nil {
		return err
	}

	e.ID = created.ID
	e.CreatedOn = created.CreatedOn
	e.UpdatedOn = created.UpdatedOn
	return nil
}

// GetExpense retrieves an expense by ID
func (r *BudgetRepository) GetExpense(ctx context.Context, id string) (*model.Expense, error) {
	if !inTable(id, "budget_expense") {
		return nil, nil
	}

	result, err := r.db.QueryOne(ctx, `SELECT * FROM type::record($id)`, map[string]interface{}{"id": id})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	e, _, err := decodeRecord[model.Expense](result, ownerRenames)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return e, nil
}

// ListExpenses returns the owner's expenses, optionally for one category
func (r *BudgetRepository) ListExpenses(ctx context.Context, ownerID, category string) ([]*model.Expense, error) {
	query := `SELECT * FROM budget_expense WHERE owner = type::record($owner)`
	vars := map[string]interface{}{"owner": ownerID}
	if category != "" {
		query += ` AND category = $category`
		vars["category"] = category
	}
	query += ` ORDER BY created_on ASC`

	results, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}
	return decodeRecords[model.Expense](results, ownerRenames), nil
}

// UpdateExpense writes every editable expense field
func (r *BudgetRepository) UpdateExpense(ctx context.Context, e *model.Expense) error {
	query := `
		UPDATE type::record($id) SET
			category = $category,
			description = $description,
			amount = $amount,
			paid = $paid,
			vendor_ref = IF $vendor_ref IS NOT NULL THEN $vendor_ref ELSE NONE END,
			due_date = IF $due_date IS NOT NULL THEN <datetime>$due_date ELSE NONE END,
			updated_on = time::now()
	`
	vars := expenseVars(e)
	vars["id"] = e.ID
	return r.db.Execute(ctx, query, vars)
}

// DeleteExpense removes an expense
func (r *BudgetRepository) DeleteExpense(ctx context.Context, id string) error {
	return r.db.Execute(ctx, `DELETE type::record($id)`, map[string]interface{}{"id": id})
}

func expenseVars(e *model.Expense) map[string]interface{} {
	return map[string]interface{}{
		"owner":       e.OwnerID,
		"category":    e.Category,
		"description": e.Description,
		"amount":      e.Amount,
		"paid":        e.Paid,
		"vendor_ref":  optional(e.VendorRef),
		"due_date":    optTime(e.DueDate),
	}
}
