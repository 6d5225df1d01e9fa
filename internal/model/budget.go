package model

import (
	"math"
	"time"
)

// BudgetCategory is a row of the static allocation table
type BudgetCategory struct {
	Key            string  `json:"key"`
	Label          string  `json:"label"`
	DefaultPercent float64 `json:"default_percent"`
}

// BudgetCategories is the fixed category table; default percents sum to 100
var BudgetCategories = []BudgetCategory{
	{Key: "venue", Label: "Venue", DefaultPercent: 30},
	{Key: "catering", Label: "Catering", DefaultPercent: 25},
	{Key: "photography", Label: "Photography & Video", DefaultPercent: 10},
	{Key: "attire", Label: "Attire & Beauty", DefaultPercent: 8},
	{Key: "flowers", Label: "Flowers & Decor", DefaultPercent: 8},
	{Key: "music", Label: "Music & Entertainment", DefaultPercent: 7},
	{Key: "stationery", Label: "Stationery", DefaultPercent: 3},
	{Key: "favors", Label: "Favors & Gifts", DefaultPercent: 2},
	{Key: "transportation", Label: "Transportation", DefaultPercent: 2},
	{Key: "other", Label: "Other", DefaultPercent: 5},
}

// IsValidBudgetCategory reports whether key is in the category table
func IsValidBudgetCategory(key string) bool {
	for _, c := range BudgetCategories {
		if c.Key == key {
			return true
		}
	}
	return false
}

// MaxBudgetCents caps totals and expenses at one billion dollars
const MaxBudgetCents int64 = 100_000_000_000

// BudgetAllocation is one category's share of the total
type BudgetAllocation struct {
	Category string  `json:"category"`
	Percent  float64 `json:"percent"`
	Amount   int64   `json:"amount"` // cents, derived from percent
}

// Budget is a couple's allocation plan
type Budget struct {
	ID          string             `json:"id"`
	OwnerID     string             `json:"owner_id"`
	TotalBudget int64              `json:"total_budget"` // cents
	Currency    string             `json:"currency"`
	Allocations []BudgetAllocation `json:"allocations"`
	CreatedOn   time.Time          `json:"created_on"`
	UpdatedOn   time.Time          `json:"updated_on"`
}

// AllocatedPercent sums the category percents
func (b *Budget) AllocatedPercent() float64 {
	var sum float64
	for _, a := range b.Allocations {
		sum += a.Percent
	}
	return sum
}

// Recompute derives every allocation amount from the total
func (b *Budget) Recompute() {
	for i := range b.Allocations {
		b.Allocations[i].Amount = AmountForPercent(b.TotalBudget, b.Allocations[i].Percent)
	}
}

// AmountForPercent returns the share of total in cents, rounded half away from zero
func AmountForPercent(total int64, percent float64) int64 {
	return int64(math.Round(float64(total) * percent / 100))
}

// DefaultAllocations returns the category table applied to total
func DefaultAllocations(total int64) []BudgetAllocation {
	out := make([]BudgetAllocation, 0, len(BudgetCategories))
	for _, c := range BudgetCategories {
		out = append(out, BudgetAllocation{
			Category: c.Key,
			Percent:  c.DefaultPercent,
			Amount:   AmountForPercent(total, c.DefaultPercent),
		})
	}
	return out
}

// SetBudgetTotalRequest changes the overall budget
type SetBudgetTotalRequest struct {
	TotalBudget int64   `json:"total_budget"`
	Currency    *string `json:"currency,omitempty"`
}

// Validate checks the total
func (r *SetBudgetTotalRequest) Validate() []FieldError {
	var errors []FieldError
	if r.TotalBudget < 0 || r.TotalBudget > MaxBudgetCents {
		errors = append(errors, FieldError{Field: "total_budget", Message: "total_budget must be between 0 and 100000000000 cents"})
	}
	if r.Currency != nil && !IsValidCurrency(*r.Currency) {
		errors = append(errors, FieldError{Field: "currency", Message: "currency must be a 3-letter ISO code"})
	}
	return errors
}

// AllocationInput sets one category percent
type AllocationInput struct {
	Category string  `json:"category"`
	Percent  float64 `json:"percent"`
}

// UpdateAllocationsRequest replaces percents for the listed categories
type UpdateAllocationsRequest struct {
	Allocations []AllocationInput `json:"allocations"`
}

// Validate checks each percent and category; the sum is checked against
// the merged budget by the service.
func (r *UpdateAllocationsRequest) Validate() []FieldError {
	var errors []FieldError

	if len(r.Allocations) == 0 {
		return []FieldError{{Field: "allocations", Message: "at least one allocation is required"}}
	}
	seen := make(map[string]bool, len(r.Allocations))
	for _, a := range r.Allocations {
		if !IsValidBudgetCategory(a.Category) {
			errors = append(errors, FieldError{Field: "allocations", Message: "unknown category " + a.Category})
			continue
		}
		if seen[a.Category] {
			errors = append(errors, FieldError{Field: "allocations", Message: "duplicate category " + a.Category})
		}
		seen[a.Category] = true
		if a.Percent < 0 || a.Percent > 100 || math.IsNaN(a.Percent) {
			errors = append(errors, FieldError{Field: "allocations", Message: a.Category + " percent must be between 0 and 100"})
		}
	}

	return errors
}

// Expense is money committed against a category
type Expense struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"owner_id"`
	Category    string     `json:"category"`
	Description string     `json:"description"`
	Amount      int64      `json:"amount"` // cents
	Paid        bool       `json:"paid"`
	VendorRef   *string    `json:"vendor_ref,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedOn   time.Time  `json:"created_on"`
	UpdatedOn   time.Time  `json:"updated_on"`
}

// CreateExpenseRequest records an expense
type CreateExpenseRequest struct {
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Amount      int64   `json:"amount"`
	Paid        bool    `json:"paid"`
	VendorRef   *string `json:"vendor_ref,omitempty"`
	DueDate     *string `json:"due_date,omitempty"`
}

// Validate checks the expense
func (r *CreateExpenseRequest) Validate() []FieldError {
	var errors []FieldError

	if !IsValidBudgetCategory(r.Category) {
		errors = append(errors, FieldError{Field: "category", Message: "category is not recognised"})
	}
	if blank(r.Description) {
		errors = append(errors, FieldError{Field: "description", Message: "description is required"})
	} else if tooLong(r.Description, 200) {
		errors = append(errors, FieldError{Field: "description", Message: "description must be 200 characters or less"})
	}
	if r.Amount < 0 || r.Amount > MaxBudgetCents {
		errors = append(errors, FieldError{Field: "amount", Message: "amount must be between 0 and 100000000000 cents"})
	}
	if r.DueDate != nil && *r.DueDate != "" {
		if _, err := ParseDate(*r.DueDate); err != nil {
			errors = append(errors, FieldError{Field: "due_date", Message: "due_date must be YYYY-MM-DD"})
		}
	}

	return errors
}

// UpdateExpenseRequest applies a partial update
type UpdateExpenseRequest struct {
	Category    *string `json:"category,omitempty"`
	Description *string `json:"description,omitempty"`
	Amount      *int64  `json:"amount,omitempty"`
	Paid        *bool   `json:"paid,omitempty"`
	VendorRef   *string `json:"vendor_ref,omitempty"`
	DueDate     *string `json:"due_date,omitempty"`
}

// Validate checks the update
func (r *UpdateExpenseRequest) Validate() []FieldError {
	var errors []FieldError

	if r.Category != nil && !IsValidBudgetCategory(*r.Category) {
		errors = append(errors, FieldError{Field: "category", Message: "category is not recognised"})
	}
	if r.Description != nil && blank(*r.Description) {
		errors = append(errors, FieldError{Field: "description", Message: "description cannot be empty"})
	}
	if r.Amount != nil && (*r.Amount < 0 || *r.Amount > MaxBudgetCents) {
		errors = append(errors, FieldError{Field: "amount", Message: "amount must be between 0 and 100000000000 cents"})
	}
	if r.DueDate != nil && *r.DueDate != "" {
		if _, err := ParseDate(*r.DueDate); err != nil {
			errors = append(errors, FieldError{Field: "due_date", Message: "due_date must be YYYY-MM-DD"})
		}
	}

	return errors
}

// CategorySummary is allocated vs spent for a category
type CategorySummary struct {
	Category  string  `json:"category"`
	Percent   float64 `json:"percent"`
	Allocated int64   `json:"allocated"`
	Spent     int64   `json:"spent"`
	Paid      int64   `json:"paid"`
	Remaining int64   `json:"remaining"`
	Over      bool    `json:"over_budget"`
}

// BudgetSummary is the overview of a budget and its expenses
type BudgetSummary struct {
	TotalBudget      int64             `json:"total_budget"`
	Currency         string            `json:"currency"`
	AllocatedPercent float64           `json:"allocated_percent"`
	TotalAllocated   int64             `json:"total_allocated"`
	TotalSpent       int64             `json:"total_spent"`
	TotalPaid        int64             `json:"total_paid"`
	Remaining        int64             `json:"remaining"`
	Categories       []CategorySummary `json:"categories"`
}
