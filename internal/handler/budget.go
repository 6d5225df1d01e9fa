package handler

import (
	"net/http"

	"github.com/forgo/aisle/api/internal/model"
	"github.com/forgo/aisle/api/internal/service"
)

// BudgetHandler serves the budget, its allocations and expenses
type BudgetHandler struct {
	budgetService *service.BudgetService
}

// NewBudgetHandler creates a new budget handler
func NewBudgetHandler(budgetService *service.BudgetService) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService}
}

var budgetLinks = map[string]string{
	"self":       "/v1/budget",
	"summary":    "/v1/budget/summary",
	"expenses":   "/v1/budget/expenses",
	"categories": "/v1/budget/categories",
}

// Categories handles GET /v1/budget/categories
func (h *BudgetHandler) Categories(w http.ResponseWriter, r *http.Request) {
	WriteCollection(w, http.StatusOK, model.BudgetCategories, nil, nil)
}

// Get handles GET /v1/budget
func (h *BudgetHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	budget, err := h.budgetService.GetBudget(r.Context(), userID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, budget, budgetLinks)
}

// SetTotal handles PUT /v1/budget/total
func (h *BudgetHandler) SetTotal(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.SetBudgetTotalRequest
	if !decodeBody(w, r, &req) {
		return
	}

	budget, err := h.budgetService.SetTotal(r.Context(), userID, req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, budget, budgetLinks)
}

// UpdateAllocations handles PATCH /v1/budget/allocations
func (h *BudgetHandler) UpdateAllocations(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.UpdateAllocationsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	budget, err := h.budgetService.UpdateAllocations(r.Context(), userID, req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, budget, budgetLinks)
}

// ResetAllocations handles POST /v1/budget/allocations/reset
func (h *BudgetHandler) ResetAllocations(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	budget, err := h.budgetService.ResetAllocations(r.Context(), userID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, budget, budgetLinks)
}

// Summary handles GET /v1/budget/summary
func (h *BudgetHandler) Summary(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	summary, err := h.budgetService.Summary(r.Context(), userID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, summary, budgetLinks)
}

// ===== Expenses =====

// CreateExpense handles POST /v1/budget/expenses
func (h *BudgetHandler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.CreateExpenseRequest
	if !decodeBody(w, r, &req) {
		return
	}

	expense, err := h.budgetService.CreateExpense(r.Context(), userID, req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusCreated, expense, map[string]string{"self": "/v1/budget/expenses/" + expense.ID})
}

// ListExpenses handles GET /v1/budget/expenses?category=
func (h *BudgetHandler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	expenses, err := h.budgetService.ListExpenses(r.Context(), userID, r.URL.Query().Get("category"))
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteCollection(w, http.StatusOK, expenses, nil, nil)
}

// UpdateExpense handles PATCH /v1/budget/expenses/{expenseId}
func (h *BudgetHandler) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.UpdateExpenseRequest
	if !decodeBody(w, r, &req) {
		return
	}

	expense, err := h.budgetService.UpdateExpense(r.Context(), userID, recordID(r, "expenseId", "budget_expense"), req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, expense, nil)
}

// DeleteExpense handles DELETE /v1/budget/expenses/{expenseId}
func (h *BudgetHandler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.budgetService.DeleteExpense(r.Context(), userID, recordID(r, "expenseId", "budget_expense")); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}
