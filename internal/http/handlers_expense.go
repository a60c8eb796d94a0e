package http

import (
	"net/http"
	"time"

	"github.com/Jairo0120/expenses-tracker-api/internal/core"
)

type expenseRequest struct {
	Description string `json:"description"`
	Category    string `json:"category,omitempty"`
	Amount      string `json:"amount"`
	Date        string `json:"date,omitempty"`
	BudgetID    int64  `json:"budget_id,omitempty"`
}

type expenseResponse struct {
	ID          int64     `json:"id"`
	CycleID     int64     `json:"cycle_id"`
	BudgetID    int64     `json:"budget_id,omitempty"`
	Description string    `json:"description"`
	Category    string    `json:"category,omitempty"`
	Amount      string    `json:"amount"`
	Date        time.Time `json:"date"`
	IsRecurrent bool      `json:"is_recurrent"`
	Source      string    `json:"source"`
}

func toExpenseResponse(e core.Expense) expenseResponse {
	return expenseResponse{
		ID:          e.ID,
		CycleID:     e.CycleID,
		BudgetID:    e.BudgetID,
		Description: e.Description,
		Category:    e.Category,
		Amount:      e.Amount.String(),
		Date:        e.Date,
		IsRecurrent: e.IsRecurrent,
		Source:      string(e.Source),
	}
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	cycle, err := s.resolveCycle(r)
	if err != nil {
		writeError(w, err)
		return
	}

	amount, err := core.ParseMoney(req.Amount)
	if err != nil {
		writeValidationError(w, err)
		return
	}
	date, ok := parseDate(req.Date)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid date"})
		return
	}

	// A budget assignment must point into the same cycle
	if req.BudgetID != 0 {
		if _, err := s.repo.GetCycleBudget(r.Context(), cycle.ID, req.BudgetID); err != nil {
			writeError(w, err)
			return
		}
	}

	expense := core.Expense{
		CycleID:     cycle.ID,
		BudgetID:    req.BudgetID,
		Description: sanitizeInput(req.Description),
		Category:    sanitizeInput(req.Category),
		Amount:      amount,
		Date:        date,
		Source:      core.SourceManual,
	}
	if err := expense.Validate(); err != nil {
		writeValidationError(w, err)
		return
	}

	created, err := s.repo.CreateExpense(r.Context(), expense)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toExpenseResponse(created))
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	cycle, err := s.resolveCycle(r)
	if err != nil {
		writeError(w, err)
		return
	}

	limit, offset := pagination(r)
	expenses, err := s.repo.ListExpenses(r.Context(), cycle.ID, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]expenseResponse, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, toExpenseResponse(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return
	}

	var req expenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	amount, err := core.ParseMoney(req.Amount)
	if err != nil {
		writeValidationError(w, err)
		return
	}
	date, ok := parseDate(req.Date)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid date"})
		return
	}

	expense, err := s.repo.GetExpense(r.Context(), userFrom(r).ID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	// Same ownership rule as on create: a budget assignment must point into
	// the expense's own cycle.
	if req.BudgetID != 0 {
		if _, err := s.repo.GetCycleBudget(r.Context(), expense.CycleID, req.BudgetID); err != nil {
			writeError(w, err)
			return
		}
	}

	expense.BudgetID = req.BudgetID
	expense.Description = sanitizeInput(req.Description)
	expense.Category = sanitizeInput(req.Category)
	expense.Amount = amount
	expense.Date = date
	if err := expense.Validate(); err != nil {
		writeValidationError(w, err)
		return
	}

	if err := s.repo.UpdateExpense(r.Context(), userFrom(r).ID, expense); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseResponse(expense))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return
	}
	if err := s.repo.DeleteExpense(r.Context(), userFrom(r).ID, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
