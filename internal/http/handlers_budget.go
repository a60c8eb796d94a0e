package http

import (
	"net/http"

	"github.com/Jairo0120/expenses-tracker-api/internal/core"
)

type budgetRequest struct {
	Description string `json:"description"`
	Amount      string `json:"amount"`
}

type budgetResponse struct {
	ID          int64  `json:"id"`
	CycleID     int64  `json:"cycle_id"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	IsRecurrent bool   `json:"is_recurrent"`
}

func toBudgetResponse(b core.Budget) budgetResponse {
	return budgetResponse{
		ID:          b.ID,
		CycleID:     b.CycleID,
		Description: b.Description,
		Amount:      b.Amount.String(),
		IsRecurrent: b.IsRecurrent,
	}
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
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

	budget := core.Budget{
		CycleID:     cycle.ID,
		Description: sanitizeInput(req.Description),
		Amount:      amount,
	}
	if err := budget.Validate(); err != nil {
		writeValidationError(w, err)
		return
	}

	created, err := s.repo.CreateBudget(r.Context(), budget)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBudgetResponse(created))
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	cycle, err := s.resolveCycle(r)
	if err != nil {
		writeError(w, err)
		return
	}

	limit, offset := pagination(r)
	budgets, err := s.repo.ListBudgets(r.Context(), cycle.ID, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]budgetResponse, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, toBudgetResponse(b))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return
	}

	var req budgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	amount, err := core.ParseMoney(req.Amount)
	if err != nil {
		writeValidationError(w, err)
		return
	}

	budget := core.Budget{
		ID:          id,
		Description: sanitizeInput(req.Description),
		Amount:      amount,
	}
	if err := budget.Validate(); err != nil {
		writeValidationError(w, err)
		return
	}

	if err := s.repo.UpdateBudget(r.Context(), userFrom(r).ID, budget); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBudgetResponse(budget))
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return
	}
	if err := s.repo.DeleteBudget(r.Context(), userFrom(r).ID, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
