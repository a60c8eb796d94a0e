package http

import (
	"net/http"
	"time"

	"github.com/Jairo0120/expenses-tracker-api/internal/core"
)

type incomeRequest struct {
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Date        string `json:"date,omitempty"`
}

type incomeResponse struct {
	ID          int64     `json:"id"`
	CycleID     int64     `json:"cycle_id"`
	Description string    `json:"description"`
	Amount      string    `json:"amount"`
	Date        time.Time `json:"date"`
	IsRecurrent bool      `json:"is_recurrent"`
}

func toIncomeResponse(in core.Income) incomeResponse {
	return incomeResponse{
		ID:          in.ID,
		CycleID:     in.CycleID,
		Description: in.Description,
		Amount:      in.Amount.String(),
		Date:        in.Date,
		IsRecurrent: in.IsRecurrent,
	}
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	var req incomeRequest
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

	income := core.Income{
		CycleID:     cycle.ID,
		Description: sanitizeInput(req.Description),
		Amount:      amount,
		Date:        date,
	}
	if err := income.Validate(); err != nil {
		writeValidationError(w, err)
		return
	}

	created, err := s.repo.CreateIncome(r.Context(), income)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toIncomeResponse(created))
}

func (s *Server) handleListIncomes(w http.ResponseWriter, r *http.Request) {
	cycle, err := s.resolveCycle(r)
	if err != nil {
		writeError(w, err)
		return
	}

	limit, offset := pagination(r)
	incomes, err := s.repo.ListIncomes(r.Context(), cycle.ID, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]incomeResponse, 0, len(incomes))
	for _, in := range incomes {
		out = append(out, toIncomeResponse(in))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdateIncome(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return
	}

	var req incomeRequest
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

	income := core.Income{
		ID:          id,
		Description: sanitizeInput(req.Description),
		Amount:      amount,
		Date:        date,
	}
	if err := income.Validate(); err != nil {
		writeValidationError(w, err)
		return
	}

	if err := s.repo.UpdateIncome(r.Context(), userFrom(r).ID, income); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toIncomeResponse(income))
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return
	}
	if err := s.repo.DeleteIncome(r.Context(), userFrom(r).ID, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
