package http

import (
	"net/http"
	"time"

	"github.com/Jairo0120/expenses-tracker-api/internal/core"
)

type cycleResponse struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	IsActive    bool      `json:"is_active"`
}

type cycleStatusResponse struct {
	CycleID                int64  `json:"cycle_id"`
	TotalRecurrentExpenses string `json:"total_recurrent_expenses"`
	TotalExpenses          string `json:"total_expenses"`
	TotalIncomes           string `json:"total_incomes"`
	TotalSavings           string `json:"total_savings"`
}

func toCycleResponse(c core.Cycle) cycleResponse {
	return cycleResponse{
		ID:          c.ID,
		Description: c.Description,
		StartDate:   c.StartDate,
		EndDate:     c.EndDate,
		IsActive:    c.IsActive,
	}
}

func (s *Server) handleListCycles(w http.ResponseWriter, r *http.Request) {
	cycles, err := s.repo.ListCycles(r.Context(), userFrom(r).ID)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]cycleResponse, 0, len(cycles))
	for _, c := range cycles {
		out = append(out, toCycleResponse(c))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleCycleStatus returns the aggregated totals for the requested cycle,
// defaulting to the active one.
func (s *Server) handleCycleStatus(w http.ResponseWriter, r *http.Request) {
	cycle, err := s.resolveCycle(r)
	if err != nil {
		writeError(w, err)
		return
	}

	status, err := s.repo.GetCycleStatus(r.Context(), cycle.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, cycleStatusResponse{
		CycleID:                cycle.ID,
		TotalRecurrentExpenses: status.TotalRecurrentExpenses.String(),
		TotalExpenses:          status.TotalExpenses.String(),
		TotalIncomes:           status.TotalIncomes.String(),
		TotalSavings:           status.TotalSavings.String(),
	})
}
