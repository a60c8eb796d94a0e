package http

import (
	"net/http"
	"time"

	"github.com/Jairo0120/expenses-tracker-api/internal/core"
)

type savingRequest struct {
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Date        string `json:"date,omitempty"`
	IsRecurrent bool   `json:"is_recurrent,omitempty"`
}

type savingOutcomeRequest struct {
	SavingType  string `json:"saving_type"`
	Description string `json:"description,omitempty"`
	Amount      string `json:"amount"`
	Date        string `json:"date,omitempty"`
}

type savingResponse struct {
	ID                  int64     `json:"id"`
	CycleID             int64     `json:"cycle_id"`
	SavingTypeID        int64     `json:"saving_type_id"`
	Amount              string    `json:"amount"`
	Date                time.Time `json:"date"`
	IsRecurrent         bool      `json:"is_recurrent"`
	MovementType        string    `json:"movement_type"`
	MovementDescription string    `json:"movement_description,omitempty"`
}

func toSavingResponse(s core.Saving) savingResponse {
	return savingResponse{
		ID:                  s.ID,
		CycleID:             s.CycleID,
		SavingTypeID:        s.SavingTypeID,
		Amount:              s.Amount.String(),
		Date:                s.Date,
		IsRecurrent:         s.IsRecurrent,
		MovementType:        string(s.MovementType),
		MovementDescription: s.MovementDescription,
	}
}

// handleCreateSaving records money moved into a saving pot. The pot is
// created on first use; is_recurrent additionally creates a catalog template.
func (s *Server) handleCreateSaving(w http.ResponseWriter, r *http.Request) {
	var req savingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	cycleID, ok := queryCycleID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid cycle_id"})
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

	created, err := s.savings.CreateSaving(r.Context(), userFrom(r).ID, cycleID,
		sanitizeInput(req.Description), amount, date, req.IsRecurrent)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSavingResponse(created))
}

// handleCreateSavingOutcome withdraws from an existing saving pot.
func (s *Server) handleCreateSavingOutcome(w http.ResponseWriter, r *http.Request) {
	var req savingOutcomeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	cycleID, ok := queryCycleID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid cycle_id"})
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

	created, err := s.savings.CreateSavingOutcome(r.Context(), userFrom(r).ID, cycleID,
		sanitizeInput(req.SavingType), sanitizeInput(req.Description), amount, date)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSavingResponse(created))
}

func (s *Server) handleListSavings(w http.ResponseWriter, r *http.Request) {
	cycle, err := s.resolveCycle(r)
	if err != nil {
		writeError(w, err)
		return
	}

	limit, offset := pagination(r)
	savings, err := s.repo.ListSavings(r.Context(), cycle.ID, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]savingResponse, 0, len(savings))
	for _, sv := range savings {
		out = append(out, toSavingResponse(sv))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdateSaving(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return
	}

	var req savingRequest
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

	saving, err := s.repo.GetSaving(r.Context(), userFrom(r).ID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	saving.Amount = amount
	saving.Date = date
	if err := s.repo.UpdateSaving(r.Context(), userFrom(r).ID, saving); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSavingResponse(saving))
}

func (s *Server) handleDeleteSaving(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return
	}
	if err := s.repo.DeleteSaving(r.Context(), userFrom(r).ID, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
