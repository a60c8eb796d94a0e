package http

import (
	"net/http"

	"github.com/Jairo0120/expenses-tracker-api/internal/core"
)

// The recurrence catalog holds the per-user templates the materializer
// instantiates into every new cycle. Entries are user-scoped, not
// cycle-scoped.

type recurrentEntryRequest struct {
	Description string `json:"description"`
	Category    string `json:"category,omitempty"`
	SavingType  string `json:"saving_type,omitempty"`
	Amount      string `json:"amount"`
	Enabled     *bool  `json:"enabled,omitempty"`
}

type recurrentEntryResponse struct {
	ID           int64  `json:"id"`
	Description  string `json:"description,omitempty"`
	Category     string `json:"category,omitempty"`
	SavingTypeID int64  `json:"saving_type_id,omitempty"`
	Amount       string `json:"amount"`
	Enabled      bool   `json:"enabled"`
}

func (s *Server) registerRecurrentRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /recurrent-incomes", s.wrapAuth(s.handleCreateRecurrentIncome))
	mux.HandleFunc("GET /recurrent-incomes", s.wrapAuth(s.handleListRecurrentIncomes))
	mux.HandleFunc("PUT /recurrent-incomes/{id}", s.wrapAuth(s.handleUpdateRecurrentIncome))
	mux.HandleFunc("DELETE /recurrent-incomes/{id}", s.wrapAuth(s.handleDeleteRecurrentIncome))

	mux.HandleFunc("POST /recurrent-expenses", s.wrapAuth(s.handleCreateRecurrentExpense))
	mux.HandleFunc("GET /recurrent-expenses", s.wrapAuth(s.handleListRecurrentExpenses))
	mux.HandleFunc("PUT /recurrent-expenses/{id}", s.wrapAuth(s.handleUpdateRecurrentExpense))
	mux.HandleFunc("DELETE /recurrent-expenses/{id}", s.wrapAuth(s.handleDeleteRecurrentExpense))

	mux.HandleFunc("POST /recurrent-savings", s.wrapAuth(s.handleCreateRecurrentSaving))
	mux.HandleFunc("GET /recurrent-savings", s.wrapAuth(s.handleListRecurrentSavings))
	mux.HandleFunc("PUT /recurrent-savings/{id}", s.wrapAuth(s.handleUpdateRecurrentSaving))
	mux.HandleFunc("DELETE /recurrent-savings/{id}", s.wrapAuth(s.handleDeleteRecurrentSaving))

	mux.HandleFunc("POST /recurrent-budgets", s.wrapAuth(s.handleCreateRecurrentBudget))
	mux.HandleFunc("GET /recurrent-budgets", s.wrapAuth(s.handleListRecurrentBudgets))
	mux.HandleFunc("PUT /recurrent-budgets/{id}", s.wrapAuth(s.handleUpdateRecurrentBudget))
	mux.HandleFunc("DELETE /recurrent-budgets/{id}", s.wrapAuth(s.handleDeleteRecurrentBudget))
}

// parseRecurrentEntry validates the shared body fields.
func parseRecurrentEntry(w http.ResponseWriter, r *http.Request) (recurrentEntryRequest, core.Money, bool) {
	var req recurrentEntryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return req, core.Money{}, false
	}
	amount, err := core.ParseMoney(req.Amount)
	if err != nil {
		writeValidationError(w, err)
		return req, core.Money{}, false
	}
	return req, amount, true
}

func (req recurrentEntryRequest) enabled() bool {
	if req.Enabled == nil {
		return true
	}
	return *req.Enabled
}

// --- recurrent incomes ---

func (s *Server) handleCreateRecurrentIncome(w http.ResponseWriter, r *http.Request) {
	req, amount, ok := parseRecurrentEntry(w, r)
	if !ok {
		return
	}
	ri := core.RecurrentIncome{
		UserID:      userFrom(r).ID,
		Description: sanitizeInput(req.Description),
		Amount:      amount,
		Enabled:     req.enabled(),
	}
	created, err := s.repo.CreateRecurrentIncome(r.Context(), ri)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, recurrentEntryResponse{
		ID: created.ID, Description: created.Description,
		Amount: created.Amount.String(), Enabled: created.Enabled,
	})
}

func (s *Server) handleListRecurrentIncomes(w http.ResponseWriter, r *http.Request) {
	entries, err := s.repo.ListRecurrentIncomes(r.Context(), userFrom(r).ID)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]recurrentEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, recurrentEntryResponse{
			ID: e.ID, Description: e.Description,
			Amount: e.Amount.String(), Enabled: e.Enabled,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdateRecurrentIncome(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return
	}
	req, amount, ok := parseRecurrentEntry(w, r)
	if !ok {
		return
	}
	ri := core.RecurrentIncome{
		ID:          id,
		Description: sanitizeInput(req.Description),
		Amount:      amount,
		Enabled:     req.enabled(),
	}
	if err := s.repo.UpdateRecurrentIncome(r.Context(), userFrom(r).ID, ri); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recurrentEntryResponse{
		ID: ri.ID, Description: ri.Description,
		Amount: ri.Amount.String(), Enabled: ri.Enabled,
	})
}

func (s *Server) handleDeleteRecurrentIncome(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return
	}
	if err := s.repo.DeleteRecurrentIncome(r.Context(), userFrom(r).ID, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- recurrent expenses ---

func (s *Server) handleCreateRecurrentExpense(w http.ResponseWriter, r *http.Request) {
	req, amount, ok := parseRecurrentEntry(w, r)
	if !ok {
		return
	}
	re := core.RecurrentExpense{
		UserID:      userFrom(r).ID,
		Description: sanitizeInput(req.Description),
		Category:    sanitizeInput(req.Category),
		Amount:      amount,
		Enabled:     req.enabled(),
	}
	created, err := s.repo.CreateRecurrentExpense(r.Context(), re)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, recurrentEntryResponse{
		ID: created.ID, Description: created.Description, Category: created.Category,
		Amount: created.Amount.String(), Enabled: created.Enabled,
	})
}

func (s *Server) handleListRecurrentExpenses(w http.ResponseWriter, r *http.Request) {
	entries, err := s.repo.ListRecurrentExpenses(r.Context(), userFrom(r).ID)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]recurrentEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, recurrentEntryResponse{
			ID: e.ID, Description: e.Description, Category: e.Category,
			Amount: e.Amount.String(), Enabled: e.Enabled,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdateRecurrentExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return
	}
	req, amount, ok := parseRecurrentEntry(w, r)
	if !ok {
		return
	}
	re := core.RecurrentExpense{
		ID:          id,
		Description: sanitizeInput(req.Description),
		Category:    sanitizeInput(req.Category),
		Amount:      amount,
		Enabled:     req.enabled(),
	}
	if err := s.repo.UpdateRecurrentExpense(r.Context(), userFrom(r).ID, re); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recurrentEntryResponse{
		ID: re.ID, Description: re.Description, Category: re.Category,
		Amount: re.Amount.String(), Enabled: re.Enabled,
	})
}

func (s *Server) handleDeleteRecurrentExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return
	}
	if err := s.repo.DeleteRecurrentExpense(r.Context(), userFrom(r).ID, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- recurrent savings ---

func (s *Server) handleCreateRecurrentSaving(w http.ResponseWriter, r *http.Request) {
	req, amount, ok := parseRecurrentEntry(w, r)
	if !ok {
		return
	}

	userID := userFrom(r).ID
	st, err := s.repo.LookupOrCreateSavingType(r.Context(), userID, sanitizeInput(req.SavingType))
	if err != nil {
		writeError(w, err)
		return
	}

	rs := core.RecurrentSaving{
		UserID:       userID,
		SavingTypeID: st.ID,
		Amount:       amount,
		Enabled:      req.enabled(),
	}
	created, err := s.repo.CreateRecurrentSaving(r.Context(), rs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, recurrentEntryResponse{
		ID: created.ID, SavingTypeID: created.SavingTypeID,
		Amount: created.Amount.String(), Enabled: created.Enabled,
	})
}

func (s *Server) handleListRecurrentSavings(w http.ResponseWriter, r *http.Request) {
	entries, err := s.repo.ListRecurrentSavings(r.Context(), userFrom(r).ID)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]recurrentEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, recurrentEntryResponse{
			ID: e.ID, SavingTypeID: e.SavingTypeID,
			Amount: e.Amount.String(), Enabled: e.Enabled,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdateRecurrentSaving(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return
	}
	req, amount, ok := parseRecurrentEntry(w, r)
	if !ok {
		return
	}
	rs := core.RecurrentSaving{
		ID:      id,
		Amount:  amount,
		Enabled: req.enabled(),
	}
	if err := s.repo.UpdateRecurrentSaving(r.Context(), userFrom(r).ID, rs); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recurrentEntryResponse{
		ID: rs.ID, Amount: rs.Amount.String(), Enabled: rs.Enabled,
	})
}

func (s *Server) handleDeleteRecurrentSaving(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return
	}
	if err := s.repo.DeleteRecurrentSaving(r.Context(), userFrom(r).ID, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- recurrent budgets ---

func (s *Server) handleCreateRecurrentBudget(w http.ResponseWriter, r *http.Request) {
	req, amount, ok := parseRecurrentEntry(w, r)
	if !ok {
		return
	}
	rb := core.RecurrentBudget{
		UserID:      userFrom(r).ID,
		Description: sanitizeInput(req.Description),
		Amount:      amount,
		Enabled:     req.enabled(),
	}
	created, err := s.repo.CreateRecurrentBudget(r.Context(), rb)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, recurrentEntryResponse{
		ID: created.ID, Description: created.Description,
		Amount: created.Amount.String(), Enabled: created.Enabled,
	})
}

func (s *Server) handleListRecurrentBudgets(w http.ResponseWriter, r *http.Request) {
	entries, err := s.repo.ListRecurrentBudgets(r.Context(), userFrom(r).ID)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]recurrentEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, recurrentEntryResponse{
			ID: e.ID, Description: e.Description,
			Amount: e.Amount.String(), Enabled: e.Enabled,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpdateRecurrentBudget(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return
	}
	req, amount, ok := parseRecurrentEntry(w, r)
	if !ok {
		return
	}
	rb := core.RecurrentBudget{
		ID:          id,
		Description: sanitizeInput(req.Description),
		Amount:      amount,
		Enabled:     req.enabled(),
	}
	if err := s.repo.UpdateRecurrentBudget(r.Context(), userFrom(r).ID, rb); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recurrentEntryResponse{
		ID: rb.ID, Description: rb.Description,
		Amount: rb.Amount.String(), Enabled: rb.Enabled,
	})
}

func (s *Server) handleDeleteRecurrentBudget(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return
	}
	if err := s.repo.DeleteRecurrentBudget(r.Context(), userFrom(r).ID, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
