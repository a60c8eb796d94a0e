package http

import (
	"net/http"

	"github.com/Jairo0120/expenses-tracker-api/internal/core"
)

// Categories are a user-level catalog, not cycle-scoped: they label expenses
// across cycles.

type categoryRequest struct {
	Description string `json:"description"`
}

type categoryResponse struct {
	ID          int64  `json:"id"`
	Description string `json:"description"`
}

func toCategoryResponse(c core.Category) categoryResponse {
	return categoryResponse{ID: c.ID, Description: c.Description}
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	category := core.Category{
		UserID:      userFrom(r).ID,
		Description: sanitizeInput(req.Description),
	}
	if err := category.Validate(); err != nil {
		writeValidationError(w, err)
		return
	}

	created, err := s.repo.CreateCategory(r.Context(), category)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCategoryResponse(created))
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	categories, err := s.repo.ListCategories(r.Context(), userFrom(r).ID, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]categoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, toCategoryResponse(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return
	}
	category, err := s.repo.GetCategory(r.Context(), userFrom(r).ID, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryResponse(category))
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return
	}

	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	category := core.Category{
		ID:          id,
		UserID:      userFrom(r).ID,
		Description: sanitizeInput(req.Description),
	}
	if err := category.Validate(); err != nil {
		writeValidationError(w, err)
		return
	}

	if err := s.repo.UpdateCategory(r.Context(), category); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryResponse(category))
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return
	}
	if err := s.repo.DeleteCategory(r.Context(), userFrom(r).ID, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
