package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Jairo0120/expenses-tracker-api/internal/core"
)

type signUpRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type userResponse struct {
	ID            int64  `json:"id"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	IsActive      bool   `json:"is_active"`
	StartCycleDay int    `json:"start_cycle_day"`
	EndCycleDay   int    `json:"end_cycle_day"`
}

func toUserResponse(u core.User) userResponse {
	return userResponse{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		IsActive:      u.IsActive,
		StartCycleDay: u.StartCycleDay,
		EndCycleDay:   u.EndCycleDay,
	}
}

// handleSignUp registers the caller. The identity subject comes from the
// bearer token, the profile from the body. A fresh account immediately gets
// its first cycle so the client can start recording right away.
func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	subject, ok := bearerSubject(r)
	if !ok {
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing or malformed authorization header"})
		return
	}

	var req signUpRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	user := core.User{
		Email:    sanitizeInput(req.Email),
		Name:     sanitizeInput(req.Name),
		Subject:  subject,
		IsActive: true,
	}
	if err := user.Validate(); err != nil {
		writeValidationError(w, err)
		return
	}

	created, err := s.repo.CreateUser(r.Context(), user)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.runner.RunForUser(r.Context(), time.Now(), created.ID); err != nil {
		// The account exists; the scheduler will catch the cycle up later.
		slog.ErrorContext(r.Context(), "Failed to bootstrap cycle for new user",
			"user_id", created.ID, "error", err)
	}

	slog.InfoContext(r.Context(), "User signed up", "user_id", created.ID)
	writeJSON(w, http.StatusCreated, toUserResponse(created))
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toUserResponse(userFrom(r)))
}

// handleDeactivateMe disables the account. History is kept; the schedulers
// and the ingest pipeline stop touching it.
func (s *Server) handleDeactivateMe(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	if err := s.repo.DeactivateUser(r.Context(), user.ID); err != nil {
		writeError(w, err)
		return
	}
	slog.InfoContext(r.Context(), "User deactivated", "user_id", user.ID)
	w.WriteHeader(http.StatusNoContent)
}
