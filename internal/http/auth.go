package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Jairo0120/expenses-tracker-api/internal/core"
)

type contextKey string

const userContextKey contextKey = "user"

// withAuth resolves the bearer subject to a registered user. Token
// validation happens at the gateway in front of this service; here the
// subject only has to map to an active account.
func (s *Server) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subject, ok := bearerSubject(r)
		if !ok {
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing or malformed authorization header"})
			return
		}

		user, err := s.repo.GetUserBySubject(r.Context(), subject)
		if errors.Is(err, core.ErrNotFound) {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unknown user"})
			return
		}
		if err != nil {
			writeError(w, err)
			return
		}
		if !user.IsActive {
			slog.WarnContext(r.Context(), "Rejected inactive user", "user_id", user.ID)
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "account disabled"})
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next(w, r.WithContext(ctx))
	}
}

func bearerSubject(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, subject, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return "", false
	}
	return subject, true
}

// userFrom returns the authenticated user stored by withAuth.
func userFrom(r *http.Request) core.User {
	user, _ := r.Context().Value(userContextKey).(core.User)
	return user
}
