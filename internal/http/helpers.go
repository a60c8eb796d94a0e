package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Jairo0120/expenses-tracker-api/internal/core"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// pathID parses the {id} route segment.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

// queryCycleID parses the optional cycle_id query parameter. Zero means
// "use the active cycle".
func queryCycleID(r *http.Request) (int64, bool) {
	v := strings.TrimSpace(r.URL.Query().Get("cycle_id"))
	if v == "" {
		return 0, true
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

// pagination parses limit and offset with sane bounds.
func pagination(r *http.Request) (limit, offset int) {
	limit = defaultPageSize
	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = min(n, maxPageSize)
		}
	}
	if v := strings.TrimSpace(r.URL.Query().Get("offset")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			offset = n
		}
	}
	return limit, offset
}

// parseDate accepts RFC 3339 or a plain date, defaulting to now.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Now().UTC(), true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// resolveCycle picks the cycle the request operates on: the explicit
// cycle_id when given (and owned by the user), otherwise the active one.
func (s *Server) resolveCycle(r *http.Request) (core.Cycle, error) {
	cycleID, ok := queryCycleID(r)
	if !ok {
		return core.Cycle{}, core.ErrNotFound
	}
	return s.cycles.ResolveCycle(r.Context(), userFrom(r).ID, cycleID)
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
