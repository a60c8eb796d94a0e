// Package http exposes the tracker's JSON API.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/Jairo0120/expenses-tracker-api/internal/services"
	"github.com/Jairo0120/expenses-tracker-api/internal/storage"
)

type Server struct {
	http.Server
	repo        *storage.Repository
	runner      *services.Runner
	cycles      *services.CycleService
	savings     *services.SavingService
	rateLimiter *rateLimiter
	metrics     securityMetrics

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, repo *storage.Repository, runner *services.Runner) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		repo:        repo,
		runner:      runner,
		cycles:      runner.Cycles(),
		savings:     services.NewSavingService(repo, runner.Cycles()),
		rateLimiter: newRateLimiter(writeRequestLimit, writeWindow),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /users/sign-up", s.wrap(s.handleSignUp))
	mux.HandleFunc("GET /users/me", s.wrapAuth(s.handleMe))
	mux.HandleFunc("DELETE /users/me", s.wrapAuth(s.handleDeactivateMe))

	mux.HandleFunc("GET /cycles", s.wrapAuth(s.handleListCycles))
	mux.HandleFunc("GET /cycles/cycle-status", s.wrapAuth(s.handleCycleStatus))

	mux.HandleFunc("POST /categories", s.wrapAuth(s.handleCreateCategory))
	mux.HandleFunc("GET /categories", s.wrapAuth(s.handleListCategories))
	mux.HandleFunc("GET /categories/{id}", s.wrapAuth(s.handleGetCategory))
	mux.HandleFunc("PUT /categories/{id}", s.wrapAuth(s.handleUpdateCategory))
	mux.HandleFunc("DELETE /categories/{id}", s.wrapAuth(s.handleDeleteCategory))

	mux.HandleFunc("POST /incomes", s.wrapAuth(s.handleCreateIncome))
	mux.HandleFunc("GET /incomes", s.wrapAuth(s.handleListIncomes))
	mux.HandleFunc("PUT /incomes/{id}", s.wrapAuth(s.handleUpdateIncome))
	mux.HandleFunc("DELETE /incomes/{id}", s.wrapAuth(s.handleDeleteIncome))

	mux.HandleFunc("POST /expenses", s.wrapAuth(s.handleCreateExpense))
	mux.HandleFunc("GET /expenses", s.wrapAuth(s.handleListExpenses))
	mux.HandleFunc("PUT /expenses/{id}", s.wrapAuth(s.handleUpdateExpense))
	mux.HandleFunc("DELETE /expenses/{id}", s.wrapAuth(s.handleDeleteExpense))

	mux.HandleFunc("POST /savings", s.wrapAuth(s.handleCreateSaving))
	mux.HandleFunc("POST /savings/saving-outcome", s.wrapAuth(s.handleCreateSavingOutcome))
	mux.HandleFunc("GET /savings", s.wrapAuth(s.handleListSavings))
	mux.HandleFunc("PUT /savings/{id}", s.wrapAuth(s.handleUpdateSaving))
	mux.HandleFunc("DELETE /savings/{id}", s.wrapAuth(s.handleDeleteSaving))

	mux.HandleFunc("POST /budgets", s.wrapAuth(s.handleCreateBudget))
	mux.HandleFunc("GET /budgets", s.wrapAuth(s.handleListBudgets))
	mux.HandleFunc("PUT /budgets/{id}", s.wrapAuth(s.handleUpdateBudget))
	mux.HandleFunc("DELETE /budgets/{id}", s.wrapAuth(s.handleDeleteBudget))

	s.registerRecurrentRoutes(mux)

	return s
}

// wrap applies the base middleware: request logging, security headers and
// write rate limiting.
func (s *Server) wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), contextKey("request_id"), requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		// Rate limit mutating requests only
		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP, &s.metrics) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded"})
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"client_ip", clientIP)
	}
}

func (s *Server) wrapAuth(next http.HandlerFunc) http.HandlerFunc {
	return s.wrap(s.withAuth(next))
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := s.repo.ListActiveUsers(r.Context()); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("database unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
