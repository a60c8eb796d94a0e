package worker

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Jairo0120/expenses-tracker-api/internal/amqp"
	"github.com/Jairo0120/expenses-tracker-api/internal/core"
	"github.com/Jairo0120/expenses-tracker-api/internal/services"
	"github.com/Jairo0120/expenses-tracker-api/internal/storage"
)

func newTestWorker(t *testing.T) (*IngestWorker, *storage.Repository) {
	t.Helper()
	repo, err := storage.NewRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	// No broker needed: handle() is driven directly
	return NewIngestWorker(repo, services.NewRunner(repo), nil), repo
}

func createUser(t *testing.T, repo *storage.Repository, email string, active bool) core.User {
	t.Helper()
	user, err := repo.CreateUser(context.Background(), core.User{
		Email:    email,
		Name:     "Test User",
		Subject:  "subject-" + email,
		IsActive: active,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return user
}

func TestIngestCandidate(t *testing.T) {
	w, repo := newTestWorker(t)
	ctx := context.Background()
	user := createUser(t, repo, "bank@example.com", true)

	msg := amqp.NewExpenseCandidateMessage("bank@example.com", "Card payment SUPERMARKET",
		"42.50", "acme-bank", time.Now().UTC())

	if err := w.handle(ctx, msg); err != nil {
		t.Fatalf("handle: %v", err)
	}

	cycle, err := repo.GetActiveCycle(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetActiveCycle: %v", err)
	}
	expenses, err := repo.ListExpenses(ctx, cycle.ID, 10, 0)
	if err != nil {
		t.Fatalf("ListExpenses: %v", err)
	}
	if len(expenses) != 1 {
		t.Fatalf("expenses = %d, want 1", len(expenses))
	}
	e := expenses[0]
	if e.Source != core.SourceEmail {
		t.Errorf("source = %q, want email", e.Source)
	}
	if e.Amount.Cents != 4250 {
		t.Errorf("amount = %d cents, want 4250", e.Amount.Cents)
	}
	if e.ExternalRef != msg.ID {
		t.Errorf("external ref = %q, want candidate id %q", e.ExternalRef, msg.ID)
	}
}

func TestIngestCandidate_RedeliveryIsIdempotent(t *testing.T) {
	w, repo := newTestWorker(t)
	ctx := context.Background()
	user := createUser(t, repo, "redeliver@example.com", true)

	msg := amqp.NewExpenseCandidateMessage("redeliver@example.com", "Subscription",
		"9.99", "acme-bank", time.Now().UTC())

	for i := 0; i < 3; i++ {
		if err := w.handle(ctx, msg); err != nil {
			t.Fatalf("handle #%d: %v", i+1, err)
		}
	}

	cycle, err := repo.GetActiveCycle(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetActiveCycle: %v", err)
	}
	expenses, err := repo.ListExpenses(ctx, cycle.ID, 10, 0)
	if err != nil {
		t.Fatalf("ListExpenses: %v", err)
	}
	if len(expenses) != 1 {
		t.Errorf("redelivered candidate inserted %d expenses, want 1", len(expenses))
	}
}

func TestIngestCandidate_Dropped(t *testing.T) {
	w, repo := newTestWorker(t)
	ctx := context.Background()
	inactive := createUser(t, repo, "off@example.com", false)
	active := createUser(t, repo, "on@example.com", true)

	tests := []struct {
		name string
		msg  *amqp.ExpenseCandidateMessage
	}{
		{
			name: "unknown user",
			msg:  amqp.NewExpenseCandidateMessage("ghost@example.com", "x", "10", "bank", time.Now()),
		},
		{
			name: "inactive user",
			msg:  amqp.NewExpenseCandidateMessage("off@example.com", "x", "10", "bank", time.Now()),
		},
		{
			name: "bad amount",
			msg:  amqp.NewExpenseCandidateMessage("on@example.com", "x", "not-a-number", "bank", time.Now()),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Dropped candidates ack without error and without side effects
			if err := w.handle(ctx, tt.msg); err != nil {
				t.Fatalf("handle: %v", err)
			}
		})
	}

	if _, err := repo.GetActiveCycle(ctx, inactive.ID); err == nil {
		t.Error("dropped candidates must not create cycles for inactive users")
	}
	if _, err := repo.GetActiveCycle(ctx, active.ID); err == nil {
		t.Error("a bad amount must be rejected before any cycle is created")
	}
}
