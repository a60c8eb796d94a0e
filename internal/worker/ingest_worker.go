// Package worker hosts the long-running consumers that feed the tracker
// from outside sources.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Jairo0120/expenses-tracker-api/internal/amqp"
	"github.com/Jairo0120/expenses-tracker-api/internal/core"
	"github.com/Jairo0120/expenses-tracker-api/internal/services"
	"github.com/Jairo0120/expenses-tracker-api/internal/storage"
)

// IngestWorker turns expense candidates scraped from bank emails into
// expense rows in the owning user's current cycle.
type IngestWorker struct {
	repo   *storage.Repository
	runner *services.Runner
	client *amqp.Client
}

func NewIngestWorker(repo *storage.Repository, runner *services.Runner, client *amqp.Client) *IngestWorker {
	return &IngestWorker{repo: repo, runner: runner, client: client}
}

// Start consumes candidates until ctx is cancelled.
func (w *IngestWorker) Start(ctx context.Context) error {
	return w.client.ConsumeExpenseCandidates(ctx, func(msg *amqp.ExpenseCandidateMessage) error {
		return w.handle(ctx, msg)
	})
}

// handle processes one candidate. A candidate for an unknown or inactive
// user is dropped (acked) so it doesn't poison the queue; a candidate whose
// id was already ingested is likewise dropped. Everything else that fails is
// returned as an error so the delivery gets requeued.
func (w *IngestWorker) handle(ctx context.Context, msg *amqp.ExpenseCandidateMessage) error {
	user, err := w.repo.GetUserByEmail(ctx, msg.UserEmail)
	if errors.Is(err, core.ErrNotFound) {
		slog.WarnContext(ctx, "Dropping candidate for unknown user",
			"candidate_id", msg.ID, "user_email", msg.UserEmail)
		return nil
	}
	if err != nil {
		return fmt.Errorf("resolve user: %w", err)
	}
	if !user.IsActive {
		slog.WarnContext(ctx, "Dropping candidate for inactive user",
			"candidate_id", msg.ID, "user_id", user.ID)
		return nil
	}

	amount, err := core.ParseMoney(msg.Amount)
	if err != nil {
		slog.WarnContext(ctx, "Dropping candidate with bad amount",
			"candidate_id", msg.ID, "amount", msg.Amount, "error", err)
		return nil
	}

	now := time.Now()
	if err := w.runner.RunForUser(ctx, now, user.ID); err != nil {
		return fmt.Errorf("ensure current cycle: %w", err)
	}

	cycle, err := w.repo.GetActiveCycle(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("get active cycle: %w", err)
	}

	date := msg.Date
	if date.IsZero() {
		date = now
	}

	expense := core.Expense{
		CycleID:     cycle.ID,
		Description: w.describeCandidate(msg),
		Amount:      amount,
		Date:        date,
		Source:      core.SourceEmail,
		ExternalRef: msg.ID,
	}
	if err := expense.Validate(); err != nil {
		slog.WarnContext(ctx, "Dropping invalid candidate",
			"candidate_id", msg.ID, "error", err)
		return nil
	}

	if _, err := w.repo.CreateExpense(ctx, expense); err != nil {
		if errors.Is(err, core.ErrDuplicate) {
			slog.InfoContext(ctx, "Candidate already ingested",
				"candidate_id", msg.ID, "user_id", user.ID)
			return nil
		}
		return fmt.Errorf("create expense: %w", err)
	}

	slog.InfoContext(ctx, "Candidate ingested",
		"candidate_id", msg.ID, "user_id", user.ID, "cycle_id", cycle.ID)
	return nil
}

func (w *IngestWorker) describeCandidate(msg *amqp.ExpenseCandidateMessage) string {
	if msg.Source == "" {
		return msg.Description
	}
	return fmt.Sprintf("%s (%s)", msg.Description, msg.Source)
}
