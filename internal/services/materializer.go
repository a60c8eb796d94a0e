package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/Jairo0120/expenses-tracker-api/internal/core"
	"github.com/Jairo0120/expenses-tracker-api/internal/storage"
)

// Materializer instantiates the recurrence catalog into not-yet-processed
// active cycles. One generic routine drives all four kinds; the per-kind
// differences (catalog query, insert shape, cycle flag) are parameterized.
type Materializer struct {
	repo *storage.Repository
}

func NewMaterializer(repo *storage.Repository) *Materializer {
	return &Materializer{repo: repo}
}

// Run executes the four passes in their fixed order: incomes, expenses,
// savings, budgets. Returns the total number of records instantiated.
func (m *Materializer) Run(ctx context.Context, now time.Time) (int, error) {
	total := 0

	n, err := runPass(ctx, m.repo, now, storage.KindIncomes,
		m.repo.ListEnabledRecurrentIncomes, m.repo.MaterializeIncomes)
	if err != nil {
		return total, err
	}
	total += n

	n, err = runPass(ctx, m.repo, now, storage.KindExpenses,
		m.repo.ListEnabledRecurrentExpenses, m.repo.MaterializeExpenses)
	if err != nil {
		return total, err
	}
	total += n

	n, err = runPass(ctx, m.repo, now, storage.KindSavings,
		m.repo.ListEnabledRecurrentSavings, m.repo.MaterializeSavings)
	if err != nil {
		return total, err
	}
	total += n

	n, err = runPass(ctx, m.repo, now, storage.KindBudgets,
		m.repo.ListEnabledRecurrentBudgets, m.repo.MaterializeBudgets)
	if err != nil {
		return total, err
	}
	total += n

	return total, nil
}

// runPass is the shared materialization template. It selects the cycles
// still pending for the kind, fetches each owner's enabled catalog entries
// and applies them in a single per-cycle transaction. A failing cycle is
// logged and skipped; the next cron run picks it up again because its flag
// stays unset.
func runPass[T any](
	ctx context.Context,
	repo *storage.Repository,
	now time.Time,
	kind storage.RecurrentKind,
	listEntries func(context.Context, int64) ([]T, error),
	apply func(context.Context, core.Cycle, []T, time.Time) (int, error),
) (int, error) {
	cycles, err := repo.ListCyclesPendingMaterialization(ctx, kind)
	if err != nil {
		return 0, err
	}

	slog.InfoContext(ctx, "Materialization pass started",
		"kind", string(kind), "pending_cycles", len(cycles))

	created := 0
	for _, cycle := range cycles {
		entries, err := listEntries(ctx, cycle.UserID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to read recurrence catalog",
				"kind", string(kind), "cycle_id", cycle.ID, "user_id", cycle.UserID, "error", err)
			continue
		}

		// The repo reports how many rows actually landed, so duplicate
		// inserts and lost flag races never inflate the count.
		n, err := apply(ctx, cycle, entries, now)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to materialize cycle",
				"kind", string(kind), "cycle_id", cycle.ID, "user_id", cycle.UserID, "error", err)
			continue
		}

		created += n
		slog.InfoContext(ctx, "Cycle materialized",
			"kind", string(kind), "cycle_id", cycle.ID, "user_id", cycle.UserID, "records", n)
	}

	return created, nil
}
