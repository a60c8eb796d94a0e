package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/Jairo0120/expenses-tracker-api/internal/storage"
)

// Runner is the batch entry point the scheduler calls: cycle rollover for
// all active users, then the four materialization passes in fixed order.
// Re-running it is safe; the per-cycle flags make every pass at-most-once.
type Runner struct {
	cycles       *CycleService
	materializer *Materializer
}

func NewRunner(repo *storage.Repository) *Runner {
	return &Runner{
		cycles:       NewCycleService(repo),
		materializer: NewMaterializer(repo),
	}
}

func (r *Runner) Cycles() *CycleService { return r.cycles }

// Run processes every active user.
func (r *Runner) Run(ctx context.Context, now time.Time) error {
	start := time.Now()

	created, err := r.cycles.EnsureCurrentCycle(ctx, now)
	if err != nil {
		return err
	}

	materialized, err := r.materializer.Run(ctx, now)
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Rollover run complete",
		"cycles_created", created,
		"records_materialized", materialized,
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

// RunForUser is the single-user variant invoked right after sign-up, so a
// fresh account gets its cycle and recurring items without waiting for the
// next scheduled run. The materializer passes are cycle-scoped already, so
// only the rollover needs the user filter.
func (r *Runner) RunForUser(ctx context.Context, now time.Time, userID int64) error {
	if _, err := r.cycles.EnsureCurrentCycle(ctx, now, userID); err != nil {
		return err
	}
	_, err := r.materializer.Run(ctx, now)
	return err
}
