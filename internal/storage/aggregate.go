package storage

import (
	"context"
	"fmt"

	"github.com/Jairo0120/expenses-tracker-api/internal/core"
)

// GetCycleStatus computes the four summary totals for a cycle. Every total
// coalesces to zero when no rows match; savings sum both movement directions
// as stored. Pure read, no side effects.
func (r *Repository) GetCycleStatus(ctx context.Context, cycleID int64) (core.CycleStatus, error) {
	var st core.CycleStatus
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COALESCE((SELECT SUM(amount_cents) FROM expenses WHERE cycle_id = ?1 AND is_recurrent_expense = 1), 0),
			COALESCE((SELECT SUM(amount_cents) FROM expenses WHERE cycle_id = ?1 AND is_recurrent_expense = 0), 0),
			COALESCE((SELECT SUM(amount_cents) FROM incomes WHERE cycle_id = ?1), 0),
			COALESCE((SELECT SUM(amount_cents) FROM savings WHERE cycle_id = ?1), 0)`,
		cycleID).Scan(
		&st.TotalRecurrentExpenses.Cents,
		&st.TotalExpenses.Cents,
		&st.TotalIncomes.Cents,
		&st.TotalSavings.Cents)
	if err != nil {
		return core.CycleStatus{}, fmt.Errorf("cycle status %d: %w", cycleID, err)
	}
	return st, nil
}
