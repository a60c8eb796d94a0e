package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Jairo0120/expenses-tracker-api/internal/core"
)

const cycleColumns = `id, user_id, description, start_date, end_date, is_active,
	is_recurrent_incomes_created, is_recurrent_expenses_created,
	is_recurrent_savings_created, is_recurrent_budgets_created`

// HasCurrentCycle reports whether the user owns a cycle whose end date has
// not passed yet. Equality counts: a cycle is current through its end date.
func (r *Repository) HasCurrentCycle(ctx context.Context, userID int64, now time.Time) (bool, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM cycles WHERE user_id = ? AND end_date >= ?",
		userID, fmtTime(now)).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check current cycle: %w", err)
	}
	return n > 0, nil
}

// RolloverCycle retires every active cycle of the user and inserts the new
// one, atomically. Either both happen or neither does.
func (r *Repository) RolloverCycle(ctx context.Context, c core.Cycle) (core.Cycle, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Cycle{}, fmt.Errorf("begin rollover: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"UPDATE cycles SET is_active = 0 WHERE user_id = ? AND is_active = 1",
		c.UserID); err != nil {
		return core.Cycle{}, fmt.Errorf("deactivate cycles: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO cycles (user_id, description, start_date, end_date, is_active)
		VALUES (?, ?, ?, ?, 1)`,
		c.UserID, c.Description, fmtTime(c.StartDate), fmtTime(c.EndDate))
	if err != nil {
		return core.Cycle{}, fmt.Errorf("insert cycle: %w", err)
	}
	if c.ID, err = res.LastInsertId(); err != nil {
		return core.Cycle{}, fmt.Errorf("cycle id: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return core.Cycle{}, fmt.Errorf("commit rollover: %w", err)
	}
	c.IsActive = true
	return c, nil
}

// GetActiveCycle returns the user's currently active cycle.
func (r *Repository) GetActiveCycle(ctx context.Context, userID int64) (core.Cycle, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+cycleColumns+" FROM cycles WHERE user_id = ? AND is_active = 1", userID)
	return scanCycle(row)
}

// GetUserCycle returns the cycle only if it belongs to the user.
func (r *Repository) GetUserCycle(ctx context.Context, userID, cycleID int64) (core.Cycle, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+cycleColumns+" FROM cycles WHERE user_id = ? AND id = ?", userID, cycleID)
	return scanCycle(row)
}

// ListCycles returns the user's cycles, newest first.
func (r *Repository) ListCycles(ctx context.Context, userID int64) ([]core.Cycle, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+cycleColumns+" FROM cycles WHERE user_id = ? ORDER BY start_date DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("list cycles: %w", err)
	}
	defer rows.Close()

	var cycles []core.Cycle
	for rows.Next() {
		c, err := scanCycle(rows)
		if err != nil {
			return nil, err
		}
		cycles = append(cycles, c)
	}
	return cycles, rows.Err()
}

func scanCycle(row rowScanner) (core.Cycle, error) {
	var (
		c                          core.Cycle
		start, end                 string
		active, inc, exp, sav, bud int64
	)
	err := row.Scan(&c.ID, &c.UserID, &c.Description, &start, &end, &active,
		&inc, &exp, &sav, &bud)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Cycle{}, core.ErrNotFound
	}
	if err != nil {
		return core.Cycle{}, fmt.Errorf("scan cycle: %w", err)
	}
	c.IsActive = active == 1
	c.RecurrentIncomesCreated = inc == 1
	c.RecurrentExpensesCreated = exp == 1
	c.RecurrentSavingsCreated = sav == 1
	c.RecurrentBudgetsCreated = bud == 1
	if c.StartDate, err = parseTime(start); err != nil {
		return core.Cycle{}, err
	}
	if c.EndDate, err = parseTime(end); err != nil {
		return core.Cycle{}, err
	}
	return c, nil
}
