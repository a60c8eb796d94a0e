package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Jairo0120/expenses-tracker-api/internal/core"
)

// RecurrentKind names one of the four materialization passes. Each kind maps
// to its own "created" flag on the cycle row.
type RecurrentKind string

const (
	KindIncomes  RecurrentKind = "incomes"
	KindExpenses RecurrentKind = "expenses"
	KindSavings  RecurrentKind = "savings"
	KindBudgets  RecurrentKind = "budgets"
)

func (k RecurrentKind) flagColumn() string {
	switch k {
	case KindIncomes:
		return "is_recurrent_incomes_created"
	case KindExpenses:
		return "is_recurrent_expenses_created"
	case KindSavings:
		return "is_recurrent_savings_created"
	case KindBudgets:
		return "is_recurrent_budgets_created"
	}
	return ""
}

// ListCyclesPendingMaterialization returns active cycles whose per-kind flag
// is still unset. Inactive cycles never show up here, whatever their flags.
func (r *Repository) ListCyclesPendingMaterialization(ctx context.Context, kind RecurrentKind) ([]core.Cycle, error) {
	col := kind.flagColumn()
	if col == "" {
		return nil, fmt.Errorf("unknown recurrent kind %q", kind)
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+cycleColumns+" FROM cycles WHERE is_active = 1 AND "+col+" = 0 ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list pending cycles (%s): %w", kind, err)
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

// Each Materialize* method instantiates the catalog entries into the cycle
// and flips the cycle's per-kind flag in ONE transaction, so a crashed run
// can never leave rows behind with the flag unset. The INSERT OR IGNORE on
// the (cycle_id, recurrent_source_id) unique index is the second line of
// defense against double materialization. The returned count is the number
// of rows that actually landed: ignored duplicates and transactions lost to
// the flag race count as zero.

func (r *Repository) MaterializeIncomes(ctx context.Context, cycle core.Cycle, entries []core.RecurrentIncome, now time.Time) (int, error) {
	return r.materialize(ctx, cycle, KindIncomes, func(tx *sql.Tx) (int, error) {
		inserted := 0
		for _, e := range entries {
			res, err := tx.ExecContext(ctx, `
				INSERT OR IGNORE INTO incomes (cycle_id, description, amount_cents, date_income, is_recurrent_income, recurrent_source_id)
				VALUES (?, ?, ?, ?, 1, ?)`,
				cycle.ID, e.Description, e.Amount.Cents, fmtTime(now), e.ID)
			if err != nil {
				return inserted, fmt.Errorf("insert income from template %d: %w", e.ID, err)
			}
			inserted += insertedRows(res)
		}
		return inserted, nil
	})
}

func (r *Repository) MaterializeExpenses(ctx context.Context, cycle core.Cycle, entries []core.RecurrentExpense, now time.Time) (int, error) {
	return r.materialize(ctx, cycle, KindExpenses, func(tx *sql.Tx) (int, error) {
		inserted := 0
		for _, e := range entries {
			res, err := tx.ExecContext(ctx, `
				INSERT OR IGNORE INTO expenses (cycle_id, description, category, amount_cents, date_expense, is_recurrent_expense, source, recurrent_source_id)
				VALUES (?, ?, ?, ?, ?, 1, ?, ?)`,
				cycle.ID, e.Description, e.Category, e.Amount.Cents, fmtTime(now),
				string(core.SourceRecurrent), e.ID)
			if err != nil {
				return inserted, fmt.Errorf("insert expense from template %d: %w", e.ID, err)
			}
			inserted += insertedRows(res)
		}
		return inserted, nil
	})
}

func (r *Repository) MaterializeSavings(ctx context.Context, cycle core.Cycle, entries []core.RecurrentSaving, now time.Time) (int, error) {
	return r.materialize(ctx, cycle, KindSavings, func(tx *sql.Tx) (int, error) {
		inserted := 0
		for _, e := range entries {
			// The template already references its saving type; no
			// lookup-or-create happens during materialization.
			res, err := tx.ExecContext(ctx, `
				INSERT OR IGNORE INTO savings (cycle_id, saving_type_id, amount_cents, date_saving, is_recurrent_saving, movement_type, recurrent_source_id)
				VALUES (?, ?, ?, ?, 1, ?, ?)`,
				cycle.ID, e.SavingTypeID, e.Amount.Cents, fmtTime(now),
				string(core.MovementIncome), e.ID)
			if err != nil {
				return inserted, fmt.Errorf("insert saving from template %d: %w", e.ID, err)
			}
			inserted += insertedRows(res)
		}
		return inserted, nil
	})
}

func (r *Repository) MaterializeBudgets(ctx context.Context, cycle core.Cycle, entries []core.RecurrentBudget, now time.Time) (int, error) {
	return r.materialize(ctx, cycle, KindBudgets, func(tx *sql.Tx) (int, error) {
		inserted := 0
		for _, e := range entries {
			res, err := tx.ExecContext(ctx, `
				INSERT OR IGNORE INTO budgets (cycle_id, description, amount_cents, is_recurrent_budget, recurrent_source_id)
				VALUES (?, ?, ?, 1, ?)`,
				cycle.ID, e.Description, e.Amount.Cents, e.ID)
			if err != nil {
				return inserted, fmt.Errorf("insert budget from template %d: %w", e.ID, err)
			}
			inserted += insertedRows(res)
		}
		return inserted, nil
	})
}

func insertedRows(res sql.Result) int {
	n, err := res.RowsAffected()
	if err != nil || n <= 0 {
		return 0
	}
	return int(n)
}

func (r *Repository) materialize(ctx context.Context, cycle core.Cycle, kind RecurrentKind, insertAll func(*sql.Tx) (int, error)) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin materialize %s: %w", kind, err)
	}
	defer tx.Rollback()

	inserted, err := insertAll(tx)
	if err != nil {
		return 0, err
	}

	res, err := tx.ExecContext(ctx,
		"UPDATE cycles SET "+kind.flagColumn()+" = 1 WHERE id = ? AND is_active = 1 AND "+kind.flagColumn()+" = 0",
		cycle.ID)
	if err != nil {
		return 0, fmt.Errorf("flag cycle %d (%s): %w", cycle.ID, kind, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("flag rows affected: %w", err)
	}
	// Someone materialized this cycle (or retired it) since we selected it;
	// dropping the transaction keeps the pass at-most-once.
	if n == 0 {
		return 0, nil
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit materialize %s: %w", kind, err)
	}
	return inserted, nil
}
