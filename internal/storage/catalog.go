package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Jairo0120/expenses-tracker-api/internal/core"
)

// The recurrence catalog: per-user templates the materializer instantiates
// into each new cycle. Rollover only ever reads these tables.

func (r *Repository) CreateRecurrentIncome(ctx context.Context, ri core.RecurrentIncome) (core.RecurrentIncome, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO recurrent_incomes (user_id, description, amount_cents, enabled)
		VALUES (?, ?, ?, ?)`,
		ri.UserID, ri.Description, ri.Amount.Cents, boolToInt(ri.Enabled))
	if err != nil {
		return core.RecurrentIncome{}, fmt.Errorf("create recurrent income: %w", err)
	}
	if ri.ID, err = res.LastInsertId(); err != nil {
		return core.RecurrentIncome{}, fmt.Errorf("recurrent income id: %w", err)
	}
	return ri, nil
}

func (r *Repository) ListRecurrentIncomes(ctx context.Context, userID int64) ([]core.RecurrentIncome, error) {
	return r.queryRecurrentIncomes(ctx,
		"SELECT id, user_id, description, amount_cents, enabled FROM recurrent_incomes WHERE user_id = ? ORDER BY id", userID)
}

// ListEnabledRecurrentIncomes feeds the incomes materializer pass.
func (r *Repository) ListEnabledRecurrentIncomes(ctx context.Context, userID int64) ([]core.RecurrentIncome, error) {
	return r.queryRecurrentIncomes(ctx,
		"SELECT id, user_id, description, amount_cents, enabled FROM recurrent_incomes WHERE user_id = ? AND enabled = 1 ORDER BY id", userID)
}

func (r *Repository) queryRecurrentIncomes(ctx context.Context, query string, args ...any) ([]core.RecurrentIncome, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list recurrent incomes: %w", err)
	}
	defer rows.Close()

	var out []core.RecurrentIncome
	for rows.Next() {
		var (
			ri      core.RecurrentIncome
			enabled int64
		)
		if err := rows.Scan(&ri.ID, &ri.UserID, &ri.Description, &ri.Amount.Cents, &enabled); err != nil {
			return nil, fmt.Errorf("scan recurrent income: %w", err)
		}
		ri.Enabled = enabled == 1
		out = append(out, ri)
	}
	return out, rows.Err()
}

func (r *Repository) UpdateRecurrentIncome(ctx context.Context, userID int64, ri core.RecurrentIncome) error {
	return r.ownedUpdate(ctx, `
		UPDATE recurrent_incomes SET description = ?, amount_cents = ?, enabled = ?
		WHERE id = ? AND user_id = ?`,
		ri.Description, ri.Amount.Cents, boolToInt(ri.Enabled), ri.ID, userID)
}

func (r *Repository) DeleteRecurrentIncome(ctx context.Context, userID, id int64) error {
	return r.ownedUpdate(ctx,
		"DELETE FROM recurrent_incomes WHERE id = ? AND user_id = ?", id, userID)
}

func (r *Repository) CreateRecurrentExpense(ctx context.Context, re core.RecurrentExpense) (core.RecurrentExpense, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO recurrent_expenses (user_id, description, category, amount_cents, enabled)
		VALUES (?, ?, ?, ?, ?)`,
		re.UserID, re.Description, re.Category, re.Amount.Cents, boolToInt(re.Enabled))
	if err != nil {
		return core.RecurrentExpense{}, fmt.Errorf("create recurrent expense: %w", err)
	}
	if re.ID, err = res.LastInsertId(); err != nil {
		return core.RecurrentExpense{}, fmt.Errorf("recurrent expense id: %w", err)
	}
	return re, nil
}

func (r *Repository) ListRecurrentExpenses(ctx context.Context, userID int64) ([]core.RecurrentExpense, error) {
	return r.queryRecurrentExpenses(ctx,
		"SELECT id, user_id, description, category, amount_cents, enabled FROM recurrent_expenses WHERE user_id = ? ORDER BY id", userID)
}

func (r *Repository) ListEnabledRecurrentExpenses(ctx context.Context, userID int64) ([]core.RecurrentExpense, error) {
	return r.queryRecurrentExpenses(ctx,
		"SELECT id, user_id, description, category, amount_cents, enabled FROM recurrent_expenses WHERE user_id = ? AND enabled = 1 ORDER BY id", userID)
}

func (r *Repository) queryRecurrentExpenses(ctx context.Context, query string, args ...any) ([]core.RecurrentExpense, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list recurrent expenses: %w", err)
	}
	defer rows.Close()

	var out []core.RecurrentExpense
	for rows.Next() {
		var (
			re      core.RecurrentExpense
			enabled int64
		)
		if err := rows.Scan(&re.ID, &re.UserID, &re.Description, &re.Category, &re.Amount.Cents, &enabled); err != nil {
			return nil, fmt.Errorf("scan recurrent expense: %w", err)
		}
		re.Enabled = enabled == 1
		out = append(out, re)
	}
	return out, rows.Err()
}

func (r *Repository) UpdateRecurrentExpense(ctx context.Context, userID int64, re core.RecurrentExpense) error {
	return r.ownedUpdate(ctx, `
		UPDATE recurrent_expenses SET description = ?, category = ?, amount_cents = ?, enabled = ?
		WHERE id = ? AND user_id = ?`,
		re.Description, re.Category, re.Amount.Cents, boolToInt(re.Enabled), re.ID, userID)
}

func (r *Repository) DeleteRecurrentExpense(ctx context.Context, userID, id int64) error {
	return r.ownedUpdate(ctx,
		"DELETE FROM recurrent_expenses WHERE id = ? AND user_id = ?", id, userID)
}

func (r *Repository) CreateRecurrentSaving(ctx context.Context, rs core.RecurrentSaving) (core.RecurrentSaving, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO recurrent_savings (user_id, saving_type_id, amount_cents, enabled)
		VALUES (?, ?, ?, ?)`,
		rs.UserID, rs.SavingTypeID, rs.Amount.Cents, boolToInt(rs.Enabled))
	if err != nil {
		return core.RecurrentSaving{}, fmt.Errorf("create recurrent saving: %w", err)
	}
	if rs.ID, err = res.LastInsertId(); err != nil {
		return core.RecurrentSaving{}, fmt.Errorf("recurrent saving id: %w", err)
	}
	return rs, nil
}

func (r *Repository) ListRecurrentSavings(ctx context.Context, userID int64) ([]core.RecurrentSaving, error) {
	return r.queryRecurrentSavings(ctx,
		"SELECT id, user_id, saving_type_id, amount_cents, enabled FROM recurrent_savings WHERE user_id = ? ORDER BY id", userID)
}

func (r *Repository) ListEnabledRecurrentSavings(ctx context.Context, userID int64) ([]core.RecurrentSaving, error) {
	return r.queryRecurrentSavings(ctx,
		"SELECT id, user_id, saving_type_id, amount_cents, enabled FROM recurrent_savings WHERE user_id = ? AND enabled = 1 ORDER BY id", userID)
}

func (r *Repository) queryRecurrentSavings(ctx context.Context, query string, args ...any) ([]core.RecurrentSaving, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list recurrent savings: %w", err)
	}
	defer rows.Close()

	var out []core.RecurrentSaving
	for rows.Next() {
		var (
			rs      core.RecurrentSaving
			enabled int64
		)
		if err := rows.Scan(&rs.ID, &rs.UserID, &rs.SavingTypeID, &rs.Amount.Cents, &enabled); err != nil {
			return nil, fmt.Errorf("scan recurrent saving: %w", err)
		}
		rs.Enabled = enabled == 1
		out = append(out, rs)
	}
	return out, rows.Err()
}

func (r *Repository) UpdateRecurrentSaving(ctx context.Context, userID int64, rs core.RecurrentSaving) error {
	return r.ownedUpdate(ctx, `
		UPDATE recurrent_savings SET amount_cents = ?, enabled = ?
		WHERE id = ? AND user_id = ?`,
		rs.Amount.Cents, boolToInt(rs.Enabled), rs.ID, userID)
}

func (r *Repository) DeleteRecurrentSaving(ctx context.Context, userID, id int64) error {
	return r.ownedUpdate(ctx,
		"DELETE FROM recurrent_savings WHERE id = ? AND user_id = ?", id, userID)
}

func (r *Repository) CreateRecurrentBudget(ctx context.Context, rb core.RecurrentBudget) (core.RecurrentBudget, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO recurrent_budgets (user_id, description, amount_cents, enabled)
		VALUES (?, ?, ?, ?)`,
		rb.UserID, rb.Description, rb.Amount.Cents, boolToInt(rb.Enabled))
	if err != nil {
		return core.RecurrentBudget{}, fmt.Errorf("create recurrent budget: %w", err)
	}
	if rb.ID, err = res.LastInsertId(); err != nil {
		return core.RecurrentBudget{}, fmt.Errorf("recurrent budget id: %w", err)
	}
	return rb, nil
}

func (r *Repository) ListRecurrentBudgets(ctx context.Context, userID int64) ([]core.RecurrentBudget, error) {
	return r.queryRecurrentBudgets(ctx,
		"SELECT id, user_id, description, amount_cents, enabled FROM recurrent_budgets WHERE user_id = ? ORDER BY id", userID)
}

func (r *Repository) ListEnabledRecurrentBudgets(ctx context.Context, userID int64) ([]core.RecurrentBudget, error) {
	return r.queryRecurrentBudgets(ctx,
		"SELECT id, user_id, description, amount_cents, enabled FROM recurrent_budgets WHERE user_id = ? AND enabled = 1 ORDER BY id", userID)
}

func (r *Repository) queryRecurrentBudgets(ctx context.Context, query string, args ...any) ([]core.RecurrentBudget, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list recurrent budgets: %w", err)
	}
	defer rows.Close()

	var out []core.RecurrentBudget
	for rows.Next() {
		var (
			rb      core.RecurrentBudget
			enabled int64
		)
		if err := rows.Scan(&rb.ID, &rb.UserID, &rb.Description, &rb.Amount.Cents, &enabled); err != nil {
			return nil, fmt.Errorf("scan recurrent budget: %w", err)
		}
		rb.Enabled = enabled == 1
		out = append(out, rb)
	}
	return out, rows.Err()
}

func (r *Repository) UpdateRecurrentBudget(ctx context.Context, userID int64, rb core.RecurrentBudget) error {
	return r.ownedUpdate(ctx, `
		UPDATE recurrent_budgets SET description = ?, amount_cents = ?, enabled = ?
		WHERE id = ? AND user_id = ?`,
		rb.Description, rb.Amount.Cents, boolToInt(rb.Enabled), rb.ID, userID)
}

func (r *Repository) DeleteRecurrentBudget(ctx context.Context, userID, id int64) error {
	return r.ownedUpdate(ctx,
		"DELETE FROM recurrent_budgets WHERE id = ? AND user_id = ?", id, userID)
}

// ownedUpdate runs a mutation whose WHERE clause enforces ownership and maps
// "zero rows touched" to ErrNotFound.
func (r *Repository) ownedUpdate(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("exec: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// LookupOrCreateSavingType resolves a saving type by its normalized
// description, creating it on first use.
func (r *Repository) LookupOrCreateSavingType(ctx context.Context, userID int64, description string) (core.SavingType, error) {
	key := core.NormalizeSavingTypeKey(description)
	if key == "" {
		return core.SavingType{}, core.ErrEmptyDescription
	}

	st, err := r.GetSavingTypeByKey(ctx, userID, key)
	if err == nil {
		return st, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return core.SavingType{}, err
	}

	res, err := r.db.ExecContext(ctx,
		"INSERT INTO saving_types (user_id, description) VALUES (?, ?)", userID, key)
	if err != nil {
		// Lost a race with a concurrent insert; the row exists now.
		if IsDuplicate(err) {
			return r.GetSavingTypeByKey(ctx, userID, key)
		}
		return core.SavingType{}, fmt.Errorf("create saving type: %w", err)
	}
	st = core.SavingType{UserID: userID, Description: key}
	if st.ID, err = res.LastInsertId(); err != nil {
		return core.SavingType{}, fmt.Errorf("saving type id: %w", err)
	}
	return st, nil
}

// GetSavingTypeByKey looks a saving type up by its already-normalized key.
func (r *Repository) GetSavingTypeByKey(ctx context.Context, userID int64, key string) (core.SavingType, error) {
	var st core.SavingType
	err := r.db.QueryRowContext(ctx,
		"SELECT id, user_id, description FROM saving_types WHERE user_id = ? AND description = ?",
		userID, key).Scan(&st.ID, &st.UserID, &st.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return core.SavingType{}, core.ErrNotFound
	}
	if err != nil {
		return core.SavingType{}, fmt.Errorf("get saving type: %w", err)
	}
	return st, nil
}

func (r *Repository) GetSavingType(ctx context.Context, userID, id int64) (core.SavingType, error) {
	var st core.SavingType
	err := r.db.QueryRowContext(ctx,
		"SELECT id, user_id, description FROM saving_types WHERE user_id = ? AND id = ?",
		userID, id).Scan(&st.ID, &st.UserID, &st.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return core.SavingType{}, core.ErrNotFound
	}
	if err != nil {
		return core.SavingType{}, fmt.Errorf("get saving type: %w", err)
	}
	return st, nil
}
