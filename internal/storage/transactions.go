package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Jairo0120/expenses-tracker-api/internal/core"
)

// Transaction records (incomes, expenses, savings, budgets) belong to a
// cycle; ownership checks always go through the cycle's user_id.

func (r *Repository) CreateIncome(ctx context.Context, in core.Income) (core.Income, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO incomes (cycle_id, description, amount_cents, date_income, is_recurrent_income, recurrent_source_id)
		VALUES (?, ?, ?, ?, ?, ?)`,
		in.CycleID, in.Description, in.Amount.Cents, fmtTime(in.Date),
		boolToInt(in.IsRecurrent), nullID(in.RecurrentSourceID))
	if err != nil {
		return core.Income{}, fmt.Errorf("create income: %w", err)
	}
	if in.ID, err = res.LastInsertId(); err != nil {
		return core.Income{}, fmt.Errorf("income id: %w", err)
	}
	return in, nil
}

func (r *Repository) ListIncomes(ctx context.Context, cycleID int64, limit, offset int) ([]core.Income, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, cycle_id, description, amount_cents, date_income, is_recurrent_income, recurrent_source_id
		FROM incomes WHERE cycle_id = ?
		ORDER BY date_income DESC LIMIT ? OFFSET ?`,
		cycleID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list incomes: %w", err)
	}
	defer rows.Close()

	var out []core.Income
	for rows.Next() {
		var (
			in        core.Income
			date      string
			recurrent int64
			sourceID  sql.NullInt64
		)
		if err := rows.Scan(&in.ID, &in.CycleID, &in.Description, &in.Amount.Cents,
			&date, &recurrent, &sourceID); err != nil {
			return nil, fmt.Errorf("scan income: %w", err)
		}
		in.IsRecurrent = recurrent == 1
		in.RecurrentSourceID = sourceID.Int64
		if in.Date, err = parseTime(date); err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

func (r *Repository) UpdateIncome(ctx context.Context, userID int64, in core.Income) error {
	return r.ownedUpdate(ctx, `
		UPDATE incomes SET description = ?, amount_cents = ?, date_income = ?
		WHERE id = ? AND cycle_id IN (SELECT id FROM cycles WHERE user_id = ?)`,
		in.Description, in.Amount.Cents, fmtTime(in.Date), in.ID, userID)
}

func (r *Repository) DeleteIncome(ctx context.Context, userID, id int64) error {
	return r.ownedUpdate(ctx, `
		DELETE FROM incomes
		WHERE id = ? AND cycle_id IN (SELECT id FROM cycles WHERE user_id = ?)`,
		id, userID)
}

func (r *Repository) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO expenses (cycle_id, budget_id, description, category, amount_cents,
			date_expense, is_recurrent_expense, source, recurrent_source_id, external_ref)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.CycleID, nullID(e.BudgetID), e.Description, e.Category, e.Amount.Cents,
		fmtTime(e.Date), boolToInt(e.IsRecurrent), string(e.Source),
		nullID(e.RecurrentSourceID), nullStr(e.ExternalRef))
	if err != nil {
		if IsDuplicate(err) {
			return core.Expense{}, fmt.Errorf("create expense: %w", core.ErrDuplicate)
		}
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}
	if e.ID, err = res.LastInsertId(); err != nil {
		return core.Expense{}, fmt.Errorf("expense id: %w", err)
	}
	return e, nil
}

func (r *Repository) ListExpenses(ctx context.Context, cycleID int64, limit, offset int) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, cycle_id, budget_id, description, category, amount_cents,
			date_expense, is_recurrent_expense, source, recurrent_source_id, external_ref
		FROM expenses WHERE cycle_id = ?
		ORDER BY date_expense DESC LIMIT ? OFFSET ?`,
		cycleID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanExpense(row rowScanner) (core.Expense, error) {
	var (
		e           core.Expense
		budgetID    sql.NullInt64
		date        string
		recurrent   int64
		source      string
		sourceID    sql.NullInt64
		externalRef sql.NullString
	)
	err := row.Scan(&e.ID, &e.CycleID, &budgetID, &e.Description, &e.Category,
		&e.Amount.Cents, &date, &recurrent, &source, &sourceID, &externalRef)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, core.ErrNotFound
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("scan expense: %w", err)
	}
	e.BudgetID = budgetID.Int64
	e.IsRecurrent = recurrent == 1
	e.Source = core.ExpenseSource(source)
	e.RecurrentSourceID = sourceID.Int64
	e.ExternalRef = externalRef.String
	if e.Date, err = parseTime(date); err != nil {
		return core.Expense{}, err
	}
	return e, nil
}

// GetExpense returns the expense only if its cycle belongs to the user.
func (r *Repository) GetExpense(ctx context.Context, userID, id int64) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, cycle_id, budget_id, description, category, amount_cents,
			date_expense, is_recurrent_expense, source, recurrent_source_id, external_ref
		FROM expenses
		WHERE id = ? AND cycle_id IN (SELECT id FROM cycles WHERE user_id = ?)`,
		id, userID)
	return scanExpense(row)
}

func (r *Repository) UpdateExpense(ctx context.Context, userID int64, e core.Expense) error {
	return r.ownedUpdate(ctx, `
		UPDATE expenses SET description = ?, category = ?, amount_cents = ?, date_expense = ?, budget_id = ?
		WHERE id = ? AND cycle_id IN (SELECT id FROM cycles WHERE user_id = ?)`,
		e.Description, e.Category, e.Amount.Cents, fmtTime(e.Date), nullID(e.BudgetID), e.ID, userID)
}

func (r *Repository) DeleteExpense(ctx context.Context, userID, id int64) error {
	return r.ownedUpdate(ctx, `
		DELETE FROM expenses
		WHERE id = ? AND cycle_id IN (SELECT id FROM cycles WHERE user_id = ?)`,
		id, userID)
}

func (r *Repository) CreateSaving(ctx context.Context, s core.Saving) (core.Saving, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO savings (cycle_id, saving_type_id, amount_cents, date_saving,
			is_recurrent_saving, movement_type, movement_description, recurrent_source_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.CycleID, s.SavingTypeID, s.Amount.Cents, fmtTime(s.Date),
		boolToInt(s.IsRecurrent), string(s.MovementType), s.MovementDescription,
		nullID(s.RecurrentSourceID))
	if err != nil {
		return core.Saving{}, fmt.Errorf("create saving: %w", err)
	}
	if s.ID, err = res.LastInsertId(); err != nil {
		return core.Saving{}, fmt.Errorf("saving id: %w", err)
	}
	return s, nil
}

// ListSavings returns the cycle's income-movement savings; outcome movements
// stay out of the listing but still count in the aggregation.
func (r *Repository) ListSavings(ctx context.Context, cycleID int64, limit, offset int) ([]core.Saving, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, cycle_id, saving_type_id, amount_cents, date_saving,
			is_recurrent_saving, movement_type, movement_description, recurrent_source_id
		FROM savings WHERE cycle_id = ? AND movement_type = ?
		ORDER BY date_saving DESC LIMIT ? OFFSET ?`,
		cycleID, string(core.MovementIncome), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list savings: %w", err)
	}
	defer rows.Close()

	var out []core.Saving
	for rows.Next() {
		var (
			s         core.Saving
			date      string
			recurrent int64
			movement  string
			sourceID  sql.NullInt64
		)
		if err := rows.Scan(&s.ID, &s.CycleID, &s.SavingTypeID, &s.Amount.Cents,
			&date, &recurrent, &movement, &s.MovementDescription, &sourceID); err != nil {
			return nil, fmt.Errorf("scan saving: %w", err)
		}
		s.IsRecurrent = recurrent == 1
		s.MovementType = core.SavingMovement(movement)
		s.RecurrentSourceID = sourceID.Int64
		if s.Date, err = parseTime(date); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetSaving returns the saving only if its cycle belongs to the user.
func (r *Repository) GetSaving(ctx context.Context, userID, id int64) (core.Saving, error) {
	var (
		s         core.Saving
		date      string
		recurrent int64
		movement  string
		sourceID  sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, cycle_id, saving_type_id, amount_cents, date_saving,
			is_recurrent_saving, movement_type, movement_description, recurrent_source_id
		FROM savings
		WHERE id = ? AND cycle_id IN (SELECT id FROM cycles WHERE user_id = ?)`,
		id, userID).Scan(&s.ID, &s.CycleID, &s.SavingTypeID, &s.Amount.Cents,
		&date, &recurrent, &movement, &s.MovementDescription, &sourceID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Saving{}, core.ErrNotFound
	}
	if err != nil {
		return core.Saving{}, fmt.Errorf("get saving: %w", err)
	}
	s.IsRecurrent = recurrent == 1
	s.MovementType = core.SavingMovement(movement)
	s.RecurrentSourceID = sourceID.Int64
	if s.Date, err = parseTime(date); err != nil {
		return core.Saving{}, err
	}
	return s, nil
}

func (r *Repository) UpdateSaving(ctx context.Context, userID int64, s core.Saving) error {
	return r.ownedUpdate(ctx, `
		UPDATE savings SET amount_cents = ?, date_saving = ?
		WHERE id = ? AND cycle_id IN (SELECT id FROM cycles WHERE user_id = ?)`,
		s.Amount.Cents, fmtTime(s.Date), s.ID, userID)
}

func (r *Repository) DeleteSaving(ctx context.Context, userID, id int64) error {
	return r.ownedUpdate(ctx, `
		DELETE FROM savings
		WHERE id = ? AND cycle_id IN (SELECT id FROM cycles WHERE user_id = ?)`,
		id, userID)
}

func (r *Repository) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO budgets (cycle_id, description, amount_cents, is_recurrent_budget, recurrent_source_id)
		VALUES (?, ?, ?, ?, ?)`,
		b.CycleID, b.Description, b.Amount.Cents, boolToInt(b.IsRecurrent),
		nullID(b.RecurrentSourceID))
	if err != nil {
		return core.Budget{}, fmt.Errorf("create budget: %w", err)
	}
	if b.ID, err = res.LastInsertId(); err != nil {
		return core.Budget{}, fmt.Errorf("budget id: %w", err)
	}
	return b, nil
}

// GetCycleBudget returns the budget only if it belongs to the given cycle.
func (r *Repository) GetCycleBudget(ctx context.Context, cycleID, budgetID int64) (core.Budget, error) {
	var (
		b         core.Budget
		recurrent int64
		sourceID  sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, cycle_id, description, amount_cents, is_recurrent_budget, recurrent_source_id
		FROM budgets WHERE id = ? AND cycle_id = ?`,
		budgetID, cycleID).Scan(&b.ID, &b.CycleID, &b.Description, &b.Amount.Cents, &recurrent, &sourceID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, core.ErrNotFound
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget: %w", err)
	}
	b.IsRecurrent = recurrent == 1
	b.RecurrentSourceID = sourceID.Int64
	return b, nil
}

func (r *Repository) ListBudgets(ctx context.Context, cycleID int64, limit, offset int) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, cycle_id, description, amount_cents, is_recurrent_budget, recurrent_source_id
		FROM budgets WHERE cycle_id = ?
		ORDER BY id LIMIT ? OFFSET ?`,
		cycleID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		var (
			b         core.Budget
			recurrent int64
			sourceID  sql.NullInt64
		)
		if err := rows.Scan(&b.ID, &b.CycleID, &b.Description, &b.Amount.Cents, &recurrent, &sourceID); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		b.IsRecurrent = recurrent == 1
		b.RecurrentSourceID = sourceID.Int64
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *Repository) UpdateBudget(ctx context.Context, userID int64, b core.Budget) error {
	return r.ownedUpdate(ctx, `
		UPDATE budgets SET description = ?, amount_cents = ?
		WHERE id = ? AND cycle_id IN (SELECT id FROM cycles WHERE user_id = ?)`,
		b.Description, b.Amount.Cents, b.ID, userID)
}

func (r *Repository) DeleteBudget(ctx context.Context, userID, id int64) error {
	return r.ownedUpdate(ctx, `
		DELETE FROM budgets
		WHERE id = ? AND cycle_id IN (SELECT id FROM cycles WHERE user_id = ?)`,
		id, userID)
}
