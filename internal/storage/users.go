package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Jairo0120/expenses-tracker-api/internal/core"
)

const userColumns = "id, email, name, subject, is_active, start_cycle_day, end_cycle_day, created_at"

func (r *Repository) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	if u.StartCycleDay == 0 {
		u.StartCycleDay = 1
	}
	if u.EndCycleDay == 0 {
		u.EndCycleDay = 31
	}
	u.CreatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO users (email, name, subject, is_active, start_cycle_day, end_cycle_day, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.Email, u.Name, u.Subject, boolToInt(u.IsActive), u.StartCycleDay, u.EndCycleDay, fmtTime(u.CreatedAt))
	if err != nil {
		if IsDuplicate(err) {
			return core.User{}, fmt.Errorf("create user %s: %w", u.Email, core.ErrDuplicate)
		}
		return core.User{}, fmt.Errorf("create user: %w", err)
	}
	u.ID, err = res.LastInsertId()
	if err != nil {
		return core.User{}, fmt.Errorf("create user id: %w", err)
	}
	return u, nil
}

func (r *Repository) GetUserBySubject(ctx context.Context, subject string) (core.User, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE subject = ?", subject)
	return scanUser(row)
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = ?", email)
	return scanUser(row)
}

func (r *Repository) GetUser(ctx context.Context, id int64) (core.User, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ?", id)
	return scanUser(row)
}

// DeactivateUser takes the account out of rollover, materialization and
// ingestion without deleting its history.
func (r *Repository) DeactivateUser(ctx context.Context, id int64) error {
	return r.ownedUpdate(ctx, "UPDATE users SET is_active = 0 WHERE id = ?", id)
}

// ListActiveUsers returns every user eligible for cycle rollover.
func (r *Repository) ListActiveUsers(ctx context.Context) ([]core.User, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE is_active = 1 ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list active users: %w", err)
	}
	defer rows.Close()

	var users []core.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (core.User, error) {
	var (
		u         core.User
		active    int64
		createdAt string
	)
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Subject, &active,
		&u.StartCycleDay, &u.EndCycleDay, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, core.ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("scan user: %w", err)
	}
	u.IsActive = active == 1
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return core.User{}, err
	}
	return u, nil
}
