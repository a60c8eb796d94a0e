package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Jairo0120/expenses-tracker-api/internal/core"
)

func (r *Repository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO categories (user_id, description) VALUES (?, ?)`,
		c.UserID, c.Description)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	if c.ID, err = res.LastInsertId(); err != nil {
		return core.Category{}, fmt.Errorf("category id: %w", err)
	}
	return c, nil
}

func (r *Repository) GetCategory(ctx context.Context, userID, id int64) (core.Category, error) {
	var c core.Category
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, description FROM categories
		WHERE id = ? AND user_id = ?`,
		id, userID).Scan(&c.ID, &c.UserID, &c.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, core.ErrNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (r *Repository) ListCategories(ctx context.Context, userID int64, limit, offset int) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, description FROM categories
		WHERE user_id = ?
		ORDER BY id LIMIT ? OFFSET ?`,
		userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Description); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repository) UpdateCategory(ctx context.Context, c core.Category) error {
	return r.ownedUpdate(ctx, `
		UPDATE categories SET description = ?
		WHERE id = ? AND user_id = ?`,
		c.Description, c.ID, c.UserID)
}

func (r *Repository) DeleteCategory(ctx context.Context, userID, id int64) error {
	return r.ownedUpdate(ctx, `
		DELETE FROM categories
		WHERE id = ? AND user_id = ?`,
		id, userID)
}
