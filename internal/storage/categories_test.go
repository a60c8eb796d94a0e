package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/Jairo0120/expenses-tracker-api/internal/core"
)

func TestCategories_ScopedToOwner(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	owner := createTestUser(t, repo, "owner@example.com", "owner-subject")
	other := createTestUser(t, repo, "other@example.com", "other-subject")

	created, err := repo.CreateCategory(ctx, core.Category{UserID: owner.ID, Description: "Food"})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	if _, err := repo.CreateCategory(ctx, core.Category{UserID: owner.ID, Description: "Transport"}); err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	if _, err := repo.CreateCategory(ctx, core.Category{UserID: other.ID, Description: "Books"}); err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}

	list, err := repo.ListCategories(ctx, owner.ID, 50, 0)
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("owner sees %d categories, want 2", len(list))
	}

	// Another user's category behaves as if it does not exist
	if _, err := repo.GetCategory(ctx, other.ID, created.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("GetCategory as other user: %v, want ErrNotFound", err)
	}
	err = repo.UpdateCategory(ctx, core.Category{ID: created.ID, UserID: other.ID, Description: "Hijack"})
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("UpdateCategory as other user: %v, want ErrNotFound", err)
	}
	if err := repo.DeleteCategory(ctx, other.ID, created.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("DeleteCategory as other user: %v, want ErrNotFound", err)
	}

	// The owner can still rename and remove it
	if err := repo.UpdateCategory(ctx, core.Category{ID: created.ID, UserID: owner.ID, Description: "Groceries"}); err != nil {
		t.Fatalf("UpdateCategory: %v", err)
	}
	got, err := repo.GetCategory(ctx, owner.ID, created.ID)
	if err != nil {
		t.Fatalf("GetCategory: %v", err)
	}
	if got.Description != "Groceries" {
		t.Errorf("description = %q, want Groceries", got.Description)
	}
	if err := repo.DeleteCategory(ctx, owner.ID, created.ID); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}
}
