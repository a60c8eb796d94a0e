package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Jairo0120/expenses-tracker-api/internal/core"
	"github.com/Jairo0120/expenses-tracker-api/internal/storage"
)

func newTestRepo(t *testing.T) *storage.Repository {
	t.Helper()
	repo, err := storage.NewRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func createTestUser(t *testing.T, repo *storage.Repository, email string) core.User {
	t.Helper()
	user, err := repo.CreateUser(context.Background(), core.User{
		Email:    email,
		Name:     "Test User",
		Subject:  "subject-" + email,
		IsActive: true,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return user
}
