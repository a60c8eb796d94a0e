package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/Jairo0120/expenses-tracker-api/internal/core"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func createTestUser(t *testing.T, repo *Repository, email, subject string) core.User {
	t.Helper()
	user, err := repo.CreateUser(context.Background(), core.User{
		Email:    email,
		Name:     "Test User",
		Subject:  subject,
		IsActive: true,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return user
}

func createTestCycle(t *testing.T, repo *Repository, userID int64, now time.Time) core.Cycle {
	t.Helper()
	cycle, err := repo.RolloverCycle(context.Background(), core.Cycle{
		UserID:      userID,
		Description: core.CycleDescription(now),
		StartDate:   core.MonthStart(now),
		EndDate:     core.MonthEnd(now),
	})
	if err != nil {
		t.Fatalf("RolloverCycle: %v", err)
	}
	return cycle
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	repo := newTestRepo(t)
	createTestUser(t, repo, "dup@example.com", "subject-1")

	_, err := repo.CreateUser(context.Background(), core.User{
		Email:    "dup@example.com",
		Name:     "Other",
		Subject:  "subject-2",
		IsActive: true,
	})
	if !errors.Is(err, core.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestGetUserBySubject_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetUserBySubject(context.Background(), "nobody")
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRolloverCycle_DeactivatesPrevious(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	user := createTestUser(t, repo, "roll@example.com", "roll-subject")

	jan := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	first := createTestCycle(t, repo, user.ID, jan)

	feb := time.Date(2024, 2, 1, 0, 30, 0, 0, time.UTC)
	second := createTestCycle(t, repo, user.ID, feb)

	active, err := repo.GetActiveCycle(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetActiveCycle: %v", err)
	}
	if active.ID != second.ID {
		t.Errorf("active cycle = %d, want %d", active.ID, second.ID)
	}

	old, err := repo.GetUserCycle(ctx, user.ID, first.ID)
	if err != nil {
		t.Fatalf("GetUserCycle: %v", err)
	}
	if old.IsActive {
		t.Error("previous cycle should be deactivated after rollover")
	}
}

func TestHasCurrentCycle_BoundaryDay(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	user := createTestUser(t, repo, "boundary@example.com", "boundary-subject")

	jan := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	createTestCycle(t, repo, user.ID, jan)

	// Early morning on the end date is still inside the cycle
	lastDay := time.Date(2024, 1, 31, 8, 0, 0, 0, time.UTC)
	current, err := repo.HasCurrentCycle(ctx, user.ID, lastDay)
	if err != nil {
		t.Fatalf("HasCurrentCycle: %v", err)
	}
	if !current {
		t.Error("cycle should still be current on its end date")
	}

	nextMonth := time.Date(2024, 2, 1, 0, 30, 0, 0, time.UTC)
	current, err = repo.HasCurrentCycle(ctx, user.ID, nextMonth)
	if err != nil {
		t.Fatalf("HasCurrentCycle: %v", err)
	}
	if current {
		t.Error("cycle should be expired once the month turns")
	}
}

func TestCreateExpense_ExternalRefDedup(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	user := createTestUser(t, repo, "ref@example.com", "ref-subject")
	cycle := createTestCycle(t, repo, user.ID, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))

	expense := core.Expense{
		CycleID:     cycle.ID,
		Description: "Card payment",
		Amount:      core.Money{Cents: 1500},
		Date:        time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC),
		Source:      core.SourceEmail,
		ExternalRef: "candidate-123",
	}

	if _, err := repo.CreateExpense(ctx, expense); err != nil {
		t.Fatalf("first CreateExpense: %v", err)
	}
	if _, err := repo.CreateExpense(ctx, expense); !errors.Is(err, core.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate on reused external_ref, got %v", err)
	}

	expenses, err := repo.ListExpenses(ctx, cycle.ID, 10, 0)
	if err != nil {
		t.Fatalf("ListExpenses: %v", err)
	}
	if len(expenses) != 1 {
		t.Errorf("expected 1 expense, got %d", len(expenses))
	}
}

func TestLookupOrCreateSavingType_Normalizes(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	user := createTestUser(t, repo, "type@example.com", "type-subject")

	first, err := repo.LookupOrCreateSavingType(ctx, user.ID, "rainy day")
	if err != nil {
		t.Fatalf("LookupOrCreateSavingType: %v", err)
	}
	second, err := repo.LookupOrCreateSavingType(ctx, user.ID, "RAINY DAY")
	if err != nil {
		t.Fatalf("LookupOrCreateSavingType: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("case variants created distinct types: %d vs %d", first.ID, second.ID)
	}
	if first.Description != "Rainy day" {
		t.Errorf("stored description = %q, want %q", first.Description, "Rainy day")
	}

	// A different user gets an independent type
	other := createTestUser(t, repo, "other@example.com", "other-subject")
	third, err := repo.LookupOrCreateSavingType(ctx, other.ID, "rainy day")
	if err != nil {
		t.Fatalf("LookupOrCreateSavingType: %v", err)
	}
	if third.ID == first.ID {
		t.Error("saving types should be scoped per user")
	}
}

func TestOwnedUpdate_ForeignRecordNotFound(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	owner := createTestUser(t, repo, "owner@example.com", "owner-subject")
	intruder := createTestUser(t, repo, "intruder@example.com", "intruder-subject")
	cycle := createTestCycle(t, repo, owner.ID, time.Date(2024, 4, 5, 0, 0, 0, 0, time.UTC))

	income, err := repo.CreateIncome(ctx, core.Income{
		CycleID:     cycle.ID,
		Description: "Salary",
		Amount:      core.Money{Cents: 100000},
		Date:        time.Date(2024, 4, 5, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("CreateIncome: %v", err)
	}

	income.Description = "Hijacked"
	if err := repo.UpdateIncome(ctx, intruder.ID, income); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign update, got %v", err)
	}
	if err := repo.DeleteIncome(ctx, intruder.ID, income.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign delete, got %v", err)
	}
}
