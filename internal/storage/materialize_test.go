package storage

import (
	"context"
	"testing"
	"time"

	"github.com/Jairo0120/expenses-tracker-api/internal/core"
)

func TestMaterializeIncomes_CountsOnlyLandedRows(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	user := createTestUser(t, repo, "count@example.com", "count-subject")
	now := time.Date(2024, 4, 1, 6, 0, 0, 0, time.UTC)
	cycle := createTestCycle(t, repo, user.ID, now)

	tpl, err := repo.CreateRecurrentIncome(ctx, core.RecurrentIncome{
		UserID: user.ID, Description: "Salary", Amount: core.Money{Cents: 150000}, Enabled: true,
	})
	if err != nil {
		t.Fatalf("CreateRecurrentIncome: %v", err)
	}
	entries := []core.RecurrentIncome{tpl}

	n, err := repo.MaterializeIncomes(ctx, cycle, entries, now)
	if err != nil {
		t.Fatalf("MaterializeIncomes: %v", err)
	}
	if n != 1 {
		t.Errorf("first run inserted = %d, want 1", n)
	}

	// The flag is already set; the transaction is dropped and nothing counts
	n, err = repo.MaterializeIncomes(ctx, cycle, entries, now)
	if err != nil {
		t.Fatalf("MaterializeIncomes (repeat): %v", err)
	}
	if n != 0 {
		t.Errorf("repeat run inserted = %d, want 0", n)
	}

	incomes, err := repo.ListIncomes(ctx, cycle.ID, 10, 0)
	if err != nil {
		t.Fatalf("ListIncomes: %v", err)
	}
	if len(incomes) != 1 {
		t.Errorf("incomes = %d, want 1", len(incomes))
	}
}
