package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Jairo0120/expenses-tracker-api/internal/core"
)

func TestCreateSaving_TypeCreatedOnFirstUse(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	user := createTestUser(t, repo, "save@example.com")
	cycles := NewCycleService(repo)
	svc := NewSavingService(repo, cycles)

	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	if _, err := cycles.EnsureCurrentCycle(ctx, now, user.ID); err != nil {
		t.Fatalf("EnsureCurrentCycle: %v", err)
	}

	first, err := svc.CreateSaving(ctx, user.ID, 0, "vacation fund", core.Money{Cents: 30000}, now, false)
	if err != nil {
		t.Fatalf("CreateSaving: %v", err)
	}
	if first.MovementType != core.MovementIncome {
		t.Errorf("movement = %q, want income", first.MovementType)
	}

	// Different casing resolves to the same pot
	second, err := svc.CreateSaving(ctx, user.ID, 0, "VACATION FUND", core.Money{Cents: 10000}, now, false)
	if err != nil {
		t.Fatalf("CreateSaving (case variant): %v", err)
	}
	if first.SavingTypeID != second.SavingTypeID {
		t.Errorf("saving types differ: %d vs %d", first.SavingTypeID, second.SavingTypeID)
	}
}

func TestCreateSaving_RecurrentCreatesTemplate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	user := createTestUser(t, repo, "template@example.com")
	cycles := NewCycleService(repo)
	svc := NewSavingService(repo, cycles)

	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	if _, err := cycles.EnsureCurrentCycle(ctx, now, user.ID); err != nil {
		t.Fatalf("EnsureCurrentCycle: %v", err)
	}

	saving, err := svc.CreateSaving(ctx, user.ID, 0, "Pension", core.Money{Cents: 50000}, now, true)
	if err != nil {
		t.Fatalf("CreateSaving: %v", err)
	}
	if !saving.IsRecurrent {
		t.Error("saving should carry the recurrent flag")
	}

	templates, err := repo.ListRecurrentSavings(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListRecurrentSavings: %v", err)
	}
	if len(templates) != 1 {
		t.Fatalf("templates = %d, want 1", len(templates))
	}
	if templates[0].SavingTypeID != saving.SavingTypeID {
		t.Errorf("template type %d, want %d", templates[0].SavingTypeID, saving.SavingTypeID)
	}
	if templates[0].Amount.Cents != 50000 {
		t.Errorf("template amount = %d, want 50000", templates[0].Amount.Cents)
	}
}

func TestCreateSavingOutcome(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	user := createTestUser(t, repo, "outcome@example.com")
	cycles := NewCycleService(repo)
	svc := NewSavingService(repo, cycles)

	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	if _, err := cycles.EnsureCurrentCycle(ctx, now, user.ID); err != nil {
		t.Fatalf("EnsureCurrentCycle: %v", err)
	}

	// Cannot withdraw from a pot that was never filled
	_, err := svc.CreateSavingOutcome(ctx, user.ID, 0, "Ghost pot", "tv", core.Money{Cents: 100}, now)
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown type, got %v", err)
	}

	if _, err := svc.CreateSaving(ctx, user.ID, 0, "Emergency", core.Money{Cents: 100000}, now, false); err != nil {
		t.Fatalf("CreateSaving: %v", err)
	}

	outcome, err := svc.CreateSavingOutcome(ctx, user.ID, 0, "emergency", "car repair", core.Money{Cents: 40000}, now)
	if err != nil {
		t.Fatalf("CreateSavingOutcome: %v", err)
	}
	if outcome.MovementType != core.MovementOutcome {
		t.Errorf("movement = %q, want outcome", outcome.MovementType)
	}
	if outcome.MovementDescription != "car repair" {
		t.Errorf("movement description = %q", outcome.MovementDescription)
	}
}

func TestCycleStatus_Aggregation(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	user := createTestUser(t, repo, "status@example.com")
	cycles := NewCycleService(repo)
	savings := NewSavingService(repo, cycles)

	now := time.Date(2024, 9, 5, 10, 0, 0, 0, time.UTC)
	if _, err := cycles.EnsureCurrentCycle(ctx, now, user.ID); err != nil {
		t.Fatalf("EnsureCurrentCycle: %v", err)
	}
	cycle, err := repo.GetActiveCycle(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetActiveCycle: %v", err)
	}

	// Empty cycle reports all zeros, not NULLs
	status, err := cycles.Status(ctx, user.ID, 0)
	if err != nil {
		t.Fatalf("Status (empty): %v", err)
	}
	if status.TotalIncomes.Cents != 0 || status.TotalExpenses.Cents != 0 ||
		status.TotalRecurrentExpenses.Cents != 0 || status.TotalSavings.Cents != 0 {
		t.Fatalf("empty cycle status = %+v, want zeros", status)
	}

	if _, err := repo.CreateIncome(ctx, core.Income{
		CycleID: cycle.ID, Description: "Salary", Amount: core.Money{Cents: 500000}, Date: now,
	}); err != nil {
		t.Fatalf("CreateIncome: %v", err)
	}
	if _, err := repo.CreateExpense(ctx, core.Expense{
		CycleID: cycle.ID, Description: "Groceries", Amount: core.Money{Cents: 12000},
		Date: now, Source: core.SourceManual,
	}); err != nil {
		t.Fatalf("CreateExpense: %v", err)
	}
	if _, err := repo.CreateExpense(ctx, core.Expense{
		CycleID: cycle.ID, Description: "Rent", Amount: core.Money{Cents: 90000},
		Date: now, Source: core.SourceRecurrent, IsRecurrent: true,
	}); err != nil {
		t.Fatalf("CreateExpense (recurrent): %v", err)
	}
	if _, err := savings.CreateSaving(ctx, user.ID, 0, "Pot", core.Money{Cents: 20000}, now, false); err != nil {
		t.Fatalf("CreateSaving: %v", err)
	}
	// Outcome movements are summed as stored
	if _, err := savings.CreateSavingOutcome(ctx, user.ID, 0, "Pot", "withdrawal", core.Money{Cents: 5000}, now); err != nil {
		t.Fatalf("CreateSavingOutcome: %v", err)
	}

	status, err = cycles.Status(ctx, user.ID, cycle.ID)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status.TotalIncomes.Cents != 500000 {
		t.Errorf("TotalIncomes = %d, want 500000", status.TotalIncomes.Cents)
	}
	if status.TotalExpenses.Cents != 12000 {
		t.Errorf("TotalExpenses = %d, want 12000", status.TotalExpenses.Cents)
	}
	if status.TotalRecurrentExpenses.Cents != 90000 {
		t.Errorf("TotalRecurrentExpenses = %d, want 90000", status.TotalRecurrentExpenses.Cents)
	}
	if status.TotalSavings.Cents != 25000 {
		t.Errorf("TotalSavings = %d, want 25000", status.TotalSavings.Cents)
	}
}
