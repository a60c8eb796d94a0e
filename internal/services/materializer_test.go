package services

import (
	"context"
	"testing"
	"time"

	"github.com/Jairo0120/expenses-tracker-api/internal/core"
	"github.com/Jairo0120/expenses-tracker-api/internal/storage"
)

func TestMaterializer_Run(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	user := createTestUser(t, repo, "mat@example.com")

	// Catalog: two recurring incomes, one expense, one saving, one budget,
	// plus a disabled income that must never materialize.
	if _, err := repo.CreateRecurrentIncome(ctx, core.RecurrentIncome{
		UserID: user.ID, Description: "Salary", Amount: core.Money{Cents: 100000}, Enabled: true,
	}); err != nil {
		t.Fatalf("CreateRecurrentIncome: %v", err)
	}
	if _, err := repo.CreateRecurrentIncome(ctx, core.RecurrentIncome{
		UserID: user.ID, Description: "Rent payout", Amount: core.Money{Cents: 4000000}, Enabled: true,
	}); err != nil {
		t.Fatalf("CreateRecurrentIncome: %v", err)
	}
	if _, err := repo.CreateRecurrentIncome(ctx, core.RecurrentIncome{
		UserID: user.ID, Description: "Old side gig", Amount: core.Money{Cents: 5000}, Enabled: false,
	}); err != nil {
		t.Fatalf("CreateRecurrentIncome: %v", err)
	}
	if _, err := repo.CreateRecurrentExpense(ctx, core.RecurrentExpense{
		UserID: user.ID, Description: "Internet", Category: "Utilities",
		Amount: core.Money{Cents: 6500}, Enabled: true,
	}); err != nil {
		t.Fatalf("CreateRecurrentExpense: %v", err)
	}
	st, err := repo.LookupOrCreateSavingType(ctx, user.ID, "Retirement")
	if err != nil {
		t.Fatalf("LookupOrCreateSavingType: %v", err)
	}
	if _, err := repo.CreateRecurrentSaving(ctx, core.RecurrentSaving{
		UserID: user.ID, SavingTypeID: st.ID, Amount: core.Money{Cents: 20000}, Enabled: true,
	}); err != nil {
		t.Fatalf("CreateRecurrentSaving: %v", err)
	}
	if _, err := repo.CreateRecurrentBudget(ctx, core.RecurrentBudget{
		UserID: user.ID, Description: "Groceries", Amount: core.Money{Cents: 50000}, Enabled: true,
	}); err != nil {
		t.Fatalf("CreateRecurrentBudget: %v", err)
	}

	now := time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC)
	runner := NewRunner(repo)
	if err := runner.Run(ctx, now); err != nil {
		t.Fatalf("Run: %v", err)
	}

	cycle, err := repo.GetActiveCycle(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetActiveCycle: %v", err)
	}

	incomes, err := repo.ListIncomes(ctx, cycle.ID, 10, 0)
	if err != nil {
		t.Fatalf("ListIncomes: %v", err)
	}
	if len(incomes) != 2 {
		t.Fatalf("materialized %d incomes, want 2 (disabled entry skipped)", len(incomes))
	}
	var totalIncome int64
	for _, in := range incomes {
		if !in.IsRecurrent {
			t.Errorf("income %q should be flagged recurrent", in.Description)
		}
		if in.RecurrentSourceID == 0 {
			t.Errorf("income %q missing template reference", in.Description)
		}
		totalIncome += in.Amount.Cents
	}
	if totalIncome != 4100000 {
		t.Errorf("total income = %d cents, want 4100000", totalIncome)
	}

	expenses, err := repo.ListExpenses(ctx, cycle.ID, 10, 0)
	if err != nil {
		t.Fatalf("ListExpenses: %v", err)
	}
	if len(expenses) != 1 {
		t.Fatalf("materialized %d expenses, want 1", len(expenses))
	}
	if expenses[0].Source != core.SourceRecurrent {
		t.Errorf("expense source = %q, want %q", expenses[0].Source, core.SourceRecurrent)
	}

	savings, err := repo.ListSavings(ctx, cycle.ID, 10, 0)
	if err != nil {
		t.Fatalf("ListSavings: %v", err)
	}
	if len(savings) != 1 || savings[0].SavingTypeID != st.ID {
		t.Fatalf("materialized savings = %+v, want one entry for type %d", savings, st.ID)
	}
	if savings[0].MovementType != core.MovementIncome {
		t.Errorf("materialized saving movement = %q, want income", savings[0].MovementType)
	}

	budgets, err := repo.ListBudgets(ctx, cycle.ID, 10, 0)
	if err != nil {
		t.Fatalf("ListBudgets: %v", err)
	}
	if len(budgets) != 1 {
		t.Fatalf("materialized %d budgets, want 1", len(budgets))
	}

	// All four flags flipped
	cycle, err = repo.GetActiveCycle(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetActiveCycle: %v", err)
	}
	if !cycle.RecurrentIncomesCreated || !cycle.RecurrentExpensesCreated ||
		!cycle.RecurrentSavingsCreated || !cycle.RecurrentBudgetsCreated {
		t.Errorf("cycle flags not all set: %+v", cycle)
	}
}

func TestMaterializer_RunIsIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	user := createTestUser(t, repo, "idem@example.com")

	if _, err := repo.CreateRecurrentIncome(ctx, core.RecurrentIncome{
		UserID: user.ID, Description: "Salary", Amount: core.Money{Cents: 250000}, Enabled: true,
	}); err != nil {
		t.Fatalf("CreateRecurrentIncome: %v", err)
	}

	now := time.Date(2024, 6, 1, 6, 0, 0, 0, time.UTC)
	runner := NewRunner(repo)
	for i := 0; i < 3; i++ {
		if err := runner.Run(ctx, now); err != nil {
			t.Fatalf("Run #%d: %v", i+1, err)
		}
	}

	cycle, err := repo.GetActiveCycle(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetActiveCycle: %v", err)
	}
	incomes, err := repo.ListIncomes(ctx, cycle.ID, 10, 0)
	if err != nil {
		t.Fatalf("ListIncomes: %v", err)
	}
	if len(incomes) != 1 {
		t.Errorf("repeated runs produced %d incomes, want 1", len(incomes))
	}
}

func TestMaterializer_RunReturnsLandedCount(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	user := createTestUser(t, repo, "count@example.com")
	cycles := NewCycleService(repo)

	if _, err := repo.CreateRecurrentIncome(ctx, core.RecurrentIncome{
		UserID: user.ID, Description: "Salary", Amount: core.Money{Cents: 100000}, Enabled: true,
	}); err != nil {
		t.Fatalf("CreateRecurrentIncome: %v", err)
	}
	if _, err := repo.CreateRecurrentBudget(ctx, core.RecurrentBudget{
		UserID: user.ID, Description: "Groceries", Amount: core.Money{Cents: 50000}, Enabled: true,
	}); err != nil {
		t.Fatalf("CreateRecurrentBudget: %v", err)
	}

	now := time.Date(2024, 10, 1, 6, 0, 0, 0, time.UTC)
	if _, err := cycles.EnsureCurrentCycle(ctx, now, user.ID); err != nil {
		t.Fatalf("EnsureCurrentCycle: %v", err)
	}

	m := NewMaterializer(repo)
	n, err := m.Run(ctx, now)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n != 2 {
		t.Errorf("first run landed = %d, want 2", n)
	}

	// Flag-gated repeat lands nothing, so the count stays honest
	n, err = m.Run(ctx, now)
	if err != nil {
		t.Fatalf("Run (repeat): %v", err)
	}
	if n != 0 {
		t.Errorf("repeat run landed = %d, want 0", n)
	}
}

func TestMaterializer_TemplateAddedMidCycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	user := createTestUser(t, repo, "mid@example.com")
	runner := NewRunner(repo)

	now := time.Date(2024, 7, 1, 6, 0, 0, 0, time.UTC)
	if err := runner.Run(ctx, now); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// A template created after the cycle was processed waits for next month
	if _, err := repo.CreateRecurrentIncome(ctx, core.RecurrentIncome{
		UserID: user.ID, Description: "New salary", Amount: core.Money{Cents: 300000}, Enabled: true,
	}); err != nil {
		t.Fatalf("CreateRecurrentIncome: %v", err)
	}
	if err := runner.Run(ctx, now.Add(24*time.Hour)); err != nil {
		t.Fatalf("Run (mid-cycle): %v", err)
	}

	cycle, err := repo.GetActiveCycle(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetActiveCycle: %v", err)
	}
	incomes, err := repo.ListIncomes(ctx, cycle.ID, 10, 0)
	if err != nil {
		t.Fatalf("ListIncomes: %v", err)
	}
	if len(incomes) != 0 {
		t.Errorf("mid-cycle template materialized into flagged cycle: %d incomes", len(incomes))
	}

	// Next month it shows up
	august := time.Date(2024, 8, 1, 6, 0, 0, 0, time.UTC)
	if err := runner.Run(ctx, august); err != nil {
		t.Fatalf("Run (august): %v", err)
	}
	cycle, err = repo.GetActiveCycle(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetActiveCycle: %v", err)
	}
	incomes, err = repo.ListIncomes(ctx, cycle.ID, 10, 0)
	if err != nil {
		t.Fatalf("ListIncomes: %v", err)
	}
	if len(incomes) != 1 {
		t.Errorf("august cycle has %d incomes, want 1", len(incomes))
	}
}

func TestListCyclesPendingMaterialization_SkipsInactive(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	user := createTestUser(t, repo, "pending@example.com")
	svc := NewCycleService(repo)

	// January cycle never materialized, then February replaces it
	if _, err := svc.EnsureCurrentCycle(ctx, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), user.ID); err != nil {
		t.Fatalf("EnsureCurrentCycle: %v", err)
	}
	if _, err := svc.EnsureCurrentCycle(ctx, time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), user.ID); err != nil {
		t.Fatalf("EnsureCurrentCycle: %v", err)
	}

	pending, err := repo.ListCyclesPendingMaterialization(ctx, storage.KindIncomes)
	if err != nil {
		t.Fatalf("ListCyclesPendingMaterialization: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("pending cycles = %d, want 1 (inactive january excluded)", len(pending))
	}
	if pending[0].Description != "February, 2024" {
		t.Errorf("pending cycle = %q, want February", pending[0].Description)
	}
}
