package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Jairo0120/expenses-tracker-api/internal/core"
)

func TestEnsureCurrentCycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	svc := NewCycleService(repo)
	user := createTestUser(t, repo, "cycle@example.com")

	jan := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

	created, err := svc.EnsureCurrentCycle(ctx, jan)
	if err != nil {
		t.Fatalf("EnsureCurrentCycle: %v", err)
	}
	if created != 1 {
		t.Fatalf("created = %d, want 1", created)
	}

	cycle, err := repo.GetActiveCycle(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetActiveCycle: %v", err)
	}
	if cycle.Description != "January, 2024" {
		t.Errorf("description = %q, want %q", cycle.Description, "January, 2024")
	}
	if !cycle.StartDate.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start date = %v", cycle.StartDate)
	}

	// A second run on the same day must be a no-op
	created, err = svc.EnsureCurrentCycle(ctx, jan)
	if err != nil {
		t.Fatalf("EnsureCurrentCycle (repeat): %v", err)
	}
	if created != 0 {
		t.Errorf("repeat run created %d cycles, want 0", created)
	}

	// The last day of the month still counts as current
	created, err = svc.EnsureCurrentCycle(ctx, time.Date(2024, 1, 31, 8, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("EnsureCurrentCycle (boundary): %v", err)
	}
	if created != 0 {
		t.Errorf("boundary run created %d cycles, want 0", created)
	}

	// Once the month turns, a new cycle replaces the old one
	created, err = svc.EnsureCurrentCycle(ctx, time.Date(2024, 2, 1, 0, 30, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("EnsureCurrentCycle (february): %v", err)
	}
	if created != 1 {
		t.Fatalf("february run created %d cycles, want 1", created)
	}

	next, err := repo.GetActiveCycle(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetActiveCycle: %v", err)
	}
	if next.Description != "February, 2024" {
		t.Errorf("description = %q, want %q", next.Description, "February, 2024")
	}
	if next.ID == cycle.ID {
		t.Error("expected a fresh cycle after expiry")
	}

	old, err := repo.GetUserCycle(ctx, user.ID, cycle.ID)
	if err != nil {
		t.Fatalf("GetUserCycle: %v", err)
	}
	if old.IsActive {
		t.Error("january cycle should be inactive after rollover")
	}
}

func TestEnsureCurrentCycle_SkipsInactiveUsers(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	svc := NewCycleService(repo)

	createTestUser(t, repo, "active@example.com")
	inactive := createTestUser(t, repo, "inactive@example.com")

	if err := repo.DeactivateUser(ctx, inactive.ID); err != nil {
		t.Fatalf("DeactivateUser: %v", err)
	}

	created, err := svc.EnsureCurrentCycle(ctx, time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("EnsureCurrentCycle: %v", err)
	}
	if created != 1 {
		t.Errorf("created = %d, want 1 (inactive user skipped)", created)
	}

	if _, err := repo.GetActiveCycle(ctx, inactive.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("inactive user should have no cycle, got %v", err)
	}
}

func TestResolveCycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	svc := NewCycleService(repo)

	owner := createTestUser(t, repo, "owner@example.com")
	stranger := createTestUser(t, repo, "stranger@example.com")

	if _, err := svc.EnsureCurrentCycle(ctx, time.Now(), owner.ID); err != nil {
		t.Fatalf("EnsureCurrentCycle: %v", err)
	}
	cycle, err := repo.GetActiveCycle(ctx, owner.ID)
	if err != nil {
		t.Fatalf("GetActiveCycle: %v", err)
	}

	// Explicit id, owned
	got, err := svc.ResolveCycle(ctx, owner.ID, cycle.ID)
	if err != nil {
		t.Fatalf("ResolveCycle: %v", err)
	}
	if got.ID != cycle.ID {
		t.Errorf("resolved cycle %d, want %d", got.ID, cycle.ID)
	}

	// Someone else's cycle id must not resolve
	if _, err := svc.ResolveCycle(ctx, stranger.ID, cycle.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound for foreign cycle, got %v", err)
	}

	// No id falls back to the active cycle
	got, err = svc.ResolveCycle(ctx, owner.ID, 0)
	if err != nil {
		t.Fatalf("ResolveCycle (active): %v", err)
	}
	if got.ID != cycle.ID {
		t.Errorf("active fallback resolved %d, want %d", got.ID, cycle.ID)
	}
}
