// Package services holds the business logic between the HTTP/worker layers
// and storage: cycle rollover, recurrence materialization, aggregation and
// saving creation.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Jairo0120/expenses-tracker-api/internal/core"
	"github.com/Jairo0120/expenses-tracker-api/internal/storage"
)

// CycleService owns cycle lifecycle and aggregation.
type CycleService struct {
	repo *storage.Repository
}

func NewCycleService(repo *storage.Repository) *CycleService {
	return &CycleService{repo: repo}
}

// EnsureCurrentCycle makes sure every targeted user has a cycle covering
// "now". With no userIDs it walks all active users; with userIDs it only
// touches those. Users that already have a current cycle (end_date >= now,
// boundary day included) are left alone. Each user is one transaction; a
// failing user is logged and skipped so the rest of the batch proceeds.
// Returns the number of cycles created.
func (s *CycleService) EnsureCurrentCycle(ctx context.Context, now time.Time, userIDs ...int64) (int, error) {
	if len(userIDs) == 0 {
		users, err := s.repo.ListActiveUsers(ctx)
		if err != nil {
			return 0, fmt.Errorf("ensure current cycle: %w", err)
		}
		for _, u := range users {
			userIDs = append(userIDs, u.ID)
		}
	}

	created := 0
	for _, userID := range userIDs {
		ok, err := s.ensureForUser(ctx, now, userID)
		if err != nil {
			slog.ErrorContext(ctx, "Cycle rollover failed for user",
				"user_id", userID, "error", err)
			continue
		}
		if ok {
			created++
		}
	}
	return created, nil
}

func (s *CycleService) ensureForUser(ctx context.Context, now time.Time, userID int64) (bool, error) {
	current, err := s.repo.HasCurrentCycle(ctx, userID, now)
	if err != nil {
		return false, err
	}
	if current {
		return false, nil
	}

	cycle, err := s.repo.RolloverCycle(ctx, core.Cycle{
		UserID:      userID,
		Description: core.CycleDescription(now),
		StartDate:   core.MonthStart(now),
		EndDate:     core.MonthEnd(now),
	})
	if err != nil {
		return false, err
	}

	slog.InfoContext(ctx, "Cycle created",
		"user_id", userID,
		"cycle_id", cycle.ID,
		"description", cycle.Description,
		"start_date", cycle.StartDate.Format("2006-01-02"),
		"end_date", cycle.EndDate.Format("2006-01-02"))
	return true, nil
}

// ResolveCycle returns the cycle the request targets: the given one when a
// cycleID is provided (it must belong to the user), otherwise the user's
// active cycle. Missing or foreign cycles surface as core.ErrNotFound.
func (s *CycleService) ResolveCycle(ctx context.Context, userID, cycleID int64) (core.Cycle, error) {
	if cycleID != 0 {
		return s.repo.GetUserCycle(ctx, userID, cycleID)
	}
	return s.repo.GetActiveCycle(ctx, userID)
}

// Status computes the summary totals for the resolved cycle.
func (s *CycleService) Status(ctx context.Context, userID, cycleID int64) (core.CycleStatus, error) {
	cycle, err := s.ResolveCycle(ctx, userID, cycleID)
	if err != nil {
		return core.CycleStatus{}, err
	}
	return s.repo.GetCycleStatus(ctx, cycle.ID)
}
