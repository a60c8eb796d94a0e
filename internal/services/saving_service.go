package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Jairo0120/expenses-tracker-api/internal/core"
	"github.com/Jairo0120/expenses-tracker-api/internal/storage"
)

// SavingService wraps saving creation, which is the one CRUD path with extra
// moving parts: saving-type lookup-or-create and optional template creation.
type SavingService struct {
	repo   *storage.Repository
	cycles *CycleService
}

func NewSavingService(repo *storage.Repository, cycles *CycleService) *SavingService {
	return &SavingService{repo: repo, cycles: cycles}
}

// CreateSaving records an income movement into a saving type, creating the
// type on first use. When makeRecurrent is set, a catalog template is
// created alongside so future cycles materialize the saving automatically.
func (s *SavingService) CreateSaving(ctx context.Context, userID, cycleID int64, description string, amount core.Money, date time.Time, makeRecurrent bool) (core.Saving, error) {
	cycle, err := s.cycles.ResolveCycle(ctx, userID, cycleID)
	if err != nil {
		return core.Saving{}, err
	}

	st, err := s.repo.LookupOrCreateSavingType(ctx, userID, description)
	if err != nil {
		return core.Saving{}, fmt.Errorf("resolve saving type: %w", err)
	}

	if makeRecurrent {
		if _, err := s.repo.CreateRecurrentSaving(ctx, core.RecurrentSaving{
			UserID:       userID,
			SavingTypeID: st.ID,
			Amount:       amount,
			Enabled:      true,
		}); err != nil {
			return core.Saving{}, fmt.Errorf("create recurrent saving: %w", err)
		}
		slog.InfoContext(ctx, "Recurrent saving template created",
			"user_id", userID, "saving_type_id", st.ID)
	}

	saving := core.Saving{
		CycleID:      cycle.ID,
		SavingTypeID: st.ID,
		Amount:       amount,
		Date:         date,
		IsRecurrent:  makeRecurrent,
		MovementType: core.MovementIncome,
	}
	if err := saving.Validate(); err != nil {
		return core.Saving{}, err
	}
	return s.repo.CreateSaving(ctx, saving)
}

// CreateSavingOutcome withdraws from an existing saving type. Unlike
// CreateSaving, an unknown type is NotFound rather than created: you cannot
// take money out of a pot that was never filled.
func (s *SavingService) CreateSavingOutcome(ctx context.Context, userID, cycleID int64, savingType, description string, amount core.Money, date time.Time) (core.Saving, error) {
	cycle, err := s.cycles.ResolveCycle(ctx, userID, cycleID)
	if err != nil {
		return core.Saving{}, err
	}

	st, err := s.repo.GetSavingTypeByKey(ctx, userID, core.NormalizeSavingTypeKey(savingType))
	if err != nil {
		return core.Saving{}, err
	}

	saving := core.Saving{
		CycleID:             cycle.ID,
		SavingTypeID:        st.ID,
		Amount:              amount,
		Date:                date,
		MovementType:        core.MovementOutcome,
		MovementDescription: description,
	}
	if err := saving.Validate(); err != nil {
		return core.Saving{}, err
	}
	return s.repo.CreateSaving(ctx, saving)
}
