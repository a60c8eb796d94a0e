package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/Jairo0120/expenses-tracker-api/internal/config"
	applog "github.com/Jairo0120/expenses-tracker-api/internal/log"
	"github.com/Jairo0120/expenses-tracker-api/internal/report"
	"github.com/Jairo0120/expenses-tracker-api/internal/services"
	"github.com/Jairo0120/expenses-tracker-api/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentScheduler)
	applog.SetDefault(logger)

	logger.Info("Starting cycle-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	runner := services.NewRunner(repo)

	var reporter *report.Reporter
	if cfg.ReportEnabled() {
		reporter, err = report.NewReporter(context.Background(), cfg)
		if err != nil {
			logger.Error("Failed to initialize cycle report sink", "error", err)
			os.Exit(1)
		}
		logger.Info("Cycle report sink initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("Cycle report disabled - no spreadsheet configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runOnce := func() {
		runCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
		defer cancel()

		if err := runner.Run(runCtx, time.Now()); err != nil {
			slog.ErrorContext(runCtx, "Rollover run failed", "error", err)
			return
		}
		if reporter != nil {
			publishReports(runCtx, repo, reporter)
		}
	}

	// Catch up immediately on startup, then follow the schedule.
	logger.Info("Running initial rollover...")
	runOnce()

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.RolloverCron, runOnce); err != nil {
		logger.Error("Failed to schedule rollover", "error", err, "cron", cfg.RolloverCron)
		os.Exit(1)
	}
	scheduler.Start()
	logger.Info("Rollover scheduled", "cron", cfg.RolloverCron)

	<-ctx.Done()
	logger.Info("Shutdown signal received")

	stopCtx := scheduler.Stop()
	select {
	case <-stopCtx.Done():
		logger.Info("Cycle-worker shutdown complete")
	case <-time.After(30 * time.Second):
		logger.Warn("Shutdown timeout reached")
	}
}

// publishReports appends one summary row per active user's current cycle.
func publishReports(ctx context.Context, repo *storage.Repository, reporter *report.Reporter) {
	users, err := repo.ListActiveUsers(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list users for reporting", "error", err)
		return
	}

	for _, user := range users {
		cycle, err := repo.GetActiveCycle(ctx, user.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to load active cycle for report",
				"user_id", user.ID, "error", err)
			continue
		}
		status, err := repo.GetCycleStatus(ctx, cycle.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to aggregate cycle for report",
				"user_id", user.ID, "cycle_id", cycle.ID, "error", err)
			continue
		}
		if err := reporter.AppendCycleStatus(ctx, user, cycle, status); err != nil {
			slog.ErrorContext(ctx, "Failed to append cycle report",
				"user_id", user.ID, "cycle_id", cycle.ID, "error", err)
		}
	}
}
