// Package report appends per-cycle summaries to a Google Sheet so users can
// eyeball their history outside the API.
package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"github.com/Jairo0120/expenses-tracker-api/internal/config"
	"github.com/Jairo0120/expenses-tracker-api/internal/core"
)

type Reporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// NewReporter builds a Sheets client from service account credentials.
func NewReporter(ctx context.Context, cfg *config.Config) (*Reporter, error) {
	if cfg.GoogleSpreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}

	var credentialsJSON []byte
	switch {
	case cfg.GoogleCredentialsJSON != "":
		credentialsJSON = []byte(cfg.GoogleCredentialsJSON)
	case cfg.GoogleCredentialsFile != "":
		data, err := os.ReadFile(cfg.GoogleCredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read credentials file: %w", err)
		}
		credentialsJSON = data
	default:
		return nil, errors.New("missing service account credentials")
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	sheetName := cfg.GoogleSheetName
	if sheetName == "" {
		sheetName = "Cycles"
	}

	return &Reporter{
		svc:           svc,
		spreadsheetID: cfg.GoogleSpreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// AppendCycleStatus writes one summary row for the user's cycle.
func (r *Reporter) AppendCycleStatus(ctx context.Context, user core.User, cycle core.Cycle, status core.CycleStatus) error {
	row := []any{
		time.Now().UTC().Format(time.RFC3339),
		user.Email,
		cycle.Description,
		status.TotalIncomes.String(),
		status.TotalExpenses.String(),
		status.TotalRecurrentExpenses.String(),
		status.TotalSavings.String(),
	}

	vr := &gsheet.ValueRange{Values: [][]any{row}}
	_, err := r.svc.Spreadsheets.Values.
		Append(r.spreadsheetID, r.sheetName+"!A:G", vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append cycle row: %w", err)
	}

	slog.InfoContext(ctx, "Cycle summary appended to sheet",
		"user_id", user.ID, "cycle_id", cycle.ID, "sheet", r.sheetName)
	return nil
}
