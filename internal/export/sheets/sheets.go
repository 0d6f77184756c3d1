// Package sheets exports settlement summaries to a Google Spreadsheet
// using service account credentials.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"fairshare/internal/export"
	"fairshare/internal/settle"
	"fairshare/internal/snapshot"
)

type Exporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	now           func() time.Time
}

var _ export.SummaryExporter = (*Exporter)(nil)

// Config holds the settings needed to reach the target spreadsheet.
type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsFile string
	CredentialsJSON string
}

// New creates a Sheets exporter from explicit configuration.
func New(ctx context.Context, cfg Config) (*Exporter, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	sheetName := strings.TrimSpace(cfg.SheetName)
	if sheetName == "" {
		sheetName = "Summary"
	}

	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Exporter{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     sheetName,
		now:           time.Now,
	}, nil
}

// newSheetsService initializes a Sheets service from service account
// credentials, preferring inline JSON over a credentials file.
func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	var credentialsJSON []byte

	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		credentialsJSON = []byte(cfg.CredentialsJSON)
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read credentials file: %w", err)
		}
		credentialsJSON = data
	default:
		return nil, errors.New("missing service account credentials")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return service, nil
}

func (e *Exporter) Name() string { return "sheets" }

// Export appends one header row plus one row per settlement transfer
// to the configured sheet. An empty plan still appends the header so
// the spreadsheet records that the group settled.
func (e *Exporter) Export(ctx context.Context, snap snapshot.Snapshot, result settle.Result) error {
	if e.svc == nil {
		return errors.New("sheets service not initialized")
	}

	exportedAt := e.now().UTC().Format(time.RFC3339)

	rows := [][]any{
		{exportedAt, "total", result.TotalSpent, snap.CurrencyCode},
		{exportedAt, "per_person", result.FairShare, snap.CurrencyCode},
	}
	for _, d := range result.Debts {
		rows = append(rows, []any{exportedAt, "transfer", d.Amount, snap.CurrencyCode, d.From, d.To})
	}
	if len(result.Debts) == 0 {
		rows = append(rows, []any{exportedAt, "settled", 0.0, snap.CurrencyCode})
	}

	rng := fmt.Sprintf("%s!A:F", e.sheetName)
	vr := &gsheet.ValueRange{Values: rows}

	_, err := e.svc.Spreadsheets.Values.Append(e.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to sheet %s: %w", e.sheetName, err)
	}

	slog.InfoContext(ctx, "Exported settlement summary to Google Sheets",
		"spreadsheet_id", e.spreadsheetID,
		"sheet", e.sheetName,
		"rows", len(rows))

	return nil
}
