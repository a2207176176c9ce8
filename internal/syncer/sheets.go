package syncer

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/filmoteka/filmoteka/internal/config"
)

// columnRange is the fixed catalog layout: title, description, year, rating,
// genres, trailer URL. Row 1 is the header, data starts at A2.
const columnRange = "A2:F"

// SheetsSource reads rows from a Google Sheets spreadsheet using a service
// account with read-only scope.
type SheetsSource struct {
	svc           *sheets.Service
	spreadsheetID string
}

// NewSheetsSource creates a source for the configured spreadsheet.
func NewSheetsSource(ctx context.Context, cfg config.SheetsConfig) (*SheetsSource, error) {
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(cfg.CredentialsFile),
		option.WithScopes(sheets.SpreadsheetsReadonlyScope),
	)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &SheetsSource{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
	}, nil
}

// Rows fetches the data rows of the named sheet. It verifies the sheet exists
// before reading so a misconfigured sheet name fails cleanly instead of
// returning an opaque range error.
func (s *SheetsSource) Rows(ctx context.Context, sheet string) ([][]string, error) {
	meta, err := s.svc.Spreadsheets.Get(s.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get spreadsheet %s: %w", s.spreadsheetID, err)
	}

	found := false
	for _, sh := range meta.Sheets {
		if sh.Properties != nil && sh.Properties.Title == sheet {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, sheet)
	}

	resp, err := s.svc.Spreadsheets.Values.
		Get(s.spreadsheetID, fmt.Sprintf("'%s'!%s", sheet, columnRange)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("get sheet values: %w", err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, 0, len(raw))
		for _, cell := range raw {
			row = append(row, fmt.Sprint(cell))
		}
		rows = append(rows, row)
	}
	return rows, nil
}
