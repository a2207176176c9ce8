package syncer

import (
	"context"
	"errors"
)

// ErrSheetNotFound is returned by a RowSource when the named sheet does not
// exist in the backing spreadsheet.
var ErrSheetNotFound = errors.New("sheet not found")

// RowSource supplies raw tabular rows for one named sheet. Implementations
// return the data rows only (header excluded), each row an ordered list of
// cell values rendered as strings.
type RowSource interface {
	Rows(ctx context.Context, sheet string) ([][]string, error)
}
