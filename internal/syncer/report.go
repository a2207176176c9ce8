package syncer

import (
	"time"

	"github.com/google/uuid"
)

// RunStatus is the terminal state of a sync run.
type RunStatus string

const (
	// StatusCompleted means all validated rows were applied and committed.
	StatusCompleted RunStatus = "completed"
	// StatusNoOp means the source returned zero data rows; nothing changed.
	StatusNoOp RunStatus = "noop"
	// StatusAbortedBeforeWrite means the source was unavailable or the sheet
	// was missing; the catalog was never touched.
	StatusAbortedBeforeWrite RunStatus = "aborted_before_write"
	// StatusRolledBack means the run transaction failed to commit and every
	// write was undone.
	StatusRolledBack RunStatus = "rolled_back"
)

// OutcomeKind classifies what happened to one source row.
type OutcomeKind string

const (
	RowAdded   OutcomeKind = "added"
	RowUpdated OutcomeKind = "updated"
	RowSkipped OutcomeKind = "skipped"
)

// RowOutcome is the audit record for one source row. Row numbers are
// spreadsheet row numbers (data starts at row 2).
type RowOutcome struct {
	Row    int
	Title  string
	Kind   OutcomeKind
	Reason string
}

// Report describes one sync run: its terminal status plus a per-row outcome
// log so a caller can audit the run without re-running it.
type Report struct {
	RunID    uuid.UUID
	Sheet    string
	Status   RunStatus
	Started  time.Time
	Finished time.Time

	Outcomes    []RowOutcome
	GenresAdded []string

	MoviesAdded   int
	MoviesUpdated int
	RowsSkipped   int
}

func (r *Report) record(o RowOutcome) {
	r.Outcomes = append(r.Outcomes, o)
	switch o.Kind {
	case RowAdded:
		r.MoviesAdded++
	case RowUpdated:
		r.MoviesUpdated++
	case RowSkipped:
		r.RowsSkipped++
	}
}
