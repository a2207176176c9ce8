package syncer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/filmoteka/filmoteka/internal/catalog"
	apperrors "github.com/filmoteka/filmoteka/pkg/errors"
	"github.com/filmoteka/filmoteka/pkg/events"
	"github.com/filmoteka/filmoteka/pkg/logger"
)

// Engine reconciles the catalog against the external spreadsheet snapshot.
// One Run applies all validated rows in a single transaction: upsert movies
// by title, upsert genres by name, replace each movie's genre set with
// exactly the genres its row lists.
//
// Runs must be serialized by the caller; the engine is not designed for
// concurrent writers racing on the same title or genre keys.
type Engine struct {
	store  *catalog.Store
	source RowSource
	bus    *events.Bus
	log    logger.Logger
}

// New creates a sync engine.
func New(store *catalog.Store, source RowSource, bus *events.Bus, log logger.Logger) *Engine {
	return &Engine{
		store:  store,
		source: source,
		bus:    bus,
		log:    log,
	}
}

// movieRow is one validated source row.
type movieRow struct {
	row    int
	attrs  catalog.MovieAttrs
	genres []string
}

// Run executes one sync against the named sheet. The returned report is
// always non-nil and carries the run's terminal status and per-row outcomes.
func (e *Engine) Run(ctx context.Context, sheet string) (*Report, error) {
	report := &Report{
		RunID:   uuid.New(),
		Sheet:   sheet,
		Started: time.Now().UTC(),
	}
	defer func() {
		report.Finished = time.Now().UTC()
	}()

	log := e.log.With(logger.String("run_id", report.RunID.String()), logger.String("sheet", sheet))

	rows, err := e.source.Rows(ctx, sheet)
	if err != nil {
		report.Status = StatusAbortedBeforeWrite
		return report, apperrors.Wrap(apperrors.ErrorTypeUnavailable, "fetch sheet rows", err)
	}

	if len(rows) == 0 {
		report.Status = StatusNoOp
		log.Info("no data rows in sheet, catalog unchanged")
		return report, nil
	}

	log.Info("fetched sheet rows", logger.Int("rows", len(rows)))

	// Validate every row up front. A malformed row is skipped and logged;
	// it never fails the run.
	parsed := make([]movieRow, 0, len(rows))
	for i, row := range rows {
		rowNum := i + 2 // data starts at spreadsheet row 2
		mr, err := parseRow(rowNum, row)
		if err != nil {
			reason := reasonOf(err)
			report.record(RowOutcome{
				Row:    rowNum,
				Title:  titleOf(row),
				Kind:   RowSkipped,
				Reason: reason,
			})
			log.Warn("skipping row",
				logger.Int("row", rowNum),
				logger.String("reason", reason))
			continue
		}
		parsed = append(parsed, mr)
	}

	// Apply all validated rows in one transaction. Genre identities are
	// cached per run so a name resolves to exactly one row regardless of how
	// many movies list it.
	var applied []RowOutcome
	var genresAdded []string
	err = e.store.WithTx(ctx, func(tx *catalog.Store) error {
		genreCache := make(map[string]catalog.Genre)
		for _, mr := range parsed {
			movie, created, err := tx.UpsertMovie(ctx, mr.attrs)
			if err != nil {
				return fmt.Errorf("upsert movie %q: %w", mr.attrs.Title, err)
			}

			genres := make([]catalog.Genre, 0, len(mr.genres))
			for _, name := range mr.genres {
				genre, ok := genreCache[name]
				if !ok {
					found, genreCreated, err := tx.UpsertGenre(ctx, name)
					if err != nil {
						return fmt.Errorf("upsert genre %q: %w", name, err)
					}
					genre = *found
					genreCache[name] = genre
					if genreCreated {
						genresAdded = append(genresAdded, name)
					}
				}
				genres = append(genres, genre)
			}

			if err := tx.SetMovieGenres(ctx, movie, genres); err != nil {
				return fmt.Errorf("set genres for %q: %w", mr.attrs.Title, err)
			}

			kind := RowUpdated
			if created {
				kind = RowAdded
			}
			applied = append(applied, RowOutcome{Row: mr.row, Title: mr.attrs.Title, Kind: kind})
		}
		return nil
	})
	if err != nil {
		report.Status = StatusRolledBack
		log.Error("sync transaction rolled back", logger.Error(err))
		return report, err
	}

	for _, outcome := range applied {
		report.record(outcome)
	}
	report.GenresAdded = genresAdded
	sort.Slice(report.Outcomes, func(i, j int) bool {
		return report.Outcomes[i].Row < report.Outcomes[j].Row
	})
	report.Status = StatusCompleted

	e.publish(ctx, report)

	log.Info("sync completed",
		logger.Int("movies_added", report.MoviesAdded),
		logger.Int("movies_updated", report.MoviesUpdated),
		logger.Int("genres_added", len(report.GenresAdded)),
		logger.Int("rows_skipped", report.RowsSkipped))

	return report, nil
}

// publish emits the run's audit events after a successful commit.
func (e *Engine) publish(ctx context.Context, report *Report) {
	runID := report.RunID.String()

	for _, name := range report.GenresAdded {
		e.bus.Publish(ctx, events.NewEvent(events.TypeGenreAdded, map[string]interface{}{
			"run_id": runID,
			"name":   name,
		}))
	}

	for _, outcome := range report.Outcomes {
		data := map[string]interface{}{
			"run_id": runID,
			"row":    outcome.Row,
			"title":  outcome.Title,
		}
		switch outcome.Kind {
		case RowAdded:
			e.bus.Publish(ctx, events.NewEvent(events.TypeMovieAdded, data))
		case RowUpdated:
			e.bus.Publish(ctx, events.NewEvent(events.TypeMovieUpdated, data))
		case RowSkipped:
			data["reason"] = outcome.Reason
			e.bus.Publish(ctx, events.NewEvent(events.TypeRowSkipped, data))
		}
	}

	e.bus.Publish(ctx, events.NewEvent(events.TypeSyncCompleted, map[string]interface{}{
		"run_id":         runID,
		"sheet":          report.Sheet,
		"movies_added":   report.MoviesAdded,
		"movies_updated": report.MoviesUpdated,
		"rows_skipped":   report.RowsSkipped,
	}))
}

// parseRow validates one source row: six ordered fields with a parseable
// integer year and floating-point rating.
func parseRow(num int, row []string) (movieRow, error) {
	if len(row) < 6 {
		return movieRow{}, apperrors.Validation(fmt.Sprintf("expected 6 fields, got %d", len(row)))
	}

	year, err := strconv.Atoi(strings.TrimSpace(row[2]))
	if err != nil {
		return movieRow{}, apperrors.Validation(fmt.Sprintf("invalid year %q", row[2]))
	}

	rating, err := strconv.ParseFloat(strings.TrimSpace(row[3]), 64)
	if err != nil {
		return movieRow{}, apperrors.Validation(fmt.Sprintf("invalid rating %q", row[3]))
	}

	return movieRow{
		row: num,
		attrs: catalog.MovieAttrs{
			Title:       row[0],
			Description: row[1],
			Year:        year,
			Rating:      rating,
			TrailerURL:  row[5],
		},
		genres: splitGenres(row[4]),
	}, nil
}

// splitGenres normalizes a comma-separated genre list: tokens trimmed,
// empties dropped, duplicates within the row collapsed.
func splitGenres(s string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, token := range strings.Split(s, ",") {
		name := strings.TrimSpace(token)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// reasonOf extracts the human-readable message from a validation error.
func reasonOf(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

func titleOf(row []string) string {
	if len(row) > 0 {
		return row[0]
	}
	return ""
}
