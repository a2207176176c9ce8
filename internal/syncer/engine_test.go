package syncer_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/filmoteka/filmoteka/internal/catalog"
	"github.com/filmoteka/filmoteka/internal/syncer"
	apperrors "github.com/filmoteka/filmoteka/pkg/errors"
	"github.com/filmoteka/filmoteka/pkg/events"
	"github.com/filmoteka/filmoteka/pkg/logger"
)

type fakeSource struct {
	rows [][]string
	err  error
}

func (f *fakeSource) Rows(ctx context.Context, sheet string) ([][]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

func row(title, genres string) []string {
	return []string{title, "description of " + title, "2010", "8.8", genres, "https://example.com/trailer"}
}

func newTestEngine(t *testing.T, source syncer.RowSource) (*syncer.Engine, *catalog.Store, *gorm.DB) {
	t.Helper()
	db := catalog.NewTestDB(t)
	store := catalog.NewStore(db)
	log := logger.NewNop()
	return syncer.New(store, source, events.NewBus(log), log), store, db
}

func TestRun_AddsMoviesAndGenres(t *testing.T) {
	source := &fakeSource{rows: [][]string{
		row("Inception", "Sci-Fi, Thriller"),
		row("The Matrix", "Sci-Fi"),
	}}
	engine, store, _ := newTestEngine(t, source)

	report, err := engine.Run(context.Background(), "Movies")
	require.NoError(t, err)

	assert.Equal(t, syncer.StatusCompleted, report.Status)
	assert.Equal(t, 2, report.MoviesAdded)
	assert.Equal(t, 0, report.MoviesUpdated)
	assert.ElementsMatch(t, []string{"Sci-Fi", "Thriller"}, report.GenresAdded)

	movie, err := store.FindMovieByTitle(context.Background(), "Inception")
	require.NoError(t, err)
	assert.Equal(t, 2010, movie.Year)
	assert.Len(t, movie.Genres, 2)
}

func TestRun_IdempotentSecondRun(t *testing.T) {
	source := &fakeSource{rows: [][]string{
		row("Inception", "Sci-Fi, Thriller"),
		row("The Matrix", "Sci-Fi"),
	}}
	engine, store, _ := newTestEngine(t, source)
	ctx := context.Background()

	first, err := engine.Run(ctx, "Movies")
	require.NoError(t, err)
	assert.Equal(t, 2, first.MoviesAdded)

	second, err := engine.Run(ctx, "Movies")
	require.NoError(t, err)
	assert.Equal(t, syncer.StatusCompleted, second.Status)
	assert.Equal(t, 0, second.MoviesAdded)
	assert.Equal(t, 2, second.MoviesUpdated)
	assert.Empty(t, second.GenresAdded)

	movies, err := store.ListMovies(ctx)
	require.NoError(t, err)
	assert.Len(t, movies, 2)

	genres, err := store.ListGenres(ctx)
	require.NoError(t, err)
	assert.Len(t, genres, 2)
}

func TestRun_UpsertByTitleKeepsLatestRating(t *testing.T) {
	engine, store, _ := newTestEngine(t, &fakeSource{rows: [][]string{
		{"Inception", "desc", "2010", "8.8", "Sci-Fi", "https://example.com/t"},
	}})
	ctx := context.Background()

	_, err := engine.Run(ctx, "Movies")
	require.NoError(t, err)

	engine = syncer.New(store, &fakeSource{rows: [][]string{
		{"Inception", "desc", "2010", "9.1", "Sci-Fi", "https://example.com/t"},
	}}, events.NewBus(logger.NewNop()), logger.NewNop())

	_, err = engine.Run(ctx, "Movies")
	require.NoError(t, err)

	movies, err := store.ListMovies(ctx)
	require.NoError(t, err)
	require.Len(t, movies, 1)
	assert.InDelta(t, 9.1, movies[0].Rating, 0.001)
}

func TestRun_GenreDeduplicatedAcrossRows(t *testing.T) {
	source := &fakeSource{rows: [][]string{
		row("Inception", "  Sci-Fi , Thriller"),
		row("The Matrix", "Sci-Fi,"),
	}}
	engine, store, _ := newTestEngine(t, source)
	ctx := context.Background()

	_, err := engine.Run(ctx, "Movies")
	require.NoError(t, err)

	genres, err := store.ListGenres(ctx)
	require.NoError(t, err)
	names := make([]string, len(genres))
	for i, g := range genres {
		names[i] = g.Name
	}
	assert.ElementsMatch(t, []string{"Sci-Fi", "Thriller"}, names)

	scifi, err := store.FindGenreByName(ctx, "Sci-Fi")
	require.NoError(t, err)
	linked, err := store.MoviesByGenre(ctx, scifi.ID)
	require.NoError(t, err)
	assert.Len(t, linked, 2)
}

func TestRun_GenreDeduplicatedWithinRow(t *testing.T) {
	engine, store, _ := newTestEngine(t, &fakeSource{rows: [][]string{
		row("Inception", "Drama, Drama"),
	}})
	ctx := context.Background()

	_, err := engine.Run(ctx, "Movies")
	require.NoError(t, err)

	movie, err := store.FindMovieByTitle(ctx, "Inception")
	require.NoError(t, err)
	assert.Len(t, movie.Genres, 1)
}

func TestRun_GenreSetFullyReplacedOnResync(t *testing.T) {
	engine, store, _ := newTestEngine(t, &fakeSource{rows: [][]string{
		row("Inception", "Action, Drama"),
	}})
	ctx := context.Background()

	_, err := engine.Run(ctx, "Movies")
	require.NoError(t, err)

	engine = syncer.New(store, &fakeSource{rows: [][]string{
		row("Inception", "Comedy"),
	}}, events.NewBus(logger.NewNop()), logger.NewNop())

	_, err = engine.Run(ctx, "Movies")
	require.NoError(t, err)

	movie, err := store.FindMovieByTitle(ctx, "Inception")
	require.NoError(t, err)
	require.Len(t, movie.Genres, 1)
	assert.Equal(t, "Comedy", movie.Genres[0].Name)
}

func TestRun_ShortRowSkippedNeighborsApplied(t *testing.T) {
	source := &fakeSource{rows: [][]string{
		row("Inception", "Sci-Fi"),
		{"Broken", "only", "four", "fields"},
		row("The Matrix", "Sci-Fi"),
	}}
	engine, store, _ := newTestEngine(t, source)
	ctx := context.Background()

	report, err := engine.Run(ctx, "Movies")
	require.NoError(t, err)

	assert.Equal(t, syncer.StatusCompleted, report.Status)
	assert.Equal(t, 2, report.MoviesAdded)
	assert.Equal(t, 1, report.RowsSkipped)

	movies, err := store.ListMovies(ctx)
	require.NoError(t, err)
	assert.Len(t, movies, 2)

	skipped := report.Outcomes[1]
	assert.Equal(t, syncer.RowSkipped, skipped.Kind)
	assert.Equal(t, 3, skipped.Row)
	assert.NotEmpty(t, skipped.Reason)
}

func TestRun_InvalidNumericsSkipped(t *testing.T) {
	source := &fakeSource{rows: [][]string{
		{"Bad Year", "desc", "N/A", "8.8", "Drama", "https://example.com/t"},
		{"Bad Rating", "desc", "2010", "high", "Drama", "https://example.com/t"},
		row("Inception", "Drama"),
	}}
	engine, store, _ := newTestEngine(t, source)
	ctx := context.Background()

	report, err := engine.Run(ctx, "Movies")
	require.NoError(t, err)

	assert.Equal(t, 2, report.RowsSkipped)
	assert.Equal(t, 1, report.MoviesAdded)

	movies, err := store.ListMovies(ctx)
	require.NoError(t, err)
	require.Len(t, movies, 1)
	assert.Equal(t, "Inception", movies[0].Title)
}

func TestRun_EmptySourceIsNoOp(t *testing.T) {
	engine, store, _ := newTestEngine(t, &fakeSource{rows: nil})
	ctx := context.Background()

	report, err := engine.Run(ctx, "Movies")
	require.NoError(t, err)

	assert.Equal(t, syncer.StatusNoOp, report.Status)
	assert.Empty(t, report.Outcomes)

	movies, err := store.ListMovies(ctx)
	require.NoError(t, err)
	assert.Empty(t, movies)
}

func TestRun_MissingSheetAbortsBeforeWrite(t *testing.T) {
	source := &fakeSource{err: fmt.Errorf("%w: %q", syncer.ErrSheetNotFound, "Nope")}
	engine, store, _ := newTestEngine(t, source)
	ctx := context.Background()

	report, err := engine.Run(ctx, "Nope")
	require.Error(t, err)

	assert.Equal(t, syncer.StatusAbortedBeforeWrite, report.Status)
	assert.True(t, apperrors.IsUnavailable(err))

	movies, err := store.ListMovies(ctx)
	require.NoError(t, err)
	assert.Empty(t, movies)
}

func TestRun_WriteFailureRollsBackWholeRun(t *testing.T) {
	source := &fakeSource{rows: [][]string{
		row("Inception", "Sci-Fi"),
	}}
	engine, store, db := newTestEngine(t, source)
	ctx := context.Background()

	// Break genre writes mid-run: the movie insert succeeds inside the
	// transaction but the genre upsert fails, so everything must roll back.
	require.NoError(t, db.Migrator().DropTable(&catalog.Genre{}))

	report, err := engine.Run(ctx, "Movies")
	require.Error(t, err)
	assert.Equal(t, syncer.StatusRolledBack, report.Status)

	movies, err := store.ListMovies(ctx)
	require.NoError(t, err)
	assert.Empty(t, movies)
}

func TestRun_PublishesAuditEvents(t *testing.T) {
	db := catalog.NewTestDB(t)
	store := catalog.NewStore(db)
	log := logger.NewNop()
	bus := events.NewBus(log)

	received := make(map[string]int)
	for _, eventType := range []string{
		events.TypeMovieAdded,
		events.TypeGenreAdded,
		events.TypeRowSkipped,
		events.TypeSyncCompleted,
	} {
		et := eventType
		bus.Subscribe(et, func(ctx context.Context, e events.Event) error {
			received[et]++
			return nil
		})
	}

	source := &fakeSource{rows: [][]string{
		row("Inception", "Sci-Fi"),
		{"Broken", "row"},
	}}
	engine := syncer.New(store, source, bus, log)

	_, err := engine.Run(context.Background(), "Movies")
	require.NoError(t, err)

	assert.Equal(t, 1, received[events.TypeMovieAdded])
	assert.Equal(t, 1, received[events.TypeGenreAdded])
	assert.Equal(t, 1, received[events.TypeRowSkipped])
	assert.Equal(t, 1, received[events.TypeSyncCompleted])
}
