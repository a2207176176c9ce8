package recommend_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filmoteka/filmoteka/internal/catalog"
	"github.com/filmoteka/filmoteka/internal/recommend"
	apperrors "github.com/filmoteka/filmoteka/pkg/errors"
)

func seedStore(t *testing.T) (*catalog.Store, *catalog.Genre) {
	t.Helper()
	ctx := context.Background()
	store := catalog.NewStore(catalog.NewTestDB(t))

	scifi, _, err := store.UpsertGenre(ctx, "Sci-Fi")
	require.NoError(t, err)
	comedy, _, err := store.UpsertGenre(ctx, "Comedy")
	require.NoError(t, err)

	for _, title := range []string{"Inception", "The Matrix"} {
		movie, _, err := store.UpsertMovie(ctx, catalog.MovieAttrs{Title: title, Year: 2010, Rating: 8.0})
		require.NoError(t, err)
		require.NoError(t, store.SetMovieGenres(ctx, movie, []catalog.Genre{*scifi}))
	}

	airplane, _, err := store.UpsertMovie(ctx, catalog.MovieAttrs{Title: "Airplane!", Year: 1980, Rating: 7.7})
	require.NoError(t, err)
	require.NoError(t, store.SetMovieGenres(ctx, airplane, []catalog.Genre{*comedy}))

	return store, comedy
}

func TestPickRandom(t *testing.T) {
	store, _ := seedStore(t)
	svc := recommend.New(store)

	movie, err := svc.PickRandom(context.Background())
	require.NoError(t, err)
	assert.Contains(t, []string{"Inception", "The Matrix", "Airplane!"}, movie.Title)
}

func TestPickRandom_EmptyCatalog(t *testing.T) {
	svc := recommend.New(catalog.NewStore(catalog.NewTestDB(t)))

	_, err := svc.PickRandom(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestPickRandomByGenre(t *testing.T) {
	store, comedy := seedStore(t)
	svc := recommend.New(store)

	// Only one comedy is seeded, so the pick is deterministic.
	movie, err := svc.PickRandomByGenre(context.Background(), comedy.ID)
	require.NoError(t, err)
	assert.Equal(t, "Airplane!", movie.Title)
}

func TestPickRandomByGenre_NoMovies(t *testing.T) {
	store, _ := seedStore(t)
	ctx := context.Background()

	empty, _, err := store.UpsertGenre(ctx, "Documentary")
	require.NoError(t, err)

	svc := recommend.New(store)
	_, err = svc.PickRandomByGenre(ctx, empty.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}
