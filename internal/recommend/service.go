package recommend

import (
	"context"
	"math/rand/v2"

	"github.com/filmoteka/filmoteka/internal/catalog"
	apperrors "github.com/filmoteka/filmoteka/pkg/errors"
)

// Service picks movies for recommendation. It only consumes the catalog
// store's read API.
type Service struct {
	store *catalog.Store
}

// New creates a recommendation service.
func New(store *catalog.Store) *Service {
	return &Service{store: store}
}

// PickRandom returns a uniformly random movie from the whole catalog.
// It fails with a not found error when the catalog is empty.
func (s *Service) PickRandom(ctx context.Context) (*catalog.Movie, error) {
	movies, err := s.store.ListMovies(ctx)
	if err != nil {
		return nil, err
	}
	if len(movies) == 0 {
		return nil, apperrors.NotFound("catalog has no movies")
	}
	movie := movies[rand.IntN(len(movies))]
	return &movie, nil
}

// PickRandomByGenre returns a uniformly random movie carrying the genre.
// It fails with a not found error when no movie has the genre.
func (s *Service) PickRandomByGenre(ctx context.Context, genreID uint) (*catalog.Movie, error) {
	movies, err := s.store.MoviesByGenre(ctx, genreID)
	if err != nil {
		return nil, err
	}
	if len(movies) == 0 {
		return nil, apperrors.NotFound("no movies for genre")
	}
	movie := movies[rand.IntN(len(movies))]
	return &movie, nil
}
