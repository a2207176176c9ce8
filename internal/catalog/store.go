package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	apperrors "github.com/filmoteka/filmoteka/pkg/errors"
)

// Store is the catalog persistence layer. All mutations of movies and genres
// go through it; the sync engine wraps a whole run in WithTx so a failed run
// leaves the catalog untouched.
type Store struct {
	db *gorm.DB
}

// NewStore creates a store over an open catalog database.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// MovieAttrs carries the mutable movie fields for an upsert.
type MovieAttrs struct {
	Title       string
	Description string
	Year        int
	Rating      float64
	TrailerURL  string
}

// WithTx runs fn against a transactional store. The transaction commits when
// fn returns nil and rolls back otherwise. Constraint violations surface as
// conflict errors.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
	if err != nil && apperrors.IsDuplicateKey(err) {
		return apperrors.Wrap(apperrors.ErrorTypeConflict, "catalog constraint violated", err)
	}
	return err
}

// FindMovieByTitle returns the movie with the given title.
func (s *Store) FindMovieByTitle(ctx context.Context, title string) (*Movie, error) {
	var movie Movie
	err := s.db.WithContext(ctx).Preload("Genres").First(&movie, "title = ?", title).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound(fmt.Sprintf("movie %q not found", title))
		}
		return nil, err
	}
	return &movie, nil
}

// FindGenreByName returns the genre with the given name.
func (s *Store) FindGenreByName(ctx context.Context, name string) (*Genre, error) {
	var genre Genre
	err := s.db.WithContext(ctx).First(&genre, "name = ?", name).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound(fmt.Sprintf("genre %q not found", name))
		}
		return nil, err
	}
	return &genre, nil
}

// UpsertMovie creates the movie if no row carries its title, otherwise
// overwrites the mutable fields in place. The second return value reports
// whether a new row was created.
func (s *Store) UpsertMovie(ctx context.Context, attrs MovieAttrs) (*Movie, bool, error) {
	var movie Movie
	err := s.db.WithContext(ctx).First(&movie, "title = ?", attrs.Title).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		movie = Movie{
			Title:       attrs.Title,
			Description: attrs.Description,
			Year:        attrs.Year,
			Rating:      attrs.Rating,
			TrailerURL:  attrs.TrailerURL,
		}
		if err := s.db.WithContext(ctx).Create(&movie).Error; err != nil {
			return nil, false, err
		}
		return &movie, true, nil
	case err != nil:
		return nil, false, err
	}

	// Last write wins: row values replace stored values unconditionally.
	updates := map[string]interface{}{
		"description": attrs.Description,
		"year":        attrs.Year,
		"rating":      attrs.Rating,
		"trailer_url": attrs.TrailerURL,
	}
	if err := s.db.WithContext(ctx).Model(&movie).Updates(updates).Error; err != nil {
		return nil, false, err
	}
	return &movie, false, nil
}

// UpsertGenre returns the genre with the given name, creating it if absent.
// The second return value reports whether a new row was created.
func (s *Store) UpsertGenre(ctx context.Context, name string) (*Genre, bool, error) {
	var genre Genre
	err := s.db.WithContext(ctx).First(&genre, "name = ?", name).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		genre = Genre{Name: name}
		if err := s.db.WithContext(ctx).Create(&genre).Error; err != nil {
			return nil, false, err
		}
		return &genre, true, nil
	case err != nil:
		return nil, false, err
	}
	return &genre, false, nil
}

// SetMovieGenres replaces the movie's genre associations with exactly the
// given set.
func (s *Store) SetMovieGenres(ctx context.Context, movie *Movie, genres []Genre) error {
	assoc := s.db.WithContext(ctx).Model(movie).Association("Genres")
	if len(genres) == 0 {
		return assoc.Clear()
	}
	return assoc.Replace(&genres)
}

// RecordWatch appends a watch record for the user. It fails with a not found
// error, writing nothing, when the movie does not exist.
func (s *Store) RecordWatch(ctx context.Context, userID int64, movieID uint, at time.Time) (*WatchedMovie, error) {
	var movie Movie
	err := s.db.WithContext(ctx).First(&movie, "id = ?", movieID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound(fmt.Sprintf("movie %d not found", movieID))
		}
		return nil, err
	}

	watched := WatchedMovie{
		UserID:    userID,
		MovieID:   movieID,
		WatchedAt: at,
	}
	if err := s.db.WithContext(ctx).Create(&watched).Error; err != nil {
		return nil, err
	}
	return &watched, nil
}

// ListMovies returns all movies with their genres.
func (s *Store) ListMovies(ctx context.Context) ([]Movie, error) {
	var movies []Movie
	if err := s.db.WithContext(ctx).Preload("Genres").Order("title").Find(&movies).Error; err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	return movies, nil
}

// ListGenres returns all genres.
func (s *Store) ListGenres(ctx context.Context) ([]Genre, error) {
	var genres []Genre
	if err := s.db.WithContext(ctx).Order("name").Find(&genres).Error; err != nil {
		return nil, fmt.Errorf("list genres: %w", err)
	}
	return genres, nil
}

// GetGenre returns a genre by ID.
func (s *Store) GetGenre(ctx context.Context, id uint) (*Genre, error) {
	var genre Genre
	err := s.db.WithContext(ctx).First(&genre, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound(fmt.Sprintf("genre %d not found", id))
		}
		return nil, err
	}
	return &genre, nil
}

// MoviesByGenre returns all movies linked to the genre.
func (s *Store) MoviesByGenre(ctx context.Context, genreID uint) ([]Movie, error) {
	var movies []Movie
	err := s.db.WithContext(ctx).
		Preload("Genres").
		Joins("JOIN movie_genres ON movie_genres.movie_id = movies.id").
		Where("movie_genres.genre_id = ?", genreID).
		Order("movies.title").
		Find(&movies).Error
	if err != nil {
		return nil, fmt.Errorf("list movies by genre: %w", err)
	}
	return movies, nil
}

// ListWatchedByUser returns the user's watch history with movies attached.
func (s *Store) ListWatchedByUser(ctx context.Context, userID int64) ([]WatchedMovie, error) {
	var watched []WatchedMovie
	err := s.db.WithContext(ctx).
		Preload("Movie").
		Where("user_id = ?", userID).
		Order("watched_at").
		Find(&watched).Error
	if err != nil {
		return nil, fmt.Errorf("list watched movies: %w", err)
	}
	return watched, nil
}
