package catalog

import (
	"time"
)

// Movie is a catalog entry. Title is the natural key: sync runs upsert by
// title and never create a second row for the same title.
type Movie struct {
	ID          uint   `gorm:"primaryKey"`
	Title       string `gorm:"uniqueIndex;not null"`
	Description string
	Year        int
	Rating      float64
	TrailerURL  string
	Genres      []Genre `gorm:"many2many:movie_genres"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Genre is a movie genre. Name is the natural key.
type Genre struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex;not null"`
}

// MovieGenre is the explicit movie/genre join row. The composite primary key
// keeps a genre from being linked to the same movie twice on re-sync.
type MovieGenre struct {
	MovieID uint `gorm:"primaryKey"`
	GenreID uint `gorm:"primaryKey"`
}

func (MovieGenre) TableName() string {
	return "movie_genres"
}

// WatchedMovie records that a user marked a movie as watched. Rows are
// append-only: written by the bot, read by the bot, never touched by sync.
type WatchedMovie struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    int64     `gorm:"not null;index"`
	MovieID   uint      `gorm:"not null"`
	Movie     Movie     `gorm:"foreignKey:MovieID"`
	WatchedAt time.Time `gorm:"not null"`
}
