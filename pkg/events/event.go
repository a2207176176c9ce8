package events

import (
	"time"
)

// Event types published by the catalog sync engine.
const (
	TypeMovieAdded    = "catalog.movie.added"
	TypeMovieUpdated  = "catalog.movie.updated"
	TypeGenreAdded    = "catalog.genre.added"
	TypeRowSkipped    = "catalog.sync.row_skipped"
	TypeSyncCompleted = "catalog.sync.completed"
)

// Event is something that happened to the catalog.
type Event interface {
	EventType() string
	OccurredAt() time.Time
}

// BaseEvent is the basic Event implementation used for all published events.
type BaseEvent struct {
	Type string                 `json:"type"`
	Time time.Time              `json:"time"`
	Data map[string]interface{} `json:"data"`
}

// NewEvent creates an event of the given type.
func NewEvent(eventType string, data map[string]interface{}) *BaseEvent {
	return &BaseEvent{
		Type: eventType,
		Time: time.Now().UTC(),
		Data: data,
	}
}

func (e *BaseEvent) EventType() string {
	return e.Type
}

func (e *BaseEvent) OccurredAt() time.Time {
	return e.Time
}
