package events_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/filmoteka/filmoteka/pkg/events"
	"github.com/filmoteka/filmoteka/pkg/logger"
)

func TestPublishDeliversToSubscribers(t *testing.T) {
	bus := events.NewBus(logger.NewNop())

	var got []string
	bus.Subscribe(events.TypeMovieAdded, func(ctx context.Context, e events.Event) error {
		got = append(got, e.EventType())
		return nil
	})

	bus.Publish(context.Background(), events.NewEvent(events.TypeMovieAdded, nil))
	bus.Publish(context.Background(), events.NewEvent(events.TypeGenreAdded, nil))

	assert.Equal(t, []string{events.TypeMovieAdded}, got)
}

func TestFailingHandlerDoesNotStopDelivery(t *testing.T) {
	bus := events.NewBus(logger.NewNop())

	delivered := false
	bus.Subscribe(events.TypeSyncCompleted, func(ctx context.Context, e events.Event) error {
		return fmt.Errorf("boom")
	})
	bus.Subscribe(events.TypeSyncCompleted, func(ctx context.Context, e events.Event) error {
		delivered = true
		return nil
	})

	bus.Publish(context.Background(), events.NewEvent(events.TypeSyncCompleted, nil))

	assert.True(t, delivered)
}
