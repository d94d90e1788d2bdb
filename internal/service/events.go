package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"carpool/internal/domain"
	"carpool/internal/observability"
)

// EventPublisher delivers domain events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event) error
}

// NopPublisher discards every event.
type NopPublisher struct{}

// Publish implements EventPublisher.
func (NopPublisher) Publish(context.Context, domain.Event) error { return nil }

// emitter stamps and publishes events after a committed change.
// Delivery failures are logged and counted but never returned.
type emitter struct {
	publisher EventPublisher
	clock     Clock
	logger    *slog.Logger
}

func (e emitter) emit(ctx context.Context, typ domain.EventType, key, actorID string, data map[string]any) {
	if e.publisher == nil {
		return
	}
	event := domain.Event{
		ID:         uuid.New().String(),
		Type:       typ,
		Key:        key,
		ActorID:    actorID,
		Data:       data,
		OccurredAt: e.now(),
	}
	if err := e.publisher.Publish(ctx, event); err != nil {
		observability.EventsDropped.Inc()
		e.logger.Warn("event publish failed", "type", typ, "key", key, "error", err)
	}
}

func (e emitter) now() time.Time {
	if e.clock == nil {
		return time.Now().UTC()
	}
	return e.clock.Now()
}
