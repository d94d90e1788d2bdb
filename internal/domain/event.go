package domain

import "time"

// EventType names a domain event emitted after a committed state change.
type EventType string

const (
	EventRidePublished        EventType = "ride_published"
	EventRideCancelled        EventType = "ride_cancelled"
	EventRideCompleted        EventType = "ride_completed"
	EventReservationConfirmed EventType = "reservation_confirmed"
	EventReservationCancelled EventType = "reservation_cancelled"
	EventRatingSubmitted      EventType = "rating_submitted"
)

// Event is a fact about the marketplace for downstream consumers such as
// the notification collaborator. Key determines partitioning.
type Event struct {
	ID         string         `json:"id"`
	Type       EventType      `json:"type"`
	Key        string         `json:"key"`
	ActorID    string         `json:"actor_id,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}
