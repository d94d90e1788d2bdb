package service

import (
	"context"
	"fmt"
	"log/slog"

	"carpool/internal/domain"
)

// Notification is the user-facing message rendered from a domain event.
type Notification struct {
	EventID     string
	Type        domain.EventType
	RecipientID string
	Title       string
	Message     string
}

// NotificationPublisher turns domain events into notifications and logs
// them. It stands in for push/SMS delivery when no event broker is
// configured.
type NotificationPublisher struct {
	logger *slog.Logger
}

// NewNotificationPublisher creates a new NotificationPublisher.
func NewNotificationPublisher(logger *slog.Logger) *NotificationPublisher {
	return &NotificationPublisher{logger: logger}
}

// Publish implements EventPublisher.
func (p *NotificationPublisher) Publish(ctx context.Context, event domain.Event) error {
	n, ok := Render(event)
	if !ok {
		return nil
	}
	p.logger.InfoContext(ctx, "notification",
		"type", n.Type,
		"recipient", n.RecipientID,
		"title", n.Title,
		"message", n.Message,
		"event_id", n.EventID,
	)
	return nil
}

// Render builds the notification for event. Events nobody needs to hear
// about, such as a driver's own ride publication, report false.
func Render(event domain.Event) (Notification, bool) {
	n := Notification{EventID: event.ID, Type: event.Type}

	switch event.Type {
	case domain.EventReservationConfirmed:
		n.RecipientID = dataString(event, "driver_id")
		n.Title = "New Reservation"
		n.Message = fmt.Sprintf("A passenger reserved %v seat(s) on your ride", event.Data["seats"])

	case domain.EventReservationCancelled:
		passengerID := dataString(event, "passenger_id")
		if event.Data["reason"] == "ride_cancelled" {
			n.RecipientID = passengerID
			n.Title = "Ride Cancelled"
			n.Message = "The driver has cancelled the ride. Your reservation was released."
		} else if event.ActorID == passengerID {
			n.RecipientID = dataString(event, "driver_id")
			n.Title = "Reservation Cancelled"
			n.Message = fmt.Sprintf("A passenger gave back %v seat(s)", event.Data["seats"])
		} else {
			n.RecipientID = passengerID
			n.Title = "Reservation Cancelled"
			n.Message = "The driver has cancelled your reservation"
		}

	case domain.EventRideCompleted:
		n.RecipientID = "ride:" + event.Key
		n.Title = "Trip Completed"
		n.Message = "Your trip has ended. Don't forget to rate your fellow travellers."

	case domain.EventRatingSubmitted:
		n.RecipientID = event.Key
		n.Title = "New Rating"
		n.Message = fmt.Sprintf("You received a rating of %v", event.Data["score"])

	default:
		return Notification{}, false
	}

	if n.RecipientID == "" {
		return Notification{}, false
	}
	return n, true
}

func dataString(event domain.Event, key string) string {
	s, _ := event.Data[key].(string)
	return s
}
