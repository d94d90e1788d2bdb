package repository

import (
	"context"
	"time"

	"carpool/internal/domain"
)

// ReservationRepository defines the persistence operations for reservations.
// Every method that touches seat counts is atomic with respect to other
// seat operations on the same ride.
type ReservationRepository interface {
	// CreateConfirmed decrements the ride's available seats by res.Seats and
	// stores res as confirmed, as one atomic step.
	// Returns ErrNotFound, ErrRideInactive, ErrInsufficientSeats or ErrConflict.
	CreateConfirmed(ctx context.Context, res *domain.Reservation) error

	// GetByID retrieves a reservation by ID.
	GetByID(ctx context.Context, id string) (*domain.Reservation, error)

	// Cancel marks the reservation cancelled and gives its seats back to the
	// ride unless the ride itself is cancelled. Returns false if the
	// reservation was already cancelled.
	Cancel(ctx context.Context, id string, at time.Time) (bool, error)

	// ListByPassenger returns the passenger's non-cancelled reservations in creation order.
	ListByPassenger(ctx context.Context, passengerID string) ([]*domain.Reservation, error)

	// ListByRide returns the ride's non-cancelled reservations in creation order.
	ListByRide(ctx context.Context, rideID string) ([]*domain.Reservation, error)
}
