package repository

import (
	"context"
	"time"

	"carpool/internal/domain"
)

// RideFilter narrows the set of active rides returned by ListActive.
// Zero values mean "no constraint".
type RideFilter struct {
	MaxPrice      *float64
	DepartureFrom time.Time
	DepartureTo   time.Time
}

// RideRepository defines the persistence operations for rides.
type RideRepository interface {
	// Create persists a new ride.
	Create(ctx context.Context, ride *domain.Ride) error

	// GetByID retrieves a ride by ID.
	GetByID(ctx context.Context, id string) (*domain.Ride, error)

	// ListActive returns a point-in-time snapshot of active rides.
	ListActive(ctx context.Context, filter RideFilter) ([]*domain.Ride, error)

	// ListByDriver returns the rides published by a driver, newest first.
	ListByDriver(ctx context.Context, driverID string) ([]*domain.Ride, error)

	// Cancel marks an active ride cancelled and cancels its live reservations
	// without restoring seats. It returns the reservations it cancelled.
	// Returns ErrRideInactive if the ride is no longer active.
	Cancel(ctx context.Context, rideID string, at time.Time) ([]*domain.Reservation, error)

	// Complete marks an active ride completed.
	// Returns ErrRideInactive if the ride is no longer active.
	Complete(ctx context.Context, rideID string) error
}
