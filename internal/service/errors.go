package service

import (
	"errors"
	"fmt"

	"carpool/internal/repository"
)

var (
	// ErrNotFound is returned when a ride, reservation or user does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when the requester may not perform the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidCapacity is returned when a ride is published with fewer than one seat.
	ErrInvalidCapacity = errors.New("total seats must be at least 1")

	// ErrInvalidSchedule is returned when a ride departs at or before the current time.
	ErrInvalidSchedule = errors.New("departure must be in the future")

	// ErrInvalidScore is returned when a rating score is outside [1, 5].
	ErrInvalidScore = errors.New("score must be between 1 and 5")

	// ErrInvalidSeats is returned when a reservation asks for fewer than one seat.
	ErrInvalidSeats = errors.New("seats must be at least 1")

	// ErrInvalidPlace is returned when an origin or destination is blank.
	ErrInvalidPlace = errors.New("origin and destination are required")

	// ErrInvalidPrice is returned when the price per seat is negative.
	ErrInvalidPrice = errors.New("price per seat must not be negative")

	// ErrInsufficientCapacity is returned when a ride has fewer free seats than requested.
	ErrInsufficientCapacity = errors.New("not enough available seats")

	// ErrRideInactive is returned when an operation needs an active ride.
	ErrRideInactive = errors.New("ride is not active")

	// ErrDuplicate is returned when the same rating is submitted twice.
	ErrDuplicate = errors.New("already exists")

	// ErrTransientConflict is returned when a cancellation kept losing to
	// concurrent writers. Reservations report ErrInsufficientCapacity instead.
	ErrTransientConflict = errors.New("transient conflict")
)

// translate maps repository errors onto service errors. Unknown errors are
// wrapped so callers can still inspect them.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrRideInactive):
		return ErrRideInactive
	case errors.Is(err, repository.ErrInsufficientSeats):
		return ErrInsufficientCapacity
	case errors.Is(err, repository.ErrDuplicate):
		return ErrDuplicate
	case errors.Is(err, repository.ErrConflict):
		return ErrTransientConflict
	default:
		return fmt.Errorf("store: %w", err)
	}
}
