package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when a uniqueness constraint is violated.
	ErrDuplicate = errors.New("entity already exists")

	// ErrConflict is returned when a concurrent writer won and the operation may be retried.
	ErrConflict = errors.New("concurrent update conflict")

	// ErrRideInactive is returned when a seat operation targets a ride that is not active.
	ErrRideInactive = errors.New("ride is not active")

	// ErrInsufficientSeats is returned when a ride has fewer available seats than requested.
	ErrInsufficientSeats = errors.New("not enough available seats")
)
