package domain

import "time"

// ReservationStatus represents the current status of a reservation.
type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "PENDING"
	ReservationStatusConfirmed ReservationStatus = "CONFIRMED"
	ReservationStatusCancelled ReservationStatus = "CANCELLED"
)

// Reservation is a passenger's claim on seats of a ride.
type Reservation struct {
	ID          string
	RideID      string
	PassengerID string
	Seats       int
	Status      ReservationStatus
	CreatedAt   time.Time
	CancelledAt time.Time
}

// IsCancelled reports whether the reservation no longer holds seats.
func (r *Reservation) IsCancelled() bool {
	return r.Status == ReservationStatusCancelled
}
