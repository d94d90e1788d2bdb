package domain

import "time"

// RideStatus represents the current status of a ride.
type RideStatus string

const (
	RideStatusActive    RideStatus = "ACTIVE"
	RideStatusCancelled RideStatus = "CANCELLED"
	RideStatusCompleted RideStatus = "COMPLETED"
)

// Ride represents a trip offer published by a driver.
type Ride struct {
	ID             string
	DriverID       string
	Origin         string
	Destination    string
	OriginCoord    *Coordinate // nil when the place could not be geocoded
	DestCoord      *Coordinate
	DepartureAt    time.Time
	TotalSeats     int
	AvailableSeats int
	PricePerSeat   float64
	Note           string
	Status         RideStatus
	CreatedAt      time.Time
	CancelledAt    time.Time
}

// IsActive reports whether the ride still accepts reservations.
func (r *Ride) IsActive() bool {
	return r.Status == RideStatusActive
}
