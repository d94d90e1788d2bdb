package domain

import "time"

const (
	MinRatingScore = 1
	MaxRatingScore = 5
)

// Rating is an immutable score one participant of a ride gives another.
type Rating struct {
	ID        string
	RideID    string
	RaterID   string
	RatedID   string
	Score     int
	Comment   string
	CreatedAt time.Time
}
