package domain

import "time"

// DefaultReputation is the score of a user who has not been rated yet.
const DefaultReputation = 5.0

// User is the read-only identity projection the core works with.
// Everything except the rating aggregate is owned by the identity provider.
type User struct {
	ID            string
	Name          string
	Phone         string
	PhoneVerified bool
	IDVerified    bool
	RatingSum     int64
	RatingCount   int64
	CreatedAt     time.Time
}

// Reputation returns the mean of all received ratings, or DefaultReputation.
func (u *User) Reputation() float64 {
	if u == nil || u.RatingCount == 0 {
		return DefaultReputation
	}
	return float64(u.RatingSum) / float64(u.RatingCount)
}
