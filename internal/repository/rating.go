package repository

import (
	"context"

	"carpool/internal/domain"
)

// RatingRepository defines the persistence operations for ratings.
type RatingRepository interface {
	// Create stores the rating and adds its score to the rated user's
	// running aggregate in one atomic step.
	// Returns ErrDuplicate for a repeated (ride, rater, rated) tuple and
	// ErrNotFound when the rated user is unknown.
	Create(ctx context.Context, rating *domain.Rating) error

	// ListByRated returns all ratings a user has received, oldest first.
	ListByRated(ctx context.Context, userID string) ([]*domain.Rating, error)
}
