package memory

import (
	"context"

	"carpool/internal/domain"
	"carpool/internal/repository"
)

// RatingRepository is the in-memory repository.RatingRepository.
type RatingRepository struct {
	s *Store
}

// Create stores the rating on the rated user's cell and bumps the aggregate.
func (r *RatingRepository) Create(_ context.Context, rating *domain.Rating) error {
	cell, ok := r.s.userCell(rating.RatedID)
	if !ok {
		return repository.ErrNotFound
	}

	key := ratingKey{rideID: rating.RideID, raterID: rating.RaterID}

	cell.mu.Lock()
	defer cell.mu.Unlock()

	if _, exists := cell.keys[key]; exists {
		return repository.ErrDuplicate
	}
	cell.keys[key] = struct{}{}

	stored := *rating
	cell.ratings = append(cell.ratings, &stored)
	cell.user.RatingSum += int64(rating.Score)
	cell.user.RatingCount++
	return nil
}

// ListByRated returns all ratings a user has received, oldest first.
func (r *RatingRepository) ListByRated(_ context.Context, userID string) ([]*domain.Rating, error) {
	cell, ok := r.s.userCell(userID)
	if !ok {
		return nil, nil
	}

	cell.mu.Lock()
	defer cell.mu.Unlock()

	out := make([]*domain.Rating, 0, len(cell.ratings))
	for _, rating := range cell.ratings {
		c := *rating
		out = append(out, &c)
	}
	return out, nil
}

var _ repository.RatingRepository = (*RatingRepository)(nil)
