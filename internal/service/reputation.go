package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"carpool/internal/domain"
	"carpool/internal/observability"
	"carpool/internal/repository"
)

// ReputationAggregator records ratings and reports per-user reputation.
type ReputationAggregator struct {
	rideRepo   repository.RideRepository
	ratingRepo repository.RatingRepository
	userRepo   repository.UserRepository
	clock      Clock
	events     emitter
}

// NewReputationAggregator creates a new ReputationAggregator.
func NewReputationAggregator(
	rideRepo repository.RideRepository,
	ratingRepo repository.RatingRepository,
	userRepo repository.UserRepository,
	clock Clock,
	publisher EventPublisher,
	logger *slog.Logger,
) *ReputationAggregator {
	return &ReputationAggregator{
		rideRepo:   rideRepo,
		ratingRepo: ratingRepo,
		userRepo:   userRepo,
		clock:      clock,
		events:     emitter{publisher: publisher, clock: clock, logger: logger},
	}
}

// SubmitRatingRequest contains the parameters for rating a participant.
type SubmitRatingRequest struct {
	RideID  string
	RaterID string
	RatedID string
	Score   int
	Comment string
}

// Submit stores a rating and folds it into the rated user's reputation.
func (s *ReputationAggregator) Submit(ctx context.Context, req SubmitRatingRequest) (*domain.Rating, error) {
	if req.Score < domain.MinRatingScore || req.Score > domain.MaxRatingScore {
		return nil, ErrInvalidScore
	}
	if req.RaterID == req.RatedID {
		return nil, ErrForbidden
	}
	if _, err := s.rideRepo.GetByID(ctx, req.RideID); err != nil {
		return nil, translate(err)
	}

	rating := &domain.Rating{
		ID:        uuid.New().String(),
		RideID:    req.RideID,
		RaterID:   req.RaterID,
		RatedID:   req.RatedID,
		Score:     req.Score,
		Comment:   strings.TrimSpace(req.Comment),
		CreatedAt: s.clock.Now(),
	}
	if err := s.ratingRepo.Create(ctx, rating); err != nil {
		return nil, translate(err)
	}
	observability.RatingsTotal.Inc()

	s.events.emit(ctx, domain.EventRatingSubmitted, rating.RatedID, rating.RaterID, map[string]any{
		"rating_id": rating.ID,
		"ride_id":   rating.RideID,
		"score":     rating.Score,
	})
	return rating, nil
}

// Reputation returns the mean score a user has received, or 5.0 if none.
func (s *ReputationAggregator) Reputation(ctx context.Context, userID string) (float64, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return 0, translate(err)
	}
	return user.Reputation(), nil
}

// Ratings returns the ratings a user has received, oldest first.
func (s *ReputationAggregator) Ratings(ctx context.Context, userID string) ([]*domain.Rating, error) {
	ratings, err := s.ratingRepo.ListByRated(ctx, userID)
	if err != nil {
		return nil, translate(err)
	}
	return ratings, nil
}
