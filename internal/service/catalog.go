package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"carpool/internal/domain"
	"carpool/internal/repository"
)

// PlaceResolver resolves a place name to a coordinate.
type PlaceResolver interface {
	Resolve(ctx context.Context, place string) (domain.Coordinate, bool)
}

// Ensure LocationResolver implements PlaceResolver.
var _ PlaceResolver = (*LocationResolver)(nil)

// RideCatalog publishes rides and drives their lifecycle.
type RideCatalog struct {
	rideRepo repository.RideRepository
	resolver PlaceResolver
	clock    Clock
	events   emitter
	logger   *slog.Logger
}

// NewRideCatalog creates a new RideCatalog.
func NewRideCatalog(
	rideRepo repository.RideRepository,
	resolver PlaceResolver,
	clock Clock,
	publisher EventPublisher,
	logger *slog.Logger,
) *RideCatalog {
	return &RideCatalog{
		rideRepo: rideRepo,
		resolver: resolver,
		clock:    clock,
		events:   emitter{publisher: publisher, clock: clock, logger: logger},
		logger:   logger,
	}
}

// PublishRideRequest contains the parameters for publishing a ride.
type PublishRideRequest struct {
	DriverID     string
	Origin       string
	Destination  string
	DepartureAt  time.Time
	TotalSeats   int
	PricePerSeat float64
	Note         string

	// Optional: coordinates supplied by the client skip geocoding.
	OriginCoord *domain.Coordinate
	DestCoord   *domain.Coordinate
}

// Publish validates and stores a new active ride.
func (s *RideCatalog) Publish(ctx context.Context, req PublishRideRequest) (*domain.Ride, error) {
	origin := strings.TrimSpace(req.Origin)
	destination := strings.TrimSpace(req.Destination)

	if req.DriverID == "" {
		return nil, ErrForbidden
	}
	if origin == "" || destination == "" {
		return nil, ErrInvalidPlace
	}
	if req.TotalSeats < 1 {
		return nil, ErrInvalidCapacity
	}
	if req.PricePerSeat < 0 {
		return nil, ErrInvalidPrice
	}
	now := s.clock.Now()
	if !req.DepartureAt.After(now) {
		return nil, ErrInvalidSchedule
	}

	ride := &domain.Ride{
		ID:             uuid.New().String(),
		DriverID:       req.DriverID,
		Origin:         origin,
		Destination:    destination,
		OriginCoord:    s.coordFor(ctx, req.OriginCoord, origin),
		DestCoord:      s.coordFor(ctx, req.DestCoord, destination),
		DepartureAt:    req.DepartureAt,
		TotalSeats:     req.TotalSeats,
		AvailableSeats: req.TotalSeats,
		PricePerSeat:   req.PricePerSeat,
		Note:           strings.TrimSpace(req.Note),
		Status:         domain.RideStatusActive,
		CreatedAt:      now,
	}

	if err := s.rideRepo.Create(ctx, ride); err != nil {
		return nil, translate(err)
	}

	s.events.emit(ctx, domain.EventRidePublished, ride.ID, ride.DriverID, map[string]any{
		"origin":       ride.Origin,
		"destination":  ride.Destination,
		"departure_at": ride.DepartureAt,
		"seats":        ride.TotalSeats,
	})
	return ride, nil
}

func (s *RideCatalog) coordFor(ctx context.Context, given *domain.Coordinate, place string) *domain.Coordinate {
	if given != nil && given.Valid() {
		c := *given
		return &c
	}
	if s.resolver == nil {
		return nil
	}
	if c, ok := s.resolver.Resolve(ctx, place); ok {
		return &c
	}
	return nil
}

// Get returns a ride by ID.
func (s *RideCatalog) Get(ctx context.Context, rideID string) (*domain.Ride, error) {
	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, translate(err)
	}
	return ride, nil
}

// ListByDriver returns a driver's rides, newest first.
func (s *RideCatalog) ListByDriver(ctx context.Context, driverID string) ([]*domain.Ride, error) {
	rides, err := s.rideRepo.ListByDriver(ctx, driverID)
	if err != nil {
		return nil, translate(err)
	}
	return rides, nil
}

// Cancel cancels a ride on behalf of its driver. All live reservations are
// cancelled with it; seats are not handed back. Cancelling twice is a no-op.
func (s *RideCatalog) Cancel(ctx context.Context, rideID, requesterID string) error {
	ride, err := s.authorizeDriver(ctx, rideID, requesterID)
	if err != nil {
		return err
	}
	switch ride.Status {
	case domain.RideStatusCancelled:
		return nil
	case domain.RideStatusCompleted:
		return ErrRideInactive
	}

	cancelled, err := s.rideRepo.Cancel(ctx, rideID, s.clock.Now())
	if errors.Is(err, repository.ErrRideInactive) {
		// Lost a race with another lifecycle change; report what won.
		return s.settledStatus(ctx, rideID, domain.RideStatusCancelled)
	}
	if err != nil {
		return translate(err)
	}

	s.events.emit(ctx, domain.EventRideCancelled, rideID, requesterID, map[string]any{
		"reservations_cancelled": len(cancelled),
	})
	for _, res := range cancelled {
		s.events.emit(ctx, domain.EventReservationCancelled, rideID, requesterID, map[string]any{
			"reservation_id": res.ID,
			"passenger_id":   res.PassengerID,
			"seats":          res.Seats,
			"reason":         "ride_cancelled",
		})
	}
	return nil
}

// Complete marks a ride completed on behalf of its driver. Completing twice is a no-op.
func (s *RideCatalog) Complete(ctx context.Context, rideID, requesterID string) error {
	ride, err := s.authorizeDriver(ctx, rideID, requesterID)
	if err != nil {
		return err
	}
	switch ride.Status {
	case domain.RideStatusCompleted:
		return nil
	case domain.RideStatusCancelled:
		return ErrRideInactive
	}

	err = s.rideRepo.Complete(ctx, rideID)
	if errors.Is(err, repository.ErrRideInactive) {
		return s.settledStatus(ctx, rideID, domain.RideStatusCompleted)
	}
	if err != nil {
		return translate(err)
	}

	s.events.emit(ctx, domain.EventRideCompleted, rideID, requesterID, nil)
	return nil
}

func (s *RideCatalog) authorizeDriver(ctx context.Context, rideID, requesterID string) (*domain.Ride, error) {
	ride, err := s.Get(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if ride.DriverID != requesterID {
		return nil, ErrForbidden
	}
	return ride, nil
}

// settledStatus returns nil if the ride ended up in want, ErrRideInactive otherwise.
func (s *RideCatalog) settledStatus(ctx context.Context, rideID string, want domain.RideStatus) error {
	ride, err := s.Get(ctx, rideID)
	if err != nil {
		return err
	}
	if ride.Status == want {
		return nil
	}
	return ErrRideInactive
}
