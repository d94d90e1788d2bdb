package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"carpool/internal/domain"
	"carpool/internal/observability"
	"carpool/internal/repository"
)

const (
	DefaultMaxAttempts = 3
	DefaultRetryDelay  = 10 * time.Millisecond
)

// BookingLedgerConfig bounds the retry loop around seat updates.
type BookingLedgerConfig struct {
	MaxAttempts int
	RetryDelay  time.Duration
}

// BookingLedger turns reservation requests into seat count changes.
type BookingLedger struct {
	rideRepo        repository.RideRepository
	reservationRepo repository.ReservationRepository
	clock           Clock
	cfg             BookingLedgerConfig
	events          emitter
	logger          *slog.Logger
}

// NewBookingLedger creates a new BookingLedger.
func NewBookingLedger(
	rideRepo repository.RideRepository,
	reservationRepo repository.ReservationRepository,
	clock Clock,
	cfg BookingLedgerConfig,
	publisher EventPublisher,
	logger *slog.Logger,
) *BookingLedger {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	return &BookingLedger{
		rideRepo:        rideRepo,
		reservationRepo: reservationRepo,
		clock:           clock,
		cfg:             cfg,
		events:          emitter{publisher: publisher, clock: clock, logger: logger},
		logger:          logger,
	}
}

// ReserveRequest contains the parameters for reserving seats.
type ReserveRequest struct {
	RideID      string
	PassengerID string
	Seats       int
}

// Reserve takes seats on a ride and returns the confirmed reservation.
func (s *BookingLedger) Reserve(ctx context.Context, req ReserveRequest) (*domain.Reservation, error) {
	if req.Seats < 1 {
		return nil, ErrInvalidSeats
	}

	ride, err := s.rideRepo.GetByID(ctx, req.RideID)
	if err != nil {
		return nil, translate(err)
	}
	if ride.DriverID == req.PassengerID {
		return nil, ErrForbidden
	}

	res := &domain.Reservation{
		ID:          uuid.New().String(),
		RideID:      req.RideID,
		PassengerID: req.PassengerID,
		Seats:       req.Seats,
		Status:      domain.ReservationStatusPending,
		CreatedAt:   s.clock.Now(),
	}

	err = s.withRetry(ctx, "reserve", ErrInsufficientCapacity, func() error {
		return s.reservationRepo.CreateConfirmed(ctx, res)
	})
	if err != nil {
		observability.ReservationsTotal.WithLabelValues(outcome(err)).Inc()
		return nil, err
	}
	observability.ReservationsTotal.WithLabelValues("confirmed").Inc()

	s.events.emit(ctx, domain.EventReservationConfirmed, res.RideID, res.PassengerID, map[string]any{
		"reservation_id": res.ID,
		"driver_id":      ride.DriverID,
		"seats":          res.Seats,
	})
	return res, nil
}

// Cancel cancels a reservation on behalf of its passenger or the ride's driver.
// Cancelling twice is a no-op.
func (s *BookingLedger) Cancel(ctx context.Context, reservationID, requesterID string) error {
	res, err := s.reservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		return translate(err)
	}
	ride, err := s.rideRepo.GetByID(ctx, res.RideID)
	if err != nil {
		return translate(err)
	}
	if requesterID != res.PassengerID && requesterID != ride.DriverID {
		return ErrForbidden
	}

	var changed bool
	err = s.withRetry(ctx, "cancel", ErrTransientConflict, func() error {
		var err error
		changed, err = s.reservationRepo.Cancel(ctx, reservationID, s.clock.Now())
		return err
	})
	if err != nil {
		return err
	}

	if changed {
		s.events.emit(ctx, domain.EventReservationCancelled, res.RideID, requesterID, map[string]any{
			"reservation_id": res.ID,
			"passenger_id":   res.PassengerID,
			"driver_id":      ride.DriverID,
			"seats":          res.Seats,
		})
	}
	return nil
}

// Get returns a reservation by ID.
func (s *BookingLedger) Get(ctx context.Context, reservationID string) (*domain.Reservation, error) {
	res, err := s.reservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		return nil, translate(err)
	}
	return res, nil
}

// ListForPassenger returns the passenger's live reservations in creation order.
func (s *BookingLedger) ListForPassenger(ctx context.Context, passengerID string) ([]*domain.Reservation, error) {
	list, err := s.reservationRepo.ListByPassenger(ctx, passengerID)
	if err != nil {
		return nil, translate(err)
	}
	return list, nil
}

// ListForRide returns the ride's live reservations in creation order.
func (s *BookingLedger) ListForRide(ctx context.Context, rideID string) ([]*domain.Reservation, error) {
	if _, err := s.rideRepo.GetByID(ctx, rideID); err != nil {
		return nil, translate(err)
	}
	list, err := s.reservationRepo.ListByRide(ctx, rideID)
	if err != nil {
		return nil, translate(err)
	}
	return list, nil
}

// withRetry runs fn, retrying transient conflicts with linear backoff.
// Once attempts run out it returns exhausted.
func (s *BookingLedger) withRetry(ctx context.Context, op string, exhausted error, fn func() error) error {
	for attempt := 1; ; attempt++ {
		err := translate(fn())
		if !errors.Is(err, ErrTransientConflict) {
			return err
		}
		if attempt >= s.cfg.MaxAttempts {
			s.logger.Warn("seat update retries exhausted", "op", op, "attempts", attempt)
			return exhausted
		}

		observability.SeatConflictRetries.Inc()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * s.cfg.RetryDelay):
		}
	}
}

func outcome(err error) string {
	switch {
	case errors.Is(err, ErrInsufficientCapacity):
		return "insufficient_capacity"
	case errors.Is(err, ErrRideInactive):
		return "ride_inactive"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
