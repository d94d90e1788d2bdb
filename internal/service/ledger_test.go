package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"carpool/internal/domain"
	"carpool/internal/logging"
	"carpool/internal/repository"
)

// MockReservationRepository is a mock implementation of repository.ReservationRepository.
type MockReservationRepository struct {
	mock.Mock
}

func (m *MockReservationRepository) CreateConfirmed(ctx context.Context, res *domain.Reservation) error {
	return m.Called(ctx, res).Error(0)
}

func (m *MockReservationRepository) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockReservationRepository) Cancel(ctx context.Context, id string, at time.Time) (bool, error) {
	args := m.Called(ctx, id, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockReservationRepository) ListByPassenger(ctx context.Context, passengerID string) ([]*domain.Reservation, error) {
	args := m.Called(ctx, passengerID)
	return args.Get(0).([]*domain.Reservation), args.Error(1)
}

func (m *MockReservationRepository) ListByRide(ctx context.Context, rideID string) ([]*domain.Reservation, error) {
	args := m.Called(ctx, rideID)
	return args.Get(0).([]*domain.Reservation), args.Error(1)
}

func TestBookingLedger_ReserveAndCancel(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()
	ride := f.publish("driver-1", "Praha->Brno", 3, 250, 24*time.Hour)

	res, err := f.ledger.Reserve(ctx, ReserveRequest{RideID: ride.ID, PassengerID: "passenger-1", Seats: 2})
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationStatusConfirmed, res.Status)

	stored, _ := f.catalog.Get(ctx, ride.ID)
	assert.Equal(t, 1, stored.AvailableSeats)

	_, err = f.ledger.Reserve(ctx, ReserveRequest{RideID: ride.ID, PassengerID: "passenger-2", Seats: 2})
	assert.ErrorIs(t, err, ErrInsufficientCapacity)

	assert.ErrorIs(t, f.ledger.Cancel(ctx, res.ID, "passenger-2"), ErrForbidden)
	require.NoError(t, f.ledger.Cancel(ctx, res.ID, "passenger-1"))
	require.NoError(t, f.ledger.Cancel(ctx, res.ID, "driver-1"))

	stored, _ = f.catalog.Get(ctx, ride.ID)
	assert.Equal(t, 3, stored.AvailableSeats)

	assert.Equal(t, []domain.EventType{
		domain.EventRidePublished,
		domain.EventReservationConfirmed,
		domain.EventReservationCancelled,
	}, f.events.types())
}

func TestBookingLedger_ReserveValidation(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()
	ride := f.publish("driver-1", "Praha->Brno", 3, 250, 24*time.Hour)

	_, err := f.ledger.Reserve(ctx, ReserveRequest{RideID: ride.ID, PassengerID: "passenger-1", Seats: 0})
	assert.ErrorIs(t, err, ErrInvalidSeats)

	_, err = f.ledger.Reserve(ctx, ReserveRequest{RideID: ride.ID, PassengerID: "driver-1", Seats: 1})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.ledger.Reserve(ctx, ReserveRequest{RideID: "missing", PassengerID: "passenger-1", Seats: 1})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, f.catalog.Cancel(ctx, ride.ID, "driver-1"))
	_, err = f.ledger.Reserve(ctx, ReserveRequest{RideID: ride.ID, PassengerID: "passenger-1", Seats: 1})
	assert.ErrorIs(t, err, ErrRideInactive)

	assert.ErrorIs(t, f.ledger.Cancel(ctx, "missing", "passenger-1"), ErrNotFound)
}

func TestBookingLedger_RetriesTransientConflicts(t *testing.T) {
	f := newFixture(nil)
	ride := f.publish("driver-1", "Praha->Brno", 3, 250, time.Hour)

	reservations := &MockReservationRepository{}
	reservations.On("CreateConfirmed", mock.Anything, mock.Anything).Return(repository.ErrConflict).Twice()
	reservations.On("CreateConfirmed", mock.Anything, mock.Anything).Return(nil).Once()

	ledger := NewBookingLedger(f.store.Rides(), reservations, f.clock, BookingLedgerConfig{RetryDelay: time.Millisecond}, nil, logging.Discard())
	res, err := ledger.Reserve(context.Background(), ReserveRequest{RideID: ride.ID, PassengerID: "passenger-1", Seats: 1})

	require.NoError(t, err)
	assert.NotEmpty(t, res.ID)
	reservations.AssertNumberOfCalls(t, "CreateConfirmed", 3)
}

func TestBookingLedger_ExhaustedRetriesSurfaceAsInsufficientCapacity(t *testing.T) {
	f := newFixture(nil)
	ride := f.publish("driver-1", "Praha->Brno", 3, 250, time.Hour)

	reservations := &MockReservationRepository{}
	reservations.On("CreateConfirmed", mock.Anything, mock.Anything).Return(repository.ErrConflict)

	ledger := NewBookingLedger(f.store.Rides(), reservations, f.clock, BookingLedgerConfig{MaxAttempts: 3, RetryDelay: time.Millisecond}, nil, logging.Discard())
	_, err := ledger.Reserve(context.Background(), ReserveRequest{RideID: ride.ID, PassengerID: "passenger-1", Seats: 1})

	assert.ErrorIs(t, err, ErrInsufficientCapacity)
	reservations.AssertNumberOfCalls(t, "CreateConfirmed", 3)
}

func TestBookingLedger_CancelExhaustedRetriesReportConflict(t *testing.T) {
	f := newFixture(nil)
	ride := f.publish("driver-1", "Praha->Brno", 3, 250, time.Hour)
	res := &domain.Reservation{ID: "res-1", RideID: ride.ID, PassengerID: "passenger-1", Seats: 1, Status: domain.ReservationStatusConfirmed}

	reservations := &MockReservationRepository{}
	reservations.On("GetByID", mock.Anything, "res-1").Return(res, nil)
	reservations.On("Cancel", mock.Anything, "res-1", mock.Anything).Return(false, repository.ErrConflict)

	ledger := NewBookingLedger(f.store.Rides(), reservations, f.clock, BookingLedgerConfig{MaxAttempts: 3, RetryDelay: time.Millisecond}, nil, logging.Discard())
	err := ledger.Cancel(context.Background(), "res-1", "passenger-1")

	assert.ErrorIs(t, err, ErrTransientConflict)
	assert.NotErrorIs(t, err, ErrInsufficientCapacity)
	reservations.AssertNumberOfCalls(t, "Cancel", 3)
}

func TestBookingLedger_ConcurrentReservationsNeverOversell(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()
	ride := f.publish("driver-1", "Praha->Brno", 3, 250, time.Hour)

	var wg sync.WaitGroup
	var confirmed, rejected atomic.Int32
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.ledger.Reserve(ctx, ReserveRequest{RideID: ride.ID, PassengerID: fmt.Sprintf("p-%d", i), Seats: 1})
			switch {
			case err == nil:
				confirmed.Add(1)
			case assert.ErrorIs(t, err, ErrInsufficientCapacity):
				rejected.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(3), confirmed.Load())
	assert.Equal(t, int32(7), rejected.Load())

	live, err := f.ledger.ListForRide(ctx, ride.ID)
	require.NoError(t, err)
	assert.Len(t, live, 3)
}
