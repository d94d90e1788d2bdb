package tests

import (
	"context"
	"sync/atomic"
	"time"

	"carpool/internal/domain"
	"carpool/internal/repository"
)

// FlakyReservationRepository wraps a real repository and fails the first
// calls with repository.ErrConflict, the way a serialization failure would.
type FlakyReservationRepository struct {
	repository.ReservationRepository

	// Counters for verification
	CreateCallCount int32
	CancelCallCount int32

	// Error injection
	createFailures atomic.Int32
	cancelFailures atomic.Int32
}

// NewFlakyReservationRepository wraps next, failing the first createFailures
// creates and cancelFailures cancels.
func NewFlakyReservationRepository(next repository.ReservationRepository, createFailures, cancelFailures int32) *FlakyReservationRepository {
	m := &FlakyReservationRepository{ReservationRepository: next}
	m.createFailures.Store(createFailures)
	m.cancelFailures.Store(cancelFailures)
	return m
}

func (m *FlakyReservationRepository) CreateConfirmed(ctx context.Context, res *domain.Reservation) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.createFailures.Add(-1) >= 0 {
		return repository.ErrConflict
	}
	return m.ReservationRepository.CreateConfirmed(ctx, res)
}

func (m *FlakyReservationRepository) Cancel(ctx context.Context, id string, at time.Time) (bool, error) {
	atomic.AddInt32(&m.CancelCallCount, 1)
	if m.cancelFailures.Add(-1) >= 0 {
		return false, repository.ErrConflict
	}
	return m.ReservationRepository.Cancel(ctx, id, at)
}
