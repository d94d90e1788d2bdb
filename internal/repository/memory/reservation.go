package memory

import (
	"context"
	"time"

	"carpool/internal/domain"
	"carpool/internal/repository"
)

// ReservationRepository is the in-memory repository.ReservationRepository.
type ReservationRepository struct {
	s *Store
}

// CreateConfirmed checks and decrements the ride's seats and stores the
// reservation while holding the ride's lock.
func (r *ReservationRepository) CreateConfirmed(_ context.Context, res *domain.Reservation) error {
	cell, ok := r.s.rideCell(res.RideID)
	if !ok {
		return repository.ErrNotFound
	}

	cell.mu.Lock()
	if !cell.ride.IsActive() {
		cell.mu.Unlock()
		return repository.ErrRideInactive
	}
	if cell.ride.AvailableSeats < res.Seats {
		cell.mu.Unlock()
		return repository.ErrInsufficientSeats
	}
	if _, loaded := r.s.reservations.LoadOrStore(res.ID, cell); loaded {
		cell.mu.Unlock()
		return repository.ErrDuplicate
	}

	res.Status = domain.ReservationStatusConfirmed
	cell.ride.AvailableSeats -= res.Seats
	cell.reservations = append(cell.reservations, copyReservation(res))
	cell.mu.Unlock()

	r.s.indexPassenger(res.PassengerID, res.ID)
	return nil
}

// GetByID retrieves a reservation by ID.
func (r *ReservationRepository) GetByID(_ context.Context, id string) (*domain.Reservation, error) {
	cell, ok := r.cellFor(id)
	if !ok {
		return nil, repository.ErrNotFound
	}

	cell.mu.RLock()
	defer cell.mu.RUnlock()

	if res := findReservation(cell, id); res != nil {
		return copyReservation(res), nil
	}
	return nil, repository.ErrNotFound
}

// Cancel marks the reservation cancelled and restores its seats unless the
// ride is cancelled.
func (r *ReservationRepository) Cancel(_ context.Context, id string, at time.Time) (bool, error) {
	cell, ok := r.cellFor(id)
	if !ok {
		return false, repository.ErrNotFound
	}

	cell.mu.Lock()
	defer cell.mu.Unlock()

	res := findReservation(cell, id)
	if res == nil {
		return false, repository.ErrNotFound
	}
	if res.IsCancelled() {
		return false, nil
	}

	res.Status = domain.ReservationStatusCancelled
	res.CancelledAt = at
	if cell.ride.Status != domain.RideStatusCancelled {
		cell.ride.AvailableSeats += res.Seats
	}
	return true, nil
}

// ListByPassenger returns the passenger's live reservations in creation order.
func (r *ReservationRepository) ListByPassenger(_ context.Context, passengerID string) ([]*domain.Reservation, error) {
	v, ok := r.s.passengers.Load(passengerID)
	if !ok {
		return nil, nil
	}

	list := v.(*idList)
	list.mu.Lock()
	ids := append([]string(nil), list.ids...)
	list.mu.Unlock()

	var out []*domain.Reservation
	for _, id := range ids {
		cell, ok := r.cellFor(id)
		if !ok {
			continue
		}
		cell.mu.RLock()
		if res := findReservation(cell, id); res != nil && !res.IsCancelled() {
			out = append(out, copyReservation(res))
		}
		cell.mu.RUnlock()
	}
	sortReservations(out)
	return out, nil
}

// ListByRide returns the ride's live reservations in creation order.
func (r *ReservationRepository) ListByRide(_ context.Context, rideID string) ([]*domain.Reservation, error) {
	cell, ok := r.s.rideCell(rideID)
	if !ok {
		return nil, nil
	}

	cell.mu.RLock()
	var out []*domain.Reservation
	for _, res := range cell.reservations {
		if !res.IsCancelled() {
			out = append(out, copyReservation(res))
		}
	}
	cell.mu.RUnlock()

	sortReservations(out)
	return out, nil
}

func (r *ReservationRepository) cellFor(reservationID string) (*rideCell, bool) {
	v, ok := r.s.reservations.Load(reservationID)
	if !ok {
		return nil, false
	}
	return v.(*rideCell), true
}

func findReservation(cell *rideCell, id string) *domain.Reservation {
	for _, res := range cell.reservations {
		if res.ID == id {
			return res
		}
	}
	return nil
}

var _ repository.ReservationRepository = (*ReservationRepository)(nil)
