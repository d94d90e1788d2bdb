package memory

import (
	"context"
	"sort"
	"time"

	"carpool/internal/domain"
	"carpool/internal/repository"
)

// RideRepository is the in-memory repository.RideRepository.
type RideRepository struct {
	s *Store
}

// Create stores a new ride.
func (r *RideRepository) Create(_ context.Context, ride *domain.Ride) error {
	cell := &rideCell{ride: *copyRide(ride)}
	if _, loaded := r.s.rides.LoadOrStore(ride.ID, cell); loaded {
		return repository.ErrDuplicate
	}
	return nil
}

// GetByID retrieves a ride by ID.
func (r *RideRepository) GetByID(_ context.Context, id string) (*domain.Ride, error) {
	cell, ok := r.s.rideCell(id)
	if !ok {
		return nil, repository.ErrNotFound
	}
	cell.mu.RLock()
	defer cell.mu.RUnlock()
	return copyRide(&cell.ride), nil
}

// ListActive returns copies of active rides matching the filter.
func (r *RideRepository) ListActive(ctx context.Context, filter repository.RideFilter) ([]*domain.Ride, error) {
	var rides []*domain.Ride
	r.s.rides.Range(func(_, v any) bool {
		cell := v.(*rideCell)
		cell.mu.RLock()
		if matchesFilter(&cell.ride, filter) {
			rides = append(rides, copyRide(&cell.ride))
		}
		cell.mu.RUnlock()
		return ctx.Err() == nil
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(rides, func(i, j int) bool {
		if !rides[i].DepartureAt.Equal(rides[j].DepartureAt) {
			return rides[i].DepartureAt.Before(rides[j].DepartureAt)
		}
		return rides[i].ID < rides[j].ID
	})
	return rides, nil
}

func matchesFilter(ride *domain.Ride, filter repository.RideFilter) bool {
	if !ride.IsActive() {
		return false
	}
	if filter.MaxPrice != nil && ride.PricePerSeat > *filter.MaxPrice {
		return false
	}
	if !filter.DepartureFrom.IsZero() && ride.DepartureAt.Before(filter.DepartureFrom) {
		return false
	}
	if !filter.DepartureTo.IsZero() && ride.DepartureAt.After(filter.DepartureTo) {
		return false
	}
	return true
}

// ListByDriver returns the rides published by a driver, newest first.
func (r *RideRepository) ListByDriver(_ context.Context, driverID string) ([]*domain.Ride, error) {
	var rides []*domain.Ride
	r.s.rides.Range(func(_, v any) bool {
		cell := v.(*rideCell)
		cell.mu.RLock()
		if cell.ride.DriverID == driverID {
			rides = append(rides, copyRide(&cell.ride))
		}
		cell.mu.RUnlock()
		return true
	})

	sort.Slice(rides, func(i, j int) bool {
		if !rides[i].CreatedAt.Equal(rides[j].CreatedAt) {
			return rides[i].CreatedAt.After(rides[j].CreatedAt)
		}
		return rides[i].ID > rides[j].ID
	})
	return rides, nil
}

// Cancel marks an active ride cancelled and cancels its live reservations.
// Seat counts are left as they are.
func (r *RideRepository) Cancel(_ context.Context, rideID string, at time.Time) ([]*domain.Reservation, error) {
	cell, ok := r.s.rideCell(rideID)
	if !ok {
		return nil, repository.ErrNotFound
	}

	cell.mu.Lock()
	defer cell.mu.Unlock()

	if !cell.ride.IsActive() {
		return nil, repository.ErrRideInactive
	}
	cell.ride.Status = domain.RideStatusCancelled
	cell.ride.CancelledAt = at

	var cancelled []*domain.Reservation
	for _, res := range cell.reservations {
		if res.IsCancelled() {
			continue
		}
		res.Status = domain.ReservationStatusCancelled
		res.CancelledAt = at
		cancelled = append(cancelled, copyReservation(res))
	}
	return cancelled, nil
}

// Complete marks an active ride completed.
func (r *RideRepository) Complete(_ context.Context, rideID string) error {
	cell, ok := r.s.rideCell(rideID)
	if !ok {
		return repository.ErrNotFound
	}

	cell.mu.Lock()
	defer cell.mu.Unlock()

	if !cell.ride.IsActive() {
		return repository.ErrRideInactive
	}
	cell.ride.Status = domain.RideStatusCompleted
	return nil
}

var _ repository.RideRepository = (*RideRepository)(nil)
