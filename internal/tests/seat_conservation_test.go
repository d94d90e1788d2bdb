package tests

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carpool/internal/domain"
	"carpool/internal/service"
)

// Under any interleaving of reserves and cancels the ride's free seats plus
// the seats held by live reservations equal its capacity.
func TestSeatConservation_InterleavedReserveAndCancel(t *testing.T) {
	ctx := context.Background()
	m := newMarketplace(t, nil)
	ride := m.publish(t, "driver-1", "Praha", "Brno", 5, 250)

	const passengers = 40
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted []*domain.Reservation
	)

	for i := 0; i < passengers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := m.ledger.Reserve(ctx, service.ReserveRequest{
				RideID:      ride.ID,
				PassengerID: fmt.Sprintf("passenger-%d", i),
				Seats:       1 + i%2,
			})
			if err != nil {
				if !errors.Is(err, service.ErrInsufficientCapacity) {
					t.Errorf("unexpected reserve error: %v", err)
				}
				return
			}
			// Every third winner gives its seats back straight away.
			if i%3 == 0 {
				if err := m.ledger.Cancel(ctx, res.ID, res.PassengerID); err != nil {
					t.Errorf("unexpected cancel error: %v", err)
				}
				return
			}
			mu.Lock()
			accepted = append(accepted, res)
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	live, err := m.ledger.ListForRide(ctx, ride.ID)
	require.NoError(t, err)
	assert.Len(t, live, len(accepted))

	held := 0
	for _, r := range live {
		held += r.Seats
	}
	available := m.available(t, ride.ID)
	assert.GreaterOrEqual(t, available, 0)
	assert.Equal(t, ride.TotalSeats, available+held)
}

func TestSeatConservation_NoOverbooking(t *testing.T) {
	ctx := context.Background()
	m := newMarketplace(t, nil)
	ride := m.publish(t, "driver-1", "Praha", "Brno", 3, 250)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		full      int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := m.ledger.Reserve(ctx, service.ReserveRequest{
				RideID:      ride.ID,
				PassengerID: fmt.Sprintf("passenger-%d", i),
				Seats:       1,
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, service.ErrInsufficientCapacity):
				full++
			default:
				t.Errorf("unexpected reserve error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 3, successes)
	assert.Equal(t, 7, full)
	assert.Equal(t, 0, m.available(t, ride.ID))
}
