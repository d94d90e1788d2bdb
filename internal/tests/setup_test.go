package tests

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"carpool/internal/domain"
	"carpool/internal/geocode"
	"carpool/internal/logging"
	"carpool/internal/repository"
	"carpool/internal/repository/memory"
	"carpool/internal/service"
)

// marketplace is the full core wired over one in-memory store.
type marketplace struct {
	store   *memory.Store
	catalog *service.RideCatalog
	ledger  *service.BookingLedger
	engine  *service.MatchEngine
}

func newMarketplace(t *testing.T, reservations repository.ReservationRepository) *marketplace {
	t.Helper()

	store := memory.NewStore()
	for _, u := range []domain.User{
		{ID: "driver-1", Name: "Petr Novak"},
		{ID: "driver-2", Name: "Eva Dvorakova"},
	} {
		store.PutUser(u)
	}
	if reservations == nil {
		reservations = store.Reservations()
	}

	logger := logging.Discard()
	clock := service.SystemClock{}
	resolver := service.NewLocationResolver(geocode.NewStatic(nil), geocode.NewMemoryCache(), service.LocationResolverConfig{}, logger)

	return &marketplace{
		store:   store,
		catalog: service.NewRideCatalog(store.Rides(), resolver, clock, service.NopPublisher{}, logger),
		ledger: service.NewBookingLedger(store.Rides(), reservations, clock, service.BookingLedgerConfig{
			MaxAttempts: 3,
			RetryDelay:  time.Millisecond,
		}, service.NopPublisher{}, logger),
		engine: service.NewMatchEngine(store.Rides(), store.Users(), resolver, service.MatchEngineConfig{}, logger),
	}
}

func (m *marketplace) publish(t *testing.T, driverID, origin, destination string, seats int, price float64) *domain.Ride {
	t.Helper()
	ride, err := m.catalog.Publish(context.Background(), service.PublishRideRequest{
		DriverID:     driverID,
		Origin:       origin,
		Destination:  destination,
		DepartureAt:  time.Now().Add(48 * time.Hour),
		TotalSeats:   seats,
		PricePerSeat: price,
	})
	require.NoError(t, err)
	return ride
}

func (m *marketplace) available(t *testing.T, rideID string) int {
	t.Helper()
	ride, err := m.catalog.Get(context.Background(), rideID)
	require.NoError(t, err)
	return ride.AvailableSeats
}
