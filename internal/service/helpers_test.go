package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"carpool/internal/domain"
	"carpool/internal/logging"
	"carpool/internal/repository/memory"
)

var (
	praha   = domain.Coordinate{Lat: 50.0755, Lng: 14.4378}
	brno    = domain.Coordinate{Lat: 49.1951, Lng: 16.6068}
	ostrava = domain.Coordinate{Lat: 49.8209, Lng: 18.2625}
	kladno  = domain.Coordinate{Lat: 50.1473, Lng: 14.1028}
)

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFixedClock() *fixedClock {
	return &fixedClock{now: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)}
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// tableResolver resolves a fixed set of normalized names.
type tableResolver map[string]domain.Coordinate

func (t tableResolver) Resolve(_ context.Context, place string) (domain.Coordinate, bool) {
	c, ok := t[NormalizePlace(place)]
	return c, ok
}

func czechCities() tableResolver {
	return tableResolver{"praha": praha, "brno": brno, "ostrava": ostrava, "kladno": kladno}
}

// MockGeocodeProvider is a mock implementation of GeocodeProvider.
type MockGeocodeProvider struct {
	mock.Mock
}

func (m *MockGeocodeProvider) Geocode(ctx context.Context, place string) (domain.Coordinate, bool, error) {
	args := m.Called(ctx, place)
	return args.Get(0).(domain.Coordinate), args.Bool(1), args.Error(2)
}

// mapCache is a GeocodeCache backed by a map; TTLs are recorded, not enforced.
type mapCache struct {
	mu      sync.Mutex
	entries map[string]GeocodeEntry
	ttls    map[string]time.Duration
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string]GeocodeEntry), ttls: make(map[string]time.Duration)}
}

func (c *mapCache) Get(_ context.Context, key string) (*GeocodeEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (c *mapCache) Set(_ context.Context, key string, entry GeocodeEntry, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry
	c.ttls[key] = ttl
	return nil
}

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event domain.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) types() []domain.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// fixture wires every component over one in-memory store.
type fixture struct {
	store      *memory.Store
	clock      *fixedClock
	events     *recordingPublisher
	catalog    *RideCatalog
	ledger     *BookingLedger
	engine     *MatchEngine
	reputation *ReputationAggregator
	identity   *IdentityService
}

func newFixture(resolver PlaceResolver) *fixture {
	store := memory.NewStore()
	clock := newFixedClock()
	events := &recordingPublisher{}
	logger := logging.Discard()

	for _, u := range []domain.User{
		{ID: "driver-1", Name: "Petr Novak", Phone: "777 111 222"},
		{ID: "driver-2", Name: "Eva Dvorakova"},
		{ID: "passenger-1", Name: "Jan Svoboda"},
		{ID: "passenger-2", Name: "Lucie Cerna"},
	} {
		store.PutUser(u)
	}

	return &fixture{
		store:      store,
		clock:      clock,
		events:     events,
		catalog:    NewRideCatalog(store.Rides(), resolver, clock, events, logger),
		ledger:     NewBookingLedger(store.Rides(), store.Reservations(), clock, BookingLedgerConfig{}, events, logger),
		engine:     NewMatchEngine(store.Rides(), store.Users(), resolver, MatchEngineConfig{}, logger),
		reputation: NewReputationAggregator(store.Rides(), store.Ratings(), store.Users(), clock, events, logger),
		identity:   NewIdentityService(store.Users()),
	}
}

func (f *fixture) publish(driverID, route string, seats int, price float64, in time.Duration) *domain.Ride {
	parts := strings.SplitN(route, "->", 2)
	ride, err := f.catalog.Publish(context.Background(), PublishRideRequest{
		DriverID:     driverID,
		Origin:       parts[0],
		Destination:  parts[1],
		DepartureAt:  f.clock.Now().Add(in),
		TotalSeats:   seats,
		PricePerSeat: price,
	})
	if err != nil {
		panic(err)
	}
	return ride
}
