package app

import (
	"database/sql"
	"errors"
	"log/slog"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"carpool/internal/config"
	"carpool/internal/domain"
	"carpool/internal/events"
	"carpool/internal/geocode"
	"carpool/internal/handler"
	"carpool/internal/identity"
	"carpool/internal/middleware"
	internalRedis "carpool/internal/redis"
	"carpool/internal/repository"
	"carpool/internal/repository/memory"
	"carpool/internal/repository/postgres"
	"carpool/internal/service"
)

// Infra holds the external connections. Nil members mean the backend is
// disabled and an in-process fallback is used.
type Infra struct {
	DB       *sql.DB
	Redis    *redis.Client
	NewRelic *newrelic.Application
}

type repositories struct {
	rides        repository.RideRepository
	reservations repository.ReservationRepository
	ratings      repository.RatingRepository
	users        repository.UserRepository
}

// Services is the wired application core.
type Services struct {
	Catalog    *service.RideCatalog
	Ledger     *service.BookingLedger
	Engine     *service.MatchEngine
	Reputation *service.ReputationAggregator
	Identity   *service.IdentityService

	infra     Infra
	places    []string
	publisher service.EventPublisher
	tokens    middleware.IdentityProvider
	closers   []func() error
}

// NewServices wires repositories, geocoding, events and services from cfg.
func NewServices(cfg *config.Config, infra Infra, logger *slog.Logger) *Services {
	repos := newRepositories(cfg, infra)

	static := geocode.NewStatic(nil)
	var provider service.GeocodeProvider = static
	if cfg.Geocode.Provider == "nominatim" {
		provider = geocode.Chain{
			geocode.NewNominatimClient(cfg.Geocode.Endpoint, cfg.Geocode.UserAgent, cfg.Geocode.CountryCode),
			static,
		}
	}

	var cache service.GeocodeCache = geocode.NewMemoryCache()
	if infra.Redis != nil {
		cache = internalRedis.NewGeocodeCache(infra.Redis)
	}

	resolver := service.NewLocationResolver(provider, cache, service.LocationResolverConfig{
		TTL:     cfg.Geocode.CacheTTL,
		Timeout: cfg.Geocode.Timeout,
	}, logger)

	s := &Services{infra: infra, places: static.Names()}

	if cfg.Kafka.Enabled {
		kafka := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		s.publisher = kafka
		s.closers = append(s.closers, kafka.Close)
	} else {
		s.publisher = service.NewNotificationPublisher(logger)
	}

	if cfg.Auth.Enabled {
		s.tokens = identity.NewJWTProvider(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	}

	clock := service.SystemClock{}
	s.Catalog = service.NewRideCatalog(repos.rides, resolver, clock, s.publisher, logger)
	s.Ledger = service.NewBookingLedger(repos.rides, repos.reservations, clock, service.BookingLedgerConfig{
		MaxAttempts: cfg.Booking.MaxAttempts,
		RetryDelay:  cfg.Booking.RetryDelay,
	}, s.publisher, logger)
	s.Engine = service.NewMatchEngine(repos.rides, repos.users, resolver, service.MatchEngineConfig{
		DefaultRadiusKm: cfg.Matching.DefaultRadiusKm,
	}, logger)
	s.Reputation = service.NewReputationAggregator(repos.rides, repos.ratings, repos.users, clock, s.publisher, logger)
	s.Identity = service.NewIdentityService(repos.users)

	return s
}

func newRepositories(cfg *config.Config, infra Infra) repositories {
	if infra.DB != nil {
		return repositories{
			rides:        postgres.NewRideRepository(infra.DB),
			reservations: postgres.NewReservationRepository(infra.DB),
			ratings:      postgres.NewRatingRepository(infra.DB),
			users:        postgres.NewUserRepository(infra.DB),
		}
	}

	store := memory.NewStore()
	for _, u := range cfg.SeedUsers {
		store.PutUser(domain.User{ID: u.ID, Name: u.Name, Phone: u.Phone})
	}
	return repositories{
		rides:        store.Rides(),
		reservations: store.Reservations(),
		ratings:      store.Ratings(),
		users:        store.Users(),
	}
}

// RouterDeps builds the HTTP layer over the services.
func (s *Services) RouterDeps() RouterDeps {
	deps := RouterDeps{
		RideHandler:        handler.NewRideHandler(s.Catalog, s.Engine),
		ReservationHandler: handler.NewReservationHandler(s.Ledger),
		RatingHandler:      handler.NewRatingHandler(s.Reputation),
		UserHandler:        handler.NewUserHandler(s.Identity),
		PlaceHandler:       handler.NewPlaceHandler(s.places),
		IdentityProvider:   s.tokens,
		NewRelicApp:        s.infra.NewRelic,
	}
	// A nil *redis.Client must not become a non-nil interface.
	if s.infra.Redis != nil {
		deps.ResponseStore = s.infra.Redis
	}
	return deps
}

// Close releases resources owned by the services.
func (s *Services) Close() error {
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}
