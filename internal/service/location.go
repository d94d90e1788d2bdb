package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"carpool/internal/domain"
	"carpool/internal/observability"
)

const (
	DefaultGeocodeTTL     = 24 * time.Hour
	DefaultGeocodeTimeout = 3 * time.Second
)

// GeocodeProvider turns a place name into a coordinate.
// found is false when the provider knows no such place.
type GeocodeProvider interface {
	Geocode(ctx context.Context, place string) (coord domain.Coordinate, found bool, err error)
}

// GeocodeEntry is a cached provider answer, including negative answers.
type GeocodeEntry struct {
	Coord domain.Coordinate `json:"coord"`
	Found bool              `json:"found"`
}

// GeocodeCache stores provider answers by normalized place name.
// Get returns nil on a miss.
type GeocodeCache interface {
	Get(ctx context.Context, key string) (*GeocodeEntry, error)
	Set(ctx context.Context, key string, entry GeocodeEntry, ttl time.Duration) error
}

// LocationResolverConfig tunes caching and provider timeouts.
type LocationResolverConfig struct {
	TTL     time.Duration
	Timeout time.Duration
}

// LocationResolver resolves free-text place names with caching.
// It never returns an error: anything that goes wrong means "unresolved".
type LocationResolver struct {
	provider GeocodeProvider
	cache    GeocodeCache
	cfg      LocationResolverConfig
	logger   *slog.Logger
	group    singleflight.Group
}

// NewLocationResolver creates a new LocationResolver. cache may be nil.
func NewLocationResolver(provider GeocodeProvider, cache GeocodeCache, cfg LocationResolverConfig, logger *slog.Logger) *LocationResolver {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultGeocodeTTL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultGeocodeTimeout
	}
	return &LocationResolver{
		provider: provider,
		cache:    cache,
		cfg:      cfg,
		logger:   logger,
	}
}

// NormalizePlace lower-cases, trims and collapses inner whitespace.
func NormalizePlace(place string) string {
	return strings.Join(strings.Fields(strings.ToLower(place)), " ")
}

// Resolve returns the coordinate of place, or false if it cannot be resolved.
func (r *LocationResolver) Resolve(ctx context.Context, place string) (domain.Coordinate, bool) {
	key := NormalizePlace(place)
	if key == "" || r.provider == nil {
		return domain.Coordinate{}, false
	}

	if r.cache != nil {
		entry, err := r.cache.Get(ctx, key)
		if err != nil {
			r.logger.Warn("geocode cache read failed", "place", key, "error", err)
		} else if entry != nil {
			observability.GeocodeLookups.WithLabelValues("hit").Inc()
			return entry.Coord, entry.Found
		}
	}

	// Concurrent misses for the same key share one provider call.
	ch := r.group.DoChan(key, func() (any, error) {
		return r.lookup(key)
	})

	select {
	case <-ctx.Done():
		return domain.Coordinate{}, false
	case res := <-ch:
		if res.Err != nil {
			return domain.Coordinate{}, false
		}
		entry := res.Val.(GeocodeEntry)
		return entry.Coord, entry.Found
	}
}

// lookup calls the provider on its own deadline so that one caller giving up
// does not fail the others waiting on the same key.
func (r *LocationResolver) lookup(key string) (GeocodeEntry, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.Timeout)
	defer cancel()

	coord, found, err := r.provider.Geocode(ctx, key)
	if err == nil && found && !coord.Valid() {
		found = false
	}
	if err != nil {
		observability.GeocodeLookups.WithLabelValues("error").Inc()
		r.logger.Warn("geocode failed", "place", key, "error", err)
		return GeocodeEntry{}, err
	}
	observability.GeocodeLookups.WithLabelValues("miss").Inc()

	entry := GeocodeEntry{Coord: coord, Found: found}
	if r.cache != nil {
		if err := r.cache.Set(ctx, key, entry, r.cfg.TTL); err != nil {
			r.logger.Warn("geocode cache write failed", "place", key, "error", err)
		}
	}
	return entry, nil
}
