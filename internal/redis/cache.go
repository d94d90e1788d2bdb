package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"carpool/internal/service"
)

// KV is the subset of the go-redis client the stores need.
type KV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// Ensure the real client satisfies KV.
var _ KV = (*redis.Client)(nil)

const geocodeCachePrefix = "geocode:"

// GeocodeCache stores geocoding answers in Redis.
type GeocodeCache struct {
	client KV
}

// NewGeocodeCache creates a new GeocodeCache.
func NewGeocodeCache(client KV) *GeocodeCache {
	return &GeocodeCache{client: client}
}

// cachedGeocode is the JSON form of a cached answer.
type cachedGeocode struct {
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Found bool    `json:"found"`
}

// Get retrieves a geocode answer from cache. Returns nil on a miss.
func (s *GeocodeCache) Get(ctx context.Context, key string) (*service.GeocodeEntry, error) {
	data, err := s.client.Get(ctx, geocodeCachePrefix+key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var cached cachedGeocode
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, err
	}

	entry := service.GeocodeEntry{Found: cached.Found}
	entry.Coord.Lat = cached.Lat
	entry.Coord.Lng = cached.Lng
	return &entry, nil
}

// Set stores a geocode answer for ttl.
func (s *GeocodeCache) Set(ctx context.Context, key string, entry service.GeocodeEntry, ttl time.Duration) error {
	data, err := json.Marshal(cachedGeocode{Lat: entry.Coord.Lat, Lng: entry.Coord.Lng, Found: entry.Found})
	if err != nil {
		return err
	}
	return s.client.Set(ctx, geocodeCachePrefix+key, data, ttl).Err()
}

var _ service.GeocodeCache = (*GeocodeCache)(nil)
