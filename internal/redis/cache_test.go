package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carpool/internal/domain"
	"carpool/internal/service"
)

func TestGeocodeCache(t *testing.T) {
	kv := newFakeKV()
	cache := NewGeocodeCache(kv)
	ctx := context.Background()

	entry, err := cache.Get(ctx, "praha")
	require.NoError(t, err)
	assert.Nil(t, entry)

	want := service.GeocodeEntry{Coord: domain.Coordinate{Lat: 50.0755, Lng: 14.4378}, Found: true}
	require.NoError(t, cache.Set(ctx, "praha", want, 24*time.Hour))
	assert.Equal(t, 24*time.Hour, kv.ttls["geocode:praha"])

	entry, err = cache.Get(ctx, "praha")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, want, *entry)

	entry, err = cache.Get(ctx, "brno")
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestGeocodeCache_NegativeEntry(t *testing.T) {
	cache := NewGeocodeCache(newFakeKV())
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "atlantis", service.GeocodeEntry{}, time.Hour))
	entry, err := cache.Get(ctx, "atlantis")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.False(t, entry.Found)
}
