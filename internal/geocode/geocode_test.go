package geocode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carpool/internal/domain"
	"carpool/internal/service"
)

func TestStatic_FoldsCaseAndDiacritics(t *testing.T) {
	s := NewStatic(map[string]domain.Coordinate{"Letiště Václava Havla": {Lat: 50.1008, Lng: 14.26}})
	ctx := context.Background()

	c, ok, err := s.Geocode(ctx, "plzen")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 49.7384, c.Lat)

	_, ok, _ = s.Geocode(ctx, "  HRADEC   kralove ")
	assert.True(t, ok)

	_, ok, _ = s.Geocode(ctx, "letiste vaclava havla")
	assert.True(t, ok)

	_, ok, _ = s.Geocode(ctx, "Pra")
	assert.False(t, ok)

	assert.Contains(t, s.Names(), "Praha")
}

type failingProvider struct{ err error }

func (f failingProvider) Geocode(context.Context, string) (domain.Coordinate, bool, error) {
	return domain.Coordinate{}, false, f.err
}

func TestChain(t *testing.T) {
	boom := errors.New("boom")
	chain := Chain{failingProvider{err: boom}, NewStatic(nil)}

	c, ok, err := chain.Geocode(context.Background(), "brno")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 16.6068, c.Lng)

	_, ok, err = chain.Geocode(context.Background(), "atlantis")
	assert.False(t, ok)
	assert.ErrorIs(t, err, boom)
}

func TestNominatimClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "cz", r.URL.Query().Get("countrycodes"))
		assert.Equal(t, "carpool-test", r.Header.Get("User-Agent"))

		switch r.URL.Query().Get("q") {
		case "brno":
			_, _ = w.Write([]byte(`[{"lat":"49.1951","lon":"16.6068","display_name":"Brno"}]`))
		case "broken":
			w.WriteHeader(http.StatusBadGateway)
		default:
			_, _ = w.Write([]byte(`[]`))
		}
	}))
	defer srv.Close()

	client := NewNominatimClient(srv.URL, "carpool-test", "cz")
	ctx := context.Background()

	c, ok, err := client.Geocode(ctx, "brno")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, domain.Coordinate{Lat: 49.1951, Lng: 16.6068}, c)

	_, ok, err = client.Geocode(ctx, "nowhere")
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = client.Geocode(ctx, "broken")
	assert.Error(t, err)
}

func TestMemoryCache_Expiry(t *testing.T) {
	cache := NewMemoryCache()
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "praha", service.GeocodeEntry{Found: true, Coord: domain.Coordinate{Lat: 50, Lng: 14}}, time.Hour))

	e, err := cache.Get(ctx, "praha")
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.True(t, e.Found)

	now = now.Add(2 * time.Hour)
	e, err = cache.Get(ctx, "praha")
	require.NoError(t, err)
	assert.Nil(t, e)
}
