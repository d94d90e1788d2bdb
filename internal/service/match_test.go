package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carpool/internal/domain"
)

func rideIDs(hits []RideSummary) []string {
	ids := make([]string, 0, len(hits))
	for _, h := range hits {
		ids = append(ids, h.Ride.ID)
	}
	return ids
}

func TestMatchEngine_StructuralFilters(t *testing.T) {
	f := newFixture(czechCities())
	ctx := context.Background()

	cheap := f.publish("driver-1", "Praha->Brno", 3, 200, 24*time.Hour)
	pricey := f.publish("driver-1", "Praha->Brno", 3, 500, 48*time.Hour)
	later := f.publish("driver-2", "Praha->Brno", 3, 250, 96*time.Hour)
	full := f.publish("driver-2", "Praha->Brno", 1, 100, 24*time.Hour)
	_, err := f.ledger.Reserve(ctx, ReserveRequest{RideID: full.ID, PassengerID: "passenger-1", Seats: 1})
	require.NoError(t, err)

	all, err := f.engine.Search(ctx, SearchQuery{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{cheap.ID, full.ID, pricey.ID, later.ID}, rideIDs(all))

	maxPrice := 300.0
	hits, err := f.engine.Search(ctx, SearchQuery{MaxPrice: &maxPrice})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{cheap.ID, full.ID, later.ID}, rideIDs(hits))

	hits, err = f.engine.Search(ctx, SearchQuery{
		DateFrom: f.clock.Now().Add(36 * time.Hour),
		DateTo:   f.clock.Now().Add(72 * time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{pricey.ID}, rideIDs(hits))

	hits, err = f.engine.Search(ctx, SearchQuery{Limit: 2})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{cheap.ID, full.ID}, rideIDs(hits))
}

func TestMatchEngine_FullRidesStayListed(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()

	ride := f.publish("driver-1", "Praha->Brno", 1, 250, 24*time.Hour)
	_, err := f.ledger.Reserve(ctx, ReserveRequest{RideID: ride.ID, PassengerID: "passenger-1", Seats: 1})
	require.NoError(t, err)

	hits, err := f.engine.Search(ctx, SearchQuery{})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, ride.ID, hits[0].Ride.ID)
	assert.Zero(t, hits[0].Ride.AvailableSeats)
}

func TestMatchEngine_MinRatingAndEnrichment(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()

	good := f.publish("driver-1", "Praha->Brno", 3, 250, 24*time.Hour)
	poor := f.publish("driver-2", "Praha->Brno", 3, 250, 48*time.Hour)
	_, err := f.reputation.Submit(ctx, SubmitRatingRequest{RideID: poor.ID, RaterID: "passenger-1", RatedID: "driver-2", Score: 2})
	require.NoError(t, err)

	hits, err := f.engine.Search(ctx, SearchQuery{MinRating: 4})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, good.ID, hits[0].Ride.ID)
	assert.Equal(t, "Petr Novak", hits[0].DriverName)
	assert.Equal(t, 5.0, hits[0].DriverReputation)

	hits, err = f.engine.Search(ctx, SearchQuery{})
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, 2.0, hits[1].DriverReputation)
}

func TestMatchEngine_GeoFilterByOriginText(t *testing.T) {
	f := newFixture(czechCities())
	ctx := context.Background()

	fromPraha := f.publish("driver-1", "Praha->Brno", 3, 250, 48*time.Hour)
	fromKladno := f.publish("driver-1", "Kladno->Brno", 3, 250, 24*time.Hour)
	f.publish("driver-2", "Brno->Ostrava", 3, 150, 24*time.Hour)
	f.publish("driver-2", "Zapadlakov->Brno", 3, 150, 24*time.Hour)

	hits, err := f.engine.Search(ctx, SearchQuery{Origin: "Praha"})
	require.NoError(t, err)
	assert.Equal(t, []string{fromPraha.ID, fromKladno.ID}, rideIDs(hits))
	require.NotNil(t, hits[0].DistanceKm)
	assert.InDelta(t, 0, *hits[0].DistanceKm, 1e-9)
	assert.Less(t, *hits[1].DistanceKm, 30.0)

	hits, err = f.engine.Search(ctx, SearchQuery{Origin: "Praha", RadiusKm: 5})
	require.NoError(t, err)
	assert.Equal(t, []string{fromPraha.ID}, rideIDs(hits))
}

func TestMatchEngine_RidesWithoutCoordinatesDropOutOfGeoFilters(t *testing.T) {
	f := newFixture(czechCities())
	ctx := context.Background()

	located := f.publish("driver-1", "Praha->Brno", 3, 250, 24*time.Hour)
	unlocatedOrigin := f.publish("driver-2", "Zapadlakov->Brno", 3, 150, 24*time.Hour)
	unlocatedDest := f.publish("driver-2", "Praha->Horni Dolni", 3, 150, 24*time.Hour)
	require.Nil(t, unlocatedOrigin.OriginCoord)
	require.Nil(t, unlocatedDest.DestCoord)

	all, err := f.engine.Search(ctx, SearchQuery{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{located.ID, unlocatedOrigin.ID, unlocatedDest.ID}, rideIDs(all))

	hits, err := f.engine.Search(ctx, SearchQuery{Origin: "Praha"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{located.ID, unlocatedDest.ID}, rideIDs(hits))

	hits, err = f.engine.Search(ctx, SearchQuery{Origin: "Praha", Destination: "Brno"})
	require.NoError(t, err)
	assert.Equal(t, []string{located.ID}, rideIDs(hits))
}

func TestMatchEngine_RequesterCoordinateWinsOverOriginText(t *testing.T) {
	f := newFixture(czechCities())
	ctx := context.Background()

	f.publish("driver-1", "Praha->Brno", 3, 250, 24*time.Hour)
	fromBrno := f.publish("driver-2", "Brno->Ostrava", 3, 150, 24*time.Hour)

	near := domain.Coordinate{Lat: 49.20, Lng: 16.61}
	hits, err := f.engine.Search(ctx, SearchQuery{Origin: "Praha", Coord: &near, RadiusKm: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{fromBrno.ID}, rideIDs(hits))
}

func TestMatchEngine_DestinationFilter(t *testing.T) {
	f := newFixture(czechCities())
	ctx := context.Background()

	toBrno := f.publish("driver-1", "Praha->Brno", 3, 250, 24*time.Hour)
	f.publish("driver-1", "Praha->Ostrava", 3, 250, 24*time.Hour)

	hits, err := f.engine.Search(ctx, SearchQuery{Origin: "Praha", Destination: "Brno"})
	require.NoError(t, err)
	assert.Equal(t, []string{toBrno.ID}, rideIDs(hits))
}

func TestMatchEngine_UnresolvedOriginDegradesToNoGeoFilter(t *testing.T) {
	f := newFixture(czechCities())
	ctx := context.Background()

	f.publish("driver-1", "Praha->Brno", 3, 250, 24*time.Hour)
	f.publish("driver-2", "Brno->Ostrava", 3, 150, 48*time.Hour)
	f.publish("driver-2", "Zapadlakov->Brno", 3, 150, 72*time.Hour)

	unconstrained, err := f.engine.Search(ctx, SearchQuery{})
	require.NoError(t, err)

	degraded, err := f.engine.Search(ctx, SearchQuery{Origin: "Nowhere Special"})
	require.NoError(t, err)

	assert.NotEmpty(t, degraded)
	assert.ElementsMatch(t, rideIDs(unconstrained), rideIDs(degraded))
}

func TestMatchEngine_PhraseRelevance(t *testing.T) {
	f := newFixture(nil)
	ctx := context.Background()

	toPraha := f.publish("driver-1", "Brno->Praha", 3, 250, 48*time.Hour)
	exact := f.publish("driver-1", "Prah->Ostrava", 3, 250, 72*time.Hour)
	f.publish("driver-2", "Brno->Ostrava", 3, 150, 24*time.Hour)

	hits, err := f.engine.Search(ctx, SearchQuery{Phrase: "prah"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{toPraha.ID, exact.ID}, rideIDs(hits))
	for _, h := range hits {
		assert.GreaterOrEqual(t, h.Relevance, RelevanceThreshold)
	}

	hits, err = f.engine.Search(ctx, SearchQuery{Phrase: "xyz"})
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestMatchEngine_EmptyCatalog(t *testing.T) {
	f := newFixture(czechCities())

	hits, err := f.engine.Search(context.Background(), SearchQuery{Origin: "Praha", Phrase: "x"})
	require.NoError(t, err)
	assert.NotNil(t, hits)
	assert.Empty(t, hits)
}

func TestMatchEngine_HonoursCancelledContext(t *testing.T) {
	f := newFixture(czechCities())
	f.publish("driver-1", "Praha->Brno", 3, 250, 24*time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.engine.Search(ctx, SearchQuery{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRank_TieBreaks(t *testing.T) {
	at := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	d := 10.0
	hits := []RideSummary{
		{Ride: &domain.Ride{ID: "b", DepartureAt: at}, DistanceKm: &d},
		{Ride: &domain.Ride{ID: "a", DepartureAt: at}, DistanceKm: &d},
		{Ride: &domain.Ride{ID: "c", DepartureAt: at.Add(-time.Hour)}, DistanceKm: &d},
	}
	rank(hits, true, false)
	assert.Equal(t, []string{"c", "a", "b"}, rideIDs(hits))
}
