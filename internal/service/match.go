package service

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"carpool/internal/domain"
	"carpool/internal/observability"
	"carpool/internal/repository"
)

const DefaultSearchRadiusKm = 30.0

// SearchQuery holds every optional search constraint. Zero values mean
// "no constraint".
type SearchQuery struct {
	Origin      string
	Destination string
	MaxPrice    *float64
	DateFrom    time.Time
	DateTo      time.Time
	Coord       *domain.Coordinate
	RadiusKm    float64
	Phrase      string
	MinRating   float64
	Limit       int
}

// RideSummary is one search hit with its ranking signals and driver info.
type RideSummary struct {
	Ride             *domain.Ride
	DriverName       string
	DriverReputation float64
	DistanceKm       *float64
	Relevance        float64
}

// MatchEngineConfig tunes search defaults.
type MatchEngineConfig struct {
	DefaultRadiusKm float64
}

// MatchEngine answers ride searches. It holds no state of its own and only
// reads snapshots from the store.
type MatchEngine struct {
	rideRepo repository.RideRepository
	userRepo repository.UserRepository
	resolver PlaceResolver
	cfg      MatchEngineConfig
	logger   *slog.Logger
}

// NewMatchEngine creates a new MatchEngine.
func NewMatchEngine(
	rideRepo repository.RideRepository,
	userRepo repository.UserRepository,
	resolver PlaceResolver,
	cfg MatchEngineConfig,
	logger *slog.Logger,
) *MatchEngine {
	if cfg.DefaultRadiusKm <= 0 {
		cfg.DefaultRadiusKm = DefaultSearchRadiusKm
	}
	return &MatchEngine{
		rideRepo: rideRepo,
		userRepo: userRepo,
		resolver: resolver,
		cfg:      cfg,
		logger:   logger,
	}
}

// geoPlan is the outcome of resolving the query's place constraints.
type geoPlan struct {
	radiusKm  float64
	originRef *domain.Coordinate
	destRef   *domain.Coordinate

	// Texts whose geo filter was skipped; they only influence ranking.
	originText string
	destText   string
}

// Search returns the rides matching q, best first.
func (e *MatchEngine) Search(ctx context.Context, q SearchQuery) ([]RideSummary, error) {
	start := time.Now()
	defer func() { observability.SearchLatency.Observe(time.Since(start).Seconds()) }()

	rides, err := e.rideRepo.ListActive(ctx, repository.RideFilter{
		MaxPrice:      q.MaxPrice,
		DepartureFrom: q.DateFrom,
		DepartureTo:   q.DateTo,
	})
	if err != nil {
		return nil, translate(err)
	}
	if len(rides) == 0 {
		observability.SearchResults.Observe(0)
		return []RideSummary{}, nil
	}

	drivers, err := e.userRepo.GetByIDs(ctx, driverIDs(rides))
	if err != nil {
		return nil, translate(err)
	}

	plan, err := e.plan(ctx, q)
	if err != nil {
		return nil, err
	}

	phrase := strings.TrimSpace(q.Phrase)
	scored := make([]RideSummary, 0, len(rides))

	for _, ride := range rides {
		driver := drivers[ride.DriverID]
		reputation := driver.Reputation()
		if q.MinRating > 0 && reputation < q.MinRating {
			continue
		}

		distance, ok := plan.distance(ride)
		if !ok {
			continue
		}

		relevance := 0.0
		if phrase != "" {
			relevance = max(Relevance(phrase, ride.Origin), Relevance(phrase, ride.Destination))
			if !Qualifies(relevance) {
				continue
			}
		}
		if plan.originText != "" {
			relevance = max(relevance, Relevance(plan.originText, ride.Origin))
		}
		if plan.destText != "" {
			relevance = max(relevance, Relevance(plan.destText, ride.Destination))
		}

		summary := RideSummary{
			Ride:             ride,
			DriverReputation: reputation,
			DistanceKm:       distance,
			Relevance:        relevance,
		}
		if driver != nil {
			summary.DriverName = driver.Name
		}
		scored = append(scored, summary)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rank(scored, plan.ranksByDistance(), phrase != "" || plan.originText != "" || plan.destText != "")
	if q.Limit > 0 && len(scored) > q.Limit {
		scored = scored[:q.Limit]
	}

	observability.SearchResults.Observe(float64(len(scored)))
	return scored, nil
}

// plan resolves origin and destination texts concurrently.
func (e *MatchEngine) plan(ctx context.Context, q SearchQuery) (geoPlan, error) {
	plan := geoPlan{radiusKm: e.cfg.DefaultRadiusKm}
	if q.RadiusKm > 0 {
		plan.radiusKm = q.RadiusKm
	}

	origin := strings.TrimSpace(q.Origin)
	destination := strings.TrimSpace(q.Destination)

	useRequester := q.Coord != nil && q.RadiusKm > 0 && q.Coord.Valid()
	if useRequester {
		c := *q.Coord
		plan.originRef = &c
		plan.originText = origin
		origin = ""
	}

	g, gctx := errgroup.WithContext(ctx)
	if origin != "" {
		g.Go(func() error {
			if c, ok := e.resolve(gctx, origin); ok {
				plan.originRef = &c
			} else {
				plan.originText = origin
			}
			return nil
		})
	}
	if destination != "" {
		g.Go(func() error {
			if c, ok := e.resolve(gctx, destination); ok {
				plan.destRef = &c
			} else {
				plan.destText = destination
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return geoPlan{}, err
	}
	return plan, ctx.Err()
}

func (e *MatchEngine) resolve(ctx context.Context, place string) (domain.Coordinate, bool) {
	if e.resolver == nil {
		return domain.Coordinate{}, false
	}
	c, ok := e.resolver.Resolve(ctx, place)
	if !ok {
		e.logger.Debug("place unresolved, skipping geo filter", "place", place)
	}
	return c, ok
}

// distance applies the active geo filters to ride. It returns the ranking
// distance (origin first, else destination) and whether the ride passes.
// A ride without a coordinate for an active filter never passes it.
func (p geoPlan) distance(ride *domain.Ride) (*float64, bool) {
	var rankDistance *float64

	if p.originRef != nil {
		if ride.OriginCoord == nil {
			return nil, false
		}
		d := domain.HaversineKm(*p.originRef, *ride.OriginCoord)
		if d > p.radiusKm {
			return nil, false
		}
		rankDistance = &d
	}

	if p.destRef != nil {
		if ride.DestCoord == nil {
			return nil, false
		}
		d := domain.HaversineKm(*p.destRef, *ride.DestCoord)
		if d > p.radiusKm {
			return nil, false
		}
		if rankDistance == nil {
			rankDistance = &d
		}
	}
	return rankDistance, true
}

func (p geoPlan) ranksByDistance() bool {
	return p.originRef != nil || p.destRef != nil
}

// rank orders hits by distance, else relevance, else departure.
// Ties break on departure then ride ID.
func rank(hits []RideSummary, byDistance, byRelevance bool) {
	sort.SliceStable(hits, func(i, j int) bool {
		a, b := hits[i], hits[j]
		if byDistance && a.DistanceKm != nil && b.DistanceKm != nil && *a.DistanceKm != *b.DistanceKm {
			return *a.DistanceKm < *b.DistanceKm
		}
		if !byDistance && byRelevance && a.Relevance != b.Relevance {
			return a.Relevance > b.Relevance
		}
		if !a.Ride.DepartureAt.Equal(b.Ride.DepartureAt) {
			return a.Ride.DepartureAt.Before(b.Ride.DepartureAt)
		}
		return a.Ride.ID < b.Ride.ID
	})
}

func driverIDs(rides []*domain.Ride) []string {
	seen := make(map[string]struct{}, len(rides))
	ids := make([]string, 0, len(rides))
	for _, ride := range rides {
		if _, ok := seen[ride.DriverID]; ok {
			continue
		}
		seen[ride.DriverID] = struct{}{}
		ids = append(ids, ride.DriverID)
	}
	return ids
}
