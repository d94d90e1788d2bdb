package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "carpool"

var (
	SearchLatency = promauto.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "search_latency_seconds", Help: "Ride search latency seconds"})
	SearchResults = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "search_results",
		Help:      "Number of rides returned per search",
		Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100},
	})

	ReservationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "reservations_total", Help: "Reservation attempts by outcome"},
		[]string{"outcome"},
	)
	SeatConflictRetries = promauto.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "seat_conflict_retries_total", Help: "Seat updates retried after a concurrent writer won"})

	GeocodeLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "geocode_lookups_total", Help: "Place name lookups by result"},
		[]string{"result"},
	)

	RatingsTotal  = promauto.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "ratings_total", Help: "Total number of ratings submitted"})
	EventsDropped = promauto.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "events_dropped_total", Help: "Domain events that could not be published"})

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
