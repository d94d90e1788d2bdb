package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"carpool/internal/domain"
	"carpool/internal/middleware"
	"carpool/internal/service"
)

const maxSearchLimit = 100

// RideHandler handles HTTP requests for rides.
type RideHandler struct {
	catalog *service.RideCatalog
	engine  *service.MatchEngine
}

// NewRideHandler creates a new RideHandler.
func NewRideHandler(catalog *service.RideCatalog, engine *service.MatchEngine) *RideHandler {
	return &RideHandler{
		catalog: catalog,
		engine:  engine,
	}
}

// PublishRideRequest is the HTTP request body for publishing a ride.
type PublishRideRequest struct {
	Origin       string          `json:"origin"`
	Destination  string          `json:"destination"`
	OriginCoord  *CoordinateBody `json:"origin_coord,omitempty"`
	DestCoord    *CoordinateBody `json:"destination_coord,omitempty"`
	DepartureAt  time.Time       `json:"departure_at"`
	TotalSeats   int             `json:"total_seats"`
	PricePerSeat float64         `json:"price_per_seat"`
	Note         string          `json:"note,omitempty"`
}

// Publish handles POST /v1/rides
func (h *RideHandler) Publish(c *gin.Context) {
	var req PublishRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	ride, err := h.catalog.Publish(c.Request.Context(), service.PublishRideRequest{
		DriverID:     middleware.UserID(c),
		Origin:       req.Origin,
		Destination:  req.Destination,
		DepartureAt:  req.DepartureAt,
		TotalSeats:   req.TotalSeats,
		PricePerSeat: req.PricePerSeat,
		Note:         req.Note,
		OriginCoord:  req.OriginCoord.toDomain(),
		DestCoord:    req.DestCoord.toDomain(),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, newRideResponse(ride))
}

// Search handles GET /v1/rides/search
func (h *RideHandler) Search(c *gin.Context) {
	query, err := parseSearchQuery(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	hits, err := h.engine.Search(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newSummaryResponses(hits))
}

// GetRide handles GET /v1/rides/:id
func (h *RideHandler) GetRide(c *gin.Context) {
	ride, err := h.catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newRideResponse(ride))
}

// CancelRide handles POST /v1/rides/:id/cancel
func (h *RideHandler) CancelRide(c *gin.Context) {
	h.settle(c, h.catalog.Cancel)
}

// CompleteRide handles POST /v1/rides/:id/complete
func (h *RideHandler) CompleteRide(c *gin.Context) {
	h.settle(c, h.catalog.Complete)
}

// settle runs a driver-only status transition and returns the stored ride.
func (h *RideHandler) settle(c *gin.Context, op func(ctx context.Context, rideID, requesterID string) error) {
	ctx := c.Request.Context()
	rideID := c.Param("id")

	if err := op(ctx, rideID, middleware.UserID(c)); err != nil {
		respondError(c, err)
		return
	}

	ride, err := h.catalog.Get(ctx, rideID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newRideResponse(ride))
}

// ListByDriver handles GET /v1/users/:id/rides
func (h *RideHandler) ListByDriver(c *gin.Context) {
	rides, err := h.catalog.ListByDriver(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newRideResponses(rides))
}

type queryError string

func (e queryError) Error() string { return string(e) }

// parseSearchQuery reads the search parameters from the query string.
// Dates accept RFC 3339 timestamps or plain YYYY-MM-DD days; a plain
// date_to covers the whole day.
func parseSearchQuery(c *gin.Context) (service.SearchQuery, error) {
	q := service.SearchQuery{
		Origin:      strings.TrimSpace(c.Query("origin")),
		Destination: strings.TrimSpace(c.Query("destination")),
		Phrase:      strings.TrimSpace(c.Query("q")),
	}

	if v, ok := c.GetQuery("max_price"); ok {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil || price < 0 {
			return q, queryError("max_price must be a non-negative number")
		}
		q.MaxPrice = &price
	}

	var err error
	if q.DateFrom, err = parseDate(c.Query("date_from"), false); err != nil {
		return q, queryError("date_from must be RFC 3339 or YYYY-MM-DD")
	}
	if q.DateTo, err = parseDate(c.Query("date_to"), true); err != nil {
		return q, queryError("date_to must be RFC 3339 or YYYY-MM-DD")
	}

	latRaw, hasLat := c.GetQuery("lat")
	lngRaw, hasLng := c.GetQuery("lng")
	if hasLat != hasLng {
		return q, queryError("lat and lng must be given together")
	}
	if hasLat {
		lat, errLat := strconv.ParseFloat(latRaw, 64)
		lng, errLng := strconv.ParseFloat(lngRaw, 64)
		coord := domain.Coordinate{Lat: lat, Lng: lng}
		if errLat != nil || errLng != nil || !coord.Valid() {
			return q, queryError("lat and lng must be a valid coordinate")
		}
		q.Coord = &coord
	}

	if v, ok := c.GetQuery("radius_km"); ok {
		radius, err := strconv.ParseFloat(v, 64)
		if err != nil || radius <= 0 {
			return q, queryError("radius_km must be a positive number")
		}
		q.RadiusKm = radius
	}

	if v, ok := c.GetQuery("min_rating"); ok {
		rating, err := strconv.ParseFloat(v, 64)
		if err != nil || rating < 0 || rating > domain.MaxRatingScore {
			return q, queryError("min_rating must be between 0 and 5")
		}
		q.MinRating = rating
	}

	if v, ok := c.GetQuery("limit"); ok {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			return q, queryError("limit must be a positive integer")
		}
		q.Limit = min(limit, maxSearchLimit)
	}

	return q, nil
}

func parseDate(raw string, endOfDay bool) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	day, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		return day.Add(24*time.Hour - time.Nanosecond), nil
	}
	return day, nil
}
