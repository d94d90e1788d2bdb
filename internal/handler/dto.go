package handler

import (
	"time"

	"carpool/internal/domain"
	"carpool/internal/service"
)

// CoordinateBody is a WGS84 position in request and response bodies.
type CoordinateBody struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (c *CoordinateBody) toDomain() *domain.Coordinate {
	if c == nil {
		return nil
	}
	return &domain.Coordinate{Lat: c.Lat, Lng: c.Lng}
}

func coordinateBody(c *domain.Coordinate) *CoordinateBody {
	if c == nil {
		return nil
	}
	return &CoordinateBody{Lat: c.Lat, Lng: c.Lng}
}

// RideResponse is the HTTP response for ride data.
type RideResponse struct {
	ID             string          `json:"id"`
	DriverID       string          `json:"driver_id"`
	Origin         string          `json:"origin"`
	Destination    string          `json:"destination"`
	OriginCoord    *CoordinateBody `json:"origin_coord,omitempty"`
	DestCoord      *CoordinateBody `json:"destination_coord,omitempty"`
	DepartureAt    time.Time       `json:"departure_at"`
	TotalSeats     int             `json:"total_seats"`
	AvailableSeats int             `json:"available_seats"`
	PricePerSeat   float64         `json:"price_per_seat"`
	Note           string          `json:"note,omitempty"`
	Status         string          `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	CancelledAt    *time.Time      `json:"cancelled_at,omitempty"`
}

func newRideResponse(r *domain.Ride) RideResponse {
	resp := RideResponse{
		ID:             r.ID,
		DriverID:       r.DriverID,
		Origin:         r.Origin,
		Destination:    r.Destination,
		OriginCoord:    coordinateBody(r.OriginCoord),
		DestCoord:      coordinateBody(r.DestCoord),
		DepartureAt:    r.DepartureAt,
		TotalSeats:     r.TotalSeats,
		AvailableSeats: r.AvailableSeats,
		PricePerSeat:   r.PricePerSeat,
		Note:           r.Note,
		Status:         string(r.Status),
		CreatedAt:      r.CreatedAt,
	}
	if !r.CancelledAt.IsZero() {
		t := r.CancelledAt
		resp.CancelledAt = &t
	}
	return resp
}

func newRideResponses(rides []*domain.Ride) []RideResponse {
	out := make([]RideResponse, 0, len(rides))
	for _, r := range rides {
		out = append(out, newRideResponse(r))
	}
	return out
}

// RideSummaryResponse is one search hit.
type RideSummaryResponse struct {
	RideResponse
	DriverName       string   `json:"driver_name"`
	DriverReputation float64  `json:"driver_reputation"`
	DistanceKm       *float64 `json:"distance_km,omitempty"`
	Relevance        float64  `json:"relevance,omitempty"`
}

func newSummaryResponses(hits []service.RideSummary) []RideSummaryResponse {
	out := make([]RideSummaryResponse, 0, len(hits))
	for _, h := range hits {
		out = append(out, RideSummaryResponse{
			RideResponse:     newRideResponse(h.Ride),
			DriverName:       h.DriverName,
			DriverReputation: h.DriverReputation,
			DistanceKm:       h.DistanceKm,
			Relevance:        h.Relevance,
		})
	}
	return out
}

// ReservationResponse is the HTTP response for reservation data.
type ReservationResponse struct {
	ID          string     `json:"id"`
	RideID      string     `json:"ride_id"`
	PassengerID string     `json:"passenger_id"`
	Seats       int        `json:"seats"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}

func newReservationResponse(r *domain.Reservation) ReservationResponse {
	resp := ReservationResponse{
		ID:          r.ID,
		RideID:      r.RideID,
		PassengerID: r.PassengerID,
		Seats:       r.Seats,
		Status:      string(r.Status),
		CreatedAt:   r.CreatedAt,
	}
	if !r.CancelledAt.IsZero() {
		t := r.CancelledAt
		resp.CancelledAt = &t
	}
	return resp
}

func newReservationResponses(list []*domain.Reservation) []ReservationResponse {
	out := make([]ReservationResponse, 0, len(list))
	for _, r := range list {
		out = append(out, newReservationResponse(r))
	}
	return out
}

// RatingResponse is the HTTP response for rating data.
type RatingResponse struct {
	ID        string    `json:"id"`
	RideID    string    `json:"ride_id"`
	RaterID   string    `json:"rater_id"`
	RatedID   string    `json:"rated_id"`
	Score     int       `json:"score"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func newRatingResponse(r *domain.Rating) RatingResponse {
	return RatingResponse{
		ID:        r.ID,
		RideID:    r.RideID,
		RaterID:   r.RaterID,
		RatedID:   r.RatedID,
		Score:     r.Score,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
}
