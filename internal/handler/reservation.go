package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carpool/internal/middleware"
	"carpool/internal/service"
)

// ReservationHandler handles HTTP requests for seat reservations.
type ReservationHandler struct {
	ledger *service.BookingLedger
}

// NewReservationHandler creates a new ReservationHandler.
func NewReservationHandler(ledger *service.BookingLedger) *ReservationHandler {
	return &ReservationHandler{ledger: ledger}
}

// ReserveRequest is the HTTP request body for reserving seats.
type ReserveRequest struct {
	Seats int `json:"seats"`
}

// Reserve handles POST /v1/rides/:id/reservations
func (h *ReservationHandler) Reserve(c *gin.Context) {
	var req ReserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	reservation, err := h.ledger.Reserve(c.Request.Context(), service.ReserveRequest{
		RideID:      c.Param("id"),
		PassengerID: middleware.UserID(c),
		Seats:       req.Seats,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, newReservationResponse(reservation))
}

// ListForRide handles GET /v1/rides/:id/reservations
func (h *ReservationHandler) ListForRide(c *gin.Context) {
	list, err := h.ledger.ListForRide(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newReservationResponses(list))
}

// Cancel handles POST /v1/reservations/:id/cancel
func (h *ReservationHandler) Cancel(c *gin.Context) {
	ctx := c.Request.Context()
	reservationID := c.Param("id")

	if err := h.ledger.Cancel(ctx, reservationID, middleware.UserID(c)); err != nil {
		respondError(c, err)
		return
	}

	reservation, err := h.ledger.Get(ctx, reservationID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newReservationResponse(reservation))
}

// ListForUser handles GET /v1/users/:id/reservations
// Passengers only see their own reservations.
func (h *ReservationHandler) ListForUser(c *gin.Context) {
	userID := c.Param("id")
	if userID != middleware.UserID(c) {
		respondError(c, service.ErrForbidden)
		return
	}

	list, err := h.ledger.ListForPassenger(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newReservationResponses(list))
}
