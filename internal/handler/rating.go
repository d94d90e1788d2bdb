package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carpool/internal/middleware"
	"carpool/internal/service"
)

// RatingHandler handles HTTP requests for ratings.
type RatingHandler struct {
	reputation *service.ReputationAggregator
}

// NewRatingHandler creates a new RatingHandler.
func NewRatingHandler(reputation *service.ReputationAggregator) *RatingHandler {
	return &RatingHandler{reputation: reputation}
}

// SubmitRatingRequest is the HTTP request body for rating a participant.
type SubmitRatingRequest struct {
	RideID  string `json:"ride_id"`
	RatedID string `json:"rated_id"`
	Score   int    `json:"score"`
	Comment string `json:"comment,omitempty"`
}

// Submit handles POST /v1/ratings
func (h *RatingHandler) Submit(c *gin.Context) {
	var req SubmitRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if req.RideID == "" || req.RatedID == "" {
		badRequest(c, "ride_id and rated_id are required")
		return
	}

	rating, err := h.reputation.Submit(c.Request.Context(), service.SubmitRatingRequest{
		RideID:  req.RideID,
		RaterID: middleware.UserID(c),
		RatedID: req.RatedID,
		Score:   req.Score,
		Comment: req.Comment,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, newRatingResponse(rating))
}

// ListForUser handles GET /v1/users/:id/ratings
func (h *RatingHandler) ListForUser(c *gin.Context) {
	ratings, err := h.reputation.Ratings(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]RatingResponse, 0, len(ratings))
	for _, r := range ratings {
		response = append(response, newRatingResponse(r))
	}
	respondJSON(c, http.StatusOK, response)
}
