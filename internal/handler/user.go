package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carpool/internal/service"
)

// UserHandler handles HTTP requests for user profiles.
type UserHandler struct {
	identity *service.IdentityService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(identity *service.IdentityService) *UserHandler {
	return &UserHandler{identity: identity}
}

// UserResponse is the HTTP response for user data.
type UserResponse struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Phone         string  `json:"phone,omitempty"`
	Reputation    float64 `json:"reputation"`
	RatingCount   int64   `json:"rating_count"`
	PhoneVerified bool    `json:"phone_verified"`
	IDVerified    bool    `json:"id_verified"`
}

// Profile handles GET /v1/users/:id
func (h *UserHandler) Profile(c *gin.Context) {
	view, err := h.identity.Profile(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, UserResponse{
		ID:            view.ID,
		Name:          view.Name,
		Phone:         view.Phone,
		Reputation:    view.Reputation,
		RatingCount:   view.RatingCount,
		PhoneVerified: view.PhoneVerified,
		IDVerified:    view.IDVerified,
	})
}
