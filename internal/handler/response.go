package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"carpool/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

// mapErrorToHTTPStatus maps service errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidCapacity),
		errors.Is(err, service.ErrInvalidSchedule),
		errors.Is(err, service.ErrInvalidScore),
		errors.Is(err, service.ErrInvalidSeats),
		errors.Is(err, service.ErrInvalidPlace),
		errors.Is(err, service.ErrInvalidPrice):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, service.ErrInsufficientCapacity),
		errors.Is(err, service.ErrRideInactive),
		errors.Is(err, service.ErrDuplicate),
		errors.Is(err, service.ErrTransientConflict):
		return http.StatusConflict

	default:
		return http.StatusInternalServerError
	}
}
