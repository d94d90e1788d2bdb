package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"carpool/internal/handler"
	"carpool/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	RideHandler        *handler.RideHandler
	ReservationHandler *handler.ReservationHandler
	RatingHandler      *handler.RatingHandler
	UserHandler        *handler.UserHandler
	PlaceHandler       *handler.PlaceHandler

	// IdentityProvider validates bearer tokens; nil trusts X-User-ID.
	IdentityProvider middleware.IdentityProvider
	// ResponseStore backs idempotent POST replays; nil disables them.
	ResponseStore middleware.ResponseStore
	NewRelicApp   *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.MetricsMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.AuthMiddleware(deps.IdentityProvider))
	router.Use(middleware.IdempotencyMiddleware(deps.ResponseStore))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authed := middleware.RequireUser()

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Ride routes.
		rides := v1.Group("/rides")
		{
			rides.POST("", authed, deps.RideHandler.Publish)
			rides.GET("/search", deps.RideHandler.Search)
			rides.GET("/:id", deps.RideHandler.GetRide)
			rides.POST("/:id/cancel", authed, deps.RideHandler.CancelRide)
			rides.POST("/:id/complete", authed, deps.RideHandler.CompleteRide)
			rides.POST("/:id/reservations", authed, deps.ReservationHandler.Reserve)
			rides.GET("/:id/reservations", deps.ReservationHandler.ListForRide)
		}

		// Reservation routes.
		reservations := v1.Group("/reservations")
		{
			reservations.POST("/:id/cancel", authed, deps.ReservationHandler.Cancel)
		}

		// Rating routes.
		v1.POST("/ratings", authed, deps.RatingHandler.Submit)

		// User routes.
		users := v1.Group("/users")
		{
			users.GET("/:id", deps.UserHandler.Profile)
			users.GET("/:id/rides", deps.RideHandler.ListByDriver)
			users.GET("/:id/ratings", deps.RatingHandler.ListForUser)
			users.GET("/:id/reservations", authed, deps.ReservationHandler.ListForUser)
		}

		// Place suggestions.
		v1.GET("/places", deps.PlaceHandler.Suggest)
	}

	return router
}
