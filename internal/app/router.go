package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"riderapp/internal/handler"
	"riderapp/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	QuoteHandler   *handler.QuoteHandler
	BookingHandler *handler.BookingHandler
	RideHandler    *handler.RideHandler
	ChatHandler    *handler.ChatHandler
	EventsHandler  *handler.EventsHandler
	RedisClient    *redis.Client
	NewRelicApp    *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.Idempotency(deps.RedisClient))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Quote and fare routes.
		v1.POST("/quotes", deps.QuoteHandler.Quote)
		v1.POST("/fares/compute", deps.QuoteHandler.ComputeFare)
		v1.POST("/coupons/validate", deps.QuoteHandler.ValidateCoupon)
		v1.POST("/rentals/recalculate", deps.QuoteHandler.RecalculateRental)

		// Booking flow routes.
		bookings := v1.Group("/bookings")
		{
			bookings.POST("", deps.BookingHandler.Book)
			bookings.DELETE("/search", deps.BookingHandler.CancelSearch)
			bookings.GET("/status", deps.BookingHandler.Status)
		}

		// Tracked ride routes.
		rides := v1.Group("/rides")
		{
			rides.GET("/active", deps.RideHandler.ActiveRide)
			rides.POST("/track", deps.RideHandler.Track)
			rides.GET("/:id", deps.RideHandler.GetSnapshot)
			rides.POST("/:id/refresh", deps.RideHandler.Refresh)
			rides.POST("/:id/cancel-reason", deps.RideHandler.SelectCancelReason)
			rides.POST("/:id/cancel", deps.RideHandler.CancelRide)

			rides.GET("/:id/chat", deps.ChatHandler.Messages)
			rides.POST("/:id/chat", deps.ChatHandler.SendMessage)
			rides.POST("/:id/chat/presence", deps.ChatHandler.SetPresence)
		}

		v1.GET("/cancel-reasons", deps.RideHandler.CancelReasons)

		// UI event queue.
		v1.GET("/events", deps.EventsHandler.Drain)
	}

	return router
}
