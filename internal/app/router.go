package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"settlement/internal/handler"
	"settlement/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	PaymentHandler *handler.PaymentHandler
	AccountHandler *handler.AccountHandler
	AdminHandler   *handler.AdminHandler
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

	if deps.RedisClient != nil {
		router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Payment routes.
		payments := v1.Group("/payments")
		{
			payments.POST("/settle", deps.PaymentHandler.Settle)
			payments.GET("/analytics", deps.PaymentHandler.Analytics)
			payments.GET("/ride/:rideId", deps.PaymentHandler.GetByRide)
			payments.POST("/:id/dispute", deps.PaymentHandler.OpenDispute)
			payments.POST("/:id/dispute/resolve", deps.PaymentHandler.ResolveDispute)
		}

		// Captain routes.
		captains := v1.Group("/captains")
		{
			captains.GET("/:id/payments", deps.PaymentHandler.CaptainHistory)
			captains.GET("/:id/account", deps.AccountHandler.CaptainAccount)
		}

		// Company routes.
		v1.GET("/company/account", deps.AccountHandler.CompanyAccount)

		// Operator routes.
		v1.GET("/settings", deps.AdminHandler.GetSettings)
		v1.PATCH("/settings", deps.AdminHandler.UpdateSettings)
		v1.POST("/reconcile", deps.AdminHandler.Reconcile)
	}

	return router
}
