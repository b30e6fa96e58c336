package http

import (
	"github.com/gin-gonic/gin"
	"github.com/logparts/backend/config"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(ProcessTimeMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health and metrics endpoints are not rate limited
	router.GET("/health", handler.HealthCheck)
	router.GET("/healthz", handler.Liveness)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes
	v1 := router.Group("/api/v1")
	if cfg.RateLimit.PerIP > 0 {
		v1.Use(NewIPRateLimiter(cfg.RateLimit.PerIP, cfg.RateLimit.Burst).Middleware())
	}
	{
		v1.GET("/search", handler.SearchProducts)

		suggestions := v1.Group("/suggestions")
		{
			suggestions.GET("", handler.Suggestions)
			suggestions.GET("/popular-searches", handler.PopularSearches)
		}

		products := v1.Group("/products")
		{
			products.GET("", handler.ListProducts)
			products.GET("/:id", handler.GetProduct)
		}
	}

	return router
}
