package http

import (
	"github.com/gin-gonic/gin"
	"github.com/nutrimatch/backend/config"
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
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/health", handler.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes
	v1 := router.Group("/api/v1")
	if cfg.RateLimit.PerIP > 0 {
		v1.Use(NewIPRateLimiter(cfg.RateLimit.PerIP, cfg.RateLimit.PerIP).Middleware())
	}
	{
		foods := v1.Group("/foods")
		{
			foods.POST("/match", handler.MatchFood)
			foods.POST("/match/batch", handler.MatchFoods)
			foods.GET("/:id", handler.GetFood)
			foods.GET("/:id/similar", handler.SimilarFoods)
			foods.POST("/:id/alternatives", handler.FoodAlternatives)
		}

		v1.GET("/restrictions", handler.ListRestrictions)
		v1.POST("/meal-plans/enhance", handler.EnhanceMealPlan)
	}

	return router
}
