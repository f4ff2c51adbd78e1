package api

import (
	"github.com/Conceptual-Machines/magda-harmony/internal/api/handlers"
	apimiddleware "github.com/Conceptual-Machines/magda-harmony/internal/api/middleware"
	"github.com/Conceptual-Machines/magda-harmony/internal/config"
	"github.com/Conceptual-Machines/magda-harmony/internal/metrics"
	"github.com/Conceptual-Machines/magda-harmony/internal/spelling"
	"github.com/gin-gonic/gin"
)

func SetupRouter(cfg *config.Config, speller *spelling.EnharmonicSpeller, cloudwatch *metrics.Client, version string) *gin.Engine {
	router := gin.New()

	// Recovery middleware (must be first)
	router.Use(apimiddleware.RecoverWithSentry())

	// Sentry middleware for error tracking
	router.Use(apimiddleware.SentryMiddleware())

	// Request tracking and structured logging
	router.Use(apimiddleware.RequestTracking(cloudwatch))

	// CORS middleware
	router.Use(apimiddleware.CORS())

	// Health check
	healthHandler := handlers.NewHealthHandler(speller)
	router.GET("/health", healthHandler.HealthCheck)

	// Metrics endpoint
	metricsHandler := handlers.NewMetricsHandler(version, cfg)
	router.GET("/api/metrics", metricsHandler.GetMetrics)

	// API routes v1
	v1 := router.Group("/api/v1")
	if cfg.IsGatewayMode() {
		v1.Use(apimiddleware.GatewayAuth())
	} else {
		v1.Use(apimiddleware.NoAuth())
	}
	v1.Use(apimiddleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
	{
		spellingHandler := handlers.NewSpellingHandler(speller, cfg, cloudwatch)
		v1.GET("/pitch-classes", spellingHandler.PitchClasses)
		v1.GET("/spiral", spellingHandler.Spiral)
		v1.POST("/spell", spellingHandler.Spell)
		v1.POST("/spell/batch", spellingHandler.SpellBatch)
		v1.POST("/intervals", spellingHandler.Interval)
		v1.POST("/chords/spell", spellingHandler.SpellChord)
	}

	return router
}
