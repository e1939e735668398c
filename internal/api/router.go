package api

import (
	"context"
	"log"

	"github.com/Conceptual-Machines/prdgen-api/internal/api/handlers"
	apimiddleware "github.com/Conceptual-Machines/prdgen-api/internal/api/middleware"
	"github.com/Conceptual-Machines/prdgen-api/internal/config"
	"github.com/Conceptual-Machines/prdgen-api/internal/llm"
	"github.com/Conceptual-Machines/prdgen-api/internal/metrics"
	"github.com/Conceptual-Machines/prdgen-api/internal/services"
	"github.com/gin-gonic/gin"
)

func SetupRouter(cfg *config.Config, version string) *gin.Engine {
	router := gin.New()

	// CloudWatch metrics client (no-op outside production)
	cloudwatchClient, err := metrics.NewClient(context.Background(), cfg.Environment)
	if err != nil {
		log.Printf("⚠️  CloudWatch metrics unavailable: %v", err)
	}

	// Recovery middleware (must be first)
	router.Use(apimiddleware.RecoverWithSentry())

	// Sentry middleware for error tracking
	router.Use(apimiddleware.SentryMiddleware())

	// Request tracking and structured logging
	router.Use(apimiddleware.RequestTracking(cloudwatchClient))

	// CORS middleware
	router.Use(apimiddleware.CORS())

	// Health check
	healthHandler := handlers.NewHealthHandler(cfg)
	router.GET("/health", healthHandler.HealthCheck)

	// Metrics endpoint
	metricsHandler := handlers.NewMetricsHandler(cfg, version)
	router.GET("/api/metrics", metricsHandler.GetMetrics)

	// Document generation pipeline
	providers := llm.NewProviderFactory(cfg.OpenAIAPIKey, cfg.GeminiAPIKey)
	generationService := services.NewGenerationService(cfg, providers, cloudwatchClient)
	generationHandler := handlers.NewGenerationHandler(generationService)

	// Document sharing via email
	emailService := services.NewEmailService(cfg)
	shareHandler := handlers.NewShareHandler(emailService)

	formatsHandler := handlers.NewFormatsHandler()

	api := router.Group("/api")
	{
		api.POST("/generate", generationHandler.Generate)
		api.GET("/formats", formatsHandler.ListFormats)
		api.POST("/share", shareHandler.ShareDocument)
	}

	return router
}
