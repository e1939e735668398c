package main

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/Conceptual-Machines/prdgen-api/internal/api"
	"github.com/Conceptual-Machines/prdgen-api/internal/config"
	"github.com/Conceptual-Machines/prdgen-api/internal/observability"
	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

const (
	sentryFlushTimeout    = 2 * time.Second
	environmentProduction = "production"
)

// releaseVersion is stamped by the build via -ldflags.
var releaseVersion = "dev"

// GetVersion returns the current release version
func GetVersion() string {
	return releaseVersion
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	if initSentry(cfg) {
		defer sentry.Flush(sentryFlushTimeout)
	}

	// LLM observability
	observability.InitializeLangfuse(context.Background(), cfg)

	if cfg.Environment == environmentProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	router := api.SetupRouter(cfg, GetVersion())

	log.Printf("🚀 Starting server on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		sentry.CaptureException(err)
		log.Fatal("Failed to start server:", err)
	}
}

// initSentry configures error tracking and reports whether a flush is owed
// at shutdown. Tracing runs at full sample rate; revisit once request volume
// grows.
func initSentry(cfg *config.Config) bool {
	if cfg.SentryDSN == "" {
		log.Println("⚠️  Sentry not configured (SENTRY_DSN not set)")
		return false
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.Environment,
		Release:          "prdgen-api@" + releaseVersion,
		EnableTracing:    true,
		TracesSampleRate: 1.0,
		EnableLogs:       true,
		Debug:            cfg.Environment != environmentProduction,
		BeforeSend:       scrubEventHeaders,
	})
	if err != nil {
		log.Printf("Failed to initialize Sentry: %v", err)
		return false
	}

	log.Printf("✅ Sentry initialized (environment: %s, release: %s)", cfg.Environment, releaseVersion)
	return true
}

// scrubEventHeaders strips credentials from request headers before an event
// leaves the process.
func scrubEventHeaders(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	if event.Request == nil {
		return event
	}
	for header := range event.Request.Headers {
		switch strings.ToLower(header) {
		case "authorization", "cookie", "x-api-key":
			event.Request.Headers[header] = "[REDACTED]"
		}
	}
	return event
}
