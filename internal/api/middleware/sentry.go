package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Conceptual-Machines/prdgen-api/internal/logger"
	"github.com/Conceptual-Machines/prdgen-api/internal/metrics"
	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const sentryFlushTimeout = 2 * time.Second

// Load balancer probes hit these constantly; keep them out of the request log.
var quietPaths = map[string]struct{}{
	"/health": {},
}

// RequestTracking assigns each request an ID, logs its outcome at a level
// matching the status code, and feeds the Sentry and CloudWatch request
// counters. An X-Request-ID supplied by the caller is kept so IDs survive
// proxies.
func RequestTracking(cloudwatchClient *metrics.Client) gin.HandlerFunc {
	sentryMetrics := metrics.NewSentryMetrics()

	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)

		if hub := sentrygin.GetHubFromContext(c); hub != nil {
			hub.Scope().SetTag("request_id", requestID)
		}

		start := time.Now()
		c.Next()
		duration := time.Since(start)

		path := c.Request.URL.Path
		status := c.Writer.Status()

		if _, quiet := quietPaths[path]; !quiet {
			fields := logger.Fields{
				"request_id":  requestID,
				"method":      c.Request.Method,
				"path":        path,
				"status_code": status,
				"duration_ms": duration.Milliseconds(),
				"client_ip":   c.ClientIP(),
			}
			switch {
			case status >= http.StatusInternalServerError:
				logger.Error("Request failed with server error", nil, fields)
			case status >= http.StatusBadRequest:
				logger.Warn("Request failed with client error", fields)
			default:
				logger.Info("Request completed", fields)
			}
		}

		sentryMetrics.RecordAPIRequest(c.Request.Context(), path, status, duration)
		if cloudwatchClient != nil {
			cloudwatchClient.RecordAPIRequest(path, status, duration)
		}
	}
}

// SentryMiddleware attaches a Sentry hub to each request context.
func SentryMiddleware() gin.HandlerFunc {
	return sentrygin.New(sentrygin.Options{
		Repanic:         true,
		WaitForDelivery: false,
		Timeout:         sentryFlushTimeout,
	})
}

// RecoverWithSentry turns a handler panic into a captured Sentry event and
// a 500 response carrying the request ID.
func RecoverWithSentry() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			if hub := sentrygin.GetHubFromContext(c); hub != nil {
				hub.WithScope(func(scope *sentry.Scope) {
					scope.SetRequest(c.Request)
					scope.SetContext("request", map[string]interface{}{
						"request_id": c.GetString("request_id"),
						"method":     c.Request.Method,
						"path":       c.Request.URL.Path,
						"client_ip":  c.ClientIP(),
					})
					hub.RecoverWithContext(c.Request.Context(), r)
				})
			}

			logger.Error("Panic recovered", fmt.Errorf("panic: %v", r), logger.Fields{
				"request_id": c.GetString("request_id"),
				"path":       c.Request.URL.Path,
			})

			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":      "Internal server error",
				"request_id": c.GetString("request_id"),
			})
		}()
		c.Next()
	}
}
