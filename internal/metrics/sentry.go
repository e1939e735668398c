package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/getsentry/sentry-go"
)

// SentryMetrics reports request and generation measurements as Sentry spans.
// Spans degrade to no-ops when Sentry is not configured, so the type carries
// no state of its own.
type SentryMetrics struct{}

func NewSentryMetrics() *SentryMetrics {
	return &SentryMetrics{}
}

// RecordAPIRequest emits a span for one finished HTTP request.
func (m *SentryMetrics) RecordAPIRequest(ctx context.Context, endpoint string, statusCode int, duration time.Duration) {
	ok := statusCode < http.StatusInternalServerError
	emitSpan(ctx, "api.request", "API Request: "+endpoint, ok, func(span *sentry.Span) {
		span.SetTag("endpoint", endpoint)
		span.SetTag("status_code", strconv.Itoa(statusCode))
		span.SetTag("success", strconv.FormatBool(statusCode < http.StatusBadRequest))
		span.SetData("duration_ms", duration.Milliseconds())
		span.SetData("status_code", statusCode)
	})
}

// RecordTokenUsage attaches one generation's token counts to the active
// transaction and emits a detail span.
func (m *SentryMetrics) RecordTokenUsage(ctx context.Context, model string, totalTokens, inputTokens, outputTokens int64) {
	if transaction := sentry.TransactionFromContext(ctx); transaction != nil {
		transaction.SetTag("llm.model", model)
		transaction.SetTag("llm.total_tokens", strconv.FormatInt(totalTokens, 10))
		transaction.SetData("llm.total_tokens", totalTokens)
		transaction.SetData("llm.input_tokens", inputTokens)
		transaction.SetData("llm.output_tokens", outputTokens)
	}

	emitSpan(ctx, "llm.token_usage", "Token Usage: "+model, true, func(span *sentry.Span) {
		span.SetTag("model", model)
		span.SetTag("total_tokens", strconv.FormatInt(totalTokens, 10))
		span.SetData("total_tokens", totalTokens)
		span.SetData("input_tokens", inputTokens)
		span.SetData("output_tokens", outputTokens)
	})
}

// RecordGenerationDuration emits a span for one generation attempt.
func (m *SentryMetrics) RecordGenerationDuration(ctx context.Context, duration time.Duration, success bool) {
	description := "Generation Request: " + strconv.FormatBool(success)
	emitSpan(ctx, "generation.request", description, success, func(span *sentry.Span) {
		span.SetTag("success", strconv.FormatBool(success))
		span.SetData("duration_ms", duration.Milliseconds())
		span.SetData("success", success)
	})
}

// emitSpan opens a span, lets the caller annotate it, and finishes it with a
// status derived from ok.
func emitSpan(ctx context.Context, op, description string, ok bool, annotate func(*sentry.Span)) {
	span := sentry.StartSpan(ctx, op)
	defer span.Finish()

	span.Description = description
	span.Status = sentry.SpanStatusOK
	if !ok {
		span.Status = sentry.SpanStatusInternalError
	}
	annotate(span)
}
