package logger

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
)

// Fields carries structured key/value pairs alongside a log line.
type Fields map[string]interface{}

type level struct {
	tag    string
	sentry sentry.Level
}

var (
	levelInfo  = level{"INFO", sentry.LevelInfo}
	levelWarn  = level{"WARN", sentry.LevelWarning}
	levelError = level{"ERROR", sentry.LevelError}
)

// Info logs a message and mirrors it into Sentry as a breadcrumb.
func Info(msg string, fields Fields) {
	emit(levelInfo, msg, nil, fields)
}

// Warn logs a warning and mirrors it into Sentry as a breadcrumb.
func Warn(msg string, fields Fields) {
	emit(levelWarn, msg, nil, fields)
}

// Error logs an error and captures it in Sentry with the fields attached.
// err may be nil when the failure is carried entirely by msg and fields.
func Error(msg string, err error, fields Fields) {
	emit(levelError, msg, err, fields)
}

func emit(lvl level, msg string, err error, fields Fields) {
	line := fmt.Sprintf("[%s] %s", lvl.tag, msg)
	if err != nil {
		line += ": " + err.Error()
	}
	if rendered := renderFields(fields); rendered != "" {
		line += " " + rendered
	}
	log.Print(line)

	hub := sentry.CurrentHub()
	if hub.Client() == nil {
		return
	}

	if err != nil {
		hub.WithScope(func(scope *sentry.Scope) {
			scope.SetLevel(lvl.sentry)
			applyFieldTags(scope, fields)
			scope.SetContext("log", map[string]interface{}{"message": msg, "fields": fields})
			hub.CaptureException(err)
		})
		return
	}

	sentry.AddBreadcrumb(&sentry.Breadcrumb{
		Category: "log",
		Message:  msg,
		Data:     fields,
		Level:    lvl.sentry,
	})
}

// applyFieldTags promotes the fields Sentry issues are commonly filtered by.
func applyFieldTags(scope *sentry.Scope, fields Fields) {
	for _, key := range []string{"request_id", "model", "format"} {
		if v, ok := fields[key].(string); ok && v != "" {
			scope.SetTag(key, v)
		}
	}
}

// renderFields formats fields as {k=v, ...} with keys in stable order.
func renderFields(fields Fields) string {
	if len(fields) == 0 {
		return ""
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%v", k, fields[k])
	}
	b.WriteByte('}')
	return b.String()
}

// LogGenerationRequest records one finished document generation: a summary
// log line plus a span inside the surrounding Sentry transaction.
func LogGenerationRequest(ctx context.Context, model string, duration time.Duration, tokenUsage map[string]interface{}, fields Fields) {
	if fields == nil {
		fields = Fields{}
	}
	fields["model"] = model
	fields["duration_ms"] = duration.Milliseconds()
	for k, v := range tokenUsage {
		fields[k] = v
	}

	Info("Generation completed", fields)

	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		span := sentry.StartSpan(ctx, "llm.stream_document")
		span.Description = model
		span.SetData("tokens", tokenUsage)
		span.Finish()
	}
}
