// Package tracing holds small helpers shared by the instrumented storage
// adapters: error classification and attribute truncation, so spans stay
// bounded and free of raw PII.
package tracing

import (
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrorType classifies span errors for filtering in the tracing backend.
type ErrorType string

const (
	ErrorTypeHTTP       ErrorType = "http"
	ErrorTypeDB         ErrorType = "db"
	ErrorTypeRedis      ErrorType = "redis"
	ErrorTypeRabbitMQ   ErrorType = "rabbitmq"
	ErrorTypeLLM        ErrorType = "llm"
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeInternal   ErrorType = "internal"
	ErrorTypeTimeout    ErrorType = "timeout"
)

// Attribute length caps keep span payloads small.
const (
	DefaultMaxLength = 200
	MaxSQLLength     = 500
	MaxRedisLength   = 100
)

// RecordError records err on the span with a uniform error.type attribute.
func RecordError(span trace.Span, err error, errorType ErrorType) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetAttributes(attribute.String("error.type", string(errorType)))
	span.SetStatus(codes.Error, Truncate(err.Error(), DefaultMaxLength))
}

// Truncate shortens s to at most max runes, appending an ellipsis marker.
func Truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

// TruncateSQL bounds a SQL statement attribute.
func TruncateSQL(statement string) string {
	return Truncate(strings.TrimSpace(statement), MaxSQLLength)
}
