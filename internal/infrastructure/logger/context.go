package logger

import (
	"context"

	"go.uber.org/zap"
)

// contextKey is a type for context keys used by the logger package
type contextKey string

// RequestIDKey is the context key carrying the request ID across layers
const RequestIDKey contextKey = "request_id"

// WithRequestID stores the request ID in the context and returns a logger
// enriched with it. The stored ID is read back by the GORM logger and the
// audit event handler, so SQL and audit entries correlate with the request
// that caused them.
func WithRequestID(ctx context.Context, log *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	if requestID == "" {
		return ctx, log
	}
	ctx = context.WithValue(ctx, RequestIDKey, requestID)
	return ctx, log.With(zap.String("request_id", requestID))
}

// GetRequestID retrieves the request ID from context, empty if absent
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}
