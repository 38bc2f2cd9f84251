package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// FromContext extracts the logger from context
// If no logger is found, returns a disabled logger (no-op)
func FromContext(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}

// WithContext returns a new context with the logger attached
func WithContext(ctx context.Context, logger zerolog.Logger) context.Context {
	return logger.WithContext(ctx)
}

// WithIdentifier creates a child logger with an identifier field
func WithIdentifier(ctx context.Context, id string) context.Context {
	logger := FromContext(ctx)
	childLogger := logger.With().Str("identifier", id).Logger()
	return WithContext(ctx, childLogger)
}
