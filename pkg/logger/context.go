package logger

import (
	"context"
	"log/slog"
)

type attrsKey struct{}

// With returns a context whose request-scoped log fields are extended with
// the given key/value pairs. Later values for a key shadow earlier ones in
// most handlers' output.
func With(ctx context.Context, fields ...any) context.Context {
	prev := Fields(ctx)
	merged := make([]any, 0, len(prev)+len(fields))
	merged = append(merged, prev...)
	merged = append(merged, fields...)
	return context.WithValue(ctx, attrsKey{}, merged)
}

// Fields returns the key/value pairs attached by With.
func Fields(ctx context.Context) []any {
	if ctx == nil {
		return nil
	}
	fields, _ := ctx.Value(attrsKey{}).([]any)
	return fields
}

// From returns the process logger carrying the context's fields.
func From(ctx context.Context) *slog.Logger {
	return Or(ctx, LoggerWrapper())
}

// Or returns base carrying the context's fields.
func Or(ctx context.Context, base *slog.Logger) *slog.Logger {
	fields := Fields(ctx)
	if len(fields) == 0 {
		return base
	}
	return base.With(fields...)
}
