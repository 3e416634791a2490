package logging

import (
	"context"
	"log/slog"
)

type contextKey string

const (
	runIDKey   contextKey = "run_id"
	epochKey   contextKey = "epoch"
	entryIDKey contextKey = "entry_id"
)

// WithRunID annotates context with an enrichment run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// WithEpoch annotates context with an enrichment run epoch.
func WithEpoch(ctx context.Context, epoch uint64) context.Context {
	return context.WithValue(ctx, epochKey, epoch)
}

// WithEntryID annotates context with the entry being resolved.
func WithEntryID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, entryIDKey, id)
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if id, ok := ctx.Value(runIDKey).(string); ok && id != "" {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if epoch, ok := ctx.Value(epochKey).(uint64); ok {
		fields = append(fields, slog.Uint64(FieldEpoch, epoch))
	}
	if id, ok := ctx.Value(entryIDKey).(string); ok && id != "" {
		fields = append(fields, slog.String(FieldEntryID, id))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
