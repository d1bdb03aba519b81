// Package slogobs provides a log/slog-backed implementation of
// [observability.Observer]. Trace-level messages map to a custom level below
// slog.LevelDebug so they can be filtered independently.
package slogobs

import (
	"context"
	"log/slog"

	"github.com/fwlab/olgo/providers/observability"
)

// LevelTrace sits below slog.LevelDebug, mirroring the common convention of
// trace being the most verbose level.
const LevelTrace = slog.LevelDebug - 4

// Observer adapts a *slog.Logger to the observability.Observer interface.
type Observer struct {
	logger *slog.Logger
}

// New creates an Observer backed by the given logger. A nil logger falls back
// to slog.Default().
func New(logger *slog.Logger) *Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Observer{logger: logger}
}

// Trace logs at LevelTrace.
func (o *Observer) Trace(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.log(ctx, LevelTrace, msg, attrs)
}

// Debug logs at slog.LevelDebug.
func (o *Observer) Debug(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.log(ctx, slog.LevelDebug, msg, attrs)
}

// Info logs at slog.LevelInfo.
func (o *Observer) Info(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.log(ctx, slog.LevelInfo, msg, attrs)
}

// Warn logs at slog.LevelWarn.
func (o *Observer) Warn(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.log(ctx, slog.LevelWarn, msg, attrs)
}

// Error logs at slog.LevelError.
func (o *Observer) Error(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.log(ctx, slog.LevelError, msg, attrs)
}

func (o *Observer) log(ctx context.Context, level slog.Level, msg string, attrs []observability.Attribute) {
	if !o.logger.Enabled(ctx, level) {
		return
	}
	slogAttrs := make([]any, 0, len(attrs))
	for _, attr := range attrs {
		slogAttrs = append(slogAttrs, slog.Any(attr.Key, attr.Value))
	}
	o.logger.Log(ctx, level, msg, slogAttrs...)
}
