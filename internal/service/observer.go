package service

import (
	"context"
	"log/slog"
)

// Observer receives one Result per swept update.
type Observer interface {
	ObserveSweep(ctx context.Context, r Result)
}

type ObserverFunc func(ctx context.Context, r Result)

func (f ObserverFunc) ObserveSweep(ctx context.Context, r Result) {
	f(ctx, r)
}

type nopObserver struct{}

func (nopObserver) ObserveSweep(context.Context, Result) {}

// LogObserver writes every Result as a single debug record.
type LogObserver struct {
	Logger *slog.Logger
}

func (o LogObserver) ObserveSweep(ctx context.Context, r Result) {
	logger := o.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if !logger.Enabled(ctx, slog.LevelDebug) {
		return
	}
	attrs := []slog.Attr{
		slog.String("kind", r.Kind.String()),
		slog.Bool("service", r.Service),
		slog.Bool("attempted", r.Attempted),
	}
	if r.HasRef {
		attrs = append(attrs, slog.Int64("chat_id", r.Ref.ChatID), slog.Int("message_id", r.Ref.MessageID))
	}
	if len(r.Markers) > 0 {
		attrs = append(attrs, slog.Any("markers", r.Markers))
	}
	if r.Attempted || r.Outcome != 0 {
		attrs = append(attrs, slog.String("outcome", r.Outcome.String()))
	}
	if r.Err != nil {
		attrs = append(attrs, slog.Any("err", r.Err))
	}
	logger.LogAttrs(ctx, slog.LevelDebug, "Sweep trace", attrs...)
}
