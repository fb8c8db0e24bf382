package logger

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// New returns the JSON slog logger the API runs on. Debug level is enabled
// only in local/dev; per-call skip logs from the sync engine stay out of
// staging and production output.
func New(appEnv string) *slog.Logger {
	level := slog.LevelInfo
	if appEnv == "local" || appEnv == "dev" {
		level = slog.LevelDebug
	}

	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(h)
}

type ctxKey struct{}

// With stores a logger in context.
func With(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// From gets a logger from context, falling back to slog.Default(). Services
// invoked outside a request (the sync engine under a scheduler) get the
// default logger rather than nil.
func From(ctx context.Context) *slog.Logger {
	if v := ctx.Value(ctxKey{}); v != nil {
		if l, ok := v.(*slog.Logger); ok && l != nil {
			return l
		}
	}
	return slog.Default()
}

// ShutdownFlush exists so main's shutdown path has a stable hook; the JSON
// handler writes straight to stdout and has nothing to flush today.
func ShutdownFlush(_ context.Context, _ time.Duration) error { return nil }
