package logger

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type ctxKey struct{}

// New builds a production JSON logger at the given level ("debug", "info",
// "warn", "error").  Unknown levels fall back to info.
func New(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

// ContextWithRequestID stores the request id used to correlate log lines.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// RequestIDFromContext returns the stored request id, if any.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// WithRequest adds request_id to the logger when ctx carries one.
func WithRequest(ctx context.Context, l *zap.Logger) *zap.Logger {
	if id := RequestIDFromContext(ctx); id != "" {
		return l.With(zap.String("request_id", id))
	}
	return l
}
