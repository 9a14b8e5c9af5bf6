// Package logging builds the process-wide structured logger: JSON in
// production, human-readable console output in development, mirroring
// the environment-driven zap setup used across the rest of this stack.
package logging

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Environment selects the logger's encoding.
type Environment string

const (
	Production  Environment = "production"
	Development Environment = "development"
)

// New builds a *zap.Logger for the given environment. Production uses
// the JSON encoder so log aggregation can parse request_id/tool/
// file_id/timings/cache/err_kind fields; development uses a console
// encoder for readability at a terminal.
func New(env Environment, debug bool) (*zap.Logger, error) {
	var cfg zap.Config
	switch env {
	case Production:
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
	}
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

type ctxKey int

const loggerKey ctxKey = iota

// WithRequestLogger attaches a logger tagged with request_id to ctx.
func WithRequestLogger(ctx context.Context, base *zap.Logger, requestID string) context.Context {
	return context.WithValue(ctx, loggerKey, base.With(zap.String("request_id", requestID)))
}

// FromContext returns the request-scoped logger, or a no-op logger if
// none was attached (e.g. in unit tests that don't wire logging).
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok && l != nil {
		return l
	}
	return zap.NewNop()
}
