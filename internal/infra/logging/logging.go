// File: internal/infra/logging/logging.go
package logging

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"scenario-ai-service/internal/config"
)

// New builds the root logger from LogConfig. Dev mode forces the console
// writer; otherwise the format field picks between console and JSON. An
// unknown level falls back to info rather than erroring at startup.
func New(cfg config.LogConfig, dev bool) *zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	out := zerolog.New(os.Stdout)
	if dev || strings.EqualFold(cfg.Format, "console") {
		out = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}
	base := out.With().Timestamp().Logger()

	if cfg.Sampling && !dev {
		// polling clients hammer /api/status; keep 1 in 100 of the chatter
		base = base.Sample(&zerolog.BasicSampler{N: 100})
	}
	return &base
}

type ctxKey int

const (
	ctxTraceID ctxKey = iota
	ctxJobID
)

// WithTraceID stores a per-request trace id on the context.
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxTraceID, id)
}

// WithJobID stores the job id a piece of work is acting on behalf of.
func WithJobID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxJobID, id)
}

// With returns base enriched with whatever ids the context carries.
func With(ctx context.Context, base *zerolog.Logger) *zerolog.Logger {
	c := base.With()
	if id, ok := ctx.Value(ctxTraceID).(string); ok && id != "" {
		c = c.Str("trace_id", id)
	}
	if id, ok := ctx.Value(ctxJobID).(string); ok && id != "" {
		c = c.Str("job_id", id)
	}
	l := c.Logger()
	return &l
}

// TraceDuration logs entry and exit of a method at TRACE level.
// Usage: defer logging.TraceDuration(logger, "ScenarioUC.Create")()
func TraceDuration(logger *zerolog.Logger, method string) func() {
	start := time.Now()
	logger.Trace().Str("method", method).Msg("start")
	return func() {
		logger.Trace().Str("method", method).Dur("duration", time.Since(start)).Msg("finish")
	}
}
