// Package telemetry is the ledger's ambient observability stack: structured
// logging, OpenTelemetry tracing around Store operations, and Prometheus
// metrics — adapted from internal/logging/logging.go,
// internal/tracing/tracing.go and internal/observability/metrics.go, trimmed
// of everything specific to an HTTP service (request IDs, user IDs, sensitive
// field redaction for auth payloads) since an embedded library has no
// request boundary of its own.
package telemetry

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Format specifies the log output format.
type Format string

const (
	// FormatJSON outputs structured JSON logs.
	FormatJSON Format = "json"
	// FormatText outputs human-readable text logs.
	FormatText Format = "text"
)

type contextKey string

const loggerKey contextKey = "ledgerchain_logger"

// LogConfig holds logger configuration.
type LogConfig struct {
	// Level is the minimum log level to output. Defaults to slog.LevelInfo.
	Level slog.Level

	// Format specifies json or text output. Defaults to FormatJSON.
	Format Format

	// Output is the destination for log output. Defaults to os.Stdout.
	Output io.Writer

	// AddSource includes source file and line number in log output.
	AddSource bool

	// TimeFormat specifies the time format for text output. Ignored for JSON.
	TimeFormat string
}

func (c *LogConfig) applyDefaults() {
	if c.Format == "" {
		c.Format = FormatJSON
	}
	if c.Output == nil {
		c.Output = os.Stdout
	}
	if c.TimeFormat == "" {
		c.TimeFormat = time.RFC3339
	}
}

// NewLogger creates a structured logger with the given configuration.
func NewLogger(cfg LogConfig) *slog.Logger {
	cfg.applyDefaults()

	opts := &slog.HandlerOptions{
		Level:     cfg.Level,
		AddSource: cfg.AddSource,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && cfg.Format == FormatText {
				if t, ok := a.Value.Any().(time.Time); ok {
					return slog.String(a.Key, t.Format(cfg.TimeFormat))
				}
			}
			return a
		},
	}

	var handler slog.Handler
	switch cfg.Format {
	case FormatText:
		handler = slog.NewTextHandler(cfg.Output, opts)
	default:
		handler = slog.NewJSONHandler(cfg.Output, opts)
	}

	return slog.New(handler).With(slog.String("component", "ledgerchain"))
}

// Default returns a production-ready JSON logger at info level.
func Default() *slog.Logger {
	return NewLogger(LogConfig{Level: slog.LevelInfo, Format: FormatJSON})
}

// Development returns a development-friendly text logger at debug level,
// with source locations attached.
func Development() *slog.Logger {
	return NewLogger(LogConfig{Level: slog.LevelDebug, Format: FormatText, AddSource: true})
}

// NewContext returns a context with logger attached.
func NewContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext retrieves the logger attached to ctx, or the default logger if
// none was attached.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.Default()
}
