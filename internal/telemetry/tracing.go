package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/ledgerchain/ledgerchain"

// TraceConfig configures OpenTelemetry tracing for a Store.
type TraceConfig struct {
	// ServiceName identifies this ledger instance in traces. Defaults to
	// "ledgerchain".
	ServiceName string

	// OTLPEndpoint is the OTLP/HTTP collector endpoint. Defaults to
	// http://localhost:4318.
	OTLPEndpoint string

	// SamplingRate controls trace sampling, 0.0 to 1.0. Defaults to 1.0.
	SamplingRate float64

	// Enabled controls whether tracing is active at all. When it is false,
	// StartSpan still works, but SetupTracing installs no exporter, so no
	// spans are exported.
	Enabled bool
}

// TraceProvider wraps an OpenTelemetry tracer provider with shutdown.
type TraceProvider struct {
	provider *sdktrace.TracerProvider
}

// SetupTracing initializes OpenTelemetry tracing. If cfg.Enabled is false,
// it returns a no-op provider so that Start/End calls remain safe to make
// unconditionally.
func SetupTracing(ctx context.Context, cfg TraceConfig) (*TraceProvider, error) {
	if !cfg.Enabled {
		return &TraceProvider{}, nil
	}

	if cfg.ServiceName == "" {
		cfg.ServiceName = "ledgerchain"
	}
	if cfg.OTLPEndpoint == "" {
		cfg.OTLPEndpoint = "http://localhost:4318"
	}
	if cfg.SamplingRate <= 0 || cfg.SamplingRate > 1.0 {
		cfg.SamplingRate = 1.0
	}

	exporter, err := otlptrace.New(ctx, otlptracehttp.NewClient(
		otlptracehttp.WithEndpoint(stripScheme(cfg.OTLPEndpoint)),
		otlptracehttp.WithInsecure(),
	))
	if err != nil {
		return nil, fmt.Errorf("telemetry: create otlp exporter: %w", err)
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
	))
	if err != nil {
		return nil, fmt.Errorf("telemetry: build resource: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SamplingRate)),
	)

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{},
	))

	return &TraceProvider{provider: provider}, nil
}

// Shutdown flushes any pending spans and releases exporter resources.
func (p *TraceProvider) Shutdown(ctx context.Context) error {
	if p == nil || p.provider == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := p.provider.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("telemetry: shutdown trace provider: %w", err)
	}
	return nil
}

// StartSpan starts a span named "ledgerchain.<op>" for an append or read.
func StartSpan(ctx context.Context, op string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "ledgerchain."+op)
}

// RecordError records err on span and marks it failed, if err is non-nil.
func RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func stripScheme(endpoint string) string {
	switch {
	case len(endpoint) > 7 && endpoint[:7] == "http://":
		return endpoint[7:]
	case len(endpoint) > 8 && endpoint[:8] == "https://":
		return endpoint[8:]
	default:
		return endpoint
	}
}
