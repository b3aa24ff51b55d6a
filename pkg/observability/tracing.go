// Package observability provides OpenTelemetry tracing for scan
// phases. Tracing is off (no-op tracer) unless Init is called; scans
// always create spans, which cost nothing against the no-op provider.
package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/openfdw/openfdw"

// Config controls trace exporting.
type Config struct {
	ServiceName    string
	ServiceVersion string
	SamplingRate   float64
	BatchTimeout   time.Duration
}

// DefaultConfig returns a development configuration with a stdout
// exporter and full sampling.
func DefaultConfig() Config {
	return Config{
		ServiceName:    "openfdw",
		ServiceVersion: "0.1.0",
		SamplingRate:   1.0,
		BatchTimeout:   5 * time.Second,
	}
}

// Init installs a tracer provider exporting pretty-printed spans to
// stdout. Intended for development; production hosts install their own
// provider before loading wrappers.
func Init(cfg Config) error {
	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.ServiceName),
			semconv.ServiceVersionKey.String(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return fmt.Errorf("failed to create stdout exporter: %w", err)
	}

	var sampler sdktrace.Sampler
	switch {
	case cfg.SamplingRate <= 0:
		sampler = sdktrace.NeverSample()
	case cfg.SamplingRate >= 1.0:
		sampler = sdktrace.AlwaysSample()
	default:
		sampler = sdktrace.TraceIDRatioBased(cfg.SamplingRate)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(cfg.BatchTimeout)),
	)
	otel.SetTracerProvider(tp)
	return nil
}

// Shutdown flushes and stops the tracer provider installed by Init.
func Shutdown(ctx context.Context) error {
	if tp, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider); ok {
		return tp.Shutdown(ctx)
	}
	return nil
}

// Tracer returns the library tracer from the global provider.
func Tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// StartScanSpan opens a span for one scan phase of the named wrapper.
func StartScanSpan(ctx context.Context, wrapper, phase string) (context.Context, trace.Span) {
	return Tracer().Start(ctx, "scan."+phase,
		trace.WithAttributes(
			attribute.String("fdw.wrapper", wrapper),
			attribute.String("fdw.phase", phase),
		),
	)
}
