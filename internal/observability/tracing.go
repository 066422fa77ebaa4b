// Package observability provides OpenTelemetry tracing and run metrics for doccheck.
package observability

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
)

const (
	// TracerName is the name used for the doccheck tracer.
	TracerName = "github.com/efebarandurmaz/doccheck"
)

// TracingConfig configures the OpenTelemetry tracing.
type TracingConfig struct {
	// ServiceName is the name of the service (default: "doccheck")
	ServiceName string

	ServiceVersion string

	// OTLPEndpoint is the OTLP gRPC endpoint (e.g., "localhost:4317").
	// If empty, tracing is disabled.
	OTLPEndpoint string

	// Insecure disables TLS on the exporter connection.
	Insecure bool

	// SampleRate is the trace sampling rate (0.0 to 1.0)
	SampleRate float64

	// ContentRoot is recorded on the resource so traces from different
	// checkouts can be told apart.
	ContentRoot string
}

// DefaultTracingConfig returns a default tracing configuration.
func DefaultTracingConfig() *TracingConfig {
	return &TracingConfig{
		ServiceName:    "doccheck",
		ServiceVersion: "0.1.0",
		Insecure:       true,
		SampleRate:     1.0,
	}
}

// TracerProvider wraps the OpenTelemetry tracer provider.
type TracerProvider struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
}

// InitTracing installs a batching OTLP provider as the global tracer
// provider. Without an endpoint it leaves the global provider alone and
// hands back its tracer.
func InitTracing(ctx context.Context, cfg *TracingConfig) (*TracerProvider, error) {
	if cfg == nil {
		cfg = DefaultTracingConfig()
	}
	if cfg.OTLPEndpoint == "" {
		return &TracerProvider{tracer: otel.Tracer(TracerName)}, nil
	}

	res, err := newResource(cfg)
	if err != nil {
		return nil, err
	}
	exporter, err := otlptracegrpc.New(ctx, exporterOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("create OTLP exporter for %s: %w", cfg.OTLPEndpoint, err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(newSampler(cfg.SampleRate)),
	)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return &TracerProvider{provider: provider, tracer: provider.Tracer(TracerName)}, nil
}

func exporterOptions(cfg *TracingConfig) []otlptracegrpc.Option {
	opts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint),
		otlptracegrpc.WithDialOption(grpc.WithUserAgent(cfg.ServiceName + "/" + cfg.ServiceVersion)),
	}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	return opts
}

func newResource(cfg *TracingConfig) (*resource.Resource, error) {
	attrs := []attribute.KeyValue{
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
	}
	if cfg.ContentRoot != "" {
		root := cfg.ContentRoot
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
		attrs = append(attrs, attribute.String("doccheck.content_root", root))
	}
	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(semconv.SchemaURL, attrs...))
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}
	return res, nil
}

// newSampler honours the parent's sampling decision and applies rate to
// root spans. rate is clamped to [0, 1].
func newSampler(rate float64) sdktrace.Sampler {
	var root sdktrace.Sampler
	switch {
	case rate >= 1:
		root = sdktrace.AlwaysSample()
	case rate <= 0:
		root = sdktrace.NeverSample()
	default:
		root = sdktrace.TraceIDRatioBased(rate)
	}
	return sdktrace.ParentBased(root)
}

// Shutdown flushes and stops the tracer provider.
func (tp *TracerProvider) Shutdown(ctx context.Context) error {
	if tp.provider != nil {
		return tp.provider.Shutdown(ctx)
	}
	return nil
}

func (tp *TracerProvider) Tracer() trace.Tracer {
	return tp.tracer
}

// StartTestSpan starts a span covering one sanity test.
func StartTestSpan(ctx context.Context, testName string, targetCount int) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, "sanity."+testName,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("sanity.test", testName),
			attribute.Int("sanity.target_count", targetCount),
		),
	)
}

// RecordTestResult records the outcome of a sanity test on its span.
func RecordTestResult(span trace.Span, status string, messageCount int) {
	span.SetAttributes(
		attribute.String("sanity.status", status),
		attribute.Int("sanity.message_count", messageCount),
	)
	if status == "failure" {
		span.SetStatus(codes.Error, "sanity test failed")
	}
}

// StartCommandSpan starts a span for an external command.
func StartCommandSpan(ctx context.Context, args []string) (context.Context, trace.Span) {
	name := "exec"
	if len(args) > 0 {
		name = "exec." + filepath.Base(args[0])
	}
	return otel.Tracer(TracerName).Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.StringSlice("exec.args", args),
		),
	)
}

// RecordCommandResult records the exit status and duration of a command.
func RecordCommandResult(span trace.Span, status int, duration time.Duration, err error) {
	span.SetAttributes(
		attribute.Int("exec.status", status),
		attribute.Int64("exec.duration_ms", duration.Milliseconds()),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}
