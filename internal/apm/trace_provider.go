// Package apm wires the OpenTelemetry tracer provider.
package apm

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"

	"github.com/fd1az/balancer-connector/internal/apperror"
	"github.com/fd1az/balancer-connector/internal/config"
	"github.com/fd1az/balancer-connector/internal/logger"
)

type Provider string

const (
	ZipkinProvider   Provider = "zipkin"
	OTLPGRPCProvider Provider = "otlp-grpc"
	OTLPHTTPProvider Provider = "otlp-http"
	ConsoleProvider  Provider = "console"
	EmptyProvider    Provider = "none"
)

type TraceProvider interface {
	Stop() error
}

type traceProvider struct {
	tp *sdktrace.TracerProvider
}

type emptyTraceProvider struct{}

func (emptyTraceProvider) Stop() error { return nil }

// NewEmptyTraceProvider leaves the global no-op tracer in place.
func NewEmptyTraceProvider() TraceProvider {
	return emptyTraceProvider{}
}

// NewTraceProvider builds the exporter named by cfg.TraceProvider and
// installs it globally. Disabled telemetry or an unknown provider yields
// the empty provider.
func NewTraceProvider(cfg config.TelemetryConfig, log logger.LoggerInterface) (TraceProvider, error) {
	ctx := context.Background()

	if !cfg.Enabled {
		return NewEmptyTraceProvider(), nil
	}

	provider := Provider(strings.ToLower(cfg.TraceProvider))
	exp, err := newExporter(ctx, provider, cfg)
	if err != nil {
		return nil, apperror.New(apperror.CodeConfigurationError,
			apperror.WithContext("trace provider "+string(provider)),
			apperror.WithCause(err))
	}
	if exp == nil {
		log.Warn(ctx, "TracerProvider not found, using EmptyProvider", "provider", cfg.TraceProvider)
		return NewEmptyTraceProvider(), nil
	}

	rsrc, _ := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(cfg.ServiceName),
			attribute.String("otel.provider", string(provider)),
		))

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(rsrc),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))

	log.Info(ctx, "trace provider started", "provider", string(provider), "endpoint", cfg.OTLPEndpoint)

	return &traceProvider{tp}, nil
}

func newExporter(ctx context.Context, provider Provider, cfg config.TelemetryConfig) (sdktrace.SpanExporter, error) {
	switch provider {
	case ZipkinProvider:
		return zipkin.New(cfg.OTLPEndpoint)
	case OTLPGRPCProvider:
		return otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpointURL(cfg.OTLPEndpoint),
			otlptracegrpc.WithHeaders(cfg.Headers()),
		)
	case OTLPHTTPProvider:
		return otlptracehttp.New(ctx,
			otlptracehttp.WithEndpointURL(cfg.OTLPEndpoint),
			otlptracehttp.WithHeaders(cfg.Headers()),
		)
	case ConsoleProvider:
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	default:
		return nil, nil
	}
}

func (o *traceProvider) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5) //nolint:gomnd
	defer cancel()

	return o.tp.Shutdown(ctx)
}
