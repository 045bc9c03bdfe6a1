// Package metrics installs the OpenTelemetry meter provider and serves the
// Prometheus scrape endpoint.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"

	"github.com/fd1az/balancer-connector/internal/logger"
)

type MetricProvider interface {
	Meter(name string, options ...metric.MeterOption) metric.Meter
	Shutdown(ctx context.Context) error
}

func reader(ctx context.Context, t Target) (sdkmetric.Reader, error) {
	switch t.Exporter {
	case ExporterOTLP:
		opts := []otlpmetricgrpc.Option{
			otlpmetricgrpc.WithEndpointURL(t.Endpoint),
			otlpmetricgrpc.WithHeaders(t.Headers),
		}
		if t.Insecure {
			opts = append(opts, otlpmetricgrpc.WithInsecure())
		}
		exp, err := otlpmetricgrpc.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("otlp metric exporter: %w", err)
		}
		return sdkmetric.NewPeriodicReader(exp), nil
	default:
		exp, err := prometheus.New()
		if err != nil {
			return nil, fmt.Errorf("prometheus exporter: %w", err)
		}
		return exp, nil
	}
}

// NewMetricProvider builds the meter provider and makes it the global one.
func NewMetricProvider(ctx context.Context, opts ...Option) (MetricProvider, error) {
	var s Settings
	for _, o := range opts {
		o(&s)
	}

	sdkOpts := []sdkmetric.Option{
		sdkmetric.WithResource(resource.NewSchemaless(semconv.ServiceNameKey.String(s.ServiceName))),
	}
	for _, t := range s.Targets {
		r, err := reader(ctx, t)
		if err != nil {
			return nil, err
		}
		sdkOpts = append(sdkOpts, sdkmetric.WithReader(r))
	}

	mp := sdkmetric.NewMeterProvider(sdkOpts...)
	otel.SetMeterProvider(mp)
	return mp, nil
}

// ServePrometheusMetrics serves /metrics on port until ctx is done.
func ServePrometheusMetrics(ctx context.Context, log logger.LoggerInterface, port int) error {
	if port == 0 {
		port = 9090
	}
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              net.JoinHostPort("", strconv.Itoa(port)),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}()

	log.Info(ctx, "serving metrics", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}
