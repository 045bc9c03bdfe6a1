package metrics

import (
	"strings"

	"github.com/fd1az/balancer-connector/internal/config"
)

// Exporter selects where meter readings go.
type Exporter string

const (
	ExporterPrometheus Exporter = "prometheus"
	ExporterOTLP       Exporter = "otlp"
)

// Target is one configured exporter.
type Target struct {
	Exporter Exporter
	Endpoint string
	Headers  map[string]string
	Insecure bool
}

// Settings is what NewMetricProvider builds from.
type Settings struct {
	ServiceName string
	Targets     []Target
}

type Option func(*Settings)

func WithServiceName(name string) Option {
	return func(s *Settings) { s.ServiceName = name }
}

func WithTarget(t Target) Option {
	return func(s *Settings) { s.Targets = append(s.Targets, t) }
}

func exporterOf(cfg config.TelemetryConfig) Exporter {
	if Exporter(strings.ToLower(cfg.MetricsProvider)) == ExporterOTLP {
		return ExporterOTLP
	}
	return ExporterPrometheus
}

// FromTelemetry maps the telemetry section to options. Anything but "otlp"
// is scraped by Prometheus; plain-http collector endpoints skip TLS.
func FromTelemetry(cfg config.TelemetryConfig) []Option {
	t := Target{Exporter: exporterOf(cfg)}
	if t.Exporter == ExporterOTLP {
		t.Endpoint = cfg.MetricsEndpoint
		t.Headers = cfg.Headers()
		t.Insecure = strings.HasPrefix(cfg.MetricsEndpoint, "http://")
	}
	return []Option{WithServiceName(cfg.ServiceName), WithTarget(t)}
}

// Scraped reports whether cfg needs the /metrics endpoint.
func Scraped(cfg config.TelemetryConfig) bool {
	return exporterOf(cfg) == ExporterPrometheus
}
