// Package httpclient is a JSON client for upstream HTTP APIs, traced and
// counted through OpenTelemetry.
package httpclient

import (
	"net/http"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

type settings struct {
	name       string
	baseURL    string
	header     http.Header
	timeout    time.Duration
	transport  http.RoundTripper
	meters     metric.MeterProvider
	tracer     trace.Tracer
	bodyEvents bool
}

// Option configures a client built by New.
type Option func(*settings)

// WithName labels the metrics and spans of the client.
func WithName(name string) Option {
	return func(s *settings) { s.name = name }
}

// WithBaseURL is prepended to every relative call path.
func WithBaseURL(u string) Option {
	return func(s *settings) { s.baseURL = u }
}

// WithHeader adds a header sent on every call.
func WithHeader(key, value string) Option {
	return func(s *settings) { s.header.Add(key, value) }
}

// WithTimeout bounds each call, including reading the body.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithTransport replaces the pooled default transport. The OTEL wrapper is
// still applied on top.
func WithTransport(rt http.RoundTripper) Option {
	return func(s *settings) { s.transport = rt }
}

// WithMeterProvider overrides the global meter provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(s *settings) { s.meters = mp }
}

// WithTracer overrides the global tracer. With bodies set, request and
// response bodies are attached to the span as events.
func WithTracer(t trace.Tracer, bodies bool) Option {
	return func(s *settings) {
		s.tracer = t
		s.bodyEvents = bodies
	}
}
