package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptrace"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/httptrace/otelhttptrace"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultTimeout     = 10 * time.Second
	maxConnsPerHost    = 5
	idleConnTimeout    = 2 * time.Minute
	instrumentationLib = "balancer-connector/httpclient"
)

// StatusCheck inspects a raw response before it is decoded. A non-nil
// error is returned to the caller as is.
type StatusCheck func(status int, body []byte) error

// Call describes one request.
type Call struct {
	Method string
	// Path is joined to the base URL unless it is absolute.
	Path  string
	Query url.Values
	// Body is sent verbatim when it is []byte, otherwise JSON encoded.
	Body any
	// Result receives the decoded body of a 2xx/3xx response.
	Result any
	// Operation labels metrics and spans.
	Operation string
	Check     StatusCheck
}

// Response is the status and fully read body of a call.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Client executes calls against one upstream.
type Client interface {
	Do(ctx context.Context, call Call) (*Response, error)
}

// JSONClient is the instrumented Client.
type JSONClient struct {
	http     *http.Client
	s        settings
	tracer   trace.Tracer
	requests metric.Int64Counter
}

// New builds a JSONClient.
func New(opts ...Option) (*JSONClient, error) {
	s := settings{name: "default", header: http.Header{}, timeout: defaultTimeout}
	for _, o := range opts {
		o(&s)
	}

	rt := s.transport
	if rt == nil {
		rt = &http.Transport{
			Proxy:           http.ProxyFromEnvironment,
			DialContext:     (&net.Dialer{KeepAlive: 10 * time.Second}).DialContext,
			MaxConnsPerHost: maxConnsPerHost,
			IdleConnTimeout: idleConnTimeout,
		}
	}
	rt = otelhttp.NewTransport(rt, otelhttp.WithClientTrace(func(ctx context.Context) *httptrace.ClientTrace {
		return otelhttptrace.NewClientTrace(ctx)
	}))

	mp := s.meters
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	requests, err := mp.Meter(instrumentationLib).Int64Counter(
		"http_client_requests_total",
		metric.WithDescription("Upstream HTTP calls by client, operation and outcome"),
	)
	if err != nil {
		return nil, err
	}

	tracer := s.tracer
	if tracer == nil {
		tracer = otel.Tracer(instrumentationLib)
	}

	return &JSONClient{
		http:     &http.Client{Transport: rt, Timeout: s.timeout},
		s:        s,
		tracer:   tracer,
		requests: requests,
	}, nil
}

// Do sends call and reads the whole body. Check runs before decoding, so an
// error payload never reaches Result.
func (c *JSONClient) Do(ctx context.Context, call Call) (resp *Response, err error) {
	if call.Method == "" {
		call.Method = http.MethodGet
	}
	target := c.url(call.Path, call.Query)

	ctx, span := c.tracer.Start(ctx, "http "+call.Method, trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.client", c.s.name),
			attribute.String("http.operation", call.Operation),
			attribute.String("http.url", target),
		))
	defer func() {
		c.record(ctx, call.Operation, err == nil)
		if err != nil {
			span.RecordError(err)
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				span.SetAttributes(attribute.Bool("http.cancelled", true))
			}
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	body, contentType, err := encode(call.Body)
	if err != nil {
		return nil, err
	}
	if c.s.bodyEvents && body != nil {
		span.AddEvent("request.body", trace.WithAttributes(attribute.String("body", string(body))))
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, call.Method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, vs := range c.s.header {
		req.Header[k] = append([]string(nil), vs...)
	}
	if contentType != "" && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", contentType)
	}

	raw, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer raw.Body.Close()

	payload, err := io.ReadAll(raw.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	span.SetAttributes(attribute.Int("http.status_code", raw.StatusCode))
	if c.s.bodyEvents {
		span.AddEvent("response.body", trace.WithAttributes(attribute.String("body", string(payload))))
	}

	resp = &Response{Status: raw.StatusCode, Header: raw.Header, Body: payload}
	if call.Check != nil {
		if err := call.Check(raw.StatusCode, payload); err != nil {
			return resp, err
		}
	}
	if call.Result != nil && raw.StatusCode < 400 && len(payload) > 0 {
		if err := json.Unmarshal(payload, call.Result); err != nil {
			return resp, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp, nil
}

func (c *JSONClient) url(path string, query url.Values) string {
	target := path
	if c.s.baseURL != "" && !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		target = strings.TrimSuffix(c.s.baseURL, "/")
		if p := strings.TrimPrefix(path, "/"); p != "" {
			target += "/" + p
		}
	}
	if len(query) == 0 {
		return target
	}
	if strings.Contains(target, "?") {
		return target + "&" + query.Encode()
	}
	return target + "?" + query.Encode()
}

func (c *JSONClient) record(ctx context.Context, op string, ok bool) {
	c.requests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("client", c.s.name),
		attribute.String("operation", op),
		attribute.Bool("success", ok),
	))
}

func encode(body any) ([]byte, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, "", nil
	case []byte:
		return b, "", nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, "", fmt.Errorf("encode body: %w", err)
		}
		return data, "application/json", nil
	}
}
