// Package balancer talks to the Balancer routing API and the Balancer V2
// Vault contract.
package balancer

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/balancer-connector/business/swap/app"
	"github.com/fd1az/balancer-connector/business/swap/domain"
	"github.com/fd1az/balancer-connector/internal/apperror"
	"github.com/fd1az/balancer-connector/internal/asset"
	"github.com/fd1az/balancer-connector/internal/cache"
	"github.com/fd1az/balancer-connector/internal/circuitbreaker"
	"github.com/fd1az/balancer-connector/internal/httpclient"
	"github.com/fd1az/balancer-connector/internal/logger"
	"github.com/fd1az/balancer-connector/internal/ratelimit"
)

const (
	tracerName = "balancer"
	meterName  = "balancer"

	DefaultAPIURL       = "https://api-v3.balancer.fi/"
	defaultPoolCacheTTL = 30 * time.Second
)

// Ensure Router implements PathRouter.
var _ app.PathRouter = (*Router)(nil)

type routerMetrics struct {
	requests metric.Int64Counter
	latency  metric.Float64Histogram
	errors   metric.Int64Counter
}

type poolKey struct {
	chainID uint64
	id      string
}

// tokenKey uses the lower-case hex address as id.
type tokenKey = poolKey

// decimalsTTL bounds how long an API decimals lookup is trusted.
const decimalsTTL = 24 * time.Hour

// RouterConfig configures the routing API client.
type RouterConfig struct {
	APIURL            string
	RequestTimeout    time.Duration
	RequestsPerSecond float64
	PoolCacheTTL      time.Duration
}

// Router finds swap paths through the Balancer API.
type Router struct {
	client  httpclient.Client
	limiter *ratelimit.Limiter
	cb      *circuitbreaker.CircuitBreaker[[]byte]
	pools   *cache.Cache[poolKey, *PoolSnapshot]
	poolTTL time.Duration

	decimalsMu sync.RWMutex
	decimals   map[tokenKey]uint8 // known tokens, never expire
	looked     *cache.Cache[tokenKey, uint8]
	logger  logger.LoggerInterface

	tracer  trace.Tracer
	metrics *routerMetrics
}

// NewRouter creates a Router. A nil client builds an instrumented one for
// cfg.APIURL.
func NewRouter(client httpclient.Client, cfg RouterConfig, log logger.LoggerInterface) (*Router, error) {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.PoolCacheTTL <= 0 {
		cfg.PoolCacheTTL = defaultPoolCacheTTL
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 5
	}

	if client == nil {
		c, err := httpclient.New(
			httpclient.WithName("balancer-api"),
			httpclient.WithBaseURL(cfg.APIURL),
			httpclient.WithHeader("Accept", "application/json"),
			httpclient.WithTimeout(cfg.RequestTimeout),
		)
		if err != nil {
			return nil, apperror.Wrap(err, apperror.CodeConfigurationError, "balancer api client")
		}
		client = c
	}

	r := &Router{
		client:  client,
		limiter: ratelimit.New(cfg.RequestsPerSecond, int(cfg.RequestsPerSecond)+1),
		pools:   cache.New[poolKey, *PoolSnapshot](cfg.PoolCacheTTL),
		poolTTL: cfg.PoolCacheTTL,
		logger:  log,
		tracer:  otel.Tracer(tracerName),

		decimals: make(map[tokenKey]uint8),
		looked:   cache.New[tokenKey, uint8](time.Hour),
	}
	for chainID := range gqlChain {
		for _, rec := range asset.WellKnown(chainID) {
			if common.IsHexAddress(rec.Address) {
				r.RememberDecimals(chainID, common.HexToAddress(rec.Address), rec.Decimals)
			}
		}
	}

	cbCfg := circuitbreaker.DefaultConfig("balancer-api")
	cbCfg.OnStateChange = func(name string, from, to gobreaker.State) {
		r.logger.Warn(context.Background(), "circuit breaker state change",
			"name", name, "from", from.String(), "to", to.String())
	}
	r.cb = circuitbreaker.New[[]byte](cbCfg)

	if err := r.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to init metrics: %w", err)
	}
	return r, nil
}

func (r *Router) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	r.metrics = &routerMetrics{}

	r.metrics.requests, err = meter.Int64Counter(
		"balancer_api_requests_total",
		metric.WithDescription("Balancer API queries"),
	)
	if err != nil {
		return err
	}

	r.metrics.latency, err = meter.Float64Histogram(
		"balancer_api_latency_ms",
		metric.WithDescription("Balancer API latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	r.metrics.errors, err = meter.Int64Counter(
		"balancer_api_errors_total",
		metric.WithDescription("Failed Balancer API queries"),
	)
	return err
}

// FindPaths returns candidate paths in the order the API ranks them.
func (r *Router) FindPaths(ctx context.Context, chainID uint64, tokenIn, tokenOut common.Address, direction domain.Direction, amountRaw *big.Int, poolID string) ([]domain.SwapPath, error) {
	if amountRaw == nil || amountRaw.Sign() < 0 {
		return nil, apperror.New(apperror.CodeInvalidAmount, apperror.WithMessage("swap amount must be a non-negative integer"))
	}
	chain, ok := ChainName(chainID)
	if !ok {
		return nil, apperror.New(apperror.CodeUnsupportedNetwork, apperror.WithContext(fmt.Sprint(chainID)))
	}

	ctx, span := r.tracer.Start(ctx, "balancer.find_paths",
		trace.WithAttributes(
			attribute.String("chain", chain),
			attribute.String("token_in", tokenIn.Hex()),
			attribute.String("token_out", tokenOut.Hex()),
			attribute.String("swap_type", direction.SwapType()),
			attribute.String("amount", amountRaw.String()),
		),
	)
	defer span.End()

	if poolID != "" {
		if _, err := r.RefreshPool(ctx, chainID, poolID); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "pool refresh failed")
			return nil, err
		}
	}

	// the API takes swapAmount in whole units of the fixed side's token
	fixed := tokenIn
	if direction == domain.GivenOut {
		fixed = tokenOut
	}
	swapAmount, err := r.humanAmount(ctx, chainID, chain, fixed, amountRaw)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "token decimals")
		return nil, err
	}

	var resp graphqlResponse[swapPathsData]
	err = r.query(ctx, "sorGetSwapPaths", graphqlRequest{
		Query: sorGetSwapPathsQuery,
		Variables: map[string]any{
			"chain":              chain,
			"tokenIn":            strings.ToLower(tokenIn.Hex()),
			"tokenOut":           strings.ToLower(tokenOut.Hex()),
			"swapType":           direction.SwapType(),
			"swapAmount":         swapAmount,
			"useProtocolVersion": vaultProtocolVersion,
		},
	}, &resp)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "query failed")
		return nil, err
	}

	if resp.Data.SorGetSwapPaths == nil || len(resp.Data.SorGetSwapPaths.Paths) == 0 {
		span.SetStatus(codes.Error, "no route")
		return nil, apperror.New(apperror.CodeNoRouteFound,
			apperror.WithContext(fmt.Sprintf("%s %s->%s", direction.SwapType(), tokenIn.Hex(), tokenOut.Hex())))
	}

	paths := make([]domain.SwapPath, 0, len(resp.Data.SorGetSwapPaths.Paths))
	for _, p := range resp.Data.SorGetSwapPaths.Paths {
		path, err := p.toDomain()
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		paths = append(paths, path)
	}

	span.SetAttributes(attribute.Int("paths", len(paths)))
	span.SetStatus(codes.Ok, "paths found")

	r.logger.Debug(ctx, "balancer paths",
		"chain", chain,
		"swap_type", direction.SwapType(),
		"amount", amountRaw.String(),
		"paths", len(paths),
		"best_out", paths[0].OutputAmountRaw.String(),
	)
	return paths, nil
}

// RememberDecimals records a token's decimals so FindPaths can size the
// query without asking the API.
func (r *Router) RememberDecimals(chainID uint64, token common.Address, decimals uint8) {
	r.decimalsMu.Lock()
	r.decimals[tokenKey{chainID: chainID, id: strings.ToLower(token.Hex())}] = decimals
	r.decimalsMu.Unlock()
}

// humanAmount renders raw as a decimal string in whole token units.
func (r *Router) humanAmount(ctx context.Context, chainID uint64, chain string, token common.Address, raw *big.Int) (string, error) {
	dec, err := r.tokenDecimals(ctx, chainID, chain, token)
	if err != nil {
		return "", err
	}
	return decimal.NewFromBigInt(raw, -int32(dec)).String(), nil
}

func (r *Router) tokenDecimals(ctx context.Context, chainID uint64, chain string, token common.Address) (uint8, error) {
	key := tokenKey{chainID: chainID, id: strings.ToLower(token.Hex())}

	r.decimalsMu.RLock()
	dec, ok := r.decimals[key]
	r.decimalsMu.RUnlock()
	if ok {
		return dec, nil
	}
	if dec, ok := r.looked.Get(ctx, key); ok {
		return dec, nil
	}

	var resp graphqlResponse[tokenData]
	err := r.query(ctx, "tokenGetToken", graphqlRequest{
		Query:     tokenGetTokenQuery,
		Variables: map[string]any{"address": key.id, "chain": chain},
	}, &resp)
	if err != nil {
		return 0, err
	}
	t := resp.Data.TokenGetToken
	if t == nil || t.Decimals < 0 || t.Decimals > 77 {
		return 0, apperror.New(apperror.CodeTokenNotFound,
			apperror.WithMessage("token decimals unknown to the Balancer API"),
			apperror.WithContext(token.Hex()))
	}
	dec = uint8(t.Decimals)
	r.looked.Set(ctx, key, dec, decimalsTTL)
	return dec, nil
}

// RefreshPool fetches a pool and replaces its cached snapshot.
func (r *Router) RefreshPool(ctx context.Context, chainID uint64, poolID string) (*PoolSnapshot, error) {
	chain, ok := ChainName(chainID)
	if !ok {
		return nil, apperror.New(apperror.CodeUnsupportedNetwork, apperror.WithContext(fmt.Sprint(chainID)))
	}

	var resp graphqlResponse[poolData]
	err := r.query(ctx, "poolGetPool", graphqlRequest{
		Query:     poolGetPoolQuery,
		Variables: map[string]any{"id": strings.ToLower(poolID), "chain": chain},
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Data.PoolGetPool == nil {
		return nil, apperror.New(apperror.CodePoolNotFound, apperror.WithContext(poolID))
	}

	snap := resp.Data.PoolGetPool.toSnapshot()
	r.pools.Set(ctx, poolKey{chainID: chainID, id: strings.ToLower(poolID)}, snap, r.poolTTL)
	return snap, nil
}

// Pool returns the cached snapshot of a pool, if still fresh.
func (r *Router) Pool(ctx context.Context, chainID uint64, poolID string) (*PoolSnapshot, bool) {
	return r.pools.Get(ctx, poolKey{chainID: chainID, id: strings.ToLower(poolID)})
}

// Close releases the pool cache.
func (r *Router) Close() error {
	r.pools.Close()
	r.looked.Close()
	return nil
}

func (r *Router) query(ctx context.Context, op string, req graphqlRequest, out interface{ err() error }) error {
	start := time.Now()
	attrs := metric.WithAttributes(attribute.String("operation", op))
	r.metrics.requests.Add(ctx, 1, attrs)

	if err := r.limiter.Wait(ctx); err != nil {
		r.metrics.errors.Add(ctx, 1, attrs)
		return err
	}

	body, err := r.cb.Execute(func() ([]byte, error) {
		resp, err := r.client.Do(ctx, httpclient.Call{
			Method:    http.MethodPost,
			Body:      req,
			Operation: op,
			Check:     apiErrorHandler,
		})
		if err != nil {
			return nil, err
		}
		return resp.Body, nil
	})
	r.metrics.latency.Record(ctx, float64(time.Since(start).Milliseconds()), attrs)
	if err != nil {
		r.metrics.errors.Add(ctx, 1, attrs)
		if apperror.HasCode(err, apperror.CodeBalancerAPIError) || apperror.HasCode(err, apperror.CodeCircuitOpen) {
			return err
		}
		return apperror.New(apperror.CodeBalancerAPIError, apperror.WithContext(op), apperror.WithCause(err))
	}

	if err := json.Unmarshal(body, out); err != nil {
		r.metrics.errors.Add(ctx, 1, attrs)
		return apperror.New(apperror.CodeBalancerAPIError,
			apperror.WithMessage("undecodable response"),
			apperror.WithContext(op),
			apperror.WithCause(err))
	}
	if err := out.err(); err != nil {
		r.metrics.errors.Add(ctx, 1, attrs)
		return err
	}
	return nil
}

func apiErrorHandler(status int, body []byte) error {
	if status < 400 {
		return nil
	}
	msg := string(body)
	if len(msg) > 256 {
		msg = msg[:256]
	}
	return apperror.New(apperror.CodeBalancerAPIError,
		apperror.WithMessage(fmt.Sprintf("http %d", status)),
		apperror.WithContext(msg))
}
