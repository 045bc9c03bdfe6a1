package ethereum

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/balancer-connector/business/chain/app"
	"github.com/fd1az/balancer-connector/business/chain/domain"
	"github.com/fd1az/balancer-connector/internal/apperror"
	"github.com/fd1az/balancer-connector/internal/cache"
	"github.com/fd1az/balancer-connector/internal/circuitbreaker"
	"github.com/fd1az/balancer-connector/internal/logger"
)

var _ app.GasOracle = (*GasOracle)(nil)

const gasPriceKey = "eth_gasPrice"

// GasOracleConfig tunes one network's GasOracle.
type GasOracleConfig struct {
	Name string
	// PriceTTL is how long a fetched price is served from memory.
	PriceTTL time.Duration
	// Ceiling clamps suggested prices. Nil disables the clamp.
	Ceiling *big.Int
	// MarginPercent is added on top of node gas estimates.
	MarginPercent uint64
}

// DefaultGasOracleConfig caches for about one mainnet block and clamps at
// 500 gwei.
func DefaultGasOracleConfig(name string) GasOracleConfig {
	return GasOracleConfig{
		Name:          name,
		PriceTTL:      12 * time.Second,
		Ceiling:       new(big.Int).Mul(big.NewInt(500), big.NewInt(1_000_000_000)),
		MarginPercent: 10,
	}
}

// GasOracle prices and sizes transactions for one network.
type GasOracle struct {
	cfg     GasOracleConfig
	backend Backend
	logger  logger.LoggerInterface

	prices *cache.Cache[string, *domain.GasPrice]
	cb     *circuitbreaker.CircuitBreaker[*big.Int]

	tracer    trace.Tracer
	fetches   metric.Int64Counter
	hits      metric.Int64Counter
	estimates metric.Int64Counter
	gwei      metric.Float64Gauge
}

func NewGasOracle(backend Backend, cfg GasOracleConfig, log logger.LoggerInterface) (*GasOracle, error) {
	if log == nil {
		log = logger.Nop()
	}
	g := &GasOracle{
		cfg:     cfg,
		backend: backend,
		logger:  log,
		prices:  cache.New[string, *domain.GasPrice](5 * time.Minute),
		tracer:  otel.Tracer(tracerName),
	}

	meter := otel.Meter(meterName)
	var err error
	if g.fetches, err = meter.Int64Counter("gas_price_fetches_total",
		metric.WithDescription("Gas price reads that went to the node")); err != nil {
		return nil, fmt.Errorf("gas metrics: %w", err)
	}
	if g.hits, err = meter.Int64Counter("gas_cache_hits_total",
		metric.WithDescription("Gas price reads served from cache")); err != nil {
		return nil, fmt.Errorf("gas metrics: %w", err)
	}
	if g.estimates, err = meter.Int64Counter("gas_estimate_total",
		metric.WithDescription("eth_estimateGas calls")); err != nil {
		return nil, fmt.Errorf("gas metrics: %w", err)
	}
	if g.gwei, err = meter.Float64Gauge("gas_price_gwei",
		metric.WithDescription("Last fetched gas price"), metric.WithUnit("gwei")); err != nil {
		return nil, fmt.Errorf("gas metrics: %w", err)
	}

	cbCfg := circuitbreaker.DefaultConfig("gas-oracle-" + cfg.Name)
	cbCfg.OnStateChange = func(name string, from, to gobreaker.State) {
		g.logger.Info(context.Background(), "circuit breaker state change",
			"breaker", name, "from", from.String(), "to", to.String())
	}
	g.cb = circuitbreaker.New[*big.Int](cbCfg)

	return g, nil
}

// GetGasPrice returns the node's suggested price, clamped to the ceiling.
// TipCap is set when the node answers eth_maxPriorityFeePerGas.
func (g *GasOracle) GetGasPrice(ctx context.Context) (*domain.GasPrice, error) {
	ctx, span := g.tracer.Start(ctx, "gas.get_price", trace.WithAttributes(attribute.String("network", g.cfg.Name)))
	defer span.End()

	if p, ok := g.prices.Get(ctx, gasPriceKey); ok {
		g.hits.Add(ctx, 1)
		span.AddEvent("cache_hit")
		return p, nil
	}
	g.fetches.Add(ctx, 1)

	p, err := g.fetch(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return nil, err
	}

	g.prices.Set(ctx, gasPriceKey, p, g.cfg.PriceTTL)
	g.gwei.Record(ctx, p.Gwei().InexactFloat64(), metric.WithAttributes(attribute.String("network", g.cfg.Name)))
	span.SetAttributes(attribute.String("gwei", p.Gwei().String()))
	return p, nil
}

func (g *GasOracle) fetch(ctx context.Context) (*domain.GasPrice, error) {
	client, err := g.backend.Client()
	if err != nil {
		return nil, err
	}

	wei, err := g.cb.Execute(func() (*big.Int, error) { return client.SuggestGasPrice(ctx) })
	if err != nil {
		return nil, apperror.New(apperror.CodeRPCError, apperror.WithContext(gasPriceKey), apperror.WithCause(err))
	}
	if c := g.cfg.Ceiling; c != nil && wei.Cmp(c) > 0 {
		g.logger.Warn(ctx, "gas price above ceiling, clamping",
			"network", g.cfg.Name, "wei", wei.String(), "ceiling", c.String())
		wei = new(big.Int).Set(c)
	}

	p := domain.NewGasPrice(wei)
	if tip, err := client.SuggestGasTipCap(ctx); err == nil {
		p.TipCap = tip
	}
	return p, nil
}

// SuggestFees returns EIP-1559 caps: the suggested tip, and twice the
// latest base fee plus that tip. Without a base fee or tip both caps are
// the legacy gas price.
func (g *GasOracle) SuggestFees(ctx context.Context) (tipCap, feeCap *big.Int, err error) {
	ctx, span := g.tracer.Start(ctx, "gas.suggest_fees")
	defer span.End()

	p, err := g.GetGasPrice(ctx)
	if err != nil {
		return nil, nil, err
	}
	client, err := g.backend.Client()
	if err != nil {
		return nil, nil, err
	}
	head, err := client.HeaderByNumber(ctx, nil)
	if err != nil {
		span.RecordError(err)
		return nil, nil, apperror.New(apperror.CodeRPCError,
			apperror.WithContext("eth_getBlockByNumber"), apperror.WithCause(err))
	}

	if head.BaseFee == nil || p.TipCap == nil {
		return new(big.Int).Set(p.Wei), new(big.Int).Set(p.Wei), nil
	}
	tipCap = new(big.Int).Set(p.TipCap)
	feeCap = new(big.Int).Lsh(head.BaseFee, 1)
	feeCap.Add(feeCap, tipCap)

	span.SetAttributes(attribute.String("tip_cap", tipCap.String()), attribute.String("fee_cap", feeCap.String()))
	return tipCap, feeCap, nil
}

// EstimateGas asks the node for msg's gas and adds MarginPercent.
func (g *GasOracle) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	ctx, span := g.tracer.Start(ctx, "gas.estimate", trace.WithAttributes(attribute.Int("data_len", len(msg.Data))))
	defer span.End()
	g.estimates.Add(ctx, 1)

	client, err := g.backend.Client()
	if err != nil {
		return 0, err
	}
	gas, err := client.EstimateGas(ctx, msg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "estimate failed")
		to := ""
		if msg.To != nil {
			to = msg.To.Hex()
		}
		return 0, apperror.New(apperror.CodeGasEstimation, apperror.WithContext(to), apperror.WithCause(err))
	}

	gas += gas * g.cfg.MarginPercent / 100
	span.SetAttributes(attribute.Int64("gas", int64(gas)))
	return gas, nil
}

func (g *GasOracle) Close() error {
	g.prices.Close()
	return nil
}
