package app

import (
	"context"
	"math/big"
	"sync"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	chainDomain "github.com/fd1az/balancer-connector/business/chain/domain"
	"github.com/fd1az/balancer-connector/business/swap/domain"
	"github.com/fd1az/balancer-connector/internal/apperror"
	"github.com/fd1az/balancer-connector/internal/asset"
	"github.com/fd1az/balancer-connector/internal/logger"
)

const meterName = "github.com/fd1az/balancer-connector/business/swap/app"

// State is the connector lifecycle state. It only moves forward to Ready.
type State int32

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	default:
		return "uninitialized"
	}
}

// EstimateOptions are the per-call knobs of an estimate.
type EstimateOptions struct {
	AllowedSlippage string // "<num>/<den>" override
	PoolID          string // refresh this pool before routing
}

// ExecuteResult is a broadcast trade.
type ExecuteResult struct {
	Built *domain.BuiltTransaction
	Tx    *chainDomain.TxResult
}

// ConnectorConfig holds a connector's collaborators and defaults.
type ConnectorConfig struct {
	Chain           ChainContext
	Router          PathRouter
	Builder         *TradeBuilder
	Broadcaster     Broadcaster // optional; execute fails without it
	AllowedSlippage string
	Logger          logger.LoggerInterface
}

type connectorMetrics struct {
	quotes    metric.Int64Counter
	noRoute   metric.Int64Counter
	builds    metric.Int64Counter
	executes  metric.Int64Counter
	initFails metric.Int64Counter
}

// Connector serves quotes and trades for one (chain, network).
type Connector struct {
	chain           ChainContext
	router          PathRouter
	builder         *TradeBuilder
	broadcaster     Broadcaster
	allowedSlippage string
	logger          logger.LoggerInterface

	state atomic.Int32
	// initGate holds one token while an init is in flight
	initGate chan struct{}
	tokens   atomic.Pointer[asset.Registry]

	requests atomic.Uint64
	lastMu   sync.Mutex
	lastIn   common.Address
	lastOut  common.Address

	tracer  trace.Tracer
	metrics *connectorMetrics
}

// NewConnector wires a connector. It performs no I/O.
func NewConnector(cfg ConnectorConfig) (*Connector, error) {
	c := &Connector{
		chain:           cfg.Chain,
		router:          cfg.Router,
		builder:         cfg.Builder,
		broadcaster:     cfg.Broadcaster,
		allowedSlippage: cfg.AllowedSlippage,
		logger:          cfg.Logger,
		tracer:          otel.Tracer(tracerName),
		initGate:        make(chan struct{}, 1),
	}
	if c.logger == nil {
		c.logger = logger.Nop()
	}
	if err := c.initMetrics(); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "connector metrics")
	}
	return c, nil
}

func (c *Connector) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	c.metrics = &connectorMetrics{}

	c.metrics.quotes, err = meter.Int64Counter(
		"swap_quotes_total",
		metric.WithDescription("Estimate calls served"),
		metric.WithUnit("{quote}"),
	)
	if err != nil {
		return err
	}

	c.metrics.noRoute, err = meter.Int64Counter(
		"swap_no_route_total",
		metric.WithDescription("Estimates that found no route"),
		metric.WithUnit("{quote}"),
	)
	if err != nil {
		return err
	}

	c.metrics.builds, err = meter.Int64Counter(
		"swap_builds_total",
		metric.WithDescription("Transactions built"),
		metric.WithUnit("{tx}"),
	)
	if err != nil {
		return err
	}

	c.metrics.executes, err = meter.Int64Counter(
		"swap_executes_total",
		metric.WithDescription("Transactions broadcast"),
		metric.WithUnit("{tx}"),
	)
	if err != nil {
		return err
	}

	c.metrics.initFails, err = meter.Int64Counter(
		"swap_init_failures_total",
		metric.WithDescription("Failed connector initializations"),
		metric.WithUnit("{init}"),
	)
	return err
}

// Name is the chain context name, e.g. "ethereum/mainnet".
func (c *Connector) Name() string {
	return c.chain.Name()
}

// ChainID returns the bound chain id.
func (c *Connector) ChainID() uint64 {
	return c.chain.ChainID()
}

// State returns the lifecycle state.
func (c *Connector) State() State {
	return State(c.state.Load())
}

// Ready reports whether estimates can be served.
func (c *Connector) Ready() bool {
	return c.State() == StateReady
}

// Init loads the token registry and marks the connector ready. Concurrent
// callers wait for the first one unless their own context ends first; a
// failed or cancelled init leaves the connector uninitialized so it can be
// retried.
func (c *Connector) Init(ctx context.Context) error {
	if c.Ready() {
		return nil
	}

	select {
	case c.initGate <- struct{}{}:
	case <-ctx.Done():
		return apperror.New(apperror.CodeNotReady,
			apperror.WithMessage("gave up waiting for init"),
			apperror.WithContext(c.chain.Name()),
			apperror.WithCause(ctx.Err()))
	}
	defer func() { <-c.initGate }()

	if c.Ready() {
		return nil
	}

	ctx, span := c.tracer.Start(ctx, "swap.init",
		trace.WithAttributes(attribute.String("chain", c.chain.Name())))
	defer span.End()

	c.state.Store(int32(StateInitializing))

	registry, err := c.loadTokens(ctx)
	if err != nil {
		c.state.Store(int32(StateUninitialized))
		c.metrics.initFails.Add(ctx, 1)
		span.RecordError(err)
		span.SetStatus(codes.Error, "init failed")
		return err
	}

	c.tokens.Store(registry)
	c.state.Store(int32(StateReady))

	span.SetAttributes(attribute.Int("tokens", registry.Count()))
	span.SetStatus(codes.Ok, "ready")
	c.logger.Info(ctx, "connector ready", "chain", c.chain.Name(), "tokens", registry.Count())

	return nil
}

func (c *Connector) loadTokens(ctx context.Context) (*asset.Registry, error) {
	if !c.chain.Ready() {
		return nil, c.notReady("chain context is not ready")
	}

	records, err := c.chain.TokenList(ctx)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeNotReady, c.chain.Name())
	}
	if err := ctx.Err(); err != nil {
		return nil, apperror.New(apperror.CodeNotReady, apperror.WithContext(c.chain.Name()), apperror.WithCause(err))
	}

	return asset.NewRegistryFromRecords(c.chain.ChainID(), records)
}

// Tokens returns the token registry once ready.
func (c *Connector) Tokens() (*asset.Registry, error) {
	if !c.Ready() {
		return nil, c.notReady("connector is not initialized")
	}
	return c.tokens.Load(), nil
}

// Token resolves a symbol or address against the registry.
func (c *Connector) Token(ref string) (*asset.Token, error) {
	tokens, err := c.Tokens()
	if err != nil {
		return nil, err
	}
	return tokens.Lookup(ref)
}

// EstimateSellTrade quotes selling amount of base for quote.
func (c *Connector) EstimateSellTrade(ctx context.Context, base, quote *asset.Token, amount *big.Int, opts EstimateOptions) (*domain.Quote, error) {
	return c.estimate(ctx, base, quote, domain.GivenIn, amount, opts)
}

// EstimateBuyTrade quotes buying amount (in base units) of base with quote.
func (c *Connector) EstimateBuyTrade(ctx context.Context, quote, base *asset.Token, amount *big.Int, opts EstimateOptions) (*domain.Quote, error) {
	return c.estimate(ctx, quote, base, domain.GivenOut, amount, opts)
}

func (c *Connector) estimate(ctx context.Context, tokenIn, tokenOut *asset.Token, direction domain.Direction, amount *big.Int, opts EstimateOptions) (*domain.Quote, error) {
	if !c.Ready() {
		return nil, c.notReady("estimate before init")
	}
	c.logRequest(tokenIn, tokenOut)

	ctx, span := c.tracer.Start(ctx, "swap.estimate",
		trace.WithAttributes(
			attribute.String("chain", c.chain.Name()),
			attribute.String("token_in", tokenIn.Symbol()),
			attribute.String("token_out", tokenOut.Symbol()),
			attribute.String("direction", direction.String()),
			attribute.String("amount", amount.String()),
		),
	)
	defer span.End()

	c.metrics.quotes.Add(ctx, 1, metric.WithAttributes(attribute.String("direction", direction.String())))

	paths, err := c.router.FindPaths(ctx, c.chain.ChainID(), tokenIn.Address(), tokenOut.Address(), direction, amount, opts.PoolID)
	if err != nil {
		if apperror.IsPricingFailure(err) {
			c.metrics.noRoute.Add(ctx, 1)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "routing failed")
		return nil, err
	}

	q, err := BuildQuote(paths, direction, tokenIn, tokenOut, SlippageSpec{
		Explicit:   opts.AllowedSlippage,
		Configured: c.allowedSlippage,
	})
	if err != nil {
		if apperror.IsPricingFailure(err) {
			c.metrics.noRoute.Add(ctx, 1)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "quote failed")
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("paths", len(paths)),
		attribute.String("price", q.ExecutionPrice.RatString()),
	)
	span.SetStatus(codes.Ok, "quoted")

	return q, nil
}

// BuildTrade builds the transaction for a quote without sending it.
func (c *Connector) BuildTrade(ctx context.Context, quote *domain.Quote, sender, recipient common.Address) (*domain.BuiltTransaction, error) {
	if !c.Ready() {
		return nil, c.notReady("build before init")
	}
	c.logRequest(quote.TokenIn, quote.TokenOut)
	return c.build(ctx, quote, sender, recipient)
}

func (c *Connector) build(ctx context.Context, quote *domain.Quote, sender, recipient common.Address) (*domain.BuiltTransaction, error) {
	built, err := c.builder.Build(ctx, BuildRequest{Quote: quote, Sender: sender, Recipient: recipient})
	if err != nil {
		return nil, err
	}
	c.metrics.builds.Add(ctx, 1)
	return built, nil
}

// ExecuteTrade builds the quote's transaction and broadcasts it.
func (c *Connector) ExecuteTrade(ctx context.Context, quote *domain.Quote, sender, recipient common.Address, overrides chainDomain.TxOverrides) (*ExecuteResult, error) {
	if !c.Ready() {
		return nil, c.notReady("execute before init")
	}
	if c.broadcaster == nil {
		return nil, apperror.New(apperror.CodeWalletNotConfigured, apperror.WithContext(c.chain.Name()))
	}

	c.logRequest(quote.TokenIn, quote.TokenOut)

	ctx, span := c.tracer.Start(ctx, "swap.execute",
		trace.WithAttributes(attribute.String("chain", c.chain.Name())))
	defer span.End()

	built, err := c.build(ctx, quote, sender, recipient)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "build failed")
		return nil, err
	}

	tx, err := c.broadcaster.Send(ctx, built.Request(), overrides)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "broadcast failed")
		return nil, err
	}

	c.metrics.executes.Add(ctx, 1)
	span.SetAttributes(attribute.String("tx_hash", tx.Hash.Hex()))
	span.SetStatus(codes.Ok, "sent")

	return &ExecuteResult{Built: built, Tx: tx}, nil
}

// Sender is the broadcaster account, or the zero address without a wallet.
func (c *Connector) Sender() common.Address {
	if c.broadcaster == nil {
		return common.Address{}
	}
	return c.broadcaster.Address()
}

// RequestCount is the number of estimate, build and execute calls served.
func (c *Connector) RequestCount() uint64 {
	return c.requests.Load()
}

// LastTokens returns the most recent in/out tokens. Diagnostic only.
func (c *Connector) LastTokens() (in, out common.Address) {
	c.lastMu.Lock()
	defer c.lastMu.Unlock()
	return c.lastIn, c.lastOut
}

func (c *Connector) logRequest(tokenIn, tokenOut *asset.Token) {
	c.requests.Add(1)

	c.lastMu.Lock()
	c.lastIn = tokenIn.Address()
	c.lastOut = tokenOut.Address()
	c.lastMu.Unlock()
}

func (c *Connector) notReady(msg string) error {
	return apperror.New(apperror.CodeNotReady,
		apperror.WithMessage(msg),
		apperror.WithContext(c.chain.Name()))
}
