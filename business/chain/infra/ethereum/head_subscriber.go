package ethereum

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/balancer-connector/business/chain/app"
	"github.com/fd1az/balancer-connector/business/chain/domain"
	"github.com/fd1az/balancer-connector/internal/apperror"
	"github.com/fd1az/balancer-connector/internal/circuitbreaker"
	"github.com/fd1az/balancer-connector/internal/logger"
	"github.com/fd1az/balancer-connector/internal/wsconn"
)

var _ app.BlockSubscriber = (*HeadSubscriber)(nil)

// HeadSubscriberConfig holds configuration for the head subscriber.
type HeadSubscriberConfig struct {
	Name           string
	WSURL          string        // eth_subscribe endpoint; empty polls only
	PollInterval   time.Duration // HTTP polling interval
	BufferSize     int           // Block channel buffer size
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	MaxReconnects  int // 0 = infinite
}

// DefaultHeadSubscriberConfig returns sensible defaults.
func DefaultHeadSubscriberConfig(name, wsURL string) HeadSubscriberConfig {
	return HeadSubscriberConfig{
		Name:           name,
		WSURL:          wsURL,
		PollInterval:   12 * time.Second, // ~1 block time
		BufferSize:     16,
		InitialBackoff: time.Second,
		MaxBackoff:     30 * time.Second,
	}
}

type subscriberMetrics struct {
	blocksReceived   metric.Int64Counter
	blocksDropped    metric.Int64Counter
	subscribeErrors  metric.Int64Counter
	blockLatency     metric.Float64Histogram
	httpFallbackUsed metric.Int64Counter
}

// HeadSubscriber emits new heads. It subscribes to newHeads over a
// websocket and falls back to polling the HTTP node when the socket is
// unavailable or gives up reconnecting.
type HeadSubscriber struct {
	config  HeadSubscriberConfig
	backend Backend
	logger  logger.LoggerInterface

	ws     *wsconn.Client
	wsLive atomic.Bool

	state     atomic.Value // domain.HeadState
	usingHTTP atomic.Bool
	lastBlock atomic.Uint64
	started   atomic.Bool

	blocks  chan *domain.Block
	done    chan struct{}
	emitMu  sync.RWMutex
	closed  bool
	pollers sync.WaitGroup

	cb *circuitbreaker.CircuitBreaker[*types.Header]

	tracer  trace.Tracer
	metrics *subscriberMetrics
}

// NewHeadSubscriber creates a subscriber over backend.
func NewHeadSubscriber(backend Backend, cfg HeadSubscriberConfig, log logger.LoggerInterface) (*HeadSubscriber, error) {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 16
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 12 * time.Second
	}

	s := &HeadSubscriber{
		config:  cfg,
		backend: backend,
		logger:  log,
		blocks:  make(chan *domain.Block, cfg.BufferSize),
		done:    make(chan struct{}),
		tracer:  otel.Tracer(tracerName),
	}
	s.state.Store(domain.StateDisconnected)

	if err := s.initMetrics(); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	cbCfg := circuitbreaker.DefaultConfig("eth-heads-" + cfg.Name)
	cbCfg.OnStateChange = func(name string, from, to gobreaker.State) {
		s.logger.Info(context.Background(), "circuit breaker state change",
			"breaker", name, "from", from.String(), "to", to.String())
	}
	s.cb = circuitbreaker.New[*types.Header](cbCfg)

	return s, nil
}

func (s *HeadSubscriber) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	s.metrics = &subscriberMetrics{}

	s.metrics.blocksReceived, err = meter.Int64Counter(
		"eth_blocks_received_total",
		metric.WithDescription("Total blocks received"),
		metric.WithUnit("{block}"),
	)
	if err != nil {
		return err
	}

	s.metrics.blocksDropped, err = meter.Int64Counter(
		"eth_blocks_dropped_total",
		metric.WithDescription("Blocks dropped because the consumer lagged"),
		metric.WithUnit("{block}"),
	)
	if err != nil {
		return err
	}

	s.metrics.subscribeErrors, err = meter.Int64Counter(
		"eth_subscribe_errors_total",
		metric.WithDescription("Total subscription errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return err
	}

	s.metrics.blockLatency, err = meter.Float64Histogram(
		"eth_block_latency_ms",
		metric.WithDescription("Latency from block timestamp to receipt"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	s.metrics.httpFallbackUsed, err = meter.Int64Counter(
		"eth_http_fallback_total",
		metric.WithDescription("Times HTTP fallback was used"),
		metric.WithUnit("{fallback}"),
	)
	return err
}

// Subscribe starts listening for new blocks and returns a channel. The
// channel is shared: later calls return the same one.
func (s *HeadSubscriber) Subscribe(ctx context.Context) (<-chan *domain.Block, error) {
	ctx, span := s.tracer.Start(ctx, "eth.subscribe",
		trace.WithAttributes(attribute.String("network", s.config.Name)),
	)
	defer span.End()

	s.emitMu.RLock()
	closed := s.closed
	s.emitMu.RUnlock()
	if closed {
		err := apperror.New(apperror.CodeSubscribeFailed,
			apperror.WithMessage("subscriber is closed"),
			apperror.WithContext(s.config.Name))
		span.RecordError(err)
		return nil, err
	}
	if !s.started.CompareAndSwap(false, true) {
		return s.blocks, nil
	}

	s.setState(domain.StateConnecting)

	if s.config.WSURL != "" {
		err := s.subscribeWS(ctx)
		if err == nil {
			s.setState(domain.StateConnected)
			span.SetStatus(codes.Ok, "subscribed via ws")
			return s.blocks, nil
		}
		s.logger.Warn(ctx, "ws subscription failed, falling back to http polling",
			"network", s.config.Name, "error", err)
		span.AddEvent("ws_failed_trying_http")
	}

	if _, err := s.backend.Client(); err != nil {
		s.started.Store(false)
		s.setState(domain.StateDisconnected)
		span.RecordError(err)
		span.SetStatus(codes.Error, "no connection")
		return nil, apperror.New(apperror.CodeSubscribeFailed,
			apperror.WithContext(s.config.Name),
			apperror.WithCause(err))
	}

	s.startPolling(ctx)
	s.setState(domain.StateConnected)
	span.SetStatus(codes.Ok, "subscribed via http")
	return s.blocks, nil
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcMessage struct {
	ID     *int            `json:"id,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
	Method string `json:"method,omitempty"`
	Params *struct {
		Subscription string          `json:"subscription"`
		Result       json.RawMessage `json:"result"`
	} `json:"params,omitempty"`
}

// rpcHeader is the newHeads payload. Only the fields a Block carries are
// decoded, so partial headers from light providers still parse.
type rpcHeader struct {
	Number     hexutil.Uint64 `json:"number"`
	Hash       common.Hash    `json:"hash"`
	ParentHash common.Hash    `json:"parentHash"`
	Timestamp  hexutil.Uint64 `json:"timestamp"`
	GasLimit   hexutil.Uint64 `json:"gasLimit"`
	GasUsed    hexutil.Uint64 `json:"gasUsed"`
	BaseFee    *hexutil.Big   `json:"baseFeePerGas"`
}

func (h rpcHeader) toBlock() *domain.Block {
	b := &domain.Block{
		Number:     uint64(h.Number),
		Hash:       h.Hash,
		ParentHash: h.ParentHash,
		Timestamp:  time.Unix(int64(h.Timestamp), 0),
		GasLimit:   uint64(h.GasLimit),
		GasUsed:    uint64(h.GasUsed),
	}
	if h.BaseFee != nil {
		b.BaseFee = h.BaseFee.ToInt()
	}
	return b
}

func (s *HeadSubscriber) subscribeWS(ctx context.Context) error {
	wsCfg := wsconn.DefaultConfig(s.config.WSURL, s.config.Name)
	if s.config.InitialBackoff > 0 {
		wsCfg.InitialBackoff = s.config.InitialBackoff
	}
	if s.config.MaxBackoff > 0 {
		wsCfg.MaxBackoff = s.config.MaxBackoff
	}
	wsCfg.MaxReconnects = s.config.MaxReconnects

	client, err := wsconn.New(wsCfg)
	if err != nil {
		return err
	}
	client.OnMessage(s.handleMessage)
	client.OnReconnect(func(ctx context.Context) {
		if err := s.sendSubscribe(ctx, client); err != nil {
			s.logger.Error(ctx, "resubscribe failed", "network", s.config.Name, "error", err)
			s.metrics.subscribeErrors.Add(ctx, 1)
		}
	})
	client.OnStateChange(func(state wsconn.State, err error) {
		switch state {
		case wsconn.StateReconnecting:
			s.setState(domain.StateReconnecting)
		case wsconn.StateConnected:
			s.setState(domain.StateConnected)
		case wsconn.StateDisconnected:
			if s.wsLive.Load() && !s.usingHTTP.Load() {
				s.logger.Warn(context.Background(), "ws gave up, switching to http polling",
					"network", s.config.Name, "error", err)
				s.metrics.httpFallbackUsed.Add(context.Background(), 1)
				s.startPolling(context.Background())
			}
		}
	})

	if err := client.Connect(ctx); err != nil {
		return err
	}
	if err := s.sendSubscribe(ctx, client); err != nil {
		_ = client.Close()
		return err
	}
	s.ws = client
	s.wsLive.Store(true)
	return nil
}

func (s *HeadSubscriber) sendSubscribe(ctx context.Context, client *wsconn.Client) error {
	return client.SendJSON(ctx, rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "eth_subscribe",
		Params:  []any{"newHeads"},
	})
}

// handleMessage runs on the websocket read goroutine.
func (s *HeadSubscriber) handleMessage(ctx context.Context, raw []byte) {
	var msg rpcMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		s.logger.Warn(ctx, "undecodable ws message", "network", s.config.Name, "error", err)
		return
	}

	switch {
	case msg.Error != nil:
		s.metrics.subscribeErrors.Add(ctx, 1)
		s.logger.Error(ctx, "eth_subscribe rejected",
			"network", s.config.Name, "code", msg.Error.Code, "message", msg.Error.Message)
	case msg.ID != nil:
		var id string
		if err := json.Unmarshal(msg.Result, &id); err == nil {
			s.logger.Info(ctx, "subscribed to new heads via ws", "network", s.config.Name, "subscription", id)
		}
	case msg.Method == "eth_subscription" && msg.Params != nil:
		var h rpcHeader
		if err := json.Unmarshal(msg.Params.Result, &h); err != nil {
			s.logger.Warn(ctx, "undecodable head", "network", s.config.Name, "error", err)
			return
		}
		s.emit(ctx, h.toBlock(), false)
	}
}

func (s *HeadSubscriber) startPolling(ctx context.Context) {
	if !s.usingHTTP.CompareAndSwap(false, true) {
		return
	}
	// The poller outlives the Subscribe call; only Close stops it.
	ctx = context.WithoutCancel(ctx)
	s.pollers.Add(1)
	go s.runPoller(ctx)
}

func (s *HeadSubscriber) runPoller(ctx context.Context) {
	defer s.pollers.Done()

	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

	s.logger.Info(ctx, "starting http polling", "network", s.config.Name, "interval", s.config.PollInterval)

	s.poll(ctx)
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.poll(ctx)
		}
	}
}

func (s *HeadSubscriber) poll(ctx context.Context) {
	ctx, span := s.tracer.Start(ctx, "eth.poll.block")
	defer span.End()

	header, err := s.fetchHeader(ctx)
	if err != nil {
		span.RecordError(err)
		s.logger.Error(ctx, "http poll failed", "network", s.config.Name, "error", err)
		s.metrics.subscribeErrors.Add(ctx, 1)
		return
	}

	if header.Number.Uint64() <= s.lastBlock.Load() {
		span.AddEvent("duplicate_block")
		return
	}

	s.emit(ctx, headerToBlock(header), true)
	span.SetStatus(codes.Ok, "polled")
}

func (s *HeadSubscriber) fetchHeader(ctx context.Context) (*types.Header, error) {
	client, err := s.backend.Client()
	if err != nil {
		return nil, err
	}
	return s.cb.Execute(func() (*types.Header, error) {
		return client.HeaderByNumber(ctx, nil)
	})
}

// emit forwards a block unless it is stale or the consumer is behind.
func (s *HeadSubscriber) emit(ctx context.Context, block *domain.Block, fromHTTP bool) {
	s.emitMu.RLock()
	defer s.emitMu.RUnlock()
	if s.closed {
		return
	}

	for {
		last := s.lastBlock.Load()
		if block.Number <= last && last != 0 {
			return
		}
		if s.lastBlock.CompareAndSwap(last, block.Number) {
			break
		}
	}

	latency := block.Age(time.Now())
	s.metrics.blockLatency.Record(ctx, float64(latency.Milliseconds()),
		metric.WithAttributes(attribute.Bool("from_http", fromHTTP)))

	select {
	case s.blocks <- block:
		s.metrics.blocksReceived.Add(ctx, 1)
		s.logger.Debug(ctx, "block received",
			"network", s.config.Name,
			"number", block.Number,
			"from_http", fromHTTP)
	default:
		s.metrics.blocksDropped.Add(ctx, 1)
		s.logger.Warn(ctx, "block dropped, buffer full", "network", s.config.Name, "number", block.Number)
	}
}

func headerToBlock(header *types.Header) *domain.Block {
	return &domain.Block{
		Number:     header.Number.Uint64(),
		Hash:       header.Hash(),
		ParentHash: header.ParentHash,
		Timestamp:  time.Unix(int64(header.Time), 0),
		GasLimit:   header.GasLimit,
		GasUsed:    header.GasUsed,
		BaseFee:    header.BaseFee,
	}
}

// LatestBlock retrieves the most recent block from the HTTP node.
func (s *HeadSubscriber) LatestBlock(ctx context.Context) (*domain.Block, error) {
	ctx, span := s.tracer.Start(ctx, "eth.latest_block")
	defer span.End()

	header, err := s.fetchHeader(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return nil, apperror.Wrap(err, apperror.CodeRPCError, "latest block")
	}

	span.SetStatus(codes.Ok, "fetched")
	return headerToBlock(header), nil
}

// State returns the current connection state.
func (s *HeadSubscriber) State() domain.HeadState {
	return s.state.Load().(domain.HeadState)
}

// Status returns detailed connection status.
func (s *HeadSubscriber) Status() domain.HeadStatus {
	return domain.HeadStatus{
		Network:   s.config.Name,
		State:     s.State(),
		LastBlock: s.lastBlock.Load(),
		Polling:   s.usingHTTP.Load(),
	}
}

// BlockNumber returns the number of the last emitted block.
func (s *HeadSubscriber) BlockNumber() *big.Int {
	return new(big.Int).SetUint64(s.lastBlock.Load())
}

// Close stops the socket and poller and closes the block channel.
func (s *HeadSubscriber) Close() error {
	s.emitMu.Lock()
	if s.closed {
		s.emitMu.Unlock()
		return nil
	}
	s.closed = true
	close(s.done)
	s.emitMu.Unlock()

	var err error
	if s.ws != nil {
		err = s.ws.Close()
	}
	s.pollers.Wait()

	close(s.blocks)
	s.setState(domain.StateDisconnected)
	return err
}

func (s *HeadSubscriber) setState(state domain.HeadState) {
	s.state.Store(state)
}
