package ethereum

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"

	"github.com/ethereum/go-ethereum"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/balancer-connector/business/chain/app"
	"github.com/fd1az/balancer-connector/internal/apperror"
	"github.com/fd1az/balancer-connector/internal/asset"
	"github.com/fd1az/balancer-connector/internal/logger"
)

var (
	_ app.Network = (*Network)(nil)
	_ Backend     = (*Network)(nil)
)

// NetworkConfig identifies one node endpoint.
type NetworkConfig struct {
	Chain         string
	Network       string
	ChainID       uint64
	HTTPURL       string
	TokenListPath string // empty uses the built-in list
}

// Network is a connected (chain, network). It backs the other adapters and
// serves as the connector's chain context.
type Network struct {
	config NetworkConfig
	dial   Dialer
	logger logger.LoggerInterface
	tracer trace.Tracer

	mu     sync.RWMutex
	client RPC
	ready  atomic.Bool
}

// NewNetwork creates a disconnected Network. A nil dial uses ethclient.
func NewNetwork(cfg NetworkConfig, dial Dialer, log logger.LoggerInterface) (*Network, error) {
	if cfg.HTTPURL == "" {
		return nil, apperror.New(apperror.CodeConfigurationError,
			apperror.WithMessage("http url is required"),
			apperror.WithContext(cfg.Chain+"/"+cfg.Network))
	}
	if dial == nil {
		dial = DialEthclient
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Network{
		config: cfg,
		dial:   dial,
		logger: log,
		tracer: otel.Tracer(tracerName),
	}, nil
}

// Name returns "chain/network".
func (n *Network) Name() string {
	return n.config.Chain + "/" + n.config.Network
}

// ChainID returns the configured chain id.
func (n *Network) ChainID() uint64 {
	return n.config.ChainID
}

// Ready reports whether Connect succeeded.
func (n *Network) Ready() bool {
	return n.ready.Load()
}

// Connect dials the node and verifies it serves the configured chain.
func (n *Network) Connect(ctx context.Context) error {
	ctx, span := n.tracer.Start(ctx, "chain.connect",
		trace.WithAttributes(
			attribute.String("network", n.Name()),
			attribute.Int64("chain_id", int64(n.config.ChainID)),
		),
	)
	defer span.End()

	client, err := n.dial(ctx, n.config.HTTPURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "dial failed")
		return apperror.New(apperror.CodeConnectionFailed,
			apperror.WithContext(n.Name()),
			apperror.WithCause(err))
	}

	remote, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		span.RecordError(err)
		span.SetStatus(codes.Error, "chain id failed")
		return apperror.New(apperror.CodeRPCError,
			apperror.WithContext(n.Name()+": eth_chainId"),
			apperror.WithCause(err))
	}
	if !remote.IsUint64() || remote.Uint64() != n.config.ChainID {
		client.Close()
		err := apperror.New(apperror.CodeChainIDMismatch,
			apperror.WithMessage(fmt.Sprintf("node reports chain id %s, expected %d", remote, n.config.ChainID)),
			apperror.WithContext(n.Name()))
		span.RecordError(err)
		span.SetStatus(codes.Error, "chain id mismatch")
		return err
	}

	n.mu.Lock()
	if n.client != nil {
		n.client.Close()
	}
	n.client = client
	n.mu.Unlock()
	n.ready.Store(true)

	span.SetStatus(codes.Ok, "connected")
	n.logger.Info(ctx, "node connected", "network", n.Name(), "chain_id", n.config.ChainID)
	return nil
}

// Client returns the connected client.
func (n *Network) Client() (RPC, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.client == nil {
		return nil, apperror.New(apperror.CodeConnectionFailed,
			apperror.WithMessage("node not connected"),
			apperror.WithContext(n.Name()))
	}
	return n.client, nil
}

// TokenList returns the configured token list file, or the built-in list
// for the chain when none is configured.
func (n *Network) TokenList(_ context.Context) ([]asset.TokenRecord, error) {
	if n.config.TokenListPath != "" {
		return LoadTokenList(n.config.TokenListPath)
	}
	records := asset.WellKnown(n.config.ChainID)
	if len(records) == 0 {
		return nil, apperror.New(apperror.CodeConfigurationError,
			apperror.WithMessage(fmt.Sprintf("no built-in token list for chain id %d", n.config.ChainID)),
			apperror.WithContext(n.Name()))
	}
	return records, nil
}

// CallContract runs a read-only call against the connected node.
func (n *Network) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	client, err := n.Client()
	if err != nil {
		return nil, err
	}
	return client.CallContract(ctx, msg, blockNumber)
}

// Close drops the connection.
func (n *Network) Close() error {
	n.ready.Store(false)
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.client != nil {
		n.client.Close()
		n.client = nil
	}
	return nil
}
