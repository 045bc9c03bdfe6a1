// Package app contains application services and port definitions for the swap context.
package app

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	chainDomain "github.com/fd1az/balancer-connector/business/chain/domain"
	"github.com/fd1az/balancer-connector/business/swap/domain"
	"github.com/fd1az/balancer-connector/internal/asset"
)

//go:generate mockgen -destination=mock/ports.go -package=mock . ChainContext,PathRouter,Simulator,CallEncoder,Broadcaster,BlockSource,GasSource,Reporter

// ChainContext is the per-network collaborator a connector is bound to.
type ChainContext interface {
	// Name identifies the context in errors, e.g. "ethereum/mainnet".
	Name() string
	ChainID() uint64
	// Ready reports whether the chain connection is usable.
	Ready() bool
	// TokenList returns the records the token registry is built from.
	TokenList(ctx context.Context) ([]asset.TokenRecord, error)
}

// PathRouter finds ranked swap paths through the routing backend.
type PathRouter interface {
	// FindPaths returns paths best-first. A non-empty poolID refreshes that
	// pool before discovery. An empty result is an error.
	FindPaths(ctx context.Context, chainID uint64, tokenIn, tokenOut common.Address,
		direction domain.Direction, amountRaw *big.Int, poolID string) ([]domain.SwapPath, error)
}

// Simulator asks the chain for authoritative amounts of a quote.
type Simulator interface {
	Query(ctx context.Context, quote *domain.Quote, sender, recipient common.Address) (*domain.QueryOutput, error)
}

// CallEncoder turns a quote and its bound into contract calldata.
type CallEncoder interface {
	Encode(quote *domain.Quote, call domain.SwapCall) (domain.EncodedCall, error)
}

// Broadcaster signs and submits a transaction.
type Broadcaster interface {
	Send(ctx context.Context, tx chainDomain.TxRequest, overrides chainDomain.TxOverrides) (*chainDomain.TxResult, error)
	// Address is the account transactions are sent from.
	Address() common.Address
}

// BlockSource emits new heads.
type BlockSource interface {
	Subscribe(ctx context.Context) (<-chan *chainDomain.Block, error)
}

// GasSource reports the current gas price.
type GasSource interface {
	GetGasPrice(ctx context.Context) (*chainDomain.GasPrice, error)
}

// Reporter displays monitor output.
type Reporter interface {
	// Start initializes the reporter.
	Start(ctx context.Context) error

	// Report sends one block's quote (or its failure) to be displayed.
	Report(report domain.QuoteReport)

	// UpdateConnectionStatus updates a connection status display.
	UpdateConnectionStatus(name string, connected bool, latency time.Duration)

	// Stop gracefully shuts down the reporter.
	Stop() error
}
