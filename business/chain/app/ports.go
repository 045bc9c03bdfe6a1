// Package app contains application services and port definitions for the chain context.
package app

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/balancer-connector/business/chain/domain"
	"github.com/fd1az/balancer-connector/internal/asset"
)

// Network is one connected (chain, network) endpoint.
type Network interface {
	// Name identifies the network, e.g. "ethereum/mainnet".
	Name() string
	ChainID() uint64
	Ready() bool
	TokenList(ctx context.Context) ([]asset.TokenRecord, error)

	// Connect dials the node and checks its chain id.
	Connect(ctx context.Context) error
	Close() error
}

// BlockSubscriber defines the interface for subscribing to new blocks.
type BlockSubscriber interface {
	// Subscribe starts listening for new blocks and returns a channel of blocks.
	Subscribe(ctx context.Context) (<-chan *domain.Block, error)

	// LatestBlock retrieves the most recent block.
	LatestBlock(ctx context.Context) (*domain.Block, error)

	// State returns the current connection state.
	State() domain.HeadState
}

// GasOracle defines the interface for gas price information.
type GasOracle interface {
	GetGasPrice(ctx context.Context) (*domain.GasPrice, error)
}

// BalanceReader reads account balances.
type BalanceReader interface {
	// Balance returns owner's holding of token. Native tokens read the
	// account balance, everything else calls balanceOf.
	Balance(ctx context.Context, owner common.Address, token *asset.Token) (asset.Amount, error)
}

// ReceiptReader reports the outcome of a submitted transaction.
type ReceiptReader interface {
	Status(ctx context.Context, hash common.Hash) (*domain.Receipt, error)
}
