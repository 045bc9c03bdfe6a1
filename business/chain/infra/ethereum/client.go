// Package ethereum provides EVM chain infrastructure adapters built on go-ethereum.
package ethereum

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

const (
	tracerName = "github.com/fd1az/balancer-connector/business/chain/infra/ethereum"
	meterName  = "github.com/fd1az/balancer-connector/business/chain/infra/ethereum"
)

//go:generate mockgen -destination=mock/rpc.go -package=mock . RPC,Backend

// RPC is the slice of ethclient.Client the adapters use.
type RPC interface {
	ChainID(ctx context.Context) (*big.Int, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	Close()
}

var _ RPC = (*ethclient.Client)(nil)

// Backend hands out the connected client. It fails until the network is
// connected.
type Backend interface {
	Client() (RPC, error)
}

// Dialer opens an RPC connection to url.
type Dialer func(ctx context.Context, url string) (RPC, error)

// DialEthclient is the production Dialer.
func DialEthclient(ctx context.Context, url string) (RPC, error) {
	client, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, err
	}
	return client, nil
}
