package ethereum

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/balancer-connector/business/chain/app"
	"github.com/fd1az/balancer-connector/internal/apperror"
	"github.com/fd1az/balancer-connector/internal/asset"
)

const erc20ABI = `[{"constant":true,"inputs":[{"name":"owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"}]`

var _ app.BalanceReader = (*BalanceReader)(nil)

// BalanceReader reads native and ERC20 balances at the latest block.
type BalanceReader struct {
	backend Backend
	erc20   abi.ABI
}

// NewBalanceReader creates a BalanceReader over backend.
func NewBalanceReader(backend Backend) (*BalanceReader, error) {
	parsed, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse erc20 ABI: %w", err)
	}
	return &BalanceReader{backend: backend, erc20: parsed}, nil
}

// Balance returns owner's holding of token.
func (r *BalanceReader) Balance(ctx context.Context, owner common.Address, token *asset.Token) (asset.Amount, error) {
	client, err := r.backend.Client()
	if err != nil {
		return asset.Amount{}, err
	}

	if token.IsNative() {
		wei, err := client.BalanceAt(ctx, owner, nil)
		if err != nil {
			return asset.Amount{}, apperror.New(apperror.CodeRPCError,
				apperror.WithContext("eth_getBalance"),
				apperror.WithCause(err))
		}
		return asset.NewAmount(token, wei), nil
	}

	data, err := r.erc20.Pack("balanceOf", owner)
	if err != nil {
		return asset.Amount{}, apperror.New(apperror.CodeInternalError, apperror.WithCause(err))
	}
	to := token.Address()
	raw, err := client.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return asset.Amount{}, apperror.New(apperror.CodeRPCError,
			apperror.WithContext("balanceOf "+token.Symbol()),
			apperror.WithCause(err))
	}

	out, err := r.erc20.Unpack("balanceOf", raw)
	if err != nil || len(out) != 1 {
		return asset.Amount{}, apperror.New(apperror.CodeRPCError,
			apperror.WithMessage("undecodable balanceOf result"),
			apperror.WithContext(token.Symbol()),
			apperror.WithCause(err))
	}
	balance, ok := out[0].(*big.Int)
	if !ok {
		return asset.Amount{}, apperror.New(apperror.CodeRPCError,
			apperror.WithMessage("balanceOf returned a non-integer"),
			apperror.WithContext(token.Symbol()))
	}
	return asset.NewAmount(token, balance), nil
}
