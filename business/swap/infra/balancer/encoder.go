package balancer

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/balancer-connector/business/swap/app"
	"github.com/fd1az/balancer-connector/business/swap/domain"
	"github.com/fd1az/balancer-connector/internal/apperror"
)

var _ app.CallEncoder = (*Encoder)(nil)

// Encoder builds Vault calldata. Single-hop paths use swap, longer paths
// use batchSwap.
type Encoder struct {
	vault    common.Address
	vaultABI abi.ABI
}

// NewEncoder creates an Encoder for the Vault at vault.
func NewEncoder(vault common.Address) (*Encoder, error) {
	parsed, err := parseVaultABI()
	if err != nil {
		return nil, fmt.Errorf("failed to parse vault ABI: %w", err)
	}
	if vault == (common.Address{}) {
		vault = DefaultVaultAddress
	}
	return &Encoder{vault: vault, vaultABI: parsed}, nil
}

// Vault returns the target contract.
func (e *Encoder) Vault() common.Address {
	return e.vault
}

// Encode packs the call for quote bounded by call.Limit.
func (e *Encoder) Encode(q *domain.Quote, call domain.SwapCall) (domain.EncodedCall, error) {
	if call.Query == nil || call.Query.AmountIn == nil || call.Query.AmountOut == nil || call.Limit == nil {
		return domain.EncodedCall{}, apperror.New(apperror.CodeEncodingFailed,
			apperror.WithMessage("swap call has no simulated amounts"))
	}

	amount := call.Query.AmountIn
	if q.Direction == domain.GivenOut {
		amount = call.Query.AmountOut
	}
	deadline := big.NewInt(call.Deadline.Unix())
	fm := funds(call.Sender, call.Recipient)

	b, err := layoutBatch(q, amount)
	if err != nil {
		return domain.EncodedCall{}, err
	}

	var data []byte
	if len(b.steps) == 1 {
		step := b.steps[0]
		data, err = e.vaultABI.Pack("swap", SingleSwap{
			PoolID:   step.PoolID,
			Kind:     uint8(q.Direction),
			AssetIn:  b.assets[b.inIndex],
			AssetOut: b.assets[b.outIndex],
			Amount:   amount,
			UserData: []byte{},
		}, fm, call.Limit, deadline)
	} else {
		data, err = e.vaultABI.Pack("batchSwap", uint8(q.Direction), b.steps, b.assets, fm,
			batchLimits(q.Direction, b, call), deadline)
	}
	if err != nil {
		return domain.EncodedCall{}, apperror.New(apperror.CodeEncodingFailed, apperror.WithCause(err))
	}

	return domain.EncodedCall{To: e.vault, Data: data}, nil
}

// batchLimits bounds each asset delta: positive is the most the Vault may
// pull, negative is the least it must pay out.
func batchLimits(direction domain.Direction, b *batch, call domain.SwapCall) []*big.Int {
	limits := make([]*big.Int, len(b.assets))
	for i := range limits {
		limits[i] = new(big.Int)
	}
	if direction == domain.GivenIn {
		limits[b.inIndex].Set(call.Query.AmountIn)
		limits[b.outIndex].Neg(call.Limit)
	} else {
		limits[b.inIndex].Set(call.Limit)
		limits[b.outIndex].Neg(call.Query.AmountOut)
	}
	return limits
}
