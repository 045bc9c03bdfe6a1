package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/balancer-connector/internal/apperror"
)

// SwapPath is one route through pools. Tokens[i] and Tokens[i+1] are the
// assets swapped in PoolIDs[i].
type SwapPath struct {
	PoolIDs         []string
	Tokens          []common.Address
	InputAmountRaw  *big.Int
	OutputAmountRaw *big.Int
	ProtocolVersion int
}

// Hops returns the number of pools traversed.
func (p SwapPath) Hops() int {
	return len(p.PoolIDs)
}

// Clone returns a copy that shares no slices or integers with p.
func (p SwapPath) Clone() SwapPath {
	c := SwapPath{
		PoolIDs:         append([]string(nil), p.PoolIDs...),
		Tokens:          append([]common.Address(nil), p.Tokens...),
		ProtocolVersion: p.ProtocolVersion,
	}
	if p.InputAmountRaw != nil {
		c.InputAmountRaw = new(big.Int).Set(p.InputAmountRaw)
	}
	if p.OutputAmountRaw != nil {
		c.OutputAmountRaw = new(big.Int).Set(p.OutputAmountRaw)
	}
	return c
}

// Validate checks the path shape and amount signs.
func (p SwapPath) Validate() error {
	if len(p.PoolIDs) == 0 || len(p.Tokens) != len(p.PoolIDs)+1 {
		return apperror.New(apperror.CodeValidationError,
			apperror.WithMessage("path must connect len(pools)+1 tokens"))
	}
	if p.InputAmountRaw == nil || p.OutputAmountRaw == nil ||
		p.InputAmountRaw.Sign() < 0 || p.OutputAmountRaw.Sign() < 0 {
		return apperror.New(apperror.CodeInvalidAmount,
			apperror.WithMessage("path amounts must be non-negative integers"))
	}
	return nil
}
