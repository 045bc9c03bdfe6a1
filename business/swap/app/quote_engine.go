package app

import (
	"math/big"

	"github.com/fd1az/balancer-connector/business/swap/domain"
	"github.com/fd1az/balancer-connector/internal/apperror"
	"github.com/fd1az/balancer-connector/internal/asset"
)

// SlippageSpec carries both slippage sources for ResolveSlippage.
type SlippageSpec struct {
	Explicit   string
	Configured string
}

// BuildQuote prices the first (best) path. The execution price is quote
// units per base unit: out/in for GivenIn, in/out for GivenOut.
func BuildQuote(paths []domain.SwapPath, direction domain.Direction, tokenIn, tokenOut *asset.Token, slippage SlippageSpec) (*domain.Quote, error) {
	if len(paths) == 0 {
		return nil, apperror.New(apperror.CodeEmptyPathSet,
			apperror.WithContext(tokenIn.Symbol()+"->"+tokenOut.Symbol()))
	}

	best := paths[0]
	if err := best.Validate(); err != nil {
		return nil, err
	}

	num, den := best.OutputAmountRaw, best.InputAmountRaw
	if direction == domain.GivenOut {
		num, den = best.InputAmountRaw, best.OutputAmountRaw
	}
	if num.Sign() == 0 || den.Sign() == 0 {
		return nil, apperror.New(apperror.CodeInvalidAmount,
			apperror.WithMessage("selected path has a zero amount"),
			apperror.WithContext(direction.String()))
	}

	pct, err := ResolveSlippage(slippage.Explicit, slippage.Configured)
	if err != nil {
		return nil, err
	}

	// the quote owns its amounts; the router's slice may be reused
	all := make([]domain.SwapPath, len(paths))
	for i, p := range paths {
		all[i] = p.Clone()
	}

	return &domain.Quote{
		SelectedPath:       all[0],
		AllPaths:           all,
		Direction:          direction,
		TokenIn:            tokenIn,
		TokenOut:           tokenOut,
		ExecutionPrice:     new(big.Rat).SetFrac(num, den),
		MaxSlippagePercent: pct,
		Deadline:           domain.DeadlinePlaceholder,
	}, nil
}
