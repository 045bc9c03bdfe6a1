// Package reporter displays per-block quotes from the monitor.
package reporter

import (
	"github.com/fd1az/balancer-connector/business/swap/app"
	"github.com/fd1az/balancer-connector/business/swap/domain"
	"github.com/fd1az/balancer-connector/internal/asset"
)

// bound describes the slippage-protected limit a trade of q would carry.
func bound(q *domain.Quote) string {
	if q.Direction == domain.GivenOut {
		return "max in " + asset.NewAmount(q.TokenIn, app.MaxAmountIn(q.SelectedPath.InputAmountRaw, q.MaxSlippagePercent)).String()
	}
	return "min out " + asset.NewAmount(q.TokenOut, app.MinAmountOut(q.SelectedPath.OutputAmountRaw, q.MaxSlippagePercent)).String()
}

func blockNumber(r domain.QuoteReport) uint64 {
	if r.Block == nil {
		return 0
	}
	return r.Block.Number
}
