package app

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fd1az/balancer-connector/business/swap/domain"
	"github.com/fd1az/balancer-connector/internal/apperror"
	"github.com/fd1az/balancer-connector/internal/asset"
)

func oneHop(in, out *big.Int) domain.SwapPath {
	return domain.SwapPath{
		PoolIDs:         []string{"0x0b09dea16768f0799065c475be02919503cb2a3500020000000000000000001a"},
		Tokens:          []common.Address{asset.WETH.Address(), asset.DAI.Address()},
		InputAmountRaw:  in,
		OutputAmountRaw: out,
		ProtocolVersion: 2,
	}
}

func mustInt(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic(s)
	}
	return n
}

func TestBuildQuoteSell(t *testing.T) {
	in := mustInt("1000000000000000000")
	out := mustInt("2947070611811859012")
	paths := []domain.SwapPath{oneHop(in, out), oneHop(in, big.NewInt(1))}

	q, err := BuildQuote(paths, domain.GivenIn, asset.WETH, asset.DAI, SlippageSpec{Configured: "1/100%"})
	require.NoError(t, err)

	assert.Equal(t, 0, q.ExecutionPrice.Cmp(new(big.Rat).SetFrac(out, in)))
	assert.Equal(t, "736767652952964753/250000000000000000", q.ExecutionPrice.String(), "price is reduced")
	assert.Equal(t, out, q.SelectedPath.OutputAmountRaw)
	assert.Len(t, q.AllPaths, 2)
	assert.Equal(t, 1, q.MaxSlippagePercent)
	assert.Equal(t, domain.DeadlinePlaceholder, q.Deadline)
	assert.Equal(t, "2.947070611811859012", q.AdjustedPrice().String())
}

func TestBuildQuoteBuyInvertsOrientation(t *testing.T) {
	daiIn := mustInt("2950000000000000000000")
	wethOut := mustInt("1000000000000000000")

	q, err := BuildQuote([]domain.SwapPath{oneHop(daiIn, wethOut)}, domain.GivenOut, asset.DAI, asset.WETH,
		SlippageSpec{Explicit: "5/100", Configured: "1/100%"})
	require.NoError(t, err)

	// price stays quote (DAI) per base (WETH)
	assert.Equal(t, 0, q.ExecutionPrice.Cmp(new(big.Rat).SetFrac(daiIn, wethOut)))
	assert.Equal(t, "2950", q.AdjustedPrice().String())
	assert.Equal(t, 5, q.MaxSlippagePercent)
}

func TestBuildQuoteErrors(t *testing.T) {
	_, err := BuildQuote(nil, domain.GivenIn, asset.WETH, asset.DAI, SlippageSpec{Configured: "1/100"})
	assert.True(t, apperror.HasCode(err, apperror.CodeEmptyPathSet))
	assert.True(t, apperror.IsPricingFailure(err))

	_, err = BuildQuote([]domain.SwapPath{oneHop(big.NewInt(0), big.NewInt(5))}, domain.GivenIn, asset.WETH, asset.DAI, SlippageSpec{Configured: "1/100"})
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidAmount))

	_, err = BuildQuote([]domain.SwapPath{oneHop(mustInt("1000000000000000000"), big.NewInt(0))}, domain.GivenIn, asset.WETH, asset.DAI, SlippageSpec{Configured: "1/100"})
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidAmount), "zero output prices nothing")

	_, err = BuildQuote([]domain.SwapPath{oneHop(big.NewInt(0), mustInt("1000000000000000000"))}, domain.GivenOut, asset.DAI, asset.WETH, SlippageSpec{Configured: "1/100"})
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidAmount), "zero input prices nothing")

	_, err = BuildQuote([]domain.SwapPath{oneHop(big.NewInt(1), big.NewInt(5))}, domain.GivenIn, asset.WETH, asset.DAI, SlippageSpec{Configured: "bad"})
	assert.True(t, apperror.HasCode(err, apperror.CodeMalformedSlippageConfig))
}

func TestBuildQuoteDoesNotAliasPaths(t *testing.T) {
	paths := []domain.SwapPath{oneHop(big.NewInt(1), big.NewInt(2))}
	q, err := BuildQuote(paths, domain.GivenIn, asset.WETH, asset.DAI, SlippageSpec{Configured: "1/100"})
	require.NoError(t, err)

	paths[0] = oneHop(big.NewInt(7), big.NewInt(7))
	assert.Equal(t, int64(1), q.AllPaths[0].InputAmountRaw.Int64())
}

func TestBuildQuoteOwnsAmounts(t *testing.T) {
	paths := []domain.SwapPath{oneHop(big.NewInt(10), big.NewInt(20))}
	q, err := BuildQuote(paths, domain.GivenIn, asset.WETH, asset.DAI, SlippageSpec{Configured: "1/100"})
	require.NoError(t, err)

	paths[0].InputAmountRaw.SetInt64(99)
	paths[0].PoolIDs[0] = "changed"

	assert.Equal(t, int64(10), q.SelectedPath.InputAmountRaw.Int64())
	assert.Equal(t, int64(10), q.AllPaths[0].InputAmountRaw.Int64())
	assert.NotEqual(t, "changed", q.AllPaths[0].PoolIDs[0])
}
