package reporter

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chainDomain "github.com/fd1az/balancer-connector/business/chain/domain"
	"github.com/fd1az/balancer-connector/business/swap/domain"
	"github.com/fd1az/balancer-connector/internal/asset"
	"github.com/fd1az/balancer-connector/pkg/ui"
)

func ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1_000_000_000_000_000_000))
}

func sellReport() domain.QuoteReport {
	path := domain.SwapPath{
		PoolIDs:         []string{"0x0b09dea16768f0799065c475be02919503cb2a3500020000000000000000001a"},
		Tokens:          []common.Address{asset.WETH.Address(), asset.DAI.Address()},
		InputAmountRaw:  ether(1),
		OutputAmountRaw: ether(2000),
	}
	return domain.QuoteReport{
		Block: &chainDomain.Block{Number: 19_000_000, Timestamp: time.Unix(1_700_000_000, 0)},
		Pair:  domain.Pair{Base: "WETH", Quote: "DAI"},
		Side:  domain.SideSell,
		Quote: &domain.Quote{
			SelectedPath:       path,
			AllPaths:           []domain.SwapPath{path, path},
			Direction:          domain.GivenIn,
			TokenIn:            asset.WETH,
			TokenOut:           asset.DAI,
			ExecutionPrice:     big.NewRat(2000, 1),
			MaxSlippagePercent: 1,
		},
		GasPrice:  chainDomain.NewGasPrice(big.NewInt(30_000_000_000)),
		Latency:   42 * time.Millisecond,
		Timestamp: time.Unix(1_700_000_001, 0),
	}
}

func TestBound(t *testing.T) {
	r := sellReport()
	assert.Equal(t, "min out 1980 DAI", bound(r.Quote))

	buy := &domain.Quote{
		SelectedPath:       domain.SwapPath{InputAmountRaw: ether(3000), OutputAmountRaw: ether(1)},
		Direction:          domain.GivenOut,
		TokenIn:            asset.DAI,
		TokenOut:           asset.WETH,
		MaxSlippagePercent: 2,
	}
	assert.Equal(t, "max in 3060 DAI", bound(buy))
}

func TestConsoleReport(t *testing.T) {
	var buf bytes.Buffer
	r := NewConsoleReporter(&buf)
	require.NoError(t, r.Start(context.Background()))

	r.Report(sellReport())
	out := buf.String()
	assert.Contains(t, out, "#19000000")
	assert.Contains(t, out, "WETH-DAI (SELL)")
	assert.Contains(t, out, "Pay:            1 WETH")
	assert.Contains(t, out, "Receive:        2000 DAI")
	assert.Contains(t, out, "Price:          2000.000000")
	assert.Contains(t, out, "min out 1980 DAI (1% slippage)")
	assert.Contains(t, out, "best of 2 path(s)")
	assert.Contains(t, out, "30.00 gwei")

	buf.Reset()
	failed := sellReport()
	failed.Quote, failed.Err = nil, errors.New("no route found")
	r.Report(failed)
	assert.Contains(t, buf.String(), "Error:          no route found")
	assert.NotContains(t, buf.String(), "Pay:")

	r.UpdateConnectionStatus("ethereum/mainnet", true, 15*time.Millisecond)
	assert.Contains(t, buf.String(), "ethereum/mainnet: connected (15ms)")
	require.NoError(t, r.Stop())
}

func TestTUIReporterSendsMessages(t *testing.T) {
	var sent []tea.Msg
	r := NewTUIReporter(func(m tea.Msg) { sent = append(sent, m) })
	require.NoError(t, r.Start(context.Background()))

	r.Report(sellReport())
	require.Len(t, sent, 4)
	assert.Equal(t, ui.StartupMsg{Step: "router", Status: "connecting"}, sent[0])
	assert.Equal(t, uint64(19_000_000), sent[1].(ui.BlockMsg).Number)
	assert.InDelta(t, 30.0, sent[2].(ui.GasPriceMsg).GweiPrice, 1e-9)

	q := sent[3].(ui.QuoteMsg)
	assert.False(t, q.Failed())
	assert.Equal(t, "1 WETH", q.AmountIn)
	assert.Equal(t, "2000 DAI", q.AmountOut)
	assert.Equal(t, "2000", q.Price.String())
	assert.Equal(t, 1, q.Hops)
	assert.Equal(t, 2, q.Paths)

	r.UpdateConnectionStatus("ethereum/mainnet", false, 0)
	assert.Equal(t, ui.ConnectionStatusMsg{Name: "ethereum/mainnet"}, sent[4])
}

func TestQuoteMsgCarriesError(t *testing.T) {
	rep := sellReport()
	rep.Quote, rep.Err = nil, errors.New("pool not found")
	msg := QuoteMsg(rep)
	assert.True(t, msg.Failed())
	assert.Equal(t, "pool not found", msg.Error)
	assert.Empty(t, msg.AmountIn)
}
