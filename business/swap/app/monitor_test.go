package app

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	chainDomain "github.com/fd1az/balancer-connector/business/chain/domain"
	"github.com/fd1az/balancer-connector/business/swap/app/mock"
	"github.com/fd1az/balancer-connector/business/swap/domain"
	"github.com/fd1az/balancer-connector/internal/apperror"
	"github.com/fd1az/balancer-connector/internal/asset"
)

func TestMonitorQuotesEachBlock(t *testing.T) {
	f := newFixture(t)
	ctrl := gomock.NewController(t)
	blocks := mock.NewMockBlockSource(ctrl)
	gas := mock.NewMockGasSource(ctrl)
	rep := mock.NewMockReporter(ctrl)

	f.chain.EXPECT().Ready().Return(true)
	f.chain.EXPECT().TokenList(gomock.Any()).Return(asset.WellKnown(asset.ChainIDEthereum), nil)
	c := f.connector(t, false)

	heads := make(chan *chainDomain.Block, 1)
	blocks.EXPECT().Subscribe(gomock.Any()).Return((<-chan *chainDomain.Block)(heads), nil)
	rep.EXPECT().Start(gomock.Any()).Return(nil)
	rep.EXPECT().UpdateConnectionStatus(gomock.Any(), true, gomock.Any())
	rep.EXPECT().Stop().Return(nil)

	in := mustInt("1500000000000000000")
	out := mustInt("4420605917717788518")
	f.router.EXPECT().
		FindPaths(gomock.Any(), asset.ChainIDEthereum, asset.WETH.Address(), asset.DAI.Address(), domain.GivenIn, in, "").
		Return([]domain.SwapPath{oneHop(in, out)}, nil)
	gas.EXPECT().GetGasPrice(gomock.Any()).Return(chainDomain.NewGasPrice(big.NewInt(30_000_000_000)), nil)

	reports := make(chan domain.QuoteReport, 1)
	rep.EXPECT().Report(gomock.Any()).Do(func(r domain.QuoteReport) { reports <- r })

	m := NewMonitor(c, blocks, gas, rep, MonitorConfig{
		Pair:   domain.Pair{Base: "WETH", Quote: "DAI"},
		Side:   domain.SideSell,
		Amount: "1.5",
	}, nil)
	require.NoError(t, m.Start(context.Background()))

	heads <- &chainDomain.Block{Number: 19_000_000}

	select {
	case r := <-reports:
		require.NoError(t, r.Err)
		assert.EqualValues(t, 19_000_000, r.Block.Number)
		assert.Equal(t, out, r.Quote.SelectedPath.OutputAmountRaw)
		assert.NotNil(t, r.GasPrice)
	case <-time.After(2 * time.Second):
		t.Fatal("no report")
	}

	require.NoError(t, m.Stop())
}

func TestMonitorQuoteBlockReportsFailure(t *testing.T) {
	f := newFixture(t)
	f.chain.EXPECT().Ready().Return(true)
	f.chain.EXPECT().TokenList(gomock.Any()).Return(asset.WellKnown(asset.ChainIDEthereum), nil)
	c := f.connector(t, false)
	require.NoError(t, c.Init(context.Background()))

	f.router.EXPECT().FindPaths(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), domain.GivenOut, gomock.Any(), gomock.Any()).
		Return(nil, apperror.New(apperror.CodeNoRouteFound))

	m := NewMonitor(c, nil, nil, nil, MonitorConfig{
		Pair:   domain.Pair{Base: "WETH", Quote: "USDC"},
		Side:   domain.SideBuy,
		Amount: "2",
	}, nil)

	r := m.QuoteBlock(context.Background(), &chainDomain.Block{Number: 7})
	assert.True(t, apperror.HasCode(r.Err, apperror.CodeNoRouteFound))
	assert.Nil(t, r.Quote)
	assert.Equal(t, domain.SideBuy, r.Side)
}

func TestMonitorUnknownToken(t *testing.T) {
	f := newFixture(t)
	f.chain.EXPECT().Ready().Return(true)
	f.chain.EXPECT().TokenList(gomock.Any()).Return(asset.WellKnown(asset.ChainIDEthereum), nil)
	c := f.connector(t, false)
	require.NoError(t, c.Init(context.Background()))

	m := NewMonitor(c, nil, nil, nil, MonitorConfig{
		Pair:   domain.Pair{Base: "PEPE", Quote: "DAI"},
		Side:   domain.SideSell,
		Amount: "1",
	}, nil)

	r := m.QuoteBlock(context.Background(), &chainDomain.Block{Number: 8})
	assert.True(t, apperror.HasCode(r.Err, apperror.CodeTokenNotFound))
}

func TestMonitorStartFailsWhenSubscribeFails(t *testing.T) {
	f := newFixture(t)
	ctrl := gomock.NewController(t)
	blocks := mock.NewMockBlockSource(ctrl)
	rep := mock.NewMockReporter(ctrl)

	f.chain.EXPECT().Ready().Return(true)
	f.chain.EXPECT().TokenList(gomock.Any()).Return(asset.WellKnown(asset.ChainIDEthereum), nil)
	c := f.connector(t, false)

	blocks.EXPECT().Subscribe(gomock.Any()).Return(nil, errors.New("dial tcp: connection refused"))

	m := NewMonitor(c, blocks, nil, rep, MonitorConfig{Pair: domain.Pair{Base: "WETH", Quote: "DAI"}, Side: domain.SideSell, Amount: "1"}, nil)
	assert.Error(t, m.Start(context.Background()))
}

func TestLatestDrainsQueuedBlocks(t *testing.T) {
	ch := make(chan *chainDomain.Block, 3)
	ch <- &chainDomain.Block{Number: 2}
	ch <- &chainDomain.Block{Number: 3}

	got := latest(&chainDomain.Block{Number: 1}, ch)
	assert.EqualValues(t, 3, got.Number)
	assert.Empty(t, ch)
}
