package app

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	chainDomain "github.com/fd1az/balancer-connector/business/chain/domain"
	"github.com/fd1az/balancer-connector/business/swap/app/mock"
	"github.com/fd1az/balancer-connector/business/swap/domain"
	"github.com/fd1az/balancer-connector/internal/apperror"
	"github.com/fd1az/balancer-connector/internal/asset"
)

type connectorFixture struct {
	chain  *mock.MockChainContext
	router *mock.MockPathRouter
	sim    *mock.MockSimulator
	enc    *mock.MockCallEncoder
	bc     *mock.MockBroadcaster
}

func newFixture(t *testing.T) *connectorFixture {
	ctrl := gomock.NewController(t)
	f := &connectorFixture{
		chain:  mock.NewMockChainContext(ctrl),
		router: mock.NewMockPathRouter(ctrl),
		sim:    mock.NewMockSimulator(ctrl),
		enc:    mock.NewMockCallEncoder(ctrl),
		bc:     mock.NewMockBroadcaster(ctrl),
	}
	f.chain.EXPECT().Name().Return("ethereum/mainnet").AnyTimes()
	f.chain.EXPECT().ChainID().Return(asset.ChainIDEthereum).AnyTimes()
	return f
}

func (f *connectorFixture) connector(t *testing.T, withWallet bool) *Connector {
	t.Helper()
	cfg := ConnectorConfig{
		Chain:           f.chain,
		Router:          f.router,
		Builder:         newBuilder(f.sim, f.enc, "1/100%"),
		AllowedSlippage: "1/100%",
	}
	if withWallet {
		cfg.Broadcaster = f.bc
	}
	c, err := NewConnector(cfg)
	require.NoError(t, err)
	return c
}

func (f *connectorFixture) ready(t *testing.T, withWallet bool) *Connector {
	t.Helper()
	f.chain.EXPECT().Ready().Return(true)
	f.chain.EXPECT().TokenList(gomock.Any()).Return(asset.WellKnown(asset.ChainIDEthereum), nil)
	c := f.connector(t, withWallet)
	require.NoError(t, c.Init(context.Background()))
	return c
}

func TestConnectorNotReadyBeforeInit(t *testing.T) {
	f := newFixture(t)
	c := f.connector(t, true)
	ctx := context.Background()
	one := big.NewInt(1)

	assert.Equal(t, StateUninitialized, c.State())

	_, err := c.EstimateSellTrade(ctx, asset.WETH, asset.DAI, one, EstimateOptions{})
	assert.True(t, apperror.HasCode(err, apperror.CodeNotReady))
	assert.Contains(t, err.Error(), "ethereum/mainnet")

	_, err = c.EstimateBuyTrade(ctx, asset.DAI, asset.WETH, one, EstimateOptions{})
	assert.True(t, apperror.HasCode(err, apperror.CodeNotReady))

	_, err = c.BuildTrade(ctx, &domain.Quote{TokenIn: asset.WETH, TokenOut: asset.DAI}, testSender, testRecipient)
	assert.True(t, apperror.HasCode(err, apperror.CodeNotReady))

	_, err = c.Tokens()
	assert.True(t, apperror.HasCode(err, apperror.CodeNotReady))

	assert.Zero(t, c.RequestCount(), "refused calls are not counted")
}

func TestConnectorInitChainNotReady(t *testing.T) {
	f := newFixture(t)
	f.chain.EXPECT().Ready().Return(false)
	c := f.connector(t, false)

	err := c.Init(context.Background())
	assert.True(t, apperror.HasCode(err, apperror.CodeNotReady))
	assert.Equal(t, StateUninitialized, c.State())

	// retry succeeds once the chain is up
	f.chain.EXPECT().Ready().Return(true)
	f.chain.EXPECT().TokenList(gomock.Any()).Return(asset.WellKnown(asset.ChainIDEthereum), nil)
	require.NoError(t, c.Init(context.Background()))
	assert.True(t, c.Ready())
}

func TestConnectorInitTokenListFailure(t *testing.T) {
	f := newFixture(t)
	f.chain.EXPECT().Ready().Return(true)
	f.chain.EXPECT().TokenList(gomock.Any()).Return(nil, errors.New("tokens.toml: no such file"))
	c := f.connector(t, false)

	err := c.Init(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateUninitialized, c.State())
}

func TestConnectorConcurrentInitLoadsOnce(t *testing.T) {
	f := newFixture(t)
	f.chain.EXPECT().Ready().Return(true).Times(1)
	f.chain.EXPECT().TokenList(gomock.Any()).Return(asset.WellKnown(asset.ChainIDEthereum), nil).Times(1)
	c := f.connector(t, false)

	var wg sync.WaitGroup
	errs := make([]error, 16)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = c.Init(context.Background())
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, StateReady, c.State())
}

func TestConnectorInitWaiterHonoursCancellation(t *testing.T) {
	f := newFixture(t)
	started := make(chan struct{})
	release := make(chan struct{})
	f.chain.EXPECT().Ready().Return(true).Times(1)
	f.chain.EXPECT().TokenList(gomock.Any()).DoAndReturn(func(context.Context) ([]asset.TokenRecord, error) {
		close(started)
		<-release
		return asset.WellKnown(asset.ChainIDEthereum), nil
	}).Times(1)
	c := f.connector(t, false)

	first := make(chan error, 1)
	go func() { first <- c.Init(context.Background()) }()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := c.Init(ctx)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeNotReady))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateInitializing, c.State(), "the first init is still running")

	close(release)
	require.NoError(t, <-first)
	assert.True(t, c.Ready())
	require.NoError(t, c.Init(ctx), "a ready connector ignores the context")
}

func TestConnectorSellEndToEnd(t *testing.T) {
	f := newFixture(t)
	c := f.ready(t, false)
	ctx := context.Background()

	weth, err := c.Token("weth")
	require.NoError(t, err)
	dai, err := c.Token(asset.DAI.Address().Hex())
	require.NoError(t, err)

	in := mustInt("1000000000000000000")
	out := mustInt("2947070611811859012")
	f.router.EXPECT().
		FindPaths(gomock.Any(), asset.ChainIDEthereum, weth.Address(), dai.Address(), domain.GivenIn, in, "").
		Return([]domain.SwapPath{oneHop(in, out)}, nil)

	q, err := c.EstimateSellTrade(ctx, weth, dai, in, EstimateOptions{})
	require.NoError(t, err)

	assert.Equal(t, out, q.SelectedPath.OutputAmountRaw)
	assert.Equal(t, 0, q.ExecutionPrice.Cmp(new(big.Rat).SetFrac(out, in)))
	assert.Equal(t, 1, q.MaxSlippagePercent)
	assert.Equal(t, uint64(1), c.RequestCount())

	lastIn, lastOut := c.LastTokens()
	assert.Equal(t, weth.Address(), lastIn)
	assert.Equal(t, dai.Address(), lastOut)
}

func TestConnectorBuyPriceIsReciprocalOfSell(t *testing.T) {
	f := newFixture(t)
	c := f.ready(t, false)
	ctx := context.Background()

	wethAmt := mustInt("1000000000000000000")
	daiAmt := mustInt("2950000000000000000000")

	f.router.EXPECT().
		FindPaths(gomock.Any(), gomock.Any(), asset.DAI.Address(), asset.WETH.Address(), domain.GivenOut, wethAmt, "").
		Return([]domain.SwapPath{{
			PoolIDs:         []string{"0x01"},
			Tokens:          []common.Address{asset.DAI.Address(), asset.WETH.Address()},
			InputAmountRaw:  daiAmt,
			OutputAmountRaw: wethAmt,
		}}, nil)
	f.router.EXPECT().
		FindPaths(gomock.Any(), gomock.Any(), asset.WETH.Address(), asset.DAI.Address(), domain.GivenIn, wethAmt, "").
		Return([]domain.SwapPath{oneHop(wethAmt, daiAmt)}, nil)

	buy, err := c.EstimateBuyTrade(ctx, asset.DAI, asset.WETH, wethAmt, EstimateOptions{AllowedSlippage: "3/100"})
	require.NoError(t, err)
	sell, err := c.EstimateSellTrade(ctx, asset.WETH, asset.DAI, wethAmt, EstimateOptions{})
	require.NoError(t, err)

	// both are DAI per WETH
	assert.Equal(t, 0, buy.ExecutionPrice.Cmp(sell.ExecutionPrice))
	assert.Equal(t, asset.WETH, buy.Base())
	assert.Equal(t, 3, buy.MaxSlippagePercent)
	assert.Equal(t, 1, sell.MaxSlippagePercent)
	assert.Equal(t, uint64(2), c.RequestCount())
}

func TestConnectorEmptyPathSetIsPricingFailure(t *testing.T) {
	f := newFixture(t)
	c := f.ready(t, false)

	f.router.EXPECT().FindPaths(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, nil)

	_, err := c.EstimateSellTrade(context.Background(), asset.WETH, asset.DAI, big.NewInt(1), EstimateOptions{})
	require.Error(t, err)
	assert.True(t, apperror.IsPricingFailure(err))
}

func TestConnectorPoolIDForwarded(t *testing.T) {
	f := newFixture(t)
	c := f.ready(t, false)
	pool := "0x5c6ee304399dbdb9c8ef030ab642b10820db8f56000200000000000000000014"

	f.router.EXPECT().FindPaths(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), pool).
		Return(nil, apperror.New(apperror.CodeNoRouteFound))

	_, err := c.EstimateSellTrade(context.Background(), asset.WETH, asset.DAI, big.NewInt(1), EstimateOptions{PoolID: pool})
	assert.True(t, apperror.HasCode(err, apperror.CodeNoRouteFound))
}

func TestConnectorExecuteWithoutWallet(t *testing.T) {
	f := newFixture(t)
	c := f.ready(t, false)

	_, err := c.ExecuteTrade(context.Background(), sellQuote(t), testSender, testRecipient, chainDomain.TxOverrides{})
	assert.True(t, apperror.HasCode(err, apperror.CodeWalletNotConfigured))
	assert.Equal(t, common.Address{}, c.Sender())
}

func TestConnectorExecuteBroadcastsBuiltTx(t *testing.T) {
	f := newFixture(t)
	c := f.ready(t, true)
	q := sellQuote(t)

	f.sim.EXPECT().Query(gomock.Any(), q, testSender, testSender).
		Return(&domain.QueryOutput{AmountIn: big.NewInt(100), AmountOut: big.NewInt(300)}, nil)
	f.enc.EXPECT().Encode(q, gomock.Any()).
		Return(domain.EncodedCall{To: testVault, Data: []byte{0xde, 0xad}}, nil)

	hash := common.HexToHash("0xabc")
	f.bc.EXPECT().Send(gomock.Any(), gomock.Any(), chainDomain.TxOverrides{}).
		DoAndReturn(func(_ context.Context, req chainDomain.TxRequest, _ chainDomain.TxOverrides) (*chainDomain.TxResult, error) {
			assert.Equal(t, testVault, req.To)
			assert.Equal(t, []byte{0xde, 0xad}, req.Data)
			return &chainDomain.TxResult{Hash: hash, From: testSender}, nil
		})

	res, err := c.ExecuteTrade(context.Background(), q, testSender, testSender, chainDomain.TxOverrides{})
	require.NoError(t, err)
	assert.Equal(t, hash, res.Tx.Hash)
	assert.Equal(t, "297", res.Built.Limit.String())
	assert.Equal(t, fixedNow.Add(time.Hour), res.Built.Deadline)
	assert.Equal(t, uint64(1), c.RequestCount())
}
