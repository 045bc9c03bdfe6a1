package app

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/fd1az/balancer-connector/business/swap/app/mock"
	"github.com/fd1az/balancer-connector/business/swap/domain"
	"github.com/fd1az/balancer-connector/internal/apperror"
	"github.com/fd1az/balancer-connector/internal/asset"
)

var (
	testSender    = common.HexToAddress("0x1111111111111111111111111111111111111111")
	testRecipient = common.HexToAddress("0x2222222222222222222222222222222222222222")
	fixedNow      = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	testVault     = common.HexToAddress("0xBA12222222228d8Ba445958a75a0704d566BF2C8")
)

func sellQuote(t *testing.T) *domain.Quote {
	t.Helper()
	q, err := BuildQuote([]domain.SwapPath{oneHop(mustInt("1000000000000000000"), mustInt("2947070611811859012"))},
		domain.GivenIn, asset.WETH, asset.DAI, SlippageSpec{Explicit: "50/100"})
	require.NoError(t, err)
	return q
}

func newBuilder(sim Simulator, enc CallEncoder, slippage string) *TradeBuilder {
	return NewTradeBuilder(sim, enc, TradeBuilderConfig{
		AllowedSlippage: slippage,
		DeadlineOffset:  time.Hour,
		Now:             func() time.Time { return fixedNow },
	})
}

func TestTradeBuilderSellUsesConfiguredSlippage(t *testing.T) {
	ctrl := gomock.NewController(t)
	sim := mock.NewMockSimulator(ctrl)
	enc := mock.NewMockCallEncoder(ctrl)
	q := sellQuote(t)

	out := &domain.QueryOutput{AmountIn: mustInt("1000000000000000000"), AmountOut: mustInt("2000")}
	sim.EXPECT().Query(gomock.Any(), q, testSender, testRecipient).Return(out, nil)

	var got domain.SwapCall
	enc.EXPECT().Encode(q, gomock.Any()).DoAndReturn(func(_ *domain.Quote, call domain.SwapCall) (domain.EncodedCall, error) {
		got = call
		return domain.EncodedCall{To: testVault, Data: []byte{0x52, 0xbb, 0xbe, 0x29}}, nil
	})

	b := newBuilder(sim, enc, "1/100%")
	built, err := b.Build(context.Background(), BuildRequest{Quote: q, Sender: testSender, Recipient: testRecipient})
	require.NoError(t, err)

	// the quote carries 50%, the build uses the configured 1%
	assert.Equal(t, 1, built.SlippagePercent)
	assert.Equal(t, "1980", built.Limit.String())
	assert.Equal(t, built.Limit, got.Limit)
	assert.Equal(t, fixedNow.Add(time.Hour), built.Deadline)
	assert.Equal(t, got.Deadline, built.Deadline)
	assert.Equal(t, testVault, built.To)
	assert.Equal(t, 0, built.Value.Sign())
	assert.Same(t, out, built.Query)
}

func TestTradeBuilderBuyCeilsMaxIn(t *testing.T) {
	ctrl := gomock.NewController(t)
	sim := mock.NewMockSimulator(ctrl)
	enc := mock.NewMockCallEncoder(ctrl)

	q, err := BuildQuote([]domain.SwapPath{oneHop(mustInt("101"), mustInt("1"))},
		domain.GivenOut, asset.DAI, asset.WETH, SlippageSpec{Configured: "1/100"})
	require.NoError(t, err)

	sim.EXPECT().Query(gomock.Any(), q, testSender, testRecipient).
		Return(&domain.QueryOutput{AmountIn: big.NewInt(101), AmountOut: big.NewInt(1)}, nil)
	enc.EXPECT().Encode(q, gomock.Any()).Return(domain.EncodedCall{To: testVault, Data: []byte{1}}, nil)

	built, err := newBuilder(sim, enc, "1/100").Build(context.Background(),
		BuildRequest{Quote: q, Sender: testSender, Recipient: testRecipient})
	require.NoError(t, err)
	assert.Equal(t, "103", built.Limit.String())
}

func TestTradeBuilderNativeInputCarriesValue(t *testing.T) {
	ctrl := gomock.NewController(t)
	sim := mock.NewMockSimulator(ctrl)
	enc := mock.NewMockCallEncoder(ctrl)

	eth := asset.MustNewToken(asset.ChainIDEthereum, asset.TokenRecord{
		Address: asset.NativeAddress.Hex(), Symbol: "ETH", Decimals: 18,
	})
	path := oneHop(big.NewInt(200), big.NewInt(10))
	path.Tokens[0] = eth.Address()

	q, err := BuildQuote([]domain.SwapPath{path}, domain.GivenOut, eth, asset.DAI, SlippageSpec{Configured: "10/100"})
	require.NoError(t, err)

	sim.EXPECT().Query(gomock.Any(), q, testSender, testRecipient).
		Return(&domain.QueryOutput{AmountIn: big.NewInt(200), AmountOut: big.NewInt(10)}, nil)
	enc.EXPECT().Encode(q, gomock.Any()).Return(domain.EncodedCall{To: testVault}, nil)

	built, err := newBuilder(sim, enc, "10/100").Build(context.Background(),
		BuildRequest{Quote: q, Sender: testSender, Recipient: testRecipient})
	require.NoError(t, err)
	assert.Equal(t, "220", built.Limit.String())
	assert.Equal(t, "220", built.Value.String(), "value is the max input")
}

func TestTradeBuilderSimulationFailureSkipsEncode(t *testing.T) {
	ctrl := gomock.NewController(t)
	sim := mock.NewMockSimulator(ctrl)
	enc := mock.NewMockCallEncoder(ctrl) // no calls expected
	q := sellQuote(t)

	sim.EXPECT().Query(gomock.Any(), q, testSender, testRecipient).Return(nil, errors.New("execution reverted: BAL#507"))

	_, err := newBuilder(sim, enc, "1/100").Build(context.Background(),
		BuildRequest{Quote: q, Sender: testSender, Recipient: testRecipient})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeSimulationFailed))
	assert.Contains(t, err.Error(), "BAL#507")
}

func TestTradeBuilderRejectsEmptySimulation(t *testing.T) {
	ctrl := gomock.NewController(t)
	sim := mock.NewMockSimulator(ctrl)
	enc := mock.NewMockCallEncoder(ctrl)
	q := sellQuote(t)

	sim.EXPECT().Query(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&domain.QueryOutput{AmountIn: big.NewInt(1), AmountOut: big.NewInt(0)}, nil)

	_, err := newBuilder(sim, enc, "1/100").Build(context.Background(),
		BuildRequest{Quote: q, Sender: testSender, Recipient: testRecipient})
	assert.True(t, apperror.HasCode(err, apperror.CodeSimulationFailed))
}

func TestTradeBuilderBadConfiguredSlippage(t *testing.T) {
	ctrl := gomock.NewController(t)
	sim := mock.NewMockSimulator(ctrl)
	enc := mock.NewMockCallEncoder(ctrl)
	q := sellQuote(t)

	sim.EXPECT().Query(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&domain.QueryOutput{AmountIn: big.NewInt(1), AmountOut: big.NewInt(1)}, nil)

	_, err := newBuilder(sim, enc, "one percent").Build(context.Background(),
		BuildRequest{Quote: q, Sender: testSender, Recipient: testRecipient})
	assert.True(t, apperror.HasCode(err, apperror.CodeMalformedSlippageConfig))
}

func TestTradeBuilderEncodeFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	sim := mock.NewMockSimulator(ctrl)
	enc := mock.NewMockCallEncoder(ctrl)
	q := sellQuote(t)

	sim.EXPECT().Query(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&domain.QueryOutput{AmountIn: big.NewInt(1), AmountOut: big.NewInt(1)}, nil)
	enc.EXPECT().Encode(gomock.Any(), gomock.Any()).Return(domain.EncodedCall{}, errors.New("abi: cannot use"))

	_, err := newBuilder(sim, enc, "1/100").Build(context.Background(),
		BuildRequest{Quote: q, Sender: testSender, Recipient: testRecipient})
	assert.True(t, apperror.HasCode(err, apperror.CodeEncodingFailed))
}

func TestNewTradeBuilderDefaults(t *testing.T) {
	b := NewTradeBuilder(nil, nil, TradeBuilderConfig{})
	assert.Equal(t, DefaultDeadlineOffset, b.config.DeadlineOffset)
	assert.NotNil(t, b.config.Now)
}
