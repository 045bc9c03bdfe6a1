package balancer

import (
	"math/big"
	"reflect"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fd1az/balancer-connector/business/swap/domain"
	"github.com/fd1az/balancer-connector/internal/apperror"
	"github.com/fd1az/balancer-connector/internal/asset"
)

const daiUsdcPool = "0x06df3b2bbb68adc8b0e302443692037ed9f91b42000000000000000000000063"

var (
	sender    = common.HexToAddress("0x1111111111111111111111111111111111111111")
	recipient = common.HexToAddress("0x2222222222222222222222222222222222222222")
	deadline  = time.Unix(1_735_689_600, 0)
)

func singleHopQuote(direction domain.Direction) *domain.Quote {
	in, out := asset.WETH, asset.DAI
	if direction == domain.GivenOut {
		in, out = asset.DAI, asset.WETH
	}
	return &domain.Quote{
		SelectedPath: domain.SwapPath{
			PoolIDs:         []string{wethDaiPool},
			Tokens:          []common.Address{in.Address(), out.Address()},
			InputAmountRaw:  big.NewInt(1000),
			OutputAmountRaw: big.NewInt(2947),
		},
		Direction: direction,
		TokenIn:   in,
		TokenOut:  out,
	}
}

func twoHopQuote(direction domain.Direction) *domain.Quote {
	return &domain.Quote{
		SelectedPath: domain.SwapPath{
			PoolIDs:         []string{wethUsdcPool, daiUsdcPool},
			Tokens:          []common.Address{asset.WETH.Address(), asset.USDC.Address(), asset.DAI.Address()},
			InputAmountRaw:  big.NewInt(1000),
			OutputAmountRaw: big.NewInt(2900),
		},
		Direction: direction,
		TokenIn:   asset.WETH,
		TokenOut:  asset.DAI,
	}
}

func call(in, out, limit int64) domain.SwapCall {
	return domain.SwapCall{
		Sender:    sender,
		Recipient: recipient,
		Query:     &domain.QueryOutput{AmountIn: big.NewInt(in), AmountOut: big.NewInt(out)},
		Limit:     big.NewInt(limit),
		Deadline:  deadline,
	}
}

func mustPool(t *testing.T, id string) [32]byte {
	t.Helper()
	p, err := ParsePoolID(id)
	require.NoError(t, err)
	return p
}

func TestEncodeSingleHopGivenIn(t *testing.T) {
	e, err := NewEncoder(common.Address{})
	require.NoError(t, err)
	assert.Equal(t, DefaultVaultAddress, e.Vault())

	q := singleHopQuote(domain.GivenIn)
	got, err := e.Encode(q, call(1000, 2947, 2917))
	require.NoError(t, err)
	assert.Equal(t, DefaultVaultAddress, got.To)

	want, err := e.vaultABI.Pack("swap", SingleSwap{
		PoolID:   mustPool(t, wethDaiPool),
		Kind:     0,
		AssetIn:  asset.WETH.Address(),
		AssetOut: asset.DAI.Address(),
		Amount:   big.NewInt(1000),
		UserData: []byte{},
	}, FundManagement{Sender: sender, Recipient: recipient}, big.NewInt(2917), big.NewInt(deadline.Unix()))
	require.NoError(t, err)
	assert.Equal(t, want, got.Data)
	assert.Equal(t, e.vaultABI.Methods["swap"].ID, got.Data[:4])
}

func TestEncodeSingleHopGivenOutUsesOutputAmount(t *testing.T) {
	e, err := NewEncoder(DefaultVaultAddress)
	require.NoError(t, err)

	got, err := e.Encode(singleHopQuote(domain.GivenOut), call(3000, 1000, 3030))
	require.NoError(t, err)

	args, err := e.vaultABI.Methods["swap"].Inputs.Unpack(got.Data[4:])
	require.NoError(t, err)
	single := reflect.ValueOf(args[0])
	assert.EqualValues(t, 1, single.FieldByName("Kind").Uint())
	assert.Equal(t, "1000", single.FieldByName("Amount").Interface().(*big.Int).String())
	assert.Equal(t, "3030", args[2].(*big.Int).String())
	assert.Equal(t, deadline.Unix(), args[3].(*big.Int).Int64())
}

func TestEncodeMultiHopGivenIn(t *testing.T) {
	e, err := NewEncoder(DefaultVaultAddress)
	require.NoError(t, err)

	got, err := e.Encode(twoHopQuote(domain.GivenIn), call(1000, 2900, 2871))
	require.NoError(t, err)

	method := e.vaultABI.Methods["batchSwap"]
	assert.Equal(t, method.ID, got.Data[:4])

	args, err := method.Inputs.Unpack(got.Data[4:])
	require.NoError(t, err)

	assert.EqualValues(t, 0, args[0].(uint8))
	assert.Equal(t, []common.Address{asset.WETH.Address(), asset.USDC.Address(), asset.DAI.Address()}, args[2])

	steps := reflect.ValueOf(args[1])
	require.Equal(t, 2, steps.Len())
	first, second := steps.Index(0), steps.Index(1)
	assert.Equal(t, mustPool(t, wethUsdcPool), first.FieldByName("PoolId").Interface())
	assert.Equal(t, "1000", first.FieldByName("Amount").Interface().(*big.Int).String())
	assert.Equal(t, "0", first.FieldByName("AssetInIndex").Interface().(*big.Int).String())
	assert.Equal(t, "0", second.FieldByName("Amount").Interface().(*big.Int).String())
	assert.Equal(t, "2", second.FieldByName("AssetOutIndex").Interface().(*big.Int).String())

	limits := args[4].([]*big.Int)
	assert.Equal(t, []string{"1000", "0", "-2871"}, bigStrings(limits))
}

func TestEncodeMultiHopGivenOutReversesSteps(t *testing.T) {
	e, err := NewEncoder(DefaultVaultAddress)
	require.NoError(t, err)

	got, err := e.Encode(twoHopQuote(domain.GivenOut), call(1000, 2900, 1010))
	require.NoError(t, err)

	args, err := e.vaultABI.Methods["batchSwap"].Inputs.Unpack(got.Data[4:])
	require.NoError(t, err)
	assert.EqualValues(t, 1, args[0].(uint8))

	steps := reflect.ValueOf(args[1])
	first := steps.Index(0)
	assert.Equal(t, mustPool(t, daiUsdcPool), first.FieldByName("PoolId").Interface())
	assert.Equal(t, "2900", first.FieldByName("Amount").Interface().(*big.Int).String())
	assert.Equal(t, "1", first.FieldByName("AssetInIndex").Interface().(*big.Int).String())
	assert.Equal(t, "2", first.FieldByName("AssetOutIndex").Interface().(*big.Int).String())

	assert.Equal(t, []string{"1010", "0", "-2900"}, bigStrings(args[4].([]*big.Int)))
}

func TestEncodeNativeInputUsesZeroAddress(t *testing.T) {
	e, err := NewEncoder(DefaultVaultAddress)
	require.NoError(t, err)

	eth := asset.MustNewToken(asset.ChainIDEthereum, asset.TokenRecord{Address: asset.NativeAddress.Hex(), Symbol: "ETH", Decimals: 18})
	q := singleHopQuote(domain.GivenIn)
	q.TokenIn = eth

	got, err := e.Encode(q, call(1000, 2947, 2917))
	require.NoError(t, err)

	args, err := e.vaultABI.Methods["swap"].Inputs.Unpack(got.Data[4:])
	require.NoError(t, err)
	assert.Equal(t, asset.NativeAddress, reflect.ValueOf(args[0]).FieldByName("AssetIn").Interface())
}

func TestEncodeRejectsBadInput(t *testing.T) {
	e, err := NewEncoder(DefaultVaultAddress)
	require.NoError(t, err)

	q := singleHopQuote(domain.GivenIn)
	q.SelectedPath.PoolIDs = []string{"0x1234"}
	_, err = e.Encode(q, call(1, 1, 1))
	assert.True(t, apperror.HasCode(err, apperror.CodeEncodingFailed))

	_, err = e.Encode(singleHopQuote(domain.GivenIn), domain.SwapCall{})
	assert.True(t, apperror.HasCode(err, apperror.CodeEncodingFailed))
}

func bigStrings(xs []*big.Int) []string {
	out := make([]string, len(xs))
	for i, x := range xs {
		out[i] = x.String()
	}
	return out
}
