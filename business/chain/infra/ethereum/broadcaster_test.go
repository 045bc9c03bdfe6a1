package ethereum_test

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/fd1az/balancer-connector/business/chain/domain"
	chain "github.com/fd1az/balancer-connector/business/chain/infra/ethereum"
	"github.com/fd1az/balancer-connector/internal/apperror"
)

const testKey = "b71c71a67e1177ad4e901695e1b4b9ee17ae16c6668d313eac2f96dbcda3f291"

type fakeFees struct {
	suggests  int
	estimates int
	gas       uint64
}

func (f *fakeFees) SuggestFees(context.Context) (*big.Int, *big.Int, error) {
	f.suggests++
	return gwei(2), gwei(40), nil
}

func (f *fakeFees) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) {
	f.estimates++
	return f.gas, nil
}

var vault = common.HexToAddress("0xBA12222222228d8Ba445958a75a0704d566BF2C8")

func TestBroadcasterFillsFromNode(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend, rpc := connected(ctrl)
	fees := &fakeFees{gas: 180_000}

	b, err := chain.NewBroadcaster(backend, fees, 1, "0x"+testKey, nil)
	require.NoError(t, err)

	key, err := crypto.HexToECDSA(testKey)
	require.NoError(t, err)
	from := crypto.PubkeyToAddress(key.PublicKey)
	assert.Equal(t, from, b.Address())

	rpc.EXPECT().PendingNonceAt(gomock.Any(), from).Return(uint64(7), nil)
	rpc.EXPECT().SendTransaction(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, tx *types.Transaction) error {
		assert.Equal(t, uint8(types.DynamicFeeTxType), tx.Type())
		assert.Equal(t, uint64(7), tx.Nonce())
		assert.Equal(t, uint64(180_000), tx.Gas())
		assert.Equal(t, gwei(2), tx.GasTipCap())
		assert.Equal(t, gwei(40), tx.GasFeeCap())
		assert.Equal(t, vault, *tx.To())
		assert.Equal(t, "220", tx.Value().String())
		assert.Equal(t, int64(1), tx.ChainId().Int64())

		sender, err := types.Sender(types.LatestSignerForChainID(big.NewInt(1)), tx)
		require.NoError(t, err)
		assert.Equal(t, from, sender)
		return nil
	})

	res, err := b.Send(context.Background(),
		domain.TxRequest{To: vault, Data: []byte{0x52, 0xbb, 0xbe, 0x29}, Value: big.NewInt(220)},
		domain.TxOverrides{})
	require.NoError(t, err)
	assert.Equal(t, uint64(7), res.Nonce)
	assert.Equal(t, from, res.From)
	assert.NotEqual(t, common.Hash{}, res.Hash)
	assert.Equal(t, 1, fees.suggests)
	assert.Equal(t, 1, fees.estimates)
}

func TestBroadcasterHonoursOverrides(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend, rpc := connected(ctrl)
	fees := &fakeFees{}

	b, err := chain.NewBroadcaster(backend, fees, 1, testKey, nil)
	require.NoError(t, err)

	nonce, gas := uint64(42), uint64(300_000)
	rpc.EXPECT().SendTransaction(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, tx *types.Transaction) error {
		assert.Equal(t, nonce, tx.Nonce())
		assert.Equal(t, gas, tx.Gas())
		assert.Equal(t, gwei(3), tx.GasTipCap())
		assert.Equal(t, gwei(50), tx.GasFeeCap())
		assert.Equal(t, "0", tx.Value().String())
		return nil
	})

	_, err = b.Send(context.Background(), domain.TxRequest{To: vault}, domain.TxOverrides{
		Nonce:                &nonce,
		GasLimit:             &gas,
		MaxFeePerGas:         gwei(50),
		MaxPriorityFeePerGas: gwei(3),
	})
	require.NoError(t, err)
	assert.Zero(t, fees.suggests)
	assert.Zero(t, fees.estimates)
}

func TestBroadcasterRejected(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend, rpc := connected(ctrl)

	b, err := chain.NewBroadcaster(backend, &fakeFees{gas: 21_000}, 1, testKey, nil)
	require.NoError(t, err)

	rpc.EXPECT().PendingNonceAt(gomock.Any(), gomock.Any()).Return(uint64(0), nil)
	rpc.EXPECT().SendTransaction(gomock.Any(), gomock.Any()).Return(errors.New("insufficient funds for gas * price + value"))

	_, err = b.Send(context.Background(), domain.TxRequest{To: vault}, domain.TxOverrides{})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeBroadcastFailed))
	assert.Contains(t, err.Error(), "insufficient funds")
}

func TestNewBroadcasterKeyValidation(t *testing.T) {
	_, err := chain.NewBroadcaster(nil, nil, 1, "", nil)
	assert.True(t, apperror.HasCode(err, apperror.CodeWalletNotConfigured))

	_, err = chain.NewBroadcaster(nil, nil, 1, "0xnothex", nil)
	assert.True(t, apperror.HasCode(err, apperror.CodeConfigurationError))
}
