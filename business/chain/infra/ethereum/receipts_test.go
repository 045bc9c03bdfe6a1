package ethereum_test

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/fd1az/balancer-connector/business/chain/domain"
	chain "github.com/fd1az/balancer-connector/business/chain/infra/ethereum"
	"github.com/fd1az/balancer-connector/internal/apperror"
)

var txHash = common.HexToHash("0x5c504ed432cb51138bcf09aa5e8a410dd4a1e204ef84bfed1be16dfba1b22060")

func TestReceiptStatus(t *testing.T) {
	tests := []struct {
		name    string
		receipt *types.Receipt
		err     error
		want    domain.TxStatus
		block   uint64
	}{
		{
			name:    "confirmed",
			receipt: &types.Receipt{Status: types.ReceiptStatusSuccessful, BlockNumber: big.NewInt(19_000_001), GasUsed: 151_000},
			want:    domain.TxConfirmed,
			block:   19_000_001,
		},
		{
			name:    "reverted",
			receipt: &types.Receipt{Status: types.ReceiptStatusFailed, BlockNumber: big.NewInt(19_000_002)},
			want:    domain.TxFailed,
			block:   19_000_002,
		},
		{
			name: "unknown is pending",
			err:  ethereum.NotFound,
			want: domain.TxPending,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			backend, rpc := connected(ctrl)
			rpc.EXPECT().TransactionReceipt(gomock.Any(), txHash).Return(tt.receipt, tt.err)

			r, err := chain.NewReceiptPoller(backend).Status(context.Background(), txHash)
			require.NoError(t, err)
			assert.Equal(t, tt.want, r.Status)
			assert.Equal(t, tt.block, r.BlockNumber)
			assert.Equal(t, txHash, r.Hash)
		})
	}
}

func TestWaitMined(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend, rpc := connected(ctrl)
	gomock.InOrder(
		rpc.EXPECT().TransactionReceipt(gomock.Any(), txHash).Return(nil, ethereum.NotFound).Times(2),
		rpc.EXPECT().TransactionReceipt(gomock.Any(), txHash).Return(&types.Receipt{
			Status:      types.ReceiptStatusSuccessful,
			BlockNumber: big.NewInt(7),
		}, nil),
	)

	r, err := chain.NewReceiptPoller(backend).WaitMined(context.Background(), txHash, 5*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, domain.TxConfirmed, r.Status)
	assert.Equal(t, uint64(7), r.BlockNumber)
}

func TestWaitMinedTimesOut(t *testing.T) {
	ctrl := gomock.NewController(t)
	backend, rpc := connected(ctrl)
	rpc.EXPECT().TransactionReceipt(gomock.Any(), txHash).Return(nil, ethereum.NotFound).MinTimes(1)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := chain.NewReceiptPoller(backend).WaitMined(ctx, txHash, 5*time.Millisecond)
	assert.True(t, apperror.HasCode(err, apperror.CodeTxNotFound))
}
