package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// TxRequest is the broadcastable part of a call.
type TxRequest struct {
	To    common.Address
	Data  []byte
	Value *big.Int
}

// TxOverrides are optional caller-supplied gas and nonce values. Nil
// fields are filled from the node.
type TxOverrides struct {
	GasLimit             *uint64
	Nonce                *uint64
	MaxFeePerGas         *big.Int
	MaxPriorityFeePerGas *big.Int
}

// TxResult describes a transaction accepted by the node.
type TxResult struct {
	Hash                 common.Hash
	From                 common.Address
	Nonce                uint64
	GasLimit             uint64
	MaxFeePerGas         *big.Int
	MaxPriorityFeePerGas *big.Int
}

// TxStatus follows the codes gateway clients poll on.
type TxStatus int

const (
	TxPending   TxStatus = -1
	TxFailed    TxStatus = 0
	TxConfirmed TxStatus = 1
)

func (s TxStatus) String() string {
	switch s {
	case TxConfirmed:
		return "confirmed"
	case TxFailed:
		return "failed"
	default:
		return "pending"
	}
}

// Receipt is the outcome of a mined or pending transaction.
type Receipt struct {
	Hash        common.Hash
	Status      TxStatus
	BlockNumber uint64
	GasUsed     uint64
}
