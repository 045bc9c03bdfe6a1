// Package domain contains the core domain types for the chain context.
package domain

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Block is the slice of a header the connector reads: the head number for
// polling, the timestamp for latency and the base fee for EIP-1559 caps.
type Block struct {
	Number     uint64
	Hash       common.Hash
	ParentHash common.Hash
	Timestamp  time.Time
	GasLimit   uint64
	GasUsed    uint64
	BaseFee    *big.Int // nil before London
}

// Age is how long ago the block was produced, relative to now.
func (b *Block) Age(now time.Time) time.Duration {
	if b.Timestamp.IsZero() {
		return 0
	}
	return now.Sub(b.Timestamp)
}

// HeadState is the head feed's transport state.
type HeadState string

const (
	StateDisconnected HeadState = "disconnected"
	StateConnecting   HeadState = "connecting"
	StateConnected    HeadState = "connected"
	StateReconnecting HeadState = "reconnecting"
)

// HeadStatus is a point-in-time view of one network's head feed.
type HeadStatus struct {
	Network   string
	State     HeadState
	LastBlock uint64
	// Polling is set while blocks arrive over HTTP instead of the socket.
	Polling bool
}
