package domain

import (
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

var weiPerGwei = decimal.New(1, 9)
var weiPerEther = decimal.New(1, 18)

// GasPrice represents gas price information.
type GasPrice struct {
	Wei       *big.Int
	TipCap    *big.Int // nil when the node has no EIP-1559 suggestion
	Timestamp time.Time
}

// NewGasPrice creates a GasPrice from wei.
func NewGasPrice(wei *big.Int) *GasPrice {
	return &GasPrice{
		Wei:       new(big.Int).Set(wei),
		Timestamp: time.Now(),
	}
}

// Gwei returns the price in gwei.
func (g *GasPrice) Gwei() decimal.Decimal {
	return decimal.NewFromBigInt(g.Wei, 0).Div(weiPerGwei)
}

// GasCost is the native-token cost of a transaction.
type GasCost struct {
	GasLimit uint64
	GasPrice *GasPrice
	TotalWei *big.Int
}

// NewGasCost computes gasLimit * price.
func NewGasCost(gasLimit uint64, price *GasPrice) *GasCost {
	total := new(big.Int).Mul(price.Wei, new(big.Int).SetUint64(gasLimit))
	return &GasCost{
		GasLimit: gasLimit,
		GasPrice: price,
		TotalWei: total,
	}
}

// Native returns the cost in whole native units (ETH, MATIC, ...).
func (c *GasCost) Native() decimal.Decimal {
	return decimal.NewFromBigInt(c.TotalWei, 0).Div(weiPerEther)
}
