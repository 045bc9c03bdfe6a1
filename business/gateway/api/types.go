package api

import (
	"time"

	"github.com/shopspring/decimal"
)

// tradeParams are the fields shared by price and trade requests.
type tradeParams struct {
	Chain           string `json:"chain"`
	Network         string `json:"network"`
	Base            string `json:"base"`
	Quote           string `json:"quote"`
	Amount          string `json:"amount"`
	Side            string `json:"side"`
	AllowedSlippage string `json:"allowedSlippage,omitempty"`
	PoolID          string `json:"poolId,omitempty"`
}

// PriceRequest is the body of POST /amm/price.
type PriceRequest struct {
	tradeParams
}

// PriceResponse is a priced but unbuilt quote.
type PriceResponse struct {
	Network        string          `json:"network"`
	Timestamp      int64           `json:"timestamp"`
	Latency        float64         `json:"latency"`
	Base           string          `json:"base"`
	Quote          string          `json:"quote"`
	Amount         decimal.Decimal `json:"amount"`
	RawAmount      string          `json:"rawAmount"`
	ExpectedAmount decimal.Decimal `json:"expectedAmount"`
	Price          decimal.Decimal `json:"price"`
	MaxSlippage    int             `json:"maxSlippage"`
	Paths          int             `json:"paths"`
	Hops           int             `json:"hops"`
	GasPrice       decimal.Decimal `json:"gasPrice"`
	GasLimit       uint64          `json:"gasLimit"`
	GasCost        decimal.Decimal `json:"gasCost"`
}

// TradeRequest is the body of POST /amm/trade.
type TradeRequest struct {
	tradeParams
	Address              string  `json:"address"`
	LimitPrice           string  `json:"limitPrice,omitempty"`
	Nonce                *uint64 `json:"nonce,omitempty"`
	GasLimit             *uint64 `json:"gasLimit,omitempty"`
	MaxFeePerGas         string  `json:"maxFeePerGas,omitempty"`
	MaxPriorityFeePerGas string  `json:"maxPriorityFeePerGas,omitempty"`
}

// TradeResponse describes a broadcast trade.
type TradeResponse struct {
	Network     string          `json:"network"`
	Timestamp   int64           `json:"timestamp"`
	Latency     float64         `json:"latency"`
	Base        string          `json:"base"`
	Quote       string          `json:"quote"`
	Amount      decimal.Decimal `json:"amount"`
	RawAmount   string          `json:"rawAmount"`
	ExpectedIn  decimal.Decimal `json:"expectedIn,omitempty"`
	ExpectedOut decimal.Decimal `json:"expectedOut,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Limit       string          `json:"limit"`
	Deadline    int64           `json:"deadline"`
	Nonce       uint64          `json:"nonce"`
	TxHash      string          `json:"txHash"`
	GasLimit    uint64          `json:"gasLimit"`
}

// PollRequest is the body of POST /chain/poll.
type PollRequest struct {
	Chain   string `json:"chain"`
	Network string `json:"network"`
	TxHash  string `json:"txHash"`
}

// PollResponse reports a transaction status: 1 confirmed, 0 failed,
// -1 pending or unknown.
type PollResponse struct {
	Network     string `json:"network"`
	Timestamp   int64  `json:"timestamp"`
	TxHash      string `json:"txHash"`
	TxStatus    int    `json:"txStatus"`
	BlockNumber uint64 `json:"txBlock"`
	GasUsed     uint64 `json:"gasUsed"`
}

// BalancesRequest is the body of POST /chain/balances.
type BalancesRequest struct {
	Chain        string   `json:"chain"`
	Network      string   `json:"network"`
	Address      string   `json:"address"`
	TokenSymbols []string `json:"tokenSymbols"`
}

// BalancesResponse maps symbols to human balances.
type BalancesResponse struct {
	Network   string                     `json:"network"`
	Timestamp int64                      `json:"timestamp"`
	Latency   float64                    `json:"latency"`
	Balances  map[string]decimal.Decimal `json:"balances"`
}

// TokenInfo is one entry of GET /chain/tokens.
type TokenInfo struct {
	ChainID  uint64 `json:"chainId"`
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals uint8  `json:"decimals"`
}

// TokensResponse is the connector token list.
type TokensResponse struct {
	Network string      `json:"network"`
	Tokens  []TokenInfo `json:"tokens"`
}

func latencySince(start time.Time) float64 {
	return time.Since(start).Seconds()
}
