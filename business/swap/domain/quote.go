package domain

import (
	"math/big"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/balancer-connector/internal/asset"
)

// DeadlinePlaceholder marks a quote deadline that is not bound yet. The
// real deadline is chosen when the transaction is built.
var DeadlinePlaceholder = time.Time{}

// Quote is the priced result of one estimate call. It is never mutated
// after construction: BuildQuote gives it its own copies of the path
// amounts, and readers must treat ExecutionPrice and the path integers as
// read-only.
type Quote struct {
	SelectedPath       SwapPath
	AllPaths           []SwapPath
	Direction          Direction
	TokenIn            *asset.Token
	TokenOut           *asset.Token
	ExecutionPrice     *big.Rat // quote raw units per base raw unit
	MaxSlippagePercent int
	Deadline           time.Time
}

// Base returns the token the price is denominated per.
func (q *Quote) Base() *asset.Token {
	if q.Direction == GivenOut {
		return q.TokenOut
	}
	return q.TokenIn
}

// QuoteToken returns the token the price is denominated in.
func (q *Quote) QuoteToken() *asset.Token {
	if q.Direction == GivenOut {
		return q.TokenIn
	}
	return q.TokenOut
}

// AmountIn is the expected raw input of the selected path.
func (q *Quote) AmountIn() asset.Amount {
	return asset.NewAmount(q.TokenIn, q.SelectedPath.InputAmountRaw)
}

// AmountOut is the expected raw output of the selected path.
func (q *Quote) AmountOut() asset.Amount {
	return asset.NewAmount(q.TokenOut, q.SelectedPath.OutputAmountRaw)
}

// BaseAmount is the fixed base-token amount the caller asked about.
func (q *Quote) BaseAmount() asset.Amount {
	if q.Direction == GivenOut {
		return q.AmountOut()
	}
	return q.AmountIn()
}

// QuoteAmount is the quote-token amount the route pays or receives.
func (q *Quote) QuoteAmount() asset.Amount {
	if q.Direction == GivenOut {
		return q.AmountIn()
	}
	return q.AmountOut()
}

// Price wraps ExecutionPrice with its tokens.
func (q *Quote) Price() asset.Price {
	return asset.NewPrice(q.Base(), q.QuoteToken(), q.ExecutionPrice)
}

// AdjustedPrice is the human price: quote tokens per whole base token.
func (q *Quote) AdjustedPrice() decimal.Decimal {
	return q.Price().Adjusted()
}
