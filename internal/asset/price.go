package asset

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// DisplayPrecision is the number of fractional digits kept when a price
// leaves the exact domain.
const DisplayPrecision = 18

// Price is an exact exchange rate in raw units: quote units per base unit.
type Price struct {
	rate  *big.Rat
	base  *Token
	quote *Token
}

// NewPrice wraps an exact raw-unit rate. The rate is copied.
func NewPrice(base, quote *Token, rate *big.Rat) Price {
	if base == nil || quote == nil {
		panic(ErrNilToken)
	}
	if rate == nil || rate.Sign() < 0 {
		panic(ErrNegativeAmount)
	}
	return Price{rate: new(big.Rat).Set(rate), base: base, quote: quote}
}

// Rat returns a copy of the raw-unit rate.
func (p Price) Rat() *big.Rat {
	if p.rate == nil {
		return new(big.Rat)
	}
	return new(big.Rat).Set(p.rate)
}

func (p Price) Base() *Token {
	return p.base
}

func (p Price) Quote() *Token {
	return p.quote
}

// Adjusted returns the human price, scaled by the decimals of both tokens:
// rate * 10^(baseDecimals - quoteDecimals).
func (p Price) Adjusted() decimal.Decimal {
	if p.rate == nil || p.base == nil || p.quote == nil {
		return decimal.Zero
	}
	shift := int64(p.base.Decimals()) - int64(p.quote.Decimals())
	r := new(big.Rat).Set(p.rate)
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(abs(shift)), nil)
	if shift >= 0 {
		r.Mul(r, new(big.Rat).SetInt(scale))
	} else {
		r.Quo(r, new(big.Rat).SetInt(scale))
	}
	return ratToDecimal(r, DisplayPrecision)
}

// Invert returns base units per quote unit. A zero price inverts to zero.
func (p Price) Invert() Price {
	inv := new(big.Rat)
	if p.rate != nil && p.rate.Sign() != 0 {
		inv.Inv(p.rate)
	}
	return Price{rate: inv, base: p.quote, quote: p.base}
}

// IsZero returns true if the price is zero.
func (p Price) IsZero() bool {
	return p.rate == nil || p.rate.Sign() == 0
}

// Pair returns the trading pair symbol (e.g., "WETH/DAI").
func (p Price) Pair() string {
	if p.base == nil || p.quote == nil {
		return "???/???"
	}
	return fmt.Sprintf("%s/%s", p.base.Symbol(), p.quote.Symbol())
}

func (p Price) String() string {
	return fmt.Sprintf("%s %s", p.Adjusted().String(), p.Pair())
}

// ratToDecimal truncates r to places fractional digits.
func ratToDecimal(r *big.Rat, places int32) decimal.Decimal {
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(places)), nil)
	num := new(big.Int).Mul(r.Num(), scale)
	num.Quo(num, r.Denom())
	return decimal.NewFromBigInt(num, -places)
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
