package asset

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// Common errors
var (
	ErrNilToken        = errors.New("asset: nil token")
	ErrNegativeAmount  = errors.New("asset: negative amount")
	ErrTooManyDecimals = errors.New("asset: too many decimal places for token")
)

// Amount is an immutable quantity of a token in its smallest unit.
type Amount struct {
	raw   *big.Int
	token *Token
}

// NewAmount creates an Amount from a raw value. It panics on nil or
// negative input.
func NewAmount(token *Token, raw *big.Int) Amount {
	if token == nil {
		panic(ErrNilToken)
	}
	if raw == nil || raw.Sign() < 0 {
		panic(ErrNegativeAmount)
	}

	return Amount{
		raw:   new(big.Int).Set(raw),
		token: token,
	}
}

// Raw returns a copy of the raw value.
func (a Amount) Raw() *big.Int {
	if a.raw == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(a.raw)
}

// Token returns the token this amount is denominated in.
func (a Amount) Token() *Token {
	return a.token
}

// IsZero returns true if the amount is zero.
func (a Amount) IsZero() bool {
	return a.raw == nil || a.raw.Sign() == 0
}

// ToDecimal converts to a human-scaled decimal. Display and API boundaries only.
func (a Amount) ToDecimal() decimal.Decimal {
	if a.raw == nil || a.token == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(a.raw, -int32(a.token.Decimals()))
}

// ParseDecimal scales a human amount into raw units. Fractions finer than
// the token's decimals are rejected rather than rounded.
func ParseDecimal(token *Token, d decimal.Decimal) (Amount, error) {
	if token == nil {
		return Amount{}, ErrNilToken
	}
	if d.IsNegative() {
		return Amount{}, ErrNegativeAmount
	}

	scaled := d.Shift(int32(token.Decimals()))
	if !scaled.Equal(scaled.Truncate(0)) {
		return Amount{}, ErrTooManyDecimals
	}

	return NewAmount(token, scaled.BigInt()), nil
}

// ParseString parses a human decimal string such as "1.5".
func ParseString(token *Token, s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("asset: invalid decimal string: %w", err)
	}
	return ParseDecimal(token, d)
}

// String returns e.g. "1.5 WETH".
func (a Amount) String() string {
	if a.token == nil {
		return "0 ???"
	}
	return fmt.Sprintf("%s %s", a.ToDecimal().String(), a.token.Symbol())
}

// StringFixed returns a string with fixed decimal places.
func (a Amount) StringFixed(places int32) string {
	if a.token == nil {
		return "0 ???"
	}
	return fmt.Sprintf("%s %s", a.ToDecimal().StringFixed(places), a.token.Symbol())
}
