// Package domain contains the core domain types for the swap context.
package domain

import (
	"strings"

	"github.com/fd1az/balancer-connector/internal/apperror"
)

// Direction says which side of a swap is fixed. The numeric values match
// the Vault's SwapKind enum.
type Direction uint8

const (
	// GivenIn fixes the input amount (a sell of the base token).
	GivenIn Direction = 0
	// GivenOut fixes the output amount (a buy of the base token).
	GivenOut Direction = 1
)

func (d Direction) String() string {
	if d == GivenOut {
		return "GivenOut"
	}
	return "GivenIn"
}

// SwapType is the routing API name for the direction.
func (d Direction) SwapType() string {
	if d == GivenOut {
		return "EXACT_OUT"
	}
	return "EXACT_IN"
}

// Side is the caller's trade side on the base token.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// ParseSide accepts BUY or SELL in any case.
func ParseSide(s string) (Side, error) {
	switch Side(strings.ToUpper(strings.TrimSpace(s))) {
	case SideBuy:
		return SideBuy, nil
	case SideSell:
		return SideSell, nil
	}
	return "", apperror.New(apperror.CodeValidationError,
		apperror.WithMessage("side must be BUY or SELL"),
		apperror.WithContext(s))
}

// Direction maps a side to the swap direction: a sell fixes the base
// amount going in, a buy fixes the base amount coming out.
func (s Side) Direction() Direction {
	if s == SideBuy {
		return GivenOut
	}
	return GivenIn
}

// Pair is a base/quote symbol pair such as WETH-DAI.
type Pair struct {
	Base  string
	Quote string
}

// ParsePair splits "BASE-QUOTE".
func ParsePair(s string) (Pair, error) {
	base, quote, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok || base == "" || quote == "" {
		return Pair{}, apperror.New(apperror.CodeValidationError,
			apperror.WithMessage("pair must look like BASE-QUOTE"),
			apperror.WithContext(s))
	}
	return Pair{Base: strings.ToUpper(base), Quote: strings.ToUpper(quote)}, nil
}

func (p Pair) String() string {
	return p.Base + "-" + p.Quote
}
