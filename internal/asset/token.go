// Package asset models on-chain tokens and amounts.
// Amounts stay big.Int internally; decimal.Decimal appears only at
// boundaries (parsing, display).
package asset

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/balancer-connector/internal/apperror"
)

// MaxDecimals bounds the decimals a token list entry may declare.
const MaxDecimals = 36

// NativeAddress is how the Vault denotes the chain's native coin.
var NativeAddress = common.Address{}

// TokenRecord is a raw token list entry, before validation.
type TokenRecord struct {
	Address  string `toml:"address" json:"address"`
	Symbol   string `toml:"symbol" json:"symbol"`
	Name     string `toml:"name" json:"name"`
	Decimals uint8  `toml:"decimals" json:"decimals"`
}

// Token is an immutable reference to a token on one chain.
type Token struct {
	chainID  uint64
	address  common.Address
	symbol   string
	name     string
	decimals uint8
}

// ParseAddress parses a hex address with or without the 0x prefix.
func ParseAddress(s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if !common.IsHexAddress(s) {
		return common.Address{}, apperror.New(apperror.CodeInvalidAddress, apperror.WithContext(s))
	}
	return common.HexToAddress(s), nil
}

// NewToken validates rec and builds a Token for chainID.
func NewToken(chainID uint64, rec TokenRecord) (*Token, error) {
	addr, err := ParseAddress(rec.Address)
	if err != nil {
		return nil, err
	}
	if rec.Symbol == "" {
		return nil, apperror.New(apperror.CodeValidationError,
			apperror.WithMessage("token symbol is empty"),
			apperror.WithContext(addr.Hex()))
	}
	if rec.Decimals > MaxDecimals {
		return nil, apperror.New(apperror.CodeValidationError,
			apperror.WithMessage(fmt.Sprintf("token declares %d decimals", rec.Decimals)),
			apperror.WithContext(rec.Symbol))
	}

	return &Token{
		chainID:  chainID,
		address:  addr,
		symbol:   rec.Symbol,
		name:     rec.Name,
		decimals: rec.Decimals,
	}, nil
}

// MustNewToken is NewToken for static lists; it panics on invalid input.
func MustNewToken(chainID uint64, rec TokenRecord) *Token {
	t, err := NewToken(chainID, rec)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Token) ChainID() uint64 {
	return t.chainID
}

// Address returns the token contract address.
func (t *Token) Address() common.Address {
	return t.address
}

// Symbol returns the ticker symbol (e.g., "WETH", "DAI").
func (t *Token) Symbol() string {
	return t.symbol
}

// Name returns the display name, falling back to the symbol.
func (t *Token) Name() string {
	if t.name == "" {
		return t.symbol
	}
	return t.name
}

func (t *Token) Decimals() uint8 {
	return t.decimals
}

// IsNative reports whether t is the chain's native coin.
func (t *Token) IsNative() bool {
	return t.address == NativeAddress
}

// Equals compares two tokens by chain and address.
func (t *Token) Equals(other *Token) bool {
	if t == nil || other == nil {
		return t == other
	}
	return t.chainID == other.chainID && t.address == other.address
}

func (t *Token) String() string {
	return t.symbol
}
