package asset_test

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/fd1az/balancer-connector/internal/asset"
)

func TestAmount_Basic(t *testing.T) {
	oneWETH := asset.NewAmount(asset.WETH, big.NewInt(1e18))

	if oneWETH.IsZero() {
		t.Error("expected non-zero amount")
	}

	d := oneWETH.ToDecimal()
	if !d.Equal(decimal.NewFromInt(1)) {
		t.Errorf("expected 1, got %s", d.String())
	}

	if oneWETH.String() != "1 WETH" {
		t.Errorf("expected '1 WETH', got '%s'", oneWETH.String())
	}
}

func TestParseString(t *testing.T) {
	amount, err := asset.ParseString(asset.WETH, "1.5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected, _ := new(big.Int).SetString("1500000000000000000", 10)
	if amount.Raw().Cmp(expected) != 0 {
		t.Errorf("expected %s, got %s", expected.String(), amount.Raw().String())
	}
}

func TestParseString_TooManyDecimals(t *testing.T) {
	// USDC has 6 decimals
	_, err := asset.ParseString(asset.USDC, "1.1234567")
	if err == nil {
		t.Error("expected error for too many decimals")
	}
}

func TestParseString_Invalid(t *testing.T) {
	for _, s := range []string{"", "abc", "-1"} {
		if _, err := asset.ParseString(asset.DAI, s); err == nil {
			t.Errorf("expected error for %q", s)
		}
	}
}
