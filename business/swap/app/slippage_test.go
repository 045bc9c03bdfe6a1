package app

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fd1az/balancer-connector/internal/apperror"
)

func TestResolveSlippage(t *testing.T) {
	tests := []struct {
		name       string
		explicit   string
		configured string
		want       int
	}{
		{"override tenth", "1/10", "", 10},
		{"override rounds down", "3/1000", "", 0},
		{"override rounds half up", "1/200", "", 1},
		{"override with spaces", " 5 / 100 ", "", 5},
		{"override wins over config", "2/100", "9/100%", 2},
		{"configured with percent", "", "1/100%", 1},
		{"configured without percent", "", "1/100", 1},
		{"configured full", "", "1/1", 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveSlippage(tt.explicit, tt.configured)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveSlippageRejects(t *testing.T) {
	tests := []struct {
		name       string
		explicit   string
		configured string
		msg        string
	}{
		{"malformed override", "abc", "1/100%", "override"},
		{"override with percent", "1/100%", "", "override"},
		{"zero denominator", "1/0", "", "override"},
		{"above hundred", "3/2", "", "override"},
		{"malformed config", "", "one percent", "configured"},
		{"empty config", "", "", "configured"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveSlippage(tt.explicit, tt.configured)
			require.Error(t, err)
			assert.True(t, apperror.HasCode(err, apperror.CodeMalformedSlippageConfig))
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestSlippageLimits(t *testing.T) {
	out := big.NewInt(2947070611811859012)
	assert.Equal(t, "2917599905693740421", MinAmountOut(out, 1).String())
	assert.Equal(t, out.String(), MinAmountOut(out, 0).String())

	assert.Equal(t, "103", MaxAmountIn(big.NewInt(101), 1).String())
	assert.Equal(t, "101", MaxAmountIn(big.NewInt(100), 1).String())
	assert.Equal(t, "100", MaxAmountIn(big.NewInt(100), 0).String())
}
