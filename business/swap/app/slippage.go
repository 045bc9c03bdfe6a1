package app

import (
	"math/big"
	"regexp"
	"strings"

	"github.com/fd1az/balancer-connector/internal/apperror"
)

var fractionPattern = regexp.MustCompile(`^\s*(\d+)\s*/\s*(\d+)\s*$`)

// ResolveSlippage returns the slippage bound in whole percent. A non-empty
// explicit override wins; otherwise configured is used. The configured
// form may end in "%", which does not rescale it: "1/100%" is 1 percent.
// Values round half up.
func ResolveSlippage(explicit, configured string) (int, error) {
	if explicit != "" {
		pct, ok := fractionPercent(explicit)
		if !ok {
			return 0, apperror.New(apperror.CodeMalformedSlippageConfig,
				apperror.WithMessage("invalid slippage override, expected <num>/<den>"),
				apperror.WithContext(explicit))
		}
		return pct, nil
	}

	pct, ok := fractionPercent(strings.TrimSuffix(strings.TrimSpace(configured), "%"))
	if !ok {
		return 0, apperror.New(apperror.CodeMalformedSlippageConfig,
			apperror.WithMessage("invalid configured slippage, expected <num>/<den>%"),
			apperror.WithContext(configured))
	}
	return pct, nil
}

// fractionPercent computes round-half-up(100*num/den) exactly.
func fractionPercent(s string) (int, bool) {
	m := fractionPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	num, ok1 := new(big.Int).SetString(m[1], 10)
	den, ok2 := new(big.Int).SetString(m[2], 10)
	if !ok1 || !ok2 || den.Sign() == 0 {
		return 0, false
	}

	// (200*num + den) / (2*den)
	n := new(big.Int).Mul(num, big.NewInt(200))
	n.Add(n, den)
	n.Quo(n, new(big.Int).Mul(den, big.NewInt(2)))
	if n.Cmp(big.NewInt(100)) > 0 {
		return 0, false
	}
	return int(n.Int64()), true
}

var hundred = big.NewInt(100)

// MinAmountOut floors out*(100-s)/100.
func MinAmountOut(out *big.Int, slippage int) *big.Int {
	r := new(big.Int).Mul(out, big.NewInt(int64(100-slippage)))
	return r.Quo(r, hundred)
}

// MaxAmountIn ceils in*(100+s)/100.
func MaxAmountIn(in *big.Int, slippage int) *big.Int {
	r := new(big.Int).Mul(in, big.NewInt(int64(100+slippage)))
	r.Add(r, big.NewInt(99))
	return r.Quo(r, hundred)
}
