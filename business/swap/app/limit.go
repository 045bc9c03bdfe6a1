package app

import (
	"github.com/shopspring/decimal"

	"github.com/fd1az/balancer-connector/business/swap/domain"
	"github.com/fd1az/balancer-connector/internal/apperror"
)

// CheckLimitPrice refuses a buy priced above limit or a sell priced below
// it. Prices are human-adjusted quote per base. A zero limit disables the
// check.
func CheckLimitPrice(side domain.Side, price, limit decimal.Decimal) error {
	if limit.IsZero() {
		return nil
	}
	switch {
	case side == domain.SideBuy && price.GreaterThan(limit):
		return apperror.New(apperror.CodePriceLimitExceeded,
			apperror.WithMessage("buy price "+price.String()+" is above limit "+limit.String()))
	case side == domain.SideSell && price.LessThan(limit):
		return apperror.New(apperror.CodePriceLimitExceeded,
			apperror.WithMessage("sell price "+price.String()+" is below limit "+limit.String()))
	}
	return nil
}
