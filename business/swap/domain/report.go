package domain

import (
	"time"

	chainDomain "github.com/fd1az/balancer-connector/business/chain/domain"
)

// QuoteReport is one block's quote, or the reason there is none.
type QuoteReport struct {
	Block     *chainDomain.Block
	Pair      Pair
	Side      Side
	Quote     *Quote
	GasPrice  *chainDomain.GasPrice
	Err       error
	Latency   time.Duration
	Timestamp time.Time
}
