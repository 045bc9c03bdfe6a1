package domain

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	chainDomain "github.com/fd1az/balancer-connector/business/chain/domain"
)

// QueryOutput holds the simulated Vault deltas for a quote. Positive
// deltas are paid into the Vault, negative ones are paid out.
type QueryOutput struct {
	AssetDeltas []*big.Int
	AmountIn    *big.Int
	AmountOut   *big.Int
}

// SwapCall is everything the encoder needs besides the quote.
type SwapCall struct {
	Sender    common.Address
	Recipient common.Address
	Query     *QueryOutput
	Limit     *big.Int // min out for GivenIn, max in for GivenOut
	Deadline  time.Time
}

// EncodedCall is encoded calldata and the contract it targets.
type EncodedCall struct {
	To   common.Address
	Data []byte
}

// BuiltTransaction is a signable call derived from one quote. To, Data
// and Value are broadcast; the rest records the bound that went in.
type BuiltTransaction struct {
	To              common.Address
	Data            []byte
	Value           *big.Int
	Deadline        time.Time
	Limit           *big.Int
	SlippagePercent int
	Query           *QueryOutput
}

// Request returns the broadcastable part.
func (t *BuiltTransaction) Request() chainDomain.TxRequest {
	return chainDomain.TxRequest{To: t.To, Data: t.Data, Value: t.Value}
}
