package balancer

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/balancer-connector/business/swap/domain"
	"github.com/fd1az/balancer-connector/internal/apperror"
)

const sorGetSwapPathsQuery = `query SwapPaths($chain: GqlChain!, $tokenIn: String!, $tokenOut: String!, $swapType: GqlSorSwapType!, $swapAmount: AmountHumanReadable!, $useProtocolVersion: Int) {
  sorGetSwapPaths(chain: $chain, tokenIn: $tokenIn, tokenOut: $tokenOut, swapType: $swapType, swapAmount: $swapAmount, useProtocolVersion: $useProtocolVersion) {
    swapAmountRaw
    returnAmountRaw
    paths {
      protocolVersion
      inputAmountRaw
      outputAmountRaw
      pools
      tokens { address decimals }
    }
  }
}`

const poolGetPoolQuery = `query Pool($id: String!, $chain: GqlChain!) {
  poolGetPool(id: $id, chain: $chain) {
    id
    address
    type
    protocolVersion
    dynamicData { totalLiquidity swapFee }
    poolTokens { address symbol decimals balance }
  }
}`

const tokenGetTokenQuery = `query Token($address: String!, $chain: GqlChain!) {
  tokenGetToken(address: $address, chain: $chain) {
    address
    decimals
  }
}`

// vaultProtocolVersion is the Vault generation the encoder targets.
const vaultProtocolVersion = 2

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphqlError struct {
	Message string `json:"message"`
}

type graphqlResponse[T any] struct {
	Data   T              `json:"data"`
	Errors []graphqlError `json:"errors"`
}

func (r graphqlResponse[T]) err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, e.Message)
	}
	return apperror.New(apperror.CodeBalancerAPIError,
		apperror.WithMessage("graphql: "+strings.Join(msgs, "; ")))
}

type swapPathsData struct {
	SorGetSwapPaths *swapPathsResult `json:"sorGetSwapPaths"`
}

type swapPathsResult struct {
	SwapAmountRaw   string    `json:"swapAmountRaw"`
	ReturnAmountRaw string    `json:"returnAmountRaw"`
	Paths           []apiPath `json:"paths"`
}

type apiToken struct {
	Address  string `json:"address"`
	Decimals int    `json:"decimals"`
}

type apiPath struct {
	ProtocolVersion int        `json:"protocolVersion"`
	InputAmountRaw  string     `json:"inputAmountRaw"`
	OutputAmountRaw string     `json:"outputAmountRaw"`
	Pools           []string   `json:"pools"`
	Tokens          []apiToken `json:"tokens"`
}

func (p apiPath) toDomain() (domain.SwapPath, error) {
	in, ok1 := new(big.Int).SetString(p.InputAmountRaw, 10)
	out, ok2 := new(big.Int).SetString(p.OutputAmountRaw, 10)
	if !ok1 || !ok2 {
		return domain.SwapPath{}, apperror.New(apperror.CodeBalancerAPIError,
			apperror.WithMessage("path amounts are not integers"),
			apperror.WithContext(p.InputAmountRaw+"/"+p.OutputAmountRaw))
	}

	tokens := make([]common.Address, 0, len(p.Tokens))
	for _, t := range p.Tokens {
		if !common.IsHexAddress(t.Address) {
			return domain.SwapPath{}, apperror.New(apperror.CodeBalancerAPIError,
				apperror.WithMessage("path token is not an address"),
				apperror.WithContext(t.Address))
		}
		tokens = append(tokens, common.HexToAddress(t.Address))
	}

	path := domain.SwapPath{
		PoolIDs:         append([]string(nil), p.Pools...),
		Tokens:          tokens,
		InputAmountRaw:  in,
		OutputAmountRaw: out,
		ProtocolVersion: p.ProtocolVersion,
	}
	if err := path.Validate(); err != nil {
		return domain.SwapPath{}, apperror.New(apperror.CodeBalancerAPIError,
			apperror.WithMessage("malformed path"),
			apperror.WithCause(err))
	}
	return path, nil
}

type tokenData struct {
	TokenGetToken *apiToken `json:"tokenGetToken"`
}

type poolData struct {
	PoolGetPool *apiPool `json:"poolGetPool"`
}

type apiPool struct {
	ID              string `json:"id"`
	Address         string `json:"address"`
	Type            string `json:"type"`
	ProtocolVersion int    `json:"protocolVersion"`
	DynamicData     struct {
		TotalLiquidity string `json:"totalLiquidity"`
		SwapFee        string `json:"swapFee"`
	} `json:"dynamicData"`
	PoolTokens []struct {
		Address  string `json:"address"`
		Symbol   string `json:"symbol"`
		Decimals int    `json:"decimals"`
		Balance  string `json:"balance"`
	} `json:"poolTokens"`
}

// PoolToken is one token balance of a pool snapshot.
type PoolToken struct {
	Address  common.Address
	Symbol   string
	Decimals int
	Balance  string // human decimal as reported
}

// PoolSnapshot is the last refreshed state of a pool.
type PoolSnapshot struct {
	ID              string
	Address         common.Address
	Type            string
	ProtocolVersion int
	TotalLiquidity  string
	SwapFee         string
	Tokens          []PoolToken
}

func (p *apiPool) toSnapshot() *PoolSnapshot {
	s := &PoolSnapshot{
		ID:              p.ID,
		Address:         common.HexToAddress(p.Address),
		Type:            p.Type,
		ProtocolVersion: p.ProtocolVersion,
		TotalLiquidity:  p.DynamicData.TotalLiquidity,
		SwapFee:         p.DynamicData.SwapFee,
		Tokens:          make([]PoolToken, 0, len(p.PoolTokens)),
	}
	for _, t := range p.PoolTokens {
		s.Tokens = append(s.Tokens, PoolToken{
			Address:  common.HexToAddress(t.Address),
			Symbol:   t.Symbol,
			Decimals: t.Decimals,
			Balance:  t.Balance,
		})
	}
	return s
}

// gqlChain maps chain ids to the API's GqlChain enum.
var gqlChain = map[uint64]string{
	1:        "MAINNET",
	10:       "OPTIMISM",
	100:      "GNOSIS",
	137:      "POLYGON",
	8453:     "BASE",
	42161:    "ARBITRUM",
	43114:    "AVALANCHE",
	11155111: "SEPOLIA",
}

// ChainName returns the API chain name for chainID.
func ChainName(chainID uint64) (string, bool) {
	name, ok := gqlChain[chainID]
	return name, ok
}
