package balancer

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/fd1az/balancer-connector/business/swap/domain"
	"github.com/fd1az/balancer-connector/internal/apperror"
	"github.com/fd1az/balancer-connector/internal/asset"
)

// DefaultVaultAddress is the Balancer V2 Vault, deployed at the same
// address on every supported chain.
var DefaultVaultAddress = common.HexToAddress("0xBA12222222228d8Ba445958a75a0704d566BF2C8")

const swapTuple = `{
	"components": [
		{"internalType": "bytes32", "name": "poolId", "type": "bytes32"},
		{"internalType": "enum IVault.SwapKind", "name": "kind", "type": "uint8"},
		{"internalType": "contract IAsset", "name": "assetIn", "type": "address"},
		{"internalType": "contract IAsset", "name": "assetOut", "type": "address"},
		{"internalType": "uint256", "name": "amount", "type": "uint256"},
		{"internalType": "bytes", "name": "userData", "type": "bytes"}
	],
	"internalType": "struct IVault.SingleSwap",
	"name": "singleSwap",
	"type": "tuple"
}`

const stepsTuple = `{
	"components": [
		{"internalType": "bytes32", "name": "poolId", "type": "bytes32"},
		{"internalType": "uint256", "name": "assetInIndex", "type": "uint256"},
		{"internalType": "uint256", "name": "assetOutIndex", "type": "uint256"},
		{"internalType": "uint256", "name": "amount", "type": "uint256"},
		{"internalType": "bytes", "name": "userData", "type": "bytes"}
	],
	"internalType": "struct IVault.BatchSwapStep[]",
	"name": "swaps",
	"type": "tuple[]"
}`

const fundsTuple = `{
	"components": [
		{"internalType": "address", "name": "sender", "type": "address"},
		{"internalType": "bool", "name": "fromInternalBalance", "type": "bool"},
		{"internalType": "address payable", "name": "recipient", "type": "address"},
		{"internalType": "bool", "name": "toInternalBalance", "type": "bool"}
	],
	"internalType": "struct IVault.FundManagement",
	"name": "funds",
	"type": "tuple"
}`

// VaultABI covers swap, batchSwap and queryBatchSwap.
const VaultABI = `[
	{
		"inputs": [
			` + swapTuple + `,
			` + fundsTuple + `,
			{"internalType": "uint256", "name": "limit", "type": "uint256"},
			{"internalType": "uint256", "name": "deadline", "type": "uint256"}
		],
		"name": "swap",
		"outputs": [{"internalType": "uint256", "name": "amountCalculated", "type": "uint256"}],
		"stateMutability": "payable",
		"type": "function"
	},
	{
		"inputs": [
			{"internalType": "enum IVault.SwapKind", "name": "kind", "type": "uint8"},
			` + stepsTuple + `,
			{"internalType": "contract IAsset[]", "name": "assets", "type": "address[]"},
			` + fundsTuple + `,
			{"internalType": "int256[]", "name": "limits", "type": "int256[]"},
			{"internalType": "uint256", "name": "deadline", "type": "uint256"}
		],
		"name": "batchSwap",
		"outputs": [{"internalType": "int256[]", "name": "assetDeltas", "type": "int256[]"}],
		"stateMutability": "payable",
		"type": "function"
	},
	{
		"inputs": [
			{"internalType": "enum IVault.SwapKind", "name": "kind", "type": "uint8"},
			` + stepsTuple + `,
			{"internalType": "contract IAsset[]", "name": "assets", "type": "address[]"},
			` + fundsTuple + `
		],
		"name": "queryBatchSwap",
		"outputs": [{"internalType": "int256[]", "name": "", "type": "int256[]"}],
		"stateMutability": "nonpayable",
		"type": "function"
	}
]`

// SingleSwap mirrors IVault.SingleSwap.
type SingleSwap struct {
	PoolID   [32]byte       `abi:"poolId"`
	Kind     uint8          `abi:"kind"`
	AssetIn  common.Address `abi:"assetIn"`
	AssetOut common.Address `abi:"assetOut"`
	Amount   *big.Int       `abi:"amount"`
	UserData []byte         `abi:"userData"`
}

// BatchSwapStep mirrors IVault.BatchSwapStep.
type BatchSwapStep struct {
	PoolID        [32]byte `abi:"poolId"`
	AssetInIndex  *big.Int `abi:"assetInIndex"`
	AssetOutIndex *big.Int `abi:"assetOutIndex"`
	Amount        *big.Int `abi:"amount"`
	UserData      []byte   `abi:"userData"`
}

// FundManagement mirrors IVault.FundManagement.
type FundManagement struct {
	Sender              common.Address `abi:"sender"`
	FromInternalBalance bool           `abi:"fromInternalBalance"`
	Recipient           common.Address `abi:"recipient"`
	ToInternalBalance   bool           `abi:"toInternalBalance"`
}

func parseVaultABI() (abi.ABI, error) {
	return abi.JSON(strings.NewReader(VaultABI))
}

// ParsePoolID decodes a 32-byte V2 pool id.
func ParsePoolID(id string) ([32]byte, error) {
	var out [32]byte
	b, err := hexutil.Decode(id)
	if err != nil || len(b) != 32 {
		return out, apperror.New(apperror.CodeEncodingFailed,
			apperror.WithMessage("pool id must be 32 bytes of hex"),
			apperror.WithContext(id))
	}
	copy(out[:], b)
	return out, nil
}

// batch is a path laid out in the Vault's batch form.
type batch struct {
	steps    []BatchSwapStep
	assets   []common.Address
	inIndex  int
	outIndex int
}

// layoutBatch turns the selected path into batch steps. GivenIn steps run
// in hop order, GivenOut steps run from the last hop back. Only the first
// step carries amount; the Vault chains the rest.
func layoutBatch(q *domain.Quote, amount *big.Int) (*batch, error) {
	path := q.SelectedPath
	if err := path.Validate(); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeEncodingFailed, "selected path")
	}

	tokens := make([]common.Address, len(path.Tokens))
	copy(tokens, path.Tokens)
	if q.TokenIn.IsNative() {
		tokens[0] = asset.NativeAddress
	}
	if q.TokenOut.IsNative() {
		tokens[len(tokens)-1] = asset.NativeAddress
	}

	b := &batch{}
	index := make(map[common.Address]int, len(tokens))
	indexOf := func(a common.Address) int {
		if i, ok := index[a]; ok {
			return i
		}
		index[a] = len(b.assets)
		b.assets = append(b.assets, a)
		return index[a]
	}
	for _, t := range tokens {
		indexOf(t)
	}
	b.inIndex = index[tokens[0]]
	b.outIndex = index[tokens[len(tokens)-1]]

	hops := path.Hops()
	b.steps = make([]BatchSwapStep, 0, hops)
	for i := 0; i < hops; i++ {
		hop := i
		if q.Direction == domain.GivenOut {
			hop = hops - 1 - i
		}
		poolID, err := ParsePoolID(path.PoolIDs[hop])
		if err != nil {
			return nil, err
		}
		stepAmount := new(big.Int)
		if i == 0 {
			stepAmount.Set(amount)
		}
		b.steps = append(b.steps, BatchSwapStep{
			PoolID:        poolID,
			AssetInIndex:  big.NewInt(int64(index[tokens[hop]])),
			AssetOutIndex: big.NewInt(int64(index[tokens[hop+1]])),
			Amount:        stepAmount,
			UserData:      []byte{},
		})
	}
	return b, nil
}

func funds(sender, recipient common.Address) FundManagement {
	return FundManagement{Sender: sender, Recipient: recipient}
}
