package asset

// Chain IDs
const (
	ChainIDEthereum uint64 = 1
	ChainIDSepolia  uint64 = 11155111
	ChainIDPolygon  uint64 = 137
	ChainIDArbitrum uint64 = 42161
	ChainIDOptimism uint64 = 10
	ChainIDBase     uint64 = 8453
	ChainIDGnosis   uint64 = 100
)

// Ethereum mainnet tokens
var (
	WETH = MustNewToken(ChainIDEthereum, TokenRecord{Address: "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", Symbol: "WETH", Name: "Wrapped Ether", Decimals: 18})
	DAI  = MustNewToken(ChainIDEthereum, TokenRecord{Address: "0x6B175474E89094C44Da98b954EedeAC495271d0F", Symbol: "DAI", Name: "Dai Stablecoin", Decimals: 18})
	USDC = MustNewToken(ChainIDEthereum, TokenRecord{Address: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", Symbol: "USDC", Name: "USD Coin", Decimals: 6})
	USDT = MustNewToken(ChainIDEthereum, TokenRecord{Address: "0xdAC17F958D2ee523a2206206994597C13D831ec7", Symbol: "USDT", Name: "Tether USD", Decimals: 6})
	WBTC = MustNewToken(ChainIDEthereum, TokenRecord{Address: "0x2260FAC5E5542a773Aa44fBCfeDf7C193bc2C599", Symbol: "WBTC", Name: "Wrapped BTC", Decimals: 8})
	BAL  = MustNewToken(ChainIDEthereum, TokenRecord{Address: "0xba100000625a3754423978a60c9317c58a424e3D", Symbol: "BAL", Name: "Balancer", Decimals: 18})
)

// Polygon tokens
var (
	WMATICPolygon = MustNewToken(ChainIDPolygon, TokenRecord{Address: "0x0d500B1d8E8eF31E21C99d1Db9A6444d3ADf1270", Symbol: "WMATIC", Name: "Wrapped Matic", Decimals: 18})
	USDCPolygon   = MustNewToken(ChainIDPolygon, TokenRecord{Address: "0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174", Symbol: "USDC", Name: "USD Coin (PoS)", Decimals: 6})
	WETHPolygon   = MustNewToken(ChainIDPolygon, TokenRecord{Address: "0x7ceB23fD6bC0adD59E62ac25578270cFf1b9f619", Symbol: "WETH", Name: "Wrapped Ether", Decimals: 18})
)

func records(tokens ...*Token) []TokenRecord {
	out := make([]TokenRecord, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, TokenRecord{
			Address:  t.address.Hex(),
			Symbol:   t.symbol,
			Name:     t.name,
			Decimals: t.decimals,
		})
	}
	return out
}

// WellKnown returns the built-in token list for chainID, or nil.
func WellKnown(chainID uint64) []TokenRecord {
	switch chainID {
	case ChainIDEthereum:
		return records(WETH, DAI, USDC, USDT, WBTC, BAL)
	case ChainIDPolygon:
		return records(WMATICPolygon, USDCPolygon, WETHPolygon)
	default:
		return nil
	}
}
