package balancer

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fd1az/balancer-connector/business/swap/domain"
	"github.com/fd1az/balancer-connector/internal/apperror"
	"github.com/fd1az/balancer-connector/internal/asset"
)

const (
	wethDaiPool  = "0x0b09dea16768f0799065c475be02919503cb2a3500020000000000000000001a"
	wethUsdcPool = "0x96646936b91d6b9d7d0c47c496afbf3d6ec7b6f8000200000000000000000019"
)

const pathsBody = `{"data":{"sorGetSwapPaths":{"swapAmountRaw":"1000000000000000000","returnAmountRaw":"2947070611811859012","paths":[
 {"protocolVersion":2,"inputAmountRaw":"1000000000000000000","outputAmountRaw":"2947070611811859012","pools":["` + wethDaiPool + `"],
  "tokens":[{"address":"0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2","decimals":18},{"address":"0x6b175474e89094c44da98b954eedeac495271d0f","decimals":18}]},
 {"protocolVersion":2,"inputAmountRaw":"1000000000000000000","outputAmountRaw":"2946000000000000000","pools":["` + wethUsdcPool + `","0x06df3b2bbb68adc8b0e302443692037ed9f91b42000000000000000000000063"],
  "tokens":[{"address":"0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2","decimals":18},{"address":"0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48","decimals":6},{"address":"0x6b175474e89094c44da98b954eedeac495271d0f","decimals":18}]}
]}}}`

const poolBody = `{"data":{"poolGetPool":{"id":"` + wethDaiPool + `","address":"0x0b09dea16768f0799065c475be02919503cb2a35","type":"WEIGHTED","protocolVersion":2,
 "dynamicData":{"totalLiquidity":"1520000.12","swapFee":"0.003"},
 "poolTokens":[{"address":"0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2","symbol":"WETH","decimals":18,"balance":"250.5"},
               {"address":"0x6b175474e89094c44da98b954eedeac495271d0f","symbol":"DAI","decimals":18,"balance":"740000"}]}}}`

type fakeAPI struct {
	t        *testing.T
	mu       sync.Mutex
	requests []graphqlRequest
	paths    string
	pool     string
	token    string
	status   int
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req graphqlRequest
	require.NoError(f.t, json.NewDecoder(r.Body).Decode(&req))
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.status != 0 {
		w.WriteHeader(f.status)
		_, _ = w.Write([]byte(`upstream unavailable`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if strings.Contains(req.Query, "tokenGetToken") {
		_, _ = w.Write([]byte(f.token))
		return
	}
	if strings.Contains(req.Query, "poolGetPool") {
		_, _ = w.Write([]byte(f.pool))
		return
	}
	_, _ = w.Write([]byte(f.paths))
}

func (f *fakeAPI) seen() []graphqlRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]graphqlRequest(nil), f.requests...)
}

func newTestRouter(t *testing.T, api http.Handler) *Router {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	r, err := NewRouter(nil, RouterConfig{APIURL: srv.URL, RequestsPerSecond: 100}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestFindPathsKeepsRemoteOrder(t *testing.T) {
	api := &fakeAPI{t: t, paths: pathsBody}
	r := newTestRouter(t, api)

	amount, _ := new(big.Int).SetString("1000000000000000000", 10)
	paths, err := r.FindPaths(context.Background(), asset.ChainIDEthereum,
		asset.WETH.Address(), asset.DAI.Address(), domain.GivenIn, amount, "")
	require.NoError(t, err)
	require.Len(t, paths, 2)

	assert.Equal(t, "2947070611811859012", paths[0].OutputAmountRaw.String())
	assert.Equal(t, []string{wethDaiPool}, paths[0].PoolIDs)
	assert.Equal(t, asset.DAI.Address(), paths[0].Tokens[1])
	assert.Equal(t, 2, paths[1].Hops())

	reqs := api.seen()
	require.Len(t, reqs, 1)
	vars := reqs[0].Variables
	assert.Equal(t, "MAINNET", vars["chain"])
	assert.Equal(t, "EXACT_IN", vars["swapType"])
	assert.Equal(t, "1", vars["swapAmount"], "amount is sent in whole WETH")
	assert.Equal(t, strings.ToLower(asset.WETH.Address().Hex()), vars["tokenIn"])
	assert.EqualValues(t, 2, vars["useProtocolVersion"])
}

func TestFindPathsExactOut(t *testing.T) {
	api := &fakeAPI{t: t, paths: pathsBody}
	r := newTestRouter(t, api)

	_, err := r.FindPaths(context.Background(), asset.ChainIDPolygon,
		asset.USDCPolygon.Address(), asset.WETHPolygon.Address(), domain.GivenOut, big.NewInt(5), "")
	require.NoError(t, err)
	vars := api.seen()[0].Variables
	assert.Equal(t, "EXACT_OUT", vars["swapType"])
	assert.Equal(t, "POLYGON", vars["chain"])
	assert.Equal(t, "0.000000000000000005", vars["swapAmount"], "exact out is sized in the output token")
}

func TestFindPathsScalesByInputDecimals(t *testing.T) {
	api := &fakeAPI{t: t, paths: pathsBody}
	r := newTestRouter(t, api)

	_, err := r.FindPaths(context.Background(), asset.ChainIDEthereum,
		asset.USDC.Address(), asset.WETH.Address(), domain.GivenIn, big.NewInt(2_500_500_000), "")
	require.NoError(t, err)
	assert.Equal(t, "2500.5", api.seen()[0].Variables["swapAmount"])
}

func TestFindPathsLooksUpUnknownDecimalsOnce(t *testing.T) {
	gho := common.HexToAddress("0x40d16fc0246ad3160ccc09b8d0d3a2cd28ae6c2f")
	api := &fakeAPI{t: t, paths: pathsBody,
		token: `{"data":{"tokenGetToken":{"address":"0x40d16fc0246ad3160ccc09b8d0d3a2cd28ae6c2f","decimals":6}}}`}
	r := newTestRouter(t, api)

	for i := 0; i < 2; i++ {
		_, err := r.FindPaths(context.Background(), asset.ChainIDEthereum,
			gho, asset.DAI.Address(), domain.GivenIn, big.NewInt(1_000_000), "")
		require.NoError(t, err)
	}

	reqs := api.seen()
	require.Len(t, reqs, 3, "one token lookup, then two path queries")
	assert.Contains(t, reqs[0].Query, "tokenGetToken")
	assert.Equal(t, "MAINNET", reqs[0].Variables["chain"])
	assert.Equal(t, "1", reqs[1].Variables["swapAmount"])
	assert.Equal(t, "1", reqs[2].Variables["swapAmount"])
}

func TestFindPathsUnknownTokenDecimals(t *testing.T) {
	api := &fakeAPI{t: t, paths: pathsBody, token: `{"data":{"tokenGetToken":null}}`}
	r := newTestRouter(t, api)

	_, err := r.FindPaths(context.Background(), asset.ChainIDEthereum,
		common.HexToAddress("0x02"), asset.DAI.Address(), domain.GivenIn, big.NewInt(1), "")
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeTokenNotFound))
	assert.Len(t, api.seen(), 1, "no path query without a size")
}

func TestRememberDecimalsSkipsLookup(t *testing.T) {
	tok := common.HexToAddress("0x03")
	api := &fakeAPI{t: t, paths: pathsBody}
	r := newTestRouter(t, api)
	r.RememberDecimals(asset.ChainIDEthereum, tok, 2)

	_, err := r.FindPaths(context.Background(), asset.ChainIDEthereum,
		tok, asset.DAI.Address(), domain.GivenIn, big.NewInt(150), "")
	require.NoError(t, err)

	reqs := api.seen()
	require.Len(t, reqs, 1)
	assert.Equal(t, "1.5", reqs[0].Variables["swapAmount"])
}

func TestFindPathsEmptyIsNoRoute(t *testing.T) {
	api := &fakeAPI{t: t, paths: `{"data":{"sorGetSwapPaths":{"swapAmountRaw":"0","returnAmountRaw":"0","paths":[]}}}`}
	r := newTestRouter(t, api)

	_, err := r.FindPaths(context.Background(), asset.ChainIDEthereum,
		asset.WETH.Address(), asset.DAI.Address(), domain.GivenIn, big.NewInt(1), "")
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeNoRouteFound))
	assert.True(t, apperror.IsPricingFailure(err))
}

func TestFindPathsTransportErrorIsNotPricingFailure(t *testing.T) {
	api := &fakeAPI{t: t, status: http.StatusBadGateway}
	r := newTestRouter(t, api)

	_, err := r.FindPaths(context.Background(), asset.ChainIDEthereum,
		asset.WETH.Address(), asset.DAI.Address(), domain.GivenIn, big.NewInt(1), "")
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeBalancerAPIError))
	assert.False(t, apperror.IsPricingFailure(err))
}

func TestFindPathsGraphQLErrors(t *testing.T) {
	api := &fakeAPI{t: t, paths: `{"data":null,"errors":[{"message":"Invalid token"}]}`}
	r := newTestRouter(t, api)

	_, err := r.FindPaths(context.Background(), asset.ChainIDEthereum,
		asset.WETH.Address(), common.HexToAddress("0x01"), domain.GivenIn, big.NewInt(1), "")
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeBalancerAPIError))
	assert.Contains(t, err.Error(), "Invalid token")
}

func TestFindPathsRejectsBadInput(t *testing.T) {
	var hits atomic.Int32
	r := newTestRouter(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { hits.Add(1) }))

	_, err := r.FindPaths(context.Background(), asset.ChainIDEthereum,
		asset.WETH.Address(), asset.DAI.Address(), domain.GivenIn, big.NewInt(-1), "")
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidAmount))

	_, err = r.FindPaths(context.Background(), 999,
		asset.WETH.Address(), asset.DAI.Address(), domain.GivenIn, big.NewInt(1), "")
	assert.True(t, apperror.HasCode(err, apperror.CodeUnsupportedNetwork))

	assert.Zero(t, hits.Load())
}

func TestFindPathsRefreshesPoolFirst(t *testing.T) {
	api := &fakeAPI{t: t, paths: pathsBody, pool: poolBody}
	r := newTestRouter(t, api)
	ctx := context.Background()

	_, ok := r.Pool(ctx, asset.ChainIDEthereum, wethDaiPool)
	assert.False(t, ok)

	_, err := r.FindPaths(ctx, asset.ChainIDEthereum,
		asset.WETH.Address(), asset.DAI.Address(), domain.GivenIn, big.NewInt(1), strings.ToUpper(wethDaiPool))
	require.NoError(t, err)

	reqs := api.seen()
	require.Len(t, reqs, 2)
	assert.Contains(t, reqs[0].Query, "poolGetPool")
	assert.Equal(t, wethDaiPool, reqs[0].Variables["id"])
	assert.Contains(t, reqs[1].Query, "sorGetSwapPaths")

	snap, ok := r.Pool(ctx, asset.ChainIDEthereum, wethDaiPool)
	require.True(t, ok)
	assert.Equal(t, "WEIGHTED", snap.Type)
	assert.Equal(t, "0.003", snap.SwapFee)
	require.Len(t, snap.Tokens, 2)
	assert.Equal(t, "WETH", snap.Tokens[0].Symbol)
}

func TestRefreshPoolNotFound(t *testing.T) {
	api := &fakeAPI{t: t, pool: `{"data":{"poolGetPool":null}}`}
	r := newTestRouter(t, api)

	_, err := r.RefreshPool(context.Background(), asset.ChainIDEthereum, wethDaiPool)
	assert.True(t, apperror.HasCode(err, apperror.CodePoolNotFound))
}

func TestFindPathsMalformedAmounts(t *testing.T) {
	body := strings.Replace(pathsBody, `"outputAmountRaw":"2947070611811859012"`, `"outputAmountRaw":"2947.07"`, 1)
	r := newTestRouter(t, &fakeAPI{t: t, paths: body})

	_, err := r.FindPaths(context.Background(), asset.ChainIDEthereum,
		asset.WETH.Address(), asset.DAI.Address(), domain.GivenIn, big.NewInt(1), "")
	assert.True(t, apperror.HasCode(err, apperror.CodeBalancerAPIError))
}
