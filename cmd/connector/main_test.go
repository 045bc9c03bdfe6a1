package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fd1az/balancer-connector/internal/config"
)

func TestOptionsApplyOverridesOnlySetFlags(t *testing.T) {
	mc := config.MonitorConfig{Chain: "ethereum", Network: "mainnet", Pair: "WETH-DAI", Amount: "1", Side: "SELL"}

	options{pair: "WBTC-USDC", side: "BUY"}.apply(&mc)

	assert.Equal(t, "ethereum", mc.Chain)
	assert.Equal(t, "WBTC-USDC", mc.Pair)
	assert.Equal(t, "BUY", mc.Side)
	assert.Equal(t, "1", mc.Amount)
	assert.Empty(t, mc.Slippage)
}

func TestConnectorsReadyWithoutInstances(t *testing.T) {
	ok, msg := connectorsReady(nil)
	assert.True(t, ok)
	assert.Equal(t, "0 ready", msg)
}

func TestRenderQuote(t *testing.T) {
	out := renderQuote("WETH-DAI", [][2]string{{"price", "2000 WETH-DAI"}, {"slippage", "1%"}})
	assert.Contains(t, out, "WETH-DAI")
	assert.Contains(t, out, "2000")
	assert.Contains(t, out, "slippage")
}
