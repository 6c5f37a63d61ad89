package chain

import (
	"strings"
	"testing"

	"github.com/left-curve/left-curve-sub002/pkg/consensus"
	"github.com/left-curve/left-curve-sub002/pkg/dex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveAddr(t *testing.T) {
	assert.Equal(t, alice, ResolveAddr("alice"))
	assert.Equal(t, alice, ResolveAddr(alice.Hex()))
	assert.Equal(t, alice, ResolveAddr("0x"+alice.Hex()))
}

func TestGenesisYAML(t *testing.T) {
	g := DefaultGenesis()
	b, err := g.Marshal()
	require.NoError(t, err)

	parsed, err := ParseGenesis(b)
	require.NoError(t, err)
	assert.Equal(t, g, parsed)

	_, err = ParseGenesis([]byte("pairs: []\n"))
	assert.Error(t, err)
}

func TestDefaultGenesis(t *testing.T) {
	app, err := DefaultGenesis().Build(nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), app.Height())
	assert.Equal(t, consensus.NamedAddr("dex"), app.Contract())

	s := app.State()
	assert.Len(t, s.Pairs(), 2)

	r := s.Reserves(ethUSDC)
	assert.Equal(t, uint64(10000), r.Base.Uint64())
	assert.Equal(t, uint64(1000000), r.Quote.Uint64())

	lp := app.Ledger().Balance(consensus.NamedAddr("lp"), "dex/pool/eth-usdc")
	assert.Equal(t, uint64(100000*1000000), lp.Uint64())

	left := make(dex.Coins)
	for denom, amount := range app.Ledger().Balances(consensus.NamedAddr("lp")) {
		if !strings.HasPrefix(string(denom), dex.LPDenomPrefix) {
			left[denom] = amount
		}
	}
	assert.Equal(t, "99000btc,90000eth,8000000usdc", left.String())
}

func TestGenesisErrors(t *testing.T) {
	g := testGenesis()
	g.Pairs[0].Curve.Kind = "stable"
	_, err := g.Build(nil)
	assert.Error(t, err)

	g = testGenesis()
	g.Balances["alice"] = []string{"lots"}
	_, err = g.Build(nil)
	assert.Error(t, err)

	g = testGenesis()
	g.Pairs[0].SwapFeeRate = "0"
	_, err = g.Build(nil)
	assert.Error(t, err)

	g = testGenesis()
	g.Liquidity = []GenesisLiquidity{{Provider: "alice", Base: "eth", Quote: "usdc", Deposit: []string{"1eth", "1usdc"}}}
	_, err = g.Build(nil)
	assert.Error(t, err)
}
