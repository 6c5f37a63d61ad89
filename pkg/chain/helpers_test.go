package chain

import (
	"testing"

	"github.com/holiman/uint256"
	log "github.com/inconshreveable/log15"
	"github.com/left-curve/left-curve-sub002/pkg/consensus"
	"github.com/left-curve/left-curve-sub002/pkg/dex"
	"github.com/stretchr/testify/require"
)

func init() {
	log.Root().SetHandler(log.LvlFilterHandler(log.LvlInfo, log.StdoutHandler))
}

var (
	owner    = consensus.NamedAddr("owner")
	contract = consensus.NamedAddr("dex")
	alice    = consensus.NamedAddr("alice")
	bob      = consensus.NamedAddr("bob")

	ethUSDC = dex.PairID{Base: "eth", Quote: "usdc"}
)

func testGenesis() *Genesis {
	return &Genesis{
		Owner:    "owner",
		Contract: "dex",
		Pairs: []GenesisPair{
			{
				Base:        "eth",
				Quote:       "usdc",
				LPDenom:     "dex/pool/eth-usdc",
				SwapFeeRate: "0.003",
				Curve:       GenesisCurve{Kind: "xyk", Spacing: "0.1", Limit: 10},
			},
		},
		Balances: map[string][]string{
			"alice": {"100usdc"},
			"bob":   {"20eth"},
		},
	}
}

func newTestApp(t *testing.T) (*App, *Recorder) {
	t.Helper()
	r := &Recorder{}
	app, err := testGenesis().Build(r)
	require.NoError(t, err)
	return app, r
}

func order(d dex.Direction, price string, amount uint64) dex.CreateOrderRequest {
	return dex.CreateOrderRequest{
		Pair:      ethUSDC,
		Direction: d,
		Price:     dex.MustParseDec(price),
		Amount:    uint256.NewInt(amount),
	}
}

func makeTxn(t *testing.T, sender consensus.Addr, nonce uint64, funds []string, msg dex.Msg) []byte {
	t.Helper()
	coins, err := parseCoins(funds)
	require.NoError(t, err)

	b, err := MakeTxn(sender, nonce, coins, msg)
	require.NoError(t, err)
	return b
}

func placeOrders(t *testing.T, sender consensus.Addr, nonce uint64, funds []string, creates ...dex.CreateOrderRequest) []byte {
	return makeTxn(t, sender, nonce, funds, dex.BatchUpdateOrdersMsg{Creates: creates})
}

func eventsOf[T dex.Event](events []dex.Event) []T {
	var r []T
	for _, e := range events {
		if v, ok := e.(T); ok {
			r = append(r, v)
		}
	}
	return r
}
