package dex

import (
	"testing"

	"github.com/holiman/uint256"
	log "github.com/inconshreveable/log15"
	"github.com/left-curve/left-curve-sub002/pkg/consensus"
	"github.com/left-curve/left-curve-sub002/pkg/store"
	"github.com/stretchr/testify/require"
)

func init() {
	log.Root().SetHandler(log.LvlFilterHandler(log.LvlInfo, log.StdoutHandler))
}

var (
	testOwner    = consensus.NamedAddr("owner")
	testContract = consensus.NamedAddr("dex")
	alice        = consensus.NamedAddr("alice")
	bob          = consensus.NamedAddr("bob")

	ethUSDC = PairID{Base: "eth", Quote: "usdc"}
	btcUSDC = PairID{Base: "btc", Quote: "usdc"}
)

func u(v uint64) *uint256.Int {
	return uint256.NewInt(v)
}

func xykParams(lp Denom) PairParams {
	return PairParams{
		LPDenom: lp,
		Curve: CurveParams{
			Kind:    CurveXyk,
			Spacing: MustParseDec("0.1"),
			Limit:   10,
		},
		SwapFeeRate:  MustParseDec("0.003"),
		MinOrderSize: new(uint256.Int),
	}
}

func geometricParams(lp Denom) PairParams {
	return PairParams{
		LPDenom: lp,
		Curve: CurveParams{
			Kind:    CurveGeometric,
			Spacing: MustParseDec("0.1"),
			Ratio:   MustParseDec("0.5"),
			Limit:   10,
		},
		SwapFeeRate:  MustParseDec("0.003"),
		MinOrderSize: new(uint256.Int),
	}
}

func testCtx(sender consensus.Addr, funds ...Coin) Context {
	c, err := NewCoins(funds...)
	if err != nil {
		panic(err)
	}

	return Context{
		Block:    consensus.BlockInfo{Height: 1, Timestamp: 1700000000},
		Contract: testContract,
		Owner:    testOwner,
		Sender:   sender,
		Funds:    c,
	}
}

func newTestState(t *testing.T) *State {
	s := NewState(store.NewMemory())
	_, err := UpdatePairs(s, testCtx(testOwner), []PairUpdate{
		{Pair: ethUSDC, Params: xykParams("dex/pool/eth-usdc")},
		{Pair: btcUSDC, Params: geometricParams("dex/pool/btc-usdc")},
	})
	require.NoError(t, err)
	return s
}

// testBank tracks the supply of the tokens minted and burned by the
// responses it is given.
type testBank map[Denom]*uint256.Int

func (b testBank) Supply(denom Denom) *uint256.Int {
	if v, ok := b[denom]; ok {
		return v.Clone()
	}
	return new(uint256.Int)
}

func (b testBank) apply(resp *Response) {
	for _, m := range resp.Messages {
		switch m := m.(type) {
		case Mint:
			for d, a := range m.Coins {
				b[d] = new(uint256.Int).Add(b.Supply(d), a)
			}
		case Burn:
			for d, a := range m.Coins {
				b[d] = new(uint256.Int).Sub(b.Supply(d), a)
			}
		}
	}
}

// transferredTo sums the coins the transfers of resp send to addr.
func transferredTo(resp *Response, addr consensus.Addr) Coins {
	r := make(Coins)
	for _, m := range resp.Messages {
		t, ok := m.(Transfer)
		if !ok {
			continue
		}

		for _, o := range t.Outputs {
			if o.To == addr {
				if err := r.Merge(o.Coins); err != nil {
					panic(err)
				}
			}
		}
	}
	return r
}

func eventsOf[T Event](resp *Response) []T {
	var r []T
	for _, e := range resp.Events {
		if v, ok := e.(T); ok {
			r = append(r, v)
		}
	}
	return r
}

func placeOrder(t *testing.T, s *State, user consensus.Addr, pair PairID, d Direction, price string, amount uint64) uint64 {
	p := MustParseDec(price)
	deposit, err := orderDeposit(pair, d, p, u(amount))
	require.NoError(t, err)

	resp, err := BatchUpdateOrders(s, testCtx(user, deposit), []CreateOrderRequest{
		{Pair: pair, Direction: d, Price: p, Amount: u(amount)},
	}, CancelOrders{})
	require.NoError(t, err)

	submitted := eventsOf[OrderSubmitted](resp)
	require.Len(t, submitted, 1)
	return submitted[0].OrderID
}
