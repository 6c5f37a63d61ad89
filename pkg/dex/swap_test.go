package dex

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSwapState(t *testing.T) *State {
	s := newTestState(t)
	s.SaveReserves(ethUSDC, Reserves{Base: u(1000), Quote: u(1000)})
	s.SaveReserves(btcUSDC, Reserves{Base: u(1000), Quote: u(2000)})
	return s
}

func TestSwapExactIn(t *testing.T) {
	s := newSwapState(t)
	req := SwapRequest{Route: []PairID{ethUSDC}, Direction: SwapExactIn}
	resp, err := Swap(s, testCtx(alice, NewCoin("usdc", 100)), req)
	require.NoError(t, err)

	// 90 before the 0.3% fee
	assert.Equal(t, "89eth", transferredTo(resp, alice).String())
	r := s.Reserves(ethUSDC)
	assert.Equal(t, uint64(911), r.Base.Uint64())
	assert.Equal(t, uint64(1100), r.Quote.Uint64())

	swapped := eventsOf[Swapped](resp)
	require.Len(t, swapped, 1)
	assert.Equal(t, "100usdc", swapped[0].Input.String())
	assert.Equal(t, "89eth", swapped[0].Output.String())
}

func TestSwapExactOut(t *testing.T) {
	s := newSwapState(t)
	req := SwapRequest{Route: []PairID{ethUSDC}, Direction: SwapExactOut, Output: NewCoin("eth", 89)}
	resp, err := Swap(s, testCtx(alice, NewCoin("usdc", 120)), req)
	require.NoError(t, err)

	// 99usdc paid, the rest comes back with the output
	assert.Equal(t, "89eth,21usdc", transferredTo(resp, alice).String())
	r := s.Reserves(ethUSDC)
	assert.Equal(t, uint64(911), r.Base.Uint64())
	assert.Equal(t, uint64(1099), r.Quote.Uint64())

	_, err = Swap(s, testCtx(alice, NewCoin("usdc", 10)), req)
	assert.Equal(t, ErrInsufficientFunds, errors.Cause(err))

	_, err = Swap(s, testCtx(alice, NewCoin("eth", 1000)), req)
	assert.Equal(t, ErrUnexpectedFunds, errors.Cause(err))
}

func TestSwapSlippage(t *testing.T) {
	s := newSwapState(t)
	before := s.Reserves(ethUSDC)

	req := SwapRequest{
		Route:     []PairID{ethUSDC},
		Direction: SwapExactIn,
		Slippage:  Slippage{Kind: MinimumOut, Amount: u(90)},
	}
	_, err := Swap(s, testCtx(alice, NewCoin("usdc", 100)), req)
	assert.Equal(t, ErrSlippageExceeded, errors.Cause(err))

	// nothing written on failure
	after := s.Reserves(ethUSDC)
	assert.Equal(t, before.Base.Uint64(), after.Base.Uint64())
	assert.Equal(t, before.Quote.Uint64(), after.Quote.Uint64())

	req.Slippage = Slippage{Kind: PriceLimit, Price: MustParseDec("1.1")}
	_, err = Swap(s, testCtx(alice, NewCoin("usdc", 100)), req)
	assert.Equal(t, ErrSlippageExceeded, errors.Cause(err))

	req.Slippage = Slippage{Kind: PriceLimit, Price: MustParseDec("1.2")}
	_, err = Swap(s, testCtx(alice, NewCoin("usdc", 100)), req)
	assert.NoError(t, err)

	out := SwapRequest{
		Route:     []PairID{ethUSDC},
		Direction: SwapExactOut,
		Output:    NewCoin("eth", 10),
		Slippage:  Slippage{Kind: MaximumIn, Amount: u(5)},
	}
	_, err = Swap(s, testCtx(alice, NewCoin("usdc", 100)), out)
	assert.Equal(t, ErrSlippageExceeded, errors.Cause(err))

	// the guard must fit the direction
	out.Slippage = Slippage{Kind: MinimumOut, Amount: u(1)}
	_, err = Swap(s, testCtx(alice, NewCoin("usdc", 100)), out)
	assert.Equal(t, ErrInvalidSlippage, err)
}

func TestSwapMultiHop(t *testing.T) {
	s := newSwapState(t)
	route := []PairID{btcUSDC, ethUSDC}

	sim, err := SimulateSwap(s, route, SwapExactIn, NewCoin("btc", 10))
	require.NoError(t, err)
	assert.Equal(t, "16eth", sim.Output.String())

	resp, err := Swap(s, testCtx(alice, NewCoin("btc", 10)), SwapRequest{Route: route, Direction: SwapExactIn})
	require.NoError(t, err)
	assert.Equal(t, "16eth", transferredTo(resp, alice).String())

	assert.Equal(t, uint64(1010), s.Reserves(btcUSDC).Base.Uint64())
	assert.Equal(t, uint64(1018), s.Reserves(ethUSDC).Quote.Uint64())
}

func TestSwapRoutes(t *testing.T) {
	s := newSwapState(t)
	solUSDC := PairID{Base: "sol", Quote: "usdc"}
	in := NewCoin("usdc", 10)

	cases := []struct {
		route []PairID
		err   error
	}{
		{nil, ErrInvalidRoute},
		{[]PairID{ethUSDC, ethUSDC}, ErrInvalidRoute},
		{[]PairID{ethUSDC, btcUSDC, ethUSDC, btcUSDC, ethUSDC}, ErrInvalidRoute},
		{[]PairID{solUSDC}, ErrPairNotFound},
	}
	for _, c := range cases {
		_, err := SimulateSwap(s, c.route, SwapExactIn, in)
		assert.Equal(t, c.err, errors.Cause(err))
	}

	_, err := SimulateSwap(s, []PairID{ethUSDC}, SwapExactIn, NewCoin("btc", 10))
	assert.Equal(t, ErrInvalidRoute, errors.Cause(err))

	// an empty pool can not be swapped against
	_, err = UpdatePairs(s, testCtx(testOwner), []PairUpdate{{Pair: solUSDC, Params: xykParams("dex/pool/sol-usdc")}})
	require.NoError(t, err)
	_, err = SimulateSwap(s, []PairID{solUSDC}, SwapExactIn, in)
	assert.Equal(t, ErrInsufficientLiq, errors.Cause(err))
}

func TestSwapPaused(t *testing.T) {
	s := newSwapState(t)
	_, err := SetPaused(s, testCtx(testOwner), true)
	require.NoError(t, err)

	_, err = Swap(s, testCtx(alice, NewCoin("usdc", 100)), SwapRequest{Route: []PairID{ethUSDC}})
	assert.Equal(t, ErrPaused, err)
}
