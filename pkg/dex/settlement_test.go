package dex

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFillRefunds(t *testing.T) {
	bids := entries(Bid, 1, level{"10", 5}, level{"9", 5})
	asks := entries(Ask, 10, level{"8", 6})
	clearing := MustParseDec("8.5")

	fills, err := fillOrders(bids, asks, clearing, u(6))
	require.NoError(t, err)
	require.Len(t, fills, 3)

	// bid at 10: gets the 5 base and 5 × 1.5 back
	assert.Equal(t, uint64(5), fills[0].RefundBase.Uint64())
	assert.Equal(t, uint64(7), fills[0].RefundQuote.Uint64())

	// bid at 9: 1 × 0.5 rounds down to 0
	assert.Equal(t, uint64(1), fills[1].RefundBase.Uint64())
	assert.Equal(t, uint64(0), fills[1].RefundQuote.Uint64())

	// ask at 8: sold 6 at 8.5
	assert.True(t, fills[2].RefundBase.IsZero())
	assert.Equal(t, uint64(51), fills[2].RefundQuote.Uint64())
}

func TestFillConservation(t *testing.T) {
	bids := entries(Bid, 1, level{"10.3", 7}, level{"9.7", 13}, level{"9.1", 4})
	asks := entries(Ask, 10, level{"8.9", 11}, level{"9.05", 9})
	out := match(t, bids, asks)
	require.NotNil(t, out.Range)

	clearing := out.Range.ClearingPrice()
	fills, err := fillOrders(out.Bids, out.Asks, clearing, out.Volume)
	require.NoError(t, err)

	// quote locked by the filled part of the bids against the quote
	// paid out for them and for the asks.
	locked := new(uint256.Int)
	paid := new(uint256.Int)
	baseIn := new(uint256.Int)
	baseOut := new(uint256.Int)
	for _, f := range fills {
		if f.Key.Direction == Bid {
			l, err := f.Key.Price.MulFloor(f.FilledAmount)
			require.NoError(t, err)
			locked.Add(locked, l)
			baseOut.Add(baseOut, f.RefundBase)
		} else {
			baseIn.Add(baseIn, f.FilledAmount)
		}
		paid.Add(paid, f.RefundQuote)
	}

	assert.False(t, paid.Gt(locked), "paid %s, locked %s", paid.Dec(), locked.Dec())
	assert.Equal(t, baseIn.Uint64(), baseOut.Uint64())
	assert.Equal(t, out.Volume.Uint64(), baseIn.Uint64())
}

func TestApplyFills(t *testing.T) {
	s := newTestState(t)
	placeOrder(t, s, alice, ethUSDC, Bid, "10", 5)
	placeOrder(t, s, alice, ethUSDC, Bid, "9", 5)
	placeOrder(t, s, bob, ethUSDC, Ask, "8", 6)
	s.drainIncoming()

	out, err := s.MatchPair(ethUSDC)
	require.NoError(t, err)
	fills, err := fillOrders(out.Bids, out.Asks, out.Range.ClearingPrice(), out.Volume)
	require.NoError(t, err)
	s.applyFills(fills)

	bids, asks := s.OrdersByPair(ethUSDC)
	require.Len(t, bids, 1)
	assert.Equal(t, uint64(4), bids[0].Order.Remaining.Uint64())
	assert.Equal(t, uint64(1), bids[0].Order.Filled().Uint64())
	assert.Empty(t, asks)
	assert.Empty(t, s.OrdersByUser(bob))
}
