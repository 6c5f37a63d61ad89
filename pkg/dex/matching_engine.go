package dex

import (
	"github.com/holiman/uint256"
)

// PriceRange is the range of prices every one of which clears the
// same volume.
type PriceRange struct {
	Lower  Dec
	Higher Dec
}

// ClearingPrice is the midpoint of the range.
func (r PriceRange) ClearingPrice() Dec {
	return r.Lower.Midpoint(r.Higher)
}

// MatchingOutcome is the result of the call auction of one pair.
type MatchingOutcome struct {
	// Range is nil when the best bid is below the best ask.
	Range  *PriceRange
	Volume *uint256.Int
	// Bids and Asks are the orders taking part in the match, in
	// priority order. The last order of a side may be filled only
	// partially.
	Bids []OrderEntry
	Asks []OrderEntry
}

type orderSource interface {
	Valid() bool
	Entry() OrderEntry
	Next()
}

// matchOrders runs a uniform price call auction over the bids (best
// first) and the asks (best first).
//
// Both sides are walked together. Each step adds the order a side has
// just reached to that side's cumulative volume, then advances the
// side that has no more volume than the other (both when equal). The
// walk stops at the first pair of orders that do not cross. The last
// crossing ask and bid prices bound the range over which the matched
// volume, the smaller of the two cumulative volumes, does not change.
func matchOrders(bids, asks orderSource) (MatchingOutcome, error) {
	out := MatchingOutcome{Volume: new(uint256.Int)}
	bidVolume := new(uint256.Int)
	askVolume := new(uint256.Int)
	bidIsNew, askIsNew := true, true

	for bids.Valid() && asks.Valid() {
		bid, ask := bids.Entry(), asks.Entry()
		if bid.Key.Price.Cmp(ask.Key.Price) < 0 {
			break
		}

		out.Range = &PriceRange{Lower: ask.Key.Price, Higher: bid.Key.Price}

		if bidIsNew {
			out.Bids = append(out.Bids, bid)
			v, err := add(bidVolume, bid.Order.Remaining)
			if err != nil {
				return out, err
			}
			bidVolume = v
		}

		if askIsNew {
			out.Asks = append(out.Asks, ask)
			v, err := add(askVolume, ask.Order.Remaining)
			if err != nil {
				return out, err
			}
			askVolume = v
		}

		advanceBid := !bidVolume.Gt(askVolume)
		advanceAsk := !askVolume.Gt(bidVolume)

		bidIsNew = advanceBid
		if advanceBid {
			bids.Next()
		}

		askIsNew = advanceAsk
		if advanceAsk {
			asks.Next()
		}
	}

	out.Volume = minAmount(bidVolume, askVolume).Clone()
	return out, nil
}

// MatchPair runs the call auction of a pair over its resting orders
// without changing any state.
func (s *State) MatchPair(pair PairID) (MatchingOutcome, error) {
	return matchOrders(s.orderIterator(pair, Bid), s.orderIterator(pair, Ask))
}
