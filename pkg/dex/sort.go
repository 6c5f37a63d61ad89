package dex

import "sort"

func pairLess(a, b PairID) bool {
	if a.Base != b.Base {
		return a.Base < b.Base
	}
	return a.Quote < b.Quote
}

// sortPairs sorts pairs into the canonical order pairs are processed
// in at the end of a block.
func sortPairs(pairs []PairID) {
	sort.Slice(pairs, func(i, j int) bool {
		return pairLess(pairs[i], pairs[j])
	})
}

// orderLess reports whether i has higher matching priority than j.
// Bids come before asks.
func orderLess(i, j OrderKey) bool {
	if i.Direction != j.Direction {
		return i.Direction == Bid
	}

	if c := i.Price.Cmp(j.Price); c != 0 {
		if i.Direction == Bid {
			// higher bid first
			return c > 0
		}
		return c < 0
	}

	// same price, earlier order first.
	return i.ID.Raw(i.Direction) < j.ID.Raw(j.Direction)
}

func sortOrders(orders []OrderEntry) {
	sort.SliceStable(orders, func(i, j int) bool {
		return orderLess(orders[i].Key, orders[j].Key)
	})
}
