package dex

import (
	"github.com/holiman/uint256"
)

// FillingOutcome is what the auction did to one order.
type FillingOutcome struct {
	Key          OrderKey
	Order        Order // after the fill
	FilledAmount *uint256.Int
	// Cleared is set when nothing remains and the order is removed
	// from the book.
	Cleared     bool
	RefundBase  *uint256.Int
	RefundQuote *uint256.Int
}

// fillOrders distributes volume over the bids and over the asks in
// priority order, each order getting the lesser of its remaining
// amount and the volume not yet distributed.
//
// Every fill trades at the clearing price. A bid locked
// filled × limit of quote and pays filled × clearing, so it gets the
// bought base back plus floor(filled × (limit − clearing)) quote. An
// ask locked the base it sold and gets floor(filled × clearing)
// quote.
func fillOrders(bids, asks []OrderEntry, clearing Dec, volume *uint256.Int) ([]FillingOutcome, error) {
	var r []FillingOutcome
	for _, side := range [][]OrderEntry{bids, asks} {
		left := volume.Clone()
		for _, e := range side {
			if left.IsZero() {
				break
			}

			f, err := fillOrder(e, clearing, left)
			if err != nil {
				return nil, err
			}

			left.Sub(left, f.FilledAmount)
			r = append(r, f)
		}
	}
	return r, nil
}

func fillOrder(e OrderEntry, clearing Dec, left *uint256.Int) (FillingOutcome, error) {
	filled := minAmount(e.Order.Remaining, left).Clone()
	order := e.Order
	order.Remaining = new(uint256.Int).Sub(e.Order.Remaining, filled)

	f := FillingOutcome{
		Key:          e.Key,
		Order:        order,
		FilledAmount: filled,
		Cleared:      order.Remaining.IsZero(),
	}

	if e.Key.Direction == Bid {
		improvement, err := e.Key.Price.Sub(clearing)
		if err != nil {
			return f, err
		}

		q, err := improvement.MulFloor(filled)
		if err != nil {
			return f, err
		}

		f.RefundBase = filled.Clone()
		f.RefundQuote = q
		return f, nil
	}

	q, err := clearing.MulFloor(filled)
	if err != nil {
		return f, err
	}

	f.RefundBase = new(uint256.Int)
	f.RefundQuote = q
	return f, nil
}

// applyFills writes the fills back to the book: cleared orders are
// removed, the rest saved with their reduced remaining amount.
func (s *State) applyFills(fills []FillingOutcome) {
	for _, f := range fills {
		if f.Cleared {
			s.removeOrder(f.Key, f.Order.User)
		} else {
			s.saveOrder(f.Key, f.Order)
		}
	}
}
