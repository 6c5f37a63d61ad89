package dex

import (
	log "github.com/inconshreveable/log15"
	"github.com/pkg/errors"
)

// CronExecute runs at the end of every block with the exchange
// contract as the sender: it refreshes the pool orders, moves the
// block's incoming orders into the book and clears every pair that
// received orders, in canonical pair order. All refunds of the block
// go out as one batch transfer.
func CronExecute(s *State, ctx Context) (*Response, error) {
	if ctx.Sender != ctx.Contract {
		return nil, ErrUnauthorized
	}

	// the pause only gates order updates, the incoming queue is
	// always drained.
	resp := &Response{}
	if err := s.reflectPools(ctx, resp); err != nil {
		return nil, err
	}

	refunds := NewTransferBuilder()
	for _, pair := range s.drainIncoming() {
		if err := s.clearPair(ctx, pair, refunds, resp); err != nil {
			return nil, errors.Wrapf(err, "clear pair %s", pair)
		}
	}

	resp.addMessage(refunds.Message())
	return resp, nil
}

// clearPair runs the auction of one pair and settles it.
func (s *State) clearPair(ctx Context, pair PairID, refunds *TransferBuilder, resp *Response) error {
	outcome, err := s.MatchPair(pair)
	if err != nil {
		return err
	}

	if outcome.Range == nil || outcome.Volume.IsZero() {
		return nil
	}

	clearing := outcome.Range.ClearingPrice()
	fills, err := fillOrders(outcome.Bids, outcome.Asks, clearing, outcome.Volume)
	if err != nil {
		return err
	}

	s.applyFills(fills)
	resp.addEvent(OrdersMatched{Pair: pair, ClearingPrice: clearing, Volume: outcome.Volume.Clone()})

	reserves := s.Reserves(pair)
	poolFilled := false
	for _, f := range fills {
		if f.Order.User == ctx.Contract {
			reserves, err = settlePoolFill(reserves, f, clearing)
			if err != nil {
				return err
			}
			poolFilled = true
		} else {
			if err := refunds.Add(f.Order.User, pair.Base, f.RefundBase); err != nil {
				return err
			}

			if err := refunds.Add(f.Order.User, pair.Quote, f.RefundQuote); err != nil {
				return err
			}
		}

		resp.addEvent(OrderFilled{
			OrderID:       f.Key.ID.Raw(f.Key.Direction),
			User:          f.Order.User,
			Pair:          pair,
			Direction:     f.Key.Direction,
			Price:         f.Key.Price,
			ClearingPrice: clearing,
			FilledAmount:  f.FilledAmount.Clone(),
			Cleared:       f.Cleared,
			RefundBase:    f.RefundBase.Clone(),
			RefundQuote:   f.RefundQuote.Clone(),
		})
	}

	if poolFilled {
		s.SaveReserves(pair, reserves)
	}

	log.Debug("pair cleared", "pair", pair, "lower", outcome.Range.Lower, "higher", outcome.Range.Higher,
		"clearing", clearing, "volume", outcome.Volume.Dec(), "fills", len(fills))
	return nil
}
