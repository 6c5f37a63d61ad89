package dex

import (
	log "github.com/inconshreveable/log15"
	"github.com/pkg/errors"
)

// reflectPools replaces the orders of every pool with new ones
// computed from the current reserves.
//
// Pool orders are owned by the exchange contract and never move
// funds: the deposit of a new level and the refund of a canceled one
// stay inside the reserves. Fills of pool orders change the reserves
// directly, see settlePoolFill. Their submissions and cancellations
// emit no events, each pool emits one PoolReflected instead.
func (s *State) reflectPools(ctx Context, resp *Response) error {
	quiet := &Response{}
	for _, e := range s.OrdersByUser(ctx.Contract) {
		if _, err := s.cancelOrder(e, false, quiet); err != nil {
			return err
		}
	}

	for _, e := range s.IncomingByUser(ctx.Contract) {
		if _, err := s.cancelOrder(e, true, quiet); err != nil {
			return err
		}
	}

	// a pool that can not be reflected places no orders this block.
	for _, pair := range s.Pairs() {
		if err := s.reflectPool(ctx, pair, quiet, resp); err != nil {
			log.Warn("reflect pool failed", "pair", pair, "err", err)
		}
	}
	return nil
}

func (s *State) reflectPool(ctx Context, pair PairID, quiet, resp *Response) error {
	reserves := s.Reserves(pair)
	if reserves.Base.IsZero() || reserves.Quote.IsZero() {
		return nil
	}

	params := s.Pair(pair)
	if params == nil {
		return ErrPairNotFound
	}

	bids, asks, err := params.Pool().Reflect(reserves)
	if err != nil {
		return err
	}

	for _, side := range []struct {
		d      Direction
		levels []Level
	}{{Bid, bids}, {Ask, asks}} {
		for _, l := range side.levels {
			req := CreateOrderRequest{Pair: pair, Direction: side.d, Price: l.Price, Amount: l.Amount}
			if _, err := s.createOrder(ctx.Block, ctx.Contract, req, false, quiet); err != nil {
				return err
			}
		}
	}

	resp.addEvent(PoolReflected{Pair: pair, Bids: len(bids), Asks: len(asks)})
	log.Debug("pool reflected", "pair", pair, "bids", len(bids), "asks", len(asks), "base", reserves.Base.Dec(), "quote", reserves.Quote.Dec())
	return nil
}

// settlePoolFill moves a fill of a pool order into the reserves. A
// bid fill buys filled base for ceil(filled × clearing) quote, an ask
// fill sells filled base for floor(filled × clearing) quote.
func settlePoolFill(r Reserves, f FillingOutcome, clearing Dec) (Reserves, error) {
	if f.Key.Direction == Bid {
		cost, err := clearing.MulCeil(f.FilledAmount)
		if err != nil {
			return r, err
		}

		quote, err := sub(r.Quote, cost)
		if err != nil {
			return r, errors.Wrap(err, "pool bid fill exceeds the quote reserve")
		}

		base, err := add(r.Base, f.FilledAmount)
		if err != nil {
			return r, err
		}
		return Reserves{Base: base, Quote: quote}, nil
	}

	proceeds, err := clearing.MulFloor(f.FilledAmount)
	if err != nil {
		return r, err
	}

	base, err := sub(r.Base, f.FilledAmount)
	if err != nil {
		return r, errors.Wrap(err, "pool ask fill exceeds the base reserve")
	}

	quote, err := add(r.Quote, proceeds)
	if err != nil {
		return r, err
	}
	return Reserves{Base: base, Quote: quote}, nil
}
