package dex

import (
	"github.com/holiman/uint256"
	"github.com/left-curve/left-curve-sub002/pkg/consensus"
	"github.com/pkg/errors"
)

// CreateOrderRequest places a limit order. Amount is in the base
// denom, Price in quote per base.
type CreateOrderRequest struct {
	Pair      PairID
	Direction Direction
	Price     Dec
	Amount    *uint256.Int
}

// CancelOrders selects orders of the sender to cancel: either all of
// them or the listed raw ids.
type CancelOrders struct {
	All bool
	IDs []uint64
}

func (c CancelOrders) IsEmpty() bool {
	return !c.All && len(c.IDs) == 0
}

// orderDeposit is what an order locks: amount × price rounded up in
// the quote denom for a bid, amount of the base denom for an ask.
func orderDeposit(pair PairID, d Direction, price Dec, amount *uint256.Int) (Coin, error) {
	if d == Ask {
		return Coin{Denom: pair.Base, Amount: amount.Clone()}, nil
	}

	q, err := price.MulCeil(amount)
	if err != nil {
		return Coin{}, err
	}
	return Coin{Denom: pair.Quote, Amount: q}, nil
}

// cancelRefund is what a canceled order gets back: remaining × price
// rounded down in the quote denom for a bid, remaining of the base
// denom for an ask.
func cancelRefund(key OrderKey, remaining *uint256.Int) (Coin, error) {
	if key.Direction == Ask {
		return Coin{Denom: key.Pair.Base, Amount: remaining.Clone()}, nil
	}

	q, err := key.Price.MulFloor(remaining)
	if err != nil {
		return Coin{}, err
	}
	return Coin{Denom: key.Pair.Quote, Amount: q}, nil
}

// cancelOrder removes an order from the book or the incoming queue
// and returns its refund.
func (s *State) cancelOrder(e OrderEntry, incoming bool, resp *Response) (Coin, error) {
	refund, err := cancelRefund(e.Key, e.Order.Remaining)
	if err != nil {
		return Coin{}, err
	}

	raw := e.Key.ID.Raw(e.Key.Direction)
	if incoming {
		s.removeIncoming(e.Order.User, OrderID(raw))
	} else {
		s.removeOrder(e.Key, e.Order.User)
	}

	resp.addEvent(OrderCanceled{
		OrderID:   raw,
		User:      e.Order.User,
		Pair:      e.Key.Pair,
		Direction: e.Key.Direction,
		Price:     e.Key.Price,
		Amount:    e.Order.Amount.Clone(),
		Remaining: e.Order.Remaining.Clone(),
		Refund:    refund,
	})
	return refund, nil
}

// cancelUserOrders cancels the selected orders of user and adds the
// refunds to refunds. The book is consulted before the incoming
// queue.
func (s *State) cancelUserOrders(user consensus.Addr, sel CancelOrders, refunds Coins, resp *Response) error {
	type target struct {
		entry    OrderEntry
		incoming bool
	}

	var targets []target
	if sel.All {
		for _, e := range s.OrdersByUser(user) {
			targets = append(targets, target{entry: e})
		}

		for _, e := range s.IncomingByUser(user) {
			targets = append(targets, target{entry: e, incoming: true})
		}
	} else {
		for _, id := range sel.IDs {
			e, ok := s.Order(id)
			incoming := false
			if !ok {
				e, ok = s.IncomingOrder(id)
				incoming = true
			}

			if !ok {
				return errors.Wrapf(ErrOrderNotFound, "order %d", id)
			}

			if e.Order.User != user {
				return errors.Wrapf(ErrNotOwner, "order %d", id)
			}

			// remove right away so a repeated id reports not
			// found.
			refund, err := s.cancelOrder(e, incoming, resp)
			if err != nil {
				return err
			}

			if err := refunds.Add(refund.Denom, refund.Amount); err != nil {
				return err
			}
		}
		return nil
	}

	for _, t := range targets {
		refund, err := s.cancelOrder(t.entry, t.incoming, resp)
		if err != nil {
			return err
		}

		if err := refunds.Add(refund.Denom, refund.Amount); err != nil {
			return err
		}
	}
	return nil
}

// createOrder validates a request and puts the order into the
// incoming queue. It returns the deposit the order requires.
func (s *State) createOrder(block consensus.BlockInfo, user consensus.Addr, req CreateOrderRequest, checkMinSize bool, resp *Response) (Coin, error) {
	params := s.Pair(req.Pair)
	if params == nil {
		return Coin{}, errors.Wrapf(ErrPairNotFound, "pair %s", req.Pair)
	}

	if !req.Direction.Valid() {
		return Coin{}, ErrInvalidDirection
	}

	if req.Amount == nil || req.Amount.IsZero() {
		return Coin{}, ErrZeroAmount
	}

	if req.Price.IsZero() {
		return Coin{}, ErrZeroPrice
	}

	deposit, err := orderDeposit(req.Pair, req.Direction, req.Price, req.Amount)
	if err != nil {
		return Coin{}, err
	}

	if checkMinSize {
		value, err := req.Price.MulCeil(req.Amount)
		if err != nil {
			return Coin{}, err
		}

		if value.Lt(params.MinOrderSize) {
			return Coin{}, errors.Wrapf(ErrOrderTooSmall, "order value %s, minimum %s", value.Dec(), params.MinOrderSize.Dec())
		}
	}

	raw := s.NextOrderID()
	key := OrderKey{
		Pair:      req.Pair,
		Direction: req.Direction,
		Price:     req.Price,
		ID:        StoredOrderID(req.Direction, raw),
	}

	order := Order{
		User:      user,
		Amount:    req.Amount.Clone(),
		Remaining: req.Amount.Clone(),
		CreatedAt: block.Height,
	}

	s.saveIncoming(key, order)
	resp.addEvent(OrderSubmitted{
		OrderID:   raw,
		User:      user,
		Pair:      req.Pair,
		Direction: req.Direction,
		Price:     req.Price,
		Amount:    req.Amount.Clone(),
		Deposit:   deposit,
	})
	return deposit, nil
}

// BatchUpdateOrders cancels and then creates orders of the sender.
// The attached funds plus the refunds must cover the deposits; what
// is left is sent back to the sender.
func BatchUpdateOrders(s *State, ctx Context, creates []CreateOrderRequest, cancels CancelOrders) (*Response, error) {
	if s.Paused() {
		return nil, ErrPaused
	}

	resp := &Response{}
	funds := ctx.Funds.Clone()
	if !cancels.IsEmpty() {
		refunds := make(Coins)
		err := s.cancelUserOrders(ctx.Sender, cancels, refunds, resp)
		if err != nil {
			return nil, err
		}

		if err := funds.Merge(refunds); err != nil {
			return nil, err
		}
	}

	for _, req := range creates {
		deposit, err := s.createOrder(ctx.Block, ctx.Sender, req, true, resp)
		if err != nil {
			return nil, err
		}

		if err := funds.Sub(deposit.Denom, deposit.Amount); err != nil {
			return nil, errors.Wrapf(err, "deposit for %s order on %s", req.Direction, req.Pair)
		}
	}

	if !funds.IsEmpty() {
		resp.addMessage(Transfer{Outputs: []TransferOutput{{To: ctx.Sender, Coins: funds}}})
	}
	return resp, nil
}

// ForceCancelOrders cancels every order in the book and the incoming
// queue, refunding the users. Orders of the pools are dropped
// without refund since their funds never left the reserves.
func ForceCancelOrders(s *State, ctx Context) (*Response, error) {
	if ctx.Sender != ctx.Owner {
		return nil, ErrUnauthorized
	}

	resp := &Response{}
	refunds := NewTransferBuilder()
	var book []OrderEntry
	for _, pair := range s.Pairs() {
		bids, asks := s.OrdersByPair(pair)
		book = append(book, bids...)
		book = append(book, asks...)
	}

	cancel := func(e OrderEntry, incoming bool) error {
		refund, err := s.cancelOrder(e, incoming, resp)
		if err != nil {
			return err
		}

		if e.Order.User == ctx.Contract {
			return nil
		}
		return refunds.Add(e.Order.User, refund.Denom, refund.Amount)
	}

	for _, e := range book {
		if err := cancel(e, false); err != nil {
			return nil, err
		}
	}

	for _, e := range s.Incoming() {
		if err := cancel(e, true); err != nil {
			return nil, err
		}
	}

	resp.addMessage(refunds.Message())
	return resp, nil
}
