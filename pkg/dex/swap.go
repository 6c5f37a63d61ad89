package dex

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

const maxRouteLen = 4

// SwapDirection tells which side of a swap is fixed.
type SwapDirection uint8

const (
	SwapExactIn SwapDirection = iota
	SwapExactOut
)

// SlippageKind is the kind of guard a swap is checked against.
type SlippageKind uint8

const (
	SlippageNone SlippageKind = iota
	// MinimumOut bounds the output of an exact in swap.
	MinimumOut
	// MaximumIn bounds the input of an exact out swap.
	MaximumIn
	// PriceLimit bounds the average price: input ≤ limit × output.
	PriceLimit
)

type Slippage struct {
	Kind   SlippageKind
	Amount *uint256.Int
	Price  Dec
}

// SwapRequest swaps against the pools along Route. With SwapExactIn
// the single attached coin is the input; with SwapExactOut Output is
// the target and the attached coin pays for it, the excess being
// returned.
type SwapRequest struct {
	Route     []PairID
	Direction SwapDirection
	Output    Coin
	Slippage  Slippage
}

// SwapResult is the outcome of a swap along a route.
type SwapResult struct {
	Input    Coin
	Output   Coin
	reserves map[PairID]Reserves
}

func validateRoute(s *State, route []PairID) (map[PairID]*PairParams, error) {
	if len(route) == 0 || len(route) > maxRouteLen {
		return nil, errors.Wrapf(ErrInvalidRoute, "route length must be between 1 and %d", maxRouteLen)
	}

	params := make(map[PairID]*PairParams, len(route))
	for _, pair := range route {
		if _, ok := params[pair]; ok {
			return nil, errors.Wrapf(ErrInvalidRoute, "pair %s appears twice", pair)
		}

		p := s.Pair(pair)
		if p == nil {
			return nil, errors.Wrapf(ErrPairNotFound, "pair %s", pair)
		}
		params[pair] = p
	}
	return params, nil
}

// swapExactIn walks the route forward. Nothing is written: the new
// reserves are kept in the result.
func swapExactIn(s *State, route []PairID, input Coin) (SwapResult, error) {
	params, err := validateRoute(s, route)
	if err != nil {
		return SwapResult{}, err
	}

	if input.Amount == nil || input.Amount.IsZero() {
		return SwapResult{}, ErrZeroAmount
	}

	res := SwapResult{Input: input, reserves: make(map[PairID]Reserves)}
	denom, amount := input.Denom, input.Amount.Clone()
	for _, pair := range route {
		var d Direction
		var next Denom
		switch denom {
		case pair.Quote:
			d, next = Bid, pair.Base
		case pair.Base:
			d, next = Ask, pair.Quote
		default:
			return SwapResult{}, errors.Wrapf(ErrInvalidRoute, "%s is not traded on %s", denom, pair)
		}

		r := s.Reserves(pair)
		out, err := params[pair].Pool().SwapExactIn(r, d, amount)
		if err != nil {
			return SwapResult{}, errors.Wrapf(err, "swap on %s", pair)
		}

		if out.IsZero() {
			return SwapResult{}, errors.Wrapf(ErrInsufficientLiq, "output on %s rounds to zero", pair)
		}

		res.reserves[pair], err = applySwap(r, d, amount, out)
		if err != nil {
			return SwapResult{}, err
		}

		denom, amount = next, out
	}

	res.Output = Coin{Denom: denom, Amount: amount}
	return res, nil
}

// swapExactOut walks the route backward from the output.
func swapExactOut(s *State, route []PairID, output Coin) (SwapResult, error) {
	params, err := validateRoute(s, route)
	if err != nil {
		return SwapResult{}, err
	}

	if output.Amount == nil || output.Amount.IsZero() {
		return SwapResult{}, ErrZeroAmount
	}

	res := SwapResult{Output: output, reserves: make(map[PairID]Reserves)}
	denom, amount := output.Denom, output.Amount.Clone()
	for i := len(route) - 1; i >= 0; i-- {
		pair := route[i]
		var d Direction
		var prev Denom
		switch denom {
		case pair.Base:
			d, prev = Bid, pair.Quote
		case pair.Quote:
			d, prev = Ask, pair.Base
		default:
			return SwapResult{}, errors.Wrapf(ErrInvalidRoute, "%s is not traded on %s", denom, pair)
		}

		r := s.Reserves(pair)
		in, err := params[pair].Pool().SwapExactOut(r, d, amount)
		if err != nil {
			return SwapResult{}, errors.Wrapf(err, "swap on %s", pair)
		}

		res.reserves[pair], err = applySwap(r, d, in, amount)
		if err != nil {
			return SwapResult{}, err
		}

		denom, amount = prev, in
	}

	res.Input = Coin{Denom: denom, Amount: amount}
	return res, nil
}

func checkSlippage(dir SwapDirection, sl Slippage, res SwapResult) error {
	switch sl.Kind {
	case SlippageNone:
		return nil
	case MinimumOut:
		if dir != SwapExactIn || sl.Amount == nil {
			return ErrInvalidSlippage
		}

		if res.Output.Amount.Lt(sl.Amount) {
			return errors.Wrapf(ErrSlippageExceeded, "output %s below minimum %s", res.Output.Amount.Dec(), sl.Amount.Dec())
		}
	case MaximumIn:
		if dir != SwapExactOut || sl.Amount == nil {
			return ErrInvalidSlippage
		}

		if res.Input.Amount.Gt(sl.Amount) {
			return errors.Wrapf(ErrSlippageExceeded, "input %s above maximum %s", res.Input.Amount.Dec(), sl.Amount.Dec())
		}
	case PriceLimit:
		limit, err := sl.Price.MulFloor(res.Output.Amount)
		if err != nil {
			return err
		}

		if res.Input.Amount.Gt(limit) {
			return errors.Wrapf(ErrSlippageExceeded, "input %s for output %s exceeds price limit %s", res.Input.Amount.Dec(), res.Output.Amount.Dec(), sl.Price)
		}
	default:
		return ErrInvalidSlippage
	}
	return nil
}

// SimulateSwap returns the outcome of a swap without changing state.
func SimulateSwap(s *State, route []PairID, dir SwapDirection, amount Coin) (SwapResult, error) {
	if dir == SwapExactOut {
		return swapExactOut(s, route, amount)
	}
	return swapExactIn(s, route, amount)
}

// Swap swaps the attached coin against the pools along the route.
// The reserves are written only after the slippage guard passes.
func Swap(s *State, ctx Context, req SwapRequest) (*Response, error) {
	if s.Paused() {
		return nil, ErrPaused
	}

	if req.Slippage.Kind == MinimumOut && req.Direction != SwapExactIn ||
		req.Slippage.Kind == MaximumIn && req.Direction != SwapExactOut {
		return nil, ErrInvalidSlippage
	}

	funds := ctx.Funds.Clone()
	if len(funds) != 1 {
		return nil, errors.Wrapf(ErrUnexpectedFunds, "a swap takes exactly one coin, got %q", funds.String())
	}
	paid := funds.Sorted()[0]

	var res SwapResult
	var err error
	switch req.Direction {
	case SwapExactIn:
		res, err = swapExactIn(s, req.Route, paid)
	case SwapExactOut:
		res, err = swapExactOut(s, req.Route, req.Output)
		if err == nil && res.Input.Denom != paid.Denom {
			err = errors.Wrapf(ErrUnexpectedFunds, "route takes %s, got %s", res.Input.Denom, paid.Denom)
		}
	default:
		err = errors.Errorf("unknown swap direction %d", req.Direction)
	}

	if err != nil {
		return nil, err
	}

	if err := checkSlippage(req.Direction, req.Slippage, res); err != nil {
		return nil, err
	}

	if err := funds.Sub(res.Input.Denom, res.Input.Amount); err != nil {
		return nil, err
	}

	if err := funds.Add(res.Output.Denom, res.Output.Amount); err != nil {
		return nil, err
	}

	for _, pair := range req.Route {
		s.SaveReserves(pair, res.reserves[pair])
	}

	resp := &Response{}
	resp.addMessage(Transfer{Outputs: []TransferOutput{{To: ctx.Sender, Coins: funds}}})
	resp.addEvent(Swapped{User: ctx.Sender, Route: req.Route, Input: res.Input, Output: res.Output})
	return resp, nil
}
