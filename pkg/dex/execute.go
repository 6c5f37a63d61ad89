package dex

import (
	"github.com/pkg/errors"
)

// Msg is a message executed by the exchange.
type Msg interface {
	isMsg()
}

type UpdatePairsMsg struct {
	Updates []PairUpdate
}

type BatchUpdateOrdersMsg struct {
	Creates []CreateOrderRequest
	Cancels CancelOrders
}

type ProvideLiquidityMsg struct {
	Pair PairID
}

type WithdrawLiquidityMsg struct {
	Pair PairID
}

type SwapMsg struct {
	Request SwapRequest
}

type SetPausedMsg struct {
	Paused bool
}

type ForceCancelOrdersMsg struct{}

func (UpdatePairsMsg) isMsg()       {}
func (BatchUpdateOrdersMsg) isMsg() {}
func (ProvideLiquidityMsg) isMsg()  {}
func (WithdrawLiquidityMsg) isMsg() {}
func (SwapMsg) isMsg()              {}
func (SetPausedMsg) isMsg()         {}
func (ForceCancelOrdersMsg) isMsg() {}

// Execute executes a message sent by ctx.Sender.
//
// On error the caller must discard every write made to s: the
// message may have failed after changing some state.
func Execute(s *State, bank Bank, ctx Context, msg Msg) (*Response, error) {
	switch m := msg.(type) {
	case UpdatePairsMsg:
		return UpdatePairs(s, ctx, m.Updates)
	case BatchUpdateOrdersMsg:
		return BatchUpdateOrders(s, ctx, m.Creates, m.Cancels)
	case ProvideLiquidityMsg:
		return ProvideLiquidity(s, bank, ctx, m.Pair)
	case WithdrawLiquidityMsg:
		return WithdrawLiquidity(s, bank, ctx, m.Pair)
	case SwapMsg:
		return Swap(s, ctx, m.Request)
	case SetPausedMsg:
		return SetPaused(s, ctx, m.Paused)
	case ForceCancelOrdersMsg:
		return ForceCancelOrders(s, ctx)
	default:
		return nil, errors.Errorf("unknown message %T", msg)
	}
}

func checkNoFunds(ctx Context) error {
	if !ctx.Funds.IsEmpty() {
		return errors.Wrapf(ErrUnexpectedFunds, "%s", ctx.Funds)
	}
	return nil
}

// UpdatePairs creates or updates pairs. Only the owner may call it.
func UpdatePairs(s *State, ctx Context, updates []PairUpdate) (*Response, error) {
	if ctx.Sender != ctx.Owner {
		return nil, ErrUnauthorized
	}

	if err := checkNoFunds(ctx); err != nil {
		return nil, err
	}

	for _, u := range updates {
		if err := u.Pair.Validate(); err != nil {
			return nil, err
		}

		if err := u.Params.Validate(); err != nil {
			return nil, errors.Wrapf(err, "pair %s", u.Pair)
		}
	}

	resp := &Response{}
	for _, u := range updates {
		s.SavePair(u.Pair, u.Params)
		resp.addEvent(PairUpdated{Pair: u.Pair})
	}
	return resp, nil
}

// SetPaused pauses or resumes trading. Only the owner may call it.
func SetPaused(s *State, ctx Context, paused bool) (*Response, error) {
	if ctx.Sender != ctx.Owner {
		return nil, ErrUnauthorized
	}

	if err := checkNoFunds(ctx); err != nil {
		return nil, err
	}

	s.SetPaused(paused)
	resp := &Response{}
	resp.addEvent(PausedChanged{Paused: paused})
	return resp, nil
}
