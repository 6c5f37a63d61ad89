package dex

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// ProvideLiquidity deposits the attached base and quote coins into
// the pool of a pair and mints LP tokens to the sender.
func ProvideLiquidity(s *State, bank Bank, ctx Context, pair PairID) (*Response, error) {
	if s.Paused() {
		return nil, ErrPaused
	}

	params := s.Pair(pair)
	if params == nil {
		return nil, errors.Wrapf(ErrPairNotFound, "pair %s", pair)
	}

	funds := ctx.Funds.Clone()
	base := funds.Take(pair.Base)
	quote := funds.Take(pair.Quote)
	if !funds.IsEmpty() {
		return nil, errors.Wrapf(ErrUnexpectedFunds, "%s; expecting %s and %s", funds, pair.Base, pair.Quote)
	}

	if base.IsZero() && quote.IsZero() {
		return nil, ErrZeroAmount
	}

	reserves, mint, err := simulateProvide(s, bank, pair, params, base, quote)
	if err != nil {
		return nil, err
	}

	supply := bank.Supply(params.LPDenom)
	s.SaveReserves(pair, reserves)

	resp := &Response{}
	resp.addMessage(Mint{To: ctx.Sender, Coins: Coins{params.LPDenom: mint}})
	if supply.IsZero() {
		resp.addMessage(Mint{To: ctx.Contract, Coins: Coins{params.LPDenom: uint256.NewInt(MinimumLiquidity)}})
	}

	deposit, _ := NewCoins(Coin{Denom: pair.Base, Amount: base}, Coin{Denom: pair.Quote, Amount: quote})
	resp.addEvent(LiquidityProvided{User: ctx.Sender, Pair: pair, Deposit: deposit, Minted: mint.Clone()})
	return resp, nil
}

func simulateProvide(s *State, bank Bank, pair PairID, params *PairParams, base, quote *uint256.Int) (Reserves, *uint256.Int, error) {
	reserves := s.Reserves(pair)
	supply := bank.Supply(params.LPDenom)
	mint, err := params.Pool().AddLiquidity(reserves, supply, base, quote)
	if err != nil {
		return reserves, nil, err
	}

	if mint.IsZero() {
		return reserves, nil, errors.Wrap(ErrZeroAmount, "deposit too small to mint LP tokens")
	}

	newBase, err := add(reserves.Base, base)
	if err != nil {
		return reserves, nil, err
	}

	newQuote, err := add(reserves.Quote, quote)
	if err != nil {
		return reserves, nil, err
	}
	return Reserves{Base: newBase, Quote: newQuote}, mint, nil
}

// WithdrawLiquidity burns the attached LP tokens and returns the
// sender's share of the reserves.
func WithdrawLiquidity(s *State, bank Bank, ctx Context, pair PairID) (*Response, error) {
	params := s.Pair(pair)
	if params == nil {
		return nil, errors.Wrapf(ErrPairNotFound, "pair %s", pair)
	}

	funds := ctx.Funds.Clone()
	burn := funds.Take(params.LPDenom)
	if !funds.IsEmpty() {
		return nil, errors.Wrapf(ErrUnexpectedFunds, "%s; expecting %s", funds, params.LPDenom)
	}

	reserves, refund, err := simulateWithdraw(s, bank, pair, params, burn)
	if err != nil {
		return nil, err
	}

	s.SaveReserves(pair, reserves)

	resp := &Response{}
	resp.addMessage(Burn{From: ctx.Contract, Coins: Coins{params.LPDenom: burn}})
	if !refund.IsEmpty() {
		resp.addMessage(Transfer{Outputs: []TransferOutput{{To: ctx.Sender, Coins: refund.Clone()}}})
	}

	resp.addEvent(LiquidityWithdrawn{User: ctx.Sender, Pair: pair, Burned: burn.Clone(), Refund: refund})
	return resp, nil
}

func simulateWithdraw(s *State, bank Bank, pair PairID, params *PairParams, burn *uint256.Int) (Reserves, Coins, error) {
	reserves := s.Reserves(pair)
	supply := bank.Supply(params.LPDenom)
	base, quote, err := params.Pool().RemoveLiquidity(reserves, supply, burn)
	if err != nil {
		return reserves, nil, err
	}

	newReserves := Reserves{
		Base:  new(uint256.Int).Sub(reserves.Base, base),
		Quote: new(uint256.Int).Sub(reserves.Quote, quote),
	}

	refund, err := NewCoins(Coin{Denom: pair.Base, Amount: base}, Coin{Denom: pair.Quote, Amount: quote})
	if err != nil {
		return reserves, nil, err
	}
	return newReserves, refund, nil
}
