package dex

import (
	"github.com/holiman/uint256"
	"github.com/left-curve/left-curve-sub002/pkg/consensus"
	"github.com/pkg/errors"
)

// UserOrders returns the resting and incoming orders of a user in
// priority order.
func (s *State) UserOrders(user consensus.Addr) []OrderEntry {
	r := s.OrdersByUser(user)
	r = append(r, s.IncomingByUser(user)...)
	sortOrders(r)
	return r
}

// ReflectCurve returns the orders the pool of a pair would place for
// its current reserves.
func (s *State) ReflectCurve(pair PairID) (bids, asks []Level, err error) {
	params := s.Pair(pair)
	if params == nil {
		return nil, nil, errors.Wrapf(ErrPairNotFound, "pair %s", pair)
	}
	return params.Pool().Reflect(s.Reserves(pair))
}

// SimulateProvideLiquidity returns the LP tokens a deposit would
// mint.
func SimulateProvideLiquidity(s *State, bank Bank, pair PairID, base, quote *uint256.Int) (*uint256.Int, error) {
	params := s.Pair(pair)
	if params == nil {
		return nil, errors.Wrapf(ErrPairNotFound, "pair %s", pair)
	}

	_, mint, err := simulateProvide(s, bank, pair, params, base, quote)
	return mint, err
}

// SimulateWithdrawLiquidity returns the assets burning LP tokens
// would return.
func SimulateWithdrawLiquidity(s *State, bank Bank, pair PairID, burn *uint256.Int) (Coins, error) {
	params := s.Pair(pair)
	if params == nil {
		return nil, errors.Wrapf(ErrPairNotFound, "pair %s", pair)
	}

	_, refund, err := simulateWithdraw(s, bank, pair, params, burn)
	return refund, err
}
