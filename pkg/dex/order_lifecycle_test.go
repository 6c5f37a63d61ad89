package dex

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderDepositRounding(t *testing.T) {
	price := MustParseDec("1.5")
	deposit, err := orderDeposit(ethUSDC, Bid, price, u(7))
	require.NoError(t, err)
	assert.Equal(t, NewCoin("usdc", 11).String(), deposit.String())

	refund, err := cancelRefund(OrderKey{Pair: ethUSDC, Direction: Bid, Price: price}, u(7))
	require.NoError(t, err)
	assert.Equal(t, NewCoin("usdc", 10).String(), refund.String())

	deposit, err = orderDeposit(ethUSDC, Ask, price, u(7))
	require.NoError(t, err)
	assert.Equal(t, NewCoin("eth", 7).String(), deposit.String())
}

func TestCreateOrderReturnsExcess(t *testing.T) {
	s := newTestState(t)
	req := CreateOrderRequest{Pair: ethUSDC, Direction: Bid, Price: MustParseDec("1.5"), Amount: u(7)}
	resp, err := BatchUpdateOrders(s, testCtx(alice, NewCoin("usdc", 15)), []CreateOrderRequest{req}, CancelOrders{})
	require.NoError(t, err)

	assert.Equal(t, "4usdc", transferredTo(resp, alice).String())
	submitted := eventsOf[OrderSubmitted](resp)
	require.Len(t, submitted, 1)
	assert.Equal(t, "11usdc", submitted[0].Deposit.String())
}

func TestCreateOrderInsufficientFunds(t *testing.T) {
	s := newTestState(t)
	req := CreateOrderRequest{Pair: ethUSDC, Direction: Bid, Price: MustParseDec("1.5"), Amount: u(7)}
	_, err := BatchUpdateOrders(s, testCtx(alice, NewCoin("usdc", 10)), []CreateOrderRequest{req}, CancelOrders{})
	assert.Equal(t, ErrInsufficientFunds, errors.Cause(err))
}

func TestCreateOrderValidation(t *testing.T) {
	s := newTestState(t)
	funds := NewCoin("usdc", 1000)
	cases := []struct {
		req CreateOrderRequest
		err error
	}{
		{CreateOrderRequest{Pair: PairID{Base: "sol", Quote: "usdc"}, Direction: Bid, Price: MustParseDec("1"), Amount: u(1)}, ErrPairNotFound},
		{CreateOrderRequest{Pair: ethUSDC, Direction: Direction(9), Price: MustParseDec("1"), Amount: u(1)}, ErrInvalidDirection},
		{CreateOrderRequest{Pair: ethUSDC, Direction: Bid, Price: MustParseDec("1"), Amount: u(0)}, ErrZeroAmount},
		{CreateOrderRequest{Pair: ethUSDC, Direction: Bid, Price: Dec{}, Amount: u(1)}, ErrZeroPrice},
	}

	for _, c := range cases {
		_, err := BatchUpdateOrders(s, testCtx(alice, funds), []CreateOrderRequest{c.req}, CancelOrders{})
		assert.Equal(t, c.err, errors.Cause(err))
	}
	assert.Empty(t, s.Incoming())
}

func TestCreateOrderMinSize(t *testing.T) {
	s := newTestState(t)
	params := xykParams("dex/pool/eth-usdc")
	params.MinOrderSize = u(100)
	_, err := UpdatePairs(s, testCtx(testOwner), []PairUpdate{{Pair: ethUSDC, Params: params}})
	require.NoError(t, err)

	req := CreateOrderRequest{Pair: ethUSDC, Direction: Ask, Price: MustParseDec("10"), Amount: u(9)}
	_, err = BatchUpdateOrders(s, testCtx(alice, NewCoin("eth", 9)), []CreateOrderRequest{req}, CancelOrders{})
	assert.Equal(t, ErrOrderTooSmall, errors.Cause(err))

	req.Amount = u(10)
	_, err = BatchUpdateOrders(s, testCtx(alice, NewCoin("eth", 10)), []CreateOrderRequest{req}, CancelOrders{})
	assert.NoError(t, err)
}

func TestCancelAll(t *testing.T) {
	s := newTestState(t)
	placeOrder(t, s, alice, ethUSDC, Bid, "2", 3)
	placeOrder(t, s, alice, ethUSDC, Bid, "2", 2)
	s.drainIncoming()
	require.Len(t, s.OrdersByUser(alice), 2)

	resp, err := BatchUpdateOrders(s, testCtx(alice), nil, CancelOrders{All: true})
	require.NoError(t, err)
	assert.Equal(t, "10usdc", transferredTo(resp, alice).String())
	assert.Len(t, eventsOf[OrderCanceled](resp), 2)
	assert.Empty(t, s.OrdersByUser(alice))
	assert.Empty(t, s.UserOrders(alice))

	bids, _ := s.OrdersByPair(ethUSDC)
	assert.Empty(t, bids)
}

func TestCancelIncoming(t *testing.T) {
	s := newTestState(t)
	id := placeOrder(t, s, alice, ethUSDC, Ask, "2", 3)

	resp, err := BatchUpdateOrders(s, testCtx(alice), nil, CancelOrders{IDs: []uint64{id}})
	require.NoError(t, err)
	assert.Equal(t, "3eth", transferredTo(resp, alice).String())
	assert.Empty(t, s.Incoming())
}

func TestCancelErrors(t *testing.T) {
	s := newTestState(t)
	id := placeOrder(t, s, alice, ethUSDC, Bid, "2", 3)

	_, err := BatchUpdateOrders(s, testCtx(bob), nil, CancelOrders{IDs: []uint64{id}})
	assert.Equal(t, ErrNotOwner, errors.Cause(err))

	_, err = BatchUpdateOrders(s, testCtx(alice), nil, CancelOrders{IDs: []uint64{404}})
	assert.Equal(t, ErrOrderNotFound, errors.Cause(err))

	// a repeated id is not found the second time
	_, err = BatchUpdateOrders(s, testCtx(alice), nil, CancelOrders{IDs: []uint64{id, id}})
	assert.Equal(t, ErrOrderNotFound, errors.Cause(err))
}

func TestCancelRefundFundsReplacement(t *testing.T) {
	s := newTestState(t)
	id := placeOrder(t, s, alice, ethUSDC, Bid, "2", 5)
	s.drainIncoming()

	// the 10usdc refund pays for the replacement order
	req := CreateOrderRequest{Pair: ethUSDC, Direction: Bid, Price: MustParseDec("2.5"), Amount: u(4)}
	resp, err := BatchUpdateOrders(s, testCtx(alice), []CreateOrderRequest{req}, CancelOrders{IDs: []uint64{id}})
	require.NoError(t, err)
	assert.True(t, transferredTo(resp, alice).IsEmpty())

	_, ok := s.Order(id)
	assert.False(t, ok)
	assert.Len(t, s.IncomingByUser(alice), 1)
}

func TestForceCancelOrders(t *testing.T) {
	s := newTestState(t)
	placeOrder(t, s, alice, ethUSDC, Bid, "2", 3)
	s.drainIncoming()
	placeOrder(t, s, bob, btcUSDC, Ask, "5", 1)

	_, err := ForceCancelOrders(s, testCtx(alice))
	assert.Equal(t, ErrUnauthorized, err)

	resp, err := ForceCancelOrders(s, testCtx(testOwner))
	require.NoError(t, err)
	assert.Equal(t, "6usdc", transferredTo(resp, alice).String())
	assert.Equal(t, "1btc", transferredTo(resp, bob).String())
	assert.Empty(t, s.Incoming())
	assert.Empty(t, s.OrdersByUser(alice))
}

func TestBatchUpdatePaused(t *testing.T) {
	s := newTestState(t)
	_, err := SetPaused(s, testCtx(testOwner), true)
	require.NoError(t, err)

	_, err = BatchUpdateOrders(s, testCtx(alice), nil, CancelOrders{All: true})
	assert.Equal(t, ErrPaused, err)
}
