package ledger

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/left-curve/left-curve-sub002/pkg/consensus"
	"github.com/left-curve/left-curve-sub002/pkg/dex"
	"github.com/left-curve/left-curve-sub002/pkg/store"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice    = consensus.NamedAddr("alice")
	bob      = consensus.NamedAddr("bob")
	contract = consensus.NamedAddr("dex")
)

func coins(t *testing.T, cs ...dex.Coin) dex.Coins {
	c, err := dex.NewCoins(cs...)
	require.NoError(t, err)
	return c
}

func TestMintTransferBurn(t *testing.T) {
	l := New(store.NewMemory())
	require.NoError(t, l.Mint(alice, coins(t, dex.NewCoin("usdc", 100), dex.NewCoin("eth", 2))))
	assert.Equal(t, uint64(100), l.Supply("usdc").Uint64())
	assert.Equal(t, "2eth,100usdc", l.Balances(alice).String())

	require.NoError(t, l.Transfer(alice, bob, coins(t, dex.NewCoin("usdc", 40))))
	assert.Equal(t, uint64(60), l.Balance(alice, "usdc").Uint64())
	assert.Equal(t, uint64(40), l.Balance(bob, "usdc").Uint64())

	err := l.Transfer(bob, alice, coins(t, dex.NewCoin("usdc", 41)))
	assert.Equal(t, dex.ErrInsufficientFunds, errors.Cause(err))

	require.NoError(t, l.Burn(bob, coins(t, dex.NewCoin("usdc", 40))))
	assert.Equal(t, uint64(60), l.Supply("usdc").Uint64())
	assert.True(t, l.Balances(bob).IsEmpty())
}

func TestApply(t *testing.T) {
	l := New(store.NewMemory())
	require.NoError(t, l.Mint(contract, coins(t, dex.NewCoin("usdc", 10))))

	msgs := []dex.Message{
		dex.Transfer{Outputs: []dex.TransferOutput{
			{To: alice, Coins: coins(t, dex.NewCoin("usdc", 7))},
			{To: bob, Coins: coins(t, dex.NewCoin("usdc", 3))},
		}},
		dex.Mint{To: alice, Coins: dex.Coins{"dex/pool/eth-usdc": uint256.NewInt(5)}},
		dex.Burn{From: alice, Coins: dex.Coins{"dex/pool/eth-usdc": uint256.NewInt(2)}},
	}
	require.NoError(t, l.Apply(contract, msgs))

	assert.True(t, l.Balance(contract, "usdc").IsZero())
	assert.Equal(t, uint64(7), l.Balance(alice, "usdc").Uint64())
	assert.Equal(t, uint64(3), l.Balance(bob, "usdc").Uint64())
	assert.Equal(t, uint64(3), l.Supply("dex/pool/eth-usdc").Uint64())

	// the contract can not pay out more than it holds
	err := l.Apply(contract, []dex.Message{
		dex.Transfer{Outputs: []dex.TransferOutput{{To: alice, Coins: coins(t, dex.NewCoin("usdc", 1))}}},
	})
	assert.Equal(t, dex.ErrInsufficientFunds, errors.Cause(err))
}
