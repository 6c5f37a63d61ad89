package dex

import (
	"github.com/holiman/uint256"
	"github.com/left-curve/left-curve-sub002/pkg/consensus"
)

// Context is the environment an operation executes in.
type Context struct {
	Block    consensus.BlockInfo
	Contract consensus.Addr // the exchange's own address, holds all deposits
	Owner    consensus.Addr // may update pairs and pause trading
	Sender   consensus.Addr
	Funds    Coins // coins the sender attached, already held by Contract
}

// Bank is the read interface of the token ledger.
type Bank interface {
	Supply(denom Denom) *uint256.Int
}
