package chain

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/left-curve/left-curve-sub002/pkg/consensus"
	"github.com/left-curve/left-curve-sub002/pkg/dex"
	"github.com/pkg/errors"
)

type TxnType uint8

const (
	UpdatePairs TxnType = iota
	BatchUpdateOrders
	ProvideLiquidity
	WithdrawLiquidity
	Swap
	SetPaused
	ForceCancelOrders
)

// Txn is a transaction sent to the exchange. Funds are moved from
// the sender to the exchange before the message executes.
//
// Signatures are checked before a transaction reaches the chain, the
// sender is trusted here.
type Txn struct {
	T      TxnType
	Sender consensus.Addr
	Nonce  uint64
	Funds  dex.Coins
	Data   []byte
}

func (t *Txn) Bytes() []byte {
	b, err := rlp.EncodeToBytes(t)
	if err != nil {
		// should not happen
		panic(err)
	}
	return b
}

func DecodeTxn(b []byte) (*Txn, error) {
	var t Txn
	err := rlp.DecodeBytes(b, &t)
	if err != nil {
		return nil, err
	}

	if t.Funds == nil {
		t.Funds = make(dex.Coins)
	}
	return &t, nil
}

func msgType(msg dex.Msg) (TxnType, error) {
	switch msg.(type) {
	case dex.UpdatePairsMsg:
		return UpdatePairs, nil
	case dex.BatchUpdateOrdersMsg:
		return BatchUpdateOrders, nil
	case dex.ProvideLiquidityMsg:
		return ProvideLiquidity, nil
	case dex.WithdrawLiquidityMsg:
		return WithdrawLiquidity, nil
	case dex.SwapMsg:
		return Swap, nil
	case dex.SetPausedMsg:
		return SetPaused, nil
	case dex.ForceCancelOrdersMsg:
		return ForceCancelOrders, nil
	default:
		return 0, errors.Errorf("unknown message %T", msg)
	}
}

// Msg decodes the message carried by the transaction.
func (t *Txn) Msg() (dex.Msg, error) {
	var err error
	var msg dex.Msg
	switch t.T {
	case UpdatePairs:
		var m dex.UpdatePairsMsg
		err = rlp.DecodeBytes(t.Data, &m)
		msg = m
	case BatchUpdateOrders:
		var m dex.BatchUpdateOrdersMsg
		err = rlp.DecodeBytes(t.Data, &m)
		msg = m
	case ProvideLiquidity:
		var m dex.ProvideLiquidityMsg
		err = rlp.DecodeBytes(t.Data, &m)
		msg = m
	case WithdrawLiquidity:
		var m dex.WithdrawLiquidityMsg
		err = rlp.DecodeBytes(t.Data, &m)
		msg = m
	case Swap:
		var m dex.SwapMsg
		err = rlp.DecodeBytes(t.Data, &m)
		msg = m
	case SetPaused:
		var m dex.SetPausedMsg
		err = rlp.DecodeBytes(t.Data, &m)
		msg = m
	case ForceCancelOrders:
		msg = dex.ForceCancelOrdersMsg{}
	default:
		return nil, errors.Errorf("unknown txn type %d", t.T)
	}

	if err != nil {
		return nil, errors.Wrapf(err, "decode txn type %d", t.T)
	}
	return msg, nil
}

// MakeTxn encodes msg into a transaction.
func MakeTxn(sender consensus.Addr, nonce uint64, funds dex.Coins, msg dex.Msg) ([]byte, error) {
	typ, err := msgType(msg)
	if err != nil {
		return nil, err
	}

	var data []byte
	if typ != ForceCancelOrders {
		data, err = rlp.EncodeToBytes(msg)
		if err != nil {
			return nil, err
		}
	}

	if funds == nil {
		funds = make(dex.Coins)
	}

	txn := &Txn{T: typ, Sender: sender, Nonce: nonce, Funds: funds, Data: data}
	return txn.Bytes(), nil
}
