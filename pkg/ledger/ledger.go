// Package ledger keeps the token balances the exchange settles
// against. The exchange never touches balances itself: it returns
// transfer, mint and burn messages which the ledger applies.
package ledger

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	log "github.com/inconshreveable/log15"
	"github.com/left-curve/left-curve-sub002/pkg/consensus"
	"github.com/left-curve/left-curve-sub002/pkg/dex"
	"github.com/left-curve/left-curve-sub002/pkg/store"
	"github.com/pkg/errors"
)

var (
	balancePrefix = []byte{0}
	supplyPrefix  = []byte{1}
)

func balancePath(addr consensus.Addr, denom dex.Denom) []byte {
	return store.Concat(balancePrefix, addr[:], []byte(denom))
}

func accountPath(addr consensus.Addr) []byte {
	return store.Concat(balancePrefix, addr[:])
}

func supplyPath(denom dex.Denom) []byte {
	return store.Concat(supplyPrefix, []byte(denom))
}

// Ledger stores the balance of every account and the total supply
// of every denom.
type Ledger struct {
	kv store.KVStore
}

func New(kv store.KVStore) *Ledger {
	return &Ledger{kv: kv}
}

func (l *Ledger) get(key []byte) *uint256.Int {
	b := l.kv.Get(key)
	if b == nil {
		return new(uint256.Int)
	}

	var v uint256.Int
	err := rlp.DecodeBytes(b, &v)
	if err != nil {
		log.Error("error decoding amount", "err", err)
		return new(uint256.Int)
	}
	return &v
}

func (l *Ledger) set(key []byte, v *uint256.Int) {
	if v.IsZero() {
		l.kv.Delete(key)
		return
	}

	b, err := rlp.EncodeToBytes(v)
	if err != nil {
		// should not happen
		panic(err)
	}
	l.kv.Set(key, b)
}

func (l *Ledger) Balance(addr consensus.Addr, denom dex.Denom) *uint256.Int {
	return l.get(balancePath(addr, denom))
}

// Balances returns every non-zero balance of addr.
func (l *Ledger) Balances(addr consensus.Addr) dex.Coins {
	prefix := accountPath(addr)
	r := make(dex.Coins)
	for it := l.kv.Iterator(prefix, store.Ascending); it.Valid(); it.Next() {
		denom := dex.Denom(it.Key()[len(prefix):])
		r[denom] = l.get(it.Key())
	}
	return r
}

// Supply implements dex.Bank.
func (l *Ledger) Supply(denom dex.Denom) *uint256.Int {
	return l.get(supplyPath(denom))
}

func (l *Ledger) credit(addr consensus.Addr, coins dex.Coins) error {
	for _, c := range coins.Sorted() {
		v, overflow := new(uint256.Int).AddOverflow(l.Balance(addr, c.Denom), c.Amount)
		if overflow {
			return errors.Wrapf(dex.ErrOverflow, "balance of %s in %s", addr, c.Denom)
		}
		l.set(balancePath(addr, c.Denom), v)
	}
	return nil
}

func (l *Ledger) debit(addr consensus.Addr, coins dex.Coins) error {
	for _, c := range coins.Sorted() {
		have := l.Balance(addr, c.Denom)
		if have.Lt(c.Amount) {
			return errors.Wrapf(dex.ErrInsufficientFunds, "%s has %s%s, needs %s", addr, have.Dec(), c.Denom, c)
		}
		l.set(balancePath(addr, c.Denom), new(uint256.Int).Sub(have, c.Amount))
	}
	return nil
}

// Transfer moves coins from one account to another. On error the
// ledger may be partially written and the caller must discard it.
func (l *Ledger) Transfer(from, to consensus.Addr, coins dex.Coins) error {
	if err := l.debit(from, coins); err != nil {
		return err
	}
	return l.credit(to, coins)
}

func (l *Ledger) Mint(to consensus.Addr, coins dex.Coins) error {
	for _, c := range coins.Sorted() {
		v, overflow := new(uint256.Int).AddOverflow(l.Supply(c.Denom), c.Amount)
		if overflow {
			return errors.Wrapf(dex.ErrOverflow, "supply of %s", c.Denom)
		}
		l.set(supplyPath(c.Denom), v)
	}
	return l.credit(to, coins)
}

func (l *Ledger) Burn(from consensus.Addr, coins dex.Coins) error {
	if err := l.debit(from, coins); err != nil {
		return err
	}

	for _, c := range coins.Sorted() {
		// the supply is at least what any account holds.
		l.set(supplyPath(c.Denom), new(uint256.Int).Sub(l.Supply(c.Denom), c.Amount))
	}
	return nil
}

// Apply executes the messages returned by the exchange contract in
// order. Transfers are paid out of the contract's balance.
func (l *Ledger) Apply(contract consensus.Addr, msgs []dex.Message) error {
	for _, m := range msgs {
		switch m := m.(type) {
		case dex.Transfer:
			for _, o := range m.Outputs {
				if err := l.Transfer(contract, o.To, o.Coins); err != nil {
					return errors.Wrapf(err, "transfer to %s", o.To)
				}
			}
		case dex.Mint:
			if err := l.Mint(m.To, m.Coins); err != nil {
				return errors.Wrapf(err, "mint to %s", m.To)
			}
		case dex.Burn:
			if err := l.Burn(m.From, m.Coins); err != nil {
				return errors.Wrapf(err, "burn from %s", m.From)
			}
		default:
			return errors.Errorf("unknown message %T", m)
		}
	}
	return nil
}
