package dex

import (
	"encoding/binary"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/left-curve/left-curve-sub002/pkg/consensus"
	"github.com/pkg/errors"
)

// Direction is the side of an order.
type Direction uint8

const (
	Bid Direction = iota
	Ask
)

func (d Direction) String() string {
	switch d {
	case Bid:
		return "bid"
	case Ask:
		return "ask"
	default:
		return fmt.Sprintf("direction(%d)", uint8(d))
	}
}

func (d Direction) Valid() bool {
	return d == Bid || d == Ask
}

// OrderID is the id of an order as stored in the order keys.
//
// Ids are drawn from a single counter. A bid stores the bitwise NOT
// of the counter value: bids are scanned from the largest key down,
// so among bids of equal price the earliest (smallest counter value,
// largest inverted id) comes first. Asks are scanned from the
// smallest key up and store the counter value as is.
type OrderID uint64

// StoredOrderID returns the id stored for the raw counter value n.
func StoredOrderID(d Direction, n uint64) OrderID {
	if d == Bid {
		return OrderID(^n)
	}
	return OrderID(n)
}

// Raw returns the counter value the id was drawn from.
func (id OrderID) Raw(d Direction) uint64 {
	if d == Bid {
		return ^uint64(id)
	}
	return uint64(id)
}

func (id OrderID) Bytes() []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(id))
	return b[:]
}

// PairID identifies a trading pair.
type PairID struct {
	Base  Denom // the unit of the order's amount
	Quote Denom // the unit of the order's price
}

func (p PairID) String() string {
	return fmt.Sprintf("%s/%s", p.Base, p.Quote)
}

func (p PairID) Validate() error {
	if err := p.Base.Validate(); err != nil {
		return err
	}

	if err := p.Quote.Validate(); err != nil {
		return err
	}

	if p.Base == p.Quote {
		return errors.Errorf("pair %s has identical base and quote", p)
	}
	return nil
}

// Encode returns the key encoding of the pair, each denom prefixed
// by its length.
func (p PairID) Encode() []byte {
	b := make([]byte, 0, 2+len(p.Base)+len(p.Quote))
	b = append(b, byte(len(p.Base)))
	b = append(b, p.Base...)
	b = append(b, byte(len(p.Quote)))
	b = append(b, p.Quote...)
	return b
}

// DecodePairID decodes a pair from the front of b and returns the
// number of bytes used.
func DecodePairID(b []byte) (PairID, int, error) {
	var p PairID
	if len(b) < 1 || len(b) < 1+int(b[0]) {
		return p, 0, errors.New("pair key too short")
	}

	n := int(b[0])
	p.Base = Denom(b[1 : 1+n])
	rest := b[1+n:]
	if len(rest) < 1 || len(rest) < 1+int(rest[0]) {
		return p, 0, errors.New("pair key too short")
	}

	m := int(rest[0])
	p.Quote = Denom(rest[1 : 1+m])
	return p, 2 + n + m, nil
}

// OrderKey uniquely identifies a resting or incoming order and
// determines its matching priority.
type OrderKey struct {
	Pair      PairID
	Direction Direction
	Price     Dec
	ID        OrderID
}

func (k OrderKey) String() string {
	return fmt.Sprintf("%s:%s@%s#%d", k.Pair, k.Direction, k.Price, k.ID.Raw(k.Direction))
}

// Encode returns pair | direction | price | id. Prices are encoded
// big endian so the byte order of the keys follows the price order.
func (k OrderKey) Encode() []byte {
	price := k.Price.Bytes32()
	b := k.Pair.Encode()
	b = append(b, byte(k.Direction))
	b = append(b, price[:]...)
	b = append(b, k.ID.Bytes()...)
	return b
}

func DecodeOrderKey(b []byte) (OrderKey, error) {
	var k OrderKey
	pair, n, err := DecodePairID(b)
	if err != nil {
		return k, err
	}

	rest := b[n:]
	if len(rest) != 1+32+8 {
		return k, errors.Errorf("order key has invalid length %d", len(b))
	}

	k.Pair = pair
	k.Direction = Direction(rest[0])
	if !k.Direction.Valid() {
		return k, errors.Errorf("order key has invalid direction %d", rest[0])
	}

	k.Price = decFromBytes32(rest[1:33])
	k.ID = OrderID(binary.BigEndian.Uint64(rest[33:]))
	return k, nil
}

// Order is a limit order. Amount is the original size in the base
// denom; Remaining only ever decreases and an order with nothing
// remaining is removed from storage.
type Order struct {
	User      consensus.Addr
	Amount    *uint256.Int
	Remaining *uint256.Int
	CreatedAt uint64 // block height
}

func (o Order) Filled() *uint256.Int {
	return new(uint256.Int).Sub(o.Amount, o.Remaining)
}

// OrderEntry is an order together with its key.
type OrderEntry struct {
	Key   OrderKey
	Order Order
}
