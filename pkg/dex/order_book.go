package dex

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/left-curve/left-curve-sub002/pkg/consensus"
	"github.com/left-curve/left-curve-sub002/pkg/store"
	log "github.com/inconshreveable/log15"
)

// The order book keeps resting orders under
//
//	orders | pair | direction | price | stored id  -> Order
//
// with two indices keyed by the raw (counter) id:
//
//	order_ids | raw id         -> order key
//	user_orders | user | raw id -> order key
//
// Orders submitted in the current block wait in the incoming queue
//
//	incoming | user | raw id -> (order key, Order)
//	incoming_ids | raw id    -> user
//
// until the end of block moves them into the book.

func decodeOrder(b []byte) (Order, bool) {
	var o Order
	err := rlp.DecodeBytes(b, &o)
	if err != nil {
		log.Error("error decoding order", "err", err)
		return o, false
	}
	return o, true
}

func (s *State) saveOrder(key OrderKey, order Order) {
	raw := OrderID(key.ID.Raw(key.Direction))
	k := key.Encode()
	s.kv.Set(orderPath(key), encode(&order))
	s.kv.Set(orderIDPath(raw), k)
	s.kv.Set(userOrderPath(order.User, raw), k)
}

func (s *State) removeOrder(key OrderKey, user consensus.Addr) {
	raw := OrderID(key.ID.Raw(key.Direction))
	s.kv.Delete(orderPath(key))
	s.kv.Delete(orderIDPath(raw))
	s.kv.Delete(userOrderPath(user, raw))
}

func (s *State) orderAt(keyBytes []byte) (OrderEntry, bool) {
	key, err := DecodeOrderKey(keyBytes)
	if err != nil {
		log.Error("error decoding order key", "err", err)
		return OrderEntry{}, false
	}

	b := s.kv.Get(store.Concat(orderPrefix, keyBytes))
	if b == nil {
		return OrderEntry{}, false
	}

	o, ok := decodeOrder(b)
	if !ok {
		return OrderEntry{}, false
	}
	return OrderEntry{Key: key, Order: o}, true
}

// Order returns the resting order with the raw id.
func (s *State) Order(id uint64) (OrderEntry, bool) {
	k := s.kv.Get(orderIDPath(OrderID(id)))
	if k == nil {
		return OrderEntry{}, false
	}
	return s.orderAt(k)
}

// OrdersByUser returns the resting orders of a user, ordered by raw
// id.
func (s *State) OrdersByUser(user consensus.Addr) []OrderEntry {
	var r []OrderEntry
	for it := s.kv.Iterator(userOrdersPath(user), store.Ascending); it.Valid(); it.Next() {
		if e, ok := s.orderAt(it.Value()); ok {
			r = append(r, e)
		}
	}
	return r
}

// OrdersByPair returns the resting orders of a pair, each side in
// matching priority order.
func (s *State) OrdersByPair(pair PairID) (bids, asks []OrderEntry) {
	for it := s.orderIterator(pair, Bid); it.Valid(); it.Next() {
		bids = append(bids, it.Entry())
	}

	for it := s.orderIterator(pair, Ask); it.Valid(); it.Next() {
		asks = append(asks, it.Entry())
	}
	return
}

// BestPrices returns the best resting bid and ask prices of a pair.
func (s *State) BestPrices(pair PairID) (bid, ask *Dec) {
	if it := s.orderIterator(pair, Bid); it.Valid() {
		p := it.Entry().Key.Price
		bid = &p
	}

	if it := s.orderIterator(pair, Ask); it.Valid() {
		p := it.Entry().Key.Price
		ask = &p
	}
	return
}

// orderIterator walks one side of a pair's book in priority order:
// bids from the highest key down, asks from the lowest key up.
type orderIterator struct {
	it    store.Iterator
	entry OrderEntry
	valid bool
}

func (s *State) orderIterator(pair PairID, d Direction) *orderIterator {
	order := store.Ascending
	if d == Bid {
		order = store.Descending
	}

	it := &orderIterator{it: s.kv.Iterator(pairSidePath(pair, d), order)}
	it.load()
	return it
}

func (o *orderIterator) load() {
	for ; o.it.Valid(); o.it.Next() {
		key, err := DecodeOrderKey(o.it.Key()[len(orderPrefix):])
		if err != nil {
			log.Error("error decoding order key", "err", err)
			continue
		}

		order, ok := decodeOrder(o.it.Value())
		if !ok {
			continue
		}

		o.entry = OrderEntry{Key: key, Order: order}
		o.valid = true
		return
	}
	o.valid = false
}

func (o *orderIterator) Valid() bool {
	return o.valid
}

func (o *orderIterator) Entry() OrderEntry {
	return o.entry
}

func (o *orderIterator) Next() {
	if !o.valid {
		return
	}

	o.it.Next()
	o.load()
}

type incomingEntry struct {
	Key   []byte
	Order Order
}

func (s *State) saveIncoming(key OrderKey, order Order) {
	raw := OrderID(key.ID.Raw(key.Direction))
	s.kv.Set(incomingPath(order.User, raw), encode(&incomingEntry{Key: key.Encode(), Order: order}))
	s.kv.Set(incomingIDPath(raw), order.User[:])
}

func (s *State) removeIncoming(user consensus.Addr, raw OrderID) {
	s.kv.Delete(incomingPath(user, raw))
	s.kv.Delete(incomingIDPath(raw))
}

func decodeIncoming(b []byte) (OrderEntry, bool) {
	var e incomingEntry
	err := rlp.DecodeBytes(b, &e)
	if err != nil {
		log.Error("error decoding incoming order", "err", err)
		return OrderEntry{}, false
	}

	key, err := DecodeOrderKey(e.Key)
	if err != nil {
		log.Error("error decoding incoming order key", "err", err)
		return OrderEntry{}, false
	}
	return OrderEntry{Key: key, Order: e.Order}, true
}

// IncomingOrder returns the order with the raw id submitted in the
// current block.
func (s *State) IncomingOrder(id uint64) (OrderEntry, bool) {
	u := s.kv.Get(incomingIDPath(OrderID(id)))
	if len(u) != len(consensus.Addr{}) {
		return OrderEntry{}, false
	}

	var user consensus.Addr
	copy(user[:], u)
	b := s.kv.Get(incomingPath(user, OrderID(id)))
	if b == nil {
		return OrderEntry{}, false
	}
	return decodeIncoming(b)
}

// IncomingByUser returns the orders the user submitted in the current
// block, ordered by raw id.
func (s *State) IncomingByUser(user consensus.Addr) []OrderEntry {
	var r []OrderEntry
	for it := s.kv.Iterator(userIncomingPath(user), store.Ascending); it.Valid(); it.Next() {
		if e, ok := decodeIncoming(it.Value()); ok {
			r = append(r, e)
		}
	}
	return r
}

// Incoming returns every order submitted in the current block.
func (s *State) Incoming() []OrderEntry {
	var r []OrderEntry
	for it := s.kv.Iterator(incomingPrefix, store.Ascending); it.Valid(); it.Next() {
		if e, ok := decodeIncoming(it.Value()); ok {
			r = append(r, e)
		}
	}
	return r
}

// drainIncoming moves every incoming order into the book and returns
// the pairs that received orders, in canonical order.
func (s *State) drainIncoming() []PairID {
	entries := s.Incoming()
	seen := make(map[PairID]bool)
	var pairs []PairID
	for _, e := range entries {
		raw := OrderID(e.Key.ID.Raw(e.Key.Direction))
		s.removeIncoming(e.Order.User, raw)
		s.saveOrder(e.Key, e.Order)
		if !seen[e.Key.Pair] {
			seen[e.Key.Pair] = true
			pairs = append(pairs, e.Key.Pair)
		}
	}

	sortPairs(pairs)
	return pairs
}
