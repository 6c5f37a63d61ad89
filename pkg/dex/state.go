package dex

import (
	"github.com/ethereum/go-ethereum/rlp"
	lru "github.com/hashicorp/golang-lru"
	"github.com/holiman/uint256"
	"github.com/left-curve/left-curve-sub002/pkg/consensus"
	"github.com/left-curve/left-curve-sub002/pkg/store"
	log "github.com/inconshreveable/log15"
)

const pairCacheSize = 256

var (
	pairPrefix        = []byte{0}
	reservePrefix     = []byte{1}
	orderPrefix       = []byte{2}
	orderIDPrefix     = []byte{3}
	userOrderPrefix   = []byte{4}
	incomingPrefix    = []byte{5}
	incomingIDPrefix  = []byte{6}
	nextOrderIDKey    = []byte{7}
	pausedKey         = []byte{8}
	firstOrderCounter = uint64(1)
)

func pairPath(pair PairID) []byte {
	return store.Concat(pairPrefix, pair.Encode())
}

func reservePath(pair PairID) []byte {
	return store.Concat(reservePrefix, pair.Encode())
}

func orderPath(key OrderKey) []byte {
	return store.Concat(orderPrefix, key.Encode())
}

func pairSidePath(pair PairID, d Direction) []byte {
	return store.Concat(orderPrefix, pair.Encode(), []byte{byte(d)})
}

func orderIDPath(id OrderID) []byte {
	return store.Concat(orderIDPrefix, id.Bytes())
}

func userOrderPath(user consensus.Addr, id OrderID) []byte {
	return store.Concat(userOrderPrefix, user[:], id.Bytes())
}

func userOrdersPath(user consensus.Addr) []byte {
	return store.Concat(userOrderPrefix, user[:])
}

func incomingPath(user consensus.Addr, id OrderID) []byte {
	return store.Concat(incomingPrefix, user[:], id.Bytes())
}

func userIncomingPath(user consensus.Addr) []byte {
	return store.Concat(incomingPrefix, user[:])
}

func incomingIDPath(id OrderID) []byte {
	return store.Concat(incomingIDPrefix, id.Bytes())
}

// pairCache caches decoded pair params by the hash of their
// encoding, so a stale entry can never be returned for new bytes.
var pairCache *lru.Cache

func init() {
	var err error
	pairCache, err = lru.New(pairCacheSize)
	if err != nil {
		panic(err)
	}
}

// State is the exchange state, stored in a key-value store.
//
// The store is the only place state lives: running an operation
// against a copy of the store and discarding the copy on error rolls
// everything back, including the order id counter.
type State struct {
	kv        store.KVStore
	idCounter store.Counter
}

func NewState(kv store.KVStore) *State {
	return &State{kv: kv, idCounter: store.NewCounter(nextOrderIDKey, firstOrderCounter)}
}

func encode(v interface{}) []byte {
	b, err := rlp.EncodeToBytes(v)
	if err != nil {
		// values are constructed by us, encoding should not fail.
		panic(err)
	}
	return b
}

// Pair returns the params of a pair, or nil if the pair does not
// exist.
func (s *State) Pair(pair PairID) *PairParams {
	b := s.kv.Get(pairPath(pair))
	if b == nil {
		return nil
	}

	h := consensus.SHA3(b)
	if v, ok := pairCache.Get(h); ok {
		p := v.(PairParams)
		p.MinOrderSize = p.MinOrderSize.Clone()
		return &p
	}

	var p PairParams
	err := rlp.DecodeBytes(b, &p)
	if err != nil {
		log.Error("error decoding pair params", "pair", pair, "err", err)
		return nil
	}

	pairCache.Add(h, p)
	c := p
	c.MinOrderSize = p.MinOrderSize.Clone()
	return &c
}

func (s *State) SavePair(pair PairID, p PairParams) {
	if p.MinOrderSize == nil {
		p.MinOrderSize = new(uint256.Int)
	}
	s.kv.Set(pairPath(pair), encode(&p))
}

// Pairs returns every pair, sorted by base then quote denom.
func (s *State) Pairs() []PairID {
	var r []PairID
	for it := s.kv.Iterator(pairPrefix, store.Ascending); it.Valid(); it.Next() {
		pair, _, err := DecodePairID(it.Key()[len(pairPrefix):])
		if err != nil {
			log.Error("error decoding pair key", "err", err)
			continue
		}
		r = append(r, pair)
	}

	sortPairs(r)
	return r
}

// Reserves are the passive pool balances of a pair.
type Reserves struct {
	Base  *uint256.Int
	Quote *uint256.Int
}

func emptyReserves() Reserves {
	return Reserves{Base: new(uint256.Int), Quote: new(uint256.Int)}
}

func (r Reserves) Clone() Reserves {
	return Reserves{Base: r.Base.Clone(), Quote: r.Quote.Clone()}
}

func (r Reserves) IsEmpty() bool {
	return r.Base.IsZero() && r.Quote.IsZero()
}

func (s *State) Reserves(pair PairID) Reserves {
	b := s.kv.Get(reservePath(pair))
	if b == nil {
		return emptyReserves()
	}

	var r Reserves
	err := rlp.DecodeBytes(b, &r)
	if err != nil {
		log.Error("error decoding reserves", "pair", pair, "err", err)
		return emptyReserves()
	}
	return r
}

func (s *State) SaveReserves(pair PairID, r Reserves) {
	s.kv.Set(reservePath(pair), encode(&r))
}

func (s *State) Paused() bool {
	b := s.kv.Get(pausedKey)
	return len(b) == 1 && b[0] == 1
}

func (s *State) SetPaused(paused bool) {
	if paused {
		s.kv.Set(pausedKey, []byte{1})
	} else {
		s.kv.Delete(pausedKey)
	}
}

// NextOrderID draws the next value of the order id counter.
func (s *State) NextOrderID() uint64 {
	return s.idCounter.Next(s.kv)
}
