package chain

import (
	"sort"
	"sync"

	log "github.com/inconshreveable/log15"
	"github.com/left-curve/left-curve-sub002/pkg/consensus"
)

type nonceSource interface {
	Nonce(addr consensus.Addr) uint64
}

type pooledTxn struct {
	b     []byte
	txn   *Txn
	order uint64
}

// TxnPool holds the transactions waiting to be included in a block.
type TxnPool struct {
	mu     sync.Mutex
	nonces nonceSource
	txns   map[consensus.Hash]pooledTxn
	count  uint64
}

func NewTxnPool(nonces nonceSource) *TxnPool {
	return &TxnPool{
		nonces: nonces,
		txns:   make(map[consensus.Hash]pooledTxn),
	}
}

// Add adds a transaction, it returns false if the transaction can
// not be decoded, is already in the pool or its nonce has been used.
func (t *TxnPool) Add(b []byte) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	hash := consensus.SHA3(b)
	if _, ok := t.txns[hash]; ok {
		return false
	}

	txn, err := DecodeTxn(b)
	if err != nil {
		log.Warn("error decoding txn", "err", err)
		return false
	}

	if txn.Nonce < t.nonces.Nonce(txn.Sender) {
		log.Warn("txn nonce already used", "sender", txn.Sender, "nonce", txn.Nonce)
		return false
	}

	t.txns[hash] = pooledTxn{b: b, txn: txn, order: t.count}
	t.count++
	return true
}

// Txns returns the transactions grouped by sender in order of the
// sender's first arrival, each sender's transactions by nonce.
func (t *TxnPool) Txns() [][]byte {
	t.mu.Lock()
	defer t.mu.Unlock()

	all := make([]pooledTxn, 0, len(t.txns))
	first := make(map[consensus.Addr]uint64)
	for _, v := range t.txns {
		all = append(all, v)
		if o, ok := first[v.txn.Sender]; !ok || v.order < o {
			first[v.txn.Sender] = v.order
		}
	}

	sort.Slice(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if a.txn.Sender != b.txn.Sender {
			return first[a.txn.Sender] < first[b.txn.Sender]
		}

		if a.txn.Nonce != b.txn.Nonce {
			return a.txn.Nonce < b.txn.Nonce
		}
		return a.order < b.order
	})

	r := make([][]byte, len(all))
	for i, v := range all {
		r[i] = v.b
	}
	return r
}

func (t *TxnPool) Size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.txns)
}

func (t *TxnPool) Remove(hash consensus.Hash) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.txns, hash)
}
