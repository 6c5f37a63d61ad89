package store

import (
	"bytes"
	"sync"

	"github.com/tidwall/btree"
)

const btreeDegree = 32

// Memory is an in-memory KVStore backed by a B-tree.
//
// Copy is O(1): the copy shares nodes with the original and clones
// them lazily on write, so a transaction runs against a Copy and is
// committed by replacing the original with it. Copy may be called
// concurrently with reads; writes need exclusive access.
type Memory struct {
	mu   sync.Mutex // Copy marks the source tree
	tree *btree.Map[string, []byte]
}

func NewMemory() *Memory {
	return &Memory{tree: btree.NewMap[string, []byte](btreeDegree)}
}

// Copy returns a copy-on-write snapshot of the store.
func (m *Memory) Copy() *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &Memory{tree: m.tree.Copy()}
}

func (m *Memory) Len() int {
	return m.tree.Len()
}

func (m *Memory) Get(key []byte) []byte {
	v, ok := m.tree.Get(string(key))
	if !ok {
		return nil
	}
	return v
}

func (m *Memory) Set(key, value []byte) {
	v := make([]byte, len(value))
	copy(v, value)
	m.tree.Set(string(key), v)
}

func (m *Memory) Delete(key []byte) {
	m.tree.Delete(string(key))
}

func (m *Memory) Iterator(prefix []byte, order Order) Iterator {
	it := &memIterator{iter: m.tree.Iter(), prefix: prefix, order: order}
	if order == Ascending {
		it.valid = it.iter.Seek(string(prefix))
	} else {
		end := PrefixEnd(prefix)
		if end == nil {
			it.valid = it.iter.Last()
		} else if it.iter.Seek(string(end)) {
			// positioned at the first key >= end, step back
			// into the range.
			it.valid = it.iter.Prev()
		} else {
			it.valid = it.iter.Last()
		}
	}
	it.check()
	return it
}

type memIterator struct {
	iter   btree.MapIter[string, []byte]
	prefix []byte
	order  Order
	valid  bool
}

func (it *memIterator) check() {
	if it.valid && !bytes.HasPrefix([]byte(it.iter.Key()), it.prefix) {
		it.valid = false
	}
}

func (it *memIterator) Valid() bool {
	return it.valid
}

func (it *memIterator) Next() {
	if !it.valid {
		return
	}

	if it.order == Ascending {
		it.valid = it.iter.Next()
	} else {
		it.valid = it.iter.Prev()
	}
	it.check()
}

func (it *memIterator) Key() []byte {
	return []byte(it.iter.Key())
}

func (it *memIterator) Value() []byte {
	return it.iter.Value()
}
