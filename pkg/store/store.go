// Package store provides the ordered key-value storage the exchange
// runs on: byte keys, byte values, prefix range scans in both
// directions and copy-on-write snapshots for transactions.
package store

// Order is the iteration order of a range scan.
type Order int

const (
	Ascending Order = iota
	Descending
)

// Iterator iterates over the key-value pairs under a prefix.
//
// The store must not be mutated while an iterator is in use.
type Iterator interface {
	Valid() bool
	Next()
	Key() []byte
	Value() []byte
}

// KVStore is an ordered key-value store.
type KVStore interface {
	Get(key []byte) []byte
	Set(key, value []byte)
	Delete(key []byte)
	// Iterator returns an iterator over all keys starting with
	// prefix. The returned keys keep the prefix.
	Iterator(prefix []byte, order Order) Iterator
}

// PrefixEnd returns the smallest key that is larger than every key
// starting with prefix, or nil if there is no such key.
func PrefixEnd(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}

	return nil
}

// Keys collects the keys under prefix. Use it when the caller needs
// to mutate the store while walking a range.
func Keys(kv KVStore, prefix []byte, order Order) [][]byte {
	var r [][]byte
	for it := kv.Iterator(prefix, order); it.Valid(); it.Next() {
		k := make([]byte, len(it.Key()))
		copy(k, it.Key())
		r = append(r, k)
	}
	return r
}

// Concat returns a newly allocated concatenation of the parts.
func Concat(parts ...[]byte) []byte {
	n := 0
	for _, p := range parts {
		n += len(p)
	}

	r := make([]byte, 0, n)
	for _, p := range parts {
		r = append(r, p...)
	}
	return r
}
