package store

import "encoding/binary"

// Counter is a monotonically increasing uint64 kept under a single
// key of the store, so it rolls back together with everything else
// written in the same transaction.
type Counter struct {
	key     []byte
	initial uint64
}

func NewCounter(key []byte, initial uint64) Counter {
	return Counter{key: key, initial: initial}
}

// Current returns the value the next call to Next will return.
func (c Counter) Current(kv KVStore) uint64 {
	b := kv.Get(c.key)
	if len(b) != 8 {
		return c.initial
	}
	return binary.BigEndian.Uint64(b)
}

// Next returns the current value and increments the counter.
func (c Counter) Next(kv KVStore) uint64 {
	v := c.Current(kv)
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v+1)
	kv.Set(c.key, b[:])
	return v
}
