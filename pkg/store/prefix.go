package store

// Prefixed is a namespace of a parent store: every key is stored
// under the namespace prefix.
type Prefixed struct {
	parent KVStore
	prefix []byte
}

// NewPrefixed returns the namespace prefix of the parent store.
func NewPrefixed(parent KVStore, prefix []byte) *Prefixed {
	p := make([]byte, len(prefix))
	copy(p, prefix)
	return &Prefixed{parent: parent, prefix: p}
}

func (p *Prefixed) Get(key []byte) []byte {
	return p.parent.Get(Concat(p.prefix, key))
}

func (p *Prefixed) Set(key, value []byte) {
	p.parent.Set(Concat(p.prefix, key), value)
}

func (p *Prefixed) Delete(key []byte) {
	p.parent.Delete(Concat(p.prefix, key))
}

func (p *Prefixed) Iterator(prefix []byte, order Order) Iterator {
	return &prefixedIterator{
		Iterator: p.parent.Iterator(Concat(p.prefix, prefix), order),
		n:        len(p.prefix),
	}
}

type prefixedIterator struct {
	Iterator
	n int
}

func (it *prefixedIterator) Key() []byte {
	return it.Iterator.Key()[it.n:]
}
