package store

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(it Iterator) []string {
	var r []string
	for ; it.Valid(); it.Next() {
		r = append(r, string(it.Key()))
	}
	return r
}

func TestMemoryIterator(t *testing.T) {
	m := NewMemory()
	for _, k := range []string{"a1", "a2", "a3", "b1", "b2", "c"} {
		m.Set([]byte(k), []byte("v"+k))
	}

	assert.Equal(t, []string{"a1", "a2", "a3"}, collect(m.Iterator([]byte("a"), Ascending)))
	assert.Equal(t, []string{"a3", "a2", "a1"}, collect(m.Iterator([]byte("a"), Descending)))
	assert.Equal(t, []string{"b2", "b1"}, collect(m.Iterator([]byte("b"), Descending)))
	assert.Equal(t, []string{"c"}, collect(m.Iterator([]byte("c"), Descending)))
	assert.Empty(t, collect(m.Iterator([]byte("d"), Ascending)))
	assert.Empty(t, collect(m.Iterator([]byte("d"), Descending)))
	assert.Equal(t, 6, len(collect(m.Iterator(nil, Descending))))

	it := m.Iterator([]byte("b2"), Ascending)
	require.True(t, it.Valid())
	assert.Equal(t, []byte("vb2"), it.Value())
}

func TestMemoryDescendingFF(t *testing.T) {
	m := NewMemory()
	m.Set([]byte{0xff, 0x01}, []byte{1})
	m.Set([]byte{0xff, 0xff}, []byte{2})
	m.Set([]byte{0x01}, []byte{3})

	keys := Keys(m, []byte{0xff}, Descending)
	assert.Equal(t, [][]byte{{0xff, 0xff}, {0xff, 0x01}}, keys)
}

func TestMemoryCopy(t *testing.T) {
	m := NewMemory()
	m.Set([]byte("k"), []byte("v"))

	c := m.Copy()
	c.Set([]byte("k"), []byte("changed"))
	c.Set([]byte("new"), []byte("v"))
	c.Delete([]byte("missing"))

	assert.Equal(t, []byte("v"), m.Get([]byte("k")))
	assert.Nil(t, m.Get([]byte("new")))
	assert.Equal(t, []byte("changed"), c.Get([]byte("k")))
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, 2, c.Len())
}

func TestPrefixed(t *testing.T) {
	m := NewMemory()
	a := NewPrefixed(m, []byte("a/"))
	b := NewPrefixed(m, []byte("b/"))
	a.Set([]byte("x"), []byte("1"))
	b.Set([]byte("x"), []byte("2"))
	a.Set([]byte("y"), []byte("3"))

	assert.Equal(t, []byte("1"), a.Get([]byte("x")))
	assert.Equal(t, []byte("2"), b.Get([]byte("x")))
	assert.Equal(t, []byte("1"), m.Get([]byte("a/x")))
	assert.Equal(t, []string{"y", "x"}, collect(a.Iterator(nil, Descending)))

	a.Delete([]byte("x"))
	assert.Nil(t, m.Get([]byte("a/x")))
}

func TestCounter(t *testing.T) {
	m := NewMemory()
	c := NewCounter([]byte("id"), 1)
	assert.Equal(t, uint64(1), c.Current(m))
	assert.Equal(t, uint64(1), c.Next(m))
	assert.Equal(t, uint64(2), c.Next(m))

	snapshot := m.Copy()
	assert.Equal(t, uint64(3), c.Next(snapshot))
	assert.Equal(t, uint64(3), c.Current(m))
}

func TestPrefixEnd(t *testing.T) {
	assert.Equal(t, []byte{0x01, 0x03}, PrefixEnd([]byte{0x01, 0x02}))
	assert.Equal(t, []byte{0x02}, PrefixEnd([]byte{0x01, 0xff}))
	assert.Nil(t, PrefixEnd([]byte{0xff, 0xff}))
}

func TestRoot(t *testing.T) {
	assert.Equal(t, EmptyRoot, Root(NewMemory()))

	a := NewMemory()
	a.Set([]byte("k1"), []byte("v1"))
	a.Set([]byte("k2"), []byte("v2"))

	b := NewMemory()
	b.Set([]byte("k2"), []byte("v2"))
	b.Set([]byte("k1"), []byte("v1"))
	assert.Equal(t, Root(a), Root(b))

	b.Set([]byte("k1"), []byte("other"))
	assert.NotEqual(t, Root(a), Root(b))
}

func TestMemoryConcurrentCopy(t *testing.T) {
	m := NewMemory()
	m.Set([]byte("k"), []byte("v"))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c := m.Copy()
				c.Set([]byte("k"), []byte("w"))
				assert.Equal(t, []byte("v"), m.Get([]byte("k")))
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, m.Len())
}
