package store

import (
	"github.com/ethereum/go-ethereum/core/rawdb"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/trie"
	"github.com/ethereum/go-ethereum/triedb"
	"github.com/left-curve/left-curve-sub002/pkg/consensus"
)

// Root returns the merkle patricia trie root of every key-value pair
// in the store. Two stores with the same content have the same root.
func Root(kv KVStore) consensus.Hash {
	db := triedb.NewDatabase(rawdb.NewMemoryDatabase(), nil)
	tr := trie.NewEmpty(db)
	for it := kv.Iterator(nil, Ascending); it.Valid(); it.Next() {
		if len(it.Value()) == 0 {
			continue
		}

		tr.MustUpdate(it.Key(), it.Value())
	}

	return consensus.Hash(tr.Hash())
}

// EmptyRoot is the root of an empty store.
var EmptyRoot = consensus.Hash(types.EmptyRootHash)
