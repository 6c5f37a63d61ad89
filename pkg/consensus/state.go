package consensus

// Transition is the transition from one State to another State.
type Transition interface {
	// Record records a transaction to the state transition.
	Record(txn []byte) (valid, success bool)

	// Txns returns the recorded transactions.
	Txns() [][]byte

	// Commit runs the end of block logic and commits the
	// transition, returning the new state root.
	Commit() (Hash, error)
}

// State is the blockchain state.
type State interface {
	Root() Hash
	Transition(block BlockInfo) Transition
}

// TxnPool is the pool that stores the received transactions.
type TxnPool interface {
	// Add adds a transaction, the transaction pool should
	// validate the txn and return true if the transaction is
	// valid and not already in the pool.
	Add(txn []byte) (added bool)
	Txns() [][]byte
	Remove(hash Hash)
}
