package consensus

// BlockInfo is the context of the block being executed.
type BlockInfo struct {
	Height    uint64
	Timestamp uint64 // unix seconds
}
