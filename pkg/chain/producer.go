package chain

import (
	"context"
	"time"

	log "github.com/inconshreveable/log15"
	"github.com/left-curve/left-curve-sub002/pkg/consensus"
)

// Block is a produced block.
type Block struct {
	Info     consensus.BlockInfo
	Root     consensus.Hash
	Txns     [][]byte
	Receipts []Receipt
}

// Producer turns the transactions of a pool into blocks.
type Producer struct {
	app  *App
	pool *TxnPool
}

func NewProducer(app *App, pool *TxnPool) *Producer {
	return &Producer{app: app, pool: pool}
}

// Produce executes the pooled transactions in a new block and commits
// it. Transactions that are not ready stay in the pool.
func (p *Producer) Produce(timestamp uint64) (*Block, error) {
	info := consensus.BlockInfo{Height: p.app.Height() + 1, Timestamp: timestamp}
	t := p.app.newTransition(info)
	for _, b := range p.pool.Txns() {
		valid, success := t.Record(b)
		if valid && !success {
			continue
		}

		p.pool.Remove(consensus.SHA3(b))
	}

	root, err := t.Commit()
	if err != nil {
		return nil, err
	}

	return &Block{Info: info, Root: root, Txns: t.Txns(), Receipts: t.Receipts()}, nil
}

// Run collects transactions from txCh and produces a block every
// interval until the context is done. Produced blocks are sent to
// blockCh if it is not nil.
func (p *Producer) Run(ctx context.Context, interval time.Duration, txCh <-chan []byte, blockCh chan<- *Block) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case tx := <-txCh:
			if !p.pool.Add(tx) {
				log.Warn("received invalid txn", "len", len(tx))
			}
		case now := <-ticker.C:
			b, err := p.Produce(uint64(now.Unix()))
			if err != nil {
				return err
			}

			if blockCh != nil {
				select {
				case blockCh <- b:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	}
}
