package chain

import (
	"sync"

	log "github.com/inconshreveable/log15"
	"github.com/left-curve/left-curve-sub002/pkg/consensus"
	"github.com/left-curve/left-curve-sub002/pkg/dex"
	"github.com/left-curve/left-curve-sub002/pkg/ledger"
	"github.com/left-curve/left-curve-sub002/pkg/store"
	"github.com/pkg/errors"
)

var (
	dexPrefix   = []byte("dex/")
	bankPrefix  = []byte("bank/")
	noncePrefix = []byte("nonce/")
)

func dexState(kv store.KVStore) *dex.State {
	return dex.NewState(store.NewPrefixed(kv, dexPrefix))
}

func bank(kv store.KVStore) *ledger.Ledger {
	return ledger.New(store.NewPrefixed(kv, bankPrefix))
}

func nonceCounter(addr consensus.Addr) store.Counter {
	return store.NewCounter(addr[:], 0)
}

func nonces(kv store.KVStore) store.KVStore {
	return store.NewPrefixed(kv, noncePrefix)
}

// App runs the exchange contract on top of the token ledger. It
// implements consensus.State.
type App struct {
	mu       sync.RWMutex
	kv       *store.Memory
	height   uint64
	contract consensus.Addr
	owner    consensus.Addr
	sink     EventSink
}

// NewApp creates the app from a store holding the state of the
// given height.
func NewApp(kv *store.Memory, height uint64, contract, owner consensus.Addr, sink EventSink) *App {
	if sink == nil {
		sink = nopSink{}
	}

	return &App{
		kv:       kv,
		height:   height,
		contract: contract,
		owner:    owner,
		sink:     sink,
	}
}

func (a *App) snapshot() (*store.Memory, uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.kv.Copy(), a.height
}

// Root returns the state root of the last committed block.
func (a *App) Root() consensus.Hash {
	kv, _ := a.snapshot()
	return store.Root(kv)
}

func (a *App) Height() uint64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.height
}

func (a *App) Contract() consensus.Addr {
	return a.contract
}

func (a *App) Owner() consensus.Addr {
	return a.owner
}

// State returns a read only view of the exchange state. Writes to the
// returned state are not committed.
func (a *App) State() *dex.State {
	kv, _ := a.snapshot()
	return dexState(kv)
}

// Ledger returns a read only view of the token ledger.
func (a *App) Ledger() *ledger.Ledger {
	kv, _ := a.snapshot()
	return bank(kv)
}

// Nonce returns the nonce the next transaction of addr must carry.
func (a *App) Nonce(addr consensus.Addr) uint64 {
	kv, _ := a.snapshot()
	return nonceCounter(addr).Current(nonces(kv))
}

// Transition starts the transition to the given block.
func (a *App) Transition(block consensus.BlockInfo) consensus.Transition {
	return a.newTransition(block)
}

func (a *App) newTransition(block consensus.BlockInfo) *Transition {
	kv, height := a.snapshot()
	return &Transition{
		app:    a,
		kv:     kv,
		parent: height,
		block:  block,
	}
}

func (a *App) commit(parent uint64, kv *store.Memory, block consensus.BlockInfo) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.height != parent {
		return errors.Errorf("transition from height %d, app is at %d", parent, a.height)
	}

	a.kv = kv
	a.height = block.Height
	return nil
}

// Receipt is the outcome of one executed transaction.
type Receipt struct {
	Hash   consensus.Hash
	Sender consensus.Addr
	Events []dex.Event
}

// Transition executes the transactions of one block. Each
// transaction runs on a copy of the state and is kept only if it
// succeeds.
type Transition struct {
	app      *App
	kv       *store.Memory
	parent   uint64
	block    consensus.BlockInfo
	txns     [][]byte
	receipts []Receipt
}

func (t *Transition) ctx(sender consensus.Addr, funds dex.Coins) dex.Context {
	return dex.Context{
		Block:    t.block,
		Contract: t.app.contract,
		Owner:    t.app.owner,
		Sender:   sender,
		Funds:    funds,
	}
}

// Record executes a transaction.
//
// A transaction that can not be decoded, carries a used nonce or
// fails to execute is invalid and leaves no trace. A transaction
// with a future nonce is valid but not ready.
func (t *Transition) Record(b []byte) (valid, success bool) {
	txn, err := DecodeTxn(b)
	if err != nil {
		log.Warn("error decoding txn", "err", err)
		return
	}

	expected := nonceCounter(txn.Sender).Current(nonces(t.kv))
	if txn.Nonce < expected {
		log.Warn("txn nonce already used", "sender", txn.Sender, "nonce", txn.Nonce, "expected", expected)
		return
	}

	if txn.Nonce > expected {
		return true, false
	}

	msg, err := txn.Msg()
	if err != nil {
		log.Warn("error decoding txn message", "err", err)
		return
	}

	kv := t.kv.Copy()
	resp, err := t.execute(kv, txn, msg)
	if err != nil {
		log.Warn("txn failed", "sender", txn.Sender, "type", txn.T, "err", err)
		return
	}

	nonceCounter(txn.Sender).Next(nonces(kv))
	t.kv = kv
	t.txns = append(t.txns, b)
	t.receipts = append(t.receipts, Receipt{
		Hash:   consensus.SHA3(b),
		Sender: txn.Sender,
		Events: resp.Events,
	})
	return true, true
}

func (t *Transition) execute(kv store.KVStore, txn *Txn, msg dex.Msg) (*dex.Response, error) {
	l := bank(kv)
	if !txn.Funds.IsEmpty() {
		err := l.Transfer(txn.Sender, t.app.contract, txn.Funds)
		if err != nil {
			return nil, errors.Wrap(err, "attach funds")
		}
	}

	resp, err := dex.Execute(dexState(kv), l, t.ctx(txn.Sender, txn.Funds), msg)
	if err != nil {
		return nil, err
	}

	err = l.Apply(t.app.contract, resp.Messages)
	if err != nil {
		return nil, errors.Wrap(err, "apply messages")
	}
	return resp, nil
}

// Txns returns the recorded transactions.
func (t *Transition) Txns() [][]byte {
	return t.txns
}

// Receipts returns the receipts of the recorded transactions.
func (t *Transition) Receipts() []Receipt {
	return t.receipts
}

// Commit runs the end of block auction and commits the transition.
func (t *Transition) Commit() (consensus.Hash, error) {
	kv := t.kv.Copy()
	resp, err := dex.CronExecute(dexState(kv), t.ctx(t.app.contract, make(dex.Coins)))
	if err != nil {
		return consensus.Hash{}, errors.Wrap(err, "cron execute")
	}

	err = bank(kv).Apply(t.app.contract, resp.Messages)
	if err != nil {
		return consensus.Hash{}, errors.Wrap(err, "apply cron messages")
	}

	// kv is shared once committed
	root := store.Root(kv)
	err = t.app.commit(t.parent, kv, t.block)
	if err != nil {
		return consensus.Hash{}, err
	}

	events := make([]dex.Event, 0, len(resp.Events))
	for _, r := range t.receipts {
		events = append(events, r.Events...)
	}
	events = append(events, resp.Events...)
	t.app.sink.Emit(t.block, events)

	log.Info("block committed", "height", t.block.Height, "txns", len(t.txns), "events", len(events), "root", root)
	return root, nil
}
