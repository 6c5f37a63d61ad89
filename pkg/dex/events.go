package dex

import (
	"sort"

	"github.com/holiman/uint256"
	"github.com/left-curve/left-curve-sub002/pkg/consensus"
)

// Event is a structured event emitted for indexers. Events are
// emitted in execution order.
type Event interface {
	EventType() string
}

type OrderSubmitted struct {
	OrderID   uint64
	User      consensus.Addr
	Pair      PairID
	Direction Direction
	Price     Dec
	Amount    *uint256.Int
	Deposit   Coin
}

type OrderCanceled struct {
	OrderID   uint64
	User      consensus.Addr
	Pair      PairID
	Direction Direction
	Price     Dec
	Amount    *uint256.Int
	Remaining *uint256.Int
	Refund    Coin
}

type OrdersMatched struct {
	Pair          PairID
	ClearingPrice Dec
	Volume        *uint256.Int
}

type OrderFilled struct {
	OrderID       uint64
	User          consensus.Addr
	Pair          PairID
	Direction     Direction
	Price         Dec
	ClearingPrice Dec
	FilledAmount  *uint256.Int
	Cleared       bool
	RefundBase    *uint256.Int
	RefundQuote   *uint256.Int
}

type PairUpdated struct {
	Pair PairID
}

type Swapped struct {
	User   consensus.Addr
	Route  []PairID
	Input  Coin
	Output Coin
}

type LiquidityProvided struct {
	User    consensus.Addr
	Pair    PairID
	Deposit Coins
	Minted  *uint256.Int
}

type LiquidityWithdrawn struct {
	User   consensus.Addr
	Pair   PairID
	Burned *uint256.Int
	Refund Coins
}

type PausedChanged struct {
	Paused bool
}

// PoolReflected replaces the per level events of the pool orders,
// which are canceled and placed again every block.
type PoolReflected struct {
	Pair PairID
	Bids int
	Asks int
}

func (OrderSubmitted) EventType() string     { return "order_submitted" }
func (OrderCanceled) EventType() string      { return "order_canceled" }
func (OrdersMatched) EventType() string      { return "orders_matched" }
func (OrderFilled) EventType() string        { return "order_filled" }
func (PairUpdated) EventType() string        { return "pair_updated" }
func (Swapped) EventType() string            { return "swapped" }
func (LiquidityProvided) EventType() string  { return "liquidity_provided" }
func (LiquidityWithdrawn) EventType() string { return "liquidity_withdrawn" }
func (PausedChanged) EventType() string      { return "paused_changed" }
func (PoolReflected) EventType() string      { return "pool_reflected" }

// Message is an instruction for the token ledger. The exchange never
// changes balances itself.
type Message interface {
	isMessage()
}

// Transfer sends coins from the exchange contract to each recipient.
type Transfer struct {
	Outputs []TransferOutput
}

type TransferOutput struct {
	To    consensus.Addr
	Coins Coins
}

// Mint mints new coins to an account.
type Mint struct {
	To    consensus.Addr
	Coins Coins
}

// Burn burns coins held by an account.
type Burn struct {
	From  consensus.Addr
	Coins Coins
}

func (Transfer) isMessage() {}
func (Mint) isMessage()     {}
func (Burn) isMessage()     {}

// Response is the outcome of a successful execution.
type Response struct {
	Messages []Message
	Events   []Event
}

func (r *Response) addEvent(e Event) {
	r.Events = append(r.Events, e)
}

func (r *Response) addMessage(m Message) {
	if m != nil {
		r.Messages = append(r.Messages, m)
	}
}

// TransferBuilder accumulates coins owed to users and turns them into
// a single batch transfer.
type TransferBuilder struct {
	credits map[consensus.Addr]Coins
}

func NewTransferBuilder() *TransferBuilder {
	return &TransferBuilder{credits: make(map[consensus.Addr]Coins)}
}

func (b *TransferBuilder) Add(to consensus.Addr, denom Denom, amount *uint256.Int) error {
	if amount.IsZero() {
		return nil
	}

	c, ok := b.credits[to]
	if !ok {
		c = make(Coins)
		b.credits[to] = c
	}
	return c.Add(denom, amount)
}

func (b *TransferBuilder) AddCoins(to consensus.Addr, coins Coins) error {
	for _, coin := range coins.Sorted() {
		if err := b.Add(to, coin.Denom, coin.Amount); err != nil {
			return err
		}
	}
	return nil
}

// Credits returns what is owed to addr so far.
func (b *TransferBuilder) Credits(addr consensus.Addr) Coins {
	if c, ok := b.credits[addr]; ok {
		return c.Clone()
	}
	return make(Coins)
}

// Message returns the batch transfer ordered by recipient, or nil if
// nothing is owed.
func (b *TransferBuilder) Message() Message {
	addrs := make([]consensus.Addr, 0, len(b.credits))
	for addr, c := range b.credits {
		if !c.IsEmpty() {
			addrs = append(addrs, addr)
		}
	}

	if len(addrs) == 0 {
		return nil
	}

	sort.Slice(addrs, func(i, j int) bool {
		return string(addrs[i][:]) < string(addrs[j][:])
	})

	t := Transfer{Outputs: make([]TransferOutput, len(addrs))}
	for i, addr := range addrs {
		t.Outputs[i] = TransferOutput{To: addr, Coins: b.credits[addr].Clone()}
	}
	return t
}
