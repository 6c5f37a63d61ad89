package main

import (
	"fmt"
	"os"

	"github.com/holiman/uint256"
	log "github.com/inconshreveable/log15"
	"github.com/left-curve/left-curve-sub002/pkg/chain"
	"github.com/left-curve/left-curve-sub002/pkg/consensus"
	"github.com/left-curve/left-curve-sub002/pkg/dex"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
	"gopkg.in/yaml.v3"
)

// script is a list of blocks, each a list of transactions. A
// transaction carries exactly one action.
type script struct {
	Blocks []scriptBlock `yaml:"blocks"`
}

type scriptBlock struct {
	Txns []scriptTxn `yaml:"txns"`
}

type scriptTxn struct {
	Sender    string        `yaml:"sender"`
	Funds     []string      `yaml:"funds"`
	Orders    []scriptOrder `yaml:"orders"`
	Cancel    []uint64      `yaml:"cancel"`
	CancelAll bool          `yaml:"cancel_all"`
	Provide   []string      `yaml:"provide"`
	Withdraw  []string      `yaml:"withdraw"`
	Swap      *scriptSwap   `yaml:"swap"`
	Pause     *bool         `yaml:"pause"`
}

type scriptOrder struct {
	Pair   []string `yaml:"pair"`
	Side   string   `yaml:"side"`
	Price  string   `yaml:"price"`
	Amount string   `yaml:"amount"`
}

type scriptSwap struct {
	Route      [][]string `yaml:"route"`
	Output     string     `yaml:"output"` // the exact output, empty for an exact input swap
	MinimumOut string     `yaml:"minimum_out"`
	MaximumIn  string     `yaml:"maximum_in"`
	PriceLimit string     `yaml:"price_limit"`
}

func parsePair(ss []string) (dex.PairID, error) {
	if len(ss) != 2 {
		return dex.PairID{}, errors.Errorf("pair must be [BASE, QUOTE], got %v", ss)
	}
	return dex.PairID{Base: dex.Denom(ss[0]), Quote: dex.Denom(ss[1])}, nil
}

func parseDirection(s string) (dex.Direction, error) {
	switch s {
	case "bid", "buy":
		return dex.Bid, nil
	case "ask", "sell":
		return dex.Ask, nil
	default:
		return 0, errors.Errorf("unknown side %q", s)
	}
}

func (o scriptOrder) request() (dex.CreateOrderRequest, error) {
	var r dex.CreateOrderRequest
	var err error
	r.Pair, err = parsePair(o.Pair)
	if err != nil {
		return r, err
	}

	r.Direction, err = parseDirection(o.Side)
	if err != nil {
		return r, err
	}

	r.Price, err = dex.ParseDec(o.Price)
	if err != nil {
		return r, err
	}

	r.Amount, err = uint256.FromDecimal(o.Amount)
	if err != nil {
		return r, errors.Wrapf(err, "amount %q", o.Amount)
	}
	return r, nil
}

func (s *scriptSwap) request() (dex.SwapRequest, error) {
	var r dex.SwapRequest
	for _, ss := range s.Route {
		p, err := parsePair(ss)
		if err != nil {
			return r, err
		}
		r.Route = append(r.Route, p)
	}

	if s.Output != "" {
		c, err := dex.ParseCoin(s.Output)
		if err != nil {
			return r, err
		}

		r.Direction = dex.SwapExactOut
		r.Output = c
	}

	var err error
	switch {
	case s.MinimumOut != "":
		r.Slippage.Kind = dex.MinimumOut
		r.Slippage.Amount, err = uint256.FromDecimal(s.MinimumOut)
	case s.MaximumIn != "":
		r.Slippage.Kind = dex.MaximumIn
		r.Slippage.Amount, err = uint256.FromDecimal(s.MaximumIn)
	case s.PriceLimit != "":
		r.Slippage.Kind = dex.PriceLimit
		r.Slippage.Price, err = dex.ParseDec(s.PriceLimit)
	}
	return r, err
}

func (t scriptTxn) msg() (dex.Msg, error) {
	var msgs []dex.Msg
	if len(t.Orders) > 0 || len(t.Cancel) > 0 || t.CancelAll {
		m := dex.BatchUpdateOrdersMsg{Cancels: dex.CancelOrders{All: t.CancelAll, IDs: t.Cancel}}
		for _, o := range t.Orders {
			r, err := o.request()
			if err != nil {
				return nil, err
			}
			m.Creates = append(m.Creates, r)
		}
		msgs = append(msgs, m)
	}

	if t.Provide != nil {
		p, err := parsePair(t.Provide)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, dex.ProvideLiquidityMsg{Pair: p})
	}

	if t.Withdraw != nil {
		p, err := parsePair(t.Withdraw)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, dex.WithdrawLiquidityMsg{Pair: p})
	}

	if t.Swap != nil {
		r, err := t.Swap.request()
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, dex.SwapMsg{Request: r})
	}

	if t.Pause != nil {
		msgs = append(msgs, dex.SetPausedMsg{Paused: *t.Pause})
	}

	if len(msgs) != 1 {
		return nil, errors.Errorf("txn of %s must carry exactly one action, got %d", t.Sender, len(msgs))
	}
	return msgs[0], nil
}

func loadScript(path string) (*script, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var s script
	err = yaml.Unmarshal(b, &s)
	if err != nil {
		return nil, errors.Wrap(err, "parse script")
	}
	return &s, nil
}

// runner feeds transactions to a producer, assigning each sender's
// nonces in order.
type runner struct {
	app      *chain.App
	pool     *chain.TxnPool
	producer *chain.Producer
	rec      *chain.Recorder
	names    names
	time     uint64
}

func newRunner(g *chain.Genesis) (*runner, error) {
	rec := &chain.Recorder{}
	app, err := g.Build(chain.MultiSink{rec, chain.NewLogSink(log.New("module", "events"))})
	if err != nil {
		return nil, err
	}

	pool := chain.NewTxnPool(app)
	return &runner{
		app:      app,
		pool:     pool,
		producer: chain.NewProducer(app, pool),
		rec:      rec,
		names:    genesisNames(g),
		time:     1700000000,
	}, nil
}

func (r *runner) run(txns []scriptTxn) (*chain.Block, error) {
	next := make(map[consensus.Addr]uint64)
	for _, t := range txns {
		msg, err := t.msg()
		if err != nil {
			return nil, err
		}

		funds, err := parseFunds(t.Funds)
		if err != nil {
			return nil, err
		}

		sender := chain.ResolveAddr(t.Sender)
		r.names[sender] = t.Sender
		nonce, ok := next[sender]
		if !ok {
			nonce = r.app.Nonce(sender)
		}
		next[sender] = nonce + 1

		b, err := chain.MakeTxn(sender, nonce, funds, msg)
		if err != nil {
			return nil, err
		}
		r.pool.Add(b)
	}

	r.time++
	block, err := r.producer.Produce(r.time)
	if err != nil {
		return nil, err
	}

	// a failed txn leaves the later ones of its sender waiting for a
	// nonce that will never come.
	for _, b := range r.pool.Txns() {
		log.Warn("dropping txn waiting for a failed one", "hash", consensus.SHA3(b))
		r.pool.Remove(consensus.SHA3(b))
	}

	if failed := len(txns) - len(block.Txns); failed > 0 {
		log.Warn("txns failed", "height", block.Info.Height, "count", failed)
	}
	return block, nil
}

func parseFunds(ss []string) (dex.Coins, error) {
	cs := make([]dex.Coin, len(ss))
	for i, s := range ss {
		c, err := dex.ParseCoin(s)
		if err != nil {
			return nil, err
		}
		cs[i] = c
	}
	return dex.NewCoins(cs...)
}

func replay(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("replay needs the path of a script, please check usage using ./dex -h")
	}

	s, err := loadScript(path)
	if err != nil {
		return err
	}

	g, err := loadGenesis()
	if err != nil {
		return err
	}

	r, err := newRunner(g)
	if err != nil {
		return err
	}

	for _, sb := range s.Blocks {
		block, err := r.run(sb.Txns)
		if err != nil {
			return err
		}

		fmt.Printf("\nBlock %d: %d/%d txns, root %s\n", block.Info.Height, len(block.Txns), len(sb.Txns), block.Root.Hex())
		err = printEvents(os.Stdout, r.names, r.rec.Events())
		if err != nil {
			return err
		}
	}

	return printSummary(r.names, r.app)
}
