package main

import (
	"fmt"
	"math/rand"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/left-curve/left-curve-sub002/pkg/dex"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli"
)

// randomOrder draws an order priced within 5% of mid.
func randomOrder(rnd *rand.Rand, pair dex.PairID, trader string, mid decimal.Decimal) scriptTxn {
	side := "bid"
	if rnd.Intn(2) == 0 {
		side = "ask"
	}

	move := decimal.NewFromInt(int64(rnd.Intn(1001) - 500)).Shift(-4)
	price := mid.Mul(decimal.NewFromInt(1).Add(move)).Round(2)
	amount := decimal.NewFromInt(int64(rnd.Intn(10) + 1))

	deposit := amount.String() + string(pair.Base)
	if side == "bid" {
		deposit = amount.Mul(price).Ceil().String() + string(pair.Quote)
	}

	return scriptTxn{
		Sender: trader,
		Funds:  []string{deposit},
		Orders: []scriptOrder{{
			Pair:   []string{string(pair.Base), string(pair.Quote)},
			Side:   side,
			Price:  price.String(),
			Amount: amount.String(),
		}},
	}
}

// midPrice is the quote reserve over the base reserve.
func midPrice(s *dex.State, pair dex.PairID) (decimal.Decimal, error) {
	r := s.Reserves(pair)
	if r.Base.IsZero() {
		return decimal.Zero, errors.Errorf("pair %s has no liquidity", pair)
	}

	base := decimal.NewFromBigInt(r.Base.ToBig(), 0)
	quote := decimal.NewFromBigInt(r.Quote.ToBig(), 0)
	return quote.DivRound(base, dex.DecDecimals), nil
}

func simulate(c *cli.Context) error {
	denoms := strings.Split(c.String("pair"), ",")
	pair, err := parsePair(denoms)
	if err != nil {
		return err
	}

	g, err := loadGenesis()
	if err != nil {
		return err
	}

	numTraders := c.Int("traders")
	if numTraders <= 0 {
		return errors.New("simulate needs at least one trader")
	}

	if g.Balances == nil {
		g.Balances = make(map[string][]string)
	}

	traders := make([]string, numTraders)
	for i := range traders {
		traders[i] = fmt.Sprintf("trader-%d", i)
		g.Balances[traders[i]] = []string{"1000000" + string(pair.Base), "1000000000" + string(pair.Quote)}
	}

	r, err := newRunner(g)
	if err != nil {
		return err
	}

	rnd := rand.New(rand.NewSource(c.Int64("seed")))
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 1, ' ', tabwriter.Debug)
	_, err = fmt.Fprintln(tw, "\tHeight\tTxns\tClearing Price\tVolume\tBase Reserve\tQuote Reserve\t")
	if err != nil {
		return err
	}

	for i := 0; i < c.Int("blocks"); i++ {
		mid, err := midPrice(r.app.State(), pair)
		if err != nil {
			return err
		}

		txns := make([]scriptTxn, c.Int("orders"))
		for j := range txns {
			txns[j] = randomOrder(rnd, pair, traders[rnd.Intn(numTraders)], mid)
		}

		block, err := r.run(txns)
		if err != nil {
			return err
		}

		clearing, volume := "-", "0"
		for _, e := range r.rec.Events() {
			if m, ok := e.(dex.OrdersMatched); ok && m.Pair == pair {
				clearing = m.ClearingPrice.String()
				volume = m.Volume.Dec()
			}
		}

		reserves := r.app.State().Reserves(pair)
		_, err = fmt.Fprintf(tw, "\t%d\t%d\t%s\t%s\t%s\t%s\t\n", block.Info.Height, len(block.Txns), clearing, volume, reserves.Base.Dec(), reserves.Quote.Dec())
		if err != nil {
			return err
		}
	}

	err = tw.Flush()
	if err != nil {
		return err
	}
	return printSummary(r.names, r.app)
}
