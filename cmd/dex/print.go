package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/left-curve/left-curve-sub002/pkg/chain"
	"github.com/left-curve/left-curve-sub002/pkg/consensus"
	"github.com/left-curve/left-curve-sub002/pkg/dex"
)

// names maps the addresses of the genesis accounts back to their
// names.
type names map[consensus.Addr]string

func genesisNames(g *chain.Genesis) names {
	n := make(names)
	add := func(s string) {
		n[chain.ResolveAddr(s)] = s
	}

	add(g.Owner)
	add(g.Contract)
	for name := range g.Balances {
		add(name)
	}

	for _, l := range g.Liquidity {
		add(l.Provider)
	}
	return n
}

func (n names) of(addr consensus.Addr) string {
	if s, ok := n[addr]; ok {
		return s
	}
	return addr.Hex()[:8]
}

func sortAddrs(n names, addrs []consensus.Addr) {
	sort.Slice(addrs, func(i, j int) bool {
		return n.of(addrs[i]) < n.of(addrs[j])
	})
}

func routeString(route []dex.PairID) string {
	ss := make([]string, len(route))
	for i, p := range route {
		ss[i] = p.String()
	}
	return strings.Join(ss, ">")
}

func describe(n names, e dex.Event) string {
	switch e := e.(type) {
	case dex.OrderSubmitted:
		return fmt.Sprintf("#%d %s %s %s %s@%s deposit %s", e.OrderID, n.of(e.User), e.Pair, e.Direction, e.Amount.Dec(), e.Price, e.Deposit)
	case dex.OrderCanceled:
		return fmt.Sprintf("#%d %s %s %s remaining %s refund %s", e.OrderID, n.of(e.User), e.Pair, e.Direction, e.Remaining.Dec(), e.Refund)
	case dex.OrdersMatched:
		return fmt.Sprintf("%s clearing %s volume %s", e.Pair, e.ClearingPrice, e.Volume.Dec())
	case dex.OrderFilled:
		return fmt.Sprintf("#%d %s %s %s filled %s cleared %t refund %s base %s quote", e.OrderID, n.of(e.User), e.Pair, e.Direction, e.FilledAmount.Dec(), e.Cleared, e.RefundBase.Dec(), e.RefundQuote.Dec())
	case dex.PairUpdated:
		return e.Pair.String()
	case dex.Swapped:
		return fmt.Sprintf("%s %s %s for %s", n.of(e.User), routeString(e.Route), e.Input, e.Output)
	case dex.LiquidityProvided:
		return fmt.Sprintf("%s %s deposit %s minted %s", n.of(e.User), e.Pair, e.Deposit, e.Minted.Dec())
	case dex.LiquidityWithdrawn:
		return fmt.Sprintf("%s %s burned %s refund %s", n.of(e.User), e.Pair, e.Burned.Dec(), e.Refund)
	case dex.PausedChanged:
		return fmt.Sprintf("paused %t", e.Paused)
	case dex.PoolReflected:
		return fmt.Sprintf("%s %d bids %d asks", e.Pair, e.Bids, e.Asks)
	default:
		return ""
	}
}

func printEvents(w io.Writer, n names, events []dex.Event) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.Debug)
	_, err := fmt.Fprintln(tw, "\tEvent\tDetails\t")
	if err != nil {
		return err
	}

	for _, e := range events {
		_, err = fmt.Fprintf(tw, "\t%s\t%s\t\n", e.EventType(), describe(n, e))
		if err != nil {
			return err
		}
	}
	return tw.Flush()
}

func printBalances(w io.Writer, n names, app *chain.App) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.Debug)
	_, err := fmt.Fprintln(tw, "\tAccount\tBalances\tNonce\t")
	if err != nil {
		return err
	}

	addrs := make([]consensus.Addr, 0, len(n))
	for addr := range n {
		addrs = append(addrs, addr)
	}
	sortAddrs(n, addrs)

	l := app.Ledger()
	for _, addr := range addrs {
		_, err = fmt.Fprintf(tw, "\t%s\t%s\t%d\t\n", n.of(addr), l.Balances(addr), app.Nonce(addr))
		if err != nil {
			return err
		}
	}
	return tw.Flush()
}

func printBook(w io.Writer, n names, s *dex.State) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.Debug)
	_, err := fmt.Fprintln(tw, "\tPair\tSide\tID\tOwner\tPrice\tRemaining\t")
	if err != nil {
		return err
	}

	for _, pair := range s.Pairs() {
		bids, asks := s.OrdersByPair(pair)
		for _, e := range append(bids, asks...) {
			d := e.Key.Direction
			_, err = fmt.Fprintf(tw, "\t%s\t%s\t%d\t%s\t%s\t%s\t\n", pair, d, e.Key.ID.Raw(d), n.of(e.Order.User), e.Key.Price, e.Order.Remaining.Dec())
			if err != nil {
				return err
			}
		}
	}
	return tw.Flush()
}

func printReserves(w io.Writer, s *dex.State) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.Debug)
	_, err := fmt.Fprintln(tw, "\tPair\tBase\tQuote\t")
	if err != nil {
		return err
	}

	for _, pair := range s.Pairs() {
		r := s.Reserves(pair)
		_, err = fmt.Fprintf(tw, "\t%s\t%s\t%s\t\n", pair, r.Base.Dec(), r.Quote.Dec())
		if err != nil {
			return err
		}
	}
	return tw.Flush()
}

func printSummary(n names, app *chain.App) error {
	s := app.State()
	fmt.Println("\nReserves:")
	if err := printReserves(os.Stdout, s); err != nil {
		return err
	}

	fmt.Println("\nBook:")
	if err := printBook(os.Stdout, n, s); err != nil {
		return err
	}

	fmt.Println("\nAccounts:")
	return printBalances(os.Stdout, n, app)
}
