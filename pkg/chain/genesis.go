package chain

import (
	"os"

	"github.com/holiman/uint256"
	"github.com/left-curve/left-curve-sub002/pkg/consensus"
	"github.com/left-curve/left-curve-sub002/pkg/dex"
	"github.com/left-curve/left-curve-sub002/pkg/store"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Genesis is the initial configuration of the chain. Addresses are
// either hex encoded or names hashed into an address.
type Genesis struct {
	Owner     string              `yaml:"owner"`
	Contract  string              `yaml:"contract"`
	Pairs     []GenesisPair       `yaml:"pairs"`
	Balances  map[string][]string `yaml:"balances"`
	Liquidity []GenesisLiquidity  `yaml:"liquidity"`
}

type GenesisPair struct {
	Base         string       `yaml:"base"`
	Quote        string       `yaml:"quote"`
	LPDenom      string       `yaml:"lp_denom"`
	SwapFeeRate  string       `yaml:"swap_fee_rate"`
	MinOrderSize string       `yaml:"min_order_size"`
	Curve        GenesisCurve `yaml:"curve"`
}

type GenesisCurve struct {
	Kind         string `yaml:"kind"`
	Spacing      string `yaml:"spacing"`
	ReserveRatio string `yaml:"reserve_ratio,omitempty"`
	Ratio        string `yaml:"ratio,omitempty"`
	Limit        uint64 `yaml:"limit"`
}

// GenesisLiquidity is liquidity provided from a genesis balance.
type GenesisLiquidity struct {
	Provider string   `yaml:"provider"`
	Base     string   `yaml:"base"`
	Quote    string   `yaml:"quote"`
	Deposit  []string `yaml:"deposit"`
}

// ResolveAddr parses a hex address, any other string is taken as the
// name of a named address.
func ResolveAddr(s string) consensus.Addr {
	addr, err := consensus.ParseAddr(s)
	if err == nil {
		return addr
	}
	return consensus.NamedAddr(s)
}

func LoadGenesis(path string) (*Genesis, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseGenesis(b)
}

func ParseGenesis(b []byte) (*Genesis, error) {
	var g Genesis
	err := yaml.Unmarshal(b, &g)
	if err != nil {
		return nil, errors.Wrap(err, "parse genesis")
	}

	if g.Owner == "" || g.Contract == "" {
		return nil, errors.New("genesis must name the owner and the contract")
	}
	return &g, nil
}

func (g *Genesis) Marshal() ([]byte, error) {
	return yaml.Marshal(g)
}

// DefaultGenesis returns a small genesis with one xyk and one
// geometric pair.
func DefaultGenesis() *Genesis {
	return &Genesis{
		Owner:    "owner",
		Contract: "dex",
		Pairs: []GenesisPair{
			{
				Base:         "eth",
				Quote:        "usdc",
				LPDenom:      "dex/pool/eth-usdc",
				SwapFeeRate:  "0.003",
				MinOrderSize: "0",
				Curve:        GenesisCurve{Kind: "xyk", Spacing: "0.1", ReserveRatio: "0", Limit: 10},
			},
			{
				Base:         "btc",
				Quote:        "usdc",
				LPDenom:      "dex/pool/btc-usdc",
				SwapFeeRate:  "0.005",
				MinOrderSize: "0",
				Curve:        GenesisCurve{Kind: "geometric", Spacing: "1", Ratio: "0.5", Limit: 10},
			},
		},
		Balances: map[string][]string{
			"lp":    {"100000eth", "100000btc", "10000000usdc"},
			"alice": {"1000eth", "1000btc", "1000000usdc"},
			"bob":   {"1000eth", "1000btc", "1000000usdc"},
		},
		Liquidity: []GenesisLiquidity{
			{Provider: "lp", Base: "eth", Quote: "usdc", Deposit: []string{"10000eth", "1000000usdc"}},
			{Provider: "lp", Base: "btc", Quote: "usdc", Deposit: []string{"1000btc", "1000000usdc"}},
		},
	}
}

func parseDecOrZero(s string) (dex.Dec, error) {
	if s == "" {
		return dex.Dec{}, nil
	}
	return dex.ParseDec(s)
}

func parseCoins(ss []string) (dex.Coins, error) {
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

func (p GenesisPair) update() (dex.PairUpdate, error) {
	var u dex.PairUpdate
	u.Pair = dex.PairID{Base: dex.Denom(p.Base), Quote: dex.Denom(p.Quote)}
	u.Params.LPDenom = dex.Denom(p.LPDenom)

	var err error
	u.Params.SwapFeeRate, err = dex.ParseDec(p.SwapFeeRate)
	if err != nil {
		return u, err
	}

	u.Params.MinOrderSize = new(uint256.Int)
	if p.MinOrderSize != "" {
		u.Params.MinOrderSize, err = uint256.FromDecimal(p.MinOrderSize)
		if err != nil {
			return u, errors.Wrapf(err, "min order size %q", p.MinOrderSize)
		}
	}

	c := &u.Params.Curve
	switch p.Curve.Kind {
	case "xyk":
		c.Kind = dex.CurveXyk
	case "geometric":
		c.Kind = dex.CurveGeometric
	default:
		return u, errors.Errorf("unknown curve kind %q", p.Curve.Kind)
	}

	c.Limit = p.Curve.Limit
	c.Spacing, err = dex.ParseDec(p.Curve.Spacing)
	if err != nil {
		return u, err
	}

	c.ReserveRatio, err = parseDecOrZero(p.Curve.ReserveRatio)
	if err != nil {
		return u, err
	}

	c.Ratio, err = parseDecOrZero(p.Curve.Ratio)
	return u, err
}

// Build creates the app at height 0: it mints the balances, creates
// the pairs as the owner and provides the genesis liquidity.
func (g *Genesis) Build(sink EventSink) (*App, error) {
	kv := store.NewMemory()
	app := NewApp(kv, 0, ResolveAddr(g.Contract), ResolveAddr(g.Owner), sink)

	l := bank(kv)
	for name, ss := range g.Balances {
		coins, err := parseCoins(ss)
		if err != nil {
			return nil, errors.Wrapf(err, "balance of %s", name)
		}

		err = l.Mint(ResolveAddr(name), coins)
		if err != nil {
			return nil, err
		}
	}

	updates := make([]dex.PairUpdate, len(g.Pairs))
	for i, p := range g.Pairs {
		u, err := p.update()
		if err != nil {
			return nil, errors.Wrapf(err, "pair %s/%s", p.Base, p.Quote)
		}
		updates[i] = u
	}

	t := app.newTransition(consensus.BlockInfo{})
	_, err := t.execute(kv, &Txn{Sender: app.owner, Funds: make(dex.Coins)}, dex.UpdatePairsMsg{Updates: updates})
	if err != nil {
		return nil, errors.Wrap(err, "create pairs")
	}

	for _, liq := range g.Liquidity {
		funds, err := parseCoins(liq.Deposit)
		if err != nil {
			return nil, err
		}

		pair := dex.PairID{Base: dex.Denom(liq.Base), Quote: dex.Denom(liq.Quote)}
		txn := &Txn{Sender: ResolveAddr(liq.Provider), Funds: funds}
		_, err = t.execute(kv, txn, dex.ProvideLiquidityMsg{Pair: pair})
		if err != nil {
			return nil, errors.Wrapf(err, "provide liquidity to %s", pair)
		}
	}
	return app, nil
}
