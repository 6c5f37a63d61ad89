package dex

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

const maxDenomLen = 128

// Denom is a validated token identifier such as "uusdc" or
// "dex/pool/eth-usdc". Segments are separated by "/".
type Denom string

func (d Denom) Validate() error {
	if len(d) == 0 || len(d) > maxDenomLen {
		return errors.Errorf("denom %q length must be between 1 and %d", string(d), maxDenomLen)
	}

	for _, part := range strings.Split(string(d), "/") {
		if part == "" {
			return errors.Errorf("denom %q has an empty segment", string(d))
		}

		for _, c := range part {
			valid := (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '-' || c == '_' || c == '.'
			if !valid {
				return errors.Errorf("denom %q contains invalid character %q", string(d), c)
			}
		}
	}
	return nil
}

// Coin is an amount of a single denom.
type Coin struct {
	Denom  Denom
	Amount *uint256.Int
}

func NewCoin(denom Denom, amount uint64) Coin {
	return Coin{Denom: denom, Amount: uint256.NewInt(amount)}
}

// ParseCoin parses an amount followed by a denom, such as
// "100usdc".
func ParseCoin(s string) (Coin, error) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}

	if i == 0 {
		return Coin{}, errors.Errorf("coin %q must start with an amount", s)
	}

	amount, err := uint256.FromDecimal(s[:i])
	if err != nil {
		return Coin{}, errors.Wrapf(err, "coin %q", s)
	}

	denom := Denom(s[i:])
	if err := denom.Validate(); err != nil {
		return Coin{}, err
	}
	return Coin{Denom: denom, Amount: amount}, nil
}

func (c Coin) String() string {
	return fmt.Sprintf("%s%s", c.Amount.Dec(), c.Denom)
}

// Coins is a set of non-zero coins of distinct denoms.
type Coins map[Denom]*uint256.Int

func NewCoins(cs ...Coin) (Coins, error) {
	r := make(Coins)
	for _, c := range cs {
		if err := r.Add(c.Denom, c.Amount); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Amount returns the amount of denom, zero if absent.
func (c Coins) Amount(denom Denom) *uint256.Int {
	if a, ok := c[denom]; ok {
		return a.Clone()
	}
	return new(uint256.Int)
}

func (c Coins) Add(denom Denom, amount *uint256.Int) error {
	if amount.IsZero() {
		return nil
	}

	sum, err := add(c.Amount(denom), amount)
	if err != nil {
		return err
	}

	c[denom] = sum
	return nil
}

// Sub deducts amount of denom, failing with ErrInsufficientFunds if
// there is not enough.
func (c Coins) Sub(denom Denom, amount *uint256.Int) error {
	if amount.IsZero() {
		return nil
	}

	have := c.Amount(denom)
	if have.Lt(amount) {
		return errors.Wrapf(ErrInsufficientFunds, "need %s%s, have %s%s", amount.Dec(), denom, have.Dec(), denom)
	}

	left := new(uint256.Int).Sub(have, amount)
	if left.IsZero() {
		delete(c, denom)
	} else {
		c[denom] = left
	}
	return nil
}

// Take removes denom from the set and returns its amount.
func (c Coins) Take(denom Denom) *uint256.Int {
	a := c.Amount(denom)
	delete(c, denom)
	return a
}

func (c Coins) Merge(o Coins) error {
	for _, coin := range o.Sorted() {
		if err := c.Add(coin.Denom, coin.Amount); err != nil {
			return err
		}
	}
	return nil
}

func (c Coins) IsEmpty() bool {
	return len(c) == 0
}

func (c Coins) Clone() Coins {
	r := make(Coins, len(c))
	for d, a := range c {
		r[d] = a.Clone()
	}
	return r
}

// Sorted returns the coins ordered by denom.
func (c Coins) Sorted() []Coin {
	r := make([]Coin, 0, len(c))
	for d, a := range c {
		r = append(r, Coin{Denom: d, Amount: a.Clone()})
	}

	sort.Slice(r, func(i, j int) bool {
		return r[i].Denom < r[j].Denom
	})
	return r
}

func (c Coins) String() string {
	sorted := c.Sorted()
	strs := make([]string, len(sorted))
	for i, coin := range sorted {
		strs[i] = coin.String()
	}
	return strings.Join(strs, ",")
}

// EncodeRLP implements rlp.Encoder, the coins are encoded as a list
// sorted by denom.
func (c Coins) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, c.Sorted())
}

// DecodeRLP implements rlp.Decoder.
func (c *Coins) DecodeRLP(s *rlp.Stream) error {
	var list []Coin
	if err := s.Decode(&list); err != nil {
		return err
	}

	r, err := NewCoins(list...)
	if err != nil {
		return err
	}

	*c = r
	return nil
}
