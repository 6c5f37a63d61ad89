package dex

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

const (
	// MinimumLiquidity LP tokens are minted to the exchange itself
	// on the first deposit and never withdrawn, so the pool can not
	// be emptied down to a share price an attacker controls.
	MinimumLiquidity = 1000

	// initialLPMultiplier scales the LP supply minted on the first
	// deposit.
	initialLPMultiplier = 1000000
)

// Level is one order a pool places in the book.
type Level struct {
	Price  Dec
	Amount *uint256.Int // base denom
}

// Curve is the passive liquidity curve of a pair. Swap directions
// are the taker's: Bid pays quote for base, Ask pays base for quote.
type Curve interface {
	// SwapExactIn returns the output of selling input to the pool.
	SwapExactIn(r Reserves, d Direction, input *uint256.Int) (*uint256.Int, error)
	// SwapExactOut returns the input needed to get output from the
	// pool.
	SwapExactOut(r Reserves, d Direction, output *uint256.Int) (*uint256.Int, error)
	// AddLiquidity returns the LP tokens to mint for a deposit.
	AddLiquidity(r Reserves, supply *uint256.Int, base, quote *uint256.Int) (*uint256.Int, error)
	// RemoveLiquidity returns the assets returned for burning LP
	// tokens.
	RemoveLiquidity(r Reserves, supply *uint256.Int, burn *uint256.Int) (base, quote *uint256.Int, err error)
	// Reflect returns the orders representing the reserves, best
	// price first on each side. The bids never lock more than the
	// quote reserve and the asks never sell more than the base
	// reserve.
	Reflect(r Reserves) (bids, asks []Level, err error)
}

// applySwap returns the reserves after the taker paid input and
// received output.
func applySwap(r Reserves, d Direction, input, output *uint256.Int) (Reserves, error) {
	inR, outR := r.Quote, r.Base
	if d == Ask {
		inR, outR = r.Base, r.Quote
	}

	newIn, err := add(inR, input)
	if err != nil {
		return r, err
	}

	if outR.Lt(output) {
		return r, ErrInsufficientLiq
	}

	newOut := new(uint256.Int).Sub(outR, output)
	if d == Ask {
		return Reserves{Base: newIn, Quote: newOut}, nil
	}
	return Reserves{Base: newOut, Quote: newIn}, nil
}

// initialLiquidity mints sqrt(base × quote) scaled by the multiplier.
func initialLiquidity(base, quote *uint256.Int) (*uint256.Int, error) {
	if base.IsZero() || quote.IsZero() {
		return nil, errors.Wrap(ErrZeroAmount, "the first deposit must include both assets")
	}

	invariant, err := normalizedInvariant(base, quote)
	if err != nil {
		return nil, err
	}
	return mul(invariant, uint256.NewInt(initialLPMultiplier))
}

func normalizedInvariant(base, quote *uint256.Int) (*uint256.Int, error) {
	k, err := mul(base, quote)
	if err != nil {
		return nil, err
	}
	return new(uint256.Int).Sqrt(k), nil
}

// removeLiquidity returns floor(reserve × burn / supply) of each
// asset.
func removeLiquidity(r Reserves, supply, burn *uint256.Int) (base, quote *uint256.Int, err error) {
	if burn.IsZero() {
		return nil, nil, ErrZeroAmount
	}

	if burn.Gt(supply) {
		return nil, nil, errors.Errorf("burn amount %s exceeds LP supply %s", burn.Dec(), supply.Dec())
	}

	base, err = mulDiv(r.Base, burn, supply)
	if err != nil {
		return nil, nil, err
	}

	quote, err = mulDiv(r.Quote, burn, supply)
	if err != nil {
		return nil, nil, err
	}
	return base, quote, nil
}

// marginalPrice is quote reserve / base reserve.
func marginalPrice(r Reserves) (Dec, error) {
	if r.Base.IsZero() || r.Quote.IsZero() {
		return Dec{}, ErrInsufficientLiq
	}
	return DecFromRatio(r.Quote, r.Base)
}

// feeFactors returns 1 − fee and 1 + fee.
func feeFactors(fee Dec) (sub, plus Dec, err error) {
	sub, err = decOne.Sub(fee)
	if err != nil {
		return
	}

	plus, err = decOne.Add(fee)
	return
}

// withdrawReserve keeps ratio of amount out of the book.
func withdrawReserve(amount *uint256.Int, ratio Dec) (*uint256.Int, error) {
	keep, err := ratio.MulFloor(amount)
	if err != nil {
		return nil, err
	}
	return sub(amount, keep)
}
