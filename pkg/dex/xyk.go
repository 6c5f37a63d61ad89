package dex

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// xyk is the constant product curve.
type xyk struct {
	params CurveParams
	fee    Dec
}

func sides(r Reserves, d Direction) (in, out *uint256.Int) {
	if d == Bid {
		return r.Quote, r.Base
	}
	return r.Base, r.Quote
}

// SwapExactIn: out = B − ceil(A × B / (A + in)), less the fee,
// rounded down.
func (c xyk) SwapExactIn(r Reserves, d Direction, input *uint256.Int) (*uint256.Int, error) {
	inR, outR := sides(r, d)
	if inR.IsZero() || outR.IsZero() {
		return nil, ErrInsufficientLiq
	}

	denom, err := add(inR, input)
	if err != nil {
		return nil, err
	}

	kept, err := mulDivCeil(inR, outR, denom)
	if err != nil {
		return nil, err
	}

	beforeFee, err := sub(outR, kept)
	if err != nil {
		return nil, err
	}

	oneSubFee, _, err := feeFactors(c.fee)
	if err != nil {
		return nil, err
	}
	return oneSubFee.MulFloor(beforeFee)
}

// SwapExactOut: the fee is added to the output first, rounded up,
// then in = ceil(A × B / (B − out)) − A.
func (c xyk) SwapExactOut(r Reserves, d Direction, output *uint256.Int) (*uint256.Int, error) {
	inR, outR := sides(r, d)
	if inR.IsZero() || outR.IsZero() {
		return nil, ErrInsufficientLiq
	}

	oneSubFee, _, err := feeFactors(c.fee)
	if err != nil {
		return nil, err
	}

	beforeFee, err := oneSubFee.DivCeil(output)
	if err != nil {
		return nil, err
	}

	if !outR.Gt(beforeFee) {
		return nil, errors.Wrapf(ErrInsufficientLiq, "reserve %s, need more than %s", outR.Dec(), beforeFee.Dec())
	}

	k, err := mulDivCeil(inR, outR, new(uint256.Int).Sub(outR, beforeFee))
	if err != nil {
		return nil, err
	}
	return sub(k, inR)
}

// AddLiquidity mints in proportion to the growth of sqrt(base ×
// quote), rounded down.
func (c xyk) AddLiquidity(r Reserves, supply *uint256.Int, base, quote *uint256.Int) (*uint256.Int, error) {
	if supply.IsZero() {
		return initialLiquidity(base, quote)
	}

	before, err := normalizedInvariant(r.Base, r.Quote)
	if err != nil {
		return nil, err
	}

	if before.IsZero() {
		return nil, ErrInsufficientLiq
	}

	newBase, err := add(r.Base, base)
	if err != nil {
		return nil, err
	}

	newQuote, err := add(r.Quote, quote)
	if err != nil {
		return nil, err
	}

	after, err := normalizedInvariant(newBase, newQuote)
	if err != nil {
		return nil, err
	}

	return mulDiv(supply, new(uint256.Int).Sub(after, before), before)
}

func (c xyk) RemoveLiquidity(r Reserves, supply *uint256.Int, burn *uint256.Int) (*uint256.Int, *uint256.Int, error) {
	return removeLiquidity(r, supply, burn)
}

// Reflect places bids below and asks above the marginal price,
// spaced by the curve spacing. At a bid price p the pool would hold
// quote / p − base more base had it been bought along the curve; each
// level gets the increment over the previous one. Asks mirror this
// with base − quote / p.
func (c xyk) Reflect(r Reserves) (bids, asks []Level, err error) {
	base, err := withdrawReserve(r.Base, c.params.ReserveRatio)
	if err != nil {
		return nil, nil, err
	}

	quote, err := withdrawReserve(r.Quote, c.params.ReserveRatio)
	if err != nil {
		return nil, nil, err
	}

	mp, err := marginalPrice(Reserves{Base: base, Quote: quote})
	if err != nil || mp.IsZero() {
		// nothing to reflect
		return nil, nil, nil
	}

	oneSubFee, onePlusFee, err := feeFactors(c.fee)
	if err != nil {
		return nil, nil, err
	}

	bids, err = c.reflectBids(base, quote, mp, oneSubFee)
	if err != nil {
		return nil, nil, err
	}

	asks, err = c.reflectAsks(base, quote, mp, onePlusFee)
	if err != nil {
		return nil, nil, err
	}
	return bids, asks, nil
}

func (c xyk) reflectBids(base, quote *uint256.Int, mp, oneSubFee Dec) ([]Level, error) {
	var levels []Level
	price, err := mp.Mul(oneSubFee)
	if err != nil {
		return nil, err
	}

	prevSize := new(uint256.Int)
	prevSizeQuote := new(uint256.Int)
	for uint64(len(levels)) < c.params.Limit && !price.IsZero() {
		quoteDivPrice, err := price.DivFloor(quote)
		if err != nil {
			return nil, err
		}

		if !quoteDivPrice.Gt(base) {
			break
		}

		size := new(uint256.Int).Sub(quoteDivPrice, base)
		if !size.Gt(prevSize) {
			break
		}

		amount := new(uint256.Int).Sub(size, prevSize)
		amountQuote, err := price.MulCeil(amount)
		if err != nil {
			return nil, err
		}

		sizeQuote, err := add(prevSizeQuote, amountQuote)
		if err != nil {
			return nil, err
		}

		capped := false
		if sizeQuote.Gt(quote) {
			capped = true
			sizeQuote = quote.Clone()
			amountQuote = new(uint256.Int).Sub(sizeQuote, prevSizeQuote)
			amount, err = price.DivFloor(amountQuote)
			if err != nil {
				return nil, err
			}
			size = new(uint256.Int).Add(prevSize, amount)
		}

		if amount.IsZero() {
			break
		}

		levels = append(levels, Level{Price: price, Amount: amount})
		prevSize = size
		prevSizeQuote = sizeQuote
		if capped || price.Cmp(c.params.Spacing) <= 0 {
			break
		}

		price, err = price.Sub(c.params.Spacing)
		if err != nil {
			return nil, err
		}
	}
	return levels, nil
}

func (c xyk) reflectAsks(base, quote *uint256.Int, mp, onePlusFee Dec) ([]Level, error) {
	var levels []Level
	price, err := mp.Mul(onePlusFee)
	if err != nil {
		return nil, err
	}

	prevSize := new(uint256.Int)
	for uint64(len(levels)) < c.params.Limit {
		quoteDivPrice, err := price.DivFloor(quote)
		if err != nil {
			return nil, err
		}

		if !base.Gt(quoteDivPrice) {
			break
		}

		size := minAmount(new(uint256.Int).Sub(base, quoteDivPrice), base)
		if !size.Gt(prevSize) {
			break
		}

		levels = append(levels, Level{Price: price, Amount: new(uint256.Int).Sub(size, prevSize)})
		prevSize = size.Clone()

		price, err = price.Add(c.params.Spacing)
		if err != nil {
			// out of the price range, stop here.
			break
		}
	}
	return levels, nil
}
