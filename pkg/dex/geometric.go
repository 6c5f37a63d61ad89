package dex

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// geometric places a fixed ratio of the remaining liquidity at each
// level, so the depth decays geometrically away from the marginal
// price. Swaps execute against the same levels.
type geometric struct {
	params CurveParams
	fee    Dec
}

func (c geometric) Reflect(r Reserves) (bids, asks []Level, err error) {
	mp, err := marginalPrice(r)
	if err != nil || mp.IsZero() {
		return nil, nil, nil
	}

	oneSubFee, onePlusFee, err := feeFactors(c.fee)
	if err != nil {
		return nil, nil, err
	}

	price, err := mp.Mul(oneSubFee)
	if err != nil {
		return nil, nil, err
	}

	remainingQuote := r.Quote.Clone()
	for uint64(len(bids)) < c.params.Limit && !price.IsZero() {
		sizeQuote, err := c.params.Ratio.MulFloor(remainingQuote)
		if err != nil {
			return nil, nil, err
		}

		amount, err := price.DivFloor(sizeQuote)
		if err != nil {
			return nil, nil, err
		}

		if amount.IsZero() {
			break
		}

		deposit, err := price.MulCeil(amount)
		if err != nil {
			return nil, nil, err
		}

		bids = append(bids, Level{Price: price, Amount: amount})
		remainingQuote.Sub(remainingQuote, deposit)
		if price.Cmp(c.params.Spacing) <= 0 {
			break
		}
		price, _ = price.Sub(c.params.Spacing)
	}

	price, err = mp.Mul(onePlusFee)
	if err != nil {
		return nil, nil, err
	}

	remainingBase := r.Base.Clone()
	for uint64(len(asks)) < c.params.Limit {
		amount, err := c.params.Ratio.MulFloor(remainingBase)
		if err != nil {
			return nil, nil, err
		}

		if amount.IsZero() {
			break
		}

		asks = append(asks, Level{Price: price, Amount: amount})
		remainingBase.Sub(remainingBase, amount)
		price, err = price.Add(c.params.Spacing)
		if err != nil {
			break
		}
	}
	return bids, asks, nil
}

// SwapExactIn walks the reflected levels of the other side: a bid
// buys from the pool's asks, an ask sells into the pool's bids. The
// fee is taken from the output.
func (c geometric) SwapExactIn(r Reserves, d Direction, input *uint256.Int) (*uint256.Int, error) {
	bids, asks, err := c.Reflect(r)
	if err != nil {
		return nil, err
	}

	output := new(uint256.Int)
	if d == Bid {
		remaining := input.Clone()
		done := false
		for _, l := range asks {
			affordable, err := l.Price.DivFloor(remaining)
			if err != nil {
				return nil, err
			}

			matched := minAmount(l.Amount, affordable)
			cost, err := l.Price.MulCeil(matched)
			if err != nil {
				return nil, err
			}

			output.Add(output, matched)
			remaining.Sub(remaining, cost)
			if matched.Lt(l.Amount) {
				// what is left can not buy a whole unit here.
				done = true
				break
			}
		}

		if !done && !remaining.IsZero() {
			return nil, errors.Wrapf(ErrInsufficientLiq, "%s of the input left unmatched", remaining.Dec())
		}
	} else {
		remaining := input.Clone()
		for _, l := range bids {
			matched := minAmount(l.Amount, remaining)
			proceeds, err := l.Price.MulFloor(matched)
			if err != nil {
				return nil, err
			}

			output.Add(output, proceeds)
			remaining.Sub(remaining, matched)
			if remaining.IsZero() {
				break
			}
		}

		if !remaining.IsZero() {
			return nil, errors.Wrapf(ErrInsufficientLiq, "%s of the input left unmatched", remaining.Dec())
		}
	}

	oneSubFee, _, err := feeFactors(c.fee)
	if err != nil {
		return nil, err
	}
	return oneSubFee.MulFloor(output)
}

// SwapExactOut grosses the output up by the fee and walks the levels
// until it is covered.
func (c geometric) SwapExactOut(r Reserves, d Direction, output *uint256.Int) (*uint256.Int, error) {
	bids, asks, err := c.Reflect(r)
	if err != nil {
		return nil, err
	}

	oneSubFee, _, err := feeFactors(c.fee)
	if err != nil {
		return nil, err
	}

	need, err := oneSubFee.DivCeil(output)
	if err != nil {
		return nil, err
	}

	input := new(uint256.Int)
	if d == Bid {
		for _, l := range asks {
			take := minAmount(l.Amount, need)
			cost, err := l.Price.MulCeil(take)
			if err != nil {
				return nil, err
			}

			input.Add(input, cost)
			need.Sub(need, take)
			if need.IsZero() {
				return input, nil
			}
		}
	} else {
		for _, l := range bids {
			levelQuote, err := l.Price.MulFloor(l.Amount)
			if err != nil {
				return nil, err
			}

			if !levelQuote.Lt(need) {
				sold, err := l.Price.DivCeil(need)
				if err != nil {
					return nil, err
				}
				return input.Add(input, sold), nil
			}

			input.Add(input, l.Amount)
			need.Sub(need, levelQuote)
		}
	}
	return nil, errors.Wrapf(ErrInsufficientLiq, "%s of the output not available", need.Dec())
}

// AddLiquidity values the deposit and the reserves in the quote denom
// at the marginal price and mints supply × deposit / reserves, so the
// new tokens own exactly the value deposited.
func (c geometric) AddLiquidity(r Reserves, supply *uint256.Int, base, quote *uint256.Int) (*uint256.Int, error) {
	if supply.IsZero() {
		return initialLiquidity(base, quote)
	}

	mp, err := marginalPrice(r)
	if err != nil {
		return nil, err
	}

	value := func(b, q *uint256.Int) (*uint256.Int, error) {
		v, err := mp.MulFloor(b)
		if err != nil {
			return nil, err
		}
		return add(v, q)
	}

	depositValue, err := value(base, quote)
	if err != nil {
		return nil, err
	}

	reserveValue, err := value(r.Base, r.Quote)
	if err != nil {
		return nil, err
	}
	return mulDiv(supply, depositValue, reserveValue)
}

func (c geometric) RemoveLiquidity(r Reserves, supply *uint256.Int, burn *uint256.Int) (*uint256.Int, *uint256.Int, error) {
	return removeLiquidity(r, supply, burn)
}
