package dex

import (
	"strings"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// LPDenomPrefix is the namespace every LP token denom must live in.
const LPDenomPrefix = "dex/pool/"

// maxReflectLevels bounds the number of orders a pool places on each
// side of the book.
const maxReflectLevels = 100

// CurveKind is the kind of the passive liquidity curve of a pair.
type CurveKind uint8

const (
	CurveXyk CurveKind = iota
	CurveGeometric
)

func (k CurveKind) String() string {
	switch k {
	case CurveXyk:
		return "xyk"
	case CurveGeometric:
		return "geometric"
	default:
		return "unknown"
	}
}

// CurveParams parameterizes the pool curve of a pair.
//
//   - Spacing: the price step between consecutive reflected levels.
//   - ReserveRatio (xyk): fraction of the reserves kept out of the book.
//   - Ratio (geometric): fraction of the remaining liquidity placed in
//     each level.
//   - Limit: maximum number of levels on each side.
type CurveParams struct {
	Kind         CurveKind
	Spacing      Dec
	ReserveRatio Dec
	Ratio        Dec
	Limit        uint64
}

// PairParams are the parameters of a trading pair.
type PairParams struct {
	LPDenom      Denom
	Curve        CurveParams
	SwapFeeRate  Dec
	MinOrderSize *uint256.Int // minimum quote value of a user order
}

// PairUpdate creates or updates a pair.
type PairUpdate struct {
	Pair   PairID
	Params PairParams
}

func (p PairParams) Validate() error {
	if err := p.LPDenom.Validate(); err != nil {
		return err
	}

	if !strings.HasPrefix(string(p.LPDenom), LPDenomPrefix) {
		return errors.Errorf("LP denom %s must start with %q", p.LPDenom, LPDenomPrefix)
	}

	// a zero fee would put the best pool bid and ask at the same
	// price.
	if p.SwapFeeRate.IsZero() || p.SwapFeeRate.Cmp(decOne) >= 0 {
		return errors.Errorf("swap fee rate %s must be in (0, 1)", p.SwapFeeRate)
	}

	c := p.Curve
	if c.Spacing.IsZero() {
		return errors.New("curve spacing must be positive")
	}

	if c.Limit == 0 || c.Limit > maxReflectLevels {
		return errors.Errorf("curve limit must be between 1 and %d", maxReflectLevels)
	}

	switch c.Kind {
	case CurveXyk:
		if c.ReserveRatio.Cmp(decOne) >= 0 {
			return errors.Errorf("reserve ratio %s must be less than 1", c.ReserveRatio)
		}
	case CurveGeometric:
		if c.Ratio.IsZero() || c.Ratio.Cmp(decOne) > 0 {
			return errors.Errorf("geometric ratio %s must be in (0, 1]", c.Ratio)
		}
	default:
		return errors.Errorf("unknown curve kind %d", c.Kind)
	}
	return nil
}

// Pool returns the curve implementation of the pair.
func (p PairParams) Pool() Curve {
	switch p.Curve.Kind {
	case CurveGeometric:
		return geometric{params: p.Curve, fee: p.SwapFeeRate}
	default:
		return xyk{params: p.Curve, fee: p.SwapFeeRate}
	}
}
