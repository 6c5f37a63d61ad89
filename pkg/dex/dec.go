package dex

import (
	"io"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// DecDecimals is the number of decimal places of Dec.
const DecDecimals = 18

var (
	ErrOverflow     = errors.New("arithmetic overflow")
	ErrDivideByZero = errors.New("division by zero")
)

var decScale = new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(DecDecimals))

// Dec is an unsigned fixed-point number with DecDecimals decimal
// places. Prices are quote units per base unit, rates are fractions
// of one.
type Dec struct {
	u uint256.Int
}

func DecFromUint64(v uint64) Dec {
	var d Dec
	d.u.Mul(uint256.NewInt(v), decScale)
	return d
}

// DecFromRatio returns floor(num / den).
func DecFromRatio(num, den *uint256.Int) (Dec, error) {
	var d Dec
	if den.IsZero() {
		return d, ErrDivideByZero
	}

	_, overflow := d.u.MulDivOverflow(num, decScale, den)
	if overflow {
		return d, ErrOverflow
	}
	return d, nil
}

// DecFromRaw returns the Dec whose raw 10^-18 unit count is raw.
func DecFromRaw(raw *uint256.Int) Dec {
	var d Dec
	d.u.Set(raw)
	return d
}

// ParseDec parses a decimal string such as "1.5".
func ParseDec(s string) (Dec, error) {
	var d Dec
	v, err := decimal.NewFromString(s)
	if err != nil {
		return d, errors.Wrapf(err, "invalid decimal %q", s)
	}

	if v.IsNegative() {
		return d, errors.Errorf("negative decimal %q", s)
	}

	scaled := v.Shift(DecDecimals)
	if !scaled.Equal(scaled.Truncate(0)) {
		return d, errors.Errorf("decimal %q has more than %d decimal places", s, DecDecimals)
	}

	u, overflow := uint256.FromBig(scaled.BigInt())
	if overflow {
		return d, ErrOverflow
	}

	d.u.Set(u)
	return d, nil
}

// MustParseDec is ParseDec that panics on error, for constants and
// tests.
func MustParseDec(s string) Dec {
	d, err := ParseDec(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Dec) String() string {
	return decimal.NewFromBigInt(d.u.ToBig(), -DecDecimals).String()
}

// Raw returns the number of 10^-18 units.
func (d Dec) Raw() *uint256.Int {
	return d.u.Clone()
}

func (d Dec) IsZero() bool {
	return d.u.IsZero()
}

func (d Dec) Cmp(o Dec) int {
	return d.u.Cmp(&o.u)
}

func (d Dec) Add(o Dec) (Dec, error) {
	var r Dec
	if _, overflow := r.u.AddOverflow(&d.u, &o.u); overflow {
		return r, ErrOverflow
	}
	return r, nil
}

func (d Dec) Sub(o Dec) (Dec, error) {
	var r Dec
	if _, underflow := r.u.SubOverflow(&d.u, &o.u); underflow {
		return r, ErrOverflow
	}
	return r, nil
}

// Mul returns floor(d × o).
func (d Dec) Mul(o Dec) (Dec, error) {
	var r Dec
	if _, overflow := r.u.MulDivOverflow(&d.u, &o.u, decScale); overflow {
		return r, ErrOverflow
	}
	return r, nil
}

// Div returns floor(d / o).
func (d Dec) Div(o Dec) (Dec, error) {
	var r Dec
	if o.IsZero() {
		return r, ErrDivideByZero
	}

	if _, overflow := r.u.MulDivOverflow(&d.u, decScale, &o.u); overflow {
		return r, ErrOverflow
	}
	return r, nil
}

// Midpoint returns floor((d + o) / 2).
func (d Dec) Midpoint(o Dec) Dec {
	var a, b, r Dec
	a.u.Rsh(&d.u, 1)
	b.u.Rsh(&o.u, 1)
	r.u.Add(&a.u, &b.u)
	if d.u.Uint64()&1 == 1 && o.u.Uint64()&1 == 1 {
		r.u.AddUint64(&r.u, 1)
	}
	return r
}

// MulFloor returns floor(amount × d).
func (d Dec) MulFloor(amount *uint256.Int) (*uint256.Int, error) {
	r, overflow := new(uint256.Int).MulDivOverflow(amount, &d.u, decScale)
	if overflow {
		return nil, ErrOverflow
	}
	return r, nil
}

// MulCeil returns ceil(amount × d).
func (d Dec) MulCeil(amount *uint256.Int) (*uint256.Int, error) {
	r, err := d.MulFloor(amount)
	if err != nil {
		return nil, err
	}

	if !new(uint256.Int).MulMod(amount, &d.u, decScale).IsZero() {
		if _, overflow := r.AddOverflow(r, one); overflow {
			return nil, ErrOverflow
		}
	}
	return r, nil
}

// DivFloor returns floor(amount / d).
func (d Dec) DivFloor(amount *uint256.Int) (*uint256.Int, error) {
	if d.IsZero() {
		return nil, ErrDivideByZero
	}

	r, overflow := new(uint256.Int).MulDivOverflow(amount, decScale, &d.u)
	if overflow {
		return nil, ErrOverflow
	}
	return r, nil
}

// DivCeil returns ceil(amount / d).
func (d Dec) DivCeil(amount *uint256.Int) (*uint256.Int, error) {
	r, err := d.DivFloor(amount)
	if err != nil {
		return nil, err
	}

	if !new(uint256.Int).MulMod(amount, decScale, &d.u).IsZero() {
		if _, overflow := r.AddOverflow(r, one); overflow {
			return nil, ErrOverflow
		}
	}
	return r, nil
}

// Bytes32 returns the big endian encoding, which sorts the same way
// the numbers do.
func (d Dec) Bytes32() [32]byte {
	return d.u.Bytes32()
}

func decFromBytes32(b []byte) Dec {
	var d Dec
	d.u.SetBytes32(b)
	return d
}

// EncodeRLP implements rlp.Encoder.
func (d Dec) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, d.u.ToBig())
}

// DecodeRLP implements rlp.Decoder.
func (d *Dec) DecodeRLP(s *rlp.Stream) error {
	b, err := s.BigInt()
	if err != nil {
		return err
	}

	u, overflow := uint256.FromBig(b)
	if overflow {
		return ErrOverflow
	}

	d.u.Set(u)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Dec) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Dec) UnmarshalText(b []byte) error {
	v, err := ParseDec(string(b))
	if err != nil {
		return err
	}

	*d = v
	return nil
}

var (
	zero = uint256.NewInt(0)
	one  = uint256.NewInt(1)
)

var decOne = DecFromUint64(1)

// checked arithmetic helpers on amounts.

func add(a, b *uint256.Int) (*uint256.Int, error) {
	r, overflow := new(uint256.Int).AddOverflow(a, b)
	if overflow {
		return nil, ErrOverflow
	}
	return r, nil
}

func sub(a, b *uint256.Int) (*uint256.Int, error) {
	r, underflow := new(uint256.Int).SubOverflow(a, b)
	if underflow {
		return nil, ErrOverflow
	}
	return r, nil
}

func mul(a, b *uint256.Int) (*uint256.Int, error) {
	r, overflow := new(uint256.Int).MulOverflow(a, b)
	if overflow {
		return nil, ErrOverflow
	}
	return r, nil
}

// mulDiv returns floor(a × b / d) with a 512 bit intermediate.
func mulDiv(a, b, d *uint256.Int) (*uint256.Int, error) {
	if d.IsZero() {
		return nil, ErrDivideByZero
	}

	r, overflow := new(uint256.Int).MulDivOverflow(a, b, d)
	if overflow {
		return nil, ErrOverflow
	}
	return r, nil
}

// mulDivCeil returns ceil(a × b / d).
func mulDivCeil(a, b, d *uint256.Int) (*uint256.Int, error) {
	r, err := mulDiv(a, b, d)
	if err != nil {
		return nil, err
	}

	if !new(uint256.Int).MulMod(a, b, d).IsZero() {
		return add(r, one)
	}
	return r, nil
}

func minAmount(a, b *uint256.Int) *uint256.Int {
	if a.Lt(b) {
		return a
	}
	return b
}
