// Package fixed implements checked fixed-point arithmetic over math.Int.
//
// A fixed-point value is a math.Int holding the real number scaled by 10^Decimals of a
// Precision. Every operation checks its intermediate results against the 256-bit bound
// of math.Int and fails with ErrArithmetic instead of wrapping, truncating silently or
// panicking. Division by zero fails the same way.
package fixed

import (
	"fmt"
	"math/big"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/math"
)

// Codespace is the error codespace of the fixed-point layer.
const Codespace = "fixed"

// ErrArithmetic is returned on overflow, underflow or division by zero.
var ErrArithmetic = errorsmod.Register(Codespace, 2, "arithmetic error")

// MaxDecimals bounds the precision so that the transcendental helpers keep their guard
// digits inside the constant tables.
const MaxDecimals = 36

// Precision is the scale shared by every value handed to this package.
type Precision struct {
	decimals uint32
	one      *big.Int
}

// NewPrecision returns a precision with the given number of decimals.
func NewPrecision(decimals uint32) (Precision, error) {
	if decimals == 0 || decimals > MaxDecimals {
		return Precision{}, fmt.Errorf("decimals must be in [1, %d], got %d", MaxDecimals, decimals)
	}
	return Precision{decimals: decimals, one: pow10(decimals)}, nil
}

// MustNewPrecision is NewPrecision that panics on invalid input.
func MustNewPrecision(decimals uint32) Precision {
	p, err := NewPrecision(decimals)
	if err != nil {
		panic(err)
	}
	return p
}

// Decimals returns the number of decimals.
func (p Precision) Decimals() uint32 { return p.decimals }

// One returns the fixed-point representation of 1.
func (p Precision) One() math.Int { return math.NewIntFromBigInt(p.one) }

// IsZero reports whether p was never initialized.
func (p Precision) IsZero() bool { return p.one == nil }

// BpowPrecision is the term size at which the fractional power series stops. It never
// drops below 10 raw units, where rounded products stop shrinking the terms.
func (p Precision) BpowPrecision() math.Int {
	if p.decimals <= 11 {
		return math.NewInt(10)
	}
	return math.NewIntFromBigInt(pow10(p.decimals - 10))
}

// Int returns n as a fixed-point value.
func (p Precision) Int(n int64) math.Int {
	return math.NewIntFromBigInt(new(big.Int).Mul(big.NewInt(n), p.one))
}

// Frac returns num/den as a fixed-point value, truncated.
func (p Precision) Frac(num, den int64) math.Int {
	v := new(big.Int).Mul(big.NewInt(num), p.one)
	return math.NewIntFromBigInt(v.Quo(v, big.NewInt(den)))
}

// Add returns a+b.
func (p Precision) Add(a, b math.Int) (math.Int, error) {
	res, err := a.SafeAdd(b)
	if err != nil {
		return math.Int{}, ErrArithmetic.Wrapf("%s + %s", a, b)
	}
	return res, nil
}

// Sub returns a-b and fails when the result would be negative.
func (p Precision) Sub(a, b math.Int) (math.Int, error) {
	if a.LT(b) {
		return math.Int{}, ErrArithmetic.Wrapf("underflow: %s - %s", a, b)
	}
	res, err := a.SafeSub(b)
	if err != nil {
		return math.Int{}, ErrArithmetic.Wrapf("%s - %s", a, b)
	}
	return res, nil
}

// SignedSub returns a-b, allowing negative results.
func (p Precision) SignedSub(a, b math.Int) (math.Int, error) {
	res, err := a.SafeSub(b)
	if err != nil {
		return math.Int{}, ErrArithmetic.Wrapf("%s - %s", a, b)
	}
	return res, nil
}

// Mul returns a*b rounded half away from zero.
func (p Precision) Mul(a, b math.Int) (math.Int, error) {
	prod := new(big.Int).Mul(a.BigIntMut(), b.BigIntMut())
	if overflows(prod) {
		return math.Int{}, ErrArithmetic.Wrapf("overflow: %s * %s", a, b)
	}
	return toInt(roundQuo(prod, p.one))
}

// MulFloor returns a*b truncated toward zero.
func (p Precision) MulFloor(a, b math.Int) (math.Int, error) {
	prod := new(big.Int).Mul(a.BigIntMut(), b.BigIntMut())
	if overflows(prod) {
		return math.Int{}, ErrArithmetic.Wrapf("overflow: %s * %s", a, b)
	}
	return toInt(prod.Quo(prod, p.one))
}

// Div returns a/b rounded half away from zero.
func (p Precision) Div(a, b math.Int) (math.Int, error) {
	if b.IsZero() {
		return math.Int{}, ErrArithmetic.Wrapf("division by zero: %s / 0", a)
	}
	num := new(big.Int).Mul(a.BigIntMut(), p.one)
	if overflows(num) {
		return math.Int{}, ErrArithmetic.Wrapf("overflow: %s / %s", a, b)
	}
	return toInt(roundQuo(num, b.BigIntMut()))
}

// DivFloor returns a/b truncated toward zero.
func (p Precision) DivFloor(a, b math.Int) (math.Int, error) {
	if b.IsZero() {
		return math.Int{}, ErrArithmetic.Wrapf("division by zero: %s / 0", a)
	}
	num := new(big.Int).Mul(a.BigIntMut(), p.one)
	if overflows(num) {
		return math.Int{}, ErrArithmetic.Wrapf("overflow: %s / %s", a, b)
	}
	return toInt(num.Quo(num, b.BigIntMut()))
}

// Floor drops the fractional part of a non-negative value.
func (p Precision) Floor(a math.Int) math.Int {
	v := new(big.Int).Quo(a.BigIntMut(), p.one)
	return math.NewIntFromBigIntMut(v.Mul(v, p.one))
}

// Sqrt returns the square root of a non-negative value, truncated.
func (p Precision) Sqrt(a math.Int) (math.Int, error) {
	if a.IsNegative() {
		return math.Int{}, ErrArithmetic.Wrapf("square root of negative value %s", a)
	}
	v := new(big.Int).Mul(a.BigIntMut(), p.one)
	if overflows(v) {
		return math.Int{}, ErrArithmetic.Wrapf("overflow: sqrt(%s)", a)
	}
	return toInt(v.Sqrt(v))
}

// roundQuo divides n by d rounding half away from zero. d must be positive or the
// sign is folded into the result.
func roundQuo(n, d *big.Int) *big.Int {
	neg := n.Sign()*d.Sign() < 0
	an := new(big.Int).Abs(n)
	ad := new(big.Int).Abs(d)
	an.Add(an, new(big.Int).Rsh(ad, 1))
	an.Quo(an, ad)
	if neg {
		an.Neg(an)
	}
	return an
}

func overflows(v *big.Int) bool {
	return v.BitLen() > math.MaxBitLen
}

func toInt(v *big.Int) (math.Int, error) {
	if overflows(v) {
		return math.Int{}, ErrArithmetic.Wrap("result exceeds 256 bits")
	}
	return math.NewIntFromBigIntMut(v), nil
}

func pow10(n uint32) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}
