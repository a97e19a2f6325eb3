package fixed

import (
	"math/big"

	"cosmossdk.io/math"
)

const (
	// guardDigits are carried through the series evaluations and dropped on return.
	guardDigits = 6

	// maxPowIterations bounds the fractional power series.
	maxPowIterations = 200

	// maxExpShift bounds the binary exponent of Exp results.
	maxExpShift = 300
)

// ln2Digits holds ln(2) with 60 decimals.
var ln2Digits, _ = new(big.Int).SetString("693147180559945309417232121458176568075500134360255254120680", 10)

const ln2Decimals = 60

// ln2 returns ln(2) scaled by 10^decimals.
func ln2(decimals uint32) *big.Int {
	return new(big.Int).Quo(ln2Digits, pow10(ln2Decimals-decimals))
}

// Pow returns base^exp for base in [1, 2*one-1] raw units.
//
// The integer part of exp is applied by repeated squaring and the fractional part by
// the binomial series of (1 + (base - 1))^f, stopped once a term drops below
// BpowPrecision.
func (p Precision) Pow(base, exp math.Int) (math.Int, error) {
	if exp.IsNegative() {
		return math.Int{}, ErrArithmetic.Wrapf("negative exponent %s", exp)
	}
	maxBase := new(big.Int).Sub(new(big.Int).Lsh(p.one, 1), big.NewInt(1))
	if base.LT(math.OneInt()) || base.BigIntMut().Cmp(maxBase) > 0 {
		return math.Int{}, ErrArithmetic.Wrapf("power base %s out of range", base)
	}

	whole := p.Floor(exp)
	remain := exp.Sub(whole)
	n := new(big.Int).Quo(whole.BigIntMut(), p.one)

	wholePow, err := p.powi(base, n)
	if err != nil {
		return math.Int{}, err
	}
	if remain.IsZero() {
		return wholePow, nil
	}
	partial, err := p.powApprox(base, remain)
	if err != nil {
		return math.Int{}, err
	}
	return p.Mul(wholePow, partial)
}

func (p Precision) powi(a math.Int, n *big.Int) (math.Int, error) {
	n = new(big.Int).Set(n)
	z := p.One()
	if n.Bit(0) == 1 {
		z = a
	}
	var err error
	for n.Rsh(n, 1); n.Sign() != 0; n.Rsh(n, 1) {
		if a, err = p.Mul(a, a); err != nil {
			return math.Int{}, err
		}
		if n.Bit(0) == 1 {
			if z, err = p.Mul(z, a); err != nil {
				return math.Int{}, err
			}
		}
	}
	return z, nil
}

func (p Precision) powApprox(base, exp math.Int) (math.Int, error) {
	one := p.One()
	precision := p.BpowPrecision()
	x, xneg := absDiff(base, one)
	term := one
	sum := one
	negative := false

	for i := int64(1); term.GTE(precision); i++ {
		if i > maxPowIterations {
			return math.Int{}, ErrArithmetic.Wrap("power series did not converge")
		}
		bigK := p.Int(i)
		c, cneg := absDiff(exp, bigK.Sub(one))
		cx, err := p.Mul(c, x)
		if err != nil {
			return math.Int{}, err
		}
		if term, err = p.Mul(term, cx); err != nil {
			return math.Int{}, err
		}
		if term, err = p.Div(term, bigK); err != nil {
			return math.Int{}, err
		}
		if term.IsZero() {
			break
		}
		if xneg {
			negative = !negative
		}
		if cneg {
			negative = !negative
		}
		if negative {
			if sum, err = p.Sub(sum, term); err != nil {
				return math.Int{}, err
			}
		} else if sum, err = p.Add(sum, term); err != nil {
			return math.Int{}, err
		}
	}
	return sum, nil
}

// Exp returns e^x for a signed fixed-point x.
func (p Precision) Exp(x math.Int) (math.Int, error) {
	wd := p.decimals + guardDigits
	w := pow10(wd)
	l2 := ln2(wd)
	xw := new(big.Int).Mul(x.BigIntMut(), pow10(guardDigits))

	// x = k*ln2 + r with |r| <= ln2/2
	k := roundQuo(xw, l2)
	if k.CmpAbs(big.NewInt(maxExpShift)) > 0 {
		if k.Sign() < 0 {
			return math.ZeroInt(), nil
		}
		return math.Int{}, ErrArithmetic.Wrapf("exp(%s) overflows", x)
	}
	r := new(big.Int).Sub(xw, new(big.Int).Mul(k, l2))

	sum := new(big.Int).Set(w)
	term := new(big.Int).Set(w)
	for n := int64(1); ; n++ {
		term.Mul(term, r)
		term = roundQuo(term, new(big.Int).Mul(w, big.NewInt(n)))
		if term.Sign() == 0 {
			break
		}
		sum.Add(sum, term)
	}

	shift := k.Int64()
	if shift >= 0 {
		sum.Lsh(sum, uint(shift))
	} else {
		sum.Rsh(sum, uint(-shift))
	}
	return toInt(roundQuo(sum, pow10(guardDigits)))
}

// Ln returns the natural logarithm of a positive fixed-point x.
func (p Precision) Ln(x math.Int) (math.Int, error) {
	if !x.IsPositive() {
		return math.Int{}, ErrArithmetic.Wrapf("logarithm of non-positive value %s", x)
	}
	wd := p.decimals + guardDigits
	w := pow10(wd)
	two := new(big.Int).Lsh(w, 1)
	y := new(big.Int).Mul(x.BigIntMut(), pow10(guardDigits))

	// x = 2^k * y with y in [1, 2)
	k := int64(0)
	for y.Cmp(two) >= 0 {
		y.Rsh(y, 1)
		k++
	}
	for y.Cmp(w) < 0 {
		y.Lsh(y, 1)
		k--
	}

	// ln y = 2 * atanh((y-1)/(y+1))
	num := new(big.Int).Mul(new(big.Int).Sub(y, w), w)
	z := roundQuo(num, new(big.Int).Add(y, w))
	z2 := roundQuo(new(big.Int).Mul(z, z), w)

	sum := new(big.Int)
	term := new(big.Int).Set(z)
	for n := int64(1); term.Sign() != 0; n += 2 {
		sum.Add(sum, new(big.Int).Quo(term, big.NewInt(n)))
		term = roundQuo(term.Mul(term, z2), w)
	}
	sum.Lsh(sum, 1)
	sum.Add(sum, new(big.Int).Mul(big.NewInt(k), ln2(wd)))
	return toInt(roundQuo(sum, pow10(guardDigits)))
}

// absDiff returns |a-b| and whether a < b.
func absDiff(a, b math.Int) (math.Int, bool) {
	if a.GTE(b) {
		return a.Sub(b), false
	}
	return b.Sub(a), true
}
