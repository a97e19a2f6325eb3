package types

import (
	"cosmossdk.io/math"

	"github.com/paw-chain/pmamm/pkg/fixed"
)

// FeeSigmoid maps the market volume to the liquidity fee.
//
//	fee(v) = MinFee + (MaxFee - MinFee) / 2 * (1 + z / sqrt(1 + z^2)),  z = (v - Midpoint) / Scale
//
// The fee approaches MinFee for quiet markets and MaxFee for busy ones. All fields are
// fixed-point values.
type FeeSigmoid struct {
	MinFee   math.Int `json:"min_fee"`
	MaxFee   math.Int `json:"max_fee"`
	Midpoint math.Int `json:"midpoint"`
	Scale    math.Int `json:"scale"`
}

// Validate checks the sigmoid parameters against the given precision.
func (f FeeSigmoid) Validate(p fixed.Precision) error {
	switch {
	case f.MinFee.IsNil() || f.MaxFee.IsNil() || f.Midpoint.IsNil() || f.Scale.IsNil():
		return ErrInvalidConfig.Wrap("fee sigmoid has unset fields")
	case !f.MinFee.IsPositive():
		return ErrInvalidConfig.Wrapf("min fee must be positive, got %s", f.MinFee)
	case f.MaxFee.LT(f.MinFee):
		return ErrInvalidConfig.Wrapf("max fee %s below min fee %s", f.MaxFee, f.MinFee)
	case f.MaxFee.GTE(p.One()):
		return ErrInvalidConfig.Wrapf("max fee %s must be below one", f.MaxFee)
	case f.Midpoint.IsNegative():
		return ErrInvalidConfig.Wrapf("midpoint must be non-negative, got %s", f.Midpoint)
	case !f.Scale.IsPositive():
		return ErrInvalidConfig.Wrapf("scale must be positive, got %s", f.Scale)
	}
	return nil
}

// Fee evaluates the sigmoid at volume.
func (f FeeSigmoid) Fee(p fixed.Precision, volume math.Int) (math.Int, error) {
	diff, err := p.SignedSub(volume, f.Midpoint)
	if err != nil {
		return math.Int{}, Arithmetic(err)
	}
	z, err := p.Div(diff, f.Scale)
	if err != nil {
		return math.Int{}, Arithmetic(err)
	}
	z2, err := p.Mul(z, z)
	if err != nil {
		return math.Int{}, Arithmetic(err)
	}
	radicand, err := p.Add(p.One(), z2)
	if err != nil {
		return math.Int{}, Arithmetic(err)
	}
	root, err := p.Sqrt(radicand)
	if err != nil {
		return math.Int{}, Arithmetic(err)
	}
	ratio, err := p.Div(z, root)
	if err != nil {
		return math.Int{}, Arithmetic(err)
	}
	// ratio lies in (-1, 1), so 1 + ratio is positive
	shape := p.One().Add(ratio)
	span := f.MaxFee.Sub(f.MinFee)
	scaled, err := p.Mul(span, shape)
	if err != nil {
		return math.Int{}, Arithmetic(err)
	}
	fee := f.MinFee.Add(scaled.QuoRaw(2))
	if fee.LT(f.MinFee) {
		fee = f.MinFee
	}
	if fee.GT(f.MaxFee) {
		fee = f.MaxFee
	}
	return fee, nil
}

// EmaMarketVolume is an exponential moving average of the traded volume in base units.
//
//	alpha = Smoothing / (Period + 1)
//	ema'  = ema + alpha * (volume - ema)
//
// The average starts at zero.
type EmaMarketVolume struct {
	Period    uint64   `json:"period"`
	Smoothing math.Int `json:"smoothing"`
	Ema       math.Int `json:"ema"`
}

// Validate checks that the smoothing factor lies in (0, 1].
func (e EmaMarketVolume) Validate(p fixed.Precision) error {
	if e.Period == 0 {
		return ErrInvalidConfig.Wrap("ema period must be positive")
	}
	if e.Smoothing.IsNil() || !e.Smoothing.IsPositive() {
		return ErrInvalidConfig.Wrap("ema smoothing must be positive")
	}
	if e.Smoothing.GT(p.Int(int64(e.Period) + 1)) {
		return ErrInvalidConfig.Wrapf("ema smoothing %s exceeds period + 1", e.Smoothing)
	}
	if e.Ema.IsNil() || e.Ema.IsNegative() {
		return ErrInvalidConfig.Wrap("ema must be non-negative")
	}
	return nil
}

// Alpha returns the smoothing factor applied to each new volume.
func (e EmaMarketVolume) Alpha(p fixed.Precision) (math.Int, error) {
	alpha, err := p.Div(e.Smoothing, p.Int(int64(e.Period)+1))
	return alpha, Arithmetic(err)
}

// Update folds volume into the average and returns the new value.
func (e *EmaMarketVolume) Update(p fixed.Precision, volume math.Int) (math.Int, error) {
	if volume.IsNegative() {
		return math.Int{}, ErrInvalidBalances.Wrapf("negative volume %s", volume)
	}
	alpha, err := e.Alpha(p)
	if err != nil {
		return math.Int{}, err
	}
	diff, err := p.SignedSub(volume, e.Ema)
	if err != nil {
		return math.Int{}, Arithmetic(err)
	}
	step, err := p.Mul(alpha, diff)
	if err != nil {
		return math.Int{}, Arithmetic(err)
	}
	next, err := p.Add(e.Ema, step)
	if err != nil {
		return math.Int{}, Arithmetic(err)
	}
	if next.IsNegative() {
		next = math.ZeroInt()
	}
	e.Ema = next
	return next, nil
}

// Clear resets the average to zero.
func (e *EmaMarketVolume) Clear() {
	e.Ema = math.ZeroInt()
}

// RikiddoSigmoidMV is a liquidity-sensitive LMSR whose liquidity factor is the fee
// quoted by a sigmoid of the market volume.
//
// With q the outstanding outcome amounts, S = sum(q), M = max(q) and b = fee * S:
//
//	cost(q)   = M + b * ln(Z),              Z   = sum_j exp((q_j - M) / b)
//	price_i   = fee * (M/b + ln Z) + E_i/Z - sum_j(q_j * E_j) / (S * Z),  E_j = exp((q_j - M) / b)
type RikiddoSigmoidMV struct {
	Fees   FeeSigmoid      `json:"fees"`
	Volume EmaMarketVolume `json:"volume"`
}

// Validate checks both components.
func (r RikiddoSigmoidMV) Validate(p fixed.Precision) error {
	if err := r.Fees.Validate(p); err != nil {
		return err
	}
	return r.Volume.Validate(p)
}

// Fee returns the fee quoted from the current average volume.
func (r RikiddoSigmoidMV) Fee(p fixed.Precision) (math.Int, error) {
	return r.Fees.Fee(p, r.Volume.Ema)
}

// UpdateVolume folds the volume of a completed trade into the average.
func (r *RikiddoSigmoidMV) UpdateVolume(p fixed.Precision, volume math.Int) (math.Int, error) {
	return r.Volume.Update(p, volume)
}

// Clear forgets the traded volume, so the fee falls back to its zero volume value.
func (r *RikiddoSigmoidMV) Clear() {
	r.Volume.Clear()
}

// lmsr holds the intermediate values shared by cost and price.
type lmsr struct {
	fee  math.Int
	sum  math.Int
	max  math.Int
	b    math.Int
	e    []math.Int
	z    math.Int
	lnZ  math.Int
	prec fixed.Precision
}

func (r RikiddoSigmoidMV) evaluate(p fixed.Precision, q []math.Int) (*lmsr, error) {
	if len(q) < 2 {
		return nil, ErrInvalidBalances.Wrapf("need at least two outcomes, got %d", len(q))
	}
	fee, err := r.Fee(p)
	if err != nil {
		return nil, err
	}
	l := &lmsr{fee: fee, sum: math.ZeroInt(), max: math.ZeroInt(), z: math.ZeroInt(), prec: p}
	for i, v := range q {
		if v.IsNil() || v.IsNegative() {
			return nil, ErrInvalidBalances.Wrapf("outcome %d has negative balance", i)
		}
		if l.sum, err = p.Add(l.sum, v); err != nil {
			return nil, Arithmetic(err)
		}
		if v.GT(l.max) {
			l.max = v
		}
	}
	if !l.sum.IsPositive() {
		return nil, ErrInvalidBalances.Wrap("outcome balances sum to zero")
	}
	if l.b, err = p.Mul(fee, l.sum); err != nil {
		return nil, Arithmetic(err)
	}
	if !l.b.IsPositive() {
		return nil, ErrArithmetic.Wrap("liquidity factor rounds to zero")
	}

	l.e = make([]math.Int, len(q))
	for i, v := range q {
		x, err := p.Div(v.Sub(l.max), l.b)
		if err != nil {
			return nil, Arithmetic(err)
		}
		if l.e[i], err = p.Exp(x); err != nil {
			return nil, Arithmetic(err)
		}
		if l.z, err = p.Add(l.z, l.e[i]); err != nil {
			return nil, Arithmetic(err)
		}
	}
	if l.lnZ, err = p.Ln(l.z); err != nil {
		return nil, Arithmetic(err)
	}
	return l, nil
}

// Cost returns the amount of base the market maker must hold for the outstanding amounts q.
func (r RikiddoSigmoidMV) Cost(p fixed.Precision, q []math.Int) (math.Int, error) {
	l, err := r.evaluate(p, q)
	if err != nil {
		return math.Int{}, err
	}
	return l.cost()
}

func (l *lmsr) cost() (math.Int, error) {
	term, err := l.prec.Mul(l.b, l.lnZ)
	if err != nil {
		return math.Int{}, Arithmetic(err)
	}
	c, err := l.prec.Add(l.max, term)
	return c, Arithmetic(err)
}

func (l *lmsr) price(q []math.Int, i int) (math.Int, error) {
	p := l.prec
	mb, err := p.Div(l.max, l.b)
	if err != nil {
		return math.Int{}, Arithmetic(err)
	}
	first, err := p.Mul(l.fee, mb.Add(l.lnZ))
	if err != nil {
		return math.Int{}, Arithmetic(err)
	}
	second, err := p.Div(l.e[i], l.z)
	if err != nil {
		return math.Int{}, Arithmetic(err)
	}
	weighted := math.ZeroInt()
	for j, v := range q {
		qe, err := p.Mul(v, l.e[j])
		if err != nil {
			return math.Int{}, Arithmetic(err)
		}
		if weighted, err = p.Add(weighted, qe); err != nil {
			return math.Int{}, Arithmetic(err)
		}
	}
	sz, err := p.Mul(l.sum, l.z)
	if err != nil {
		return math.Int{}, Arithmetic(err)
	}
	third, err := p.Div(weighted, sz)
	if err != nil {
		return math.Int{}, Arithmetic(err)
	}
	// the exact price is positive; rounding can push tiny prices to zero
	price := first.Add(second).Sub(third)
	if !price.IsPositive() {
		price = math.OneInt()
	}
	return price, nil
}

// Price returns the marginal price of outcome i in base units.
func (r RikiddoSigmoidMV) Price(p fixed.Precision, q []math.Int, i int) (math.Int, error) {
	if i < 0 || i >= len(q) {
		return math.Int{}, ErrInvalidBalances.Wrapf("outcome index %d out of range", i)
	}
	l, err := r.evaluate(p, q)
	if err != nil {
		return math.Int{}, err
	}
	return l.price(q, i)
}

// AllPrices returns the marginal price of every outcome.
func (r RikiddoSigmoidMV) AllPrices(p fixed.Precision, q []math.Int) ([]math.Int, error) {
	l, err := r.evaluate(p, q)
	if err != nil {
		return nil, err
	}
	prices := make([]math.Int, len(q))
	for i := range q {
		if prices[i], err = l.price(q, i); err != nil {
			return nil, err
		}
	}
	return prices, nil
}

// DefaultRikiddo returns the configuration used when a pool creator supplies none: fees
// between 0.3% and 3% centred on a volume of 1000 base units, and a 10 period EMA with
// smoothing 2.
func DefaultRikiddo(p fixed.Precision) RikiddoSigmoidMV {
	return RikiddoSigmoidMV{
		Fees: FeeSigmoid{
			MinFee:   p.Frac(3, 1000),
			MaxFee:   p.Frac(3, 100),
			Midpoint: p.Int(1000),
			Scale:    p.Int(500),
		},
		Volume: EmaMarketVolume{
			Period:    10,
			Smoothing: p.Int(2),
			Ema:       math.ZeroInt(),
		},
	}
}
