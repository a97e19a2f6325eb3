package types

import (
	"cosmossdk.io/math"

	"github.com/paw-chain/pmamm/pkg/fixed"
	rikiddotypes "github.com/paw-chain/pmamm/x/rikiddo/types"
)

// Params configure pool creation and the limits applied to every operation. Weights,
// fees, ratios and amounts are fixed-point values at the keeper's precision.
type Params struct {
	MinAssets      uint32   `json:"min_assets"`
	MaxAssets      uint32   `json:"max_assets"`
	MinWeight      math.Int `json:"min_weight"`
	MaxWeight      math.Int `json:"max_weight"`
	MaxTotalWeight math.Int `json:"max_total_weight"`
	MinLiquidity   math.Int `json:"min_liquidity"`
	MaxSwapFee     math.Int `json:"max_swap_fee"`
	// ExitFee is kept by the pool on every exit.
	ExitFee     math.Int `json:"exit_fee"`
	MaxInRatio  math.Int `json:"max_in_ratio"`
	MaxOutRatio math.Int `json:"max_out_ratio"`
	// RikiddoPriceTolerance is the largest spot price regression, in raw units, a
	// Rikiddo trade may cause.
	RikiddoPriceTolerance math.Int `json:"rikiddo_price_tolerance"`
	// DefaultRikiddo configures Rikiddo pools created without an explicit config.
	DefaultRikiddo rikiddotypes.RikiddoSigmoidMV `json:"default_rikiddo"`
}

// DefaultParams returns a default set of parameters
func DefaultParams(p fixed.Precision) Params {
	return Params{
		MinAssets:             2,
		MaxAssets:             16,
		MinWeight:             p.Int(1),
		MaxWeight:             p.Int(50),
		MaxTotalWeight:        p.Int(50),
		MinLiquidity:          p.Int(100),
		MaxSwapFee:            p.Frac(1, 10),  // 10%
		ExitFee:               p.Frac(3, 1000), // 0.3%
		MaxInRatio:            p.Frac(1, 2),
		MaxOutRatio:           p.Frac(1, 3).AddRaw(1),
		RikiddoPriceTolerance: math.NewInt(20),
		DefaultRikiddo:        rikiddotypes.DefaultRikiddo(p),
	}
}

func isFraction(p fixed.Precision, v math.Int, allowZero bool) bool {
	if v.IsNil() || v.IsNegative() || v.GT(p.One()) {
		return false
	}
	return allowZero || v.IsPositive()
}

// Validate validates the set of params
func (params Params) Validate(p fixed.Precision) error {
	switch {
	case params.MinAssets < 2:
		return ErrInvalidParams.Wrapf("min assets must be at least 2, got %d", params.MinAssets)
	case params.MaxAssets < params.MinAssets:
		return ErrInvalidParams.Wrapf("max assets %d below min assets %d", params.MaxAssets, params.MinAssets)
	case params.MinWeight.IsNil() || !params.MinWeight.IsPositive():
		return ErrInvalidParams.Wrap("min weight must be positive")
	case params.MaxWeight.IsNil() || params.MaxWeight.LT(params.MinWeight):
		return ErrInvalidParams.Wrap("max weight must not be below min weight")
	case params.MaxTotalWeight.IsNil() || params.MaxTotalWeight.LT(params.MaxWeight):
		return ErrInvalidParams.Wrap("max total weight must not be below max weight")
	case params.MinLiquidity.IsNil() || !params.MinLiquidity.IsPositive():
		return ErrInvalidParams.Wrap("min liquidity must be positive")
	case params.MaxSwapFee.IsNil() || !isFraction(p, params.MaxSwapFee, true) || params.MaxSwapFee.Equal(p.One()):
		return ErrInvalidParams.Wrapf("max swap fee must lie in [0, 1), got %s", params.MaxSwapFee)
	case params.ExitFee.IsNil() || !isFraction(p, params.ExitFee, true) || params.ExitFee.Equal(p.One()):
		return ErrInvalidParams.Wrapf("exit fee must lie in [0, 1), got %s", params.ExitFee)
	case !isFraction(p, params.MaxInRatio, false):
		return ErrInvalidParams.Wrapf("max in ratio must lie in (0, 1], got %s", params.MaxInRatio)
	case !isFraction(p, params.MaxOutRatio, false):
		return ErrInvalidParams.Wrapf("max out ratio must lie in (0, 1], got %s", params.MaxOutRatio)
	case params.RikiddoPriceTolerance.IsNil() || params.RikiddoPriceTolerance.IsNegative():
		return ErrInvalidParams.Wrap("rikiddo price tolerance must be non-negative")
	}
	if err := params.DefaultRikiddo.Validate(p); err != nil {
		return ErrInvalidParams.Wrapf("default rikiddo: %s", err)
	}
	return nil
}
