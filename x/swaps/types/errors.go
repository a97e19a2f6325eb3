package types

import (
	"errors"

	errorsmod "cosmossdk.io/errors"

	"github.com/paw-chain/pmamm/pkg/fixed"
	rikiddotypes "github.com/paw-chain/pmamm/x/rikiddo/types"
	sharedtypes "github.com/paw-chain/pmamm/x/shared/types"
)

// Swaps module sentinel errors
var (
	ErrArithmetic            = errorsmod.Register(ModuleName, 2, "arithmetic error")
	ErrInvalidScoringRule    = errorsmod.Register(ModuleName, 3, "operation not supported by the pool's scoring rule")
	ErrAssetNotBound         = errorsmod.Register(ModuleName, 4, "asset has no weight in the pool")
	ErrAssetNotInPool        = errorsmod.Register(ModuleName, 5, "asset is not part of the pool")
	ErrPoolInactive          = errorsmod.Register(ModuleName, 6, "pool is not active")
	ErrMathApproximation     = errorsmod.Register(ModuleName, 7, "result violates an approximation bound")
	ErrBadLimitPrice         = errorsmod.Register(ModuleName, 8, "spot price exceeds the limit price")
	ErrUnsupportedTrade      = errorsmod.Register(ModuleName, 9, "trade not supported by the scoring rule")
	ErrPoolNotFound          = errorsmod.Register(ModuleName, 10, "pool not found")
	ErrInvalidPool           = errorsmod.Register(ModuleName, 11, "invalid pool")
	ErrInvalidWeight         = errorsmod.Register(ModuleName, 12, "invalid weight")
	ErrMaxInRatio            = errorsmod.Register(ModuleName, 13, "amount in exceeds the maximum in ratio")
	ErrMaxOutRatio           = errorsmod.Register(ModuleName, 14, "amount out exceeds the maximum out ratio")
	ErrLimitIn               = errorsmod.Register(ModuleName, 15, "amount in exceeds the limit")
	ErrLimitOut              = errorsmod.Register(ModuleName, 16, "amount out is below the limit")
	ErrProvidedValuesLen     = errorsmod.Register(ModuleName, 17, "number of bounds does not match the number of assets")
	ErrInsufficientBalance   = errorsmod.Register(ModuleName, 18, "insufficient balance")
	ErrPoolNotClosed         = errorsmod.Register(ModuleName, 19, "pool is not closed")
	ErrInvalidParams         = errorsmod.Register(ModuleName, 20, "invalid parameters")
	ErrInvalidAmount         = errorsmod.Register(ModuleName, 21, "invalid amount")
	ErrInsufficientLiquidity = errorsmod.Register(ModuleName, 22, "liquidity below the minimum")
	ErrInvalidSwapFee        = errorsmod.Register(ModuleName, 23, "invalid swap fee")
	ErrInvalidAddress        = errorsmod.Register(ModuleName, 24, "invalid address")
)

// ErrUnauthorized is returned when a governance-only message is not signed by the authority.
var ErrUnauthorized = sharedtypes.ErrUnauthorized

// ErrInvalidAsset is returned for malformed asset identifiers.
var ErrInvalidAsset = sharedtypes.ErrInvalidAsset

// Arithmetic maps fixed-point and market maker arithmetic failures to ErrArithmetic.
func Arithmetic(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, fixed.ErrArithmetic) || errors.Is(err, rikiddotypes.ErrArithmetic) {
		return ErrArithmetic.Wrap(err.Error())
	}
	return err
}
