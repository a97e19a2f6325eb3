package types

import (
	"errors"

	errorsmod "cosmossdk.io/errors"

	"github.com/paw-chain/pmamm/pkg/fixed"
)

// Rikiddo module sentinel errors
var (
	ErrRikiddoNotFound = errorsmod.Register(ModuleName, 2, "rikiddo instance not found")
	ErrRikiddoExists   = errorsmod.Register(ModuleName, 3, "rikiddo instance already exists")
	ErrInvalidConfig   = errorsmod.Register(ModuleName, 4, "invalid rikiddo configuration")
	ErrArithmetic      = errorsmod.Register(ModuleName, 5, "arithmetic error")
	ErrInvalidBalances = errorsmod.Register(ModuleName, 6, "invalid outcome balances")
)

// Arithmetic maps fixed-point failures to ErrArithmetic and passes other errors through.
func Arithmetic(err error) error {
	if err != nil && errors.Is(err, fixed.ErrArithmetic) {
		return ErrArithmetic.Wrap(err.Error())
	}
	return err
}
