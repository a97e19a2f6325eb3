package types

import (
	"cosmossdk.io/errors"
)

// Tokens module sentinel errors
var (
	ErrInsufficientBalance = errors.Register(ModuleName, 2, "insufficient balance")
	ErrInvalidAmount       = errors.Register(ModuleName, 3, "invalid amount")
	ErrOverflow            = errors.Register(ModuleName, 4, "balance overflow")
	ErrInvalidGenesis      = errors.Register(ModuleName, 5, "invalid genesis state")
)
