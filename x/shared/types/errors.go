package types

import (
	"cosmossdk.io/errors"
)

const ModuleName = "shared"

var (
	ErrUnauthorized = errors.Register(ModuleName, 2, "unauthorized")
	ErrInvalidAsset = errors.Register(ModuleName, 3, "invalid asset")
)
