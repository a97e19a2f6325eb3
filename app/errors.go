package app

import (
	errorsmod "cosmossdk.io/errors"
)

const codespace = "app"

var (
	ErrUnknownMsg      = errorsmod.Register(codespace, 2, "unknown message type")
	ErrInvalidGenesis  = errorsmod.Register(codespace, 3, "invalid genesis")
	ErrInvalidScenario = errorsmod.Register(codespace, 4, "invalid scenario")
	ErrStepFailed      = errorsmod.Register(codespace, 5, "scenario step did not behave as expected")
)
