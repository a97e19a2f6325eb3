package keeper

import (
	"context"
	"testing"

	"cosmossdk.io/log"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/address"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
	banktypes "github.com/cosmos/cosmos-sdk/x/bank/types"

	"github.com/paw-chain/pmamm/pkg/state"
	rikiddotypes "github.com/paw-chain/pmamm/x/rikiddo/types"
	swapstypes "github.com/paw-chain/pmamm/x/swaps/types"
	tokenskeeper "github.com/paw-chain/pmamm/x/tokens/keeper"
)

// Authority is the governance address of keepers built by this package.
var Authority = TestAddr("authority")

// StoreKeys lists the stores mounted by environments built in this package.
var StoreKeys = []string{
	authtypes.StoreKey,
	banktypes.StoreKey,
	rikiddotypes.StoreKey,
	swapstypes.StoreKey,
}

// TestAddr derives a deterministic account address from a name.
func TestAddr(name string) sdk.AccAddress {
	return sdk.AccAddress(address.Hash("test", []byte(name)))
}

// NewEnvironment returns an in-memory environment mounting StoreKeys, closed when the
// test ends.
func NewEnvironment(t testing.TB) *state.Environment {
	t.Helper()
	env := state.NewMemEnvironment(log.NewNopLogger(), StoreKeys...)
	t.Cleanup(func() { _ = env.Close() })
	return env
}

func newTokensKeeper(env *state.Environment, logger log.Logger) *tokenskeeper.Keeper {
	bank := tokenskeeper.NewBankKeeper(
		env.KVStoreService(authtypes.StoreKey),
		env.KVStoreService(banktypes.StoreKey),
		Authority.String(),
		logger,
	)
	return tokenskeeper.NewKeeper(bank, env, env.EventService(), logger)
}

// TokensKeeper creates a tokens keeper over a fresh in-memory environment.
func TokensKeeper(t testing.TB) (*tokenskeeper.Keeper, context.Context, *state.Environment) {
	t.Helper()
	env := NewEnvironment(t)
	return newTokensKeeper(env, log.NewNopLogger()), context.Background(), env
}
