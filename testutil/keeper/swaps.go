package keeper

import (
	"context"
	"testing"

	"cosmossdk.io/log"

	"github.com/paw-chain/pmamm/pkg/state"
	rikiddokeeper "github.com/paw-chain/pmamm/x/rikiddo/keeper"
	rikiddotypes "github.com/paw-chain/pmamm/x/rikiddo/types"
	swapskeeper "github.com/paw-chain/pmamm/x/swaps/keeper"
	swapstypes "github.com/paw-chain/pmamm/x/swaps/types"
	tokenskeeper "github.com/paw-chain/pmamm/x/tokens/keeper"
)

// SwapsFixture bundles a swaps keeper with the keepers it depends on, all sharing one
// in-memory environment.
type SwapsFixture struct {
	Ctx     context.Context
	Env     *state.Environment
	Swaps   *swapskeeper.Keeper
	Tokens  *tokenskeeper.Keeper
	Rikiddo *rikiddokeeper.Keeper
}

// NewSwapsFixture wires the tokens, rikiddo and swaps keepers together.
func NewSwapsFixture(t testing.TB) *SwapsFixture {
	t.Helper()
	logger := log.NewNopLogger()
	env := NewEnvironment(t)

	tokens := newTokensKeeper(env, logger)
	rikiddo := rikiddokeeper.NewKeeper(env.KVStoreService(rikiddotypes.StoreKey), env.EventService(), DefaultPrecision, logger)
	swaps := swapskeeper.NewKeeper(
		env.KVStoreService(swapstypes.StoreKey),
		env.EventService(),
		env,
		tokens,
		rikiddo,
		DefaultPrecision,
		Authority.String(),
		logger,
	)
	return &SwapsFixture{
		Ctx:     context.Background(),
		Env:     env,
		Swaps:   swaps,
		Tokens:  tokens,
		Rikiddo: rikiddo,
	}
}
