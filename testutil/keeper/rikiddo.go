package keeper

import (
	"context"
	"testing"

	"cosmossdk.io/log"

	"github.com/paw-chain/pmamm/pkg/fixed"
	"github.com/paw-chain/pmamm/pkg/state"
	rikiddokeeper "github.com/paw-chain/pmamm/x/rikiddo/keeper"
	rikiddotypes "github.com/paw-chain/pmamm/x/rikiddo/types"
)

// DefaultPrecision is the fixed-point precision used across keeper tests.
var DefaultPrecision = fixed.MustNewPrecision(10)

// RikiddoKeeper creates a rikiddo keeper over a fresh in-memory environment.
func RikiddoKeeper(t testing.TB) (*rikiddokeeper.Keeper, context.Context, *state.Environment) {
	t.Helper()
	env := NewEnvironment(t)

	k := rikiddokeeper.NewKeeper(
		env.KVStoreService(rikiddotypes.StoreKey),
		env.EventService(),
		DefaultPrecision,
		log.NewNopLogger(),
	)
	return k, context.Background(), env
}
