package types

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	rikiddotypes "github.com/paw-chain/pmamm/x/rikiddo/types"
	sharedtypes "github.com/paw-chain/pmamm/x/shared/types"
)

// Ledger holds the balances of every asset, pool shares included.
type Ledger interface {
	FreeBalance(ctx context.Context, asset sharedtypes.Asset, who sdk.AccAddress) (math.Int, error)
	TotalIssuance(ctx context.Context, asset sharedtypes.Asset) (math.Int, error)
	Transfer(ctx context.Context, asset sharedtypes.Asset, from, to sdk.AccAddress, amount math.Int) error
	Deposit(ctx context.Context, asset sharedtypes.Asset, who sdk.AccAddress, amount math.Int) error
	Withdraw(ctx context.Context, asset sharedtypes.Asset, who sdk.AccAddress, amount math.Int) error
}

// RikiddoKeeper prices Rikiddo pools. Outstanding amounts are passed in outcome order.
type RikiddoKeeper interface {
	CreateRikiddo(ctx context.Context, poolID uint64, r rikiddotypes.RikiddoSigmoidMV) error
	DestroyRikiddo(ctx context.Context, poolID uint64) error
	GetRikiddo(ctx context.Context, poolID uint64) (rikiddotypes.RikiddoSigmoidMV, error)
	Cost(ctx context.Context, poolID uint64, q []math.Int) (math.Int, error)
	Price(ctx context.Context, poolID uint64, q []math.Int, index int) (math.Int, error)
	AllPrices(ctx context.Context, poolID uint64, q []math.Int) ([]math.Int, error)
	Fee(ctx context.Context, poolID uint64) (math.Int, error)
	UpdateVolume(ctx context.Context, poolID uint64, volume math.Int) (math.Int, error)
}

// BranchService runs fn against a branch of the state that is committed only when fn
// returns nil.
type BranchService interface {
	Execute(ctx context.Context, fn func(ctx context.Context) error) error
}
