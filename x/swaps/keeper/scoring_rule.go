package keeper

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	sharedtypes "github.com/paw-chain/pmamm/x/shared/types"
	"github.com/paw-chain/pmamm/x/swaps/types"
)

// ScoringRule prices the pools created with it. The keeper resolves the rule from the
// pool's stored ScoringRuleID on every operation.
type ScoringRule interface {
	ID() types.ScoringRuleID

	// Prepare validates the creation options and fills the pricing fields of pool.
	Prepare(params types.Params, pool *types.Pool, opts types.PoolOptions) error
	// Seed moves the creator's initial liquidity into a newly stored pool. Pool shares
	// are minted by the caller.
	Seed(ctx context.Context, params types.Params, pool types.Pool, creator sdk.AccAddress, opts types.PoolOptions) error
	// Destroy releases any state the rule keeps for the pool.
	Destroy(ctx context.Context, pool types.Pool) error

	// SupportsLiquidity reports whether joins and exits are available.
	SupportsLiquidity() bool

	// CheckTradeAssets rejects pairs the rule cannot trade. Both assets are known to
	// be in the pool.
	CheckTradeAssets(pool types.Pool, assetIn, assetOut sharedtypes.Asset) error
	// CheckQuoteAssets rejects pairs the rule cannot price. Both assets are known to
	// be in the pool.
	CheckQuoteAssets(pool types.Pool, assetIn, assetOut sharedtypes.Asset) error
	// SpotPrice returns the amount of assetIn paid per unit of assetOut.
	SpotPrice(ctx context.Context, pool types.Pool, assetIn, assetOut sharedtypes.Asset, withFees bool) (math.Int, error)
	AmountOutGivenIn(ctx context.Context, params types.Params, pool types.Pool, assetIn sharedtypes.Asset, amountIn math.Int, assetOut sharedtypes.Asset) (math.Int, error)
	AmountInGivenOut(ctx context.Context, params types.Params, pool types.Pool, assetIn, assetOut sharedtypes.Asset, amountOut math.Int) (math.Int, error)
	// ExecuteTrade performs the transfers of a priced trade.
	ExecuteTrade(ctx context.Context, pool types.Pool, who sdk.AccAddress, assetIn sharedtypes.Asset, amountIn math.Int, assetOut sharedtypes.Asset, amountOut math.Int) error

	// CheckPriceMovement validates the spot price after a trade against the price before.
	CheckPriceMovement(params types.Params, before, after math.Int) error
	// CheckExecutionPrice validates the realized price of a trade.
	CheckExecutionPrice(before, amountIn, amountOut math.Int) error

	// AfterTrade runs once the trade passed every check, before the swap event.
	AfterTrade(ctx context.Context, pool types.Pool, assetIn sharedtypes.Asset, amountIn math.Int, assetOut sharedtypes.Asset, amountOut math.Int) error
	// OnSwapCommitted runs after the swap event.
	OnSwapCommitted(ctx context.Context, pool types.Pool) error
	// Observe updates the rule's metrics once a trade's state is committed.
	Observe(ctx context.Context, pool types.Pool)
}

// poolBalance returns the pool account's balance of asset.
func (k Keeper) poolBalance(ctx context.Context, pool types.Pool, asset sharedtypes.Asset) (math.Int, error) {
	return k.ledger.FreeBalance(ctx, asset, k.PoolAccount(pool.ID))
}
