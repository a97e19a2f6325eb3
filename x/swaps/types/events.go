package types

// Swaps module event types
const (
	EventTypePoolCreated   = "pool_created"
	EventTypePoolClosed    = "pool_closed"
	EventTypePoolDestroyed = "pool_destroyed"

	EventTypePoolJoin                     = "pool_join"
	EventTypePoolExit                     = "pool_exit"
	EventTypePoolJoinWithExactAssetAmount = "pool_join_with_exact_asset_amount"
	EventTypePoolJoinWithExactPoolAmount  = "pool_join_with_exact_pool_amount"
	EventTypePoolExitWithExactAssetAmount = "pool_exit_with_exact_asset_amount"
	EventTypePoolExitWithExactPoolAmount  = "pool_exit_with_exact_pool_amount"
	EventTypeSwapExactAmountIn            = "swap_exact_amount_in"
	EventTypeSwapExactAmountOut           = "swap_exact_amount_out"
	EventTypeParamsUpdated                = "swaps_params_updated"
	EventTypeArbitrageCacheCleared        = "arbitrage_cache_cleared"
)

// Swaps module event attribute keys
const (
	AttributeKeyPoolID      = "pool_id"
	AttributeKeyWho         = "who"
	AttributeKeyAsset       = "asset"
	AttributeKeyAssets      = "assets"
	AttributeKeyBound       = "bound"
	AttributeKeyBounds      = "bounds"
	AttributeKeyTransferred = "transferred"
	AttributeKeyPoolAmount  = "pool_amount"
	AttributeKeyAssetIn     = "asset_in"
	AttributeKeyAssetOut    = "asset_out"
	AttributeKeyAmountIn    = "amount_in"
	AttributeKeyAmountOut   = "amount_out"
	AttributeKeyMaxPrice    = "max_price"
	AttributeKeyScoringRule = "scoring_rule"
	AttributeKeySwapFee     = "swap_fee"
	AttributeKeyAmount      = "amount"
	AttributeKeyAuthority   = "authority"
	AttributeKeyCount       = "count"
)
