package keeper

import (
	"context"
	"strconv"

	"cosmossdk.io/core/event"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	sharedtypes "github.com/paw-chain/pmamm/x/shared/types"
	"github.com/paw-chain/pmamm/x/swaps/types"
)

// swapRequest describes one exact-in or exact-out trade. Limit is the minimum amount
// out of an exact-in trade or the maximum amount in of an exact-out trade. Limit and
// MaxPrice are ignored when nil.
type swapRequest struct {
	who      sdk.AccAddress
	poolID   uint64
	assetIn  sharedtypes.Asset
	assetOut sharedtypes.Asset
	exactIn  bool
	amount   math.Int
	limit    math.Int
	maxPrice math.Int
}

func (req swapRequest) kind() string {
	if req.exactIn {
		return "exact_in"
	}
	return "exact_out"
}

func (req swapRequest) eventType() string {
	if req.exactIn {
		return types.EventTypeSwapExactAmountIn
	}
	return types.EventTypeSwapExactAmountOut
}

// SwapExactAmountIn sells exactly amountIn of assetIn and returns the amount of
// assetOut bought.
func (k Keeper) SwapExactAmountIn(
	ctx context.Context,
	who sdk.AccAddress,
	poolID uint64,
	assetIn sharedtypes.Asset,
	amountIn math.Int,
	assetOut sharedtypes.Asset,
	minAmountOut math.Int,
	maxPrice math.Int,
) (math.Int, error) {
	_, out, err := k.swapExactAmount(ctx, swapRequest{
		who:      who,
		poolID:   poolID,
		assetIn:  assetIn,
		assetOut: assetOut,
		exactIn:  true,
		amount:   amountIn,
		limit:    minAmountOut,
		maxPrice: maxPrice,
	})
	return out, err
}

// SwapExactAmountOut buys exactly amountOut of assetOut and returns the amount of
// assetIn sold.
func (k Keeper) SwapExactAmountOut(
	ctx context.Context,
	who sdk.AccAddress,
	poolID uint64,
	assetIn sharedtypes.Asset,
	maxAmountIn math.Int,
	assetOut sharedtypes.Asset,
	amountOut math.Int,
	maxPrice math.Int,
) (math.Int, error) {
	in, _, err := k.swapExactAmount(ctx, swapRequest{
		who:      who,
		poolID:   poolID,
		assetIn:  assetIn,
		assetOut: assetOut,
		exactIn:  false,
		amount:   amountOut,
		limit:    maxAmountIn,
		maxPrice: maxPrice,
	})
	return in, err
}

// GetSpotPrice returns the amount of assetIn paid per unit of assetOut at the current
// reserves.
func (k Keeper) GetSpotPrice(ctx context.Context, poolID uint64, assetIn, assetOut sharedtypes.Asset, withFees bool) (math.Int, error) {
	pool, err := k.GetPool(ctx, poolID)
	if err != nil {
		return math.Int{}, err
	}
	rule, err := k.pricingRule(pool, assetIn, assetOut)
	if err != nil {
		return math.Int{}, err
	}
	if err := rule.CheckQuoteAssets(pool, assetIn, assetOut); err != nil {
		return math.Int{}, err
	}
	return rule.SpotPrice(ctx, pool, assetIn, assetOut, withFees)
}

// pricingRule checks that both assets are in pool and returns its rule.
func (k Keeper) pricingRule(pool types.Pool, assetIn, assetOut sharedtypes.Asset) (ScoringRule, error) {
	if !pool.Contains(assetIn) {
		return nil, types.ErrAssetNotInPool.Wrapf("%s in pool %d", assetIn, pool.ID)
	}
	if !pool.Contains(assetOut) {
		return nil, types.ErrAssetNotInPool.Wrapf("%s in pool %d", assetOut, pool.ID)
	}
	return k.scoringRule(pool)
}

// tradeRule checks that both assets can be traded in pool and returns its rule.
func (k Keeper) tradeRule(pool types.Pool, assetIn, assetOut sharedtypes.Asset) (ScoringRule, error) {
	rule, err := k.pricingRule(pool, assetIn, assetOut)
	if err != nil {
		return nil, err
	}
	if err := rule.CheckTradeAssets(pool, assetIn, assetOut); err != nil {
		return nil, err
	}
	return rule, nil
}

// swapExactAmount runs a trade: validate, quote, transfer, check the price after the
// trade, then record it. Every step runs in one state branch, so any failure leaves
// balances, pool state and the volume average untouched.
func (k Keeper) swapExactAmount(ctx context.Context, req swapRequest) (amountIn, amountOut math.Int, err error) {
	ruleLabel := "unknown"
	defer func() {
		k.metrics.SwapsTotal.WithLabelValues(ruleLabel, req.kind(), statusLabel(err)).Inc()
	}()

	var (
		traded types.Pool
		rule   ScoringRule
	)
	err = k.atomic(ctx, func(ctx context.Context) error {
		pool, err := k.GetPool(ctx, req.poolID)
		if err != nil {
			return err
		}
		traded = pool
		ruleLabel = pool.ScoringRule.String()
		if !pool.IsActive() {
			return types.ErrPoolInactive.Wrapf("pool %d is %s", pool.ID, pool.Status)
		}
		if req.assetIn == req.assetOut {
			return types.ErrInvalidAsset.Wrap("cannot swap an asset for itself")
		}
		rule, err = k.tradeRule(pool, req.assetIn, req.assetOut)
		if err != nil {
			return err
		}
		params, err := k.GetParams(ctx)
		if err != nil {
			return err
		}

		spotBefore, err := rule.SpotPrice(ctx, pool, req.assetIn, req.assetOut, true)
		if err != nil {
			return err
		}
		if !req.maxPrice.IsNil() && spotBefore.GT(req.maxPrice) {
			return types.ErrBadLimitPrice.Wrapf("spot price %s above %s", spotBefore, req.maxPrice)
		}

		if req.exactIn {
			amountIn = req.amount
			amountOut, err = rule.AmountOutGivenIn(ctx, params, pool, req.assetIn, amountIn, req.assetOut)
			if err != nil {
				return err
			}
			if !req.limit.IsNil() && amountOut.LT(req.limit) {
				return types.ErrLimitOut.Wrapf("%s below %s", amountOut, req.limit)
			}
		} else {
			amountOut = req.amount
			amountIn, err = rule.AmountInGivenOut(ctx, params, pool, req.assetIn, req.assetOut, amountOut)
			if err != nil {
				return err
			}
			if !req.limit.IsNil() && amountIn.GT(req.limit) {
				return types.ErrLimitIn.Wrapf("%s above %s", amountIn, req.limit)
			}
		}
		if !amountIn.IsPositive() || !amountOut.IsPositive() {
			return types.ErrMathApproximation.Wrapf("trade of %s for %s moves nothing", amountIn, amountOut)
		}

		if err := rule.ExecuteTrade(ctx, pool, req.who, req.assetIn, amountIn, req.assetOut, amountOut); err != nil {
			return err
		}

		spotAfter, err := rule.SpotPrice(ctx, pool, req.assetIn, req.assetOut, true)
		if err != nil {
			return err
		}
		if err := rule.CheckPriceMovement(params, spotBefore, spotAfter); err != nil {
			k.rejectInvariant(pool, "price_movement", req, spotBefore, spotAfter)
			return err
		}
		if !req.maxPrice.IsNil() && spotAfter.GT(req.maxPrice) {
			return types.ErrBadLimitPrice.Wrapf("spot price after trade %s above %s", spotAfter, req.maxPrice)
		}
		if err := rule.CheckExecutionPrice(spotBefore, amountIn, amountOut); err != nil {
			k.rejectInvariant(pool, "execution_price", req, spotBefore, spotAfter)
			return err
		}

		if err := rule.AfterTrade(ctx, pool, req.assetIn, amountIn, req.assetOut, amountOut); err != nil {
			return err
		}

		attrs := []event.Attribute{
			{Key: types.AttributeKeyPoolID, Value: strconv.FormatUint(pool.ID, 10)},
			{Key: types.AttributeKeyWho, Value: req.who.String()},
			{Key: types.AttributeKeyAssetIn, Value: req.assetIn.String()},
			{Key: types.AttributeKeyAssetOut, Value: req.assetOut.String()},
			{Key: types.AttributeKeyAmountIn, Value: amountIn.String()},
			{Key: types.AttributeKeyAmountOut, Value: amountOut.String()},
		}
		if !req.limit.IsNil() {
			attrs = append(attrs, event.Attribute{Key: types.AttributeKeyBound, Value: req.limit.String()})
		}
		if !req.maxPrice.IsNil() {
			attrs = append(attrs, event.Attribute{Key: types.AttributeKeyMaxPrice, Value: req.maxPrice.String()})
		}
		if err := k.emit(ctx, req.eventType(), attrs...); err != nil {
			return err
		}

		return rule.OnSwapCommitted(ctx, pool)
	})
	if err != nil {
		return math.Int{}, math.Int{}, err
	}

	k.metrics.SwapVolume.WithLabelValues(ruleLabel).Add(units(k.precision, amountIn))
	rule.Observe(ctx, traded)
	return amountIn, amountOut, nil
}

func (k Keeper) rejectInvariant(pool types.Pool, check string, req swapRequest, before, after math.Int) {
	k.metrics.RejectedInvariants.WithLabelValues(pool.ScoringRule.String(), check).Inc()
	k.logger.Error("swap rejected by price check",
		"pool_id", pool.ID,
		"check", check,
		"asset_in", req.assetIn.String(),
		"asset_out", req.assetOut.String(),
		"spot_price_before", before.String(),
		"spot_price_after", after.String(),
	)
}
