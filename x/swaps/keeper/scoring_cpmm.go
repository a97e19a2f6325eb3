package keeper

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	sharedtypes "github.com/paw-chain/pmamm/x/shared/types"
	"github.com/paw-chain/pmamm/x/swaps/types"
)

// cpmmRule prices pools with the weighted constant-product formula over the pool
// account's reserves.
type cpmmRule struct {
	k *Keeper
}

var _ ScoringRule = cpmmRule{}

func (cpmmRule) ID() types.ScoringRuleID { return types.ScoringRuleCPMM }

func (cpmmRule) SupportsLiquidity() bool { return true }

func (r cpmmRule) Prepare(params types.Params, pool *types.Pool, opts types.PoolOptions) error {
	if len(opts.Weights) != len(opts.Assets) {
		return types.ErrProvidedValuesLen.Wrapf("%d weights for %d assets", len(opts.Weights), len(opts.Assets))
	}
	if opts.Rikiddo != nil {
		return types.ErrInvalidScoringRule.Wrap("cpmm pools take no rikiddo config")
	}

	weights := make(map[sharedtypes.Asset]math.Int, len(opts.Assets))
	total := math.ZeroInt()
	for i, asset := range opts.Assets {
		w := opts.Weights[i]
		if w.IsNil() || w.LT(params.MinWeight) {
			return types.ErrInvalidWeight.Wrapf("weight of %s below minimum %s", asset, params.MinWeight)
		}
		if w.GT(params.MaxWeight) {
			return types.ErrInvalidWeight.Wrapf("weight of %s above maximum %s", asset, params.MaxWeight)
		}
		weights[asset] = w
		total = total.Add(w)
	}
	if total.GT(params.MaxTotalWeight) {
		return types.ErrInvalidWeight.Wrapf("total weight %s above maximum %s", total, params.MaxTotalWeight)
	}

	pool.Weights = weights
	pool.TotalWeight = total
	return nil
}

func (r cpmmRule) Seed(ctx context.Context, _ types.Params, pool types.Pool, creator sdk.AccAddress, opts types.PoolOptions) error {
	account := r.k.PoolAccount(pool.ID)
	for _, asset := range pool.Assets {
		if err := r.k.ledger.Transfer(ctx, asset, creator, account, opts.Amount); err != nil {
			return err
		}
	}
	return nil
}

func (cpmmRule) Destroy(context.Context, types.Pool) error { return nil }

func (r cpmmRule) CheckQuoteAssets(pool types.Pool, assetIn, assetOut sharedtypes.Asset) error {
	return r.CheckTradeAssets(pool, assetIn, assetOut)
}

func (cpmmRule) CheckTradeAssets(pool types.Pool, assetIn, assetOut sharedtypes.Asset) error {
	if !pool.Bound(assetIn) {
		return types.ErrAssetNotBound.Wrapf("%s in pool %d", assetIn, pool.ID)
	}
	if !pool.Bound(assetOut) {
		return types.ErrAssetNotBound.Wrapf("%s in pool %d", assetOut, pool.ID)
	}
	return nil
}

// side holds the reserve and weight of one asset of a trade.
type side struct {
	balance math.Int
	weight  math.Int
}

func (r cpmmRule) sides(ctx context.Context, pool types.Pool, assetIn, assetOut sharedtypes.Asset) (in, out side, err error) {
	if in.balance, err = r.k.poolBalance(ctx, pool, assetIn); err != nil {
		return side{}, side{}, err
	}
	if out.balance, err = r.k.poolBalance(ctx, pool, assetOut); err != nil {
		return side{}, side{}, err
	}
	in.weight, _ = pool.Weight(assetIn)
	out.weight, _ = pool.Weight(assetOut)
	return in, out, nil
}

func (r cpmmRule) SpotPrice(ctx context.Context, pool types.Pool, assetIn, assetOut sharedtypes.Asset, withFees bool) (math.Int, error) {
	in, out, err := r.sides(ctx, pool, assetIn, assetOut)
	if err != nil {
		return math.Int{}, err
	}
	fee := math.ZeroInt()
	if withFees {
		fee = pool.SwapFee
	}
	price, err := calcSpotPrice(r.k.precision, in.balance, in.weight, out.balance, out.weight, fee)
	return price, types.Arithmetic(err)
}

func (r cpmmRule) AmountOutGivenIn(ctx context.Context, params types.Params, pool types.Pool, assetIn sharedtypes.Asset, amountIn math.Int, assetOut sharedtypes.Asset) (math.Int, error) {
	p := r.k.precision
	in, out, err := r.sides(ctx, pool, assetIn, assetOut)
	if err != nil {
		return math.Int{}, err
	}
	maxIn, err := p.Mul(in.balance, params.MaxInRatio)
	if err != nil {
		return math.Int{}, types.Arithmetic(err)
	}
	if amountIn.GT(maxIn) {
		return math.Int{}, types.ErrMaxInRatio.Wrapf("%s exceeds %s", amountIn, maxIn)
	}
	amountOut, err := calcOutGivenIn(p, in.balance, in.weight, out.balance, out.weight, amountIn, pool.SwapFee)
	return amountOut, types.Arithmetic(err)
}

func (r cpmmRule) AmountInGivenOut(ctx context.Context, params types.Params, pool types.Pool, assetIn, assetOut sharedtypes.Asset, amountOut math.Int) (math.Int, error) {
	p := r.k.precision
	in, out, err := r.sides(ctx, pool, assetIn, assetOut)
	if err != nil {
		return math.Int{}, err
	}
	maxOut, err := p.Mul(out.balance, params.MaxOutRatio)
	if err != nil {
		return math.Int{}, types.Arithmetic(err)
	}
	if amountOut.GT(maxOut) {
		return math.Int{}, types.ErrMaxOutRatio.Wrapf("%s exceeds %s", amountOut, maxOut)
	}
	amountIn, err := calcInGivenOut(p, in.balance, in.weight, out.balance, out.weight, amountOut, pool.SwapFee)
	return amountIn, types.Arithmetic(err)
}

func (r cpmmRule) ExecuteTrade(ctx context.Context, pool types.Pool, who sdk.AccAddress, assetIn sharedtypes.Asset, amountIn math.Int, assetOut sharedtypes.Asset, amountOut math.Int) error {
	account := r.k.PoolAccount(pool.ID)
	if err := r.k.ledger.Transfer(ctx, assetIn, who, account, amountIn); err != nil {
		return err
	}
	return r.k.ledger.Transfer(ctx, assetOut, account, who, amountOut)
}

func (cpmmRule) CheckPriceMovement(_ types.Params, before, after math.Int) error {
	if after.LT(before) {
		return types.ErrMathApproximation.Wrapf("spot price fell from %s to %s", before, after)
	}
	return nil
}

func (r cpmmRule) CheckExecutionPrice(before, amountIn, amountOut math.Int) error {
	realized, err := r.k.precision.Div(amountIn, amountOut)
	if err != nil {
		return types.Arithmetic(err)
	}
	if before.GT(realized) {
		return types.ErrMathApproximation.Wrapf("execution price %s below spot price %s", realized, before)
	}
	return nil
}

func (cpmmRule) AfterTrade(context.Context, types.Pool, sharedtypes.Asset, math.Int, sharedtypes.Asset, math.Int) error {
	return nil
}

func (r cpmmRule) OnSwapCommitted(ctx context.Context, pool types.Pool) error {
	return r.k.cacheForArbitrage(ctx, pool.ID)
}

func (cpmmRule) Observe(context.Context, types.Pool) {}
