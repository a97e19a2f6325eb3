package keeper

import (
	"context"
	"strconv"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	sharedtypes "github.com/paw-chain/pmamm/x/shared/types"
	"github.com/paw-chain/pmamm/x/swaps/types"
)

// PoolJoinWithExactAssetAmount deposits exactly assetAmount of assetIn and returns the
// pool shares minted, which must be at least minPoolAmount.
func (k Keeper) PoolJoinWithExactAssetAmount(ctx context.Context, who sdk.AccAddress, poolID uint64, assetIn sharedtypes.Asset, assetAmount, minPoolAmount math.Int) (math.Int, error) {
	_, poolAmount, err := k.applyPoolOperation(ctx, who, poolID, joinExactAsset{
		exactOp: exactOp{asset: assetIn, bound: minPoolAmount, eventType: types.EventTypePoolJoinWithExactAssetAmount},
		amount:  assetAmount,
	})
	return poolAmount, err
}

// PoolJoinWithExactPoolAmount mints exactly poolAmount shares and returns the amount of
// asset deposited, which must be at most maxAssetAmount.
func (k Keeper) PoolJoinWithExactPoolAmount(ctx context.Context, who sdk.AccAddress, poolID uint64, asset sharedtypes.Asset, poolAmount, maxAssetAmount math.Int) (math.Int, error) {
	assetAmount, _, err := k.applyPoolOperation(ctx, who, poolID, joinExactPool{
		exactOp:    exactOp{asset: asset, bound: maxAssetAmount, eventType: types.EventTypePoolJoinWithExactPoolAmount},
		poolAmount: poolAmount,
	})
	return assetAmount, err
}

// PoolExitWithExactAssetAmount withdraws exactly assetAmount of asset and returns the
// pool shares burned, which must be at most maxPoolAmount.
func (k Keeper) PoolExitWithExactAssetAmount(ctx context.Context, who sdk.AccAddress, poolID uint64, asset sharedtypes.Asset, assetAmount, maxPoolAmount math.Int) (math.Int, error) {
	_, poolAmount, err := k.applyPoolOperation(ctx, who, poolID, exitExactAsset{
		exactOp: exactOp{asset: asset, bound: maxPoolAmount, eventType: types.EventTypePoolExitWithExactAssetAmount},
		amount:  assetAmount,
	})
	return poolAmount, err
}

// PoolExitWithExactPoolAmount burns exactly poolAmount shares and returns the amount of
// asset withdrawn, which must be at least minAssetAmount.
func (k Keeper) PoolExitWithExactPoolAmount(ctx context.Context, who sdk.AccAddress, poolID uint64, asset sharedtypes.Asset, poolAmount, minAssetAmount math.Int) (math.Int, error) {
	assetAmount, _, err := k.applyPoolOperation(ctx, who, poolID, exitExactPool{
		exactOp:    exactOp{asset: asset, bound: minAssetAmount, eventType: types.EventTypePoolExitWithExactPoolAmount},
		poolAmount: poolAmount,
	})
	return assetAmount, err
}

func operationLabel(join bool) string {
	if join {
		return "join_single"
	}
	return "exit_single"
}

// applyPoolOperation runs a single-asset join or exit on an active CPMM pool.
func (k Keeper) applyPoolOperation(ctx context.Context, who sdk.AccAddress, poolID uint64, op poolOperation) (assetAmount, poolAmount math.Int, err error) {
	defer func() {
		k.metrics.LiquidityOps.WithLabelValues(operationLabel(op.Join()), statusLabel(err)).Inc()
	}()

	err = k.atomic(ctx, func(ctx context.Context) error {
		pool, err := k.GetPool(ctx, poolID)
		if err != nil {
			return err
		}
		if !pool.IsActive() {
			return types.ErrPoolInactive.Wrapf("pool %d is %s", pool.ID, pool.Status)
		}
		rule, err := k.scoringRule(pool)
		if err != nil {
			return err
		}
		if !rule.SupportsLiquidity() {
			return types.ErrInvalidScoringRule.Wrapf("pool %d (%s) does not support single asset liquidity", pool.ID, pool.ScoringRule)
		}
		weight, ok := pool.Weight(op.Asset())
		if !ok {
			return types.ErrAssetNotBound.Wrapf("%s in pool %d", op.Asset(), pool.ID)
		}
		params, err := k.GetParams(ctx)
		if err != nil {
			return err
		}

		account := k.PoolAccount(pool.ID)
		balance, err := k.ledger.FreeBalance(ctx, op.Asset(), account)
		if err != nil {
			return err
		}
		totalShares, err := k.ledger.TotalIssuance(ctx, k.PoolSharesID(pool.ID))
		if err != nil {
			return err
		}
		r := reserves{
			p:           k.precision,
			params:      params,
			balance:     balance,
			weight:      weight,
			totalWeight: pool.TotalWeight,
			totalShares: totalShares,
			swapFee:     pool.SwapFee,
		}
		if err := op.EnsureBalance(r); err != nil {
			return err
		}

		if assetAmount, err = op.AssetAmount(r); err != nil {
			return err
		}
		if poolAmount, err = op.PoolAmount(r); err != nil {
			return err
		}
		if !assetAmount.IsPositive() || !poolAmount.IsPositive() {
			return types.ErrMathApproximation.Wrapf("asset amount %s, pool amount %s", assetAmount, poolAmount)
		}

		if op.Join() {
			if err := k.mintPoolShares(ctx, pool.ID, who, poolAmount); err != nil {
				return err
			}
			if err := k.ledger.Transfer(ctx, op.Asset(), who, account, assetAmount); err != nil {
				return err
			}
		} else {
			if err := k.burnPoolShares(ctx, pool.ID, who, poolAmount); err != nil {
				return err
			}
			if err := k.ledger.Transfer(ctx, op.Asset(), account, who, assetAmount); err != nil {
				return err
			}
		}

		if err := op.AfterCommit(ctx, k, pool.ID); err != nil {
			return err
		}
		eventType, attrs := op.Event(pool.ID, who, assetAmount, poolAmount)
		return k.emit(ctx, eventType, attrs...)
	})
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	return assetAmount, poolAmount, nil
}

// PoolJoin mints poolAmount shares to who against a proportional deposit of every pool
// asset. maxAssetsIn is aligned with the pool's sorted assets.
func (k Keeper) PoolJoin(ctx context.Context, who sdk.AccAddress, poolID uint64, poolAmount math.Int, maxAssetsIn []math.Int) error {
	return k.symmetric(ctx, who, poolID, poolAmount, maxAssetsIn, true)
}

// PoolExit burns poolAmount shares of who against a proportional withdrawal of every
// pool asset, less the exit fee which stays in the pool. minAssetsOut is aligned with
// the pool's sorted assets. Closed pools can still be exited.
func (k Keeper) PoolExit(ctx context.Context, who sdk.AccAddress, poolID uint64, poolAmount math.Int, minAssetsOut []math.Int) error {
	return k.symmetric(ctx, who, poolID, poolAmount, minAssetsOut, false)
}

func (k Keeper) symmetric(ctx context.Context, who sdk.AccAddress, poolID uint64, poolAmount math.Int, bounds []math.Int, join bool) (err error) {
	defer func() {
		label := "exit"
		if join {
			label = "join"
		}
		k.metrics.LiquidityOps.WithLabelValues(label, statusLabel(err)).Inc()
	}()

	p := k.precision
	return k.atomic(ctx, func(ctx context.Context) error {
		pool, err := k.GetPool(ctx, poolID)
		if err != nil {
			return err
		}
		if join && !pool.IsActive() {
			return types.ErrPoolInactive.Wrapf("pool %d is %s", pool.ID, pool.Status)
		}
		rule, err := k.scoringRule(pool)
		if err != nil {
			return err
		}
		if !rule.SupportsLiquidity() {
			return types.ErrInvalidScoringRule.Wrapf("pool %d (%s) does not support joins and exits", pool.ID, pool.ScoringRule)
		}
		params, err := k.GetParams(ctx)
		if err != nil {
			return err
		}

		totalShares, err := k.ledger.TotalIssuance(ctx, k.PoolSharesID(pool.ID))
		if err != nil {
			return err
		}
		ratio, err := p.Div(poolAmount, totalShares)
		if err != nil {
			return types.Arithmetic(err)
		}
		if len(bounds) != len(pool.Assets) {
			return types.ErrProvidedValuesLen.Wrapf("%d bounds for %d assets", len(bounds), len(pool.Assets))
		}
		if ratio.IsZero() {
			return types.ErrMathApproximation.Wrapf("pool amount %s is negligible against %s shares", poolAmount, totalShares)
		}
		if !join {
			if err := k.burnPoolShares(ctx, pool.ID, who, poolAmount); err != nil {
				return err
			}
		}

		account := k.PoolAccount(pool.ID)
		transferred := make([]math.Int, len(pool.Assets))
		for i, asset := range pool.Assets {
			balance, err := k.ledger.FreeBalance(ctx, asset, account)
			if err != nil {
				return err
			}
			amount, err := p.Mul(ratio, balance)
			if err != nil {
				return types.Arithmetic(err)
			}
			if !join {
				fee, err := p.Mul(amount, params.ExitFee)
				if err != nil {
					return types.Arithmetic(err)
				}
				amount = amount.Sub(fee)
			}
			if !amount.IsPositive() {
				return types.ErrMathApproximation.Wrapf("%s amount rounds to zero", asset)
			}

			if join {
				if amount.GT(bounds[i]) {
					return types.ErrLimitIn.Wrapf("%s amount %s above %s", asset, amount, bounds[i])
				}
				err = k.ledger.Transfer(ctx, asset, who, account, amount)
			} else {
				if amount.LT(bounds[i]) {
					return types.ErrLimitOut.Wrapf("%s amount %s below %s", asset, amount, bounds[i])
				}
				err = k.ledger.Transfer(ctx, asset, account, who, amount)
			}
			if err != nil {
				return err
			}
			transferred[i] = amount
		}

		eventType := types.EventTypePoolExit
		if join {
			if err := k.mintPoolShares(ctx, pool.ID, who, poolAmount); err != nil {
				return err
			}
			eventType = types.EventTypePoolJoin
		}
		if err := k.cacheForArbitrage(ctx, pool.ID); err != nil {
			return err
		}
		return k.emit(ctx, eventType,
			eventAttr(types.AttributeKeyPoolID, strconv.FormatUint(pool.ID, 10)),
			eventAttr(types.AttributeKeyWho, who.String()),
			eventAttr(types.AttributeKeyAssets, joinAssets(pool.Assets)),
			eventAttr(types.AttributeKeyBounds, joinInts(bounds)),
			eventAttr(types.AttributeKeyTransferred, joinInts(transferred)),
			eventAttr(types.AttributeKeyPoolAmount, poolAmount.String()),
		)
	})
}
