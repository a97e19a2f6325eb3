package keeper

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"

	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	sharedkeeper "github.com/paw-chain/pmamm/x/shared/keeper"
	sharedtypes "github.com/paw-chain/pmamm/x/shared/types"
	"github.com/paw-chain/pmamm/x/swaps/types"
)

// NextPoolID returns the id the next created pool will get.
func (k Keeper) NextPoolID(ctx context.Context) (uint64, error) {
	bz, err := k.getStore(ctx).Get(types.NextPoolIDKey)
	if err != nil {
		return 0, err
	}
	if bz == nil {
		return 1, nil
	}
	return binary.BigEndian.Uint64(bz), nil
}

// SetNextPoolID sets the next pool ID counter
func (k Keeper) SetNextPoolID(ctx context.Context, poolID uint64) error {
	return k.getStore(ctx).Set(types.NextPoolIDKey, types.Uint64ToBigEndian(poolID))
}

// getNextPoolID returns the next pool ID and increments the counter
func (k Keeper) getNextPoolID(ctx context.Context) (uint64, error) {
	poolID, err := k.NextPoolID(ctx)
	if err != nil {
		return 0, err
	}
	if err := k.SetNextPoolID(ctx, poolID+1); err != nil {
		return 0, err
	}
	return poolID, nil
}

// GetPool returns a pool by ID
func (k Keeper) GetPool(ctx context.Context, poolID uint64) (types.Pool, error) {
	bz, err := k.getStore(ctx).Get(types.PoolKey(poolID))
	if err != nil {
		return types.Pool{}, err
	}
	if bz == nil {
		return types.Pool{}, types.ErrPoolNotFound.Wrapf("pool %d", poolID)
	}

	var pool types.Pool
	if err := json.Unmarshal(bz, &pool); err != nil {
		return types.Pool{}, fmt.Errorf("GetPool: unmarshal: %w", err)
	}
	return pool, nil
}

// SetPool stores a pool
func (k Keeper) SetPool(ctx context.Context, pool types.Pool) error {
	bz, err := json.Marshal(pool)
	if err != nil {
		return fmt.Errorf("SetPool: marshal: %w", err)
	}
	return k.getStore(ctx).Set(types.PoolKey(pool.ID), bz)
}

// IteratePools calls cb for every pool in id order until cb returns true.
func (k Keeper) IteratePools(ctx context.Context, cb func(pool types.Pool) (stop bool)) error {
	it, err := k.getStore(ctx).Iterator(types.PoolKeyPrefix, storetypes.PrefixEndBytes(types.PoolKeyPrefix))
	if err != nil {
		return err
	}
	defer it.Close()

	for ; it.Valid(); it.Next() {
		var pool types.Pool
		if err := json.Unmarshal(it.Value(), &pool); err != nil {
			return fmt.Errorf("IteratePools: unmarshal: %w", err)
		}
		if cb(pool) {
			break
		}
	}
	return it.Error()
}

// GetAllPools returns all pools
func (k Keeper) GetAllPools(ctx context.Context) ([]types.Pool, error) {
	var pools []types.Pool
	err := k.IteratePools(ctx, func(pool types.Pool) bool {
		pools = append(pools, pool)
		return false
	})
	return pools, err
}

// mintPoolShares credits who with new shares of a pool.
func (k Keeper) mintPoolShares(ctx context.Context, poolID uint64, who sdk.AccAddress, amount math.Int) error {
	return k.ledger.Deposit(ctx, k.PoolSharesID(poolID), who, amount)
}

// burnPoolShares destroys shares of a pool held by who.
func (k Keeper) burnPoolShares(ctx context.Context, poolID uint64, who sdk.AccAddress, amount math.Int) error {
	shares := k.PoolSharesID(poolID)
	held, err := k.ledger.FreeBalance(ctx, shares, who)
	if err != nil {
		return err
	}
	if held.LT(amount) {
		return types.ErrInsufficientBalance.Wrapf("%s holds %s shares of pool %d, needs %s", who, held, poolID, amount)
	}
	return k.ledger.Withdraw(ctx, shares, who, amount)
}

// CreatePool validates opts, stores a new pool and seeds it with the creator's
// liquidity. The creator receives opts.Amount pool shares.
func (k Keeper) CreatePool(ctx context.Context, creator sdk.AccAddress, opts types.PoolOptions) (uint64, error) {
	var poolID uint64
	err := k.atomic(ctx, func(ctx context.Context) error {
		params, err := k.GetParams(ctx)
		if err != nil {
			return fmt.Errorf("CreatePool: get params: %w", err)
		}

		// 1. Asset set
		n := uint32(len(opts.Assets))
		if n < params.MinAssets || n > params.MaxAssets {
			return types.ErrInvalidPool.Wrapf("pool needs between %d and %d assets, got %d", params.MinAssets, params.MaxAssets, n)
		}
		assets := slices.Clone(opts.Assets)
		slices.SortFunc(assets, sharedtypes.Asset.Compare)
		for i, a := range assets {
			if err := a.Validate(); err != nil {
				return err
			}
			if a.IsPoolShare() {
				return types.ErrInvalidAsset.Wrapf("pool shares %s cannot be pooled", a)
			}
			if i > 0 && assets[i-1] == a {
				return types.ErrInvalidPool.Wrapf("duplicate asset %s", a)
			}
		}

		// 2. Amounts and fees
		if opts.SwapFee.IsNil() || opts.SwapFee.IsNegative() || opts.SwapFee.GT(params.MaxSwapFee) {
			return types.ErrInvalidSwapFee.Wrapf("swap fee %s outside [0, %s]", opts.SwapFee, params.MaxSwapFee)
		}
		if opts.Amount.IsNil() || opts.Amount.LT(params.MinLiquidity) {
			return types.ErrInsufficientLiquidity.Wrapf("amount %s below minimum %s", opts.Amount, params.MinLiquidity)
		}

		pool := types.Pool{
			Assets:      assets,
			BaseAsset:   opts.BaseAsset,
			MarketID:    opts.MarketID,
			ScoringRule: opts.ScoringRule,
			SwapFee:     opts.SwapFee,
			Status:      types.PoolStatusActive,
		}
		if !pool.Contains(opts.BaseAsset) {
			return types.ErrInvalidPool.Wrapf("base asset %s is not among the pool assets", opts.BaseAsset)
		}

		// 3. Scoring rule specifics
		rule, err := k.scoringRule(pool)
		if err != nil {
			return err
		}
		if err := rule.Prepare(params, &pool, opts); err != nil {
			return err
		}

		// 4. Store and fund
		if pool.ID, err = k.getNextPoolID(ctx); err != nil {
			return err
		}
		if err := pool.Validate(); err != nil {
			return err
		}
		if err := k.SetPool(ctx, pool); err != nil {
			return err
		}
		if err := rule.Seed(ctx, params, pool, creator, opts); err != nil {
			return err
		}
		if err := k.mintPoolShares(ctx, pool.ID, creator, opts.Amount); err != nil {
			return err
		}

		poolID = pool.ID
		return k.emit(ctx, types.EventTypePoolCreated,
			eventAttr(types.AttributeKeyPoolID, strconv.FormatUint(pool.ID, 10)),
			eventAttr(types.AttributeKeyWho, creator.String()),
			eventAttr(types.AttributeKeyAssets, joinAssets(pool.Assets)),
			eventAttr(types.AttributeKeyScoringRule, pool.ScoringRule.String()),
			eventAttr(types.AttributeKeySwapFee, pool.SwapFee.String()),
			eventAttr(types.AttributeKeyAmount, opts.Amount.String()),
		)
	})
	if err != nil {
		return 0, err
	}

	k.metrics.PoolsCreated.WithLabelValues(opts.ScoringRule.String()).Inc()
	k.logger.Info("pool created",
		"pool_id", poolID,
		"scoring_rule", opts.ScoringRule.String(),
		"creator", creator.String(),
		"assets", len(opts.Assets),
	)
	return poolID, nil
}

// ClosePool stops trading on a pool. Exits with PoolExit remain possible so liquidity
// providers can withdraw.
func (k Keeper) ClosePool(ctx context.Context, poolID uint64, authority string) error {
	if err := sharedkeeper.ValidateAuthority(k.authority, authority); err != nil {
		return err
	}
	err := k.atomic(ctx, func(ctx context.Context) error {
		pool, err := k.GetPool(ctx, poolID)
		if err != nil {
			return err
		}
		if !pool.IsActive() {
			return types.ErrPoolInactive.Wrapf("pool %d is already %s", poolID, pool.Status)
		}
		pool.Status = types.PoolStatusClosed
		if err := k.SetPool(ctx, pool); err != nil {
			return err
		}
		return k.emit(ctx, types.EventTypePoolClosed,
			eventAttr(types.AttributeKeyPoolID, strconv.FormatUint(poolID, 10)),
			eventAttr(types.AttributeKeyAuthority, authority),
		)
	})
	if err != nil {
		return err
	}
	k.metrics.PoolsClosed.Inc()
	k.logger.Info("pool closed", "pool_id", poolID)
	return nil
}

// DestroyPool removes a closed pool together with the state its scoring rule keeps.
// Balances left in the pool account are not moved.
func (k Keeper) DestroyPool(ctx context.Context, poolID uint64, authority string) error {
	if err := sharedkeeper.ValidateAuthority(k.authority, authority); err != nil {
		return err
	}
	err := k.atomic(ctx, func(ctx context.Context) error {
		pool, err := k.GetPool(ctx, poolID)
		if err != nil {
			return err
		}
		if pool.Status != types.PoolStatusClosed {
			return types.ErrPoolNotClosed.Wrapf("pool %d is %s", poolID, pool.Status)
		}
		rule, err := k.scoringRule(pool)
		if err != nil {
			return err
		}
		if err := rule.Destroy(ctx, pool); err != nil {
			return err
		}
		if err := k.getStore(ctx).Delete(types.PoolKey(poolID)); err != nil {
			return err
		}
		if err := k.removeFromArbitrageCache(ctx, poolID); err != nil {
			return err
		}
		return k.emit(ctx, types.EventTypePoolDestroyed,
			eventAttr(types.AttributeKeyPoolID, strconv.FormatUint(poolID, 10)),
			eventAttr(types.AttributeKeyAuthority, authority),
		)
	})
	if err != nil {
		return err
	}
	k.metrics.PoolsDestroyed.Inc()
	k.logger.Info("pool destroyed", "pool_id", poolID)
	return nil
}
