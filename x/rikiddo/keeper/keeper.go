// Package keeper stores one Rikiddo market maker per pool and evaluates its cost and
// price functions against the outstanding outcome amounts passed in by the caller.
package keeper

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"strconv"

	"cosmossdk.io/core/event"
	"cosmossdk.io/core/store"
	"cosmossdk.io/log"
	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"

	"github.com/paw-chain/pmamm/pkg/fixed"
	"github.com/paw-chain/pmamm/x/rikiddo/types"
)

// Keeper of the rikiddo store
type Keeper struct {
	storeService store.KVStoreService
	eventService event.Service
	precision    fixed.Precision
	logger       log.Logger
}

// NewKeeper creates a new rikiddo Keeper instance
func NewKeeper(
	storeService store.KVStoreService,
	eventService event.Service,
	precision fixed.Precision,
	logger log.Logger,
) *Keeper {
	return &Keeper{
		storeService: storeService,
		eventService: eventService,
		precision:    precision,
		logger:       logger.With("module", "x/"+types.ModuleName),
	}
}

// Logger returns the module logger.
func (k Keeper) Logger() log.Logger {
	return k.logger
}

// Precision returns the fixed-point precision the keeper evaluates with.
func (k Keeper) Precision() fixed.Precision {
	return k.precision
}

func (k Keeper) setRikiddo(ctx context.Context, poolID uint64, r types.RikiddoSigmoidMV) error {
	bz, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return k.storeService.OpenKVStore(ctx).Set(types.RikiddoKey(poolID), bz)
}

// GetRikiddo returns the market maker attached to a pool.
func (k Keeper) GetRikiddo(ctx context.Context, poolID uint64) (types.RikiddoSigmoidMV, error) {
	bz, err := k.storeService.OpenKVStore(ctx).Get(types.RikiddoKey(poolID))
	if err != nil {
		return types.RikiddoSigmoidMV{}, err
	}
	if bz == nil {
		return types.RikiddoSigmoidMV{}, types.ErrRikiddoNotFound.Wrapf("pool %d", poolID)
	}
	var r types.RikiddoSigmoidMV
	if err := json.Unmarshal(bz, &r); err != nil {
		return types.RikiddoSigmoidMV{}, err
	}
	return r, nil
}

// CreateRikiddo attaches a new market maker to a pool.
func (k Keeper) CreateRikiddo(ctx context.Context, poolID uint64, r types.RikiddoSigmoidMV) error {
	has, err := k.storeService.OpenKVStore(ctx).Has(types.RikiddoKey(poolID))
	if err != nil {
		return err
	}
	if has {
		return types.ErrRikiddoExists.Wrapf("pool %d", poolID)
	}
	if err := r.Validate(k.precision); err != nil {
		return err
	}
	if err := k.setRikiddo(ctx, poolID, r); err != nil {
		return err
	}
	k.logger.Info("rikiddo created", "pool_id", poolID)
	return k.eventService.EventManager(ctx).EmitKV(ctx, types.EventTypeRikiddoCreated,
		event.Attribute{Key: types.AttributeKeyPoolID, Value: strconv.FormatUint(poolID, 10)},
	)
}

// DestroyRikiddo removes the market maker of a pool.
func (k Keeper) DestroyRikiddo(ctx context.Context, poolID uint64) error {
	kv := k.storeService.OpenKVStore(ctx)
	has, err := kv.Has(types.RikiddoKey(poolID))
	if err != nil {
		return err
	}
	if !has {
		return types.ErrRikiddoNotFound.Wrapf("pool %d", poolID)
	}
	if err := kv.Delete(types.RikiddoKey(poolID)); err != nil {
		return err
	}
	k.logger.Info("rikiddo destroyed", "pool_id", poolID)
	return k.eventService.EventManager(ctx).EmitKV(ctx, types.EventTypeRikiddoDestroyed,
		event.Attribute{Key: types.AttributeKeyPoolID, Value: strconv.FormatUint(poolID, 10)},
	)
}

// Cost returns the base amount backing the outstanding outcome amounts q.
func (k Keeper) Cost(ctx context.Context, poolID uint64, q []math.Int) (math.Int, error) {
	r, err := k.GetRikiddo(ctx, poolID)
	if err != nil {
		return math.Int{}, err
	}
	return r.Cost(k.precision, q)
}

// Price returns the marginal price of outcome index.
func (k Keeper) Price(ctx context.Context, poolID uint64, q []math.Int, index int) (math.Int, error) {
	r, err := k.GetRikiddo(ctx, poolID)
	if err != nil {
		return math.Int{}, err
	}
	return r.Price(k.precision, q, index)
}

// AllPrices returns the marginal price of every outcome.
func (k Keeper) AllPrices(ctx context.Context, poolID uint64, q []math.Int) ([]math.Int, error) {
	r, err := k.GetRikiddo(ctx, poolID)
	if err != nil {
		return nil, err
	}
	return r.AllPrices(k.precision, q)
}

// Fee returns the fee currently quoted by the pool's market maker.
func (k Keeper) Fee(ctx context.Context, poolID uint64) (math.Int, error) {
	r, err := k.GetRikiddo(ctx, poolID)
	if err != nil {
		return math.Int{}, err
	}
	return r.Fee(k.precision)
}

// UpdateVolume folds the base volume of a completed trade into the pool's moving
// average and returns the new average.
func (k Keeper) UpdateVolume(ctx context.Context, poolID uint64, volume math.Int) (math.Int, error) {
	r, err := k.GetRikiddo(ctx, poolID)
	if err != nil {
		return math.Int{}, err
	}
	ema, err := r.UpdateVolume(k.precision, volume)
	if err != nil {
		return math.Int{}, err
	}
	if err := k.setRikiddo(ctx, poolID, r); err != nil {
		return math.Int{}, err
	}
	fee, err := r.Fee(k.precision)
	if err != nil {
		return math.Int{}, err
	}
	k.logger.Debug("rikiddo volume updated", "pool_id", poolID, "volume", volume, "ema", ema, "fee", fee)
	err = k.eventService.EventManager(ctx).EmitKV(ctx, types.EventTypeVolumeUpdated,
		event.Attribute{Key: types.AttributeKeyPoolID, Value: strconv.FormatUint(poolID, 10)},
		event.Attribute{Key: types.AttributeKeyVolume, Value: volume.String()},
		event.Attribute{Key: types.AttributeKeyEma, Value: ema.String()},
		event.Attribute{Key: types.AttributeKeyFee, Value: fee.String()},
	)
	return ema, err
}

// Clear resets the volume average of a pool's market maker.
func (k Keeper) Clear(ctx context.Context, poolID uint64) error {
	r, err := k.GetRikiddo(ctx, poolID)
	if err != nil {
		return err
	}
	r.Clear()
	if err := k.setRikiddo(ctx, poolID, r); err != nil {
		return err
	}
	k.logger.Info("rikiddo cleared", "pool_id", poolID)
	return k.eventService.EventManager(ctx).EmitKV(ctx, types.EventTypeRikiddoCleared,
		event.Attribute{Key: types.AttributeKeyPoolID, Value: strconv.FormatUint(poolID, 10)},
	)
}

// IterateRikiddos calls cb for every stored market maker until cb returns true.
func (k Keeper) IterateRikiddos(ctx context.Context, cb func(poolID uint64, r types.RikiddoSigmoidMV) (stop bool)) error {
	it, err := k.storeService.OpenKVStore(ctx).Iterator(types.RikiddoKeyPrefix, storetypes.PrefixEndBytes(types.RikiddoKeyPrefix))
	if err != nil {
		return err
	}
	defer it.Close()

	for ; it.Valid(); it.Next() {
		key := it.Key()[len(types.RikiddoKeyPrefix):]
		var r types.RikiddoSigmoidMV
		if err := json.Unmarshal(it.Value(), &r); err != nil {
			return err
		}
		if cb(binary.BigEndian.Uint64(key), r) {
			break
		}
	}
	return it.Error()
}

// InitGenesis stores every genesis market maker.
func (k Keeper) InitGenesis(ctx context.Context, gs types.GenesisState) error {
	if err := gs.Validate(k.precision); err != nil {
		return err
	}
	for _, inst := range gs.Instances {
		if err := k.setRikiddo(ctx, inst.PoolID, inst.Rikiddo); err != nil {
			return err
		}
	}
	return nil
}

// ExportGenesis returns every stored market maker.
func (k Keeper) ExportGenesis(ctx context.Context) (*types.GenesisState, error) {
	gs := types.DefaultGenesis()
	err := k.IterateRikiddos(ctx, func(poolID uint64, r types.RikiddoSigmoidMV) bool {
		gs.Instances = append(gs.Instances, types.PoolRikiddo{PoolID: poolID, Rikiddo: r})
		return false
	})
	if err != nil {
		return nil, err
	}
	return gs, nil
}
