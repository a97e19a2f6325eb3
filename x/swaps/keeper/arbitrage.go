package keeper

import (
	"context"
	"encoding/binary"
	"strconv"

	storetypes "cosmossdk.io/store/types"

	"github.com/paw-chain/pmamm/x/swaps/types"
)

// cacheForArbitrage marks a CPMM pool whose reserves changed so an arbitrage pass can
// revisit it.
func (k Keeper) cacheForArbitrage(ctx context.Context, poolID uint64) error {
	return k.getStore(ctx).Set(types.ArbitrageCacheKey(poolID), []byte{1})
}

func (k Keeper) removeFromArbitrageCache(ctx context.Context, poolID uint64) error {
	return k.getStore(ctx).Delete(types.ArbitrageCacheKey(poolID))
}

// PoolsCachedForArbitrage returns the ids of every marked pool in ascending order.
func (k Keeper) PoolsCachedForArbitrage(ctx context.Context) ([]uint64, error) {
	prefix := types.ArbitrageCacheKeyPrefix
	it, err := k.getStore(ctx).Iterator(prefix, storetypes.PrefixEndBytes(prefix))
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var ids []uint64
	for ; it.Valid(); it.Next() {
		ids = append(ids, binary.BigEndian.Uint64(it.Key()[len(prefix):]))
	}
	return ids, it.Error()
}

// ClearArbitrageCache unmarks every pool and returns how many were marked.
func (k Keeper) ClearArbitrageCache(ctx context.Context) (int, error) {
	var n int
	err := k.atomic(ctx, func(ctx context.Context) error {
		ids, err := k.PoolsCachedForArbitrage(ctx)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if err := k.removeFromArbitrageCache(ctx, id); err != nil {
				return err
			}
		}
		n = len(ids)
		return k.emit(ctx, types.EventTypeArbitrageCacheCleared,
			eventAttr(types.AttributeKeyCount, strconv.Itoa(n)),
		)
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}
