package keeper

import (
	"context"

	"github.com/paw-chain/pmamm/x/swaps/types"
)

// InitGenesis initializes the swaps module's state from a provided genesis state.
// Pool balances and shares belong to the ledger's genesis.
func (k Keeper) InitGenesis(ctx context.Context, gs types.GenesisState) error {
	if err := gs.Validate(k.precision); err != nil {
		return err
	}
	if err := k.SetParams(ctx, gs.Params); err != nil {
		return err
	}
	for _, pool := range gs.Pools {
		if err := k.SetPool(ctx, pool); err != nil {
			return err
		}
	}
	if err := k.SetNextPoolID(ctx, gs.NextPoolID); err != nil {
		return err
	}
	for _, id := range gs.ArbitrageCache {
		if err := k.cacheForArbitrage(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// ExportGenesis returns the swaps module's exported genesis.
func (k Keeper) ExportGenesis(ctx context.Context) (*types.GenesisState, error) {
	params, err := k.GetParams(ctx)
	if err != nil {
		return nil, err
	}
	pools, err := k.GetAllPools(ctx)
	if err != nil {
		return nil, err
	}
	if pools == nil {
		pools = []types.Pool{}
	}
	nextID, err := k.NextPoolID(ctx)
	if err != nil {
		return nil, err
	}
	cached, err := k.PoolsCachedForArbitrage(ctx)
	if err != nil {
		return nil, err
	}
	return &types.GenesisState{
		Params:         params,
		Pools:          pools,
		NextPoolID:     nextID,
		ArbitrageCache: cached,
	}, nil
}
