package keeper

import (
	"context"

	"github.com/paw-chain/pmamm/x/tokens/types"
)

// InitGenesis credits every genesis balance.
func (k Keeper) InitGenesis(ctx context.Context, gs types.GenesisState) error {
	if err := gs.Validate(); err != nil {
		return err
	}
	for _, b := range gs.Balances {
		if err := k.Deposit(ctx, b.Asset, b.Address, b.Amount); err != nil {
			return err
		}
	}
	return nil
}

// ExportGenesis returns every non-zero balance.
func (k Keeper) ExportGenesis(ctx context.Context) (*types.GenesisState, error) {
	gs := types.DefaultGenesis()
	err := k.IterateAllBalances(ctx, func(b types.Balance) bool {
		gs.Balances = append(gs.Balances, b)
		return false
	})
	if err != nil {
		return nil, err
	}
	return gs, nil
}
