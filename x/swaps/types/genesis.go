package types

import (
	"github.com/paw-chain/pmamm/pkg/fixed"
)

// GenesisState defines the swaps module's genesis state.
type GenesisState struct {
	Params         Params   `json:"params"`
	Pools          []Pool   `json:"pools"`
	NextPoolID     uint64   `json:"next_pool_id"`
	ArbitrageCache []uint64 `json:"arbitrage_cache,omitempty"`
}

// DefaultGenesis returns the default genesis state
func DefaultGenesis(p fixed.Precision) *GenesisState {
	return &GenesisState{
		Params:     DefaultParams(p),
		Pools:      []Pool{},
		NextPoolID: 1,
	}
}

// Validate performs basic genesis state validation returning an error upon any failure.
func (gs GenesisState) Validate(p fixed.Precision) error {
	if err := gs.Params.Validate(p); err != nil {
		return err
	}
	if gs.NextPoolID == 0 {
		return ErrInvalidPool.Wrap("next pool id must be positive")
	}

	seen := make(map[uint64]bool, len(gs.Pools))
	for _, pool := range gs.Pools {
		if pool.ID == 0 || pool.ID >= gs.NextPoolID {
			return ErrInvalidPool.Wrapf("pool id %d outside [1, %d)", pool.ID, gs.NextPoolID)
		}
		if seen[pool.ID] {
			return ErrInvalidPool.Wrapf("duplicate pool id %d", pool.ID)
		}
		seen[pool.ID] = true
		if err := pool.Validate(); err != nil {
			return err
		}
	}
	for _, id := range gs.ArbitrageCache {
		if !seen[id] {
			return ErrPoolNotFound.Wrapf("arbitrage cache references pool %d", id)
		}
	}
	return nil
}
