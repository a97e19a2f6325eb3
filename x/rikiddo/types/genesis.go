package types

import (
	"github.com/paw-chain/pmamm/pkg/fixed"
)

// PoolRikiddo is the market maker attached to one pool.
type PoolRikiddo struct {
	PoolID  uint64           `json:"pool_id"`
	Rikiddo RikiddoSigmoidMV `json:"rikiddo"`
}

// GenesisState is the market maker state of every Rikiddo pool.
type GenesisState struct {
	Instances []PoolRikiddo `json:"instances"`
}

// DefaultGenesis returns a state without instances.
func DefaultGenesis() *GenesisState {
	return &GenesisState{}
}

// Validate rejects duplicate pools and invalid configurations.
func (gs GenesisState) Validate(p fixed.Precision) error {
	seen := make(map[uint64]struct{}, len(gs.Instances))
	for _, inst := range gs.Instances {
		if _, ok := seen[inst.PoolID]; ok {
			return ErrRikiddoExists.Wrapf("pool %d listed twice", inst.PoolID)
		}
		seen[inst.PoolID] = struct{}{}
		if err := inst.Rikiddo.Validate(p); err != nil {
			return err
		}
	}
	return nil
}
