package types

import (
	"fmt"
	"slices"
	"strings"

	"cosmossdk.io/math"

	rikiddotypes "github.com/paw-chain/pmamm/x/rikiddo/types"
	sharedtypes "github.com/paw-chain/pmamm/x/shared/types"
)

// ScoringRuleID identifies the pricing strategy of a pool. It is fixed when the pool is
// created.
type ScoringRuleID uint8

const (
	ScoringRuleCPMM ScoringRuleID = iota
	ScoringRuleRikiddoSigmoidFeeMarketEma
)

var scoringRuleNames = map[ScoringRuleID]string{
	ScoringRuleCPMM:                       "cpmm",
	ScoringRuleRikiddoSigmoidFeeMarketEma: "rikiddo_sigmoid_fee_market_ema",
}

func (r ScoringRuleID) String() string {
	if name, ok := scoringRuleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("scoring_rule(%d)", uint8(r))
}

// ParseScoringRule parses the name returned by ScoringRuleID.String. "rikiddo" is
// accepted as a short form.
func ParseScoringRule(s string) (ScoringRuleID, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cpmm":
		return ScoringRuleCPMM, nil
	case "rikiddo", "rikiddo_sigmoid_fee_market_ema":
		return ScoringRuleRikiddoSigmoidFeeMarketEma, nil
	}
	return 0, ErrInvalidScoringRule.Wrapf("unknown scoring rule %q", s)
}

func (r ScoringRuleID) MarshalText() ([]byte, error) {
	if _, ok := scoringRuleNames[r]; !ok {
		return nil, ErrInvalidScoringRule.Wrapf("unknown scoring rule %d", uint8(r))
	}
	return []byte(r.String()), nil
}

func (r *ScoringRuleID) UnmarshalText(text []byte) error {
	parsed, err := ParseScoringRule(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// PoolStatus gates which operations a pool accepts.
type PoolStatus uint8

const (
	PoolStatusActive PoolStatus = iota
	PoolStatusClosed
)

func (s PoolStatus) String() string {
	switch s {
	case PoolStatusActive:
		return "active"
	case PoolStatusClosed:
		return "closed"
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

func (s PoolStatus) MarshalText() ([]byte, error) {
	if s > PoolStatusClosed {
		return nil, ErrInvalidPool.Wrapf("unknown status %d", uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *PoolStatus) UnmarshalText(text []byte) error {
	switch string(text) {
	case "active":
		*s = PoolStatusActive
	case "closed":
		*s = PoolStatusClosed
	default:
		return ErrInvalidPool.Wrapf("unknown status %q", text)
	}
	return nil
}

// Pool is the persisted state of one liquidity pool. Balances live in the ledger under
// the pool account; the pool only records its configuration.
type Pool struct {
	ID          uint64                         `json:"id"`
	Assets      []sharedtypes.Asset            `json:"assets"`
	BaseAsset   sharedtypes.Asset              `json:"base_asset"`
	MarketID    uint64                         `json:"market_id"`
	ScoringRule ScoringRuleID                  `json:"scoring_rule"`
	SwapFee     math.Int                       `json:"swap_fee"`
	TotalWeight math.Int                       `json:"total_weight"`
	Weights     map[sharedtypes.Asset]math.Int `json:"weights,omitempty"`
	Status      PoolStatus                     `json:"status"`
}

// IsActive reports whether the pool accepts trades and joins.
func (p Pool) IsActive() bool {
	return p.Status == PoolStatusActive
}

// Contains reports whether asset is one of the pool's assets.
func (p Pool) Contains(asset sharedtypes.Asset) bool {
	_, ok := slices.BinarySearchFunc(p.Assets, asset, sharedtypes.Asset.Compare)
	return ok
}

// Bound reports whether asset carries a weight and can be exchanged through the pool's
// reserves.
func (p Pool) Bound(asset sharedtypes.Asset) bool {
	_, ok := p.Weights[asset]
	return ok
}

// Weight returns the weight bound to asset.
func (p Pool) Weight(asset sharedtypes.Asset) (math.Int, bool) {
	w, ok := p.Weights[asset]
	return w, ok
}

// Outcomes returns the pool's non-base assets in order.
func (p Pool) Outcomes() []sharedtypes.Asset {
	out := make([]sharedtypes.Asset, 0, len(p.Assets))
	for _, a := range p.Assets {
		if a != p.BaseAsset {
			out = append(out, a)
		}
	}
	return out
}

// OutcomeIndex returns the position of asset in Outcomes.
func (p Pool) OutcomeIndex(asset sharedtypes.Asset) (int, bool) {
	if asset == p.BaseAsset {
		return 0, false
	}
	i, ok := slices.BinarySearchFunc(p.Assets, asset, sharedtypes.Asset.Compare)
	if !ok {
		return 0, false
	}
	if p.BaseAsset.Compare(asset) < 0 {
		i--
	}
	return i, true
}

// Validate checks the structural invariants of a stored pool.
func (p Pool) Validate() error {
	if len(p.Assets) == 0 {
		return ErrInvalidPool.Wrapf("pool %d has no assets", p.ID)
	}
	for i, a := range p.Assets {
		if err := a.Validate(); err != nil {
			return ErrInvalidPool.Wrapf("pool %d: %s", p.ID, err)
		}
		if i > 0 && p.Assets[i-1].Compare(a) >= 0 {
			return ErrInvalidPool.Wrapf("pool %d assets are not sorted and unique", p.ID)
		}
	}
	if !p.Contains(p.BaseAsset) {
		return ErrInvalidPool.Wrapf("pool %d does not contain its base asset %s", p.ID, p.BaseAsset)
	}
	if p.SwapFee.IsNil() || p.SwapFee.IsNegative() {
		return ErrInvalidSwapFee.Wrapf("pool %d", p.ID)
	}
	if p.Status > PoolStatusClosed {
		return ErrInvalidPool.Wrapf("pool %d has unknown status %d", p.ID, p.Status)
	}

	switch p.ScoringRule {
	case ScoringRuleCPMM:
		if len(p.Weights) != len(p.Assets) {
			return ErrInvalidWeight.Wrapf("pool %d has %d weights for %d assets", p.ID, len(p.Weights), len(p.Assets))
		}
		total := math.ZeroInt()
		for _, a := range p.Assets {
			w, ok := p.Weights[a]
			if !ok || w.IsNil() || !w.IsPositive() {
				return ErrInvalidWeight.Wrapf("pool %d: asset %s has no positive weight", p.ID, a)
			}
			total = total.Add(w)
		}
		if p.TotalWeight.IsNil() || !total.Equal(p.TotalWeight) {
			return ErrInvalidWeight.Wrapf("pool %d: total weight %s does not match %s", p.ID, p.TotalWeight, total)
		}
	case ScoringRuleRikiddoSigmoidFeeMarketEma:
		if len(p.Weights) != 0 {
			return ErrInvalidWeight.Wrapf("pool %d: rikiddo pools carry no weights", p.ID)
		}
		if len(p.Assets) < 3 {
			return ErrInvalidPool.Wrapf("pool %d: rikiddo pools need a base asset and at least two outcomes", p.ID)
		}
	default:
		return ErrInvalidScoringRule.Wrapf("pool %d: %s", p.ID, p.ScoringRule)
	}
	return nil
}

// PoolOptions describe a pool to create. Weights are aligned with Assets, which need
// not be sorted. Rikiddo may be nil to use the default configuration.
type PoolOptions struct {
	Assets      []sharedtypes.Asset
	BaseAsset   sharedtypes.Asset
	MarketID    uint64
	ScoringRule ScoringRuleID
	SwapFee     math.Int
	Amount      math.Int
	Weights     []math.Int
	Rikiddo     *rikiddotypes.RikiddoSigmoidMV
}
