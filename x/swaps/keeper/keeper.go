package keeper

import (
	"context"
	"fmt"
	"strings"

	"cosmossdk.io/core/event"
	"cosmossdk.io/core/store"
	"cosmossdk.io/log"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/address"

	"github.com/paw-chain/pmamm/pkg/fixed"
	sharedtypes "github.com/paw-chain/pmamm/x/shared/types"
	"github.com/paw-chain/pmamm/x/swaps/types"
)

// Keeper of the swaps store
type Keeper struct {
	storeService  store.KVStoreService
	eventService  event.Service
	branchService types.BranchService
	ledger        types.Ledger
	rikiddo       types.RikiddoKeeper
	precision     fixed.Precision
	authority     string
	logger        log.Logger
	metrics       *SwapMetrics
	rules         map[types.ScoringRuleID]ScoringRule
}

// NewKeeper creates a new swaps Keeper instance
func NewKeeper(
	storeService store.KVStoreService,
	eventService event.Service,
	branchService types.BranchService,
	ledger types.Ledger,
	rikiddo types.RikiddoKeeper,
	precision fixed.Precision,
	authority string,
	logger log.Logger,
) *Keeper {
	if precision.IsZero() {
		panic("swaps keeper requires a precision")
	}
	if _, err := sdk.AccAddressFromBech32(authority); err != nil {
		panic(fmt.Sprintf("invalid swaps authority %q: %s", authority, err))
	}

	k := &Keeper{
		storeService:  storeService,
		eventService:  eventService,
		branchService: branchService,
		ledger:        ledger,
		rikiddo:       rikiddo,
		precision:     precision,
		authority:     authority,
		logger:        logger.With("module", "x/"+types.ModuleName),
		metrics:       NewSwapMetrics(),
	}
	k.rules = map[types.ScoringRuleID]ScoringRule{
		types.ScoringRuleCPMM:                       cpmmRule{k: k},
		types.ScoringRuleRikiddoSigmoidFeeMarketEma: rikiddoRule{k: k},
	}
	return k
}

// Logger returns the module logger.
func (k Keeper) Logger() log.Logger {
	return k.logger
}

// Precision returns the fixed-point precision of every amount the keeper handles.
func (k Keeper) Precision() fixed.Precision {
	return k.precision
}

// GetAuthority returns the address allowed to close and destroy pools.
func (k Keeper) GetAuthority() string {
	return k.authority
}

// getStore returns the KVStore for the swaps module
func (k Keeper) getStore(ctx context.Context) store.KVStore {
	return k.storeService.OpenKVStore(ctx)
}

func (k Keeper) emit(ctx context.Context, eventType string, attrs ...event.Attribute) error {
	return k.eventService.EventManager(ctx).EmitKV(ctx, eventType, attrs...)
}

// atomic runs fn in a state branch so a failure leaves no partial effects.
func (k Keeper) atomic(ctx context.Context, fn func(ctx context.Context) error) error {
	return k.branchService.Execute(ctx, fn)
}

// PoolAccount returns the deterministic account holding a pool's reserves.
func (k Keeper) PoolAccount(poolID uint64) sdk.AccAddress {
	return sdk.AccAddress(address.Module(types.ModuleName, types.Uint64ToBigEndian(poolID)))
}

// PoolSharesID returns the asset representing shares of a pool.
func (k Keeper) PoolSharesID(poolID uint64) sharedtypes.Asset {
	return sharedtypes.PoolShare(poolID)
}

// scoringRule resolves the strategy stored with a pool.
func (k Keeper) scoringRule(pool types.Pool) (ScoringRule, error) {
	rule, ok := k.rules[pool.ScoringRule]
	if !ok {
		return nil, types.ErrInvalidScoringRule.Wrapf("pool %d: %s", pool.ID, pool.ScoringRule)
	}
	return rule, nil
}

func eventAttr(key, value string) event.Attribute {
	return event.Attribute{Key: key, Value: value}
}

func joinAssets(assets []sharedtypes.Asset) string {
	parts := make([]string, len(assets))
	for i, a := range assets {
		parts[i] = a.String()
	}
	return strings.Join(parts, ",")
}

func joinInts(values []math.Int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = v.String()
	}
	return strings.Join(parts, ",")
}
