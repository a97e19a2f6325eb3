package keeper

import (
	"context"
	"strconv"

	"cosmossdk.io/core/event"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/pmamm/pkg/fixed"
	sharedtypes "github.com/paw-chain/pmamm/x/shared/types"
	"github.com/paw-chain/pmamm/x/swaps/types"
)

// reserves is the pool state a single-asset join or exit is priced against.
type reserves struct {
	p           fixed.Precision
	params      types.Params
	balance     math.Int
	weight      math.Int
	totalWeight math.Int
	totalShares math.Int
	swapFee     math.Int
}

func (r reserves) maxIn() (math.Int, error) {
	v, err := r.p.Mul(r.balance, r.params.MaxInRatio)
	return v, types.Arithmetic(err)
}

func (r reserves) maxOut() (math.Int, error) {
	v, err := r.p.Mul(r.balance, r.params.MaxOutRatio)
	return v, types.Arithmetic(err)
}

// poolOperation is a single-asset join or exit. One side is fixed by the caller, the
// other is solved from the pool's reserves.
type poolOperation interface {
	Join() bool
	Asset() sharedtypes.Asset
	// EnsureBalance checks the pool's reserve of the asset before anything is priced.
	EnsureBalance(r reserves) error
	AssetAmount(r reserves) (math.Int, error)
	PoolAmount(r reserves) (math.Int, error)
	Event(poolID uint64, who sdk.AccAddress, transferred, poolAmount math.Int) (string, []event.Attribute)
	// AfterCommit runs once shares and assets have moved.
	AfterCommit(ctx context.Context, k Keeper, poolID uint64) error
}

// exactOp carries the fields shared by every variant.
type exactOp struct {
	asset     sharedtypes.Asset
	bound     math.Int
	eventType string
}

func (o exactOp) Asset() sharedtypes.Asset { return o.asset }

func (exactOp) EnsureBalance(reserves) error { return nil }

func (o exactOp) Event(poolID uint64, who sdk.AccAddress, transferred, poolAmount math.Int) (string, []event.Attribute) {
	return o.eventType, []event.Attribute{
		eventAttr(types.AttributeKeyPoolID, strconv.FormatUint(poolID, 10)),
		eventAttr(types.AttributeKeyWho, who.String()),
		eventAttr(types.AttributeKeyAsset, o.asset.String()),
		eventAttr(types.AttributeKeyBound, o.bound.String()),
		eventAttr(types.AttributeKeyTransferred, transferred.String()),
		eventAttr(types.AttributeKeyPoolAmount, poolAmount.String()),
	}
}

func (exactOp) AfterCommit(ctx context.Context, k Keeper, poolID uint64) error {
	return k.cacheForArbitrage(ctx, poolID)
}

// joinExactAsset deposits a fixed asset amount; bound is the minimum pool amount.
type joinExactAsset struct {
	exactOp
	amount math.Int
}

func (joinExactAsset) Join() bool { return true }

func (o joinExactAsset) AssetAmount(r reserves) (math.Int, error) {
	limit, err := r.maxIn()
	if err != nil {
		return math.Int{}, err
	}
	if o.amount.GT(limit) {
		return math.Int{}, types.ErrMaxInRatio.Wrapf("%s exceeds %s", o.amount, limit)
	}
	return o.amount, nil
}

func (o joinExactAsset) PoolAmount(r reserves) (math.Int, error) {
	poolAmount, err := calcPoolOutGivenSingleIn(r.p, r.balance, r.weight, r.totalShares, r.totalWeight, o.amount, r.swapFee)
	if err != nil {
		return math.Int{}, types.Arithmetic(err)
	}
	if poolAmount.LT(o.bound) {
		return math.Int{}, types.ErrLimitOut.Wrapf("pool amount %s below %s", poolAmount, o.bound)
	}
	return poolAmount, nil
}

// joinExactPool mints a fixed pool amount; bound is the maximum asset amount.
type joinExactPool struct {
	exactOp
	poolAmount math.Int
}

func (joinExactPool) Join() bool { return true }

func (o joinExactPool) AssetAmount(r reserves) (math.Int, error) {
	amount, err := calcSingleInGivenPoolOut(r.p, r.balance, r.weight, r.totalShares, r.totalWeight, o.poolAmount, r.swapFee)
	if err != nil {
		return math.Int{}, types.Arithmetic(err)
	}
	if amount.IsZero() {
		return math.Int{}, types.ErrMathApproximation.Wrap("asset amount rounds to zero")
	}
	if amount.GT(o.bound) {
		return math.Int{}, types.ErrLimitIn.Wrapf("asset amount %s above %s", amount, o.bound)
	}
	limit, err := r.maxIn()
	if err != nil {
		return math.Int{}, err
	}
	if amount.GT(limit) {
		return math.Int{}, types.ErrMaxInRatio.Wrapf("%s exceeds %s", amount, limit)
	}
	return amount, nil
}

func (o joinExactPool) PoolAmount(reserves) (math.Int, error) { return o.poolAmount, nil }

// exitExactAsset withdraws a fixed asset amount; bound is the maximum pool amount.
type exitExactAsset struct {
	exactOp
	amount math.Int
}

func (exitExactAsset) Join() bool { return false }

func (o exitExactAsset) EnsureBalance(r reserves) error {
	limit, err := r.maxOut()
	if err != nil {
		return err
	}
	if o.amount.GT(limit) {
		return types.ErrMaxOutRatio.Wrapf("%s exceeds %s", o.amount, limit)
	}
	return nil
}

func (o exitExactAsset) AssetAmount(reserves) (math.Int, error) { return o.amount, nil }

func (o exitExactAsset) PoolAmount(r reserves) (math.Int, error) {
	poolAmount, err := calcPoolInGivenSingleOut(r.p, r.balance, r.weight, r.totalShares, r.totalWeight, o.amount, r.swapFee, r.params.ExitFee)
	if err != nil {
		return math.Int{}, types.Arithmetic(err)
	}
	if poolAmount.IsZero() {
		return math.Int{}, types.ErrMathApproximation.Wrap("pool amount rounds to zero")
	}
	if poolAmount.GT(o.bound) {
		return math.Int{}, types.ErrLimitIn.Wrapf("pool amount %s above %s", poolAmount, o.bound)
	}
	return poolAmount, nil
}

// exitExactPool burns a fixed pool amount; bound is the minimum asset amount.
type exitExactPool struct {
	exactOp
	poolAmount math.Int
}

func (exitExactPool) Join() bool { return false }

func (o exitExactPool) AssetAmount(r reserves) (math.Int, error) {
	amount, err := calcSingleOutGivenPoolIn(r.p, r.balance, r.weight, r.totalShares, r.totalWeight, o.poolAmount, r.swapFee, r.params.ExitFee)
	if err != nil {
		return math.Int{}, types.Arithmetic(err)
	}
	if amount.LT(o.bound) {
		return math.Int{}, types.ErrLimitOut.Wrapf("asset amount %s below %s", amount, o.bound)
	}
	limit, err := r.maxOut()
	if err != nil {
		return math.Int{}, err
	}
	if amount.GT(limit) {
		return math.Int{}, types.ErrMaxOutRatio.Wrapf("%s exceeds %s", amount, limit)
	}
	return amount, nil
}

func (o exitExactPool) PoolAmount(reserves) (math.Int, error) { return o.poolAmount, nil }

var (
	_ poolOperation = joinExactAsset{}
	_ poolOperation = joinExactPool{}
	_ poolOperation = exitExactAsset{}
	_ poolOperation = exitExactPool{}
)
