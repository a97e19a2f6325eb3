package keeper

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	sharedtypes "github.com/paw-chain/pmamm/x/shared/types"
	"github.com/paw-chain/pmamm/x/swaps/types"
)

// rikiddoRule prices pools with the Rikiddo market maker. The pool account holds only
// base; outcome shares are minted to buyers and burned from sellers, so the outstanding
// amount of each outcome is its total issuance. Only base to outcome and outcome to
// base trades are possible, and the pool swap fee is not charged since the market
// maker quotes its own fee.
type rikiddoRule struct {
	k *Keeper
}

var _ ScoringRule = rikiddoRule{}

func (rikiddoRule) ID() types.ScoringRuleID { return types.ScoringRuleRikiddoSigmoidFeeMarketEma }

func (rikiddoRule) SupportsLiquidity() bool { return false }

func (rikiddoRule) Prepare(_ types.Params, pool *types.Pool, opts types.PoolOptions) error {
	if len(opts.Weights) != 0 {
		return types.ErrInvalidWeight.Wrap("rikiddo pools take no weights")
	}
	outcomes := pool.Outcomes()
	if len(outcomes) < 2 {
		return types.ErrInvalidPool.Wrapf("rikiddo pools need at least two outcomes, got %d", len(outcomes))
	}
	for _, a := range outcomes {
		if !a.IsOutcome() {
			return types.ErrInvalidAsset.Wrapf("%s is not an outcome asset", a)
		}
	}
	pool.Weights = nil
	pool.TotalWeight = math.ZeroInt()
	return nil
}

// Seed mints a complete set of opts.Amount outcome shares to the creator, who pays the
// market maker's cost for it in base.
func (r rikiddoRule) Seed(ctx context.Context, params types.Params, pool types.Pool, creator sdk.AccAddress, opts types.PoolOptions) error {
	cfg := params.DefaultRikiddo
	if opts.Rikiddo != nil {
		cfg = *opts.Rikiddo
	}

	outcomes := pool.Outcomes()
	for _, a := range outcomes {
		issued, err := r.k.ledger.TotalIssuance(ctx, a)
		if err != nil {
			return err
		}
		if !issued.IsZero() {
			return types.ErrInvalidPool.Wrapf("outcome %s is already issued", a)
		}
	}
	if err := r.k.rikiddo.CreateRikiddo(ctx, pool.ID, cfg); err != nil {
		return err
	}

	q := make([]math.Int, len(outcomes))
	for i, a := range outcomes {
		if err := r.k.ledger.Deposit(ctx, a, creator, opts.Amount); err != nil {
			return err
		}
		q[i] = opts.Amount
	}
	cost, err := r.k.rikiddo.Cost(ctx, pool.ID, q)
	if err != nil {
		return types.Arithmetic(err)
	}
	return r.k.ledger.Transfer(ctx, pool.BaseAsset, creator, r.k.PoolAccount(pool.ID), cost)
}

func (r rikiddoRule) Destroy(ctx context.Context, pool types.Pool) error {
	return r.k.rikiddo.DestroyRikiddo(ctx, pool.ID)
}

// CheckQuoteAssets accepts every pair of pool assets. Outcome to outcome prices are
// the ratio of the two marginal prices.
func (rikiddoRule) CheckQuoteAssets(types.Pool, sharedtypes.Asset, sharedtypes.Asset) error {
	return nil
}

func (rikiddoRule) CheckTradeAssets(pool types.Pool, assetIn, assetOut sharedtypes.Asset) error {
	if assetIn != pool.BaseAsset && assetOut != pool.BaseAsset {
		return types.ErrUnsupportedTrade.Wrapf("%s for %s: one side must be the base asset", assetIn, assetOut)
	}
	return nil
}

// outstanding returns the total issuance of every outcome in outcome order.
func (r rikiddoRule) outstanding(ctx context.Context, pool types.Pool) ([]math.Int, error) {
	outcomes := pool.Outcomes()
	q := make([]math.Int, len(outcomes))
	for i, a := range outcomes {
		issued, err := r.k.ledger.TotalIssuance(ctx, a)
		if err != nil {
			return nil, err
		}
		q[i] = issued
	}
	return q, nil
}

func (r rikiddoRule) price(ctx context.Context, pool types.Pool, q []math.Int, asset sharedtypes.Asset) (math.Int, error) {
	i, ok := pool.OutcomeIndex(asset)
	if !ok {
		return math.Int{}, types.ErrAssetNotInPool.Wrapf("%s is not an outcome of pool %d", asset, pool.ID)
	}
	price, err := r.k.rikiddo.Price(ctx, pool.ID, q, i)
	return price, types.Arithmetic(err)
}

func (r rikiddoRule) SpotPrice(ctx context.Context, pool types.Pool, assetIn, assetOut sharedtypes.Asset, _ bool) (math.Int, error) {
	p := r.k.precision
	q, err := r.outstanding(ctx, pool)
	if err != nil {
		return math.Int{}, err
	}

	switch {
	case assetIn == pool.BaseAsset:
		return r.price(ctx, pool, q, assetOut)
	case assetOut == pool.BaseAsset:
		priceIn, err := r.price(ctx, pool, q, assetIn)
		if err != nil {
			return math.Int{}, err
		}
		inverse, err := p.Div(p.One(), priceIn)
		return inverse, types.Arithmetic(err)
	default:
		priceIn, err := r.price(ctx, pool, q, assetIn)
		if err != nil {
			return math.Int{}, err
		}
		priceOut, err := r.price(ctx, pool, q, assetOut)
		if err != nil {
			return math.Int{}, err
		}
		ratio, err := p.Div(priceOut, priceIn)
		return ratio, types.Arithmetic(err)
	}
}

// costDelta returns cost(after) - cost(before) where after moves outcome asset by delta.
func (r rikiddoRule) costDelta(ctx context.Context, pool types.Pool, asset sharedtypes.Asset, delta math.Int) (math.Int, error) {
	i, ok := pool.OutcomeIndex(asset)
	if !ok {
		return math.Int{}, types.ErrAssetNotInPool.Wrapf("%s is not an outcome of pool %d", asset, pool.ID)
	}
	q, err := r.outstanding(ctx, pool)
	if err != nil {
		return math.Int{}, err
	}
	before, err := r.k.rikiddo.Cost(ctx, pool.ID, q)
	if err != nil {
		return math.Int{}, types.Arithmetic(err)
	}

	moved := make([]math.Int, len(q))
	copy(moved, q)
	moved[i] = q[i].Add(delta)
	if moved[i].IsNegative() {
		return math.Int{}, types.ErrInsufficientBalance.Wrapf("only %s of %s outstanding", q[i], asset)
	}
	after, err := r.k.rikiddo.Cost(ctx, pool.ID, moved)
	if err != nil {
		return math.Int{}, types.Arithmetic(err)
	}
	return after.Sub(before), nil
}

// AmountOutGivenIn prices selling amountIn of an outcome for base.
func (r rikiddoRule) AmountOutGivenIn(ctx context.Context, _ types.Params, pool types.Pool, assetIn sharedtypes.Asset, amountIn math.Int, assetOut sharedtypes.Asset) (math.Int, error) {
	if assetOut != pool.BaseAsset {
		return math.Int{}, types.ErrUnsupportedTrade.Wrap("exact amount in trades must sell an outcome for base")
	}
	delta, err := r.costDelta(ctx, pool, assetIn, amountIn.Neg())
	if err != nil {
		return math.Int{}, err
	}
	if delta.IsPositive() {
		return math.Int{}, types.ErrMathApproximation.Wrapf("selling %s raised the cost by %s", assetIn, delta)
	}
	return delta.Neg(), nil
}

// AmountInGivenOut prices buying amountOut of an outcome with base.
func (r rikiddoRule) AmountInGivenOut(ctx context.Context, _ types.Params, pool types.Pool, assetIn, assetOut sharedtypes.Asset, amountOut math.Int) (math.Int, error) {
	if assetIn != pool.BaseAsset {
		return math.Int{}, types.ErrUnsupportedTrade.Wrap("exact amount out trades must buy an outcome with base")
	}
	delta, err := r.costDelta(ctx, pool, assetOut, amountOut)
	if err != nil {
		return math.Int{}, err
	}
	if delta.IsNegative() {
		return math.Int{}, types.ErrMathApproximation.Wrapf("buying %s lowered the cost by %s", assetOut, delta.Neg())
	}
	return delta, nil
}

func (r rikiddoRule) ExecuteTrade(ctx context.Context, pool types.Pool, who sdk.AccAddress, assetIn sharedtypes.Asset, amountIn math.Int, assetOut sharedtypes.Asset, amountOut math.Int) error {
	account := r.k.PoolAccount(pool.ID)
	switch {
	case assetIn == pool.BaseAsset:
		if err := r.k.ledger.Transfer(ctx, assetIn, who, account, amountIn); err != nil {
			return err
		}
		return r.k.ledger.Deposit(ctx, assetOut, who, amountOut)
	case assetOut == pool.BaseAsset:
		if err := r.k.ledger.Withdraw(ctx, assetIn, who, amountIn); err != nil {
			return err
		}
		return r.k.ledger.Transfer(ctx, assetOut, account, who, amountOut)
	}
	return types.ErrUnsupportedTrade.Wrapf("%s for %s", assetIn, assetOut)
}

func (rikiddoRule) CheckPriceMovement(params types.Params, before, after math.Int) error {
	if after.GTE(before) {
		return nil
	}
	if drop := before.Sub(after); drop.GTE(params.RikiddoPriceTolerance) {
		return types.ErrMathApproximation.Wrapf("spot price fell by %s, tolerance %s", drop, params.RikiddoPriceTolerance)
	}
	return nil
}

func (rikiddoRule) CheckExecutionPrice(math.Int, math.Int, math.Int) error { return nil }

// AfterTrade folds the base side of the trade into the pool's volume average.
func (r rikiddoRule) AfterTrade(ctx context.Context, pool types.Pool, assetIn sharedtypes.Asset, amountIn math.Int, _ sharedtypes.Asset, amountOut math.Int) error {
	volume := amountOut
	if assetIn == pool.BaseAsset {
		volume = amountIn
	}
	if _, err := r.k.rikiddo.UpdateVolume(ctx, pool.ID, volume); err != nil {
		return types.Arithmetic(err)
	}
	return nil
}

func (rikiddoRule) OnSwapCommitted(context.Context, types.Pool) error { return nil }

// Observe publishes the committed volume average and fee of pool.
func (r rikiddoRule) Observe(ctx context.Context, pool types.Pool) {
	mm, err := r.k.rikiddo.GetRikiddo(ctx, pool.ID)
	if err != nil {
		r.k.logger.Debug("rikiddo metrics skipped", "pool_id", pool.ID, "error", err)
		return
	}
	fee, err := mm.Fee(r.k.precision)
	if err != nil {
		r.k.logger.Debug("rikiddo metrics skipped", "pool_id", pool.ID, "error", err)
		return
	}
	label := poolLabel(pool.ID)
	r.k.metrics.RikiddoEma.WithLabelValues(label).Set(units(r.k.precision, mm.Volume.Ema))
	r.k.metrics.RikiddoFee.WithLabelValues(label).Set(units(r.k.precision, fee))
}
