package keeper_test

import (
	"errors"

	"cosmossdk.io/math"
	"pgregory.net/rapid"

	keepertest "github.com/paw-chain/pmamm/testutil/keeper"
	rikiddotypes "github.com/paw-chain/pmamm/x/rikiddo/types"
	sharedtypes "github.com/paw-chain/pmamm/x/shared/types"
	"github.com/paw-chain/pmamm/x/swaps/types"
)

func (s *KeeperTestSuite) createRikiddo() uint64 {
	fund(s.T(), s.f, alice, units(1000), base)
	id, err := s.k.CreatePool(s.ctx, alice, rikiddoOptions(units(100), yes, no))
	s.Require().NoError(err)
	return id
}

func (s *KeeperTestSuite) TestCreateRikiddoPool() {
	id := s.createRikiddo()

	cost, err := s.f.Rikiddo.Cost(s.ctx, id, []math.Int{units(100), units(100)})
	s.Require().NoError(err)
	// 100 + fee * 200 * ln 2
	requireNear(s.T(), math.NewInt(1006134675416), cost, 50)

	s.Require().Equal(units(1000).Sub(cost).String(), balanceOf(s.T(), s.f, base, alice).String())
	s.Require().Equal(cost.String(), balanceOf(s.T(), s.f, base, s.k.PoolAccount(id)).String())
	s.Require().Equal(units(100).String(), balanceOf(s.T(), s.f, yes, alice).String())
	s.Require().Equal(units(100).String(), balanceOf(s.T(), s.f, no, alice).String())
	s.Require().Equal(units(100).String(), balanceOf(s.T(), s.f, s.k.PoolSharesID(id), alice).String())

	pool, err := s.k.GetPool(s.ctx, id)
	s.Require().NoError(err)
	s.Require().Empty(pool.Weights)
	s.Require().Equal(types.ScoringRuleRikiddoSigmoidFeeMarketEma, pool.ScoringRule)

	// outcomes already in circulation cannot back a second market maker
	_, err = s.k.CreatePool(s.ctx, alice, rikiddoOptions(units(100), yes, maybe))
	s.Require().ErrorIs(err, types.ErrInvalidPool)
}

func (s *KeeperTestSuite) TestCreateRikiddoPoolCustomConfig() {
	fund(s.T(), s.f, alice, units(1000), base)
	cfg := rikiddotypes.DefaultRikiddo(prec)
	cfg.Volume.Period = 20
	opts := rikiddoOptions(units(100), yes, no)
	opts.Rikiddo = &cfg

	id, err := s.k.CreatePool(s.ctx, alice, opts)
	s.Require().NoError(err)
	stored, err := s.f.Rikiddo.GetRikiddo(s.ctx, id)
	s.Require().NoError(err)
	s.Require().Equal(uint64(20), stored.Volume.Period)

	bad := rikiddotypes.DefaultRikiddo(prec)
	bad.Fees.MinFee = math.ZeroInt()
	opts = rikiddoOptions(units(100), maybe, sharedtypes.CategoricalOutcome(1, 3))
	opts.Rikiddo = &bad
	before := snapshot(s.T(), s.f)
	_, err = s.k.CreatePool(s.ctx, alice, opts)
	s.Require().ErrorIs(err, rikiddotypes.ErrInvalidConfig)
	s.Require().Equal(before, snapshot(s.T(), s.f))
}

func (s *KeeperTestSuite) TestRikiddoBuyAndSell() {
	id := s.createRikiddo()
	fund(s.T(), s.f, bob, units(100), base)
	account := s.k.PoolAccount(id)

	alpha, err := rikiddotypes.DefaultRikiddo(prec).Volume.Alpha(prec)
	s.Require().NoError(err)
	feeBefore, err := s.f.Rikiddo.Fee(s.ctx, id)
	s.Require().NoError(err)
	priceBefore, err := s.k.GetSpotPrice(s.ctx, id, base, yes, true)
	s.Require().NoError(err)

	in, err := s.k.SwapExactAmountOut(s.ctx, bob, id, base, units(20), yes, units(10), math.Int{})
	s.Require().NoError(err)
	s.Require().True(in.GT(priceBefore.MulRaw(10)), "paid %s", in)
	s.Require().Equal(units(10).String(), balanceOf(s.T(), s.f, yes, bob).String())
	s.Require().Equal(units(100).Sub(in).String(), balanceOf(s.T(), s.f, base, bob).String())
	issued, err := s.f.Tokens.TotalIssuance(s.ctx, yes)
	s.Require().NoError(err)
	s.Require().Equal(units(110).String(), issued.String())

	r, err := s.f.Rikiddo.GetRikiddo(s.ctx, id)
	s.Require().NoError(err)
	wantEma, err := prec.Mul(alpha, in)
	s.Require().NoError(err)
	s.Require().Equal(wantEma.String(), r.Volume.Ema.String())

	feeAfter, err := s.f.Rikiddo.Fee(s.ctx, id)
	s.Require().NoError(err)
	s.Require().NotEqual(feeBefore.String(), feeAfter.String())

	// the same trade again is quoted against a different fee and outstanding amount
	in2, err := s.k.SwapExactAmountOut(s.ctx, bob, id, base, units(20), yes, units(10), math.Int{})
	s.Require().NoError(err)
	s.Require().NotEqual(in.String(), in2.String())
	s.Require().True(in2.GT(in))

	poolBase := balanceOf(s.T(), s.f, base, account)
	out, err := s.k.SwapExactAmountIn(s.ctx, bob, id, yes, units(5), base, math.ZeroInt(), math.Int{})
	s.Require().NoError(err)
	s.Require().True(out.IsPositive())
	s.Require().True(out.LT(in), "sold 5 for %s after buying 10 for %s", out, in)
	s.Require().Equal(units(15).String(), balanceOf(s.T(), s.f, yes, bob).String())
	s.Require().Equal(poolBase.Sub(out).String(), balanceOf(s.T(), s.f, base, account).String())
	issued, err = s.f.Tokens.TotalIssuance(s.ctx, yes)
	s.Require().NoError(err)
	s.Require().Equal(units(115).String(), issued.String())

	// rikiddo trades never mark a pool for arbitrage
	cached, err := s.k.PoolsCachedForArbitrage(s.ctx)
	s.Require().NoError(err)
	s.Require().Empty(cached)
}

func (s *KeeperTestSuite) TestRikiddoSpotPrices() {
	id := s.createRikiddo()

	buy, err := s.k.GetSpotPrice(s.ctx, id, base, yes, true)
	s.Require().NoError(err)
	// 0.5 + fee * ln 2
	requireNear(s.T(), math.NewInt(5030673377), buy, 20)

	sell, err := s.k.GetSpotPrice(s.ctx, id, yes, base, true)
	s.Require().NoError(err)
	inverse, err := prec.Div(prec.One(), buy)
	s.Require().NoError(err)
	s.Require().Equal(inverse.String(), sell.String())

	cross, err := s.k.GetSpotPrice(s.ctx, id, yes, no, true)
	s.Require().NoError(err)
	s.Require().Equal(prec.One().String(), cross.String())
}

func (s *KeeperTestSuite) TestRikiddoCrossPriceQuotes() {
	id := s.createRikiddo()
	fund(s.T(), s.f, bob, units(100), base)
	_, err := s.k.SwapExactAmountOut(s.ctx, bob, id, base, math.Int{}, yes, units(20), math.Int{})
	s.Require().NoError(err)

	priceYes, err := s.k.GetSpotPrice(s.ctx, id, base, yes, true)
	s.Require().NoError(err)
	priceNo, err := s.k.GetSpotPrice(s.ctx, id, base, no, true)
	s.Require().NoError(err)
	want, err := prec.Div(priceNo, priceYes)
	s.Require().NoError(err)

	cross, err := s.k.GetSpotPrice(s.ctx, id, yes, no, true)
	s.Require().NoError(err)
	s.Require().Equal(want.String(), cross.String())
	s.Require().True(cross.LT(prec.One()))

	// quotable but not tradable
	_, err = s.k.SwapExactAmountIn(s.ctx, bob, id, yes, units(1), no, math.Int{}, math.Int{})
	s.Require().ErrorIs(err, types.ErrUnsupportedTrade)
}

func (s *KeeperTestSuite) TestRikiddoZeroCostQuoteRejected() {
	fund(s.T(), s.f, alice, units(1000), base)
	cfg := rikiddotypes.DefaultRikiddo(prec)
	cfg.Fees.MinFee = prec.Frac(3, 1000)
	cfg.Fees.MaxFee = cfg.Fees.MinFee
	opts := rikiddoOptions(units(100), yes, no, maybe)
	opts.Rikiddo = &cfg
	id, err := s.k.CreatePool(s.ctx, alice, opts)
	s.Require().NoError(err)
	fund(s.T(), s.f, bob, units(100), base)

	// outstanding amounts become [125, 100, 100]
	_, err = s.k.SwapExactAmountOut(s.ctx, bob, id, base, math.Int{}, yes, units(25), math.Int{})
	s.Require().NoError(err)

	before := snapshot(s.T(), s.f)
	_, err = s.k.SwapExactAmountOut(s.ctx, bob, id, base, math.Int{}, maybe, units(1), math.Int{})
	s.Require().ErrorIs(err, types.ErrMathApproximation)
	s.Require().Equal(before, snapshot(s.T(), s.f))
}

func (s *KeeperTestSuite) TestRikiddoUnsupportedTrades() {
	id := s.createRikiddo()
	fund(s.T(), s.f, bob, units(100), base)
	s.Require().NoError(s.f.Tokens.Transfer(s.ctx, yes, alice, bob, units(10)))

	tests := []struct {
		name    string
		swap    func() error
		wantErr error
	}{
		{"exact in buying an outcome", func() error {
			_, err := s.k.SwapExactAmountIn(s.ctx, bob, id, base, units(1), yes, math.Int{}, math.Int{})
			return err
		}, types.ErrUnsupportedTrade},
		{"exact out selling an outcome", func() error {
			_, err := s.k.SwapExactAmountOut(s.ctx, bob, id, yes, math.Int{}, base, units(1), math.Int{})
			return err
		}, types.ErrUnsupportedTrade},
		{"outcome for outcome", func() error {
			_, err := s.k.SwapExactAmountIn(s.ctx, bob, id, yes, units(1), no, math.Int{}, math.Int{})
			return err
		}, types.ErrUnsupportedTrade},
		{"buy above amount in limit", func() error {
			_, err := s.k.SwapExactAmountOut(s.ctx, bob, id, base, units(1), yes, units(10), math.Int{})
			return err
		}, types.ErrLimitIn},
		{"sell below amount out limit", func() error {
			_, err := s.k.SwapExactAmountIn(s.ctx, bob, id, yes, units(1), base, units(1), math.Int{})
			return err
		}, types.ErrLimitOut},
		{"symmetric join", func() error {
			return s.k.PoolJoin(s.ctx, bob, id, units(1), repeat(units(10), 3))
		}, types.ErrInvalidScoringRule},
	}

	before := snapshot(s.T(), s.f)
	for _, tc := range tests {
		s.Run(tc.name, func() {
			s.Require().ErrorIs(tc.swap(), tc.wantErr)
		})
	}
	s.Require().Equal(before, snapshot(s.T(), s.f))

	r, err := s.f.Rikiddo.GetRikiddo(s.ctx, id)
	s.Require().NoError(err)
	s.Require().True(r.Volume.Ema.IsZero())
}

func (s *KeeperTestSuite) TestRikiddoPriceTolerance() {
	rapid.Check(s.T(), func(t *rapid.T) {
		f := keepertest.NewSwapsFixture(s.T())
		fund(t, f, alice, units(10_000), base)
		// a flat fee keeps the quote independent of the volume average
		cfg := rikiddotypes.DefaultRikiddo(prec)
		cfg.Fees.MinFee = prec.Frac(rapid.Int64Range(3, 30).Draw(t, "fee_permille"), 1000)
		cfg.Fees.MaxFee = cfg.Fees.MinFee
		opts := rikiddoOptions(units(100), yes, no, maybe)
		opts.Rikiddo = &cfg
		id, err := f.Swaps.CreatePool(f.Ctx, alice, opts)
		if err != nil {
			t.Fatalf("create pool: %v", err)
		}
		fund(t, f, bob, units(100_000), base)
		params, err := f.Swaps.GetParams(f.Ctx)
		if err != nil {
			t.Fatal(err)
		}

		outcomes := []sharedtypes.Asset{yes, no, maybe}
		steps := rapid.IntRange(1, 8).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			outcome := rapid.SampledFrom(outcomes).Draw(t, "outcome")
			amount := units(rapid.Int64Range(1, 50).Draw(t, "amount"))
			sell := rapid.Bool().Draw(t, "sell")

			assetIn, assetOut := base, outcome
			if sell {
				held := balanceOf(t, f, outcome, bob)
				if held.LT(amount) {
					continue
				}
				assetIn, assetOut = outcome, base
			}
			before, err := f.Swaps.GetSpotPrice(f.Ctx, id, assetIn, assetOut, true)
			if err != nil {
				t.Fatal(err)
			}
			if sell {
				_, err = f.Swaps.SwapExactAmountIn(f.Ctx, bob, id, assetIn, amount, assetOut, math.Int{}, math.Int{})
			} else {
				_, err = f.Swaps.SwapExactAmountOut(f.Ctx, bob, id, assetIn, math.Int{}, assetOut, amount, math.Int{})
			}
			after, spotErr := f.Swaps.GetSpotPrice(f.Ctx, id, assetIn, assetOut, true)
			if spotErr != nil {
				t.Fatal(spotErr)
			}
			if errors.Is(err, types.ErrMathApproximation) {
				// rejected quotes leave the pool untouched
				if !after.Equal(before) {
					t.Fatalf("trade %d: rejected trade moved the spot price from %s to %s", i, before, after)
				}
				continue
			}
			if err != nil {
				t.Fatalf("trade %d: %v", i, err)
			}
			if before.Sub(after).GTE(params.RikiddoPriceTolerance) {
				t.Fatalf("trade %d: spot price fell from %s to %s", i, before, after)
			}
		}
	})
}
