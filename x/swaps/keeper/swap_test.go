package keeper_test

import (
	"strconv"

	"cosmossdk.io/math"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"pgregory.net/rapid"

	keepertest "github.com/paw-chain/pmamm/testutil/keeper"
	sharedtypes "github.com/paw-chain/pmamm/x/shared/types"
	"github.com/paw-chain/pmamm/x/swaps/keeper"
	"github.com/paw-chain/pmamm/x/swaps/types"
	tokenstypes "github.com/paw-chain/pmamm/x/tokens/types"
)

func (s *KeeperTestSuite) TestSwapExactAmountIn() {
	id := createCPMM(s.T(), s.f, units(100), math.ZeroInt(), base, yes)
	fund(s.T(), s.f, bob, units(10), base)

	before, err := s.k.GetSpotPrice(s.ctx, id, base, yes, true)
	s.Require().NoError(err)
	s.Require().Equal(prec.One().String(), before.String())

	s.f.Env.ResetEvents()
	out, err := s.k.SwapExactAmountIn(s.ctx, bob, id, base, units(10), yes, units(9), prec.Frac(13, 10))
	s.Require().NoError(err)
	// 100 - 100 * 100 / 110
	requireNear(s.T(), math.NewInt(90909090909), out, 1_000)

	s.Require().True(balanceOf(s.T(), s.f, base, bob).IsZero())
	s.Require().Equal(out.String(), balanceOf(s.T(), s.f, yes, bob).String())
	account := s.k.PoolAccount(id)
	s.Require().Equal(units(110).String(), balanceOf(s.T(), s.f, base, account).String())
	s.Require().Equal(units(100).Sub(out).String(), balanceOf(s.T(), s.f, yes, account).String())

	after, err := s.k.GetSpotPrice(s.ctx, id, base, yes, true)
	s.Require().NoError(err)
	s.Require().True(after.GTE(before))
	requireNear(s.T(), prec.Frac(121, 100), after, 10_000)

	ev, ok := findEvent(s.f.Env.Events(), types.EventTypeSwapExactAmountIn)
	s.Require().True(ok)
	amountOut, _ := ev.Attribute(types.AttributeKeyAmountOut)
	s.Require().Equal(out.String(), amountOut)
	bound, _ := ev.Attribute(types.AttributeKeyBound)
	s.Require().Equal(units(9).String(), bound)
	maxPrice, ok := ev.Attribute(types.AttributeKeyMaxPrice)
	s.Require().True(ok)
	s.Require().Equal(prec.Frac(13, 10).String(), maxPrice)
}

func (s *KeeperTestSuite) TestSwapMaxPriceCoversPriceAfterTrade() {
	id := createCPMM(s.T(), s.f, units(100), math.ZeroInt(), base, yes)
	fund(s.T(), s.f, bob, units(10), base)

	// the spot price starts at 1 and ends near 1.21
	_, err := s.k.SwapExactAmountIn(s.ctx, bob, id, base, units(10), yes, math.Int{}, prec.Frac(12, 10))
	s.Require().ErrorIs(err, types.ErrBadLimitPrice)
	s.Require().Equal(units(10).String(), balanceOf(s.T(), s.f, base, bob).String())

	_, err = s.k.SwapExactAmountIn(s.ctx, bob, id, base, units(10), yes, math.Int{}, prec.Frac(122, 100))
	s.Require().NoError(err)
}

func (s *KeeperTestSuite) TestSwapExactAmountOut() {
	id := createCPMM(s.T(), s.f, units(100), math.ZeroInt(), base, yes)
	fund(s.T(), s.f, bob, units(20), base)

	in, err := s.k.SwapExactAmountOut(s.ctx, bob, id, base, units(12), yes, units(10), math.Int{})
	s.Require().NoError(err)
	// 100 * (100 / 90 - 1)
	requireNear(s.T(), math.NewInt(111111111111), in, 1_000)
	s.Require().Equal(units(10).String(), balanceOf(s.T(), s.f, yes, bob).String())
	s.Require().Equal(units(20).Sub(in).String(), balanceOf(s.T(), s.f, base, bob).String())

	// paying at least the spot price
	realized, err := prec.Div(in, units(10))
	s.Require().NoError(err)
	s.Require().True(realized.GTE(prec.One()))
}

func (s *KeeperTestSuite) TestSwapFeeRaisesPrice() {
	free := createCPMM(s.T(), s.f, units(100), math.ZeroInt(), base, yes)
	fund(s.T(), s.f, alice, units(100), base, no)
	weights := []math.Int{units(2), units(2)}
	charged, err := s.k.CreatePool(s.ctx, alice, cpmmOptions([]sharedtypes.Asset{base, no}, weights, units(100), prec.Frac(1, 100)))
	s.Require().NoError(err)

	noFee, err := s.k.GetSpotPrice(s.ctx, free, base, yes, true)
	s.Require().NoError(err)
	withFee, err := s.k.GetSpotPrice(s.ctx, charged, base, no, true)
	s.Require().NoError(err)
	withoutFee, err := s.k.GetSpotPrice(s.ctx, charged, base, no, false)
	s.Require().NoError(err)
	s.Require().Equal(noFee.String(), withoutFee.String())
	s.Require().True(withFee.GT(withoutFee))

	fund(s.T(), s.f, bob, units(20), base)
	outFree, err := s.k.SwapExactAmountIn(s.ctx, bob, free, base, units(10), yes, math.Int{}, math.Int{})
	s.Require().NoError(err)
	outCharged, err := s.k.SwapExactAmountIn(s.ctx, bob, charged, base, units(10), no, math.Int{}, math.Int{})
	s.Require().NoError(err)
	s.Require().True(outCharged.LT(outFree))
}

func (s *KeeperTestSuite) TestSwapRejections() {
	id := createCPMM(s.T(), s.f, units(100), math.ZeroInt(), base, yes, no)
	fund(s.T(), s.f, bob, units(100), base)

	unbound := createCPMM(s.T(), s.f, units(100), math.ZeroInt(), base, maybe)
	pool, err := s.k.GetPool(s.ctx, unbound)
	s.Require().NoError(err)
	delete(pool.Weights, maybe)
	s.Require().NoError(s.k.SetPool(s.ctx, pool))

	tests := []struct {
		name    string
		swap    func() error
		wantErr error
	}{
		{"unknown pool", func() error {
			_, err := s.k.SwapExactAmountIn(s.ctx, bob, 99, base, units(1), yes, math.Int{}, math.Int{})
			return err
		}, types.ErrPoolNotFound},
		{"same asset", func() error {
			_, err := s.k.SwapExactAmountIn(s.ctx, bob, id, base, units(1), base, math.Int{}, math.Int{})
			return err
		}, types.ErrInvalidAsset},
		{"asset not in pool", func() error {
			_, err := s.k.SwapExactAmountIn(s.ctx, bob, id, base, units(1), maybe, math.Int{}, math.Int{})
			return err
		}, types.ErrAssetNotInPool},
		{"asset not bound", func() error {
			_, err := s.k.SwapExactAmountIn(s.ctx, bob, unbound, base, units(1), maybe, math.Int{}, math.Int{})
			return err
		}, types.ErrAssetNotBound},
		{"spot price above limit", func() error {
			_, err := s.k.SwapExactAmountIn(s.ctx, bob, id, base, units(1), yes, math.Int{}, prec.Frac(9, 10))
			return err
		}, types.ErrBadLimitPrice},
		{"price after trade above limit", func() error {
			_, err := s.k.SwapExactAmountIn(s.ctx, bob, id, base, units(10), yes, math.Int{}, prec.Frac(11, 10))
			return err
		}, types.ErrBadLimitPrice},
		{"amount out below minimum", func() error {
			_, err := s.k.SwapExactAmountIn(s.ctx, bob, id, base, units(10), yes, units(10), math.Int{})
			return err
		}, types.ErrLimitOut},
		{"amount in above maximum", func() error {
			_, err := s.k.SwapExactAmountOut(s.ctx, bob, id, base, units(11), yes, units(10), math.Int{})
			return err
		}, types.ErrLimitIn},
		{"in ratio exceeded", func() error {
			_, err := s.k.SwapExactAmountIn(s.ctx, bob, id, base, units(60), yes, math.Int{}, math.Int{})
			return err
		}, types.ErrMaxInRatio},
		{"out ratio exceeded", func() error {
			_, err := s.k.SwapExactAmountOut(s.ctx, bob, id, base, math.Int{}, yes, units(40), math.Int{})
			return err
		}, types.ErrMaxOutRatio},
		{"trader cannot pay", func() error {
			_, err := s.k.SwapExactAmountIn(s.ctx, alice, id, base, units(10), yes, math.Int{}, math.Int{})
			return err
		}, tokenstypes.ErrInsufficientBalance},
	}

	before := snapshot(s.T(), s.f)
	s.f.Env.ResetEvents()
	for _, tc := range tests {
		s.Run(tc.name, func() {
			s.Require().ErrorIs(tc.swap(), tc.wantErr)
		})
	}
	s.Require().Equal(before, snapshot(s.T(), s.f))
	s.Require().Empty(s.f.Env.Events())

	cached, err := s.k.PoolsCachedForArbitrage(s.ctx)
	s.Require().NoError(err)
	s.Require().Empty(cached)
}

func (s *KeeperTestSuite) TestArbitrageCache() {
	first := createCPMM(s.T(), s.f, units(100), math.ZeroInt(), base, yes)
	second := createCPMM(s.T(), s.f, units(100), math.ZeroInt(), base, no)
	fund(s.T(), s.f, bob, units(100), base)

	_, err := s.k.SwapExactAmountIn(s.ctx, bob, second, base, units(1), no, math.Int{}, math.Int{})
	s.Require().NoError(err)
	_, err = s.k.SwapExactAmountIn(s.ctx, bob, first, base, units(1), yes, math.Int{}, math.Int{})
	s.Require().NoError(err)

	cached, err := s.k.PoolsCachedForArbitrage(s.ctx)
	s.Require().NoError(err)
	s.Require().Equal([]uint64{first, second}, cached)

	n, err := s.k.ClearArbitrageCache(s.ctx)
	s.Require().NoError(err)
	s.Require().Equal(2, n)
	cached, err = s.k.PoolsCachedForArbitrage(s.ctx)
	s.Require().NoError(err)
	s.Require().Empty(cached)

	// liquidity changes mark the pool too
	fund(s.T(), s.f, alice, units(10), base, yes)
	s.Require().NoError(s.k.PoolJoin(s.ctx, alice, first, units(1), []math.Int{units(2), units(2)}))
	cached, err = s.k.PoolsCachedForArbitrage(s.ctx)
	s.Require().NoError(err)
	s.Require().Equal([]uint64{first}, cached)
}

func (s *KeeperTestSuite) TestCPMMPriceNeverFalls() {
	rapid.Check(s.T(), func(t *rapid.T) {
		f := keepertest.NewSwapsFixture(s.T())
		reserveIn := units(rapid.Int64Range(100, 10_000).Draw(t, "reserve_in"))
		reserveOut := units(rapid.Int64Range(100, 10_000).Draw(t, "reserve_out"))
		weightIn := units(rapid.Int64Range(1, 25).Draw(t, "weight_in"))
		weightOut := units(rapid.Int64Range(1, 25).Draw(t, "weight_out"))
		fee := prec.Frac(rapid.Int64Range(0, 100).Draw(t, "fee_permille"), 1000)
		exactIn := rapid.Bool().Draw(t, "exact_in")

		fund(t, f, alice, reserveIn, base)
		fund(t, f, alice, reserveOut, yes)
		opts := cpmmOptions([]sharedtypes.Asset{base, yes}, []math.Int{weightIn, weightOut}, units(100), fee)
		id, err := f.Swaps.CreatePool(f.Ctx, alice, opts)
		if err != nil {
			t.Fatalf("create pool: %v", err)
		}
		// top the reserves up to the drawn sizes
		account := f.Swaps.PoolAccount(id)
		if err := f.Tokens.SetBalance(f.Ctx, base, account, reserveIn); err != nil {
			t.Fatal(err)
		}
		if err := f.Tokens.SetBalance(f.Ctx, yes, account, reserveOut); err != nil {
			t.Fatal(err)
		}

		before, err := f.Swaps.GetSpotPrice(f.Ctx, id, base, yes, true)
		if err != nil {
			t.Fatal(err)
		}
		fund(t, f, bob, units(1_000_000_000), base)

		var in, out math.Int
		if exactIn {
			maxIn := reserveIn.QuoRaw(2)
			in = prec.Floor(maxIn.QuoRaw(rapid.Int64Range(1, 100).Draw(t, "in_divisor")))
			if in.IsZero() {
				in = prec.One()
			}
			out, err = f.Swaps.SwapExactAmountIn(f.Ctx, bob, id, base, in, yes, math.Int{}, math.Int{})
		} else {
			maxOut := reserveOut.QuoRaw(3)
			out = prec.Floor(maxOut.QuoRaw(rapid.Int64Range(1, 100).Draw(t, "out_divisor")))
			if out.IsZero() {
				out = prec.One()
			}
			in, err = f.Swaps.SwapExactAmountOut(f.Ctx, bob, id, base, math.Int{}, yes, out, math.Int{})
		}
		if err != nil {
			t.Fatalf("swap: %v", err)
		}

		after, err := f.Swaps.GetSpotPrice(f.Ctx, id, base, yes, true)
		if err != nil {
			t.Fatal(err)
		}
		if after.LT(before) {
			t.Fatalf("spot price fell from %s to %s", before, after)
		}
		realized, err := prec.Div(in, out)
		if err != nil {
			t.Fatal(err)
		}
		if realized.LT(before) {
			t.Fatalf("realized price %s below spot price %s", realized, before)
		}
	})
}

func (s *KeeperTestSuite) TestSwapMetricsFollowCommittedState() {
	metrics := keeper.NewSwapMetrics()
	volume := metrics.SwapVolume.WithLabelValues(types.ScoringRuleCPMM.String())

	id := createCPMM(s.T(), s.f, units(100), math.ZeroInt(), base, yes)
	fund(s.T(), s.f, bob, units(10), base)

	// rejected after the transfers ran
	before := promtestutil.ToFloat64(volume)
	_, err := s.k.SwapExactAmountIn(s.ctx, bob, id, base, units(10), yes, math.Int{}, prec.Frac(12, 10))
	s.Require().ErrorIs(err, types.ErrBadLimitPrice)
	s.Require().Equal(before, promtestutil.ToFloat64(volume))

	_, err = s.k.SwapExactAmountIn(s.ctx, bob, id, base, units(10), yes, math.Int{}, math.Int{})
	s.Require().NoError(err)
	s.Require().InDelta(before+10, promtestutil.ToFloat64(volume), 1e-9)
}

func (s *KeeperTestSuite) TestRikiddoGaugesFollowCommittedState() {
	metrics := keeper.NewSwapMetrics()
	id := s.createRikiddo()
	label := strconv.FormatUint(id, 10)
	fund(s.T(), s.f, bob, units(100), base)

	_, err := s.k.SwapExactAmountOut(s.ctx, bob, id, base, math.Int{}, yes, units(10), math.Int{})
	s.Require().NoError(err)
	mm, err := s.f.Rikiddo.GetRikiddo(s.ctx, id)
	s.Require().NoError(err)
	ema := promtestutil.ToFloat64(metrics.RikiddoEma.WithLabelValues(label))
	fee := promtestutil.ToFloat64(metrics.RikiddoFee.WithLabelValues(label))
	s.Require().InDelta(float64(mm.Volume.Ema.Int64())/float64(prec.One().Int64()), ema, 1e-9)
	s.Require().Positive(fee)

	// a rejected trade neither moves the average nor the gauges
	_, err = s.k.SwapExactAmountOut(s.ctx, bob, id, base, units(1), yes, units(10), math.Int{})
	s.Require().ErrorIs(err, types.ErrLimitIn)
	s.Require().Equal(ema, promtestutil.ToFloat64(metrics.RikiddoEma.WithLabelValues(label)))
	s.Require().Equal(fee, promtestutil.ToFloat64(metrics.RikiddoFee.WithLabelValues(label)))
	after, err := s.f.Rikiddo.GetRikiddo(s.ctx, id)
	s.Require().NoError(err)
	s.Require().Equal(mm.Volume.Ema.String(), after.Volume.Ema.String())
}
