package keeper_test

import (
	"cosmossdk.io/math"
	"pgregory.net/rapid"

	keepertest "github.com/paw-chain/pmamm/testutil/keeper"
	sharedtypes "github.com/paw-chain/pmamm/x/shared/types"
	"github.com/paw-chain/pmamm/x/swaps/types"
)

func repeat(v math.Int, n int) []math.Int {
	out := make([]math.Int, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func (s *KeeperTestSuite) TestPoolJoinAndExit() {
	id := createCPMM(s.T(), s.f, units(100), math.ZeroInt(), base, yes, no)
	fund(s.T(), s.f, bob, units(20), base, yes, no)
	account := s.k.PoolAccount(id)
	shares := s.k.PoolSharesID(id)

	s.f.Env.ResetEvents()
	s.Require().NoError(s.k.PoolJoin(s.ctx, bob, id, units(10), repeat(units(10), 3)))
	for _, a := range []sharedtypes.Asset{base, yes, no} {
		s.Require().Equal(units(10).String(), balanceOf(s.T(), s.f, a, bob).String())
		s.Require().Equal(units(110).String(), balanceOf(s.T(), s.f, a, account).String())
	}
	s.Require().Equal(units(10).String(), balanceOf(s.T(), s.f, shares, bob).String())

	ev, ok := findEvent(s.f.Env.Events(), types.EventTypePoolJoin)
	s.Require().True(ok)
	transferred, _ := ev.Attribute(types.AttributeKeyTransferred)
	s.Require().Equal("100000000000,100000000000,100000000000", transferred)

	s.Require().NoError(s.k.PoolExit(s.ctx, bob, id, units(10), repeat(units(9), 3)))
	s.Require().True(balanceOf(s.T(), s.f, shares, bob).IsZero())
	for _, a := range []sharedtypes.Asset{base, yes, no} {
		got := balanceOf(s.T(), s.f, a, bob).Sub(units(10))
		// 10 less the 0.3% exit fee
		requireNear(s.T(), prec.Frac(997, 100), got, 1_000)
		s.Require().True(got.LT(units(10)))
	}

	issued, err := s.f.Tokens.TotalIssuance(s.ctx, shares)
	s.Require().NoError(err)
	s.Require().Equal(units(100).String(), issued.String())
}

func (s *KeeperTestSuite) TestPoolJoinAndExitRejections() {
	id := createCPMM(s.T(), s.f, units(100), math.ZeroInt(), base, yes, no)
	fund(s.T(), s.f, bob, units(20), base, yes, no)
	s.Require().NoError(s.k.PoolJoin(s.ctx, bob, id, units(10), repeat(units(10), 3)))

	fund(s.T(), s.f, alice, units(1000), base)
	rikiddoID, err := s.k.CreatePool(s.ctx, alice, rikiddoOptions(units(100), maybe, sharedtypes.CategoricalOutcome(1, 3)))
	s.Require().NoError(err)

	tests := []struct {
		name    string
		op      func() error
		wantErr error
	}{
		{"join with too few bounds", func() error {
			return s.k.PoolJoin(s.ctx, bob, id, units(1), repeat(units(10), 2))
		}, types.ErrProvidedValuesLen},
		{"exit with too many bounds", func() error {
			return s.k.PoolExit(s.ctx, bob, id, units(1), repeat(math.ZeroInt(), 4))
		}, types.ErrProvidedValuesLen},
		{"negligible join", func() error {
			return s.k.PoolJoin(s.ctx, bob, id, math.OneInt(), repeat(units(10), 3))
		}, types.ErrMathApproximation},
		{"join above bound", func() error {
			return s.k.PoolJoin(s.ctx, bob, id, units(10), repeat(units(5), 3))
		}, types.ErrLimitIn},
		{"exit below bound", func() error {
			return s.k.PoolExit(s.ctx, bob, id, units(10), repeat(units(10), 3))
		}, types.ErrLimitOut},
		{"exit more shares than held", func() error {
			return s.k.PoolExit(s.ctx, bob, id, units(11), repeat(math.ZeroInt(), 3))
		}, types.ErrInsufficientBalance},
		{"join rikiddo pool", func() error {
			return s.k.PoolJoin(s.ctx, bob, rikiddoID, units(1), repeat(units(10), 3))
		}, types.ErrInvalidScoringRule},
		{"unknown pool", func() error {
			return s.k.PoolExit(s.ctx, bob, 99, units(1), nil)
		}, types.ErrPoolNotFound},
	}

	before := snapshot(s.T(), s.f)
	s.f.Env.ResetEvents()
	for _, tc := range tests {
		s.Run(tc.name, func() {
			s.Require().ErrorIs(tc.op(), tc.wantErr)
		})
	}
	s.Require().Equal(before, snapshot(s.T(), s.f))
	s.Require().Empty(s.f.Env.Events())
}

func (s *KeeperTestSuite) TestPoolJoinIsProportional() {
	rapid.Check(s.T(), func(t *rapid.T) {
		f := keepertest.NewSwapsFixture(s.T())
		id := createCPMM(t, f, units(100), math.ZeroInt(), base, yes, no)
		account := f.Swaps.PoolAccount(id)

		reserves := make([]math.Int, 3)
		for i, a := range []sharedtypes.Asset{base, yes, no} {
			reserves[i] = units(rapid.Int64Range(100, 100_000).Draw(t, "reserve"))
			if err := f.Tokens.SetBalance(f.Ctx, a, account, reserves[i]); err != nil {
				t.Fatal(err)
			}
		}
		poolAmount := prec.Frac(rapid.Int64Range(1, 5_000).Draw(t, "pool_amount_centi"), 100)
		fund(t, f, bob, units(1_000_000), base, yes, no)

		if err := f.Swaps.PoolJoin(f.Ctx, bob, id, poolAmount, repeat(units(1_000_000), 3)); err != nil {
			t.Fatalf("join: %v", err)
		}
		ratio, err := prec.Div(poolAmount, units(100))
		if err != nil {
			t.Fatal(err)
		}
		for i, a := range []sharedtypes.Asset{base, yes, no} {
			want, err := prec.Mul(ratio, reserves[i])
			if err != nil {
				t.Fatal(err)
			}
			paid := units(1_000_000).Sub(balanceOf(t, f, a, bob))
			if !paid.Equal(want) {
				t.Fatalf("%s: paid %s, want %s", a, paid, want)
			}
		}
	})
}

func (s *KeeperTestSuite) TestSingleAssetJoinThenExit() {
	id := createCPMM(s.T(), s.f, units(100), math.ZeroInt(), base, yes, no)
	fund(s.T(), s.f, bob, units(20), base, yes)
	shares := s.k.PoolSharesID(id)

	poolAmount, err := s.k.PoolJoinWithExactAssetAmount(s.ctx, bob, id, base, units(10), math.ZeroInt())
	s.Require().NoError(err)
	s.Require().True(poolAmount.IsPositive())
	s.Require().Equal(poolAmount.String(), balanceOf(s.T(), s.f, shares, bob).String())
	// 100 * ((110 / 100)^(1/3) - 1)
	requireNear(s.T(), math.NewInt(32280115), poolAmount.QuoRaw(1_000), 1_000)

	out, err := s.k.PoolExitWithExactPoolAmount(s.ctx, bob, id, base, poolAmount, math.ZeroInt())
	s.Require().NoError(err)
	s.Require().True(out.LT(units(10)), "got back %s", out)
	s.Require().True(balanceOf(s.T(), s.f, shares, bob).IsZero())

	in, err := s.k.PoolJoinWithExactPoolAmount(s.ctx, bob, id, yes, units(5), units(20))
	s.Require().NoError(err)
	s.Require().True(in.IsPositive())
	back, err := s.k.PoolExitWithExactPoolAmount(s.ctx, bob, id, yes, units(5), math.ZeroInt())
	s.Require().NoError(err)
	s.Require().True(back.LT(in), "joined with %s, left with %s", in, back)
}

func (s *KeeperTestSuite) TestSingleAssetExitExactAsset() {
	id := createCPMM(s.T(), s.f, units(100), math.ZeroInt(), base, yes, no)
	fund(s.T(), s.f, bob, units(10), base, yes, no)
	s.Require().NoError(s.k.PoolJoin(s.ctx, bob, id, units(10), repeat(units(10), 3)))

	s.f.Env.ResetEvents()
	burned, err := s.k.PoolExitWithExactAssetAmount(s.ctx, bob, id, yes, units(1), units(10))
	s.Require().NoError(err)
	s.Require().True(burned.IsPositive())
	s.Require().True(burned.LT(units(10)))
	s.Require().Equal(units(1).String(), balanceOf(s.T(), s.f, yes, bob).String())
	s.Require().Equal(units(10).Sub(burned).String(), balanceOf(s.T(), s.f, s.k.PoolSharesID(id), bob).String())

	ev, ok := findEvent(s.f.Env.Events(), types.EventTypePoolExitWithExactAssetAmount)
	s.Require().True(ok)
	got, _ := ev.Attribute(types.AttributeKeyPoolAmount)
	s.Require().Equal(burned.String(), got)
}

func (s *KeeperTestSuite) TestSingleAssetRejections() {
	id := createCPMM(s.T(), s.f, units(100), math.ZeroInt(), base, yes)
	closed := createCPMM(s.T(), s.f, units(100), math.ZeroInt(), base, no)
	s.Require().NoError(s.k.ClosePool(s.ctx, closed, keepertest.Authority.String()))
	fund(s.T(), s.f, alice, units(1000), base)
	rikiddoID, err := s.k.CreatePool(s.ctx, alice, rikiddoOptions(units(100), maybe, sharedtypes.CategoricalOutcome(1, 3)))
	s.Require().NoError(err)
	fund(s.T(), s.f, bob, units(100), base, yes)

	tests := []struct {
		name    string
		op      func() error
		wantErr error
	}{
		{"rikiddo pool", func() error {
			_, err := s.k.PoolJoinWithExactAssetAmount(s.ctx, bob, rikiddoID, base, units(1), math.ZeroInt())
			return err
		}, types.ErrInvalidScoringRule},
		{"closed pool", func() error {
			_, err := s.k.PoolExitWithExactPoolAmount(s.ctx, alice, closed, base, units(1), math.ZeroInt())
			return err
		}, types.ErrPoolInactive},
		{"asset not bound", func() error {
			_, err := s.k.PoolJoinWithExactAssetAmount(s.ctx, bob, id, maybe, units(1), math.ZeroInt())
			return err
		}, types.ErrAssetNotBound},
		{"join above in ratio", func() error {
			_, err := s.k.PoolJoinWithExactAssetAmount(s.ctx, bob, id, base, units(60), math.ZeroInt())
			return err
		}, types.ErrMaxInRatio},
		{"join below minimum shares", func() error {
			_, err := s.k.PoolJoinWithExactAssetAmount(s.ctx, bob, id, base, units(10), units(10))
			return err
		}, types.ErrLimitOut},
		{"join above maximum asset", func() error {
			_, err := s.k.PoolJoinWithExactPoolAmount(s.ctx, bob, id, base, units(10), units(1))
			return err
		}, types.ErrLimitIn},
		{"exit above out ratio", func() error {
			_, err := s.k.PoolExitWithExactAssetAmount(s.ctx, alice, id, yes, units(40), units(100))
			return err
		}, types.ErrMaxOutRatio},
		{"exit above maximum shares", func() error {
			_, err := s.k.PoolExitWithExactAssetAmount(s.ctx, alice, id, yes, units(10), units(1))
			return err
		}, types.ErrLimitIn},
		{"exit below minimum asset", func() error {
			_, err := s.k.PoolExitWithExactPoolAmount(s.ctx, alice, id, yes, units(1), units(5))
			return err
		}, types.ErrLimitOut},
		{"exit without shares", func() error {
			_, err := s.k.PoolExitWithExactPoolAmount(s.ctx, bob, id, yes, units(1), math.ZeroInt())
			return err
		}, types.ErrInsufficientBalance},
	}

	before := snapshot(s.T(), s.f)
	s.f.Env.ResetEvents()
	for _, tc := range tests {
		s.Run(tc.name, func() {
			s.Require().ErrorIs(tc.op(), tc.wantErr)
		})
	}
	s.Require().Equal(before, snapshot(s.T(), s.f))
	s.Require().Empty(s.f.Env.Events())
}

func (s *KeeperTestSuite) TestJoinThenExitNeverGains() {
	rapid.Check(s.T(), func(t *rapid.T) {
		f := keepertest.NewSwapsFixture(s.T())
		fee := prec.Frac(rapid.Int64Range(0, 100).Draw(t, "fee_permille"), 1000)
		fund(t, f, alice, units(1000), base, yes)
		weights := []math.Int{
			units(rapid.Int64Range(1, 20).Draw(t, "weight_base")),
			units(rapid.Int64Range(1, 20).Draw(t, "weight_yes")),
		}
		id, err := f.Swaps.CreatePool(f.Ctx, alice, cpmmOptions([]sharedtypes.Asset{base, yes}, weights, units(1000), fee))
		if err != nil {
			t.Fatalf("create pool: %v", err)
		}

		amount := units(rapid.Int64Range(1, 400).Draw(t, "amount"))
		fund(t, f, bob, amount, base)
		poolAmount, err := f.Swaps.PoolJoinWithExactAssetAmount(f.Ctx, bob, id, base, amount, math.ZeroInt())
		if err != nil {
			t.Fatalf("join: %v", err)
		}
		out, err := f.Swaps.PoolExitWithExactPoolAmount(f.Ctx, bob, id, base, poolAmount, math.ZeroInt())
		if err != nil {
			t.Fatalf("exit: %v", err)
		}
		if out.GT(amount) {
			t.Fatalf("joined with %s, left with %s", amount, out)
		}
	})
}
