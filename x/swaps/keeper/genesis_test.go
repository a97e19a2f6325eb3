package keeper_test

import (
	"encoding/json"

	"cosmossdk.io/math"

	keepertest "github.com/paw-chain/pmamm/testutil/keeper"
	sharedtypes "github.com/paw-chain/pmamm/x/shared/types"
	"github.com/paw-chain/pmamm/x/swaps/types"
)

func (s *KeeperTestSuite) TestGenesisRoundTrip() {
	cpmmID := createCPMM(s.T(), s.f, units(100), prec.Frac(1, 100), base, yes)
	rikiddoID := s.createRikiddoWith(no, maybe)
	fund(s.T(), s.f, bob, units(100), base)
	_, err := s.k.SwapExactAmountIn(s.ctx, bob, cpmmID, base, units(5), yes, math.Int{}, math.Int{})
	s.Require().NoError(err)
	_, err = s.k.SwapExactAmountOut(s.ctx, bob, rikiddoID, base, math.Int{}, no, units(5), math.Int{})
	s.Require().NoError(err)

	swapsGen, err := s.k.ExportGenesis(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(swapsGen.Pools, 2)
	s.Require().Equal(uint64(3), swapsGen.NextPoolID)
	s.Require().Equal([]uint64{cpmmID}, swapsGen.ArbitrageCache)
	tokensGen, err := s.f.Tokens.ExportGenesis(s.ctx)
	s.Require().NoError(err)
	rikiddoGen, err := s.f.Rikiddo.ExportGenesis(s.ctx)
	s.Require().NoError(err)

	imported := keepertest.NewSwapsFixture(s.T())
	s.Require().NoError(imported.Tokens.InitGenesis(imported.Ctx, *tokensGen))
	s.Require().NoError(imported.Rikiddo.InitGenesis(imported.Ctx, *rikiddoGen))
	s.Require().NoError(imported.Swaps.InitGenesis(imported.Ctx, *swapsGen))

	exported, err := imported.Swaps.ExportGenesis(imported.Ctx)
	s.Require().NoError(err)
	want, err := json.Marshal(swapsGen)
	s.Require().NoError(err)
	got, err := json.Marshal(exported)
	s.Require().NoError(err)
	s.Require().JSONEq(string(want), string(got))

	// both copies quote the next trade identically
	for _, f := range []*keepertest.SwapsFixture{s.f, imported} {
		_, err := f.Swaps.SwapExactAmountIn(f.Ctx, bob, cpmmID, base, units(5), yes, math.Int{}, math.Int{})
		s.Require().NoError(err)
		_, err = f.Swaps.SwapExactAmountOut(f.Ctx, bob, rikiddoID, base, math.Int{}, no, units(5), math.Int{})
		s.Require().NoError(err)
	}
	s.Require().Equal(
		balanceOf(s.T(), s.f, yes, bob).String(),
		balanceOf(s.T(), imported, yes, bob).String(),
	)
	s.Require().Equal(
		balanceOf(s.T(), s.f, base, bob).String(),
		balanceOf(s.T(), imported, base, bob).String(),
	)
}

func (s *KeeperTestSuite) createRikiddoWith(outcomes ...sharedtypes.Asset) uint64 {
	fund(s.T(), s.f, alice, units(1000), base)
	id, err := s.k.CreatePool(s.ctx, alice, rikiddoOptions(units(100), outcomes...))
	s.Require().NoError(err)
	return id
}

func (s *KeeperTestSuite) TestInitGenesisRejectsInvalidState() {
	gs := types.DefaultGenesis(prec)
	gs.ArbitrageCache = []uint64{4}
	s.Require().ErrorIs(s.k.InitGenesis(s.ctx, *gs), types.ErrPoolNotFound)

	gs = types.DefaultGenesis(prec)
	gs.NextPoolID = 0
	s.Require().ErrorIs(s.k.InitGenesis(s.ctx, *gs), types.ErrInvalidPool)

	exported, err := s.k.ExportGenesis(s.ctx)
	s.Require().NoError(err)
	s.Require().Equal(uint64(1), exported.NextPoolID)
	s.Require().Empty(exported.Pools)
}
