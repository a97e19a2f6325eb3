package keeper_test

import (
	"cosmossdk.io/math"

	keepertest "github.com/paw-chain/pmamm/testutil/keeper"
	sharedtypes "github.com/paw-chain/pmamm/x/shared/types"
	"github.com/paw-chain/pmamm/x/swaps/keeper"
	"github.com/paw-chain/pmamm/x/swaps/types"
)

func (s *KeeperTestSuite) TestMsgServerRoundTrip() {
	ms := keeper.NewMsgServerImpl(*s.k)
	fund(s.T(), s.f, alice, units(1000), base, yes)
	fund(s.T(), s.f, bob, units(100), base, yes)

	created, err := ms.CreatePool(s.ctx, &types.MsgCreatePool{
		Sender:      alice.String(),
		Assets:      []sharedtypes.Asset{yes, base},
		BaseAsset:   base,
		MarketID:    7,
		ScoringRule: types.ScoringRuleCPMM,
		SwapFee:     prec.Frac(1, 100),
		Amount:      units(100),
		Weights:     []math.Int{units(2), units(2)},
	})
	s.Require().NoError(err)
	id := created.PoolID

	swapIn, err := ms.SwapExactAmountIn(s.ctx, &types.MsgSwapExactAmountIn{
		Sender:        bob.String(),
		PoolID:        id,
		AssetIn:       base,
		AssetAmountIn: units(5),
		AssetOut:      yes,
	})
	s.Require().NoError(err)
	s.Require().True(swapIn.AssetAmountOut.IsPositive())

	swapOut, err := ms.SwapExactAmountOut(s.ctx, &types.MsgSwapExactAmountOut{
		Sender:         bob.String(),
		PoolID:         id,
		AssetIn:        yes,
		AssetOut:       base,
		AssetAmountOut: units(1),
	})
	s.Require().NoError(err)
	s.Require().True(swapOut.AssetAmountIn.IsPositive())

	_, err = ms.PoolJoin(s.ctx, &types.MsgPoolJoin{
		Sender:      bob.String(),
		PoolID:      id,
		PoolAmount:  units(10),
		MaxAssetsIn: repeat(units(20), 2),
	})
	s.Require().NoError(err)

	joined, err := ms.PoolJoinWithExactAssetAmount(s.ctx, &types.MsgPoolJoinWithExactAssetAmount{
		Sender:        bob.String(),
		PoolID:        id,
		AssetIn:       base,
		AssetAmount:   units(5),
		MinPoolAmount: math.ZeroInt(),
	})
	s.Require().NoError(err)
	s.Require().True(joined.PoolAmount.IsPositive())

	paid, err := ms.PoolJoinWithExactPoolAmount(s.ctx, &types.MsgPoolJoinWithExactPoolAmount{
		Sender:         bob.String(),
		PoolID:         id,
		Asset:          yes,
		PoolAmount:     units(1),
		MaxAssetAmount: units(10),
	})
	s.Require().NoError(err)
	s.Require().True(paid.AssetAmount.IsPositive())

	burned, err := ms.PoolExitWithExactAssetAmount(s.ctx, &types.MsgPoolExitWithExactAssetAmount{
		Sender:        bob.String(),
		PoolID:        id,
		Asset:         base,
		AssetAmount:   units(1),
		MaxPoolAmount: units(10),
	})
	s.Require().NoError(err)
	s.Require().True(burned.PoolAmount.IsPositive())

	withdrawn, err := ms.PoolExitWithExactPoolAmount(s.ctx, &types.MsgPoolExitWithExactPoolAmount{
		Sender:         bob.String(),
		PoolID:         id,
		Asset:          yes,
		PoolAmount:     units(1),
		MinAssetAmount: math.ZeroInt(),
	})
	s.Require().NoError(err)
	s.Require().True(withdrawn.AssetAmount.IsPositive())

	_, err = ms.PoolExit(s.ctx, &types.MsgPoolExit{
		Sender:       bob.String(),
		PoolID:       id,
		PoolAmount:   units(5),
		MinAssetsOut: repeat(math.ZeroInt(), 2),
	})
	s.Require().NoError(err)

	authority := keepertest.Authority.String()
	_, err = ms.ClosePool(s.ctx, &types.MsgClosePool{Authority: alice.String(), PoolID: id})
	s.Require().ErrorIs(err, types.ErrUnauthorized)
	_, err = ms.ClosePool(s.ctx, &types.MsgClosePool{Authority: authority, PoolID: id})
	s.Require().NoError(err)
	_, err = ms.DestroyPool(s.ctx, &types.MsgDestroyPool{Authority: authority, PoolID: id})
	s.Require().NoError(err)
	_, err = s.k.GetPool(s.ctx, id)
	s.Require().ErrorIs(err, types.ErrPoolNotFound)
}

func (s *KeeperTestSuite) TestMsgServerRejectsInvalidMessages() {
	ms := keeper.NewMsgServerImpl(*s.k)

	_, err := ms.SwapExactAmountIn(s.ctx, &types.MsgSwapExactAmountIn{
		Sender:        "not-an-address",
		PoolID:        1,
		AssetIn:       base,
		AssetAmountIn: units(1),
		AssetOut:      yes,
	})
	s.Require().ErrorIs(err, types.ErrInvalidAddress)

	_, err = ms.PoolJoin(s.ctx, &types.MsgPoolJoin{
		Sender:      bob.String(),
		PoolID:      0,
		PoolAmount:  units(1),
		MaxAssetsIn: repeat(units(1), 2),
	})
	s.Require().ErrorIs(err, types.ErrPoolNotFound)

	_, err = ms.SwapExactAmountOut(s.ctx, &types.MsgSwapExactAmountOut{
		Sender:         bob.String(),
		PoolID:         1,
		AssetIn:        base,
		AssetOut:       yes,
		AssetAmountOut: units(1),
	})
	s.Require().ErrorIs(err, types.ErrPoolNotFound)
}

func (s *KeeperTestSuite) TestMsgServerUpdateParams() {
	ms := keeper.NewMsgServerImpl(*s.k)
	params := types.DefaultParams(prec)
	params.ExitFee = math.ZeroInt()

	_, err := ms.UpdateParams(s.ctx, &types.MsgUpdateParams{Authority: bob.String(), Params: params})
	s.Require().ErrorIs(err, types.ErrUnauthorized)

	s.f.Env.ResetEvents()
	_, err = ms.UpdateParams(s.ctx, &types.MsgUpdateParams{Authority: keepertest.Authority.String(), Params: params})
	s.Require().NoError(err)
	got, err := s.k.GetParams(s.ctx)
	s.Require().NoError(err)
	s.Require().True(got.ExitFee.IsZero())
	_, ok := findEvent(s.f.Env.Events(), types.EventTypeParamsUpdated)
	s.Require().True(ok)

	params.MaxOutRatio = math.ZeroInt()
	_, err = ms.UpdateParams(s.ctx, &types.MsgUpdateParams{Authority: keepertest.Authority.String(), Params: params})
	s.Require().ErrorIs(err, types.ErrInvalidParams)
}
