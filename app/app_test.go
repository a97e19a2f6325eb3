package app_test

import (
	"context"
	"encoding/json"
	"testing"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/paw-chain/pmamm/app"
	"github.com/paw-chain/pmamm/pkg/fixed"
	sharedtypes "github.com/paw-chain/pmamm/x/shared/types"
	swapstypes "github.com/paw-chain/pmamm/x/swaps/types"
	tokenstypes "github.com/paw-chain/pmamm/x/tokens/types"
)

var prec = fixed.MustNewPrecision(app.DefaultDecimals)

func newApp(t *testing.T) *app.App {
	t.Helper()
	a := app.NewInMemory(prec, app.DefaultAuthority().String(), log.NewTestLogger(t))
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestRunBasicScenario(t *testing.T) {
	a := newApp(t)
	ctx := context.Background()

	sc, err := app.LoadScenario("testdata/basic.json")
	require.NoError(t, err)

	results, err := a.RunScenario(ctx, sc)
	require.NoError(t, err)
	require.Len(t, results, len(sc.Steps))

	created, ok := results[0].Response.(*swapstypes.MsgCreatePoolResponse)
	require.True(t, ok)
	require.Equal(t, uint64(1), created.PoolID)

	swapped, ok := results[1].Response.(*swapstypes.MsgSwapExactAmountInResponse)
	require.True(t, ok)
	require.True(t, swapped.AssetAmountOut.GTE(prec.Int(9)))

	require.Contains(t, results[2].Error, "maximum in ratio")
	require.Empty(t, results[2].Events)

	rikiddo, ok := results[3].Response.(*swapstypes.MsgCreatePoolResponse)
	require.True(t, ok)
	require.Equal(t, uint64(2), rikiddo.PoolID)

	pool, err := a.Swaps.GetPool(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, swapstypes.PoolStatusClosed, pool.Status)

	bob := app.AccountAddress("bob")
	bought, err := a.Tokens.FreeBalance(ctx, sharedtypes.CategoricalOutcome(2, 0), bob)
	require.NoError(t, err)
	require.Equal(t, prec.Int(5).String(), bought.String())

	for _, res := range results {
		if res.Error == "" {
			require.NotEmpty(t, res.Events, "step %d", res.Index)
		}
	}
}

func TestRunScenarioStopsOnUnexpectedOutcome(t *testing.T) {
	tests := []struct {
		name string
		step app.Step
	}{
		{
			name: "unexpected failure",
			step: app.Step{
				Type: "close_pool",
				Msg:  json.RawMessage(`{"authority": "authority", "pool_id": 7}`),
			},
		},
		{
			name: "unexpected success",
			step: app.Step{
				Type:        "update_params",
				Msg:         json.RawMessage(`{"authority": "authority", "params": ` + string(mustJSON(t, swapstypes.DefaultParams(prec))) + `}`),
				ExpectError: "unauthorized",
			},
		},
		{
			name: "wrong error",
			step: app.Step{
				Type:        "close_pool",
				Msg:         json.RawMessage(`{"authority": "mallory", "pool_id": 7}`),
				ExpectError: "pool not found",
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := newApp(t)
			results, err := a.RunScenario(context.Background(), &app.Scenario{Steps: []app.Step{tc.step}})
			require.ErrorIs(t, err, app.ErrStepFailed)
			require.Len(t, results, 1)
		})
	}
}

func TestDecodeStep(t *testing.T) {
	a := newApp(t)

	msg, err := a.DecodeStep(app.Step{
		Type: "pool_join",
		Msg:  json.RawMessage(`{"sender": "carol", "pool_id": 3, "pool_amount": "10", "max_assets_in": ["5", "5"]}`),
	})
	require.NoError(t, err)
	join, ok := msg.(*swapstypes.MsgPoolJoin)
	require.True(t, ok)
	require.Equal(t, app.AccountAddress("carol").String(), join.Sender)
	require.Equal(t, uint64(3), join.PoolID)
	require.Equal(t, math.NewInt(10), join.PoolAmount)

	msg, err = a.DecodeStep(app.Step{
		Type: "destroy_pool",
		Msg:  json.RawMessage(`{"authority": "authority", "pool_id": 1}`),
	})
	require.NoError(t, err)
	require.Equal(t, a.Authority(), msg.(*swapstypes.MsgDestroyPool).Authority)

	// bech32 addresses pass through untouched
	addr := app.AccountAddress("dave").String()
	msg, err = a.DecodeStep(app.Step{
		Type: "pool_exit",
		Msg:  json.RawMessage(`{"sender": "` + addr + `", "pool_id": 1, "pool_amount": "1", "min_assets_out": ["0"]}`),
	})
	require.NoError(t, err)
	require.Equal(t, addr, msg.(*swapstypes.MsgPoolExit).Sender)

	_, err = a.DecodeStep(app.Step{Type: "mint", Msg: json.RawMessage(`{}`)})
	require.ErrorIs(t, err, app.ErrUnknownMsg)

	_, err = a.DecodeStep(app.Step{Type: "pool_join", Msg: json.RawMessage(`{"sender": 5}`)})
	require.ErrorIs(t, err, app.ErrInvalidScenario)

	require.Contains(t, app.MsgTypes(), "swap_exact_amount_out")
}

func TestDeliverRejectsUnknownMessages(t *testing.T) {
	a := newApp(t)
	_, err := a.Deliver(context.Background(), swapstypes.MsgClosePool{})
	require.ErrorIs(t, err, app.ErrUnknownMsg)
}

func TestGenesisRoundTrip(t *testing.T) {
	ctx := context.Background()
	a := newApp(t)

	sc, err := app.LoadScenario("testdata/basic.json")
	require.NoError(t, err)
	_, err = a.RunScenario(ctx, sc)
	require.NoError(t, err)

	exported, err := a.ExportGenesis(ctx)
	require.NoError(t, err)
	require.Contains(t, exported, swapstypes.ModuleName)

	b := newApp(t)
	require.NoError(t, b.InitGenesis(ctx, exported))
	again, err := b.ExportGenesis(ctx)
	require.NoError(t, err)
	for module, raw := range exported {
		require.JSONEq(t, string(raw), string(again[module]), module)
	}
}

func TestInitGenesisValidation(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults", func(t *testing.T) {
		a := newApp(t)
		loaded, err := a.GenesisLoaded(ctx)
		require.NoError(t, err)
		require.False(t, loaded)

		require.NoError(t, a.InitGenesis(ctx, app.NewDefaultGenesisState(prec)))
		loaded, err = a.GenesisLoaded(ctx)
		require.NoError(t, err)
		require.True(t, loaded)
		require.ErrorIs(t, a.InitGenesis(ctx, app.NewDefaultGenesisState(prec)), app.ErrInvalidGenesis)

		params, err := a.Swaps.GetParams(ctx)
		require.NoError(t, err)
		require.Equal(t, swapstypes.DefaultParams(prec).MaxInRatio.String(), params.MaxInRatio.String())
	})

	t.Run("unknown module", func(t *testing.T) {
		a := newApp(t)
		err := a.InitGenesis(ctx, app.GenesisState{"bank": json.RawMessage(`{}`)})
		require.ErrorIs(t, err, app.ErrInvalidGenesis)
	})

	t.Run("malformed module", func(t *testing.T) {
		a := newApp(t)
		err := a.InitGenesis(ctx, app.GenesisState{tokenstypes.ModuleName: json.RawMessage(`[`)})
		require.ErrorIs(t, err, app.ErrInvalidGenesis)
	})

	t.Run("failed module leaves no state", func(t *testing.T) {
		a := newApp(t)
		gs := app.NewDefaultGenesisState(prec)
		gs[tokenstypes.ModuleName] = mustJSON(t, tokenstypes.GenesisState{Balances: []tokenstypes.Balance{{
			Address: app.AccountAddress("alice"),
			Asset:   sharedtypes.BaseAsset(),
			Amount:  prec.Int(1),
		}}})
		broken := swapstypes.DefaultGenesis(prec)
		broken.NextPoolID = 0
		gs[swapstypes.ModuleName] = mustJSON(t, broken)

		require.Error(t, a.InitGenesis(ctx, gs))
		loaded, err := a.GenesisLoaded(ctx)
		require.NoError(t, err)
		require.False(t, loaded)
		bal, err := a.Tokens.FreeBalance(ctx, sharedtypes.BaseAsset(), app.AccountAddress("alice"))
		require.NoError(t, err)
		require.True(t, bal.IsZero())
	})
}

func mustJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	bz, err := json.Marshal(v)
	require.NoError(t, err)
	return bz
}
