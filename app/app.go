// Package app wires the tokens, rikiddo and swaps keepers over one state environment and
// dispatches swaps messages to them.
package app

import (
	"context"
	"os"
	"path/filepath"

	"cosmossdk.io/core/store"
	"cosmossdk.io/log"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/address"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
	banktypes "github.com/cosmos/cosmos-sdk/x/bank/types"

	"github.com/paw-chain/pmamm/pkg/fixed"
	"github.com/paw-chain/pmamm/pkg/state"
	rikiddokeeper "github.com/paw-chain/pmamm/x/rikiddo/keeper"
	rikiddotypes "github.com/paw-chain/pmamm/x/rikiddo/types"
	swapskeeper "github.com/paw-chain/pmamm/x/swaps/keeper"
	swapstypes "github.com/paw-chain/pmamm/x/swaps/types"
	tokenskeeper "github.com/paw-chain/pmamm/x/tokens/keeper"
)

const (
	AccountAddressPrefix = "pmamm"
	Name                 = "pmamm"

	// DefaultDecimals is the fixed-point precision used when none is configured.
	DefaultDecimals = 10

	storeKey = "app"
)

// DefaultNodeHome is the default home directory for the application daemon.
var DefaultNodeHome string

func init() {
	userHomeDir, err := os.UserHomeDir()
	if err != nil {
		panic(err)
	}

	DefaultNodeHome = filepath.Join(userHomeDir, "."+Name)
}

// DefaultAuthority returns the address allowed to close and destroy pools and to update
// the swaps parameters when no authority is configured.
func DefaultAuthority() sdk.AccAddress {
	return sdk.AccAddress(address.Module(Name, []byte("authority")))
}

// StoreKeys lists the stores an environment must mount for New.
func StoreKeys() []string {
	return []string{
		authtypes.StoreKey,
		banktypes.StoreKey,
		rikiddotypes.StoreKey,
		swapstypes.StoreKey,
		storeKey,
	}
}

// App holds the keepers of one process. The keepers are exported so the CLI and tests
// can query them directly.
type App struct {
	Env     *state.Environment
	Tokens  *tokenskeeper.Keeper
	Rikiddo *rikiddokeeper.Keeper
	Swaps   *swapskeeper.Keeper

	MsgServer swapstypes.MsgServer

	storeService store.KVStoreService
	precision    fixed.Precision
	authority    string
	logger       log.Logger
}

// New wires the keepers against env, which must mount StoreKeys. The app owns env from
// here on; Close releases it. authority must be a bech32 account address.
func New(env *state.Environment, precision fixed.Precision, authority string, logger log.Logger) *App {
	bank := tokenskeeper.NewBankKeeper(
		env.KVStoreService(authtypes.StoreKey),
		env.KVStoreService(banktypes.StoreKey),
		authority,
		logger,
	)
	tokens := tokenskeeper.NewKeeper(bank, env, env.EventService(), logger)
	rikiddo := rikiddokeeper.NewKeeper(env.KVStoreService(rikiddotypes.StoreKey), env.EventService(), precision, logger)
	swaps := swapskeeper.NewKeeper(
		env.KVStoreService(swapstypes.StoreKey),
		env.EventService(),
		env,
		tokens,
		rikiddo,
		precision,
		authority,
		logger,
	)

	return &App{
		Env:          env,
		Tokens:       tokens,
		Rikiddo:      rikiddo,
		Swaps:        swaps,
		MsgServer:    swapskeeper.NewMsgServerImpl(*swaps),
		storeService: env.KVStoreService(storeKey),
		precision:    precision,
		authority:    authority,
		logger:       logger.With("module", "app"),
	}
}

// NewInMemory builds an app over a fresh in-memory environment.
func NewInMemory(precision fixed.Precision, authority string, logger log.Logger) *App {
	return New(state.NewMemEnvironment(logger, StoreKeys()...), precision, authority, logger)
}

// Precision returns the fixed-point precision every keeper evaluates with.
func (a *App) Precision() fixed.Precision { return a.precision }

// Authority returns the bech32 governance address.
func (a *App) Authority() string { return a.authority }

// Logger returns the application logger.
func (a *App) Logger() log.Logger { return a.logger }

// Close releases the underlying database.
func (a *App) Close() error {
	return a.Env.Close()
}

// Deliver validates msg and routes it to the swaps message server.
func (a *App) Deliver(ctx context.Context, msg swapstypes.Msg) (any, error) {
	switch m := msg.(type) {
	case *swapstypes.MsgCreatePool:
		return a.MsgServer.CreatePool(ctx, m)
	case *swapstypes.MsgPoolJoin:
		return a.MsgServer.PoolJoin(ctx, m)
	case *swapstypes.MsgPoolExit:
		return a.MsgServer.PoolExit(ctx, m)
	case *swapstypes.MsgPoolJoinWithExactAssetAmount:
		return a.MsgServer.PoolJoinWithExactAssetAmount(ctx, m)
	case *swapstypes.MsgPoolJoinWithExactPoolAmount:
		return a.MsgServer.PoolJoinWithExactPoolAmount(ctx, m)
	case *swapstypes.MsgPoolExitWithExactAssetAmount:
		return a.MsgServer.PoolExitWithExactAssetAmount(ctx, m)
	case *swapstypes.MsgPoolExitWithExactPoolAmount:
		return a.MsgServer.PoolExitWithExactPoolAmount(ctx, m)
	case *swapstypes.MsgSwapExactAmountIn:
		return a.MsgServer.SwapExactAmountIn(ctx, m)
	case *swapstypes.MsgSwapExactAmountOut:
		return a.MsgServer.SwapExactAmountOut(ctx, m)
	case *swapstypes.MsgClosePool:
		return a.MsgServer.ClosePool(ctx, m)
	case *swapstypes.MsgDestroyPool:
		return a.MsgServer.DestroyPool(ctx, m)
	case *swapstypes.MsgUpdateParams:
		return a.MsgServer.UpdateParams(ctx, m)
	default:
		return nil, ErrUnknownMsg.Wrapf("%T", msg)
	}
}
