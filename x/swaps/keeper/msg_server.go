package keeper

import (
	"context"
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"

	sharedkeeper "github.com/paw-chain/pmamm/x/shared/keeper"
	"github.com/paw-chain/pmamm/x/swaps/types"
)

type msgServer struct {
	Keeper
}

// NewMsgServerImpl returns an implementation of the swaps MsgServer interface
func NewMsgServerImpl(keeper Keeper) types.MsgServer {
	return &msgServer{Keeper: keeper}
}

var _ types.MsgServer = msgServer{}

func sender(msg types.Msg, addr string) (sdk.AccAddress, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, err
	}
	return sdk.AccAddressFromBech32(addr)
}

// CreatePool handles the creation of a new pool
func (ms msgServer) CreatePool(goCtx context.Context, msg *types.MsgCreatePool) (*types.MsgCreatePoolResponse, error) {
	creator, err := sender(msg, msg.Sender)
	if err != nil {
		return nil, fmt.Errorf("CreatePool: validate: %w", err)
	}
	poolID, err := ms.Keeper.CreatePool(goCtx, creator, msg.Options())
	if err != nil {
		return nil, fmt.Errorf("CreatePool: %w", err)
	}
	return &types.MsgCreatePoolResponse{PoolID: poolID}, nil
}

// PoolJoin handles a proportional join
func (ms msgServer) PoolJoin(goCtx context.Context, msg *types.MsgPoolJoin) (*types.MsgPoolJoinResponse, error) {
	who, err := sender(msg, msg.Sender)
	if err != nil {
		return nil, fmt.Errorf("PoolJoin: validate: %w", err)
	}
	if err := ms.Keeper.PoolJoin(goCtx, who, msg.PoolID, msg.PoolAmount, msg.MaxAssetsIn); err != nil {
		return nil, fmt.Errorf("PoolJoin: %w", err)
	}
	return &types.MsgPoolJoinResponse{}, nil
}

// PoolExit handles a proportional exit
func (ms msgServer) PoolExit(goCtx context.Context, msg *types.MsgPoolExit) (*types.MsgPoolExitResponse, error) {
	who, err := sender(msg, msg.Sender)
	if err != nil {
		return nil, fmt.Errorf("PoolExit: validate: %w", err)
	}
	if err := ms.Keeper.PoolExit(goCtx, who, msg.PoolID, msg.PoolAmount, msg.MinAssetsOut); err != nil {
		return nil, fmt.Errorf("PoolExit: %w", err)
	}
	return &types.MsgPoolExitResponse{}, nil
}

func (ms msgServer) PoolJoinWithExactAssetAmount(goCtx context.Context, msg *types.MsgPoolJoinWithExactAssetAmount) (*types.MsgPoolJoinWithExactAssetAmountResponse, error) {
	who, err := sender(msg, msg.Sender)
	if err != nil {
		return nil, fmt.Errorf("PoolJoinWithExactAssetAmount: validate: %w", err)
	}
	poolAmount, err := ms.Keeper.PoolJoinWithExactAssetAmount(goCtx, who, msg.PoolID, msg.AssetIn, msg.AssetAmount, msg.MinPoolAmount)
	if err != nil {
		return nil, fmt.Errorf("PoolJoinWithExactAssetAmount: %w", err)
	}
	return &types.MsgPoolJoinWithExactAssetAmountResponse{PoolAmount: poolAmount}, nil
}

func (ms msgServer) PoolJoinWithExactPoolAmount(goCtx context.Context, msg *types.MsgPoolJoinWithExactPoolAmount) (*types.MsgPoolJoinWithExactPoolAmountResponse, error) {
	who, err := sender(msg, msg.Sender)
	if err != nil {
		return nil, fmt.Errorf("PoolJoinWithExactPoolAmount: validate: %w", err)
	}
	assetAmount, err := ms.Keeper.PoolJoinWithExactPoolAmount(goCtx, who, msg.PoolID, msg.Asset, msg.PoolAmount, msg.MaxAssetAmount)
	if err != nil {
		return nil, fmt.Errorf("PoolJoinWithExactPoolAmount: %w", err)
	}
	return &types.MsgPoolJoinWithExactPoolAmountResponse{AssetAmount: assetAmount}, nil
}

func (ms msgServer) PoolExitWithExactAssetAmount(goCtx context.Context, msg *types.MsgPoolExitWithExactAssetAmount) (*types.MsgPoolExitWithExactAssetAmountResponse, error) {
	who, err := sender(msg, msg.Sender)
	if err != nil {
		return nil, fmt.Errorf("PoolExitWithExactAssetAmount: validate: %w", err)
	}
	poolAmount, err := ms.Keeper.PoolExitWithExactAssetAmount(goCtx, who, msg.PoolID, msg.Asset, msg.AssetAmount, msg.MaxPoolAmount)
	if err != nil {
		return nil, fmt.Errorf("PoolExitWithExactAssetAmount: %w", err)
	}
	return &types.MsgPoolExitWithExactAssetAmountResponse{PoolAmount: poolAmount}, nil
}

func (ms msgServer) PoolExitWithExactPoolAmount(goCtx context.Context, msg *types.MsgPoolExitWithExactPoolAmount) (*types.MsgPoolExitWithExactPoolAmountResponse, error) {
	who, err := sender(msg, msg.Sender)
	if err != nil {
		return nil, fmt.Errorf("PoolExitWithExactPoolAmount: validate: %w", err)
	}
	assetAmount, err := ms.Keeper.PoolExitWithExactPoolAmount(goCtx, who, msg.PoolID, msg.Asset, msg.PoolAmount, msg.MinAssetAmount)
	if err != nil {
		return nil, fmt.Errorf("PoolExitWithExactPoolAmount: %w", err)
	}
	return &types.MsgPoolExitWithExactPoolAmountResponse{AssetAmount: assetAmount}, nil
}

// SwapExactAmountIn handles a trade selling an exact amount
func (ms msgServer) SwapExactAmountIn(goCtx context.Context, msg *types.MsgSwapExactAmountIn) (*types.MsgSwapExactAmountInResponse, error) {
	who, err := sender(msg, msg.Sender)
	if err != nil {
		return nil, fmt.Errorf("SwapExactAmountIn: validate: %w", err)
	}
	out, err := ms.Keeper.SwapExactAmountIn(goCtx, who, msg.PoolID, msg.AssetIn, msg.AssetAmountIn, msg.AssetOut, msg.MinAssetAmountOut, msg.MaxPrice)
	if err != nil {
		return nil, fmt.Errorf("SwapExactAmountIn: %w", err)
	}
	return &types.MsgSwapExactAmountInResponse{AssetAmountOut: out}, nil
}

// SwapExactAmountOut handles a trade buying an exact amount
func (ms msgServer) SwapExactAmountOut(goCtx context.Context, msg *types.MsgSwapExactAmountOut) (*types.MsgSwapExactAmountOutResponse, error) {
	who, err := sender(msg, msg.Sender)
	if err != nil {
		return nil, fmt.Errorf("SwapExactAmountOut: validate: %w", err)
	}
	in, err := ms.Keeper.SwapExactAmountOut(goCtx, who, msg.PoolID, msg.AssetIn, msg.MaxAssetAmountIn, msg.AssetOut, msg.AssetAmountOut, msg.MaxPrice)
	if err != nil {
		return nil, fmt.Errorf("SwapExactAmountOut: %w", err)
	}
	return &types.MsgSwapExactAmountOutResponse{AssetAmountIn: in}, nil
}

// ClosePool handles governance closing a pool
func (ms msgServer) ClosePool(goCtx context.Context, msg *types.MsgClosePool) (*types.MsgClosePoolResponse, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, fmt.Errorf("ClosePool: validate: %w", err)
	}
	if err := ms.Keeper.ClosePool(goCtx, msg.PoolID, msg.Authority); err != nil {
		return nil, fmt.Errorf("ClosePool: %w", err)
	}
	return &types.MsgClosePoolResponse{}, nil
}

// DestroyPool handles governance removing a closed pool
func (ms msgServer) DestroyPool(goCtx context.Context, msg *types.MsgDestroyPool) (*types.MsgDestroyPoolResponse, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, fmt.Errorf("DestroyPool: validate: %w", err)
	}
	if err := ms.Keeper.DestroyPool(goCtx, msg.PoolID, msg.Authority); err != nil {
		return nil, fmt.Errorf("DestroyPool: %w", err)
	}
	return &types.MsgDestroyPoolResponse{}, nil
}

// UpdateParams handles governance updating the module parameters
func (ms msgServer) UpdateParams(goCtx context.Context, msg *types.MsgUpdateParams) (*types.MsgUpdateParamsResponse, error) {
	if err := msg.ValidateBasic(); err != nil {
		return nil, fmt.Errorf("UpdateParams: validate: %w", err)
	}
	if err := sharedkeeper.ValidateAuthority(ms.authority, msg.Authority); err != nil {
		return nil, fmt.Errorf("UpdateParams: %w", err)
	}
	err := ms.atomic(goCtx, func(ctx context.Context) error {
		if err := ms.SetParams(ctx, msg.Params); err != nil {
			return err
		}
		return ms.emit(ctx, types.EventTypeParamsUpdated,
			eventAttr(types.AttributeKeyAuthority, msg.Authority),
		)
	})
	if err != nil {
		return nil, fmt.Errorf("UpdateParams: %w", err)
	}
	return &types.MsgUpdateParamsResponse{}, nil
}
