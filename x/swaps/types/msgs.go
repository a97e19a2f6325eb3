package types

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	rikiddotypes "github.com/paw-chain/pmamm/x/rikiddo/types"
	sharedtypes "github.com/paw-chain/pmamm/x/shared/types"
)

// Msg is implemented by every swaps request.
type Msg interface {
	ValidateBasic() error
}

var (
	_ Msg = MsgCreatePool{}
	_ Msg = MsgPoolJoin{}
	_ Msg = MsgPoolExit{}
	_ Msg = MsgPoolJoinWithExactAssetAmount{}
	_ Msg = MsgPoolJoinWithExactPoolAmount{}
	_ Msg = MsgPoolExitWithExactAssetAmount{}
	_ Msg = MsgPoolExitWithExactPoolAmount{}
	_ Msg = MsgSwapExactAmountIn{}
	_ Msg = MsgSwapExactAmountOut{}
	_ Msg = MsgClosePool{}
	_ Msg = MsgDestroyPool{}
	_ Msg = MsgUpdateParams{}
)

// MsgServer handles every swaps request.
type MsgServer interface {
	CreatePool(context.Context, *MsgCreatePool) (*MsgCreatePoolResponse, error)
	PoolJoin(context.Context, *MsgPoolJoin) (*MsgPoolJoinResponse, error)
	PoolExit(context.Context, *MsgPoolExit) (*MsgPoolExitResponse, error)
	PoolJoinWithExactAssetAmount(context.Context, *MsgPoolJoinWithExactAssetAmount) (*MsgPoolJoinWithExactAssetAmountResponse, error)
	PoolJoinWithExactPoolAmount(context.Context, *MsgPoolJoinWithExactPoolAmount) (*MsgPoolJoinWithExactPoolAmountResponse, error)
	PoolExitWithExactAssetAmount(context.Context, *MsgPoolExitWithExactAssetAmount) (*MsgPoolExitWithExactAssetAmountResponse, error)
	PoolExitWithExactPoolAmount(context.Context, *MsgPoolExitWithExactPoolAmount) (*MsgPoolExitWithExactPoolAmountResponse, error)
	SwapExactAmountIn(context.Context, *MsgSwapExactAmountIn) (*MsgSwapExactAmountInResponse, error)
	SwapExactAmountOut(context.Context, *MsgSwapExactAmountOut) (*MsgSwapExactAmountOutResponse, error)
	ClosePool(context.Context, *MsgClosePool) (*MsgClosePoolResponse, error)
	DestroyPool(context.Context, *MsgDestroyPool) (*MsgDestroyPoolResponse, error)
	UpdateParams(context.Context, *MsgUpdateParams) (*MsgUpdateParamsResponse, error)
}

func validateAddress(field, addr string) error {
	if _, err := sdk.AccAddressFromBech32(addr); err != nil {
		return ErrInvalidAddress.Wrapf("invalid %s address: %s", field, err)
	}
	return nil
}

func validatePoolID(id uint64) error {
	if id == 0 {
		return ErrPoolNotFound.Wrap("pool id cannot be zero")
	}
	return nil
}

func validatePositive(field string, v math.Int) error {
	if v.IsNil() || !v.IsPositive() {
		return ErrInvalidAmount.Wrapf("%s must be positive", field)
	}
	return nil
}

func validateNonNegative(field string, v math.Int) error {
	if v.IsNil() || v.IsNegative() {
		return ErrInvalidAmount.Wrapf("%s cannot be negative", field)
	}
	return nil
}

// validateOptional accepts an unset limit.
func validateOptional(field string, v math.Int) error {
	if v.IsNil() {
		return nil
	}
	return validateNonNegative(field, v)
}

func validateAsset(field string, a sharedtypes.Asset) error {
	if err := a.Validate(); err != nil {
		return ErrInvalidAsset.Wrapf("%s: %s", field, err)
	}
	return nil
}

func validateBounds(field string, bounds []math.Int) error {
	if len(bounds) == 0 {
		return ErrProvidedValuesLen.Wrapf("%s is empty", field)
	}
	for _, b := range bounds {
		if err := validateNonNegative(field, b); err != nil {
			return err
		}
	}
	return nil
}

// MsgCreatePool creates a pool and seeds it with liquidity from the sender.
type MsgCreatePool struct {
	Sender      string              `json:"sender"`
	Assets      []sharedtypes.Asset `json:"assets"`
	BaseAsset   sharedtypes.Asset   `json:"base_asset"`
	MarketID    uint64              `json:"market_id"`
	ScoringRule ScoringRuleID       `json:"scoring_rule"`
	SwapFee     math.Int            `json:"swap_fee"`
	Amount      math.Int            `json:"amount"`
	// Weights are aligned with Assets. Only CPMM pools take weights.
	Weights []math.Int                     `json:"weights"`
	Rikiddo *rikiddotypes.RikiddoSigmoidMV `json:"rikiddo"`
}

func (msg MsgCreatePool) ValidateBasic() error {
	if err := validateAddress("sender", msg.Sender); err != nil {
		return err
	}
	if len(msg.Assets) == 0 {
		return ErrInvalidPool.Wrap("no assets")
	}
	for _, a := range msg.Assets {
		if err := validateAsset("assets", a); err != nil {
			return err
		}
	}
	if err := validateAsset("base asset", msg.BaseAsset); err != nil {
		return err
	}
	if err := validateNonNegative("swap fee", msg.SwapFee); err != nil {
		return ErrInvalidSwapFee.Wrap(err.Error())
	}
	if err := validatePositive("amount", msg.Amount); err != nil {
		return err
	}
	switch msg.ScoringRule {
	case ScoringRuleCPMM:
		if len(msg.Weights) != len(msg.Assets) {
			return ErrProvidedValuesLen.Wrapf("%d weights for %d assets", len(msg.Weights), len(msg.Assets))
		}
		if msg.Rikiddo != nil {
			return ErrInvalidScoringRule.Wrap("cpmm pools take no rikiddo config")
		}
	case ScoringRuleRikiddoSigmoidFeeMarketEma:
		if len(msg.Weights) != 0 {
			return ErrInvalidWeight.Wrap("rikiddo pools take no weights")
		}
	default:
		return ErrInvalidScoringRule.Wrapf("%s", msg.ScoringRule)
	}
	return nil
}

// Options returns the pool description carried by the message.
func (msg MsgCreatePool) Options() PoolOptions {
	return PoolOptions{
		Assets:      msg.Assets,
		BaseAsset:   msg.BaseAsset,
		MarketID:    msg.MarketID,
		ScoringRule: msg.ScoringRule,
		SwapFee:     msg.SwapFee,
		Amount:      msg.Amount,
		Weights:     msg.Weights,
		Rikiddo:     msg.Rikiddo,
	}
}

type MsgCreatePoolResponse struct {
	PoolID uint64 `json:"pool_id"`
}

// MsgPoolJoin buys pool shares with a proportional amount of every asset. MaxAssetsIn
// is aligned with the pool's assets.
type MsgPoolJoin struct {
	Sender      string     `json:"sender"`
	PoolID      uint64     `json:"pool_id"`
	PoolAmount  math.Int   `json:"pool_amount"`
	MaxAssetsIn []math.Int `json:"max_assets_in"`
}

func (msg MsgPoolJoin) ValidateBasic() error {
	if err := validateAddress("sender", msg.Sender); err != nil {
		return err
	}
	if err := validatePoolID(msg.PoolID); err != nil {
		return err
	}
	if err := validatePositive("pool amount", msg.PoolAmount); err != nil {
		return err
	}
	return validateBounds("max assets in", msg.MaxAssetsIn)
}

type MsgPoolJoinResponse struct{}

// MsgPoolExit sells pool shares for a proportional amount of every asset. MinAssetsOut
// is aligned with the pool's assets.
type MsgPoolExit struct {
	Sender       string     `json:"sender"`
	PoolID       uint64     `json:"pool_id"`
	PoolAmount   math.Int   `json:"pool_amount"`
	MinAssetsOut []math.Int `json:"min_assets_out"`
}

func (msg MsgPoolExit) ValidateBasic() error {
	if err := validateAddress("sender", msg.Sender); err != nil {
		return err
	}
	if err := validatePoolID(msg.PoolID); err != nil {
		return err
	}
	if err := validatePositive("pool amount", msg.PoolAmount); err != nil {
		return err
	}
	return validateBounds("min assets out", msg.MinAssetsOut)
}

type MsgPoolExitResponse struct{}

type MsgPoolJoinWithExactAssetAmount struct {
	Sender        string            `json:"sender"`
	PoolID        uint64            `json:"pool_id"`
	AssetIn       sharedtypes.Asset `json:"asset_in"`
	AssetAmount   math.Int          `json:"asset_amount"`
	MinPoolAmount math.Int          `json:"min_pool_amount"`
}

func (msg MsgPoolJoinWithExactAssetAmount) ValidateBasic() error {
	if err := validateAddress("sender", msg.Sender); err != nil {
		return err
	}
	if err := validatePoolID(msg.PoolID); err != nil {
		return err
	}
	if err := validateAsset("asset in", msg.AssetIn); err != nil {
		return err
	}
	if err := validatePositive("asset amount", msg.AssetAmount); err != nil {
		return err
	}
	return validateNonNegative("min pool amount", msg.MinPoolAmount)
}

type MsgPoolJoinWithExactAssetAmountResponse struct {
	PoolAmount math.Int `json:"pool_amount"`
}

type MsgPoolJoinWithExactPoolAmount struct {
	Sender         string            `json:"sender"`
	PoolID         uint64            `json:"pool_id"`
	Asset          sharedtypes.Asset `json:"asset"`
	PoolAmount     math.Int          `json:"pool_amount"`
	MaxAssetAmount math.Int          `json:"max_asset_amount"`
}

func (msg MsgPoolJoinWithExactPoolAmount) ValidateBasic() error {
	if err := validateAddress("sender", msg.Sender); err != nil {
		return err
	}
	if err := validatePoolID(msg.PoolID); err != nil {
		return err
	}
	if err := validateAsset("asset", msg.Asset); err != nil {
		return err
	}
	if err := validatePositive("pool amount", msg.PoolAmount); err != nil {
		return err
	}
	return validateNonNegative("max asset amount", msg.MaxAssetAmount)
}

type MsgPoolJoinWithExactPoolAmountResponse struct {
	AssetAmount math.Int `json:"asset_amount"`
}

type MsgPoolExitWithExactAssetAmount struct {
	Sender        string            `json:"sender"`
	PoolID        uint64            `json:"pool_id"`
	Asset         sharedtypes.Asset `json:"asset"`
	AssetAmount   math.Int          `json:"asset_amount"`
	MaxPoolAmount math.Int          `json:"max_pool_amount"`
}

func (msg MsgPoolExitWithExactAssetAmount) ValidateBasic() error {
	if err := validateAddress("sender", msg.Sender); err != nil {
		return err
	}
	if err := validatePoolID(msg.PoolID); err != nil {
		return err
	}
	if err := validateAsset("asset", msg.Asset); err != nil {
		return err
	}
	if err := validatePositive("asset amount", msg.AssetAmount); err != nil {
		return err
	}
	return validateNonNegative("max pool amount", msg.MaxPoolAmount)
}

type MsgPoolExitWithExactAssetAmountResponse struct {
	PoolAmount math.Int `json:"pool_amount"`
}

type MsgPoolExitWithExactPoolAmount struct {
	Sender         string            `json:"sender"`
	PoolID         uint64            `json:"pool_id"`
	Asset          sharedtypes.Asset `json:"asset"`
	PoolAmount     math.Int          `json:"pool_amount"`
	MinAssetAmount math.Int          `json:"min_asset_amount"`
}

func (msg MsgPoolExitWithExactPoolAmount) ValidateBasic() error {
	if err := validateAddress("sender", msg.Sender); err != nil {
		return err
	}
	if err := validatePoolID(msg.PoolID); err != nil {
		return err
	}
	if err := validateAsset("asset", msg.Asset); err != nil {
		return err
	}
	if err := validatePositive("pool amount", msg.PoolAmount); err != nil {
		return err
	}
	return validateNonNegative("min asset amount", msg.MinAssetAmount)
}

type MsgPoolExitWithExactPoolAmountResponse struct {
	AssetAmount math.Int `json:"asset_amount"`
}

// MsgSwapExactAmountIn sells an exact amount of AssetIn. MinAssetAmountOut and MaxPrice
// may be left unset.
type MsgSwapExactAmountIn struct {
	Sender            string            `json:"sender"`
	PoolID            uint64            `json:"pool_id"`
	AssetIn           sharedtypes.Asset `json:"asset_in"`
	AssetAmountIn     math.Int          `json:"asset_amount_in"`
	AssetOut          sharedtypes.Asset `json:"asset_out"`
	MinAssetAmountOut math.Int          `json:"min_asset_amount_out"`
	MaxPrice          math.Int          `json:"max_price"`
}

func (msg MsgSwapExactAmountIn) ValidateBasic() error {
	if err := validateAddress("sender", msg.Sender); err != nil {
		return err
	}
	if err := validatePoolID(msg.PoolID); err != nil {
		return err
	}
	if err := validateAsset("asset in", msg.AssetIn); err != nil {
		return err
	}
	if err := validateAsset("asset out", msg.AssetOut); err != nil {
		return err
	}
	if msg.AssetIn == msg.AssetOut {
		return ErrInvalidAsset.Wrap("cannot swap an asset for itself")
	}
	if err := validatePositive("asset amount in", msg.AssetAmountIn); err != nil {
		return err
	}
	if err := validateOptional("min asset amount out", msg.MinAssetAmountOut); err != nil {
		return err
	}
	return validateOptional("max price", msg.MaxPrice)
}

type MsgSwapExactAmountInResponse struct {
	AssetAmountOut math.Int `json:"asset_amount_out"`
}

// MsgSwapExactAmountOut buys an exact amount of AssetOut. MaxAssetAmountIn and MaxPrice
// may be left unset.
type MsgSwapExactAmountOut struct {
	Sender           string            `json:"sender"`
	PoolID           uint64            `json:"pool_id"`
	AssetIn          sharedtypes.Asset `json:"asset_in"`
	MaxAssetAmountIn math.Int          `json:"max_asset_amount_in"`
	AssetOut         sharedtypes.Asset `json:"asset_out"`
	AssetAmountOut   math.Int          `json:"asset_amount_out"`
	MaxPrice         math.Int          `json:"max_price"`
}

func (msg MsgSwapExactAmountOut) ValidateBasic() error {
	if err := validateAddress("sender", msg.Sender); err != nil {
		return err
	}
	if err := validatePoolID(msg.PoolID); err != nil {
		return err
	}
	if err := validateAsset("asset in", msg.AssetIn); err != nil {
		return err
	}
	if err := validateAsset("asset out", msg.AssetOut); err != nil {
		return err
	}
	if msg.AssetIn == msg.AssetOut {
		return ErrInvalidAsset.Wrap("cannot swap an asset for itself")
	}
	if err := validatePositive("asset amount out", msg.AssetAmountOut); err != nil {
		return err
	}
	if err := validateOptional("max asset amount in", msg.MaxAssetAmountIn); err != nil {
		return err
	}
	return validateOptional("max price", msg.MaxPrice)
}

type MsgSwapExactAmountOutResponse struct {
	AssetAmountIn math.Int `json:"asset_amount_in"`
}

// MsgClosePool stops all trading on a pool. Only the module authority may send it.
type MsgClosePool struct {
	Authority string `json:"authority"`
	PoolID    uint64 `json:"pool_id"`
}

func (msg MsgClosePool) ValidateBasic() error {
	if err := validateAddress("authority", msg.Authority); err != nil {
		return err
	}
	return validatePoolID(msg.PoolID)
}

type MsgClosePoolResponse struct{}

// MsgDestroyPool removes a closed pool. Only the module authority may send it.
type MsgDestroyPool struct {
	Authority string `json:"authority"`
	PoolID    uint64 `json:"pool_id"`
}

func (msg MsgDestroyPool) ValidateBasic() error {
	if err := validateAddress("authority", msg.Authority); err != nil {
		return err
	}
	return validatePoolID(msg.PoolID)
}

type MsgDestroyPoolResponse struct{}

type MsgUpdateParams struct {
	Authority string `json:"authority"`
	Params    Params `json:"params"`
}

func (msg MsgUpdateParams) ValidateBasic() error {
	return validateAddress("authority", msg.Authority)
}

type MsgUpdateParamsResponse struct{}
