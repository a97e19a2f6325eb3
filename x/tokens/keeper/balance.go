package keeper

import (
	"context"

	"cosmossdk.io/core/event"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	sharedtypes "github.com/paw-chain/pmamm/x/shared/types"
	"github.com/paw-chain/pmamm/x/tokens/types"
)

// FreeBalance returns the balance of who in asset.
func (k Keeper) FreeBalance(ctx context.Context, asset sharedtypes.Asset, who sdk.AccAddress) (math.Int, error) {
	return k.bank.GetBalance(ctx, who, types.Denom(asset)).Amount, nil
}

// TotalIssuance returns the amount of asset in existence.
func (k Keeper) TotalIssuance(ctx context.Context, asset sharedtypes.Asset) (math.Int, error) {
	return k.bank.GetSupply(ctx, types.Denom(asset)).Amount, nil
}

func validateAmount(amount math.Int) error {
	if amount.IsNil() || amount.IsNegative() {
		return types.ErrInvalidAmount.Wrapf("amount must be non-negative, got %s", amount)
	}
	return nil
}

func coins(asset sharedtypes.Asset, amount math.Int) (sdk.Coins, error) {
	if err := asset.Validate(); err != nil {
		return nil, err
	}
	denom := types.Denom(asset)
	if err := sdk.ValidateDenom(denom); err != nil {
		return nil, types.ErrInvalidAmount.Wrapf("asset %s: %s", asset, err)
	}
	return sdk.Coins{sdk.Coin{Denom: denom, Amount: amount}}, nil
}

func (k Keeper) requireBalance(ctx context.Context, asset sharedtypes.Asset, who sdk.AccAddress, amount math.Int) error {
	bal, err := k.FreeBalance(ctx, asset, who)
	if err != nil {
		return err
	}
	if bal.LT(amount) {
		return types.ErrInsufficientBalance.Wrapf("%s has %s %s, needs %s", who, bal, asset, amount)
	}
	return nil
}

// Transfer moves amount of asset from one account to another.
func (k Keeper) Transfer(ctx context.Context, asset sharedtypes.Asset, from, to sdk.AccAddress, amount math.Int) error {
	if err := validateAmount(amount); err != nil {
		return err
	}
	if amount.IsZero() || from.Equals(to) {
		return nil
	}
	amt, err := coins(asset, amount)
	if err != nil {
		return err
	}
	return k.branch.Execute(ctx, func(ctx context.Context) error {
		if err := k.requireBalance(ctx, asset, from, amount); err != nil {
			return err
		}
		if err := k.bank.SendCoins(ctx, from, to, amt); err != nil {
			return err
		}
		return k.eventService.EventManager(ctx).EmitKV(ctx, types.EventTypeTransfer,
			event.Attribute{Key: types.AttributeKeyAsset, Value: asset.String()},
			event.Attribute{Key: types.AttributeKeyFrom, Value: from.String()},
			event.Attribute{Key: types.AttributeKeyTo, Value: to.String()},
			event.Attribute{Key: types.AttributeKeyAmount, Value: amount.String()},
		)
	})
}

// Deposit mints amount of asset into who's account.
func (k Keeper) Deposit(ctx context.Context, asset sharedtypes.Asset, who sdk.AccAddress, amount math.Int) error {
	if err := validateAmount(amount); err != nil {
		return err
	}
	if amount.IsZero() {
		return nil
	}
	amt, err := coins(asset, amount)
	if err != nil {
		return err
	}
	return k.branch.Execute(ctx, func(ctx context.Context) error {
		total, err := k.TotalIssuance(ctx, asset)
		if err != nil {
			return err
		}
		if _, err := total.SafeAdd(amount); err != nil {
			return types.ErrOverflow.Wrapf("%s issuance", asset)
		}
		if err := k.bank.MintCoins(ctx, types.ModuleName, amt); err != nil {
			return err
		}
		if err := k.bank.SendCoinsFromModuleToAccount(ctx, types.ModuleName, who, amt); err != nil {
			return err
		}
		return k.eventService.EventManager(ctx).EmitKV(ctx, types.EventTypeDeposit,
			event.Attribute{Key: types.AttributeKeyAsset, Value: asset.String()},
			event.Attribute{Key: types.AttributeKeyWho, Value: who.String()},
			event.Attribute{Key: types.AttributeKeyAmount, Value: amount.String()},
		)
	})
}

// Withdraw burns amount of asset from who's account.
func (k Keeper) Withdraw(ctx context.Context, asset sharedtypes.Asset, who sdk.AccAddress, amount math.Int) error {
	if err := validateAmount(amount); err != nil {
		return err
	}
	if amount.IsZero() {
		return nil
	}
	amt, err := coins(asset, amount)
	if err != nil {
		return err
	}
	return k.branch.Execute(ctx, func(ctx context.Context) error {
		if err := k.requireBalance(ctx, asset, who, amount); err != nil {
			return err
		}
		if err := k.bank.SendCoinsFromAccountToModule(ctx, who, types.ModuleName, amt); err != nil {
			return err
		}
		if err := k.bank.BurnCoins(ctx, types.ModuleName, amt); err != nil {
			return err
		}
		return k.eventService.EventManager(ctx).EmitKV(ctx, types.EventTypeWithdraw,
			event.Attribute{Key: types.AttributeKeyAsset, Value: asset.String()},
			event.Attribute{Key: types.AttributeKeyWho, Value: who.String()},
			event.Attribute{Key: types.AttributeKeyAmount, Value: amount.String()},
		)
	})
}

// SetBalance overwrites who's balance, minting or burning the difference.
func (k Keeper) SetBalance(ctx context.Context, asset sharedtypes.Asset, who sdk.AccAddress, amount math.Int) error {
	if err := validateAmount(amount); err != nil {
		return err
	}
	bal, err := k.FreeBalance(ctx, asset, who)
	if err != nil {
		return err
	}
	switch {
	case amount.GT(bal):
		return k.Deposit(ctx, asset, who, amount.Sub(bal))
	case amount.LT(bal):
		return k.Withdraw(ctx, asset, who, bal.Sub(amount))
	}
	return nil
}

// IterateBalances calls cb for every non-zero balance in asset until cb returns true.
func (k Keeper) IterateBalances(ctx context.Context, asset sharedtypes.Asset, cb func(who sdk.AccAddress, amount math.Int) (stop bool)) error {
	denom := types.Denom(asset)
	k.bank.IterateAllBalances(ctx, func(addr sdk.AccAddress, coin sdk.Coin) bool {
		if coin.Denom != denom {
			return false
		}
		return cb(addr, coin.Amount)
	})
	return nil
}

// IterateAllBalances calls cb for every non-zero balance, ordered by account then
// asset, until cb returns true.
func (k Keeper) IterateAllBalances(ctx context.Context, cb func(b types.Balance) (stop bool)) error {
	var iterErr error
	k.bank.IterateAllBalances(ctx, func(addr sdk.AccAddress, coin sdk.Coin) bool {
		asset, err := types.AssetFromDenom(coin.Denom)
		if err != nil {
			iterErr = types.ErrInvalidAmount.Wrapf("balance of %s in unknown denom %s", addr, coin.Denom)
			return true
		}
		return cb(types.Balance{Address: addr, Asset: asset, Amount: coin.Amount})
	})
	return iterErr
}
