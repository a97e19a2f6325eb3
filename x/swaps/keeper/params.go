package keeper

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/paw-chain/pmamm/x/swaps/types"
)

// GetParams returns the current parameters
func (k Keeper) GetParams(ctx context.Context) (types.Params, error) {
	bz, err := k.getStore(ctx).Get(types.ParamsKey)
	if err != nil {
		return types.Params{}, err
	}
	if bz == nil {
		return types.DefaultParams(k.precision), nil
	}

	var params types.Params
	if err := json.Unmarshal(bz, &params); err != nil {
		return types.Params{}, fmt.Errorf("GetParams: unmarshal: %w", err)
	}
	return params, nil
}

// SetParams sets the parameters in the store
func (k Keeper) SetParams(ctx context.Context, params types.Params) error {
	if err := params.Validate(k.precision); err != nil {
		return err
	}
	bz, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("SetParams: marshal: %w", err)
	}
	return k.getStore(ctx).Set(types.ParamsKey, bz)
}
