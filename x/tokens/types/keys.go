package types

import (
	sharedtypes "github.com/paw-chain/pmamm/x/shared/types"
)

const (
	// ModuleName defines the module name. It also names the module account that mints
	// and burns on deposit and withdraw.
	ModuleName = "tokens"
)

// Denom returns the bank denomination of asset.
func Denom(asset sharedtypes.Asset) string {
	return asset.String()
}

// AssetFromDenom parses a bank denomination back into an asset.
func AssetFromDenom(denom string) (sharedtypes.Asset, error) {
	return sharedtypes.ParseAsset(denom)
}
