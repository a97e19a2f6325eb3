// Package keeper provides helpers shared by the module keepers.
package keeper

import (
	sharedtypes "github.com/paw-chain/pmamm/x/shared/types"
)

// ValidateAuthority checks that the signer of a governance-only message is the
// configured authority.
//
//	if err := sharedkeeper.ValidateAuthority(k.authority, msg.Authority); err != nil {
//	    return nil, err
//	}
func ValidateAuthority(expected, actual string) error {
	if expected == "" || expected != actual {
		return sharedtypes.ErrUnauthorized.Wrapf(
			"invalid authority; expected %s, got %s",
			expected,
			actual,
		)
	}
	return nil
}
