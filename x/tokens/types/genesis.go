package types

import (
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	sharedtypes "github.com/paw-chain/pmamm/x/shared/types"
)

// Balance is the holding of one account in one asset.
type Balance struct {
	Address sdk.AccAddress    `json:"address"`
	Asset   sharedtypes.Asset `json:"asset"`
	Amount  math.Int          `json:"amount"`
}

// GenesisState lists every non-zero balance. Total issuance is derived from it.
type GenesisState struct {
	Balances []Balance `json:"balances"`
}

// DefaultGenesis returns an empty ledger.
func DefaultGenesis() *GenesisState {
	return &GenesisState{}
}

// Validate rejects malformed and duplicate balances.
func (gs GenesisState) Validate() error {
	seen := make(map[string]struct{}, len(gs.Balances))
	for i, b := range gs.Balances {
		if err := b.Asset.Validate(); err != nil {
			return ErrInvalidGenesis.Wrapf("balance %d: %s", i, err)
		}
		if len(b.Address) == 0 {
			return ErrInvalidGenesis.Wrapf("balance %d: empty address", i)
		}
		if b.Amount.IsNil() || !b.Amount.IsPositive() {
			return ErrInvalidGenesis.Wrapf("balance %d: amount must be positive", i)
		}
		key := Denom(b.Asset) + "/" + b.Address.String()
		if _, ok := seen[key]; ok {
			return ErrInvalidGenesis.Wrapf("duplicate balance for %s in %s", b.Address, b.Asset)
		}
		seen[key] = struct{}{}
	}
	return nil
}
