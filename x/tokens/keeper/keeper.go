package keeper

import (
	"cosmossdk.io/core/event"
	"cosmossdk.io/core/store"
	"cosmossdk.io/log"
	"github.com/cosmos/cosmos-sdk/codec"
	addresscodec "github.com/cosmos/cosmos-sdk/codec/address"
	codectypes "github.com/cosmos/cosmos-sdk/codec/types"
	cryptocodec "github.com/cosmos/cosmos-sdk/crypto/codec"
	sdk "github.com/cosmos/cosmos-sdk/types"
	authkeeper "github.com/cosmos/cosmos-sdk/x/auth/keeper"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
	bankkeeper "github.com/cosmos/cosmos-sdk/x/bank/keeper"

	"github.com/paw-chain/pmamm/x/tokens/types"
)

// Keeper of the multi-asset ledger. Balances and supply live in the bank module; each
// asset is a bank denomination.
type Keeper struct {
	bank         types.BankKeeper
	branch       types.BranchService
	eventService event.Service
	logger       log.Logger
}

// NewKeeper creates a new tokens Keeper instance
func NewKeeper(
	bank types.BankKeeper,
	branch types.BranchService,
	eventService event.Service,
	logger log.Logger,
) *Keeper {
	return &Keeper{
		bank:         bank,
		branch:       branch,
		eventService: eventService,
		logger:       logger.With("module", "x/"+types.ModuleName),
	}
}

// Logger returns the module logger.
func (k Keeper) Logger() log.Logger {
	return k.logger
}

// NewBankKeeper wires the account and bank keepers backing the ledger. The tokens
// module account is granted mint and burn permissions; authority must be a bech32
// address under the configured account prefix.
func NewBankKeeper(authStore, bankStore store.KVStoreService, authority string, logger log.Logger) bankkeeper.BaseKeeper {
	registry := codectypes.NewInterfaceRegistry()
	authtypes.RegisterInterfaces(registry)
	cryptocodec.RegisterInterfaces(registry)
	cdc := codec.NewProtoCodec(registry)

	prefix := sdk.GetConfig().GetBech32AccountAddrPrefix()
	accountKeeper := authkeeper.NewAccountKeeper(
		cdc,
		authStore,
		authtypes.ProtoBaseAccount,
		map[string][]string{types.ModuleName: {authtypes.Minter, authtypes.Burner}},
		addresscodec.NewBech32Codec(prefix),
		prefix,
		authority,
	)

	blocked := map[string]bool{
		authtypes.NewModuleAddress(types.ModuleName).String(): true,
	}
	return bankkeeper.NewBaseKeeper(cdc, bankStore, accountKeeper, blocked, authority, logger)
}
