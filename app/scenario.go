package app

import (
	"context"
	"encoding/json"
	"os"
	"sort"
	"strings"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/address"

	"github.com/paw-chain/pmamm/pkg/state"
	sharedtypes "github.com/paw-chain/pmamm/x/shared/types"
	swapstypes "github.com/paw-chain/pmamm/x/swaps/types"
)

// AuthorityAccount is the scenario account name that resolves to the app's authority.
const AuthorityAccount = "authority"

// Scenario is a scripted sequence of swaps messages. Accounts are referred to by name;
// a "sender" or "authority" field holding a known name is replaced by its address.
type Scenario struct {
	Genesis GenesisState `json:"genesis,omitempty"`
	Funding []Funding    `json:"funding,omitempty"`
	Steps   []Step       `json:"steps"`
}

// Funding mints Amount of Asset into the named account before the first step.
type Funding struct {
	Account string            `json:"account"`
	Asset   sharedtypes.Asset `json:"asset"`
	Amount  math.Int          `json:"amount"`
}

// Step is one message. When ExpectError is set the step must fail with an error whose
// message contains it.
type Step struct {
	Type        string          `json:"type"`
	Msg         json.RawMessage `json:"msg"`
	ExpectError string          `json:"expect_error,omitempty"`
}

// StepResult is the outcome of one step and the events it committed.
type StepResult struct {
	Index    int           `json:"index"`
	Type     string        `json:"type"`
	Response any           `json:"response,omitempty"`
	Error    string        `json:"error,omitempty"`
	Events   []state.Event `json:"events,omitempty"`
}

var msgFactories = map[string]func() swapstypes.Msg{
	"create_pool":                       func() swapstypes.Msg { return &swapstypes.MsgCreatePool{} },
	"pool_join":                         func() swapstypes.Msg { return &swapstypes.MsgPoolJoin{} },
	"pool_exit":                         func() swapstypes.Msg { return &swapstypes.MsgPoolExit{} },
	"pool_join_with_exact_asset_amount": func() swapstypes.Msg { return &swapstypes.MsgPoolJoinWithExactAssetAmount{} },
	"pool_join_with_exact_pool_amount":  func() swapstypes.Msg { return &swapstypes.MsgPoolJoinWithExactPoolAmount{} },
	"pool_exit_with_exact_asset_amount": func() swapstypes.Msg { return &swapstypes.MsgPoolExitWithExactAssetAmount{} },
	"pool_exit_with_exact_pool_amount":  func() swapstypes.Msg { return &swapstypes.MsgPoolExitWithExactPoolAmount{} },
	"swap_exact_amount_in":              func() swapstypes.Msg { return &swapstypes.MsgSwapExactAmountIn{} },
	"swap_exact_amount_out":             func() swapstypes.Msg { return &swapstypes.MsgSwapExactAmountOut{} },
	"close_pool":                        func() swapstypes.Msg { return &swapstypes.MsgClosePool{} },
	"destroy_pool":                      func() swapstypes.Msg { return &swapstypes.MsgDestroyPool{} },
	"update_params":                     func() swapstypes.Msg { return &swapstypes.MsgUpdateParams{} },
}

// MsgTypes lists the step types a scenario may use.
func MsgTypes() []string {
	names := make([]string, 0, len(msgFactories))
	for name := range msgFactories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadScenario reads a scenario from a JSON file.
func LoadScenario(path string) (*Scenario, error) {
	bz, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := json.Unmarshal(bz, &sc); err != nil {
		return nil, ErrInvalidScenario.Wrapf("%s: %s", path, err)
	}
	return &sc, nil
}

// AccountAddress derives the address of a named scenario account.
func AccountAddress(name string) sdk.AccAddress {
	return sdk.AccAddress(address.Hash(Name, []byte(name)))
}

// ResolveAccount maps a scenario account name or a bech32 address to an address.
func (a *App) ResolveAccount(name string) sdk.AccAddress {
	if addr, err := sdk.AccAddressFromBech32(name); err == nil {
		return addr
	}
	if name == AuthorityAccount {
		addr, err := sdk.AccAddressFromBech32(a.authority)
		if err == nil {
			return addr
		}
	}
	return AccountAddress(name)
}

// DecodeStep builds the message of a step, replacing account names with addresses.
func (a *App) DecodeStep(step Step) (swapstypes.Msg, error) {
	factory, ok := msgFactories[step.Type]
	if !ok {
		return nil, ErrUnknownMsg.Wrapf("%q", step.Type)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(step.Msg, &fields); err != nil {
		return nil, ErrInvalidScenario.Wrapf("%s: %s", step.Type, err)
	}
	for _, key := range []string{"sender", "authority"} {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		var name string
		if err := json.Unmarshal(raw, &name); err != nil {
			return nil, ErrInvalidScenario.Wrapf("%s.%s must be a string", step.Type, key)
		}
		if _, err := sdk.AccAddressFromBech32(name); err == nil {
			continue
		}
		fields[key] = mustMarshalJSON(a.ResolveAccount(name).String())
	}
	bz, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}

	msg := factory()
	if err := json.Unmarshal(bz, msg); err != nil {
		return nil, ErrInvalidScenario.Wrapf("%s: %s", step.Type, err)
	}
	return msg, nil
}

// Fund mints every funding entry in one branch.
func (a *App) Fund(ctx context.Context, funding []Funding) error {
	return a.Env.Execute(ctx, func(ctx context.Context) error {
		for i, f := range funding {
			if f.Account == "" {
				return ErrInvalidScenario.Wrapf("funding %d: empty account", i)
			}
			if err := f.Asset.Validate(); err != nil {
				return ErrInvalidScenario.Wrapf("funding %d: %s", i, err)
			}
			if f.Amount.IsNil() {
				return ErrInvalidScenario.Wrapf("funding %d: missing amount", i)
			}
			if err := a.Tokens.Deposit(ctx, f.Asset, a.ResolveAccount(f.Account), f.Amount); err != nil {
				return err
			}
		}
		return nil
	})
}

// RunScenario loads the genesis, applies the funding and delivers every step in order.
// It stops at the first step whose outcome differs from what the step expects and
// returns the results gathered so far.
func (a *App) RunScenario(ctx context.Context, sc *Scenario) ([]StepResult, error) {
	if len(sc.Genesis) > 0 {
		if err := a.InitGenesis(ctx, sc.Genesis); err != nil {
			return nil, err
		}
	}
	if err := a.Fund(ctx, sc.Funding); err != nil {
		return nil, err
	}
	a.Env.ResetEvents()

	results := make([]StepResult, 0, len(sc.Steps))
	for i, step := range sc.Steps {
		res := StepResult{Index: i, Type: step.Type}
		msg, err := a.DecodeStep(step)
		if err != nil {
			return results, err
		}

		resp, err := a.Deliver(ctx, msg)
		res.Events = a.Env.ResetEvents()
		if err != nil {
			res.Error = err.Error()
		} else {
			res.Response = resp
		}
		results = append(results, res)
		a.logger.Debug("scenario step", "index", i, "type", step.Type, "error", res.Error, "events", len(res.Events))

		if err := checkStep(step, res); err != nil {
			return results, err
		}
	}
	return results, nil
}

func checkStep(step Step, res StepResult) error {
	switch {
	case step.ExpectError == "" && res.Error != "":
		return ErrStepFailed.Wrapf("step %d (%s): %s", res.Index, step.Type, res.Error)
	case step.ExpectError != "" && res.Error == "":
		return ErrStepFailed.Wrapf("step %d (%s): expected error %q", res.Index, step.Type, step.ExpectError)
	case step.ExpectError != "" && !strings.Contains(strings.ToLower(res.Error), strings.ToLower(step.ExpectError)):
		return ErrStepFailed.Wrapf("step %d (%s): expected error %q, got %q", res.Index, step.Type, step.ExpectError, res.Error)
	}
	return nil
}
