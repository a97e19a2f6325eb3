package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/paw-chain/pmamm/app"
	sharedtypes "github.com/paw-chain/pmamm/x/shared/types"
	swapstypes "github.com/paw-chain/pmamm/x/swaps/types"
)

const flagWithFees = "with-fees"

// QueryCmd returns the query subcommands.
func QueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:                        "query",
		Aliases:                    []string{"q"},
		Short:                      "Querying subcommands",
		SuggestionsMinimumDistance: 2,
		RunE:                       func(cmd *cobra.Command, _ []string) error { return cmd.Help() },
	}

	cmd.AddCommand(
		queryPoolsCmd(),
		queryPoolCmd(),
		queryParamsCmd(),
		queryBalanceCmd(),
		querySpotPriceCmd(),
		queryArbitrageCacheCmd(),
		queryRikiddoCmd(),
	)

	return cmd
}

// withApp opens the store for the duration of fn.
func withApp(cmd *cobra.Command, fn func(a *app.App) (any, error)) error {
	a, err := openApp(GetServerContextFromCmd(cmd))
	if err != nil {
		return err
	}
	defer a.Close()

	out, err := fn(a)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), out)
}

func parsePoolID(arg string) (uint64, error) {
	id, err := strconv.ParseUint(arg, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid pool id %q", arg)
	}
	return id, nil
}

func queryPoolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pools",
		Short: "List every pool",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(a *app.App) (any, error) {
				return a.Swaps.GetAllPools(cmd.Context())
			})
		},
	}
}

func queryPoolCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pool [pool-id]",
		Short: "Show a pool with its account balances",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			poolID, err := parsePoolID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, func(a *app.App) (any, error) {
				ctx := cmd.Context()
				pool, err := a.Swaps.GetPool(ctx, poolID)
				if err != nil {
					return nil, err
				}
				account := a.Swaps.PoolAccount(poolID)
				assets := make([]sharedtypes.Asset, 0, len(pool.Assets)+1)
				assets = append(assets, pool.Assets...)
				assets = append(assets, a.Swaps.PoolSharesID(poolID))
				balances := make(map[string]string, len(assets))
				for _, asset := range assets {
					bal, err := a.Tokens.FreeBalance(ctx, asset, account)
					if err != nil {
						return nil, err
					}
					balances[asset.String()] = bal.String()
				}
				shares, err := a.Tokens.TotalIssuance(ctx, a.Swaps.PoolSharesID(poolID))
				if err != nil {
					return nil, err
				}
				return struct {
					Pool        swapstypes.Pool   `json:"pool"`
					Account     string            `json:"account"`
					Balances    map[string]string `json:"balances"`
					TotalShares string            `json:"total_shares"`
				}{pool, account.String(), balances, shares.String()}, nil
			})
		},
	}
}

func queryParamsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "params",
		Short: "Show the swaps parameters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(a *app.App) (any, error) {
				return a.Swaps.GetParams(cmd.Context())
			})
		},
	}
}

func queryBalanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance [account] [asset]",
		Short: "Show the balance of a named account or address in an asset",
		Example: `  pmammd query balance alice base
  pmammd query balance bob cat/1/0`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			asset, err := sharedtypes.ParseAsset(args[1])
			if err != nil {
				return err
			}
			return withApp(cmd, func(a *app.App) (any, error) {
				who := a.ResolveAccount(args[0])
				bal, err := a.Tokens.FreeBalance(cmd.Context(), asset, who)
				if err != nil {
					return nil, err
				}
				return map[string]string{
					"address": who.String(),
					"asset":   asset.String(),
					"amount":  bal.String(),
				}, nil
			})
		},
	}
}

func querySpotPriceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spot-price [pool-id] [asset-in] [asset-out]",
		Short: "Show the price of asset-out in units of asset-in",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			poolID, err := parsePoolID(args[0])
			if err != nil {
				return err
			}
			assetIn, err := sharedtypes.ParseAsset(args[1])
			if err != nil {
				return err
			}
			assetOut, err := sharedtypes.ParseAsset(args[2])
			if err != nil {
				return err
			}
			withFees, _ := cmd.Flags().GetBool(flagWithFees)
			return withApp(cmd, func(a *app.App) (any, error) {
				price, err := a.Swaps.GetSpotPrice(cmd.Context(), poolID, assetIn, assetOut, withFees)
				if err != nil {
					return nil, err
				}
				return map[string]string{"spot_price": price.String()}, nil
			})
		},
	}
	cmd.Flags().Bool(flagWithFees, false, "include the pool's swap fee")
	return cmd
}

func queryArbitrageCacheCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "arbitrage-cache",
		Short: "List the pools touched since the cache was last cleared",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(a *app.App) (any, error) {
				return a.Swaps.PoolsCachedForArbitrage(cmd.Context())
			})
		},
	}
}

func queryRikiddoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rikiddo [pool-id]",
		Short: "Show the market maker of a Rikiddo pool and its current fee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			poolID, err := parsePoolID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, func(a *app.App) (any, error) {
				r, err := a.Rikiddo.GetRikiddo(cmd.Context(), poolID)
				if err != nil {
					return nil, err
				}
				fee, err := r.Fee(a.Precision())
				if err != nil {
					return nil, err
				}
				return map[string]any{"rikiddo": r, "fee": fee.String()}, nil
			})
		},
	}
}
