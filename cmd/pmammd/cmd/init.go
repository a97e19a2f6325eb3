package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/paw-chain/pmamm/app"
)

// InitCmd returns a command that writes the configuration and default genesis files.
func InitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration and genesis files",
		Long: `Write config/app.toml and config/genesis.json under the home directory.

Example:
  pmammd init --home ~/.pmamm --decimals 10
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sc := GetServerContextFromCmd(cmd)
			overwrite, _ := cmd.Flags().GetBool(flagOverwrite)

			cfgFile := filepath.Join(configDir(sc.Home), configFileName+".toml")
			genFile := genesisFile(sc.Home)
			if !overwrite {
				for _, f := range []string{cfgFile, genFile} {
					if fileExists(f) {
						return fmt.Errorf("%s already exists, pass --%s to replace it", f, flagOverwrite)
					}
				}
			}

			if err := os.MkdirAll(configDir(sc.Home), 0o750); err != nil {
				return fmt.Errorf("failed to create config directory: %w", err)
			}
			if err := os.MkdirAll(filepath.Join(sc.Home, "data"), 0o750); err != nil {
				return fmt.Errorf("failed to create data directory: %w", err)
			}

			sc.Viper.Set("authority", sc.Config.Authority)
			if err := sc.Viper.WriteConfigAs(cfgFile); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}

			genesis, err := json.MarshalIndent(app.NewDefaultGenesisState(sc.Config.Precision()), "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal default genesis state: %w", err)
			}
			if err := os.WriteFile(genFile, genesis, 0o644); err != nil {
				return fmt.Errorf("failed to save genesis file: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Successfully initialized %s\n", sc.Home)
			fmt.Fprintf(cmd.OutOrStdout(), "Config: %s\n", cfgFile)
			fmt.Fprintf(cmd.OutOrStdout(), "Genesis: %s\n", genFile)
			fmt.Fprintf(cmd.OutOrStdout(), "Authority: %s\n", sc.Config.Authority)
			return nil
		},
	}

	cmd.Flags().Bool(flagOverwrite, false, "overwrite existing config and genesis files")

	return cmd
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// readGenesisFile loads the genesis written by init. A missing file yields the defaults.
func readGenesisFile(sc *ServerContext) (app.GenesisState, error) {
	bz, err := os.ReadFile(genesisFile(sc.Home))
	if os.IsNotExist(err) {
		return app.NewDefaultGenesisState(sc.Config.Precision()), nil
	}
	if err != nil {
		return nil, err
	}
	var gs app.GenesisState
	if err := json.Unmarshal(bz, &gs); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", genesisFile(sc.Home), err)
	}
	return gs, nil
}
