package cmd

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/paw-chain/pmamm/app"
)

// NewRootCmd creates a new root command for pmammd. It is called once in the
// main function.
func NewRootCmd() *cobra.Command {
	// Ensure SDK bech32 prefixes are configured prior to CLI usage.
	initSDKConfig()

	rootCmd := &cobra.Command{
		Use:   "pmammd",
		Short: "Prediction market AMM simulator",
		Long: `pmammd runs CPMM and Rikiddo prediction market pools against a local store.
Scenarios are JSON files listing the messages to deliver; state lives under --home.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// set the default command outputs
			cmd.SetOut(cmd.OutOrStdout())
			cmd.SetErr(cmd.ErrOrStderr())

			home, err := cmd.Flags().GetString(flagHome)
			if err != nil {
				return err
			}
			if env := os.Getenv(envPrefix + "_HOME"); env != "" && !cmd.Flags().Changed(flagHome) {
				home = env
			}

			v, cfg, err := loadConfig(cmd, home)
			if err != nil {
				return err
			}
			logger, err := newLogger(cmd, cfg)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			sc := &ServerContext{Home: home, Viper: v, Config: cfg, Logger: logger}
			cmd.SetContext(context.WithValue(ctx, serverContextKey{}, sc))
			return nil
		},
	}

	initRootCmd(rootCmd)

	return rootCmd
}

func initRootCmd(rootCmd *cobra.Command) {
	rootCmd.PersistentFlags().String(flagHome, app.DefaultNodeHome, "directory for config and data")
	rootCmd.PersistentFlags().String(flagLogLevel, "info", "log level (trace|debug|info|warn|error)")
	rootCmd.PersistentFlags().String(flagLogFormat, "plain", "log format (plain|json)")
	rootCmd.PersistentFlags().String(flagDBBackend, "goleveldb", "state backend (goleveldb|memdb)")
	rootCmd.PersistentFlags().Uint32(flagDecimals, app.DefaultDecimals, "fixed-point decimals of every amount")

	rootCmd.AddCommand(
		InitCmd(),
		ConfigCmd(),
		RunCmd(),
		ExportCmd(),
		QueryCmd(),
		VersionCmd(),
	)
}

var sdkConfigOnce sync.Once

// initSDKConfig sets the bech32 prefixes of account addresses.
func initSDKConfig() {
	sdkConfigOnce.Do(func() {
		app.SetConfig()
	})
}

// Execute runs the root command with a context cancelled on interrupt.
func Execute(rootCmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}
