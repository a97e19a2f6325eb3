package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/paw-chain/pmamm/app"
)

// RunCmd returns a command that delivers the messages of a scenario file in order.
func RunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [scenario.json]",
		Short: "Deliver the messages of a scenario and print each result with its events",
		Long: `Deliver the messages of a scenario file in order and print each result together
with the events it committed. Accounts are referred to by name; "authority" resolves to
the configured governance address.

When the store has no genesis yet, the scenario's genesis is loaded, or
config/genesis.json when the scenario carries none. With --serve the Prometheus and
health servers stay up after the scenario until the process is interrupted.

Step types: ` + fmt.Sprint(app.MsgTypes()) + `
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc := GetServerContextFromCmd(cmd)
			ctx := cmd.Context()

			scenario, err := app.LoadScenario(args[0])
			if err != nil {
				return err
			}

			a, err := openApp(sc)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := ensureGenesis(ctx, sc, a, scenario); err != nil {
				return err
			}

			serve, _ := cmd.Flags().GetBool(flagServe)
			if serve {
				metrics := StartPrometheusServer(sc.Config.Telemetry.MetricsPort)
				health := StartHealthCheckServer(sc.Config.Telemetry.HealthPort, NewAppChecker(a))
				sc.Logger.Info("telemetry started",
					"metrics_port", sc.Config.Telemetry.MetricsPort,
					"health_port", sc.Config.Telemetry.HealthPort,
				)
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					_ = metrics.Shutdown(shutdownCtx)
					_ = health.Shutdown(shutdownCtx)
				}()
			}

			results, runErr := a.RunScenario(ctx, scenario)
			if err := printJSON(cmd.OutOrStdout(), results); err != nil {
				return err
			}
			if runErr != nil {
				return runErr
			}
			sc.Logger.Info("scenario complete", "steps", len(results))

			if serve {
				sc.Logger.Info("serving until interrupted")
				<-ctx.Done()
			}
			return nil
		},
	}

	cmd.Flags().Bool(flagServe, false, "serve /metrics and /health until interrupted")

	return cmd
}

func ensureGenesis(ctx context.Context, sc *ServerContext, a *app.App, scenario *app.Scenario) error {
	loaded, err := a.GenesisLoaded(ctx)
	if err != nil {
		return err
	}
	if len(scenario.Genesis) > 0 {
		if loaded {
			return app.ErrInvalidGenesis.Wrap("scenario carries a genesis but the store already has one")
		}
		return nil
	}
	if loaded {
		return nil
	}
	gs, err := readGenesisFile(sc)
	if err != nil {
		return err
	}
	sc.Logger.Info("loading genesis", "home", sc.Home)
	return a.InitGenesis(ctx, gs)
}

func printJSON(w io.Writer, v any) error {
	bz, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(bz))
	return err
}
