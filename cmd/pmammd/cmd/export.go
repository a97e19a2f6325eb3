package cmd

import (
	"github.com/spf13/cobra"
)

// ExportCmd returns a command that dumps the state as a genesis document.
func ExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Export state to genesis JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sc := GetServerContextFromCmd(cmd)
			a, err := openApp(sc)
			if err != nil {
				return err
			}
			defer a.Close()

			genesis, err := a.ExportGenesis(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), genesis)
		},
	}
}
