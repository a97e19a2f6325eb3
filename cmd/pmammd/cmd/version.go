package cmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

// Version and Commit are set at build time with -ldflags.
var (
	Version = ""
	Commit  = ""
)

func getVersion() string {
	if Version != "" {
		return Version
	}
	if version := os.Getenv(envPrefix + "_VERSION"); version != "" {
		return version
	}
	return "dev"
}

// VersionCmd prints the build version.
func VersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s", getVersion(), runtime.Version())
			if Commit != "" {
				fmt.Fprintf(cmd.OutOrStdout(), " (%s)", Commit)
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}
}
