package main

import (
	"os"

	"github.com/paw-chain/pmamm/cmd/pmammd/cmd"
)

func main() {
	rootCmd := cmd.NewRootCmd()

	if err := cmd.Execute(rootCmd); err != nil {
		os.Exit(1)
	}
}
