package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "flowtrace",
	Short: "Flow graph capture toolchain",
	Long:  `Flowtrace instruments Go sources to trace execution and turns recorded traces into object flow graphs.`,
}

func main() {
	rootCmd.Version = version

	rootCmd.AddCommand(rewriteCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
