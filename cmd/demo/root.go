package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run and inspect tickfsm machines",
	Long: `demo drives a tickfsm machine from a fixed-rate tick loop.

Without --file it runs a built-in traffic light with a fault interrupt region.
Runtime settings come from --config (YAML), TICKFSM_* variables and .env.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Runtime config file (YAML)")
	rootCmd.PersistentFlags().StringP("file", "f", "", "Machine document (YAML); defaults to the traffic light")
}
