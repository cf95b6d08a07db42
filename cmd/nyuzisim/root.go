package main

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "nyuzisim",
	Short: "nyuzisim simulates the load-miss queue of a multi-threaded core.",
	Long: `nyuzisim simulates the per-core load-miss queue that sits between a ` +
		`first-level data cache and a shared second-level cache. The run command ` +
		`drives randomized miss traffic through the queue and verifies that every ` +
		`stalled strand is woken exactly once.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
