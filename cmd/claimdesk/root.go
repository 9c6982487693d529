package main

import (
	"github.com/spf13/cobra"
)

const defaultConfigPath = "configs/config.yaml"

// newRootCmd builds the claimdesk command tree
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "claimdesk",
		Short: "Hourly-work payment claim desk",
		Long: `claimdesk records hourly-work payment claims for the current session,
checks their supporting documents and lets a reviewer approve or reject them
from a terminal desk or over HTTP.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("config", defaultConfigPath, "path to the YAML config file")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newConsoleCmd())

	return rootCmd
}
