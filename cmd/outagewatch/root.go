package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile     string
	sourcesFile string
)

// NewRootCmd creates the root command for outagewatch.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "outagewatch",
		Short: "Outage dashboard over heterogeneous public status sources",
		Long: `outagewatch polls a fixed set of third-party services — cloud platforms,
payment processors, telecom carriers — across JSON status APIs, RSS/Atom
feeds, raw HTML pages, and crowd-sourced report mirrors, normalizes every
signal into a common severity taxonomy, and serves the ranked result set.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML; defaults apply when unset)")
	cmd.PersistentFlags().StringVar(&sourcesFile, "sources", "", "source tables file (YAML; built-in tables when unset)")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewPollCmd())
	cmd.AddCommand(NewCrowdCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
