package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/outagewatch/outagewatch/internal/status"
)

// NewPollCmd creates the poll command, which runs one cycle and prints the
// ranked results.
func NewPollCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "poll",
		Short: "Run one poll cycle and print the ranked results",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			defer a.close()

			results := a.scheduler.Cycle(cmd.Context(), a.sources.Providers)
			if asJSON {
				return printJSON(cmd, results)
			}
			printResultsTable(cmd, results)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit results as JSON")
	return cmd
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printResultsTable(cmd *cobra.Command, results []status.SourceResult) {
	out := cmd.OutOrStdout()
	for _, res := range results {
		fmt.Fprintf(out, "%-9s %s\n", strings.ToUpper(string(res.Level)), res.Descriptor.Name)
		for _, detail := range res.Details {
			fmt.Fprintf(out, "          - %s\n", detail)
		}
	}
}
