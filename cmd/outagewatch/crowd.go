package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewCrowdCmd creates the crowd command, which checks one crowd group on
// demand and prints the alerts and per-entity diagnostics.
func NewCrowdCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "crowd <group>",
		Short: "Check one crowd-report group and print alerts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			defer a.close()

			group := args[0]
			entities := a.sources.CrowdGroup(group)
			if len(entities) == 0 {
				return fmt.Errorf("unknown crowd group %q (known: %s)",
					group, strings.Join(a.sources.Groups(), ", "))
			}

			run := a.aggregator.Run(cmd.Context(), group, entities)
			if asJSON {
				return printJSON(cmd, run)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "crowd run %s (%s) at %s\n", run.ID, run.Group, run.At.Format("2006-01-02 15:04:05 MST"))
			if len(run.Alerts) == 0 {
				fmt.Fprintln(out, "no entities above threshold")
			}
			for _, alert := range run.Alerts {
				fmt.Fprintf(out, "ALERT %s: %d reports (threshold %d) — %s\n",
					alert.Name, alert.ReportCount, alert.Threshold, alert.Headline)
			}
			for _, check := range run.Checks {
				mark := "ok"
				if !check.OK {
					mark = "failed: " + check.Err
				}
				fmt.Fprintf(out, "  %-20s %s\n", check.Descriptor.Name, mark)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit the run as JSON")
	return cmd
}
