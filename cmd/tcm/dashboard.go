package main

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/tcm/internal/core"
)

func newDashboardCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Print test-case statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := checkOutput(output)
			if err != nil {
				return err
			}
			d, err := a.client.Dashboard(cmd.Context())
			if err != nil {
				return err
			}
			if format != outputTable {
				return render(cmd.OutOrStdout(), format, d, nil)
			}
			printDashboard(cmd.OutOrStdout(), d)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "output format: table, json or yaml")
	return cmd
}

func printDashboard(w io.Writer, d core.Dashboard) {
	fmt.Fprintf(w, "Test cases:      %d\n", d.TotalTestCases)
	fmt.Fprintf(w, "Modules:         %d\n", d.TotalModules)
	fmt.Fprintf(w, "Sub-modules:     %d\n", d.TotalSubModules)
	fmt.Fprintf(w, "Automation rate: %s (%d automated)\n", d.AutomationRateLabel(), d.AutomatedCount)

	printCounts(w, "By automation status", "STATUS", d.ByStatus)
	printCounts(w, "By priority", "PRIORITY", d.ByPriority)
	printBreakdown(w, "Sub-module by automation status", d.SubModuleByStatus)
	printBreakdown(w, "Sub-module by priority", d.SubModuleByPriority)
}

func printCounts(w io.Writer, title, column string, counts []core.Count) {
	if len(counts) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\n", title)
	render(w, outputTable, nil, func(t *tablewriter.Table) {
		t.SetHeader([]string{column, "COUNT"})
		for _, c := range counts {
			t.Append([]string{c.Name, itoa(c.Count)})
		}
	})
}

func printBreakdown(w io.Writer, title string, rows []core.Breakdown) {
	if len(rows) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\n", title)
	render(w, outputTable, nil, func(t *tablewriter.Table) {
		header := []string{"SUB-MODULE"}
		for _, c := range rows[0].Counts {
			header = append(header, c.Name)
		}
		t.SetHeader(header)
		for _, row := range rows {
			line := []string{row.SubModule}
			for _, c := range row.Counts {
				line = append(line, itoa(c.Count))
			}
			t.Append(line)
		}
	})
}
