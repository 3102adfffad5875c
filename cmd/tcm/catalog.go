package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/tcm/internal/domain"
)

// catalogLister fetches one dimension and renders it.
type catalogLister func(ctx context.Context, a *app, format string, cmd *cobra.Command) error

func catalogListers() map[string]catalogLister {
	return map[string]catalogLister{
		"modules": func(ctx context.Context, a *app, format string, cmd *cobra.Command) error {
			items, err := a.client.ListModules(ctx)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), format, items, func(t *tablewriter.Table) {
				t.SetHeader([]string{"ID", "NAME", "DESCRIPTION"})
				for _, m := range items {
					t.Append([]string{idString(m.ID), m.Name, m.Description})
				}
			})
		},
		"submodules": func(ctx context.Context, a *app, format string, cmd *cobra.Command) error {
			items, err := a.client.ListSubModules(ctx)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), format, items, func(t *tablewriter.Table) {
				t.SetHeader([]string{"ID", "NAME", "MODULE ID", "MODULE", "DESCRIPTION"})
				for _, sm := range items {
					t.Append([]string{idString(sm.ID), sm.Name, idString(sm.ModuleID), sm.ModuleName, sm.Description})
				}
			})
		},
		"priorities": func(ctx context.Context, a *app, format string, cmd *cobra.Command) error {
			items, err := a.client.ListPriorities(ctx)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), format, items, func(t *tablewriter.Table) {
				t.SetHeader([]string{"ID", "NAME", "LEVEL", "DESCRIPTION"})
				for _, p := range items {
					level := ""
					if p.Level != nil {
						level = itoa(*p.Level)
					}
					t.Append([]string{idString(p.ID), p.Name, level, p.Description})
				}
			})
		},
		"statuses": func(ctx context.Context, a *app, format string, cmd *cobra.Command) error {
			items, err := a.client.ListAutomationStatuses(ctx)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), format, items, func(t *tablewriter.Table) {
				t.SetHeader([]string{"ID", "NAME", "DESCRIPTION"})
				for _, s := range items {
					t.Append([]string{idString(s.ID), s.Name, s.Description})
				}
			})
		},
		"users": func(ctx context.Context, a *app, format string, cmd *cobra.Command) error {
			items, err := a.client.ListUsers(ctx)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), format, items, func(t *tablewriter.Table) {
				t.SetHeader([]string{"ID", "NAME", "EMAIL", "TEAM"})
				for _, u := range items {
					t.Append([]string{idString(u.ID), u.Name, u.Email, u.Team})
				}
			})
		},
		"tags": func(ctx context.Context, a *app, format string, cmd *cobra.Command) error {
			items, err := a.client.ListTags(ctx)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), format, items, func(t *tablewriter.Table) {
				t.SetHeader([]string{"ID", "NAME", "COLOR", "DESCRIPTION"})
				for _, tag := range items {
					t.Append([]string{idString(tag.ID), tag.Name, tag.Color, tag.Description})
				}
			})
		},
		"testcases": func(ctx context.Context, a *app, format string, cmd *cobra.Command) error {
			items, err := a.client.ListTestCases(ctx)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), format, items, func(t *tablewriter.Table) {
				t.SetHeader([]string{"ID", "TESTCASE ID", "MODULE", "SUB-MODULE", "PRIORITY", "STATUS", "AUTOMATED BY", "TAGS"})
				for _, tc := range items {
					t.Append(testCaseRow(tc))
				}
			})
		},
	}
}

func testCaseRow(tc domain.TestCase) []string {
	return []string{
		idString(tc.ID),
		tc.TestcaseID,
		tc.ModuleName,
		tc.SubModuleName,
		tc.PriorityName,
		tc.AutomationStatusName,
		tc.AutomatedByName,
		strings.Join(tc.TagNames, ", "),
	}
}

func newCatalogCmd(a *app) *cobra.Command {
	var output string
	listers := catalogListers()

	names := make([]string, 0, len(listers))
	for name := range listers {
		names = append(names, name)
	}
	sort.Strings(names)

	cmd := &cobra.Command{
		Use:       "catalog <" + strings.Join(names, "|") + ">",
		Short:     "List one reference dimension or the test cases",
		Args:      cobra.ExactArgs(1),
		ValidArgs: names,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := checkOutput(output)
			if err != nil {
				return err
			}
			list, ok := listers[strings.ToLower(args[0])]
			if !ok {
				return fmt.Errorf("unknown dimension %q (want one of: %s)", args[0], strings.Join(names, ", "))
			}
			return list(cmd.Context(), a, format, cmd)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "output format: table, json or yaml")
	return cmd
}
