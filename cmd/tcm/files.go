package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// downloadFunc fetches a file from the server.
type downloadFunc func(ctx context.Context) (data []byte, name string, err error)

// saveDownload writes the download to path, or to the server-suggested
// name when path is empty. "-" writes to stdout.
func saveDownload(cmd *cobra.Command, fetch downloadFunc, path string) error {
	data, name, err := fetch(cmd.Context())
	if err != nil {
		return err
	}

	if path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if path == "" {
		path = name
	}
	if path == "" {
		return fmt.Errorf("server did not suggest a file name; use --output")
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%d bytes)\n", path, len(data))
	return nil
}

func newExportCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download every test case as CSV in the import layout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return saveDownload(cmd, a.client.ExportCSV, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write (default: testcases_export_<date>.csv, - for stdout)")
	return cmd
}

func newTemplateCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Download the import template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return saveDownload(cmd, a.client.Template, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write (default: testcase_import_template.csv, - for stdout)")
	return cmd
}
