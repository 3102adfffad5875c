package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/JonMunkholm/tcm/internal/apiclient"
	"github.com/JonMunkholm/tcm/internal/importer"
	"github.com/JonMunkholm/tcm/internal/tabular"
)

// pollInterval is how often a server-side import is polled for progress.
var pollInterval = 300 * time.Millisecond

// ErrRowsFailed makes the command exit non-zero when any row failed.
var ErrRowsFailed = errors.New("some rows were not imported")

// isTerminal reports whether w is an interactive terminal.
var isTerminal = func(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func newImportCmd(a *app) *cobra.Command {
	var (
		skipHeader bool
		serverSide bool
	)

	cmd := &cobra.Command{
		Use:   "import <file.csv|file.xlsx>",
		Short: "Import test cases from a CSV or Excel file",
		Long: `Import test cases from a CSV or Excel file.

Rows are processed in order. Modules, sub-modules, priorities, automation
statuses, users and tags named in the file are reused when they exist
(case-insensitively) and created otherwise. A test case whose Testcase ID
already exists is updated. Failed rows are listed at the end; the other
rows are still imported.

By default the pipeline runs here and talks to the server's REST API.
With --server the file is uploaded and imported by the server instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("skip-header") {
				skipHeader = a.cfg.GetBool(cfgKeySkipHeader)
			}

			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			name := filepath.Base(path)

			var run runFunc
			if serverSide {
				run = serverRun(a.client, name, data, skipHeader)
			} else {
				rows, err := tabular.Parse(name, data, skipHeader)
				if err != nil {
					return err
				}
				run = localRun(a, rows)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			var res *importer.Result
			if isTerminal(cmd.ErrOrStderr()) {
				res, err = runInteractive(ctx, cmd.ErrOrStderr(), name, run)
			} else {
				res, err = run(ctx, nil)
			}

			if res != nil {
				printResult(cmd.OutOrStdout(), res)
			}
			if err != nil {
				return err
			}
			if res.Failed > 0 {
				return fmt.Errorf("%w: %d of %d failed", ErrRowsFailed, res.Failed, res.Total)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipHeader, "skip-header", true, "treat the first row as a header (default from skip_header)")
	cmd.Flags().BoolVar(&serverSide, "server", false, "upload the file and let the server run the import")
	return cmd
}

// localRun imports rows through the REST API from this process.
func localRun(a *app, rows [][]string) runFunc {
	return func(ctx context.Context, report importer.ProgressFunc) (*importer.Result, error) {
		opts := []importer.Option{importer.WithLogger(a.logger)}
		if report != nil {
			opts = append(opts, importer.WithProgress(report))
		}
		return importer.New(a.client, opts...).Run(ctx, rows)
	}
}

// serverRun uploads the file and follows the server-side job until it
// ends. Cancelling ctx asks the server to stop the job.
func serverRun(c *apiclient.Client, name string, data []byte, skipHeader bool) runFunc {
	return func(ctx context.Context, report importer.ProgressFunc) (*importer.Result, error) {
		id, err := c.StartImport(ctx, name, data, skipHeader)
		if err != nil {
			return nil, err
		}

		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()

	poll:
		for {
			select {
			case <-ctx.Done():
				// Detached so the cancel still reaches the server.
				cancelCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				_ = c.CancelImport(cancelCtx, id)
				cancel()
				break poll
			case <-ticker.C:
			}

			p, err := c.ImportProgress(ctx, id)
			if err != nil {
				if ctx.Err() != nil {
					continue
				}
				return nil, err
			}
			if report != nil {
				report(importer.Progress{
					Processed:  p.Processed,
					Total:      p.Total,
					Succeeded:  p.Succeeded,
					Failed:     p.Failed,
					TestcaseID: p.TestcaseID,
				})
			}
			if p.Phase.Done() {
				break
			}
		}

		waitCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		res, err := c.ImportResult(waitCtx, id)
		if err != nil {
			return nil, err
		}
		if res.Error != "" {
			return res.Result, errors.New(res.Error)
		}
		return res.Result, nil
	}
}

// printResult writes the summary, the auto-created counts and every row
// error.
func printResult(w io.Writer, res *importer.Result) {
	fmt.Fprintf(w, "Import complete! %d successful, %d failed.\n", res.Succeeded, res.Failed)
	fmt.Fprintf(w, "Created %d, updated %d", res.Created, res.Updated)
	if res.SkippedShortRows > 0 {
		fmt.Fprintf(w, ", skipped %d short rows", res.SkippedShortRows)
	}
	fmt.Fprintln(w, ".")

	ac := res.AutoCreated
	if total := ac.Modules + ac.SubModules + ac.Priorities + ac.Statuses + ac.Users + ac.Tags; total > 0 {
		fmt.Fprintf(w, "Auto-created: %d modules, %d sub-modules, %d priorities, %d statuses, %d users, %d tags.\n",
			ac.Modules, ac.SubModules, ac.Priorities, ac.Statuses, ac.Users, ac.Tags)
	}

	if len(res.Errors) == 0 {
		return
	}
	fmt.Fprintln(w)
	render(w, outputTable, nil, func(t *tablewriter.Table) {
		t.SetHeader([]string{"ROW", "TESTCASE ID", "ERROR"})
		for _, e := range res.Errors {
			t.Append([]string{itoa(e.Row), e.TestcaseID, e.Message})
		}
	})
}
