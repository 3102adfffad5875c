package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/JonMunkholm/tcm/internal/domain"
)

// MaxSummaryErrors caps the row errors listed in Result.Summary.
const MaxSummaryErrors = 5

var (
	ErrNoData      = errors.New("No data found in file. Please check the file format.")
	ErrNoValidRows = errors.New("No valid rows found. Each row must have at least 7 columns (Testcase ID through Expected Result).")
)

// RowError records why one row was not imported. Row is the 1-based
// position among the rows that had enough columns.
type RowError struct {
	Row        int    `json:"row"`
	TestcaseID string `json:"testcaseId"`
	Message    string `json:"message"`
}

func (e RowError) String() string {
	return fmt.Sprintf("Row %d (%s): %s", e.Row, e.TestcaseID, e.Message)
}

// Result is the outcome of one import run.
type Result struct {
	Total            int           `json:"total"`
	Succeeded        int           `json:"succeeded"`
	Failed           int           `json:"failed"`
	Created          int           `json:"created"`
	Updated          int           `json:"updated"`
	SkippedShortRows int           `json:"skippedShortRows"`
	AutoCreated      CreatedCounts `json:"autoCreated"`
	Errors           []RowError    `json:"errors"`
	Duration         time.Duration `json:"duration"`
}

// Summary is the human-readable report: counts followed by at most
// MaxSummaryErrors row errors.
func (r *Result) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Import complete! %d successful, %d failed.", r.Succeeded, r.Failed)
	if len(r.Errors) == 0 {
		return b.String()
	}

	shown := r.Errors
	if len(shown) > MaxSummaryErrors {
		shown = shown[:MaxSummaryErrors]
		b.WriteString("\n\nShowing first 5 errors:\n")
	} else {
		b.WriteString("\n\nErrors:\n")
	}
	for i, e := range shown {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(e.String())
	}
	if extra := len(r.Errors) - len(shown); extra > 0 {
		fmt.Fprintf(&b, "\n... and %d more errors.", extra)
	}
	return b.String()
}

// Progress is reported after every processed row.
type Progress struct {
	Processed  int    `json:"processed"`
	Total      int    `json:"total"`
	Succeeded  int    `json:"succeeded"`
	Failed     int    `json:"failed"`
	TestcaseID string `json:"testcaseId"`
}

// Percent returns completion in [0, 100].
func (p Progress) Percent() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Processed) / float64(p.Total) * 100
}

// ProgressFunc receives Progress updates. It runs on the import goroutine
// and must not block.
type ProgressFunc func(Progress)

// Option configures an Importer.
type Option func(*Importer)

// WithProgress installs a progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(im *Importer) { im.progress = fn }
}

// WithLogger sets the logger used for tolerated failures.
func WithLogger(l *slog.Logger) Option {
	return func(im *Importer) { im.logger = l }
}

// Importer runs import batches against a Gateway. Rows are processed
// strictly in order; an Importer is not safe for concurrent Run calls.
type Importer struct {
	gw       Gateway
	progress ProgressFunc
	logger   *slog.Logger
	catalogs *Catalogs
}

func New(gw Gateway, opts ...Option) *Importer {
	im := &Importer{gw: gw, logger: slog.Default()}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// Catalogs returns the catalogs as of the end of the last run.
func (im *Importer) Catalogs() *Catalogs {
	return im.catalogs
}

// Run imports rows. A non-nil error with a nil Result means the batch was
// rejected before any row was processed. A cancelled context stops the
// loop and returns the partial Result along with the context error.
func (im *Importer) Run(ctx context.Context, rows [][]string) (*Result, error) {
	start := time.Now()

	if len(rows) == 0 {
		return nil, ErrNoData
	}

	valid := make([][]string, 0, len(rows))
	for _, row := range rows {
		if len(row) >= domain.MinColumns {
			valid = append(valid, row)
		}
	}
	if len(valid) == 0 {
		return nil, ErrNoValidRows
	}

	cat, err := LoadCatalogs(ctx, im.gw)
	if err != nil {
		return nil, err
	}
	im.catalogs = cat

	result := &Result{
		Total:            len(valid),
		SkippedShortRows: len(rows) - len(valid),
		Errors:           []RowError{},
	}
	resolver := NewResolver(im.gw, cat, &result.AutoCreated, im.logger)
	upserter := NewUpserter(im.gw, cat)

	if result.SkippedShortRows > 0 {
		im.logger.Warn("rows skipped (insufficient columns)",
			"skipped", result.SkippedShortRows,
			"processing", len(valid),
		)
	}

	var runErr error
	for i, row := range valid {
		if err := ctx.Err(); err != nil {
			runErr = fmt.Errorf("import stopped after %d of %d rows: %w", i, len(valid), err)
			break
		}

		created, err := im.importRow(ctx, resolver, upserter, row)
		switch {
		case err != nil:
			result.Failed++
			result.Errors = append(result.Errors, RowError{
				Row:        i + 1,
				TestcaseID: strings.TrimSpace(row[0]),
				Message:    err.Error(),
			})
		case created:
			result.Succeeded++
			result.Created++
		default:
			result.Succeeded++
			result.Updated++
		}

		if im.progress != nil {
			im.progress(Progress{
				Processed:  i + 1,
				Total:      len(valid),
				Succeeded:  result.Succeeded,
				Failed:     result.Failed,
				TestcaseID: strings.TrimSpace(row[0]),
			})
		}
	}

	if runErr == nil {
		im.reload(ctx)
	}

	result.Duration = time.Since(start)
	im.logger.Info("import finished",
		"total", result.Total,
		"succeeded", result.Succeeded,
		"failed", result.Failed,
		"created", result.Created,
		"updated", result.Updated,
		"skipped_short_rows", result.SkippedShortRows,
		"duration_ms", result.Duration.Milliseconds(),
	)
	return result, runErr
}

func (im *Importer) importRow(ctx context.Context, resolver *Resolver, upserter *Upserter, row []string) (bool, error) {
	rec, err := Normalize(row)
	if err != nil {
		return false, err
	}
	refs, err := resolver.Resolve(ctx, rec)
	if err != nil {
		return false, err
	}
	return upserter.Upsert(ctx, refs.Input(rec))
}

// reload refreshes every catalog after a run. A failure keeps the run's
// catalogs and is only logged; the rows are already committed.
func (im *Importer) reload(ctx context.Context) {
	cat, err := LoadCatalogs(ctx, im.gw)
	if err != nil {
		im.logger.Warn("reload after import failed", "error", err)
		return
	}
	im.catalogs = cat
}
