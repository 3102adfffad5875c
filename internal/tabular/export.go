package tabular

import (
	"bufio"
	"io"
	"strings"
	"time"

	"github.com/JonMunkholm/tcm/internal/domain"
)

// TemplateFileName is the download name of the import template.
const TemplateFileName = "testcase_import_template.csv"

// templateSample is the example row shipped in the import template.
var templateSample = []string{
	"TC001",
	"Login Module",
	"User Authentication",
	"Verify user can login with valid credentials",
	"User account exists",
	"1. Navigate to login page\n2. Enter credentials\n3. Click login",
	"User should be logged in successfully",
	"High",
	"Not Automated",
	"John Doe",
	"Requires database setup",
	"",
	"Smoke, Regression",
}

// ExportFileName returns the dated download name for an export taken at t.
func ExportFileName(t time.Time) string {
	return "testcases_export_" + t.Format("2006-01-02") + ".csv"
}

// ExportRow lays a test case out in column order. Tags are joined with ", "
// so the row can be fed straight back into an import.
func ExportRow(tc domain.TestCase) []string {
	return []string{
		tc.TestcaseID,
		tc.ModuleName,
		tc.SubModuleName,
		tc.TestCaseDescription,
		tc.PreConditions,
		tc.TestScript,
		tc.ExpectedResult,
		tc.PriorityName,
		tc.AutomationStatusName,
		tc.AutomatedByName,
		tc.AutomationComments,
		tc.ClubbedTCID,
		strings.Join(tc.TagNames, ", "),
	}
}

// WriteExport writes the header and one row per test case. Every cell is
// quoted.
func WriteExport(w io.Writer, cases []domain.TestCase) error {
	bw := bufio.NewWriter(w)
	if err := writeQuotedRow(bw, domain.Columns); err != nil {
		return err
	}
	for _, tc := range cases {
		if err := writeQuotedRow(bw, ExportRow(tc)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteTemplate writes the import template: the header plus one sample row.
func WriteTemplate(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if err := writeQuotedRow(bw, domain.Columns); err != nil {
		return err
	}
	if err := writeQuotedRow(bw, templateSample); err != nil {
		return err
	}
	return bw.Flush()
}

// writeQuotedRow emits cells wrapped in double quotes with embedded quotes
// doubled, terminated by "\n".
func writeQuotedRow(w *bufio.Writer, cells []string) error {
	for i, cell := range cells {
		if i > 0 {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(quote(cell)); err != nil {
			return err
		}
	}
	return w.WriteByte('\n')
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
