package tabular

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/tcm/internal/domain"
)

func TestExportFileName(t *testing.T) {
	ts := time.Date(2024, 3, 7, 15, 4, 5, 0, time.UTC)
	assert.Equal(t, "testcases_export_2024-03-07.csv", ExportFileName(ts))
}

func TestWriteExport(t *testing.T) {
	cases := []domain.TestCase{
		{
			TestCaseInput: domain.TestCaseInput{
				TestcaseID:          "TC1",
				TestCaseDescription: `Check "quoted" text`,
				TestScript:          "step 1\nstep 2",
				ExpectedResult:      "ok, done",
			},
			ModuleName:           "Login",
			SubModuleName:        "Auth",
			PriorityName:         "High",
			AutomationStatusName: "Automated",
			TagNames:             []string{"Smoke", "Regression"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteExport(&buf, cases))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, `"Testcase ID","Module","Sub Module/Functionality"`))
	assert.Contains(t, out, `"Check ""quoted"" text"`)
	assert.Contains(t, out, `"Smoke, Regression"`)

	rows := ParseCSV(out)
	require.Len(t, rows, 2)
	assert.Equal(t, domain.Columns, rows[0])
	assert.Equal(t, ExportRow(cases[0]), rows[1])
	assert.Len(t, rows[1], domain.ColumnCount)
}

func TestWriteTemplate(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTemplate(&buf))

	rows, err := Parse(TemplateFileName, buf.Bytes(), true)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "TC001", rows[0][0])
	assert.Equal(t, "Login Module", rows[0][1])
	assert.Equal(t, "", rows[0][11])
	assert.Equal(t, "Smoke, Regression", rows[0][12])
	assert.Contains(t, rows[0][5], "\n")
}
