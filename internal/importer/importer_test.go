package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/tcm/internal/tabular"
)

func row(id, module string, extra ...string) []string {
	r := []string{id, module, "", "desc " + id, "", "script " + id, "expected " + id}
	return append(r, extra...)
}

func TestRunFatalErrors(t *testing.T) {
	im := New(newFakeGateway())

	res, err := im.Run(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoData)
	assert.Nil(t, res)

	res, err = im.Run(context.Background(), [][]string{{"a", "b"}, {"c"}})
	assert.ErrorIs(t, err, ErrNoValidRows)
	assert.Nil(t, res)
}

func TestRunSkipsShortRowsWithoutCountingFailures(t *testing.T) {
	gw := newFakeGateway()
	gw.seedPriority("High")

	rows := [][]string{
		row("TC1", "Login"),
		{"TC2", "Login", "only three"},
		row("TC3", "Login"),
	}

	res, err := New(gw).Run(context.Background(), rows)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, 2, res.Succeeded)
	assert.Equal(t, 0, res.Failed)
	assert.Equal(t, 1, res.SkippedShortRows)
	assert.Empty(t, res.Errors)
}

func TestResultErrorsEncodeAsArray(t *testing.T) {
	gw := newFakeGateway()
	gw.seedPriority("High")

	res, err := New(gw).Run(context.Background(), [][]string{row("TC1", "Login")})
	require.NoError(t, err)

	b, err := json.Marshal(res)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"errors":[]`)
}

func TestRunNoPriorityAvailable(t *testing.T) {
	res, err := New(newFakeGateway()).Run(context.Background(), [][]string{row("TC1", "Login")})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, RowError{
		Row:        1,
		TestcaseID: "TC1",
		Message:    "No priority available. Please create at least one priority first.",
	}, res.Errors[0])
}

func TestRunModuleWithSubModule(t *testing.T) {
	gw := newFakeGateway()
	gw.seedPriority("High")

	res, err := New(gw).Run(context.Background(), [][]string{row("TC1", "Login >> Auth")})
	require.NoError(t, err)
	require.Equal(t, 1, res.Succeeded)

	require.Len(t, gw.modules, 1)
	require.Len(t, gw.subModules, 1)
	assert.Equal(t, "Login", gw.modules[0].Name)
	assert.Equal(t, "Auth", gw.subModules[0].Name)
	assert.Equal(t, gw.modules[0].ID, gw.subModules[0].ModuleID)

	require.Len(t, gw.testCases, 1)
	tc := gw.testCases[0]
	assert.Equal(t, gw.modules[0].ID, tc.ModuleID)
	require.NotNil(t, tc.SubModuleID)
	assert.Equal(t, gw.subModules[0].ID, *tc.SubModuleID)
}

func TestRunDuplicateTestcaseIDCreatesThenUpdates(t *testing.T) {
	gw := newFakeGateway()
	gw.seedPriority("High")

	rows := [][]string{row("TC1", "Login"), row("tc1", "Login")}
	res, err := New(gw).Run(context.Background(), rows)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Succeeded)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, 1, gw.creates["testcase"])
	assert.Equal(t, 1, gw.updates)
	assert.Len(t, gw.testCases, 1)
}

func TestRunBadTagStillSucceeds(t *testing.T) {
	gw := newFakeGateway()
	gw.seedPriority("High")
	gw.reject["tag:broken"] = "Tag name too long"

	rows := [][]string{row("TC1", "Login", "", "", "", "", "", "broken, smoke")}
	res, err := New(gw).Run(context.Background(), rows)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Succeeded)
	assert.Equal(t, 1, res.AutoCreated.Tags)
	require.Len(t, gw.testCases, 1)
	assert.Len(t, gw.testCases[0].TagIDs, 1)
}

func TestRunUpsertRejection(t *testing.T) {
	gw := newFakeGateway()
	gw.seedPriority("High")
	gw.reject["testcase:tc2"] = "Invalid module ID"

	rows := [][]string{row("TC1", "Login"), row("TC2", "Login"), row("TC3", "Login")}
	res, err := New(gw).Run(context.Background(), rows)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Succeeded)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 2, res.Errors[0].Row)
	assert.Equal(t, "Create failed: Invalid module ID", res.Errors[0].Message)
}

func TestRunExportImportIsIdempotent(t *testing.T) {
	gw := newFakeGateway()
	gw.seedPriority("High")

	rows := [][]string{
		row("TC1", "Login >> Auth", "High", "Automated", "Ann", "note", "", "smoke, regression"),
		row("TC2", "Billing", "Low", "", "", "", "TC1", ""),
		row("TC3", "Billing", "", "In Progress", "Bob"),
	}
	first, err := New(gw).Run(context.Background(), rows)
	require.NoError(t, err)
	require.Equal(t, 3, first.Created)

	cases, err := gw.ListTestCases(context.Background())
	require.NoError(t, err)
	exported := make([][]string, 0, len(cases))
	for _, tc := range cases {
		exported = append(exported, tabular.ExportRow(tc))
	}
	before := gw.nextID

	second, err := New(gw).Run(context.Background(), exported)
	require.NoError(t, err)
	assert.Equal(t, 3, second.Updated)
	assert.Zero(t, second.Created)
	assert.Zero(t, second.Failed)
	assert.Zero(t, second.AutoCreated.Total())
	assert.Equal(t, before, gw.nextID)

	after, err := gw.ListTestCases(context.Background())
	require.NoError(t, err)
	assert.Equal(t, cases, after)
}

func TestRunReportsProgress(t *testing.T) {
	gw := newFakeGateway()
	gw.seedPriority("High")

	var updates []Progress
	im := New(gw, WithProgress(func(p Progress) { updates = append(updates, p) }))

	rows := [][]string{row("TC1", "Login"), row("", "Login"), row("TC3", "Login")}
	_, err := im.Run(context.Background(), rows)
	require.NoError(t, err)

	require.Len(t, updates, 3)
	assert.Equal(t, Progress{Processed: 3, Total: 3, Succeeded: 2, Failed: 1, TestcaseID: "TC3"}, updates[2])
	assert.InDelta(t, 100.0, updates[2].Percent(), 0.001)
}

func TestRunReloadsCatalogs(t *testing.T) {
	gw := newFakeGateway()
	gw.seedPriority("High")
	im := New(gw)

	_, err := im.Run(context.Background(), [][]string{row("TC1", "Login")})
	require.NoError(t, err)

	cat := im.Catalogs()
	require.NotNil(t, cat)
	assert.Len(t, cat.Modules, 1)
	require.Len(t, cat.TestCases, 1)
	assert.Equal(t, "Login", cat.TestCases[0].ModuleName)
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	gw := newFakeGateway()
	gw.seedPriority("High")

	ctx, cancel := context.WithCancel(context.Background())
	im := New(gw, WithProgress(func(p Progress) {
		if p.Processed == 1 {
			cancel()
		}
	}))

	res, err := im.Run(ctx, [][]string{row("TC1", "Login"), row("TC2", "Login")})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
	assert.Equal(t, 1, res.Succeeded)
}

func TestResultSummary(t *testing.T) {
	res := &Result{Succeeded: 3}
	assert.Equal(t, "Import complete! 3 successful, 0 failed.", res.Summary())

	res = &Result{Succeeded: 1, Failed: 2, Errors: []RowError{
		{Row: 2, TestcaseID: "TC2", Message: "boom"},
		{Row: 3, TestcaseID: "TC3", Message: "bang"},
	}}
	assert.Equal(t,
		"Import complete! 1 successful, 2 failed.\n\nErrors:\nRow 2 (TC2): boom\nRow 3 (TC3): bang",
		res.Summary())

	res = &Result{Failed: 8}
	for i := 1; i <= 8; i++ {
		res.Errors = append(res.Errors, RowError{Row: i, TestcaseID: fmt.Sprintf("TC%d", i), Message: "x"})
	}
	summary := res.Summary()
	assert.Contains(t, summary, "Row 5 (TC5): x")
	assert.NotContains(t, summary, "Row 6 (TC6)")
	assert.True(t, strings.HasSuffix(summary, "... and 3 more errors."))
}
