package tabular

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseCSV(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want [][]string
	}{
		{
			name: "simple rows",
			in:   "a,b,c\n1,2,3\n",
			want: [][]string{{"a", "b", "c"}, {"1", "2", "3"}},
		},
		{
			name: "trailing row without newline",
			in:   "a,b\n1,2",
			want: [][]string{{"a", "b"}, {"1", "2"}},
		},
		{
			name: "crlf terminators",
			in:   "a,b\r\n1,2\r\n",
			want: [][]string{{"a", "b"}, {"1", "2"}},
		},
		{
			name: "lone carriage return is text",
			in:   "a\rb,c\n",
			want: [][]string{{"a\rb", "c"}},
		},
		{
			name: "quoted comma and newline",
			in:   "\"x, y\",\"line1\nline2\"\n",
			want: [][]string{{"x, y", "line1\nline2"}},
		},
		{
			name: "escaped quote",
			in:   `"say ""hi""",z` + "\n",
			want: [][]string{{`say "hi"`, "z"}},
		},
		{
			name: "cells trimmed",
			in:   "  a  ,\tb \n",
			want: [][]string{{"a", "b"}},
		},
		{
			name: "blank rows dropped",
			in:   "a,b\n\n , \n1,2\n",
			want: [][]string{{"a", "b"}, {"1", "2"}},
		},
		{
			name: "empty cells kept",
			in:   "a,,c\n",
			want: [][]string{{"a", "", "c"}},
		},
		{
			name: "empty input",
			in:   "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCSV(tt.in))
		})
	}
}

func TestParseCSVMatchesSplitForPlainText(t *testing.T) {
	lines := []string{
		"TC1,Login,Auth,desc,pre,script,result",
		"TC2,Billing,,desc two,,script two,result two",
		"TC3,Reports,Export,d,p,s,r,High,Automated,Ann,,,smoke",
	}
	text := strings.Join(lines, "\n")

	got := ParseCSV(text)
	require.Len(t, got, len(lines))
	for i, line := range lines {
		assert.Equal(t, strings.Split(line, ","), got[i])
	}
}

func TestParseCSVExportRoundTrip(t *testing.T) {
	cells := []string{`comma, inside`, "multi\nline", `quote "here"`, "plain"}

	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	require.NoError(t, writeQuotedRow(w, cells))
	require.NoError(t, w.Flush())

	got := ParseCSV(buf.String())
	require.Len(t, got, 1)
	assert.Equal(t, cells, got[0])
}

func TestParse(t *testing.T) {
	t.Run("skips header after dropping blank rows", func(t *testing.T) {
		data := []byte("\n\nTestcase ID,Module\nTC1,Login\n")
		rows, err := Parse("cases.csv", data, true)
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"TC1", "Login"}}, rows)
	})

	t.Run("keeps header when not skipping", func(t *testing.T) {
		rows, err := Parse("cases.CSV", []byte("h1,h2\nv1,v2\n"), false)
		require.NoError(t, err)
		assert.Len(t, rows, 2)
	})

	t.Run("strips byte order mark", func(t *testing.T) {
		data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("TC1,Login\n")...)
		rows, err := Parse("cases.csv", data, false)
		require.NoError(t, err)
		assert.Equal(t, "TC1", rows[0][0])
	})

	t.Run("replaces invalid utf8", func(t *testing.T) {
		rows, err := Parse("cases.csv", []byte("TC\xff1,x\n"), false)
		require.NoError(t, err)
		assert.Equal(t, "TC�1", rows[0][0])
	})

	t.Run("unsupported extension", func(t *testing.T) {
		rows, err := Parse("cases.txt", []byte("a,b"), false)
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
		assert.Nil(t, rows)
	})

	t.Run("corrupt workbook", func(t *testing.T) {
		rows, err := Parse("cases.xlsx", []byte("not a zip"), true)
		require.Error(t, err)
		var de *DecodeError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, FormatSpreadsheet, de.Format)
		assert.True(t, strings.HasPrefix(err.Error(), "Failed to parse Excel file: "))
		assert.Nil(t, rows)
	})
}

func TestParseSpreadsheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"Testcase ID", "Module", "Sub"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"TC1", "Login", "Auth"}))
	require.NoError(t, f.SetSheetRow(sheet, "A4", &[]interface{}{"TC2", "Billing"}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	rows, err := Parse("cases.xlsx", buf.Bytes(), true)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"TC1", "Login", "Auth"}, rows[0])
	assert.Equal(t, "TC2", rows[1][0])
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name    string
		want    Format
		wantErr bool
	}{
		{"a.csv", FormatCSV, false},
		{"A.XLSX", FormatSpreadsheet, false},
		{"b.xlsm", FormatSpreadsheet, false},
		{"c.xls", FormatSpreadsheet, false},
		{"d.json", 0, true},
		{"noext", 0, true},
	}
	for _, tt := range tests {
		got, err := DetectFormat(tt.name)
		if tt.wantErr {
			assert.Error(t, err, tt.name)
			continue
		}
		assert.NoError(t, err, tt.name)
		assert.Equal(t, tt.want, got, tt.name)
	}
}
