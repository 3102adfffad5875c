// Package tabular turns uploaded files into rows of cell strings and writes
// the CSV export format back out.
//
// Two input formats are understood, chosen by file extension:
//
//   - CSV text, parsed by a small quote-aware state machine whose rules are
//     fixed for compatibility with files exported by earlier versions
//   - Spreadsheet workbooks (.xlsx/.xlsm/.xls), decoded with excelize; only
//     the first sheet is read
//
// Both paths drop rows whose cells are all blank and then optionally
// discard the first remaining row as a header.
package tabular

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies how a file's bytes are decoded.
type Format int

const (
	FormatCSV Format = iota
	FormatSpreadsheet
)

func (f Format) String() string {
	switch f {
	case FormatCSV:
		return "CSV"
	case FormatSpreadsheet:
		return "Excel"
	default:
		return "unknown"
	}
}

// ErrUnsupportedFormat is returned for file names without a known extension.
var ErrUnsupportedFormat = errors.New("Unsupported file format. Please use CSV or Excel files.")

// DecodeError reports that a file could not be decoded at all.
type DecodeError struct {
	Format Format
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("Failed to parse %s file: %v", e.Format, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// DetectFormat picks a Format from the file name's extension.
func DetectFormat(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx", ".xlsm", ".xls":
		return FormatSpreadsheet, nil
	default:
		return 0, ErrUnsupportedFormat
	}
}

// Parse decodes data according to the extension of name. Blank rows are
// dropped and, when skipHeader is set, the first remaining row is removed.
// A decode failure returns no rows.
func Parse(name string, data []byte, skipHeader bool) ([][]string, error) {
	format, err := DetectFormat(name)
	if err != nil {
		return nil, err
	}

	var rows [][]string
	switch format {
	case FormatCSV:
		rows = ParseCSV(decodeText(data))
	case FormatSpreadsheet:
		rows, err = ParseSpreadsheet(data)
		if err != nil {
			return nil, err
		}
	}

	rows = dropBlankRows(rows)
	if skipHeader && len(rows) > 0 {
		rows = rows[1:]
	}
	return rows, nil
}

// ParseCSV splits CSV text into trimmed cells.
//
// Quote state toggles on every unescaped '"'; a doubled quote inside a
// quoted section is a literal quote. Outside quotes, ',' ends a cell and
// "\n" or "\r\n" ends a row; a lone '\r' is ordinary text. Rows with no
// non-empty cell are not emitted.
func ParseCSV(text string) [][]string {
	var (
		rows     [][]string
		row      []string
		cell     strings.Builder
		inQuotes bool
	)

	endRow := func() {
		if cell.Len() == 0 && len(row) == 0 {
			return
		}
		row = append(row, strings.TrimSpace(cell.String()))
		if !isBlankRow(row) {
			rows = append(rows, row)
		}
		row = nil
		cell.Reset()
	}

	for i := 0; i < len(text); {
		c := text[i]
		var next byte
		if i+1 < len(text) {
			next = text[i+1]
		}

		switch {
		case c == '"':
			if inQuotes && next == '"' {
				cell.WriteByte('"')
				i += 2
				continue
			}
			inQuotes = !inQuotes
			i++
			continue

		case !inQuotes && c == ',':
			row = append(row, strings.TrimSpace(cell.String()))
			cell.Reset()
			i++
			continue

		case !inQuotes && c == '\n':
			endRow()
			i++
			continue

		case !inQuotes && c == '\r' && next == '\n':
			endRow()
			i += 2
			continue
		}

		cell.WriteByte(c)
		i++
	}

	endRow()
	return rows
}

func dropBlankRows(rows [][]string) [][]string {
	out := rows[:0]
	for _, row := range rows {
		if !isBlankRow(row) {
			out = append(out, row)
		}
	}
	return out
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
