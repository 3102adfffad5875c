package tabular

import (
	"bytes"
	"errors"

	"github.com/xuri/excelize/v2"
)

var errNoSheets = errors.New("workbook has no sheets")

// ParseSpreadsheet reads the first sheet of a workbook as rows of cell
// strings. Empty cells come back as "". Blank rows are left in place;
// Parse removes them.
func ParseSpreadsheet(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Format: FormatSpreadsheet, Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &DecodeError{Format: FormatSpreadsheet, Err: errNoSheets}
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &DecodeError{Format: FormatSpreadsheet, Err: err}
	}
	return rows, nil
}
