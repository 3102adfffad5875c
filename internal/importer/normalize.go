package importer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/tcm/internal/domain"
)

// DefaultExpectedResult replaces an empty Expected Result cell.
const DefaultExpectedResult = "To be defined"

// SubModuleDelimiter separates a module from a sub-module inside the Module
// cell, as in "Login >> Auth".
const SubModuleDelimiter = ">>"

// ErrTooFewColumns is returned for rows shorter than domain.MinColumns.
var ErrTooFewColumns = errors.New("Invalid row format - minimum required: Testcase ID, Module, Sub Module, Description, Pre-Conditions, Test Script, Expected Result")

// FieldError reports a required cell that was empty.
type FieldError struct {
	Field  string
	Column int // 1-based
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s is required (Column %d)", e.Field, e.Column)
}

// Record is one import row with every cell trimmed and the module cell
// split into module and sub-module names.
type Record struct {
	TestcaseID         string
	ModuleName         string
	SubModuleName      string
	Description        string
	PreConditions      string
	TestScript         string
	ExpectedResult     string
	PriorityName       string
	StatusName         string
	AutomatedByName    string
	AutomationComments string
	ClubbedTCID        string
	Tags               string
}

// TagNames splits the tags cell on commas, trimming names and dropping
// empty ones.
func (r Record) TagNames() []string {
	if r.Tags == "" {
		return nil
	}
	var names []string
	for _, name := range strings.Split(r.Tags, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// required lists the mandatory columns by 0-based index.
var required = []struct {
	index int
	field string
}{
	{0, "Testcase ID"},
	{1, "Module"},
	{3, "Test Case Description"},
	{5, "Test Script"},
}

// Normalize validates a raw row and maps it onto a Record.
func Normalize(row []string) (Record, error) {
	if len(row) < domain.MinColumns {
		return Record{}, ErrTooFewColumns
	}

	cells := make([]string, domain.ColumnCount)
	for i, v := range row {
		if i >= domain.ColumnCount {
			break
		}
		cells[i] = strings.TrimSpace(v)
	}

	for _, r := range required {
		if cells[r.index] == "" {
			return Record{}, &FieldError{Field: r.field, Column: r.index + 1}
		}
	}

	if cells[6] == "" {
		cells[6] = DefaultExpectedResult
	}

	moduleName, subModuleName := splitModule(cells[1], cells[2])

	return Record{
		TestcaseID:         cells[0],
		ModuleName:         moduleName,
		SubModuleName:      subModuleName,
		Description:        cells[3],
		PreConditions:      cells[4],
		TestScript:         cells[5],
		ExpectedResult:     cells[6],
		PriorityName:       cells[7],
		StatusName:         cells[8],
		AutomatedByName:    cells[9],
		AutomationComments: cells[10],
		ClubbedTCID:        cells[11],
		Tags:               cells[12],
	}, nil
}

// splitModule handles the "Module >> Sub" form. The text after the first
// delimiter is used only when the sub-module column is empty.
func splitModule(moduleCell, subModuleCell string) (string, string) {
	left, right, found := strings.Cut(moduleCell, SubModuleDelimiter)
	if !found {
		return moduleCell, subModuleCell
	}
	module := strings.TrimSpace(left)
	if subModuleCell != "" {
		return module, subModuleCell
	}
	return module, strings.TrimSpace(right)
}
