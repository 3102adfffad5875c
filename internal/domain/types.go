// Package domain holds the entity types shared by the store, the import
// pipeline, the REST layer and the API client.
package domain

import "strings"

// Module is a top-level functional area test cases belong to.
type Module struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// SubModule is a functional area nested under exactly one Module.
type SubModule struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ModuleID    int64  `json:"moduleId"`
	ModuleName  string `json:"moduleName,omitempty"`
}

// Priority ranks test cases. Level is an optional ordinal.
type Priority struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Level       *int   `json:"level"`
}

// AutomationStatus tracks how far a test case is from being automated.
type AutomationStatus struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// User is the person a test case is "automated by".
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Team  string `json:"team"`
}

// Tag is a free-form label; Color is a CSS color string.
type Tag struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

// TestCaseInput carries the editable fields of a test case with every
// reference already substituted by its identifier.
type TestCaseInput struct {
	TestcaseID          string  `json:"testcaseId"`
	ModuleID            int64   `json:"moduleId"`
	SubModuleID         *int64  `json:"subModuleId"`
	TestCaseDescription string  `json:"testCaseDescription"`
	PreConditions       string  `json:"preConditions,omitempty"`
	TestScript          string  `json:"testScript"`
	ExpectedResult      string  `json:"expectedResult"`
	PriorityID          int64   `json:"priorityId"`
	AutomationStatusID  int64   `json:"automationStatusId"`
	AutomatedByID       *int64  `json:"automatedById"`
	AutomationComments  string  `json:"automationComments,omitempty"`
	ClubbedTCID         string  `json:"clubbedTcId,omitempty"`
	TagIDs              []int64 `json:"tagIds"`
}

// TestCase is a persisted test case together with the display names of
// its references.
type TestCase struct {
	ID int64 `json:"id"`
	TestCaseInput

	ModuleName           string   `json:"moduleName,omitempty"`
	SubModuleName        string   `json:"subModuleName,omitempty"`
	PriorityName         string   `json:"priorityName,omitempty"`
	AutomationStatusName string   `json:"automationStatusName,omitempty"`
	AutomatedByName      string   `json:"automatedByName,omitempty"`
	TagNames             []string `json:"tagNames,omitempty"`
}

// Columns is the fixed 13-column import/export schema, in order.
var Columns = []string{
	"Testcase ID",
	"Module",
	"Sub Module/Functionality",
	"Test Case Description",
	"Pre-Conditions/Test Data",
	"Test Script/Actions",
	"Expected Result",
	"Test Case Priority",
	"Automation Status",
	"Automated By",
	"Automation Comments",
	"Clubbed TC ID",
	"Tags",
}

// ColumnCount is len(Columns).
const ColumnCount = 13

// MinColumns is the number of leading columns (Testcase ID through
// Expected Result) a row needs to be considered for import.
const MinColumns = 7

// SameName reports whether two reference names match for reuse purposes.
func SameName(a, b string) bool {
	return strings.EqualFold(a, b)
}

// Int64Ptr returns a pointer to v.
func Int64Ptr(v int64) *int64 { return &v }
