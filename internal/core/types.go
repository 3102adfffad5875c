package core

import (
	"time"

	"github.com/JonMunkholm/tcm/internal/importer"
)

// ImportPhase indicates the current stage of an import job.
type ImportPhase string

const (
	PhaseStarting  ImportPhase = "starting"
	PhaseReading   ImportPhase = "reading"
	PhaseImporting ImportPhase = "importing"
	PhaseComplete  ImportPhase = "complete"
	PhaseFailed    ImportPhase = "failed"
	PhaseCancelled ImportPhase = "cancelled"
)

// Done reports whether the phase is terminal.
func (p ImportPhase) Done() bool {
	return p == PhaseComplete || p == PhaseFailed || p == PhaseCancelled
}

// ImportProgress represents the current state of an import job.
type ImportProgress struct {
	ImportID   string      `json:"importId"`
	FileName   string      `json:"fileName"`
	Phase      ImportPhase `json:"phase"`
	Total      int         `json:"total"`
	Processed  int         `json:"processed"`
	Succeeded  int         `json:"succeeded"`
	Failed     int         `json:"failed"`
	TestcaseID string      `json:"testcaseId,omitempty"`
	Error      string      `json:"error,omitempty"` // non-empty if Phase is PhaseFailed
}

// Percent returns the progress as a percentage (0-100).
func (p ImportProgress) Percent() int {
	if p.Total > 0 {
		return (p.Processed * 100) / p.Total
	}
	return 0
}

// ImportResult is the final state of an import job. Result is nil when the
// batch was rejected before any row was processed; Error then says why.
type ImportResult struct {
	ImportID string           `json:"importId"`
	FileName string           `json:"fileName"`
	Result   *importer.Result `json:"result,omitempty"`
	Summary  string           `json:"summary,omitempty"`
	Error    string           `json:"error,omitempty"`
	Duration time.Duration    `json:"duration"`
}
