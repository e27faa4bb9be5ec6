package domain

import "time"

// StageStatus is the outcome of one pipeline stage.
type StageStatus int

// Stage outcomes.
const (
	StageSkipped StageStatus = iota
	StageOK
	StageFailed
)

// String returns the short display form.
func (s StageStatus) String() string {
	switch s {
	case StageOK:
		return "ok"
	case StageFailed:
		return "failed"
	default:
		return "skipped"
	}
}

// RunReport summarises one pipeline execution for the CLI.
type RunReport struct {
	RunID      string
	StartedAt  time.Time
	Duration   time.Duration
	Stages     map[string]StageStatus
	Artifacts  []string
	ReportPath string
	Warnings   []string

	Summary LoadSummary
	Stats   PreprocessStats
}
