package upload

import (
	"fmt"
	"io"
)

// Stage identifies one step of the upload workflow for status reporting.
type Stage string

// The workflow stages, in execution order.
const (
	StageRead        Stage = "read source"
	StageCredentials Stage = "fetch credentials"
	StageStage       Stage = "stage object"
	StageStart       Stage = "start processing"
	StageAwait       Stage = "await processing"
)

// StageReporter receives the per-stage status transitions of a run.
// Implementations render them for the user; the workflow itself never
// writes to stdout.
type StageReporter interface {
	// StageStarted is called when a stage begins
	StageStarted(stage Stage)

	// StageSucceeded is called when a stage completes
	StageSucceeded(stage Stage)

	// StageFailed is called when a stage aborts the run
	StageFailed(stage Stage, err error)
}

// NopReporter discards all stage notifications.
type NopReporter struct{}

// StageStarted implements StageReporter.
func (NopReporter) StageStarted(Stage) {}

// StageSucceeded implements StageReporter.
func (NopReporter) StageSucceeded(Stage) {}

// StageFailed implements StageReporter.
func (NopReporter) StageFailed(Stage, error) {}

// WriterReporter prints one status line per stage transition.
type WriterReporter struct {
	// W receives the status lines
	W io.Writer
}

// StageStarted implements StageReporter.
func (r *WriterReporter) StageStarted(stage Stage) {
	fmt.Fprintf(r.W, "%s: started\n", stage)
}

// StageSucceeded implements StageReporter.
func (r *WriterReporter) StageSucceeded(stage Stage) {
	fmt.Fprintf(r.W, "%s: done\n", stage)
}

// StageFailed implements StageReporter.
func (r *WriterReporter) StageFailed(stage Stage, err error) {
	fmt.Fprintf(r.W, "%s: failed: %v\n", stage, err)
}
