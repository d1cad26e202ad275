package upload

import (
	"log/slog"
	"time"
)

// Option is a functional option for configuring the Workflow.
type Option func(*Workflow)

// WithWait makes Run poll the processing job until it reaches a terminal
// state. Default is false: the run succeeds as soon as the job is started,
// without learning its eventual outcome.
func WithWait(wait bool) Option {
	return func(w *Workflow) {
		w.wait = wait
	}
}

// WithPollInterval sets the fixed delay between status queries.
// Default is DefaultPollInterval (1 second).
func WithPollInterval(interval time.Duration) Option {
	return func(w *Workflow) {
		if interval > 0 {
			w.pollInterval = interval
		}
	}
}

// WithMaxPolls caps the number of status queries a waiting run performs.
// Default is 0: poll until the job is terminal or the context is cancelled.
func WithMaxPolls(maxPolls int) Option {
	return func(w *Workflow) {
		if maxPolls > 0 {
			w.maxPolls = maxPolls
		}
	}
}

// WithLogger configures the workflow with a structured logger.
// If logger is nil, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Workflow) {
		w.logger = logger
	}
}

// WithReporter sets the receiver for per-stage status transitions.
// Default is NopReporter.
func WithReporter(reporter StageReporter) Option {
	return func(w *Workflow) {
		if reporter != nil {
			w.reporter = reporter
		}
	}
}

// WithStoreFactory overrides how staging stores are built from credentials.
// This is primarily used for testing with mocked storage.
func WithStoreFactory(factory StoreFactory) Option {
	return func(w *Workflow) {
		if factory != nil {
			w.newStore = factory
		}
	}
}
