// Package history persists workflow run records so past runs can be
// inspected after the fact. A Recorder observes runner events and writes
// them through a Store; memory and SQLite backends are provided.
package history

import (
	"errors"
	"time"
)

// ErrRunNotFound is returned when a run ID does not exist in the store.
var ErrRunNotFound = errors.New("run not found")

// Status of a recorded run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Record is the persisted summary of one workflow run.
type Record struct {
	RunID      string
	Workflow   string
	Status     Status
	Steps      int
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}

// StepRecord is one persisted step of a run. Step numbers start at 1 and
// are unique within a run.
type StepRecord struct {
	RunID    string
	Step     int
	Agent    string
	Outcome  string
	Retries  int
	Duration time.Duration
}

// Filter narrows ListRuns results. Zero-valued fields match everything.
type Filter struct {
	Workflow string
	Status   Status
	Limit    int
}

// Store persists run records and their steps. Implementations must be
// safe for concurrent use.
type Store interface {
	// CreateRun inserts a new run record.
	CreateRun(rec *Record) error

	// UpdateRun updates the mutable fields of an existing run: status,
	// steps, error and finished time. It returns ErrRunNotFound when the
	// run ID is unknown.
	UpdateRun(rec *Record) error

	// GetRun returns the run with the given ID, or ErrRunNotFound.
	GetRun(runID string) (*Record, error)

	// ListRuns returns runs matching the filter, most recent first.
	ListRuns(f Filter) ([]*Record, error)

	// AppendStep adds one step to a run's step log.
	AppendStep(step *StepRecord) error

	// ListSteps returns a run's steps in step order.
	ListSteps(runID string) ([]*StepRecord, error)

	// Close releases any resources held by the store.
	Close() error
}
