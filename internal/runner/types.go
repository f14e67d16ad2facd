package runner

import (
	"time"

	"github.com/cybertec-postgresql/orasplit/internal/discovery"
	"github.com/cybertec-postgresql/orasplit/internal/lint"
	"github.com/cybertec-postgresql/orasplit/internal/parser"
)

// FileRun represents the processing of a single script file
type FileRun struct {
	File      *discovery.DiscoveredFile
	Script    *parser.Script
	Lint      []lint.Diagnostic
	StartTime time.Time
	EndTime   time.Time
	Status    RunStatus
	Error     error // Non-nil if the file could not be processed
}

// RunStatus represents the current state of a file run
type RunStatus int

const (
	RunPending RunStatus = iota
	RunDone
	RunFailed
	RunCancelled
)

// String returns a string representation of RunStatus
func (rs RunStatus) String() string {
	switch rs {
	case RunPending:
		return "pending"
	case RunDone:
		return "done"
	case RunFailed:
		return "failed"
	case RunCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Duration returns the processing duration
func (fr *FileRun) Duration() time.Duration {
	if fr.EndTime.IsZero() {
		return time.Since(fr.StartTime)
	}
	return fr.EndTime.Sub(fr.StartTime)
}

// HasErrors reports whether the run failed or produced an error-severity
// parser or lint diagnostic
func (fr *FileRun) HasErrors() bool {
	if fr.Status != RunDone {
		return true
	}
	if fr.Script != nil && fr.Script.HasErrors() {
		return true
	}
	for _, d := range fr.Lint {
		if d.Severity == lint.SeverityError {
			return true
		}
	}
	return false
}

// Summary summarizes all file runs
type Summary struct {
	TotalFiles    int
	FailedFiles   int
	Statements    int
	DynamicSQL    int
	Errors        int // error-severity diagnostics, parser and lint
	Warnings      int
	TotalDuration time.Duration
}

// Clean returns true if every file was processed without errors
func (s *Summary) Clean() bool {
	return s.FailedFiles == 0 && s.Errors == 0
}

// ExitCode returns the appropriate exit code based on the runs
func (s *Summary) ExitCode() int {
	if s.Clean() {
		return 0
	}
	return 1
}
