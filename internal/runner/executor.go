package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/cybertec-postgresql/orasplit/internal/discovery"
	"github.com/cybertec-postgresql/orasplit/internal/lint"
	"github.com/cybertec-postgresql/orasplit/internal/logger"
	"github.com/cybertec-postgresql/orasplit/internal/parser"
)

// Executor parses one script file and optionally lints it
type Executor struct {
	analyzer *lint.Analyzer // nil disables linting
	opts     []parser.Option
	verbose  bool
}

// NewExecutor creates a new executor. A nil analyzer skips linting.
func NewExecutor(analyzer *lint.Analyzer, verbose bool, opts ...parser.Option) *Executor {
	return &Executor{
		analyzer: analyzer,
		opts:     opts,
		verbose:  verbose,
	}
}

// Execute processes a single file. The returned run carries any failure;
// the error result is reserved for a cancelled context.
func (e *Executor) Execute(ctx context.Context, file *discovery.DiscoveredFile) (*FileRun, error) {
	run := &FileRun{
		File:      file,
		StartTime: time.Now(),
		Status:    RunPending,
	}
	defer func() { run.EndTime = time.Now() }()

	if err := ctx.Err(); err != nil {
		run.Status = RunCancelled
		run.Error = err
		return run, err
	}

	script, err := parser.Parse(file, e.opts...)
	if err != nil {
		run.Status = RunFailed
		run.Error = fmt.Errorf("%s: %w", file.Path, err)
		if e.verbose {
			logger.Error("%v", run.Error)
		}
		return run, nil
	}
	run.Script = script
	if e.analyzer != nil {
		run.Lint = e.analyzer.Analyze(script)
	}
	run.Status = RunDone

	if e.verbose {
		logger.Debug("%s: %d statements, %d diagnostics", file.Path, len(script.Statements), len(script.Diagnostics)+len(run.Lint))
	}
	return run, nil
}

// ExecuteBatch processes multiple files sequentially
func (e *Executor) ExecuteBatch(ctx context.Context, files []discovery.DiscoveredFile) ([]*FileRun, error) {
	runs := make([]*FileRun, 0, len(files))

	for i := range files {
		run, err := e.Execute(ctx, &files[i])
		runs = append(runs, run)
		if err != nil {
			return runs, err
		}
	}

	return runs, nil
}

// SummarizeRuns creates a summary of file processing results
func SummarizeRuns(runs []*FileRun) *Summary {
	summary := &Summary{
		TotalFiles: len(runs),
	}

	for _, run := range runs {
		summary.TotalDuration += run.Duration()

		if run.Status != RunDone {
			summary.FailedFiles++
			continue
		}

		for _, stmt := range run.Script.Statements {
			if !stmt.IsEmpty() {
				summary.Statements++
			}
			summary.DynamicSQL += len(stmt.Clauses)
		}
		for _, d := range run.Script.Diagnostics {
			countSeverity(summary, d.Severity)
		}
		for _, d := range run.Lint {
			countSeverity(summary, d.Severity)
		}
	}

	return summary
}

func countSeverity(s *Summary, sev parser.Severity) {
	switch sev {
	case parser.SeverityError:
		s.Errors++
	case parser.SeverityWarning:
		s.Warnings++
	}
}
