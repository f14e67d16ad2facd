package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/cybertec-postgresql/orasplit/internal/discovery"
	"github.com/cybertec-postgresql/orasplit/internal/errors"
	"github.com/cybertec-postgresql/orasplit/internal/lint"
	"github.com/cybertec-postgresql/orasplit/internal/logger"
	"github.com/cybertec-postgresql/orasplit/internal/parser"
	"github.com/cybertec-postgresql/orasplit/internal/report"
	"github.com/cybertec-postgresql/orasplit/internal/runner"
)

// process discovers the scripts under paths and parses them, linting when
// analyzer is not nil.
func process(ctx context.Context, config *Config, paths []string, analyzer *lint.Analyzer) ([]*runner.FileRun, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}

	files, err := discovery.DiscoverPaths(paths, config.Extensions)
	if err != nil {
		return nil, fmt.Errorf("failed to discover scripts: %w", err)
	}
	if len(files) == 0 {
		logger.Info("No script files found (%v)", config.Extensions)
		return nil, nil
	}
	logger.Debug("Found %d script file(s)", len(files))

	if config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.Timeout)
		defer cancel()
	}

	executor := runner.NewExecutor(analyzer, config.Verbose)
	if config.Parallelism > 1 {
		logger.Debug("Processing scripts in parallel (workers: %d)", config.Parallelism)
		return runner.NewWorkerPool(executor, config.Parallelism, config.Verbose).ExecuteParallel(ctx, files)
	}
	return executor.ExecuteBatch(ctx, files)
}

// runView processes paths and writes a report of the given view
func runView(ctx context.Context, config *Config, paths []string, view report.View, analyzer *lint.Analyzer,
	shape ...func(*report.Report)) (int, error) {
	startTime := time.Now()

	runs, err := process(ctx, config, paths, analyzer)
	if err != nil {
		return 1, err
	}

	rep := report.Build(runs, view)
	for _, fn := range shape {
		fn(rep)
	}
	if err := writeReport(config, rep); err != nil {
		return 1, err
	}

	logParseErrors(runs)
	logger.Debug("Processed %d file(s) in %v", len(runs), time.Since(startTime).Round(time.Millisecond))
	return runner.SummarizeRuns(runs).ExitCode(), nil
}

// logParseErrors repeats error-severity parser diagnostics on stderr as
// file:line:col lines
func logParseErrors(runs []*runner.FileRun) {
	for _, run := range runs {
		if run.Script == nil {
			continue
		}
		for _, d := range run.Script.Diagnostics {
			if d.Severity != parser.SeverityError {
				continue
			}
			logger.Error("%v", errors.NewParseError(run.Script.Path, d.Pos.Line, d.Pos.Column, string(d.Code), d.Message))
		}
	}
}

// Split segments scripts and reports their statements
func Split(ctx context.Context, config *Config, paths []string) (int, error) {
	return runView(ctx, config, paths, report.ViewStatements, nil)
}

// SplitByKind is Split restricted to statements of one kind, named as in
// the report (create_unit, anonymous_block, simple_statement, unclassified).
// An empty kind lists every statement.
func SplitByKind(ctx context.Context, config *Config, paths []string, kind string) (int, error) {
	if kind == "" {
		return Split(ctx, config, paths)
	}
	k, ok := parser.ParseStatementKind(kind)
	if !ok {
		return 2, errors.NewConfigError("kind", kind,
			"must be one of create_unit, anonymous_block, simple_statement, unclassified")
	}
	return runView(ctx, config, paths, report.ViewStatements, nil, func(rep *report.Report) {
		rep.FilterKind(k)
	})
}

// DynSQL reports the EXECUTE IMMEDIATE clauses found in scripts
func DynSQL(ctx context.Context, config *Config, paths []string) (int, error) {
	return runView(ctx, config, paths, report.ViewDynamicSQL, nil)
}

// NewAnalyzer builds the lint analyzer from the lint.rules settings
func NewAnalyzer(config *Config) (*lint.Analyzer, error) {
	lintConfig, err := lint.ConfigFromSettings(config.Lint.Rules)
	if err != nil {
		return nil, errors.NewConfigError("lint.rules", "", err.Error())
	}
	return lint.NewAnalyzer(lintConfig), nil
}

// Lint checks scripts against the lint rules. With fix, fixable findings
// are written back to the files first and the report shows what is left.
func Lint(ctx context.Context, config *Config, paths []string, fix bool) (int, error) {
	analyzer, err := NewAnalyzer(config)
	if err != nil {
		return 2, err
	}

	if fix {
		runs, err := process(ctx, config, paths, analyzer)
		if err != nil {
			return 1, err
		}
		if err := applyFixes(runs); err != nil {
			return 1, err
		}
	}

	return runView(ctx, config, paths, report.ViewLint, analyzer)
}

// applyFixes rewrites every file that has fixable lint findings
func applyFixes(runs []*runner.FileRun) error {
	for _, run := range runs {
		if run.Status != runner.RunDone || len(run.Lint) == 0 {
			continue
		}
		fixed, n := lint.ApplyFixes(run.Script.Source, run.Lint)
		if n == 0 {
			continue
		}

		info, err := os.Stat(run.File.Path)
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", run.File.Path, err)
		}
		if err := os.WriteFile(run.File.Path, []byte(fixed), info.Mode().Perm()); err != nil {
			return fmt.Errorf("failed to write %s: %w", run.File.Path, err)
		}
		logger.Info("Fixed %d issue(s) in %s", n, run.File.Path)
	}
	return nil
}
