package runner_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/cybertec-postgresql/orasplit/internal/discovery"
	"github.com/cybertec-postgresql/orasplit/internal/lint"
	"github.com/cybertec-postgresql/orasplit/internal/parser"
	"github.com/cybertec-postgresql/orasplit/internal/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const blockScript = `CREATE OR REPLACE PROCEDURE p%d AS
  n NUMBER;
BEGIN
  EXECUTE IMMEDIATE 'SELECT COUNT(*) FROM t' INTO n;
END;
/
SELECT 1 FROM dual ;
/
`

// writeScripts creates n scripts and returns them in discovery order
func writeScripts(t *testing.T, n int) []discovery.DiscoveredFile {
	t.Helper()
	dir := t.TempDir()
	for i := 0; i < n; i++ {
		path := filepath.Join(dir, fmt.Sprintf("script_%02d.sql", i))
		require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf(blockScript, i)), 0o644))
	}
	files, err := discovery.Discover(dir, discovery.DefaultExtensions)
	require.NoError(t, err)
	require.Len(t, files, n)
	return files
}

func TestParallelExecution_PreservesOrder(t *testing.T) {
	files := writeScripts(t, 12)

	executor := runner.NewExecutor(lint.NewAnalyzer(lint.NewConfig()), testing.Verbose())
	pool := runner.NewWorkerPool(executor, 4, testing.Verbose())

	runs, err := pool.ExecuteParallel(context.Background(), files)
	require.NoError(t, err)
	require.Len(t, runs, len(files))

	for i, run := range runs {
		require.NotNil(t, run, "run %d", i)
		assert.Equal(t, files[i].Path, run.File.Path)
		assert.Equal(t, runner.RunDone, run.Status)
		require.Len(t, run.Script.Statements, 2)
		assert.Equal(t, parser.CreateUnit, run.Script.Statements[0].Kind)
		assert.Equal(t, fmt.Sprintf("CREATE OR REPLACE PROCEDURE p%d AS", i), firstLine(run.Script.Statements[0].Text))
		assert.Len(t, run.Script.Statements[0].Clauses, 1)
		assert.NotEmpty(t, run.Lint, "space before ';' is reported")
	}

	summary := runner.SummarizeRuns(runs)
	assert.Equal(t, 12, summary.TotalFiles)
	assert.Equal(t, 24, summary.Statements)
	assert.Equal(t, 12, summary.DynamicSQL)
	assert.Equal(t, 0, summary.FailedFiles)
}

func TestParallelMatchesSequential(t *testing.T) {
	files := writeScripts(t, 6)
	executor := runner.NewExecutor(nil, false)

	seq, err := executor.ExecuteBatch(context.Background(), files)
	require.NoError(t, err)
	par, err := runner.NewWorkerPool(executor, 3, false).ExecuteParallel(context.Background(), files)
	require.NoError(t, err)

	require.Len(t, par, len(seq))
	for i := range seq {
		assert.Equal(t, seq[i].Script.Reconstruct(), par[i].Script.Reconstruct())
		assert.Nil(t, par[i].Lint, "nil analyzer skips linting")
	}
}

func TestParallelExecution_Cancelled(t *testing.T) {
	files := writeScripts(t, 5)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runs, err := runner.NewWorkerPool(runner.NewExecutor(nil, false), 2, false).ExecuteParallel(ctx, files)
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, runs, 5)
	for _, run := range runs {
		assert.Equal(t, runner.RunCancelled, run.Status)
	}

	summary := runner.SummarizeRuns(runs)
	assert.Equal(t, 5, summary.FailedFiles)
	assert.Equal(t, 1, summary.ExitCode())
}

func TestExecute_MissingFile(t *testing.T) {
	file := &discovery.DiscoveredFile{Path: filepath.Join(t.TempDir(), "gone.sql")}

	run, err := runner.NewExecutor(nil, false).Execute(context.Background(), file)
	require.NoError(t, err)
	assert.Equal(t, runner.RunFailed, run.Status)
	assert.Error(t, run.Error)
	assert.True(t, run.HasErrors())
}

func TestSummary_ExitCode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.sql")
	require.NoError(t, os.WriteFile(path, []byte("BEGIN\n  EXECUTE IMMEDIATE 'x' INTO;\nEND;\n/\n"), 0o644))
	files := []discovery.DiscoveredFile{{Path: path}}

	runs, err := runner.NewExecutor(nil, false).ExecuteBatch(context.Background(), files)
	require.NoError(t, err)

	summary := runner.SummarizeRuns(runs)
	assert.Equal(t, 1, summary.Errors, "malformed dynamic SQL is an error")
	assert.Equal(t, 1, summary.ExitCode())
	assert.True(t, runs[0].HasErrors())
}

func TestRunStatus_String(t *testing.T) {
	tests := []struct {
		status runner.RunStatus
		want   string
	}{
		{runner.RunPending, "pending"},
		{runner.RunDone, "done"},
		{runner.RunFailed, "failed"},
		{runner.RunCancelled, "cancelled"},
		{runner.RunStatus(42), "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.status.String())
	}
}

func firstLine(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return s[:i]
		}
	}
	return s
}
