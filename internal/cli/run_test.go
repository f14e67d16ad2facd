package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/cybertec-postgresql/orasplit/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const deployScript = `CREATE OR REPLACE PACKAGE BODY api AS
  PROCEDURE run(p_sql VARCHAR2) IS
  BEGIN
    EXECUTE IMMEDIATE p_sql;
  END;
END api;
/
SELECT 1 FROM dual ; /
`

// testConfig writes reports as JSON into a temp file
func testConfig(t *testing.T) (*Config, string) {
	t.Helper()
	cfg := DefaultConfig
	cfg.Format = "json"
	cfg.Output = filepath.Join(t.TempDir(), "report.json")
	return &cfg, cfg.Output
}

func writeScript(t *testing.T, content string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "deploy.sql")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return dir, path
}

func readReport(t *testing.T, path string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var rep map[string]any
	require.NoError(t, json.Unmarshal(data, &rep))
	return rep
}

func TestSplit(t *testing.T) {
	dir, _ := writeScript(t, deployScript)
	cfg, out := testConfig(t)

	code, err := Split(context.Background(), cfg, []string{dir})
	require.NoError(t, err)
	assert.Equal(t, 0, code)

	rep := readReport(t, out)
	assert.Equal(t, "statements", rep["view"])
	files := rep["files"].([]any)
	require.Len(t, files, 1)
	stmts := files[0].(map[string]any)["statements"].([]any)
	// "SELECT 1 FROM dual ; /" is not a terminator line
	require.Len(t, stmts, 2)
	assert.Equal(t, "PACKAGE BODY", stmts[0].(map[string]any)["object"])
	assert.Equal(t, true, stmts[1].(map[string]any)["unterminated"])
}

func TestSplitByKind(t *testing.T) {
	dir, _ := writeScript(t, deployScript)
	cfg, out := testConfig(t)

	code, err := SplitByKind(context.Background(), cfg, []string{dir}, "simple-statement")
	require.NoError(t, err)
	assert.Equal(t, 0, code)

	rep := readReport(t, out)
	stmts := rep["files"].([]any)[0].(map[string]any)["statements"].([]any)
	require.Len(t, stmts, 1)
	assert.Equal(t, "simple_statement", stmts[0].(map[string]any)["kind"])
	assert.EqualValues(t, 2, rep["summary"].(map[string]any)["statements"])

	code, err = SplitByKind(context.Background(), cfg, []string{dir}, "view")
	assert.Equal(t, 2, code)
	var configErr *errors.ConfigError
	require.ErrorAs(t, err, &configErr)
	assert.Equal(t, "kind", configErr.Field)
}

func TestDynSQL(t *testing.T) {
	dir, _ := writeScript(t, deployScript)
	cfg, out := testConfig(t)
	cfg.Parallelism = 4

	code, err := DynSQL(context.Background(), cfg, []string{dir})
	require.NoError(t, err)
	assert.Equal(t, 0, code)

	rep := readReport(t, out)
	summary := rep["summary"].(map[string]any)
	assert.EqualValues(t, 1, summary["dynamic_sql"])
}

func TestDynSQL_MalformedExitCode(t *testing.T) {
	_, path := writeScript(t, "BEGIN\n  EXECUTE IMMEDIATE 'x' USING IN OUT;\nEND;\n/\n")
	cfg, _ := testConfig(t)

	code, err := DynSQL(context.Background(), cfg, []string{path})
	require.NoError(t, err)
	assert.Equal(t, 1, code)
}

func TestLint_Fix(t *testing.T) {
	_, path := writeScript(t, "SELECT 1 FROM dual ;\n/\n")
	cfg, out := testConfig(t)

	code, err := Lint(context.Background(), cfg, []string{path}, true)
	require.NoError(t, err)
	assert.Equal(t, 0, code)

	fixed, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1 FROM dual;\n/\n", string(fixed))

	rep := readReport(t, out)
	file := rep["files"].([]any)[0].(map[string]any)
	assert.Nil(t, file["lint"], "nothing left after fixing")
}

func TestLint_ReportOnly(t *testing.T) {
	_, path := writeScript(t, "SELECT 1 FROM dual ;\n/\n")
	cfg, out := testConfig(t)

	_, err := Lint(context.Background(), cfg, []string{path}, false)
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1 FROM dual ;\n/\n", string(content), "file untouched without --fix")

	file := readReport(t, out)["files"].([]any)[0].(map[string]any)
	findings := file["lint"].([]any)
	require.Len(t, findings, 1)
	assert.Equal(t, "CV06", findings[0].(map[string]any)["rule"])
}

func TestLint_DisabledRule(t *testing.T) {
	_, path := writeScript(t, "SELECT 1 FROM dual ;\n/\n")
	cfg, out := testConfig(t)
	cfg.Lint.Rules = map[string]map[string]any{"cv06": {"enabled": false}}

	_, err := Lint(context.Background(), cfg, []string{path}, false)
	require.NoError(t, err)

	file := readReport(t, out)["files"].([]any)[0].(map[string]any)
	assert.Nil(t, file["lint"])
}

func TestLint_UnknownRule(t *testing.T) {
	cfg, _ := testConfig(t)
	cfg.Lint.Rules = map[string]map[string]any{"XX99": {}}

	code, err := Lint(context.Background(), cfg, nil, false)
	assert.Equal(t, 2, code)
	var configErr *errors.ConfigError
	assert.ErrorAs(t, err, &configErr)
}

func TestRules(t *testing.T) {
	cfg, out := testConfig(t)
	require.NoError(t, Rules(cfg))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"id": "OR01"`)
}

func TestWriteReport_UnsupportedFormat(t *testing.T) {
	dir, _ := writeScript(t, deployScript)
	cfg, _ := testConfig(t)
	cfg.Format = "html"

	code, err := Split(context.Background(), cfg, []string{dir})
	assert.Error(t, err)
	assert.Equal(t, 1, code)
}
