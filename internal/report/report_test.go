package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/cybertec-postgresql/orasplit/internal/discovery"
	"github.com/cybertec-postgresql/orasplit/internal/lint"
	"github.com/cybertec-postgresql/orasplit/internal/parser"
	"github.com/cybertec-postgresql/orasplit/internal/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const script = `CREATE OR REPLACE PROCEDURE fill(p_id NUMBER) AS
  v_name VARCHAR2(30);
BEGIN
  EXECUTE IMMEDIATE 'SELECT name FROM t WHERE id = :1' INTO v_name USING IN p_id;
  EXECUTE IMMEDIATE 'BEGIN calc(:a, :b); END;' USING OUT v_name, IN OUT p_id;
END;
/
SELECT 1 FROM dual ;
/
`

func testRuns(t *testing.T) []*runner.FileRun {
	t.Helper()
	s := parser.ParseScript("fill.sql", script)
	return []*runner.FileRun{
		{
			File:   &discovery.DiscoveredFile{Path: "/tmp/fill.sql", RelativePath: "fill.sql"},
			Script: s,
			Lint:   lint.NewAnalyzer(lint.NewConfig()).Analyze(s),
			Status: runner.RunDone,
		},
		{
			File:   &discovery.DiscoveredFile{Path: "/tmp/gone.sql"},
			Status: runner.RunFailed,
			Error:  errors.New("no such file"),
		},
	}
}

func TestBuild(t *testing.T) {
	runs := testRuns(t)

	rep := Build(runs, ViewDynamicSQL)
	require.Len(t, rep.Files, 2)
	assert.Equal(t, "fill.sql", rep.Files[0].Path)
	assert.Nil(t, rep.Files[0].Statements)
	require.Len(t, rep.Files[0].DynamicSQL, 2)
	assert.Equal(t, 4, rep.Files[0].DynamicSQL[0].Line)
	assert.Equal(t, 5, rep.Files[0].DynamicSQL[1].Line)
	assert.Equal(t, "no such file", rep.Files[1].Error)
	assert.Equal(t, "/tmp/gone.sql", rep.Files[1].Path)

	assert.Equal(t, 2, rep.Summary.Files)
	assert.Equal(t, 1, rep.Summary.Failed)
	assert.Equal(t, 2, rep.Summary.Statements)
	assert.Equal(t, 2, rep.Summary.DynamicSQL)

	rep = Build(runs, ViewStatements)
	assert.Len(t, rep.Files[0].Statements, 2)
	assert.Nil(t, rep.Files[0].DynamicSQL)

	rep = Build(runs, ViewLint)
	assert.NotEmpty(t, rep.Files[0].Lint)
}

func TestJSONReporter_Format(t *testing.T) {
	rep := Build(testRuns(t), ViewDynamicSQL)

	var buf bytes.Buffer
	require.NoError(t, NewJSONReporter().Format(rep, &buf))

	var decoded struct {
		View  string `json:"view"`
		Files []struct {
			Path       string `json:"path"`
			DynamicSQL []struct {
				Clause struct {
					Into  []struct{ Name string } `json:"into"`
					Using []struct {
						Mode string `json:"mode"`
					} `json:"using"`
				} `json:"clause"`
			} `json:"dynamic_sql"`
		} `json:"files"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, "dynsql", decoded.View)
	require.Len(t, decoded.Files[0].DynamicSQL, 2)
	first, second := decoded.Files[0].DynamicSQL[0].Clause, decoded.Files[0].DynamicSQL[1].Clause
	assert.Equal(t, "v_name", first.Into[0].Name)
	assert.Equal(t, "IN", first.Using[0].Mode)
	assert.Nil(t, second.Into, "USING OUT without INTO leaves into absent")
	assert.Equal(t, "OUT", second.Using[0].Mode)
	assert.Equal(t, "IN OUT", second.Using[1].Mode)
}

func TestJSONReporter_StatementKinds(t *testing.T) {
	out, err := NewJSONReporter().FormatString(Build(testRuns(t), ViewStatements))
	require.NoError(t, err)
	assert.Contains(t, out, `"kind": "create_unit"`)
	assert.Contains(t, out, `"object": "PROCEDURE"`)
	assert.Contains(t, out, `"kind": "simple_statement"`)
}

func TestTableReporter(t *testing.T) {
	runs := testRuns(t)
	reporter := NewTableReporter()

	out, err := reporter.FormatString(Build(runs, ViewStatements))
	require.NoError(t, err)
	assert.Contains(t, out, "create_unit")
	assert.Contains(t, out, "CREATE OR REPLACE PROCEDURE fill(p_id NUMBER) AS ...")
	assert.Contains(t, out, "error: no such file")
	assert.Contains(t, out, "2 files, 2 statements, 2 dynamic SQL")

	out, err = reporter.FormatString(Build(runs, ViewDynamicSQL))
	require.NoError(t, err)
	assert.Contains(t, out, "v_name")
	assert.Contains(t, out, "OUT v_name, IN OUT p_id")

	out, err = reporter.FormatString(Build(runs, ViewLint))
	require.NoError(t, err)
	assert.Contains(t, out, "CV06")
	assert.Contains(t, out, "(fixable)")

	_, err = reporter.FormatString(&Report{View: "bogus"})
	assert.Error(t, err)
}

func TestGetFormatter(t *testing.T) {
	f, err := GetFormatter(FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "json", f.Name())

	f, err = GetFormatter(FormatTable)
	require.NoError(t, err)
	assert.Equal(t, "table", f.Name())

	_, err = GetFormatter("lcov")
	assert.Error(t, err)

	assert.True(t, ValidFormat("json"))
	assert.False(t, ValidFormat("html"))
	assert.Equal(t, []string{"table", "json"}, SupportedFormats())
}

func TestFormatRules(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatRules(lint.GetAll(), FormatTable, &buf))
	assert.Contains(t, buf.String(), "OR01")
	assert.Contains(t, buf.String(), "multiline_newline")

	buf.Reset()
	require.NoError(t, FormatRules(lint.GetAll(), FormatJSON, &buf))
	var rules []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rules))
	require.Len(t, rules, 2)
	assert.Equal(t, "CV06", rules[0]["id"])
	assert.Equal(t, "OR01", rules[1]["id"])

	assert.Error(t, FormatRules(nil, "xml", &buf))
}
