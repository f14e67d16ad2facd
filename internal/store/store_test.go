package store

import (
	"context"
	"testing"

	"github.com/cybertec-postgresql/orasplit/internal/database"
	"github.com/cybertec-postgresql/orasplit/internal/errors"
	"github.com/cybertec-postgresql/orasplit/internal/lint"
	"github.com/cybertec-postgresql/orasplit/internal/parser"
	"github.com/cybertec-postgresql/orasplit/internal/testutil"
	"github.com/cybertec-postgresql/orasplit/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const loadScript = `-- setup
CREATE OR REPLACE PROCEDURE fill(p_id NUMBER) AS
  v_name VARCHAR2(30);
BEGIN
  EXECUTE IMMEDIATE 'SELECT name FROM t WHERE id = :1' INTO v_name USING p_id;
  EXECUTE IMMEDIATE 'DELETE FROM t WHERE id = :1' USING p_id RETURNING INTO v_name;
END;
/
SELECT 1 FROM dual ;
/
BEGIN
  EXECUTE IMMEDIATE v_sql USING OUT;
END;
/
`

func setupStore(t *testing.T) (*Store, *database.Pool) {
	t.Helper()
	connString, cleanup := testutil.SetupPostgresContainer(t)
	t.Cleanup(cleanup)

	ctx := context.Background()
	pool, err := database.NewPool(ctx, &types.Config{ConnectionString: connString, Parallelism: 2})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	s := New(pool, "ora catalog")
	require.NoError(t, s.EnsureSchema(ctx))
	// idempotent
	require.NoError(t, s.EnsureSchema(ctx))
	return s, pool
}

func TestSaveScript(t *testing.T) {
	s, pool := setupStore(t)
	ctx := context.Background()

	script := parser.ParseScript("deploy/fill.sql", loadScript)
	findings := lint.NewAnalyzer(lint.NewConfig()).Analyze(script)
	require.NotEmpty(t, findings)

	id, err := s.SaveScript(ctx, script, findings)
	require.NoError(t, err)
	assert.Positive(t, id)

	var kinds []string
	rows, err := pool.Query(ctx, `SELECT kind FROM "ora catalog".statements WHERE script_id = $1 ORDER BY idx`, id)
	require.NoError(t, err)
	for rows.Next() {
		var k string
		require.NoError(t, rows.Scan(&k))
		kinds = append(kinds, k)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"create_unit", "simple_statement", "anonymous_block"}, kinds)

	var into, returning []string
	var using []map[string]any
	err = pool.QueryRow(ctx, `SELECT into_targets, using_args, returning FROM "ora catalog".dynamic_sql
		WHERE script_id = $1 AND statement_idx = 0 AND ordinal = 0`, id).Scan(&into, &using, &returning)
	require.NoError(t, err)
	assert.Equal(t, []string{"v_name"}, into)
	assert.Nil(t, returning)
	require.Len(t, using, 1)
	assert.Equal(t, "IN", using[0]["mode"])

	var malformed int
	err = pool.QueryRow(ctx, `SELECT count(*) FROM "ora catalog".diagnostics
		WHERE script_id = $1 AND source = 'parser' AND code = 'MalformedDynamicSql' AND severity = 'error'`, id).Scan(&malformed)
	require.NoError(t, err)
	assert.Equal(t, 1, malformed)

	summaries, err := s.ListScripts(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, ScriptSummary{
		Path:        "deploy/fill.sql",
		Statements:  3,
		DynamicSQL:  2,
		Diagnostics: len(script.Diagnostics) + len(findings),
	}, summaries[0])
}

func TestSaveScript_ReplacesPrevious(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()

	first, err := s.SaveScript(ctx, parser.ParseScript("a.sql", loadScript), nil)
	require.NoError(t, err)
	second, err := s.SaveScript(ctx, parser.ParseScript("a.sql", "SELECT 1 FROM dual\n/\n"), nil)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	summaries, err := s.ListScripts(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, 1, summaries[0].Statements)
	assert.Zero(t, summaries[0].DynamicSQL)
}

func TestSaveScript_MissingSchema(t *testing.T) {
	_, pool := setupStore(t)

	_, err := New(pool, "nowhere").SaveScript(context.Background(), parser.ParseScript("x.sql", "SELECT 1 FROM dual\n/\n"), nil)
	var storeErr *errors.StoreError
	require.ErrorAs(t, err, &storeErr)
	require.NotNil(t, storeErr.SQLError)
	assert.Equal(t, "42P01", storeErr.SQLError.Code)
}
