// Package store publishes parsed scripts into a PostgreSQL catalog so
// statements, dynamic SQL and diagnostics can be queried with SQL.
package store

import (
	"context"
	"fmt"

	"github.com/cybertec-postgresql/orasplit/internal/database"
	"github.com/cybertec-postgresql/orasplit/internal/errors"
	"github.com/cybertec-postgresql/orasplit/internal/lint"
	"github.com/cybertec-postgresql/orasplit/internal/parser"
	"github.com/jackc/pgx/v5"
)

// schemaDDL creates the catalog. %[1]s is the quoted schema name.
const schemaDDL = `
CREATE SCHEMA IF NOT EXISTS %[1]s;

CREATE TABLE IF NOT EXISTS %[1]s.scripts (
	id          bigserial PRIMARY KEY,
	path        text NOT NULL UNIQUE,
	statements  int NOT NULL,
	loaded_at   timestamptz NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS %[1]s.statements (
	script_id    bigint NOT NULL REFERENCES %[1]s.scripts (id) ON DELETE CASCADE,
	idx          int NOT NULL,
	kind         text NOT NULL,
	object       text,
	start_line   int NOT NULL,
	end_line     int NOT NULL,
	unterminated boolean NOT NULL,
	body         text NOT NULL,
	PRIMARY KEY (script_id, idx)
);

CREATE TABLE IF NOT EXISTS %[1]s.dynamic_sql (
	script_id     bigint NOT NULL,
	statement_idx int NOT NULL,
	ordinal       int NOT NULL,
	sql_text      text NOT NULL,
	bulk_collect  boolean NOT NULL,
	into_targets  text[],
	using_args    jsonb,
	returning     text[],
	PRIMARY KEY (script_id, statement_idx, ordinal),
	FOREIGN KEY (script_id, statement_idx) REFERENCES %[1]s.statements (script_id, idx) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS %[1]s.diagnostics (
	script_id     bigint NOT NULL REFERENCES %[1]s.scripts (id) ON DELETE CASCADE,
	statement_idx int,
	source        text NOT NULL,
	code          text NOT NULL,
	severity      text NOT NULL,
	message       text NOT NULL,
	line          int NOT NULL,
	col           int NOT NULL
);
`

// Store writes parse results to the catalog schema
type Store struct {
	pool   *database.Pool
	schema string
}

// New creates a store writing into schema
func New(pool *database.Pool, schema string) *Store {
	return &Store{pool: pool, schema: schema}
}

func (s *Store) table(name string) string {
	return pgx.Identifier{s.schema, name}.Sanitize()
}

// EnsureSchema creates the catalog schema and tables if they are missing
func (s *Store) EnsureSchema(ctx context.Context) error {
	ddl := fmt.Sprintf(schemaDDL, pgx.Identifier{s.schema}.Sanitize())
	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return errors.NewStoreError(s.schema, "create schema", err)
	}
	return nil
}

// SaveScript replaces the catalog entry for script.Path with the given
// parse result and lint findings, in one transaction. It returns the new
// script id.
func (s *Store) SaveScript(ctx context.Context, script *parser.Script, findings []lint.Diagnostic) (int64, error) {
	var id int64
	err := s.pool.InTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "DELETE FROM "+s.table("scripts")+" WHERE path = $1", script.Path); err != nil {
			return err
		}
		err := tx.QueryRow(ctx,
			"INSERT INTO "+s.table("scripts")+" (path, statements) VALUES ($1, $2) RETURNING id",
			script.Path, len(parser.GetExecutableStatements(script.Statements)),
		).Scan(&id)
		if err != nil {
			return err
		}

		batch := &pgx.Batch{}
		s.queueStatements(batch, id, script)
		s.queueDiagnostics(batch, id, script.Diagnostics, findings)
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return 0, errors.NewStoreError(script.Path, "save", err)
	}
	return id, nil
}

func (s *Store) queueStatements(batch *pgx.Batch, id int64, script *parser.Script) {
	insertStmt := "INSERT INTO " + s.table("statements") +
		" (script_id, idx, kind, object, start_line, end_line, unterminated, body) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)"
	insertDyn := "INSERT INTO " + s.table("dynamic_sql") +
		" (script_id, statement_idx, ordinal, sql_text, bulk_collect, into_targets, using_args, returning) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)"

	for _, stmt := range script.Statements {
		if stmt.IsEmpty() {
			continue
		}
		batch.Queue(insertStmt, id, stmt.Index, stmt.Kind.String(), nullable(stmt.Object),
			stmt.StartLine, stmt.EndLine, stmt.Unterminated, stmt.Text)

		for i, c := range stmt.Clauses {
			var using any
			if c.Using != nil {
				using = c.Using
			}
			batch.Queue(insertDyn, id, stmt.Index, i, c.SQL.String(), c.BulkCollect,
				targetNames(c.Into), using, targetNames(c.Returning))
		}
	}
}

func (s *Store) queueDiagnostics(batch *pgx.Batch, id int64, diags []parser.Diagnostic, findings []lint.Diagnostic) {
	insert := "INSERT INTO " + s.table("diagnostics") +
		" (script_id, statement_idx, source, code, severity, message, line, col) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)"

	for _, d := range diags {
		batch.Queue(insert, id, statementIdx(d.Statement), "parser", string(d.Code),
			d.Severity.String(), d.Message, d.Pos.Line, d.Pos.Column)
	}
	for _, d := range findings {
		batch.Queue(insert, id, statementIdx(d.Statement), "lint", d.RuleID,
			d.Severity.String(), d.Message, d.Pos.Line, d.Pos.Column)
	}
}

// ScriptSummary is one row of the catalog overview
type ScriptSummary struct {
	Path        string
	Statements  int
	DynamicSQL  int
	Diagnostics int
}

// ListScripts returns every catalogued script ordered by path
func (s *Store) ListScripts(ctx context.Context) ([]ScriptSummary, error) {
	query := fmt.Sprintf(`SELECT s.path, s.statements,
	(SELECT count(*) FROM %[2]s d WHERE d.script_id = s.id),
	(SELECT count(*) FROM %[3]s g WHERE g.script_id = s.id)
FROM %[1]s s
ORDER BY s.path`, s.table("scripts"), s.table("dynamic_sql"), s.table("diagnostics"))

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, errors.NewStoreError(s.schema, "list scripts", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (ScriptSummary, error) {
		var sum ScriptSummary
		err := row.Scan(&sum.Path, &sum.Statements, &sum.DynamicSQL, &sum.Diagnostics)
		return sum, err
	})
	if err != nil {
		return nil, errors.NewStoreError(s.schema, "list scripts", err)
	}
	return out, nil
}

func targetNames(ts []parser.Target) []string {
	if ts == nil {
		return nil
	}
	names := make([]string, len(ts))
	for i, t := range ts {
		names[i] = t.Name
	}
	return names
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// statementIdx maps the "no statement" marker to NULL
func statementIdx(idx int) *int {
	if idx < 0 {
		return nil
	}
	return &idx
}
