package report

import (
	"github.com/cybertec-postgresql/orasplit/internal/lint"
	"github.com/cybertec-postgresql/orasplit/internal/parser"
	"github.com/cybertec-postgresql/orasplit/internal/runner"
)

// View selects which part of the results a report carries
type View string

const (
	ViewStatements View = "statements"
	ViewDynamicSQL View = "dynsql"
	ViewLint       View = "lint"
)

// Report is the formatter input: one entry per processed file
type Report struct {
	View    View         `json:"view"`
	Files   []FileReport `json:"files"`
	Summary Summary      `json:"summary"`
}

// FileReport holds the results for one script
type FileReport struct {
	Path        string              `json:"path"`
	Error       string              `json:"error,omitempty"`
	Statements  []*parser.Statement `json:"statements,omitempty"`
	DynamicSQL  []DynamicSQLEntry   `json:"dynamic_sql,omitempty"`
	Diagnostics []parser.Diagnostic `json:"diagnostics,omitempty"`
	Lint        []lint.Diagnostic   `json:"lint,omitempty"`
}

// DynamicSQLEntry locates one EXECUTE IMMEDIATE clause
type DynamicSQLEntry struct {
	Statement int                            `json:"statement"`
	Line      int                            `json:"line"`
	Clause    *parser.ExecuteImmediateClause `json:"clause"`
}

// Summary totals the report
type Summary struct {
	Files      int `json:"files"`
	Failed     int `json:"failed"`
	Statements int `json:"statements"`
	DynamicSQL int `json:"dynamic_sql"`
	Errors     int `json:"errors"`
	Warnings   int `json:"warnings"`
}

// Build turns file runs into a report for the given view
func Build(runs []*runner.FileRun, view View) *Report {
	s := runner.SummarizeRuns(runs)
	rep := &Report{
		View:  view,
		Files: make([]FileReport, 0, len(runs)),
		Summary: Summary{
			Files:      s.TotalFiles,
			Failed:     s.FailedFiles,
			Statements: s.Statements,
			DynamicSQL: s.DynamicSQL,
			Errors:     s.Errors,
			Warnings:   s.Warnings,
		},
	}

	for _, run := range runs {
		fr := FileReport{Path: run.File.Path}
		if run.Error != nil {
			fr.Error = run.Error.Error()
		}
		if run.Script == nil {
			rep.Files = append(rep.Files, fr)
			continue
		}
		if run.File.RelativePath != "" {
			fr.Path = run.File.RelativePath
		}

		fr.Diagnostics = run.Script.Diagnostics
		switch view {
		case ViewStatements:
			fr.Statements = run.Script.Statements
		case ViewDynamicSQL:
			fr.DynamicSQL = dynamicSQL(run.Script)
		case ViewLint:
			fr.Lint = run.Lint
		}
		rep.Files = append(rep.Files, fr)
	}
	return rep
}

// FilterKind keeps only the statements of the given kind in every file.
// Totals in the summary still count all statements.
func (r *Report) FilterKind(kind parser.StatementKind) {
	for i := range r.Files {
		if r.Files[i].Statements != nil {
			r.Files[i].Statements = parser.GetStatementsByKind(r.Files[i].Statements, kind)
		}
	}
}

func dynamicSQL(script *parser.Script) []DynamicSQLEntry {
	var out []DynamicSQLEntry
	for _, stmt := range script.Statements {
		for _, c := range stmt.Clauses {
			out = append(out, DynamicSQLEntry{
				Statement: stmt.Index,
				Line:      parser.PositionAt(script.Source, c.Pos).Line,
				Clause:    c,
			})
		}
	}
	return out
}
