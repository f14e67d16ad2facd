package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/cybertec-postgresql/orasplit/internal/parser"
)

// maxCell bounds free-text columns so wide statements stay readable
const maxCell = 60

// TableReporter renders reports as terminal tables
type TableReporter struct{}

// NewTableReporter creates a new table reporter
func NewTableReporter() *TableReporter {
	return &TableReporter{}
}

// Format renders the report and writes to the writer
func (r *TableReporter) Format(rep *Report, writer io.Writer) error {
	s, err := r.FormatString(rep)
	if err != nil {
		return err
	}
	_, err = io.WriteString(writer, s)
	return err
}

// FormatString returns the rendered tables followed by a summary line
func (r *TableReporter) FormatString(rep *Report) (string, error) {
	var b strings.Builder

	switch rep.View {
	case ViewStatements:
		writeTable(&b, statementsTable(rep))
		writeTable(&b, diagnosticsTable(rep, false))
	case ViewDynamicSQL:
		writeTable(&b, dynamicSQLTable(rep))
		writeTable(&b, diagnosticsTable(rep, false))
	case ViewLint:
		writeTable(&b, diagnosticsTable(rep, true))
	default:
		return "", fmt.Errorf("unknown report view: %q", rep.View)
	}

	for _, f := range rep.Files {
		if f.Error != "" {
			fmt.Fprintf(&b, "error: %s\n", f.Error)
		}
	}
	s := rep.Summary
	fmt.Fprintf(&b, "%d files, %d statements, %d dynamic SQL, %d errors, %d warnings\n",
		s.Files, s.Statements, s.DynamicSQL, s.Errors, s.Warnings)
	return b.String(), nil
}

// Name returns the name of this reporter
func (r *TableReporter) Name() string {
	return "table"
}

func newTable(header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(header)
	return t
}

// writeTable renders t unless it has no rows
func writeTable(b *strings.Builder, t table.Writer) {
	if t == nil || t.Length() == 0 {
		return
	}
	b.WriteString(t.Render())
	b.WriteString("\n")
}

func statementsTable(rep *Report) table.Writer {
	t := newTable(table.Row{"File", "#", "Kind", "Object", "Lines", "Dynamic SQL", "Text"})
	for _, f := range rep.Files {
		for _, stmt := range f.Statements {
			if stmt.IsEmpty() {
				continue
			}
			lines := fmt.Sprintf("%d-%d", stmt.StartLine, stmt.EndLine)
			if stmt.Unterminated {
				lines += "*"
			}
			t.AppendRow(table.Row{f.Path, stmt.Index, stmt.Kind, stmt.Object, lines, len(stmt.Clauses), firstLine(stmt.Text)})
		}
	}
	return t
}

func dynamicSQLTable(rep *Report) table.Writer {
	t := newTable(table.Row{"File", "Line", "SQL", "Into", "Using", "Returning"})
	for _, f := range rep.Files {
		for _, e := range f.DynamicSQL {
			c := e.Clause
			into := targets(c.Into)
			if c.BulkCollect {
				into = "BULK COLLECT " + into
			}
			t.AppendRow(table.Row{f.Path, e.Line, text.Trim(c.SQL.String(), maxCell), into, binds(c.Using), targets(c.Returning)})
		}
	}
	return t
}

// diagnosticsTable lists parser diagnostics, plus lint findings when
// withLint is set, in file order.
func diagnosticsTable(rep *Report, withLint bool) table.Writer {
	t := newTable(table.Row{"File", "Pos", "Severity", "Code", "Message"})
	for _, f := range rep.Files {
		for _, d := range f.Diagnostics {
			t.AppendRow(table.Row{f.Path, d.Pos, d.Severity, d.Code, d.Message})
		}
		if !withLint {
			continue
		}
		for _, d := range f.Lint {
			msg := d.Message
			if d.AutoFixable() {
				msg += " (fixable)"
			}
			t.AppendRow(table.Row{f.Path, d.Pos, d.Severity, d.RuleID, msg})
		}
	}
	return t
}

func targets(ts []parser.Target) string {
	names := make([]string, len(ts))
	for i, t := range ts {
		names[i] = t.Name
	}
	return strings.Join(names, ", ")
}

func binds(args []parser.BindArgument) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.Mode.String() + " " + a.Expr.Text
	}
	return strings.Join(parts, ", ")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i] + " ..."
	}
	return text.Trim(s, maxCell)
}
