package parser

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/cybertec-postgresql/orasplit/internal/discovery"
)

// Option configures a parse.
type Option func(*options)

type options struct {
	dialect *Dialect
}

// WithDialect selects the keyword catalog used for classification and
// dynamic SQL parsing.  The default is Oracle().
func WithDialect(d *Dialect) Option {
	return func(o *options) {
		if d != nil {
			o.dialect = d
		}
	}
}

// Parse reads a discovered script file and parses it
func Parse(file *discovery.DiscoveredFile, opts ...Option) (*Script, error) {
	content, err := os.ReadFile(file.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	script := ParseScript(file.Path, string(content), opts...)
	script.File = file
	return script, nil
}

// ParseFile is a convenience function that parses a file path directly
func ParseFile(filePath string, opts ...Option) (*Script, error) {
	file := &discovery.DiscoveredFile{
		Path: filePath,
		Type: discovery.ClassifyPath(filePath),
	}
	return Parse(file, opts...)
}

/*
 * ParseScript runs the whole pipeline over one script:
 *
 *	text → span scanner → segmenter → classifier → EXECUTE IMMEDIATE parser
 *
 * It never fails.  Unterminated literals, comments and statements,
 * malformed dynamic SQL and unrecognised statements are all reported as
 * diagnostics keyed by statement index; the remaining statements are still
 * parsed.
 */
func ParseScript(path, src string, opts ...Option) *Script {
	o := options{dialect: Oracle()}
	for _, opt := range opts {
		opt(&o)
	}

	spans, scanDiags := ScanSpans(src)
	stmts, diags := Segment(src, spans)
	for i := range scanDiags {
		scanDiags[i].Statement = statementAt(stmts, scanDiags[i].Pos.Offset)
	}
	diags = append(scanDiags, diags...)

	lines := newLineIndex(src)
	for _, stmt := range stmts {
		diags = append(diags, analyze(src, spans, stmt, o.dialect, lines)...)
	}

	sort.SliceStable(diags, func(i, j int) bool {
		return diags[i].Pos.Offset < diags[j].Pos.Offset
	})

	return &Script{
		Path:        path,
		Source:      src,
		Statements:  stmts,
		Diagnostics: diags,
	}
}

// analyze classifies stmt and parses the dynamic SQL in its body.
func analyze(src string, spans []Span, stmt *Statement, d *Dialect, lines lineIndex) []Diagnostic {
	if stmt.IsEmpty() {
		stmt.Kind = Unclassified
		return nil
	}

	toks := significant(Lex(src, clip(spans, stmt.Start, stmt.End), d))
	kind, object, ok := Classify(toks)
	stmt.Kind, stmt.Object = kind, object

	var diags []Diagnostic
	if !ok {
		diags = append(diags, Diagnostic{
			Code:      UnknownConstruct,
			Severity:  SeverityInfo,
			Message:   fmt.Sprintf("cannot classify statement starting with %q, treating it as a simple statement", toks[0].Text),
			Statement: stmt.Index,
			Pos:       lines.position(toks[0].Pos),
		})
	}
	if !kind.IsBlock() {
		return diags
	}

	for _, run := range FindDynamicSQL(toks) {
		clause, err := ParseExecuteImmediate(run)
		if err != nil {
			pos := run[0].Pos
			var malformed *MalformedDynamicSQLError
			if errors.As(err, &malformed) {
				pos = malformed.Pos
			}
			diags = append(diags, Diagnostic{
				Code:      MalformedDynamicSQL,
				Severity:  SeverityError,
				Message:   err.Error(),
				Statement: stmt.Index,
				Pos:       lines.position(pos),
			})
			continue
		}
		stmt.Clauses = append(stmt.Clauses, clause)
	}
	return diags
}

// clip returns the parts of spans that fall inside [start, end).
func clip(spans []Span, start, end int) []Span {
	var out []Span
	for _, sp := range spans {
		if sp.End <= start || sp.Start >= end {
			continue
		}
		sp.Start, sp.End = max(sp.Start, start), min(sp.End, end)
		out = append(out, sp)
	}
	return out
}
