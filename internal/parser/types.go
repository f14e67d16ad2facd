package parser

import (
	"strings"

	"github.com/cybertec-postgresql/orasplit/internal/discovery"
)

// Script is the result of parsing one script: every statement in source
// order plus the diagnostics collected along the way.
type Script struct {
	File        *discovery.DiscoveredFile `json:"-"`
	Path        string                    `json:"path"`
	Source      string                    `json:"-"`
	Statements  []*Statement              `json:"statements"`
	Diagnostics []Diagnostic              `json:"diagnostics,omitempty"`
}

// Reconstruct re-emits the script from its statements.  The result is
// byte-for-byte identical to Source.
func (s *Script) Reconstruct() string {
	return Reconstruct(s.Statements)
}

// HasErrors reports whether any diagnostic has error severity.
func (s *Script) HasErrors() bool {
	for _, d := range s.Diagnostics {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// StatementAt returns the index of the statement whose chunk contains the
// byte offset, or -1.
func (s *Script) StatementAt(offset int) int {
	return statementAt(s.Statements, offset)
}

// DiagnosticsFor returns the diagnostics attached to statement idx.
func (s *Script) DiagnosticsFor(idx int) []Diagnostic {
	var out []Diagnostic
	for _, d := range s.Diagnostics {
		if d.Statement == idx {
			out = append(out, d)
		}
	}
	return out
}

/*
 * Statement is one executable unit of a script plus the trivia around it.
 *
 * The raw regions tile the chunk of source the statement owns:
 *
 *	Leading | Text | Trailing | Terminator | Tail
 *
 * Leading holds whitespace and comments before the body, Trailing the
 * whitespace and comments between the body and the terminator line,
 * Terminator the whole "/" line including its line break, and Tail any
 * trivia after the last terminator of the script.
 */
type Statement struct {
	Index  int           `json:"index"`
	Kind   StatementKind `json:"kind"`
	Object string        `json:"object,omitempty"` // PROCEDURE, PACKAGE BODY, ... for CreateUnit

	Leading    string `json:"-"`
	Text       string `json:"text"`
	Trailing   string `json:"-"`
	Terminator string `json:"-"`
	Tail       string `json:"-"`

	LeadingTrivia  []Span `json:"-"`
	TrailingTrivia []Span `json:"-"`

	Start     int `json:"start"` // byte offset of Text
	End       int `json:"end"`
	StartLine int `json:"start_line"` // 1-indexed line number
	EndLine   int `json:"end_line"`

	Unterminated bool                      `json:"unterminated,omitempty"`
	Clauses      []*ExecuteImmediateClause `json:"dynamic_sql,omitempty"`
}

// Raw returns the complete chunk of source owned by the statement.
func (s *Statement) Raw() string {
	return s.Leading + s.Text + s.Trailing + s.Terminator + s.Tail
}

// IsEmpty reports whether the statement has no executable text.
func (s *Statement) IsEmpty() bool {
	return s.Text == ""
}

// ChunkStart returns the byte offset where the statement's chunk begins.
func (s *Statement) ChunkStart() int {
	return s.Start - len(s.Leading)
}

// TerminatorPos returns the byte offset of the terminator line, or -1.
func (s *Statement) TerminatorPos() int {
	if s.Terminator == "" {
		return -1
	}
	return s.End + len(s.Trailing)
}

// Reconstruct concatenates the raw chunks of stmts.
func Reconstruct(stmts []*Statement) string {
	var b strings.Builder
	for _, s := range stmts {
		b.WriteString(s.Raw())
	}
	return b.String()
}

// StatementKind classifies statements
type StatementKind int

const (
	Unclassified    StatementKind = iota
	CreateUnit                    // CREATE [OR REPLACE] PROCEDURE/FUNCTION/PACKAGE/...
	AnonymousBlock                // DECLARE ... / BEGIN ...
	SimpleStatement               // anything else
)

// String returns a string representation of StatementKind
func (k StatementKind) String() string {
	switch k {
	case CreateUnit:
		return "create_unit"
	case AnonymousBlock:
		return "anonymous_block"
	case SimpleStatement:
		return "simple_statement"
	default:
		return "unclassified"
	}
}

// ParseStatementKind resolves a kind by the name String returns.  Dashes
// may stand in for underscores.
func ParseStatementKind(s string) (StatementKind, bool) {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for _, k := range []StatementKind{Unclassified, CreateUnit, AnonymousBlock, SimpleStatement} {
		if k.String() == name {
			return k, true
		}
	}
	return Unclassified, false
}

// MarshalText renders the kind by name in JSON reports.
func (k StatementKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// IsBlock reports whether the kind carries a PL/SQL body that may contain
// EXECUTE IMMEDIATE.
func (k StatementKind) IsBlock() bool {
	return k == CreateUnit || k == AnonymousBlock
}

// GetStatementAtLine returns the statement whose body contains the given line number
func GetStatementAtLine(statements []*Statement, lineNum int) *Statement {
	for _, stmt := range statements {
		if !stmt.IsEmpty() && lineNum >= stmt.StartLine && lineNum <= stmt.EndLine {
			return stmt
		}
	}
	return nil
}

// GetExecutableStatements filters out empty statements.
func GetExecutableStatements(statements []*Statement) []*Statement {
	var executable []*Statement
	for _, stmt := range statements {
		if !stmt.IsEmpty() {
			executable = append(executable, stmt)
		}
	}
	return executable
}

// GetStatementsByKind returns all statements of a given kind
func GetStatementsByKind(statements []*Statement, kind StatementKind) []*Statement {
	var filtered []*Statement
	for _, stmt := range statements {
		if stmt.Kind == kind {
			filtered = append(filtered, stmt)
		}
	}
	return filtered
}
