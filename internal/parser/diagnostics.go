package parser

import (
	"fmt"
	"strings"
)

// Position is a location in script text.
type Position struct {
	Line   int `json:"line"`   // 1-based line number
	Column int `json:"column"` // 1-based column (bytes)
	Offset int `json:"offset"` // 0-based byte offset
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// PositionAt converts a byte offset in src to a Position.
func PositionAt(src string, offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(src) {
		offset = len(src)
	}
	line := 1 + strings.Count(src[:offset], "\n")
	col := offset + 1
	if nl := strings.LastIndexByte(src[:offset], '\n'); nl >= 0 {
		col = offset - nl
	}
	return Position{Line: line, Column: col, Offset: offset}
}

// Severity indicates the importance of a diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
	SeverityHint
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	case SeverityHint:
		return "hint"
	default:
		return "unknown"
	}
}

// MarshalText renders the severity by name in JSON reports.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ParseSeverity converts a string to a Severity value.
// Returns SeverityWarning and false if the name is not recognised.
func ParseSeverity(s string) (Severity, bool) {
	switch strings.ToLower(s) {
	case "error":
		return SeverityError, true
	case "warning":
		return SeverityWarning, true
	case "info":
		return SeverityInfo, true
	case "hint":
		return SeverityHint, true
	default:
		return SeverityWarning, false
	}
}

// DiagnosticCode names the class of a parse problem.
type DiagnosticCode string

const (
	UnterminatedLiteral   DiagnosticCode = "UnterminatedLiteral"
	UnterminatedComment   DiagnosticCode = "UnterminatedComment"
	UnterminatedStatement DiagnosticCode = "UnterminatedStatement"
	MalformedDynamicSQL   DiagnosticCode = "MalformedDynamicSql"
	UnknownConstruct      DiagnosticCode = "UnknownConstruct"
)

// Diagnostic is a recoverable problem found while parsing a script.
// None of them abort the parse; the script is always fully segmented.
type Diagnostic struct {
	Code      DiagnosticCode `json:"code"`
	Severity  Severity       `json:"severity"`
	Message   string         `json:"message"`
	Statement int            `json:"statement"` // statement index, -1 when not tied to one
	Pos       Position       `json:"pos"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Pos, d.Code, d.Message)
}
