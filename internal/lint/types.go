package lint

import (
	"github.com/cybertec-postgresql/orasplit/internal/parser"
)

// Severity reuses the parser's scale so lint findings and parse diagnostics
// sort and filter the same way.
type Severity = parser.Severity

const (
	SeverityError   = parser.SeverityError
	SeverityWarning = parser.SeverityWarning
	SeverityInfo    = parser.SeverityInfo
	SeverityHint    = parser.SeverityHint
)

// RuleDef is a data-driven lint rule definition.
// Rules are stateless; all context comes via the Check function parameters.
type RuleDef struct {
	ID          string   // Unique identifier, e.g. "OR01"
	Name        string   // Human-readable name, e.g. "oracle.slash_terminator"
	Group       string   // Category, e.g. "oracle", "convention"
	Description string   // Human-readable description
	Severity    Severity // Default severity
	Check       CheckFunc
	ConfigKeys  []string // Rule-specific option keys

	BadExample  string
	GoodExample string
}

// Input is what a rule inspects: the parsed script plus the span
// classification of its source.
type Input struct {
	Script *parser.Script
	Spans  []parser.Span
}

// CheckFunc analyzes one script and returns diagnostics.
// opts contains rule-specific options from configuration.
type CheckFunc func(in *Input, opts map[string]any) []Diagnostic

// Diagnostic represents a lint finding.
type Diagnostic struct {
	RuleID    string          `json:"rule"`
	Severity  Severity        `json:"severity"`
	Message   string          `json:"message"`
	Statement int             `json:"statement"`
	Pos       parser.Position `json:"pos"`
	Fixes     []Fix           `json:"fixes,omitempty"`
}

// Fix represents a suggested code fix.
type Fix struct {
	Description string     `json:"description"`
	TextEdits   []TextEdit `json:"edits"`
}

// TextEdit replaces the source bytes [Start, End) with NewText.
// Start == End is an insertion.
type TextEdit struct {
	Start   int    `json:"start"`
	End     int    `json:"end"`
	NewText string `json:"new_text"`
}

// AutoFixable reports whether the diagnostic carries at least one edit.
func (d Diagnostic) AutoFixable() bool {
	return len(d.Fixes) > 0 && len(d.Fixes[0].TextEdits) > 0
}
