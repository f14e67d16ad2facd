package lint

import (
	"sort"

	"github.com/cybertec-postgresql/orasplit/internal/parser"
)

// Analyzer runs lint rules against parsed scripts.
type Analyzer struct {
	config *Config
}

// NewAnalyzer creates a new analyzer with optional configuration.
func NewAnalyzer(config *Config) *Analyzer {
	if config == nil {
		config = NewConfig()
	}
	return &Analyzer{config: config}
}

// Analyze runs all enabled rules against the script.  Results are ordered
// by source offset, then rule ID.
func (a *Analyzer) Analyze(script *parser.Script) []Diagnostic {
	if script == nil {
		return nil
	}

	spans, _ := parser.ScanSpans(script.Source)
	in := &Input{Script: script, Spans: spans}

	var diagnostics []Diagnostic
	for _, rule := range GetAll() {
		if a.config.IsDisabled(rule.ID) {
			continue
		}

		diags := rule.Check(in, a.config.GetRuleOptions(rule.ID))
		for i := range diags {
			diags[i].RuleID = rule.ID
			diags[i].Severity = a.config.GetSeverity(rule.ID, rule.Severity)
		}
		diagnostics = append(diagnostics, diags...)
	}

	sort.SliceStable(diagnostics, func(i, j int) bool {
		if diagnostics[i].Pos.Offset != diagnostics[j].Pos.Offset {
			return diagnostics[i].Pos.Offset < diagnostics[j].Pos.Offset
		}
		return diagnostics[i].RuleID < diagnostics[j].RuleID
	})
	return diagnostics
}
