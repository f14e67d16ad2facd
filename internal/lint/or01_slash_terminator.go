package lint

import (
	"github.com/cybertec-postgresql/orasplit/internal/parser"
)

func init() {
	Register(SlashTerminator)
}

// SlashTerminator flags a "/" that ends a code line after a ";".  SQL*Plus
// only runs the buffer when the slash stands on its own line, so
// "SELECT 1 FROM dual; /" silently merges with the next statement.
var SlashTerminator = RuleDef{
	ID:          "OR01",
	Name:        "oracle.slash_terminator",
	Group:       "oracle",
	Description: "Slash terminator should be on a new line.",
	Severity:    SeverityWarning,
	Check:       checkSlashTerminator,
	BadExample:  "SELECT 1 FROM dual; /",
	GoodExample: "SELECT 1 FROM dual;\n/",
}

func checkSlashTerminator(in *Input, _ map[string]any) []Diagnostic {
	src := in.Script.Source
	var diagnostics []Diagnostic

	for _, sp := range in.Spans {
		if sp.Kind != parser.Code {
			continue
		}
		for i := sp.Start; i < sp.End; i++ {
			if src[i] != '/' || !restOfLineIsTrivia(src, in.Spans, i+1) {
				continue
			}
			j := i - 1
			for j >= sp.Start && (src[j] == ' ' || src[j] == '\t') {
				j--
			}
			if j < sp.Start || src[j] != ';' {
				continue
			}

			diagnostics = append(diagnostics, Diagnostic{
				Message:   "Slash terminator should be on a new line",
				Statement: in.Script.StatementAt(i),
				Pos:       parser.PositionAt(src, i),
				Fixes: []Fix{{
					Description: `Move "/" to its own line`,
					TextEdits:   []TextEdit{{Start: j + 1, End: i, NewText: "\n"}},
				}},
			})
		}
	}
	return diagnostics
}
