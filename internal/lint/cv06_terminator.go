package lint

import (
	"strings"

	"github.com/cybertec-postgresql/orasplit/internal/parser"
)

func init() {
	Register(Terminator)
}

// Terminator checks the semicolon that ends each statement body.
var Terminator = RuleDef{
	ID:          "CV06",
	Name:        "convention.terminator",
	Group:       "convention",
	Description: "Statements must end with a semi-colon placed directly after the code.",
	Severity:    SeverityWarning,
	ConfigKeys:  []string{"multiline_newline", "require_final_semicolon"},
	Check:       checkTerminator,
	BadExample:  "SELECT a\nFROM foo\n\n;",
	GoodExample: "SELECT a\nFROM foo;",
}

const semicolon = parser.TokenType(';')

func checkTerminator(in *Input, opts map[string]any) []Diagnostic {
	multilineNewline := GetBoolOption(opts, "multiline_newline", false)
	requireFinal := GetBoolOption(opts, "require_final_semicolon", false)

	var diagnostics []Diagnostic
	for _, stmt := range in.Script.Statements {
		if stmt.IsEmpty() {
			continue
		}
		newline := multilineNewline && stmt.StartLine != stmt.EndLine
		if d, ok := checkStatementEnd(in.Script.Source, stmt, newline, requireFinal); ok {
			diagnostics = append(diagnostics, d)
		}
	}
	return diagnostics
}

/*
 * checkStatementEnd inspects the tail of one statement body, in order:
 *
 *	missing ";"           only with require_final_semicolon
 *	";;" or "; ;"         extras are deleted
 *	"x  ;" / "x\n\n;"     the ";" moves next to the code, or onto the next
 *	                      line in newline mode
 */
func checkStatementEnd(src string, stmt *parser.Statement, newline, requireFinal bool) (Diagnostic, bool) {
	toks := parser.LexString(stmt.Text, parser.Oracle())
	var sig []int
	for i := range toks {
		toks[i].Pos += stmt.Start
		if toks[i].Type != parser.Comment {
			sig = append(sig, i)
		}
	}
	if len(sig) == 0 {
		return Diagnostic{}, false
	}

	diag := func(off int, msg, fix string, edits ...TextEdit) (Diagnostic, bool) {
		return Diagnostic{
			Message:   msg,
			Statement: stmt.Index,
			Pos:       parser.PositionAt(src, off),
			Fixes:     []Fix{{Description: fix, TextEdits: edits}},
		}, true
	}

	last := sig[len(sig)-1]
	if toks[last].Type != semicolon {
		if !requireFinal {
			return Diagnostic{}, false
		}
		at, text := toks[last].End(), ";"
		if newline {
			// Step over a line comment that shares the last code line.
			if len(stmt.TrailingTrivia) > 0 {
				sp := stmt.TrailingTrivia[0]
				if sp.Kind == parser.LineComment && !strings.Contains(src[at:sp.Start], "\n") {
					at = sp.End
				}
			}
			text = "\n;"
		}
		return diag(toks[last].Pos, "Statement is missing a final semicolon", "Add a semicolon",
			TextEdit{Start: at, End: at, NewText: text})
	}

	first := len(sig) - 1
	for first > 0 && toks[sig[first-1]].Type == semicolon {
		first--
	}
	if first < len(sig)-1 {
		var edits []TextEdit
		for k := first + 1; k < len(sig); k++ {
			cur, prev := toks[sig[k]], toks[sig[k-1]]
			start := prev.End()
			if sig[k]-sig[k-1] > 1 {
				start = cur.Pos // keep the comment in between
			}
			edits = append(edits, TextEdit{Start: start, End: cur.End()})
		}
		return diag(toks[sig[first+1]].Pos, "Found repeated semicolons", "Remove the extra semicolons", edits...)
	}

	if len(sig) < 2 {
		return Diagnostic{}, false
	}
	semi, prev := toks[last], toks[sig[len(sig)-2]]
	gap := src[prev.End():semi.Pos]
	commentBetween := last-sig[len(sig)-2] > 1

	if newline {
		if commentBetween || gap == "\n" || gap == "\r\n" {
			return Diagnostic{}, false
		}
		return diag(semi.Pos, "Statement terminator should be on a new line", "Put the semicolon on its own line",
			TextEdit{Start: prev.End(), End: semi.Pos, NewText: "\n"})
	}

	if gap == "" {
		return Diagnostic{}, false
	}
	msg := "Statement terminator should be immediately after the statement"
	if !commentBetween {
		return diag(semi.Pos, msg, "Remove the space before the semicolon",
			TextEdit{Start: prev.End(), End: semi.Pos})
	}
	return diag(semi.Pos, msg, "Move the semicolon next to the code",
		TextEdit{Start: prev.End(), End: prev.End(), NewText: ";"},
		TextEdit{Start: toks[last-1].End(), End: semi.End()})
}
