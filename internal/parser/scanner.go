/*
 * scanner.go
 *
 * Layer 1 of the Oracle script front end: classify every byte of a script
 * as code, string literal, line comment or block comment.
 *
 * The scanner is a small state machine.  Every state consumes bytes until
 * it sees the input that moves it to another state; the byte offsets at
 * which the span kind changes become span boundaries:
 *
 *	state             input                 next state
 *	---------------   -------------------   -----------------
 *	stateCode         '--'                  stateLineComment
 *	stateCode         '/' '*'               stateBlockComment
 *	stateCode         [nN]?[qQ]'<d>         stateQString
 *	stateCode         [nN]?'                stateString
 *	stateCode         '"'                   stateQuotedIdent
 *	stateString       '' (doubled quote)    stateString
 *	stateString       '                     stateCode
 *	stateQString      <closing d>'          stateCode
 *	stateQuotedIdent  '"'                   stateCode
 *	stateLineComment  '\r' | '\n'           stateCode
 *	stateBlockComment '*' '/'               stateCode
 *
 * Quoted identifiers are scanned through but stay part of the surrounding
 * Code span.  Block comments do not nest in Oracle.
 *
 * Usage:
 *
 *	s := parser.NewSpanScanner(src)
 *	for span := range s.All() {
 *	    // span.Kind, span.Start, span.End
 *	}
 *	diags := s.Diagnostics()
 */
package parser

import (
	"fmt"
	"iter"
)

// SpanKind is the lexical class of a span of script text.
type SpanKind int

const (
	Code SpanKind = iota
	StringLiteral
	LineComment
	BlockComment
)

// String returns a string representation of SpanKind
func (k SpanKind) String() string {
	switch k {
	case Code:
		return "code"
	case StringLiteral:
		return "string"
	case LineComment:
		return "line_comment"
	case BlockComment:
		return "block_comment"
	default:
		return "unknown"
	}
}

// IsComment reports whether the kind is a line or block comment.
func (k SpanKind) IsComment() bool {
	return k == LineComment || k == BlockComment
}

// Span is a classified byte range [Start, End) of the original text.
type Span struct {
	Kind  SpanKind
	Start int
	End   int
}

// Text returns the source slice covered by the span.
func (s Span) Text(src string) string {
	return src[s.Start:s.End]
}

// Len returns the span length in bytes.
func (s Span) Len() int {
	return s.End - s.Start
}

type scanState int

const (
	stateCode scanState = iota
	stateString
	stateQString
	stateQuotedIdent
	stateLineComment
	stateBlockComment
)

// spanKind maps a non-code scanner state to the kind of span it produces.
var spanKind = map[scanState]SpanKind{
	stateString:       StringLiteral,
	stateQString:      StringLiteral,
	stateLineComment:  LineComment,
	stateBlockComment: BlockComment,
}

/*
 * SpanScanner produces spans lazily, one per call to Next.
 * Adjacent code (including quoted identifiers) is merged into a single
 * Code span, so spans always alternate between Code and a non-code kind
 * except where two literals or comments touch.
 */
type SpanScanner struct {
	src   string
	pos   int
	diags []Diagnostic
}

// NewSpanScanner returns a SpanScanner that reads from src.
func NewSpanScanner(src string) *SpanScanner { return &SpanScanner{src: src} }

// Diagnostics returns the problems found so far (unterminated literals and
// comments).  It is complete once Next has returned false.
func (s *SpanScanner) Diagnostics() []Diagnostic { return s.diags }

// Next returns the next span, or false when the input is exhausted.
func (s *SpanScanner) Next() (Span, bool) {
	if s.pos >= len(s.src) {
		return Span{}, false
	}
	start := s.pos
	state, skip := s.opening(s.pos)
	if state != stateCode && state != stateQuotedIdent {
		s.pos += skip
		s.finish(state, start)
		return Span{Kind: spanKind[state], Start: start, End: s.pos}, true
	}

	// Code: run until something that opens a literal or comment.
	for s.pos < len(s.src) {
		state, skip = s.opening(s.pos)
		if state == stateQuotedIdent {
			s.pos += skip
			s.finish(stateQuotedIdent, s.pos-skip)
			continue
		}
		if state != stateCode {
			break
		}
		s.pos++
	}
	return Span{Kind: Code, Start: start, End: s.pos}, true
}

// All returns an iterator over the remaining spans.
func (s *SpanScanner) All() iter.Seq[Span] {
	return func(yield func(Span) bool) {
		for {
			span, ok := s.Next()
			if !ok || !yield(span) {
				return
			}
		}
	}
}

// ScanSpans classifies the whole of src.
func ScanSpans(src string) ([]Span, []Diagnostic) {
	s := NewSpanScanner(src)
	var spans []Span
	for span := range s.All() {
		spans = append(spans, span)
	}
	return spans, s.Diagnostics()
}

/*
 * opening inspects the input at i while in stateCode and reports which
 * state the byte starts, plus how many bytes the opening delimiter spans.
 * It returns stateCode when i is an ordinary code byte.
 */
func (s *SpanScanner) opening(i int) (scanState, int) {
	ch := s.src[i]
	switch {
	case ch == '-' && s.at(i+1) == '-':
		return stateLineComment, 2
	case ch == '/' && s.at(i+1) == '*':
		return stateBlockComment, 2
	case ch == '\'':
		return stateString, 1
	case ch == '"':
		return stateQuotedIdent, 1
	}

	if i > 0 && isIdentCont(s.src[i-1]) {
		return stateCode, 0
	}
	n := 0
	if ch == 'n' || ch == 'N' {
		n = 1
	}
	switch q := s.at(i + n); {
	case (q == 'q' || q == 'Q') && s.at(i+n+1) == '\'' && s.at(i+n+2) != 0:
		return stateQString, n + 3
	case n == 1 && q == '\'':
		return stateString, 2
	}
	return stateCode, 0
}

/*
 * finish consumes the body of a literal, identifier or comment whose
 * opening delimiter has already been skipped, leaving pos after the
 * closing delimiter (or at EOF).
 */
func (s *SpanScanner) finish(state scanState, start int) {
	switch state {
	case stateLineComment:
		for s.pos < len(s.src) && s.src[s.pos] != '\n' && s.src[s.pos] != '\r' {
			s.pos++
		}
	case stateBlockComment:
		for s.pos < len(s.src) {
			if s.src[s.pos] == '*' && s.at(s.pos+1) == '/' {
				s.pos += 2
				return
			}
			s.pos++
		}
		s.unterminated(UnterminatedComment, start, "block comment")
	case stateString:
		for s.pos < len(s.src) {
			if s.src[s.pos] != '\'' {
				s.pos++
				continue
			}
			s.pos++
			if s.at(s.pos) == '\'' {
				s.pos++ /* '' is an escaped quote */
				continue
			}
			return
		}
		s.unterminated(UnterminatedLiteral, start, "string literal")
	case stateQString:
		closing := closingQuoteDelim(s.src[s.pos-1])
		for s.pos < len(s.src) {
			if s.src[s.pos] == closing && s.at(s.pos+1) == '\'' {
				s.pos += 2
				return
			}
			s.pos++
		}
		s.unterminated(UnterminatedLiteral, start, "q-quoted literal")
	case stateQuotedIdent:
		for s.pos < len(s.src) {
			if s.src[s.pos] == '"' {
				s.pos++
				return
			}
			s.pos++
		}
		s.unterminated(UnterminatedLiteral, start, "quoted identifier")
	}
}

func (s *SpanScanner) unterminated(code DiagnosticCode, start int, what string) {
	s.diags = append(s.diags, Diagnostic{
		Code:      code,
		Severity:  SeverityWarning,
		Message:   fmt.Sprintf("unterminated %s runs to end of input", what),
		Statement: -1,
		Pos:       PositionAt(s.src, start),
	})
}

// at returns the byte at i, or 0 if out of bounds.
func (s *SpanScanner) at(i int) byte {
	if i < len(s.src) {
		return s.src[i]
	}
	return 0
}

// closingQuoteDelim returns the byte that closes an Oracle q'<d>...<d>'
// literal opened with d.
func closingQuoteDelim(d byte) byte {
	switch d {
	case '[':
		return ']'
	case '{':
		return '}'
	case '(':
		return ')'
	case '<':
		return '>'
	default:
		return d
	}
}

func isIdentStart(ch byte) bool {
	return ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch == '_' || ch >= 0x80
}

// isIdentCont covers the Oracle identifier alphabet: letters, digits, _, $ and #.
func isIdentCont(ch byte) bool {
	return isIdentStart(ch) || ch >= '0' && ch <= '9' || ch == '$' || ch == '#'
}

func isSpace(ch byte) bool {
	switch ch {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}
