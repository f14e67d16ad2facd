package parser

import "sort"

/*
 * Segment splits src into statements along SQL*Plus "/" terminator lines.
 *
 * spans must be the output of the span scanner for src.  Only Code spans
 * are inspected for the terminator, so a "/" on its own line inside a
 * string literal or comment never ends a statement, and "/*" was already
 * claimed by a block comment before we get here.  BEGIN/END nesting is
 * irrelevant: only a terminator line closes a statement.
 */
func Segment(src string, spans []Span) ([]*Statement, []Diagnostic) {
	seg := &segmenter{src: src, spans: spans, lines: newLineIndex(src)}
	return seg.run()
}

type segmenter struct {
	src   string
	spans []Span
	lines lineIndex
	stmts []*Statement
	diags []Diagnostic
}

func (g *segmenter) run() ([]*Statement, []Diagnostic) {
	chunkStart := 0
	k := 0
	for lineStart := 0; lineStart < len(g.src); {
		lineEnd := len(g.src)
		next := len(g.src)
		if nl := indexByteFrom(g.src, '\n', lineStart); nl >= 0 {
			lineEnd = nl
			next = nl + 1
		}
		for k < len(g.spans) && g.spans[k].End <= lineStart {
			k++
		}
		if g.isTerminator(k, lineStart, lineEnd) {
			g.emit(chunkStart, lineStart, next)
			chunkStart = next
		}
		lineStart = next
	}
	g.finish(chunkStart)
	return g.stmts, g.diags
}

/*
 * isTerminator reports whether the line [lineStart, lineEnd) is a lone "/".
 * The line's code must be exactly one "/" once whitespace is dropped.
 * Comments wholly contained in the line are allowed; a string literal, or a
 * comment that enters from or continues past the line, disqualifies it.
 */
func (g *segmenter) isTerminator(k, lineStart, lineEnd int) bool {
	slash := false
	for j := k; j < len(g.spans) && g.spans[j].Start < lineEnd; j++ {
		sp := g.spans[j]
		switch {
		case sp.Kind == Code:
			for b := max(sp.Start, lineStart); b < min(sp.End, lineEnd); b++ {
				c := g.src[b]
				switch {
				case isSpace(c):
				case c == '/' && !slash:
					slash = true
				default:
					return false
				}
			}
		case sp.Kind == StringLiteral:
			return false
		case sp.Start < lineStart || sp.End > lineEnd:
			return false
		}
	}
	return slash
}

// emit closes the statement whose chunk runs from start to the terminator
// line [termStart, termEnd).
func (g *segmenter) emit(start, termStart, termEnd int) {
	stmt := g.build(start, termStart)
	stmt.Terminator = g.src[termStart:termEnd]
	stmt.TrailingTrivia = append(stmt.TrailingTrivia, g.comments(termStart, termEnd)...)
	g.stmts = append(g.stmts, stmt)
}

// finish handles whatever follows the last terminator.
func (g *segmenter) finish(start int) {
	if start >= len(g.src) {
		return
	}
	if _, _, ok := g.body(start, len(g.src)); ok {
		stmt := g.build(start, len(g.src))
		stmt.Unterminated = true
		g.stmts = append(g.stmts, stmt)
		g.diags = append(g.diags, Diagnostic{
			Code:      UnterminatedStatement,
			Severity:  SeverityWarning,
			Message:   "statement is not followed by a \"/\" terminator line",
			Statement: stmt.Index,
			Pos:       g.lines.position(stmt.Start),
		})
		return
	}
	if n := len(g.stmts); n > 0 {
		last := g.stmts[n-1]
		last.Tail = g.src[start:]
		last.TrailingTrivia = append(last.TrailingTrivia, g.comments(start, len(g.src))...)
		return
	}
	// Nothing but trivia in the whole script.
	g.stmts = append(g.stmts, g.build(start, len(g.src)))
}

// build creates a statement for the region [start, end) without its
// terminator.
func (g *segmenter) build(start, end int) *Statement {
	stmt := &Statement{Index: len(g.stmts)}
	bodyStart, bodyEnd, ok := g.body(start, end)
	if !ok {
		stmt.Leading = g.src[start:end]
		stmt.LeadingTrivia = g.comments(start, end)
		stmt.Start, stmt.End = end, end
		pos := g.lines.position(end)
		stmt.StartLine, stmt.EndLine = pos.Line, pos.Line
		return stmt
	}
	stmt.Leading = g.src[start:bodyStart]
	stmt.Text = g.src[bodyStart:bodyEnd]
	stmt.Trailing = g.src[bodyEnd:end]
	stmt.LeadingTrivia = g.comments(start, bodyStart)
	stmt.TrailingTrivia = g.comments(bodyEnd, end)
	stmt.Start, stmt.End = bodyStart, bodyEnd
	stmt.StartLine = g.lines.position(bodyStart).Line
	stmt.EndLine = g.lines.position(bodyEnd - 1).Line
	return stmt
}

// body locates the first and last significant byte (code that is not
// whitespace, or a string literal) in [start, end).
func (g *segmenter) body(start, end int) (int, int, bool) {
	first, last := -1, -1
	for j := g.spanAt(start); j < len(g.spans) && g.spans[j].Start < end; j++ {
		sp := g.spans[j]
		lo, hi := max(sp.Start, start), min(sp.End, end)
		switch sp.Kind {
		case StringLiteral:
			if first < 0 {
				first = lo
			}
			last = hi
		case Code:
			for b := lo; b < hi; b++ {
				if isSpace(g.src[b]) {
					continue
				}
				if first < 0 {
					first = b
				}
				last = b + 1
			}
		}
	}
	return first, last, first >= 0
}

// comments returns the comment spans that start inside [start, end).
func (g *segmenter) comments(start, end int) []Span {
	var out []Span
	for j := g.spanAt(start); j < len(g.spans) && g.spans[j].Start < end; j++ {
		if sp := g.spans[j]; sp.Kind.IsComment() && sp.Start >= start {
			out = append(out, sp)
		}
	}
	return out
}

// spanAt returns the index of the first span that ends after off.
func (g *segmenter) spanAt(off int) int {
	return sort.Search(len(g.spans), func(i int) bool { return g.spans[i].End > off })
}

func indexByteFrom(s string, c byte, from int) int {
	for i := from; i < len(s); i++ {
		if s[i] == c {
			return i
		}
	}
	return -1
}

// lineIndex maps byte offsets to line/column positions in O(log n).
type lineIndex struct {
	src    string
	starts []int
}

func newLineIndex(src string) lineIndex {
	starts := []int{0}
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return lineIndex{src: src, starts: starts}
}

func (li lineIndex) position(offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(li.src) {
		offset = len(li.src)
	}
	line := sort.Search(len(li.starts), func(i int) bool { return li.starts[i] > offset }) - 1
	return Position{Line: line + 1, Column: offset - li.starts[line] + 1, Offset: offset}
}

// statementAt returns the index of the statement whose chunk contains off.
func statementAt(stmts []*Statement, off int) int {
	for _, s := range stmts {
		chunkEnd := s.ChunkStart() + len(s.Raw())
		if off >= s.ChunkStart() && off < chunkEnd {
			return s.Index
		}
	}
	return -1
}
