/*
 * lexer.go
 *
 * Layer 2: turn classified spans into tokens.  String literals and comments
 * arrive whole from the span scanner; only Code spans are broken up here,
 * so the lexer never has to know about quoting or comment syntax.
 */
package parser

import (
	"strings"
)

/*
 * TokenType is the lexical category of a token.
 *
 * Single-character punctuation tokens use their byte value as the
 * TokenType (';' is TokenType(';')).  Named multi-character categories and
 * keywords are >= 1000.
 */
type TokenType int

// EOF is returned past the end of a token slice.
const EOF TokenType = 0

const (
	Ident       TokenType = 1000 + iota // unquoted identifier that is not a keyword
	QuotedIdent                         // "Mixed Case"
	String                              // '...', N'...', q'[...]'
	Number                              // 42, 3.14, 1e10
	BindVar                             // :name, :1
	Comment                             // -- ... or /* ... */
	Concat                              // ||
	Assign                              // :=
	Arrow                               // =>
	LabelOpen                           // <<
	LabelClose                          // >>

	// Keywords the core grammar needs.  A Dialect maps words onto these.
	KBegin
	KBody
	KBulk
	KCollect
	KCreate
	KDeclare
	KEditionable
	KEnd
	KExecute
	KFunction
	KImmediate
	KIn
	KInto
	KNoneditionable
	KNull
	KOr
	KOut
	KPackage
	KProcedure
	KReplace
	KReturn
	KReturning
	KTrigger
	KType
	KUsing
)

var tokenNames = map[TokenType]string{
	EOF: "EOF", Ident: "identifier", QuotedIdent: "quoted identifier",
	String: "string", Number: "number", BindVar: "bind variable",
	Comment: "comment", Concat: "||", Assign: ":=", Arrow: "=>",
	LabelOpen: "<<", LabelClose: ">>",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	if t >= KBegin {
		for word, kw := range oracleKeywords {
			if kw == t {
				return strings.ToUpper(word)
			}
		}
		return "keyword"
	}
	return string(rune(t))
}

// Token is a single lexical token from script text.
type Token struct {
	Type TokenType // Lexical category.
	Text string    // Raw source bytes that form this token.
	Pos  int       // Byte offset of the first character (0-based).
}

// End returns the byte offset just past the token.
func (t Token) End() int { return t.Pos + len(t.Text) }

// IsKeyword reports whether t was recognised as a dialect keyword.
func (t Token) IsKeyword() bool { return t.Type >= KBegin }

// IsWord reports whether t is an identifier or keyword, i.e. something a
// statement may start with.
func (t Token) IsWord() bool { return t.Type == Ident || t.Type == QuotedIdent || t.IsKeyword() }

/*
 * Dialect supplies the keyword catalog.  The core only needs the handful of
 * words it dispatches on; everything else lexes as Ident.
 */
type Dialect struct {
	Name     string
	keywords map[string]TokenType
}

// NewDialect builds a dialect from a lower-case word → keyword map.
func NewDialect(name string, keywords map[string]TokenType) *Dialect {
	kw := make(map[string]TokenType, len(keywords))
	for word, typ := range keywords {
		kw[strings.ToLower(word)] = typ
	}
	return &Dialect{Name: name, keywords: kw}
}

// Lookup returns the keyword type for word, or Ident.
func (d *Dialect) Lookup(word string) TokenType {
	if typ, ok := d.keywords[strings.ToLower(word)]; ok {
		return typ
	}
	return Ident
}

var oracleKeywords = map[string]TokenType{
	"begin": KBegin, "body": KBody, "bulk": KBulk, "collect": KCollect,
	"create": KCreate, "declare": KDeclare, "editionable": KEditionable,
	"end": KEnd, "execute": KExecute, "function": KFunction,
	"immediate": KImmediate, "in": KIn, "into": KInto,
	"noneditionable": KNoneditionable, "null": KNull, "or": KOr, "out": KOut,
	"package": KPackage, "procedure": KProcedure, "replace": KReplace,
	"return": KReturn, "returning": KReturning, "trigger": KTrigger,
	"type": KType, "using": KUsing,
}

var oracle = NewDialect("oracle", oracleKeywords)

// Oracle returns the Oracle SQL*Plus / PL/SQL dialect.
func Oracle() *Dialect { return oracle }

// Lex tokenises src using spans previously produced by the span scanner.
func Lex(src string, spans []Span, d *Dialect) []Token {
	if d == nil {
		d = oracle
	}
	var toks []Token
	for _, sp := range spans {
		switch sp.Kind {
		case LineComment, BlockComment:
			toks = append(toks, Token{Type: Comment, Text: sp.Text(src), Pos: sp.Start})
		case StringLiteral:
			toks = append(toks, Token{Type: String, Text: sp.Text(src), Pos: sp.Start})
		default:
			toks = lexCode(toks, src, sp.Start, sp.End, d)
		}
	}
	return toks
}

// LexString scans and tokenises src in one step.
func LexString(src string, d *Dialect) []Token {
	spans, _ := ScanSpans(src)
	return Lex(src, spans, d)
}

// lexCode appends the tokens of the code region src[start:end].
func lexCode(toks []Token, src string, start, end int, d *Dialect) []Token {
	at := func(i int) byte {
		if i < end {
			return src[i]
		}
		return 0
	}
	for i := start; i < end; {
		ch := src[i]
		begin := i
		var typ TokenType
		switch {
		case isSpace(ch):
			i++
			continue
		case isIdentStart(ch):
			for i < end && isIdentCont(src[i]) {
				i++
			}
			typ = d.Lookup(src[begin:i])
		case ch == '"':
			i++
			for i < end && src[i] != '"' {
				i++
			}
			if i < end {
				i++
			}
			typ = QuotedIdent
		case ch >= '0' && ch <= '9' || ch == '.' && at(i+1) >= '0' && at(i+1) <= '9':
			i = scanNumber(src, i, end)
			typ = Number
		case ch == ':' && at(i+1) == '=':
			i += 2
			typ = Assign
		case ch == ':' && (isIdentStart(at(i+1)) || at(i+1) >= '0' && at(i+1) <= '9' || at(i+1) == '"'):
			i++
			if src[i] == '"' {
				for i++; i < end && src[i] != '"'; i++ {
				}
				if i < end {
					i++
				}
			} else {
				for i < end && isIdentCont(src[i]) {
					i++
				}
			}
			typ = BindVar
		case ch == '|' && at(i+1) == '|':
			i += 2
			typ = Concat
		case ch == '=' && at(i+1) == '>':
			i += 2
			typ = Arrow
		case ch == '<' && at(i+1) == '<':
			i += 2
			typ = LabelOpen
		case ch == '>' && at(i+1) == '>':
			i += 2
			typ = LabelClose
		default:
			i++
			typ = TokenType(ch)
		}
		toks = append(toks, Token{Type: typ, Text: src[begin:i], Pos: begin})
	}
	return toks
}

// scanNumber consumes digits, an optional fraction and exponent, and the
// Oracle f/d float suffixes.
func scanNumber(src string, i, end int) int {
	digits := func() {
		for i < end && src[i] >= '0' && src[i] <= '9' {
			i++
		}
	}
	digits()
	if i < end && src[i] == '.' && !(i+1 < end && src[i+1] == '.') {
		i++
		digits()
	}
	if i < end && (src[i] == 'e' || src[i] == 'E') {
		j := i + 1
		if j < end && (src[j] == '+' || src[j] == '-') {
			j++
		}
		if j < end && src[j] >= '0' && src[j] <= '9' {
			i = j
			digits()
		}
	}
	if i < end && strings.IndexByte("fFdD", src[i]) >= 0 && !(i+1 < end && isIdentCont(src[i+1])) {
		i++
	}
	return i
}

// significant drops comment tokens.
func significant(toks []Token) []Token {
	out := make([]Token, 0, len(toks))
	for _, t := range toks {
		if t.Type != Comment {
			out = append(out, t)
		}
	}
	return out
}
