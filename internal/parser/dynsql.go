package parser

import (
	"fmt"
	"strings"
)

// TermKind classifies one operand of a dynamic SQL concatenation.
type TermKind int

const (
	TermLiteral    TermKind = iota // 'SELECT ...'
	TermIdentifier                 // v_sql, pkg.v_sql, :host
	TermCall                       // TO_CHAR(n)
)

func (k TermKind) String() string {
	switch k {
	case TermLiteral:
		return "literal"
	case TermIdentifier:
		return "identifier"
	case TermCall:
		return "call"
	default:
		return "unknown"
	}
}

// MarshalText renders the kind by name in JSON reports.
func (k TermKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ExprTerm is a string literal, variable reference or function call.
// Text is the source form; Value is the unquoted literal value, or the
// identifier / call text for non-literals.
type ExprTerm struct {
	Kind  TermKind `json:"kind"`
	Text  string   `json:"text"`
	Value string   `json:"value"`
	Pos   int      `json:"pos"`
}

// DynamicSQLExpr is the ordered list of terms joined by ||.
type DynamicSQLExpr struct {
	Terms []ExprTerm `json:"terms"`
}

// String rebuilds the expression as source text.
func (e DynamicSQLExpr) String() string {
	parts := make([]string, len(e.Terms))
	for i, t := range e.Terms {
		parts[i] = t.Text
	}
	return strings.Join(parts, " || ")
}

// BindMode is the parameter mode of a USING argument.
type BindMode int

const (
	ModeIn BindMode = iota
	ModeOut
	ModeInOut
)

func (m BindMode) String() string {
	switch m {
	case ModeOut:
		return "OUT"
	case ModeInOut:
		return "IN OUT"
	default:
		return "IN"
	}
}

// MarshalText renders the mode by name in JSON reports.
func (m BindMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// BindArgument is one USING argument.  Its position in the list maps to
// the placeholders of the dynamic text.
type BindArgument struct {
	Mode BindMode `json:"mode"`
	Expr ExprTerm `json:"expr"`
}

// Target receives a value from INTO or RETURNING INTO.
type Target struct {
	Name string `json:"name"`
	Pos  int    `json:"pos"`
}

/*
 * ExecuteImmediateClause is a parsed
 *
 *	EXECUTE IMMEDIATE expr [[BULK COLLECT] INTO ...] [USING ...] [RETURNING INTO ...]
 *
 * A nil Into, Using or Returning means the clause was absent; a present
 * clause always has at least one element.
 */
type ExecuteImmediateClause struct {
	SQL         DynamicSQLExpr `json:"sql"`
	BulkCollect bool           `json:"bulk_collect,omitempty"`
	Into        []Target       `json:"into,omitempty"`
	Using       []BindArgument `json:"using,omitempty"`
	Returning   []Target       `json:"returning,omitempty"`
	Pos         int            `json:"pos"`
}

// MalformedDynamicSQLError reports an EXECUTE IMMEDIATE clause that does
// not follow the grammar.
type MalformedDynamicSQLError struct {
	Pos     int    // byte offset of the offending token
	Token   string // offending token text, "" at end of statement
	Message string
}

func (e *MalformedDynamicSQLError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("malformed EXECUTE IMMEDIATE: %s at end of statement", e.Message)
	}
	return fmt.Sprintf("malformed EXECUTE IMMEDIATE: %s near %q", e.Message, e.Token)
}

/*
 * ParseExecuteImmediate parses one dynamic SQL statement.  tokens must
 * start at EXECUTE; parsing stops at the first ';' or the end of the slice.
 * Comments are ignored.  Clause order is enforced: INTO, then USING, then
 * RETURNING INTO.  Placeholders inside the dynamic text are never
 * inspected.
 */
func ParseExecuteImmediate(tokens []Token) (*ExecuteImmediateClause, error) {
	p := &dynParser{toks: significant(tokens)}
	return p.parse()
}

type dynParser struct {
	toks []Token
	pos  int
}

func (p *dynParser) cur() Token {
	if p.pos < len(p.toks) {
		return p.toks[p.pos]
	}
	end := 0
	if n := len(p.toks); n > 0 {
		end = p.toks[n-1].End()
	}
	return Token{Type: EOF, Pos: end}
}

func (p *dynParser) peek() Token {
	if p.pos+1 < len(p.toks) {
		return p.toks[p.pos+1]
	}
	return Token{Type: EOF}
}

func (p *dynParser) curIs(t TokenType) bool { return p.cur().Type == t }

func (p *dynParser) next() Token {
	tok := p.cur()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return tok
}

func (p *dynParser) done() bool {
	return p.curIs(EOF) || p.curIs(TokenType(';'))
}

func (p *dynParser) errorf(format string, args ...any) error {
	tok := p.cur()
	return &MalformedDynamicSQLError{Pos: tok.Pos, Token: tok.Text, Message: fmt.Sprintf(format, args...)}
}

func (p *dynParser) expect(t TokenType, what string) error {
	if !p.curIs(t) {
		return p.errorf("expected %s", what)
	}
	p.next()
	return nil
}

func (p *dynParser) parse() (*ExecuteImmediateClause, error) {
	clause := &ExecuteImmediateClause{Pos: p.cur().Pos}
	if err := p.expect(KExecute, "EXECUTE"); err != nil {
		return nil, err
	}
	if err := p.expect(KImmediate, "IMMEDIATE"); err != nil {
		return nil, err
	}

	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	clause.SQL = expr

	for !p.done() {
		switch tok := p.cur(); tok.Type {
		case KBulk, KInto:
			if clause.Using != nil {
				return nil, p.errorf("INTO must precede USING")
			}
			if clause.Into != nil {
				return nil, p.errorf("duplicate INTO clause")
			}
			if clause.Returning != nil {
				return nil, p.errorf("INTO cannot follow RETURNING INTO")
			}
			if tok.Type == KBulk {
				p.next()
				if err := p.expect(KCollect, "COLLECT after BULK"); err != nil {
					return nil, err
				}
				clause.BulkCollect = true
			}
			if err := p.expect(KInto, "INTO"); err != nil {
				return nil, err
			}
			if clause.Into, err = p.parseTargets("INTO"); err != nil {
				return nil, err
			}
		case KUsing:
			if clause.Using != nil {
				return nil, p.errorf("duplicate USING clause")
			}
			if clause.Returning != nil {
				return nil, p.errorf("USING must precede RETURNING INTO")
			}
			p.next()
			if clause.Using, err = p.parseBindArgs(); err != nil {
				return nil, err
			}
		case KReturning, KReturn:
			if clause.Into != nil {
				return nil, p.errorf("RETURNING INTO cannot be combined with INTO")
			}
			if clause.Returning != nil {
				return nil, p.errorf("duplicate RETURNING INTO clause")
			}
			p.next()
			if err := p.expect(KInto, "INTO after "+strings.ToUpper(tok.Text)); err != nil {
				return nil, err
			}
			if clause.Returning, err = p.parseTargets("RETURNING INTO"); err != nil {
				return nil, err
			}
		default:
			return nil, p.errorf("unexpected token")
		}
	}
	return clause, nil
}

// parseExpr parses term { '||' term }.
func (p *dynParser) parseExpr() (DynamicSQLExpr, error) {
	var expr DynamicSQLExpr
	for {
		term, ok := p.parseTerm()
		if !ok {
			if len(expr.Terms) == 0 {
				return expr, p.errorf("expected dynamic SQL string or variable")
			}
			return expr, p.errorf("expected string or variable after ||")
		}
		expr.Terms = append(expr.Terms, term)
		if !p.curIs(Concat) {
			return expr, nil
		}
		p.next()
	}
}

// clauseKeywords end a term or target; any other keyword may name a
// variable there.
var clauseKeywords = map[TokenType]bool{
	KInto: true, KUsing: true, KIn: true, KOut: true, KReturning: true,
	KReturn: true, KBulk: true, KNull: true, KBegin: true, KDeclare: true, KEnd: true,
}

// isName reports whether tok can start a variable, call or target name.
func isName(tok Token) bool {
	switch tok.Type {
	case Ident, QuotedIdent, BindVar:
		return true
	}
	return tok.IsKeyword() && !clauseKeywords[tok.Type]
}

// parseTerm parses a string literal, a (qualified) identifier or a call.
func (p *dynParser) parseTerm() (ExprTerm, bool) {
	tok := p.cur()
	switch {
	case tok.Type == String:
		p.next()
		return ExprTerm{Kind: TermLiteral, Text: tok.Text, Value: UnquoteLiteral(tok.Text), Pos: tok.Pos}, true
	case isName(tok):
		name := p.parseName()
		term := ExprTerm{Kind: TermIdentifier, Text: name, Value: name, Pos: tok.Pos}
		if p.curIs(TokenType('(')) {
			args, ok := p.parseParens()
			if !ok {
				return ExprTerm{}, false
			}
			term.Kind = TermCall
			term.Text += args
			term.Value = term.Text
		}
		return term, true
	}
	return ExprTerm{}, false
}

// parseName parses ident { '.' ident }.
func (p *dynParser) parseName() string {
	var b strings.Builder
	b.WriteString(p.next().Text)
	for p.curIs(TokenType('.')) {
		if t := p.peek().Type; t != Ident && t != QuotedIdent && !p.peek().IsKeyword() {
			break
		}
		p.next()
		b.WriteByte('.')
		b.WriteString(p.next().Text)
	}
	return b.String()
}

// parseParens consumes a balanced parenthesised argument list and returns
// its text with tokens joined by single spaces where the source had any.
func (p *dynParser) parseParens() (string, bool) {
	var b strings.Builder
	depth := 0
	prevEnd := -1
	for !p.curIs(EOF) {
		tok := p.next()
		if prevEnd >= 0 && tok.Pos > prevEnd {
			b.WriteByte(' ')
		}
		b.WriteString(tok.Text)
		prevEnd = tok.End()
		switch tok.Type {
		case TokenType('('):
			depth++
		case TokenType(')'):
			depth--
			if depth == 0 {
				return b.String(), true
			}
		}
	}
	return "", false
}

// parseTargets parses target { ',' target } for INTO and RETURNING INTO.
func (p *dynParser) parseTargets(clause string) ([]Target, error) {
	var targets []Target
	for {
		tok := p.cur()
		switch {
		case isName(tok):
			targets = append(targets, Target{Name: p.parseName(), Pos: tok.Pos})
		default:
			if len(targets) == 0 {
				return nil, p.errorf("%s requires at least one target", clause)
			}
			return nil, p.errorf("expected target after ','")
		}
		if !p.curIs(TokenType(',')) {
			return targets, nil
		}
		p.next()
	}
}

// parseBindArgs parses bind_arg { ',' bind_arg }.  The mode of each
// argument is read afresh; it never carries over from the previous one.
func (p *dynParser) parseBindArgs() ([]BindArgument, error) {
	var args []BindArgument
	for {
		arg := BindArgument{Mode: ModeIn}
		annotated := ""
		switch {
		case p.curIs(KIn):
			p.next()
			annotated = "IN"
			if p.curIs(KOut) {
				p.next()
				arg.Mode = ModeInOut
				annotated = "IN OUT"
			}
		case p.curIs(KOut):
			p.next()
			arg.Mode = ModeOut
			annotated = "OUT"
		}

		expr, ok := p.parseBindExpr()
		if !ok {
			switch {
			case annotated != "":
				return nil, p.errorf("bind argument has no expression after %s", annotated)
			case len(args) == 0:
				return nil, p.errorf("USING requires at least one bind argument")
			default:
				return nil, p.errorf("expected bind argument after ','")
			}
		}
		arg.Expr = expr
		args = append(args, arg)

		if !p.curIs(TokenType(',')) {
			return args, nil
		}
		p.next()
	}
}

// parseBindExpr parses the value of a bind argument: a variable, call,
// literal, number or NULL, with an optional sign on numbers.
func (p *dynParser) parseBindExpr() (ExprTerm, bool) {
	tok := p.cur()
	switch {
	case tok.Type == String || isName(tok):
		return p.parseTerm()
	case tok.Type == Number || tok.Type == KNull:
		p.next()
		return ExprTerm{Kind: TermLiteral, Text: tok.Text, Value: tok.Text, Pos: tok.Pos}, true
	case tok.Type == TokenType('-') || tok.Type == TokenType('+'):
		if p.peek().Type != Number {
			return ExprTerm{}, false
		}
		p.next()
		num := p.next()
		text := tok.Text + num.Text
		return ExprTerm{Kind: TermLiteral, Text: text, Value: text, Pos: tok.Pos}, true
	}
	return ExprTerm{}, false
}

/*
 * UnquoteLiteral returns the value of an Oracle string literal:
 * 'It''s' → It's, N'x' → x, q'[a'b]' → a'b.  Text that is not a complete
 * literal (an unterminated one, say) is returned with only the opening
 * quote stripped.
 */
func UnquoteLiteral(text string) string {
	s := text
	if len(s) > 0 && (s[0] == 'n' || s[0] == 'N') {
		s = s[1:]
	}
	if len(s) >= 3 && (s[0] == 'q' || s[0] == 'Q') && s[1] == '\'' {
		closing := closingQuoteDelim(s[2])
		inner := s[3:]
		if n := len(inner); n >= 2 && inner[n-1] == '\'' && inner[n-2] == closing {
			return inner[:n-2]
		}
		return inner
	}
	if len(s) == 0 || s[0] != '\'' {
		return text
	}
	var b strings.Builder
	for i := 1; i < len(s); i++ {
		if s[i] != '\'' {
			b.WriteByte(s[i])
			continue
		}
		if i+1 < len(s) && s[i+1] == '\'' {
			b.WriteByte('\'')
			i++
			continue
		}
		break
	}
	return b.String()
}
