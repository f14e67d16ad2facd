package lint

import (
	"sort"

	"github.com/cybertec-postgresql/orasplit/internal/parser"
)

// spanAt returns the span containing off, or false past the end.
func spanAt(spans []parser.Span, off int) (parser.Span, bool) {
	i := sort.Search(len(spans), func(i int) bool { return spans[i].End > off })
	if i == len(spans) || spans[i].Start > off {
		return parser.Span{}, false
	}
	return spans[i], true
}

// restOfLineIsTrivia reports whether nothing but whitespace and comments
// follows off on its line.
func restOfLineIsTrivia(src string, spans []parser.Span, off int) bool {
	for k := off; k < len(src); {
		if src[k] == '\n' {
			return true
		}
		sp, ok := spanAt(spans, k)
		if !ok {
			return true
		}
		switch sp.Kind {
		case parser.LineComment:
			return true
		case parser.BlockComment:
			k = sp.End
			continue
		case parser.StringLiteral:
			return false
		}
		switch src[k] {
		case ' ', '\t', '\r', '\f', '\v':
			k++
		default:
			return false
		}
	}
	return true
}
