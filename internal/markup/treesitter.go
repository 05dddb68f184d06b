package markup

import (
	"strings"

	"findmark/internal/highlighter"
	"findmark/internal/lang"

	"github.com/alecthomas/chroma/v2"
)

var categoryTypes = map[highlighter.TokenCategory]chroma.TokenType{
	highlighter.TokenKeyword:  chroma.Keyword,
	highlighter.TokenType:     chroma.KeywordType,
	highlighter.TokenFunction: chroma.NameFunction,
	highlighter.TokenString:   chroma.LiteralString,
	highlighter.TokenNumber:   chroma.LiteralNumber,
	highlighter.TokenComment:  chroma.Comment,
	highlighter.TokenOperator: chroma.Operator,
	highlighter.TokenError:    chroma.Error,
}

// CategoryClass maps a tree-sitter token category onto chroma's class name
// for the equivalent token type.
func CategoryClass(cat highlighter.TokenCategory) string {
	tt, ok := categoryTypes[cat]
	if !ok {
		return ""
	}
	return ClassFor(tt)
}

// TreeSitter renders lines from tree-sitter spans. Line indexes are
// 0-based; the highlighter sees them 1-based.
type TreeSitter struct {
	H    *highlighter.Highlighter
	Lang lang.ID
	File string
	Mode highlighter.ContextMode
}

func (r *TreeSitter) request(index int, line string) highlighter.Request {
	return highlighter.Request{Lang: r.Lang, Text: line, File: r.File, Line: index + 1, Mode: r.Mode}
}

func (r *TreeSitter) Render(lines []string) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = r.RenderLine(i, line)
	}
	return out
}

func (r *TreeSitter) RenderLine(index int, line string) string {
	if line == "" {
		return ""
	}
	if r.H == nil || !r.H.Supports(r.Lang) {
		return PlainLine(line)
	}

	runes := []rune(line)
	var sb strings.Builder
	for _, s := range r.H.Highlight(r.request(index, line)) {
		if s.Start < 0 || s.End > len(runes) || s.End <= s.Start {
			return PlainLine(line)
		}
		span(&sb, CategoryClass(s.Cat), string(runes[s.Start:s.End]))
	}
	out := sb.String()
	if !Consistent(out, line) {
		return PlainLine(line)
	}
	return out
}

func (r *TreeSitter) Prefetch(index int, line string) {
	if r.H != nil && line != "" && r.H.Supports(r.Lang) {
		r.H.Prefetch(r.request(index, line))
	}
}
