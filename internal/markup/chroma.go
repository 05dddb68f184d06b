package markup

import (
	"strings"

	"findmark/internal/lang"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
)

// Chroma renders lines with a chroma lexer. Token classes are chroma's
// standard short names, so the CSS from chroma's html formatter applies.
type Chroma struct {
	lexer chroma.Lexer
}

// NewChroma picks the lexer for id, then by filename, then chroma's
// plaintext fallback.
func NewChroma(id lang.ID, filename string) *Chroma {
	var lexer chroma.Lexer
	if name := lang.ChromaLexer(id); name != "" {
		lexer = lexers.Get(name)
	}
	if lexer == nil && filename != "" {
		lexer = lexers.Match(filename)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return &Chroma{lexer: chroma.Coalesce(lexer)}
}

// Name is the lexer's display name.
func (c *Chroma) Name() string {
	return c.lexer.Config().Name
}

func (c *Chroma) Render(lines []string) []string {
	out := make([]string, len(lines))
	iterator, err := c.lexer.Tokenise(nil, strings.Join(lines, "\n"))
	if err != nil {
		return Plain{}.Render(lines)
	}

	tokenLines := chroma.SplitTokensIntoLines(iterator.Tokens())
	var sb strings.Builder
	for i, line := range lines {
		if i >= len(tokenLines) {
			out[i] = PlainLine(line)
			continue
		}
		sb.Reset()
		for _, tok := range tokenLines[i] {
			span(&sb, ClassFor(tok.Type), strings.TrimSuffix(tok.Value, "\n"))
		}
		out[i] = sb.String()
		if !Consistent(out[i], line) {
			out[i] = PlainLine(line)
		}
	}
	return out
}

// ClassFor returns the CSS class chroma uses for t, walking up to the
// sub-category and category when t has none of its own.
func ClassFor(t chroma.TokenType) string {
	if t == chroma.None || t == chroma.Text || t == chroma.TextWhitespace {
		return ""
	}
	for _, tt := range []chroma.TokenType{t, t.SubCategory(), t.Category()} {
		if class, ok := chroma.StandardTypes[tt]; ok && class != "" {
			return class
		}
	}
	return ""
}
