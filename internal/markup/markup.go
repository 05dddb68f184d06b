// Package markup renders raw source lines into the escaped, tag-annotated
// form the find package splices highlights into. Rendered text always
// equals ExpandTabs then Escape of the raw line; tags only add classes.
package markup

import (
	"fmt"
	"html"
	"strings"

	strip "github.com/grokify/html-strip-tags-go"
)

// TabWidth is the number of columns a tab expands to.
const TabWidth = 4

var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// Escape replaces & < > with their entities and leaves everything else,
// quotes included, untouched.
func Escape(s string) string {
	return escaper.Replace(s)
}

func ExpandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", TabWidth))
}

// Text returns the plain rendered text of markup: tags removed and
// entities decoded.
func Text(markup string) string {
	return html.UnescapeString(strip.StripTags(markup))
}

// Renderer turns raw lines into one markup string per line.
type Renderer interface {
	Render(lines []string) []string
}

// LineRenderer is implemented by renderers that can work one line at a
// time. Prefetch may warm a cache for a line about to be rendered.
type LineRenderer interface {
	Renderer
	RenderLine(index int, line string) string
	Prefetch(index int, line string)
}

type Engine string

const (
	EnginePlain      Engine = "plain"
	EngineChroma     Engine = "chroma"
	EngineTreeSitter Engine = "treesitter"
)

func ParseEngine(v string) (Engine, error) {
	switch e := Engine(strings.TrimSpace(strings.ToLower(v))); e {
	case "":
		return EngineChroma, nil
	case EnginePlain, EngineChroma, EngineTreeSitter:
		return e, nil
	case "tree-sitter":
		return EngineTreeSitter, nil
	default:
		return "", fmt.Errorf("invalid engine %q (use plain, chroma or treesitter)", v)
	}
}

// Plain escapes and tab-expands lines without adding any tags.
type Plain struct{}

func (Plain) Render(lines []string) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = PlainLine(line)
	}
	return out
}

func PlainLine(line string) string {
	return Escape(ExpandTabs(line))
}

// span writes text as one class-tagged span; an empty class writes the
// text bare.
func span(sb *strings.Builder, class string, text string) {
	if text == "" {
		return
	}
	if class == "" || strings.TrimSpace(text) == "" {
		sb.WriteString(PlainLine(text))
		return
	}
	sb.WriteString(`<span class="`)
	sb.WriteString(class)
	sb.WriteString(`">`)
	sb.WriteString(PlainLine(text))
	sb.WriteString(`</span>`)
}

// Consistent reports whether markup renders exactly the raw line.
func Consistent(markup string, raw string) bool {
	return Text(markup) == ExpandTabs(raw)
}
