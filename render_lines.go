package main

import (
	"fmt"
	"strings"

	"findmark/internal/find"
	"findmark/internal/markup"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/net/html"
)

// renderMarkupLine draws one line of markup for the terminal, cut to width
// display columns. Class tags pick theme colours and the highlight markers
// switch to the highlight style.
func renderMarkupLine(line string, width int, markers find.Markers) string {
	if width <= 0 || line == "" {
		return ""
	}
	tags, err := find.ScanTags(line)
	if err != nil {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(appTheme.Text)).Render(truncateText(markup.Text(line), width))
	}

	r := &lineRenderer{remaining: width}
	runes := []rune(line)
	cursor := 0
	for _, tag := range tags {
		if !r.text(string(runes[cursor:tag.Start])) {
			return r.b.String()
		}
		r.tag(string(runes[tag.Start:tag.End()]), markers)
		cursor = tag.End()
	}
	r.text(string(runes[cursor:]))
	return r.b.String()
}

type lineRenderer struct {
	b         strings.Builder
	classes   []string
	highlight int
	remaining int
}

func (r *lineRenderer) tag(tag string, markers find.Markers) {
	switch {
	case tag == markers.Start:
		r.highlight++
	case tag == markers.End:
		r.highlight = max(r.highlight-1, 0)
	case strings.HasPrefix(tag, "</"):
		if n := len(r.classes); n > 0 {
			r.classes = r.classes[:n-1]
		}
	case strings.HasSuffix(tag, "/>"):
	default:
		r.classes = append(r.classes, tagClass(tag))
	}
}

// text writes an escaped text run. It reports false once the width is used up.
func (r *lineRenderer) text(escaped string) bool {
	if escaped == "" {
		return r.remaining > 0
	}
	s := sanitizeText(html.UnescapeString(escaped))
	if w := runewidth.StringWidth(s); w > r.remaining {
		s = runewidth.Truncate(s, r.remaining, "")
	}
	r.remaining -= runewidth.StringWidth(s)
	r.b.WriteString(r.style().Render(s))
	return r.remaining > 0
}

func (r *lineRenderer) style() lipgloss.Style {
	class := ""
	if n := len(r.classes); n > 0 {
		class = r.classes[n-1]
	}
	cs := appTheme.Class(class)
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(cs.Colour)).Bold(cs.Bold).Italic(cs.Italic)
	if r.highlight > 0 {
		style = style.Foreground(lipgloss.Color(appTheme.HighlightFG)).Background(lipgloss.Color(appTheme.HighlightBG))
	}
	return style
}

// tagClass returns the first class named by an opening tag.
func tagClass(tag string) string {
	z := html.NewTokenizer(strings.NewReader(tag))
	switch z.Next() {
	case html.StartTagToken, html.SelfClosingTagToken:
	default:
		return ""
	}
	_, more := z.TagName()
	for more {
		var key, val []byte
		key, val, more = z.TagAttr()
		if string(key) != "class" {
			continue
		}
		if fields := strings.Fields(string(val)); len(fields) > 0 {
			return fields[0]
		}
		return ""
	}
	return ""
}

func renderGutter(line int, width int) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(appTheme.Dim)).Render(fmt.Sprintf("%*d ", width, line))
}
