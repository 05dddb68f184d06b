package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	chroma "github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"
)

type ThemePalette struct {
	Name        string
	Text        string
	Background  string
	InputBG     string
	Muted       string
	Dim         string
	Header      string
	Accent      string
	Error       string
	HighlightFG string
	HighlightBG string

	// classes holds the foreground of every chroma class the style sets.
	classes map[string]classStyle
}

type classStyle struct {
	Colour string
	Bold   bool
	Italic bool
}

var appTheme = mustDefaultTheme()

func SetTheme(name string) error {
	palette, err := LoadThemePalette(name)
	if err != nil {
		return err
	}
	appTheme = palette
	return nil
}

func LoadThemePalette(name string) (ThemePalette, error) {
	requested := strings.TrimSpace(name)
	if requested == "" {
		requested = "nord"
	}

	lookup := normalizeThemeName(requested)
	names := styles.Names()
	available := make(map[string]struct{}, len(names))
	for _, n := range names {
		available[n] = struct{}{}
	}
	if _, ok := available[lookup]; !ok {
		sort.Strings(names)
		return ThemePalette{}, fmt.Errorf("unknown theme %q. try one of: %s", requested, strings.Join(topThemeHints(names), ", "))
	}
	style := styles.Get(lookup)

	baseBG := pickBackground(style, "#2E3440", chroma.Background, chroma.LineHighlight)
	baseFG := pickForeground(style, "#D8DEE9", chroma.Text, chroma.Background)
	comment := pickForeground(style, adjustTone(baseFG, -60), chroma.Comment)

	palette := ThemePalette{
		Name:        lookup,
		Text:        baseFG,
		Background:  baseBG,
		InputBG:     adjustTone(baseBG, autoDelta(baseBG, 12, -12)),
		Muted:       pickForeground(style, adjustTone(baseFG, -48), chroma.LineNumbers, chroma.Comment),
		Dim:         pickForeground(style, adjustTone(comment, -10), chroma.LineNumbers, chroma.Comment),
		Header:      pickForeground(style, adjustTone(baseFG, -20), chroma.NameClass, chroma.Keyword),
		Accent:      pickForeground(style, baseFG, chroma.NameFunction, chroma.Keyword),
		Error:       pickForeground(style, "#BF616A", chroma.Error),
		HighlightFG: "#000000",
		HighlightBG: "#FFFF00",
		classes:     classStyles(style),
	}
	return palette, nil
}

// classStyles resolves the style entry of every standard chroma class.
func classStyles(style *chroma.Style) map[string]classStyle {
	out := make(map[string]classStyle, len(chroma.StandardTypes))
	for tt, class := range chroma.StandardTypes {
		if class == "" || tt < 0 {
			continue
		}
		entry := style.Get(tt)
		if !entry.Colour.IsSet() {
			continue
		}
		out[class] = classStyle{
			Colour: entry.Colour.String(),
			Bold:   entry.Bold == chroma.Yes,
			Italic: entry.Italic == chroma.Yes,
		}
	}
	return out
}

// Class returns the style of a markup class, falling back to plain text.
func (p ThemePalette) Class(class string) classStyle {
	if cs, ok := p.classes[class]; ok {
		return cs
	}
	return classStyle{Colour: p.Text}
}

func normalizeThemeName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	switch n {
	case "solarized":
		return "solarized-dark"
	case "one-dark":
		return "onedark"
	default:
		return n
	}
}

func pickForeground(style *chroma.Style, fallback string, types ...chroma.TokenType) string {
	for _, tt := range types {
		entry := style.Get(tt)
		if entry.Colour.IsSet() {
			return entry.Colour.String()
		}
	}
	return fallback
}

func pickBackground(style *chroma.Style, fallback string, types ...chroma.TokenType) string {
	for _, tt := range types {
		entry := style.Get(tt)
		if entry.Background.IsSet() {
			return entry.Background.String()
		}
	}
	return fallback
}

func topThemeHints(all []string) []string {
	wanted := []string{"nord", "dracula", "monokai", "github", "github-dark", "solarized-dark", "solarized-light", "gruvbox", "onedark"}
	set := map[string]bool{}
	for _, n := range all {
		set[n] = true
	}
	out := make([]string, 0, len(wanted))
	for _, name := range wanted {
		if set[name] {
			out = append(out, name)
		}
	}
	if len(out) == 0 {
		return all[:min(8, len(all))]
	}
	return out
}

func autoDelta(bg string, darkDelta int, lightDelta int) int {
	r, g, b, ok := parseHexRGB(bg)
	if !ok {
		return darkDelta
	}
	l := 0.2126*float64(r) + 0.7152*float64(g) + 0.0722*float64(b)
	if l < 128 {
		return darkDelta
	}
	return lightDelta
}

func adjustTone(hex string, delta int) string {
	r, g, b, ok := parseHexRGB(hex)
	if !ok {
		return hex
	}
	return fmt.Sprintf("#%02X%02X%02X", clamp(r+delta, 0, 255), clamp(g+delta, 0, 255), clamp(b+delta, 0, 255))
}

func parseHexRGB(hex string) (int, int, int, bool) {
	h := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(h) != 6 {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return int((v >> 16) & 0xFF), int((v >> 8) & 0xFF), int(v & 0xFF), true
}

func mustDefaultTheme() ThemePalette {
	p, err := LoadThemePalette("nord")
	if err == nil {
		return p
	}
	return ThemePalette{
		Name:        "fallback",
		Text:        "#D8DEE9",
		Background:  "#2E3440",
		InputBG:     "#3B4252",
		Muted:       "#4C566A",
		Dim:         "#4C566A",
		Header:      "#8FBCBB",
		Accent:      "#88C0D0",
		Error:       "#BF616A",
		HighlightFG: "#000000",
		HighlightBG: "#FFFF00",
		classes: map[string]classStyle{
			"k":  {Colour: "#81A1C1", Bold: true},
			"kt": {Colour: "#8FBCBB"},
			"nf": {Colour: "#88C0D0"},
			"s":  {Colour: "#A3BE8C"},
			"m":  {Colour: "#B48EAD"},
			"c":  {Colour: "#616E88", Italic: true},
			"o":  {Colour: "#81A1C1"},
		},
	}
}
