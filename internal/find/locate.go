package find

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MatchRecord is a single occurrence of a pattern in raw text.
type MatchRecord struct {
	Line          int
	RawOffset     int
	RenderedWidth int
}

// LineMatches groups every match on one line. Offsets are strictly
// increasing; Lengths[i] is the rendered width of match i.
type LineMatches struct {
	Line    int
	Offsets []int
	Lengths []int
	Text    string
}

func (lm LineMatches) Records() []MatchRecord {
	out := make([]MatchRecord, len(lm.Offsets))
	for i := range lm.Offsets {
		out[i] = MatchRecord{Line: lm.Line, RawOffset: lm.Offsets[i], RenderedWidth: lm.Lengths[i]}
	}
	return out
}

// Clone returns a copy that shares no slices with lm.
func (lm LineMatches) Clone() LineMatches {
	return LineMatches{
		Line:    lm.Line,
		Offsets: append([]int(nil), lm.Offsets...),
		Lengths: append([]int(nil), lm.Lengths...),
		Text:    lm.Text,
	}
}

// EntityWidth reports how many runes r occupies once HTML-escaped.
func EntityWidth(r rune) int {
	switch r {
	case '<', '>':
		return 4
	case '&':
		return 5
	default:
		return 1
	}
}

// MatchWidth is the escaped width of s.
func MatchWidth(s string) int {
	total := 0
	for _, r := range s {
		total += EntityWidth(r)
	}
	return total
}

// Locate scans the given lines, joined as "line\n" each, for p. first is
// the document line number of lines[0]. It returns nil when nothing matches.
// Zero-length matches are skipped and a match running past the end of its
// line is clipped there.
func Locate(p *Pattern, first int, lines []string) ([]LineMatches, error) {
	if p == nil || len(lines) == 0 {
		return nil, nil
	}

	var sb strings.Builder
	for _, line := range lines {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	contents := sb.String()

	m, err := p.re.FindStringMatch(contents)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", p, err)
	}
	if m == nil {
		return nil, nil
	}

	// lineStarts[i] is the rune offset of lines[i] within contents.
	lineStarts := make([]int, len(lines))
	pos := 0
	for i, line := range lines {
		lineStarts[i] = pos
		pos += utf8.RuneCountInString(line) + 1
	}

	var results []LineMatches
	lineIdx := 0
	for ; m != nil && err == nil; m, err = p.re.FindNextMatch(m) {
		if m.Length == 0 {
			continue
		}
		for lineIdx+1 < len(lineStarts) && lineStarts[lineIdx+1] <= m.Index {
			lineIdx++
		}

		text := m.String()
		if nl := strings.IndexByte(text, '\n'); nl >= 0 {
			text = text[:nl]
		}
		if text == "" {
			continue
		}

		lineNum := first + lineIdx
		if len(results) == 0 || results[len(results)-1].Line != lineNum {
			results = append(results, LineMatches{Line: lineNum, Text: lines[lineIdx]})
		}
		cur := &results[len(results)-1]
		cur.Offsets = append(cur.Offsets, m.Index-lineStarts[lineIdx])
		cur.Lengths = append(cur.Lengths, MatchWidth(text))
	}
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", p, err)
	}
	return results, nil
}
