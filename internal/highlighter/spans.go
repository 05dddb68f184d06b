package highlighter

import (
	"cmp"
	"slices"
	"unicode/utf8"
)

func plainSpans(text string) []Span {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return nil
	}
	return []Span{{Start: 0, End: n, Cat: TokenPlain}}
}

// buildMergedSpans converts byte-ranged leaf spans of text into a gapless,
// non-overlapping rune-ranged cover of the whole line.
func buildMergedSpans(text string, raw []rawSpan) []Span {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return nil
	}

	spans := make([]Span, 0, len(raw)+2)
	for _, rs := range raw {
		start := byteToRuneIndex(text, rs.Start)
		end := byteToRuneIndex(text, rs.End)
		if end <= start {
			continue
		}
		spans = append(spans, Span{Start: start, End: end, Cat: rs.Cat})
	}
	return normalizeSpans(spans, n)
}

func normalizeSpans(spans []Span, runeLen int) []Span {
	if runeLen <= 0 {
		return nil
	}

	clean := make([]Span, 0, len(spans))
	for _, span := range spans {
		span.Start = max(span.Start, 0)
		span.End = min(span.End, runeLen)
		if span.End > span.Start {
			clean = append(clean, span)
		}
	}
	slices.SortStableFunc(clean, func(a, b Span) int {
		if c := cmp.Compare(a.Start, b.Start); c != 0 {
			return c
		}
		return cmp.Compare(a.End, b.End)
	})

	out := make([]Span, 0, len(clean)+2)
	cursor := 0
	for _, span := range clean {
		start := max(span.Start, cursor)
		if span.End <= start {
			continue
		}
		out = appendMergedSpan(out, cursor, start, TokenPlain)
		out = appendMergedSpan(out, start, span.End, span.Cat)
		cursor = span.End
	}
	return appendMergedSpan(out, cursor, runeLen, TokenPlain)
}

func appendMergedSpan(spans []Span, start int, end int, cat TokenCategory) []Span {
	if end <= start {
		return spans
	}
	if len(spans) > 0 {
		last := &spans[len(spans)-1]
		if last.End == start && last.Cat == cat {
			last.End = end
			return spans
		}
	}
	return append(spans, Span{Start: start, End: end, Cat: cat})
}

func byteToRuneIndex(s string, b int) int {
	if b <= 0 {
		return 0
	}
	if b >= len(s) {
		return utf8.RuneCountInString(s)
	}
	return utf8.RuneCountInString(s[:b])
}
