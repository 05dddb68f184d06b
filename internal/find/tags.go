package find

import (
	"fmt"
	"unicode/utf8"
)

// TagBoundary is one markup tag: its rune offset and rune width.
type TagBoundary struct {
	Start int
	Width int
}

// End is the offset just past the tag.
func (t TagBoundary) End() int {
	return t.Start + t.Width
}

// ScanTags finds every <...> tag in markup, in order. Text in rendered
// markup is escaped, so any '<' opens a tag; one without a matching '>' (or
// with nothing in between) makes the markup unusable.
func ScanTags(markup string) ([]TagBoundary, error) {
	var tags []TagBoundary
	pos := 0
	open := -1
	for _, r := range markup {
		switch {
		case open < 0 && r == '<':
			open = pos
		case open >= 0 && r == '>':
			if pos == open+1 {
				return nil, fmt.Errorf("%w: empty tag at %d", ErrInconsistentMarkup, open)
			}
			tags = append(tags, TagBoundary{Start: open, Width: pos - open + 1})
			open = -1
		}
		pos++
	}
	if open >= 0 {
		return nil, fmt.Errorf("%w: unterminated tag at %d", ErrInconsistentMarkup, open)
	}
	return tags, nil
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
