package find

import (
	"fmt"
	"slices"
	"strings"
)

// Splice wraps every match of lm in m's markers inside markup. lm must
// already be reconciled to rendered coordinates. A highlight that would
// straddle an existing tag is closed before it and reopened after it, so
// markers and tags stay properly nested. On error the original markup is
// returned together with an ErrInconsistentMarkup.
func Splice(markup string, lm LineMatches, m Markers) (string, error) {
	if len(lm.Offsets) == 0 {
		return markup, nil
	}
	if len(lm.Offsets) != len(lm.Lengths) {
		return markup, fmt.Errorf("%w: %d offsets, %d lengths", ErrInconsistentMarkup, len(lm.Offsets), len(lm.Lengths))
	}

	tags, err := ScanTags(markup)
	if err != nil {
		return markup, err
	}

	s := &splicer{
		text:  []rune(markup),
		offs:  append([]int(nil), lm.Offsets...),
		lens:  append([]int(nil), lm.Lengths...),
		tags:  tags,
		start: []rune(m.Start),
		end:   []rune(m.End),
	}
	if err := s.run(); err != nil {
		return markup, err
	}
	return string(s.text), nil
}

type splicer struct {
	text  []rune
	offs  []int
	lens  []int
	tags  []TagBoundary
	start []rune
	end   []rune
}

func (s *splicer) run() error {
	ks, ke := len(s.start), len(s.end)
	for _, l := range s.lens {
		if l <= 0 {
			return fmt.Errorf("%w: non-positive match length", ErrInconsistentMarkup)
		}
	}

	t, m := 0, 0
	for t < len(s.tags) && m < len(s.offs) {
		if s.tags[t].Start <= s.offs[m] {
			// Tag lies before the match and stays where it is.
			shift(s.offs, m, s.tags[t].Width)
			t++
			continue
		}

		if err := s.insert(s.offs[m], s.start); err != nil {
			return err
		}
		shift(s.offs, m, ks)
		s.shiftTags(t, ks)

		for t < len(s.tags) && s.offs[m]+s.lens[m] > s.tags[t].Start {
			if err := s.insert(s.tags[t].Start, s.end); err != nil {
				return err
			}
			shift(s.offs, m+1, ke)
			s.shiftTags(t, ke)
			s.lens[m] += ke

			// Step over the tag and any tags directly after it.
			width := s.tags[t].Width
			for t+1 < len(s.tags) && s.tags[t+1].Start == s.tags[t].End() {
				t++
				width += s.tags[t].Width
			}
			if err := s.insert(s.tags[t].End(), s.start); err != nil {
				return err
			}
			shift(s.offs, m+1, width+ks)
			s.shiftTags(t+1, ks)
			s.lens[m] += width + ks
			t++
		}

		if err := s.insert(s.offs[m]+s.lens[m], s.end); err != nil {
			return err
		}
		shift(s.offs, m+1, ke)
		s.shiftTags(t, ke)
		m++
	}

	// No tags left: the remaining matches are contiguous text.
	for ; m < len(s.offs); m++ {
		if err := s.insert(s.offs[m], s.start); err != nil {
			return err
		}
		if err := s.insert(s.offs[m]+ks+s.lens[m], s.end); err != nil {
			return err
		}
		shift(s.offs, m+1, ks+ke)
	}
	return nil
}

func (s *splicer) insert(at int, marker []rune) error {
	if at < 0 || at > len(s.text) {
		return fmt.Errorf("%w: insertion at %d outside %d runes", ErrInconsistentMarkup, at, len(s.text))
	}
	for _, tag := range s.tags {
		if tag.Start >= at {
			break
		}
		if at < tag.End() {
			return fmt.Errorf("%w: insertion at %d inside tag at %d", ErrInconsistentMarkup, at, tag.Start)
		}
	}
	s.text = slices.Insert(s.text, at, marker...)
	return nil
}

func (s *splicer) shiftTags(from int, by int) {
	for i := from; i < len(s.tags); i++ {
		s.tags[i].Start += by
	}
}

func shift(xs []int, from int, by int) {
	for i := from; i < len(xs); i++ {
		xs[i] += by
	}
}

// StripMarkers removes every occurrence of m's markers from markup.
func StripMarkers(markup string, m Markers) string {
	if m.Start != "" {
		markup = strings.ReplaceAll(markup, m.Start, "")
	}
	if m.End != "" {
		markup = strings.ReplaceAll(markup, m.End, "")
	}
	return markup
}
