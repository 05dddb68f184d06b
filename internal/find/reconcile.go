package find

import "fmt"

// TabWidth is the number of columns a tab occupies in rendered markup.
const TabWidth = 4

// TabMode selects how tab expansion moves match offsets.
type TabMode int

const (
	// TabsPositional shifts an offset only for tabs before it and widens a
	// match for each tab inside it.
	TabsPositional TabMode = iota
	// TabsUniform shifts every offset on the line by the line's total tab
	// expansion, regardless of where the tabs are.
	TabsUniform
)

func ParseTabMode(v string) (TabMode, error) {
	switch v {
	case "", "positional":
		return TabsPositional, nil
	case "uniform":
		return TabsUniform, nil
	default:
		return 0, fmt.Errorf("invalid tab shift %q (use positional or uniform)", v)
	}
}

func (m TabMode) String() string {
	if m == TabsUniform {
		return "uniform"
	}
	return "positional"
}

// ShiftSpecial moves raw offsets past the extra width of every escaped
// character that precedes them. offsets must be sorted; the result is new.
func ShiftSpecial(offsets []int, line string) []int {
	out := append([]int(nil), offsets...)
	r := 0
	pos := 0
	shift := 0
	for _, ch := range line {
		if r >= len(out) {
			break
		}
		if w := EntityWidth(ch); w > 1 {
			for r < len(out) && out[r] <= pos {
				out[r] += shift
				r++
			}
			shift += w - 1
		}
		pos++
	}
	for ; r < len(out); r++ {
		out[r] += shift
	}
	return out
}

// ShiftTabs accounts for tab expansion. offsets are the raw positions so
// tabs can be compared against them; shifted is the table the tab shift is
// added to, typically ShiftSpecial's output.
func ShiftTabs(offsets, lengths, shifted []int, line string, mode TabMode) ([]int, []int) {
	outOffsets := append([]int(nil), shifted...)
	outLengths := append([]int(nil), lengths...)

	var tabs []int
	pos := 0
	for _, ch := range line {
		if ch == '\t' {
			tabs = append(tabs, pos)
		}
		pos++
	}
	if len(tabs) == 0 {
		return outOffsets, outLengths
	}

	extra := TabWidth - 1
	if mode == TabsUniform {
		for i := range outOffsets {
			outOffsets[i] += extra * len(tabs)
		}
		return outOffsets, outLengths
	}

	t := 0
	for i, off := range offsets {
		for t < len(tabs) && tabs[t] < off {
			t++
		}
		outOffsets[i] += extra * t
		end := off + rawLen(line, off, lengths[i])
		inside := 0
		for j := t; j < len(tabs) && tabs[j] < end; j++ {
			inside++
		}
		outLengths[i] += extra * inside
	}
	return outOffsets, outLengths
}

// rawLen recovers how many raw runes starting at off make up a match of the
// given escaped width.
func rawLen(line string, off int, width int) int {
	n := 0
	pos := 0
	for _, ch := range line {
		if pos >= off {
			if width <= 0 {
				break
			}
			width -= EntityWidth(ch)
			n++
		}
		pos++
	}
	return n
}

// Reconcile maps lm's raw offsets into rendered text coordinates (escaped,
// tabs expanded, tags not counted). lm is not modified.
func Reconcile(lm LineMatches, mode TabMode) LineMatches {
	shifted := ShiftSpecial(lm.Offsets, lm.Text)
	offsets, lengths := ShiftTabs(lm.Offsets, lm.Lengths, shifted, lm.Text, mode)
	return LineMatches{Line: lm.Line, Offsets: offsets, Lengths: lengths, Text: lm.Text}
}
