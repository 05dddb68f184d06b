package session

// LineRange is an inclusive range of 0-based line numbers.
type LineRange struct {
	First int
	Last  int
}

func (r LineRange) Empty() bool {
	return r.Last < r.First
}

type Event int

const (
	EventScrolled Event = iota
	EventDocumentChanged
)

func (e Event) String() string {
	switch e {
	case EventScrolled:
		return "scrolled"
	case EventDocumentChanged:
		return "document-changed"
	default:
		return "unknown"
	}
}

// Surface is the text-editing host a Session highlights. It supplies raw
// line text and the rendered markup for each visible line, accepts
// replacement markup, and notifies subscribers of viewport changes.
type Surface interface {
	VisibleLineRange() LineRange
	RawLineText(line int) string
	RenderedLineMarkup(line int) string
	SetRenderedLineMarkup(line int, markup string)
	Focus()
	Subscribe(fn func(Event)) (unsubscribe func())
}
