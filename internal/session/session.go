package session

import (
	"errors"
	"io"
	"log/slog"
	"strings"

	"findmark/internal/find"
)

type State int

const (
	Idle State = iota
	Searching
)

func (s State) String() string {
	if s == Searching {
		return "searching"
	}
	return "idle"
}

type Key int

const (
	KeyEnter Key = iota
	KeyEscape
)

// Stats describes the most recent highlight pass.
type Stats struct {
	Lines   int
	Matches int
	Skipped int
}

type appliedLine struct {
	original string
	spliced  string
}

// Session owns the highlight lifecycle for one surface. It is not safe for
// concurrent use; every method runs to completion on the caller's goroutine.
type Session struct {
	surface Surface
	markers find.Markers
	tabs    find.TabMode
	logger  *slog.Logger

	state       State
	query       string
	pattern     *find.Pattern
	applied     map[int]appliedLine
	unsubscribe func()
	stats       Stats
}

type Option func(*Session)

func WithMarkers(m find.Markers) Option {
	return func(s *Session) {
		s.markers = m
	}
}

func WithTabMode(mode find.TabMode) Option {
	return func(s *Session) {
		s.tabs = mode
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

func New(surface Surface, opts ...Option) *Session {
	s := &Session{
		surface: surface,
		markers: find.DefaultMarkers(),
		tabs:    find.TabsPositional,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		applied: make(map[int]appliedLine),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) State() State {
	return s.state
}

func (s *Session) Query() string {
	return s.query
}

func (s *Session) Stats() Stats {
	return s.stats
}

func (s *Session) Markers() find.Markers {
	return s.markers
}

// Start opens a search: the session begins listening for viewport changes.
func (s *Session) Start() {
	if s.state == Searching {
		return
	}
	s.state = Searching
	s.unsubscribe = s.surface.Subscribe(s.handleEvent)
	s.logger.Debug("search started")
}

func (s *Session) handleEvent(ev Event) {
	switch ev {
	case EventScrolled:
		s.Refresh()
	case EventDocumentChanged:
		s.Close()
	}
}

// ApplyHighlights replaces the current highlights with matches for query
// in the visible lines. A blank query only clears. An invalid pattern keeps
// the last valid pattern's highlights (or none, for a fresh search) and is
// returned so the host can show it.
func (s *Session) ApplyHighlights(query string) error {
	s.query = query
	p, err := find.Compile(query)
	switch {
	case errors.Is(err, find.ErrEmptyQuery):
		s.pattern = nil
		s.ClearHighlights()
		return nil
	case err != nil:
		s.logger.Debug("invalid pattern", "query", query, "err", err)
		if s.pattern == nil {
			s.ClearHighlights()
		} else {
			s.highlight(s.pattern)
		}
		return err
	}
	s.pattern = p
	s.highlight(p)
	return nil
}

// Refresh recomputes highlights for the current viewport using the last
// valid pattern.
func (s *Session) Refresh() {
	if s.pattern == nil {
		s.ClearHighlights()
		return
	}
	s.highlight(s.pattern)
}

// ClearHighlights puts back the markup of every line this session changed.
// A line the host has re-rendered since is left alone, apart from removing
// any stray markers.
func (s *Session) ClearHighlights() {
	for line, a := range s.applied {
		current := s.surface.RenderedLineMarkup(line)
		switch {
		case current == a.spliced:
			s.surface.SetRenderedLineMarkup(line, a.original)
		case strings.Contains(current, s.markers.Start):
			s.surface.SetRenderedLineMarkup(line, find.StripMarkers(current, s.markers))
		}
	}
	clear(s.applied)
	s.stats = Stats{}
}

func (s *Session) highlight(p *find.Pattern) {
	s.ClearHighlights()

	vis := s.surface.VisibleLineRange()
	if vis.Empty() {
		return
	}
	lines := make([]string, 0, vis.Last-vis.First+1)
	for i := vis.First; i <= vis.Last; i++ {
		lines = append(lines, s.surface.RawLineText(i))
	}

	found, err := find.Locate(p, vis.First, lines)
	if err != nil {
		s.logger.Warn("match scan failed", "pattern", p.String(), "err", err)
		return
	}

	var stats Stats
	for _, lm := range found {
		original := s.surface.RenderedLineMarkup(lm.Line)
		spliced, err := find.Splice(original, find.Reconcile(lm, s.tabs), s.markers)
		if err != nil {
			stats.Skipped++
			s.logger.Warn("line left unhighlighted", "line", lm.Line, "err", err)
			continue
		}
		s.surface.SetRenderedLineMarkup(lm.Line, spliced)
		s.applied[lm.Line] = appliedLine{original: original, spliced: spliced}
		stats.Lines++
		stats.Matches += len(lm.Offsets)
	}
	s.stats = stats
	s.logger.Debug("highlighted", "pattern", p.String(), "first", vis.First, "last", vis.Last,
		"lines", stats.Lines, "matches", stats.Matches, "skipped", stats.Skipped)
}

// HandleKey closes the search on Enter or Escape.
func (s *Session) HandleKey(k Key) {
	switch k {
	case KeyEnter, KeyEscape:
		s.Close()
	}
}

// Blur closes the search when the query input loses focus.
func (s *Session) Blur() {
	s.Close()
}

// Close stops listening, removes all highlights, hands focus back to the
// surface and returns to Idle.
func (s *Session) Close() {
	if s.state == Idle {
		return
	}
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	s.ClearHighlights()
	s.pattern = nil
	s.query = ""
	s.state = Idle
	s.surface.Focus()
	s.logger.Debug("search closed")
}
