// Package document holds a loaded file, its rendered markup and a
// viewport. It is the in-process surface a highlight session works on.
package document

import (
	"fmt"
	"io"
	"log/slog"

	"findmark/internal/lang"
	"findmark/internal/markup"
	"findmark/internal/readfile"
	"findmark/internal/session"
)

type Option func(*Document)

func WithRenderer(r markup.Renderer) Option {
	return func(d *Document) {
		if r != nil {
			d.renderer = r
		}
	}
}

// WithRendererFactory builds the renderer once the language is known.
func WithRendererFactory(fn func(id lang.ID, path string) markup.Renderer) Option {
	return func(d *Document) {
		d.rendererFor = fn
	}
}

func WithLanguage(id lang.ID) Option {
	return func(d *Document) {
		d.lang = id
	}
}

// WithHeight sets the initial number of visible lines.
func WithHeight(n int) Option {
	return func(d *Document) {
		d.height = max(n, 0)
	}
}

// WithPrefetch sets how many lines below the viewport are prefetched when
// the renderer supports it.
func WithPrefetch(n int) Option {
	return func(d *Document) {
		d.prefetch = max(n, 0)
	}
}

// WithLimits bounds the files Open and Reload accept.
func WithLimits(l readfile.Limits) Option {
	return func(d *Document) {
		d.limits = l
	}
}

func WithFocusHook(fn func()) Option {
	return func(d *Document) {
		d.onFocus = fn
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(d *Document) {
		if l != nil {
			d.logger = l
		}
	}
}

// Document is not safe for concurrent use.
type Document struct {
	path     string
	lang     lang.ID
	lines    []string
	renderer markup.Renderer
	logger   *slog.Logger

	rendererFor func(id lang.ID, path string) markup.Renderer

	base      []string
	rendered  []bool
	overrides map[int]string

	first    int
	height   int
	prefetch int
	limits   readfile.Limits

	listeners map[int]func(session.Event)
	nextID    int
	onFocus   func()
}

var _ session.Surface = (*Document)(nil)

// Open reads path and detects its language from the name and shebang.
// Files over the configured limits fail with readfile.ErrTooLarge.
func Open(path string, opts ...Option) (*Document, error) {
	limits := &Document{limits: readfile.DefaultLimits}
	for _, opt := range opts {
		opt(limits)
	}
	lines, err := readfile.ReadLines(path, limits.limits)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	first := ""
	if len(lines) > 0 {
		first = lines[0]
	}
	opts = append([]Option{WithLanguage(lang.DetectWithShebang(path, first))}, opts...)
	return New(path, lines, opts...), nil
}

func New(path string, lines []string, opts ...Option) *Document {
	d := &Document{
		path:      path,
		lang:      lang.Plain,
		renderer:  markup.Plain{},
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		overrides: make(map[int]string),
		height:    len(lines),
		prefetch:  0,
		limits:    readfile.DefaultLimits,
		listeners: make(map[int]func(session.Event)),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.rendererFor != nil {
		if r := d.rendererFor(d.lang, path); r != nil {
			d.renderer = r
		}
	}
	d.load(lines)
	return d
}

func (d *Document) load(lines []string) {
	d.lines = lines
	d.overrides = make(map[int]string)
	d.rendered = make([]bool, len(lines))
	if _, ok := d.renderer.(markup.LineRenderer); ok {
		d.base = make([]string, len(lines))
	} else {
		d.base = d.renderer.Render(lines)
		for i := range d.rendered {
			d.rendered[i] = true
		}
	}
	d.first = d.clampFirst(d.first)
	d.prefetchBelow()
}

func (d *Document) Path() string  { return d.path }
func (d *Document) Lang() lang.ID { return d.lang }
func (d *Document) Len() int      { return len(d.lines) }
func (d *Document) First() int    { return d.first }
func (d *Document) Height() int   { return d.height }

func (d *Document) Lines() []string {
	return d.lines
}

func (d *Document) VisibleLineRange() session.LineRange {
	last := min(d.first+d.height, len(d.lines)) - 1
	if last < d.first {
		return session.LineRange{First: d.first, Last: d.first - 1}
	}
	return session.LineRange{First: d.first, Last: last}
}

func (d *Document) RawLineText(line int) string {
	if line < 0 || line >= len(d.lines) {
		return ""
	}
	return d.lines[line]
}

// RenderedLineMarkup returns the current markup of line: a value set by
// SetRenderedLineMarkup if any, else the engine's rendering.
func (d *Document) RenderedLineMarkup(line int) string {
	if line < 0 || line >= len(d.lines) {
		return ""
	}
	if m, ok := d.overrides[line]; ok {
		return m
	}
	return d.baseMarkup(line)
}

// BaseMarkup returns the engine's rendering of line, ignoring overrides.
func (d *Document) BaseMarkup(line int) string {
	if line < 0 || line >= len(d.lines) {
		return ""
	}
	return d.baseMarkup(line)
}

func (d *Document) baseMarkup(line int) string {
	if !d.rendered[line] {
		lr := d.renderer.(markup.LineRenderer)
		d.base[line] = lr.RenderLine(line, d.lines[line])
		d.rendered[line] = true
	}
	return d.base[line]
}

func (d *Document) SetRenderedLineMarkup(line int, m string) {
	if line < 0 || line >= len(d.lines) {
		return
	}
	if m == d.baseMarkup(line) {
		delete(d.overrides, line)
		return
	}
	d.overrides[line] = m
}

func (d *Document) Focus() {
	if d.onFocus != nil {
		d.onFocus()
	}
}

func (d *Document) Subscribe(fn func(session.Event)) func() {
	id := d.nextID
	d.nextID++
	d.listeners[id] = fn
	return func() {
		delete(d.listeners, id)
	}
}

func (d *Document) emit(ev session.Event) {
	fns := make([]func(session.Event), 0, len(d.listeners))
	for id := 0; id < d.nextID; id++ {
		if fn, ok := d.listeners[id]; ok {
			fns = append(fns, fn)
		}
	}
	d.logger.Debug("document event", "event", ev.String(), "listeners", len(fns))
	for _, fn := range fns {
		fn(ev)
	}
}

func (d *Document) clampFirst(first int) int {
	maxFirst := max(len(d.lines)-d.height, 0)
	return min(max(first, 0), maxFirst)
}

// ScrollTo moves the viewport so first is the top line. It reports whether
// the viewport moved.
func (d *Document) ScrollTo(first int) bool {
	first = d.clampFirst(first)
	if first == d.first {
		return false
	}
	d.first = first
	d.viewportChanged()
	return true
}

func (d *Document) ScrollBy(delta int) bool {
	return d.ScrollTo(d.first + delta)
}

// Resize changes the number of visible lines.
func (d *Document) Resize(height int) bool {
	height = max(height, 0)
	if height == d.height {
		return false
	}
	d.height = height
	d.first = d.clampFirst(d.first)
	d.viewportChanged()
	return true
}

// viewportChanged forgets the markup of lines that left the viewport, so
// they come back freshly rendered, then notifies subscribers.
func (d *Document) viewportChanged() {
	vis := d.VisibleLineRange()
	for line := range d.overrides {
		if line < vis.First || line > vis.Last {
			delete(d.overrides, line)
		}
	}
	d.prefetchBelow()
	d.emit(session.EventScrolled)
}

func (d *Document) prefetchBelow() {
	lr, ok := d.renderer.(markup.LineRenderer)
	if !ok || d.prefetch == 0 {
		return
	}
	start := d.first + d.height
	end := min(start+d.prefetch, len(d.lines))
	for i := start; i < end; i++ {
		if !d.rendered[i] {
			lr.Prefetch(i, d.lines[i])
		}
	}
}

// Replace swaps the document content. Overrides are dropped and
// subscribers see EventDocumentChanged.
func (d *Document) Replace(lines []string) {
	d.load(lines)
	d.emit(session.EventDocumentChanged)
}

// Reload re-reads the document from disk.
func (d *Document) Reload() error {
	lines, err := readfile.ReadLines(d.path, d.limits)
	if err != nil {
		return fmt.Errorf("reload %s: %w", d.path, err)
	}
	d.Replace(lines)
	return nil
}
