package document

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"findmark/internal/find"
	"findmark/internal/highlighter"
	"findmark/internal/lang"
	"findmark/internal/markup"
	"findmark/internal/readfile"
	"findmark/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numberedLines(n int) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("line %d\t<%d> & more", i, i)
	}
	return lines
}

func TestOpenDetectsLanguage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tool")
	require.NoError(t, os.WriteFile(path, []byte("#!/usr/bin/env python3\r\nprint('x')\r\n"), 0o644))

	d, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, lang.Python, d.Lang())
	assert.Equal(t, []string{"#!/usr/bin/env python3", "print('x')", ""}, d.Lines())

	_, err = Open(filepath.Join(dir, "missing.go"))
	assert.Error(t, err)
}

func TestViewportAndScrolling(t *testing.T) {
	d := New("x.txt", numberedLines(10), WithHeight(4))
	assert.Equal(t, session.LineRange{First: 0, Last: 3}, d.VisibleLineRange())

	var events []session.Event
	unsubscribe := d.Subscribe(func(ev session.Event) { events = append(events, ev) })

	assert.True(t, d.ScrollBy(3))
	assert.Equal(t, session.LineRange{First: 3, Last: 6}, d.VisibleLineRange())
	assert.True(t, d.ScrollTo(100))
	assert.Equal(t, session.LineRange{First: 6, Last: 9}, d.VisibleLineRange())
	assert.False(t, d.ScrollBy(1), "already at the bottom")
	assert.True(t, d.Resize(20))
	assert.Equal(t, session.LineRange{First: 0, Last: 9}, d.VisibleLineRange())
	assert.Equal(t, []session.Event{session.EventScrolled, session.EventScrolled, session.EventScrolled}, events)

	unsubscribe()
	d.ScrollTo(0)
	d.Resize(2)
	assert.Len(t, events, 3)
}

func TestEmptyViewport(t *testing.T) {
	d := New("x.txt", nil)
	assert.True(t, d.VisibleLineRange().Empty())
	assert.Equal(t, "", d.RenderedLineMarkup(0))
	assert.Equal(t, "", d.RawLineText(-1))
}

func TestOverridesDroppedWhenScrolledAway(t *testing.T) {
	d := New("x.txt", numberedLines(10), WithHeight(3))
	base := d.RenderedLineMarkup(1)
	assert.Equal(t, "line 1    &lt;1&gt; &amp; more", base)

	d.SetRenderedLineMarkup(1, "changed")
	assert.Equal(t, "changed", d.RenderedLineMarkup(1))
	assert.Equal(t, base, d.BaseMarkup(1))

	d.ScrollBy(1)
	assert.Equal(t, "changed", d.RenderedLineMarkup(1), "line 1 still visible")
	d.ScrollBy(1)
	assert.Equal(t, base, d.RenderedLineMarkup(1))
}

func TestReplaceEmitsDocumentChanged(t *testing.T) {
	d := New("x.txt", numberedLines(3))
	d.SetRenderedLineMarkup(0, "changed")

	var got []session.Event
	d.Subscribe(func(ev session.Event) { got = append(got, ev) })
	d.Replace([]string{"new"})

	assert.Equal(t, []session.Event{session.EventDocumentChanged}, got)
	assert.Equal(t, 1, d.Len())
	assert.Equal(t, "new", d.RenderedLineMarkup(0))
}

func TestReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("one\n"), 0o644))
	d, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("two\nthree"), 0o644))
	require.NoError(t, d.Reload())
	assert.Equal(t, []string{"two", "three"}, d.Lines())
}

func TestOpenAndReloadHonourLimits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("one\ntwo\nthree"), 0o644))

	_, err := Open(path, WithLimits(readfile.Limits{MaxLines: 2}))
	require.ErrorIs(t, err, readfile.ErrTooLarge)

	d, err := Open(path, WithLimits(readfile.Limits{MaxLines: 3}))
	require.NoError(t, err)
	assert.Equal(t, 3, d.Len())

	require.NoError(t, os.WriteFile(path, []byte("one\ntwo\nthree\nfour"), 0o644))
	require.ErrorIs(t, d.Reload(), readfile.ErrTooLarge)
	assert.Equal(t, []string{"one", "two", "three"}, d.Lines(), "a failed reload keeps the old content")
}

type countingRenderer struct {
	rendered   map[int]int
	prefetched []int
}

func (r *countingRenderer) Render(lines []string) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = r.RenderLine(i, line)
	}
	return out
}

func (r *countingRenderer) RenderLine(index int, line string) string {
	r.rendered[index]++
	return markup.PlainLine(line)
}

func (r *countingRenderer) Prefetch(index int, line string) {
	r.prefetched = append(r.prefetched, index)
}

func TestLineRendererIsLazyAndPrefetches(t *testing.T) {
	r := &countingRenderer{rendered: map[int]int{}}
	d := New("x.txt", numberedLines(10), WithRenderer(r), WithHeight(3), WithPrefetch(2))
	assert.Empty(t, r.rendered)
	assert.Equal(t, []int{3, 4}, r.prefetched)

	d.RenderedLineMarkup(0)
	d.RenderedLineMarkup(0)
	assert.Equal(t, map[int]int{0: 1}, r.rendered)

	d.ScrollTo(6)
	assert.Equal(t, []int{3, 4, 9}, r.prefetched)
}

func TestSessionOnDocument(t *testing.T) {
	src := []string{
		"package main",
		"",
		"func main() {",
		"\tif a < b && c > 0 {",
		"\t\tprintln(\"main\")",
		"\t}",
		"}",
	}
	h := highlighter.New(highlighter.Config{CacheSize: 64})
	defer h.Close()

	for _, r := range []markup.Renderer{
		markup.Plain{},
		markup.NewChroma(lang.Go, "main.go"),
		&markup.TreeSitter{H: h, Lang: lang.Go},
	} {
		focused := 0
		d := New("main.go", src, WithRenderer(r), WithHeight(4), WithFocusHook(func() { focused++ }))
		before := make([]string, d.Len())
		for i := range before {
			before[i] = d.RenderedLineMarkup(i)
		}

		s := session.New(d, session.WithMarkers(find.Markers{Start: "<m>", End: "</m>"}))
		s.Start()
		require.NoError(t, s.ApplyHighlights("main"))
		assert.Equal(t, session.Stats{Lines: 2, Matches: 2}, s.Stats())
		assert.Equal(t, "package main", markup.Text(find.StripMarkers(d.RenderedLineMarkup(0), s.Markers())))
		assert.Contains(t, d.RenderedLineMarkup(0), "<m>main</m>")

		require.NoError(t, s.ApplyHighlights("< b &&"))
		assert.Contains(t, d.RenderedLineMarkup(3), "<m>")
		assert.Equal(t, "    if a < b && c > 0 {", markup.Text(find.StripMarkers(d.RenderedLineMarkup(3), s.Markers())))

		require.NoError(t, s.ApplyHighlights("main"))
		d.ScrollTo(3)
		assert.Equal(t, before[0], d.RenderedLineMarkup(0))
		assert.Contains(t, d.RenderedLineMarkup(4), "<m>main</m>")

		d.Replace(src)
		assert.Equal(t, session.Idle, s.State())
		assert.Equal(t, 1, focused)
		for i := range before {
			assert.Equal(t, before[i], d.RenderedLineMarkup(i))
		}
	}
}

func TestOpenBuildsRendererForDetectedLanguage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main.go")
	require.NoError(t, os.WriteFile(path, []byte("package main\n"), 0o644))

	var gotLang lang.ID
	d, err := Open(path, WithRendererFactory(func(id lang.ID, p string) markup.Renderer {
		gotLang = id
		return markup.NewChroma(id, p)
	}))
	require.NoError(t, err)
	assert.Equal(t, lang.Go, gotLang)
	assert.Contains(t, d.RenderedLineMarkup(0), `<span class="kn">package</span>`)

	d, err = Open(path, WithLanguage(lang.Plain), WithRendererFactory(func(id lang.ID, p string) markup.Renderer {
		gotLang = id
		return markup.Plain{}
	}))
	require.NoError(t, err)
	assert.Equal(t, lang.Plain, gotLang, "explicit language wins over detection")
	assert.Equal(t, "package main", d.RenderedLineMarkup(0))
}
