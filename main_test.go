package main

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"findmark/internal/config"
	"findmark/internal/find"
	"findmark/internal/session"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jessevdk/go-flags"
)

func TestBuildEditorCommandSupportsQuotedPathAndArgs(t *testing.T) {
	template := `"/Applications/Visual Studio Code.app/Contents/Resources/app/bin/code" -g "{target}" --reuse-window`
	name, args, err := buildEditorCommand(template, "/tmp/my file.go", 12, 4, "/tmp/my file.go:12:4")
	if err != nil {
		t.Fatalf("buildEditorCommand returned error: %v", err)
	}

	if name != "/Applications/Visual Studio Code.app/Contents/Resources/app/bin/code" {
		t.Fatalf("name = %q", name)
	}

	wantArgs := []string{"-g", "/tmp/my file.go:12:4", "--reuse-window"}
	if !reflect.DeepEqual(args, wantArgs) {
		t.Fatalf("args = %#v, want %#v", args, wantArgs)
	}
}

func TestBuildEditorCommandPreservesEmptyArgument(t *testing.T) {
	template := `cmd /C start "" "{file}"`
	name, args, err := buildEditorCommand(template, `C:\Program Files\Editor\file.go`, 8, 1, `C:\Program Files\Editor\file.go:8:1`)
	if err != nil {
		t.Fatalf("buildEditorCommand returned error: %v", err)
	}

	if name != "cmd" {
		t.Fatalf("name = %q, want cmd", name)
	}

	wantArgs := []string{"/C", "start", "", `C:\Program Files\Editor\file.go`}
	if !reflect.DeepEqual(args, wantArgs) {
		t.Fatalf("args = %#v, want %#v", args, wantArgs)
	}
}

func TestBuildEditorCommandRejectsUnclosedQuote(t *testing.T) {
	if _, _, err := buildEditorCommand(`code -g "{target}`, "file.go", 1, 1, "file.go:1:1"); err == nil {
		t.Fatalf("expected error for unclosed quote")
	}
}

func TestBuildEditorCommandKeepsBackslashes(t *testing.T) {
	name, args, err := buildEditorCommand(`C:\tools\code.exe -g {target}`, `C:\repo\file.go`, 3, 2, `C:\repo\file.go:3:2`)
	if err != nil {
		t.Fatalf("buildEditorCommand returned error: %v", err)
	}
	if name != `C:\tools\code.exe` {
		t.Fatalf("name = %q", name)
	}

	wantArgs := []string{"-g", `C:\repo\file.go:3:2`}
	if !reflect.DeepEqual(args, wantArgs) {
		t.Fatalf("args = %#v, want %#v", args, wantArgs)
	}
}

func TestBuildEditorCommandLineAndColumn(t *testing.T) {
	name, args, err := buildEditorCommand("vim +{line} '{file}'", "/tmp/a b.go", 7, 3, "")
	if err != nil {
		t.Fatalf("buildEditorCommand returned error: %v", err)
	}
	if name != "vim" || !reflect.DeepEqual(args, []string{"+7", "/tmp/a b.go"}) {
		t.Fatalf("got %q %#v", name, args)
	}
}

func TestIsTerminalEditor(t *testing.T) {
	for _, name := range []string{"vim", "/usr/bin/nvim", `C:\bin\hx.exe`, "nano"} {
		if !isTerminalEditor(name) {
			t.Fatalf("expected %q to be a terminal editor", name)
		}
	}
	for _, name := range []string{"code", "/usr/local/bin/zed", "subl"} {
		if isTerminalEditor(name) {
			t.Fatalf("did not expect %q to be a terminal editor", name)
		}
	}
}

func TestParseOptionsOverridesConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfgPath := filepath.Join(t.TempDir(), "findmark.yaml")
	if err := os.WriteFile(cfgPath, []byte("theme: dracula\ntab_shift: uniform\nprefetch: 5\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	opts, cfg, err := parseOptions([]string{
		"--config", cfgPath,
		"--tab-shift", "positional",
		"--workers", "0",
		"--mark-start", "<b>", "--mark-end", "</b>",
		"main.go",
	})
	if err != nil {
		t.Fatalf("parseOptions: %v", err)
	}
	if opts.Args.File != "main.go" {
		t.Fatalf("file = %q", opts.Args.File)
	}
	if cfg.Theme != "dracula" || cfg.Prefetch != 5 {
		t.Fatalf("config values lost: %+v", cfg)
	}
	if cfg.TabShift != "positional" || cfg.Workers != 0 {
		t.Fatalf("flags did not override config: %+v", cfg)
	}
	if cfg.Markers != (find.Markers{Start: "<b>", End: "</b>"}) {
		t.Fatalf("markers = %+v", cfg.Markers)
	}
}

func TestParseOptionsDefaultsWithoutConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	_, cfg, err := parseOptions([]string{"main.go"})
	if err != nil {
		t.Fatalf("parseOptions: %v", err)
	}
	if !reflect.DeepEqual(cfg, config.Default()) {
		t.Fatalf("cfg = %+v, want defaults", cfg)
	}
}

func TestParseOptionsErrors(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	tests := []struct {
		name string
		args []string
	}{
		{name: "missing file", args: nil},
		{name: "html without query", args: []string{"--html", "out.html", "main.go"}},
		{name: "bad engine", args: []string{"--engine", "vim", "main.go"}},
		{name: "bad marker", args: []string{"--mark-start", "[", "main.go"}},
		{name: "unknown flag", args: []string{"--bogus", "main.go"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := parseOptions(tc.args); err == nil {
				t.Fatalf("expected error for %v", tc.args)
			}
		})
	}

	_, _, err := parseOptions([]string{"--help"})
	var flagsErr *flags.Error
	if !errors.As(err, &flagsErr) || flagsErr.Type != flags.ErrHelp {
		t.Fatalf("expected help error, got %v", err)
	}
}

func TestRenderMarkupLine(t *testing.T) {
	markers := find.Markers{Start: "<m>", End: "</m>"}
	line := `<span class="k">if</span> a <m>&lt; b</m> &amp;&amp; <span class='s'>"x"</span>`

	if got := renderMarkupLine(line, 80, markers); got != `if a < b && "x"` {
		t.Fatalf("render = %q", got)
	}
	if got := renderMarkupLine(line, 6, markers); got != "if a <" {
		t.Fatalf("truncated render = %q", got)
	}
	if got := renderMarkupLine(line, 0, markers); got != "" {
		t.Fatalf("zero width render = %q", got)
	}
}

func TestTagClass(t *testing.T) {
	tests := map[string]string{
		`<span class="k">`:                "k",
		`<span class='nf  bold'>`:         "nf",
		`<span class=c1>`:                 "c1",
		`<mark style="x">`:                "",
		`<span data-x="1" class="kt">`:    "kt",
		`<span data-class="x" class="k">`: "k",
		`<span subclass="q" class="nf">`:  "nf",
		`<span class = "s">`:              "s",
		`<SPAN CLASS="kd">`:               "kd",
		`</span>`:                         "",
		`<br/>`:                           "",
	}
	for tag, want := range tests {
		if got := tagClass(tag); got != want {
			t.Fatalf("tagClass(%q) = %q, want %q", tag, got, want)
		}
	}
}

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.go")
	src := "package sample\n\nfunc foo() {\n\tif a < b && foo() {\n\t\treturn\n\t}\n}\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	return path
}

func TestRunQueryPrintsLocations(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	path := writeSample(t)

	var stdout, stderr bytes.Buffer
	if code := run([]string{"--query", "foo", path}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit %d: %s", code, stderr.String())
	}
	abs, _ := filepath.Abs(path)
	want := abs + ":3:6\n" + abs + ":4:14\n"
	if stdout.String() != want {
		t.Fatalf("stdout = %q, want %q", stdout.String(), want)
	}
}

func TestRunInvalidPattern(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	var stdout, stderr bytes.Buffer
	if code := run([]string{"--query", "/(/", writeSample(t)}, &stdout, &stderr); code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(stderr.String(), "invalid pattern") {
		t.Fatalf("stderr = %q", stderr.String())
	}
}

func TestRunWritesHTML(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	path := writeSample(t)
	out := filepath.Join(t.TempDir(), "out.html")

	for _, engine := range []string{"chroma", "treesitter", "plain"} {
		var stdout, stderr bytes.Buffer
		if code := run([]string{"--engine", engine, "--query", "< b &&", "--html", out, path}, &stdout, &stderr); code != 0 {
			t.Fatalf("%s: exit %d: %s", engine, code, stderr.String())
		}
		data, err := os.ReadFile(out)
		if err != nil {
			t.Fatalf("read html: %v", err)
		}
		page := string(data)
		wantMark := find.DefaultMarkers().Start
		if engine == "plain" {
			wantMark += "&lt; b &amp;&amp;" + find.DefaultMarkers().End
		}
		if !strings.Contains(page, wantMark) {
			t.Fatalf("%s: page missing highlight %q:\n%s", engine, wantMark, page)
		}
		if !strings.Contains(page, ".chroma") || !strings.Contains(page, "1 matches") {
			t.Fatalf("%s: page missing css or count:\n%s", engine, page)
		}
	}
}

func testApp(t *testing.T, path string) *app {
	t.Helper()
	opts := Options{}
	opts.Args.File = path
	cfg := config.Default()
	cfg.Workers = 0
	a, err := newApp(opts, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	t.Cleanup(a.close)
	return a
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m model, msg tea.Msg) model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(model)
}

func TestModelSearchFlow(t *testing.T) {
	a := testApp(t, writeSample(t))
	before := a.doc.RenderedLineMarkup(2)

	m := update(t, newModel(a), tea.WindowSizeMsg{Width: 80, Height: 12})
	m = update(t, m, keyRunes("/"))
	if !m.searching || m.sess.State() != session.Searching {
		t.Fatalf("expected search to start")
	}

	for _, r := range "foo" {
		m = update(t, m, keyRunes(string(r)))
	}
	if got := m.sess.Stats(); got.Matches != 2 || got.Lines != 2 {
		t.Fatalf("stats = %+v", got)
	}
	if !strings.Contains(a.doc.RenderedLineMarkup(2), find.DefaultMarkers().Start) {
		t.Fatalf("line 3 not highlighted: %q", a.doc.RenderedLineMarkup(2))
	}
	if !strings.Contains(m.View(), "2 matches on 2 lines") {
		t.Fatalf("footer missing stats:\n%s", m.View())
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.searching || m.sess.State() != session.Idle {
		t.Fatalf("expected escape to close search")
	}
	if got := a.doc.RenderedLineMarkup(2); got != before {
		t.Fatalf("markup not restored: %q want %q", got, before)
	}
}

func TestModelInvalidPatternShowsError(t *testing.T) {
	a := testApp(t, writeSample(t))
	m := update(t, newModel(a), tea.WindowSizeMsg{Width: 80, Height: 12})
	m = update(t, m, keyRunes("/"))
	for _, r := range "/(/" {
		m = update(t, m, keyRunes(string(r)))
	}
	if m.errMsg != "invalid pattern" {
		t.Fatalf("errMsg = %q", m.errMsg)
	}
	if !strings.Contains(m.View(), "invalid pattern") {
		t.Fatalf("footer missing error:\n%s", m.View())
	}
	m = update(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	if m.errMsg != "" {
		t.Fatalf("literal /( should be valid, errMsg = %q", m.errMsg)
	}
}

func TestModelBlurClosesSearch(t *testing.T) {
	a := testApp(t, writeSample(t))
	m := update(t, newModel(a), tea.WindowSizeMsg{Width: 80, Height: 12})
	m = update(t, m, keyRunes("/"))
	m = update(t, m, keyRunes("a"))
	m = update(t, m, tea.BlurMsg{})
	if m.searching || m.sess.State() != session.Idle {
		t.Fatalf("expected blur to close search")
	}
	for i := 0; i < a.doc.Len(); i++ {
		if strings.Contains(a.doc.RenderedLineMarkup(i), find.DefaultMarkers().Start) {
			t.Fatalf("line %d still highlighted", i)
		}
	}
}

func TestModelScrollRehighlights(t *testing.T) {
	a := testApp(t, writeSample(t))
	m := update(t, newModel(a), tea.WindowSizeMsg{Width: 80, Height: 4})
	if got := a.doc.VisibleLineRange(); got != (session.LineRange{First: 0, Last: 1}) {
		t.Fatalf("visible = %+v", got)
	}

	m = update(t, m, keyRunes("/"))
	m = update(t, m, keyRunes("f"))
	if m.sess.Stats().Lines != 0 {
		t.Fatalf("no visible line should match yet: %+v", m.sess.Stats())
	}

	m = update(t, m, tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonWheelDown})
	if got := a.doc.VisibleLineRange(); got != (session.LineRange{First: 3, Last: 4}) {
		t.Fatalf("visible after wheel = %+v", got)
	}
	if m.sess.Stats().Lines != 1 {
		t.Fatalf("expected line 4 highlighted after scrolling: %+v", m.sess.Stats())
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.searching {
		t.Fatalf("expected enter to close search")
	}
	m = update(t, m, keyRunes("k"))
	if a.doc.First() != 2 {
		t.Fatalf("first = %d after k", a.doc.First())
	}
}
