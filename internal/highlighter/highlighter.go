package highlighter

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"findmark/internal/lang"
	"findmark/internal/readfile"

	sitter "github.com/smacker/go-tree-sitter"
	bashlang "github.com/smacker/go-tree-sitter/bash"
	clang "github.com/smacker/go-tree-sitter/c"
	cpplang "github.com/smacker/go-tree-sitter/cpp"
	golang "github.com/smacker/go-tree-sitter/golang"
	python "github.com/smacker/go-tree-sitter/python"
	rust "github.com/smacker/go-tree-sitter/rust"
	toml "github.com/smacker/go-tree-sitter/toml"
	tsxlang "github.com/smacker/go-tree-sitter/typescript/tsx"
	tslang "github.com/smacker/go-tree-sitter/typescript/typescript"
	yaml "github.com/smacker/go-tree-sitter/yaml"
	tszig "github.com/tree-sitter-grammars/tree-sitter-zig/bindings/go"
	tsjson "github.com/tree-sitter/tree-sitter-json/bindings/go"
)

// ContextMode selects how much source a line is parsed with.
type ContextMode string

const (
	// ContextSynthetic parses the line alone, wrapped in a minimal scaffold.
	ContextSynthetic ContextMode = "synthetic"
	// ContextFile parses the line together with its neighbours in the file.
	ContextFile ContextMode = "file"
)

func ParseContextMode(v string) (ContextMode, error) {
	switch strings.TrimSpace(strings.ToLower(v)) {
	case "", string(ContextSynthetic):
		return ContextSynthetic, nil
	case string(ContextFile):
		return ContextFile, nil
	default:
		return "", fmt.Errorf("invalid highlight context %q (use synthetic or file)", v)
	}
}

type TokenCategory int

const (
	TokenPlain TokenCategory = iota
	TokenKeyword
	TokenType
	TokenFunction
	TokenString
	TokenNumber
	TokenComment
	TokenOperator
	TokenError
)

var categoryNames = [...]string{
	TokenPlain:    "plain",
	TokenKeyword:  "keyword",
	TokenType:     "type",
	TokenFunction: "function",
	TokenString:   "string",
	TokenNumber:   "number",
	TokenComment:  "comment",
	TokenOperator: "operator",
	TokenError:    "error",
}

func (c TokenCategory) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return fmt.Sprintf("TokenCategory(%d)", int(c))
	}
	return categoryNames[c]
}

// Span covers runes [Start, End) of the raw line.
type Span struct {
	Start int
	End   int
	Cat   TokenCategory
}

// Request identifies one line to highlight. File and Line (1-based) are
// only used in ContextFile mode.
type Request struct {
	Lang lang.ID
	Text string
	File string
	Line int
	Mode ContextMode
}

type Config struct {
	CacheSize     int
	Workers       int
	Root          string
	DefaultMode   ContextMode
	ContextRadius int
}

// Highlighter turns source lines into token spans. Results are cached;
// Highlight computes on the caller's goroutine while Prefetch hands the
// work to a background pool.
type Highlighter struct {
	cache   *spanLRU
	parsers sync.Pool

	tasks     chan Request
	closeOnce sync.Once
	wg        sync.WaitGroup

	pendingMu sync.Mutex
	pending   map[cacheKey]struct{}

	langs map[lang.ID]*sitter.Language

	root          string
	defaultMode   ContextMode
	contextRadius int

	fileMu    sync.RWMutex
	fileLines map[string][]string
}

func New(cfg Config) *Highlighter {
	workers := cfg.Workers
	if workers < 0 {
		workers = 0
	}

	mode := cfg.DefaultMode
	if mode == "" {
		mode = ContextSynthetic
	}

	contextRadius := cfg.ContextRadius
	if contextRadius <= 0 {
		contextRadius = 40
	}

	root := strings.TrimSpace(cfg.Root)
	if root != "" {
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
	}

	h := &Highlighter{
		cache:   newSpanLRU(cfg.CacheSize),
		tasks:   make(chan Request, max(workers, 1)*256),
		pending: make(map[cacheKey]struct{}),
		langs: map[lang.ID]*sitter.Language{
			lang.Go:         golang.GetLanguage(),
			lang.Rust:       rust.GetLanguage(),
			lang.Python:     python.GetLanguage(),
			lang.JavaScript: tslang.GetLanguage(),
			lang.TypeScript: tslang.GetLanguage(),
			lang.TSX:        tsxlang.GetLanguage(),
			lang.YAML:       yaml.GetLanguage(),
			lang.TOML:       toml.GetLanguage(),
			lang.JSON:       sitter.NewLanguage(tsjson.Language()),
			lang.Zig:        sitter.NewLanguage(tszig.Language()),
			lang.Bash:       bashlang.GetLanguage(),
			lang.C:          clang.GetLanguage(),
			lang.CPP:        cpplang.GetLanguage(),
		},
		root:          root,
		defaultMode:   mode,
		contextRadius: contextRadius,
		fileLines:     make(map[string][]string),
	}
	h.parsers.New = func() any { return sitter.NewParser() }

	for i := 0; i < workers; i++ {
		h.wg.Add(1)
		go h.worker()
	}

	return h
}

// Supports reports whether id has a grammar.
func (h *Highlighter) Supports(id lang.ID) bool {
	return h.langs[id] != nil
}

// Highlight returns the spans for req, parsing it now if it is not cached.
func (h *Highlighter) Highlight(req Request) []Span {
	req = h.normalizeRequest(req)
	if req.Text == "" {
		return nil
	}
	key := cacheKeyForRequest(req)
	if spans, ok := h.cache.Get(key); ok {
		return spans
	}

	parser := h.parsers.Get().(*sitter.Parser)
	spans := h.highlightWithParser(parser, req)
	h.parsers.Put(parser)

	h.cache.Set(key, spans)
	return spans
}

func (h *Highlighter) Lookup(req Request) ([]Span, bool) {
	return h.cache.Get(cacheKeyForRequest(h.normalizeRequest(req)))
}

// Prefetch queues req for the worker pool. It never blocks; a full queue
// drops the request.
func (h *Highlighter) Prefetch(req Request) {
	req = h.normalizeRequest(req)
	if req.Text == "" {
		return
	}

	key := cacheKeyForRequest(req)
	if _, ok := h.cache.Get(key); ok {
		return
	}

	h.pendingMu.Lock()
	if _, ok := h.pending[key]; ok {
		h.pendingMu.Unlock()
		return
	}
	h.pending[key] = struct{}{}
	h.pendingMu.Unlock()

	select {
	case h.tasks <- req:
	default:
		h.pendingMu.Lock()
		delete(h.pending, key)
		h.pendingMu.Unlock()
	}
}

// Close stops the worker pool after the queued requests are done.
func (h *Highlighter) Close() {
	h.closeOnce.Do(func() {
		close(h.tasks)
	})
	h.wg.Wait()
}

func (h *Highlighter) worker() {
	defer h.wg.Done()
	parser := sitter.NewParser()
	defer parser.Close()

	for req := range h.tasks {
		key := cacheKeyForRequest(req)
		if _, ok := h.cache.Get(key); !ok {
			h.cache.Set(key, h.highlightWithParser(parser, req))
		}

		h.pendingMu.Lock()
		delete(h.pending, key)
		h.pendingMu.Unlock()
	}
}

func (h *Highlighter) normalizeRequest(req Request) Request {
	if req.Mode == "" {
		req.Mode = h.defaultMode
	}

	if req.Mode == ContextFile {
		req.File = filepath.Clean(strings.TrimSpace(req.File))
		if req.File != "" && req.File != "." && req.Line > 0 {
			if !filepath.IsAbs(req.File) && h.root != "" {
				req.File = filepath.Join(h.root, req.File)
			}
			return req
		}
	}

	req.Mode = ContextSynthetic
	req.File = ""
	req.Line = 0
	return req
}

func (h *Highlighter) highlightWithParser(parser *sitter.Parser, req Request) []Span {
	if req.Mode == ContextFile {
		if spans, ok := h.highlightFromFileContext(parser, req); ok {
			return spans
		}
	}
	return h.highlightSynthetic(parser, req.Lang, req.Text)
}

func (h *Highlighter) highlightSynthetic(parser *sitter.Parser, id lang.ID, text string) []Span {
	if text == "" {
		return nil
	}

	language := h.langs[id]
	if language == nil {
		return plainSpans(text)
	}

	source, lineStart, lineEnd := scaffoldLine(id, text)
	raw, ok := collectRawSpans(parser, language, source, lineStart, lineEnd, id)
	if !ok {
		return plainSpans(text)
	}
	return buildMergedSpans(text, raw)
}

// highlightFromFileContext parses the surrounding lines of the file so
// multi-line constructs classify correctly. It declines when the file no
// longer holds req.Text at req.Line.
func (h *Highlighter) highlightFromFileContext(parser *sitter.Parser, req Request) ([]Span, bool) {
	language := h.langs[req.Lang]
	if language == nil {
		return nil, false
	}

	lines, err := h.loadFileLines(req.File)
	if err != nil || req.Line < 1 || req.Line > len(lines) {
		return nil, false
	}
	if lines[req.Line-1] != req.Text {
		return nil, false
	}

	startLine := max(1, req.Line-h.contextRadius)
	endLine := min(len(lines), req.Line+h.contextRadius)
	source, targetStart, targetEnd, ok := buildSliceSource(lines[startLine-1:endLine], req.Line-startLine)
	if !ok {
		return nil, false
	}

	raw, ok := collectRawSpans(parser, language, source, targetStart, targetEnd, req.Lang)
	if !ok {
		return nil, false
	}
	return buildMergedSpans(req.Text, raw), true
}

func collectRawSpans(parser *sitter.Parser, language *sitter.Language, source []byte, lineStart int, lineEnd int, id lang.ID) ([]rawSpan, bool) {
	parser.SetLanguage(language)

	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil || tree == nil {
		return nil, false
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, false
	}

	raw := make([]rawSpan, 0, 32)
	collectLeafSpans(root, lineStart, lineEnd, source, id, "", "", &raw)
	return raw, true
}

func (h *Highlighter) loadFileLines(path string) ([]string, error) {
	h.fileMu.RLock()
	if lines, ok := h.fileLines[path]; ok {
		h.fileMu.RUnlock()
		return lines, nil
	}
	h.fileMu.RUnlock()

	lines, err := readfile.ReadLines(path, readfile.DefaultLimits)
	if err != nil {
		return nil, err
	}

	h.fileMu.Lock()
	h.fileLines[path] = lines
	h.fileMu.Unlock()

	return lines, nil
}

// Forget drops the cached contents of path, e.g. after it was reloaded.
func (h *Highlighter) Forget(path string) {
	h.fileMu.Lock()
	delete(h.fileLines, path)
	h.fileMu.Unlock()
}
