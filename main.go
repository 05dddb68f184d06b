package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"findmark/internal/config"
	"findmark/internal/document"
	"findmark/internal/find"
	"findmark/internal/highlighter"
	"findmark/internal/lang"
	"findmark/internal/markup"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jessevdk/go-flags"
)

// app holds everything built from the options for one run.
type app struct {
	cfg     config.Config
	path    string
	engine  markup.Engine
	tabs    find.TabMode
	markers find.Markers
	logger  *slog.Logger
	hl      *highlighter.Highlighter
	doc     *document.Document
}

func newApp(opts Options, cfg config.Config, logger *slog.Logger) (*app, error) {
	engine, err := markup.ParseEngine(cfg.Engine)
	if err != nil {
		return nil, err
	}
	mode, err := highlighter.ParseContextMode(cfg.HighlightContext)
	if err != nil {
		return nil, err
	}
	tabs, err := find.ParseTabMode(cfg.TabShift)
	if err != nil {
		return nil, err
	}
	path, err := filepath.Abs(opts.Args.File)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", opts.Args.File, err)
	}

	a := &app{
		cfg:     cfg,
		path:    path,
		engine:  engine,
		tabs:    tabs,
		markers: cfg.Markers,
		logger:  logger,
	}
	if engine == markup.EngineTreeSitter {
		a.hl = highlighter.New(highlighter.Config{
			CacheSize:     cfg.CacheSize,
			Workers:       cfg.Workers,
			Root:          filepath.Dir(path),
			DefaultMode:   mode,
			ContextRadius: cfg.ContextRadius,
		})
	}

	docOpts := []document.Option{
		document.WithLogger(logger),
		document.WithPrefetch(cfg.Prefetch),
		document.WithRendererFactory(func(id lang.ID, p string) markup.Renderer {
			return markup.New(engine, id, p, a.hl, mode)
		}),
	}
	if opts.Lang != "" {
		id, ok := lang.Parse(opts.Lang)
		if !ok {
			a.close()
			return nil, fmt.Errorf("unknown language %q", opts.Lang)
		}
		docOpts = append(docOpts, document.WithLanguage(id))
	}

	a.doc, err = document.Open(path, docOpts...)
	if err != nil {
		a.close()
		return nil, err
	}
	logger.Info("document loaded", "path", path, "lang", a.doc.Lang(), "engine", engine, "lines", a.doc.Len())
	return a, nil
}

func (a *app) close() {
	if a.hl != nil {
		a.hl.Close()
	}
}

// reload re-reads the document from disk after an external edit.
func (a *app) reload() error {
	if a.hl != nil {
		a.hl.Forget(a.path)
	}
	return a.doc.Reload()
}

func run(args []string, stdout io.Writer, stderr io.Writer) int {
	opts, cfg, err := parseOptions(args)
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			fmt.Fprintln(stdout, flagsErr.Message)
			return 0
		}
		fmt.Fprintf(stderr, "findmark: %v\n", err)
		return 1
	}

	if err := SetTheme(cfg.Theme); err != nil {
		fmt.Fprintf(stderr, "findmark: invalid --theme: %v\n", err)
		return 1
	}

	logger, closeLog, err := setupLogger(cfg.LogFile)
	if err != nil {
		fmt.Fprintf(stderr, "findmark: open log: %v\n", err)
		return 1
	}
	defer closeLog()

	a, err := newApp(opts, cfg, logger)
	if err != nil {
		fmt.Fprintf(stderr, "findmark: %v\n", err)
		return 1
	}
	defer a.close()

	if opts.Query != "" {
		if err := a.export(opts.Query, opts.HTML, stdout); err != nil {
			fmt.Fprintf(stderr, "findmark: %v\n", err)
			return 1
		}
		return 0
	}

	p := tea.NewProgram(newModel(a), tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithReportFocus())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(stderr, "findmark failed: %v\n", err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
