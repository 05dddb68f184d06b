package main

import (
	"fmt"
	"strings"

	"findmark/internal/config"

	"github.com/jessevdk/go-flags"
)

// Options are the command-line flags, interpreted by go-flags. Flags that
// are set override the config file.
type Options struct {
	Config           string `short:"c" long:"config" description:"config file (.yaml or .toml); defaults to $XDG_CONFIG_HOME/findmark/config.yaml"`
	Theme            string `long:"theme" description:"color theme (for example: nord, dracula, monokai, github, solarized-dark)"`
	Engine           string `long:"engine" description:"markup engine: chroma, treesitter or plain"`
	Lang             string `long:"lang" description:"language override (go, rust, python, zig, ...)"`
	HighlightContext string `long:"highlight-context" description:"tree-sitter parse mode: synthetic or file"`
	ContextRadius    int    `long:"context-radius" description:"line radius for file context highlighting"`
	TabShift         string `long:"tab-shift" description:"tab reconciliation: positional or uniform"`
	MarkStart        string `long:"mark-start" description:"opening highlight marker tag"`
	MarkEnd          string `long:"mark-end" description:"closing highlight marker tag"`
	EditorCmd        string `long:"editor-cmd" description:"open command, supports {file} {line} {col} {target}"`
	LogFile          string `long:"log-file" description:"write debug log to this file"`
	CacheSize        int    `long:"cache-size" description:"highlight cache entries"`
	Workers          int    `long:"workers" description:"highlight prefetch workers"`
	Prefetch         int    `long:"prefetch" description:"lines below the view to pre-highlight"`

	Query string `short:"q" long:"query" description:"print match locations of query instead of opening the viewer"`
	HTML  string `long:"html" description:"with --query, write the highlighted document as HTML to this path"`

	Args struct {
		File string `positional-arg-name:"FILE" description:"file to view"`
	} `positional-args:"yes" required:"yes"`
}

// parseOptions parses args and merges them over the config file.
func parseOptions(args []string) (Options, config.Config, error) {
	var opts Options
	parser := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = "findmark"
	if _, err := parser.ParseArgs(args); err != nil {
		return opts, config.Config{}, err
	}
	if opts.HTML != "" && strings.TrimSpace(opts.Query) == "" {
		return opts, config.Config{}, fmt.Errorf("--html requires --query")
	}

	path := opts.Config
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return opts, cfg, err
	}

	isSet := func(name string) bool {
		opt := parser.FindOptionByLongName(name)
		return opt != nil && opt.IsSet()
	}
	strFlags := []struct {
		name string
		src  string
		dst  *string
	}{
		{"theme", opts.Theme, &cfg.Theme},
		{"engine", opts.Engine, &cfg.Engine},
		{"highlight-context", opts.HighlightContext, &cfg.HighlightContext},
		{"tab-shift", opts.TabShift, &cfg.TabShift},
		{"mark-start", opts.MarkStart, &cfg.Markers.Start},
		{"mark-end", opts.MarkEnd, &cfg.Markers.End},
		{"editor-cmd", opts.EditorCmd, &cfg.EditorCmd},
		{"log-file", opts.LogFile, &cfg.LogFile},
	}
	for _, f := range strFlags {
		if isSet(f.name) {
			*f.dst = f.src
		}
	}
	intFlags := []struct {
		name string
		src  int
		dst  *int
	}{
		{"context-radius", opts.ContextRadius, &cfg.ContextRadius},
		{"cache-size", opts.CacheSize, &cfg.CacheSize},
		{"workers", opts.Workers, &cfg.Workers},
		{"prefetch", opts.Prefetch, &cfg.Prefetch},
	}
	for _, f := range intFlags {
		if isSet(f.name) {
			*f.dst = f.src
		}
	}

	if err := cfg.Validate(); err != nil {
		return opts, cfg, err
	}
	return opts, cfg, nil
}
