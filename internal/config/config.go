// Package config loads findmark settings from a YAML or TOML file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"findmark/internal/find"
	"findmark/internal/highlighter"
	"findmark/internal/markup"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Theme            string       `yaml:"theme" toml:"theme"`
	Engine           string       `yaml:"engine" toml:"engine"`
	HighlightContext string       `yaml:"highlight_context" toml:"highlight_context"`
	ContextRadius    int          `yaml:"context_radius" toml:"context_radius"`
	TabShift         string       `yaml:"tab_shift" toml:"tab_shift"`
	Markers          find.Markers `yaml:"markers" toml:"markers"`
	EditorCmd        string       `yaml:"editor_cmd" toml:"editor_cmd"`
	LogFile          string       `yaml:"log_file" toml:"log_file"`
	CacheSize        int          `yaml:"cache_size" toml:"cache_size"`
	Workers          int          `yaml:"workers" toml:"workers"`
	Prefetch         int          `yaml:"prefetch" toml:"prefetch"`
}

func Default() Config {
	return Config{
		Theme:            "nord",
		Engine:           string(markup.EngineChroma),
		HighlightContext: string(highlighter.ContextSynthetic),
		ContextRadius:    40,
		TabShift:         find.TabsPositional.String(),
		Markers:          find.DefaultMarkers(),
		CacheSize:        20000,
		Workers:          max(1, runtime.GOMAXPROCS(0)-1),
		Prefetch:         30,
	}
}

// DefaultPath is $XDG_CONFIG_HOME/findmark/config.yaml, or the platform
// user config directory when XDG_CONFIG_HOME is unset.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		var err error
		if dir, err = os.UserConfigDir(); err != nil {
			return ""
		}
	}
	return filepath.Join(dir, "findmark", "config.yaml")
}

// Load reads path over the defaults. The format follows the extension:
// .yaml/.yml or .toml. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("config %s: unsupported format %q (use .yaml or .toml)", path, ext)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if _, err := markup.ParseEngine(c.Engine); err != nil {
		errs = append(errs, err)
	}
	if _, err := highlighter.ParseContextMode(c.HighlightContext); err != nil {
		errs = append(errs, err)
	}
	if _, err := find.ParseTabMode(c.TabShift); err != nil {
		errs = append(errs, err)
	}
	if err := c.Markers.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.CacheSize < 1 {
		errs = append(errs, fmt.Errorf("cache_size must be positive, got %d", c.CacheSize))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", c.Workers))
	}
	if c.Prefetch < 0 {
		errs = append(errs, fmt.Errorf("prefetch must not be negative, got %d", c.Prefetch))
	}
	if c.ContextRadius < 1 {
		errs = append(errs, fmt.Errorf("context_radius must be positive, got %d", c.ContextRadius))
	}
	return errors.Join(errs...)
}
