package markup

import (
	"findmark/internal/highlighter"
	"findmark/internal/lang"
)

// New builds the renderer for engine. A tree-sitter engine without a
// highlighter, or without a grammar for id, falls back to chroma.
func New(engine Engine, id lang.ID, filename string, h *highlighter.Highlighter, mode highlighter.ContextMode) Renderer {
	switch engine {
	case EnginePlain:
		return Plain{}
	case EngineTreeSitter:
		if h != nil && h.Supports(id) {
			return &TreeSitter{H: h, Lang: id, File: filename, Mode: mode}
		}
	}
	return NewChroma(id, filename)
}
