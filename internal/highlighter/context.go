package highlighter

import (
	"strings"

	"findmark/internal/lang"
)

// buildSliceSource joins lines with newlines and reports the byte range of
// lines[targetIndex] inside the result.
func buildSliceSource(lines []string, targetIndex int) ([]byte, int, int, bool) {
	if targetIndex < 0 || targetIndex >= len(lines) {
		return nil, 0, 0, false
	}

	var sb strings.Builder
	lineStart, lineEnd := 0, 0
	for i, line := range lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		if i == targetIndex {
			lineStart = sb.Len()
		}
		sb.WriteString(line)
		if i == targetIndex {
			lineEnd = sb.Len()
		}
	}
	return []byte(sb.String()), lineStart, lineEnd, true
}

// scaffoldLine wraps a lone line in just enough syntax for the grammar to
// parse it as a statement. It returns the source and the line's byte range.
func scaffoldLine(id lang.ID, line string) ([]byte, int, int) {
	prefix, suffix := "", "\n"

	switch id {
	case lang.Go:
		prefix = "package p\nfunc _findmark_() {\n"
		suffix = "\n}\n"
	case lang.Rust:
		prefix = "fn _findmark_() {\n"
		suffix = "\n}\n"
	case lang.JavaScript, lang.TypeScript, lang.TSX:
		prefix = "function _findmark_() {\n"
		suffix = "\n}\n"
	case lang.C, lang.CPP:
		prefix = "void _findmark_() {\n"
		suffix = "\n}\n"
	case lang.Zig:
		prefix = "fn _findmark_() void {\n"
		suffix = "\n}\n"
	case lang.JSON:
		prefix = "{\n"
		suffix = "\n}\n"
	}

	source := []byte(prefix + line + suffix)
	start := len(prefix)
	return source, start, start + len(line)
}
