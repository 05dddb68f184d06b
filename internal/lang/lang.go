package lang

import (
	"path/filepath"
	"strings"
)

type ID string

const (
	Plain      ID = "plain"
	Go         ID = "go"
	Rust       ID = "rust"
	Python     ID = "python"
	JavaScript ID = "javascript"
	TypeScript ID = "typescript"
	TSX        ID = "tsx"
	YAML       ID = "yaml"
	TOML       ID = "toml"
	JSON       ID = "json"
	Zig        ID = "zig"
	Bash       ID = "bash"
	C          ID = "c"
	CPP        ID = "cpp"
)

var extMap = map[string]ID{
	".go":    Go,
	".rs":    Rust,
	".py":    Python,
	".js":    JavaScript,
	".jsx":   JavaScript,
	".mjs":   JavaScript,
	".cjs":   JavaScript,
	".ts":    TypeScript,
	".tsx":   TSX,
	".yaml":  YAML,
	".yml":   YAML,
	".toml":  TOML,
	".json":  JSON,
	".jsonc": JSON,
	".json5": JSON,
	".zig":   Zig,
	".zon":   Zig,
	".sh":    Bash,
	".bash":  Bash,
	".zsh":   Bash,
	".c":     C,
	".h":     C,
	".cpp":   CPP,
	".cc":    CPP,
	".cxx":   CPP,
	".hpp":   CPP,
	".hh":    CPP,
}

var fileMap = map[string]ID{
	".bashrc":           Bash,
	".zshrc":            Bash,
	".profile":          Bash,
	"Cargo.toml":        TOML,
	"Pipfile":           TOML,
	"package-lock.json": JSON,
	"build.zig.zon":     Zig,
}

// chromaNames maps each ID to the chroma lexer of the same language.
var chromaNames = map[ID]string{
	Go:         "go",
	Rust:       "rust",
	Python:     "python",
	JavaScript: "javascript",
	TypeScript: "typescript",
	TSX:        "tsx",
	YAML:       "yaml",
	TOML:       "toml",
	JSON:       "json",
	Zig:        "zig",
	Bash:       "bash",
	C:          "c",
	CPP:        "c++",
}

func Detect(path string) ID {
	base := filepath.Base(path)
	if id, ok := fileMap[base]; ok {
		return id
	}
	if id, ok := extMap[strings.ToLower(filepath.Ext(base))]; ok {
		return id
	}
	return Plain
}

func DetectWithShebang(path string, firstLine string) ID {
	if id := Detect(path); id != Plain {
		return id
	}

	if !strings.HasPrefix(firstLine, "#!") {
		return Plain
	}
	lower := strings.ToLower(firstLine)
	switch {
	case strings.Contains(lower, "python"):
		return Python
	case strings.Contains(lower, "node") || strings.Contains(lower, "deno"):
		return JavaScript
	case strings.Contains(lower, "bash") || strings.Contains(lower, "zsh") || strings.Contains(lower, "sh"):
		return Bash
	default:
		return Plain
	}
}

// ChromaLexer returns the chroma lexer name for id, or "" for Plain.
func ChromaLexer(id ID) string {
	return chromaNames[id]
}

// Parse accepts an ID by name, as given on the command line.
func Parse(name string) (ID, bool) {
	id := ID(strings.ToLower(strings.TrimSpace(name)))
	if id == Plain {
		return Plain, true
	}
	_, ok := chromaNames[id]
	return id, ok
}
