package highlighter

import (
	"strings"
	"unicode"

	"findmark/internal/lang"

	sitter "github.com/smacker/go-tree-sitter"
)

type rawSpan struct {
	Start int
	End   int
	Cat   TokenCategory
}

// collectLeafSpans appends a span for every leaf of node that overlaps the
// byte range [lineStart, lineEnd) of src, relative to lineStart.
func collectLeafSpans(node *sitter.Node, lineStart int, lineEnd int, src []byte, id lang.ID, parentType string, grandType string, out *[]rawSpan) {
	if node == nil {
		return
	}

	start := int(node.StartByte())
	end := int(node.EndByte())
	if end <= lineStart || start >= lineEnd {
		return
	}

	if node.ChildCount() == 0 {
		clippedStart := max(start, lineStart)
		clippedEnd := min(end, lineEnd)
		if clippedStart >= clippedEnd {
			return
		}
		leaf := leafInfo{
			nodeType:   strings.ToLower(node.Type()),
			parentType: parentType,
			grandType:  grandType,
			lexeme:     strings.ToLower(strings.TrimSpace(string(src[start:end]))),
			named:      node.IsNamed(),
		}
		*out = append(*out, rawSpan{
			Start: clippedStart - lineStart,
			End:   clippedEnd - lineStart,
			Cat:   classifyLeaf(id, leaf),
		})
		return
	}

	nextParent := strings.ToLower(node.Type())
	for i := 0; i < int(node.ChildCount()); i++ {
		collectLeafSpans(node.Child(i), lineStart, lineEnd, src, id, nextParent, parentType, out)
	}
}

type leafInfo struct {
	nodeType   string
	parentType string
	grandType  string
	lexeme     string
	named      bool
}

func (l leafInfo) nodeHas(parts ...string) bool {
	for _, p := range parts {
		if strings.Contains(l.nodeType, p) {
			return true
		}
	}
	return false
}

func (l leafInfo) contextHas(parts ...string) bool {
	for _, p := range parts {
		if strings.Contains(l.parentType, p) || strings.Contains(l.grandType, p) {
			return true
		}
	}
	return false
}

func (l leafInfo) contextIn(set map[string]bool) bool {
	return set[l.parentType] || set[l.grandType]
}

func classifyLeaf(id lang.ID, l leafInfo) TokenCategory {
	switch {
	case l.nodeType == "error" || l.nodeHas("invalid"):
		return TokenError
	case l.nodeHas("comment"):
		return TokenComment
	case l.nodeHas("string", "char", "heredoc"):
		if id == lang.JSON && l.contextHas("pair") {
			return TokenType
		}
		return TokenString
	case l.nodeHas("number", "integer", "float", "numeric"):
		return TokenNumber
	case literalSet[l.lexeme]:
		return TokenNumber
	case strings.HasSuffix(l.nodeType, "keyword"):
		return TokenKeyword
	case l.nodeHas("type_identifier", "primitive_type", "predefined_type", "builtin_type"):
		return TokenType
	}

	if isIdentifierNode(l.nodeType) {
		rules := langRules[id]
		switch {
		case l.contextHas("type", "class", "struct", "interface", "trait", "enum") || l.contextIn(rules.types):
			return TokenType
		case l.contextHas("function", "method", "call") || l.contextIn(rules.functions):
			return TokenFunction
		case isLikelyConstant(l.lexeme):
			return TokenNumber
		}
	}

	switch {
	case keywordSet[l.lexeme]:
		return TokenKeyword
	case operatorSet[l.lexeme]:
		return TokenOperator
	case !l.named && looksLikeOperator(l.lexeme):
		return TokenOperator
	}
	return TokenPlain
}

func isIdentifierNode(nodeType string) bool {
	return strings.HasSuffix(nodeType, "identifier") || strings.HasSuffix(nodeType, "name")
}

// isLikelyConstant matches SCREAMING_CASE names.
func isLikelyConstant(s string) bool {
	if len(s) < 2 {
		return false
	}
	hasLetter := false
	for _, r := range s {
		switch {
		case r == '_' || unicode.IsDigit(r):
		case unicode.IsLetter(r):
			if unicode.IsLower(r) {
				return false
			}
			hasLetter = true
		default:
			return false
		}
	}
	return hasLetter
}

func looksLikeOperator(s string) bool {
	if s == "" {
		return false
	}
	return strings.Trim(s, "+-*/%=!<>&|^~:;,.?()[]{}") == ""
}

type classifyRules struct {
	functions map[string]bool
	types     map[string]bool
}

func setOf(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

var jsRules = classifyRules{
	functions: setOf("function_declaration", "method_definition", "call_expression", "member_expression"),
	types:     setOf("class_declaration", "type_annotation", "interface_declaration", "type_alias_declaration"),
}

var langRules = map[lang.ID]classifyRules{
	lang.Go: {
		functions: setOf("function_declaration", "method_declaration", "call_expression", "selector_expression"),
		types:     setOf("type_spec", "type_declaration", "parameter_declaration", "var_declaration"),
	},
	lang.Rust: {
		functions: setOf("function_item", "call_expression", "field_expression"),
		types:     setOf("struct_item", "enum_item", "trait_item", "type_item"),
	},
	lang.JavaScript: jsRules,
	lang.TypeScript: jsRules,
	lang.TSX:        jsRules,
	lang.Python: {
		functions: setOf("function_definition", "call"),
		types:     setOf("class_definition"),
	},
	lang.C: {
		functions: setOf("function_definition", "call_expression"),
	},
	lang.CPP: {
		functions: setOf("function_definition", "call_expression"),
		types:     setOf("class_specifier", "struct_specifier"),
	},
	lang.Zig: {
		functions: setOf("function_declaration", "call_expression", "builtin_function"),
		types:     setOf("container_declaration", "struct_declaration", "enum_declaration", "union_declaration"),
	},
}

var literalSet = setOf("true", "false", "null", "nil", "none", "undefined")

var keywordSet = setOf(
	"as", "async", "await", "break", "case", "catch", "class", "comptime",
	"const", "continue", "def", "default", "defer", "do", "else", "enum",
	"errdefer", "export", "extends", "fallthrough", "finally", "fn", "for",
	"from", "func", "function", "if", "impl", "import", "in", "include",
	"interface", "let", "loop", "match", "mod", "module", "mut", "namespace",
	"new", "package", "pub", "raise", "return", "struct", "switch", "trait",
	"try", "type", "union", "use", "var", "while", "with", "yield",
)

var operatorSet = setOf(
	"+", "-", "*", "/", "%", "=", "==", "!=", "<", "<=", ">", ">=",
	"&&", "||", "!", "&", "|", "^", "~", "->", "=>", "::", ":", ";",
	",", ".", "?", "(", ")", "[", "]", "{", "}",
)
