package markup

import (
	"fmt"
	"slices"
	"strings"

	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
)

// CSS returns the class stylesheet of the named chroma style.
func CSS(styleName string) (string, error) {
	if !slices.Contains(styles.Names(), styleName) {
		return "", fmt.Errorf("unknown style %q", styleName)
	}
	style := styles.Get(styleName)
	var sb strings.Builder
	formatter := html.New(html.WithClasses(true), html.TabWidth(TabWidth))
	if err := formatter.WriteCSS(&sb, style); err != nil {
		return "", fmt.Errorf("write css for %q: %w", styleName, err)
	}
	return sb.String(), nil
}
