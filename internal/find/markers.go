package find

import (
	"fmt"
	"strings"
)

// Markers is the pair of strings wrapped around every highlighted run.
type Markers struct {
	Start string `yaml:"start" toml:"start"`
	End   string `yaml:"end" toml:"end"`
}

func DefaultMarkers() Markers {
	return Markers{
		Start: "<mark class='find-highlight' style='background-color: #FFFF00'>",
		End:   "</mark>",
	}
}

// Validate checks that both markers are single, well-formed tags. Splicing
// relies on this: a marker that is not a tag would shift text offsets.
func (m Markers) Validate() error {
	for _, v := range []struct {
		name string
		tag  string
	}{{"start", m.Start}, {"end", m.End}} {
		if strings.TrimSpace(v.tag) == "" {
			return fmt.Errorf("%s marker is empty", v.name)
		}
		tags, err := ScanTags(v.tag)
		if err != nil {
			return fmt.Errorf("%s marker %q: %w", v.name, v.tag, err)
		}
		if len(tags) != 1 || tags[0].Start != 0 || tags[0].Width != runeLen(v.tag) {
			return fmt.Errorf("%s marker %q must be exactly one tag", v.name, v.tag)
		}
	}
	if m.Start == m.End {
		return fmt.Errorf("start and end markers must differ")
	}
	return nil
}
