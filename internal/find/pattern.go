package find

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

// DefaultMatchTimeout bounds a single scan so a pathological regex cannot
// stall a keystroke handler.
const DefaultMatchTimeout = 250 * time.Millisecond

// regexQueryShape recognises /body/flags queries.
var regexQueryShape = regexp.MustCompile(`^/(.+)/([gimsu]*)$`)

// Pattern is a compiled query. It always scans globally.
type Pattern struct {
	Source        string
	CaseSensitive bool
	IsRegex       bool

	re *regexp2.Regexp
}

// Compile turns a raw query into a Pattern. Queries shaped like /body/flags
// are regular expressions; anything else is matched literally and without
// regard to case. Blank queries return ErrEmptyQuery.
func Compile(query string) (*Pattern, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	if sub := regexQueryShape.FindStringSubmatch(query); sub != nil {
		body, flags := sub[1], sub[2]
		opts := regexp2.None
		caseSensitive := true
		if strings.ContainsRune(flags, 'i') {
			opts |= regexp2.IgnoreCase
			caseSensitive = false
		}
		if strings.ContainsRune(flags, 'm') {
			opts |= regexp2.Multiline
		}
		if strings.ContainsRune(flags, 's') {
			opts |= regexp2.Singleline
		}
		re, err := regexp2.Compile(body, opts)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, query, err)
		}
		re.MatchTimeout = DefaultMatchTimeout
		return &Pattern{Source: body, CaseSensitive: caseSensitive, IsRegex: true, re: re}, nil
	}

	re, err := regexp2.Compile(regexp2.Escape(query), regexp2.IgnoreCase)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, query, err)
	}
	re.MatchTimeout = DefaultMatchTimeout
	return &Pattern{Source: query, re: re}, nil
}

func (p *Pattern) String() string {
	if p.IsRegex {
		return "/" + p.Source + "/"
	}
	return p.Source
}
