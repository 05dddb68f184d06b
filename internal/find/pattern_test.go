package find

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileEmptyQuery(t *testing.T) {
	for _, q := range []string{"", "   ", "\t\n"} {
		p, err := Compile(q)
		assert.Nil(t, p)
		assert.ErrorIs(t, err, ErrEmptyQuery, "query %q", q)
	}
}

func TestCompileRegexShape(t *testing.T) {
	tests := []struct {
		query         string
		source        string
		caseSensitive bool
	}{
		{query: "/foo/", source: "foo", caseSensitive: true},
		{query: "/foo/i", source: "foo", caseSensitive: false},
		{query: "/foo/gi", source: "foo", caseSensitive: false},
		{query: "/fo+o/g", source: "fo+o", caseSensitive: true},
		{query: "/a/b/", source: "a/b", caseSensitive: true},
	}
	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			p, err := Compile(tc.query)
			require.NoError(t, err)
			assert.True(t, p.IsRegex)
			assert.Equal(t, tc.source, p.Source)
			assert.Equal(t, tc.caseSensitive, p.CaseSensitive)
		})
	}
}

func TestCompileLiteralEscapesMetacharacters(t *testing.T) {
	p, err := Compile("a.b(c)*")
	require.NoError(t, err)
	assert.False(t, p.IsRegex)
	assert.False(t, p.CaseSensitive)

	got, err := Locate(p, 0, []string{"axb(c)* A.B(C)*"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []int{8}, got[0].Offsets)
}

func TestCompileUnknownFlagsFallBackToLiteral(t *testing.T) {
	p, err := Compile("/foo/x")
	require.NoError(t, err)
	assert.False(t, p.IsRegex)
	assert.Equal(t, "/foo/x", p.Source)
}

func TestCompileInvalidPattern(t *testing.T) {
	p, err := Compile("/(unclosed/")
	assert.Nil(t, p)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidPattern))
}
