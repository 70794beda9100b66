package frontmatter

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSplit_NoFrontmatter_ReturnsBodyOnly(t *testing.T) {
	input := []byte("# Title\n\nHello\n")

	fm, body, had, err := Split(input)
	require.NoError(t, err)
	require.False(t, had)
	require.Empty(t, fm)
	require.Equal(t, input, body)
}

func TestSplit_YAMLFrontmatter_SplitsFrontmatterAndBody(t *testing.T) {
	input := []byte("---\nkey: value\n---\n# Title\n")

	fm, body, had, err := Split(input)
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("key: value\n"), fm)
	require.Equal(t, []byte("# Title\n"), body)
}

func TestSplit_MissingClosingDelimiter_ReturnsError(t *testing.T) {
	_, _, had, err := Split([]byte("---\nkey: value\n# Title\n"))
	require.Error(t, err)
	require.False(t, had)
	require.True(t, errors.Is(err, ErrMissingClosingDelimiter))
}

func TestSplit_CRLF_NormalizedToLF(t *testing.T) {
	fm, body, had, err := Split([]byte("---\r\nkey: value\r\n---\r\n# Title\r\n"))
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("key: value\n"), fm)
	require.Equal(t, []byte("# Title\n"), body)
}

func TestSplit_EmptyFrontmatterBlock(t *testing.T) {
	fm, body, had, err := Split([]byte("---\n---\n# Title\n"))
	require.NoError(t, err)
	require.True(t, had)
	require.Empty(t, fm)
	require.Equal(t, []byte("# Title\n"), body)
}

func TestSplit_ClosingDelimiterAtEOF(t *testing.T) {
	fm, body, had, err := Split([]byte("---\nkey: value\n---"))
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("key: value\n"), fm)
	require.Empty(t, body)
}

func TestParseYAML_InvalidYAML_ReturnsError(t *testing.T) {
	_, err := ParseYAML([]byte(": not yaml"))
	require.Error(t, err)
}

func TestDecode_TypedFields(t *testing.T) {
	raw := []byte("title: Hello\ncreated: \"2024-03-05\"\ntags: [go, web]\nauthor: sam\nseries: intro\n")

	f, err := Decode(raw)
	require.NoError(t, err)
	require.Equal(t, "Hello", f.Title)
	require.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), f.Created)
	require.Equal(t, []string{"go", "web"}, f.Tags)
	require.Equal(t, "sam", f.Author)
	require.Equal(t, "intro", f.Extra["series"])
}

func TestDecode_CommaSeparatedTags(t *testing.T) {
	f, err := Decode([]byte("created: \"2024-01-01T10:00:00Z\"\ntags: \"a, b,,c\"\n"))
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, f.Tags)
}

func TestDecode_MissingCreated(t *testing.T) {
	_, err := Decode([]byte("title: x\n"))
	require.ErrorIs(t, err, ErrMissingCreated)
}

func TestDecode_InvalidCreated(t *testing.T) {
	_, err := Decode([]byte("created: \"yesterday\"\n"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid date")
}

func TestCanonical_IgnoresKeyOrderAndFormatting(t *testing.T) {
	a, err := Canonical([]byte("b: two\na: one\nnested:\n    y: 2\n    x: 1\n"))
	require.NoError(t, err)
	b, err := Canonical([]byte("nested: {x: 1, y: 2}\na:   one\nb: two\n"))
	require.NoError(t, err)

	require.Equal(t, string(a), string(b))
	require.Equal(t, "a: one\nb: two\nnested:\n  x: 1\n  y: 2", string(a))
}

func TestCanonical_Empty(t *testing.T) {
	out, err := Canonical(nil)
	require.NoError(t, err)
	require.Nil(t, out)
}
