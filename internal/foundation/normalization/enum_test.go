package normalization

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type color string

const (
	red   color = "red"
	green color = "green"
)

func newColors() *Enum[color] {
	return NewEnum("color", map[string]color{
		"red":     red,
		"crimson": red,
		"green":   green,
	}, red)
}

func TestEnum_Normalize(t *testing.T) {
	e := newColors()
	require.Equal(t, green, e.Normalize("  GREEN "))
	require.Equal(t, red, e.Normalize("Crimson"))
	require.Equal(t, red, e.Normalize("purple"))
}

func TestEnum_Parse(t *testing.T) {
	e := newColors()
	v, err := e.Parse("green")
	require.NoError(t, err)
	require.Equal(t, green, v)

	_, err = e.Parse("purple")
	require.ErrorContains(t, err, `invalid color "purple"`)
	require.ErrorContains(t, err, "crimson, green, red")
}

func TestEnum_Names(t *testing.T) {
	e := newColors()
	names := e.Names()
	require.Equal(t, []string{"crimson", "green", "red"}, names)
	names[0] = "x"
	require.Equal(t, "crimson", e.Names()[0])
}
