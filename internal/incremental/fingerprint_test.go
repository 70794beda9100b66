package incremental

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFingerprint(t *testing.T) {
	env := Environment{
		Theme: Component{Name: "minimal", Version: "1.0.0"},
		Chain: []Component{{Name: "a", Version: "1"}, {Name: "b", Version: "1"}},
	}
	base := Fingerprint("notes/alpha", "h1", env)

	t.Run("stable", func(t *testing.T) {
		require.Equal(t, base, Fingerprint("notes/alpha", "h1", env))
		require.Len(t, base, 64)
	})

	t.Run("content", func(t *testing.T) {
		require.NotEqual(t, base, Fingerprint("notes/alpha", "h2", env))
	})

	t.Run("identity", func(t *testing.T) {
		require.NotEqual(t, base, Fingerprint("other/alpha", "h1", env))
		require.NotEqual(t, base, Fingerprint("notes/alpha.nb", "h1", env))
	})

	t.Run("theme version", func(t *testing.T) {
		e := env
		e.Theme.Version = "1.0.1"
		require.NotEqual(t, base, Fingerprint("notes/alpha", "h1", e))
	})

	t.Run("chain order", func(t *testing.T) {
		e := env
		e.Chain = []Component{env.Chain[1], env.Chain[0]}
		require.NotEqual(t, base, Fingerprint("notes/alpha", "h1", e))
	})

	t.Run("plugin version", func(t *testing.T) {
		e := env
		e.Chain = []Component{env.Chain[0], {Name: "b", Version: "2"}}
		require.NotEqual(t, base, Fingerprint("notes/alpha", "h1", e))
	})

	t.Run("nil and empty chain agree", func(t *testing.T) {
		e1 := Environment{Theme: env.Theme}
		e2 := Environment{Theme: env.Theme, Chain: []Component{}}
		require.Equal(t, Fingerprint("notes/alpha", "h1", e1), Fingerprint("notes/alpha", "h1", e2))
	})
}

func TestEnvironmentIdentity(t *testing.T) {
	a := Environment{Theme: Component{Name: "t", Version: "1"}}
	b := Environment{Theme: Component{Name: "t", Version: "2"}}
	require.NotEqual(t, a.Identity(), b.Identity())
	require.Equal(t, a.Identity(), a.Identity())
	require.Equal(t, "theme=t@1 chain=[]", a.String())
}

func TestFingerprint_Settings(t *testing.T) {
	d1, err := SettingsDigest(map[string]any{"b": 1, "a": "x"})
	require.NoError(t, err)
	d2, err := SettingsDigest(map[string]any{"a": "x", "b": 1})
	require.NoError(t, err)
	require.Equal(t, d1, d2)

	env := Environment{Theme: Component{Name: "t", Version: "1"}, Settings: d1}
	other := env
	other.Settings = "different"
	require.NotEqual(t, Fingerprint("notes/alpha", "h", env), Fingerprint("notes/alpha", "h", other))
}
