package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifiedError(t *testing.T) {
	t.Run("builder sets fields", func(t *testing.T) {
		err := NewError(CategoryConfig, "invalid configuration").
			Fatal().
			WithContext("file", "sitebuilder.yaml").
			WithContext("line", 3).
			Build()

		require.Equal(t, CategoryConfig, err.Category())
		require.Equal(t, SeverityFatal, err.Severity())
		require.Equal(t, "invalid configuration", err.Message())
		file, ok := err.Field("file")
		require.True(t, ok)
		require.Equal(t, "sitebuilder.yaml", file)
		line, _ := err.Field("line")
		require.Equal(t, "3", line)
		_, ok = err.Field("missing")
		require.False(t, ok)
	})

	t.Run("classification survives fmt wrapping", func(t *testing.T) {
		inner := WrapError(stderrors.New("disk full"), CategoryCache, "cache write failed").Fatal().Build()
		wrapped := fmt.Errorf("page posts/hello: %w", inner)

		require.True(t, IsClassified(wrapped))
		require.True(t, HasCategory(wrapped, CategoryCache))
		require.True(t, IsFatal(wrapped))
		require.Contains(t, wrapped.Error(), "disk full")
	})

	t.Run("sentinel matching", func(t *testing.T) {
		sentinel := LinkError("theme imports a capability").Build()
		err := fmt.Errorf("load: %w", sentinel.WithContext("theme", "x"))
		require.ErrorIs(t, err, sentinel)
		require.NotErrorIs(t, err, LinkError("other").Build())
	})

	t.Run("WithContext does not mutate the sentinel", func(t *testing.T) {
		sentinel := HookError("hook failed").Build()
		_ = sentinel.WithContext("hook", "a")
		require.Empty(t, sentinel.Fields())
	})

	t.Run("unclassified", func(t *testing.T) {
		require.Equal(t, CategoryInternal, GetCategory(stderrors.New("plain")))
		require.False(t, IsFatal(stderrors.New("plain")))
	})
}

func TestErrorBuilderDefaults(t *testing.T) {
	cases := []struct {
		name     string
		builder  *ErrorBuilder
		category ErrorCategory
		fatal    bool
	}{
		{"parse", ParseError("bad frontmatter"), CategoryParse, false},
		{"capability", CapabilityError("clock not granted"), CategoryCapability, false},
		{"hook", HookError("hook failed"), CategoryHook, false},
		{"render", RenderError("theme fault"), CategoryRender, false},
		{"link", LinkError("theme link"), CategoryLink, true},
		{"cache", CacheError("cache corrupt"), CategoryCache, true},
		{"config", ConfigError("bad yaml"), CategoryConfig, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.builder.Build()
			require.Equal(t, tc.category, err.Category())
			require.Equal(t, tc.fatal, err.IsFatal())
		})
	}
}

func TestCLIErrorAdapter(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(&buf, nil)))

	require.Equal(t, 0, adapter.ExitCodeFor(nil))
	require.Equal(t, 1, adapter.ExitCodeFor(stderrors.New("plain")))
	require.Equal(t, 9, adapter.ExitCodeFor(LinkError("bad theme").Build()))
	require.Equal(t, 13, adapter.ExitCodeFor(CacheError("bad cache").Build()))
	require.Equal(t, 7, adapter.ExitCodeFor(fmt.Errorf("load: %w", ConfigError("bad").Build())))

	err := WrapError(stderrors.New("no such file"), CategoryConfig, "cannot read config").WithContext("path", "x.yaml").Build()
	require.Equal(t, "Error: cannot read config (use -v for details)", adapter.FormatError(err))
	require.Contains(t, NewCLIErrorAdapter(true, nil).FormatError(err), "no such file")

	adapter.LogError(err)
	require.Contains(t, buf.String(), "category=config")
	require.Contains(t, buf.String(), "path=x.yaml")
}
