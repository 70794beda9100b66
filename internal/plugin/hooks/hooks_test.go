package hooks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/article"
	"git.home.luguber.info/inful/sitebuilder/internal/plugin"
	"git.home.luguber.info/inful/sitebuilder/internal/sandbox"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, specs ...plugin.HookSpec) (*plugin.PluginHost, sandbox.Mounts) {
	t.Helper()
	reg := plugin.NewRegistry()
	require.NoError(t, Register(reg))

	base := t.TempDir()
	m := sandbox.Mounts{
		Tmp:   filepath.Join(base, "tmp"),
		Cache: filepath.Join(base, "cache"),
		Build: filepath.Join(base, "build"),
	}
	clock := sandbox.WithClock(func() time.Time { return time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC) })
	host, err := plugin.LinkHooks(reg, specs, m, clock)
	require.NoError(t, err)
	return host, m
}

func spec(name string, grants sandbox.Grants, options map[string]any) plugin.HookSpec {
	return plugin.HookSpec{Ref: plugin.Ref{Name: name}, Grants: grants, Options: options}
}

func TestReadingTime(t *testing.T) {
	host, _ := setup(t, spec("reading-time", sandbox.Grants{}, map[string]any{"words_per_minute": 2}))

	a := article.Article{Body: "one two three four five"}
	out, err := host.PreRender(context.Background(), a)
	require.NoError(t, err)
	require.Equal(t, 3, out.Metadata.Extra[ReadingMinutesKey])
	require.Nil(t, a.Metadata.Extra)
}

func TestReadingTime_RejectsBadOptions(t *testing.T) {
	reg := plugin.NewRegistry()
	require.NoError(t, Register(reg))
	_, err := plugin.LinkHooks(reg, []plugin.HookSpec{spec("reading-time", sandbox.Grants{}, map[string]any{"words_per_minute": 0})}, sandbox.Mounts{})
	require.ErrorIs(t, err, plugin.ErrHookLink)
}

func TestExternalLinks(t *testing.T) {
	host, _ := setup(t, spec("external-links", sandbox.Grants{}, nil))

	in := `<html><head></head><body><a href="https://go.dev">go</a> <a href="/local">local</a></body></html>`
	out, err := host.PostRender(context.Background(), plugin.Page{}, in)
	require.NoError(t, err)
	require.Contains(t, out, `<a href="https://go.dev" rel="noopener noreferrer" target="_blank" class="external">go</a>`)
	require.Contains(t, out, `<a href="/local">local</a>`)
}

func TestExternalLinks_NoExternalLinksLeavesHTMLUntouched(t *testing.T) {
	host, _ := setup(t, spec("external-links", sandbox.Grants{}, nil))

	in := "<!DOCTYPE html>\n<p><a href=\"a/b\">x</a></p>"
	out, err := host.PostRender(context.Background(), plugin.Page{}, in)
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestBuildStamp(t *testing.T) {
	host, _ := setup(t, spec("build-stamp", sandbox.Grants{Clock: true}, nil))

	out, err := host.PostRender(context.Background(), plugin.Page{}, "<html><head></head><body></body></html>")
	require.NoError(t, err)
	require.Contains(t, out, `<meta name="generated" content="2024-06-01T08:00:00Z">`+"\n</head>")
}

func TestBuildStamp_RequiresClockGrant(t *testing.T) {
	reg := plugin.NewRegistry()
	require.NoError(t, Register(reg))
	_, err := plugin.LinkHooks(reg, []plugin.HookSpec{spec("build-stamp", sandbox.Grants{}, nil)}, sandbox.Mounts{})
	require.ErrorIs(t, err, plugin.ErrHookLink)
	require.Contains(t, err.Error(), "clock")
}

func TestPageLog(t *testing.T) {
	build := sandbox.Grants{Filesystem: []sandbox.Namespace{sandbox.NamespaceBuild}}
	host, m := setup(t, spec("page-log", build, nil))

	for _, out := range []string{"a/index.html", "index.html"} {
		_, err := host.PostRender(context.Background(), plugin.Page{Output: out}, "<p>")
		require.NoError(t, err)
	}

	data, err := os.ReadFile(filepath.Join(m.Build, PageLogFile))
	require.NoError(t, err)
	require.Equal(t, "a/index.html\nindex.html\n", string(data))
}

func TestPageLog_EscapingFileIsViolation(t *testing.T) {
	build := sandbox.Grants{Filesystem: []sandbox.Namespace{sandbox.NamespaceBuild}}
	host, _ := setup(t, spec("page-log", build, map[string]any{"file": "../../escape.log"}))

	_, err := host.PostRender(context.Background(), plugin.Page{Output: "x"}, "<p>")
	require.ErrorIs(t, err, sandbox.ErrCapabilityViolation)
}

func TestScratch_MemoizesInCache(t *testing.T) {
	grants := sandbox.Grants{Filesystem: []sandbox.Namespace{sandbox.NamespaceTmp, sandbox.NamespaceCache}}
	host, m := setup(t, spec("scratch", grants, nil))

	a := article.Article{Body: "alpha beta gamma"}
	out, err := host.PreRender(context.Background(), a)
	require.NoError(t, err)
	require.Equal(t, 3, out.Metadata.Extra[WordCountKey])

	var cached []string
	require.NoError(t, filepath.Walk(filepath.Join(m.Cache, "scratch"), func(p string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			cached = append(cached, p)
		}
		return err
	}))
	require.Len(t, cached, 1)
	require.True(t, strings.Contains(cached[0], "wordcount"))

	// Second run is served from the cache namespace.
	require.NoError(t, os.WriteFile(cached[0], []byte("42"), 0o600))
	out, err = host.PreRender(context.Background(), a)
	require.NoError(t, err)
	require.Equal(t, 42, out.Metadata.Extra[WordCountKey])
}

func TestScratch_ConcurrentIdenticalBodies(t *testing.T) {
	grants := sandbox.Grants{Filesystem: []sandbox.Namespace{sandbox.NamespaceTmp, sandbox.NamespaceCache}}
	host, m := setup(t, spec("scratch", grants, nil))

	const n = 16
	errs := make([]error, n)
	counts := make([]any, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a := article.Article{Body: "same words here"}
			a.Path = fmt.Sprintf("notes/copy-%d", i)
			out, err := host.PreRender(context.Background(), a)
			errs[i] = err
			counts[i] = out.Metadata.Extra[WordCountKey]
		}()
	}
	wg.Wait()

	for i := range n {
		require.NoError(t, errs[i])
		require.Equal(t, 3, counts[i])
	}

	entries, err := os.ReadDir(m.Tmp)
	if err == nil {
		var left []string
		for _, e := range entries {
			if !e.IsDir() {
				left = append(left, e.Name())
			}
		}
		require.Empty(t, left, "staged bodies are removed")
	}
}
