package build

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/events"
	"git.home.luguber.info/inful/sitebuilder/internal/plugin"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func newTestService(t *testing.T) (*Service, *config.Config, *events.Recorder) {
	t.Helper()
	base := t.TempDir()
	content := filepath.Join(base, "content")
	writeFile(t, filepath.Join(content, "go", "channels", "article.md"),
		"---\ncreated: 2024-02-01\ntags: [go]\n---\n# Channels\n\nSee [the docs](https://go.dev/ref/spec).\n")
	writeFile(t, filepath.Join(content, "go", "channels", "article.fr.md"),
		"---\ncreated: 2024-02-01\n---\n# Canaux\n\nTexte.\n")
	writeFile(t, filepath.Join(content, "misc", "hello", "article.md"),
		"---\ncreated: 2024-01-01\ntitle: Hello\n---\nHello world.\n")

	doc := fmt.Sprintf(`
site:
  title: Test site
content:
  dir: %[1]s/content
output:
  dir: %[1]s/public
plugins:
  - name: reading-time
  - name: scratch
    grants:
      filesystem: [tmp, cache]
  - name: external-links
  - name: page-log
    grants:
      filesystem: [build]
cache:
  backend: sqlite
build:
  state_dir: %[1]s/state
  render_workers: 2
metrics:
  textfile: %[1]s/sitebuilder.prom
`, base)
	cfg, err := config.Parse([]byte(doc))
	require.NoError(t, err)

	svc, err := NewService(cfg)
	require.NoError(t, err)
	rec := &events.Recorder{}
	return svc.WithPublisher(rec), cfg, rec
}

func TestService_BuildTwice(t *testing.T) {
	svc, cfg, rec := newTestService(t)
	ctx := context.Background()

	report, err := svc.Build(ctx)
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, report.Status, "%+v", report.Errors)
	require.Equal(t, 3, report.Changed)
	require.Equal(t, 3, report.Rendered)

	page, err := os.ReadFile(filepath.Join(cfg.Output.Dir, "go", "channels", "index.html"))
	require.NoError(t, err)
	require.Contains(t, string(page), "Channels")
	require.Contains(t, string(page), `rel="noopener noreferrer"`)
	require.FileExists(t, filepath.Join(cfg.Output.Dir, "go", "channels", "index.fr.html"))
	require.FileExists(t, filepath.Join(cfg.Output.Dir, "index.html"))
	require.FileExists(t, filepath.Join(cfg.Output.Dir, ".pages.log"))
	require.FileExists(t, cfg.Cache.Path)
	require.FileExists(t, cfg.Metrics.Textfile)

	report, err = svc.Build(ctx)
	require.NoError(t, err)
	require.Zero(t, report.Changed)
	require.Equal(t, 3, report.Unchanged)
	require.Equal(t, TaskRendered, report.Index)

	require.Len(t, rec.Events, 2)
	var published Report
	require.NoError(t, json.Unmarshal(rec.Events[1], &published))
	require.Equal(t, report.BuildID, published.BuildID)
}

func TestService_OptionChangeInvalidatesPages(t *testing.T) {
	svc, cfg, _ := newTestService(t)
	_, err := svc.Build(context.Background())
	require.NoError(t, err)

	cfg.Plugins[0].Options = map[string]any{"words_per_minute": 100}
	svc2, err := NewService(cfg)
	require.NoError(t, err)
	report, err := svc2.Build(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, report.Changed)
	require.Equal(t, 3, report.Rendered)
}

func TestService_VerifyAndClean(t *testing.T) {
	svc, cfg, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.Build(ctx)
	require.NoError(t, err)

	report, err := svc.Verify(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, report.Skipped)
	require.Empty(t, report.Drift)

	removed, err := svc.Clean(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, removed)
	require.NoDirExists(t, cfg.Output.Dir)
	require.NoDirExists(t, filepath.Join(cfg.Build.StateDir, "plugins"))
}

func TestService_UnknownThemeIsLinkError(t *testing.T) {
	cfg, err := config.Parse([]byte("theme:\n  name: nonexistent\n"))
	require.NoError(t, err)
	svc, err := NewService(cfg)
	require.NoError(t, err)

	_, err = svc.Build(context.Background())
	require.ErrorIs(t, err, plugin.ErrThemeLink)
	require.Equal(t, KindThemeLink, KindOf(err))
}

func TestService_HookWithoutGrantFailsToLink(t *testing.T) {
	svc, cfg, _ := newTestService(t)
	cfg.Plugins[3].Grants = config.GrantsConfig{}

	_, err := svc.Build(context.Background())
	require.ErrorIs(t, err, plugin.ErrHookLink)
}
