package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/sandbox"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("site:\n  title: Notes\n"))
	require.NoError(t, err)

	require.Equal(t, "Notes", cfg.Site.Title)
	require.Equal(t, "content", cfg.Content.Dir)
	require.Equal(t, "public", cfg.Output.Dir)
	require.Equal(t, "minimal", cfg.Theme.Name)
	require.Equal(t, CacheBackendSQLite, cfg.Cache.Backend)
	require.Equal(t, ".sitebuilder/cache.db", cfg.Cache.Path)
	require.Equal(t, runtime.GOMAXPROCS(0), cfg.Build.ParseWorkers)
	require.Equal(t, runtime.GOMAXPROCS(0), cfg.Build.RenderWorkers)
	require.Equal(t, 500*time.Millisecond, cfg.Watch.Debounce)
	require.False(t, cfg.Events.Enabled())
}

func TestParse_Full(t *testing.T) {
	doc := `
site:
  title: Field notes
  owner: sam
content:
  dir: articles
  default_locale: en
output:
  dir: out
theme:
  dir: themes/plain
plugins:
  - name: reading-time
    options:
      words_per_minute: 250
  - name: page-log
    grants:
      filesystem: [build]
  - name: build-stamp
    grants:
      clock: true
cache:
  backend: MongoDB
  mongo_uri: mongodb://localhost:27017
build:
  render_workers: 2
events:
  nats_url: nats://localhost:4222
watch:
  debounce: 2s
  interval: 1h
`
	cfg, err := Parse([]byte(doc))
	require.NoError(t, err)

	require.Equal(t, "plain", cfg.Theme.Name)
	require.Equal(t, "0.0.0", cfg.Theme.Version)
	require.Len(t, cfg.Plugins, 3)
	require.Equal(t, 250, cfg.Plugins[0].Options["words_per_minute"])
	require.Equal(t, CacheBackendMongo, cfg.Cache.Backend)
	require.Equal(t, "sitebuilder", cfg.Cache.MongoDatabase)
	require.Equal(t, "render_cache", cfg.Cache.MongoCollection)
	require.Equal(t, 2, cfg.Build.RenderWorkers)
	require.Equal(t, "sitebuilder.builds", cfg.Events.Subject)
	require.Equal(t, 2*time.Second, cfg.Watch.Debounce)
	require.Equal(t, time.Hour, cfg.Watch.Interval)

	grants, err := cfg.Plugins[1].Grants.Sandbox()
	require.NoError(t, err)
	require.Equal(t, []sandbox.Namespace{sandbox.NamespaceBuild}, grants.Filesystem)
	require.True(t, cfg.Plugins[2].Grants.Clock)
}

func TestParse_Invalid(t *testing.T) {
	cases := map[string]string{
		"unknown backend":   "cache:\n  backend: redis\n",
		"mongo without uri": "cache:\n  backend: mongo\n",
		"same dirs":         "content:\n  dir: site\noutput:\n  dir: site\n",
		"duplicate plugin":  "plugins:\n  - name: a\n  - name: a\n",
		"unnamed plugin":    "plugins:\n  - version: 1.0.0\n",
		"bad namespace":     "plugins:\n  - name: a\n    grants:\n      filesystem: [home]\n",
		"malformed yaml":    "site: [",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			require.Error(t, err)
			require.True(t, errors.HasCategory(err, errors.CategoryConfig))
		})
	}
}

func TestLoad_ExpandsEnvironment(t *testing.T) {
	t.Setenv("SITEBUILDER_TEST_TITLE", "From env")
	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte("site:\n  title: ${SITEBUILDER_TEST_TITLE}\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "From env", cfg.Site.Title)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestNormalizeLogLevel(t *testing.T) {
	require.Equal(t, LogLevelDebug, NormalizeLogLevel(" DEBUG "))
	require.Equal(t, LogLevelWarn, NormalizeLogLevel("warning"))
	require.Equal(t, LogLevelInfo, NormalizeLogLevel("chatty"))
}
