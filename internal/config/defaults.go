package config

import (
	"path/filepath"
	"runtime"
	"time"
)

const (
	defaultTitle           = "Untitled site"
	defaultContentDir      = "content"
	defaultOutputDir       = "public"
	defaultTheme           = "minimal"
	defaultStateDir        = ".sitebuilder"
	defaultMongoDatabase   = "sitebuilder"
	defaultMongoCollection = "render_cache"
	defaultEventSubject    = "sitebuilder.builds"
	defaultDebounce        = 500 * time.Millisecond
	defaultDescriptionLen  = 160
)

// ApplyDefaults fills unset fields.
func ApplyDefaults(cfg *Config) {
	if cfg.Site.Title == "" {
		cfg.Site.Title = defaultTitle
	}
	if cfg.Content.Dir == "" {
		cfg.Content.Dir = defaultContentDir
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = defaultOutputDir
	}
	if cfg.Theme.Name == "" && cfg.Theme.Dir == "" {
		cfg.Theme.Name = defaultTheme
	}
	if cfg.Theme.Name == "" {
		cfg.Theme.Name = filepath.Base(cfg.Theme.Dir)
	}
	if cfg.Theme.Dir != "" && cfg.Theme.Version == "" {
		cfg.Theme.Version = "0.0.0"
	}

	if cfg.Build.StateDir == "" {
		cfg.Build.StateDir = defaultStateDir
	}
	applyCacheDefaults(&cfg.Cache, cfg.Build.StateDir)

	if cfg.Build.ParseWorkers <= 0 {
		cfg.Build.ParseWorkers = runtime.GOMAXPROCS(0)
	}
	if cfg.Build.RenderWorkers <= 0 {
		cfg.Build.RenderWorkers = runtime.GOMAXPROCS(0)
	}
	if cfg.Build.DescriptionLength <= 0 {
		cfg.Build.DescriptionLength = defaultDescriptionLen
	}

	if cfg.Events.Enabled() && cfg.Events.Subject == "" {
		cfg.Events.Subject = defaultEventSubject
	}
	if cfg.Watch.Debounce <= 0 {
		cfg.Watch.Debounce = defaultDebounce
	}
}

func applyCacheDefaults(c *CacheConfig, stateDir string) {
	c.Backend = NormalizeCacheBackend(string(c.Backend))
	switch c.Backend {
	case CacheBackendSQLite:
		if c.Path == "" {
			c.Path = filepath.Join(stateDir, "cache.db")
		}
	case CacheBackendFS:
		if c.Path == "" {
			c.Path = filepath.Join(stateDir, "cache")
		}
	case CacheBackendMongo:
		if c.MongoDatabase == "" {
			c.MongoDatabase = defaultMongoDatabase
		}
		if c.MongoCollection == "" {
			c.MongoCollection = defaultMongoCollection
		}
	}
}
