package build

import (
	"context"
	"log/slog"
	"path/filepath"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/sitebuilder/internal/article"
	"git.home.luguber.info/inful/sitebuilder/internal/cache"
	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/events"
	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/incremental"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/markdown"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/output"
	"git.home.luguber.info/inful/sitebuilder/internal/parse"
	"git.home.luguber.info/inful/sitebuilder/internal/plugin"
	"git.home.luguber.info/inful/sitebuilder/internal/plugin/hooks"
	"git.home.luguber.info/inful/sitebuilder/internal/plugin/themes"
	"git.home.luguber.info/inful/sitebuilder/internal/sandbox"
	"git.home.luguber.info/inful/sitebuilder/internal/workspace"
)

// Service runs builds described by a configuration. All execution paths
// (build, watch, verify) route through it.
type Service struct {
	cfg       *config.Config
	registry  *plugin.Registry
	recorder  metrics.Recorder
	promReg   *prom.Registry
	publisher events.Publisher
	logger    *slog.Logger
}

// NewService creates a service for cfg. Built-in themes and hooks are
// registered; a configured theme directory is registered under its name.
func NewService(cfg *config.Config) (*Service, error) {
	reg := plugin.NewRegistry()
	if err := themes.RegisterMinimal(reg); err != nil {
		return nil, err
	}
	if err := hooks.Register(reg); err != nil {
		return nil, err
	}
	if cfg.Theme.Dir != "" {
		if err := themes.RegisterDirectory(reg, cfg.Theme.Name, cfg.Theme.Version, cfg.Theme.Dir); err != nil {
			return nil, errors.WrapError(err, errors.CategoryConfig, "invalid theme directory").Build()
		}
	}

	s := &Service{cfg: cfg, registry: reg, recorder: metrics.NoopRecorder{}, logger: slog.Default()}
	if cfg.Metrics.Textfile != "" {
		s.promReg = prom.NewRegistry()
		s.recorder = metrics.NewPrometheusRecorder(s.promReg)
	}
	return s, nil
}

// Registry exposes the component registry so callers can add components.
func (s *Service) Registry() *plugin.Registry { return s.registry }

// WithLogger sets a custom logger.
func (s *Service) WithLogger(logger *slog.Logger) *Service {
	s.logger = logger
	return s
}

// WithRecorder replaces the metrics recorder.
func (s *Service) WithRecorder(r metrics.Recorder) *Service {
	s.recorder = r
	return s
}

// WithPublisher publishes every build report through p.
func (s *Service) WithPublisher(p events.Publisher) *Service {
	s.publisher = p
	return s
}

// scratch returns the hook scratch dirs: a fresh temp dir per build and a
// plugin cache kept under the state dir.
func (s *Service) scratch() *workspace.Scratch {
	return workspace.NewScratch("", filepath.Join(s.cfg.Build.StateDir, "plugins")).WithLogger(s.logger)
}

// session is one linked engine plus the resources it holds.
type session struct {
	engine  *Engine
	records []article.Record
	store   cache.Store
	scratch *workspace.Scratch
}

func (ss *session) close(logger *slog.Logger) {
	if err := ss.store.Close(); err != nil {
		logger.Warn("Failed to close render cache", logfields.Error(err))
	}
	if err := ss.scratch.Cleanup(); err != nil {
		logger.Warn("Failed to remove hook scratch directory", logfields.Error(err))
	}
}

// open links the theme and hooks, opens the cache and loads the content.
// Link and cache errors are fatal and returned before any task runs.
func (s *Service) open(ctx context.Context, verify bool) (*session, error) {
	cfg := s.cfg

	themeOptions := map[string]any{
		"title":       cfg.Site.Title,
		"owner":       cfg.Site.Owner,
		"description": cfg.Site.Description,
	}
	for k, v := range cfg.Theme.Options {
		themeOptions[k] = v
	}
	theme, err := plugin.LinkTheme(s.registry, plugin.Ref{Name: cfg.Theme.Name, Version: cfg.Theme.Version}, themeOptions)
	if err != nil {
		return nil, err
	}
	theme.WithLogger(s.logger)

	scratch := s.scratch()
	if err := scratch.Create(); err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to create hook scratch directory").Build()
	}
	mounts := sandbox.Mounts{
		Tmp:   scratch.TempDir(),
		Cache: scratch.CacheDir(),
		Build: cfg.Output.Dir,
	}

	specs := make([]plugin.HookSpec, 0, len(cfg.Plugins))
	pluginOptions := make([]map[string]any, 0, len(cfg.Plugins))
	for _, p := range cfg.Plugins {
		grants, err := p.Grants.Sandbox()
		if err != nil {
			_ = scratch.Cleanup()
			return nil, errors.WrapError(err, errors.CategoryConfig, "invalid plugin grants").
				WithContext("plugin", p.Name).Build()
		}
		specs = append(specs, plugin.HookSpec{
			Ref:     plugin.Ref{Name: p.Name, Version: p.Version},
			Grants:  grants,
			Options: p.Options,
		})
		pluginOptions = append(pluginOptions, p.Options)
	}
	host, err := plugin.LinkHooks(s.registry, specs, mounts, sandbox.WithLogger(s.logger))
	if err != nil {
		_ = scratch.Cleanup()
		return nil, err
	}
	host.WithLogger(s.logger)

	settings, err := incremental.SettingsDigest(map[string]any{
		"theme":              themeOptions,
		"plugins":            pluginOptions,
		"description_length": cfg.Build.DescriptionLength,
	})
	if err != nil {
		_ = scratch.Cleanup()
		return nil, errors.WrapError(err, errors.CategoryConfig, "plugin options are not serializable").Build()
	}

	store, err := cache.Open(ctx, cache.Options{
		Backend:         cache.Backend(cfg.Cache.Backend),
		Path:            cfg.Cache.Path,
		MongoURI:        cfg.Cache.MongoURI,
		MongoDatabase:   cfg.Cache.MongoDatabase,
		MongoCollection: cfg.Cache.MongoCollection,
	})
	if err != nil {
		_ = scratch.Cleanup()
		if !errors.IsClassified(err) {
			err = errors.WrapError(err, errors.CategoryCache, cache.ErrOpenFailed.Message()).Fatal().Build()
		}
		return nil, err
	}
	ss := &session{store: store, scratch: scratch}

	records, err := workspace.NewLoader(cfg.Content.Dir, cfg.Content.DefaultLocale).WithLogger(s.logger).Load(ctx)
	if err != nil {
		ss.close(s.logger)
		return nil, err
	}
	ss.records = records

	rev, err := workspace.ReadRevision(cfg.Content.Dir)
	if err != nil {
		s.logger.Warn("Could not read workspace revision", logfields.Error(err))
	}

	renderer := markdown.NewRenderer(markdown.Options{DescriptionLength: cfg.Build.DescriptionLength})
	ss.engine = NewEngine(Options{
		Theme:         theme,
		Hooks:         host,
		Cache:         store,
		Output:        output.NewWriter(cfg.Output.Dir).WithLogger(s.logger),
		Parser:        parse.NewStage(cfg.Build.ParseWorkers, renderer).WithLogger(s.logger),
		Settings:      settings,
		RenderWorkers: cfg.Build.RenderWorkers,
		Verify:        verify,
		Revision:      rev,
	}).WithRecorder(s.recorder).WithLogger(s.logger)
	return ss, nil
}

// Build runs one incremental build.
func (s *Service) Build(ctx context.Context) (*Report, error) {
	ss, err := s.open(ctx, s.cfg.Build.Verify)
	if err != nil {
		s.recorder.IncBuildOutcome(metrics.BuildOutcomeFailed)
		s.exportMetrics()
		return nil, err
	}
	defer ss.close(s.logger)

	report, err := ss.engine.Build(ctx, ss.records)
	s.publish(ctx, report)
	s.exportMetrics()
	return report, err
}

// Verify re-renders cached pages and reports drift without writing anything.
func (s *Service) Verify(ctx context.Context) (*Report, error) {
	ss, err := s.open(ctx, true)
	if err != nil {
		return nil, err
	}
	defer ss.close(s.logger)
	return ss.engine.Verify(ctx, ss.records)
}

// Clean removes the output directory (and the snapshot in it), every render
// cache entry and the persistent plugin cache.
func (s *Service) Clean(ctx context.Context) (int, error) {
	store, err := cache.Open(ctx, cache.Options{
		Backend:         cache.Backend(s.cfg.Cache.Backend),
		Path:            s.cfg.Cache.Path,
		MongoURI:        s.cfg.Cache.MongoURI,
		MongoDatabase:   s.cfg.Cache.MongoDatabase,
		MongoCollection: s.cfg.Cache.MongoCollection,
	})
	if err != nil {
		return 0, err
	}
	defer func() { _ = store.Close() }()

	removed, err := store.Sweep(ctx, nil)
	if err != nil {
		return 0, err
	}
	if err := output.NewWriter(s.cfg.Output.Dir).Clean(); err != nil {
		return removed, errors.WrapError(err, errors.CategoryFileSystem, "failed to clean output").Build()
	}
	if err := s.scratch().PurgeCache(); err != nil {
		return removed, errors.WrapError(err, errors.CategoryFileSystem, "failed to clean plugin cache").Build()
	}
	s.logger.Info("Cleaned output and render cache", logfields.Path(s.cfg.Output.Dir), slog.Int("cache_entries", removed))
	return removed, nil
}

func (s *Service) publish(ctx context.Context, report *Report) {
	if s.publisher == nil || report == nil {
		return
	}
	// A cancelled build still reports; use a context that outlives it.
	if err := s.publisher.Publish(context.WithoutCancel(ctx), report); err != nil {
		s.logger.Warn("Failed to publish build report", logfields.BuildID(report.BuildID), logfields.Error(err))
	}
}

func (s *Service) exportMetrics() {
	if s.promReg == nil {
		return
	}
	if err := metrics.WriteTextfile(s.cfg.Metrics.Textfile, s.promReg); err != nil {
		s.logger.Warn("Failed to write metrics textfile", logfields.Path(s.cfg.Metrics.Textfile), logfields.Error(err))
	}
}
