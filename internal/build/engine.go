package build

import (
	"context"
	stdErrors "errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/sitebuilder/internal/article"
	"git.home.luguber.info/inful/sitebuilder/internal/cache"
	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/incremental"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/output"
	"git.home.luguber.info/inful/sitebuilder/internal/parse"
	"git.home.luguber.info/inful/sitebuilder/internal/plugin"
	"git.home.luguber.info/inful/sitebuilder/internal/workspace"
)

// Theme renders pages and the index. *plugin.ThemeHost implements it.
type Theme interface {
	GeneratePage(ctx context.Context, a article.Article) (string, error)
	GenerateIndex(ctx context.Context, previews []article.Preview) (string, error)
	Component() incremental.Component
}

// Hooks is the lifecycle hook chain. *plugin.PluginHost implements it.
type Hooks interface {
	PreRender(ctx context.Context, a article.Article) (article.Article, error)
	PreRenderIndex(ctx context.Context, previews []article.Preview) ([]article.Preview, error)
	PostRender(ctx context.Context, page plugin.Page, html string) (string, error)
	Chain() []incremental.Component
}

// Options are the collaborators of an Engine.
type Options struct {
	Theme  Theme
	Hooks  Hooks
	Cache  cache.Store
	Output *output.Writer
	Parser *parse.Stage

	// Settings is folded into the render environment; see
	// incremental.SettingsDigest.
	Settings string

	// RenderWorkers bounds concurrently running page tasks.
	RenderWorkers int

	// Verify re-renders cache hits and reports drift.
	Verify bool

	Revision workspace.Revision
}

// Engine executes builds. It is safe to run one build at a time.
type Engine struct {
	opts     Options
	env      incremental.Environment
	recorder metrics.Recorder
	logger   *slog.Logger
	now      func() time.Time
}

// NewEngine creates an engine. Theme, Cache and Output are required.
func NewEngine(opts Options) *Engine {
	if opts.Hooks == nil {
		opts.Hooks = noHooks{}
	}
	if opts.Parser == nil {
		opts.Parser = parse.NewStage(0, nil)
	}
	if opts.RenderWorkers <= 0 {
		opts.RenderWorkers = opts.Parser.Workers()
	}
	return &Engine{
		opts: opts,
		env: incremental.Environment{
			Theme:    opts.Theme.Component(),
			Chain:    opts.Hooks.Chain(),
			Settings: opts.Settings,
		},
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
		now:      time.Now,
	}
}

// WithRecorder sets the metrics recorder.
func (e *Engine) WithRecorder(r metrics.Recorder) *Engine {
	e.recorder = r
	return e
}

// WithLogger sets a custom logger.
func (e *Engine) WithLogger(logger *slog.Logger) *Engine {
	e.logger = logger
	return e
}

// WithClock replaces the clock used for snapshot timestamps.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Environment returns the render environment of this engine.
func (e *Engine) Environment() incremental.Environment { return e.env }

// Build runs one incremental build over records.
//
// The returned report is never nil. The error is non-nil only when the build
// aborted: a cache store fault, an output write failure or cancellation.
func (e *Engine) Build(ctx context.Context, records []article.Record) (*Report, error) {
	start := e.now()
	report := &Report{
		BuildID:  uuid.NewString(),
		Revision: e.opts.Revision,
		Started:  start,
		Articles: len(records),
		Index:    TaskPending,
		Tasks:    make(map[string]TaskState),
	}
	logger := e.logger.With(logfields.BuildID(report.BuildID))
	logger.Info("Build started", slog.Int("articles", len(records)), slog.String("environment", e.env.String()))
	e.recorder.SetArticles(len(records))

	err := e.build(ctx, logger, records, report)

	report.Duration = e.now().Sub(start)
	switch {
	case err == nil && len(report.Errors) == 0:
		report.Status = StatusSuccess
	case err == nil:
		report.Status = StatusPartial
	case canceled(err):
		report.Status = StatusCanceled
	default:
		report.Status = StatusFailed
	}
	e.recorder.ObserveBuildDuration(report.Duration)
	e.recorder.IncBuildOutcome(report.Status.outcome())

	attrs := []any{
		slog.String("status", string(report.Status)),
		slog.Int("changed", report.Changed),
		slog.Int("rendered", report.Rendered),
		slog.Int("cached", report.Skipped),
		slog.Int("failed", report.Failed),
		slog.Int("deleted", report.Deleted),
		logfields.DurationMS(float64(report.Duration.Microseconds()) / 1000),
	}
	if err != nil {
		logger.Error("Build aborted", append(attrs, logfields.Error(err))...)
		return report, err
	}
	logger.Info("Build finished", attrs...)
	return report, nil
}

func (e *Engine) build(ctx context.Context, logger *slog.Logger, records []article.Record, report *Report) error {
	stageStart := time.Now()
	prev, err := incremental.LoadSnapshot(e.opts.Output.Root())
	if err != nil {
		logger.Warn("Ignoring unreadable snapshot", logfields.Error(err))
		prev = nil
	}

	delta := e.detect(logger, records, prev)
	tasks := incremental.Plan(delta)
	report.Changed = len(tasks) - 1
	report.Unchanged = len(delta.Unchanged)
	report.Deleted = len(delta.Deleted)
	for _, t := range tasks {
		report.Tasks[t.String()] = TaskPending
	}
	e.recorder.ObserveStageDuration("detect", time.Since(stageStart))

	col := newCollector(report, e.recorder)
	defer col.finish()

	// Pages, the index and removals go to a staging area first; the live
	// tree changes only once nothing fatal can happen anymore.
	st, err := e.opts.Output.Stage()
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, ErrOutputWrite.Message()).Fatal().Build()
	}
	defer func() {
		if err := st.Discard(); err != nil {
			logger.Warn("Failed to discard staged output", logfields.Path(st.Dir()), logfields.Error(err))
		}
	}()

	changed := make(map[string]struct{}, report.Changed)
	for _, t := range tasks {
		if t.Kind == incremental.TaskPage {
			changed[t.Path] = struct{}{}
		}
	}

	// Pages start as soon as their article is parsed. A fatal page error
	// cancels gctx, which also stops the parse stage.
	stageStart = time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.RenderWorkers)

	corpus := parse.NewCorpus()
	for res := range e.opts.Parser.WithLogger(logger).Run(gctx, records) {
		corpus.Add(res)
		if res.Err != nil {
			col.fail(NewTaskError(incremental.PageTask(res.Path), res.Err))
			continue
		}
		if _, ok := changed[res.Path]; !ok {
			continue
		}
		a, hash := res.Article, delta.Hashes[res.Path]
		g.Go(func() error {
			return e.renderPage(gctx, logger, col, st, a, hash)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	e.recorder.ObserveStageDuration("render", time.Since(stageStart))

	stageStart = time.Now()
	if err := e.renderIndex(ctx, logger, col, st, corpus.Previews()); err != nil {
		return err
	}
	e.recorder.ObserveStageDuration("index", time.Since(stageStart))

	for _, p := range delta.Deleted {
		if err := st.Remove(output.PagePath(p)); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, ErrOutputWrite.Message()).
				WithContext("article", p).Fatal().Build()
		}
		logger.Debug("Removed output of deleted article", logfields.Article(p))
	}

	live := make(map[string]struct{}, len(delta.Hashes))
	for p, hash := range delta.Hashes {
		live[incremental.Fingerprint(p, hash, e.env)] = struct{}{}
	}
	swept, err := e.opts.Cache.Sweep(ctx, live)
	if err != nil {
		return err
	}
	report.Swept = swept

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := st.Commit(); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, ErrOutputWrite.Message()).Fatal().Build()
	}

	snap := incremental.NewSnapshot(e.env, e.now())
	failed := col.failedPaths()
	for p, hash := range delta.Hashes {
		if _, bad := failed[p]; bad {
			continue
		}
		snap.Hashes[p] = hash
	}
	if err := incremental.SaveSnapshot(e.opts.Output.Root(), snap); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, ErrOutputWrite.Message()).
			WithContext("path", incremental.SnapshotFile).Fatal().Build()
	}
	return nil
}

// detect compares records with prev. A snapshot from a different render
// environment invalidates every article; deletions are still detected.
func (e *Engine) detect(logger *slog.Logger, records []article.Record, prev *incremental.Snapshot) incremental.Delta {
	if prev == nil || prev.Environment == e.env.Identity() {
		return incremental.Detect(records, prev)
	}

	logger.Info("Render environment changed, rebuilding all pages", slog.String("environment", e.env.String()))
	delta := incremental.Detect(records, nil)
	for _, p := range prev.Paths() {
		if _, ok := delta.Hashes[p]; !ok {
			delta.Deleted = append(delta.Deleted, p)
		}
	}
	return delta
}

func canceled(err error) bool {
	return stdErrors.Is(err, context.Canceled) || stdErrors.Is(err, context.DeadlineExceeded)
}

type noHooks struct{}

func (noHooks) PreRender(_ context.Context, a article.Article) (article.Article, error) {
	return a, nil
}

func (noHooks) PreRenderIndex(_ context.Context, p []article.Preview) ([]article.Preview, error) {
	return p, nil
}

func (noHooks) PostRender(_ context.Context, _ plugin.Page, html string) (string, error) {
	return html, nil
}

func (noHooks) Chain() []incremental.Component { return nil }
