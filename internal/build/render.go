package build

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/pmezard/go-difflib/difflib"

	"git.home.luguber.info/inful/sitebuilder/internal/article"
	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/incremental"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/output"
	"git.home.luguber.info/inful/sitebuilder/internal/plugin"
)

// renderPage runs one page task. Only fatal errors are returned; task
// failures go to the collector.
func (e *Engine) renderPage(ctx context.Context, logger *slog.Logger, col *collector, st *output.Staging, a article.Article, hash string) error {
	task := incremental.PageTask(a.Path)
	fp := incremental.Fingerprint(a.Path, hash, e.env)
	dest := output.PagePath(a.Path)
	logger = logger.With(logfields.Task(task.String()), logfields.Fingerprint(fp))

	cached, hit, err := e.opts.Cache.Get(ctx, fp)
	if err != nil {
		return err
	}
	e.recorder.IncCacheLookup(hit)

	if hit {
		if e.opts.Verify {
			if err := e.checkDrift(ctx, col, a, fp, cached); err != nil {
				return err
			}
		}
		if err := e.write(st, dest, cached); err != nil {
			return err
		}
		logger.Debug("Page served from cache")
		col.done(task, TaskCached)
		return nil
	}

	html, err := e.renderFresh(ctx, a, dest)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Warn("Page task failed", logfields.Error(err))
		col.fail(NewTaskError(task, err))
		return nil
	}

	if err := e.opts.Cache.Put(ctx, fp, []byte(html)); err != nil {
		return err
	}
	if err := e.write(st, dest, []byte(html)); err != nil {
		return err
	}
	logger.Debug("Page rendered")
	col.done(task, TaskRendered)
	return nil
}

// renderFresh runs the uncached page pipeline: pre-render hooks, the theme,
// then post-render hooks.
func (e *Engine) renderFresh(ctx context.Context, a article.Article, dest string) (string, error) {
	a, err := e.opts.Hooks.PreRender(ctx, a)
	if err != nil {
		return "", err
	}
	html, err := e.opts.Theme.GeneratePage(ctx, a)
	if err != nil {
		return "", err
	}
	return e.opts.Hooks.PostRender(ctx, plugin.Page{Path: a.Path, Output: dest, Article: &a}, html)
}

// renderIndex runs the index task. The index is never cached.
func (e *Engine) renderIndex(ctx context.Context, logger *slog.Logger, col *collector, st *output.Staging, previews []article.Preview) error {
	task := incremental.IndexTask()
	logger = logger.With(logfields.Task(task.String()))

	html, err := e.renderIndexHTML(ctx, previews)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Warn("Index task failed", logfields.Error(err))
		col.fail(NewTaskError(task, err))
		return nil
	}
	if err := e.write(st, output.IndexFile, []byte(html)); err != nil {
		return err
	}
	logger.Debug("Index rendered", slog.Int("articles", len(previews)))
	col.done(task, TaskRendered)
	return nil
}

func (e *Engine) renderIndexHTML(ctx context.Context, previews []article.Preview) (string, error) {
	previews, err := e.opts.Hooks.PreRenderIndex(ctx, previews)
	if err != nil {
		return "", err
	}
	html, err := e.opts.Theme.GenerateIndex(ctx, previews)
	if err != nil {
		return "", err
	}
	return e.opts.Hooks.PostRender(ctx, plugin.Page{Output: output.IndexFile}, html)
}

// checkDrift re-renders a cache hit and records a diff when the fresh bytes
// differ from the cached ones. A failing re-render is recorded as drift too.
func (e *Engine) checkDrift(ctx context.Context, col *collector, a article.Article, fp string, cached []byte) error {
	fresh, err := e.renderFresh(ctx, a, output.PagePath(a.Path))
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		col.drift(Drift{Path: a.Path, Fingerprint: fp, Diff: "re-render failed: " + err.Error()})
		return nil
	}
	if bytes.Equal(cached, []byte(fresh)) {
		return nil
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(cached)),
		B:        difflib.SplitLines(fresh),
		FromFile: "cached",
		ToFile:   "rendered",
		Context:  2,
	})
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to diff page").Build()
	}
	e.logger.Warn("Cached page differs from a fresh rendering", logfields.Article(a.Path), logfields.Fingerprint(fp))
	col.drift(Drift{Path: a.Path, Fingerprint: fp, Diff: diff})
	return nil
}

func (e *Engine) write(st *output.Staging, rel string, data []byte) error {
	if err := st.Write(rel, data); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, ErrOutputWrite.Message()).
			WithContext("path", rel).Fatal().Build()
	}
	return nil
}
