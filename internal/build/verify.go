package build

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/sitebuilder/internal/article"
	"git.home.luguber.info/inful/sitebuilder/internal/incremental"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

// Verify re-renders every article whose page is in the render cache and
// reports pages whose fresh rendering differs from the cached bytes. It
// writes no output, no snapshot and nothing to the cache.
//
// Drift means a theme or hook is not deterministic for its inputs, so the
// cache may serve stale pages.
func (e *Engine) Verify(ctx context.Context, records []article.Record) (*Report, error) {
	report := &Report{
		Revision: e.opts.Revision,
		Started:  e.now(),
		Articles: len(records),
		Index:    TaskPending,
		Tasks:    make(map[string]TaskState),
	}
	logger := e.logger.With(logfields.Stage("verify"))
	col := newCollector(report, e.recorder)

	hashes := make(map[string]string, len(records))
	for _, r := range records {
		hashes[r.Path()] = incremental.ContentHash(r)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.RenderWorkers)
	for res := range e.opts.Parser.Run(gctx, records) {
		if res.Err != nil {
			col.fail(NewTaskError(incremental.PageTask(res.Path), res.Err))
			continue
		}
		a := res.Article
		g.Go(func() error {
			fp := incremental.Fingerprint(a.Path, hashes[a.Path], e.env)
			cached, hit, err := e.opts.Cache.Get(gctx, fp)
			if err != nil {
				return err
			}
			if !hit {
				return nil
			}
			col.done(incremental.PageTask(a.Path), TaskCached)
			return e.checkDrift(gctx, col, a, fp, cached)
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	col.finish()
	report.Duration = e.now().Sub(report.Started)

	switch {
	case canceled(err):
		report.Status = StatusCanceled
		return report, err
	case err != nil:
		report.Status = StatusFailed
		return report, err
	case len(report.Drift) > 0 || len(report.Errors) > 0:
		report.Status = StatusPartial
	default:
		report.Status = StatusSuccess
	}
	logger.Info("Verify finished",
		slog.Int("checked", report.Skipped),
		slog.Int("drift", len(report.Drift)),
		slog.String("status", string(report.Status)))
	return report, nil
}
