package commands

import (
	"context"
	"log/slog"
	"os"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Interval time.Duration `help:"Also rebuild on this interval (e.g. 10m); overrides watch.interval"`
}

func (w *WatchCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	svc, cfg, cleanup, err := newService(root, g)
	if err != nil {
		return err
	}
	defer cleanup()

	opts := watch.Options{Debounce: cfg.Watch.Debounce, Interval: cfg.Watch.Interval}
	if w.Interval > 0 {
		opts.Interval = w.Interval
	}

	watcher := watch.New(cfg.Content.Dir, func(ctx context.Context, reason string) error {
		report, err := svc.Build(ctx)
		if report != nil {
			g.Logger.Info("Rebuilt site", slog.String("reason", reason), slog.String("status", string(report.Status)))
			_ = printReport(os.Stdout, report, false)
		}
		return err
	}, opts).WithLogger(g.Logger)
	return watcher.Run(ctx)
}
