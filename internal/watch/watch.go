// Package watch rebuilds the site when content changes or on a fixed
// interval.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

// BuildFunc runs one build. reason names the trigger.
type BuildFunc func(ctx context.Context, reason string) error

// Reasons passed to BuildFunc.
const (
	ReasonStartup  = "startup"
	ReasonChange   = "change"
	ReasonInterval = "interval"
)

// Options tunes a Watcher.
type Options struct {
	// Debounce is the quiet period after the last change before a rebuild.
	Debounce time.Duration
	// Interval triggers periodic rebuilds when non-zero.
	Interval time.Duration
}

// Watcher triggers builds. Builds never overlap; triggers arriving during a
// build are coalesced into one follow-up build.
type Watcher struct {
	dir    string
	build  BuildFunc
	opts   Options
	logger *slog.Logger

	requests chan string
}

// New creates a watcher for the content directory dir.
func New(dir string, build BuildFunc, opts Options) *Watcher {
	if opts.Debounce <= 0 {
		opts.Debounce = 500 * time.Millisecond
	}
	return &Watcher{
		dir:      dir,
		build:    build,
		opts:     opts,
		logger:   slog.Default(),
		requests: make(chan string, 1),
	}
}

// WithLogger sets a custom logger.
func (w *Watcher) WithLogger(logger *slog.Logger) *Watcher {
	w.logger = logger
	return w
}

// Run builds once, then watches until ctx is done. Build errors are logged
// and do not stop the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer func() { _ = fw.Close() }()
	if err := addDirsRecursive(fw, w.dir); err != nil {
		return err
	}

	if w.opts.Interval > 0 {
		s, err := gocron.NewScheduler()
		if err != nil {
			return fmt.Errorf("failed to create gocron scheduler: %w", err)
		}
		if _, err := s.NewJob(
			gocron.DurationJob(w.opts.Interval),
			gocron.NewTask(w.trigger, ReasonInterval),
			gocron.WithName("periodic-build"),
		); err != nil {
			return fmt.Errorf("failed to create periodic build job: %w", err)
		}
		s.Start()
		defer func() { _ = s.Shutdown() }()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		w.runBuilds(ctx)
	}()

	w.trigger(ReasonStartup)
	w.logger.Info("Watching content", logfields.Path(w.dir),
		slog.Duration("debounce", w.opts.Debounce), slog.Duration("interval", w.opts.Interval))

	var timer *time.Timer
	stopTimer := func() {
		if timer != nil {
			timer.Stop()
		}
	}
	defer stopTimer()

	for {
		select {
		case <-ctx.Done():
			stopTimer()
			<-done
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(fw, ev) {
				continue
			}
			w.logger.Debug("Content change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
			stopTimer()
			timer = time.AfterFunc(w.opts.Debounce, func() { w.trigger(ReasonChange) })
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Content watcher error", logfields.Error(err))
		}
	}
}

// trigger requests a build; a pending request absorbs it.
func (w *Watcher) trigger(reason string) {
	select {
	case w.requests <- reason:
	default:
	}
}

func (w *Watcher) runBuilds(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case reason := <-w.requests:
			start := time.Now()
			if err := w.build(ctx, reason); err != nil {
				w.logger.Error("Build failed", slog.String("reason", reason), logfields.Error(err))
				continue
			}
			w.logger.Debug("Build triggered by watcher completed", slog.String("reason", reason),
				logfields.DurationMS(float64(time.Since(start).Microseconds())/1000))
		}
	}
}

// relevant filters editor noise and starts watching new directories.
func (w *Watcher) relevant(fw *fsnotify.Watcher, ev fsnotify.Event) bool {
	base := filepath.Base(ev.Name)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") {
		return false
	}
	if ev.Op&fsnotify.Create == fsnotify.Create {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := addDirsRecursive(fw, ev.Name); err != nil {
				w.logger.Warn("Failed to watch new directory", logfields.Path(ev.Name), logfields.Error(err))
			}
			return true
		}
	}
	if ev.Op == fsnotify.Chmod {
		return false
	}
	return true
}

func addDirsRecursive(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := fw.Add(p); err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
		return nil
	})
}
