package parse

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/article"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/markdown"
)

// Result is the outcome of parsing one record. Exactly one of Article and
// Err is meaningful.
type Result struct {
	Path    string
	Article article.Article
	Err     error
}

// Stage parses records on a fixed number of workers.
type Stage struct {
	workers  int
	renderer *markdown.Renderer
	logger   *slog.Logger
}

// NewStage creates a parse stage. workers <= 0 selects GOMAXPROCS.
func NewStage(workers int, renderer *markdown.Renderer) *Stage {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if renderer == nil {
		renderer = markdown.NewRenderer(markdown.Options{})
	}
	return &Stage{workers: workers, renderer: renderer, logger: slog.Default()}
}

// WithLogger sets a custom logger.
func (s *Stage) WithLogger(logger *slog.Logger) *Stage {
	s.logger = logger
	return s
}

// Workers returns the pool size.
func (s *Stage) Workers() int { return s.workers }

// Run parses every record and streams results in completion order. The
// returned channel is closed once all records are parsed or ctx is done;
// on cancellation some records may produce no result.
func (s *Stage) Run(ctx context.Context, records []article.Record) <-chan Result {
	jobs := make(chan article.Record)
	results := make(chan Result, s.workers)

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for rec := range jobs {
				start := time.Now()
				a, err := Parse(s.renderer, rec)
				res := Result{Path: rec.Path(), Article: a, Err: err}
				if err != nil {
					s.logger.Warn("Article failed to parse",
						logfields.Article(res.Path), logfields.Worker(worker), logfields.Error(err))
				} else {
					s.logger.Debug("Article parsed",
						logfields.Article(res.Path), logfields.Worker(worker),
						logfields.DurationMS(float64(time.Since(start).Microseconds())/1000))
				}
				select {
				case results <- res:
				case <-ctx.Done():
					return
				}
			}
		}(i)
	}

	go func() {
		defer close(jobs)
		for _, rec := range records {
			select {
			case jobs <- rec:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}
