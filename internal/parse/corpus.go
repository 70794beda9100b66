package parse

import (
	"slices"

	"git.home.luguber.info/inful/sitebuilder/internal/article"
)

// Corpus aggregates parse results into the ordered input of the index.
type Corpus struct {
	articles map[string]article.Article
	failed   map[string]error
}

// NewCorpus creates an empty corpus.
func NewCorpus() *Corpus {
	return &Corpus{
		articles: make(map[string]article.Article),
		failed:   make(map[string]error),
	}
}

// Add records one result. Not safe for concurrent use; the collector owns it.
func (c *Corpus) Add(r Result) {
	if r.Err != nil {
		c.failed[r.Path] = r.Err
		return
	}
	c.articles[r.Path] = r.Article
}

// Article returns the parsed article at path.
func (c *Corpus) Article(path string) (article.Article, bool) {
	a, ok := c.articles[path]
	return a, ok
}

// Failed returns parse errors by article path.
func (c *Corpus) Failed() map[string]error { return c.failed }

// Len returns the number of successfully parsed articles.
func (c *Corpus) Len() int { return len(c.articles) }

// Previews returns the previews of every parsed article, newest first with
// path as tie-breaker. The order never depends on parse completion order.
// Failed articles are not included.
func (c *Corpus) Previews() []article.Preview {
	out := make([]article.Preview, 0, len(c.articles))
	for _, a := range c.articles {
		out = append(out, a.Preview)
	}
	article.SortPreviews(out)
	return out
}

// Paths returns the parsed article paths in sorted order.
func (c *Corpus) Paths() []string {
	paths := make([]string, 0, len(c.articles))
	for p := range c.articles {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return paths
}
