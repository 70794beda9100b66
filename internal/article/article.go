package article

import (
	"maps"
	"slices"
	"strings"
	"time"
)

// Metadata is the typed form of an article's frontmatter.
type Metadata struct {
	Created     time.Time      `json:"created"`
	Tags        []string       `json:"tags,omitempty"`
	Author      string         `json:"author"`
	Description string         `json:"description,omitempty"`
	Extra       map[string]any `json:"extra,omitempty"`
}

// Clone returns a deep copy of the metadata.
func (m Metadata) Clone() Metadata {
	out := m
	out.Tags = slices.Clone(m.Tags)
	if m.Extra != nil {
		out.Extra = make(map[string]any, len(m.Extra))
		maps.Copy(out.Extra, m.Extra)
	}
	return out
}

// Preview is the index-facing projection of an Article.
type Preview struct {
	Path        string   `json:"path"`
	Title       string   `json:"title"`
	Slug        string   `json:"slug"`
	Category    []string `json:"category"`
	Locale      string   `json:"locale,omitempty"`
	Description string   `json:"description"`
	Metadata    Metadata `json:"metadata"`

	// Categories holds per-segment category metadata, aligned with
	// Category. It is nil when no category directory has any.
	Categories []CategoryInfo `json:"categories,omitempty"`
}

// URL returns the site-relative location of the rendered page.
func (p Preview) URL() string {
	return OutputPath(p.Category, p.Slug, p.Locale)
}

// Article is the parsed, typed form of a Record.
//
// Articles are treated as values: stages that need to modify one (lifecycle
// hooks) work on a Clone and hand the copy on.
type Article struct {
	Preview
	Body string // markdown source without frontmatter
	HTML string // markdown rendered to HTML
}

// Clone returns a deep copy of the article.
func (a Article) Clone() Article {
	out := a
	out.Category = slices.Clone(a.Category)
	out.Categories = slices.Clone(a.Categories)
	out.Metadata = a.Metadata.Clone()
	return out
}

// OutputPath returns the slash-separated output file for a page.
func OutputPath(category []string, slug, locale string) string {
	name := "index.html"
	if locale != "" {
		name = "index." + locale + ".html"
	}
	parts := make([]string, 0, len(category)+2)
	parts = append(parts, category...)
	parts = append(parts, slug, name)
	return strings.Join(parts, "/")
}
