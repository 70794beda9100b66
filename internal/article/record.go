package article

import (
	"strings"
)

// Record is a raw article source as produced by the content loader.
//
// Content is the markdown body with frontmatter removed; Metadata is the raw
// YAML frontmatter. Both participate in change detection and fingerprinting,
// as does Categories, the metadata of the enclosing category directories.
type Record struct {
	Category   []string
	Categories []CategoryInfo // aligned with Category, nil when none
	Slug       string
	Locale     string // empty for the default locale
	Content    []byte
	Metadata   []byte
	Source     string // on-disk path, for diagnostics only
}

// Path returns the stable identity of the record: category segments and slug
// joined by "/", suffixed with "@locale" for non-default locale variants.
func (r Record) Path() string {
	return Identity(r.Category, r.Slug, r.Locale)
}

// Identity builds the canonical article path used as snapshot and report key.
func Identity(category []string, slug, locale string) string {
	parts := make([]string, 0, len(category)+1)
	parts = append(parts, category...)
	parts = append(parts, slug)
	id := strings.Join(parts, "/")
	if locale != "" {
		id += "@" + locale
	}
	return id
}

// ParseIdentity splits an article path produced by Identity back into its
// category segments, slug and locale.
func ParseIdentity(path string) (category []string, slug, locale string) {
	if i := strings.LastIndex(path, "@"); i >= 0 {
		path, locale = path[:i], path[i+1:]
	}
	parts := strings.Split(path, "/")
	return parts[:len(parts)-1], parts[len(parts)-1], locale
}
