// Package plugin hosts the two kinds of versioned rendering components:
// themes, which turn articles into HTML and must be pure, and lifecycle
// hooks, which run before and after the theme with explicitly granted
// capabilities.
package plugin

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/sitebuilder/internal/article"
	"git.home.luguber.info/inful/sitebuilder/internal/sandbox"
)

// Metadata describes a component's identity and the host capabilities it
// imports.
type Metadata struct {
	// Name is the unique component identifier (e.g., "minimal", "reading-time").
	Name string

	// Version is the semantic version (e.g., "1.0.0").
	Version string

	Kind Kind

	Description string

	// Imports lists the capabilities the component needs. Themes must not
	// import anything; hooks may only import what configuration grants.
	Imports []sandbox.Capability
}

// String returns a human-readable representation of the metadata.
func (m Metadata) String() string {
	return fmt.Sprintf("%s@%s (%s)", m.Name, m.Version, m.Kind)
}

// ID returns name@version.
func (m Metadata) ID() string {
	return m.Name + "@" + m.Version
}

// Validate checks that required fields are present.
func (m Metadata) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("component name is required")
	}
	if m.Version == "" {
		return fmt.Errorf("component version is required")
	}
	if !m.Kind.valid() {
		return fmt.Errorf("invalid component kind: %q", m.Kind)
	}
	for _, c := range m.Imports {
		if _, err := sandbox.ParseCapability(string(c)); err != nil {
			return err
		}
	}
	return nil
}

// Theme renders pages and the index. Implementations must be deterministic:
// the same input always yields the same bytes.
type Theme interface {
	GeneratePage(ctx context.Context, a article.Article) (string, error)
	GenerateIndex(ctx context.Context, previews []article.Preview) (string, error)
}

// Page identifies what a post-render hook is looking at.
type Page struct {
	// Path is the article path, empty for the index.
	Path string

	// Output is the slash-separated output file relative to the site root.
	Output string

	// Article is nil for the index.
	Article *article.Article
}

// IsIndex reports whether the page is the site index.
func (p Page) IsIndex() bool { return p.Article == nil }

// Hook is a lifecycle hook. Each stage receives the previous hook's output.
type Hook interface {
	PreRender(env sandbox.Env, a article.Article) (article.Article, error)
	PreRenderIndex(env sandbox.Env, previews []article.Preview) ([]article.Preview, error)
	PostRender(env sandbox.Env, page Page, html string) (string, error)
}

// BaseHook passes every stage through unchanged. Embed it and override the
// stages a hook cares about.
type BaseHook struct{}

func (BaseHook) PreRender(_ sandbox.Env, a article.Article) (article.Article, error) {
	return a, nil
}

func (BaseHook) PreRenderIndex(_ sandbox.Env, previews []article.Preview) ([]article.Preview, error) {
	return previews, nil
}

func (BaseHook) PostRender(_ sandbox.Env, _ Page, html string) (string, error) {
	return html, nil
}

// ThemeConstructor creates a fresh theme instance.
type ThemeConstructor func() Theme

// HookConstructor creates a fresh hook instance.
type HookConstructor func() Hook

// LoadTheme links a theme: it validates the theme's resources and options
// once and returns a constructor for per-render instances.
type LoadTheme func(options map[string]any) (ThemeConstructor, error)

// LoadHook links a hook against its options.
type LoadHook func(options map[string]any) (HookConstructor, error)
