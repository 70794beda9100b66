package plugin

import (
	"context"
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/sitebuilder/internal/article"
	"git.home.luguber.info/inful/sitebuilder/internal/incremental"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

// Ref selects a registered component.
type Ref struct {
	Name    string
	Version string // empty selects the latest version
}

// ThemeHost runs a linked theme. Every Generate call gets a fresh instance
// and no capabilities.
type ThemeHost struct {
	meta     Metadata
	newTheme ThemeConstructor
	logger   *slog.Logger
}

// LinkTheme resolves ref in reg and links it. A theme that is unknown,
// imports any capability or fails to load is a link error.
func LinkTheme(reg *Registry, ref Ref, options map[string]any) (*ThemeHost, error) {
	id := ref.Name + "@" + ref.Version
	c, err := reg.Get(ref.Name, ref.Version)
	if err != nil {
		return nil, classify(ErrThemeLink, id, OpLink, err)
	}
	id = c.Metadata.ID()
	if c.Metadata.Kind != KindTheme {
		return nil, classify(ErrThemeLink, id, OpLink, fmt.Errorf("%s is a %s, not a theme", id, c.Metadata.Kind))
	}
	if len(c.Metadata.Imports) > 0 {
		return nil, classify(ErrThemeLink, id, OpLink, fmt.Errorf("themes may not import capabilities, %s imports %v", id, c.Metadata.Imports))
	}

	newTheme, err := safeLoad(func() (ThemeConstructor, error) { return c.loadTheme(options) })
	if err != nil {
		return nil, classify(ErrThemeLink, id, OpLink, err)
	}

	return &ThemeHost{meta: c.Metadata, newTheme: newTheme, logger: slog.Default()}, nil
}

// WithLogger sets a custom logger.
func (h *ThemeHost) WithLogger(logger *slog.Logger) *ThemeHost {
	h.logger = logger
	return h
}

// Metadata returns the linked theme's metadata.
func (h *ThemeHost) Metadata() Metadata { return h.meta }

// Component returns the theme identity used for fingerprinting.
func (h *ThemeHost) Component() incremental.Component {
	return incremental.Component{Name: h.meta.Name, Version: h.meta.Version}
}

// GeneratePage renders one article. Errors and panics become theme render
// faults for this page only.
func (h *ThemeHost) GeneratePage(ctx context.Context, a article.Article) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return h.run(OpGeneratePage, a.Path, func(t Theme) (string, error) {
		return t.GeneratePage(ctx, a.Clone())
	})
}

// GenerateIndex renders the index from previews in the given order.
func (h *ThemeHost) GenerateIndex(ctx context.Context, previews []article.Preview) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	cp := make([]article.Preview, len(previews))
	for i, p := range previews {
		cp[i] = p
		cp[i].Category = append([]string(nil), p.Category...)
		cp[i].Metadata = p.Metadata.Clone()
	}
	return h.run(OpGenerateIndex, "", func(t Theme) (string, error) {
		return t.GenerateIndex(ctx, cp)
	})
}

func (h *ThemeHost) run(op, path string, fn func(Theme) (string, error)) (html string, err error) {
	id := h.meta.ID()
	defer func() {
		if r := recover(); r != nil {
			html, err = "", classify(ErrThemeRender, id, op, panicError(r))
		}
		if err != nil {
			h.logger.Debug("Theme render fault",
				logfields.Theme(id), logfields.Article(path), logfields.Error(err))
		}
	}()

	out, err := fn(h.newTheme())
	if err != nil {
		return "", classify(ErrThemeRender, id, op, err)
	}
	return out, nil
}

func safeLoad[T any](load func() (T, error)) (out T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicError(r)
		}
	}()
	return load()
}
