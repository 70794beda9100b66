package themes

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/article"
	"git.home.luguber.info/inful/sitebuilder/internal/plugin"
)

// Template file names every template theme must provide.
const (
	PageTemplate  = "page.html"
	IndexTemplate = "index.html"
)

// Site is the site-wide data templates can reference.
type Site struct {
	Title       string
	Owner       string
	Description string
}

// PageData is the data passed to page.html.
type PageData struct {
	Site    Site
	Article article.Article
	// Root is the relative path from the page back to the site root.
	Root string
}

// IndexData is the data passed to index.html.
type IndexData struct {
	Site     Site
	Articles []article.Preview
}

type templateTheme struct {
	tmpl *template.Template
	site Site
}

// LoadFS returns a loader that parses page.html and index.html from fsys.
// Parsing happens at link time; each instance works on its own clone.
func LoadFS(fsys fs.FS) plugin.LoadTheme {
	return func(options map[string]any) (plugin.ThemeConstructor, error) {
		site, err := siteFromOptions(options)
		if err != nil {
			return nil, err
		}

		root := template.New("theme").Funcs(FuncMap()).Option("missingkey=error")
		for _, name := range []string{PageTemplate, IndexTemplate} {
			src, err := fs.ReadFile(fsys, name)
			if err != nil {
				return nil, fmt.Errorf("read template %s: %w", name, err)
			}
			if _, err := root.New(name).Parse(string(src)); err != nil {
				return nil, fmt.Errorf("parse template %s: %w", name, err)
			}
		}

		return func() plugin.Theme {
			return &templateTheme{tmpl: template.Must(root.Clone()), site: site}
		}, nil
	}
}

func (t *templateTheme) GeneratePage(ctx context.Context, a article.Article) (string, error) {
	depth := len(a.Category) + 1
	data := PageData{Site: t.site, Article: a, Root: strings.Repeat("../", depth)}
	return t.execute(ctx, PageTemplate, data)
}

func (t *templateTheme) GenerateIndex(ctx context.Context, previews []article.Preview) (string, error) {
	return t.execute(ctx, IndexTemplate, IndexData{Site: t.site, Articles: previews})
}

func (t *templateTheme) execute(ctx context.Context, name string, data any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func siteFromOptions(options map[string]any) (Site, error) {
	var site Site
	for k, v := range options {
		s, ok := v.(string)
		if !ok {
			return Site{}, fmt.Errorf("theme option %q must be a string, got %T", k, v)
		}
		switch k {
		case "title":
			site.Title = s
		case "owner":
			site.Owner = s
		case "description":
			site.Description = s
		default:
			return Site{}, fmt.Errorf("unknown theme option %q", k)
		}
	}
	return site, nil
}
