package workspace

import (
	"context"
	stdErrors "errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sitebuilder/internal/article"
	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/frontmatter"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

// ArticleFile is the base name of an article source.
const ArticleFile = "article"

// CategoryFile is the optional metadata file of a category directory.
const CategoryFile = "category.yaml"

var (
	// ErrDuplicateArticle indicates two sources mapping to the same article path.
	ErrDuplicateArticle = errors.ValidationError("duplicate article path").Build()

	// ErrCategoryMetadata indicates an unreadable or malformed category file.
	ErrCategoryMetadata = errors.ValidationError("invalid category metadata").Build()
)

// Loader scans a content directory for article sources.
type Loader struct {
	dir           string
	defaultLocale string
	logger        *slog.Logger
}

// NewLoader creates a loader for dir. Variants in defaultLocale are treated
// as the default variant.
func NewLoader(dir, defaultLocale string) *Loader {
	return &Loader{dir: dir, defaultLocale: defaultLocale, logger: slog.Default()}
}

// WithLogger sets a custom logger.
func (l *Loader) WithLogger(logger *slog.Logger) *Loader {
	l.logger = logger
	return l
}

// Load returns every article record ordered by path.
//
// Records whose directory name does not produce a usable slug are returned
// with an empty slug, so the parse stage reports them like any other
// malformed article. Two sources with the same path are a validation error.
func (l *Loader) Load(ctx context.Context) ([]article.Record, error) {
	info, err := os.Stat(l.dir)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "content directory not accessible").
			WithContext("path", l.dir).Build()
	}
	if !info.IsDir() {
		return nil, errors.ConfigError("content path is not a directory").WithContext("path", l.dir).Build()
	}

	var records []article.Record
	sources := make(map[string]string)
	categories := make(map[string]article.CategoryInfo)

	err = filepath.WalkDir(l.dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if p != l.dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		locale, ok := l.localeOf(d.Name())
		if !ok {
			return nil
		}
		rec, err := l.read(p, locale, categories)
		if err != nil {
			return err
		}

		id := rec.Path()
		if prev, dup := sources[id]; dup && rec.Slug != "" {
			return errors.WrapError(fmt.Errorf("%s and %s", prev, p), errors.CategoryValidation, ErrDuplicateArticle.Message()).
				WithContext("article", id).Fatal().Build()
		}
		sources[id] = p
		records = append(records, rec)
		return nil
	})
	if err != nil {
		if errors.IsClassified(err) {
			return nil, err
		}
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to scan content directory").
			WithContext("path", l.dir).Build()
	}

	slices.SortFunc(records, func(a, b article.Record) int {
		return strings.Compare(a.Path(), b.Path())
	})
	l.logger.Debug("Loaded content", logfields.Path(l.dir), slog.Int("articles", len(records)))
	return records, nil
}

// localeOf reports whether name is an article source and returns its locale.
func (l *Loader) localeOf(name string) (string, bool) {
	base, ok := strings.CutSuffix(name, ".md")
	if !ok {
		return "", false
	}
	if base == ArticleFile {
		return "", true
	}
	locale, ok := strings.CutPrefix(base, ArticleFile+".")
	if !ok || locale == "" || strings.ContainsAny(locale, "./@") {
		return "", false
	}
	if locale == l.defaultLocale {
		return "", true
	}
	return locale, true
}

func (l *Loader) read(p, locale string, categories map[string]article.CategoryInfo) (article.Record, error) {
	rel, err := filepath.Rel(l.dir, filepath.Dir(p))
	if err != nil {
		return article.Record{}, err
	}

	rec := article.Record{Locale: locale, Source: p}
	if rel != "." {
		segments := strings.Split(filepath.ToSlash(rel), "/")
		infos := make([]article.CategoryInfo, 0, len(segments)-1)
		described := false
		for i, seg := range segments[:len(segments)-1] {
			s, err := article.Slugify(seg)
			if err != nil {
				s = seg
			}
			rec.Category = append(rec.Category, s)

			info, err := l.category(categories, filepath.Join(l.dir, filepath.Join(segments[:i+1]...)))
			if err != nil {
				return article.Record{}, err
			}
			described = described || !info.IsZero()
			infos = append(infos, info)
		}
		if described {
			rec.Categories = infos
		}
		if slug, err := article.Slugify(segments[len(segments)-1]); err == nil {
			rec.Slug = slug
		}
	}
	if rec.Slug == "" {
		l.logger.Warn("Article directory has no usable slug", logfields.Path(p))
	}

	// #nosec G304 - p comes from walking the configured content directory
	raw, err := os.ReadFile(p)
	if err != nil {
		return article.Record{}, err
	}
	fm, body, _, err := frontmatter.Split(raw)
	if err != nil {
		// Keep the record; the parse stage reports the malformed frontmatter.
		rec.Metadata = raw
		return rec, nil
	}
	rec.Metadata = fm
	rec.Content = body
	return rec, nil
}

// category returns the metadata of the category directory dir, reading its
// CategoryFile at most once per load.
func (l *Loader) category(seen map[string]article.CategoryInfo, dir string) (article.CategoryInfo, error) {
	if info, ok := seen[dir]; ok {
		return info, nil
	}
	p := filepath.Join(dir, CategoryFile)
	// #nosec G304 - p is a category directory below the content directory
	data, err := os.ReadFile(p)
	if stdErrors.Is(err, fs.ErrNotExist) {
		seen[dir] = article.CategoryInfo{}
		return article.CategoryInfo{}, nil
	}
	if err != nil {
		return article.CategoryInfo{}, errors.WrapError(err, errors.CategoryValidation, ErrCategoryMetadata.Message()).
			WithContext("path", p).Fatal().Build()
	}

	var info article.CategoryInfo
	if err := yaml.Unmarshal(data, &info); err != nil {
		return article.CategoryInfo{}, errors.WrapError(err, errors.CategoryValidation, ErrCategoryMetadata.Message()).
			WithContext("path", p).Fatal().Build()
	}
	info.Name = strings.TrimSpace(info.Name)
	seen[dir] = info
	l.logger.Debug("Loaded category metadata", logfields.Path(p))
	return info, nil
}
