package parse

import (
	"fmt"
	"slices"

	"git.home.luguber.info/inful/sitebuilder/internal/article"
	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/frontmatter"
	"git.home.luguber.info/inful/sitebuilder/internal/markdown"
)

// ErrParseFailed is the sentinel every per-article parse error matches.
var ErrParseFailed = errors.ParseError("failed to parse article").Build()

// Parse converts one record into an Article. It touches no shared state.
func Parse(r *markdown.Renderer, rec article.Record) (article.Article, error) {
	path := rec.Path()
	fail := func(err error) (article.Article, error) {
		return article.Article{}, errors.WrapError(err, errors.CategoryParse, ErrParseFailed.Message()).
			WithContext("article", path).
			WithContext("source", rec.Source).
			Build()
	}

	fields, err := frontmatter.Decode(rec.Metadata)
	if err != nil {
		return fail(fmt.Errorf("frontmatter: %w", err))
	}
	if rec.Slug == "" {
		return fail(article.ErrEmptySlug)
	}

	res, err := r.Convert(rec.Content)
	if err != nil {
		return fail(fmt.Errorf("markdown: %w", err))
	}

	title := fields.Title
	if title == "" {
		title = res.Title
	}
	if title == "" {
		title = rec.Slug
	}
	description := fields.Description
	if description == "" {
		description = res.Description
	}

	return article.Article{
		Preview: article.Preview{
			Path:        path,
			Title:       title,
			Slug:        rec.Slug,
			Category:    append([]string(nil), rec.Category...),
			Categories:  slices.Clone(rec.Categories),
			Locale:      rec.Locale,
			Description: description,
			Metadata: article.Metadata{
				Created:     fields.Created,
				Tags:        fields.Tags,
				Author:      fields.Author,
				Description: fields.Description,
				Extra:       fields.Extra,
			},
		},
		Body: string(rec.Content),
		HTML: res.HTML,
	}, nil
}
