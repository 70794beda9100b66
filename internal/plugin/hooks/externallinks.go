package hooks

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"git.home.luguber.info/inful/sitebuilder/internal/plugin"
	"git.home.luguber.info/inful/sitebuilder/internal/sandbox"
)

type externalLinks struct {
	plugin.BaseHook
	rel    string
	target string
	class  string
}

func registerExternalLinks(reg *plugin.Registry) error {
	return reg.RegisterHook(plugin.Metadata{
		Name:        "external-links",
		Version:     "1.0.0",
		Description: "Marks absolute http(s) links with rel, target and class attributes",
	}, func(options map[string]any) (plugin.HookConstructor, error) {
		if err := checkKeys("external-links", options, "rel", "target", "class"); err != nil {
			return nil, err
		}
		rel, err := stringOption(options, "rel", "noopener noreferrer")
		if err != nil {
			return nil, err
		}
		target, err := stringOption(options, "target", "_blank")
		if err != nil {
			return nil, err
		}
		class, err := stringOption(options, "class", "external")
		if err != nil {
			return nil, err
		}
		return func() plugin.Hook {
			return &externalLinks{rel: rel, target: target, class: class}
		}, nil
	})
}

func (h *externalLinks) PostRender(_ sandbox.Env, _ plugin.Page, html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}

	changed := false
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		u, err := url.Parse(strings.TrimSpace(href))
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return
		}
		if h.rel != "" {
			s.SetAttr("rel", h.rel)
		}
		if h.target != "" {
			s.SetAttr("target", h.target)
		}
		if h.class != "" {
			s.AddClass(h.class)
		}
		changed = true
	})
	if !changed {
		return html, nil
	}
	return doc.Html()
}
