package hooks

import (
	"fmt"
	"strings"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/plugin"
	"git.home.luguber.info/inful/sitebuilder/internal/sandbox"
)

// buildStamp adds a generation timestamp to every page. It reads the clock,
// so output depends on when a page was rendered; cached pages keep the time
// they were first rendered.
type buildStamp struct {
	plugin.BaseHook
	layout string
}

func registerBuildStamp(reg *plugin.Registry) error {
	return reg.RegisterHook(plugin.Metadata{
		Name:        "build-stamp",
		Version:     "1.0.0",
		Description: "Adds a generated-at meta tag",
		Imports:     []sandbox.Capability{sandbox.CapClock},
	}, func(options map[string]any) (plugin.HookConstructor, error) {
		if err := checkKeys("build-stamp", options, "layout"); err != nil {
			return nil, err
		}
		layout, err := stringOption(options, "layout", time.RFC3339)
		if err != nil {
			return nil, err
		}
		return func() plugin.Hook { return &buildStamp{layout: layout} }, nil
	})
}

func (h *buildStamp) PostRender(env sandbox.Env, _ plugin.Page, html string) (string, error) {
	now, err := env.Now()
	if err != nil {
		return "", err
	}
	tag := fmt.Sprintf(`<meta name="generated" content="%s">`, now.UTC().Format(h.layout))

	if i := strings.Index(html, "</head>"); i >= 0 {
		return html[:i] + tag + "\n" + html[i:], nil
	}
	return tag + "\n" + html, nil
}
