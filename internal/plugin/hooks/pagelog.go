package hooks

import (
	"path"

	"git.home.luguber.info/inful/sitebuilder/internal/plugin"
	"git.home.luguber.info/inful/sitebuilder/internal/sandbox"
)

// PageLogFile is the default log file name inside the build namespace.
const PageLogFile = ".pages.log"

// pageLog appends the output path of every rendered page to a log file in
// the build directory. Cache hits are not rendered and so are not logged.
type pageLog struct {
	plugin.BaseHook
	file string
}

func registerPageLog(reg *plugin.Registry) error {
	return reg.RegisterHook(plugin.Metadata{
		Name:        "page-log",
		Version:     "1.0.0",
		Description: "Records rendered output paths in the build directory",
		Imports:     []sandbox.Capability{sandbox.FS(sandbox.NamespaceBuild)},
	}, func(options map[string]any) (plugin.HookConstructor, error) {
		if err := checkKeys("page-log", options, "file"); err != nil {
			return nil, err
		}
		file, err := stringOption(options, "file", PageLogFile)
		if err != nil {
			return nil, err
		}
		file = path.Clean(file)
		return func() plugin.Hook { return &pageLog{file: file} }, nil
	})
}

func (h *pageLog) PostRender(env sandbox.Env, page plugin.Page, html string) (string, error) {
	dir, err := env.FS(sandbox.NamespaceBuild)
	if err != nil {
		return "", err
	}
	if err := dir.AppendFile(h.file, []byte(page.Output+"\n")); err != nil {
		return "", err
	}
	return html, nil
}
