package themes

import (
	"embed"
	"fmt"
	"io/fs"
	"os"

	"git.home.luguber.info/inful/sitebuilder/internal/plugin"
)

//go:embed templates/minimal/*.html
var embedded embed.FS

// Minimal identifies the built-in default theme.
const (
	MinimalName    = "minimal"
	MinimalVersion = "1.0.0"
)

// RegisterMinimal registers the embedded minimal theme.
func RegisterMinimal(reg *plugin.Registry) error {
	sub, err := fs.Sub(embedded, "templates/minimal")
	if err != nil {
		return err
	}
	return reg.RegisterTheme(plugin.Metadata{
		Name:        MinimalName,
		Version:     MinimalVersion,
		Description: "Single-column theme without scripts",
	}, LoadFS(sub))
}

// RegisterDirectory registers a theme whose templates live in dir. The
// templates are not read until the theme is linked.
func RegisterDirectory(reg *plugin.Registry, name, version, dir string) error {
	if dir == "" {
		return fmt.Errorf("theme %s: directory is required", name)
	}
	return reg.RegisterTheme(plugin.Metadata{
		Name:        name,
		Version:     version,
		Description: "Templates loaded from " + dir,
	}, LoadFS(os.DirFS(dir)))
}
