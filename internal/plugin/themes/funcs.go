package themes

import (
	"html/template"
	"strings"
	"time"
)

// FuncMap returns the functions available to theme templates. None of them
// reads the clock, the environment or the filesystem.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"date": func(layout string, t time.Time) string {
			return t.UTC().Format(layout)
		},
		"join": func(sep string, items []string) string {
			return strings.Join(items, sep)
		},
		"lower": strings.ToLower,
		"upper": strings.ToUpper,
		// safe marks already rendered markdown HTML as trusted.
		"safe": func(s string) template.HTML {
			return template.HTML(s) // #nosec G203 -- article HTML comes from the markdown renderer
		},
	}
}
