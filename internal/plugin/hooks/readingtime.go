package hooks

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/article"
	"git.home.luguber.info/inful/sitebuilder/internal/plugin"
	"git.home.luguber.info/inful/sitebuilder/internal/sandbox"
)

// ReadingMinutesKey is the metadata key the reading-time hook sets.
const ReadingMinutesKey = "reading_minutes"

type readingTime struct {
	plugin.BaseHook
	wordsPerMinute int
}

func registerReadingTime(reg *plugin.Registry) error {
	return reg.RegisterHook(plugin.Metadata{
		Name:        "reading-time",
		Version:     "1.0.0",
		Description: "Estimates reading time from the markdown body",
	}, func(options map[string]any) (plugin.HookConstructor, error) {
		if err := checkKeys("reading-time", options, "words_per_minute"); err != nil {
			return nil, err
		}
		wpm, err := intOption(options, "words_per_minute", 200)
		if err != nil {
			return nil, err
		}
		if wpm <= 0 {
			return nil, fmt.Errorf("words_per_minute must be positive, got %d", wpm)
		}
		return func() plugin.Hook { return &readingTime{wordsPerMinute: wpm} }, nil
	})
}

func (h *readingTime) PreRender(_ sandbox.Env, a article.Article) (article.Article, error) {
	words := len(strings.Fields(a.Body))
	minutes := (words + h.wordsPerMinute - 1) / h.wordsPerMinute
	minutes = max(minutes, 1)

	if a.Metadata.Extra == nil {
		a.Metadata.Extra = make(map[string]any)
	}
	a.Metadata.Extra[ReadingMinutesKey] = minutes
	return a, nil
}
