package hooks

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/sitebuilder/internal/article"
	"git.home.luguber.info/inful/sitebuilder/internal/plugin"
	"git.home.luguber.info/inful/sitebuilder/internal/sandbox"
)

// WordCountKey is the metadata key the scratch hook sets.
const WordCountKey = "word_count"

// scratch counts words and memoizes the result in its cache namespace, keyed
// by body digest. The tmp namespace holds the body while it is counted.
type scratch struct {
	plugin.BaseHook
}

func registerScratch(reg *plugin.Registry) error {
	return reg.RegisterHook(plugin.Metadata{
		Name:        "scratch",
		Version:     "1.0.0",
		Description: "Word counts memoized in the plugin cache",
		Imports: []sandbox.Capability{
			sandbox.FS(sandbox.NamespaceTmp),
			sandbox.FS(sandbox.NamespaceCache),
		},
	}, func(options map[string]any) (plugin.HookConstructor, error) {
		if err := checkKeys("scratch", options); err != nil {
			return nil, err
		}
		return func() plugin.Hook { return &scratch{} }, nil
	})
}

func (h *scratch) PreRender(env sandbox.Env, a article.Article) (article.Article, error) {
	cache, err := env.FS(sandbox.NamespaceCache)
	if err != nil {
		return a, err
	}
	sum := sha256.Sum256([]byte(a.Body))
	key := "wordcount/" + hex.EncodeToString(sum[:])

	count, err := readCount(cache, key)
	if err != nil {
		tmp, err := env.FS(sandbox.NamespaceTmp)
		if err != nil {
			return a, err
		}
		// Tasks run concurrently and may carry identical bodies.
		staged := uuid.NewString() + ".md"
		if err := tmp.WriteFile(staged, []byte(a.Body)); err != nil {
			return a, err
		}
		body, err := tmp.ReadFile(staged)
		if err != nil {
			return a, err
		}
		_ = tmp.Remove(staged)

		count = len(strings.Fields(string(body)))
		if err := cache.WriteFile(key, []byte(strconv.Itoa(count))); err != nil {
			return a, err
		}
	}

	if a.Metadata.Extra == nil {
		a.Metadata.Extra = make(map[string]any)
	}
	a.Metadata.Extra[WordCountKey] = count
	return a, nil
}

func readCount(dir *sandbox.Dir, key string) (int, error) {
	data, err := dir.ReadFile(key)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}
