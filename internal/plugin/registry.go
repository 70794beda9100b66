package plugin

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
)

// Component is a registered theme or hook factory.
type Component struct {
	Metadata  Metadata
	loadTheme LoadTheme
	loadHook  LoadHook
}

// Registry holds component factories keyed by name, then version. It is safe
// for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	byName map[string][]Component // versions ascending
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string][]Component)}
}

// RegisterTheme adds a theme factory.
func (r *Registry) RegisterTheme(meta Metadata, load LoadTheme) error {
	if load == nil {
		return fmt.Errorf("theme %s: nil loader", meta.ID())
	}
	meta.Kind = KindTheme
	return r.add(Component{Metadata: meta, loadTheme: load})
}

// RegisterHook adds a hook factory.
func (r *Registry) RegisterHook(meta Metadata, load LoadHook) error {
	if load == nil {
		return fmt.Errorf("hook %s: nil loader", meta.ID())
	}
	meta.Kind = KindHook
	return r.add(Component{Metadata: meta, loadHook: load})
}

func (r *Registry) add(c Component) error {
	if err := c.Metadata.Validate(); err != nil {
		return fmt.Errorf("invalid component metadata: %w", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	versions := r.byName[c.Metadata.Name]
	i, found := slices.BinarySearchFunc(versions, c.Metadata.Version, func(x Component, v string) int {
		return compareVersions(x.Metadata.Version, v)
	})
	if found {
		return fmt.Errorf("component %s already registered", c.Metadata.ID())
	}
	r.byName[c.Metadata.Name] = slices.Insert(versions, i, c)
	return nil
}

// Get returns name at version, or the highest registered version when
// version is empty.
func (r *Registry) Get(name, version string) (Component, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	versions := r.byName[name]
	if len(versions) == 0 {
		return Component{}, fmt.Errorf("component %s not found", name)
	}
	if version == "" {
		return versions[len(versions)-1], nil
	}
	for _, c := range versions {
		if c.Metadata.Version == version {
			return c, nil
		}
	}
	return Component{}, fmt.Errorf("component %s@%s not found", name, version)
}

// List returns the metadata of every registered component of kind, ordered
// by name then version. An empty kind lists everything.
func (r *Registry) List(kind Kind) []Metadata {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	slices.Sort(names)

	var out []Metadata
	for _, name := range names {
		for _, c := range r.byName[name] {
			if kind == "" || c.Metadata.Kind == kind {
				out = append(out, c.Metadata)
			}
		}
	}
	return out
}

// compareVersions orders dotted numeric versions ("1.10.0" > "1.9.2"),
// ignoring a leading "v". Non-numeric segments compare as strings.
func compareVersions(a, b string) int {
	as := strings.Split(strings.TrimPrefix(a, "v"), ".")
	bs := strings.Split(strings.TrimPrefix(b, "v"), ".")
	for i := range max(len(as), len(bs)) {
		var x, y string
		if i < len(as) {
			x = as[i]
		}
		if i < len(bs) {
			y = bs[i]
		}
		xi, xerr := strconv.Atoi(x)
		yi, yerr := strconv.Atoi(y)
		var c int
		if xerr == nil && yerr == nil {
			c = cmp.Compare(xi, yi)
		} else {
			c = strings.Compare(x, y)
		}
		if c != 0 {
			return c
		}
	}
	return 0
}
