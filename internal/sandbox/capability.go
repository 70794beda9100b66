package sandbox

import (
	"fmt"
	"slices"
	"strings"
)

// Namespace is a filesystem namespace a hook can be granted.
type Namespace string

const (
	NamespaceTmp   Namespace = "tmp"
	NamespaceCache Namespace = "cache"
	NamespaceBuild Namespace = "build"
)

// Namespaces lists every known namespace.
var Namespaces = []Namespace{NamespaceTmp, NamespaceCache, NamespaceBuild}

// Capability names a single importable host capability, e.g. "fs:cache" or
// "clock".
type Capability string

const (
	CapClock Capability = "clock"
)

// FS returns the capability for a filesystem namespace.
func FS(ns Namespace) Capability {
	return Capability("fs:" + string(ns))
}

// ParseCapability validates a capability name.
func ParseCapability(s string) (Capability, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == string(CapClock) {
		return CapClock, nil
	}
	if ns, ok := strings.CutPrefix(s, "fs:"); ok && slices.Contains(Namespaces, Namespace(ns)) {
		return Capability(s), nil
	}
	return "", fmt.Errorf("unknown capability %q", s)
}

// Grants is the set of capabilities a component may use.
type Grants struct {
	Filesystem []Namespace
	Clock      bool
}

// Allows reports whether c is granted.
func (g Grants) Allows(c Capability) bool {
	if c == CapClock {
		return g.Clock
	}
	for _, ns := range g.Filesystem {
		if FS(ns) == c {
			return true
		}
	}
	return false
}

// Capabilities lists the granted capabilities in a stable order.
func (g Grants) Capabilities() []Capability {
	var out []Capability
	for _, ns := range Namespaces {
		if slices.Contains(g.Filesystem, ns) {
			out = append(out, FS(ns))
		}
	}
	if g.Clock {
		out = append(out, CapClock)
	}
	return out
}

// Validate rejects unknown namespaces.
func (g Grants) Validate() error {
	for _, ns := range g.Filesystem {
		if !slices.Contains(Namespaces, ns) {
			return fmt.Errorf("unknown filesystem namespace %q", ns)
		}
	}
	return nil
}

// Missing returns the imports that g does not grant, in input order.
func (g Grants) Missing(imports []Capability) []Capability {
	var missing []Capability
	for _, c := range imports {
		if !g.Allows(c) {
			missing = append(missing, c)
		}
	}
	return missing
}

// Restrict returns the part of g that imports asks for. A component only
// ever holds capabilities it both imports and was granted.
func (g Grants) Restrict(imports []Capability) Grants {
	var out Grants
	for _, ns := range Namespaces {
		if slices.Contains(g.Filesystem, ns) && slices.Contains(imports, FS(ns)) {
			out.Filesystem = append(out.Filesystem, ns)
		}
	}
	out.Clock = g.Clock && slices.Contains(imports, CapClock)
	return out
}
