package incremental

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// Component identifies a versioned theme or plugin.
type Component struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

func (c Component) String() string {
	return c.Name + "@" + c.Version
}

// Environment is the render environment of a build: the active theme and the
// ordered lifecycle hook chain. Chain order is significant.
//
// Settings is a digest of the site, theme and hook options; those reach the
// rendered output without being part of any article.
type Environment struct {
	Theme    Component   `json:"theme"`
	Chain    []Component `json:"chain"`
	Settings string      `json:"settings,omitempty"`
}

// Identity returns a stable digest of the environment.
func (e Environment) Identity() string {
	data, err := json.Marshal(e)
	if err != nil {
		// Marshalling plain strings cannot fail.
		panic(fmt.Sprintf("marshal render environment: %v", err))
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func (e Environment) String() string {
	parts := make([]string, 0, len(e.Chain))
	for _, c := range e.Chain {
		parts = append(parts, c.String())
	}
	return fmt.Sprintf("theme=%s chain=[%s]", e.Theme, strings.Join(parts, ","))
}

// Fingerprint computes the render cache key for a page: a digest over the
// article's identity, its content hash and the render environment. The
// identity is included because themes render the path, category and locale
// into the page, so equal sources at different paths must not share HTML.
// Nil and empty chains are equivalent.
//
// Two pages with equal fingerprints are expected to render to identical
// bytes. That only holds while the theme and hooks are deterministic; see
// the verify command for detecting drift.
func Fingerprint(path, contentHash string, env Environment) string {
	normalized := struct {
		Path        string      `json:"path"`
		ContentHash string      `json:"content_hash"`
		Theme       Component   `json:"theme"`
		Chain       []Component `json:"chain"`
		Settings    string      `json:"settings"`
	}{
		Path:        path,
		ContentHash: contentHash,
		Theme:       env.Theme,
		Chain:       env.Chain,
		Settings:    env.Settings,
	}
	if normalized.Chain == nil {
		normalized.Chain = []Component{}
	}

	data, err := json.Marshal(normalized)
	if err != nil {
		panic(fmt.Sprintf("marshal fingerprint inputs: %v", err))
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// SettingsDigest hashes arbitrary option values into Environment.Settings.
// encoding/json sorts map keys, so equal option maps hash equally.
func SettingsDigest(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal settings: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
