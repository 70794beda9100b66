// Package config loads the sitebuilder.yaml configuration file.
package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// DefaultFile is the configuration file looked up when none is given.
const DefaultFile = "sitebuilder.yaml"

// Config is the complete sitebuilder configuration.
type Config struct {
	Site    SiteConfig     `yaml:"site"`
	Content ContentConfig  `yaml:"content"`
	Output  OutputConfig   `yaml:"output"`
	Theme   ThemeConfig    `yaml:"theme"`
	Plugins []PluginConfig `yaml:"plugins,omitempty"`
	Cache   CacheConfig    `yaml:"cache"`
	Build   BuildConfig    `yaml:"build"`
	Events  EventsConfig   `yaml:"events,omitempty"`
	Metrics MetricsConfig  `yaml:"metrics,omitempty"`
	Watch   WatchConfig    `yaml:"watch,omitempty"`
}

// SiteConfig holds site-wide values passed to the theme.
type SiteConfig struct {
	Title       string `yaml:"title"`
	Owner       string `yaml:"owner,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// ContentConfig locates article sources.
type ContentConfig struct {
	Dir           string `yaml:"dir"`
	DefaultLocale string `yaml:"default_locale,omitempty"`
}

// OutputConfig locates the generated site.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// ThemeConfig selects the theme. Dir registers a directory theme under Name.
type ThemeConfig struct {
	Name    string         `yaml:"name"`
	Version string         `yaml:"version,omitempty"`
	Dir     string         `yaml:"dir,omitempty"`
	Options map[string]any `yaml:"options,omitempty"`
}

// PluginConfig is one entry of the ordered hook chain.
type PluginConfig struct {
	Name    string         `yaml:"name"`
	Version string         `yaml:"version,omitempty"`
	Grants  GrantsConfig   `yaml:"grants,omitempty"`
	Options map[string]any `yaml:"options,omitempty"`
}

// GrantsConfig lists the capabilities granted to a hook.
type GrantsConfig struct {
	Filesystem []string `yaml:"filesystem,omitempty"`
	Clock      bool     `yaml:"clock,omitempty"`
}

// CacheConfig selects the render cache backend.
type CacheConfig struct {
	Backend         CacheBackend `yaml:"backend"`
	Path            string       `yaml:"path,omitempty"`
	MongoURI        string       `yaml:"mongo_uri,omitempty"`
	MongoDatabase   string       `yaml:"mongo_database,omitempty"`
	MongoCollection string       `yaml:"mongo_collection,omitempty"`
}

// BuildConfig tunes the build engine.
type BuildConfig struct {
	ParseWorkers  int  `yaml:"parse_workers,omitempty"`
	RenderWorkers int  `yaml:"render_workers,omitempty"`
	Verify        bool `yaml:"verify,omitempty"`
	// StateDir holds the default cache location and hook cache namespaces.
	StateDir string `yaml:"state_dir,omitempty"`
	// DescriptionLength bounds derived article descriptions, in runes.
	DescriptionLength int `yaml:"description_length,omitempty"`
}

// EventsConfig enables publishing build reports to NATS.
type EventsConfig struct {
	NATSURL string `yaml:"nats_url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// Enabled reports whether a NATS server is configured.
func (e EventsConfig) Enabled() bool { return e.NATSURL != "" }

// MetricsConfig enables the Prometheus textfile export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"`
}

// WatchConfig tunes watch mode.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce,omitempty"`
	// Interval triggers periodic rebuilds when non-zero.
	Interval time.Duration `yaml:"interval,omitempty"`
}

// Load reads configPath, expands ${VAR} references, applies defaults and
// validates the result. Variables from .env and .env.local are loaded first
// without overriding the process environment.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	// #nosec G304 - configPath is provided by the operator
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigError("configuration file not found").
				WithContext("path", configPath).Build()
		}
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read configuration file").
			WithContext("path", configPath).Build()
	}

	cfg, err := Parse([]byte(os.ExpandEnv(string(data))))
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes, defaults and validates a configuration document.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to parse configuration").Build()
	}
	ApplyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadEnvFiles() {
	for _, name := range []string{".env", ".env.local"} {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		// godotenv.Load never overrides variables that are already set.
		_ = godotenv.Load(name)
	}
}
