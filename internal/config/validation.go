package config

import (
	"fmt"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/sandbox"
)

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if _, err := cacheBackendNormalizer.Parse(string(c.Cache.Backend)); err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "invalid cache configuration").Build()
	}
	if c.Cache.Backend == CacheBackendMongo && c.Cache.MongoURI == "" {
		return errors.ConfigError("cache.mongo_uri is required for the mongo backend").Build()
	}
	if c.Content.Dir == c.Output.Dir {
		return errors.ConfigError("content and output directories must differ").
			WithContext("dir", c.Content.Dir).Build()
	}

	seen := make(map[string]struct{}, len(c.Plugins))
	for i, p := range c.Plugins {
		if p.Name == "" {
			return errors.ConfigError(fmt.Sprintf("plugins[%d]: name is required", i)).Build()
		}
		if _, dup := seen[p.Name]; dup {
			return errors.ConfigError("plugin listed more than once").WithContext("plugin", p.Name).Build()
		}
		seen[p.Name] = struct{}{}
		if _, err := p.Grants.Sandbox(); err != nil {
			return errors.WrapError(err, errors.CategoryConfig, "invalid plugin grants").
				WithContext("plugin", p.Name).Build()
		}
	}
	return nil
}

// Sandbox converts the configured grants into sandbox grants.
func (g GrantsConfig) Sandbox() (sandbox.Grants, error) {
	out := sandbox.Grants{Clock: g.Clock}
	for _, ns := range g.Filesystem {
		c, err := sandbox.ParseCapability("fs:" + ns)
		if err != nil {
			return sandbox.Grants{}, err
		}
		out.Filesystem = append(out.Filesystem, sandbox.Namespace(c[len("fs:"):]))
	}
	return out, nil
}
