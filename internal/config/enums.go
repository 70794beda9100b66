package config

import (
	"git.home.luguber.info/inful/sitebuilder/internal/foundation/normalization"
)

// CacheBackend names a render cache implementation.
type CacheBackend string

const (
	CacheBackendSQLite CacheBackend = "sqlite"
	CacheBackendFS     CacheBackend = "fs"
	CacheBackendMongo  CacheBackend = "mongo"
	CacheBackendMemory CacheBackend = "memory"
)

var cacheBackendNormalizer = normalization.NewEnum("cache backend", map[string]CacheBackend{
	"sqlite":     CacheBackendSQLite,
	"fs":         CacheBackendFS,
	"filesystem": CacheBackendFS,
	"mongo":      CacheBackendMongo,
	"mongodb":    CacheBackendMongo,
	"memory":     CacheBackendMemory,
}, "")

// NormalizeCacheBackend canonicalizes a backend name. An empty name selects
// sqlite; unknown names are kept verbatim so Validate can report them.
func NormalizeCacheBackend(raw string) CacheBackend {
	if raw == "" {
		return CacheBackendSQLite
	}
	if b := cacheBackendNormalizer.Normalize(raw); b != "" {
		return b
	}
	return CacheBackend(raw)
}

// LogLevel enumerates supported logging levels.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var logLevelNormalizer = normalization.NewEnum("log level", map[string]LogLevel{
	"debug":   LogLevelDebug,
	"info":    LogLevelInfo,
	"warn":    LogLevelWarn,
	"warning": LogLevelWarn,
	"error":   LogLevelError,
}, LogLevelInfo)

// NormalizeLogLevel maps raw to a LogLevel, defaulting to info.
func NormalizeLogLevel(raw string) LogLevel {
	return logLevelNormalizer.Normalize(raw)
}
