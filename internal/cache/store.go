// Package cache provides the persistent render cache: a fingerprint-keyed
// store of rendered page HTML that survives between builds.
package cache

import (
	"context"
	"fmt"
	"strings"
)

// Store maps render fingerprints to rendered HTML.
//
// Implementations must make each key's value visible atomically: a reader
// either sees no entry or the complete bytes of one Put. Every error returned
// by a Store is a cache store fault and is fatal to the running build.
type Store interface {
	// Get returns the HTML stored under fp. ok is false on a miss.
	Get(ctx context.Context, fp string) (html []byte, ok bool, err error)

	// Put stores html under fp, replacing any previous value.
	Put(ctx context.Context, fp string, html []byte) error

	// Sweep deletes every entry whose fingerprint is not in live and returns
	// the number of entries removed.
	Sweep(ctx context.Context, live map[string]struct{}) (int, error)

	// Close releases resources held by the store.
	Close() error
}

// Backend names a Store implementation.
type Backend string

const (
	BackendSQLite Backend = "sqlite"
	BackendFS     Backend = "fs"
	BackendMongo  Backend = "mongo"
	BackendMemory Backend = "memory"
)

// Options selects and configures a backend.
type Options struct {
	Backend Backend

	// Path is the SQLite database file or the filesystem store directory.
	Path string

	MongoURI        string
	MongoDatabase   string
	MongoCollection string
}

// Open creates the Store described by opts.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch Backend(strings.ToLower(string(opts.Backend))) {
	case BackendSQLite, "":
		return NewSQLiteStore(opts.Path)
	case BackendFS:
		return NewFSStore(opts.Path)
	case BackendMongo:
		return NewMongoStore(ctx, opts.MongoURI, opts.MongoDatabase, opts.MongoCollection)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", opts.Backend)
	}
}
