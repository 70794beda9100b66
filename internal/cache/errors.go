package cache

import (
	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

var (
	// ErrOpenFailed indicates the backing store could not be opened.
	ErrOpenFailed = errors.CacheError("could not open render cache").Build()

	// ErrReadFailed indicates a cache lookup failed.
	ErrReadFailed = errors.CacheError("failed to read render cache entry").Build()

	// ErrWriteFailed indicates storing a rendered page failed.
	ErrWriteFailed = errors.CacheError("failed to write render cache entry").Build()

	// ErrSweepFailed indicates removing stale entries failed.
	ErrSweepFailed = errors.CacheError("failed to sweep render cache").Build()

	// ErrInvalidKey indicates a fingerprint that is not a lowercase hex digest.
	ErrInvalidKey = errors.CacheError("invalid render cache key").Build()
)

// fault wraps err as the classified cache error matching sentinel.
func fault(sentinel *errors.ClassifiedError, fp string, err error) error {
	b := errors.WrapError(err, errors.CategoryCache, sentinel.Message()).Fatal()
	if fp != "" {
		b = b.WithContext("fingerprint", fp)
	}
	return b.Build()
}

func validKey(fp string) bool {
	if len(fp) < 3 {
		return false
	}
	for _, c := range fp {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
