package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FSStore is a filesystem-backed Store laid out by fingerprint:
//
//	<base>/
//	  objects/
//	    ab/
//	      cd1234... (first 2 chars = subdir, rest = filename)
//
// Writes go to a temporary file in the same directory and are renamed into
// place, so a reader never observes a partially written entry.
type FSStore struct {
	basePath string
}

// NewFSStore creates the store directory structure under basePath.
func NewFSStore(basePath string) (*FSStore, error) {
	if basePath == "" {
		return nil, fault(ErrOpenFailed, "", errors.New("filesystem cache requires a path"))
	}
	if err := os.MkdirAll(filepath.Join(basePath, "objects"), 0o750); err != nil {
		return nil, fault(ErrOpenFailed, "", fmt.Errorf("create directory: %w", err))
	}
	return &FSStore{basePath: basePath}, nil
}

func (s *FSStore) Get(ctx context.Context, fp string) ([]byte, bool, error) {
	if !validKey(fp) {
		return nil, false, fault(ErrInvalidKey, fp, fmt.Errorf("fingerprint %q", fp))
	}
	if err := ctx.Err(); err != nil {
		return nil, false, fault(ErrReadFailed, fp, err)
	}

	// #nosec G304 - path is built from a validated hex fingerprint
	data, err := os.ReadFile(s.objectPath(fp))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fault(ErrReadFailed, fp, err)
	}
	return data, true, nil
}

func (s *FSStore) Put(ctx context.Context, fp string, html []byte) error {
	if !validKey(fp) {
		return fault(ErrInvalidKey, fp, fmt.Errorf("fingerprint %q", fp))
	}
	if err := ctx.Err(); err != nil {
		return fault(ErrWriteFailed, fp, err)
	}

	objectPath := s.objectPath(fp)
	dir := filepath.Dir(objectPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fault(ErrWriteFailed, fp, fmt.Errorf("create object directory: %w", err))
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fault(ErrWriteFailed, fp, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(html); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fault(ErrWriteFailed, fp, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fault(ErrWriteFailed, fp, err)
	}
	if err := os.Rename(tmpName, objectPath); err != nil {
		_ = os.Remove(tmpName)
		return fault(ErrWriteFailed, fp, err)
	}
	return nil
}

// Sweep removes every object not in live. Leftover temporary files from an
// interrupted Put are removed as well.
func (s *FSStore) Sweep(ctx context.Context, live map[string]struct{}) (int, error) {
	objectsDir := filepath.Join(s.basePath, "objects")
	removed := 0

	err := filepath.WalkDir(objectsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		if strings.HasPrefix(d.Name(), ".tmp-") {
			return os.Remove(path)
		}

		rel, err := filepath.Rel(objectsDir, path)
		if err != nil {
			return err
		}
		fp := strings.ReplaceAll(rel, string(filepath.Separator), "")
		if _, ok := live[fp]; ok {
			return nil
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		removed++
		// Best effort: drop the shard directory once empty.
		_ = os.Remove(filepath.Dir(path))
		return nil
	})
	if err != nil {
		return removed, fault(ErrSweepFailed, "", err)
	}
	return removed, nil
}

func (s *FSStore) Close() error { return nil }

func (s *FSStore) objectPath(fp string) string {
	return filepath.Join(s.basePath, "objects", fp[:2], fp[2:])
}
