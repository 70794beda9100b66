package output

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

// stagingPattern names staging directories; they are siblings of the output
// root so that Commit only renames within one filesystem.
const stagingPattern = ".staging-*"

// Staging collects the writes and removals of one build in a directory next
// to the output root. The live tree is untouched until Commit.
type Staging struct {
	live   *Writer
	staged *Writer
	dir    string

	mu       sync.Mutex
	files    map[string]struct{}
	removals map[string]struct{}
	done     bool
}

// Stage creates an empty staging area for w.
func (w *Writer) Stage() (*Staging, error) {
	root := filepath.Clean(w.root)
	parent := filepath.Dir(root)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return nil, fmt.Errorf("create output parent directory: %w", err)
	}
	dir, err := os.MkdirTemp(parent, filepath.Base(root)+stagingPattern)
	if err != nil {
		return nil, fmt.Errorf("create staging directory: %w", err)
	}
	w.logger.Debug("Created staging directory", logfields.Path(dir))
	return &Staging{
		live:     w,
		staged:   NewWriter(dir).WithLogger(w.logger),
		dir:      dir,
		files:    make(map[string]struct{}),
		removals: make(map[string]struct{}),
	}, nil
}

// Dir returns the staging directory.
func (s *Staging) Dir() string { return s.dir }

// Write stages data for rel. It is safe for concurrent use.
func (s *Staging) Write(rel string, data []byte) error {
	if err := s.staged.Write(rel, data); err != nil {
		return err
	}
	s.mu.Lock()
	s.files[rel] = struct{}{}
	delete(s.removals, rel)
	s.mu.Unlock()
	return nil
}

// Remove schedules rel for removal from the live tree.
func (s *Staging) Remove(rel string) error {
	if _, err := s.live.resolve(rel); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.files[rel]; ok {
		if err := s.staged.Remove(rel); err != nil {
			return err
		}
		delete(s.files, rel)
	}
	s.removals[rel] = struct{}{}
	return nil
}

// Commit moves every staged file into the live tree, applies the scheduled
// removals and deletes the staging directory. Each file is replaced by a
// rename, so readers see either the old or the new page.
func (s *Staging) Commit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return fmt.Errorf("staging directory %s already finalized", s.dir)
	}

	for _, rel := range sortedKeys(s.files) {
		src, err := s.staged.resolve(rel)
		if err != nil {
			return err
		}
		dest, err := s.live.resolve(rel)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
		if err := os.Rename(src, dest); err != nil {
			return fmt.Errorf("promote %s: %w", rel, err)
		}
	}
	for _, rel := range sortedKeys(s.removals) {
		if err := s.live.Remove(rel); err != nil {
			return err
		}
	}

	s.done = true
	if err := os.RemoveAll(s.dir); err != nil {
		return fmt.Errorf("remove staging directory: %w", err)
	}
	s.live.logger.Debug("Promoted staged output",
		logfields.Path(s.live.root),
		slog.Int("files", len(s.files)))
	return nil
}

// Discard drops the staging directory without touching the live tree.
// Calling it after Commit is a no-op.
func (s *Staging) Discard() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return nil
	}
	s.done = true
	if err := os.RemoveAll(s.dir); err != nil {
		return fmt.Errorf("remove staging directory: %w", err)
	}
	return nil
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
