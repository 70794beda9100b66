// Package output writes rendered pages into the site output directory.
package output

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/sitebuilder/internal/article"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

// IndexFile is the index page's path relative to the output root.
const IndexFile = "index.html"

// Writer places files under a root directory. Each file is staged in a
// temporary file next to its destination and renamed into place, so a
// reader of the output tree never sees a half-written page.
type Writer struct {
	root   string
	logger *slog.Logger
}

// NewWriter creates a writer rooted at dir.
func NewWriter(dir string) *Writer {
	return &Writer{root: dir, logger: slog.Default()}
}

// WithLogger sets a custom logger.
func (w *Writer) WithLogger(logger *slog.Logger) *Writer {
	w.logger = logger
	return w
}

// Root returns the output directory.
func (w *Writer) Root() string { return w.root }

// PagePath returns the output path of an article identified by path.
func PagePath(path string) string {
	category, slug, locale := article.ParseIdentity(path)
	return article.OutputPath(category, slug, locale)
}

// Write stores data at rel, a slash-separated path below the root.
func (w *Writer) Write(rel string, data []byte) error {
	dest, err := w.resolve(rel)
	if err != nil {
		return err
	}
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temporary file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", rel, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", rel, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("chmod %s: %w", rel, err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", rel, err)
	}

	w.logger.Debug("Wrote output file", logfields.Path(rel), slog.Int("bytes", len(data)))
	return nil
}

// Read returns the current contents of rel.
func (w *Writer) Read(rel string) ([]byte, error) {
	p, err := w.resolve(rel)
	if err != nil {
		return nil, err
	}
	// #nosec G304 - p is confined to the output root by resolve
	return os.ReadFile(p)
}

// Remove deletes rel and prunes directories it leaves empty. Removing a file
// that does not exist is not an error.
func (w *Writer) Remove(rel string) error {
	p, err := w.resolve(rel)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", rel, err)
	}

	root := filepath.Clean(w.root)
	for dir := filepath.Dir(p); dir != root && len(dir) > len(root); dir = filepath.Dir(dir) {
		if err := os.Remove(dir); err != nil {
			// Not empty (or already gone): stop pruning.
			break
		}
	}
	w.logger.Debug("Removed output file", logfields.Path(rel))
	return nil
}

// Clean removes the whole output directory.
func (w *Writer) Clean() error {
	if err := os.RemoveAll(w.root); err != nil {
		return fmt.Errorf("remove output directory: %w", err)
	}
	return nil
}

func (w *Writer) resolve(rel string) (string, error) {
	local := filepath.FromSlash(rel)
	if !filepath.IsLocal(local) {
		return "", fmt.Errorf("output path %q escapes the output directory", rel)
	}
	return filepath.Join(w.root, local), nil
}
