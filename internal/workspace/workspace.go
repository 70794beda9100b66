package workspace

import (
	"fmt"
	"log/slog"
	"os"

	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

// Scratch owns the directories a build lends to hooks: an ephemeral
// per-build temp dir and a persistent cache dir that survives builds.
type Scratch struct {
	baseDir  string
	cacheDir string
	tempDir  string
	logger   *slog.Logger
}

// NewScratch creates a scratch manager. Ephemeral dirs live under baseDir,
// or the system temp dir when baseDir is empty.
func NewScratch(baseDir, cacheDir string) *Scratch {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	return &Scratch{baseDir: baseDir, cacheDir: cacheDir, logger: slog.Default()}
}

// WithLogger sets the logger.
func (s *Scratch) WithLogger(logger *slog.Logger) *Scratch {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Create makes the ephemeral dir and ensures the cache dir exists.
func (s *Scratch) Create() error {
	if err := os.MkdirAll(s.baseDir, 0o750); err != nil {
		return fmt.Errorf("failed to create scratch base directory: %w", err)
	}
	tempDir, err := os.MkdirTemp(s.baseDir, "sitebuilder-*")
	if err != nil {
		return fmt.Errorf("failed to create scratch directory: %w", err)
	}
	if s.cacheDir != "" {
		if err := os.MkdirAll(s.cacheDir, 0o750); err != nil {
			_ = os.RemoveAll(tempDir)
			return fmt.Errorf("failed to create plugin cache directory: %w", err)
		}
	}
	s.tempDir = tempDir
	s.logger.Debug("Created scratch directory", logfields.Path(tempDir))
	return nil
}

// TempDir returns the ephemeral dir, empty before Create.
func (s *Scratch) TempDir() string { return s.tempDir }

// CacheDir returns the persistent dir.
func (s *Scratch) CacheDir() string { return s.cacheDir }

// Cleanup removes the ephemeral dir. The cache dir is kept for later builds.
func (s *Scratch) Cleanup() error {
	if s.tempDir == "" {
		return nil
	}
	if err := os.RemoveAll(s.tempDir); err != nil {
		return fmt.Errorf("failed to clean up scratch directory: %w", err)
	}
	s.logger.Debug("Removed scratch directory", logfields.Path(s.tempDir))
	s.tempDir = ""
	return nil
}

// PurgeCache removes the persistent dir.
func (s *Scratch) PurgeCache() error {
	if s.cacheDir == "" {
		return nil
	}
	if err := os.RemoveAll(s.cacheDir); err != nil {
		return fmt.Errorf("failed to purge plugin cache directory: %w", err)
	}
	return nil
}
