package incremental

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// SnapshotFile is the snapshot's file name inside the output directory.
const SnapshotFile = ".meta.json"

const snapshotVersion = 1

// Snapshot is the persisted state of the last successful build.
type Snapshot struct {
	Generated   time.Time
	Environment string            // Environment.Identity() of the build that wrote it
	Hashes      map[string]string // article path -> content hash
}

// NewSnapshot returns an empty snapshot for the given environment.
func NewSnapshot(env Environment, generated time.Time) *Snapshot {
	return &Snapshot{
		Generated:   generated.UTC(),
		Environment: env.Identity(),
		Hashes:      make(map[string]string),
	}
}

// Paths returns the recorded article paths in sorted order.
func (s *Snapshot) Paths() []string {
	if s == nil {
		return nil
	}
	paths := make([]string, 0, len(s.Hashes))
	for p := range s.Hashes {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return paths
}

type snapshotEntry struct {
	Path string `json:"path"`
	Hash string `json:"hash"`
}

type snapshotJSON struct {
	Version       int             `json:"version"`
	LastGenerated time.Time       `json:"last_generated"`
	Environment   string          `json:"environment"`
	Articles      []snapshotEntry `json:"articles"`
}

// MarshalJSON encodes the snapshot with articles as a path-sorted list so
// identical snapshots always serialize to identical bytes.
func (s *Snapshot) MarshalJSON() ([]byte, error) {
	out := snapshotJSON{
		Version:       snapshotVersion,
		LastGenerated: s.Generated,
		Environment:   s.Environment,
		Articles:      make([]snapshotEntry, 0, len(s.Hashes)),
	}
	for _, p := range s.Paths() {
		out.Articles = append(out.Articles, snapshotEntry{Path: p, Hash: s.Hashes[p]})
	}
	return json.Marshal(out)
}

func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var in snapshotJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if in.Version != snapshotVersion {
		return fmt.Errorf("unsupported snapshot version %d", in.Version)
	}
	s.Generated = in.LastGenerated
	s.Environment = in.Environment
	s.Hashes = make(map[string]string, len(in.Articles))
	for _, e := range in.Articles {
		if strings.TrimSpace(e.Path) == "" {
			return errors.New("snapshot entry with empty path")
		}
		s.Hashes[e.Path] = e.Hash
	}
	return nil
}

// LoadSnapshot reads the snapshot from outputDir. A missing file yields a nil
// snapshot and no error.
func LoadSnapshot(outputDir string) (*Snapshot, error) {
	data, err := os.ReadFile(filepath.Join(outputDir, SnapshotFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}

// SaveSnapshot replaces the snapshot in outputDir atomically.
func SaveSnapshot(outputDir string, snap *Snapshot) error {
	if snap == nil {
		return errors.New("snapshot cannot be nil")
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	snapPath := filepath.Join(outputDir, SnapshotFile)
	tempPath := snapPath + ".tmp"

	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temporary snapshot file: %w", err)
	}
	if err := os.Rename(tempPath, snapPath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to replace snapshot file: %w", err)
	}
	return nil
}
