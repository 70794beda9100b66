package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite. Each entry is a single row, so
// an upsert is atomic per key.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens (or creates) the cache database at dbPath.
// Use ":memory:" for an in-memory database.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		return nil, fault(ErrOpenFailed, "", errors.New("sqlite cache requires a path"))
	}
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
			return nil, fault(ErrOpenFailed, "", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fault(ErrOpenFailed, "", fmt.Errorf("open sqlite database: %w", err))
	}
	// A second connection to ":memory:" would see a different database.
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, fault(ErrOpenFailed, "", fmt.Errorf("initialize schema: %w", err))
	}
	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS render_cache (
		fingerprint TEXT PRIMARY KEY,
		html BLOB NOT NULL,
		created_at INTEGER NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Get(ctx context.Context, fp string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var html []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT html FROM render_cache WHERE fingerprint = ?", fp,
	).Scan(&html)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fault(ErrReadFailed, fp, err)
	}
	return html, true, nil
}

func (s *SQLiteStore) Put(ctx context.Context, fp string, html []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO render_cache (fingerprint, html, created_at) VALUES (?, ?, ?)
		ON CONFLICT(fingerprint) DO UPDATE SET html = excluded.html, created_at = excluded.created_at`,
		fp, html, time.Now().Unix(),
	)
	if err != nil {
		return fault(ErrWriteFailed, fp, err)
	}
	return nil
}

func (s *SQLiteStore) Sweep(ctx context.Context, live map[string]struct{}) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, "SELECT fingerprint FROM render_cache")
	if err != nil {
		return 0, fault(ErrSweepFailed, "", err)
	}
	var stale []string
	for rows.Next() {
		var fp string
		if err := rows.Scan(&fp); err != nil {
			_ = rows.Close()
			return 0, fault(ErrSweepFailed, "", err)
		}
		if _, ok := live[fp]; !ok {
			stale = append(stale, fp)
		}
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return 0, fault(ErrSweepFailed, "", err)
	}
	_ = rows.Close()

	if len(stale) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fault(ErrSweepFailed, "", err)
	}
	for _, fp := range stale {
		if _, err := tx.ExecContext(ctx, "DELETE FROM render_cache WHERE fingerprint = ?", fp); err != nil {
			_ = tx.Rollback()
			return 0, fault(ErrSweepFailed, fp, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fault(ErrSweepFailed, "", err)
	}
	return len(stale), nil
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
