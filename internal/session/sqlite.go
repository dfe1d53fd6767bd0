package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps the storage in a profile database file. Every console
// process opening the same file shares the same storage. Writes made by other
// processes are found by polling a per-key version counter.
type SQLiteStore struct {
	db       *sql.DB
	origin   string
	interval time.Duration
	logger   *zap.Logger

	wg     sync.WaitGroup
	mu     sync.Mutex
	closed bool
	cancel []context.CancelFunc
}

// NewSQLiteStore opens (creating if needed) the profile database at path.
func NewSQLiteStore(ctx context.Context, path string, pollInterval time.Duration, logger *zap.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pollInterval <= 0 {
		pollInterval = 500 * time.Millisecond
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create profile dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open profile store: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	const schema = `
	CREATE TABLE IF NOT EXISTS client_storage (
		key TEXT PRIMARY KEY,
		value TEXT,
		origin TEXT NOT NULL,
		version INTEGER NOT NULL DEFAULT 1,
		updated_at DATETIME NOT NULL
	);`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create profile schema: %w", err)
	}

	logger.Debug("profile store opened", zap.String("path", path))
	return &SQLiteStore{
		db:       db,
		origin:   newOrigin(),
		interval: pollInterval,
		logger:   logger,
	}, nil
}

// Origin identifies writes made through this handle.
func (s *SQLiteStore) Origin() string {
	return s.origin
}

// Get returns the stored value or ErrNotFound.
func (s *SQLiteStore) Get(ctx context.Context, key string) (string, error) {
	var value sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT value FROM client_storage WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !value.Valid) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", key, err)
	}
	return value.String, nil
}

// Set stores value under key.
func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	return s.write(ctx, key, sql.NullString{String: value, Valid: true})
}

// Clear removes key. The row stays behind as a tombstone so watchers in other
// processes can tell the removal apart from a key that never existed.
func (s *SQLiteStore) Clear(ctx context.Context, key string) error {
	return s.write(ctx, key, sql.NullString{})
}

func (s *SQLiteStore) write(ctx context.Context, key string, value sql.NullString) error {
	const query = `
		INSERT INTO client_storage (key, value, origin, version, updated_at)
		VALUES (?, ?, ?, 1, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			origin = excluded.origin,
			version = client_storage.version + 1,
			updated_at = excluded.updated_at`
	if _, err := s.db.ExecContext(ctx, query, key, value, s.origin, time.Now().UTC()); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

type rowState struct {
	version int64
	present bool
	origin  string
}

func (s *SQLiteStore) snapshot(ctx context.Context) (map[string]rowState, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value IS NOT NULL, origin, version FROM client_storage`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]rowState)
	for rows.Next() {
		var key string
		var st rowState
		if err := rows.Scan(&key, &st.present, &st.origin, &st.version); err != nil {
			return nil, err
		}
		out[key] = st
	}
	return out, rows.Err()
}

// Watch polls for rows whose version moved since the previous poll and whose
// last writer was another handle.
func (s *SQLiteStore) Watch(ctx context.Context, fn ChangeFunc) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = append(s.cancel, cancel)
	s.mu.Unlock()

	seen, err := s.snapshot(ctx)
	if err != nil {
		cancel()
		return fmt.Errorf("watch profile store: %w", err)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			current, err := s.snapshot(ctx)
			if err != nil {
				if ctx.Err() == nil {
					s.logger.Warn("profile store poll failed", zap.Error(err))
				}
				continue
			}
			for key, st := range current {
				prev, ok := seen[key]
				if ok && prev.version == st.version {
					continue
				}
				if st.origin != s.origin {
					fn(Change{Key: key, Present: st.present, Origin: st.origin})
				}
			}
			seen = current
		}
	}()
	return nil
}

// Close stops watchers and closes the database.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	for _, cancel := range s.cancel {
		cancel()
	}
	s.mu.Unlock()
	s.wg.Wait()
	return s.db.Close()
}
