package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// PostgresChannel is the LISTEN/NOTIFY channel carrying storage changes.
const PostgresChannel = "client_storage_changes"

// PostgresStore keeps the storage in the client_storage table created by the
// persistence migrations. Changes are announced with NOTIFY in the same
// transaction as the write, so listeners only hear about committed values.
type PostgresStore struct {
	pool   *pgxpool.Pool
	origin string
	logger *zap.Logger

	wg     sync.WaitGroup
	mu     sync.Mutex
	closed bool
	cancel []context.CancelFunc
}

// NewPostgresStore wraps an existing pool.
func NewPostgresStore(pool *pgxpool.Pool, logger *zap.Logger) *PostgresStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostgresStore{pool: pool, origin: newOrigin(), logger: logger}
}

// Origin identifies writes made through this handle.
func (s *PostgresStore) Origin() string {
	return s.origin
}

// Get returns the stored value or ErrNotFound.
func (s *PostgresStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.pool.QueryRow(ctx, `SELECT value FROM client_storage WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", key, err)
	}
	return value, nil
}

// Set stores value under key.
func (s *PostgresStore) Set(ctx context.Context, key, value string) error {
	return s.write(ctx, key, true, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO client_storage (key, value, origin, updated_at)
			VALUES ($1, $2, $3, NOW())
			ON CONFLICT (key) DO UPDATE SET
				value = EXCLUDED.value,
				origin = EXCLUDED.origin,
				updated_at = EXCLUDED.updated_at`, key, value, s.origin)
		return err
	})
}

// Clear removes key.
func (s *PostgresStore) Clear(ctx context.Context, key string) error {
	return s.write(ctx, key, false, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `DELETE FROM client_storage WHERE key = $1`, key)
		return err
	})
}

func (s *PostgresStore) write(ctx context.Context, key string, present bool, apply func(pgx.Tx) error) error {
	payload, err := json.Marshal(wireChange{Origin: s.origin, Key: key, Present: present})
	if err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin write %s: %w", key, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := apply(tx); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	if _, err := tx.Exec(ctx, `SELECT pg_notify($1, $2)`, PostgresChannel, string(payload)); err != nil {
		return fmt.Errorf("announce %s: %w", key, err)
	}
	return tx.Commit(ctx)
}

// Watch holds one pooled connection in LISTEN mode until ctx is done.
func (s *PostgresStore) Watch(ctx context.Context, fn ChangeFunc) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = append(s.cancel, cancel)
	s.mu.Unlock()

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		cancel()
		return fmt.Errorf("acquire listener: %w", err)
	}
	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{PostgresChannel}.Sanitize()); err != nil {
		conn.Release()
		cancel()
		return fmt.Errorf("listen %s: %w", PostgresChannel, err)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		// A connection interrupted mid-wait is in an unknown state.
		defer func() {
			_ = conn.Conn().Close(context.Background())
			conn.Release()
		}()
		for {
			notification, err := conn.Conn().WaitForNotification(ctx)
			if err != nil {
				if ctx.Err() == nil {
					s.logger.Warn("storage listener stopped", zap.Error(err))
				}
				return
			}
			var change wireChange
			if err := json.Unmarshal([]byte(notification.Payload), &change); err != nil {
				s.logger.Warn("ignoring malformed storage change", zap.Error(err))
				continue
			}
			if change.Origin == s.origin {
				continue
			}
			fn(Change{Key: change.Key, Present: change.Present, Origin: change.Origin})
		}
	}()
	return nil
}

// Close stops every listener. The pool is owned by the caller.
func (s *PostgresStore) Close() error {
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
	return nil
}
