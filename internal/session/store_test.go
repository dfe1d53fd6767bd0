package session

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type changeLog struct {
	mu      sync.Mutex
	changes []Change
}

func (l *changeLog) record(c Change) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.changes = append(l.changes, c)
}

func (l *changeLog) all() []Change {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Change(nil), l.changes...)
}

// exerciseSharedStore runs the contract every driver must satisfy using two
// handles onto the same storage.
func exerciseSharedStore(t *testing.T, a, b Store) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := a.Get(ctx, "token")
	require.ErrorIs(t, err, ErrNotFound)

	var seenByA, seenByB changeLog
	require.NoError(t, a.Watch(ctx, seenByA.record))
	require.NoError(t, b.Watch(ctx, seenByB.record))

	require.NoError(t, a.Set(ctx, "token", "abc"))
	got, err := b.Get(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, "abc", got)

	require.Eventually(t, func() bool { return len(seenByB.all()) == 1 }, 3*time.Second, 10*time.Millisecond)
	assert.Equal(t, "token", seenByB.all()[0].Key)
	assert.True(t, seenByB.all()[0].Present)

	require.NoError(t, b.Clear(ctx, "token"))
	_, err = a.Get(ctx, "token")
	require.ErrorIs(t, err, ErrNotFound)

	require.Eventually(t, func() bool { return len(seenByA.all()) == 1 }, 3*time.Second, 10*time.Millisecond)
	assert.False(t, seenByA.all()[0].Present)

	// Neither handle hears about its own writes.
	time.Sleep(50 * time.Millisecond)
	assert.Len(t, seenByA.all(), 1)
	assert.Len(t, seenByB.all(), 1)
}

func TestMemoryStore_SharedBackend(t *testing.T) {
	backend := NewMemoryBackend()
	a, b := backend.Handle(), backend.Handle()
	defer a.Close()
	defer b.Close()
	assert.NotEqual(t, a.Origin(), b.Origin())

	exerciseSharedStore(t, a, b)
}

func TestMemoryStore_WatchStopsWithContext(t *testing.T) {
	backend := NewMemoryBackend()
	a, b := backend.Handle(), backend.Handle()

	ctx, cancel := context.WithCancel(context.Background())
	var seen changeLog
	require.NoError(t, b.Watch(ctx, seen.record))
	cancel()

	require.Eventually(t, func() bool {
		backend.mu.RLock()
		defer backend.mu.RUnlock()
		return len(backend.watchers) == 0
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, a.Set(context.Background(), "token", "x"))
	assert.Empty(t, seen.all())
}

func TestMemoryStore_Closed(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err := s.Get(context.Background(), "token")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, s.Set(context.Background(), "token", "x"), ErrClosed)
	assert.ErrorIs(t, s.Watch(context.Background(), func(Change) {}), ErrClosed)
}

func TestSQLiteStore_SharedProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile", "profile.db")
	ctx := context.Background()

	a, err := NewSQLiteStore(ctx, path, 10*time.Millisecond, nil)
	require.NoError(t, err)
	defer a.Close()
	b, err := NewSQLiteStore(ctx, path, 10*time.Millisecond, nil)
	require.NoError(t, err)
	defer b.Close()

	exerciseSharedStore(t, a, b)
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.db")
	ctx := context.Background()

	s, err := NewSQLiteStore(ctx, path, 0, nil)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "token", "persisted"))
	require.NoError(t, s.Close())

	reopened, err := NewSQLiteStore(ctx, path, 0, nil)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, "persisted", got)
}

func TestRedisStore_Shared(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}

	prefix := "admin-console-test:" + newOrigin()
	a := NewRedisStore(client, prefix, nil)
	b := NewRedisStore(client, prefix, nil)
	defer a.Close()
	defer b.Close()

	exerciseSharedStore(t, a, b)
}

// pipelineRecorder captures transactional batches and fails them before
// anything reaches the server.
type pipelineRecorder struct {
	mu      sync.Mutex
	batches [][]string
}

func (r *pipelineRecorder) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return nil, errors.New("dial disabled")
	}
}

func (r *pipelineRecorder) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		r.mu.Lock()
		r.batches = append(r.batches, []string{cmd.Name()})
		r.mu.Unlock()
		return errors.New("connection refused")
	}
}

func (r *pipelineRecorder) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		names := make([]string, 0, len(cmds))
		for _, cmd := range cmds {
			names = append(names, cmd.Name())
		}
		r.mu.Lock()
		r.batches = append(r.batches, names)
		r.mu.Unlock()
		return errors.New("connection refused")
	}
}

func TestRedisStore_WriteAndAnnounceShareOneTransaction(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	defer client.Close()
	rec := &pipelineRecorder{}
	client.AddHook(rec)

	s := NewRedisStore(client, "admin-console-test", nil)
	ctx := context.Background()

	err := s.Set(ctx, "token", "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")

	require.Error(t, s.Clear(ctx, "token"))

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Len(t, rec.batches, 2, "each call is a single round trip")
	assert.Equal(t, []string{"multi", "set", "publish", "exec"}, rec.batches[0])
	assert.Equal(t, []string{"multi", "del", "publish", "exec"}, rec.batches[1])
}

func TestPostgresStore_Shared(t *testing.T) {
	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_DSN not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Skipf("postgres unavailable: %v", err)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		t.Skipf("postgres unavailable: %v", err)
	}
	_, err = pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS client_storage (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		origin TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW())`)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `DELETE FROM client_storage WHERE key = 'token'`)
	require.NoError(t, err)

	a := NewPostgresStore(pool, nil)
	b := NewPostgresStore(pool, nil)
	defer a.Close()
	defer b.Close()

	exerciseSharedStore(t, a, b)
}
