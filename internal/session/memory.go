package session

import (
	"context"
	"sync"
)

// MemoryBackend is process-local storage shared by any number of handles.
type MemoryBackend struct {
	mu       sync.RWMutex
	values   map[string]string
	nextID   uint64
	watchers map[uint64]memoryWatcher
}

type memoryWatcher struct {
	origin string
	fn     ChangeFunc
}

// NewMemoryBackend creates empty shared storage.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		values:   make(map[string]string),
		watchers: make(map[uint64]memoryWatcher),
	}
}

// Handle opens a new store handle onto the backend.
func (b *MemoryBackend) Handle() *MemoryStore {
	return &MemoryStore{backend: b, origin: newOrigin()}
}

func (b *MemoryBackend) write(origin, key string, value *string) {
	b.mu.Lock()
	if value == nil {
		delete(b.values, key)
	} else {
		b.values[key] = *value
	}
	targets := make([]ChangeFunc, 0, len(b.watchers))
	for _, w := range b.watchers {
		if w.origin != origin {
			targets = append(targets, w.fn)
		}
	}
	b.mu.Unlock()

	change := Change{Key: key, Present: value != nil, Origin: origin}
	for _, fn := range targets {
		fn(change)
	}
}

// MemoryStore is a handle onto a MemoryBackend. Changes are delivered to
// other handles synchronously, after the write is visible.
type MemoryStore struct {
	backend *MemoryBackend
	origin  string

	mu     sync.Mutex
	closed bool
	stops  []func() bool
}

// NewMemoryStore returns a handle onto fresh private storage.
func NewMemoryStore() *MemoryStore {
	return NewMemoryBackend().Handle()
}

// Origin identifies writes made through this handle.
func (s *MemoryStore) Origin() string {
	return s.origin
}

func (s *MemoryStore) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Get returns the stored value or ErrNotFound.
func (s *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	if s.isClosed() {
		return "", ErrClosed
	}
	s.backend.mu.RLock()
	defer s.backend.mu.RUnlock()
	value, ok := s.backend.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

// Set stores value under key.
func (s *MemoryStore) Set(ctx context.Context, key, value string) error {
	if s.isClosed() {
		return ErrClosed
	}
	s.backend.write(s.origin, key, &value)
	return nil
}

// Clear removes key.
func (s *MemoryStore) Clear(ctx context.Context, key string) error {
	if s.isClosed() {
		return ErrClosed
	}
	s.backend.write(s.origin, key, nil)
	return nil
}

// Watch registers fn until ctx is done or the handle is closed.
func (s *MemoryStore) Watch(ctx context.Context, fn ChangeFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	b := s.backend
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.watchers[id] = memoryWatcher{origin: s.origin, fn: fn}
	b.mu.Unlock()

	s.stops = append(s.stops, context.AfterFunc(ctx, func() { b.unwatch(id) }))
	return nil
}

func (b *MemoryBackend) unwatch(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.watchers, id)
}

// Close detaches every watcher registered through this handle.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.backend.mu.Lock()
	for id, w := range s.backend.watchers {
		if w.origin == s.origin {
			delete(s.backend.watchers, id)
		}
	}
	s.backend.mu.Unlock()
	for _, stop := range s.stops {
		stop()
	}
	return nil
}
