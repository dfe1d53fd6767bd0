package repository

import (
	"errors"
	"sort"
	"sync"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// table is an in-memory id-keyed collection with auto-increment ids.
type table[T any] struct {
	mu     sync.RWMutex
	nextID int
	rows   map[int]T
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[int]T)}
}

func (t *table[T]) insert(build func(id int) T) T {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextID++
	row := build(t.nextID)
	t.rows[t.nextID] = row
	return row
}

func (t *table[T]) get(id int) (T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	row, ok := t.rows[id]
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	return row, nil
}

func (t *table[T]) update(id int, apply func(T) T) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	row, ok := t.rows[id]
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	row = apply(row)
	t.rows[id] = row
	return row, nil
}

func (t *table[T]) remove(id int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rows[id]; !ok {
		return ErrNotFound
	}
	delete(t.rows, id)
	return nil
}

// list returns matching rows ordered by id.
func (t *table[T]) list(match func(T) bool) []T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ids := make([]int, 0, len(t.rows))
	for id, row := range t.rows {
		if match == nil || match(row) {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, t.rows[id])
	}
	return out
}
