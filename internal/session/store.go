// Package session persists the console's session token in storage shared by
// every console instance of the same profile, and reports changes made by the
// other instances.
package session

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned by Get when the key holds no value.
var ErrNotFound = errors.New("session: key not found")

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("session: store closed")

// Change describes a write observed on the shared storage.
type Change struct {
	Key     string
	Present bool
	Origin  string
}

// ChangeFunc receives changes made by other handles.
type ChangeFunc func(Change)

// Store is one handle onto shared client storage. Writes are last-writer-wins.
//
// Watch reports writes made through other handles only; a handle never sees
// its own writes, the same way a browser tab never receives storage events
// for its own localStorage writes. Watching stops when ctx is done.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Clear(ctx context.Context, key string) error
	Watch(ctx context.Context, fn ChangeFunc) error
	Close() error
}

// wireChange is the change announcement sent between processes.
type wireChange struct {
	Origin  string `json:"origin"`
	Key     string `json:"key"`
	Present bool   `json:"present"`
}

func newOrigin() string {
	return uuid.NewString()
}
