// Package storefake provides an in-memory session.Store for tests, with
// switches to inject storage failures.
package storefake

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/medsure/claims-client/session"
)

var _ session.Store = (*FakeStore)(nil)

// ErrInjected is the failure returned when fail injection is enabled.
var ErrInjected = errors.New("storefake: injected storage failure")

// FakeStore is a map-backed session.Store.
type FakeStore struct {
	lock   sync.RWMutex
	values map[string]string

	FailGets    bool
	FailSets    bool
	FailRemoves bool
}

func New() *FakeStore {
	return &FakeStore{values: make(map[string]string)}
}

func (fs *FakeStore) Get(_ context.Context, key string) (string, error) {
	fs.lock.RLock()
	defer fs.lock.RUnlock()

	if fs.FailGets {
		return "", ErrInjected
	}
	value, ok := fs.values[key]
	if !ok {
		return "", session.ErrNotFound
	}
	return value, nil
}

func (fs *FakeStore) Set(_ context.Context, key, value string) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	if fs.FailSets {
		return ErrInjected
	}
	fs.values[key] = value
	return nil
}

func (fs *FakeStore) Remove(_ context.Context, key string) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()

	if fs.FailRemoves {
		return ErrInjected
	}
	delete(fs.values, key)
	return nil
}

// Len reports how many keys are currently stored.
func (fs *FakeStore) Len() int {
	fs.lock.RLock()
	defer fs.lock.RUnlock()
	return len(fs.values)
}

// Seed writes a value directly, bypassing fail injection.
func (fs *FakeStore) Seed(key, value string) {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	fs.values[key] = value
}
