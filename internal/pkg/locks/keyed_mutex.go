// Package locks provides per-key mutual exclusion. Allocation and
// reconciliation for a locality run under that locality's lock, so
// different localities proceed in parallel while same-locality work
// serializes.
package locks

import (
	"context"
	"errors"
	"sync"
)

// ErrLockNotAcquired is returned when a lock could not be acquired before the
// context was cancelled or timed out.
var ErrLockNotAcquired = errors.New("lock not acquired")

// KeyedMutex serializes critical sections by string key. Lock entries are
// reference-counted and removed once the last waiter releases, so the key set
// does not grow unboundedly.
type KeyedMutex struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

type lockEntry struct {
	ch   chan struct{} // holds a single token; owning it means holding the lock
	refs int
}

// NewKeyedMutex creates an empty KeyedMutex.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{
		entries: make(map[string]*lockEntry),
	}
}

// Lock acquires the mutex for key, blocking until it is available or ctx is
// done. On success it returns a release function that must be called exactly
// once. On failure it returns ErrLockNotAcquired wrapping the context error.
func (m *KeyedMutex) Lock(ctx context.Context, key string) (func(), error) {
	entry := m.acquireEntry(key)

	select {
	case <-entry.ch:
		var once sync.Once
		release := func() {
			once.Do(func() {
				entry.ch <- struct{}{}
				m.releaseEntry(key)
			})
		}
		return release, nil
	case <-ctx.Done():
		m.releaseEntry(key)
		return nil, errors.Join(ErrLockNotAcquired, ctx.Err())
	}
}

func (m *KeyedMutex) acquireEntry(key string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		entry = &lockEntry{ch: make(chan struct{}, 1)}
		entry.ch <- struct{}{}
		m.entries[key] = entry
	}
	entry.refs++
	return entry
}

func (m *KeyedMutex) releaseEntry(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs == 0 {
		delete(m.entries, key)
	}
}
