// Package memory is an in-process cache.Backend.
//
// It exists for two callers: tests (no Redis required) and deployments that
// run without an accelerator. Entries expire lazily on Get, with an optional
// janitor goroutine sweeping expired entries so an idle cache doesn't hold
// memory forever.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/sakif/doctalk/internal/cache"
)

// compile-time check that *Backend implements cache.Backend
var _ cache.Backend = (*Backend)(nil)

type entry struct {
	val       []byte
	expiresAt time.Time // zero means no expiry
}

// Backend is a mutex-guarded map with per-entry TTL.
type Backend struct {
	mu      sync.Mutex
	entries map[string]entry

	stopOnce sync.Once
	stop     chan struct{}
}

// New creates a Backend. If cleanupInterval > 0, a janitor goroutine sweeps
// expired entries at that interval until Close is called.
func New(cleanupInterval time.Duration) *Backend {
	b := &Backend{
		entries: make(map[string]entry),
		stop:    make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go b.janitor(cleanupInterval)
	}
	return b
}

func (b *Backend) Get(_ context.Context, key string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.entries[key]
	if !ok {
		return nil, nil
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		// Expired but not yet swept — remove on the way out.
		delete(b.entries, key)
		return nil, nil
	}

	// Return a copy so callers can't mutate the cached bytes.
	val := make([]byte, len(e.val))
	copy(val, e.val)
	return val, nil
}

func (b *Backend) Set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	stored := make([]byte, len(val))
	copy(stored, val)

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries[key] = entry{val: stored, expiresAt: expiresAt}
	return nil
}

func (b *Backend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.entries, key)
	return nil
}

// Flush drops every entry. Test helper for forcing a cache-cold state.
func (b *Backend) Flush() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = make(map[string]entry)
}

// Close stops the janitor. Safe to call more than once.
func (b *Backend) Close() error {
	b.stopOnce.Do(func() { close(b.stop) })
	return nil
}

func (b *Backend) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stop:
			return
		case <-ticker.C:
			now := time.Now()
			b.mu.Lock()
			for key, e := range b.entries {
				if !e.expiresAt.IsZero() && now.After(e.expiresAt) {
					delete(b.entries, key)
				}
			}
			b.mu.Unlock()
		}
	}
}
