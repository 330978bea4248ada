// Package cache provides the fail-open caching layer used to accelerate
// document reads and search queries.
//
// THE CACHE IS A HINT, NEVER A SOURCE OF TRUTH:
// Every value in here is a copy of something that lives (or lived) in the
// authoritative store. Entries carry a TTL, may vanish early, and may be
// stale for up to their TTL after the underlying data changes. Correctness
// must therefore never depend on the cache — every read path falls back to
// the store, and disabling the cache entirely only changes latency.
//
// FAIL-OPEN:
// The accelerator (Redis in production) is reachable over the network and is
// assumed to be flakier than the store. A cache outage must degrade to
// store-only behaviour, never surface as a user-visible error: Get treats any
// backend failure as a miss, Set and Delete log and swallow. Each operation
// runs under a short timeout so a hung accelerator cannot stall a request.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

// DefaultTimeout bounds how long any single cache operation may block before
// it is treated as a miss / no-op.
const DefaultTimeout = 150 * time.Millisecond

// Backend is the raw key-value accelerator. Implementations live in the
// redis (production) and memory (tests, cacheless deployments) subpackages.
//
// Get returns (nil, nil) when the key is absent — absence is not an error.
// A zero ttl on Set means "no expiry" and is only used by tests.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Store wraps a Backend with the fail-open policy: timeouts, error
// absorption, and logging. A Store with a nil backend is valid and behaves
// as an always-empty cache, which is exactly what "cache disabled" means.
type Store struct {
	backend Backend
	timeout time.Duration
	logger  *slog.Logger
}

// New creates a Store around the given backend. A nil backend disables
// caching entirely (every Get is a miss, every Set/Delete a no-op).
func New(backend Backend, timeout time.Duration, logger *slog.Logger) *Store {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Store{backend: backend, timeout: timeout, logger: logger}
}

// Get fetches a raw value. The second return is false on miss, on any
// backend error, and when caching is disabled.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool) {
	if s.backend == nil {
		return nil, false
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	val, err := s.backend.Get(ctx, key)
	if err != nil {
		// Downgrade to a miss. The caller falls back to the store.
		s.logger.Warn("cache get failed, treating as miss",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return nil, false
	}
	if val == nil {
		return nil, false
	}
	return val, true
}

// GetJSON fetches a value and unmarshals it into v. A corrupt entry counts
// as a miss (and is logged) — the store remains the source of truth.
func (s *Store) GetJSON(ctx context.Context, key string, v any) bool {
	raw, ok := s.Get(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		s.logger.Warn("cache entry is not valid JSON, treating as miss",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return false
	}
	return true
}

// Set stores a raw value with the given TTL, best-effort.
func (s *Store) Set(ctx context.Context, key string, val []byte, ttl time.Duration) {
	if s.backend == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.backend.Set(ctx, key, val, ttl); err != nil {
		s.logger.Warn("cache set failed, skipping",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}

// SetJSON marshals v and stores it with the given TTL, best-effort.
func (s *Store) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) {
	raw, err := json.Marshal(v)
	if err != nil {
		// Only happens for unencodable types — a programming error, but the
		// cache still must not take the request down.
		s.logger.Warn("cache value not encodable, skipping set",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return
	}
	s.Set(ctx, key, raw, ttl)
}

// Delete removes a key, best-effort. Deleting an absent key is not an error.
func (s *Store) Delete(ctx context.Context, key string) {
	if s.backend == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.backend.Delete(ctx, key); err != nil {
		s.logger.Warn("cache delete failed, skipping",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}

// Enabled reports whether a real backend is attached. Used only for startup
// logging — callers must not branch on it for correctness.
func (s *Store) Enabled() bool {
	return s.backend != nil
}
