package cache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingBackend errors on every operation — it stands in for an unreachable
// accelerator. The Store must absorb all of it.
type failingBackend struct{}

func (failingBackend) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("connection refused")
}
func (failingBackend) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("connection refused")
}
func (failingBackend) Delete(context.Context, string) error {
	return errors.New("connection refused")
}

// fakeBackend is a trivial map store, no TTL handling — enough to check the
// Store passes values through correctly.
type fakeBackend struct {
	data map[string][]byte
}

func newFakeBackend() *fakeBackend { return &fakeBackend{data: make(map[string][]byte)} }

func (f *fakeBackend) Get(_ context.Context, key string) ([]byte, error) {
	return f.data[key], nil
}
func (f *fakeBackend) Set(_ context.Context, key string, val []byte, _ time.Duration) error {
	f.data[key] = val
	return nil
}
func (f *fakeBackend) Delete(_ context.Context, key string) error {
	delete(f.data, key)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStore_RoundTrip(t *testing.T) {
	store := New(newFakeBackend(), 0, testLogger())
	ctx := context.Background()

	store.Set(ctx, "k", []byte("v"), time.Minute)

	got, ok := store.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), got)

	store.Delete(ctx, "k")
	_, ok = store.Get(ctx, "k")
	assert.False(t, ok, "deleted key should be a miss")
}

func TestStore_JSONRoundTrip(t *testing.T) {
	store := New(newFakeBackend(), 0, testLogger())
	ctx := context.Background()

	type meta struct {
		Title  string `json:"title"`
		Author string `json:"author"`
	}

	store.SetJSON(ctx, "doc:meta:d1", meta{Title: "Notes", Author: "u1"}, time.Minute)

	var got meta
	require.True(t, store.GetJSON(ctx, "doc:meta:d1", &got))
	assert.Equal(t, "Notes", got.Title)
	assert.Equal(t, "u1", got.Author)
}

func TestStore_FailsOpenOnBackendErrors(t *testing.T) {
	// Every operation against a broken accelerator must be silent:
	// Get degrades to a miss, Set/Delete to no-ops.
	store := New(failingBackend{}, 0, testLogger())
	ctx := context.Background()

	_, ok := store.Get(ctx, "k")
	assert.False(t, ok)

	// Must not panic or surface anything.
	store.Set(ctx, "k", []byte("v"), time.Minute)
	store.Delete(ctx, "k")
}

func TestStore_NilBackendIsAlwaysMiss(t *testing.T) {
	store := New(nil, 0, testLogger())
	ctx := context.Background()

	store.Set(ctx, "k", []byte("v"), time.Minute)
	_, ok := store.Get(ctx, "k")
	assert.False(t, ok)
	assert.False(t, store.Enabled())
}

func TestStore_CorruptEntryIsAMiss(t *testing.T) {
	backend := newFakeBackend()
	store := New(backend, 0, testLogger())
	ctx := context.Background()

	store.Set(ctx, "k", []byte("{not json"), time.Minute)

	var v map[string]any
	assert.False(t, store.GetJSON(ctx, "k", &v))
}

func TestKeys(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{
			name: "search results key normalizes the term",
			got:  SearchResultsKey("u1", "  Quarterly Report "),
			want: "query:results:u1:search:quarterly report",
		},
		{
			name: "same logical query maps to the same key",
			got:  SearchResultsKey("u1", "NOTES"),
			want: SearchResultsKey("u1", "notes"),
		},
		{
			name: "doc meta key",
			got:  DocMetaKey("d42"),
			want: "doc:meta:d42",
		},
		{
			name: "session key",
			got:  SessionKey("u1"),
			want: "session:u1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestKeys_DistinctTargetsDoNotCollide(t *testing.T) {
	assert.NotEqual(t, SearchResultsKey("u1", "a"), SearchResultsKey("u2", "a"))
	assert.NotEqual(t, SearchResultsKey("u1", "a"), SearchResultsKey("u1", "b"))
	assert.NotEqual(t, DocMetaKey("x"), SessionKey("x"))
}
