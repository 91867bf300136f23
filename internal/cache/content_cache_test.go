package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mathsoc-club/backend/internal/database/testutil"
)

// stubStore is an in-memory Store for cache tests.
type stubStore struct {
	mu      sync.Mutex
	data    map[string][]byte
	failSet bool
	failGet bool
}

func newStubStore() *stubStore {
	return &stubStore{data: make(map[string][]byte)}
}

func (s *stubStore) IncrementWithTTL(context.Context, string, time.Duration) (int64, time.Duration, error) {
	return 0, 0, errors.New("not implemented")
}

func (s *stubStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	if s.failSet {
		return errors.New("stub: set failed")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), value...)
	return nil
}

func (s *stubStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	if s.failGet {
		return nil, false, errors.New("stub: get failed")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.data[key]
	return value, ok, nil
}

func (s *stubStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.data, key)
	}
	return nil
}

func TestIsValidTTLBoundary(t *testing.T) {
	c := NewContentCache("event-detail", DefaultContentTTL, nil)

	fetched := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	entry := Entry{FetchedAt: fetched}

	require.True(t, c.IsValid(entry, fetched.Add(86_399_999*time.Millisecond)))
	require.False(t, c.IsValid(entry, fetched.Add(86_400_000*time.Millisecond)))
	require.False(t, c.IsValid(entry, fetched.Add(86_400_001*time.Millisecond)))
}

func TestColdStartMisses(t *testing.T) {
	c := NewContentCache("event-list", 0, newStubStore())
	c.Restore(context.Background())

	_, ok := c.Get(ListKey)
	require.False(t, ok)
	_, ok = c.Get("spring-seminar")
	require.False(t, ok)
}

func TestRestoreSwallowsCorruptSnapshot(t *testing.T) {
	store := newStubStore()
	require.NoError(t, store.Set(context.Background(), "content:community-detail", []byte("not json"), 0))

	c := NewContentCache("community-detail", 0, store)
	require.NotPanics(t, func() { c.Restore(context.Background()) })

	_, ok := c.Get("any-slug")
	require.False(t, ok)
}

func TestRestoreSwallowsStoreError(t *testing.T) {
	store := newStubStore()
	store.failGet = true

	c := NewContentCache("event-list", 0, store)
	require.NotPanics(t, func() { c.Restore(context.Background()) })
}

func TestFetchOrServeWriteBackIdempotence(t *testing.T) {
	c := NewContentCache("community-list", 0, newStubStore())
	ctx := context.Background()

	calls := 0
	fetch := func(context.Context) (interface{}, error) {
		calls++
		return map[string]string{"title": "A"}, nil
	}

	first, err := c.FetchOrServe(ctx, ListKey, fetch)
	require.NoError(t, err)
	require.Equal(t, 1, calls)

	second, err := c.FetchOrServe(ctx, ListKey, fetch)
	require.NoError(t, err)
	require.Equal(t, 1, calls, "warm hit must not re-fetch")
	require.JSONEq(t, `{"title":"A"}`, string(second))
	require.Equal(t, string(first), string(second))
}

func TestFetchOrServePropagatesFetchError(t *testing.T) {
	c := NewContentCache("event-detail", 0, newStubStore())

	wantErr := errors.New("store unavailable")
	_, err := c.FetchOrServe(context.Background(), "spring-seminar", func(context.Context) (interface{}, error) {
		return nil, wantErr
	})
	require.ErrorIs(t, err, wantErr)

	// No stale fallback: an expired entry does not mask the error either.
	c.mu.Lock()
	c.entries["spring-seminar"] = Entry{
		Payload:   json.RawMessage(`{"title":"old"}`),
		FetchedAt: time.Now().Add(-48 * time.Hour),
	}
	c.mu.Unlock()

	_, err = c.FetchOrServe(context.Background(), "spring-seminar", func(context.Context) (interface{}, error) {
		return nil, wantErr
	})
	require.ErrorIs(t, err, wantErr)
}

func TestFetchOrServeSurvivesPersistFailure(t *testing.T) {
	store := newStubStore()
	store.failSet = true
	c := NewContentCache("event-list", 0, store)

	payload, err := c.FetchOrServe(context.Background(), ListKey, func(context.Context) (interface{}, error) {
		return []string{"pi-day"}, nil
	})
	require.NoError(t, err)
	require.JSONEq(t, `["pi-day"]`, string(payload))

	// The in-memory value still serves subsequent reads.
	entry, ok := c.Get(ListKey)
	require.True(t, ok)
	require.True(t, c.IsValid(entry, time.Now()))
}

func TestSnapshotRoundTripAcrossInstances(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	store := NewDatabaseStore(db)
	ctx := context.Background()

	warm := NewContentCache("event-detail", 0, store)
	warm.Restore(ctx)

	_, err := warm.FetchOrServe(ctx, "spring-seminar", func(context.Context) (interface{}, error) {
		return map[string]string{"title": "Spring Seminar", "date": "2024-05-01T00:00:00.000Z"}, nil
	})
	require.NoError(t, err)

	// A fresh instance, as after a process restart, restores the entry and
	// serves it without fetching.
	cold := NewContentCache("event-detail", 0, store)
	cold.Restore(ctx)

	payload, err := cold.FetchOrServe(ctx, "spring-seminar", func(context.Context) (interface{}, error) {
		return nil, errors.New("must not be called")
	})
	require.NoError(t, err)
	require.Contains(t, string(payload), "Spring Seminar")
}

func TestListAndDetailCachesAreIndependent(t *testing.T) {
	store := newStubStore()
	ctx := context.Background()

	list := NewContentCache("event-list", 0, store)
	detail := NewContentCache("event-detail", 0, store)

	_, err := list.FetchOrServe(ctx, ListKey, func(context.Context) (interface{}, error) {
		return []string{"a"}, nil
	})
	require.NoError(t, err)

	// Warming the list cache must not warm the detail cache.
	_, ok := detail.Get("a")
	require.False(t, ok)

	detailCalls := 0
	_, err = detail.FetchOrServe(ctx, "a", func(context.Context) (interface{}, error) {
		detailCalls++
		return map[string]string{"slug": "a"}, nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, detailCalls)
}
