package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mathsoc-club/backend/pkg/logger"
	"github.com/mathsoc-club/backend/pkg/metrics"
)

// DefaultContentTTL bounds the staleness of cached content. Deletions and new
// publications become visible within one TTL window at the latest.
const DefaultContentTTL = 24 * time.Hour

// ListKey addresses the whole-collection entry within a list-level cache.
const ListKey = "list"

// Entry pairs a normalized payload with the time it was fetched from the
// content store.
type Entry struct {
	Payload   json.RawMessage
	FetchedAt time.Time
}

// FetchFunc loads fresh content from the backing store on a cache miss.
type FetchFunc func(ctx context.Context) (interface{}, error)

// ContentCache is a process-local read-through cache for published content.
// One instance exists per content-type and granularity pair ("event-list",
// "event-detail", "community-list", "community-detail"); instances never share
// entries or invalidate one another.
//
// Entries expire lazily: validity is checked at read time only. A failed
// remote fetch is surfaced to the caller even when an expired entry exists —
// stale data is never served in place of an error.
type ContentCache struct {
	name  string
	ttl   time.Duration
	store Store // durable snapshot store; nil disables persistence
	log   *zap.Logger

	mu      sync.Mutex
	entries map[string]Entry
}

// snapshot is the serialized durable form: one blob per cache instance,
// holding plain JSON payloads keyed alongside their fetch times (unix millis).
type snapshot struct {
	Data      map[string]json.RawMessage `json:"data"`
	Timestamp map[string]int64           `json:"timestamp"`
}

// NewContentCache builds an empty cache. Call Restore before the first
// FetchOrServe to recover entries persisted by an earlier run.
func NewContentCache(name string, ttl time.Duration, store Store) *ContentCache {
	if ttl <= 0 {
		ttl = DefaultContentTTL
	}
	return &ContentCache{
		name:    name,
		ttl:     ttl,
		store:   store,
		log:     logger.WithModule("cache").With(zap.String("cache", name)),
		entries: make(map[string]Entry),
	}
}

// Name identifies the cache instance in logs and metrics.
func (c *ContentCache) Name() string {
	return c.name
}

func (c *ContentCache) snapshotKey() string {
	return "content:" + c.name
}

// Restore loads the persisted snapshot from the durable store. Any failure —
// store error, missing blob, malformed payload — leaves the cache empty and is
// never surfaced to callers: persistence is an optimization, not a source of
// truth.
func (c *ContentCache) Restore(ctx context.Context) {
	if c.store == nil {
		return
	}

	blob, ok, err := c.store.Get(ctx, c.snapshotKey())
	if err != nil {
		c.log.Warn("restore failed", zap.Error(err))
		return
	}
	if !ok {
		return
	}

	var snap snapshot
	if err := json.Unmarshal(blob, &snap); err != nil {
		c.log.Warn("discarding malformed snapshot", zap.Error(err))
		return
	}

	restored := make(map[string]Entry, len(snap.Data))
	for key, payload := range snap.Data {
		millis, ok := snap.Timestamp[key]
		if !ok {
			continue
		}
		restored[key] = Entry{
			Payload:   payload,
			FetchedAt: time.UnixMilli(millis).UTC(),
		}
	}

	c.mu.Lock()
	c.entries = restored
	c.mu.Unlock()

	c.log.Debug("snapshot restored", zap.Int("entries", len(restored)))
}

// Get returns the cached entry for a key, if any. Validity is not checked.
func (c *ContentCache) Get(key string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	return entry, ok
}

// IsValid reports whether an entry is still servable at the given instant.
// Pure function of its arguments: an entry fetched at T is valid strictly
// before T+TTL and invalid from T+TTL on.
func (c *ContentCache) IsValid(entry Entry, now time.Time) bool {
	return now.Sub(entry.FetchedAt) < c.ttl
}

// FetchOrServe returns the cached payload when present and valid, otherwise
// invokes fetch, normalizes the result to plain JSON, stores it under key and
// persists the snapshot best-effort.
//
// Concurrent callers for the same key are not deduplicated; both fetches
// return the same data and the later write is an idempotent overwrite.
func (c *ContentCache) FetchOrServe(ctx context.Context, key string, fetch FetchFunc) (json.RawMessage, error) {
	now := time.Now()

	if entry, ok := c.Get(key); ok {
		if c.IsValid(entry, now) {
			metrics.ContentCacheLookups.WithLabelValues(c.name, "hit").Inc()
			return entry.Payload, nil
		}
		metrics.ContentCacheLookups.WithLabelValues(c.name, "expired").Inc()
	} else {
		metrics.ContentCacheLookups.WithLabelValues(c.name, "miss").Inc()
	}

	result, err := fetch(ctx)
	if err != nil {
		metrics.ContentFetchFailures.WithLabelValues(c.name).Inc()
		return nil, err
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("cache %s: normalize payload: %w", c.name, err)
	}

	c.mu.Lock()
	c.entries[key] = Entry{Payload: payload, FetchedAt: now}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.persist(ctx, snap)

	return payload, nil
}

// snapshotLocked copies the current entries into the serializable form.
// Callers must hold c.mu.
func (c *ContentCache) snapshotLocked() snapshot {
	snap := snapshot{
		Data:      make(map[string]json.RawMessage, len(c.entries)),
		Timestamp: make(map[string]int64, len(c.entries)),
	}
	for key, entry := range c.entries {
		snap.Data[key] = entry.Payload
		snap.Timestamp[key] = entry.FetchedAt.UnixMilli()
	}
	return snap
}

// persist writes the whole snapshot to the durable store. Failures are logged
// and swallowed: the in-memory entry already serves readers, and concurrent
// writers racing on the blob resolve as last-writer-wins.
func (c *ContentCache) persist(ctx context.Context, snap snapshot) {
	if c.store == nil {
		return
	}

	blob, err := json.Marshal(snap)
	if err != nil {
		c.log.Warn("snapshot encode failed", zap.Error(err))
		return
	}

	// Stored without its own expiry; entries are validated lazily on read.
	if err := c.store.Set(ctx, c.snapshotKey(), blob, 0); err != nil {
		c.log.Warn("snapshot persist failed", zap.Error(err))
	}
}
