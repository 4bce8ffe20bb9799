package cache

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-apartment-search/internal/observability"
)

// envelope is the stored representation of every cached payload.
type envelope[T any] struct {
	Key       string `json:"key"`
	Payload   T      `json:"payload"`
	CreatedAt int64  `json:"created_at_ms"`
}

// Tier is one namespaced, TTL-bounded view over a Store.
//
// An entry is fresh while now-created < ttl. Stale entries are invisible to Get
// but stay in the store until SweepStale or Clear removes them.
//
// Reads take a shared lock; writes and sweeps take the exclusive lock, so a
// sweep never deletes an entry that a concurrent Set just refreshed.
type Tier[T any] struct {
	name   string
	prefix string
	ttl    time.Duration
	store  Store
	now    func() time.Time

	mu sync.RWMutex
}

// NewTier returns a tier storing keys under name+":" in store.
// A nil clock defaults to time.Now.
func NewTier[T any](store Store, name string, ttl time.Duration, now func() time.Time) *Tier[T] {
	if now == nil {
		now = time.Now
	}
	return &Tier[T]{
		name:   name,
		prefix: name + ":",
		ttl:    ttl,
		store:  store,
		now:    now,
	}
}

// Name returns the tier's namespace without the trailing colon.
func (t *Tier[T]) Name() string { return t.name }

// TTL returns the tier's freshness window.
func (t *Tier[T]) TTL() time.Duration { return t.ttl }

// Get returns the payload for key when a fresh entry exists. Absent, stale,
// undecodable, and unreadable entries all report ok=false.
func (t *Tier[T]) Get(ctx context.Context, key string) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var zero T
	env, ok := t.read(ctx, t.prefix+key)
	if !ok {
		return zero, false
	}
	if !t.fresh(env.CreatedAt) {
		observability.CacheLookups.WithLabelValues(t.name, "stale").Inc()
		return zero, false
	}
	observability.CacheLookups.WithLabelValues(t.name, "hit").Inc()
	return env.Payload, true
}

// Has reports whether a fresh entry exists for key.
func (t *Tier[T]) Has(ctx context.Context, key string) bool {
	_, ok := t.Get(ctx, key)
	return ok
}

// Set stores payload under key stamped with the current time, replacing any
// existing entry. Write failures are logged and dropped.
func (t *Tier[T]) Set(ctx context.Context, key string, payload T) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.write(ctx, key, payload)
}

// SetIfAbsent stores payload only when no fresh entry exists for key and
// reports whether it wrote. The check and the write happen under one lock.
func (t *Tier[T]) SetIfAbsent(ctx context.Context, key string, payload T) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if env, ok := t.read(ctx, t.prefix+key); ok && t.fresh(env.CreatedAt) {
		observability.CacheWrites.WithLabelValues(t.name, "skipped").Inc()
		return false
	}
	return t.write(ctx, key, payload)
}

// SweepStale removes every entry in this tier that is no longer fresh, plus
// entries that cannot be decoded. It returns the number removed.
func (t *Tier[T]) SweepStale(ctx context.Context) int {
	keys := t.keys(ctx)
	removed := 0
	for _, k := range keys {
		if ctx.Err() != nil {
			break
		}
		if t.sweepOne(ctx, k) {
			removed++
		}
	}
	if removed > 0 {
		observability.CacheEvictions.WithLabelValues(t.name, "stale").Add(float64(removed))
	}
	return removed
}

// Clear removes every entry in this tier regardless of age.
func (t *Tier[T]) Clear(ctx context.Context) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0
	for _, k := range t.keys(ctx) {
		if err := t.store.Remove(ctx, k); err != nil {
			log.Warn().Err(err).Str("tier", t.name).Str("key", k).Msg("cache remove failed")
			continue
		}
		removed++
	}
	if removed > 0 {
		observability.CacheEvictions.WithLabelValues(t.name, "clear").Add(float64(removed))
	}
	return removed
}

// sweepOne re-reads k under the write lock so an entry refreshed after the key
// listing is kept.
func (t *Tier[T]) sweepOne(ctx context.Context, k string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	raw, ok, err := t.store.Get(ctx, k)
	if err != nil || !ok {
		return false
	}
	var env envelope[T]
	if err := json.Unmarshal(raw, &env); err == nil && t.fresh(env.CreatedAt) {
		return false
	}
	if err := t.store.Remove(ctx, k); err != nil {
		log.Warn().Err(err).Str("tier", t.name).Str("key", k).Msg("cache remove failed")
		return false
	}
	return true
}

func (t *Tier[T]) read(ctx context.Context, storeKey string) (envelope[T], bool) {
	var env envelope[T]
	raw, ok, err := t.store.Get(ctx, storeKey)
	if err != nil {
		observability.CacheLookups.WithLabelValues(t.name, "error").Inc()
		log.Warn().Err(err).Str("tier", t.name).Str("key", storeKey).Msg("cache read failed; treating as miss")
		return env, false
	}
	if !ok {
		observability.CacheLookups.WithLabelValues(t.name, "miss").Inc()
		return env, false
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		observability.CacheLookups.WithLabelValues(t.name, "error").Inc()
		log.Warn().Err(err).Str("tier", t.name).Str("key", storeKey).Msg("cache entry undecodable; treating as miss")
		return env, false
	}
	return env, true
}

// write must be called with the exclusive lock held.
func (t *Tier[T]) write(ctx context.Context, key string, payload T) bool {
	raw, err := json.Marshal(envelope[T]{
		Key:       key,
		Payload:   payload,
		CreatedAt: t.now().UnixMilli(),
	})
	if err != nil {
		observability.CacheWrites.WithLabelValues(t.name, "error").Inc()
		log.Warn().Err(err).Str("tier", t.name).Str("key", key).Msg("cache encode failed; write dropped")
		return false
	}
	if err := t.store.Set(ctx, t.prefix+key, raw); err != nil {
		observability.CacheWrites.WithLabelValues(t.name, "error").Inc()
		log.Warn().Err(err).Str("tier", t.name).Str("key", key).Msg("cache write failed; write dropped")
		return false
	}
	observability.CacheWrites.WithLabelValues(t.name, "ok").Inc()
	return true
}

func (t *Tier[T]) keys(ctx context.Context) []string {
	all, err := t.store.Keys(ctx)
	if err != nil {
		log.Warn().Err(err).Str("tier", t.name).Msg("cache key listing failed")
		return nil
	}
	out := all[:0:0]
	for _, k := range all {
		if strings.HasPrefix(k, t.prefix) {
			out = append(out, k)
		}
	}
	return out
}

func (t *Tier[T]) fresh(createdMs int64) bool {
	age := t.now().Sub(time.UnixMilli(createdMs))
	return age < t.ttl
}
