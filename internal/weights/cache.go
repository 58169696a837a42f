package weights

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultCacheTTL is how long a cached weights snapshot is served before
// the backing store is consulted again.
const DefaultCacheTTL = 60 * time.Second

// Cache is the in-process read path for scoring weights: single writer
// (admin update), many readers, time-based invalidation. Readers never
// block on a write longer than the mutex hand-off and tolerate a view
// stale by at most the TTL. The scoring pipeline must never hard-fail on
// configuration unavailability, so Get always returns usable weights.
type Cache struct {
	store  Store
	ttl    time.Duration
	logger *slog.Logger

	mu       sync.RWMutex
	current  Weights
	loadedAt time.Time
}

// NewCache creates a weights cache over the given store. A zero ttl uses
// DefaultCacheTTL; a nil logger uses slog.Default.
func NewCache(store Store, ttl time.Duration, logger *slog.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		store:  store,
		ttl:    ttl,
		logger: logger,
	}
}

// Get returns the effective weights: the cached snapshot while fresh,
// otherwise a reload from the store, falling back to hard-coded defaults
// on any read failure. Get never returns an error.
func (c *Cache) Get(ctx context.Context) Weights {
	c.mu.RLock()
	if !c.loadedAt.IsZero() && time.Since(c.loadedAt) < c.ttl {
		w := c.current
		c.mu.RUnlock()
		return w
	}
	c.mu.RUnlock()

	return c.reload(ctx)
}

// reload fetches from the store and refreshes the snapshot. On failure
// the fallback defaults are cached too, so a flapping store is retried at
// most once per TTL instead of on every request.
func (c *Cache) reload(ctx context.Context) Weights {
	w, err := c.store.Load(ctx)
	if err != nil {
		if err != ErrNoStoredWeights {
			c.logger.Warn("failed to load scoring weights, using defaults", "error", err)
		}
		w = Defaults()
	}

	c.mu.Lock()
	c.current = w
	c.loadedAt = time.Now()
	c.mu.Unlock()

	return w
}

// Invalidate drops the cached snapshot so the next Get reloads from the
// store.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.loadedAt = time.Time{}
	c.mu.Unlock()
}

// Update validates and persists new weights, then invalidates the cache
// so the next read observes them without a restart. Validation errors and
// store failures are returned to the admin caller; the cached snapshot is
// left untouched in both cases.
func (c *Cache) Update(ctx context.Context, w Weights) error {
	if err := w.Validate(); err != nil {
		return err
	}
	if err := c.store.Save(ctx, w); err != nil {
		return err
	}
	c.Invalidate()
	return nil
}
