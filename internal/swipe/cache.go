package swipe

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// DailyCountCache keeps a per-subject daily swipe counter in Redis purely
// as a UI optimization. It is never the source of truth: the cap check
// always counts swipe rows, and any cache failure is logged and ignored.
type DailyCountCache struct {
	client *redis.Client
	logger *slog.Logger
}

// NewDailyCountCache creates a Redis-backed daily count cache.
func NewDailyCountCache(client *redis.Client, logger *slog.Logger) *DailyCountCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &DailyCountCache{client: client, logger: logger}
}

// key scopes the counter to subject and local calendar day.
func (c *DailyCountCache) key(subjectID string, now time.Time) string {
	return fmt.Sprintf("swipes:daily:%s:%s", subjectID, now.Format("2006-01-02"))
}

// Increment bumps the subject's counter for today, expiring the key at
// local midnight. Best-effort: failures are logged, never returned.
func (c *DailyCountCache) Increment(ctx context.Context, subjectID string, now time.Time) {
	if c == nil || c.client == nil {
		return
	}
	key := c.key(subjectID, now)
	pipe := c.client.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.ExpireAt(ctx, key, StartOfDay(now).Add(24*time.Hour))
	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.Warn("failed to increment daily swipe counter", "subject_id", subjectID, "error", err)
	}
}

// Decrement lowers the subject's counter after an undo. Best-effort.
func (c *DailyCountCache) Decrement(ctx context.Context, subjectID string, now time.Time) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Decr(ctx, c.key(subjectID, now)).Err(); err != nil {
		c.logger.Warn("failed to decrement daily swipe counter", "subject_id", subjectID, "error", err)
	}
}

// Get returns the cached counter, or -1 when unavailable. Callers must
// treat -1 (and any cached value) as advisory.
func (c *DailyCountCache) Get(ctx context.Context, subjectID string, now time.Time) int {
	if c == nil || c.client == nil {
		return -1
	}
	count, err := c.client.Get(ctx, c.key(subjectID, now)).Int()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("failed to read daily swipe counter", "subject_id", subjectID, "error", err)
		}
		return -1
	}
	return count
}
