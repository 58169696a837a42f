// Package health provides dependency health checkers for the readiness
// probe.
package health

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
)

// DBChecker pings the Postgres connection pool.
type DBChecker struct {
	db *sql.DB
}

// NewDBChecker creates a Postgres health checker.
func NewDBChecker(db *sql.DB) *DBChecker {
	return &DBChecker{db: db}
}

// HealthCheck pings the database.
func (c *DBChecker) HealthCheck(ctx context.Context) error {
	if err := c.db.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres ping: %w", err)
	}
	return nil
}

// RedisChecker pings the Redis server.
type RedisChecker struct {
	client *redis.Client
}

// NewRedisChecker creates a Redis health checker.
func NewRedisChecker(client *redis.Client) *RedisChecker {
	return &RedisChecker{client: client}
}

// HealthCheck pings Redis.
func (c *RedisChecker) HealthCheck(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// SearchChecker pings the Elasticsearch cluster.
type SearchChecker struct {
	client *elasticsearch.Client
}

// NewSearchChecker creates an Elasticsearch health checker.
func NewSearchChecker(client *elasticsearch.Client) *SearchChecker {
	return &SearchChecker{client: client}
}

// HealthCheck pings the cluster.
func (c *SearchChecker) HealthCheck(ctx context.Context) error {
	res, err := c.client.Ping(c.client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch ping: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping: %s", res.Status())
	}
	return nil
}
