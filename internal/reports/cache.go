package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const cachePrefix = "meridian:report:"

// Cache is a read-through layer over redis keyed by report name plus
// filters. It is a pure optimization: a miss or redis outage falls back
// to recomputation, and every successful voucher write busts the whole
// prefix so no report is ever served stale.
type Cache struct {
	client *redis.Client
	logger *slog.Logger
	ttl    time.Duration
}

// NewCache constructs Cache. A nil client disables caching.
func NewCache(client *redis.Client, logger *slog.Logger, ttl time.Duration) *Cache {
	return &Cache{client: client, logger: logger, ttl: ttl}
}

// Key builds a cache key from the report name and its filter values.
func Key(report string, parts ...string) string {
	return cachePrefix + report + ":" + strings.Join(parts, ":")
}

// Get unmarshals a cached report into dest, reporting whether it hit.
func (c *Cache) Get(ctx context.Context, key string, dest any) bool {
	if c == nil || c.client == nil {
		return false
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		c.logger.Warn("report cache decode", slog.String("key", key), slog.Any("error", err))
		return false
	}
	return true
}

// Set stores a computed report under key for the configured TTL.
func (c *Cache) Set(ctx context.Context, key string, value any) {
	if c == nil || c.client == nil {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("report cache store", slog.String("key", key), slog.Any("error", err))
	}
}

// Bust drops every cached report. Called after each successful post,
// confirm, clear and delete.
func (c *Cache) Bust(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	iter := c.client.Scan(ctx, 0, cachePrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("report cache scan", slog.Any("error", err))
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("report cache bust", slog.Any("error", err))
	}
}

func dateKey(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}

func filterKey(values ...any) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		switch value := v.(type) {
		case time.Time:
			out = append(out, dateKey(value))
		case string:
			out = append(out, value)
		default:
			out = append(out, fmt.Sprint(value))
		}
	}
	return out
}
