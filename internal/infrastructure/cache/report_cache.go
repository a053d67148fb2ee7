package cache

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"clubledger/internal/core/changes"
	"clubledger/internal/core/id"
	"clubledger/internal/domain/reports"
)

// ReportCache stores rendered report JSON in Redis. It also keeps one write
// counter per club; Touch bumps it and Generation folds the counters of a
// scope into the report keys.
type ReportCache struct {
	rdb    redis.Cmdable
	prefix string
}

var (
	_ reports.Cache    = (*ReportCache)(nil)
	_ changes.Notifier = (*ReportCache)(nil)
)

// NewReportCache creates a report cache. Keys are namespaced with prefix.
func NewReportCache(rdb redis.Cmdable, prefix string) *ReportCache {
	if prefix == "" {
		prefix = "clubledger"
	}
	return &ReportCache{rdb: rdb, prefix: prefix}
}

func (c *ReportCache) key(k string) string {
	return c.prefix + ":" + k
}

// Get returns nil, nil on a miss.
func (c *ReportCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.rdb.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, nil
}

// Set stores value for ttl.
func (c *ReportCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.rdb.Set(ctx, c.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (c *ReportCache) genKey(clubID string) string {
	return c.prefix + ":gen:" + clubID
}

// Touch bumps the write counter of every club in clubIDs.
func (c *ReportCache) Touch(ctx context.Context, clubIDs ...id.ID) error {
	if len(clubIDs) == 0 {
		return nil
	}
	pipe := c.rdb.TxPipeline()
	for _, clubID := range clubIDs {
		pipe.Incr(ctx, c.genKey(clubID.String()))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis bump generation: %w", err)
	}
	return nil
}

// Generation joins the counters of clubIDs in id order. Clubs never
// touched count as 0.
func (c *ReportCache) Generation(ctx context.Context, clubIDs []id.ID) (string, error) {
	if len(clubIDs) == 0 {
		return "-", nil
	}
	ids := id.Strings(clubIDs)
	slices.Sort(ids)
	keys := make([]string, len(ids))
	for i, clubID := range ids {
		keys[i] = c.genKey(clubID)
	}

	vals, err := c.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return "", fmt.Errorf("redis read generation: %w", err)
	}
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = "0"
		if n, ok := v.(string); ok {
			parts[i] = n
		}
	}
	return strings.Join(parts, "."), nil
}
