package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"clubledger/internal/core/apperror"
	"clubledger/internal/domain/registers/inventory"
	"clubledger/pkg/logger"
)

// Locker obtains short-lived Redis locks for ledger writers.
type Locker struct {
	client *redislock.Client
	ttl    time.Duration
	wait   time.Duration
}

var _ inventory.Locker = (*Locker)(nil)

// NewLocker creates a locker. ttl bounds how long a crashed holder blocks
// others; wait is how long Obtain retries before giving up.
func NewLocker(rdb redis.UniversalClient, ttl, wait time.Duration) *Locker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if wait <= 0 {
		wait = 5 * time.Second
	}
	return &Locker{client: redislock.New(rdb), ttl: ttl, wait: wait}
}

// Obtain blocks up to the wait budget. A lock held elsewhere for longer
// surfaces as a conflict.
func (l *Locker) Obtain(ctx context.Context, key string) (inventory.Unlock, error) {
	retries := int(l.wait / (100 * time.Millisecond))
	opts := &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(100*time.Millisecond), retries),
	}

	lock, err := l.client.Obtain(ctx, "lock:"+key, l.ttl, opts)
	if errors.Is(err, redislock.ErrNotObtained) {
		logger.Warn(ctx, "ledger lock busy", "key", key)
		return nil, apperror.NewConflict("another update of this product is in progress").
			WithDetail("key", key)
	}
	if err != nil {
		return nil, fmt.Errorf("obtain lock %s: %w", key, err)
	}

	return func(ctx context.Context) error {
		if err := lock.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			return fmt.Errorf("release lock %s: %w", key, err)
		}
		return nil
	}, nil
}
