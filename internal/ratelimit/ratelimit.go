package ratelimit

// Package ratelimit implements the distributed token bucket guarding
// per-user actions (log fetches, watch opens) and the per-process interval
// guard. Both are backed by the shared key-value store so limits hold
// across processes.

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/bkpaas/workloads/adapters/store/kv"
	"github.com/bkpaas/workloads/domain/model"
)

// TokenBucket allows at most Threshold acquisitions per Window for one key.
// State is a bounded list of acquisition timestamps in the kv store.
type TokenBucket struct {
	Store     kv.Store
	Window    time.Duration
	Threshold int64
	// KeyPrefix namespaces buckets of different actions.
	KeyPrefix string

	// now is overridable in tests.
	now func() time.Time
}

// NewTokenBucket builds a bucket with the given window and threshold.
func NewTokenBucket(store kv.Store, window time.Duration, threshold int64, keyPrefix string) *TokenBucket {
	return &TokenBucket{Store: store, Window: window, Threshold: threshold, KeyPrefix: keyPrefix, now: time.Now}
}

// Acquire takes one token for key, failing with model.ErrRateLimited when
// the bucket is exhausted.
func (b *TokenBucket) Acquire(ctx context.Context, key string) error {
	storeKey := b.KeyPrefix + ":" + key
	now := b.now()

	n, err := b.Store.LLen(ctx, storeKey)
	if err != nil {
		return fmt.Errorf("rate limit state read: %w", err)
	}
	if n < b.Threshold {
		return b.push(ctx, storeKey, now)
	}

	oldest, err := b.Store.LIndex(ctx, storeKey, -1)
	if err != nil {
		if errors.Is(err, kv.ErrKeyNotFound) {
			return b.push(ctx, storeKey, now)
		}
		return fmt.Errorf("rate limit state read: %w", err)
	}
	unix, err := strconv.ParseInt(string(oldest), 10, 64)
	if err != nil {
		return fmt.Errorf("corrupt rate limit state: %w", err)
	}
	if now.Sub(time.Unix(unix, 0)) < b.Window {
		return fmt.Errorf("%w: %s", model.ErrRateLimited, key)
	}
	if _, err := b.Store.RPop(ctx, storeKey); err != nil && !errors.Is(err, kv.ErrKeyNotFound) {
		return fmt.Errorf("rate limit state rotate: %w", err)
	}
	return b.push(ctx, storeKey, now)
}

func (b *TokenBucket) push(ctx context.Context, storeKey string, now time.Time) error {
	if err := b.Store.LPush(ctx, storeKey, []byte(strconv.FormatInt(now.Unix(), 10))); err != nil {
		return fmt.Errorf("rate limit state write: %w", err)
	}
	return nil
}

// JudgeOperationFrequent fails with model.ErrProcessOperationTooOften when
// lastOperatedAt is newer than now minus interval. Guards process scale
// operations against operator hammering.
func JudgeOperationFrequent(lastOperatedAt time.Time, interval time.Duration) error {
	if lastOperatedAt.IsZero() {
		return nil
	}
	if time.Since(lastOperatedAt) < interval {
		return model.ErrProcessOperationTooOften
	}
	return nil
}

// Lock is a coarse mutual-exclusion primitive keyed by workload app,
// serialising releases and builds.
type Lock struct {
	Store kv.Store
	// TTL bounds how long a crashed holder blocks others.
	TTL time.Duration
}

// Acquire takes the lock, failing with model.ErrOperationInProgress when it
// is already held.
func (l *Lock) Acquire(ctx context.Context, key string) error {
	ok, err := l.Store.SetNX(ctx, "lock:"+key, []byte(strconv.FormatInt(time.Now().Unix(), 10)), l.TTL)
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", model.ErrOperationInProgress, key)
	}
	return nil
}

// Release drops the lock. Safe to call when not held.
func (l *Lock) Release(ctx context.Context, key string) error {
	return l.Store.Delete(ctx, "lock:"+key)
}
