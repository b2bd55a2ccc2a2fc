package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bkpaas/workloads/adapters/store/kv"
	"github.com/bkpaas/workloads/domain/model"
)

func TestTokenBucketDeniesOverThreshold(t *testing.T) {
	ctx := context.Background()
	b := NewTokenBucket(kv.NewMemoryStore(), time.Minute, 3, "watch")
	base := time.Unix(1_700_000_000, 0)
	b.now = func() time.Time { return base }

	for i := 0; i < 3; i++ {
		if err := b.Acquire(ctx, "user1"); err != nil {
			t.Fatalf("acquire %d: %v", i, err)
		}
	}
	if err := b.Acquire(ctx, "user1"); !errors.Is(err, model.ErrRateLimited) {
		t.Fatalf("expected rate limit, got %v", err)
	}
	// Other keys are unaffected.
	if err := b.Acquire(ctx, "user2"); err != nil {
		t.Fatalf("unrelated key limited: %v", err)
	}
}

func TestTokenBucketRefillsAfterWindow(t *testing.T) {
	ctx := context.Background()
	b := NewTokenBucket(kv.NewMemoryStore(), time.Minute, 2, "logs")
	base := time.Unix(1_700_000_000, 0)
	b.now = func() time.Time { return base }

	_ = b.Acquire(ctx, "u")
	_ = b.Acquire(ctx, "u")
	if err := b.Acquire(ctx, "u"); !errors.Is(err, model.ErrRateLimited) {
		t.Fatalf("expected rate limit, got %v", err)
	}
	b.now = func() time.Time { return base.Add(61 * time.Second) }
	if err := b.Acquire(ctx, "u"); err != nil {
		t.Fatalf("acquire after window: %v", err)
	}
}

func TestJudgeOperationFrequent(t *testing.T) {
	if err := JudgeOperationFrequent(time.Time{}, 5*time.Second); err != nil {
		t.Fatalf("zero time must pass: %v", err)
	}
	if err := JudgeOperationFrequent(time.Now(), 5*time.Second); !errors.Is(err, model.ErrProcessOperationTooOften) {
		t.Fatalf("recent operation must be denied, got %v", err)
	}
	if err := JudgeOperationFrequent(time.Now().Add(-10*time.Second), 5*time.Second); err != nil {
		t.Fatalf("old operation must pass: %v", err)
	}
}

func TestLock(t *testing.T) {
	ctx := context.Background()
	l := &Lock{Store: kv.NewMemoryStore(), TTL: time.Minute}
	if err := l.Acquire(ctx, "app-1"); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if err := l.Acquire(ctx, "app-1"); !errors.Is(err, model.ErrOperationInProgress) {
		t.Fatalf("expected in-progress error, got %v", err)
	}
	if err := l.Release(ctx, "app-1"); err != nil {
		t.Fatalf("release: %v", err)
	}
	if err := l.Acquire(ctx, "app-1"); err != nil {
		t.Fatalf("reacquire after release: %v", err)
	}
}
