package kv

import (
	"context"
	"errors"
	"time"
)

// ErrKeyNotFound reports a missing key.
var ErrKeyNotFound = errors.New("key not found")

// Store is the shared key-value store backing distributed rate limiters,
// operation locks and poller task records. Implementations must make each
// operation atomic so multi-process deployments observe consistent state.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error

	// SetNX sets a key only when absent, reporting whether it was set.
	// Used for the per-app release/build lock.
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)

	// List operations implement the token-bucket primitive: a bounded list
	// of timestamps per key.
	LPush(ctx context.Context, key string, value []byte) error
	LLen(ctx context.Context, key string) (int64, error)
	LIndex(ctx context.Context, key string, index int64) ([]byte, error)
	RPop(ctx context.Context, key string) ([]byte, error)

	// Scan visits every key with the given prefix. Used by the poller
	// scheduler to find due task records.
	Scan(ctx context.Context, prefix string, fn func(key string, value []byte) error) error

	Close() error
}
