package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMissing is returned by a Backend when the key is absent or expired.
var ErrMissing = errors.New("cache: key not found")

// Backend is a string key/value store with optional expiry. A zero ttl
// means the entry lives until evicted.
type Backend interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) (bool, error)
	Exists(ctx context.Context, key string) (bool, error)
	Ping(ctx context.Context) error
	Close() error
}
