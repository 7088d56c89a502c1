package cache

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"city-weather/pkg/logger"
	"city-weather/pkg/lookup"
)

// LookupCache wraps a Backend so that no backend error ever reaches the
// caller. Reads report Hit, Miss or Failed; writes report success as a bool.
type LookupCache struct {
	backend Backend
	l       *logger.Logger
}

func NewLookupCache(backend Backend, l *logger.Logger) *LookupCache {
	return &LookupCache{backend: backend, l: l}
}

func (c *LookupCache) Get(ctx context.Context, key string) lookup.Result[string] {
	raw, err := c.backend.Get(ctx, key)
	switch {
	case err == nil:
		return lookup.Hit(raw)
	case errors.Is(err, ErrMissing):
		return lookup.Miss[string]()
	default:
		c.warn("cache get failed", key, err)
		return lookup.Fail[string](err)
	}
}

func (c *LookupCache) Set(ctx context.Context, key string, value any, ttl time.Duration) bool {
	raw, err := Encode(value)
	if err != nil {
		c.warn("cache encode failed", key, err)
		return false
	}
	if err := c.backend.Set(ctx, key, raw, ttl); err != nil {
		c.warn("cache set failed", key, err)
		return false
	}
	return true
}

func (c *LookupCache) Delete(ctx context.Context, key string) bool {
	ok, err := c.backend.Del(ctx, key)
	if err != nil {
		c.warn("cache delete failed", key, err)
		return false
	}
	return ok
}

func (c *LookupCache) Exists(ctx context.Context, key string) bool {
	ok, err := c.backend.Exists(ctx, key)
	if err != nil {
		c.warn("cache exists failed", key, err)
		return false
	}
	return ok
}

func (c *LookupCache) Ping(ctx context.Context) error {
	return c.backend.Ping(ctx)
}

func (c *LookupCache) Close() error {
	return c.backend.Close()
}

func (c *LookupCache) warn(msg, key string, err error) {
	if c.l == nil {
		return
	}
	c.l.Warning(msg, map[string]any{"key": key, "error": err})
}

type Getter interface {
	Get(ctx context.Context, key string) lookup.Result[string]
}

// GetJSON reads a structured value. A value that does not decode into T is
// reported as Failed wrapping lookup.ErrCorrupt.
func GetJSON[T any](ctx context.Context, c Getter, key string) lookup.Result[T] {
	res := c.Get(ctx, key)
	if !res.IsHit() {
		return lookup.Result[T]{State: res.State, Err: res.Err}
	}

	var v T
	if err := DecodeInto(res.Value, &v); err != nil {
		return lookup.Fail[T](errors.Wrapf(lookup.ErrCorrupt, "decode %s: %v", key, err))
	}
	return lookup.Hit(v)
}
