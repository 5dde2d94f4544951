package cache

import (
	"context"
	"time"
)

// LayeredCache is a two-level BytesCache: an in-process L1 in front of a
// shared L2 such as Redis. Writes go to L2 first, then L1.
type LayeredCache struct {
	l1    *TTLCache
	l2    BytesCache
	l1TTL time.Duration
}

type LayeredOption func(*LayeredCache)

// WithL1TTL caps how long an entry lives in the process after an L2 hit.
func WithL1TTL(d time.Duration) LayeredOption {
	return func(c *LayeredCache) { c.l1TTL = d }
}

func NewLayeredCache(l2 BytesCache, opts ...LayeredOption) *LayeredCache {
	c := &LayeredCache{l1: NewTTLCache(), l2: l2, l1TTL: 5 * time.Second}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *LayeredCache) GetBytes(ctx context.Context, key string) ([]byte, bool, error) {
	if b, ok, _ := c.l1.GetBytes(ctx, key); ok {
		return b, true, nil
	}
	b, ok, err := c.l2.GetBytes(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	_ = c.l1.SetBytes(ctx, key, b, c.l1TTL)
	return b, true, nil
}

func (c *LayeredCache) SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.l2.SetBytes(ctx, key, value, ttl); err != nil {
		return err
	}
	l1 := c.l1TTL
	if ttl > 0 && ttl < l1 {
		l1 = ttl
	}
	return c.l1.SetBytes(ctx, key, value, l1)
}

// Close closes L2 when it holds a connection.
func (c *LayeredCache) Close() error {
	if cl, ok := c.l2.(interface{ Close() error }); ok {
		return cl.Close()
	}
	return nil
}
