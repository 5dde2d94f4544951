package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingL2 struct {
	*TTLCache
	gets int
	err  error
}

func (c *countingL2) GetBytes(ctx context.Context, key string) ([]byte, bool, error) {
	c.gets++
	if c.err != nil {
		return nil, false, c.err
	}
	return c.TTLCache.GetBytes(ctx, key)
}

func TestLayeredCacheBackfillsL1(t *testing.T) {
	ctx := context.Background()
	l2 := &countingL2{TTLCache: NewTTLCache()}
	require.NoError(t, l2.SetBytes(ctx, "chart:AAPL:30", []byte("snap"), time.Minute))

	c := NewLayeredCache(l2, WithL1TTL(time.Minute))
	b, ok, err := c.GetBytes(ctx, "chart:AAPL:30")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("snap"), b)

	_, ok, _ = c.GetBytes(ctx, "chart:AAPL:30")
	assert.True(t, ok)
	assert.Equal(t, 1, l2.gets)
}

func TestLayeredCacheWritesThrough(t *testing.T) {
	ctx := context.Background()
	l2 := &countingL2{TTLCache: NewTTLCache()}
	c := NewLayeredCache(l2)

	require.NoError(t, c.SetBytes(ctx, "k", []byte("v"), time.Minute))
	_, ok, _ := l2.TTLCache.GetBytes(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, 1, c.l1.Len())
}

func TestLayeredCacheMissAndError(t *testing.T) {
	ctx := context.Background()
	l2 := &countingL2{TTLCache: NewTTLCache()}
	c := NewLayeredCache(l2)

	_, ok, err := c.GetBytes(ctx, "absent")
	require.NoError(t, err)
	assert.False(t, ok)

	l2.err = errors.New("redis down")
	_, ok, err = c.GetBytes(ctx, "absent")
	assert.Error(t, err)
	assert.False(t, ok)
	assert.NoError(t, c.Close())
}
