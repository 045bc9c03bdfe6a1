package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := New[string, int](0)
	defer c.Close()

	now := time.Unix(1_700_000_000, 0)
	c.now = func() time.Time { return now }

	c.Set(ctx, "gas", 30, time.Second)
	c.Set(ctx, "forever", 1, 0)

	v, ok := c.Get(ctx, "gas")
	assert.True(t, ok)
	assert.Equal(t, 30, v)

	now = now.Add(2 * time.Second)
	_, ok = c.Get(ctx, "gas")
	assert.False(t, ok)

	_, ok = c.Get(ctx, "forever")
	assert.True(t, ok)

	c.sweep()
	assert.Equal(t, 1, c.Len())

	c.Delete(ctx, "forever")
	assert.Equal(t, 0, c.Len())
}

func TestCacheCloseIsIdempotent(t *testing.T) {
	c := New[string, int](time.Millisecond)
	c.Close()
	c.Close()
}
