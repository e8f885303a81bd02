package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/carsties/auction-service/internal/config"
)

func TestMemoryCache_RoundTrip(t *testing.T) {
	t.Parallel()

	c := NewMemoryCache()
	ctx := context.Background()

	_, ok := c.Get(ctx, "missing")
	require.False(t, ok)
	require.False(t, c.Exists(ctx, "missing"))

	c.Set(ctx, KeyAuction("a1"), []byte(`{"id":"a1"}`), time.Minute)
	got, ok := c.Get(ctx, KeyAuction("a1"))
	require.True(t, ok)
	require.Equal(t, []byte(`{"id":"a1"}`), got)
	require.True(t, c.Exists(ctx, KeyAuction("a1")))

	// Stored values are isolated from later mutation of the caller's slice.
	v := []byte("abc")
	c.Set(ctx, "k", v, time.Minute)
	v[0] = 'z'
	got, ok = c.Get(ctx, "k")
	require.True(t, ok)
	require.Equal(t, []byte("abc"), got)
}

func TestMemoryCache_Invalidate(t *testing.T) {
	t.Parallel()

	c := NewMemoryCache()
	ctx := context.Background()

	c.Set(ctx, KeyAllAuctions, []byte("[]"), time.Minute)
	c.Set(ctx, KeyAuction("a1"), []byte("{}"), time.Minute)
	c.Set(ctx, KeyAuction("a2"), []byte("{}"), time.Minute)

	c.Invalidate(ctx, KeyAuction("a1"), KeyAllAuctions)
	require.False(t, c.Exists(ctx, KeyAuction("a1")))
	require.False(t, c.Exists(ctx, KeyAllAuctions))
	require.True(t, c.Exists(ctx, KeyAuction("a2")))
}

func TestMemoryCache_InvalidateByPrefix(t *testing.T) {
	t.Parallel()

	c := NewMemoryCache()
	ctx := context.Background()

	c.Set(ctx, KeyAuction("a1"), []byte("{}"), time.Minute)
	c.Set(ctx, KeyAuction("a2"), []byte("{}"), time.Minute)
	c.Set(ctx, KeyAllAuctions, []byte("[]"), time.Minute)

	c.InvalidateByPrefix(ctx, AuctionKeyPrefix())
	require.False(t, c.Exists(ctx, KeyAuction("a1")))
	require.False(t, c.Exists(ctx, KeyAuction("a2")))
	// "auctions:all" does not share the "auction:" prefix.
	require.True(t, c.Exists(ctx, KeyAllAuctions))
}

func TestMemoryCache_TTLExpiry(t *testing.T) {
	t.Parallel()

	c := NewMemoryCache()
	ctx := context.Background()

	c.Set(ctx, "short", []byte("x"), 10*time.Millisecond)
	_, ok := c.Get(ctx, "short")
	require.True(t, ok)

	time.Sleep(30 * time.Millisecond)
	_, ok = c.Get(ctx, "short")
	require.False(t, ok)
	require.False(t, c.Exists(ctx, "short"))
}

// A RedisCache without a client degrades to pass-through: every read
// misses, every write is a no-op, and nothing panics.
func TestRedisCache_DegradedMode(t *testing.T) {
	t.Parallel()

	cfg := config.CacheConfig{Enabled: true, TTL: 30 * time.Minute, Prefix: "carsties"}
	c := NewRedisCache(cfg, nil)
	ctx := context.Background()

	require.False(t, c.Available())

	c.Set(ctx, KeyAuction("a1"), []byte("{}"), time.Minute)
	_, ok := c.Get(ctx, KeyAuction("a1"))
	require.False(t, ok)
	require.False(t, c.Exists(ctx, KeyAuction("a1")))

	c.Invalidate(ctx, KeyAuction("a1"), KeyAllAuctions)
	c.InvalidateByPrefix(ctx, AuctionKeyPrefix())
}

func TestKeys(t *testing.T) {
	t.Parallel()

	require.Equal(t, "auctions:all", KeyAllAuctions)
	require.Equal(t, "auction:42", KeyAuction("42"))
	require.Equal(t, "auction:", AuctionKeyPrefix())
}
