// Package cache implements the read-through / invalidate-on-write cache in
// front of the auction store. The cache only ever holds derived, disposable
// copies: a lost entry costs one extra store read and a stale one expires
// within the configured TTL. The durable store is always the source of
// truth, so every implementation absorbs its own failures instead of
// surfacing them to the request path.
package cache

import (
	"context"
	"time"
)

// The two logical key families. The all-auctions listing is keyed once;
// auction detail views are keyed per id under the "auction:" prefix so a
// single prefix invalidation can clear every detail entry.
const (
	KeyAllAuctions = "auctions:all"
	auctionPrefix  = "auction:"
)

// KeyAuction returns the detail cache key for one auction.
func KeyAuction(id string) string {
	return auctionPrefix + id
}

// AuctionKeyPrefix is the prefix covering every per-auction detail key.
func AuctionKeyPrefix() string {
	return auctionPrefix
}

// Cache is the contract the service layer depends on. Values are opaque
// serialized records; the cache never inspects them. Implementations must
// treat their own unavailability as a universal miss: Get returns ok=false,
// writes become no-ops and no method ever fails a request because the cache
// is down.
type Cache interface {
	// Get returns the cached value for key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores value under key for at most ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)

	// Invalidate removes the given keys. Removing an absent key is a no-op,
	// so redundant invalidations are always safe.
	Invalidate(ctx context.Context, keys ...string)

	// InvalidateByPrefix removes every key that starts with prefix.
	InvalidateByPrefix(ctx context.Context, prefix string)

	// Exists reports whether key currently holds a value.
	Exists(ctx context.Context, key string) bool
}
