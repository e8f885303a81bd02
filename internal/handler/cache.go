package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/carsties/auction-service/internal/cache"
)

// CacheHandler exposes operator endpoints for inspecting and clearing the
// auction cache. These act on the cache only; the durable store is never
// touched, so the worst a clear can do is force repopulating reads.
type CacheHandler struct {
	Cache cache.Cache
}

// NewCacheHandler constructs a CacheHandler.
func NewCacheHandler(c cache.Cache) *CacheHandler {
	if c == nil {
		panic("nil cache passed to NewCacheHandler")
	}
	return &CacheHandler{Cache: c}
}

// Exists handles GET /api/cache/exists/:key.
func (h *CacheHandler) Exists(c echo.Context) error {
	key := c.Param("key")
	return c.JSON(http.StatusOK, echo.Map{
		"key":    key,
		"exists": h.Cache.Exists(c.Request().Context(), key),
	})
}

// Remove handles DELETE /api/cache/:key.
func (h *CacheHandler) Remove(c echo.Context) error {
	key := c.Param("key")
	h.Cache.Invalidate(c.Request().Context(), key)
	return c.JSON(http.StatusOK, echo.Map{"message": "cache key '" + key + "' removed"})
}

// ClearAuctions handles DELETE /api/cache/clear/auctions: it drops the
// listing entry and every per-auction detail entry.
func (h *CacheHandler) ClearAuctions(c echo.Context) error {
	ctx := c.Request().Context()
	h.Cache.Invalidate(ctx, cache.KeyAllAuctions)
	h.Cache.InvalidateByPrefix(ctx, cache.AuctionKeyPrefix())
	return c.JSON(http.StatusOK, echo.Map{"message": "all auction cache entries cleared"})
}

// Stats handles GET /api/cache/stats. It describes the key families for
// operators; when the cache runs degraded that is reported too.
func (h *CacheHandler) Stats(c echo.Context) error {
	status := "operational"
	if rc, ok := h.Cache.(*cache.RedisCache); ok && !rc.Available() {
		status = "degraded: redis unavailable, reads pass through to the store"
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status": status,
		"cache_keys": []string{
			cache.KeyAllAuctions + " - list of all auctions",
			cache.AuctionKeyPrefix() + "{id} - individual auction by id",
		},
	})
}
