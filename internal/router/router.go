// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/carsties/auction-service/internal/config"
	"github.com/carsties/auction-service/internal/handler"
	"github.com/carsties/auction-service/internal/middleware"
)

// Register mounts every route of the auction service. Reads are public;
// every write goes through JWTAuth plus the matching role capability, and
// the bid endpoint additionally sits behind the Redis token bucket. rdb may
// be nil, which disables rate limiting.
func Register(e *echo.Echo, a *handler.AuctionHandler, b *handler.BidHandler, ch *handler.CacheHandler, jwtSecret string, rlCfg config.RateLimitConfig, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	// Public reads. The listing and detail endpoints serve cache-aside.
	e.GET("/api/auctions", a.List)
	e.GET("/api/auctions/:id", a.GetByID)
	e.GET("/api/bids/auction/:id", b.ListByAuction)
	e.GET("/api/bids/highest/:id", b.Highest)

	jwtAuth := middleware.JWTAuth(jwtSecret)

	// Auction management requires a selling-capable role.
	sell := e.Group("/api/auctions", jwtAuth, middleware.RequireSeller())
	sell.POST("", a.Create)
	sell.POST("/update/:id", a.Update)
	sell.POST("/delete/:id", a.Delete)
	sell.POST("/settle/:id", a.Settle)

	// Bidding requires a bidding-capable role; the token bucket keys on
	// the authenticated bidder, so it runs after JWTAuth.
	bid := e.Group("/api/bids", jwtAuth, middleware.RequireBidder(), middleware.NewTokenBucket(rlCfg, rdb))
	bid.POST("", b.Place)

	// Operator cache endpoints, matching the cache admin surface of the
	// upstream gateway.
	e.GET("/api/cache/exists/:key", ch.Exists)
	e.GET("/api/cache/stats", ch.Stats)
	e.DELETE("/api/cache/clear/auctions", ch.ClearAuctions)
	e.DELETE("/api/cache/:key", ch.Remove)
}
