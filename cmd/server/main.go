package main

import (
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/carsties/auction-service/internal/cache"
	"github.com/carsties/auction-service/internal/config"
	"github.com/carsties/auction-service/internal/database"
	"github.com/carsties/auction-service/internal/handler"
	"github.com/carsties/auction-service/internal/logger"
	"github.com/carsties/auction-service/internal/queue"
	"github.com/carsties/auction-service/internal/repository"
	"github.com/carsties/auction-service/internal/router"
	"github.com/carsties/auction-service/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()
	cacheCfg := config.LoadCacheConfig()
	rlCfg := config.LoadRateLimitConfig()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logger.Fatal("database connection failed", map[string]any{"error": err.Error()})
	}
	store := repository.NewMySQLStore(db)

	// A nil Redis client switches the cache to pass-through and disables
	// rate limiting; the service stays fully functional.
	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Warn("redis unavailable, cache and rate limiting degraded", nil)
	}
	auctionCache := cache.NewRedisCache(cacheCfg, rdb)

	auctions := service.NewAuctionService(store, auctionCache, cacheCfg.TTL)
	engine := service.NewBidEngine(store, auctionCache, queue.NewAMQPPublisher())

	go queue.StartBidConsumer()

	e := echo.New()
	e.HideBanner = true
	router.Register(e,
		handler.NewAuctionHandler(auctions, engine),
		handler.NewBidHandler(engine),
		handler.NewCacheHandler(auctionCache),
		cfg.JWTSecret, rlCfg, rdb,
	)

	addr := ":" + cfg.Port
	logger.Info("listening", map[string]any{"addr": addr, "env": cfg.Env})
	if err := e.Start(addr); err != nil {
		logger.Fatal("server stopped", map[string]any{"error": err.Error()})
	}
}
