package config

import "time"

// CacheConfig defines settings for the auction cache-aside layer. When
// Enabled is false or no Redis client could be constructed, callers fall
// back to reading the store directly. TTL bounds how stale a cached auction
// view can get if an invalidation is ever lost (e.g. a crash between commit
// and invalidate). Prefix namespaces every key so several environments can
// share one Redis.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
	Prefix  string
}

// LoadCacheConfig reads environment variables to build a CacheConfig.
// Defaults are used when variables are not set; the default TTL of 30
// minutes matches how long the listing and detail views may lag behind a
// missed invalidation.
func LoadCacheConfig() CacheConfig {
	cfg := CacheConfig{
		Enabled: envBool("CACHE_ENABLED", true),
		TTL:     envDur("CACHE_TTL", 30*time.Minute),
		Prefix:  envStr("CACHE_PREFIX", "carsties"),
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Minute
	}
	return cfg
}
