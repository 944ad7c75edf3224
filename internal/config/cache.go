package config

import (
	"os"
	"time"
)

// CacheConfig defines settings for the cached-view middleware. When Enabled
// is false or no Redis client is available, caching is disabled and every
// request hits the store. TTL is a safety net only: mutations invalidate
// their view group explicitly, the TTL just bounds staleness after a missed
// invalidation.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
	Prefix  string
}

// LoadCacheConfig reads environment variables to build a CacheConfig.
// Defaults are used when variables are not set.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled: envBool("CACHE_ENABLED", true),
		TTL:     envDur("CACHE_TTL", 5*time.Minute),
		Prefix:  getenv("CACHE_PREFIX", "views"),
	}
}

func envBool(key string, def bool) bool {
	switch os.Getenv(key) {
	case "true", "1":
		return true
	case "false", "0":
		return false
	}
	return def
}

func envDur(key string, def time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}
