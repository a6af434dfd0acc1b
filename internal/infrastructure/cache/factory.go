package cache

import (
	appinv "github.com/clinic/backend/internal/application/inventory"
	"github.com/clinic/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewRateCache creates the conversion-rate cache for the configured backend.
// When Redis is requested but unreachable, it falls back to the in-memory
// cache so unit resolution keeps working on a cold cache.
func NewRateCache(cfg config.CacheConfig, redisCfg config.RedisConfig, logger *zap.Logger) appinv.ConversionRateCache {
	if logger == nil {
		logger = zap.NewNop()
	}

	if cfg.UseRedis {
		cache, err := NewRedisRateCache(redisCfg, cfg.ConversionRateTTL)
		if err == nil {
			logger.Info("using Redis conversion rate cache")
			return cache
		}
		logger.Warn("Redis unavailable, falling back to in-memory conversion rate cache", zap.Error(err))
	}

	return NewInMemoryRateCache(cfg.ConversionRateTTL)
}
