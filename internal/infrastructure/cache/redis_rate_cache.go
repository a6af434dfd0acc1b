package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	appinv "github.com/clinic/backend/internal/application/inventory"
	"github.com/clinic/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// RedisRateCache implements the conversion-rate cache on Redis. Suitable for
// deployments where multiple instances share the resolved rates.
type RedisRateCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisRateCache creates a Redis-backed rate cache and verifies the
// connection before returning it.
func NewRedisRateCache(cfg config.RedisConfig, ttl time.Duration) (*RedisRateCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisRateCache{
		client:    client,
		keyPrefix: "catalog:unitrate:",
		ttl:       ttl,
	}, nil
}

// NewRedisRateCacheWithClient creates a cache with an existing Redis client
func NewRedisRateCacheWithClient(client *redis.Client, ttl time.Duration) *RedisRateCache {
	return &RedisRateCache{
		client:    client,
		keyPrefix: "catalog:unitrate:",
		ttl:       ttl,
	}
}

// Get returns the cached rate for a unit and whether it was present
func (c *RedisRateCache) Get(ctx context.Context, unitID uuid.UUID) (decimal.Decimal, bool, error) {
	value, err := c.client.Get(ctx, c.keyPrefix+unitID.String()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return decimal.Zero, false, nil
		}
		return decimal.Zero, false, fmt.Errorf("failed to read rate cache: %w", err)
	}

	rate, err := decimal.NewFromString(value)
	if err != nil {
		// A corrupt entry reads as a miss; the next Set repairs it
		return decimal.Zero, false, nil
	}
	return rate, true, nil
}

// Set stores the rate for a unit with the configured TTL
func (c *RedisRateCache) Set(ctx context.Context, unitID uuid.UUID, rate decimal.Decimal) error {
	if err := c.client.Set(ctx, c.keyPrefix+unitID.String(), rate.String(), c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write rate cache: %w", err)
	}
	return nil
}

// Invalidate drops the cached rate for a unit
func (c *RedisRateCache) Invalidate(ctx context.Context, unitID uuid.UUID) error {
	if err := c.client.Del(ctx, c.keyPrefix+unitID.String()).Err(); err != nil {
		return fmt.Errorf("failed to invalidate rate cache: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisRateCache) Close() error {
	return c.client.Close()
}

var _ appinv.ConversionRateCache = (*RedisRateCache)(nil)
