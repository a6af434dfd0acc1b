package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryRateCache(t *testing.T) {
	ctx := context.Background()

	t.Run("misses on empty cache", func(t *testing.T) {
		c := NewInMemoryRateCache(time.Minute)
		_, ok, err := c.Get(ctx, uuid.New())
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("round-trips a rate", func(t *testing.T) {
		c := NewInMemoryRateCache(time.Minute)
		unitID := uuid.New()
		rate := decimal.NewFromFloat(24)

		require.NoError(t, c.Set(ctx, unitID, rate))

		got, ok, err := c.Get(ctx, unitID)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.True(t, got.Equal(rate))
	})

	t.Run("expires entries after the ttl", func(t *testing.T) {
		c := NewInMemoryRateCache(10 * time.Millisecond)
		unitID := uuid.New()

		require.NoError(t, c.Set(ctx, unitID, decimal.NewFromInt(5)))
		time.Sleep(20 * time.Millisecond)

		_, ok, err := c.Get(ctx, unitID)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, 0, c.Len())
	})

	t.Run("invalidates an entry", func(t *testing.T) {
		c := NewInMemoryRateCache(time.Minute)
		unitID := uuid.New()

		require.NoError(t, c.Set(ctx, unitID, decimal.NewFromInt(5)))
		require.NoError(t, c.Invalidate(ctx, unitID))

		_, ok, err := c.Get(ctx, unitID)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
