package cache

import (
	"context"
	"sync"
	"time"

	appinv "github.com/clinic/backend/internal/application/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InMemoryRateCache implements the conversion-rate cache in process memory.
// Entries expire lazily on read. State is not shared across instances, which
// is fine for a single-clinic deployment.
type InMemoryRateCache struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]rateEntry
	ttl     time.Duration
}

type rateEntry struct {
	rate      decimal.Decimal
	expiresAt time.Time
}

// NewInMemoryRateCache creates an in-memory rate cache
func NewInMemoryRateCache(ttl time.Duration) *InMemoryRateCache {
	return &InMemoryRateCache{
		entries: make(map[uuid.UUID]rateEntry),
		ttl:     ttl,
	}
}

// Get returns the cached rate for a unit and whether it was present
func (c *InMemoryRateCache) Get(_ context.Context, unitID uuid.UUID) (decimal.Decimal, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[unitID]
	c.mu.RUnlock()

	if !ok {
		return decimal.Zero, false, nil
	}
	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, unitID)
		c.mu.Unlock()
		return decimal.Zero, false, nil
	}
	return entry.rate, true, nil
}

// Set stores the rate for a unit with the configured TTL
func (c *InMemoryRateCache) Set(_ context.Context, unitID uuid.UUID, rate decimal.Decimal) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[unitID] = rateEntry{
		rate:      rate,
		expiresAt: time.Now().Add(c.ttl),
	}
	return nil
}

// Invalidate drops the cached rate for a unit
func (c *InMemoryRateCache) Invalidate(_ context.Context, unitID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, unitID)
	return nil
}

// Len returns the number of entries currently held, expired or not
func (c *InMemoryRateCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

var _ appinv.ConversionRateCache = (*InMemoryRateCache)(nil)
