package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/ternarybob/docworker/internal/models"
)

// TenantCache sits in front of FetchAppConfig/FetchAppLimits only — it
// never caches document or template bytes, and never caches anything
// destined to be written to object storage.
type TenantCache struct {
	ledger *Ledger
	cache  *ristretto.Cache[string, any]
	ttl    time.Duration
}

// NewTenantCache builds a bounded, short-TTL cache over the given ledger.
func NewTenantCache(ledger *Ledger, ttl time.Duration) (*TenantCache, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, any]{
		NumCounters: 10_000,
		MaxCost:     1_000, // entries are tiny structs, not byte payloads
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("creating tenant cache: %w", err)
	}
	return &TenantCache{ledger: ledger, cache: cache, ttl: ttl}, nil
}

// AppConfig returns the cached config, fetching and caching on miss.
func (c *TenantCache) AppConfig(ctx context.Context, appUUID string) (*models.AppConfig, error) {
	key := "config:" + appUUID
	if v, ok := c.cache.Get(key); ok {
		return v.(*models.AppConfig), nil
	}

	cfg, err := c.ledger.FetchAppConfig(ctx, appUUID)
	if err != nil {
		return nil, err
	}
	c.cache.SetWithTTL(key, cfg, 1, c.ttl)
	c.cache.Wait()
	return cfg, nil
}

// AppLimits returns the cached limits, fetching and caching on miss.
func (c *TenantCache) AppLimits(ctx context.Context, appUUID string) (*models.AppLimits, error) {
	key := "limits:" + appUUID
	if v, ok := c.cache.Get(key); ok {
		return v.(*models.AppLimits), nil
	}

	lim, err := c.ledger.FetchAppLimits(ctx, appUUID)
	if err != nil {
		return nil, err
	}
	c.cache.SetWithTTL(key, lim, 1, c.ttl)
	c.cache.Wait()
	return lim, nil
}

// Close releases the cache's background goroutines.
func (c *TenantCache) Close() {
	c.cache.Close()
}
