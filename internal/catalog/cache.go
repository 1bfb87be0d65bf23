package catalog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const activeListKey = "catalog:active"

// Cache keeps the active product list in Redis so the product grid does
// not hit the database on every refresh. All methods are nil-safe; a
// nil cache degrades to direct repository reads.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if client == nil {
		return nil
	}
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) GetActive(ctx context.Context) ([]Product, bool) {
	if c == nil {
		return nil, false
	}
	payload, err := c.client.Get(ctx, activeListKey).Bytes()
	if err != nil {
		return nil, false
	}
	var products []Product
	if err := json.Unmarshal(payload, &products); err != nil {
		return nil, false
	}
	return products, true
}

func (c *Cache) SetActive(ctx context.Context, products []Product) {
	if c == nil {
		return
	}
	payload, err := json.Marshal(products)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, activeListKey, payload, c.ttl).Err()
}

// Invalidate drops the cached list after any catalog write.
func (c *Cache) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}
	_ = c.client.Del(ctx, activeListKey).Err()
}
