package price

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/vietlabs/cryptotax/config"
)

const (
	tokenPriceKeyPrefix = "price/vnd/"
	usdVndRateKey       = "rate/usd_vnd"
)

// Cache decorates a Service with a redis-backed cache so repeated imports in
// the same session do not hammer the upstream APIs.
type Cache struct {
	next Service
	rdb  *redis.Client
	ttl  time.Duration
}

func NewCache(next Service, rdb *redis.Client, ttl time.Duration) *Cache {
	return &Cache{
		next: next,
		rdb:  rdb,
		ttl:  ttl,
	}
}

func (c *Cache) TokenPriceVND(ctx context.Context, token string) (decimal.Decimal, error) {
	key := tokenPriceKeyPrefix + token
	if cached, ok := c.lookup(ctx, key); ok {
		return cached, nil
	}

	fresh, err := c.next.TokenPriceVND(ctx, token)
	if err != nil {
		return decimal.Zero, err
	}
	c.store(ctx, key, fresh)

	return fresh, nil
}

func (c *Cache) UsdVndRate(ctx context.Context) (decimal.Decimal, error) {
	if cached, ok := c.lookup(ctx, usdVndRateKey); ok {
		return cached, nil
	}

	fresh, err := c.next.UsdVndRate(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	c.store(ctx, usdVndRateKey, fresh)

	return fresh, nil
}

func (c *Cache) lookup(ctx context.Context, key string) (decimal.Decimal, bool) {
	res, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			config.Log.Warn(fmt.Sprintf("Error reading %s from the price cache", key), err)
		}
		return decimal.Zero, false
	}

	value, err := decimal.NewFromString(res)
	if err != nil {
		config.Log.Warn(fmt.Sprintf("Discarding malformed cache entry for %s", key), err)
		return decimal.Zero, false
	}

	return value, true
}

func (c *Cache) store(ctx context.Context, key string, value decimal.Decimal) {
	if err := c.rdb.Set(ctx, key, value.String(), c.ttl).Err(); err != nil {
		// a cold cache is not a failure, the upstream value is already in hand
		config.Log.Warn(fmt.Sprintf("Error writing %s to the price cache", key), err)
	}
}
