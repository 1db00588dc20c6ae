package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"

	"cep_lookup/platform/logger"
)

const redisKeyPrefix = "postalcode:"

// RedisCache is a read-through cache in front of a Store. Only hits are
// cached; Add invalidates the key so the first-match rule still holds.
type RedisCache struct {
	next   Store
	client redis.UniversalClient
	ttl    time.Duration
	log    *logger.Logger
}

// NewRedisCache wraps next. Redis errors degrade to the wrapped store.
func NewRedisCache(next Store, client redis.UniversalClient, ttl time.Duration, log *logger.Logger) *RedisCache {
	return &RedisCache{next: next, client: client, ttl: ttl, log: log}
}

func (c *RedisCache) Find(ctx context.Context, city, region string) (Entry, error) {
	key := redisKeyPrefix + Key(city, region)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var e Entry
		if jsonErr := json.Unmarshal(raw, &e); jsonErr == nil {
			return e, nil
		}
		c.log.Warn("discarding undecodable cache entry", "key", key)
	case !errors.Is(err, redis.Nil):
		c.log.StoreError("redis.Get", err)
	}

	e, err := c.next.Find(ctx, city, region)
	if err != nil {
		return Entry{}, err
	}

	if data, jsonErr := json.Marshal(e); jsonErr == nil {
		if setErr := c.client.Set(ctx, key, data, c.ttl).Err(); setErr != nil {
			c.log.StoreError("redis.Set", setErr)
		}
	}
	return e, nil
}

func (c *RedisCache) Add(ctx context.Context, e Entry) (bool, error) {
	persisted, err := c.next.Add(ctx, e)
	if err != nil {
		return persisted, err
	}
	if delErr := c.client.Del(ctx, redisKeyPrefix+e.Key()).Err(); delErr != nil {
		c.log.StoreError("redis.Del", delErr)
	}
	return persisted, nil
}

// LRUCache is the in-process counterpart of RedisCache.
type LRUCache struct {
	next  Store
	cache *lru.Cache[string, Entry]
}

// NewLRUCache wraps next with a cache holding up to size entries.
func NewLRUCache(next Store, size int) (*LRUCache, error) {
	cache, err := lru.New[string, Entry](size)
	if err != nil {
		return nil, err
	}
	return &LRUCache{next: next, cache: cache}, nil
}

func (c *LRUCache) Find(ctx context.Context, city, region string) (Entry, error) {
	key := Key(city, region)
	if e, ok := c.cache.Get(key); ok {
		return e, nil
	}

	e, err := c.next.Find(ctx, city, region)
	if err != nil {
		return Entry{}, err
	}
	c.cache.Add(key, e)
	return e, nil
}

func (c *LRUCache) Add(ctx context.Context, e Entry) (bool, error) {
	persisted, err := c.next.Add(ctx, e)
	if err != nil {
		return persisted, err
	}
	c.cache.Remove(e.Key())
	return persisted, nil
}

var (
	_ Store = (*RedisCache)(nil)
	_ Store = (*LRUCache)(nil)
)
