package impl

import (
	"fmt"
	"time"

	"github.com/Shopify/gocheckoutflow/internal/checkout"
	"github.com/Shopify/gocheckoutflow/internal/session"

	"github.com/go-redis/redis/v7"
)

const (
	defaultSessionTTL = 30 * time.Minute
)

func MakeMemoryStore() *MemoryStore {
	return &MemoryStore{dict: make(map[string]checkout.Session)}
}

// Returns RedisStore scoped under shopScopePrefix. A non-positive ttl falls back to 30m.
func MakeRedisStore(redisClient *redis.Client, shopScopePrefix string, ttl time.Duration) *RedisStore {
	if redisClient == nil {
		panic(fmt.Errorf("Failed instantiating RedisStore: nil redis client"))
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &RedisStore{RedisClient: redisClient, ShopScopePrefix: shopScopePrefix, SessionTTL: ttl}
}

func MakeStore(storeType string, redisClient *redis.Client, shopScopePrefix string, ttl time.Duration) session.Store {
	switch storeType {
	case "memory_store":
		return MakeMemoryStore()
	case "redis_store":
		return MakeRedisStore(redisClient, shopScopePrefix, ttl)
	default:
		panic(fmt.Errorf("store type must be one of: {memory_store, redis_store}"))
	}
}
