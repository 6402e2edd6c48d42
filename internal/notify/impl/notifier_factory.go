package impl

import (
	"fmt"
	"io"

	"github.com/Shopify/gocheckoutflow/internal/notify"

	"github.com/go-redis/redis/v7"
	"github.com/rs/zerolog"
)

func MakeLogNotifier(w io.Writer) *LogNotifier {
	return &LogNotifier{Logger: zerolog.New(w).With().Timestamp().Str("component", "toast").Logger()}
}

func MakeRedisNotifier(redisClient *redis.Client, shopScopePrefix string) *RedisNotifier {
	if redisClient == nil {
		panic(fmt.Errorf("Failed instantiating RedisNotifier: nil redis client"))
	}
	return &RedisNotifier{RedisClient: redisClient, ShopScopePrefix: shopScopePrefix}
}

func MakeNotifier(notifierType string, w io.Writer, redisClient *redis.Client, shopScopePrefix string) notify.Notifier {
	switch notifierType {
	case "noop_notifier":
		return &NoopNotifier{}
	case "log_notifier":
		return MakeLogNotifier(w)
	case "redis_notifier":
		return MakeRedisNotifier(redisClient, shopScopePrefix)
	default:
		panic(fmt.Errorf("notifier type must be one of: {noop_notifier, log_notifier, redis_notifier}"))
	}
}
