package impl

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Shopify/gocheckoutflow/internal/checkout"
	"github.com/Shopify/gocheckoutflow/internal/metrics"
	"github.com/Shopify/gocheckoutflow/internal/session"

	"github.com/go-redis/redis/v7"
	"github.com/pkg/errors"
)

// RedisStore keeps each snapshot as a JSON string that expires after SessionTTL
// without writes.
type RedisStore struct {
	RedisClient     *redis.Client
	ShopScopePrefix string
	SessionTTL      time.Duration
}

func (rs *RedisStore) Load(id string) (checkout.Session, error) {
	defer metrics.BenchmarkMethod(time.Now(), "redis_store.load", nil)
	raw, err := rs.RedisClient.Get(rs.buildSessionKey(id)).Bytes()
	if err == redis.Nil {
		return checkout.Session{}, errors.Wrapf(session.ErrSessionNotFound, "id %s", id)
	}
	if err != nil {
		return checkout.Session{}, errors.Wrapf(err, "redis get %s", id)
	}
	var s checkout.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return checkout.Session{}, errors.Wrapf(err, "decoding session %s", id)
	}
	return s, nil
}

func (rs *RedisStore) Save(s checkout.Session) error {
	defer metrics.BenchmarkMethod(time.Now(), "redis_store.save", nil)
	if s.ID == "" {
		return errors.New("session id required")
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return errors.Wrapf(err, "encoding session %s", s.ID)
	}
	if err := rs.RedisClient.Set(rs.buildSessionKey(s.ID), raw, rs.SessionTTL).Err(); err != nil {
		return errors.Wrapf(err, "redis set %s", s.ID)
	}
	return nil
}

func (rs *RedisStore) Delete(id string) error {
	if err := rs.RedisClient.Del(rs.buildSessionKey(id)).Err(); err != nil {
		return errors.Wrapf(err, "redis del %s", id)
	}
	return nil
}

func (rs *RedisStore) buildSessionKey(id string) string {
	return fmt.Sprintf("checkout_session:%s:%s", rs.ShopScopePrefix, id)
}
