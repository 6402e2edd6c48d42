package impl

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Shopify/gocheckoutflow/internal/checkout"
	"github.com/Shopify/gocheckoutflow/internal/metrics"

	"github.com/go-redis/redis/v7"
	"github.com/pkg/errors"
)

// RedisNotifier publishes toasts on a per-session pub/sub channel for whatever
// front end is attached to the session.
type RedisNotifier struct {
	RedisClient     *redis.Client
	ShopScopePrefix string
}

type toastMessage struct {
	SessionID   string `json:"session_id"`
	Message     string `json:"message"`
	Severity    string `json:"severity"`
	Dismissable bool   `json:"dismissable"`
	TimeoutMs   int64  `json:"timeout_ms"`
}

func (rn *RedisNotifier) Notify(ctx context.Context, sessionID string, n checkout.Notification) error {
	defer metrics.BenchmarkMethod(time.Now(), "redis_notifier.notify", nil)
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(toastMessage{
		SessionID:   sessionID,
		Message:     n.Message,
		Severity:    string(n.Severity),
		Dismissable: n.Dismissable,
		TimeoutMs:   n.TimeoutMs(),
	})
	if err != nil {
		return errors.Wrap(err, "encoding toast")
	}
	if err := rn.RedisClient.Publish(rn.ChannelFor(sessionID), payload).Err(); err != nil {
		return errors.Wrapf(err, "publishing toast for session %s", sessionID)
	}
	metrics.Incr("notifier.toast", []string{metrics.Tag("severity", n.Severity), "notifier:redis"})
	return nil
}

func (rn *RedisNotifier) ChannelFor(sessionID string) string {
	return fmt.Sprintf("checkout_notifications:%s:%s", rn.ShopScopePrefix, sessionID)
}
