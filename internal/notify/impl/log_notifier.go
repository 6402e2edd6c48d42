package impl

import (
	"context"

	"github.com/Shopify/gocheckoutflow/internal/checkout"
	"github.com/Shopify/gocheckoutflow/internal/metrics"

	"github.com/rs/zerolog"
)

// LogNotifier renders toasts as structured log lines.
type LogNotifier struct {
	Logger zerolog.Logger
}

func (ln *LogNotifier) Notify(ctx context.Context, sessionID string, n checkout.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ln.Logger.Info().
		Str("session_id", sessionID).
		Str("severity", string(n.Severity)).
		Bool("dismissable", n.Dismissable).
		Int64("timeout_ms", n.TimeoutMs()).
		Msg(n.Message)
	metrics.Incr("notifier.toast", []string{metrics.Tag("severity", n.Severity), "notifier:log"})
	return nil
}
