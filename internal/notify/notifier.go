package notify

import (
	"context"

	"github.com/Shopify/gocheckoutflow/internal/checkout"
)

// Notifier delivers toast requests for one checkout session. Implementations
// must drop the request and return ctx.Err() once ctx is done.
type Notifier interface {
	Notify(ctx context.Context, sessionID string, n checkout.Notification) error
}
