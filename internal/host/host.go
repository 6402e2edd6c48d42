package host

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/Shopify/gocheckoutflow/internal/checkout"
	"github.com/Shopify/gocheckoutflow/internal/metrics"
	"github.com/Shopify/gocheckoutflow/internal/notify"
	"github.com/Shopify/gocheckoutflow/internal/session"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	defaultUpdateBuffer = 32
)

// Host is the render loop for one checkout session. It re-projects every
// snapshot the session publishes, runs the error bridge on each one in order,
// and keeps only the newest view model for its consumer.
type Host struct {
	Controller checkout.Controller
	Manager    *session.Manager
	Notifier   notify.Notifier

	bridge checkout.ErrorBridge
	views  chan checkout.ViewModel

	mu     sync.Mutex
	latest *checkout.ViewModel

	notificationsSent       int64
	notificationsSuppressed int64
}

func MakeHost(
	controller checkout.Controller,
	manager *session.Manager,
	notifier notify.Notifier,
	production bool,
) *Host {
	return &Host{
		Controller: controller,
		Manager:    manager,
		Notifier:   notifier,
		bridge:     checkout.ErrorBridge{Production: production},
		views:      make(chan checkout.ViewModel, 1),
	}
}

// Views delivers the newest view model; stale ones are dropped. Closed when Run returns.
func (h *Host) Views() <-chan checkout.ViewModel {
	return h.views
}

func (h *Host) Latest() (checkout.ViewModel, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.latest == nil {
		return checkout.ViewModel{}, false
	}
	return *h.latest, true
}

func (h *Host) NotificationsSent() int {
	return int(atomic.LoadInt64(&h.notificationsSent))
}

func (h *Host) NotificationsSuppressed() int {
	return int(atomic.LoadInt64(&h.notificationsSuppressed))
}

// Run blocks until ctx is done. Tearing down the context suppresses any
// notification not yet delivered.
func (h *Host) Run(ctx context.Context) error {
	defer close(h.views)

	updates := h.Manager.Subscribe(ctx, defaultUpdateBuffer)
	initial, err := h.Manager.Snapshot()
	if err != nil {
		return errors.Wrap(err, "initial render")
	}
	h.render(ctx, initial)

	for { // loop until torn down
		select { // block waiting for the next snapshot
		case <-ctx.Done():
			log.Debug().Str("session_id", h.Manager.ID()).Msg("host torn down")
			return nil
		case s := <-updates:
			h.render(ctx, s)
		}
	}
}

// Click dispatches a user action against a projection of the current snapshot.
func (h *Host) Click(action checkout.Action) error {
	s, err := h.Manager.Snapshot()
	if err != nil {
		return errors.Wrapf(err, "click %s", action)
	}
	return checkout.Dispatch(h.Controller.Project(s), action, h.Manager)
}

func (h *Host) render(ctx context.Context, s checkout.Session) {
	vm := h.Controller.Project(s)
	if n, fire := h.bridge.Observe(s); fire {
		h.notify(ctx, s.ID, n)
	}

	h.mu.Lock()
	h.latest = &vm
	h.mu.Unlock()

	select {
	case h.views <- vm:
	default:
		// Drop the stale view and replace it; this goroutine is the only sender.
		select {
		case <-h.views:
		default:
		}
		h.views <- vm
	}

	tags := []string{metrics.Tag("view", vm.Kind)}
	if vm.Flow != nil {
		tags = append(tags, metrics.Tag("stage", vm.Flow.EffectiveStage))
	}
	metrics.Incr("host.render", tags)
}

func (h *Host) notify(ctx context.Context, sessionID string, n checkout.Notification) {
	if ctx.Err() != nil {
		h.suppress(sessionID)
		return
	}
	if err := h.Notifier.Notify(ctx, sessionID, n); err != nil {
		if ctx.Err() != nil {
			h.suppress(sessionID)
			return
		}
		log.Warn().Err(err).Str("session_id", sessionID).Msg("failed delivering checkout notification")
		return
	}
	atomic.AddInt64(&h.notificationsSent, 1)
	metrics.Incr("host.notification", []string{metrics.Tag("severity", n.Severity)})
}

func (h *Host) suppress(sessionID string) {
	atomic.AddInt64(&h.notificationsSuppressed, 1)
	metrics.Incr("host.notification_suppressed", nil)
	log.Debug().Str("session_id", sessionID).Msg("notification suppressed after teardown")
}
