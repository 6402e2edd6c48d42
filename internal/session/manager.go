package session

import (
	"context"
	"sync"
	"time"

	"github.com/Shopify/gocheckoutflow/internal/checkout"
	"github.com/Shopify/gocheckoutflow/internal/metrics"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	defaultSubscriptionBuffer = 32
)

// errUnchanged short-circuits a mutation that would not alter the snapshot.
var errUnchanged = errors.New("unchanged")

type subscription struct {
	ch   chan checkout.Session
	done <-chan struct{}
}

// Manager is the mutable side of one checkout session. Every mutation loads the
// latest snapshot, applies the change, saves it and publishes a copy to
// subscribers in mutation order.
type Manager struct {
	id    string
	store Store

	mu            sync.Mutex
	subscriptions []*subscription
}

var _ checkout.SessionActions = (*Manager)(nil)

// NewSession saves seed as a fresh session (assigning an ID if missing) and
// returns its manager.
func NewSession(store Store, seed checkout.Session) (*Manager, error) {
	s := seed.Clone()
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if !s.CurrentStage.Valid() {
		return nil, errors.Wrapf(ErrInvalidStage, "seed stage %d", s.CurrentStage)
	}
	// Every stored error is a distinct occurrence.
	if s.LastError != nil && s.LastError.ID == "" {
		s.LastError.ID = uuid.NewString()
	}
	s.IsVirtualCart = s.IsVirtualCart || checkout.IsVirtualCart(s.CartItems)
	if s.ActiveContent == "" {
		s.ActiveContent = checkout.ContentCheckout
	}
	if err := store.Save(s); err != nil {
		return nil, errors.Wrapf(err, "saving new session %s", s.ID)
	}
	log.Debug().Str("session_id", s.ID).Msg("checkout session created")
	return &Manager{id: s.ID, store: store}, nil
}

// OpenManager attaches to an existing session.
func OpenManager(store Store, id string) (*Manager, error) {
	if _, err := store.Load(id); err != nil {
		return nil, errors.Wrapf(err, "opening session %s", id)
	}
	return &Manager{id: id, store: store}, nil
}

func (m *Manager) ID() string {
	return m.id
}

func (m *Manager) Snapshot() (checkout.Session, error) {
	s, err := m.store.Load(m.id)
	if err != nil {
		return checkout.Session{}, errors.Wrapf(err, "loading session %s", m.id)
	}
	return s, nil
}

// Subscribe returns a channel receiving every snapshot saved after the call.
// Publishing to it stops once ctx is done.
func (m *Manager) Subscribe(ctx context.Context, buffer int) <-chan checkout.Session {
	if buffer <= 0 {
		buffer = defaultSubscriptionBuffer
	}
	sub := &subscription{ch: make(chan checkout.Session, buffer), done: ctx.Done()}
	m.mu.Lock()
	m.subscriptions = append(m.subscriptions, sub)
	m.mu.Unlock()
	return sub.ch
}

// Destroy removes the session from the store.
func (m *Manager) Destroy() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscriptions = nil
	return errors.Wrapf(m.store.Delete(m.id), "deleting session %s", m.id)
}

func (m *Manager) AdvanceStage(stage checkout.Stage) error {
	return m.mutate("advance_stage", func(s *checkout.Session) error {
		if !stage.Valid() {
			return errors.Wrapf(ErrInvalidStage, "stage %d", stage)
		}
		if stage.Before(s.CurrentStage) {
			return errors.Wrapf(ErrStageRegression, "%s -> %s", s.CurrentStage, stage)
		}
		if stage == s.CurrentStage {
			return errUnchanged
		}
		s.CurrentStage = stage
		return nil
	})
}

func (m *Manager) SetBusy(busy bool) error {
	return m.mutate("set_busy", func(s *checkout.Session) error {
		s.IsBusy = busy
		return nil
	})
}

// RequestReview starts a new payment submission attempt.
func (m *Manager) RequestReview() error {
	return m.mutate("request_review", func(s *checkout.Session) error {
		s.ReviewRequested = true
		s.LastError = nil
		return nil
	})
}

func (m *Manager) ResetReviewRequest() error {
	return m.mutate("reset_review_request", func(s *checkout.Session) error {
		s.ReviewRequested = false
		return nil
	})
}

func (m *Manager) RequestPlaceOrder() error {
	return m.mutate("request_place_order", func(s *checkout.Session) error {
		s.PlaceOrderInFlight = true
		s.LastError = nil
		return nil
	})
}

func (m *Manager) RequestSignIn() error {
	return m.mutate("request_sign_in", func(s *checkout.Session) error {
		s.SignInRequested = true
		return nil
	})
}

// CompleteSignIn turns a guest session into a signed-in customer session.
func (m *Manager) CompleteSignIn(customer checkout.Customer) error {
	return m.mutate("complete_sign_in", func(s *checkout.Session) error {
		s.IsGuest = false
		s.IsSignedIn = true
		s.SignInRequested = false
		s.Customer = &customer
		return nil
	})
}

func (m *Manager) ToggleActiveContent() error {
	return m.mutate("toggle_active_content", func(s *checkout.Session) error {
		if s.ActiveContent == checkout.ContentAddressBook {
			s.ActiveContent = checkout.ContentCheckout
		} else {
			s.ActiveContent = checkout.ContentAddressBook
		}
		return nil
	})
}

func (m *Manager) SetLoading(loading bool) error {
	return m.mutate("set_loading", func(s *checkout.Session) error {
		s.IsLoading = loading
		return nil
	})
}

// SetCart replaces the cart lines and recomputes the virtual-cart flag.
func (m *Manager) SetCart(items []checkout.CartItem) error {
	return m.mutate("set_cart", func(s *checkout.Session) error {
		s.CartItems = append([]checkout.CartItem(nil), items...)
		s.IsVirtualCart = checkout.IsVirtualCart(s.CartItems)
		return nil
	})
}

func (m *Manager) SetViewportWidth(widthPx int) error {
	return m.mutate("set_viewport", func(s *checkout.Session) error {
		s.ViewportIsNarrow = checkout.IsNarrowViewport(widthPx)
		return nil
	})
}

func (m *Manager) SetOrderDetailsLoading(loading bool) error {
	return m.mutate("set_order_details_loading", func(s *checkout.Session) error {
		s.OrderDetailsLoading = loading
		return nil
	})
}

// FailSubmission records a new error occurrence and ends any in-flight submission.
func (m *Manager) FailSubmission(message string) error {
	return m.mutate("fail_submission", func(s *checkout.Session) error {
		s.LastError = &checkout.SubmissionError{ID: uuid.NewString(), Message: message}
		s.PlaceOrderInFlight = false
		s.IsBusy = false
		return nil
	})
}

func (m *Manager) ClearError() error {
	return m.mutate("clear_error", func(s *checkout.Session) error {
		if s.LastError == nil {
			return errUnchanged
		}
		s.LastError = nil
		return nil
	})
}

// ConfirmOrder makes the session terminal.
func (m *Manager) ConfirmOrder(orderNumber string, details map[string]string) error {
	return m.mutate("confirm_order", func(s *checkout.Session) error {
		if orderNumber == "" {
			return errors.New("order number required")
		}
		s.OrderNumber = orderNumber
		s.OrderDetails = details
		s.PlaceOrderInFlight = false
		s.OrderDetailsLoading = false
		s.ReviewRequested = false
		s.IsBusy = false
		return nil
	})
}

func (m *Manager) mutate(operation string, apply func(s *checkout.Session) error) error {
	defer metrics.BenchmarkMethod(time.Now(), "session.mutate", []string{metrics.Tag("operation", operation)})
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.store.Load(m.id)
	if err != nil {
		return errors.Wrapf(err, "%s: loading session %s", operation, m.id)
	}
	if s.IsTerminal() {
		return errors.Wrapf(ErrSessionTerminal, "%s on order %s", operation, s.OrderNumber)
	}
	if err := apply(&s); err != nil {
		if err == errUnchanged {
			return nil
		}
		return errors.Wrap(err, operation)
	}
	s.Revision++
	if err := m.store.Save(s); err != nil {
		return errors.Wrapf(err, "%s: saving session %s", operation, m.id)
	}

	metrics.Incr("session.mutation", []string{metrics.Tag("operation", operation)})
	log.Debug().Str("session_id", m.id).Str("operation", operation).Str("stage", s.CurrentStage.String()).Msg("session mutated")
	m.publish(s)
	return nil
}

// Caller holds m.mu.
func (m *Manager) publish(s checkout.Session) {
	live := m.subscriptions[:0]
	for _, sub := range m.subscriptions {
		select {
		case sub.ch <- s.Clone():
			live = append(live, sub)
		case <-sub.done:
			// Subscriber torn down; drop it.
		}
	}
	m.subscriptions = live
}
