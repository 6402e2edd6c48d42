package simulator

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/Shopify/gocheckoutflow/internal/checkout"
	"github.com/Shopify/gocheckoutflow/internal/host"
	"github.com/Shopify/gocheckoutflow/internal/ledger"
	"github.com/Shopify/gocheckoutflow/internal/metrics"
	"github.com/Shopify/gocheckoutflow/internal/session"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	paymentDeclinedMessage = "Your card was declined."

	// How often a customer re-reads the rendered page when nothing new arrives.
	viewRecheckInterval = 25 * time.Millisecond
)

// SimulatedCustomer drives one checkout session by reading the rendered view
// model and doing what a shopper (and the stage components) would do next.
type SimulatedCustomer struct {
	Id     int
	Config CustomerConfig
	Params SessionParams

	rnd      *rand.Rand
	attempts int
	browsed  bool
}

func (c *SimulatedCustomer) Label() string {
	return c.Config.HumanizedLabel
}

// Run plays the session to an outcome. Only infrastructure failures are
// returned as errors; abandoned or rejected checkouts are outcomes.
func (c *SimulatedCustomer) Run(ctx context.Context) (ledger.SessionOutcome, error) {
	start := time.Now()
	outcome := ledger.SessionOutcome{CustomerLabel: c.Label()}
	finish := func(o ledger.Outcome) (ledger.SessionOutcome, error) {
		outcome.Outcome = o
		outcome.DurationMs = time.Since(start).Milliseconds()
		return outcome, nil
	}

	if err := checkout.CheckEntry(c.Config.Authenticated); err != nil {
		outcome.SessionID = uuid.NewString()
		log.Info().Str("customer", c.Label()).Err(err).Msg("checkout entry rejected")
		return finish(ledger.OutcomeRejectedUnauthenticated)
	}

	manager, err := session.NewSession(c.Params.Store, c.seedSession())
	if err != nil {
		return outcome, errors.Wrap(err, "opening checkout session")
	}
	outcome.SessionID = manager.ID()
	defer func() {
		if err := manager.Destroy(); err != nil {
			log.Warn().Err(err).Str("session_id", manager.ID()).Msg("failed removing checkout session")
		}
	}()

	sessionCtx, cancel := context.WithTimeout(ctx, c.Params.SessionTimeout)
	defer cancel()

	// The host renders until the customer is done with the page.
	h := host.MakeHost(c.Params.Controller, manager, c.Params.Notifier, c.Params.Production)
	g, gctx := errgroup.WithContext(sessionCtx)
	g.Go(func() error { return h.Run(gctx) })

	var result ledger.Outcome
	g.Go(func() error {
		defer cancel()
		var driveErr error
		result, driveErr = c.drive(gctx, h, manager)
		return driveErr
	})
	err = g.Wait()

	outcome.Notifications = h.NotificationsSent()
	if vm, ok := h.Latest(); ok {
		if vm.Flow != nil {
			outcome.FinalStage = vm.Flow.EffectiveStage.String()
		}
		if vm.Confirmation != nil {
			outcome.OrderNumber = vm.Confirmation.OrderNumber
		}
	}
	if err != nil {
		return outcome, err
	}
	return finish(result)
}

func (c *SimulatedCustomer) seedSession() checkout.Session {
	seed := checkout.Session{
		IsGuest:    c.Config.IsGuest,
		IsSignedIn: !c.Config.IsGuest,
		IsLoading:  true,
	}
	if !c.Config.IsGuest {
		seed.Customer = &checkout.Customer{
			FirstName:          c.Config.FirstName,
			HasDefaultShipping: c.Config.HasDefaultShipping,
		}
	}
	return seed
}

func (c *SimulatedCustomer) cartItems() []checkout.CartItem {
	items := make([]checkout.CartItem, 0, c.Config.CartSize)
	for i := 0; i < c.Config.CartSize; i++ {
		items = append(items, checkout.CartItem{
			SKU:        fmt.Sprintf("SKU-%d-%d", c.Id, i),
			Name:       fmt.Sprintf("Item %d", i+1),
			Quantity:   1 + c.rnd.Intn(3),
			IsVirtual:  c.Config.VirtualCart,
			OutOfStock: i < c.Config.OutOfStockLines,
		})
	}
	return items
}

// loadCart plays the data layer: the page opens in the loading state and the
// cart arrives after the configured delay.
func (c *SimulatedCustomer) loadCart(ctx context.Context, manager *session.Manager) error {
	if err := c.sleep(ctx, time.Duration(c.Config.InitialLoadMs)*time.Millisecond); err != nil {
		return err
	}
	if err := manager.SetViewportWidth(c.Config.ViewportWidthPx); err != nil {
		return err
	}
	if err := manager.SetCart(c.cartItems()); err != nil {
		return err
	}
	return manager.SetLoading(false)
}

func (c *SimulatedCustomer) drive(
	ctx context.Context,
	h *host.Host,
	manager *session.Manager,
) (ledger.Outcome, error) {
	if err := c.loadCart(ctx, manager); err != nil {
		if ctx.Err() != nil {
			return ledger.OutcomeTimedOut, nil
		}
		return "", err
	}

	ticker := time.NewTicker(viewRecheckInterval)
	defer ticker.Stop()

	var minRevision int64
	for { // loop until the session reaches an outcome
		select { // block waiting for a fresh render or the recheck tick
		case <-ctx.Done():
			return ledger.OutcomeTimedOut, nil
		case <-h.Views():
		case <-ticker.C:
		}

		vm, ok := h.Latest()
		if !ok || vm.Revision < minRevision {
			continue
		}
		outcome, done, err := c.act(ctx, h, manager, vm)
		if err != nil {
			if ctx.Err() != nil {
				return ledger.OutcomeTimedOut, nil
			}
			return "", err
		}
		if done {
			return outcome, nil
		}
		snapshot, err := manager.Snapshot()
		if err != nil {
			return "", err
		}
		minRevision = snapshot.Revision
	}
}

// act performs the next step for vm. Returns done once the session has an outcome.
func (c *SimulatedCustomer) act(
	ctx context.Context,
	h *host.Host,
	manager *session.Manager,
	vm checkout.ViewModel,
) (ledger.Outcome, bool, error) {
	switch vm.Kind {
	case checkout.OrderConfirmationView:
		return ledger.OutcomeConfirmed, true, nil
	case checkout.EmptyCartView:
		return ledger.OutcomeAbandonedEmptyCart, true, nil
	case checkout.LoadingView:
		return "", false, nil
	}

	flow := vm.Flow
	if flow.StockAdvisory != nil {
		return ledger.OutcomeAbandonedOutOfStock, true, nil
	}
	if c.attempts >= c.maxAttempts() {
		return ledger.OutcomeAbandonedDeclined, true, nil
	}
	if err := c.think(ctx); err != nil {
		return "", false, err
	}

	if b, found := vm.Button(checkout.ActionSignIn); found && b.Enabled && c.Config.SignsIn {
		if err := c.click(h, checkout.ActionSignIn); err != nil {
			return "", false, err
		}
		return "", false, manager.CompleteSignIn(checkout.Customer{
			FirstName:          c.Config.FirstName,
			HasDefaultShipping: c.Config.HasDefaultShipping,
		})
	}

	if vm.AddressBook != nil && c.Config.BrowsesAddressBook {
		// Open the address book once, then come back to the flow.
		if !c.browsed || vm.AddressBook.Active {
			c.browsed = true
			return "", false, c.click(h, checkout.ActionToggleAddressBook)
		}
	}

	switch flow.EffectiveStage {
	case checkout.ShippingAddress:
		return "", false, c.completeStage(manager, checkout.ShippingMethod)
	case checkout.ShippingMethod:
		return "", false, c.completeStage(manager, checkout.Payment)
	case checkout.Payment:
		return "", false, c.pay(h, manager, flow)
	case checkout.Review:
		return "", false, c.placeOrder(ctx, h, manager, vm)
	}
	return "", false, nil
}

// completeStage stands in for a shipping component saving its form.
func (c *SimulatedCustomer) completeStage(manager *session.Manager, next checkout.Stage) error {
	if err := manager.SetBusy(true); err != nil {
		return err
	}
	if err := manager.AdvanceStage(next); err != nil {
		return err
	}
	return manager.SetBusy(false)
}

// pay clicks Review Order, then plays the payment component once it is told
// to submit.
func (c *SimulatedCustomer) pay(h *host.Host, manager *session.Manager, flow *checkout.FlowView) error {
	payment, ok := flow.Section(checkout.Payment)
	if !ok || !payment.ShouldSubmit {
		return c.click(h, checkout.ActionReviewOrder)
	}
	if c.rnd.Float64() < c.Config.PaymentDeclineProbabilityPct {
		c.attempts++
		metrics.Incr("simulator.payment", []string{"operation:declined"})
		if err := manager.FailSubmission(paymentDeclinedMessage); err != nil {
			return err
		}
		return manager.ResetReviewRequest()
	}
	metrics.Incr("simulator.payment", []string{"operation:accepted"})
	if err := manager.AdvanceStage(checkout.Review); err != nil {
		return err
	}
	return manager.ResetReviewRequest()
}

func (c *SimulatedCustomer) placeOrder(
	ctx context.Context,
	h *host.Host,
	manager *session.Manager,
	vm checkout.ViewModel,
) error {
	if b, found := vm.Button(checkout.ActionPlaceOrder); !found || !b.Enabled {
		return nil
	}
	if err := c.click(h, checkout.ActionPlaceOrder); err != nil {
		return err
	}
	confirmed, err := c.Params.OrderService.PlaceOrder(ctx, manager, c.rnd, c.Config.OrderFailureProbabilityPct)
	if err != nil {
		return err
	}
	if !confirmed {
		c.attempts++
	}
	return nil
}

// click ignores buttons that went away or got disabled since the view was read.
func (c *SimulatedCustomer) click(h *host.Host, action checkout.Action) error {
	err := h.Click(action)
	if errors.Is(err, checkout.ErrActionUnavailable) {
		log.Debug().Str("customer", c.Label()).Str("action", action.String()).Msg("action no longer available")
		return nil
	}
	return err
}

func (c *SimulatedCustomer) maxAttempts() int {
	if c.Config.MaxSubmissionAttempts <= 0 {
		return defaultMaxSubmissionAttempts
	}
	return c.Config.MaxSubmissionAttempts
}

func (c *SimulatedCustomer) think(ctx context.Context) error {
	if c.Config.MaxThinkTimeMs <= 0 {
		return nil
	}
	return c.sleep(ctx, time.Duration(c.rnd.Intn(c.Config.MaxThinkTimeMs+1))*time.Millisecond)
}

func (c *SimulatedCustomer) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
