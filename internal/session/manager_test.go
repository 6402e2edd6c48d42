package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/Shopify/gocheckoutflow/internal/checkout"
	"github.com/Shopify/gocheckoutflow/internal/session"
	"github.com/Shopify/gocheckoutflow/internal/session/impl"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T) *session.Manager {
	t.Helper()
	m, err := session.NewSession(impl.MakeMemoryStore(), checkout.Session{
		IsSignedIn: true,
		Customer:   &checkout.Customer{FirstName: "Ada"},
		CartItems:  []checkout.CartItem{{SKU: "tee-m", Quantity: 1}},
	})
	require.NoError(t, err)
	return m
}

func snapshot(t *testing.T, m *session.Manager) checkout.Session {
	t.Helper()
	s, err := m.Snapshot()
	require.NoError(t, err)
	return s
}

func TestNewSession_AssignsIDAndDefaults(t *testing.T) {
	m := newManager(t)
	s := snapshot(t, m)

	assert.Len(t, m.ID(), 36)
	assert.Equal(t, m.ID(), s.ID)
	assert.Equal(t, checkout.ContentCheckout, s.ActiveContent)
	assert.False(t, s.IsVirtualCart)
}

func TestNewSession_DerivesVirtualCart(t *testing.T) {
	m, err := session.NewSession(impl.MakeMemoryStore(), checkout.Session{
		ID:        "digital",
		CartItems: []checkout.CartItem{{SKU: "ebook", IsVirtual: true}},
	})
	require.NoError(t, err)
	assert.True(t, snapshot(t, m).IsVirtualCart)
}

func TestNewSession_RejectsInvalidStage(t *testing.T) {
	_, err := session.NewSession(impl.MakeMemoryStore(), checkout.Session{CurrentStage: checkout.Stage(7)})
	assert.ErrorIs(t, err, session.ErrInvalidStage)
}

func TestNewSession_SeededErrorsGetOccurrenceIDs(t *testing.T) {
	store := impl.MakeMemoryStore()
	seed := checkout.Session{
		CartItems: []checkout.CartItem{{SKU: "tee-m", Quantity: 1}},
		LastError: &checkout.SubmissionError{Message: "Card declined"},
	}
	first, err := session.NewSession(store, seed)
	require.NoError(t, err)
	second, err := session.NewSession(store, seed)
	require.NoError(t, err)

	a, b := snapshot(t, first).LastError, snapshot(t, second).LastError
	require.NotNil(t, a)
	require.NotNil(t, b)
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Empty(t, seed.LastError.ID, "seed must not be modified")

	// Same text, different occurrences: both notify.
	_, fire := checkout.ErrorNotification(a, b)
	assert.True(t, fire)
}

func TestOpenManager(t *testing.T) {
	store := impl.MakeMemoryStore()
	_, err := session.OpenManager(store, "missing")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)

	m, err := session.NewSession(store, checkout.Session{ID: "known"})
	require.NoError(t, err)
	reopened, err := session.OpenManager(store, "known")
	require.NoError(t, err)
	assert.Equal(t, m.ID(), reopened.ID())
}

func TestAdvanceStage_NeverDecreases(t *testing.T) {
	m := newManager(t)

	require.NoError(t, m.AdvanceStage(checkout.ShippingMethod))
	require.NoError(t, m.AdvanceStage(checkout.Payment))
	require.NoError(t, m.AdvanceStage(checkout.Payment))

	err := m.AdvanceStage(checkout.ShippingAddress)
	assert.ErrorIs(t, err, session.ErrStageRegression)
	assert.Equal(t, checkout.Payment, snapshot(t, m).CurrentStage)

	assert.ErrorIs(t, m.AdvanceStage(checkout.Stage(12)), session.ErrInvalidStage)
}

func TestReviewRequestLifecycle(t *testing.T) {
	m := newManager(t)
	require.NoError(t, m.AdvanceStage(checkout.Payment))
	require.NoError(t, m.FailSubmission("Card declined"))

	require.NoError(t, m.RequestReview())
	s := snapshot(t, m)
	assert.True(t, s.ReviewRequested)
	assert.Nil(t, s.LastError)

	require.NoError(t, m.AdvanceStage(checkout.Review))
	require.NoError(t, m.ResetReviewRequest())
	s = snapshot(t, m)
	assert.False(t, s.ReviewRequested)
	assert.Equal(t, checkout.Review, s.CurrentStage)
}

func TestFailSubmission_NewOccurrenceEachTime(t *testing.T) {
	m := newManager(t)
	require.NoError(t, m.RequestPlaceOrder())
	require.NoError(t, m.FailSubmission("Card declined"))
	first := snapshot(t, m).LastError

	require.NoError(t, m.FailSubmission("Card declined"))
	second := snapshot(t, m)

	require.NotNil(t, first)
	require.NotNil(t, second.LastError)
	assert.NotEqual(t, first.ID, second.LastError.ID)
	assert.False(t, second.PlaceOrderInFlight)

	require.NoError(t, m.ClearError())
	assert.Nil(t, snapshot(t, m).LastError)
	require.NoError(t, m.ClearError())
}

func TestConfirmOrder_MakesSessionTerminal(t *testing.T) {
	m := newManager(t)
	require.NoError(t, m.RequestPlaceOrder())
	require.NoError(t, m.ConfirmOrder("1000123", map[string]string{"email": "ada@example.com"}))

	s := snapshot(t, m)
	assert.True(t, s.IsTerminal())
	assert.False(t, s.PlaceOrderInFlight)

	assert.ErrorIs(t, m.SetBusy(true), session.ErrSessionTerminal)
	assert.ErrorIs(t, m.ConfirmOrder("1000124", nil), session.ErrSessionTerminal)
	assert.Error(t, newManager(t).ConfirmOrder("", nil))
}

func TestSetCartAndViewport(t *testing.T) {
	m := newManager(t)

	require.NoError(t, m.SetCart([]checkout.CartItem{{SKU: "gift-card", IsVirtual: true}}))
	require.NoError(t, m.SetViewportWidth(375))
	s := snapshot(t, m)
	assert.True(t, s.IsVirtualCart)
	assert.True(t, s.ViewportIsNarrow)

	require.NoError(t, m.SetCart(nil))
	require.NoError(t, m.SetViewportWidth(1280))
	s = snapshot(t, m)
	assert.True(t, s.IsCartEmpty())
	assert.False(t, s.IsVirtualCart)
	assert.False(t, s.ViewportIsNarrow)
}

func TestSignInAndActiveContent(t *testing.T) {
	m, err := session.NewSession(impl.MakeMemoryStore(), checkout.Session{IsGuest: true})
	require.NoError(t, err)

	require.NoError(t, m.RequestSignIn())
	assert.True(t, snapshot(t, m).SignInRequested)

	require.NoError(t, m.CompleteSignIn(checkout.Customer{FirstName: "Grace"}))
	s := snapshot(t, m)
	assert.False(t, s.IsGuest)
	assert.True(t, s.IsSignedIn)
	assert.False(t, s.SignInRequested)
	assert.Equal(t, "Grace", s.Customer.FirstName)

	require.NoError(t, m.ToggleActiveContent())
	assert.Equal(t, checkout.ContentAddressBook, snapshot(t, m).ActiveContent)
	require.NoError(t, m.ToggleActiveContent())
	assert.Equal(t, checkout.ContentCheckout, snapshot(t, m).ActiveContent)
}

func TestSubscribe_PublishesInMutationOrder(t *testing.T) {
	m := newManager(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	updates := m.Subscribe(ctx, 8)

	require.NoError(t, m.SetLoading(true))
	require.NoError(t, m.SetLoading(false))
	require.NoError(t, m.AdvanceStage(checkout.ShippingMethod))
	// No-op advance publishes nothing.
	require.NoError(t, m.AdvanceStage(checkout.ShippingMethod))

	assert.True(t, (<-updates).IsLoading)
	assert.False(t, (<-updates).IsLoading)
	assert.Equal(t, checkout.ShippingMethod, (<-updates).CurrentStage)
	assert.Empty(t, updates)
}

func TestSubscribe_TornDownSubscriberDoesNotBlock(t *testing.T) {
	m := newManager(t)
	ctx, cancel := context.WithCancel(context.Background())
	_ = m.Subscribe(ctx, 1)
	cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 5; i++ {
			_ = m.SetBusy(i%2 == 0)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("mutations blocked on a cancelled subscriber")
	}
}

func TestDestroy(t *testing.T) {
	m := newManager(t)
	require.NoError(t, m.Destroy())
	_, err := m.Snapshot()
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}
