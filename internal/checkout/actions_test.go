package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSessionActions struct {
	mock.Mock
}

func (m *mockSessionActions) AdvanceStage(stage Stage) error { return m.Called(stage).Error(0) }
func (m *mockSessionActions) SetBusy(busy bool) error        { return m.Called(busy).Error(0) }
func (m *mockSessionActions) RequestReview() error           { return m.Called().Error(0) }
func (m *mockSessionActions) ResetReviewRequest() error      { return m.Called().Error(0) }
func (m *mockSessionActions) RequestPlaceOrder() error       { return m.Called().Error(0) }
func (m *mockSessionActions) RequestSignIn() error           { return m.Called().Error(0) }
func (m *mockSessionActions) ToggleActiveContent() error     { return m.Called().Error(0) }

func TestDispatch_ReviewOrder(t *testing.T) {
	actions := &mockSessionActions{}
	actions.On("RequestReview").Return(nil).Once()

	s := flowSession(Payment)
	require.NoError(t, Dispatch(Project(s), ActionReviewOrder, actions))
	actions.AssertExpectations(t)

	// The session layer sets the flag; the button disables, the stage holds.
	s.ReviewRequested = true
	vm := Project(s)
	assert.Equal(t, Payment, vm.Flow.EffectiveStage)
	err := Dispatch(vm, ActionReviewOrder, actions)
	assert.ErrorIs(t, err, ErrActionUnavailable)
	actions.AssertNumberOfCalls(t, "RequestReview", 1)
}

func TestDispatch_PlaceOrder(t *testing.T) {
	actions := &mockSessionActions{}
	actions.On("RequestPlaceOrder").Return(nil).Once()

	s := flowSession(Review)
	require.NoError(t, Dispatch(Project(s), ActionPlaceOrder, actions))

	s.PlaceOrderInFlight = true
	assert.ErrorIs(t, Dispatch(Project(s), ActionPlaceOrder, actions), ErrActionUnavailable)
	actions.AssertExpectations(t)
}

func TestDispatch_UnavailableActions(t *testing.T) {
	tests := []struct {
		name   string
		s      Session
		action Action
	}{
		{"review order before payment", flowSession(ShippingMethod), ActionReviewOrder},
		{"place order at payment", flowSession(Payment), ActionPlaceOrder},
		{"sign in when signed in", flowSession(Payment), ActionSignIn},
		{"address book for guests", Session{IsGuest: true, CartItems: physicalCart()}, ActionToggleAddressBook},
		{"anything on confirmation", Session{OrderNumber: "1000123"}, ActionPlaceOrder},
		{"unknown action", flowSession(Review), Action(99)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actions := &mockSessionActions{}
			err := Dispatch(Project(tt.s), tt.action, actions)
			assert.ErrorIs(t, err, ErrActionUnavailable)
			actions.AssertExpectations(t)
		})
	}
}

func TestDispatch_SignInAndAddressBook(t *testing.T) {
	actions := &mockSessionActions{}
	actions.On("RequestSignIn").Return(nil).Once()
	actions.On("ToggleActiveContent").Return(nil).Once()

	guest := flowSession(ShippingAddress)
	guest.IsGuest = true
	guest.IsSignedIn = false
	require.NoError(t, Dispatch(Project(guest), ActionSignIn, actions))
	require.NoError(t, Dispatch(Project(flowSession(ShippingAddress)), ActionToggleAddressBook, actions))
	actions.AssertExpectations(t)
}

func TestCheckEntry(t *testing.T) {
	assert.NoError(t, CheckEntry(true))
	assert.ErrorIs(t, CheckEntry(false), ErrNotAuthenticated)
}
