package checkout

import (
	"github.com/pkg/errors"
)

// SessionActions is the callback surface the controller exposes to the
// session layer. Implementations mutate the session and publish a new snapshot.
type SessionActions interface {
	AdvanceStage(stage Stage) error
	SetBusy(busy bool) error
	RequestReview() error
	ResetReviewRequest() error
	RequestPlaceOrder() error
	RequestSignIn() error
	ToggleActiveContent() error
}

// Dispatch runs action against actions if vm currently renders it enabled.
// Clicking Review Order only sets the review request: advancing to Review and
// clearing the request is the payment stage's job.
func Dispatch(vm ViewModel, action Action, actions SessionActions) error {
	if b, found := vm.Button(action); !found || !b.Enabled {
		return errors.Wrapf(ErrActionUnavailable, "%s on %s view", action, vm.Kind)
	}
	switch action {
	case ActionReviewOrder:
		return actions.RequestReview()
	case ActionPlaceOrder:
		return actions.RequestPlaceOrder()
	case ActionSignIn:
		return actions.RequestSignIn()
	case ActionToggleAddressBook:
		return actions.ToggleActiveContent()
	default:
		return errors.Wrapf(ErrActionUnavailable, "unknown action %d", action)
	}
}
