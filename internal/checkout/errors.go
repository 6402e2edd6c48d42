package checkout

import "github.com/pkg/errors"

var (
	ErrActionUnavailable = errors.New("action is not available in the current view")
	ErrNotAuthenticated  = errors.New("customer must sign in before entering checkout")
)
