package simulator

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/Shopify/gocheckoutflow/internal/checkout"
	"github.com/Shopify/gocheckoutflow/internal/notify"
	"github.com/Shopify/gocheckoutflow/internal/session"
)

const (
	defaultMaxSubmissionAttempts = 3
	defaultSessionTimeout        = 30 * time.Second
	defaultCartSize              = 2
	defaultViewportWidthPx       = 1280
)

// SessionParams are the collaborators shared by every simulated customer.
type SessionParams struct {
	Store          session.Store
	Notifier       notify.Notifier
	Controller     checkout.Controller
	OrderService   *OrderService
	Production     bool
	SessionTimeout time.Duration
}

func MakeCustomerFromConfig(
	config CustomerConfig,
	params SessionParams,
	id int,
	seed int64,
) *SimulatedCustomer {
	switch config.CustomerType {
	case "guest_customer":
		config.Authenticated = true
		config.IsGuest = true
	case "signed_in_customer":
		config.Authenticated = true
		config.IsGuest = false
	case "unauthenticated_customer":
		config.Authenticated = false
	default:
		panic(fmt.Errorf("customer type must be one of: {guest_customer, signed_in_customer, unauthenticated_customer}"))
	}
	if config.CartSize < 0 {
		config.CartSize = defaultCartSize
	}
	if config.OutOfStockLines > config.CartSize {
		config.OutOfStockLines = config.CartSize
	}
	if config.ViewportWidthPx <= 0 {
		config.ViewportWidthPx = defaultViewportWidthPx
	}
	if config.MaxSubmissionAttempts <= 0 {
		config.MaxSubmissionAttempts = defaultMaxSubmissionAttempts
	}
	if params.SessionTimeout <= 0 {
		params.SessionTimeout = defaultSessionTimeout
	}
	return &SimulatedCustomer{
		Id:     id,
		Config: config,
		Params: params,
		rnd:    rand.New(rand.NewSource(seed + int64(id))),
	}
}
